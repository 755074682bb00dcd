package repositories

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/grading"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateTranscriptPath(t *testing.T) {
	existing := writeFile(t, "grades.csv", "Subject,Year,Semester,Credit,Section,Grade\n")

	tests := []struct {
		name         string
		path         string
		allowMissing bool
		wantErr      bool
	}{
		{name: "existing csv", path: existing},
		{name: "empty path", path: "", wantErr: true},
		{name: "wrong extension", path: strings.TrimSuffix(existing, ".csv") + ".xlsx", wantErr: true},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.csv"), wantErr: true},
		{name: "missing file allowed", path: filepath.Join(t.TempDir(), "nope.csv"), allowMissing: true},
		{name: "directory", path: func() string {
			dir := filepath.Join(t.TempDir(), "dir.csv")
			require.NoError(t, os.Mkdir(dir, 0o755))
			return dir
		}(), allowMissing: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTranscriptPath(tt.path, tt.allowMissing)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidTranscriptPath)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCSVTranscriptRepository_Load(t *testing.T) {
	content := "\ufeffSubject,Year,Semester,Credit,Class,Grade,Score\n" +
		"01418497 Seminar,2023,1,1.0,800,b+,3.5\n" +
		"01999111 Knowledge,2023,2,3,1,A,4.0\n"
	path := writeFile(t, "grades.csv", content)

	repo, err := NewCSVTranscriptRepository(path, false, nil)
	require.NoError(t, err)

	transcript, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, transcript.Len())

	records := transcript.Records()
	assert.Equal(t, "01418497 Seminar", records[0].Subject)
	assert.Equal(t, "1", records[0].Credit)
	assert.Equal(t, "800", records[0].Section)
	assert.Equal(t, models.GradeBPlus, records[0].Grade)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, []models.Term{{Year: 2023, Semester: 1}, {Year: 2023, Semester: 2}}, transcript.Terms())
}

func TestCSVTranscriptRepository_IDsStableAcrossLoads(t *testing.T) {
	path := writeFile(t, "grades.csv", "Subject,Year,Semester,Credit,Section,Grade\n"+
		"01418111 Programming,2023,1,3,1,A\n"+
		"01418112 Data Structures,2022,2,3,1,C\n")

	repo, err := NewCSVTranscriptRepository(path, false, nil)
	require.NoError(t, err)

	first, err := repo.Load(context.Background())
	require.NoError(t, err)
	second, err := repo.Load(context.Background())
	require.NoError(t, err)

	for i, rec := range first.Records() {
		assert.Equal(t, rec.ID, second.Records()[i].ID)
		assert.Equal(t, RowID(i+1), rec.ID)
		assert.Equal(t, rec.ID, repo.RecordID(i+1))
	}
	assert.NotEqual(t, first.Records()[0].ID, first.Records()[1].ID)
}

func TestCSVTranscriptRepository_LoadRejectsMalformedRows(t *testing.T) {
	header := "Subject,Year,Semester,Credit,Section,Grade\n" +
		"01418111 Programming,2023,1,3,1,A\n"

	tests := []struct {
		name  string
		row   string
		field string
	}{
		{name: "empty year", row: "01418999 Broken Row,,1,3,1,A", field: "Year"},
		{name: "text semester", row: "01418999 Broken Row,2023,x,3,1,A", field: "Semester"},
		{name: "short subject", row: "Broken,2023,1,3,1,A", field: "Subject"},
		{name: "unknown grade", row: "01418999 Broken Row,2023,1,3,1,W", field: "Grade"},
		{name: "missing section", row: "01418999 Broken Row,2023,1,3,,A", field: "Section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "grades.csv", header+tt.row+"\n")
			repo, err := NewCSVTranscriptRepository(path, false, nil)
			require.NoError(t, err)

			_, err = repo.Load(context.Background())
			require.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Contains(t, err.Error(), "line 3")

			var custom *apperrors.CustomError
			require.ErrorAs(t, err, &custom)
			assert.Equal(t, tt.field, custom.Details["field"])
		})
	}
}

func TestCSVTranscriptRepository_LoadMissingColumn(t *testing.T) {
	path := writeFile(t, "grades.csv", "Subject,Year,Credit,Grade\nx,2023,3,A\n")

	repo, err := NewCSVTranscriptRepository(path, false, nil)
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCSVTranscriptRepository_LoadMissingAllowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.csv")

	repo, err := NewCSVTranscriptRepository(path, true, nil)
	require.NoError(t, err)

	transcript, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, transcript.Len())
}

func TestCSVTranscriptRepository_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	scale := grading.StandardScale()

	repo, err := NewCSVTranscriptRepository(path, true, scale.PointsOf)
	require.NoError(t, err)

	original := models.NewTranscript(
		models.GradeRecord{Subject: "01418497 Seminar", Year: "2023", Semester: "1", Credit: "1", Section: "800", Grade: models.GradeBPlus},
		models.GradeRecord{Subject: "01355112 English", Year: "2022", Semester: "2", Credit: "3", Section: "12", Grade: models.GradeF},
	)
	require.NoError(t, repo.Save(context.Background(), original))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Subject,Year,Semester,Credit,Section,Grade,Score", lines[0])
	assert.Equal(t, "01418497 Seminar,2023,1,1,800,B+,3.5", lines[1])
	assert.Equal(t, "01355112 English,2022,2,3,12,F,", lines[2])

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, original.Len(), loaded.Len())
	for i, rec := range loaded.Records() {
		want := original.Records()[i]
		assert.Equal(t, want.Subject, rec.Subject)
		assert.Equal(t, want.Grade, rec.Grade)
		assert.Equal(t, want.Section, rec.Section)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be renamed away")
}
