package repositories

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/logger"
	"github.com/yigit/gradebook/internal/pkg/validation"
)

// csvHeader is the column layout written on save. Score is derived output and
// is ignored on load.
var csvHeader = []string{"Subject", "Year", "Semester", "Credit", "Section", "Grade", "Score"}

// columnAliases maps older column names onto the current ones
var columnAliases = map[string]string{
	"class": "section",
}

// rowNamespace seeds the IDs of CSV rows, which carry no ID column
var rowNamespace = uuid.MustParse("6f0d3c52-8b4e-4d1a-9a57-2c1e0f4b7d93")

// RowID is the ID given to the n-th record (1-based) of a CSV transcript. It
// depends only on the position so IDs printed by one run address the same
// rows in the next.
func RowID(n int) uuid.UUID {
	return uuid.NewSHA1(rowNamespace, []byte(strconv.Itoa(n)))
}

// ScoreFunc returns the point value written to the Score column
type ScoreFunc func(models.Grade) (float64, error)

// CSVTranscriptRepository stores the transcript as a CSV file
type CSVTranscriptRepository struct {
	path         string
	allowMissing bool
	score        ScoreFunc
}

// NewCSVTranscriptRepository validates path and creates the repository. With
// allowMissing a non-existent file loads as an empty transcript.
func NewCSVTranscriptRepository(path string, allowMissing bool, score ScoreFunc) (*CSVTranscriptRepository, error) {
	if err := ValidateTranscriptPath(path, allowMissing); err != nil {
		return nil, err
	}
	return &CSVTranscriptRepository{path: path, allowMissing: allowMissing, score: score}, nil
}

// ValidateTranscriptPath checks the file extension and, unless allowMissing, that the file exists
func ValidateTranscriptPath(path string, allowMissing bool) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path is empty", apperrors.ErrInvalidTranscriptPath)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !strings.EqualFold(ext, "csv") {
		return fmt.Errorf("%w: require csv, got %q", apperrors.ErrInvalidTranscriptPath, ext)
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if allowMissing {
			return nil
		}
		return fmt.Errorf("%w: %s doesn't exist", apperrors.ErrInvalidTranscriptPath, path)
	case err != nil:
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidTranscriptPath, err)
	case info.IsDir():
		return fmt.Errorf("%w: %s is a directory", apperrors.ErrInvalidTranscriptPath, path)
	}
	return nil
}

// RecordID returns the ID of the record at position (1-based)
func (r *CSVTranscriptRepository) RecordID(position int) uuid.UUID {
	return RowID(position)
}

// Location returns the CSV path
func (r *CSVTranscriptRepository) Location() string {
	return r.path
}

// Load reads the CSV file into a transcript
func (r *CSVTranscriptRepository) Load(ctx context.Context) (*models.Transcript, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && r.allowMissing {
			logger.Debug().Str("path", r.path).Msg("Transcript file not found, starting empty")
			return models.NewTranscript(), nil
		}
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	return readTranscript(ctx, f)
}

func readTranscript(ctx context.Context, src io.Reader) (*models.Transcript, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return models.NewTranscript(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if alias, ok := columnAliases[key]; ok {
			if _, taken := columns[alias]; taken {
				continue
			}
			key = alias
		}
		columns[key] = i
	}
	for _, required := range []string{"subject", "year", "semester", "credit", "section", "grade"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: transcript is missing the %q column", apperrors.ErrValidationFailed, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	transcript := models.NewTranscript()
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read transcript line %d: %w", line, err)
		}

		record := models.GradeRecord{
			ID:       RowID(transcript.Len() + 1),
			Subject:  cell(row, "subject"),
			Year:     cell(row, "year"),
			Semester: cell(row, "semester"),
			Credit:   normalizeCredit(cell(row, "credit")),
			Section:  cell(row, "section"),
			Grade:    models.ParseGrade(cell(row, "grade")),
		}
		if err := validation.ValidateRecord(record); err != nil {
			pos, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("transcript line %d: %w", pos, err)
		}
		transcript.Append(record)
	}

	return transcript, nil
}

// normalizeCredit turns spreadsheet-style "3.0" into "3"
func normalizeCredit(raw string) string {
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}

// Save writes the transcript to a temporary file and renames it over the target
func (r *CSVTranscriptRepository) Save(ctx context.Context, t *models.Transcript) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".transcript-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temporary transcript: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := r.write(tmp, t); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush transcript: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace transcript: %w", err)
	}

	logger.Debug().Str("path", r.path).Int("records", t.Len()).Msg("Transcript written")
	return nil
}

func (r *CSVTranscriptRepository) write(dst io.Writer, t *models.Transcript) error {
	w := csv.NewWriter(dst)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write transcript header: %w", err)
	}

	for _, rec := range t.Records() {
		score := ""
		if r.score != nil {
			if points, err := r.score(rec.Grade); err == nil {
				score = strconv.FormatFloat(points, 'f', 1, 64)
			}
		}
		row := []string{rec.Subject, rec.Year, rec.Semester, rec.Credit, rec.Section, string(rec.Grade), score}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write record %q: %w", rec.Subject, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
