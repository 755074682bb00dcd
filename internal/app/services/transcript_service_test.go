package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/grading"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

type memoryRepository struct {
	mu      sync.Mutex
	stored  []models.GradeRecord
	saves   int
	loadErr error
	saveErr error
}

func (r *memoryRepository) Load(ctx context.Context) (*models.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return models.NewTranscript(r.stored...), nil
}

func (r *memoryRepository) Save(ctx context.Context, t *models.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = t.Records()
	r.saves++
	return nil
}

func (r *memoryRepository) Location() string { return "memory" }

func record(subject, year, semester, credit string, grade models.Grade) models.GradeRecord {
	return models.GradeRecord{
		ID:       uuid.New(),
		Subject:  subject,
		Year:     year,
		Semester: semester,
		Credit:   credit,
		Section:  "800",
		Grade:    grade,
	}
}

func newTestService(t *testing.T, repo *memoryRepository, ttl time.Duration) TranscriptService {
	t.Helper()
	agg := grading.NewAggregator(grading.NewCalculator(grading.StandardScale(), grading.PolicyAbort))
	svc := NewTranscriptService(repo, agg, ttl, zerolog.Nop())
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func seededRepository() *memoryRepository {
	return &memoryRepository{stored: []models.GradeRecord{
		record("01418111 Programming", "2023", "1", "3", models.GradeA),
		record("01418113 Discrete Math", "2023", "1", "2", models.GradeB),
		record("01418112 Data Structures", "2022", "2", "3", models.GradeC),
	}}
}

func TestTranscriptService_LoadError(t *testing.T) {
	repo := &memoryRepository{loadErr: errors.New("disk gone")}
	agg := grading.NewAggregator(grading.NewCalculator(grading.StandardScale(), grading.PolicyAbort))
	svc := NewTranscriptService(repo, agg, 0, zerolog.Nop())

	err := svc.Load(context.Background())
	assert.Error(t, err)
	assert.Empty(t, svc.Records(context.Background()))
}

func TestTranscriptService_Insert(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memoryRepository{}, 0)

	inserted, err := svc.Insert(ctx, models.GradeRecord{
		Subject:  " 01418497 Seminar ",
		Year:     "2023",
		Semester: "1",
		Credit:   "1",
		Section:  "800",
		Grade:    "b+",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, inserted.ID)
	assert.Equal(t, "01418497 Seminar", inserted.Subject)
	assert.Equal(t, models.GradeBPlus, inserted.Grade)
	assert.True(t, svc.Dirty())
	assert.Len(t, svc.Records(ctx), 1)
}

func TestTranscriptService_InsertRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memoryRepository{}, 0)

	tests := []struct {
		name   string
		record models.GradeRecord
	}{
		{name: "short subject", record: models.GradeRecord{Subject: "Seminar", Year: "2023", Semester: "1", Credit: "1", Section: "1", Grade: "A"}},
		{name: "two digit year", record: models.GradeRecord{Subject: "01418497 Seminar", Year: "23", Semester: "1", Credit: "1", Section: "1", Grade: "A"}},
		{name: "bad grade", record: models.GradeRecord{Subject: "01418497 Seminar", Year: "2023", Semester: "1", Credit: "1", Section: "1", Grade: "E"}},
		{name: "long section", record: models.GradeRecord{Subject: "01418497 Seminar", Year: "2023", Semester: "1", Credit: "1", Section: "8000", Grade: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Insert(ctx, tt.record)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
	assert.Empty(t, svc.Records(ctx))
	assert.False(t, svc.Dirty())
}

func TestTranscriptService_EditByID(t *testing.T) {
	ctx := context.Background()
	repo := seededRepository()
	svc := newTestService(t, repo, 0)
	target := svc.Records(ctx)[1]

	updated, err := svc.EditByID(ctx, target.ID, models.FieldGrade, "a")
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, updated.Grade)
	assert.Equal(t, target.Subject, updated.Subject)

	_, err = svc.EditByID(ctx, uuid.New(), models.FieldGrade, "A")
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)

	_, err = svc.EditByID(ctx, target.ID, models.FieldYear, "99")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.EditByID(ctx, target.ID, models.RecordField("Score"), "4")
	assert.ErrorIs(t, err, apperrors.ErrUnknownField)
}

func TestTranscriptService_EditBySubjectBroadcasts(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{stored: []models.GradeRecord{
		record("01418497 Seminar", "2022", "1", "1", models.GradeC),
		record("01418111 Programming", "2022", "1", "3", models.GradeA),
		record("01418497 Seminar", "2023", "1", "1", models.GradeB),
	}}
	svc := newTestService(t, repo, 0)

	n, err := svc.EditBySubject(ctx, "01418497 Seminar", models.FieldCredit, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records := svc.Records(ctx)
	assert.Equal(t, "2", records[0].Credit)
	assert.Equal(t, "3", records[1].Credit)
	assert.Equal(t, "2", records[2].Credit)

	_, err = svc.EditBySubject(ctx, "01000000 Missing", models.FieldCredit, "2")
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)
}

func TestTranscriptService_Terms(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, seededRepository(), 0)

	assert.Equal(t, []models.Term{{Year: 2023, Semester: 1}, {Year: 2022, Semester: 2}}, svc.Terms(ctx))
	assert.Equal(t, []models.Term{{Year: 2022, Semester: 2}, {Year: 2023, Semester: 1}}, svc.SortedTerms(ctx))
	assert.Equal(t, []string{"01418111 Programming", "01418113 Discrete Math", "01418112 Data Structures"}, svc.Subjects(ctx))
}

func TestTranscriptService_Report(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, seededRepository(), time.Minute)

	report, err := svc.Report(ctx, 2023, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.6, report.GPA)
	assert.Equal(t, 3.0, report.GPAX)

	_, err = svc.Report(ctx, 2019, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)
}

func TestTranscriptService_ReportCacheInvalidatedOnEdit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, seededRepository(), time.Minute)

	before, err := svc.Report(ctx, 2023, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.6, before.GPA)

	// mutating a returned report must not leak into the cache
	before.GPA = 0

	cached, err := svc.Report(ctx, 2023, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.6, cached.GPA)

	_, err = svc.EditBySubject(ctx, "01418113 Discrete Math", models.FieldGrade, "A")
	require.NoError(t, err)

	after, err := svc.Report(ctx, 2023, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, after.GPA)
}

func TestTranscriptService_ReportNeverStaleAfterMutation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, seededRepository(), time.Minute)
	const subject = "01418113 Discrete Math"

	// 2023/1 holds an A worth 3 credits and the B being edited
	gpaFor := func(credit int) float64 {
		return float64((400*3+300*credit)/(3+credit)) / 100
	}
	creditOf := func() int {
		for _, r := range svc.Records(ctx) {
			if r.Subject == subject {
				n, _ := r.CreditHours()
				return n
			}
		}
		return -1
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				low := creditOf()
				report, err := svc.Report(ctx, 2023, 1)
				high := creditOf()
				if !assert.NoError(t, err) {
					return
				}
				valid := false
				for c := low; c <= high; c++ {
					if report.GPA == gpaFor(c) {
						valid = true
					}
				}
				if !assert.True(t, valid, "GPA %v outside credits %d..%d", report.GPA, low, high) {
					return
				}
			}
		}()
	}

	for credit := 3; credit <= 9; credit++ {
		_, err := svc.EditBySubject(ctx, subject, models.FieldCredit, strconv.Itoa(credit))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	close(done)
	wg.Wait()

	impl := svc.(*transcriptServiceImpl)
	_, err := svc.Report(ctx, 2023, 1)
	require.NoError(t, err)
	require.Equal(t, 1, impl.reports.ItemCount())
	_, err = svc.EditBySubject(ctx, subject, models.FieldGrade, "A")
	require.NoError(t, err)
	assert.Zero(t, impl.reports.ItemCount(), "mutation must flush cached reports before returning")
}

func TestTranscriptService_Save(t *testing.T) {
	ctx := context.Background()
	repo := seededRepository()
	svc := newTestService(t, repo, 0)

	saved, err := svc.SaveIfDirty(ctx)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Zero(t, repo.saves)

	_, err = svc.Insert(ctx, models.GradeRecord{Subject: "01418497 Seminar", Year: "2024", Semester: "1", Credit: "1", Section: "1", Grade: "A"})
	require.NoError(t, err)

	saved, err = svc.SaveIfDirty(ctx)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.False(t, svc.Dirty())
	assert.Equal(t, 1, repo.saves)
	assert.Len(t, repo.stored, 4)
}

func TestTranscriptService_SaveErrorKeepsDirty(t *testing.T) {
	ctx := context.Background()
	repo := seededRepository()
	svc := newTestService(t, repo, 0)

	_, err := svc.EditBySubject(ctx, "01418111 Programming", models.FieldSection, "1")
	require.NoError(t, err)

	repo.saveErr = errors.New("read-only filesystem")
	assert.Error(t, svc.Save(ctx))
	assert.True(t, svc.Dirty())
}

func TestAutosaver(t *testing.T) {
	ctx := context.Background()
	repo := seededRepository()
	svc := newTestService(t, repo, 0)

	_, err := NewAutosaver(svc, "not a schedule", zerolog.Nop())
	assert.Error(t, err)

	autosaver, err := NewAutosaver(svc, "@every 1s", zerolog.Nop())
	require.NoError(t, err)

	_, err = svc.EditBySubject(ctx, "01418111 Programming", models.FieldGrade, "B")
	require.NoError(t, err)

	autosaver.Start()
	defer autosaver.Stop()

	assert.Eventually(t, func() bool { return !svc.Dirty() }, 5*time.Second, 50*time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, models.GradeB, repo.stored[0].Grade)
}

type slowRepository struct {
	*memoryRepository
	entered  chan struct{}
	release  chan struct{}
	inFlight int
	peak     int
}

func (r *slowRepository) Save(ctx context.Context, t *models.Transcript) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.peak {
		r.peak = r.inFlight
	}
	r.mu.Unlock()

	select {
	case r.entered <- struct{}{}:
	default:
	}
	<-r.release

	r.mu.Lock()
	r.inFlight--
	r.mu.Unlock()
	return nil
}

func TestAutosaverSkipsOverlappingRuns(t *testing.T) {
	ctx := context.Background()
	repo := &slowRepository{
		memoryRepository: seededRepository(),
		entered:          make(chan struct{}, 1),
		release:          make(chan struct{}),
	}
	agg := grading.NewAggregator(grading.NewCalculator(grading.StandardScale(), grading.PolicyAbort))
	svc := NewTranscriptService(repo, agg, 0, zerolog.Nop())
	require.NoError(t, svc.Load(ctx))

	_, err := svc.EditBySubject(ctx, "01418111 Programming", models.FieldGrade, "B")
	require.NoError(t, err)

	autosaver, err := NewAutosaver(svc, "@every 1s", zerolog.Nop())
	require.NoError(t, err)
	autosaver.Start()

	select {
	case <-repo.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("autosave never started")
	}

	// the transcript stays dirty while the first save blocks, so later ticks
	// would save again if they were allowed to run
	time.Sleep(2500 * time.Millisecond)
	close(repo.release)
	autosaver.Stop()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, 1, repo.peak)
	assert.False(t, svc.Dirty())
}
