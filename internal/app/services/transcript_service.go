package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/grading"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/validation"
)

// TranscriptService defines the operations available on the loaded transcript
type TranscriptService interface {
	Load(ctx context.Context) error
	Records(ctx context.Context) []models.GradeRecord
	Insert(ctx context.Context, record models.GradeRecord) (models.GradeRecord, error)
	EditByID(ctx context.Context, id uuid.UUID, field models.RecordField, value string) (models.GradeRecord, error)
	EditBySubject(ctx context.Context, subject string, field models.RecordField, value string) (int, error)
	Subjects(ctx context.Context) []string
	Terms(ctx context.Context) []models.Term
	SortedTerms(ctx context.Context) []models.Term
	Report(ctx context.Context, year, semester int) (*models.GpaReport, error)
	Save(ctx context.Context) error
	SaveIfDirty(ctx context.Context) (bool, error)
	Dirty() bool
	Location() string
}

// transcriptServiceImpl implements the TranscriptService interface
type transcriptServiceImpl struct {
	mu         sync.RWMutex
	transcript *models.Transcript
	dirty      bool
	version    uint64

	repo       repositories.TranscriptRepository
	aggregator *grading.Aggregator
	reports    *cache.Cache
	logger     zerolog.Logger
}

// NewTranscriptService creates a transcript service. Reports are cached for
// reportTTL and dropped on every mutation; a zero TTL disables caching.
func NewTranscriptService(
	repo repositories.TranscriptRepository,
	aggregator *grading.Aggregator,
	reportTTL time.Duration,
	logger zerolog.Logger,
) TranscriptService {
	s := &transcriptServiceImpl{
		transcript: models.NewTranscript(),
		repo:       repo,
		aggregator: aggregator,
		logger:     logger,
	}
	if reportTTL > 0 {
		s.reports = cache.New(reportTTL, 2*reportTTL)
	}
	return s
}

// Load replaces the in-memory transcript with the stored one
func (s *transcriptServiceImpl) Load(ctx context.Context) error {
	transcript, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("error loading transcript from %s: %w", s.repo.Location(), err)
	}

	s.mu.Lock()
	s.transcript = transcript
	s.dirty = false
	s.version++
	s.flushReportsLocked()
	s.mu.Unlock()

	s.logger.Info().Str("location", s.repo.Location()).Int("records", transcript.Len()).Msg("Transcript loaded")
	return nil
}

// Records returns a copy of every record in entry order
func (s *transcriptServiceImpl) Records(ctx context.Context) []models.GradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.Records()
}

// Insert validates record, assigns it an ID and appends it
func (s *transcriptServiceImpl) Insert(ctx context.Context, record models.GradeRecord) (models.GradeRecord, error) {
	record = normalizeRecord(record)
	if err := validation.ValidateRecord(record); err != nil {
		return models.GradeRecord{}, err
	}
	s.mu.Lock()
	if positional, ok := s.repo.(repositories.PositionalIDs); ok {
		record.ID = positional.RecordID(s.transcript.Len() + 1)
	} else {
		record.ID = uuid.New()
	}
	s.transcript.Append(record)
	s.markDirtyLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("id", record.ID.String()).Str("subject", record.Subject).Msg("Record inserted")
	return record, nil
}

// EditByID sets one field of the record with the given id
func (s *transcriptServiceImpl) EditByID(ctx context.Context, id uuid.UUID, field models.RecordField, value string) (models.GradeRecord, error) {
	value = strings.TrimSpace(value)
	if err := validation.ValidateField(field, value); err != nil {
		return models.GradeRecord{}, err
	}

	s.mu.Lock()
	found := s.transcript.Update(id, func(r *models.GradeRecord) {
		r.Set(field, value)
	})
	var updated models.GradeRecord
	if found {
		updated, _ = s.transcript.Find(id)
		s.markDirtyLocked()
	}
	s.mu.Unlock()

	if !found {
		return models.GradeRecord{}, fmt.Errorf("%w: %s", apperrors.ErrRecordNotFound, id)
	}

	s.logger.Debug().Str("id", id.String()).Str("field", string(field)).Msg("Record edited")
	return updated, nil
}

// EditBySubject sets one field on every record sharing subject and returns
// how many records changed
func (s *transcriptServiceImpl) EditBySubject(ctx context.Context, subject string, field models.RecordField, value string) (int, error) {
	value = strings.TrimSpace(value)
	if err := validation.ValidateField(field, value); err != nil {
		return 0, err
	}

	s.mu.Lock()
	n := s.transcript.UpdateSubject(subject, func(r *models.GradeRecord) {
		r.Set(field, value)
	})
	if n > 0 {
		s.markDirtyLocked()
	}
	s.mu.Unlock()

	if n == 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrSubjectNotFound, subject)
	}

	s.logger.Debug().Str("subject", subject).Str("field", string(field)).Int("records", n).Msg("Subject edited")
	return n, nil
}

// Subjects returns the distinct subjects in first-appearance order
func (s *transcriptServiceImpl) Subjects(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.Subjects()
}

// Terms returns the distinct terms in first-appearance order
func (s *transcriptServiceImpl) Terms(ctx context.Context) []models.Term {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.Terms()
}

// SortedTerms returns the distinct terms in chronological order
func (s *transcriptServiceImpl) SortedTerms(ctx context.Context) []models.Term {
	terms := s.Terms(ctx)
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].Compare(terms[j]) < 0
	})
	return terms
}

// Report computes the GPA report for year/semester on a snapshot of the transcript
func (s *transcriptServiceImpl) Report(ctx context.Context, year, semester int) (*models.GpaReport, error) {
	key := models.Term{Year: year, Semester: semester}.String()

	s.mu.RLock()
	if s.reports != nil {
		if cached, ok := s.reports.Get(key); ok {
			s.mu.RUnlock()
			return copyReport(cached.(*models.GpaReport)), nil
		}
	}
	snapshot := s.transcript.Clone()
	version := s.version
	s.mu.RUnlock()

	report, err := s.aggregator.Report(snapshot, year, semester)
	if err != nil {
		return nil, err
	}

	if s.reports != nil {
		// Mutations bump version and flush under the write lock, so a report
		// computed from an older snapshot is never stored.
		s.mu.RLock()
		if s.version == version {
			s.reports.SetDefault(key, copyReport(report))
		}
		s.mu.RUnlock()
	}

	return report, nil
}

// Save writes the transcript through the repository
func (s *transcriptServiceImpl) Save(ctx context.Context) error {
	s.mu.RLock()
	snapshot := s.transcript.Clone()
	version := s.version
	s.mu.RUnlock()

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("error saving transcript to %s: %w", s.repo.Location(), err)
	}

	s.mu.Lock()
	if s.version == version {
		s.dirty = false
	}
	s.mu.Unlock()

	s.logger.Info().Str("location", s.repo.Location()).Int("records", snapshot.Len()).Msg("Transcript saved")
	return nil
}

// SaveIfDirty saves only when there are unsaved changes and reports whether it wrote
func (s *transcriptServiceImpl) SaveIfDirty(ctx context.Context) (bool, error) {
	if !s.Dirty() {
		return false, nil
	}
	if err := s.Save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Dirty reports whether the transcript changed since the last load or save
func (s *transcriptServiceImpl) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Location describes the backing store
func (s *transcriptServiceImpl) Location() string {
	return s.repo.Location()
}

// markDirtyLocked must be called with mu held for writing
func (s *transcriptServiceImpl) markDirtyLocked() {
	s.dirty = true
	s.version++
	s.flushReportsLocked()
}

func (s *transcriptServiceImpl) flushReportsLocked() {
	if s.reports != nil {
		s.reports.Flush()
	}
}

// normalizeRecord trims the text fields and canonicalises the grade letter
func normalizeRecord(r models.GradeRecord) models.GradeRecord {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Year = strings.TrimSpace(r.Year)
	r.Semester = strings.TrimSpace(r.Semester)
	r.Credit = strings.TrimSpace(r.Credit)
	r.Section = strings.TrimSpace(r.Section)
	r.Grade = models.ParseGrade(string(r.Grade))
	return r
}

func copyReport(r *models.GpaReport) *models.GpaReport {
	out := *r
	out.TermRecords = make([]models.ScoredRecord, len(r.TermRecords))
	copy(out.TermRecords, r.TermRecords)
	return &out
}
