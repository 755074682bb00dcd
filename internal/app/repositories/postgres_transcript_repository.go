package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/dberrors"
	"github.com/yigit/gradebook/internal/pkg/logger"
	"github.com/yigit/gradebook/internal/pkg/validation"
)

const (
	gradeRecordsTable = "grade_records"
	gradeRecordsPKey  = "grade_records_pkey"
)

// insertBatchSize bounds the number of rows per INSERT statement
const insertBatchSize = 500

// PostgresTranscriptRepository stores the transcript in the grade_records table
type PostgresTranscriptRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewPostgresTranscriptRepository creates a new PostgresTranscriptRepository
func NewPostgresTranscriptRepository(database *db.PostgresDB) *PostgresTranscriptRepository {
	return &PostgresTranscriptRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Location identifies the backing table
func (r *PostgresTranscriptRepository) Location() string {
	return "postgres:" + gradeRecordsTable
}

// Load reads every record in entry order
func (r *PostgresTranscriptRepository) Load(ctx context.Context) (*models.Transcript, error) {
	sql, args, err := r.sb.Select("id", "subject", "year", "semester", "credit", "section", "grade").
		From(gradeRecordsTable).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building load transcript SQL")
		return nil, fmt.Errorf("failed to build load transcript query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUndefinedTableError(err) {
			return nil, fmt.Errorf("table %s is missing, run the migrate command: %w", gradeRecordsTable, err)
		}
		logger.Error().Err(err).Msg("Error executing load transcript query")
		return nil, fmt.Errorf("error querying grade records: %w", err)
	}
	defer rows.Close()

	transcript := models.NewTranscript()
	for rows.Next() {
		var (
			rec   models.GradeRecord
			grade string
		)
		if err := rows.Scan(&rec.ID, &rec.Subject, &rec.Year, &rec.Semester, &rec.Credit, &rec.Section, &grade); err != nil {
			logger.Error().Err(err).Msg("Error scanning grade record row")
			return nil, fmt.Errorf("error scanning grade record row: %w", err)
		}
		rec.Grade = models.Grade(grade)
		if err := validation.ValidateRecord(rec); err != nil {
			return nil, fmt.Errorf("grade record %s: %w", rec.ID, err)
		}
		transcript.Append(rec)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating grade record rows")
		return nil, fmt.Errorf("error iterating grade record rows: %w", err)
	}

	return transcript, nil
}

// Save replaces the stored records with t inside one transaction
func (r *PostgresTranscriptRepository) Save(ctx context.Context, t *models.Transcript) error {
	records := t.Records()

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Delete(gradeRecordsTable).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build clear transcript query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error clearing grade records: %w", err)
		}

		for start := 0; start < len(records); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(records) {
				end = len(records)
			}

			insert := r.sb.Insert(gradeRecordsTable).
				Columns("id", "position", "subject", "year", "semester", "credit", "section", "grade")
			for i, rec := range records[start:end] {
				insert = insert.Values(rec.ID, start+i, rec.Subject, rec.Year, rec.Semester, rec.Credit, rec.Section, string(rec.Grade))
			}

			sql, args, err := insert.ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert grade records query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				if dberrors.IsDuplicateConstraintError(err, gradeRecordsPKey) {
					return fmt.Errorf("%w: duplicate record id", apperrors.ErrValidationFailed)
				}
				return fmt.Errorf("error inserting grade records: %w", err)
			}
		}

		return nil
	})
}
