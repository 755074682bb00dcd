package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

func validRecord() models.GradeRecord {
	return models.GradeRecord{
		Subject:  "01418497 Seminar",
		Year:     "2023",
		Semester: "1",
		Credit:   "3",
		Section:  "800",
		Grade:    models.GradeBPlus,
	}
}

func TestValidateRecord(t *testing.T) {
	require.NoError(t, ValidateRecord(validRecord()))

	tests := []struct {
		name   string
		mutate func(*models.GradeRecord)
		field  string
	}{
		{"short subject", func(r *models.GradeRecord) { r.Subject = "Seminar" }, "Subject"},
		{"three digit year", func(r *models.GradeRecord) { r.Year = "223" }, "Year"},
		{"signed semester", func(r *models.GradeRecord) { r.Semester = "+" }, "Semester"},
		{"two digit credit", func(r *models.GradeRecord) { r.Credit = "12" }, "Credit"},
		{"long section", func(r *models.GradeRecord) { r.Section = "1000" }, "Section"},
		{"alpha section", func(r *models.GradeRecord) { r.Section = "A1" }, "Section"},
		{"unknown grade", func(r *models.GradeRecord) { r.Grade = "E" }, "Grade"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)

			err := ValidateRecord(r)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

			var ce *apperrors.CustomError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Details["field"])
		})
	}
}

func TestValidateRecordAcceptsF(t *testing.T) {
	r := validRecord()
	r.Grade = models.GradeF
	assert.NoError(t, ValidateRecord(r))
}

func TestValidateField(t *testing.T) {
	assert.NoError(t, ValidateField(models.FieldYear, "2024"))
	assert.NoError(t, ValidateField(models.FieldGrade, "c+"))
	assert.NoError(t, ValidateField(models.FieldSection, "12"))

	assert.ErrorIs(t, ValidateField(models.FieldYear, "24"), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, ValidateField(models.FieldCredit, "x"), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, ValidateField(models.FieldSubject, "short"), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, ValidateField("Score", "4"), apperrors.ErrUnknownField)
}
