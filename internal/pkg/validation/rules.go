package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// SubjectMinLength is the shortest subject accepted on insert and edit
const SubjectMinLength = 12

var validate = validator.New()

// recordTags caches the `validate` tags of GradeRecord keyed by field
var recordTags = func() map[models.RecordField]string {
	tags := make(map[models.RecordField]string, len(models.RecordFields))
	typ := reflect.TypeOf(models.GradeRecord{})
	for _, f := range models.RecordFields {
		if sf, ok := typ.FieldByName(string(f)); ok {
			tags[f] = sf.Tag.Get("validate")
		}
	}
	return tags
}()

// ValidateRecord checks every field of a record before it enters the transcript
func ValidateRecord(record models.GradeRecord) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), formatValidationError(fe.Field(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
}

// ValidateField checks a single edited value with the same rule as insert
func ValidateField(field models.RecordField, value string) error {
	tag, ok := recordTags[field]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownField, field)
	}
	if field == models.FieldGrade {
		value = string(models.ParseGrade(value))
	}

	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(string(field), formatValidationError(string(field), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param + " characters"
	case "max":
		return field + " must be at most " + param + " characters"
	case "len":
		return field + " must be exactly " + param + " digit(s)"
	case "number":
		return field + " must contain digits only"
	case "oneof":
		return field + " must be one of: " + strings.Join(strings.Fields(param), ", ")
	default:
		return field + " validation failed: " + tag
	}
}
