package apperrors

import "errors"

// Grading errors
var (
	// ErrUnmappedGrade is returned when a grade letter has no point value on the grade scale
	ErrUnmappedGrade = errors.New("grade has no point value")
	// ErrEmptyAggregation is returned when an average is requested over zero total credit
	ErrEmptyAggregation = errors.New("no credit to aggregate")
	// ErrInvalidTerm is returned when the requested term has no records in the transcript
	ErrInvalidTerm = errors.New("term not found in transcript")
)

// Transcript errors
var (
	ErrRecordNotFound        = errors.New("grade record not found")
	ErrSubjectNotFound       = errors.New("subject not found")
	ErrUnknownField          = errors.New("unknown record field")
	ErrInvalidTranscriptPath = errors.New("invalid transcript path")
)

// Common errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")
)

// NewResourceNotFoundError creates a new custom error for a missing record with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrRecordNotFound,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying the offending field
func NewValidationError(field, message string) *CustomError {
	return NewCustomError(ErrValidationFailed, message).
		WithCode("VAL_001").
		WithDetails(map[string]interface{}{"field": field})
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
