package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/logger"
)

// HandleAPIError maps service errors to a status code and error envelope
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)

	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if field, ok := custom.Details["field"].(string); ok {
			detail = detail.WithField(field)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, dto.NewFailureResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrRecordNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Record not found")
	case errors.Is(err, apperrors.ErrSubjectNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeSubjectNotFound, "Subject not found")
	case errors.Is(err, apperrors.ErrInvalidTerm):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeTermNotFound, "Term not found in transcript")
	case errors.Is(err, apperrors.ErrUnknownField):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeUnknownField, err.Error())
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrUnmappedGrade):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeUnmappedGrade, err.Error())
	case errors.Is(err, apperrors.ErrEmptyAggregation):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeEmptyAggregation, err.Error())
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrInvalidTranscriptPath):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeStorageError, "Transcript storage unavailable")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
