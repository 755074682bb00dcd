package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/gradebook/internal/app/models/dto"
)

// BindJSON decodes the request body into obj. On failure it writes a 400 and
// returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request format")

		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			errorDetail = errorDetail.WithField(fieldErrs[0].Field()).
				WithDetails(fieldErrs[0].Field() + " is " + fieldErrs[0].Tag())
		} else {
			errorDetail = errorDetail.WithDetails(err.Error())
		}

		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewFailureResponse(errorDetail))
		return false
	}
	return true
}
