package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// ReportController serves terms and GPA reports
type ReportController struct {
	transcriptService services.TranscriptService
}

// NewReportController creates a new ReportController
func NewReportController(transcriptService services.TranscriptService) *ReportController {
	return &ReportController{
		transcriptService: transcriptService,
	}
}

// GetTerms lists the terms present in the transcript
// @Summary List terms
// @Description Terms in chronological order, or first-appearance order with order=entry
// @Tags reports
// @Produce json
// @Param order query string false "chronological (default) or entry"
// @Success 200 {object} dto.APIResponse{data=[]dto.TermResponse}
// @Router /terms [get]
func (c *ReportController) GetTerms(ctx *gin.Context) {
	terms := c.transcriptService.SortedTerms(ctx)
	if ctx.Query("order") == "entry" {
		terms = c.transcriptService.Terms(ctx)
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewTermResponses(terms), ""))
}

// GetReport computes the GPA and GPAX for a term
// @Summary Term GPA report
// @Tags reports
// @Produce json
// @Param year query int true "Academic year" example(2023)
// @Param semester query int true "Semester" example(1)
// @Success 200 {object} dto.APIResponse{data=dto.GpaReportResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid year or semester"
// @Failure 404 {object} dto.ErrorResponse "Term not found"
// @Failure 422 {object} dto.ErrorResponse "Unmapped grade or no credit"
// @Router /reports [get]
func (c *ReportController) GetReport(ctx *gin.Context) {
	year, err := strconv.Atoi(ctx.Query("year"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("year must be a number"))
		return
	}
	semester, err := strconv.Atoi(ctx.Query("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("semester must be a number"))
		return
	}

	report, err := c.transcriptService.Report(ctx, year, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewGpaReportResponse(report), ""))
}
