package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// TranscriptController handles record listing, insertion and editing
type TranscriptController struct {
	transcriptService services.TranscriptService
}

// NewTranscriptController creates a new TranscriptController
func NewTranscriptController(transcriptService services.TranscriptService) *TranscriptController {
	return &TranscriptController{
		transcriptService: transcriptService,
	}
}

// GetRecords lists transcript records in entry order
// @Summary List grade records
// @Description Lists the transcript records in entry order, optionally paginated
// @Tags records
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Records retrieved successfully"
// @Router /records [get]
func (c *TranscriptController) GetRecords(ctx *gin.Context) {
	records := c.transcriptService.Records(ctx)

	page, size := helpers.ParsePaginationParams(ctx)
	start, end := helpers.CalculateSliceIndices(page, size, len(records))

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      dto.NewGradeRecordResponses(records[start:end]),
		Pagination: helpers.NewPaginationInfo(int64(len(records)), page, size),
	}, ""))
}

// GetRecord returns a single record
// @Summary Get a grade record
// @Tags records
// @Produce json
// @Param id path string true "Record ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.GradeRecordResponse} "Record retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid record ID"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /records/{id} [get]
func (c *TranscriptController) GetRecord(ctx *gin.Context) {
	id, ok := parseRecordID(ctx)
	if !ok {
		return
	}

	for _, r := range c.transcriptService.Records(ctx) {
		if r.ID == id {
			ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewGradeRecordResponse(r), ""))
			return
		}
	}
	middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("record "+id.String()+" not found"))
}

// CreateRecord inserts a new record
// @Summary Insert a grade record
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGradeRecordRequest true "Record"
// @Success 201 {object} dto.APIResponse{data=dto.GradeRecordResponse} "Record inserted"
// @Failure 400 {object} dto.ErrorResponse "Invalid record"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /records [post]
func (c *TranscriptController) CreateRecord(ctx *gin.Context) {
	var req dto.CreateGradeRecordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.transcriptService.Insert(ctx, req.ToRecord())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewGradeRecordResponse(record), "Record inserted"))
}

// EditRecord sets one field of the record with the given ID
// @Summary Edit a grade record
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID" Format(uuid)
// @Param request body dto.EditGradeRecordRequest true "Field and new value"
// @Success 200 {object} dto.APIResponse{data=dto.GradeRecordResponse} "Record updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid field or value"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /records/{id} [put]
func (c *TranscriptController) EditRecord(ctx *gin.Context) {
	id, ok := parseRecordID(ctx)
	if !ok {
		return
	}

	var req dto.EditGradeRecordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	field, ok := parseField(ctx, req.Field)
	if !ok {
		return
	}

	record, err := c.transcriptService.EditByID(ctx, id, field, req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewGradeRecordResponse(record), "Record updated"))
}

// EditSubject sets one field on every record of a subject
// @Summary Edit every record of a subject
// @Description Applies the same field update to every record sharing the subject
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject query string true "Subject"
// @Param request body dto.EditGradeRecordRequest true "Field and new value"
// @Success 200 {object} dto.APIResponse{data=dto.EditSubjectResponse} "Records updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid field or value"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /records [patch]
func (c *TranscriptController) EditSubject(ctx *gin.Context) {
	subject := strings.TrimSpace(ctx.Query("subject"))
	if subject == "" {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("subject query parameter is required"))
		return
	}

	var req dto.EditGradeRecordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	field, ok := parseField(ctx, req.Field)
	if !ok {
		return
	}

	n, err := c.transcriptService.EditBySubject(ctx, subject, field, req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.EditSubjectResponse{Subject: subject, Updated: n}, "Records updated"))
}

// GetSubjects lists the distinct subjects
// @Summary List subjects
// @Tags records
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]string}
// @Router /subjects [get]
func (c *TranscriptController) GetSubjects(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.transcriptService.Subjects(ctx), ""))
}

// SaveTranscript writes the transcript to its backing store
// @Summary Save the transcript
// @Tags transcript
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SaveResponse} "Transcript saved"
// @Failure 500 {object} dto.ErrorResponse "Storage error"
// @Router /transcript/save [post]
func (c *TranscriptController) SaveTranscript(ctx *gin.Context) {
	if err := c.transcriptService.Save(ctx); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SaveResponse{
		Location: c.transcriptService.Location(),
		Records:  len(c.transcriptService.Records(ctx)),
	}, "Transcript saved"))
}

func parseRecordID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("record ID must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func parseField(ctx *gin.Context, name string) (models.RecordField, bool) {
	field, ok := models.ParseRecordField(name)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrUnknownField, "unknown field "+name))
		return "", false
	}
	return field, true
}
