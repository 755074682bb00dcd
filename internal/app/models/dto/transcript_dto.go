package dto

import (
	"github.com/google/uuid"

	"github.com/yigit/gradebook/internal/app/models"
)

// GradeRecordResponse is one transcript row as served by the API
type GradeRecordResponse struct {
	ID       uuid.UUID `json:"id" example:"2b1f6d3c-5a0e-4c55-8f1a-3f7e1f8f2a10"`
	Subject  string    `json:"subject" example:"01418497 Seminar"`
	Year     string    `json:"year" example:"2023"`
	Semester string    `json:"semester" example:"1"`
	Credit   string    `json:"credit" example:"1"`
	Section  string    `json:"section" example:"800"`
	Grade    string    `json:"grade" example:"B+"`
}

// CreateGradeRecordRequest is the body of POST /records
type CreateGradeRecordRequest struct {
	Subject  string `json:"subject" binding:"required" example:"01418497 Seminar"`
	Year     string `json:"year" binding:"required" example:"2023"`
	Semester string `json:"semester" binding:"required" example:"1"`
	Credit   string `json:"credit" binding:"required" example:"1"`
	Section  string `json:"section" binding:"required" example:"800"`
	Grade    string `json:"grade" binding:"required" example:"B+"`
}

// EditGradeRecordRequest sets one field of one or more records
type EditGradeRecordRequest struct {
	Field string `json:"field" binding:"required" example:"Grade"`
	Value string `json:"value" binding:"required" example:"A"`
}

// EditSubjectResponse reports a broadcast edit
type EditSubjectResponse struct {
	Subject string `json:"subject" example:"01418497 Seminar"`
	Updated int    `json:"updated" example:"2"`
}

// TermResponse identifies one term
type TermResponse struct {
	Year     int    `json:"year" example:"2023"`
	Semester int    `json:"semester" example:"1"`
	Label    string `json:"label" example:"2023 1"`
}

// SaveResponse reports where the transcript was written
type SaveResponse struct {
	Location string `json:"location" example:"transcript.csv"`
	Records  int    `json:"records" example:"42"`
}

// ToRecord converts the request into a record without an ID
func (r CreateGradeRecordRequest) ToRecord() models.GradeRecord {
	return models.GradeRecord{
		Subject:  r.Subject,
		Year:     r.Year,
		Semester: r.Semester,
		Credit:   r.Credit,
		Section:  r.Section,
		Grade:    models.Grade(r.Grade),
	}
}

// NewGradeRecordResponse converts a record
func NewGradeRecordResponse(r models.GradeRecord) GradeRecordResponse {
	return GradeRecordResponse{
		ID:       r.ID,
		Subject:  r.Subject,
		Year:     r.Year,
		Semester: r.Semester,
		Credit:   r.Credit,
		Section:  r.Section,
		Grade:    string(r.Grade),
	}
}

// NewGradeRecordResponses converts records preserving order
func NewGradeRecordResponses(records []models.GradeRecord) []GradeRecordResponse {
	out := make([]GradeRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewGradeRecordResponse(r))
	}
	return out
}

// NewTermResponses converts terms preserving order
func NewTermResponses(terms []models.Term) []TermResponse {
	out := make([]TermResponse, 0, len(terms))
	for _, t := range terms {
		out = append(out, TermResponse{Year: t.Year, Semester: t.Semester, Label: t.String()})
	}
	return out
}
