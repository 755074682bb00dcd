package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GradeRecord is one row of the transcript. Numeric fields stay strings at the
// boundary and are parsed when a term or credit weight is needed.
type GradeRecord struct {
	ID       uuid.UUID `json:"id" example:"2b1f6d3c-5a0e-4c55-8f1a-3f7e1f8f2a10"`
	Subject  string    `json:"subject" validate:"required,min=12" example:"01418497 Seminar"`
	Year     string    `json:"year" validate:"required,len=4,number" example:"2023"`
	Semester string    `json:"semester" validate:"required,len=1,number" example:"1"`
	Credit   string    `json:"credit" validate:"required,len=1,number" example:"3"`
	Section  string    `json:"section" validate:"required,min=1,max=3,number" example:"800"`
	Grade    Grade     `json:"grade" validate:"required,oneof=A B+ B C+ C D+ D F" example:"B+"`
}

// Term parses the record's year and semester
func (r GradeRecord) Term() (Term, error) {
	year, err := strconv.Atoi(r.Year)
	if err != nil {
		return Term{}, fmt.Errorf("record %q: year %q is not numeric", r.Subject, r.Year)
	}
	semester, err := strconv.Atoi(r.Semester)
	if err != nil {
		return Term{}, fmt.Errorf("record %q: semester %q is not numeric", r.Subject, r.Semester)
	}
	return Term{Year: year, Semester: semester}, nil
}

// CreditHours parses the record's credit weight
func (r GradeRecord) CreditHours() (int, error) {
	credit, err := strconv.Atoi(r.Credit)
	if err != nil {
		return 0, fmt.Errorf("record %q: credit %q is not numeric", r.Subject, r.Credit)
	}
	return credit, nil
}

// RecordField names an editable column of a grade record
type RecordField string

// Editable fields, named after the transcript columns
const (
	FieldSubject  RecordField = "Subject"
	FieldYear     RecordField = "Year"
	FieldSemester RecordField = "Semester"
	FieldCredit   RecordField = "Credit"
	FieldSection  RecordField = "Section"
	FieldGrade    RecordField = "Grade"
)

// RecordFields lists the editable fields in column order
var RecordFields = []RecordField{FieldSubject, FieldYear, FieldSemester, FieldCredit, FieldSection, FieldGrade}

// ParseRecordField matches a field name case-insensitively
func ParseRecordField(name string) (RecordField, bool) {
	for _, f := range RecordFields {
		if strings.EqualFold(string(f), strings.TrimSpace(name)) {
			return f, true
		}
	}
	return "", false
}

// Get returns the current value of field
func (r GradeRecord) Get(field RecordField) string {
	switch field {
	case FieldSubject:
		return r.Subject
	case FieldYear:
		return r.Year
	case FieldSemester:
		return r.Semester
	case FieldCredit:
		return r.Credit
	case FieldSection:
		return r.Section
	case FieldGrade:
		return string(r.Grade)
	default:
		return ""
	}
}

// Set assigns value to field. It reports false for an unknown field.
func (r *GradeRecord) Set(field RecordField, value string) bool {
	switch field {
	case FieldSubject:
		r.Subject = value
	case FieldYear:
		r.Year = value
	case FieldSemester:
		r.Semester = value
	case FieldCredit:
		r.Credit = value
	case FieldSection:
		r.Section = value
	case FieldGrade:
		r.Grade = ParseGrade(value)
	default:
		return false
	}
	return true
}
