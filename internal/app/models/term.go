package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Term identifies one academic period
type Term struct {
	Year     int `json:"year" example:"2023"`
	Semester int `json:"semester" example:"1"`
}

// Compare orders terms by year, then semester. It returns -1, 0 or 1.
func (t Term) Compare(other Term) int {
	switch {
	case t.Year < other.Year:
		return -1
	case t.Year > other.Year:
		return 1
	case t.Semester < other.Semester:
		return -1
	case t.Semester > other.Semester:
		return 1
	default:
		return 0
	}
}

// AtOrBefore reports whether t is the same term as other or an earlier one
func (t Term) AtOrBefore(other Term) bool {
	return t.Compare(other) <= 0
}

// String renders the term the way the term menu shows it, e.g. "2023 1"
func (t Term) String() string {
	return fmt.Sprintf("%d %d", t.Year, t.Semester)
}

// ParseTerm accepts "2023 1", "2023/1" or "2023-1"
func ParseTerm(s string) (Term, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ' ' || r == '/' || r == '-'
	})
	if len(fields) != 2 {
		return Term{}, fmt.Errorf("term %q must be <year> <semester>", s)
	}

	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return Term{}, fmt.Errorf("term %q has a non-numeric year", s)
	}
	semester, err := strconv.Atoi(fields[1])
	if err != nil {
		return Term{}, fmt.Errorf("term %q has a non-numeric semester", s)
	}

	return Term{Year: year, Semester: semester}, nil
}
