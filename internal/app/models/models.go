package models

import "strings"

// Grade is a letter grade on the fixed eight-letter scale
type Grade string

// Grade constants
const (
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeDPlus Grade = "D+"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Grades lists every accepted letter in menu order
var Grades = []Grade{GradeA, GradeBPlus, GradeB, GradeCPlus, GradeC, GradeDPlus, GradeD, GradeF}

// Valid reports whether g belongs to the eight-letter alphabet
func (g Grade) Valid() bool {
	for _, known := range Grades {
		if g == known {
			return true
		}
	}
	return false
}

// ParseGrade normalizes user input such as " b+ " into a Grade
func ParseGrade(s string) Grade {
	return Grade(strings.ToUpper(strings.TrimSpace(s)))
}
