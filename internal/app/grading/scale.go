// Package grading computes term GPA and cumulative GPAX from a transcript.
// It is synchronous, never mutates its input and does no logging.
package grading

import (
	"fmt"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// standardCentiPoints holds point values in hundredths so sums stay exact.
// F is deliberately absent.
var standardCentiPoints = map[models.Grade]int64{
	models.GradeA:     400,
	models.GradeBPlus: 350,
	models.GradeB:     300,
	models.GradeCPlus: 250,
	models.GradeC:     200,
	models.GradeDPlus: 150,
	models.GradeD:     100,
}

// Scale maps letter grades to point values
type Scale struct {
	centi map[models.Grade]int64
}

// StandardScale returns the fixed A..D scale
func StandardScale() Scale {
	return Scale{centi: standardCentiPoints}
}

// PointsOf returns the point value of grade or ErrUnmappedGrade
func (s Scale) PointsOf(grade models.Grade) (float64, error) {
	c, err := s.centiPointsOf(grade)
	if err != nil {
		return 0, err
	}
	return float64(c) / 100, nil
}

func (s Scale) centiPointsOf(grade models.Grade) (int64, error) {
	c, ok := s.centi[grade]
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnmappedGrade, grade)
	}
	return c, nil
}
