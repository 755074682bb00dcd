package grading

import (
	"errors"
	"fmt"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// Calculator turns a record set into credit and score totals
type Calculator struct {
	scale  Scale
	policy UnmappedPolicy
}

// NewCalculator creates a calculator for scale and unmapped-grade policy
func NewCalculator(scale Scale, policy UnmappedPolicy) *Calculator {
	if policy == "" {
		policy = DefaultPolicy
	}
	return &Calculator{scale: scale, policy: policy}
}

// Policy returns the configured unmapped-grade policy
func (c *Calculator) Policy() UnmappedPolicy {
	return c.policy
}

// Score annotates every record with its point value under the configured policy
func (c *Calculator) Score(records []models.GradeRecord) ([]models.ScoredRecord, error) {
	scored := make([]models.ScoredRecord, 0, len(records))
	for _, r := range records {
		centi, counted, err := c.resolve(r.Grade)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Subject, err)
		}
		scored = append(scored, models.ScoredRecord{
			GradeRecord: r,
			Score:       float64(centi) / 100,
			Counted:     counted,
		})
	}
	return scored, nil
}

// Aggregate computes total credit, credit-weighted score and the GPA truncated
// to two decimals. Zero total credit fails with ErrEmptyAggregation.
func (c *Calculator) Aggregate(records []models.GradeRecord) (models.Totals, error) {
	var (
		totalCredit int64
		totalCenti  int64
	)

	for _, r := range records {
		centi, counted, err := c.resolve(r.Grade)
		if err != nil {
			return models.Totals{}, fmt.Errorf("record %q: %w", r.Subject, err)
		}
		if !counted {
			continue
		}

		credit, err := r.CreditHours()
		if err != nil {
			return models.Totals{}, fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
		}
		if credit < 0 {
			return models.Totals{}, fmt.Errorf("%w: record %q has negative credit", apperrors.ErrValidationFailed, r.Subject)
		}

		totalCredit += int64(credit)
		totalCenti += centi * int64(credit)
	}

	if totalCredit == 0 {
		return models.Totals{}, fmt.Errorf("%w: %d record(s) carry no credit", apperrors.ErrEmptyAggregation, len(records))
	}

	return models.Totals{
		TotalCredit: int(totalCredit),
		TotalScore:  float64(totalCenti) / 100,
		GPA:         truncatedAverage(totalCenti, totalCredit),
	}, nil
}

// truncatedAverage returns floor(totalCenti/totalCredit) hundredths as a float.
// Integer division keeps e.g. an exact 2.30 from flooring to 2.29.
func truncatedAverage(totalCenti, totalCredit int64) float64 {
	return float64(totalCenti/totalCredit) / 100
}

// resolve returns the centi-points of grade and whether it counts toward totals
func (c *Calculator) resolve(grade models.Grade) (int64, bool, error) {
	centi, err := c.scale.centiPointsOf(grade)
	if err == nil {
		return centi, true, nil
	}
	if !errors.Is(err, apperrors.ErrUnmappedGrade) || !grade.Valid() {
		return 0, false, err
	}

	switch c.policy {
	case PolicyZero:
		return 0, true, nil
	case PolicyExclude:
		return 0, false, nil
	default:
		return 0, false, err
	}
}
