package grading

import (
	"fmt"

	"github.com/yigit/gradebook/internal/app/models"
)

// Aggregator answers "what is the GPA for term X and the GPAX through term X"
type Aggregator struct {
	calc *Calculator
}

// NewAggregator creates an aggregator backed by calc
func NewAggregator(calc *Calculator) *Aggregator {
	return &Aggregator{calc: calc}
}

// Report builds the GPA report for year/semester. It is read-only and
// idempotent; on any error no partial report is returned.
func (a *Aggregator) Report(transcript *models.Transcript, year, semester int) (*models.GpaReport, error) {
	target := models.Term{Year: year, Semester: semester}

	termRecords, cumulativeRecords, err := Split(transcript, target)
	if err != nil {
		return nil, err
	}

	scored, err := a.calc.Score(termRecords)
	if err != nil {
		return nil, err
	}

	termTotals, err := a.calc.Aggregate(termRecords)
	if err != nil {
		return nil, fmt.Errorf("term %s: %w", target, err)
	}

	cumulativeTotals, err := a.calc.Aggregate(cumulativeRecords)
	if err != nil {
		return nil, fmt.Errorf("through term %s: %w", target, err)
	}

	return &models.GpaReport{
		Term:             target,
		TermRecords:      scored,
		TotalCredit:      termTotals.TotalCredit,
		TotalScore:       termTotals.TotalScore,
		GPA:              termTotals.GPA,
		CumulativeCredit: cumulativeTotals.TotalCredit,
		CumulativeScore:  cumulativeTotals.TotalScore,
		GPAX:             cumulativeTotals.GPA,
	}, nil
}
