package grading

import (
	"fmt"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// Split partitions the transcript for target into the records of that exact
// term and the records of every term up to and including it. Both slices are
// fresh copies in transcript order; termRecords is always a subset of
// cumulativeRecords. A target with no records fails with ErrInvalidTerm.
func Split(transcript *models.Transcript, target models.Term) (termRecords, cumulativeRecords []models.GradeRecord, err error) {
	if transcript == nil {
		return nil, nil, fmt.Errorf("%w: %s (empty transcript)", apperrors.ErrInvalidTerm, target)
	}

	termRecords = []models.GradeRecord{}
	cumulativeRecords = []models.GradeRecord{}

	for _, r := range transcript.Records() {
		term, err := r.Term()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
		}
		if !term.AtOrBefore(target) {
			continue
		}
		cumulativeRecords = append(cumulativeRecords, r)
		if term == target {
			termRecords = append(termRecords, r)
		}
	}

	if len(termRecords) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidTerm, target)
	}

	return termRecords, cumulativeRecords, nil
}
