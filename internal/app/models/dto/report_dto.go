package dto

import "github.com/yigit/gradebook/internal/app/models"

// ScoredRecordResponse is a term record with its resolved point value
type ScoredRecordResponse struct {
	GradeRecordResponse
	Score   float64 `json:"score" example:"3.5"`
	Counted bool    `json:"counted" example:"true"`
}

// GpaReportResponse is the body of GET /reports
type GpaReportResponse struct {
	Term             TermResponse           `json:"term"`
	Records          []ScoredRecordResponse `json:"records"`
	TotalCredit      int                    `json:"totalCredit" example:"18"`
	TotalScore       float64                `json:"totalScore" example:"61.5"`
	GPA              float64                `json:"gpa" example:"3.41"`
	CumulativeCredit int                    `json:"cumulativeCredit" example:"72"`
	CumulativeScore  float64                `json:"cumulativeScore" example:"240"`
	GPAX             float64                `json:"gpax" example:"3.33"`
}

// NewGpaReportResponse converts a report
func NewGpaReportResponse(r *models.GpaReport) GpaReportResponse {
	records := make([]ScoredRecordResponse, 0, len(r.TermRecords))
	for _, sr := range r.TermRecords {
		records = append(records, ScoredRecordResponse{
			GradeRecordResponse: NewGradeRecordResponse(sr.GradeRecord),
			Score:               sr.Score,
			Counted:             sr.Counted,
		})
	}

	return GpaReportResponse{
		Term:             NewTermResponses([]models.Term{r.Term})[0],
		Records:          records,
		TotalCredit:      r.TotalCredit,
		TotalScore:       r.TotalScore,
		GPA:              r.GPA,
		CumulativeCredit: r.CumulativeCredit,
		CumulativeScore:  r.CumulativeScore,
		GPAX:             r.GPAX,
	}
}
