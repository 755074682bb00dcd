package models

// ScoredRecord is a grade record annotated with its derived point value.
// Counted is false when the record was left out of the averages.
type ScoredRecord struct {
	GradeRecord
	Score   float64 `json:"score" example:"3.5"`
	Counted bool    `json:"counted" example:"true"`
}

// Totals is the result of aggregating one record set
type Totals struct {
	TotalCredit int     `json:"totalCredit" example:"5"`
	TotalScore  float64 `json:"totalScore" example:"18"`
	GPA         float64 `json:"gpa" example:"3.6"`
}

// GpaReport answers "what is the GPA for a term and the GPAX through it"
type GpaReport struct {
	Term             Term           `json:"term"`
	TermRecords      []ScoredRecord `json:"termRecords"`
	TotalCredit      int            `json:"totalCredit"`
	TotalScore       float64        `json:"totalScore"`
	GPA              float64        `json:"gpa"`
	CumulativeCredit int            `json:"cumulativeCredit"`
	CumulativeScore  float64        `json:"cumulativeScore"`
	GPAX             float64        `json:"gpax"`
}
