package models

import "github.com/google/uuid"

// Transcript is the ordered set of a student's grade records. Order is entry
// order, not term order, and subjects are not required to be unique.
type Transcript struct {
	records []GradeRecord
}

// NewTranscript builds a transcript holding copies of records
func NewTranscript(records ...GradeRecord) *Transcript {
	t := &Transcript{records: make([]GradeRecord, len(records))}
	copy(t.records, records)
	return t
}

// Len returns the number of records
func (t *Transcript) Len() int {
	return len(t.records)
}

// Records returns a copy of the records in entry order
func (t *Transcript) Records() []GradeRecord {
	out := make([]GradeRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Clone returns an independent snapshot of the transcript
func (t *Transcript) Clone() *Transcript {
	return NewTranscript(t.records...)
}

// Append adds a record at the end of the transcript
func (t *Transcript) Append(record GradeRecord) {
	t.records = append(t.records, record)
}

// Find returns the record with the given id
func (t *Transcript) Find(id uuid.UUID) (GradeRecord, bool) {
	for _, r := range t.records {
		if r.ID == id {
			return r, true
		}
	}
	return GradeRecord{}, false
}

// Update applies fn to the record with the given id and reports whether it exists
func (t *Transcript) Update(id uuid.UUID, fn func(*GradeRecord)) bool {
	for i := range t.records {
		if t.records[i].ID == id {
			fn(&t.records[i])
			return true
		}
	}
	return false
}

// UpdateSubject applies fn to every record sharing subject and returns how many changed
func (t *Transcript) UpdateSubject(subject string, fn func(*GradeRecord)) int {
	n := 0
	for i := range t.records {
		if t.records[i].Subject == subject {
			fn(&t.records[i])
			n++
		}
	}
	return n
}

// Subjects returns the distinct subjects in first-appearance order
func (t *Transcript) Subjects() []string {
	seen := make(map[string]struct{}, len(t.records))
	subjects := make([]string, 0, len(t.records))
	for _, r := range t.records {
		if _, ok := seen[r.Subject]; ok {
			continue
		}
		seen[r.Subject] = struct{}{}
		subjects = append(subjects, r.Subject)
	}
	return subjects
}

// Terms returns the distinct terms in first-appearance order. Records whose
// year or semester does not parse are skipped.
func (t *Transcript) Terms() []Term {
	seen := make(map[Term]struct{})
	terms := []Term{}
	for _, r := range t.records {
		term, err := r.Term()
		if err != nil {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

// HasTerm reports whether any record belongs to term
func (t *Transcript) HasTerm(term Term) bool {
	for _, r := range t.records {
		if rt, err := r.Term(); err == nil && rt == term {
			return true
		}
	}
	return false
}
