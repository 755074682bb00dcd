package grading

import (
	"fmt"
	"strings"
)

// UnmappedPolicy decides what happens to a record whose grade is on the
// alphabet but has no point value (F).
type UnmappedPolicy string

const (
	// PolicyAbort fails the whole aggregation with ErrUnmappedGrade
	PolicyAbort UnmappedPolicy = "abort"
	// PolicyZero counts the record's credit with 0.0 points
	PolicyZero UnmappedPolicy = "zero"
	// PolicyExclude leaves the record out of both credit and score
	PolicyExclude UnmappedPolicy = "exclude"
)

// DefaultPolicy is used when nothing is configured
const DefaultPolicy = PolicyAbort

// ParsePolicy converts a configured policy name
func ParsePolicy(name string) (UnmappedPolicy, error) {
	switch p := UnmappedPolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return DefaultPolicy, nil
	case PolicyAbort, PolicyZero, PolicyExclude:
		return p, nil
	default:
		return "", fmt.Errorf("unknown unmapped grade policy %q", name)
	}
}
