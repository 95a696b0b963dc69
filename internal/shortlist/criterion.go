package shortlist

import "context"

// Result is an immutable (verdict, reason) pair produced by a criterion
// evaluator. Reasons are concatenated verbatim into the final rationale and
// never re-parsed.
type Result struct {
	Met    bool
	Reason string
}

// Criterion evaluates one eligibility check for a single applicant. An error
// means the check could not be computed (as opposed to computing a negative
// verdict) and aborts that applicant's processing.
type Criterion interface {
	Name() string
	Evaluate(ctx context.Context, applicantID string) (Result, error)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
