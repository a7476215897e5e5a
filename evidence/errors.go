package evidence

import "fmt"

// LogicError reports a condition that must surface to the caller
// rather than silently producing a wrong score: spanning-pair evidence
// is present for a fragment, yet both allele likelihoods came back
// zero. It carries the offending fragment id for diagnosis.
type LogicError struct {
	FragmentID string
	Reason     string
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("evidence: logic error for fragment %q: %s", e.FragmentID, e.Reason)
}
