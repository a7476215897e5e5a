// Package phredmath collects the small numeric building blocks shared
// by the diploid and somatic models: Phred-scale conversions and the
// ProbSet helper that precomputes a prior and its complement in both
// linear and log space.
package phredmath

import "math"

// ProbSet records a probability together with its complement and both
// of their natural logs, computed once at construction, so that every
// likelihood increment (e.g. against the chimera prior) reuses the
// precomputed logs instead of recomputing log(1-p) on every fragment.
type ProbSet struct {
	Prob, Comp       float64
	LnProb, LnComp   float64
}

// NewProbSet builds a ProbSet from a probability in [0, 1].
func NewProbSet(prob float64) ProbSet {
	comp := 1 - prob
	return ProbSet{
		Prob:   prob,
		Comp:   comp,
		LnProb: math.Log(prob),
		LnComp: math.Log(comp),
	}
}

// ErrorProbToQPhred converts an error probability to a Phred score:
// −10·log₁₀(p). A probability of exactly 0 maps to +Inf in principle;
// this clamps to a very small floor first so callers always get a
// finite score.
func ErrorProbToQPhred(p float64) float64 {
	const floor = 1e-12
	if p < floor {
		p = floor
	}
	return -10 * math.Log10(p)
}
