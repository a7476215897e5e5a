// Package align implements ungapped split-read alignment against a
// reference or contig template: given a read and a candidate breakend
// offset within a template sequence, slide the read across a small
// window and report whether the best placement is good enough, and
// anchored enough, to count as split-read evidence for that breakend.
package align

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

const (
	// MinReadLength is the shortest read Align will attempt to place;
	// anything shorter returns a null alignment under the uniform prior.
	MinReadLength = 20

	// MinAnchorLength is how many bases the best placement must cover
	// on *each* side of the template offset to count as spanning it.
	MinAnchorLength = 8

	// WindowRadius bounds how far from templateOffset the slide search
	// looks for a placement start.
	WindowRadius = 15

	// QualityFloorPerBase is the minimum average per-base log-likelihood
	// the best placement must clear; below this, the placement is
	// treated as noise even if anchored.
	QualityFloorPerBase = -0.6

	// qualClampLo/Hi bound the Phred qualities fed into the probability
	// model.
	qualClampLo byte = 2
	qualClampHi byte = 40
)

// Alignment is the result of aligning one read against one template at
// one offset.
type Alignment struct {
	HasEvidence  bool
	Evidence     float64
	AlignLnLhood float64
}

// Aligner holds the (implementation-chosen) scoring constants so tests
// can tune them without touching global state.
type Aligner struct {
	MinReadLength       int
	MinAnchorLength     int
	WindowRadius        int
	QualityFloorPerBase float64
}

// New returns an Aligner configured with the package defaults.
func New() *Aligner {
	return &Aligner{
		MinReadLength:       MinReadLength,
		MinAnchorLength:     MinAnchorLength,
		WindowRadius:        WindowRadius,
		QualityFloorPerBase: QualityFloorPerBase,
	}
}

// Align slides readBases across template around templateOffset and
// returns the best placement's evidence. template and readBases are
// opaque ASCII nucleotide byte strings; readQuals are Phred-scaled
// (not ASCII-offset).
func (a *Aligner) Align(readBases string, readQuals []byte, template []byte, templateOffset int32) Alignment {
	n := len(readBases)
	uniform := Alignment{HasEvidence: false, Evidence: 0, AlignLnLhood: float64(n) * math.Log(0.25)}

	if n < a.MinReadLength || n > len(template) {
		return uniform
	}

	maxStart := len(template) - n
	lo := int(templateOffset) - a.WindowRadius
	hi := int(templateOffset) + a.WindowRadius
	if lo < 0 {
		lo = 0
	}
	if hi > maxStart {
		hi = maxStart
	}
	if lo > maxStart {
		lo = maxStart
	}
	if hi < 0 {
		hi = 0
	}
	if lo > hi {
		return uniform
	}

	type placement struct {
		start   int
		lnLhood float64
	}
	var best, second placement
	best.lnLhood = math.Inf(-1)
	second.lnLhood = math.Inf(-1)

	for start := lo; start <= hi; start++ {
		ln := scorePlacement(readBases, readQuals, template, start)
		if ln > best.lnLhood {
			second = best
			best = placement{start, ln}
		} else if ln > second.lnLhood {
			second = placement{start, ln}
		}
	}

	if math.IsInf(best.lnLhood, -1) {
		return uniform
	}

	evidence := best.lnLhood - second.lnLhood
	if math.IsInf(second.lnLhood, -1) {
		evidence = best.lnLhood - uniform.AlignLnLhood
	}
	if evidence < 0 {
		evidence = 0
	}

	anchored := spansOffset(readBases, template, best.start, int(templateOffset), a.MinAnchorLength)
	aboveFloor := best.lnLhood >= a.QualityFloorPerBase*float64(n)

	result := Alignment{AlignLnLhood: best.lnLhood}
	if anchored && aboveFloor && evidence > 0 {
		result.HasEvidence = true
		result.Evidence = evidence
	}
	return result
}

// scorePlacement computes the ungapped log-likelihood of readBases
// placed at template[start:start+len(readBases)] under a per-base
// Phred error model: log(1-e) on a match, log(e/3) on a mismatch, where
// e = 10^(-q/10).
func scorePlacement(readBases string, readQuals []byte, template []byte, start int) float64 {
	var ln float64
	for i := 0; i < len(readBases); i++ {
		q := byte(30)
		if i < len(readQuals) {
			q = readQuals[i]
		}
		if q < qualClampLo {
			q = qualClampLo
		} else if q > qualClampHi {
			q = qualClampHi
		}
		errProb := math.Pow(10, -float64(q)/10)
		if readBases[i] == template[start+i] {
			ln += math.Log(1 - errProb)
		} else {
			ln += math.Log(errProb / 3)
		}
	}
	return ln
}

// spansOffset reports whether the placement of readBases at
// template[start:] has at least minAnchor matching bases strictly
// before offset and at least minAnchor at-or-after it. Matching
// positions are tracked with a bitset; a flank built out of mismatches
// is not real anchoring support.
func spansOffset(readBases string, template []byte, start, offset, minAnchor int) bool {
	length := len(readBases)
	matches := bitset.New(uint(length))
	for i := 0; i < length; i++ {
		if readBases[i] == template[start+i] {
			matches.Set(uint(i))
		}
	}
	var left, right uint
	for i := 0; i < length; i++ {
		if !matches.Test(uint(i)) {
			continue
		}
		if start+i < offset {
			left++
		} else {
			right++
		}
	}
	return left >= uint(minAnchor) && right >= uint(minAnchor)
}
