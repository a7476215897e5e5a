// Package svtypes holds the data model shared by every scoring
// component: breakend geometry, SV candidates, and the alignment
// evidence (contig vs. reference sequence) used for split-read scoring.
package svtypes

// Orientation tags which side of a breakend is open to the rest of the
// genome.
type Orientation int

const (
	UnknownOrient Orientation = iota
	LeftOpen
	RightOpen
	Complex
)

func (o Orientation) String() string {
	switch o {
	case LeftOpen:
		return "LEFT_OPEN"
	case RightOpen:
		return "RIGHT_OPEN"
	case Complex:
		return "COMPLEX"
	default:
		return "UNKNOWN"
	}
}

// Interval is a half-open genomic range [Begin, End) on a single
// reference sequence (Tid).
type Interval struct {
	Tid        int32
	Begin, End int32
}

// CenterPos is the midpoint position of the interval.
func (iv Interval) CenterPos() int32 {
	return (iv.Begin + iv.End) / 2
}

// Overlaps reports whether pos falls within [Begin, End).
func (iv Interval) Overlaps(pos int32) bool {
	return pos >= iv.Begin && pos < iv.End
}

// Breakend is one end of a structural variant: a genomic interval plus
// an orientation tag.
type Breakend struct {
	Interval Interval
	Orient   Orientation
}

// CenterPos forwards to the underlying interval's midpoint.
func (bp Breakend) CenterPos() int32 {
	return bp.Interval.CenterPos()
}

// SVCandidate is an ordered pair of breakends describing one proposed
// structural variant, plus whether an assembled contig backs it.
type SVCandidate struct {
	BP1, BP2 SVBreakendRef
	Precise  bool
}

// SVBreakendRef is an alias of Breakend, used for the two ends of an
// SVCandidate.
type SVBreakendRef = Breakend

// BreakendAlignment carries the opaque sequence data needed to run
// split-read alignment against one breakend: the assembled contig
// (with the offset of the breakend within it) and the corresponding
// reference window (with its own offset).
type BreakendAlignment struct {
	ContigSeq      []byte
	ContigOffset   int32
	ReferenceSeq   []byte
	ReferenceOffset int32
}

// SVAlignmentInfo is only meaningful for precise SVs: it is the
// contig/reference template pair for each breakend that the split-read
// aligner scores reads against.
type SVAlignmentInfo struct {
	BP1, BP2 BreakendAlignment
}
