// Package depth implements the per-breakend mapped-read depth estimate:
// a small pileup over a fixed window around a breakend's center
// position, used both as a standalone depth report and as a
// feasibility gate for split-read scoring.
package depth

import (
	"fmt"

	"github.com/nuvioscore/svscore/scan"
	"github.com/nuvioscore/svscore/svtypes"
)

// RegionHalfWidth is the ±50bp window around a breakend's center used
// for the depth estimate.
const RegionHalfWidth = 50

// Sample groups one alignment stream with whether it belongs to the
// tumor sample.
type Sample struct {
	Stream  scan.AlignmentStream
	IsTumor bool
}

// Estimator computes MaxMappedDepth across a set of input samples.
type Estimator struct {
	Samples []Sample
}

// NewEstimator wraps the samples a scoring pipeline was constructed
// with. At least one non-tumor sample is required — see MaxMappedDepth.
func NewEstimator(samples []Sample) *Estimator {
	return &Estimator{Samples: samples}
}

// MaxMappedDepth returns the maximum per-base mapped-read depth in a
// ±RegionHalfWidth window around bp's center, counted over the first
// normal (non-tumor) sample only: this is a single-sample feasibility
// gate, not a cohort-wide depth statistic.
//
// Soft-clipped, inserted, and deleted bases never increment a counter;
// unmapped reads are skipped. Duplicates are NOT filtered, so the
// depth gate reacts to the same pileup volume a depth-based caller
// would see upstream.
//
// Panics if no normal sample is present.
func (e *Estimator) MaxMappedDepth(bp svtypes.Breakend) (uint, error) {
	center := bp.CenterPos()
	begin := center - RegionHalfWidth
	if begin < 0 {
		begin = 0
	}
	end := center + RegionHalfWidth

	counts := make([]uint, end-begin)

	var normalStream scan.AlignmentStream
	for _, s := range e.Samples {
		if !s.IsTumor {
			normalStream = s.Stream
			break
		}
	}
	if normalStream == nil {
		panic("depth: MaxMappedDepth requires at least one normal (non-tumor) sample")
	}

	if err := normalStream.SetRegion(bp.Interval.Tid, begin, end); err != nil {
		return 0, fmt.Errorf("depth: seeking region: %w", err)
	}

	for normalStream.Next() {
		rec := normalStream.Current()
		if rec.IsUnmapped() {
			continue
		}
		if rec.Pos >= end {
			break
		}
		addToPileup(rec, begin, end, counts)
	}
	if err := normalStream.Err(); err != nil {
		return 0, fmt.Errorf("depth: streaming region: %w", err)
	}

	var max uint
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return max, nil
}

// addToPileup walks rec's CIGAR, incrementing counts for every
// reference position its MATCH segments cover within [begin, end).
func addToPileup(rec *scan.Record, begin, end int32, counts []uint) {
	refPos := rec.Pos
	for _, op := range rec.CIGAR {
		if refPos >= end {
			return
		}
		if op.Op == 'M' || op.Op == '=' || op.Op == 'X' {
			lo := refPos
			if lo < begin {
				lo = begin
			}
			hi := refPos + op.Length
			if hi > end {
				hi = end
			}
			for pos := lo; pos < hi; pos++ {
				counts[pos-begin]++
			}
		}
		if scan.ConsumesReferenceBases(op.Op) {
			refPos += op.Length
		}
	}
}
