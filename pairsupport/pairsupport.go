// Package pairsupport defines the spanning-pair evidence contract and
// one concrete implementation. Scorer is the interface a caller
// depends on; GaussianScorer is a reference implementation a caller
// may substitute with something more elaborate.
package pairsupport

import (
	"math"

	"github.com/nuvioscore/svscore/evidence"
	"github.com/nuvioscore/svscore/scan"
	"github.com/nuvioscore/svscore/svtypes"
)

// MinFragSupport is the minimum fragment span (in bases) a read pair
// must cover before it is considered for spanning support at all.
const MinFragSupport = 50

// FragmentStats is the per-read-group fragment-length distribution
// needed to judge whether an observed insert size is consistent with
// the reference or the alt allele. Estimating it from a cohort of
// alignments is a separate concern this package does not take on.
type FragmentStats struct {
	Mean, StdDev float64
}

// prob returns the (linear) density of x under a Normal(mean, stddev),
// or 0 when StdDev is not positive.
func (s FragmentStats) prob(x float64) float64 {
	if s.StdDev <= 0 {
		return 0
	}
	z := (x - s.Mean) / s.StdDev
	p := math.Exp(-0.5*z*z) / (s.StdDev * math.Sqrt(2*math.Pi))
	return p
}

// Scorer is the C5 contract: populate, per fragment, each allele's
// breakend support flag and fragment-length probability, plus each
// read's observed-anchor flag.
type Scorer interface {
	Score(store *evidence.Store, sv svtypes.SVCandidate, baseInfo *evidence.SVScoreInfo, rec1, rec2 *scan.Record) error
}

// GaussianScorer is a reference Scorer: a pair that fails the coarse
// discordance check (isOutwardFacingOrDistant) supports the ref allele
// at both breakends, and a pair that passes it supports the alt allele
// at both breakends, each with that allele's fragment-length density.
// Breakend orientation is not consulted.
type GaussianScorer struct {
	Stats       FragmentStats
	ReadScanner scan.ReadScanner
}

// NewGaussianScorer builds a GaussianScorer from a fragment-length
// distribution and the anchoring predicate shared with split-read
// scoring.
func NewGaussianScorer(stats FragmentStats, rs scan.ReadScanner) *GaussianScorer {
	return &GaussianScorer{Stats: stats, ReadScanner: rs}
}

// Score folds one read pair's insert size into the fragment's evidence:
// it sets ObservedAnchor on both reads and, when the insert size is at
// least MinFragSupport, sets IsFragmentSupport/FragLengthProb on both
// breakends of one allele (ref or alt).
func (g *GaussianScorer) Score(store *evidence.Store, sv svtypes.SVCandidate, baseInfo *evidence.SVScoreInfo, rec1, rec2 *scan.Record) error {
	if rec1 == nil || rec2 == nil {
		return nil
	}
	frag := store.Get(rec1.FragmentID())

	frag.Read1.ObservedAnchor = g.ReadScanner.IsAnchored(rec1)
	frag.Read2.ObservedAnchor = g.ReadScanner.IsAnchored(rec2)

	insertSize := observedInsertSize(rec1, rec2)
	if insertSize < MinFragSupport {
		return nil
	}

	refProb := g.Stats.prob(insertSize)
	altInsertSize := alleleShiftedInsertSize(insertSize, sv)
	altProb := g.Stats.prob(altInsertSize)

	isDiscordant := isOutwardFacingOrDistant(rec1, rec2, g.Stats)

	setBreakendSupport(&frag.Ref.BP1.Read1, !isDiscordant, refProb)
	setBreakendSupport(&frag.Ref.BP2.Read1, !isDiscordant, refProb)
	setBreakendSupport(&frag.Alt.BP1.Read1, isDiscordant, altProb)
	setBreakendSupport(&frag.Alt.BP2.Read1, isDiscordant, altProb)

	return nil
}

func setBreakendSupport(cell *evidence.PerReadAlleleBreakendEvidence, supported bool, prob float64) {
	if supported {
		cell.IsFragmentSupport = true
		cell.FragLengthProb = prob
	}
}

func observedInsertSize(rec1, rec2 *scan.Record) float64 {
	lo, hi := rec1.Pos, rec2.Pos
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(hi - lo)
}

// alleleShiftedInsertSize approximates the insert size a fragment
// "would have had" under the alt allele by correcting the observed span
// for the distance between the two breakend centers.
func alleleShiftedInsertSize(observed float64, sv svtypes.SVCandidate) float64 {
	shift := math.Abs(float64(sv.BP2.CenterPos() - sv.BP1.CenterPos()))
	adjusted := observed - shift
	if adjusted < 0 {
		adjusted = 0
	}
	return adjusted
}

// isOutwardFacingOrDistant is a coarse discordance check: mates on the
// same strand, or an insert size more than four standard deviations
// from the mean, count as alt-supporting.
func isOutwardFacingOrDistant(rec1, rec2 *scan.Record, stats FragmentStats) bool {
	sameStrand := (rec1.FLAG&scan.FlagReversed != 0) == (rec2.FLAG&scan.FlagReversed != 0)
	if sameStrand {
		return true
	}
	insert := observedInsertSize(rec1, rec2)
	return stats.StdDev > 0 && math.Abs(insert-stats.Mean) > 4*stats.StdDev
}
