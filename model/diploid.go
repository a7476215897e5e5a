// Package model implements the two genotyping models layered on top of
// the model-neutral evidence summary: a diploid germline caller and a
// somatic (tumor/normal) caller.
package model

import (
	"math"

	"github.com/nuvioscore/svscore/depthfilter"
	"github.com/nuvioscore/svscore/evidence"
	"github.com/nuvioscore/svscore/phredmath"
	"github.com/nuvioscore/svscore/svtypes"
	"gonum.org/v1/gonum/floats"
)

// Genotype enumerates the three diploid calls this model can report.
type Genotype int

const (
	HomRef Genotype = iota
	Het
	HomAlt
)

func (g Genotype) String() string {
	switch g {
	case HomRef:
		return "HOMREF"
	case Het:
		return "HET"
	case HomAlt:
		return "HOMALT"
	default:
		return "UNKNOWN"
	}
}

// altFraction is the expected alt-allele read fraction under each
// genotype.
func (g Genotype) altFraction() float64 {
	switch g {
	case HomRef:
		return 0
	case Het:
		return 0.5
	case HomAlt:
		return 1
	default:
		return 0
	}
}

var allGenotypes = []Genotype{HomRef, Het, HomAlt}

// DiploidPriors holds the log-prior for each genotype. DefaultDiploidPriors
// gives a conservative germline SV prior: most loci are homozygous
// reference, with a modest prior mass on heterozygous and a smaller
// share on homozygous alt.
type DiploidPriors struct {
	LogPrior [3]float64
}

// DefaultDiploidPriors returns {0.998, 0.0015, 0.0005} normalized into
// log-space, a judgment call in the absence of a cohort-derived prior
// table.
func DefaultDiploidPriors() DiploidPriors {
	raw := []float64{0.998, 0.0015, 0.0005}
	var p DiploidPriors
	for i, v := range raw {
		p.LogPrior[i] = math.Log(v)
	}
	return p
}

// chimeraProb is the prior probability that any given spanning-pair
// signal is spurious (arises independent of the true allele), used to
// pull every allele likelihood toward a floor instead of letting a
// single contaminated fragment veto a genotype outright.
var chimeraProb = phredmath.NewProbSet(1e-3)

// DiploidFilterMaxDepth and DiploidFilterMinGT are the filter labels
// ScoreDiploid attaches to DiploidScoreInfo.Filters.
const (
	DiploidFilterMaxDepth = "MaxDepth"
	DiploidFilterMinGT    = "MinGQ"
)

// DiploidOptions bounds when ScoreDiploid's filters apply.
type DiploidOptions struct {
	MinOutputAltScore float64
	MinGTScoreFilter  float64
}

// DefaultDiploidOptions mirrors conservative defaults: any nonzero alt
// score is reported, and genotype quality below 15 is flagged.
func DefaultDiploidOptions() DiploidOptions {
	return DiploidOptions{MinOutputAltScore: 0, MinGTScoreFilter: 15}
}

// DiploidScoreInfo is the diploid model's verdict for one SV.
type DiploidScoreInfo struct {
	GT       Genotype
	AltScore float64
	GtScore  float64
	Filters  []string
}

// alleleLhood accumulates, for one fragment, the multiplicative
// likelihood contributions for the spanning-pair signal under each of
// the ref and alt alleles. Both start at 1 (the multiplicative
// identity) and are updated once per fragment that has anchored pair
// support.
type alleleLhood struct {
	fragPair float64
}

func newAlleleLhood() alleleLhood { return alleleLhood{fragPair: 1} }

// incrementSpanningPairAlleleLhood folds one fragment's pair evidence
// for allele into bpLhood, blending in the chimera floor so a single
// contaminated fragment cannot zero out the running product.
func incrementSpanningPairAlleleLhood(chimera phredmath.ProbSet, allele *evidence.Allele, bpLhood *float64) {
	fragProb := spanningPairAlleleLhood(allele)
	*bpLhood *= chimera.Comp*fragProb + chimera.Prob
}

func spanningPairAlleleLhood(a *evidence.Allele) float64 {
	var fragProb float64
	if a.BP1.Read1.IsFragmentSupport {
		fragProb = a.BP1.Read1.FragLengthProb
	}
	if a.BP2.Read1.IsFragmentSupport && a.BP2.Read1.FragLengthProb > fragProb {
		fragProb = a.BP2.Read1.FragLengthProb
	}
	return fragProb
}

// incrementSplitReadLhoodUnused sketches a per-read split-read
// likelihood term keyed off a constant mapping-error prior. It is not
// wired into ScoreDiploid: the split-read signal is already folded
// into ConfidentSplitReadCount via the evidence summarizer, and mixing
// a second, raw per-read split likelihood into the same genotype model
// double-counts that evidence without a clear combination rule. Kept
// here as a documented dead end rather than deleted, in case a future
// revision separates the two signal paths.
func incrementSplitReadLhoodUnused(fe *evidence.FragmentEvidence, isRead1 bool, refSplitLhood, altSplitLhood *float64) {
	if !fe.IsAnySplitSupportForRead(isRead1) {
		return
	}
	const mapProb = 1e-6
	const mapComp = 1 - mapProb
	refAlign := math.Max(fe.Ref.BP1.GetRead(isRead1).SplitLnLhood, fe.Ref.BP2.GetRead(isRead1).SplitLnLhood)
	altAlign := math.Max(fe.Alt.BP1.GetRead(isRead1).SplitLnLhood, fe.Alt.BP2.GetRead(isRead1).SplitLnLhood)
	*refSplitLhood *= mapComp*math.Exp(refAlign) + mapProb
	*altSplitLhood *= mapComp*math.Exp(altAlign) + mapProb
}

// ScoreDiploid is the diploid germline model: it derives a genotype
// call, an alt-presence quality, and a genotype quality from the
// normal sample's fragment evidence store, then applies the depth and
// genotype-quality filters.
func ScoreDiploid(
	opts DiploidOptions,
	priors DiploidPriors,
	sv svtypes.SVCandidate,
	depthFilter depthfilter.ChromDepthFilter,
	normalStore *evidence.Store,
	baseInfo *evidence.SVScoreInfo,
) DiploidScoreInfo {
	var info DiploidScoreInfo

	logLhood := make([]float64, len(allGenotypes))

	normalStore.Range(func(_ string, fe *evidence.FragmentEvidence) {
		if !(fe.Read1.ObservedAnchor && fe.Read2.ObservedAnchor) {
			return
		}
		if !fe.IsAnyPairSupport() {
			return
		}

		refProbs := newAlleleLhood()
		altProbs := newAlleleLhood()
		incrementSpanningPairAlleleLhood(chimeraProb, &fe.Ref, &refProbs.fragPair)
		incrementSpanningPairAlleleLhood(chimeraProb, &fe.Alt, &altProbs.fragPair)

		for i, gt := range allGenotypes {
			altFrac := gt.altFraction()
			refLhood := refProbs.fragPair * (1 - altFrac)
			altLhood := altProbs.fragPair * altFrac
			logLhood[i] += math.Log(refLhood + altLhood)
		}
	})

	pprob := make([]float64, len(allGenotypes))
	for i := range allGenotypes {
		pprob[i] = logLhood[i] + priors.LogPrior[i]
	}

	maxGt := floats.MaxIdx(pprob)
	normalizeLnDistro(pprob)

	info.GT = allGenotypes[maxGt]
	info.AltScore = phredmath.ErrorProbToQPhred(pprob[HomRef])
	info.GtScore = phredmath.ErrorProbToQPhred(1 - pprob[maxGt])

	if info.AltScore >= opts.MinOutputAltScore {
		if depthFilter != nil && depthFilter.IsEnabled() {
			if float64(baseInfo.BP1MaxDepth) > depthFilter.MaxDepth(sv.BP1.Interval.Tid) {
				info.Filters = append(info.Filters, DiploidFilterMaxDepth)
			} else if float64(baseInfo.BP2MaxDepth) > depthFilter.MaxDepth(sv.BP2.Interval.Tid) {
				info.Filters = append(info.Filters, DiploidFilterMaxDepth)
			}
		}
		if info.GtScore < opts.MinGTScoreFilter {
			info.Filters = append(info.Filters, DiploidFilterMinGT)
		}
	}

	return info
}

// normalizeLnDistro converts a slice of unnormalized log-probabilities
// into a normalized linear probability distribution in place, using
// gonum's log-sum-exp so the exponentiation step stays numerically
// stable even when the inputs span a wide dynamic range.
func normalizeLnDistro(lnProb []float64) {
	logSum := floats.LogSumExp(lnProb)
	for i := range lnProb {
		lnProb[i] = math.Exp(lnProb[i] - logSum)
	}
}
