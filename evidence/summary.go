package evidence

import "math"

// SplitSupportProb is the normalized-probability threshold a winning
// allele's split-read likelihood must clear to count as a confident
// split read.
const SplitSupportProb = 0.999

// PairSupportProb is the analogous threshold for spanning pairs.
const PairSupportProb = 0.9

// Summarize derives SampleAlleleCounts.Confident{SplitRead,SpanningPair}Count
// for every fragment in store, applying both conservative rules: a
// read/fragment only counts once its winning allele's posterior
// probability clears the configured threshold.
func Summarize(store *Store, sample *SampleInfo) error {
	var firstErr error
	store.Range(func(fragmentID string, fe *FragmentEvidence) {
		addConservativeSplitReadSupport(fe, true, sample)
		addConservativeSplitReadSupport(fe, false, sample)
		if err := addConservativeSpanningPairSupport(fragmentID, fe, sample); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}

// lnToProb converts two competing log-likelihoods into normalized
// probabilities: lower/higher are log-likelihoods on entry, normalized
// probabilities on return.
func lnToProb(lower, higher float64) (lowerProb, higherProb float64) {
	lowerProb = math.Exp(lower - higher)
	higherProb = 1 / (lowerProb + 1)
	lowerProb = lowerProb / (lowerProb + 1)
	return lowerProb, higherProb
}

func addConservativeSplitReadSupport(fe *FragmentEvidence, isRead1 bool, sample *SampleInfo) {
	if !fe.IsAnySplitSupportForRead(isRead1) {
		return
	}

	altLn := math.Max(fe.Alt.BP1.GetRead(isRead1).SplitLnLhood, fe.Alt.BP2.GetRead(isRead1).SplitLnLhood)
	refLn := math.Max(fe.Ref.BP1.GetRead(isRead1).SplitLnLhood, fe.Ref.BP2.GetRead(isRead1).SplitLnLhood)

	if altLn > refLn {
		_, altProb := lnToProb(refLn, altLn)
		if altProb > SplitSupportProb {
			sample.Alt.ConfidentSplitReadCount++
		}
	} else {
		_, refProb := lnToProb(altLn, refLn)
		if refProb > SplitSupportProb {
			sample.Ref.ConfidentSplitReadCount++
		}
	}
}

// spanningPairAlleleLhood is the allele-level fragment-pair likelihood:
// the larger of the two breakends' frag length probabilities among
// those with fragment support.
func spanningPairAlleleLhood(a *Allele) float64 {
	var fragProb float64
	if a.BP1.Read1.IsFragmentSupport {
		fragProb = a.BP1.Read1.FragLengthProb
	}
	if a.BP2.Read1.IsFragmentSupport && a.BP2.Read1.FragLengthProb > fragProb {
		fragProb = a.BP2.Read1.FragLengthProb
	}
	return fragProb
}

func addConservativeSpanningPairSupport(fragmentID string, fe *FragmentEvidence, sample *SampleInfo) error {
	if !fe.IsAnyPairSupport() {
		return nil
	}
	if !(fe.Read1.ObservedAnchor && fe.Read2.ObservedAnchor) {
		return nil
	}

	altLhood := spanningPairAlleleLhood(&fe.Alt)
	refLhood := spanningPairAlleleLhood(&fe.Ref)

	if altLhood < 0 || refLhood < 0 {
		panic("evidence: spanning-pair likelihood must be non-negative")
	}
	if altLhood <= 0 && refLhood <= 0 {
		return &LogicError{FragmentID: fragmentID, Reason: "spanning likelihood is zero for all alleles"}
	}

	sum := altLhood + refLhood
	if altLhood > refLhood {
		if (altLhood / sum) > PairSupportProb {
			sample.Alt.ConfidentSpanningPairCount++
		}
	} else {
		if (refLhood / sum) > PairSupportProb {
			sample.Ref.ConfidentSpanningPairCount++
		}
	}
	return nil
}
