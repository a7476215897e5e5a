package evidence

import (
	"math"
	"testing"
)

func TestConfidentSplitReadPicksDominantAllele(t *testing.T) {
	fe := &FragmentEvidence{}
	fe.Alt.BP1.Read1.IsSplitSupport = true
	fe.Alt.BP1.Read1.SplitLnLhood = -2
	fe.Ref.BP1.Read1.IsSplitSupport = true
	fe.Ref.BP1.Read1.SplitLnLhood = -20
	// The split scorer always records a log-likelihood on both breakend
	// cells; give BP2 weaker values so the per-allele max is BP1's.
	fe.Alt.BP2.Read1.SplitLnLhood = -30
	fe.Ref.BP2.Read1.SplitLnLhood = -40

	sample := &SampleInfo{}
	addConservativeSplitReadSupport(fe, true, sample)

	if sample.Alt.ConfidentSplitReadCount != 1 {
		t.Fatalf("expected alt confident split read count 1, got %d", sample.Alt.ConfidentSplitReadCount)
	}
	if sample.Ref.ConfidentSplitReadCount != 0 {
		t.Fatalf("expected ref confident split read count 0, got %d", sample.Ref.ConfidentSplitReadCount)
	}
}

func TestConfidentSplitReadSkipsWithNoSupport(t *testing.T) {
	fe := &FragmentEvidence{}
	sample := &SampleInfo{}
	addConservativeSplitReadSupport(fe, true, sample)
	if sample.Alt.ConfidentSplitReadCount != 0 || sample.Ref.ConfidentSplitReadCount != 0 {
		t.Fatalf("expected no counts without any split support")
	}
}

func TestConfidentSpanningPairRequiresBothAnchored(t *testing.T) {
	fe := &FragmentEvidence{}
	fe.Alt.BP1.Read1.IsFragmentSupport = true
	fe.Alt.BP1.Read1.FragLengthProb = 0.9
	fe.Read1.ObservedAnchor = true
	// read2 not anchored
	sample := &SampleInfo{}
	if err := addConservativeSpanningPairSupport("frag1", fe, sample); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sample.Alt.ConfidentSpanningPairCount != 0 {
		t.Fatalf("expected no count when read2 is not anchored")
	}
}

func TestConfidentSpanningPairLogicErrorOnZeroLikelihoods(t *testing.T) {
	fe := &FragmentEvidence{}
	fe.Alt.BP1.Read1.IsFragmentSupport = true
	fe.Alt.BP1.Read1.FragLengthProb = 0
	fe.Read1.ObservedAnchor = true
	fe.Read2.ObservedAnchor = true

	sample := &SampleInfo{}
	err := addConservativeSpanningPairSupport("frag1", fe, sample)
	if err == nil {
		t.Fatal("expected a LogicError when all allele likelihoods are zero despite pair support")
	}
	var logicErr *LogicError
	if !asLogicError(err, &logicErr) {
		t.Fatalf("expected *LogicError, got %T: %v", err, err)
	}
}

func asLogicError(err error, target **LogicError) bool {
	le, ok := err.(*LogicError)
	if ok {
		*target = le
	}
	return ok
}

func TestFinalizeRMS(t *testing.T) {
	c := SampleAlleleCounts{SplitReadCount: 2, SplitReadMapQ: 9 + 16} // mapq 3,4
	c.Finalize()
	want := math.Sqrt(25.0 / 2.0)
	if math.Abs(c.SplitReadMapQ-want) > 1e-9 {
		t.Fatalf("expected rms mapq %v, got %v", want, c.SplitReadMapQ)
	}
}

func TestSplitEvaluatedIsAtomicAcrossFourCells(t *testing.T) {
	fe := &FragmentEvidence{}
	altBP1 := fe.Alt.BP1.GetRead(true)
	refBP1 := fe.Ref.BP1.GetRead(true)
	altBP2 := fe.Alt.BP2.GetRead(true)
	refBP2 := fe.Ref.BP2.GetRead(true)

	if altBP1.IsSplitEvaluated || refBP1.IsSplitEvaluated || altBP2.IsSplitEvaluated || refBP2.IsSplitEvaluated {
		t.Fatal("expected all four cells unevaluated initially")
	}
	altBP1.IsSplitEvaluated = true
	refBP1.IsSplitEvaluated = true
	altBP2.IsSplitEvaluated = true
	refBP2.IsSplitEvaluated = true

	if !(fe.Alt.BP1.GetRead(true).IsSplitEvaluated && fe.Ref.BP1.GetRead(true).IsSplitEvaluated &&
		fe.Alt.BP2.GetRead(true).IsSplitEvaluated && fe.Ref.BP2.GetRead(true).IsSplitEvaluated) {
		t.Fatal("expected all four cells evaluated together")
	}
}
