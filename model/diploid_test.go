package model

import (
	"testing"

	"github.com/nuvioscore/svscore/evidence"
	"github.com/nuvioscore/svscore/svtypes"
)

func supportedFragment(altFragProb, refFragProb float64) *evidence.FragmentEvidence {
	fe := &evidence.FragmentEvidence{}
	fe.Read1.ObservedAnchor = true
	fe.Read2.ObservedAnchor = true
	fe.Alt.BP1.Read1.IsFragmentSupport = true
	fe.Alt.BP1.Read1.FragLengthProb = altFragProb
	fe.Ref.BP1.Read1.IsFragmentSupport = true
	fe.Ref.BP1.Read1.FragLengthProb = refFragProb
	return fe
}

func TestScoreDiploidCallsHomAltOnStrongAltSupport(t *testing.T) {
	store := evidence.NewStore()
	for i := 0; i < 10; i++ {
		*store.Get("frag" + string(rune('a'+i))) = *supportedFragment(0.95, 0.01)
	}

	base := &evidence.SVScoreInfo{}
	sv := svtypes.SVCandidate{}
	info := ScoreDiploid(DefaultDiploidOptions(), DefaultDiploidPriors(), sv, nil, store, base)

	if info.GT != HomAlt {
		t.Fatalf("expected HOMALT with strong, uniform alt support, got %v", info.GT)
	}
	if info.AltScore <= 0 {
		t.Fatalf("expected a positive alt score, got %v", info.AltScore)
	}
}

func TestScoreDiploidCallsHomRefOnNoSupport(t *testing.T) {
	store := evidence.NewStore()
	base := &evidence.SVScoreInfo{}
	sv := svtypes.SVCandidate{}
	info := ScoreDiploid(DefaultDiploidOptions(), DefaultDiploidPriors(), sv, nil, store, base)

	if info.GT != HomRef {
		t.Fatalf("expected HOMREF with no fragment evidence at all, got %v", info.GT)
	}
}

func TestScoreDiploidMaxDepthFilter(t *testing.T) {
	store := evidence.NewStore()
	base := &evidence.SVScoreInfo{BP1MaxDepth: 1000}
	sv := svtypes.SVCandidate{}
	filter := constDepthFilter{max: 10}

	opts := DefaultDiploidOptions()
	opts.MinOutputAltScore = -1 // force filters to always be evaluated
	info := ScoreDiploid(opts, DefaultDiploidPriors(), sv, nil, store, base)
	_ = info // baseline call without filter, to contrast below

	infoFiltered := ScoreDiploid(opts, DefaultDiploidPriors(), sv, filter, store, base)
	found := false
	for _, f := range infoFiltered.Filters {
		if f == DiploidFilterMaxDepth {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MaxDepth filter when bp1 depth exceeds threshold, got %v", infoFiltered.Filters)
	}
}

type constDepthFilter struct{ max float64 }

func (c constDepthFilter) IsEnabled() bool          { return true }
func (c constDepthFilter) MaxDepth(tid int32) float64 { return c.max }
