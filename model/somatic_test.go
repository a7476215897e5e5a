package model

import (
	"testing"

	"github.com/nuvioscore/svscore/evidence"
	"github.com/nuvioscore/svscore/svtypes"
)

func strongSomaticBase() *evidence.SVScoreInfo {
	base := &evidence.SVScoreInfo{}
	base.Tumor.Alt.ConfidentSpanningPairCount = 10
	base.Tumor.Alt.ConfidentSplitReadCount = 10
	base.Tumor.Alt.BP1SpanReadCount = 20
	base.Tumor.Alt.BP2SpanReadCount = 20
	base.Normal.Ref.ConfidentSpanningPairCount = 10
	base.Normal.Ref.ConfidentSplitReadCount = 10
	return base
}

func TestScoreSomaticPassesOnCleanTumorOnlySV(t *testing.T) {
	base := strongSomaticBase()
	info := ScoreSomatic(SomaticOptions{}, svtypes.SVCandidate{}, nil, base)
	if info.SomaticScore != 60 {
		t.Fatalf("expected a full somatic score for a clean tumor-only SV, got %v", info.SomaticScore)
	}
}

func TestScoreSomaticVetoedByNormalContamination(t *testing.T) {
	base := strongSomaticBase()
	base.Normal.Alt.ConfidentSpanningPairCount = 2
	info := ScoreSomatic(SomaticOptions{}, svtypes.SVCandidate{}, nil, base)
	if info.SomaticScore != 0 {
		t.Fatalf("expected zero somatic score when the normal sample shows confident alt spanning pairs, got %v", info.SomaticScore)
	}
}

func TestScoreSomaticRequiresNormalRefSupport(t *testing.T) {
	base := strongSomaticBase()
	base.Normal.Ref.ConfidentSpanningPairCount = 0
	base.Normal.Ref.ConfidentSplitReadCount = 0
	info := ScoreSomatic(SomaticOptions{}, svtypes.SVCandidate{}, nil, base)
	if info.SomaticScore != 0 {
		t.Fatalf("expected zero somatic score without any normal reference support, got %v", info.SomaticScore)
	}
}

func TestScoreSomaticMaxDepthFilter(t *testing.T) {
	base := strongSomaticBase()
	base.BP2MaxDepth = 1000
	filter := constDepthFilter{max: 10}
	info := ScoreSomatic(SomaticOptions{}, svtypes.SVCandidate{}, filter, base)

	found := false
	for _, f := range info.Filters {
		if f == SomaticFilterMaxDepth {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MaxDepth filter when bp2 depth exceeds threshold, got %v", info.Filters)
	}
}
