package model

import (
	"github.com/nuvioscore/svscore/depthfilter"
	"github.com/nuvioscore/svscore/evidence"
	"github.com/nuvioscore/svscore/svtypes"
)

// SomaticFilterMaxDepth is the filter label ScoreSomatic attaches to
// SomaticScoreInfo.Filters when either breakend exceeds its
// chromosome's depth ceiling.
const SomaticFilterMaxDepth = "MaxDepth"

// SomaticOptions bounds when a somatic call is filtered.
type SomaticOptions struct {
	// reserved for future threshold overrides; the rule thresholds
	// below are fixed constants rather than configurable options.
}

// SomaticScoreInfo is the somatic model's verdict for one SV.
type SomaticScoreInfo struct {
	SomaticScore float64
	Filters      []string
}

// ScoreSomatic is the tumor/normal somatic model: a rule-based veto
// chain that starts from "somatic" and falls back to zero quality the
// moment any rule suggests the variant is either present in the normal
// sample or too weakly supported in the tumor to trust.
func ScoreSomatic(
	_ SomaticOptions,
	sv svtypes.SVCandidate,
	depthFilter depthfilter.ChromDepthFilter,
	baseInfo *evidence.SVScoreInfo,
) SomaticScoreInfo {
	var info SomaticScoreInfo

	isNonzero := true

	if baseInfo.Normal.Alt.ConfidentSpanningPairCount > 1 {
		isNonzero = false
	}
	if baseInfo.Normal.Alt.ConfidentSplitReadCount > 5 {
		isNonzero = false
	}

	if isNonzero {
		lowPairSupport := baseInfo.Tumor.Alt.ConfidentSpanningPairCount < 6
		lowSplitSupport := baseInfo.Tumor.Alt.ConfidentSplitReadCount < 6
		lowSingleSupport := baseInfo.Tumor.Alt.BP1SpanReadCount < 14 || baseInfo.Tumor.Alt.BP2SpanReadCount < 14
		highSingleContam := baseInfo.Normal.Alt.BP1SpanReadCount > 1 || baseInfo.Normal.Alt.BP2SpanReadCount > 1

		if (lowPairSupport && lowSplitSupport) && (lowSingleSupport || highSingleContam) {
			isNonzero = false
		}
	}

	if isNonzero {
		if baseInfo.Normal.Alt.ConfidentSpanningPairCount > 0 {
			ratio := float64(baseInfo.Tumor.Alt.ConfidentSpanningPairCount) / float64(baseInfo.Normal.Alt.ConfidentSpanningPairCount)
			if ratio < 9 {
				isNonzero = false
			}
		}
		if baseInfo.Normal.Alt.BP1SpanReadCount > 0 {
			ratio := float64(baseInfo.Tumor.Alt.BP1SpanReadCount) / float64(baseInfo.Normal.Alt.BP1SpanReadCount)
			if ratio < 9 {
				isNonzero = false
			}
		}
		if baseInfo.Normal.Alt.BP2SpanReadCount > 0 {
			ratio := float64(baseInfo.Tumor.Alt.BP2SpanReadCount) / float64(baseInfo.Normal.Alt.BP2SpanReadCount)
			if ratio < 9 {
				isNonzero = false
			}
		}
	}

	if isNonzero {
		normRefPairSupport := baseInfo.Normal.Ref.ConfidentSpanningPairCount > 6
		normRefSplitSupport := baseInfo.Normal.Ref.ConfidentSplitReadCount > 6
		if !(normRefPairSupport || normRefSplitSupport) {
			isNonzero = false
		}
	}

	if isNonzero {
		info.SomaticScore = 60
	}

	if depthFilter != nil && depthFilter.IsEnabled() {
		if float64(baseInfo.BP1MaxDepth) > depthFilter.MaxDepth(sv.BP1.Interval.Tid) {
			info.Filters = append(info.Filters, SomaticFilterMaxDepth)
		} else if float64(baseInfo.BP2MaxDepth) > depthFilter.MaxDepth(sv.BP2.Interval.Tid) {
			info.Filters = append(info.Filters, SomaticFilterMaxDepth)
		}
	}

	return info
}
