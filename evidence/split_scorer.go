package evidence

import (
	"fmt"

	"github.com/nuvioscore/svscore/align"
	"github.com/nuvioscore/svscore/depthfilter"
	"github.com/nuvioscore/svscore/scan"
	"github.com/nuvioscore/svscore/svtypes"
)

// MaxDepthSplitReadFactor is the multiple of the chromosome max-depth
// threshold above which split-read analysis is skipped entirely.
const MaxDepthSplitReadFactor = 2

// SampleStream couples one input's alignment stream, whether it is the
// tumor sample, and the per-sample counts the split-read scorer
// populates.
type SampleStream struct {
	Stream  scan.AlignmentStream
	Store   *Store
	IsTumor bool
	Info    *SampleInfo
}

// ScoreSplitReadSupport scans both breakend regions for each sample and
// populates each sample's FragmentEvidenceStore via the split-read
// aligner.
//
// It is a no-op when the SV is imprecise, or when both a diploid and a
// somatic depth filter are enabled and either breakend's observed depth
// exceeds MaxDepthSplitReadFactor times the higher of the two filters'
// per-chromosome threshold.
func ScoreSplitReadSupport(
	sv svtypes.SVCandidate,
	svAlignInfo svtypes.SVAlignmentInfo,
	baseInfo *SVScoreInfo,
	minMapQ uint,
	diploidFilter, somaticFilter depthfilter.ChromDepthFilter,
	samples []SampleStream,
	aligner *align.Aligner,
) error {
	if !sv.Precise {
		return nil
	}
	if isSkipSRSearchDepth(sv, baseInfo, diploidFilter, somaticFilter) {
		return nil
	}

	for i := range samples {
		s := &samples[i]
		// ordering within one SV is deterministic: bp1 before bp2, so
		// duplicate-visit suppression below is well defined.
		if err := scoreBreakend(sv.BP1, svAlignInfo, minMapQ, s, aligner); err != nil {
			return fmt.Errorf("evidence: scoring bp1 split reads: %w", err)
		}
		if err := scoreBreakend(sv.BP2, svAlignInfo, minMapQ, s, aligner); err != nil {
			return fmt.Errorf("evidence: scoring bp2 split reads: %w", err)
		}
	}

	for i := range samples {
		samples[i].Info.Alt.Finalize()
		samples[i].Info.Ref.Finalize()
	}
	return nil
}

func isSkipSRSearchDepth(sv svtypes.SVCandidate, baseInfo *SVScoreInfo, diploidFilter, somaticFilter depthfilter.ChromDepthFilter) bool {
	if diploidFilter == nil || somaticFilter == nil || !diploidFilter.IsEnabled() || !somaticFilter.IsEnabled() {
		return false
	}
	bp1Max := maxFloat(diploidFilter.MaxDepth(sv.BP1.Interval.Tid), somaticFilter.MaxDepth(sv.BP1.Interval.Tid))
	bp2Max := maxFloat(diploidFilter.MaxDepth(sv.BP2.Interval.Tid), somaticFilter.MaxDepth(sv.BP2.Interval.Tid))
	return float64(baseInfo.BP1MaxDepth) > MaxDepthSplitReadFactor*bp1Max ||
		float64(baseInfo.BP2MaxDepth) > MaxDepthSplitReadFactor*bp2Max
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// scoreBreakend scans the records overlapping bp and folds each one
// into sample.Store.
func scoreBreakend(bp svtypes.Breakend, svAlignInfo svtypes.SVAlignmentInfo, minMapQ uint, sample *SampleStream, aligner *align.Aligner) error {
	if err := sample.Stream.SetRegion(bp.Interval.Tid, bp.Interval.Begin, bp.Interval.End); err != nil {
		return err
	}

	for sample.Stream.Next() {
		rec := sample.Stream.Current()
		if rec.IsFiltered() || rec.IsDup() || rec.IsSecondary() || rec.IsSupplementary() {
			continue
		}

		frag := sample.Store.Get(rec.FragmentID())
		isFirst := rec.IsFirstInPair()
		setReadEvidence(minMapQ, rec, frag.GetRead(isFirst))

		altBP1 := frag.Alt.BP1.GetRead(isFirst)
		refBP1 := frag.Ref.BP1.GetRead(isFirst)
		altBP2 := frag.Alt.BP2.GetRead(isFirst)
		refBP2 := frag.Ref.BP2.GetRead(isFirst)

		// Evaluating bp1's region also decides bp2's cells, so a second
		// visit of the same (fragment, read) from either breakend's
		// region is a no-op.
		if altBP1.IsSplitEvaluated {
			continue
		}
		altBP1.IsSplitEvaluated = true
		refBP1.IsSplitEvaluated = true
		altBP2.IsSplitEvaluated = true
		refBP2.IsSplitEvaluated = true

		bp1ContigSR := aligner.Align(rec.SEQ, rec.QUAL, svAlignInfo.BP1.ContigSeq, svAlignInfo.BP1.ContigOffset)
		bp2ContigSR := aligner.Align(rec.SEQ, rec.QUAL, svAlignInfo.BP2.ContigSeq, svAlignInfo.BP2.ContigOffset)
		bp1RefSR := aligner.Align(rec.SEQ, rec.QUAL, svAlignInfo.BP1.ReferenceSeq, svAlignInfo.BP1.ReferenceOffset)
		bp2RefSR := aligner.Align(rec.SEQ, rec.QUAL, svAlignInfo.BP2.ReferenceSeq, svAlignInfo.BP2.ReferenceOffset)

		incrementAlleleEvidence(bp1ContigSR, bp2ContigSR, uint(rec.MAPQ), &sample.Info.Alt, altBP1, altBP2)
		incrementAlleleEvidence(bp1RefSR, bp2RefSR, uint(rec.MAPQ), &sample.Info.Ref, refBP1, refBP2)
	}
	return sample.Stream.Err()
}

func setReadEvidence(minMapQ uint, rec *scan.Record, readState *FragmentRead) {
	readState.ObservedAnchor = !rec.IsUnmapped() && uint(rec.MAPQ) >= minMapQ
}

// incrementAlleleEvidence folds one read's two breakend alignments into
// the allele-level counts and the per-read evidence cells.
func incrementAlleleEvidence(
	bp1SR, bp2SR align.Alignment,
	mapQ uint,
	allele *SampleAlleleCounts,
	bp1Cell, bp2Cell *PerReadAlleleBreakendEvidence,
) {
	var bp1Evidence, bp2Evidence float64

	if bp1SR.HasEvidence {
		bp1Evidence = bp1SR.Evidence
		bp1Cell.IsSplitSupport = true
		bp1Cell.SplitEvidence = bp1Evidence
		allele.BP1SpanReadCount++
	}
	bp1Cell.SplitLnLhood = bp1SR.AlignLnLhood

	if bp2SR.HasEvidence {
		bp2Evidence = bp2SR.Evidence
		bp2Cell.IsSplitSupport = true
		bp2Cell.SplitEvidence = bp2Evidence
		allele.BP2SpanReadCount++
	}
	bp2Cell.SplitLnLhood = bp2SR.AlignLnLhood

	if bp1SR.HasEvidence || bp2SR.HasEvidence {
		evidence := bp1Evidence
		if bp2Evidence > evidence {
			evidence = bp2Evidence
		}
		allele.SplitReadCount++
		allele.SplitReadEvidence += evidence
		allele.SplitReadMapQ += float64(mapQ) * float64(mapQ)
	}
}
