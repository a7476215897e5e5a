package evidence

import (
	"strings"
	"testing"

	"github.com/nuvioscore/svscore/align"
	"github.com/nuvioscore/svscore/depthfilter"
	"github.com/nuvioscore/svscore/scan"
	"github.com/nuvioscore/svscore/svtypes"
)

func onePositionBreakend(tid, pos int32) svtypes.Breakend {
	return svtypes.Breakend{Interval: svtypes.Interval{Tid: tid, Begin: pos, End: pos + 1}}
}

func splitReadRecord(name string, pos int32, seq string) *scan.Record {
	quals := make([]byte, len(seq))
	for i := range quals {
		quals[i] = 35
	}
	return &scan.Record{
		QNAME: name,
		FLAG:  0,
		Tid:   0,
		Pos:   pos,
		MAPQ:  60,
		CIGAR: []scan.CigarOp{{Length: int32(len(seq)), Op: 'M'}},
		SEQ:   seq,
		QUAL:  quals,
	}
}

func TestScoreSplitReadSupportSkipsImpreciseSV(t *testing.T) {
	sv := svtypes.SVCandidate{BP1: onePositionBreakend(0, 100), BP2: onePositionBreakend(0, 500), Precise: false}
	base := &SVScoreInfo{}
	stream := scan.NewSliceStream([]*scan.Record{splitReadRecord("r1", 100, strings.Repeat("A", 30))})
	samples := []SampleStream{{Stream: stream, Store: NewStore(), IsTumor: false, Info: &base.Normal}}

	if err := ScoreSplitReadSupport(sv, svtypes.SVAlignmentInfo{}, base, 20, nil, nil, samples, align.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.Normal.Alt.SplitReadCount != 0 {
		t.Fatalf("expected no scoring for an imprecise SV, got split read count %d", base.Normal.Alt.SplitReadCount)
	}
}

type constDepthFilter struct{ max float64 }

func (c constDepthFilter) IsEnabled() bool            { return true }
func (c constDepthFilter) MaxDepth(tid int32) float64 { return c.max }

func TestScoreSplitReadSupportSkipsAtHighDepth(t *testing.T) {
	sv := svtypes.SVCandidate{BP1: onePositionBreakend(0, 100), BP2: onePositionBreakend(0, 500), Precise: true}
	base := &SVScoreInfo{BP1MaxDepth: 1000, BP2MaxDepth: 0}
	stream := scan.NewSliceStream([]*scan.Record{splitReadRecord("r1", 100, strings.Repeat("A", 30))})
	samples := []SampleStream{{Stream: stream, Store: NewStore(), IsTumor: false, Info: &base.Normal}}

	var filter depthfilter.ChromDepthFilter = constDepthFilter{max: 10}
	if err := ScoreSplitReadSupport(sv, svtypes.SVAlignmentInfo{}, base, 20, filter, filter, samples, align.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.Normal.Alt.SplitReadCount != 0 {
		t.Fatalf("expected no scoring when depth exceeds the skip threshold, got %d", base.Normal.Alt.SplitReadCount)
	}
}

func TestScoreSplitReadSupportScoresEachReadOnce(t *testing.T) {
	contig := []byte(strings.Repeat("A", 20) + "G" + strings.Repeat("C", 20))
	reference := []byte(strings.Repeat("A", 41))
	read := strings.Repeat("A", 20) + "G" + strings.Repeat("C", 20)

	sv := svtypes.SVCandidate{BP1: onePositionBreakend(0, 100), BP2: onePositionBreakend(0, 500), Precise: true}
	alignInfo := svtypes.SVAlignmentInfo{
		BP1: svtypes.BreakendAlignment{ContigSeq: contig, ContigOffset: 20, ReferenceSeq: reference, ReferenceOffset: 20},
		BP2: svtypes.BreakendAlignment{ContigSeq: contig, ContigOffset: 20, ReferenceSeq: reference, ReferenceOffset: 20},
	}

	base := &SVScoreInfo{}
	store := NewStore()
	stream := scan.NewSliceStream([]*scan.Record{splitReadRecord("r1", 100, read)})
	samples := []SampleStream{{Stream: stream, Store: store, IsTumor: false, Info: &base.Normal}}

	if err := ScoreSplitReadSupport(sv, alignInfo, base, 20, nil, nil, samples, align.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.Normal.Alt.SplitReadCount != 1 {
		t.Fatalf("expected the one read to be scored exactly once, got %d", base.Normal.Alt.SplitReadCount)
	}

	fe := store.Get("r1")
	if !fe.Alt.BP1.Read1.IsSplitEvaluated {
		t.Fatal("expected the fragment's bp1 cell to be marked evaluated after scoring")
	}
}
