// Package pipeline orchestrates the per-SV scoring sequence: depth
// estimation, spanning-pair evidence, split-read evidence, evidence
// summarization, then the diploid and somatic models, fanning out
// across many SVs in parallel.
package pipeline

import (
	"fmt"

	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"
	"github.com/nuvioscore/svscore/align"
	"github.com/nuvioscore/svscore/depth"
	"github.com/nuvioscore/svscore/depthfilter"
	"github.com/nuvioscore/svscore/evidence"
	"github.com/nuvioscore/svscore/model"
	"github.com/nuvioscore/svscore/pairsupport"
	"github.com/nuvioscore/svscore/scan"
	"github.com/nuvioscore/svscore/svtypes"
)

// SampleSource is one input (normal or tumor), named by a factory
// rather than a live stream: ScoreSV opens a fresh stream per call so
// concurrent SV scoring via ScoreBatch never shares mutable iteration
// state across goroutines. The pipeline holds no stream between calls;
// whether Open reuses an already-open reader or reopens the input each
// time is up to the factory.
type SampleSource struct {
	Name    string
	IsTumor bool
	Open    func() (scan.AlignmentStream, error)
}

// Options configures one Pipeline.
type Options struct {
	MinMapQ        uint
	Aligner        *align.Aligner
	PairScorer     pairsupport.Scorer
	DiploidFilter  depthfilter.ChromDepthFilter
	SomaticFilter  depthfilter.ChromDepthFilter
	DiploidOptions model.DiploidOptions
	DiploidPriors  model.DiploidPriors
	SomaticOptions model.SomaticOptions
	Somatic        bool // whether to run the somatic model at all
}

// Pipeline scores SV candidates against a fixed set of sample sources.
type Pipeline struct {
	Normal, Tumor []SampleSource
	Opts          Options
}

// New builds a Pipeline over the given samples.
func New(samples []SampleSource, opts Options) *Pipeline {
	p := &Pipeline{Opts: opts}
	for _, s := range samples {
		if s.IsTumor {
			p.Tumor = append(p.Tumor, s)
		} else {
			p.Normal = append(p.Normal, s)
		}
	}
	return p
}

// Result is one SV's complete scoring verdict.
type Result struct {
	SV      svtypes.SVCandidate
	TraceID string
	Base    *evidence.SVScoreInfo
	Diploid model.DiploidScoreInfo
	Somatic *model.SomaticScoreInfo
}

// Candidate pairs one SV with the alignment templates its split-read
// scoring needs.
type Candidate struct {
	SV        svtypes.SVCandidate
	AlignInfo svtypes.SVAlignmentInfo
}

// ScoreBatch scores every candidate, fanning the work out across
// available CPUs. Each candidate's evidence accumulation is fully
// independent (fresh stores, fresh streams), so out-of-order
// completion never affects the result.
func (p *Pipeline) ScoreBatch(candidates []Candidate) ([]Result, error) {
	results := make([]Result, len(candidates))
	errs := make([]error, len(candidates))

	parallel.Range(0, len(candidates), 0, func(low, high int) {
		for i := low; i < high; i++ {
			r, err := p.ScoreSV(candidates[i].SV, candidates[i].AlignInfo)
			results[i] = r
			errs[i] = err
		}
	})

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("pipeline: scoring candidate %d: %w", i, err)
		}
	}
	return results, nil
}

// ScoreSV runs the full scoring sequence for one SV: depth, pair
// support, split reads, summarization, then the diploid model and
// (when enabled) the somatic model.
func (p *Pipeline) ScoreSV(sv svtypes.SVCandidate, alignInfo svtypes.SVAlignmentInfo) (Result, error) {
	traceID := uuid.NewString()

	base := &evidence.SVScoreInfo{}
	base.Reset()

	normalStreams, err := openSampleStreams(p.Normal, &base.Normal)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline[%s]: opening normal streams: %w", traceID, err)
	}
	tumorStreams, err := openSampleStreams(p.Tumor, &base.Tumor)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline[%s]: opening tumor streams: %w", traceID, err)
	}
	allStreams := append(normalStreams, tumorStreams...)

	if err := estimateDepth(allStreams, sv, base); err != nil {
		return Result{}, fmt.Errorf("pipeline[%s]: depth estimation: %w", traceID, err)
	}

	if p.Opts.PairScorer != nil {
		for i := range allStreams {
			if err := scorePairSupport(p.Opts.PairScorer, allStreams[i].store, sv, base, allStreams[i].sample.Stream); err != nil {
				return Result{}, fmt.Errorf("pipeline[%s]: pair support: %w", traceID, err)
			}
		}
	}

	evidenceSamples := make([]evidence.SampleStream, len(allStreams))
	for i, s := range allStreams {
		evidenceSamples[i] = evidence.SampleStream{
			Stream:  s.sample.Stream,
			Store:   s.store,
			IsTumor: s.sample.IsTumor,
			Info:    s.info,
		}
	}
	if err := evidence.ScoreSplitReadSupport(sv, alignInfo, base, p.Opts.MinMapQ, p.Opts.DiploidFilter, p.Opts.SomaticFilter, evidenceSamples, p.Opts.Aligner); err != nil {
		return Result{}, fmt.Errorf("pipeline[%s]: split read support: %w", traceID, err)
	}

	for i := range allStreams {
		if err := evidence.Summarize(allStreams[i].store, allStreams[i].info); err != nil {
			return Result{}, fmt.Errorf("pipeline[%s]: summarizing fragment %v: %w", traceID, sv, err)
		}
	}

	normalStore := mergedNormalStore(allStreams)
	diploidInfo := model.ScoreDiploid(p.Opts.DiploidOptions, p.Opts.DiploidPriors, sv, p.Opts.DiploidFilter, normalStore, base)

	result := Result{SV: sv, TraceID: traceID, Base: base, Diploid: diploidInfo}
	if p.Opts.Somatic {
		somaticInfo := model.ScoreSomatic(p.Opts.SomaticOptions, sv, p.Opts.SomaticFilter, base)
		result.Somatic = &somaticInfo
	}
	return result, nil
}

type openStream struct {
	sample evidence.SampleStream
	store  *evidence.Store
	info   *evidence.SampleInfo
}

func openSampleStreams(sources []SampleSource, info *evidence.SampleInfo) ([]openStream, error) {
	streams := make([]openStream, 0, len(sources))
	for _, src := range sources {
		stream, err := src.Open()
		if err != nil {
			return nil, fmt.Errorf("opening sample %q: %w", src.Name, err)
		}
		streams = append(streams, openStream{
			sample: evidence.SampleStream{Stream: stream, IsTumor: src.IsTumor},
			store:  evidence.NewStore(),
			info:   info,
		})
	}
	return streams, nil
}

// mergedNormalStore returns the first normal sample's fragment store
// (an empty store when there is none). The diploid model reads only
// that one store: multi-sample
// cohorts beyond one normal are outside this pipeline's scope, as are
// joint-genotyping models across several normals.
func mergedNormalStore(streams []openStream) *evidence.Store {
	for _, s := range streams {
		if !s.sample.IsTumor {
			return s.store
		}
	}
	return evidence.NewStore()
}

func estimateDepth(streams []openStream, sv svtypes.SVCandidate, base *evidence.SVScoreInfo) error {
	samples := make([]depth.Sample, len(streams))
	for i, s := range streams {
		samples[i] = depth.Sample{Stream: s.sample.Stream, IsTumor: s.sample.IsTumor}
	}
	estimator := depth.NewEstimator(samples)

	bp1Depth, err := estimator.MaxMappedDepth(sv.BP1)
	if err != nil {
		return err
	}
	bp2Depth, err := estimator.MaxMappedDepth(sv.BP2)
	if err != nil {
		return err
	}
	base.BP1MaxDepth = bp1Depth
	base.BP2MaxDepth = bp2Depth
	return nil
}

// scorePairSupport scans both breakend windows, pairs up fragments
// that show exactly two records across the combined window, and folds
// each pair into scorer.
func scorePairSupport(scorer pairsupport.Scorer, store *evidence.Store, sv svtypes.SVCandidate, base *evidence.SVScoreInfo, stream scan.AlignmentStream) error {
	byFragment := make(map[string][]*scan.Record)
	for _, bp := range []svtypes.Breakend{sv.BP1, sv.BP2} {
		if err := stream.SetRegion(bp.Interval.Tid, bp.Interval.Begin, bp.Interval.End); err != nil {
			return err
		}
		for stream.Next() {
			rec := stream.Current()
			if rec.IsFiltered() || rec.IsDup() || rec.IsSecondary() || rec.IsSupplementary() {
				continue
			}
			recs := byFragment[rec.FragmentID()]
			if len(recs) >= 2 {
				continue
			}
			byFragment[rec.FragmentID()] = append(recs, rec)
		}
		if err := stream.Err(); err != nil {
			return err
		}
	}

	for _, recs := range byFragment {
		if len(recs) != 2 {
			continue
		}
		if err := scorer.Score(store, sv, base, recs[0], recs[1]); err != nil {
			return err
		}
	}
	return nil
}
