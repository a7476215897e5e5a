// Command svscore scores structural-variant candidates from one or
// more SAM-text alignment streams against a diploid germline model and
// an optional tumor/normal somatic model.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nuvioscore/svscore/align"
	"github.com/nuvioscore/svscore/depthfilter"
	"github.com/nuvioscore/svscore/model"
	"github.com/nuvioscore/svscore/pairsupport"
	"github.com/nuvioscore/svscore/pipeline"
	"github.com/nuvioscore/svscore/scan"
	"github.com/nuvioscore/svscore/svtypes"
	"golang.org/x/sys/unix"
)

var (
	normalSAM    = flag.String("normal", "", "path to the normal sample's SAM-text alignment file")
	tumorSAM     = flag.String("tumor", "", "path to the tumor sample's SAM-text alignment file (enables the somatic model)")
	candidates   = flag.String("candidates", "", "path to a JSON file listing SV candidates to score")
	chromDepth   = flag.String("chrom-depth", "", "path to a per-chromosome max-depth table, applied to both models")
	minMapQ      = flag.Uint("min-mapq", 20, "minimum MAPQ for a read to count as anchored")
	fragMean     = flag.Float64("frag-mean", 350, "mean fragment length for the spanning-pair model")
	fragStdDev   = flag.Float64("frag-stddev", 50, "fragment length standard deviation for the spanning-pair model")
	quiet        = flag.Bool("quiet", false, "redirect stderr away from the terminal once startup checks pass")
	logFile      = flag.String("log-file", "", "when --quiet is set, write redirected stderr here instead of discarding it")
)

type candidateFile struct {
	RefTid map[string]int32    `json:"ref_tid"`
	SVs    []jsonSVCandidate   `json:"svs"`
}

type jsonSVCandidate struct {
	Chrom1, Chrom2 string
	Pos1, Pos2     int32
	Precise        bool

	// BP1/BP2 alignment templates, required only when Precise is set:
	// the assembled contig and the matching reference window around
	// each breakend, each with the offset of the breakend within it.
	// Absent for imprecise SVs, for which split-read scoring never
	// runs.
	BP1ContigSeq       string `json:"bp1_contig_seq,omitempty"`
	BP1ContigOffset    int32  `json:"bp1_contig_offset,omitempty"`
	BP1ReferenceSeq    string `json:"bp1_reference_seq,omitempty"`
	BP1ReferenceOffset int32  `json:"bp1_reference_offset,omitempty"`
	BP2ContigSeq       string `json:"bp2_contig_seq,omitempty"`
	BP2ContigOffset    int32  `json:"bp2_contig_offset,omitempty"`
	BP2ReferenceSeq    string `json:"bp2_reference_seq,omitempty"`
	BP2ReferenceOffset int32  `json:"bp2_reference_offset,omitempty"`
}

func main() {
	flag.Parse()

	if *normalSAM == "" || *candidates == "" {
		fmt.Fprintln(os.Stderr, "svscore: --normal and --candidates are required")
		flag.Usage()
		os.Exit(1)
	}

	if *quiet {
		redirectStderr(*logFile)
	}

	opts := pipeline.Options{
		MinMapQ: *minMapQ,
		Aligner: align.New(),
		PairScorer: pairsupport.NewGaussianScorer(
			pairsupport.FragmentStats{Mean: *fragMean, StdDev: *fragStdDev},
			scan.NewDefaultReadScanner(*minMapQ),
		),
		DiploidOptions: model.DefaultDiploidOptions(),
		DiploidPriors:  model.DefaultDiploidPriors(),
		Somatic:        *tumorSAM != "",
	}

	if *chromDepth != "" {
		f, err := os.Open(*chromDepth)
		if err != nil {
			log.Fatalf("svscore: opening chrom-depth table: %v", err)
		}
		filter, err := depthfilter.ParseTableFilter(f)
		closeOrLog(f)
		if err != nil {
			log.Fatalf("svscore: parsing chrom-depth table: %v", err)
		}
		opts.DiploidFilter = filter
		opts.SomaticFilter = filter
	}

	cf, refTid := loadCandidates(*candidates)

	samples := []pipeline.SampleSource{
		{Name: "normal", IsTumor: false, Open: samStreamOpener(*normalSAM, refTid)},
	}
	if opts.Somatic {
		samples = append(samples, pipeline.SampleSource{Name: "tumor", IsTumor: true, Open: samStreamOpener(*tumorSAM, refTid)})
	}

	p := pipeline.New(samples, opts)

	batch := make([]pipeline.Candidate, len(cf.SVs))
	for i, sv := range cf.SVs {
		batch[i] = pipeline.Candidate{SV: toSVCandidate(sv, refTid), AlignInfo: toAlignInfo(sv)}
	}

	results, err := p.ScoreBatch(batch)
	if err != nil {
		log.Fatalf("svscore: scoring batch: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, r := range results {
		if err := enc.Encode(formatResult(r)); err != nil {
			log.Fatalf("svscore: writing result: %v", err)
		}
	}
}

func samStreamOpener(path string, refTid map[string]int32) func() (scan.AlignmentStream, error) {
	return func() (scan.AlignmentStream, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer closeOrLog(f)
		return scan.NewSamTextStream(f, refTid)
	}
}

func loadCandidates(path string) (candidateFile, map[string]int32) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("svscore: opening candidates file: %v", err)
	}
	defer closeOrLog(f)

	var cf candidateFile
	if err := json.NewDecoder(f).Decode(&cf); err != nil {
		log.Fatalf("svscore: parsing candidates file: %v", err)
	}
	return cf, cf.RefTid
}

func toSVCandidate(sv jsonSVCandidate, refTid map[string]int32) svtypes.SVCandidate {
	return svtypes.SVCandidate{
		BP1: svtypes.Breakend{Interval: svtypes.Interval{Tid: refTid[sv.Chrom1], Begin: sv.Pos1, End: sv.Pos1 + 1}},
		BP2: svtypes.Breakend{Interval: svtypes.Interval{Tid: refTid[sv.Chrom2], Begin: sv.Pos2, End: sv.Pos2 + 1}},
		Precise: sv.Precise,
	}
}

// toAlignInfo carries the candidate file's contig/reference templates
// through to the split-read aligner. Left as the zero value for
// imprecise SVs, or for a precise SV whose candidate entry omits the
// template fields — ScoreSplitReadSupport treats a zero SVAlignmentInfo
// as "no evidence" rather than erroring, so a partially-populated
// candidate file degrades to base evidence only, not a crash.
func toAlignInfo(sv jsonSVCandidate) svtypes.SVAlignmentInfo {
	if !sv.Precise {
		return svtypes.SVAlignmentInfo{}
	}
	return svtypes.SVAlignmentInfo{
		BP1: svtypes.BreakendAlignment{
			ContigSeq:       []byte(sv.BP1ContigSeq),
			ContigOffset:    sv.BP1ContigOffset,
			ReferenceSeq:    []byte(sv.BP1ReferenceSeq),
			ReferenceOffset: sv.BP1ReferenceOffset,
		},
		BP2: svtypes.BreakendAlignment{
			ContigSeq:       []byte(sv.BP2ContigSeq),
			ContigOffset:    sv.BP2ContigOffset,
			ReferenceSeq:    []byte(sv.BP2ReferenceSeq),
			ReferenceOffset: sv.BP2ReferenceOffset,
		},
	}
}

type resultLine struct {
	TraceID      string   `json:"trace_id"`
	Genotype     string   `json:"genotype"`
	AltScore     float64  `json:"alt_score"`
	GtScore      float64  `json:"gt_score"`
	Filters      []string `json:"filters"`
	SomaticScore *float64 `json:"somatic_score,omitempty"`
}

func formatResult(r pipeline.Result) resultLine {
	line := resultLine{
		TraceID:  r.TraceID,
		Genotype: r.Diploid.GT.String(),
		AltScore: r.Diploid.AltScore,
		GtScore:  r.Diploid.GtScore,
		Filters:  r.Diploid.Filters,
	}
	if r.Somatic != nil {
		score := r.Somatic.SomaticScore
		line.SomaticScore = &score
	}
	return line
}

// redirectStderr duplicates stderr into logPath (or discards it into
// /dev/null if logPath is empty), the same fd-swap trick used to keep
// a long batch run's terminal clean while preserving diagnostics.
func redirectStderr(logPath string) {
	if logPath == "" {
		logPath = os.DevNull
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("svscore: opening log file: %v", err)
	}
	if err := unix.Dup2(int(f.Fd()), int(os.Stderr.Fd())); err != nil {
		log.Fatalf("svscore: redirecting stderr: %v", err)
	}
}

func closeOrLog(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Println("svscore: close:", err)
	}
}
