package scan

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// SliceStream is the simplest AlignmentStream: an in-memory, already
// parsed and tid-sorted slice of records, region-filtered on SetRegion.
// Tests and the reference SamTextStream parser both build on it.
type SliceStream struct {
	all     []*Record
	region  []*Record
	idx     int
	current *Record
}

// NewSliceStream builds a stream over recs, sorted by (Tid, Pos) so
// SetRegion can binary-search into it the way an indexed reader would
// seek.
func NewSliceStream(recs []*Record) *SliceStream {
	sorted := make([]*Record, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Tid != sorted[j].Tid {
			return sorted[i].Tid < sorted[j].Tid
		}
		return sorted[i].Pos < sorted[j].Pos
	})
	return &SliceStream{all: sorted}
}

func (s *SliceStream) SetRegion(tid, begin, end int32) error {
	lo := sort.Search(len(s.all), func(i int) bool {
		r := s.all[i]
		if r.Tid != tid {
			return r.Tid >= tid
		}
		return r.RefEnd() > begin
	})
	var region []*Record
	for i := lo; i < len(s.all); i++ {
		r := s.all[i]
		if r.Tid != tid {
			break
		}
		if r.Pos >= end {
			break
		}
		region = append(region, r)
	}
	s.region = region
	s.idx = -1
	s.current = nil
	return nil
}

func (s *SliceStream) Next() bool {
	s.idx++
	if s.idx >= len(s.region) {
		s.current = nil
		return false
	}
	s.current = s.region[s.idx]
	return true
}

func (s *SliceStream) Current() *Record { return s.current }
func (s *SliceStream) Err() error       { return nil }

// SamTextStream is a reference AlignmentStream backed by a minimal SAM
// text reader: QNAME, FLAG, RNAME, POS, MAPQ, CIGAR, RNEXT, PNEXT,
// TLEN, SEQ, QUAL, in that column order. Optional tag columns are
// ignored, since the scoring core only reads the mandatory fields.
// This is a demonstration/testing backend, not a production
// indexed-BAM reader.
type SamTextStream struct {
	*SliceStream
}

// NewSamTextStream parses SAM alignment lines from r. refTid maps an
// RNAME column to a numeric reference id; "*" (unmapped) maps to -1.
func NewSamTextStream(r io.Reader, refTid map[string]int32) (*SamTextStream, error) {
	var recs []*Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		rec, err := parseSamLine(line, refTid)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &SamTextStream{SliceStream: NewSliceStream(recs)}, nil
}

func parseSamLine(line string, refTid map[string]int32) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 11 {
		return nil, fmt.Errorf("expected at least 11 mandatory SAM fields, got %d", len(fields))
	}
	flag, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid FLAG %q: %w", fields[1], err)
	}
	pos, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid POS %q: %w", fields[3], err)
	}
	mapq, err := strconv.ParseUint(fields[4], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid MAPQ %q: %w", fields[4], err)
	}
	cigar, err := ParseCigar(fields[5])
	if err != nil {
		return nil, err
	}
	tid, ok := refTid[fields[2]]
	if !ok {
		tid = -1
	}
	return &Record{
		QNAME: fields[0],
		FLAG:  uint16(flag),
		Tid:   tid,
		Pos:   int32(pos) - 1, // SAM POS is 1-based
		MAPQ:  byte(mapq),
		CIGAR: cigar,
		SEQ:   fields[9],
		QUAL:  decodePhredQual(fields[10]),
	}, nil
}

// decodePhredQual converts the SAM QUAL column (Phred+33 ASCII) to
// numeric Phred scores.
func decodePhredQual(ascii string) []byte {
	if ascii == "*" {
		return nil
	}
	q := make([]byte, len(ascii))
	for i := 0; i < len(ascii); i++ {
		q[i] = ascii[i] - 33
	}
	return q
}
