// Package depthfilter provides the per-chromosome maximum-depth
// collaborator used by both the diploid and somatic models to decide
// whether a breakend sits in a pathological, over-covered region, and
// by the split-read scorer to decide whether to skip split alignment
// entirely.
package depthfilter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ChromDepthFilter is a read-only per-chromosome depth threshold
// lookup.
type ChromDepthFilter interface {
	IsEnabled() bool
	MaxDepth(tid int32) float64
}

// TableFilter is a ChromDepthFilter backed by a static per-chromosome
// threshold table, the simplest concrete implementation of the
// interface: one that can actually be constructed and exercised by
// tests and the reference CLI instead of only mocked.
type TableFilter struct {
	thresholds map[int32]float64
}

// NewTableFilter builds a TableFilter from an explicit threshold table.
// A nil or empty table disables the filter (IsEnabled reports false),
// matching the reference implementation's no-table-supplied behavior.
func NewTableFilter(thresholds map[int32]float64) *TableFilter {
	return &TableFilter{thresholds: thresholds}
}

// ParseTableFilter reads a simple two-column text format, one
// "tid max_depth" pair per line.
func ParseTableFilter(r io.Reader) (*TableFilter, error) {
	thresholds := make(map[int32]float64)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected \"tid max_depth\", got %q", lineNo, line)
		}
		tid, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid tid %q: %w", lineNo, fields[0], err)
		}
		depth, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid max_depth %q: %w", lineNo, fields[1], err)
		}
		thresholds[int32(tid)] = depth
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &TableFilter{thresholds: thresholds}, nil
}

func (f *TableFilter) IsEnabled() bool { return len(f.thresholds) > 0 }

func (f *TableFilter) MaxDepth(tid int32) float64 {
	return f.thresholds[tid]
}
