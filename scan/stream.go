package scan

// AlignmentStream is region-seekable iteration over an indexed
// alignment file. The pipeline obtains a fresh instance from each
// sample's factory on every ScoreSV call and repositions it with
// SetRegion within that call; it does not keep one instance per input
// across calls.
type AlignmentStream interface {
	// SetRegion restarts iteration over [begin, end) on reference tid.
	SetRegion(tid, begin, end int32) error
	// Next advances to the next record in the current region, reporting
	// whether one was available.
	Next() bool
	// Current returns the record Next just advanced to.
	Current() *Record
	// Err returns the first I/O error encountered, if any.
	Err() error
}

// ReadScanner exposes the minimum MAPQ floor and the anchoring
// predicate derived from it.
type ReadScanner interface {
	MinMapQ() uint
	// IsAnchored reports whether rec is trusted as positional evidence:
	// mapped and at or above MinMapQ.
	IsAnchored(rec *Record) bool
}

// DefaultReadScanner is a straightforward ReadScanner: a read is
// anchored iff it is mapped and its MAPQ meets the configured floor.
type DefaultReadScanner struct {
	minMapQ uint
}

func NewDefaultReadScanner(minMapQ uint) *DefaultReadScanner {
	return &DefaultReadScanner{minMapQ: minMapQ}
}

func (s *DefaultReadScanner) MinMapQ() uint { return s.minMapQ }

func (s *DefaultReadScanner) IsAnchored(rec *Record) bool {
	if rec == nil || rec.IsUnmapped() {
		return false
	}
	return uint(rec.MAPQ) >= s.minMapQ
}
