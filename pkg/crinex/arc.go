package crinex

import "bytes"

// ArcOrder is the maximum backward-difference order an arc carries.
const ArcOrder = 3

// CycleSlipThreshold is the magnitude the Upper half of an observation's
// highest-order difference may not exceed before its arc is forcibly
// restarted.
const CycleSlipThreshold = 100000

// SampleArc tracks, for one (satellite, observable) pair or for the clock
// offset, the chain of backward differences up to ArcOrder. Order -1 means
// no sample has been recorded yet (or the last one was blank).
type SampleArc struct {
	Order int
	Slot  [ArcOrder + 1]UpperLower
}

// NewSampleArc returns an arc in the Absent state.
func NewSampleArc() SampleArc {
	return SampleArc{Order: -1}
}

// Start restarts the arc at order 0 with value as its raw base sample.
func (a *SampleArc) Start(value UpperLower) {
	a.Order = 0
	a.Slot[0] = value
}

// Advance folds value into the arc, raising the order by one (capped at
// ArcOrder) and computing slot[k+1] = slot[k](new) - slot[k](old) for each
// k below the new order, mirroring take_diff. The returned diff is the raw,
// not-yet-normalized value at the new order; the caller normalizes it only
// at print time, and the cycle-slip check reads its Upper half as is.
func (a *SampleArc) Advance(value UpperLower) (order int, diff UpperLower) {
	newOrder := a.Order
	if newOrder < ArcOrder {
		newOrder++
	}
	var next [ArcOrder + 1]UpperLower
	next[0] = value
	for k := 0; k < newOrder; k++ {
		next[k+1] = next[k].Sub(a.Slot[k])
	}
	a.Slot = next
	a.Order = newOrder
	return newOrder, next[newOrder]
}

// FlagBuffer holds the two one-character flag columns trailing each
// observable for one satellite, as a mutable byte slice so individual
// observable pairs can be blanked in place (the V2 blank-with-flag rule).
type FlagBuffer struct {
	b []byte
}

// NewFlagBuffer returns a FlagBuffer of n observables (2*n bytes), all
// spaces.
func NewFlagBuffer(n int) FlagBuffer {
	return FlagBuffer{b: bytes.Repeat([]byte{' '}, 2*n)}
}

// FlagBufferFromString wraps an already-assembled flag string.
func FlagBufferFromString(s string) FlagBuffer {
	return FlagBuffer{b: []byte(s)}
}

func (f FlagBuffer) String() string {
	return string(f.b)
}

func (f FlagBuffer) Len() int {
	return len(f.b)
}

// ClearPair blanks the flag pair belonging to observable index obsIdx, used
// when a previously-numeric field goes blank so the flag diff does not
// report a spurious change.
func (f FlagBuffer) ClearPair(obsIdx int) {
	i := 2 * obsIdx
	if i+1 < len(f.b) {
		f.b[i] = ' '
		f.b[i+1] = ' '
	}
}

// ArcStore holds all state carried from one regular epoch to the next: the
// previous epoch-header line, the per-satellite sample arcs and flag
// buffers, and the clock arc. Satellites are tracked by their RINEX
// identifier (e.g. "G01") rather than by position in a fixed-size array;
// an identifier absent from the store is, for the Differ's purposes, "new"
// in exactly the sense the original's sattbl[i] == -1 captures.
type ArcStore struct {
	PrevEpochLine string
	SampleArcs    map[string][]SampleArc
	FlagBuffers   map[string]FlagBuffer
	Clock         SampleArc
	EpochCount    int
}

// NewArcStore returns a store in its post-startup-reset state.
func NewArcStore() *ArcStore {
	s := &ArcStore{}
	s.FullReset(0)
	return s
}

// FullReset clears all carried state: the previous epoch-header line
// becomes the "&" sentinel, the clock arc goes Absent, and every
// satellite's sample arcs and flag buffers are dropped (so every satellite
// in the next epoch is "new"). epCount seeds the periodic-reset counter
// (0 on startup/resync, 1 right after a forced periodic reset, matching
// the post-increment semantics of the -e N counter).
func (s *ArcStore) FullReset(epCount int) {
	s.PrevEpochLine = "&"
	s.Clock = NewSampleArc()
	s.SampleArcs = make(map[string][]SampleArc)
	s.FlagBuffers = make(map[string]FlagBuffer)
	s.EpochCount = epCount
}

// InvalidateFlagBuffers drops all per-satellite flag buffers without
// touching sample arcs or the epoch-header line, used when an event record
// redefines the observable-count table (buffer lengths are stale).
func (s *ArcStore) InvalidateFlagBuffers() {
	s.FlagBuffers = make(map[string]FlagBuffer)
}

// SatelliteTable is the ordered list of satellites in the current epoch,
// together with whether each one already had arcs in the ArcStore (i.e.
// appeared, under the same identifier, in the previous regular epoch).
type SatelliteTable struct {
	IDs   []string
	IsNew []bool
}

// BuildSatelliteTable orders ids as read from the epoch header and
// classifies each against store, failing with KindDuplicateSat if the same
// identifier appears twice in ids.
func BuildSatelliteTable(ids []string, store *ArcStore, lineNo int) (*SatelliteTable, error) {
	seen := make(map[string]bool, len(ids))
	isNew := make([]bool, len(ids))
	for i, id := range ids {
		if seen[id] {
			return nil, newErr(KindDuplicateSat, lineNo, "satellite %q appears twice in one epoch", id)
		}
		seen[id] = true
		_, existed := store.SampleArcs[id]
		isNew[i] = !existed
	}
	return &SatelliteTable{IDs: ids, IsNew: isNew}, nil
}
