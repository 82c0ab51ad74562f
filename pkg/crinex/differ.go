package crinex

import (
	"strings"
)

// strDiff implements the column-wise diff shared by the epoch-header line
// and the per-satellite flag block (strdiff in the reference): for each
// column, a space means "unchanged", '&' means "changed to a space", and
// any other character is copied from cur. Trailing spaces are trimmed from
// the result.
func strDiff(prev, cur string) string {
	var b strings.Builder
	n := len(prev)
	if len(cur) < n {
		n = len(cur)
	}
	for i := 0; i < n; i++ {
		switch {
		case cur[i] == prev[i]:
			b.WriteByte(' ')
		case cur[i] == ' ':
			b.WriteByte('&')
		default:
			b.WriteByte(cur[i])
		}
	}
	if len(prev) > len(cur) {
		for i := len(cur); i < len(prev); i++ {
			if prev[i] == ' ' {
				b.WriteByte(' ')
			} else {
				b.WriteByte('&')
			}
		}
	} else if len(cur) > len(prev) {
		b.WriteString(cur[len(prev):])
	}
	return strings.TrimRight(b.String(), " ")
}

// newSatFlags renders the flag block for a satellite that is new this
// epoch: V2 diffs against an empty previous buffer (so every flag is
// copied verbatim); V3/V4 simply replaces spaces with '&' directly.
func newSatFlags(version Version, cur FlagBuffer) string {
	if version == V2 {
		return strDiff("", cur.String())
	}
	var b strings.Builder
	for i := 0; i < cur.Len(); i++ {
		c := cur.String()[i]
		if c == ' ' {
			b.WriteByte('&')
		} else {
			b.WriteByte(c)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Differ turns a parsed RegularEpoch into one compressed block, written to
// an OutputBuffer, while updating the ArcStore with the new state to carry
// forward.
type Differ struct {
	version Version
	store   *ArcStore
}

// NewDiffer builds a Differ over store for the given RINEX version.
func NewDiffer(version Version, store *ArcStore) *Differ {
	return &Differ{version: version, store: store}
}

// Encode writes one epoch's compressed block to buf and advances the
// ArcStore to reflect ep as the new "previous epoch". It never itself
// decides whether the caller should discard partial output on error: Cell
// parsing errors are caught by the epoch reader before Encode runs, and
// Encode performs no validation of its own, so it always returns nil.
func (d *Differ) Encode(buf *OutputBuffer, ep *RegularEpoch) error {
	buf.WriteString(strDiff(d.store.PrevEpochLine, ep.HeaderText))
	buf.WriteByte('\n')

	d.encodeClock(buf, ep.ClockValue)

	newFlags := make(map[string]FlagBuffer, len(ep.Sats))
	newArcs := make(map[string][]SampleArc, len(ep.Sats))

	for _, sat := range ep.Sats {
		prevArcs, existed := d.store.SampleArcs[sat.ID]
		arcs := make([]SampleArc, len(sat.Cells))
		flags := NewFlagBuffer(len(sat.Cells))

		for j, cell := range sat.Cells {
			if j > 0 {
				buf.WriteByte(' ')
			}
			if existed && j < len(prevArcs) {
				arcs[j] = prevArcs[j]
			} else {
				arcs[j] = NewSampleArc()
			}

			if !cell.Numeric {
				if existed && d.version == V2 {
					d.clearPrevFlagPair(sat.ID, j)
				}
				arcs[j].Order = -1
				continue
			}

			if !existed || arcs[j].Order == -1 {
				arcs[j].Start(cell.Value)
				buf.WriteString("3&")
				buf.WriteString(cell.Value.Normalize(obsBase).PrintSplit(obsBase, obsLowerWidth))
			} else {
				_, diff := arcs[j].Advance(cell.Value)
				if abs64(diff.Upper) > CycleSlipThreshold {
					arcs[j].Start(cell.Value)
					buf.WriteString("3&")
					buf.WriteString(cell.Value.Normalize(obsBase).PrintSplit(obsBase, obsLowerWidth))
				} else {
					buf.WriteString(diff.PrintSplit(obsBase, obsLowerWidth))
				}
			}
			flags.b[2*j] = cell.Flags[0]
			flags.b[2*j+1] = cell.Flags[1]
		}
		buf.WriteByte(' ')

		if existed {
			prevFlags := d.store.FlagBuffers[sat.ID]
			buf.WriteString(strDiff(prevFlags.String(), flags.String()))
		} else {
			buf.WriteString(newSatFlags(d.version, flags))
		}
		buf.WriteByte('\n')

		newFlags[sat.ID] = flags
		newArcs[sat.ID] = arcs
	}

	d.store.PrevEpochLine = ep.HeaderText
	d.store.SampleArcs = newArcs
	d.store.FlagBuffers = newFlags
	return nil
}

// clearPrevFlagPair implements the V2 rule: when a (sat, obs) that existed
// in the previous epoch goes blank, the previous flag pair for that
// observable is overwritten to spaces so this epoch's flag diff does not
// report a spurious change for the now-blank field.
func (d *Differ) clearPrevFlagPair(satID string, obsIdx int) {
	if fb, ok := d.store.FlagBuffers[satID]; ok {
		fb.ClearPair(obsIdx)
	}
}

// encodeClock writes the clock-offset sub-record: nothing but the
// newline already written by the header diff if absent, otherwise a
// possible "3&" restart marker followed by the split difference.
func (d *Differ) encodeClock(buf *OutputBuffer, clock *UpperLower) {
	if clock == nil {
		d.store.Clock = NewSampleArc()
		return
	}

	if d.store.Clock.Order == -1 {
		d.store.Clock.Start(*clock)
		buf.WriteString("3&")
		buf.WriteString(clock.Normalize(clockBase).PrintSplit(clockBase, clockLowerWidth))
		buf.WriteByte('\n')
		return
	}

	_, diff := d.store.Clock.Advance(*clock)
	buf.WriteString(diff.PrintSplit(clockBase, clockLowerWidth))
	buf.WriteByte('\n')
}
