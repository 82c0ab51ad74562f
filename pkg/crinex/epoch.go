package crinex

import (
	"errors"
	"strconv"
	"strings"

	"github.com/de-bkg/rnx2crx/pkg/gnss"
)

// ErrEndOfStream is returned by EpochReader.Next when the input is
// exhausted between epochs (a clean end of file).
var ErrEndOfStream = errors.New("crinex: end of epoch stream")

// Cell is one 16-column observable slot: a numeric value with two trailing
// flag bytes, or a blank value that still carries flags.
type Cell struct {
	Numeric bool
	Value   UpperLower
	Flags   [2]byte
}

// SatObservation is one satellite's parsed observation line(s) for an
// epoch.
type SatObservation struct {
	ID    string
	Cells []Cell
}

// RegularEpoch is a fully parsed, non-event epoch ready for differencing.
// HeaderText is the fixed time/flag/count prefix with every satellite ID
// appended in order and the clock field excluded — exactly the text the
// original diffs epoch to epoch, the clock value having already been
// peeled off into ClockValue.
type RegularEpoch struct {
	HeaderText string
	ClockValue *UpperLower
	Sats       []SatObservation
}

// EventRecord is a header line whose event flag is greater than 1: it and
// its N follow-on lines are emitted verbatim rather than differenced.
type EventRecord struct {
	HeaderLine       string
	FollowOnLines    []string
	ObservablesReset bool
}

// EpochReader turns a line stream into a sequence of epoch records,
// applying the version-specific column layout described in the component
// design for epoch headers and satellite observation lines.
type EpochReader struct {
	ls          *LineSource
	version     Version
	obs         *ObservableCount
	skipStrange bool

	pending     string
	havePending bool
}

// NewEpochReader builds a reader over ls. obs is shared with the
// HeaderCopier/encoder so that event records redefining observable counts
// are visible immediately to subsequent epochs.
func NewEpochReader(ls *LineSource, version Version, obs *ObservableCount, skipStrange bool) *EpochReader {
	return &EpochReader{ls: ls, version: version, obs: obs, skipStrange: skipStrange}
}

func (r *EpochReader) nextLine() (string, bool, error) {
	if r.havePending {
		r.havePending = false
		return r.pending, true, nil
	}
	return r.ls.Next()
}

// LineNo returns the line number of the last line consumed, for
// diagnostics.
func (r *EpochReader) LineNo() int {
	return r.ls.LineNo()
}

func byteAt(s string, i int) byte {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

// headerLooksPlausible is the lightweight structural check applied the
// first time a line is read as a candidate epoch header.
func (r *EpochReader) headerLooksPlausible(line string) bool {
	if r.version == V2 {
		if len(line) < 29 || line[0] != ' ' || byteAt(line, 27) != ' ' || !isDigitByte(byteAt(line, 28)) {
			return false
		}
		if len(line) > 29 {
			c := line[29]
			if c != ' ' && !isDigitByte(c) {
				return false
			}
		}
		return true
	}
	return len(line) > 0 && line[0] == '>'
}

// resyncPredicate is the stricter check used while resynchronizing after a
// structural error: it looks for a line that is very likely to be a
// genuine epoch header rather than stray data.
func (r *EpochReader) resyncPredicate(line string) bool {
	if r.version == V2 {
		if len(line) < 29 {
			return false
		}
		for _, i := range []int{0, 3, 6, 9, 12, 15, 26, 27} {
			if byteAt(line, i) != ' ' {
				return false
			}
		}
		if !isDigitByte(byteAt(line, 28)) {
			return false
		}
		if !isSpaceByte(byteAt(line, 29)) {
			return false
		}
		if len(line) > 68 && byteAt(line, 70) != '.' {
			return false
		}
		return true
	}
	return len(line) > 0 && line[0] == '>'
}

// Resync advances the line source until a plausible epoch header is found
// (or the stream ends), matching skip_to_next. The found line is queued as
// the next header for Next to consume.
func (r *EpochReader) Resync() error {
	for {
		line, ok, err := r.ls.Next()
		if err != nil {
			return err
		}
		if !ok {
			return ErrEndOfStream
		}
		if r.resyncPredicate(line) {
			r.pending = line
			r.havePending = true
			return nil
		}
	}
}

// headerPrefixWidth is the number of leading columns (time/flag/count
// fields) that precede the satellite list on the header line.
func (r *EpochReader) headerPrefixWidth() int {
	if r.version == V2 {
		return 32
	}
	return 41
}

func (r *EpochReader) eventFlagDigit(line string) byte {
	if r.version == V2 {
		return byteAt(line, 28)
	}
	return byteAt(line, 31)
}

func (r *EpochReader) nsatField(line string) string {
	if r.version == V2 {
		return fieldAt(line, 29, 32)
	}
	return fieldAt(line, 32, 35)
}

func (r *EpochReader) clockField(line string) string {
	start := 68
	if r.version != V2 {
		start = 41
	}
	return fieldAt(line, start, len(line))
}

// Next returns the next event or regular epoch. Exactly one of the two
// return values is non-nil on success; err is ErrEndOfStream at a clean
// EOF, or an *Error for a structural problem the caller may choose to
// recover from via Resync.
func (r *EpochReader) Next() (*EventRecord, *RegularEpoch, error) {
	line, ok, err := r.nextLine()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrEndOfStream
	}
	if !r.headerLooksPlausible(line) {
		return nil, nil, newErr(KindBadEpoch, r.ls.LineNo(), "malformed epoch header")
	}

	if r.version != V2 && len(line) < r.headerPrefixWidth() {
		line += strings.Repeat(" ", r.headerPrefixWidth()-len(line))
	}

	eventDigit := r.eventFlagDigit(line)
	if isDigitByte(eventDigit) && eventDigit > '1' {
		ev, err := r.readEventRecord(line)
		if err != nil {
			return nil, nil, err
		}
		return ev, nil, nil
	}

	nsatStr := strings.TrimSpace(r.nsatField(line))
	nsat, err := strconv.Atoi(nsatStr)
	if err != nil {
		return nil, nil, newErr(KindBadEpoch, r.ls.LineNo(), "bad satellite count %q: %v", nsatStr, err)
	}
	const maxSat = 100
	if nsat > maxSat {
		return nil, nil, newErr(KindTooManySats, r.ls.LineNo(), "%d satellites exceeds limit %d", nsat, maxSat)
	}

	var clockPtr *UpperLower
	clockRaw := r.clockField(line)
	if strings.TrimRight(clockRaw, " ") != "" {
		if byteAt(clockRaw, 2) != '.' {
			return nil, nil, newErr(KindBadClockFormat, r.ls.LineNo(), "expected '.' at column 3 of clock field %q", clockRaw)
		}
		v, err := ParseClockValue(clockRaw)
		if err != nil {
			return nil, nil, newErr(KindBadClockFormat, r.ls.LineNo(), "%v", err)
		}
		clockPtr = &v
	}

	sats := make([]SatObservation, 0, nsat)
	var ids []string

	if r.version == V2 {
		var err error
		ids, err = r.readV2SatelliteIDs(line, nsat)
		if err != nil {
			return nil, nil, err
		}
		for _, id := range ids {
			cells, err := r.readSatLine(id, r.obs.V2)
			if err != nil {
				return nil, nil, err
			}
			sats = append(sats, SatObservation{ID: id, Cells: cells})
		}
	} else {
		ids = make([]string, 0, nsat)
		for i := 0; i < nsat; i++ {
			id, cells, err := r.readV3SatLine()
			if err != nil {
				return nil, nil, err
			}
			ids = append(ids, id)
			sats = append(sats, SatObservation{ID: id, Cells: cells})
		}
	}

	headerText := fieldAt(line, 0, r.headerPrefixWidth())
	for _, id := range ids {
		headerText += id
	}

	return nil, &RegularEpoch{HeaderText: headerText, ClockValue: clockPtr, Sats: sats}, nil
}

// readV2SatelliteIDs returns the nsat satellite identifiers for a V2
// epoch: the first 12 come from the header line itself, with further ones
// read from continuation lines.
func (r *EpochReader) readV2SatelliteIDs(line string, nsat int) ([]string, error) {
	listText := fieldAt(line, 32, len(line))
	take := nsat
	if take > 12 {
		take = 12
	}
	ids := make([]string, 0, nsat)
	for i := 0; i < take; i++ {
		ids = append(ids, padID(fieldAt(listText, i*3, i*3+3)))
	}

	remaining := nsat - 12
	for remaining > 0 {
		cont, ok, err := r.ls.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.ls.errUnexpectedEOF("satellite continuation line")
		}
		var frag string
		if len(cont) > 2 && cont[2] == ' ' {
			frag = fieldAt(cont, 32, len(cont))
		} else {
			frag = cont
		}
		n := remaining
		if n > 12 {
			n = 12
		}
		for i := 0; i < n; i++ {
			ids = append(ids, padID(fieldAt(frag, i*3, i*3+3)))
		}
		remaining -= 12
	}
	return ids, nil
}

func padID(s string) string {
	for len(s) < 3 {
		s += " "
	}
	return s
}

const maxFieldsPerLine = 5

// readSatLine reads one V2 satellite's observation cells (id already
// known from the header line), following continuation lines when obsCount
// exceeds 5 fields per line.
func (r *EpochReader) readSatLine(id string, obsCount int) ([]Cell, error) {
	cells := make([]Cell, 0, obsCount)
	for read := 0; read < obsCount; read += maxFieldsPerLine {
		line, ok, err := r.ls.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.ls.errUnexpectedEOF("satellite observation line")
		}
		nfield := obsCount - read
		if nfield > maxFieldsPerLine {
			nfield = maxFieldsPerLine
		}
		more, err := r.parseFields(line, 0, nfield, obsCount)
		if err != nil {
			return nil, err
		}
		cells = append(cells, more...)
	}
	return cells, nil
}

// readV3SatLine reads one V3/V4 satellite's observation line(s). Unlike
// V2, the satellite ID is not known ahead of time: it is the first 3
// columns of the satellite's own line, and it determines obsCount via the
// header's per-system table.
func (r *EpochReader) readV3SatLine() (string, []Cell, error) {
	line, ok, err := r.ls.Next()
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, r.ls.errUnexpectedEOF("satellite observation line")
	}
	id := padID(fieldAt(line, 0, 3))

	if _, ok := gnss.SystemByAbbr(string(id[0])); !ok {
		return "", nil, newErr(KindUndefinedGnss, r.ls.LineNo(), "GNSS type %q is not a recognized system letter", string(id[0]))
	}

	obsCount, ok := r.obs.CountFor(r.version, id[0])
	if !ok {
		return "", nil, newErr(KindUndefinedGnss, r.ls.LineNo(), "GNSS type %q not defined in header", string(id[0]))
	}

	cells := make([]Cell, 0, obsCount)
	offset := 3
	for read := 0; read < obsCount; read += maxFieldsPerLine {
		if read > 0 {
			line, ok, err = r.ls.Next()
			if err != nil {
				return "", nil, err
			}
			if !ok {
				return "", nil, r.ls.errUnexpectedEOF("satellite observation continuation line")
			}
			offset = 0
		}
		nfield := obsCount - read
		if nfield > maxFieldsPerLine {
			nfield = maxFieldsPerLine
		}
		more, err := r.parseFields(line, offset, nfield, obsCount)
		if err != nil {
			return "", nil, err
		}
		cells = append(cells, more...)
	}
	return id, cells, nil
}

// parseFields pads or validates line to hold exactly nfield 16-column
// cells starting at offset, then decodes each one.
func (r *EpochReader) parseFields(line string, offset, nfield, obsCount int) ([]Cell, error) {
	wantLen := offset + 16*nfield
	if len(line) < wantLen {
		line += strings.Repeat(" ", wantLen-len(line))
	} else if len(line) > wantLen {
		if strings.TrimRight(line[wantLen:], " ") != "" {
			return nil, newErr(KindTypeCountMismatch, r.ls.LineNo(), "observation line longer than %d declared fields", obsCount)
		}
		line = line[:wantLen]
	}

	cells := make([]Cell, 0, nfield)
	for j := 0; j < nfield; j++ {
		start := offset + 16*j
		field := line[start : start+16]
		cell, err := parseCell(field, r.version, r.ls.LineNo())
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// parseCell decodes one 16-column observation cell: 14 columns of value,
// 2 of flags.
func parseCell(field string, version Version, lineNo int) (Cell, error) {
	value := field[:14]
	flags := [2]byte{field[14], field[15]}

	if byteAt(value, 10) == '.' {
		v, err := ParseObsValue(value)
		if err != nil {
			return Cell{}, newErr(KindBadField, lineNo, "%v", err)
		}
		return Cell{Numeric: true, Value: v, Flags: flags}, nil
	}
	if strings.TrimSpace(value) == "" {
		if version == V2 && (flags[0] != ' ' || flags[1] != ' ') {
			return Cell{}, newErr(KindBlankWithFlag, lineNo, "blank field with non-blank flags")
		}
		return Cell{Numeric: false, Flags: flags}, nil
	}
	return Cell{}, newErr(KindBadField, lineNo, "malformed observation field %q", value)
}

// readEventRecord reads the N follow-on lines of an event epoch (event
// flag > 1), passing the follow-on lines through verbatim (a V2 header line
// gets '&' in its first column) and watching for observable-count
// redefinitions.
func (r *EpochReader) readEventRecord(line string) (*EventRecord, error) {
	ev := &EventRecord{}

	var countField string
	if r.version == V2 {
		ev.HeaderLine = "&" + line[1:]
		countField = fieldAt(line, 29, len(line))
	} else {
		ev.HeaderLine = line
		countField = fieldAt(line, 32, len(line))
	}

	n, _ := strconv.Atoi(strings.TrimSpace(countField))
	for i := 0; i < n; i++ {
		fl, ok, err := r.ls.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.ls.errUnexpectedEOF("event information line")
		}
		ev.FollowOnLines = append(ev.FollowOnLines, fl)

		label := strings.TrimRight(fieldAt(fl, 60, 80), " ")
		switch {
		case r.version == V2 && label == "# / TYPES OF OBSERV" && byteAt(fl, 5) != ' ':
			cnt, err := strconv.Atoi(strings.TrimSpace(fieldAt(fl, 0, 6)))
			if err == nil {
				r.obs.V2 = cnt
				ev.ObservablesReset = true
			}
		case r.version != V2 && label == "SYS / # / OBS TYPES" && byteAt(fl, 0) != ' ':
			cnt, err := strconv.Atoi(strings.TrimSpace(fieldAt(fl, 3, 6)))
			if err == nil {
				r.obs.Set(fl[0], cnt)
				ev.ObservablesReset = true
			}
		}
	}
	return ev, nil
}
