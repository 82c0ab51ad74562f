package crinex

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/rnx2crx/pkg/gnss"
)

// ProgramVersion is reported on the synthetic CRINEX PROG / DATE line.
const ProgramVersion = "4.0.8"

// Version is the RINEX major version, which fixes column offsets throughout
// the epoch reader and differ.
type Version int

const (
	V2 Version = 2
	V3 Version = 3
	V4 Version = 4
)

// ObservableCount holds the number of observables per satellite, as declared
// by the header. For V2 it is a single count shared by all satellites; for
// V3/V4 it is keyed by the one-letter GNSS system identifier.
type ObservableCount struct {
	V2    int
	bySys map[byte]int
}

// Set records the observable count for a GNSS system letter (V3/V4).
func (oc *ObservableCount) Set(sysLetter byte, n int) {
	if oc.bySys == nil {
		oc.bySys = make(map[byte]int)
	}
	oc.bySys[sysLetter] = n
}

// CountFor returns the observable count applicable to sysLetter under
// version, and whether it is defined.
func (oc *ObservableCount) CountFor(version Version, sysLetter byte) (int, bool) {
	if version == V2 {
		if oc.V2 <= 0 {
			return 0, false
		}
		return oc.V2, true
	}
	n, ok := oc.bySys[sysLetter]
	return n, ok
}

// ObservableCountChange holds an observable-count table as redefined by an
// event record. The epoch reader does not produce one: it updates the shared
// ObservableCount in place and sets EventRecord.ObservablesReset, on which
// the encoder calls ArcStore.InvalidateFlagBuffers, since flag buffer
// lengths depend on this table.
type ObservableCountChange struct {
	Count ObservableCount
}

// HeaderCopier reads and copies a RINEX header, extracting the pieces of
// state the rest of the encoder needs: the major version and the
// observable-count table.
type HeaderCopier struct {
	Version     Version
	Observables ObservableCount
}

const maxObservables = 100

// CopyHeader reads the RINEX header from ls, writes the two synthetic
// CRINEX header lines followed by the RINEX header verbatim through
// END OF HEADER, and returns the extracted version/observable-count state.
func CopyHeader(ls *LineSource, out io.Writer) (*HeaderCopier, error) {
	first, ok, err := ls.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(KindBadHeader, ls.LineNo(), "empty input, expected RINEX VERSION / TYPE line")
	}

	version, err := parseVersionLine(first, ls.LineNo())
	if err != nil {
		return nil, err
	}

	hc := &HeaderCopier{Version: version}

	if err := writeSyntheticHeader(out, version); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(out, "%s\n", first); err != nil {
		return nil, err
	}

	for {
		line, ok, err := ls.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, newErr(KindBadHeader, ls.LineNo(), "END OF HEADER not found")
		}
		if _, err := fmt.Fprintf(out, "%s\n", line); err != nil {
			return nil, err
		}

		label := fieldAt(line, 60, 80)
		switch {
		case strings.TrimRight(label, " ") == "END OF HEADER":
			return hc, nil
		case version == V2 && strings.TrimRight(label, " ") == "# / TYPES OF OBSERV":
			if fieldAt(line, 5, 6) == " " {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(fieldAt(line, 0, 6)))
			if err != nil {
				return nil, newErr(KindBadHeader, ls.LineNo(), "malformed observable count: %v", err)
			}
			if n > maxObservables {
				return nil, newErr(KindTooManyObservables, ls.LineNo(), "%d observables exceeds limit %d", n, maxObservables)
			}
			hc.Observables.V2 = n
		case version != V2 && strings.TrimRight(label, " ") == "SYS / # / OBS TYPES":
			letterField := fieldAt(line, 0, 1)
			if letterField == "" || letterField == " " {
				continue
			}
			if _, ok := gnss.SystemByAbbr(letterField); !ok {
				return nil, newErr(KindUndefinedGnss, ls.LineNo(), "GNSS type %q is not a recognized system letter", letterField)
			}
			n, err := strconv.Atoi(strings.TrimSpace(fieldAt(line, 3, 6)))
			if err != nil {
				return nil, newErr(KindBadHeader, ls.LineNo(), "malformed observable count: %v", err)
			}
			if n > maxObservables {
				return nil, newErr(KindTooManyObservables, ls.LineNo(), "%d observables exceeds limit %d", n, maxObservables)
			}
			hc.Observables.Set(letterField[0], n)
		}
	}
}

// parseVersionLine validates the leading RINEX VERSION / TYPE line: an "O"
// (observation) marker at column 20, and a leading integer version of 2, 3
// or 4.
func parseVersionLine(line string, lineNo int) (Version, error) {
	field := fieldAt(line, 0, 20)
	fields := strings.Fields(field)
	if len(fields) == 0 {
		return 0, newErr(KindBadHeader, lineNo, "missing RINEX version field")
	}
	verFloat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, newErr(KindBadHeader, lineNo, "bad RINEX version field %q: %v", fields[0], err)
	}
	if len(line) < 21 || line[20] != 'O' {
		return 0, newErr(KindBadHeader, lineNo, "not an observation RINEX file (no O marker at column 21)")
	}
	switch int(verFloat) {
	case 2:
		return V2, nil
	case 3:
		return V3, nil
	case 4:
		return V4, nil
	default:
		return 0, newErr(KindBadHeader, lineNo, "unsupported RINEX version %v", verFloat)
	}
}

func writeSyntheticHeader(out io.Writer, version Version) error {
	verLabel := "3.0"
	if version == V2 {
		verLabel = "1.0"
	}
	line1 := rjust(verLabel, 20) + ljust("COMPACT RINEX FORMAT", 40) + ljust("CRINEX VERS   / TYPE", 20)

	progLabel := rjust(fmt.Sprintf("RNX2CRX ver.%s", ProgramVersion), 40)
	timestamp := ljust(time.Now().UTC().Format("02-Jan-06 15:04"), 20)
	line2 := progLabel + timestamp + ljust("CRINEX PROG / DATE", 20)

	if _, err := fmt.Fprintf(out, "%s\n%s\n", line1, line2); err != nil {
		return err
	}
	return nil
}

func rjust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return fmt.Sprintf("%*s", width, s)
}

func ljust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return fmt.Sprintf("%-*s", width, s)
}

// fieldAt returns line[start:end], clamping to the line's actual length so
// that short lines never panic on a column reference beyond their end.
func fieldAt(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}
