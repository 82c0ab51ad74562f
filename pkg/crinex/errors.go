package crinex

import "fmt"

// Kind identifies a class of error the encoder can report. It mirrors the
// error taxonomy of the original RNX2CRX tool's error_exit(error_no, ...).
type Kind int

// Error kinds.
const (
	_ Kind = iota
	KindBadUsage
	KindBadHeader
	KindBadEpoch
	KindBadField
	KindBlankWithFlag
	KindTypeCountMismatch
	KindDuplicateSat
	KindUndefinedGnss
	KindTooManyObservables
	KindTooManySats
	KindLineTooLong
	KindNameTooLong
	KindTruncated
	KindBadClockFormat
)

func (k Kind) String() string {
	switch k {
	case KindBadUsage:
		return "BadUsage"
	case KindBadHeader:
		return "BadHeader"
	case KindBadEpoch:
		return "BadEpoch"
	case KindBadField:
		return "BadField"
	case KindBlankWithFlag:
		return "BlankWithFlag"
	case KindTypeCountMismatch:
		return "TypeCountMismatch"
	case KindDuplicateSat:
		return "DuplicateSat"
	case KindUndefinedGnss:
		return "UndefinedGnss"
	case KindTooManyObservables:
		return "TooManyObservables"
	case KindTooManySats:
		return "TooManySats"
	case KindLineTooLong:
		return "LineTooLong"
	case KindNameTooLong:
		return "NameTooLong"
	case KindTruncated:
		return "Truncated"
	case KindBadClockFormat:
		return "BadClockFormat"
	default:
		return "Unknown"
	}
}

// Error is a diagnostic raised while compressing a RINEX stream. It carries
// the 1-based input line number the way the original's error_exit prints
// "ERROR at line %ld".
type Error struct {
	Kind Kind
	Line int
	Msg  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// newErr builds an *Error with a formatted message.
func newErr(kind Kind, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// recoverable reports whether, under the skip-strange-epochs policy (-s),
// this kind of error may be handled by a warn-and-resync instead of aborting.
func (k Kind) recoverable() bool {
	switch k {
	case KindBadEpoch, KindBadField, KindTypeCountMismatch, KindDuplicateSat, KindUndefinedGnss:
		return true
	default:
		return false
	}
}
