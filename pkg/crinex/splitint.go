package crinex

import (
	"fmt"
	"strconv"
	"strings"
)

// Split bases. Observation samples carry 3 fractional digits and are split so
// that lower holds the bottom 5 decimal digits; clock offsets carry more
// fractional digits and are split on the bottom 8.
const (
	obsBase   int64 = 100000
	clockBase int64 = 100000000

	obsLowerWidth   = 5
	clockLowerWidth = 8
)

// UpperLower is a 64-bit value split into an upper and lower half, used to
// represent differenced observation and clock-offset samples whose raw
// magnitude, after repeated differencing, the original C implementation could
// not trust to a single platform integer. Go's int64 has ample headroom for
// RINEX-sized samples, but the split representation is still part of the wire
// format (§3), so both halves are carried explicitly rather than folded back
// into one number at the last moment.
type UpperLower struct {
	Upper, Lower int64
}

// Sub returns the component-wise difference v - o. The result is not
// normalized; call Normalize before printing it.
func (v UpperLower) Sub(o UpperLower) UpperLower {
	return UpperLower{Upper: v.Upper - o.Upper, Lower: v.Lower - o.Lower}
}

// Normalize carries overflow out of Lower into Upper and fixes up any sign
// mismatch between the two halves, so that Sign(Upper) == Sign(Lower) unless
// Upper == 0.
func Normalize(upper, lower, base int64) UpperLower {
	upper += lower / base
	lower %= base
	if upper < 0 && lower > 0 {
		upper++
		lower -= base
	} else if upper > 0 && lower < 0 {
		upper--
		lower += base
	}
	return UpperLower{Upper: upper, Lower: lower}
}

// Normalize returns v carried and sign-fixed against base.
func (v UpperLower) Normalize(base int64) UpperLower {
	return Normalize(v.Upper, v.Lower, base)
}

// PrintSplit renders a normalized split value the way the encoder emits it on
// the wire: the bare lower digits if upper is zero, otherwise upper followed
// by the absolute value of lower zero-padded to width digits.
func (v UpperLower) PrintSplit(base int64, width int) string {
	n := v.Normalize(base)
	if n.Upper == 0 {
		return strconv.FormatInt(n.Lower, 10)
	}
	return fmt.Sprintf("%d%0*d", n.Upper, width, abs64(n.Lower))
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// parseFixedPoint turns a decimal string such as " 20000000.000" or
// "-0.123" into its value scaled up by 10^(number of fractional digits),
// e.g. "20000000.000" -> 20000000000, "-0.123" -> -123. Embedded spaces other
// than leading padding are not expected in a valid field and yield an error.
func parseFixedPoint(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("parse fixed-point value: empty field")
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	digits := intPart + fracPart
	if digits == "" {
		return 0, fmt.Errorf("parse fixed-point value: no digits in %q", raw)
	}

	val, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse fixed-point value %q: %w", raw, err)
	}
	if neg {
		val = -val
	}
	return val, nil
}

// ParseObsValue parses a RINEX observation value (3 fractional digits) into
// its normalized split form with base 10^5.
func ParseObsValue(raw string) (UpperLower, error) {
	total, err := parseFixedPoint(raw)
	if err != nil {
		return UpperLower{}, err
	}
	return Normalize(0, total, obsBase), nil
}

// ParseClockValue parses a RINEX receiver clock offset field into its
// normalized split form with base 10^8, regardless of how many fractional
// digits the version's field layout carries (9 for RINEX2, 12 for RINEX3/4):
// concatenating all digits before splitting makes the result independent of
// that width, unlike the original's version-dependent digit-shift.
func ParseClockValue(raw string) (UpperLower, error) {
	total, err := parseFixedPoint(raw)
	if err != nil {
		return UpperLower{}, err
	}
	return Normalize(0, total, clockBase), nil
}
