// Package gnss contains common constants and type definitions shared by the
// RINEX filename helpers and the CRINEX encoder.
package gnss

import (
	"encoding/json"
	"fmt"
	"strings"
)

// System is a satellite system.
type System int

// Available satellite systems.
const (
	SysGPS System = iota + 1
	SysGLO
	SysGAL
	SysQZSS
	SysBDS
	SysNavIC
	SysSBAS
	SysMIXED
)

func (sys System) String() string {
	return [...]string{"", "GPS", "GLO", "GAL", "QZSS", "BDS", "NavIC", "SBAS", "MIXED"}[sys]
}

// Abbr returns the system's one-character abbreviation used in RINEX, e.g. in
// satellite IDs (G01) and the "SYS / # / OBS TYPES" header record.
func (sys System) Abbr() string {
	return [...]string{"", "G", "R", "E", "J", "C", "I", "S", "M"}[sys]
}

// MarshalJSON marshals a System to its RINEX abbreviation.
func (sys System) MarshalJSON() ([]byte, error) {
	return json.Marshal(sys.Abbr())
}

// systemPerAbbr maps the RINEX system letter to a System.
var systemPerAbbr = map[string]System{
	"G": SysGPS, "R": SysGLO, "E": SysGAL, "J": SysQZSS,
	"C": SysBDS, "I": SysNavIC, "S": SysSBAS, "M": SysMIXED,
}

// SystemByAbbr returns the System for the given one-character RINEX
// abbreviation, e.g. "G" -> SysGPS. ok is false for an unknown letter.
func SystemByAbbr(abbr string) (sys System, ok bool) {
	sys, ok = systemPerAbbr[abbr]
	return
}

// Systems specifies a list of satellite systems.
type Systems []System

// String returns the contained systems joined in sitelog manner GPS+GLO+...
func (syss Systems) String() string {
	str := make([]string, 0, len(syss))
	for _, sys := range syss {
		str = append(str, sys.String())
	}
	return strings.Join(str, "+")
}

// ParseSatSystems parses a sitelog-style string such as "GPS+GLO+GAL" into a
// list of satellite systems.
func ParseSatSystems(s string) (Systems, error) {
	parts := strings.Split(s, "+")
	syss := make(Systems, 0, len(parts))
	for _, p := range parts {
		switch p {
		case "GPS":
			syss = append(syss, SysGPS)
		case "GLO":
			syss = append(syss, SysGLO)
		case "GAL":
			syss = append(syss, SysGAL)
		case "QZSS":
			syss = append(syss, SysQZSS)
		case "BDS":
			syss = append(syss, SysBDS)
		case "IRNSS", "NavIC":
			syss = append(syss, SysNavIC)
		case "SBAS":
			syss = append(syss, SysSBAS)
		case "MIXED":
			syss = append(syss, SysMIXED)
		default:
			return nil, fmt.Errorf("parse satellite systems: invalid system %q in %q", p, s)
		}
	}
	return syss, nil
}
