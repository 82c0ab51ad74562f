package crinex

import (
	"strings"

	"github.com/de-bkg/rnx2crx/pkg/rinex"
)

// DeriveOutputName computes the Compact RINEX filename for an observation
// file named inputName, following the long-standing Hatanaka convention:
// RINEX2 "d" replaces the final letter of the two-digit-year extension
// (.??o -> .??d, .??O -> .??D), RINEX3/4 ".rnx"/".RNX" become ".crx"/".CRX".
//
// When inputName matches pkg/rinex's RINEX2/RINEX3 filename conventions,
// the name is rebuilt through RnxFil.Rnx2Filename/Rnx3Filename with Format
// set to "crx" — the same builders the teacher package uses to convert a
// parsed filename between the RINEX2 and RINEX3 naming conventions, reused
// here to produce the Compact RINEX form of the SAME convention. Those
// regexes require a lowercase extension, so names that don't match them
// (including uppercase RINEX2/RINEX3 names) fall back to a plain suffix
// rewrite instead.
func DeriveOutputName(inputName string) (string, error) {
	idx := strings.LastIndex(inputName, ".")
	if idx < 0 || idx+1 >= len(inputName) {
		return "", newErr(KindBadUsage, 0, "%q has no recognized RINEX observation extension", inputName)
	}
	ext := inputName[idx+1:]

	switch {
	case len(ext) == 3 && (ext[2] == 'o' || ext[2] == 'O'):
		if fil, err := rinex.NewFile(inputName); err == nil && fil.DataType != "" {
			fil.Format = "crx"
			if name, err := fil.Rnx2Filename(); err == nil {
				return name, nil
			}
		}
		if ext[2] == 'o' {
			return inputName[:idx+3] + "d", nil
		}
		return inputName[:idx+3] + "D", nil
	case ext == "rnx" || ext == "RNX":
		if fil, err := rinex.NewFile(inputName); err == nil && fil.DataType != "" {
			if !fil.IsObsType() {
				return "", newErr(KindBadUsage, 0, "%q is not a RINEX observation filename", inputName)
			}
			fil.Format = "crx"
			if name, err := fil.Rnx3Filename(0, ""); err == nil {
				if ext == "RNX" {
					return strings.TrimSuffix(name, ".crx") + ".CRX", nil
				}
				return name, nil
			}
		}
		if ext == "RNX" {
			return inputName[:idx+1] + "CRX", nil
		}
		return inputName[:idx+1] + "crx", nil
	default:
		return "", newErr(KindBadUsage, 0, "%q has no recognized RINEX observation extension", inputName)
	}
}
