package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveOutputNameRnx2Lowercase(t *testing.T) {
	got, err := DeriveOutputName("brst155h.20o")
	assert.NoError(t, err)
	assert.Equal(t, "brst155h.20d", got)
}

func TestDeriveOutputNameRnx2Uppercase(t *testing.T) {
	got, err := DeriveOutputName("BRST155H.20O")
	assert.NoError(t, err)
	assert.Equal(t, "BRST155H.20D", got)
}

func TestDeriveOutputNameRnx3(t *testing.T) {
	got, err := DeriveOutputName("BRUX00BEL_R_20183101900_01H_30S_MO.rnx")
	assert.NoError(t, err)
	assert.Equal(t, "BRUX00BEL_R_20183101900_01H_30S_MO.crx", got)
}

func TestDeriveOutputNameRnx3Uppercase(t *testing.T) {
	got, err := DeriveOutputName("BRUX00BEL_R_20183101900_01H_30S_MO.RNX")
	assert.NoError(t, err)
	assert.Equal(t, "BRUX00BEL_R_20183101900_01H_30S_MO.CRX", got)
}

func TestDeriveOutputNameRejectsNonObs(t *testing.T) {
	_, err := DeriveOutputName("brst155h.20n")
	assert.Error(t, err)
}
