package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name           string
		upper, lower   int64
		base           int64
		wantU, wantL   int64
	}{
		{"no carry", 1, 50, 100000, 1, 50},
		{"positive carry", 0, 150000, 100000, 1, 50000},
		{"negative lower under positive upper", 1, -1, 100000, 0, 99999},
		{"negative upper, positive lower", -1, 1, 100000, 0, -99999},
		{"exact multiple", 0, 200000, 100000, 2, 0},
		{"both zero", 0, 0, 100000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.upper, tt.lower, tt.base)
			assert.Equal(t, tt.wantU, got.Upper)
			assert.Equal(t, tt.wantL, got.Lower)
		})
	}
}

func TestUpperLowerSub(t *testing.T) {
	a := UpperLower{Upper: 3, Lower: 10}
	b := UpperLower{Upper: 1, Lower: 20}
	got := a.Sub(b)
	assert.Equal(t, UpperLower{Upper: 2, Lower: -10}, got)
}

func TestPrintSplit(t *testing.T) {
	tests := []struct {
		name  string
		v     UpperLower
		base  int64
		width int
		want  string
	}{
		{"bare lower, no upper", UpperLower{Upper: 0, Lower: 12345}, obsBase, obsLowerWidth, "12345"},
		{"upper with padded lower", UpperLower{Upper: 1, Lower: 50}, obsBase, obsLowerWidth, "100050"},
		{"negative bare lower", UpperLower{Upper: 0, Lower: -42}, obsBase, obsLowerWidth, "-42"},
		{"needs carry before printing", UpperLower{Upper: 0, Lower: 150000}, obsBase, obsLowerWidth, "150000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.PrintSplit(tt.base, tt.width))
		})
	}
}

func TestParseObsValue(t *testing.T) {
	tests := []struct {
		raw   string
		wantU int64
		wantL int64
	}{
		{" 123.456", 1, 23456},
		{"-123.456", -1, -23456},
		{"        0.000", 0, 0},
	}
	for _, tt := range tests {
		v, err := ParseObsValue(tt.raw)
		assert.NoError(t, err)
		assert.Equal(t, tt.wantU, v.Upper, "raw=%q", tt.raw)
		assert.Equal(t, tt.wantL, v.Lower, "raw=%q", tt.raw)
	}
}

func TestParseObsValueError(t *testing.T) {
	_, err := ParseObsValue("   ")
	assert.Error(t, err)
}

func TestParseClockValue(t *testing.T) {
	v, err := ParseClockValue("   .123456789")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), v.Upper)
	assert.Equal(t, int64(23456789), v.Lower)
}

func TestRoundTripDifferenceAndNormalize(t *testing.T) {
	a, _ := ParseObsValue(" 20000000.123")
	b, _ := ParseObsValue(" 20000001.456")
	diff := b.Sub(a)
	assert.Equal(t, "1333", diff.PrintSplit(obsBase, obsLowerWidth))
}
