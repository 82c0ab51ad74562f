package crinex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const v2EpochHeader = " 23  1  1  0  0  0.0000000  0  2G01G02                                          "

func buildV2Cell(raw string) string {
	return raw + "  "
}

func TestEpochReaderNextV2Regular(t *testing.T) {
	obsLine1 := buildV2Cell("  20000000.123") + buildV2Cell("  20000042.456")
	obsLine2 := buildV2Cell("  20000001.000") + buildV2Cell("  20000099.000")

	input := strings.Join([]string{v2EpochHeader, obsLine1, obsLine2}, "\n") + "\n"
	ls := NewLineSource(strings.NewReader(input))
	obs := &ObservableCount{V2: 2}
	r := NewEpochReader(ls, V2, obs, false)

	ev, reg, err := r.Next()
	assert.NoError(t, err)
	assert.Nil(t, ev)
	assert.NotNil(t, reg)
	assert.Nil(t, reg.ClockValue)
	assert.Len(t, reg.Sats, 2)
	assert.Equal(t, "G01", reg.Sats[0].ID)
	assert.Equal(t, "G02", reg.Sats[1].ID)
	assert.Len(t, reg.Sats[0].Cells, 2)
	assert.True(t, reg.Sats[0].Cells[0].Numeric)
	assert.Equal(t, UpperLower{Upper: 200000, Lower: 123}, reg.Sats[0].Cells[0].Value)
	assert.Equal(t, UpperLower{Upper: 200000, Lower: 42456}, reg.Sats[0].Cells[1].Value)
	assert.Equal(t, "G01G02", reg.HeaderText[32:])
}

func TestEpochReaderNextEndOfStream(t *testing.T) {
	ls := NewLineSource(strings.NewReader(""))
	obs := &ObservableCount{V2: 2}
	r := NewEpochReader(ls, V2, obs, false)
	_, _, err := r.Next()
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestEpochReaderResyncSkipsGarbage(t *testing.T) {
	garbage := "not a valid header at all, just noise here"
	input := strings.Join([]string{garbage, v2EpochHeader}, "\n") + "\n"
	ls := NewLineSource(strings.NewReader(input))
	obs := &ObservableCount{V2: 2}
	r := NewEpochReader(ls, V2, obs, true)

	err := r.Resync()
	assert.NoError(t, err)
	assert.True(t, r.havePending)
	assert.Equal(t, strings.TrimRight(v2EpochHeader, " "), r.pending)
}

func TestParseCellBlankWithFlagIsError(t *testing.T) {
	field := "              1X" // 14 blank value cols + non-blank flags
	_, err := parseCell(field[:16], V2, 1)
	assert.Error(t, err)
	var cerr *Error
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindBlankWithFlag, cerr.Kind)
}

func TestParseCellBlank(t *testing.T) {
	field := strings.Repeat(" ", 16)
	cell, err := parseCell(field, V2, 1)
	assert.NoError(t, err)
	assert.False(t, cell.Numeric)
}
