package crinex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineSourceNext(t *testing.T) {
	ls := NewLineSource(strings.NewReader("first line  \nsecond\t\r\n"))

	line, ok, err := ls.Next()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first line", line)
	assert.Equal(t, 1, ls.LineNo())

	line, ok, err = ls.Next()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", line)
	assert.Equal(t, 2, ls.LineNo())

	_, ok, err = ls.Next()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLineSourceTooLong(t *testing.T) {
	ls := NewLineSource(strings.NewReader(strings.Repeat("x", MaxLineLength+10) + "\n"))
	_, _, err := ls.Next()
	assert.Error(t, err)
	var cerr *Error
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindLineTooLong, cerr.Kind)
}

func TestLineSourceErrUnexpectedEOF(t *testing.T) {
	ls := NewLineSource(strings.NewReader(""))
	err := ls.errUnexpectedEOF("test context")
	var cerr *Error
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindTruncated, cerr.Kind)
}

func TestLineSourceTruncatedMidLine(t *testing.T) {
	ls := NewLineSource(strings.NewReader("first\nabc"))

	_, ok, err := ls.Next()
	assert.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = ls.Next()
	assert.False(t, ok)
	var cerr *Error
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindTruncated, cerr.Kind)
}

func TestLineSourceDosEOFSentinelIsCleanEOF(t *testing.T) {
	ls := NewLineSource(strings.NewReader("first\n" + "\x1a"))

	_, ok, err := ls.Next()
	assert.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = ls.Next()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLineSourceTrailingNullsWarns(t *testing.T) {
	ls := NewLineSource(strings.NewReader("first\n" + "  "))

	_, ok, err := ls.Next()
	assert.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = ls.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrTrailingNulls)
}
