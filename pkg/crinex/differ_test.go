package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrDiff(t *testing.T) {
	tests := []struct {
		name       string
		prev, cur  string
		want       string
	}{
		{"identical", "G01G02", "G01G02", ""},
		{"one changed", "G01G02", "G01G03", "     3"},
		{"grown", "G01", "G01G02", "   G02"},
		{"shrunk changes to ampersand", "G01G02", "G01", "   &&&"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strDiff(tt.prev, tt.cur)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSatFlagsV2(t *testing.T) {
	fb := NewFlagBuffer(2)
	fb.b[0] = '1'
	got := newSatFlags(V2, fb)
	assert.Equal(t, "1", got)
}

func TestNewSatFlagsV3(t *testing.T) {
	fb := NewFlagBuffer(2)
	fb.b[2] = '5'
	got := newSatFlags(V3, fb)
	assert.Equal(t, "&&5&", got)
}

func TestDifferEncodeNewSatellite(t *testing.T) {
	store := NewArcStore()
	d := NewDiffer(V2, store)
	buf := NewOutputBuffer(nil)

	v, err := ParseObsValue(" 20000000.123")
	assert.NoError(t, err)

	ep := &RegularEpoch{
		HeaderText: " 23  1  1  0  0  0.0000000  0 1G01",
		Sats: []SatObservation{
			{ID: "G01", Cells: []Cell{{Numeric: true, Value: v, Flags: [2]byte{' ', ' '}}}},
		},
	}

	err = d.Encode(buf, ep)
	assert.NoError(t, err)

	arcs, ok := store.SampleArcs["G01"]
	assert.True(t, ok)
	assert.Equal(t, 0, arcs[0].Order)
	assert.Equal(t, v, arcs[0].Slot[0])
	assert.Equal(t, ep.HeaderText, store.PrevEpochLine)
}

func TestDifferEncodeExistingSatelliteSecondEpoch(t *testing.T) {
	store := NewArcStore()
	d := NewDiffer(V2, store)
	buf := NewOutputBuffer(nil)

	v1, _ := ParseObsValue(" 20000000.000")
	ep1 := &RegularEpoch{
		HeaderText: "header1",
		Sats: []SatObservation{
			{ID: "G01", Cells: []Cell{{Numeric: true, Value: v1, Flags: [2]byte{' ', ' '}}}},
		},
	}
	assert.NoError(t, d.Encode(buf, ep1))

	v2, _ := ParseObsValue(" 20000001.000")
	ep2 := &RegularEpoch{
		HeaderText: "header2",
		Sats: []SatObservation{
			{ID: "G01", Cells: []Cell{{Numeric: true, Value: v2, Flags: [2]byte{' ', ' '}}}},
		},
	}
	assert.NoError(t, d.Encode(buf, ep2))

	arcs := store.SampleArcs["G01"]
	assert.Equal(t, 1, arcs[0].Order)
}

func TestDifferEncodeCycleSlipRestartsArc(t *testing.T) {
	store := NewArcStore()
	d := NewDiffer(V2, store)
	buf := NewOutputBuffer(nil)

	v1, _ := ParseObsValue(" 20000000.000")
	ep1 := &RegularEpoch{
		HeaderText: "h1",
		Sats: []SatObservation{
			{ID: "G01", Cells: []Cell{{Numeric: true, Value: v1, Flags: [2]byte{' ', ' '}}}},
		},
	}
	assert.NoError(t, d.Encode(buf, ep1))

	// jump far bigger than CycleSlipThreshold
	v2, _ := ParseObsValue(" 99999999.000")
	ep2 := &RegularEpoch{
		HeaderText: "h2",
		Sats: []SatObservation{
			{ID: "G01", Cells: []Cell{{Numeric: true, Value: v2, Flags: [2]byte{' ', ' '}}}},
		},
	}
	assert.NoError(t, d.Encode(buf, ep2))

	arcs := store.SampleArcs["G01"]
	assert.Equal(t, 0, arcs[0].Order)
	assert.Equal(t, v2, arcs[0].Slot[0])
}

// TestDifferEncodeCycleSlipEmitsRestartMarkerOnWire replays a run of
// smoothly increasing values followed by a jump far past CycleSlipThreshold
// and checks the literal bytes Encode wrote, not just the arc's internal
// order, for the restart marker and the jumped-to value.
func TestDifferEncodeCycleSlipEmitsRestartMarkerOnWire(t *testing.T) {
	store := NewArcStore()
	d := NewDiffer(V3, store)
	buf := NewOutputBuffer(nil)

	raws := []string{"    1000.000", "    1001.000", "    1002.000", "    1003.000", " 9999999.000"}
	for _, raw := range raws {
		v, err := ParseObsValue(raw)
		assert.NoError(t, err)
		ep := &RegularEpoch{
			HeaderText: "h",
			Sats: []SatObservation{
				{ID: "G01", Cells: []Cell{{Numeric: true, Value: v, Flags: [2]byte{' ', ' '}}}},
			},
		}
		assert.NoError(t, d.Encode(buf, ep))
	}

	assert.Contains(t, buf.buf.String(), "3&9999999000")
}

// TestDifferEncodePeriodicResetStartsFreshArcOnWire simulates a forced
// full reset (as the encoder issues for -e N) landing between two epochs
// and checks that the next epoch's bytes begin a fresh arc: the
// epoch-header diff runs against the "&" sentinel and the sample's first
// occurrence after the reset carries the "3&" restart marker.
func TestDifferEncodePeriodicResetStartsFreshArcOnWire(t *testing.T) {
	store := NewArcStore()
	d := NewDiffer(V3, store)
	buf := NewOutputBuffer(nil)

	v1, _ := ParseObsValue(" 1000.000")
	ep1 := &RegularEpoch{
		HeaderText: "epoch-one",
		Sats: []SatObservation{
			{ID: "G01", Cells: []Cell{{Numeric: true, Value: v1, Flags: [2]byte{' ', ' '}}}},
		},
	}
	assert.NoError(t, d.Encode(buf, ep1))

	store.FullReset(1)

	v2, _ := ParseObsValue(" 1001.000")
	ep2 := &RegularEpoch{
		HeaderText: "epoch-two",
		Sats: []SatObservation{
			{ID: "G01", Cells: []Cell{{Numeric: true, Value: v2, Flags: [2]byte{' ', ' '}}}},
		},
	}
	assert.NoError(t, d.Encode(buf, ep2))

	out := buf.buf.String()
	assert.Contains(t, out, strDiff("&", "epoch-two"))
	assert.Contains(t, out, "3&1001000")
}

func TestEncodeClockNewAndAdvance(t *testing.T) {
	store := NewArcStore()
	d := NewDiffer(V2, store)
	buf := NewOutputBuffer(nil)

	c1, _ := ParseClockValue("   .123456789")
	d.encodeClock(buf, &c1)
	assert.Equal(t, 0, store.Clock.Order)

	c2, _ := ParseClockValue("   .123456800")
	d.encodeClock(buf, &c2)
	assert.Equal(t, 1, store.Clock.Order)
}

func TestEncodeClockAbsentResetsArc(t *testing.T) {
	store := NewArcStore()
	d := NewDiffer(V2, store)
	buf := NewOutputBuffer(nil)

	c1, _ := ParseClockValue("   .123456789")
	d.encodeClock(buf, &c1)
	assert.Equal(t, 0, store.Clock.Order)

	d.encodeClock(buf, nil)
	assert.Equal(t, -1, store.Clock.Order)
}
