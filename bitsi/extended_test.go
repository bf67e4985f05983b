package bitsi

import (
	"bytes"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendedSetLeds(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk}
	ex := testExtended(ft, clk)

	require.NoError(t, ex.SetLeds([]bool{true, false, true}))
	assert.Equal(t, []byte{'L', 'O', 5}, ft.written)
}

func TestExtendedSendMarker(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk}
	ex := testExtended(ft, clk)

	// The marker channel is separate from the LEDs on this box.
	require.NoError(t, ex.SendMarker([]bool{true, true}))
	require.NoError(t, ex.SendMarkerRaw(0xFF))
	assert.Equal(t, []byte{'M', 3, 'M', 0xFF}, ft.written)
}

func TestExtendedWaitLedsUsesCommandChannel(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk}
	ex := testExtended(ft, clk)

	require.NoError(t, ex.WaitLeds([]bool{true}, 100*time.Millisecond))
	assert.Equal(t, []byte{'L', 'O', 1, 'L', 'O', 0}, ft.written)
}

func TestExtendedCalibrateSound(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk}
	ex := testExtended(ft, clk)

	start := clk.now()
	require.NoError(t, ex.CalibrateSound())
	assert.Equal(t, []byte{'C', 'S'}, ft.written)
	assert.Equal(t, time.Second, clk.since(start), "silence window")
	assert.True(t, ex.calibratedSound)
	assert.False(t, ex.calibratedVoice)
}

func TestWaitSoundCalibratesOnce(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk, input: []byte("S")}
	ex := testExtended(ft, clk)

	start := clk.now()
	events, err := ex.WaitSound(10*time.Second, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, byte('S'), events[0].Code)

	// Implicit calibration: exactly one 'C' 'S' pair and a ~1 s pause
	// before detection is armed.
	assert.Equal(t, []byte{'C', 'S', 'D', 'S'}, ft.written)
	assert.GreaterOrEqual(t, clk.since(start), time.Second)

	// A second wait must not recalibrate within the same session.
	ft.input = []byte("S")
	_, err = ex.WaitSound(10*time.Second, false)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(ft.written, []byte{'C', 'S'}))
}

func TestWaitVoiceFiltersToVoiceCode(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk, input: []byte("AbV")}
	ex := testExtended(ft, clk)
	ex.calibratedVoice = true

	events, err := ex.WaitVoice(10*time.Second, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, byte('V'), events[0].Code, "button traffic is ignored while waiting for voice")
	assert.Equal(t, []byte{'D', 'V'}, ft.written)
}

func TestWaitSoundFlushDropsQueuedDetections(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk, input: []byte("SS")}
	ex := testExtended(ft, clk)
	ex.calibratedSound = true

	events, err := ex.WaitSound(100*time.Millisecond, true)
	require.NoError(t, err)
	assert.Nil(t, events, "stale detections are flushed before arming")
	assert.Equal(t, 1, ft.flushes)
}

func TestExtendedNotConnected(t *testing.T) {
	var zero Extended
	zero.lg = log.StandardLogger()

	assert.ErrorIs(t, zero.Send('M'), ErrNotConnected)
	assert.ErrorIs(t, zero.SetLeds(nil), ErrNotConnected)
	assert.ErrorIs(t, zero.SendMarkerRaw(1), ErrNotConnected)
	assert.ErrorIs(t, zero.CalibrateSound(), ErrNotConnected)
	assert.ErrorIs(t, zero.CalibrateVoice(), ErrNotConnected)
	_, err := zero.WaitSound(time.Second, false)
	assert.ErrorIs(t, err, ErrNotConnected)
}
