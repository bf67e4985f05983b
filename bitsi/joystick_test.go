package bitsi

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoystickLastSampleWins(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk, input: []byte{10, 20, 30}}
	joy := testJoystick(ft, clk)

	// Stale buffered samples are drained; only the newest counts.
	assert.Equal(t, 30, joy.X())
	assert.Equal(t, time.Duration(0), ft.timeout, "X must not block")
}

func TestJoystickKeepsLastValue(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk}
	joy := testJoystick(ft, clk)

	// Nothing streamed yet: the documented rest angle.
	assert.Equal(t, 126, joy.X())

	ft.input = []byte{75}
	assert.Equal(t, 75, joy.X())

	// Stream paused: the last known angle sticks.
	assert.Equal(t, 75, joy.X())
}

func TestJoystickAxes(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk, input: []byte{201}}
	joy := testJoystick(ft, clk)

	assert.Equal(t, 1, joy.NumAxes())
	assert.Equal(t, 0, joy.NumHats())
	assert.Equal(t, []int{201}, joy.AllAxes())
	assert.Equal(t, 201, joy.Axis(5), "every axis id maps to X")
}

func TestJoystickNoSessionSentinel(t *testing.T) {
	joy := &Joystick{lg: log.StandardLogger(), x: joystickRest}

	// Deliberately lenient: polling call sites never check errors, so a
	// missing device reads as -1 rather than failing.
	assert.Equal(t, -1, joy.X())
	assert.Equal(t, []int{-1}, joy.AllAxes())
	assert.ErrorIs(t, joy.ClearEvents(), ErrNotConnected)
	assert.NoError(t, joy.Close())
}

func TestJoystickClearEvents(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk, input: []byte{10, 20}}
	joy := testJoystick(ft, clk)

	require.NoError(t, joy.ClearEvents())
	assert.Equal(t, 1, ft.flushes)
	assert.Equal(t, 126, joy.X(), "flushed samples are gone")
}

func TestJoystickCloseIdempotent(t *testing.T) {
	clk := &fakeClock{}
	ft := &fakeTransport{clk: clk}
	joy := testJoystick(ft, clk)

	require.NoError(t, joy.Close())
	require.NoError(t, joy.Close())
	assert.Equal(t, 1, ft.closes)
	assert.Equal(t, -1, joy.X())
}
