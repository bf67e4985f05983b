package bitsi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnum(ports ...string) Enumerator {
	return EnumeratorFunc(func() ([]string, error) { return ports, nil })
}

func TestResolvePortExplicit(t *testing.T) {
	lg, _ := testLogger()

	// An explicit port is trusted as-is and never enumerated, so it may
	// name a non-USB device.
	enum := EnumeratorFunc(func() ([]string, error) {
		t.Fatal("enumerator must not run for an explicit port")
		return nil, nil
	})
	port, err := ResolvePort(0, "/dev/ttyS4", enum, lg)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS4", port)
}

func TestResolvePortByIndex(t *testing.T) {
	lg, _ := testLogger()
	enum := fakeEnum("/dev/ttyUSB2", "/dev/ttyUSB0", "/dev/ttyACM0")

	port, err := ResolvePort(0, "", enum, lg)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB2", port, "index 0 is the most recently attached")

	port, err = ResolvePort(2, "", enum, lg)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", port)
}

func TestResolvePortNotFound(t *testing.T) {
	lg, hook := testLogger()

	_, err := ResolvePort(3, "", fakeEnum("/dev/ttyUSB0"), lg)
	assert.ErrorIs(t, err, ErrNoPortFound)

	_, err = ResolvePort(0, "", fakeEnum(), lg)
	assert.ErrorIs(t, err, ErrNoPortFound)

	// Out-of-range index is logged with the list length for diagnosis.
	require.NotEmpty(t, hook.Entries)
	assert.Contains(t, hook.LastEntry().Message, "number of USB serial ports found: 0")
}

func TestResolvePortEnumeratorError(t *testing.T) {
	lg, _ := testLogger()
	boom := errors.New("sysfs walk failed")
	enum := EnumeratorFunc(func() ([]string, error) { return nil, boom })

	_, err := ResolvePort(0, "", enum, lg)
	assert.ErrorIs(t, err, boom)
}

func TestIsUSBSerial(t *testing.T) {
	tests := []struct {
		port string
		want bool
	}{
		{"/dev/ttyUSB0", true},
		{"/dev/ttyACM1", true},
		{"/dev/tty.usbserial-AH01L3OL", true},
		{"/dev/tty.usbmodem14101", true},
		{"COM3", true},
		{"/dev/ttyS0", false},
		{"/dev/ttyAMA0", false},
		{"/dev/tty1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isUSBSerial(tt.port), "port %q", tt.port)
	}
}
