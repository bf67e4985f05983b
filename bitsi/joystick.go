package bitsi

import (
	log "github.com/sirupsen/logrus"
)

// joystickRest is the documented mid-range angle; the device streams
// values in [51, 201].
const joystickRest = 126

// Joystick is a client for the analog joystick, which continuously
// streams its angle as single bytes.
type Joystick struct {
	sess *Session
	lg   log.FieldLogger
	x    int
}

// NewJoystick connects to a joystick. Construction follows NewButtonbox;
// a device that identifies as something else is logged but accepted.
func NewJoystick(opts ...Option) (*Joystick, error) {
	cfg := newConfig(opts)
	sess, err := openClientSession(cfg)
	if err != nil && sess == nil {
		return nil, err
	}
	j := &Joystick{sess: sess, lg: cfg.lg, x: joystickRest}
	if sess.Kind() == KindJoystick {
		j.lg.Debugf("Device is a joystick (%d): %v", len(sess.Identity()), sess.Identity())
	} else {
		j.lg.Errorf("Device is NOT a joystick (%d): %v", len(sess.Identity()), sess.Identity())
	}
	return j, err
}

// X returns the current angle on the X axis. All buffered samples are
// drained and the newest one wins; with no fresh sample the last known
// value is returned. Without a connection X logs an error and returns
// -1 instead of failing, so polling call sites survive a momentarily
// unplugged device.
func (j *Joystick) X() int {
	if !j.sess.connected() {
		j.lg.Error("Joystick not initialized")
		return -1
	}
	if err := j.sess.t.SetReadTimeout(0); err != nil {
		j.lg.Errorf("Joystick read: %v", err)
		return j.x
	}
	var c [1]byte
	n := 0
	for {
		rn, err := j.sess.t.Read(c[:])
		if err != nil || rn == 0 {
			break
		}
		j.x = int(c[0])
		n++
	}
	j.lg.Debugf("read %v bytes, ending in %v", n, j.x)
	return j.x
}

// AllAxes returns the current value of every axis.
func (j *Joystick) AllAxes() []int { return []int{j.X()} }

// Axis returns the value of the given axis. The device has a single
// axis, so every id maps to X.
func (j *Joystick) Axis(id int) int { return j.X() }

// NumAxes returns the number of axes.
func (j *Joystick) NumAxes() int { return 1 }

// NumHats returns the number of hats.
func (j *Joystick) NumHats() int { return 0 }

// Identity returns the identity string the device sent after reset.
func (j *Joystick) Identity() string { return j.sess.Identity() }

// Kind classifies the connected device.
func (j *Joystick) Kind() DeviceKind { return j.sess.Kind() }

// ClearEvents discards samples still sitting in the input buffer.
func (j *Joystick) ClearEvents() error {
	if !j.sess.connected() {
		return ErrNotConnected
	}
	return j.sess.t.ResetInputBuffer()
}

// Close closes the connection. Safe to call more than once.
func (j *Joystick) Close() error { return j.sess.Close() }
