package bitsi

import "time"

// Command bytes of the extended buttonbox. Each command is an ASCII
// byte, optionally followed by a parameter byte.
const (
	cmdLeds      = 'L' // 'L' 'O' <byte>: connect LEDs to host output
	cmdLedSource = 'O'
	cmdMarker    = 'M' // 'M' <byte>: pulse the marker channel
	cmdCalibrate = 'C' // 'C' 'S'/'V': calibrate sound/voice level
	cmdDetect    = 'D' // 'D' 'S'/'V': arm sound/voice detection
	codeSound    = 'S'
	codeVoice    = 'V'
)

const calibrationTime = time.Second

// Extended is a client for the BITSI extended buttonbox, which adds a
// marker channel independent of the LEDs and sound/voice detection.
type Extended struct {
	Buttonbox

	calibratedSound bool
	calibratedVoice bool
}

// NewExtended connects to a BITSI extended buttonbox. Construction
// follows NewButtonbox; a device that identifies as something else is
// logged but accepted.
func NewExtended(opts ...Option) (*Extended, error) {
	cfg := newConfig(opts)
	sess, err := openClientSession(cfg)
	if err != nil && sess == nil {
		return nil, err
	}
	e := &Extended{Buttonbox: Buttonbox{sess: sess, lg: cfg.lg, clock: cfg.clock, now: cfg.now, sleep: cfg.sleep}}
	if sess.Kind() == KindExtended {
		e.lg.Debugf("Device is a BITSI extended buttonbox: %v", sess.Identity())
	} else {
		e.lg.Infof("Device did not identify as a BITSI extended buttonbox: %v", sess.Identity())
	}
	return e, err
}

// Send writes one raw command or parameter byte to the device.
func (e *Extended) Send(v byte) error {
	if !e.sess.connected() {
		return ErrNotConnected
	}
	_, err := e.sess.t.Write([]byte{v})
	return err
}

// SetLeds connects the LEDs to the host and drives them with the given
// pattern; a nil pattern turns all of them off.
func (e *Extended) SetLeds(pattern []bool) error {
	return e.SetLedsRaw(LedByte(pattern))
}

// SetLedsRaw drives the LEDs with a raw output byte.
func (e *Extended) SetLedsRaw(v byte) error {
	if err := e.Send(cmdLeds); err != nil {
		return err
	}
	if err := e.Send(cmdLedSource); err != nil {
		return err
	}
	return e.Send(v)
}

// SendMarker pulses the marker channel, which on the extended box is
// independent of the LEDs and wired to external recording equipment.
func (e *Extended) SendMarker(pattern []bool) error {
	return e.SendMarkerRaw(LedByte(pattern))
}

// SendMarkerRaw pulses the marker channel with a raw output byte.
func (e *Extended) SendMarkerRaw(v byte) error {
	if err := e.Send(cmdMarker); err != nil {
		return err
	}
	return e.Send(v)
}

// WaitLeds sets the LEDs, holds the pattern for the given duration and
// switches them off again. A non-positive hold defaults to one second.
func (e *Extended) WaitLeds(pattern []bool, hold time.Duration) error {
	if hold <= 0 {
		hold = time.Second
	}
	if err := e.SetLeds(pattern); err != nil {
		return err
	}
	e.sleep(hold)
	return e.SetLeds(nil)
}

// CalibrateSound adjusts the sound detection level to the ambient
// noise. Keep silent for the one second the calibration takes.
func (e *Extended) CalibrateSound() error {
	if err := e.calibrate(codeSound); err != nil {
		return err
	}
	e.calibratedSound = true
	return nil
}

// CalibrateVoice adjusts the voice detection level to the ambient
// noise. Keep silent for the one second the calibration takes.
func (e *Extended) CalibrateVoice() error {
	if err := e.calibrate(codeVoice); err != nil {
		return err
	}
	e.calibratedVoice = true
	return nil
}

func (e *Extended) calibrate(code byte) error {
	if err := e.Send(cmdCalibrate); err != nil {
		return err
	}
	if err := e.Send(code); err != nil {
		return err
	}
	e.sleep(calibrationTime)
	return nil
}

// WaitSound arms sound detection and blocks until the device reports a
// sound or maxWait elapses. Calibrates first if that has not happened
// yet this session, which adds a one second delay.
func (e *Extended) WaitSound(maxWait time.Duration, flush bool) ([]ButtonEvent, error) {
	if !e.calibratedSound {
		e.lg.Debug("calibrating sound, wait 1 s.")
		if err := e.CalibrateSound(); err != nil {
			return nil, err
		}
	}
	return e.waitDetect(maxWait, flush, codeSound)
}

// WaitVoice arms voice detection and blocks until the device reports
// voice onset or maxWait elapses. Calibrates first if that has not
// happened yet this session, which adds a one second delay.
func (e *Extended) WaitVoice(maxWait time.Duration, flush bool) ([]ButtonEvent, error) {
	if !e.calibratedVoice {
		e.lg.Debug("calibrating voice, wait 1 s.")
		if err := e.CalibrateVoice(); err != nil {
			return nil, err
		}
	}
	return e.waitDetect(maxWait, flush, codeVoice)
}

func (e *Extended) waitDetect(maxWait time.Duration, flush bool, code byte) ([]ButtonEvent, error) {
	if flush {
		// Flush detection events still queued from earlier arming.
		if err := e.ClearEvents(); err != nil {
			return nil, err
		}
	}
	if err := e.Send(cmdDetect); err != nil {
		return nil, err
	}
	if err := e.Send(code); err != nil {
		return nil, err
	}
	return e.WaitButtons(maxWait, string(code), false)
}
