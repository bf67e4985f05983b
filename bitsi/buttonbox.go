package bitsi

import (
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Forever makes a wait call block until an event arrives.
const Forever = time.Duration(math.MaxInt64)

// ButtonEvent is one event byte read off the wire. Uppercase letters are
// button presses, lowercase letters releases; 'S' and 'V' report sound
// and voice detection on the extended box. Elapsed is measured against
// the client's Clock when one is set, else against the start of the
// wait call that produced the event.
type ButtonEvent struct {
	Code    byte
	Elapsed time.Duration
}

func (e ButtonEvent) String() string { return string(e.Code) }

// Buttonbox is a client for the BITSI buttonbox. Typical usage:
//
//	bb, err := bitsi.NewButtonbox() // connect to last inserted buttonbox
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer bb.Close()
//
//	events, err := bb.WaitButtons(10*time.Second, "", true)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if events == nil {
//		fmt.Println("no key pressed")
//	}
//
// The zero value is not connected; every protocol operation on it
// returns ErrNotConnected. A Buttonbox must not be used from more than
// one goroutine at a time.
type Buttonbox struct {
	sess  *Session
	lg    log.FieldLogger
	clock Clock
	now   func() time.Time
	sleep func(time.Duration)
}

// NewButtonbox connects to a BITSI buttonbox. Without options the most
// recently attached USB serial device is used.
//
// ErrNoPortFound and ErrConnectionFailed fail construction. On
// ErrHandshakeTimeout the client is returned alongside the error and
// stays usable; a device that identifies as something other than a
// buttonbox is logged but accepted.
func NewButtonbox(opts ...Option) (*Buttonbox, error) {
	cfg := newConfig(opts)
	sess, err := openClientSession(cfg)
	if err != nil && sess == nil {
		return nil, err
	}
	b := &Buttonbox{sess: sess, lg: cfg.lg, clock: cfg.clock, now: cfg.now, sleep: cfg.sleep}
	if sess.Kind() == KindButtonbox {
		b.lg.Debugf("Device is a BITSI buttonbox (%d): %s", len(sess.Identity()), sess.Identity())
	} else {
		b.lg.Errorf("Device is NOT a BITSI buttonbox (%d): %s", len(sess.Identity()), sess.Identity())
	}
	return b, err
}

// openClientSession resolves a port and opens a session on it, keeping
// the session through a handshake timeout.
func openClientSession(cfg *config) (*Session, error) {
	port, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	return openSession(port, cfg)
}

// Identity returns the identity string the device sent after reset.
func (b *Buttonbox) Identity() string { return b.sess.Identity() }

// Kind classifies the connected device.
func (b *Buttonbox) Kind() DeviceKind { return b.sess.Kind() }

// Close closes the connection. Safe to call more than once.
func (b *Buttonbox) Close() error { return b.sess.Close() }

// ClearEvents discards events still sitting in the input buffer.
func (b *Buttonbox) ClearEvents() error {
	if !b.sess.connected() {
		return ErrNotConnected
	}
	if err := b.sess.t.ResetInputBuffer(); err != nil {
		return fmt.Errorf("could not clear buttonbox buffer: %w", err)
	}
	return nil
}

// GetButtons returns the event characters currently available, without
// blocking. A non-empty filter keeps only the listed characters; other
// input is discarded. May return an empty string.
func (b *Buttonbox) GetButtons(filter string) (string, error) {
	if !b.sess.connected() {
		return "", ErrNotConnected
	}
	if err := b.sess.t.SetReadTimeout(0); err != nil {
		return "", err
	}
	buf := make([]byte, 1024)
	n, err := b.sess.t.Read(buf)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, c := range buf[:n] {
		if filterMatch(filter, c) {
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

// WaitButtons blocks until a button event passes the filter or maxWait
// elapses, whichever comes first. Use Forever to wait indefinitely.
// When flush is set, pending input is discarded first, so preceding
// presses are lost. Characters outside the filter are discarded and the
// wait continues.
//
// Returns a single-event slice on success and nil on timeout.
func (b *Buttonbox) WaitButtons(maxWait time.Duration, filter string, flush bool) ([]ButtonEvent, error) {
	return b.waitEvent(maxWait, filter, flush, false)
}

// WaitButtonsHog is WaitButtons implemented as a busy poll of the
// transport's pending-byte count instead of transport read timeouts.
// Starts reacting faster on platforms where arming a short read timeout
// is expensive, at the cost of hogging a core. Only the first qualifying
// byte that arrives after the call begins is returned.
func (b *Buttonbox) WaitButtonsHog(maxWait time.Duration, filter string, flush bool) ([]ButtonEvent, error) {
	return b.waitEvent(maxWait, filter, flush, true)
}

func (b *Buttonbox) waitEvent(maxWait time.Duration, filter string, flush, hog bool) ([]ButtonEvent, error) {
	if !b.sess.connected() {
		return nil, ErrNotConnected
	}
	start := b.now()
	if flush {
		if err := b.sess.t.ResetInputBuffer(); err != nil {
			return nil, fmt.Errorf("could not clear buttonbox buffer: %w", err)
		}
	}
	if hog {
		return b.waitHog(start, maxWait, filter)
	}
	return b.waitTimeout(start, maxWait, filter)
}

// waitTimeout re-arms the transport read timeout with the remaining
// wait on every iteration. Recomputing each pass avoids drift from slow
// reads and keeps the deadline exact across platforms.
func (b *Buttonbox) waitTimeout(start time.Time, maxWait time.Duration, filter string) ([]ButtonEvent, error) {
	var c [1]byte
	for {
		elapsed := b.now().Sub(start)
		if maxWait != Forever && elapsed >= maxWait {
			return nil, nil
		}
		if maxWait == Forever {
			if err := b.sess.t.SetReadTimeout(NoTimeout); err != nil {
				return nil, err
			}
		} else {
			if err := b.sess.t.SetReadTimeout(maxWait - elapsed); err != nil {
				return nil, err
			}
		}
		n, err := b.sess.t.Read(c[:])
		if err != nil {
			return nil, err
		}
		if n == 0 || !filterMatch(filter, c[0]) {
			continue
		}
		return []ButtonEvent{{Code: c[0], Elapsed: b.elapsedSince(start)}}, nil
	}
}

// waitHog busy-polls the pending-byte count. Bytes already pending when
// the call began are skipped so only input arriving afterwards counts.
func (b *Buttonbox) waitHog(start time.Time, maxWait time.Duration, filter string) ([]ButtonEvent, error) {
	skip, err := b.sess.t.Buffered()
	if err != nil {
		return nil, err
	}
	for {
		if maxWait != Forever && b.now().Sub(start) >= maxWait {
			return nil, nil
		}
		pending, err := b.sess.t.Buffered()
		if err != nil {
			return nil, err
		}
		if pending == 0 {
			continue
		}
		if err := b.sess.t.SetReadTimeout(0); err != nil {
			return nil, err
		}
		buf := make([]byte, pending)
		n, err := b.sess.t.Read(buf)
		if err != nil {
			return nil, err
		}
		for _, c := range buf[:n] {
			if skip > 0 {
				skip--
				continue
			}
			if filterMatch(filter, c) {
				return []ButtonEvent{{Code: c, Elapsed: b.elapsedSince(start)}}, nil
			}
		}
	}
}

func (b *Buttonbox) elapsedSince(start time.Time) time.Duration {
	if b.clock != nil {
		return b.clock.Elapsed()
	}
	return b.now().Sub(start)
}

func filterMatch(filter string, c byte) bool {
	return filter == "" || strings.IndexByte(filter, c) >= 0
}

// SetLeds drives the LEDs with the given pattern; a nil pattern turns
// all of them off.
func (b *Buttonbox) SetLeds(pattern []bool) error {
	return b.SetLedsRaw(LedByte(pattern))
}

// SetLedsRaw drives the LEDs with a raw output byte.
func (b *Buttonbox) SetLedsRaw(v byte) error {
	if !b.sess.connected() {
		return ErrNotConnected
	}
	_, err := b.sess.t.Write([]byte{v})
	return err
}

// SendMarker is identical to SetLeds; the plain buttonbox has no
// separate marker channel.
func (b *Buttonbox) SendMarker(pattern []bool) error { return b.SetLeds(pattern) }

// SendMarkerRaw is identical to SetLedsRaw.
func (b *Buttonbox) SendMarkerRaw(v byte) error { return b.SetLedsRaw(v) }

// WaitLeds sets the LEDs, holds the pattern for the given duration and
// switches them off again. Blocks the caller for the hold time; the
// point is to pulse an output marker visible to external equipment.
// A non-positive hold defaults to one second.
func (b *Buttonbox) WaitLeds(pattern []bool, hold time.Duration) error {
	if !b.sess.connected() {
		return ErrNotConnected
	}
	if hold <= 0 {
		hold = time.Second
	}
	if err := b.SetLeds(pattern); err != nil {
		return err
	}
	b.sleep(hold)
	return b.SetLeds(nil)
}
