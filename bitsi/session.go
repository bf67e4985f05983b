package bitsi

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Reset and handshake timing. The DTR toggle reboots devices that reset
// on DTR (Arduino style bootloaders); devices with persistent firmware
// ignore it but still need the settle time to emit their identity.
const (
	dtrLowTime        = 100 * time.Millisecond
	dtrSettleTime     = 1 * time.Second
	handshakeDeadline = 6 * time.Second
	openRetryPause    = 1 * time.Second
)

// DeviceKind classifies the identity string a device sends after reset.
type DeviceKind int

const (
	KindUnknown DeviceKind = iota
	KindButtonbox
	KindExtended
	KindJoystick
)

func (k DeviceKind) String() string {
	switch k {
	case KindButtonbox:
		return "buttonbox"
	case KindExtended:
		return "extended buttonbox"
	case KindJoystick:
		return "joystick"
	}
	return "unknown"
}

// Classify matches an identity string against the known device
// signatures. Unrecognized strings map to KindUnknown; the raw string
// stays available on the Session.
func Classify(identity string) DeviceKind {
	switch {
	case strings.HasPrefix(identity, "BITSI_extend mode, Ready!"):
		return KindExtended
	case strings.HasPrefix(identity, "BITSI mode, Ready!"),
		strings.HasPrefix(identity, "BITSI event mode, Ready!"):
		return KindButtonbox
	case identity == "joystick streaming angle, Ready!":
		return KindJoystick
	}
	return KindUnknown
}

// Session owns the transport to one device for the lifetime of a client.
// A Session must not be shared across goroutines; callers serialize.
type Session struct {
	t        Transport
	identity string

	lg    log.FieldLogger
	now   func() time.Time
	sleep func(time.Duration)
}

// Identity returns the line the device sent during the handshake, with
// the trailing CR LF stripped. On handshake timeout it holds whatever
// bytes arrived.
func (s *Session) Identity() string {
	if s == nil {
		return ""
	}
	return s.identity
}

// Kind classifies the session's identity string.
func (s *Session) Kind() DeviceKind { return Classify(s.Identity()) }

// Close closes the transport. Safe to call more than once.
func (s *Session) Close() error {
	if s == nil || s.t == nil {
		return nil
	}
	t := s.t
	s.t = nil
	return t.Close()
}

func (s *Session) connected() bool { return s != nil && s.t != nil }

// OpenSession opens the named port, resets the device and reads its
// identity string.
//
// Opening retries indefinitely while the port is transiently busy; any
// other open error aborts with ErrConnectionFailed. After a successful
// open the input buffer is flushed, DTR is pulled low for 0.1 s and
// re-asserted, and the device gets 1 s to boot. Bytes are then
// accumulated until they end in CR LF or 6 s have passed since the open
// began. On timeout the partial buffer becomes the identity and the
// session is returned together with ErrHandshakeTimeout; the device may
// still be usable.
func OpenSession(port string, opts ...Option) (*Session, error) {
	cfg := newConfig(opts)
	return openSession(port, cfg)
}

func openSession(port string, cfg *config) (*Session, error) {
	s := &Session{lg: cfg.lg, now: cfg.now, sleep: cfg.sleep}

	begin := s.now()
	for {
		t, err := cfg.dial(port)
		if err == nil {
			s.t = t
			break
		}
		if !isBusy(err) {
			return nil, fmt.Errorf("%w: could not connect to serial port %v: %v", ErrConnectionFailed, port, err)
		}
		s.lg.Debug("Opening COM port is taking a little while, please stand by...")
		s.sleep(openRetryPause)
	}

	// Flush before the reset so nothing stale ends up in the identity.
	if err := s.t.ResetInputBuffer(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	if err := s.t.SetDTR(false); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	s.sleep(dtrLowTime)
	if err := s.t.SetDTR(true); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	s.sleep(dtrSettleTime)

	// Collect bytes up to the CR LF that terminates the identity string.
	var read []byte
	var b [1]byte
	for len(read) < 2 || read[len(read)-2] != '\r' || read[len(read)-1] != '\n' {
		remaining := handshakeDeadline - s.now().Sub(begin)
		if remaining <= 0 {
			s.lg.Info("USB serial timeout waiting for ID string")
			s.identity = string(read)
			return s, ErrHandshakeTimeout
		}
		if err := s.t.SetReadTimeout(remaining); err != nil {
			s.identity = string(read)
			return s, fmt.Errorf("%w: %v", ErrHandshakeTimeout, err)
		}
		n, err := s.t.Read(b[:])
		if n > 0 {
			read = append(read, b[0])
		}
		if err != nil {
			s.identity = string(read)
			return s, fmt.Errorf("%w: %v", ErrHandshakeTimeout, err)
		}
	}
	s.identity = string(read[:len(read)-2])
	return s, nil
}
