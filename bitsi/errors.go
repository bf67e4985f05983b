package bitsi

import "errors"

var (
	// ErrNoPortFound is returned when the resolver has no candidate port at
	// the requested index.
	ErrNoPortFound = errors.New("no USB serial port found")

	// ErrConnectionFailed is returned when the transport could not be opened
	// for a non-retryable reason. The underlying error is wrapped.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrHandshakeTimeout is returned when the device did not terminate its
	// identity string with CR LF within the handshake deadline. The session
	// is still returned and may be usable.
	ErrHandshakeTimeout = errors.New("timeout waiting for ID string")

	// ErrNotConnected is returned by protocol operations on a client whose
	// session is absent or closed.
	ErrNotConnected = errors.New("no device connected")
)
