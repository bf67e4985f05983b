package bitsi

import (
	"errors"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Baud is the fixed line rate of all BITSI devices.
const Baud = 115200

// NoTimeout makes SetReadTimeout block forever.
var NoTimeout = serial.NoTimeout

// Transport is a duplex byte stream to a device on a named port.
// A zero read timeout returns immediately, NoTimeout blocks forever.
type Transport interface {
	io.ReadWriteCloser
	SetReadTimeout(d time.Duration) error
	ResetInputBuffer() error
	SetDTR(on bool) error

	// Buffered reports the number of bytes that can be read without
	// blocking. Used by the hog wait variant instead of read timeouts.
	Buffered() (int, error)
}

// DialFunc opens a Transport on a named port.
type DialFunc func(port string) (Transport, error)

// Dial opens a serial Transport at 115200 8N1.
func Dial(port string) (Transport, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(0); err != nil {
		p.Close()
		return nil, err
	}
	return &serialTransport{port: p}, nil
}

// serialTransport adapts a serial.Port. The port has no pending-byte
// counter, so Buffered drains with a zero timeout into a stash that
// subsequent Reads consume first.
type serialTransport struct {
	port    serial.Port
	stash   []byte
	timeout time.Duration
}

func (t *serialTransport) Read(p []byte) (int, error) {
	if len(t.stash) > 0 {
		n := copy(p, t.stash)
		t.stash = t.stash[n:]
		return n, nil
	}
	return t.port.Read(p)
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}

func (t *serialTransport) SetReadTimeout(d time.Duration) error {
	t.timeout = d
	return t.port.SetReadTimeout(d)
}

func (t *serialTransport) ResetInputBuffer() error {
	t.stash = nil
	return t.port.ResetInputBuffer()
}

func (t *serialTransport) SetDTR(on bool) error {
	return t.port.SetDTR(on)
}

func (t *serialTransport) Buffered() (int, error) {
	if err := t.port.SetReadTimeout(0); err != nil {
		return 0, err
	}
	var buf [256]byte
	for {
		n, err := t.port.Read(buf[:])
		if n > 0 {
			t.stash = append(t.stash, buf[:n]...)
		}
		if err != nil {
			t.port.SetReadTimeout(t.timeout)
			return len(t.stash), err
		}
		if n == 0 {
			break
		}
	}
	if err := t.port.SetReadTimeout(t.timeout); err != nil {
		return len(t.stash), err
	}
	return len(t.stash), nil
}

// isBusy reports whether an open error means the port is transiently busy,
// in which case opening is retried. Some platforms only surface this in
// the error text.
func isBusy(err error) bool {
	var pe *serial.PortError
	if errors.As(err, &pe) && pe.Code() == serial.PortBusy {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "busy")
}
