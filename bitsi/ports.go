package bitsi

import (
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// Enumerator lists candidate USB serial ports, most recently attached
// first. Implemented per platform; injected so the resolver stays
// testable with a fake.
type Enumerator interface {
	Ports() ([]string, error)
}

// EnumeratorFunc adapts a function to the Enumerator interface.
type EnumeratorFunc func() ([]string, error)

func (f EnumeratorFunc) Ports() ([]string, error) { return f() }

// DefaultEnumerator lists USB-to-serial device nodes ordered by
// attach time (newest first). Note that any USB serial adapter shows
// up here, joysticks and buttonboxes alike.
func DefaultEnumerator() Enumerator {
	return EnumeratorFunc(usbSerialPorts)
}

func usbSerialPorts() ([]string, error) {
	all, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	var ports []string
	for _, p := range all {
		if isUSBSerial(p) {
			ports = append(ports, p)
		}
	}
	// Device nodes are created on attach, so mtime gives the attach
	// order. Ports without a stat keep their list position.
	sort.SliceStable(ports, func(i, j int) bool {
		return nodeTime(ports[i]) > nodeTime(ports[j])
	})
	return ports, nil
}

func isUSBSerial(port string) bool {
	base := port[strings.LastIndexByte(port, '/')+1:]
	return strings.HasPrefix(base, "ttyUSB") ||
		strings.HasPrefix(base, "ttyACM") ||
		strings.HasPrefix(base, "tty.usbserial") ||
		strings.HasPrefix(base, "tty.usbmodem") ||
		strings.HasPrefix(base, "COM")
}

func nodeTime(port string) int64 {
	fi, err := os.Stat(port)
	if err != nil {
		return 0
	}
	return fi.ModTime().UnixNano()
}

// ResolvePort picks the serial port to connect to. An explicit port wins
// unchanged; it may name any transport-openable device, USB backed or
// not. Otherwise index selects from the enumerator's list, 0 being the
// most recently attached device.
func ResolvePort(index int, explicit string, enum Enumerator, lg log.FieldLogger) (string, error) {
	if lg == nil {
		lg = log.StandardLogger()
	}
	if explicit != "" {
		lg.Debugf("Connecting to USB serial port: %v", explicit)
		return explicit, nil
	}
	if enum == nil {
		enum = DefaultEnumerator()
	}
	ports, err := enum.Ports()
	if err != nil {
		return "", err
	}
	lg.Debugf("USB to serial interfaces: %v", ports)
	if index < 0 || index >= len(ports) {
		lg.Errorf("id %v invalid, number of USB serial ports found: %v", index, len(ports))
		return "", ErrNoPortFound
	}
	lg.Debugf("Connecting to USB serial port: %v", ports[index])
	return ports[index], nil
}
