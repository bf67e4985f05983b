// Package bitsi talks to the RuSocSci line of BITSI USB serial lab
// devices: the buttonbox, the extended buttonbox with sound and voice
// detection, and the analog joystick.
//
// A client resolves a serial port (by attach order or an explicit
// name), opens it at 115200 8N1, reboots the device by toggling DTR and
// reads the identity string the firmware prints. All later traffic is
// single unframed bytes: uppercase letters are button presses,
// lowercase letters releases, and the extended box understands a small
// set of ASCII commands for LEDs, markers and detection.
//
// All USB serial adapters look alike to the port enumerator, so a
// joystick can end up in the buttonbox list and vice versa; the device
// classification after the handshake is therefore a soft check that
// logs a mismatch but keeps the connection.
package bitsi
