package bitsi

import (
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// fakeClock drives the injectable now/sleep pair so timing-sensitive
// code runs instantly under test.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time                  { return c.t }
func (c *fakeClock) advance(d time.Duration)         { c.t = c.t.Add(d) }
func (c *fakeClock) sleep(d time.Duration)           { c.advance(d) }
func (c *fakeClock) since(s time.Time) time.Duration { return c.t.Sub(s) }

// withFakeClock wires a fakeClock into a client config.
func withFakeClock(clk *fakeClock) Option {
	return func(c *config) {
		c.now = clk.now
		c.sleep = clk.sleep
	}
}

// fakeTransport scripts the device side of the wire. A blocking read on
// empty input "waits" by advancing the fake clock with the armed
// timeout; Buffered advances it by pollTick so hog loops terminate.
// Bytes in boot only become readable once DTR is re-asserted, the way a
// real device prints its identity after the reset.
type fakeTransport struct {
	clk *fakeClock

	boot    []byte
	input   []byte
	written []byte

	timeout  time.Duration
	dtr      []bool
	flushes  int
	closes   int
	pollTick time.Duration

	readErr    error
	readDelay  time.Duration
	onBuffered func(*fakeTransport)
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if f.readDelay > 0 {
		f.clk.advance(f.readDelay)
	}
	if len(f.input) == 0 {
		if f.timeout > 0 && f.timeout != NoTimeout {
			f.clk.advance(f.timeout)
		}
		return 0, nil
	}
	n := copy(p, f.input)
	f.input = f.input[n:]
	return n, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakeTransport) Close() error {
	f.closes++
	return nil
}

func (f *fakeTransport) SetReadTimeout(d time.Duration) error {
	f.timeout = d
	return nil
}

func (f *fakeTransport) ResetInputBuffer() error {
	f.flushes++
	f.input = nil
	return nil
}

func (f *fakeTransport) SetDTR(on bool) error {
	f.dtr = append(f.dtr, on)
	if on {
		f.input = append(f.input, f.boot...)
		f.boot = nil
	}
	return nil
}

func (f *fakeTransport) Buffered() (int, error) {
	if f.onBuffered != nil {
		f.onBuffered(f)
	}
	if f.pollTick > 0 {
		f.clk.advance(f.pollTick)
	}
	return len(f.input), nil
}

func dialerFor(ft *fakeTransport) DialFunc {
	return func(string) (Transport, error) { return ft, nil }
}

func testLogger() (log.FieldLogger, *logtest.Hook) {
	lg, hook := logtest.NewNullLogger()
	lg.SetLevel(log.DebugLevel)
	return lg, hook
}

func lastEntryAtLevel(hook *logtest.Hook, lvl log.Level) *log.Entry {
	for i := len(hook.Entries) - 1; i >= 0; i-- {
		if hook.Entries[i].Level == lvl {
			return &hook.Entries[i]
		}
	}
	return nil
}

// elapsedClock is a fixed external time reference.
type elapsedClock time.Duration

func (c elapsedClock) Elapsed() time.Duration { return time.Duration(c) }

// testSession builds a connected session around a fake transport,
// bypassing the open/reset sequence.
func testSession(ft *fakeTransport, clk *fakeClock, identity string) *Session {
	lg, _ := testLogger()
	return &Session{t: ft, identity: identity, lg: lg, now: clk.now, sleep: clk.sleep}
}

func testButtonbox(ft *fakeTransport, clk *fakeClock) *Buttonbox {
	s := testSession(ft, clk, "BITSI mode, Ready!")
	return &Buttonbox{sess: s, lg: s.lg, now: clk.now, sleep: clk.sleep}
}

func testExtended(ft *fakeTransport, clk *fakeClock) *Extended {
	s := testSession(ft, clk, "BITSI_extend mode, Ready!")
	return &Extended{Buttonbox: Buttonbox{sess: s, lg: s.lg, now: clk.now, sleep: clk.sleep}}
}

func testJoystick(ft *fakeTransport, clk *fakeClock) *Joystick {
	s := testSession(ft, clk, "joystick streaming angle, Ready!")
	return &Joystick{sess: s, lg: s.lg, x: joystickRest}
}
