package bitsi

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Clock supplies an external elapsed-time reference for timestamped
// button events, typically "time since last stimulus reset" from an
// experiment framework. When absent, events are stamped relative to the
// start of the wait call.
type Clock interface {
	Elapsed() time.Duration
}

type config struct {
	index int
	port  string
	enum  Enumerator
	dial  DialFunc
	lg    log.FieldLogger
	clock Clock
	now   func() time.Time
	sleep func(time.Duration)
}

// Option configures client construction.
type Option func(*config)

// WithIndex selects the index-th most recently attached USB serial
// device (0 is the newest). Ignored when WithPort is given.
func WithIndex(i int) Option {
	return func(c *config) { c.index = i }
}

// WithPort bypasses enumeration and connects to the named port, which
// may be any transport-openable device, USB backed or not.
func WithPort(port string) Option {
	return func(c *config) { c.port = port }
}

// WithEnumerator replaces the platform port enumerator.
func WithEnumerator(e Enumerator) Option {
	return func(c *config) { c.enum = e }
}

// WithDialer replaces the transport opener.
func WithDialer(d DialFunc) Option {
	return func(c *config) { c.dial = d }
}

// WithLogger routes the client's diagnostics to lg instead of the
// process-wide standard logger.
func WithLogger(lg log.FieldLogger) Option {
	return func(c *config) { c.lg = lg }
}

// WithClock supplies the elapsed-time reference used to timestamp
// button events.
func WithClock(clk Clock) Option {
	return func(c *config) { c.clock = clk }
}

func newConfig(opts []Option) *config {
	cfg := &config{
		dial:  Dial,
		lg:    log.StandardLogger(),
		now:   time.Now,
		sleep: time.Sleep,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

func (c *config) resolve() (string, error) {
	return ResolvePort(c.index, c.port, c.enum, c.lg)
}
