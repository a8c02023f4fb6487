package link

import (
	"fmt"
	"time"
)

const (
	DefaultMessageTimeout         = 10 * time.Second
	DefaultMaxConsecutiveTimeouts = 3
)

// Config is the per-connection configuration. It is copied into the
// client at Connect time; mutating the caller's copy afterwards has no
// effect on the active connection.
type Config struct {
	// Host and Port locate the rendezvous endpoint.
	Host string
	Port int

	// Topic filters the telemetry subscription; empty matches all.
	Topic string

	// MessageTimeout bounds each telemetry wait and the discovery
	// round-trip.
	MessageTimeout time.Duration

	// MaxConsecutiveTimeouts is the back-to-back timeout count at which
	// the link is declared lost.
	MaxConsecutiveTimeouts int
}

func (c Config) withDefaults() Config {
	if c.MessageTimeout <= 0 {
		c.MessageTimeout = DefaultMessageTimeout
	}
	if c.MaxConsecutiveTimeouts <= 0 {
		c.MaxConsecutiveTimeouts = DefaultMaxConsecutiveTimeouts
	}
	return c
}

func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidParameters)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidParameters, c.Port)
	}
	return nil
}

func (c Config) rendezvousAddr() string {
	return fmt.Sprintf("tcp://%s:%d", c.Host, c.Port)
}
