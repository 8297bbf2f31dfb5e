package core

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultCount is the number of echo replies a ping session waits for.
	DefaultCount = 4

	// MaxRetries is how many consecutive timeouts a single sequence may hit before a ping session aborts.
	MaxRetries = 3

	// ProbesPerHop is the number of echo requests a traceroute sends per TTL.
	ProbesPerHop = 3

	// DefaultMaxHops is the hop budget of a traceroute.
	DefaultMaxHops = 30
)

// Settings contains all configurable properties of a ping or traceroute session.
type Settings struct {
	// Family selects IPv4 or IPv6.
	Family Family

	// Count is the number of echo replies to collect before exiting.
	Count int

	// Flood disables the delay between two echo requests.
	Flood bool

	// Interval is the delay between a reply and the next echo request when not flooding.
	Interval time.Duration

	// Timeout is how long to wait for each reply.
	Timeout time.Duration

	// MaxHops is the largest TTL a traceroute probes.
	MaxHops int

	// WaitForMatch keeps waiting after an unrelated datagram instead of giving up the attempt.
	WaitForMatch bool

	// LoggingLevel is the logrus level of the session logger.
	LoggingLevel uint32
}

// DefaultSettings returns the default settings for a session, change as you wish.
func DefaultSettings() *Settings {
	return &Settings{
		Family:       IPv4,
		Count:        DefaultCount,
		Flood:        false,
		Interval:     time.Second,
		Timeout:      time.Second,
		MaxHops:      DefaultMaxHops,
		WaitForMatch: false,
		LoggingLevel: uint32(log.WarnLevel),
	}
}

// validate returns an error wrapping ErrUsage if any setting is out of range.
func (s *Settings) validate() error {
	if s.Family != IPv4 && s.Family != IPv6 {
		return fmt.Errorf("%w: family must be IPv4 or IPv6", ErrUsage)
	}
	if s.Count <= 0 || s.Count > 0xffff {
		return fmt.Errorf("%w: count must be between 1 and 65535, got %d", ErrUsage, s.Count)
	}
	if s.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrUsage)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrUsage)
	}
	if s.MaxHops <= 0 || s.MaxHops > 255 {
		return fmt.Errorf("%w: max hops must be between 1 and 255, got %d", ErrUsage, s.MaxHops)
	}
	return nil
}
