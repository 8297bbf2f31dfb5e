package core

import (
	"net"
)

// RoundTripResult is the end result of a round trip
type RoundTripResult int

const (
	// Replied is the result of when an echo request is successfully replied
	Replied RoundTripResult = iota
	// TTLExpired is the result of when an echo request exceeds the TTL
	TTLExpired
	// TimedOut is the result of when an echo request does not receive a reply in an expected time
	TimedOut
	// Ignored is the result of when the datagram read was not a reply to this process
	Ignored
	// Truncated is the result of when the datagram read was too short to be decoded
	Truncated
	// Errored is the result of when the socket itself failed
	Errored
)

func (r RoundTripResult) String() string {
	switch r {
	case Replied:
		return "replied"
	case TTLExpired:
		return "ttl expired"
	case TimedOut:
		return "timed out"
	case Ignored:
		return "ignored"
	case Truncated:
		return "truncated"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// RoundTrip is the outcome of one send and bounded wait.
type RoundTrip struct {
	Res RoundTripResult

	// Seq is the sequence of the echo request this round trip belongs to.
	Seq int

	// Src is the source address of the reply.
	Src net.IP

	// TTL is the TTL of the IPv4 reply, -1 when unknown.
	TTL int

	// Len is the number of payload bytes in the reply.
	Len int

	// RTT is the round-trip time in milliseconds.
	RTT float64

	// Err is set when Res is Errored or Truncated.
	Err error

	// looped is set for our own echo request read back from a loopback destination.
	looped bool
}

func timedOutRT(seq int) *RoundTrip {
	return &RoundTrip{Res: TimedOut, Seq: seq, TTL: -1}
}

func failedRT(seq int, err error) *RoundTrip {
	return &RoundTrip{Res: Errored, Seq: seq, TTL: -1, Err: err}
}
