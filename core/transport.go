package core

import (
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

// recvBufferSize bounds every datagram read from the socket.
const recvBufferSize = 1500

// packetConn is a raw ICMP socket bound to one address family.
type packetConn interface {
	// WriteTo sends one datagram to dst.
	WriteTo(b []byte, dst net.IP) error

	// Wait blocks until a datagram is readable or timeout expires.
	Wait(timeout time.Duration) (bool, error)

	// ReadFrom reads one datagram into b.
	ReadFrom(b []byte) (int, net.IP, error)

	// SetTTL sets the TTL (IPv4) or hop limit (IPv6) of outgoing datagrams.
	SetTTL(ttl int) error

	Close() error
}

// listener opens the raw socket of a family.
type listener func(Family) (packetConn, error)

// transport sends echo requests over a packetConn and waits for their replies.
type transport struct {
	conn   packetConn
	family Family
	id     int

	// waitForMatch keeps reading after an unrelated datagram until the deadline.
	waitForMatch bool

	buf    []byte
	logger *log.Logger
}

func newTransport(conn packetConn, family Family, id int, waitForMatch bool, logger *log.Logger) *transport {
	return &transport{
		conn:         conn,
		family:       family,
		id:           id,
		waitForMatch: waitForMatch,
		buf:          make([]byte, recvBufferSize),
		logger:       logger,
	}
}

// Send writes an echo request to dst.
func (t *transport) Send(pkt []byte, dst net.IP) error {
	t.logger.Tracef("Writing ICMP message %x to address %s", pkt, dst)
	if err := t.conn.WriteTo(pkt, dst); err != nil {
		return &TransportError{Op: "sendto", Err: err}
	}
	return nil
}

// AwaitReply waits up to timeout for the reply of the echo request sent at sentAt.
//
// A single datagram is read per call: an unrelated one is reported as Ignored
// and the remaining time is not spent, unless waitForMatch is set. Copies of
// our own requests, seen when pinging a local address, do not count.
func (t *transport) AwaitReply(seq int, sentAt time.Time, timeout time.Duration) *RoundTrip {
	deadline := sentAt.Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}

		ready, err := t.conn.Wait(remaining)
		if err != nil {
			return failedRT(seq, &TransportError{Op: "poll", Err: err})
		}
		if !ready {
			t.logger.Debugf("No reply for icmp_seq %d within %s", seq, timeout)
			return timedOutRT(seq)
		}

		n, from, err := t.conn.ReadFrom(t.buf)
		if err != nil {
			return failedRT(seq, &TransportError{Op: "recvfrom", Err: err})
		}
		rtt := msSince(sentAt)

		t.logger.Tracef("Raw packet received from %s: %x", from, t.buf[:n])
		rt := decodeReply(t.family, t.id, t.buf[:n], from)
		rt.RTT = rtt

		if rt.looped {
			t.logger.Tracef("Skipping our own echo request read back from %s", from)
			continue
		}

		switch rt.Res {
		case Replied, TTLExpired:
			return rt
		case Truncated:
			t.logger.Warnf("Dropping datagram from %s: %s", from, rt.Err)
		default:
			t.logger.Debugf("Datagram from %s is not a reply to this process", from)
		}

		if !t.waitForMatch || !time.Now().Before(deadline) {
			if rt.Seq < 0 {
				rt.Seq = seq
			}
			return rt
		}
	}
}
