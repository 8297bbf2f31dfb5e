package core

import (
	"encoding/binary"
	"net"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// datagram is what the scripted socket hands back on a read
type datagram struct {
	data []byte
	from net.IP
	err  error
}

// scriptedConn is an in-memory packetConn. Every written packet is passed to
// respond, whose datagrams become readable right away. No datagram means the
// wait times out.
type scriptedConn struct {
	respond func(c *scriptedConn, pkt []byte) []*datagram

	ttl     int
	ttls    []int
	sent    [][]byte
	pending []*datagram
	closed  bool

	// loopback reads every written request back before its responses
	loopback bool

	writeErr error
	waitErr  error
	ttlErr   error
}

func (c *scriptedConn) WriteTo(b []byte, dst net.IP) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	pkt := append([]byte(nil), b...)
	c.sent = append(c.sent, pkt)
	if c.loopback {
		c.pending = append(c.pending, loopedRequest(pkt))
	}
	if c.respond != nil {
		c.pending = append(c.pending, c.respond(c, pkt)...)
	}
	return nil
}

func (c *scriptedConn) Wait(timeout time.Duration) (bool, error) {
	if c.waitErr != nil {
		return false, c.waitErr
	}
	return len(c.pending) > 0, nil
}

func (c *scriptedConn) ReadFrom(b []byte) (int, net.IP, error) {
	d := c.pending[0]
	c.pending = c.pending[1:]
	if d.err != nil {
		return 0, nil, d.err
	}
	n := copy(b, d.data)
	return n, d.from, nil
}

func (c *scriptedConn) SetTTL(ttl int) error {
	if c.ttlErr != nil {
		return c.ttlErr
	}
	c.ttl = ttl
	c.ttls = append(c.ttls, ttl)
	return nil
}

func (c *scriptedConn) Close() error {
	c.closed = true
	return nil
}

// sentSeqs returns the sequence numbers of every written echo request
func (c *scriptedConn) sentSeqs() []int {
	seqs := make([]int, 0, len(c.sent))
	for _, pkt := range c.sent {
		seqs = append(seqs, int(binary.BigEndian.Uint16(pkt[6:8])))
	}
	return seqs
}

// loopedRequest is the copy of req a raw socket reads when the destination is local
func loopedRequest(req []byte) *datagram {
	if req[0] == byte(ipv6.ICMPTypeEchoRequest) {
		return &datagram{data: append([]byte(nil), req...), from: net.IPv6loopback}
	}
	local := net.IPv4(127, 0, 0, 1)
	return &datagram{data: append(ipv4Header(local, local, 64, len(req)), req...), from: local}
}

func listenOn(c *scriptedConn) listener {
	return func(Family) (packetConn, error) {
		return c, nil
	}
}

// ipv4Header builds a 20 byte IPv4 header announcing payloadLen bytes of ICMP
func ipv4Header(src, dst net.IP, ttl, payloadLen int) []byte {
	h := make([]byte, ipv4HeaderLen)
	h[0] = 0x45
	binary.BigEndian.PutUint16(h[2:4], uint16(ipv4HeaderLen+payloadLen))
	h[8] = byte(ttl)
	h[9] = icmpProtocol
	copy(h[12:16], src.To4())
	copy(h[16:20], dst.To4())
	binary.BigEndian.PutUint16(h[10:12], Checksum(h))
	return h
}

// echoReplyV4 turns an echo request into the datagram a raw IPv4 socket reads back
func echoReplyV4(req []byte, src net.IP, ttl int) []byte {
	msg := append([]byte(nil), req...)
	msg[0] = byte(ipv4.ICMPTypeEchoReply)
	msg[2], msg[3] = 0, 0
	binary.BigEndian.PutUint16(msg[2:4], Checksum(msg))
	return append(ipv4Header(src, net.IPv4(10, 0, 0, 1), ttl, len(msg)), msg...)
}

// echoReplyV6 turns an echo request into the datagram a raw ICMPv6 socket reads back
func echoReplyV6(req []byte) []byte {
	msg := append([]byte(nil), req...)
	msg[0] = byte(ipv6.ICMPTypeEchoReply)
	return msg
}

// timeExceededV4 builds the datagram sent by a router dropping req
func timeExceededV4(req []byte, router, dst net.IP) []byte {
	quoted := append(ipv4Header(net.IPv4(10, 0, 0, 1), dst, 1, len(req)), req[:echoHeaderLen]...)
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeTimeExceeded,
		Code: 0,
		Body: &icmp.TimeExceeded{Data: quoted},
	}
	b, err := msg.Marshal(nil)
	if err != nil {
		panic(err)
	}
	return append(ipv4Header(router, net.IPv4(10, 0, 0, 1), 64, len(b)), b...)
}

// withID rewrites the identifier of an echo request, keeping its checksum valid
func withID(req []byte, id int) []byte {
	pkt := append([]byte(nil), req...)
	binary.BigEndian.PutUint16(pkt[4:6], uint16(id))
	pkt[2], pkt[3] = 0, 0
	binary.BigEndian.PutUint16(pkt[2:4], Checksum(pkt))
	return pkt
}
