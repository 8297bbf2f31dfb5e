package core

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const ipv6HeaderLen = 40

// replyTypes returns the ICMP types the raw socket of family lets through.
func replyTypes(family Family) []int {
	if family == IPv6 {
		return []int{int(ipv6.ICMPTypeEchoReply), int(ipv6.ICMPTypeTimeExceeded)}
	}
	return []int{int(ipv4.ICMPTypeEchoReply), int(ipv4.ICMPTypeTimeExceeded)}
}

// decodeReply classifies one datagram read from the raw socket.
//
// IPv4 datagrams start with the IP header, IPv6 ones start directly with the
// ICMPv6 message. Only echo replies and time exceeded messages quoting one of
// our echo requests are matched, everything else is Ignored.
func decodeReply(family Family, id int, b []byte, from net.IP) *RoundTrip {
	rt := &RoundTrip{Res: Ignored, Src: from, TTL: -1, Seq: -1}

	msg := b
	proto := icmpv6Protocol
	if family == IPv4 {
		ip, err := decodeIPv4(b)
		if err != nil {
			rt.Res, rt.Err = Truncated, err
			return rt
		}
		rt.TTL = int(ip.TTL)
		rt.Src = append(net.IP(nil), ip.SrcIP...)
		msg = ip.Payload
		proto = icmpProtocol
	}

	if len(msg) < echoHeaderLen {
		rt.Res = Truncated
		rt.Err = fmt.Errorf("%w: %d bytes, ICMP header needs %d", ErrTruncated, len(msg), echoHeaderLen)
		return rt
	}
	if family == IPv4 && !validChecksum(msg) {
		return rt
	}

	m, err := icmp.ParseMessage(proto, msg)
	if err != nil {
		rt.Res, rt.Err = Truncated, fmt.Errorf("%w: %v", ErrTruncated, err)
		return rt
	}

	switch body := m.Body.(type) {
	case *icmp.Echo:
		if m.Type == ipv4.ICMPTypeEcho || m.Type == ipv6.ICMPTypeEchoRequest {
			rt.looped = body.ID == id
			return rt
		}
		if m.Type != ipv4.ICMPTypeEchoReply && m.Type != ipv6.ICMPTypeEchoReply {
			return rt
		}
		if body.ID != id {
			return rt
		}
		rt.Res = Replied
		rt.Seq = body.Seq
		rt.Len = len(body.Data)
	case *icmp.TimeExceeded:
		qid, qseq, ok := quotedEcho(family, body.Data)
		if !ok || qid != id {
			return rt
		}
		rt.Res = TTLExpired
		rt.Seq = qseq
	}

	return rt
}

// decodeIPv4 decodes the IPv4 header at the start of b, validating the header length.
func decodeIPv4(b []byte) (*layers.IPv4, error) {
	if len(b) < ipv4HeaderLen {
		return nil, fmt.Errorf("%w: %d bytes, IPv4 header needs %d", ErrTruncated, len(b), ipv4HeaderLen)
	}
	if ihl := int(b[0]&0x0f) * 4; ihl < ipv4HeaderLen || ihl > len(b) {
		return nil, fmt.Errorf("%w: IPv4 header length %d with %d bytes", ErrTruncated, ihl, len(b))
	}

	ip := &layers.IPv4{}
	if err := ip.DecodeFromBytes(b, gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	return ip, nil
}

// quotedEcho extracts the identifier and sequence of the echo request quoted
// by a time exceeded message.
func quotedEcho(family Family, data []byte) (id, seq int, ok bool) {
	var echo []byte
	switch family {
	case IPv4:
		ip, err := decodeIPv4(data)
		if err != nil || ip.Protocol != layers.IPProtocolICMPv4 {
			return 0, 0, false
		}
		echo = ip.Payload
		if len(echo) < echoHeaderLen || echo[0] != byte(ipv4.ICMPTypeEcho) {
			return 0, 0, false
		}
	case IPv6:
		if len(data) < ipv6HeaderLen+echoHeaderLen || data[6] != icmpv6Protocol {
			return 0, 0, false
		}
		echo = data[ipv6HeaderLen:]
		if echo[0] != byte(ipv6.ICMPTypeEchoRequest) {
			return 0, 0, false
		}
	default:
		return 0, 0, false
	}

	return int(binary.BigEndian.Uint16(echo[4:6])), int(binary.BigEndian.Uint16(echo[6:8])), true
}
