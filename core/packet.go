package core

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	echoCode       = 0
	echoHeaderLen  = 8
	icmpProtocol   = 1
	icmpv6Protocol = 58
	ipv4HeaderLen  = 20
)

// payloadText is sent after every echo header, NUL terminated.
const payloadText = "ABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890!@#$^&*()_+{}|:<>?~`-=[]',."

// Payload returns the fixed echo payload used by both tools.
func Payload() []byte {
	return append([]byte(payloadText), 0)
}

// BuildEcho returns an echo request carrying id, seq and payload.
//
// IPv4 requests carry their checksum. IPv6 requests leave it zero: it covers a
// pseudo-header with the source address, which only the kernel knows, and
// Linux always fills it in on raw ICMPv6 sockets.
func BuildEcho(family Family, id, seq int, payload []byte) ([]byte, error) {
	buf := make([]byte, echoHeaderLen+len(payload))
	n, err := encodeEcho(buf, family, id, seq, payload)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// encodeEcho writes an echo request into buf and returns its length.
func encodeEcho(buf []byte, family Family, id, seq int, payload []byte) (int, error) {
	n := echoHeaderLen + len(payload)
	if len(buf) < n {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrEncoding, n, len(buf))
	}

	switch family {
	case IPv4:
		buf[0] = byte(ipv4.ICMPTypeEcho)
	case IPv6:
		buf[0] = byte(ipv6.ICMPTypeEchoRequest)
	default:
		return 0, fmt.Errorf("%w: unknown family %s", ErrEncoding, family)
	}
	buf[1] = echoCode
	binary.BigEndian.PutUint16(buf[2:4], 0)
	binary.BigEndian.PutUint16(buf[4:6], uint16(id))
	binary.BigEndian.PutUint16(buf[6:8], uint16(seq))
	copy(buf[echoHeaderLen:n], payload)

	if family == IPv4 {
		binary.BigEndian.PutUint16(buf[2:4], Checksum(buf[:n]))
	}

	return n, nil
}
