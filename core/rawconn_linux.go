//go:build linux

package core

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// rawConn is a SOCK_RAW ICMP or ICMPv6 socket.
type rawConn struct {
	fd     int
	family Family
}

// listenRaw opens the raw socket used by both tools.
func listenRaw(family Family) (packetConn, error) {
	domain, proto := unix.AF_INET, unix.IPPROTO_ICMP
	if family == IPv6 {
		domain, proto = unix.AF_INET6, unix.IPPROTO_ICMPV6
	}

	fd, err := unix.Socket(domain, unix.SOCK_RAW|unix.SOCK_CLOEXEC, proto)
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			return nil, fmt.Errorf("%w: %v", ErrPrivilege, err)
		}
		return nil, &TransportError{Op: "socket", Err: err}
	}

	if err := setReplyFilter(fd, family); err != nil {
		unix.Close(fd)
		return nil, &TransportError{Op: "setsockopt ICMP_FILTER", Err: err}
	}

	return &rawConn{fd: fd, family: family}, nil
}

// icmpFilter is ICMP_FILTER from linux/icmp.h, a SOL_RAW option.
const icmpFilter = 1

// setReplyFilter makes the kernel drop every ICMP type but replyTypes, our own
// echo requests to a local address included.
func setReplyFilter(fd int, family Family) error {
	accept := replyTypes(family)
	if family == IPv6 {
		return unix.SetsockoptICMPv6Filter(fd, unix.SOL_ICMPV6, unix.ICMPV6_FILTER, icmpv6FilterOf(accept))
	}
	return unix.SetsockoptInt(fd, unix.SOL_RAW, icmpFilter, int(int32(icmpFilterMask(accept))))
}

// icmpFilterMask returns the ICMP_FILTER bitmask, a set bit blocks its type.
func icmpFilterMask(accept []int) uint32 {
	mask := ^uint32(0)
	for _, typ := range accept {
		mask &^= 1 << uint(typ)
	}
	return mask
}

// icmpv6FilterOf returns an ICMPV6_FILTER blocking every type but accept.
func icmpv6FilterOf(accept []int) *unix.ICMPv6Filter {
	f := &unix.ICMPv6Filter{}
	for i := range f.Data {
		f.Data[i] = ^uint32(0)
	}
	for _, typ := range accept {
		f.Data[typ>>5] &^= 1 << (uint(typ) & 31)
	}
	return f
}

func (c *rawConn) WriteTo(b []byte, dst net.IP) error {
	var sa unix.Sockaddr
	if c.family == IPv4 {
		sa4 := &unix.SockaddrInet4{}
		copy(sa4.Addr[:], dst.To4())
		sa = sa4
	} else {
		sa6 := &unix.SockaddrInet6{}
		copy(sa6.Addr[:], dst.To16())
		sa = sa6
	}
	return unix.Sendto(c.fd, b, 0, sa)
}

func (c *rawConn) Wait(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}

	for {
		ms := int(time.Until(deadline).Milliseconds())
		if ms < 0 {
			ms = 0
		}
		n, err := unix.Poll(fds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return false, fmt.Errorf("poll revents %#x", fds[0].Revents)
		}
		return fds[0].Revents&unix.POLLIN != 0, nil
	}
}

func (c *rawConn) ReadFrom(b []byte) (int, net.IP, error) {
	n, from, err := unix.Recvfrom(c.fd, b, 0)
	if err != nil {
		return 0, nil, err
	}

	var src net.IP
	switch sa := from.(type) {
	case *unix.SockaddrInet4:
		src = net.IP(append([]byte(nil), sa.Addr[:]...))
	case *unix.SockaddrInet6:
		src = net.IP(append([]byte(nil), sa.Addr[:]...))
	}
	return n, src, nil
}

func (c *rawConn) SetTTL(ttl int) error {
	if c.family == IPv4 {
		return unix.SetsockoptInt(c.fd, unix.IPPROTO_IP, unix.IP_TTL, ttl)
	}
	return unix.SetsockoptInt(c.fd, unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS, ttl)
}

func (c *rawConn) Close() error {
	return unix.Close(c.fd)
}
