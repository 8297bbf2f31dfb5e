package core

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Family is the address family of a probe destination.
type Family int

const (
	// IPv4 selects ICMP over IPv4.
	IPv4 Family = 4
	// IPv6 selects ICMPv6 over IPv6.
	IPv6 Family = 6
)

func (f Family) String() string {
	switch f {
	case IPv4:
		return "IPv4"
	case IPv6:
		return "IPv6"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// ParseFamily converts the numeric family given on the command line.
func ParseFamily(n int) (Family, error) {
	switch Family(n) {
	case IPv4, IPv6:
		return Family(n), nil
	}
	return 0, fmt.Errorf("%w: type must be 4 or 6, got %d", ErrUsage, n)
}

// parseDestination parses a literal address of the given family. Hostnames are not resolved.
func parseDestination(address string, family Family) (net.IP, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return nil, fmt.Errorf("%w: %q is not a valid %s address", ErrAddress, address, family)
	}

	switch family {
	case IPv4:
		if !isIPv4(ip) {
			return nil, fmt.Errorf("%w: %q is not a valid %s address", ErrAddress, address, family)
		}
		return ip.To4(), nil
	case IPv6:
		if isIPv4(ip) {
			return nil, fmt.Errorf("%w: %q is not a valid %s address", ErrAddress, address, family)
		}
		return ip.To16(), nil
	}

	return nil, fmt.Errorf("%w: unknown family %s", ErrUsage, family)
}

// processIdentifier returns the echo identifier of this process.
// Two instances whose pids are equal modulo 2^16 will read each other's replies.
func processIdentifier() int {
	return os.Getpid() & 0xffff
}

func isIPv4(ip net.IP) bool {
	return ip.To4() != nil
}

func msSince(t0 time.Time) float64 {
	return float64(time.Since(t0)) / float64(time.Millisecond)
}
