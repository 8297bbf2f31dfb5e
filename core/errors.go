package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage is returned when the session settings are invalid.
	ErrUsage = errors.New("invalid usage")

	// ErrAddress is returned when the target is not a literal address of the requested family.
	ErrAddress = errors.New("invalid address")

	// ErrPrivilege is returned when the raw socket can not be created due to missing privileges.
	ErrPrivilege = errors.New("raw sockets require root or CAP_NET_RAW, try running with sudo")

	// ErrEncoding is returned when an echo request does not fit the provided buffer.
	ErrEncoding = errors.New("buffer too small for echo request")

	// ErrTruncated is returned when a datagram is shorter than the headers it announces.
	ErrTruncated = errors.New("truncated datagram")

	// ErrRetriesExhausted is returned when a single sequence timed out too many times in a row.
	ErrRetriesExhausted = errors.New("retry budget exhausted")
)

// TransportError is a failure of the underlying socket. It always ends the session.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
