//go:build !linux

package core

import (
	"fmt"
	"runtime"
)

func listenRaw(family Family) (packetConn, error) {
	return nil, &TransportError{Op: "socket", Err: fmt.Errorf("raw %s sockets are not supported on %s", family, runtime.GOOS)}
}
