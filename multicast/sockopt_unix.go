//go:build unix

package multicast

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddr lets several subscribers on one host bind the group port.
func reuseAddr(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		if opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); opErr != nil {
			return
		}
		// BSDs want SO_REUSEPORT as well to share a multicast port
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}
