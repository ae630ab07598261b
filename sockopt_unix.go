//go:build unix

package sockets

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// controlDefaultSocketOptions is installed as the Control hook of the dialer
// and the listen config. It applies the per-socket defaults before the
// socket is connected or bound: Nagle's algorithm off, address reuse on.
func controlDefaultSocketOptions(_, _ string, c syscall.RawConn) error {
	var optErr error
	err := c.Control(func(fd uintptr) {
		if optErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); optErr != nil {
			return
		}
		optErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	})
	if err != nil {
		return err
	}
	return optErr
}

// applyDefaultSocketOptions applies the same defaults to an already
// established connection, used for accepted sockets.
func applyDefaultSocketOptions(conn *net.TCPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	return controlDefaultSocketOptions("", "", raw)
}
