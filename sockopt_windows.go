//go:build windows

package sockets

import (
	"net"
	"syscall"

	"golang.org/x/sys/windows"
)

// controlDefaultSocketOptions is installed as the Control hook of the dialer
// and the listen config. It applies the per-socket defaults before the
// socket is connected or bound: Nagle's algorithm off, address reuse on.
func controlDefaultSocketOptions(_, _ string, c syscall.RawConn) error {
	var optErr error
	err := c.Control(func(fd uintptr) {
		handle := windows.Handle(fd)
		if optErr = windows.SetsockoptInt(handle, windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); optErr != nil {
			return
		}
		optErr = windows.SetsockoptInt(handle, windows.IPPROTO_TCP, windows.TCP_NODELAY, 1)
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
