//go:build windows

package dnschannel

import (
	"net"
	"syscall"

	"golang.org/x/sys/windows"
)

// setSocketOptions applies SO_REUSEADDR to conn's underlying socket.
// Windows has no SO_REUSEPORT equivalent to set.
func setSocketOptions(conn net.PacketConn) error {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return err
	}

	var setErr error
	err = raw.Control(func(fd uintptr) {
		setErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return setErr
}
