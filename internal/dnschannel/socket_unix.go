//go:build !windows

package dnschannel

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketOptions applies SO_REUSEADDR (and, where available,
// SO_REUSEPORT) to conn's underlying file descriptor. A resolver
// channel that restarts queries in quick succession on the same local
// port should not fail to bind with "address already in use".
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
		if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); e != nil {
			setErr = e
			return
		}
		// SO_REUSEPORT is best-effort: some platforms (older kernels)
		// don't support it, and Windows has no equivalent at all.
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return setErr
}
