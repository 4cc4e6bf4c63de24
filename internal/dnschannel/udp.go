package dnschannel

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/aresinfo/addrinfo/internal/aierrors"
)

// udpBufferSize is the default read buffer, generous for the small
// A/AAAA responses this channel exchanges.
const udpBufferSize = 4096

// udpTransport implements Transport over a UDP socket, wrapped in the
// golang.org/x/net/ipv4 and ipv6 packet-conn types. It can run over
// either IPv4 or IPv6, since resolving a name may require reaching
// resolvers of either family.
type udpTransport struct {
	conn     net.PacketConn
	ipv4Conn *ipv4.PacketConn // non-nil when bound to an IPv4 socket
	ipv6Conn *ipv6.PacketConn // non-nil when bound to an IPv6 socket
}

// newUDPTransport opens an unconnected UDP socket for the given network
// ("udp4" or "udp6"), bound to an ephemeral local port.
func newUDPTransport(network string) (*udpTransport, error) {
	conn, err := net.ListenPacket(network, ":0")
	if err != nil {
		return nil, &aierrors.NetworkError{
			Operation: "create socket",
			Err:       err,
			Details:   fmt.Sprintf("failed to open %s socket", network),
		}
	}

	if err := setSocketOptions(conn); err != nil {
		_ = conn.Close()
		return nil, &aierrors.NetworkError{
			Operation: "configure socket",
			Err:       err,
			Details:   "failed to apply platform socket options",
		}
	}

	t := &udpTransport{conn: conn}
	switch network {
	case "udp4":
		t.ipv4Conn = ipv4.NewPacketConn(conn)
	case "udp6":
		t.ipv6Conn = ipv6.NewPacketConn(conn)
	}
	return t, nil
}

// Send transmits packet to dest.
func (t *udpTransport) Send(ctx context.Context, packet []byte, dest net.Addr) error {
	select {
	case <-ctx.Done():
		return &aierrors.NetworkError{Operation: "send query", Err: ctx.Err(), Details: "context canceled before send"}
	default:
	}

	n, err := t.conn.WriteTo(packet, dest)
	if err != nil {
		return &aierrors.NetworkError{
			Operation: "send query",
			Err:       err,
			Details:   fmt.Sprintf("failed to send %d bytes to %s", len(packet), dest),
		}
	}
	if n != len(packet) {
		return &aierrors.NetworkError{
			Operation: "send query",
			Err:       fmt.Errorf("partial write: %d/%d bytes", n, len(packet)),
			Details:   "incomplete transmission",
		}
	}
	return nil
}

// Receive waits for a single incoming packet.
func (t *udpTransport) Receive(ctx context.Context) ([]byte, net.Addr, error) {
	select {
	case <-ctx.Done():
		return nil, nil, &aierrors.NetworkError{Operation: "receive response", Err: ctx.Err(), Details: "context canceled before receive"}
	default:
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, nil, &aierrors.NetworkError{
				Operation: "set read timeout",
				Err:       err,
				Details:   fmt.Sprintf("failed to set deadline %v", deadline),
			}
		}
	}

	buf := make([]byte, udpBufferSize)
	n, srcAddr, err := t.conn.ReadFrom(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, nil, &aierrors.NetworkError{Operation: "receive response", Err: err, Details: "timeout"}
		}
		return nil, nil, &aierrors.NetworkError{Operation: "receive response", Err: err, Details: "failed to read from socket"}
	}

	return buf[:n], srcAddr, nil
}

// Close releases network resources, propagating any close error rather
// than swallowing it.
func (t *udpTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	if err := t.conn.Close(); err != nil {
		return &aierrors.NetworkError{Operation: "close socket", Err: err, Details: "failed to close UDP connection"}
	}
	return nil
}
