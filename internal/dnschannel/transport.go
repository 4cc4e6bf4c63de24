// Package dnschannel is the external DNS channel collaborator: it
// exposes an async ResolveHost operation backed by a small Transport
// interface plus a concrete dual-stack UDP implementation wrapped in
// golang.org/x/net/ipv4 and golang.org/x/net/ipv6.
package dnschannel

import (
	"context"
	"net"
)

// Transport abstracts the network operations a DNS channel needs: send a
// query to a resolver and receive its reply, with context-aware
// cancellation so a call never blocks past ctx's deadline.
type Transport interface {
	// Send transmits packet to dest.
	Send(ctx context.Context, packet []byte, dest net.Addr) error

	// Receive waits for a single incoming packet, respecting ctx.
	Receive(ctx context.Context) (packet []byte, src net.Addr, err error)

	// Close releases network resources.
	Close() error
}
