// Package request implements the request lifecycle: entry validation,
// allocation, the initial bitmask derivation, and release. It is the
// layer that owns a single in-flight lookup end to end, driving
// internal/state's Machine across the suspension points
// internal/dnschannel's Channel introduces.
package request

import (
	"context"

	"github.com/aresinfo/addrinfo/internal/aierrors"
	"github.com/aresinfo/addrinfo/internal/dnschannel"
	"github.com/aresinfo/addrinfo/internal/netdb"
	"github.com/aresinfo/addrinfo/internal/numeric"
	"github.com/aresinfo/addrinfo/internal/protocol"
	"github.com/aresinfo/addrinfo/internal/result"
	"github.com/aresinfo/addrinfo/internal/state"
)

// Callback is the completion notification: invoked exactly once, with
// the resolved chain on success and nil on any failure.
type Callback func(status protocol.Status, timeouts int, head *result.Node)

// HostChannel is the subset of *dnschannel.Channel the request lifecycle
// depends on, named as an interface so tests can substitute a fake
// channel instead of opening real sockets.
type HostChannel interface {
	ResolveHost(ctx context.Context, name string, family protocol.Family, cb func(answer *dnschannel.HostAnswer, timeouts int, err error))
}

// Request is one in-flight lookup: its inputs, its Machine, and the
// channel/collaborators it drives through suspension.
type Request struct {
	ctx      context.Context
	channel  HostChannel
	machine  *state.Machine
	nodeName string
	cb       Callback
}

// New validates node/service/hints, and on success derives the initial
// bitmask and enters the request's dispatch loop. On any validation
// failure, cb is invoked synchronously with that status and no Request
// is created.
//
// channel must be non-nil, or cb is invoked synchronously with
// EBadQuery. hints nil means protocol.Default().
func New(ctx context.Context, channel HostChannel, node, service *string, hints *protocol.Hints, cb Callback) {
	if channel == nil {
		cb(protocol.EBadQuery, 0, nil)
		return
	}
	if node == nil && service == nil {
		cb(protocol.ENoName, 0, nil)
		return
	}

	h := protocol.Default()
	if hints != nil {
		h = *hints
	}

	if h.Flags.Has(protocol.FlagCanonName) && node == nil {
		cb(protocol.EBadFlags, 0, nil)
		return
	}
	if h.Flags.Has(protocol.FlagAll) && !h.Flags.Has(protocol.FlagV4Mapped) {
		cb(protocol.EBadFlags, 0, nil)
		return
	}
	if h.Family != protocol.Unspec && h.Family != protocol.INET && h.Family != protocol.INET6 {
		cb(protocol.EBadFamily, 0, nil)
		return
	}

	initial := deriveBitmask(h, node, service)

	var nodeCopy *string
	if node != nil {
		c := *node
		nodeCopy = &c
	}
	var serviceCopy string
	if service != nil {
		serviceCopy = *service
	}

	r := &Request{
		ctx:      ctx,
		channel:  channel,
		machine:  state.New(initial, h, nodeCopy, serviceCopy, numeric.Default(), netdb.New()),
		nodeName: stringOr(node, ""),
		cb:       cb,
	}
	r.drive(r.machine.Step())
}

// deriveBitmask computes the initial pending-work bitmask from hints
// and whether a node and/or service were supplied.
func deriveBitmask(h protocol.Hints, node, service *string) state.Bits {
	var bits state.Bits

	if service != nil {
		bits = bits.Set(state.Serv | state.NumericServ)
	}

	wantsInet := h.Family == protocol.Unspec || h.Family == protocol.INET ||
		(h.Family == protocol.INET6 && h.Flags.Has(protocol.FlagV4Mapped))
	wantsInet6 := h.Family == protocol.Unspec || h.Family == protocol.INET6

	if node != nil && wantsInet {
		bits = bits.Set(state.HostInet)
	}
	if node != nil && wantsInet6 {
		bits = bits.Set(state.HostInet6)
	}
	// NUMERIC_HOST_* is derived regardless of node presence, so the
	// passive/loopback default is materialised even with no node.
	if wantsInet {
		bits = bits.Set(state.NumericHostInet)
	}
	if wantsInet6 {
		bits = bits.Set(state.NumericHostInet6)
	}

	if h.Flags.Has(protocol.FlagCanonName) {
		bits = bits.Set(state.Canonical)
	}

	return bits
}

// drive advances the request through Machine results, issuing async
// host resolution through the channel whenever Step suspends, and
// invoking cb exactly once on a terminal outcome.
func (r *Request) drive(res state.Result) {
	for {
		if res.Suspend {
			family := res.Family
			r.channel.ResolveHost(r.ctx, r.nodeName, family, func(answer *dnschannel.HostAnswer, timeouts int, err error) {
				if err != nil {
					r.drive(r.machine.HostCallback(translateHostError(err), nil, timeouts))
					return
				}
				sa := &state.HostAnswer{CanonName: answer.CanonName, Addrs: answer.Addrs, Family: answer.Family}
				r.drive(r.machine.HostCallback(protocol.Success, sa, timeouts))
			})
			return
		}

		if res.Done {
			r.cb(res.Status, r.machine.Timeouts, r.machine.Head)
			return
		}

		// Unreachable: Step/HostCallback always set Suspend or Done.
		res = r.machine.Step()
	}
}

// translateHostError maps a channel-layer error to the status
// HostCallback expects. The external channel does not itself report a
// status code, so any transport/protocol failure is reported to the
// Machine as ENoName, the same status a non-numeric literal produces
// when no host work remains.
func translateHostError(err error) protocol.Status {
	if err == nil {
		return protocol.Success
	}
	if le, ok := err.(*aierrors.LookupError); ok {
		return le.Status
	}
	return protocol.ENoName
}

func stringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
