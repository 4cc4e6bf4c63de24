// Package addrinfo provides an asynchronous, callback-driven
// implementation of the getaddrinfo(3) contract: given a host, a
// service, and a set of hints, it resolves a chain of address-info
// records without blocking the caller's goroutine on network I/O.
//
// Each GetAddrInfo call is handed the DNS channel to use and drives its
// own independent request state machine, so concurrent calls on the
// same channel never interfere with one another.
package addrinfo

import (
	"context"

	"github.com/aresinfo/addrinfo/internal/dnschannel"
	"github.com/aresinfo/addrinfo/internal/protocol"
	"github.com/aresinfo/addrinfo/internal/request"
	"github.com/aresinfo/addrinfo/internal/result"
)

// Family identifies an address family. Only Unspec, INET, and INET6 are
// accepted in a Hints record; any other value is rejected with
// EBadFamily.
type Family = protocol.Family

const (
	Unspec = protocol.Unspec
	INET   = protocol.INET
	INET6  = protocol.INET6
)

// SockType identifies a socket type.
type SockType = protocol.SockType

const (
	SockAny       = protocol.SockAny
	SockStream    = protocol.SockStream
	SockDgram     = protocol.SockDgram
	SockRaw       = protocol.SockRaw
	SockSeqPacket = protocol.SockSeqPacket
)

// Proto identifies a protocol number.
type Proto = protocol.Proto

const (
	ProtoAny  = protocol.ProtoAny
	ProtoTCP  = protocol.ProtoTCP
	ProtoUDP  = protocol.ProtoUDP
	ProtoRaw  = protocol.ProtoRaw
	ProtoSCTP = protocol.ProtoSCTP
)

// Flags is the hints bitfield.
type Flags = protocol.Flags

const (
	FlagPassive     = protocol.FlagPassive
	FlagCanonName   = protocol.FlagCanonName
	FlagNumericHost = protocol.FlagNumericHost
	FlagNumericServ = protocol.FlagNumericServ
	FlagAll         = protocol.FlagAll
	FlagV4Mapped    = protocol.FlagV4Mapped
	FlagAddrConfig  = protocol.FlagAddrConfig
)

// Status is the terminal outcome handed to a Callback.
type Status = protocol.Status

const (
	Success    = protocol.Success
	ENoMem     = protocol.ENoMem
	EBadQuery  = protocol.EBadQuery
	ENoName    = protocol.ENoName
	EBadFlags  = protocol.EBadFlags
	EBadFamily = protocol.EBadFamily
	EBadHints  = protocol.EBadHints
	EBadName   = protocol.EBadName
	EFormErr   = protocol.EFormErr
)

// Hints carries the caller-supplied constraints that narrow a lookup.
type Hints = protocol.Hints

// DefaultHints returns the hints used when a caller passes none: family
// Unspec, no flags, socket type and protocol unconstrained.
func DefaultHints() Hints { return protocol.Default() }

// AddrInfo is one resolved address-info record: a family, the embedded
// socket address, and (only when requested) a canonical name, chained
// to the next record in the result list.
type AddrInfo = result.Node

// Callback receives the outcome of exactly one GetAddrInfo call: on
// Success, head is the non-empty chain now owned by the caller (release
// it with FreeAddrInfo); on any other status, head is nil.
type Callback func(status Status, timeouts int, head *AddrInfo)

// Channel is the external DNS channel collaborator: it resolves A/AAAA
// records for a request's node. *dnschannel.Channel implements this.
type Channel = request.HostChannel

// NewChannel opens a default DNS channel backed by real UDP sockets,
// using dnschannel's functional options for configuration (servers,
// timeout, UDP size setting).
func NewChannel(opts ...dnschannel.Option) (*dnschannel.Channel, error) {
	return dnschannel.New(opts...)
}

// GetAddrInfo is ares_getaddrinfo: asynchronously resolves node and/or
// service under hints, using channel for any DNS work required. It
// does not wait on network I/O; cb is invoked exactly once, either
// synchronously on the caller's goroutine (for an entry-validation
// failure, or for a lookup that completes without any DNS query, such
// as a numeric literal) or from the channel's goroutine once DNS
// resolution completes.
//
// hints may be nil, meaning DefaultHints(). channel must be non-nil or
// cb is invoked synchronously with EBadQuery.
func GetAddrInfo(ctx context.Context, channel Channel, node, service *string, hints *Hints, cb Callback) {
	request.New(ctx, channel, node, service, hints, request.Callback(cb))
}

// FreeAddrInfo releases a chain returned by a successful GetAddrInfo
// call. It is safe to call with a nil head.
func FreeAddrInfo(head *AddrInfo) {
	result.Free(head)
}
