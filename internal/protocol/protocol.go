// Package protocol defines the address-family, socket-type, protocol-number,
// and hints-flag constants shared by every step of the resolution state
// machine, plus the terminal Status codes returned to the completion
// callback.
//
// These mirror the POSIX <sys/socket.h>/<netdb.h> constants that
// getaddrinfo's contract is built on; values are chosen to match the
// numeric constants on Linux (AF_INET6 is 10 there; BSD and Darwin use
// other values for it).
package protocol

// Family identifies an address family understood by the resolver.
//
// Only Unspec, INET, and INET6 are accepted in a Hints record; any
// other value is rejected at entry with EBADFAMILY.
type Family int

const (
	Unspec Family = 0
	INET   Family = 2
	INET6  Family = 10
)

// String returns a human-readable family name.
func (f Family) String() string {
	switch f {
	case Unspec:
		return "UNSPEC"
	case INET:
		return "INET"
	case INET6:
		return "INET6"
	default:
		return "UNKNOWN"
	}
}

// SockType identifies a socket type. Zero means "any" (unconstrained).
type SockType int

const (
	SockAny       SockType = 0
	SockStream    SockType = 1
	SockDgram     SockType = 2
	SockRaw       SockType = 3
	SockSeqPacket SockType = 5
)

// Proto identifies a protocol number stamped into a result node. Zero means
// "any", left to the service step's socket-type/protocol defaulting.
type Proto int

const (
	ProtoAny  Proto = 0
	ProtoTCP  Proto = 6
	ProtoUDP  Proto = 17
	ProtoRaw  Proto = 255
	ProtoSCTP Proto = 132
)

// DefaultProto derives the protocol number for a (family, socktype)
// pair: STREAM maps to TCP, DGRAM to UDP, RAW to RAW, and SEQPACKET to
// SCTP. Any other socket type is a combination this core does not know
// how to default, signaled by ok=false (callers translate that into
// EBADFAMILY).
func DefaultProto(family Family, socktype SockType) (Proto, bool) {
	if family != INET && family != INET6 {
		return ProtoAny, false
	}
	switch socktype {
	case SockStream:
		return ProtoTCP, true
	case SockDgram:
		return ProtoUDP, true
	case SockRaw:
		return ProtoRaw, true
	case SockSeqPacket:
		return ProtoSCTP, true
	default:
		return ProtoAny, false
	}
}

// Flags is the hints bitfield.
type Flags uint32

const (
	// FlagPassive requests a wildcard/bind address when node is absent.
	FlagPassive Flags = 1 << iota
	// FlagCanonName requests canonical-name surfacing on the head node.
	FlagCanonName
	// FlagNumericHost forbids DNS; node must parse as a numeric literal.
	FlagNumericHost
	// FlagNumericServ forbids the services database; service must be numeric.
	FlagNumericServ
	// FlagAll requests every resolved address for a family rather than
	// stopping after the first successful family when AI_V4MAPPED applies.
	FlagAll
	// FlagV4Mapped permits IPv4 results to be considered when family is INET6.
	FlagV4Mapped
	// FlagAddrConfig is accepted but has no effect: this resolver never
	// inspects local interface configuration to filter families.
	FlagAddrConfig
)

// FlagDefault is the flag set used when the caller passes no hints
// record at all.
const FlagDefault Flags = 0

// Has reports whether all bits in mask are set in f.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Status is the terminal outcome handed to the completion callback.
type Status int

const (
	Success Status = iota
	ENoMem
	EBadQuery
	ENoName
	EBadFlags
	EBadFamily
	EBadHints
	EBadName
	EFormErr
)

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case ENoMem:
		return "ENOMEM"
	case EBadQuery:
		return "EBADQUERY"
	case ENoName:
		return "ENONAME"
	case EBadFlags:
		return "EBADFLAGS"
	case EBadFamily:
		return "EBADFAMILY"
	case EBadHints:
		return "EBADHINTS"
	case EBadName:
		return "EBADNAME"
	case EFormErr:
		return "EFORMERR"
	default:
		return "UNKNOWN"
	}
}

// Error adapts Status to the error interface so it can be returned or
// wrapped directly by callers that prefer Go's error idiom alongside the
// POSIX-shaped callback contract.
func (s Status) Error() string { return s.String() }

// Hints is the caller-supplied constraints-and-flags record. It is
// copied by value into the request context, and the node factory
// copies its socket type and protocol into every result node, which is
// why it lives in this leaf
// package rather than the public-facing one: every internal package
// below the request layer needs to read it without importing back up to
// the root package.
type Hints struct {
	Flags    Flags
	Family   Family
	SockType SockType
	Proto    Proto
}

// Default returns the hints used when a caller passes no hints record:
// family UNSPEC, no flags, socket type and protocol unconstrained.
// AI_DEFAULT in the POSIX contract is the empty flag set for this
// core's purposes, since AI_ADDRCONFIG is honoured only as a no-op and
// no other flag is implied.
func Default() Hints {
	return Hints{Flags: FlagDefault, Family: Unspec, SockType: SockAny, Proto: ProtoAny}
}
