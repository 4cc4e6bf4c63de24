// Package numeric implements the numeric host parsing step: for each
// address family, either parse the node string as a literal or
// substitute the passive/loopback default, emitting a result.Node on
// success.
//
// The actual literal parsing (inet_pton's job) is an external
// collaborator; AddressParser is that collaborator's interface, with
// Default() providing a concrete implementation over net.ParseIP.
package numeric

import (
	"net"
	"strings"

	"github.com/aresinfo/addrinfo/internal/protocol"
	"github.com/aresinfo/addrinfo/internal/result"
)

// AddressParser is the inet_pton-equivalent collaborator.
type AddressParser interface {
	// ParseINET parses s as a dotted-quad IPv4 literal. ok is false if s
	// is not a valid IPv4 literal ("not numeric", which is not an
	// error).
	ParseINET(s string) (addr [4]byte, ok bool)

	// ParseINET6 parses s as an IPv6 literal.
	ParseINET6(s string) (addr [16]byte, ok bool)
}

// stdParser implements AddressParser over net.ParseIP.
type stdParser struct{}

// Default returns the standard-library-backed AddressParser.
func Default() AddressParser { return stdParser{} }

func (stdParser) ParseINET(s string) (addr [4]byte, ok bool) {
	ip := net.ParseIP(s)
	if ip == nil {
		return addr, false
	}
	// net.ParseIP also accepts IPv4-mapped IPv6 text such as
	// "::ffff:1.2.3.4"; that is not a dotted-quad IPv4 literal.
	v4 := ip.To4()
	if v4 == nil || strings.Contains(s, ":") {
		return addr, false
	}
	copy(addr[:], v4)
	return addr, true
}

func (stdParser) ParseINET6(s string) (addr [16]byte, ok bool) {
	ip := net.ParseIP(s)
	if ip == nil {
		return addr, false
	}
	// Reject literals that are really IPv4 (To4() != nil): an IPv4
	// dotted-quad is not numeric for this family. A literal like
	// "127.0.0.1" must not silently become a v4-mapped INET6 node
	// here.
	if ip.To4() != nil {
		return addr, false
	}
	v6 := ip.To16()
	if v6 == nil {
		return addr, false
	}
	copy(addr[:], v6)
	return addr, true
}

var (
	inetPassive  = [4]byte{0, 0, 0, 0}
	inetLoopback = [4]byte{127, 0, 0, 1}
	// inet6Passive is in6addr_any, the all-zeros address.
	inet6Passive  [16]byte
	inet6Loopback = [16]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
)

// TryPtonInet attempts the numeric IPv4 path. node is nil when the node
// string is absent. numeric reports whether a node was produced (either
// by substitution or by successful parse); when numeric is false, the
// node string was present but did not parse as an IPv4 literal, and the
// caller must fall through to DNS resolution for this family without
// touching any bitmask bit.
func TryPtonInet(parser AddressParser, node *string, hints protocol.Hints) (n *result.Node, numeric bool) {
	if node == nil {
		addr := inetLoopback
		if hints.Flags.Has(protocol.FlagPassive) {
			addr = inetPassive
		}
		return result.NewInet(addr, hints), true
	}

	addr, ok := parser.ParseINET(*node)
	if !ok {
		return nil, false
	}

	n = result.NewInet(addr, hints)
	if hints.Flags.Has(protocol.FlagCanonName) {
		n.SetCanonName(*node)
	}
	return n, true
}

// TryPtonInet6 is the INET6 counterpart of TryPtonInet.
func TryPtonInet6(parser AddressParser, node *string, hints protocol.Hints) (n *result.Node, numeric bool) {
	if node == nil {
		addr := inet6Loopback
		if hints.Flags.Has(protocol.FlagPassive) {
			addr = inet6Passive
		}
		return result.NewInet6(addr, hints), true
	}

	addr, ok := parser.ParseINET6(*node)
	if !ok {
		return nil, false
	}

	n = result.NewInet6(addr, hints)
	if hints.Flags.Has(protocol.FlagCanonName) {
		n.SetCanonName(*node)
	}
	return n, true
}
