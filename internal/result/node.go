// Package result implements the resolution chain: the per-address node
// factory and the singly-linked result list it is prepended to.
//
// getaddrinfo's contract is a caller-owned, singly-linked chain with an
// embedded sockaddr rather than a flat slice of records, so each node is
// built by a small factory function that stamps a struct from its inputs
// and returns it ready to prepend.
package result

import (
	"net"

	"github.com/aresinfo/addrinfo/internal/protocol"
)

// SockAddr is the embedded socket address carried by every Node. Storing
// it by value inside Node (rather than behind a pointer to a separately
// allocated struct) is what makes "ai_addr points into the same
// allocation as the node" true in this port: &n.Addr is a pointer into
// the Node itself.
//
// Port is kept in ordinary host byte order, Go's idiom for port numbers
// (net.TCPAddr.Port does the same); byte order only matters once a
// result is serialized onto a wire, which this core never does.
type SockAddr struct {
	Family protocol.Family
	Port   int
	IP     net.IP
}

// Node is a single resolved address-info record.
//
// Invariants maintained by every constructor and mutator in this package:
//   - Addr.Family always equals Family.
//   - AddrLen is 4 for INET, 16 for INET6.
//   - Port is 0 until the service-resolution step stamps it.
type Node struct {
	CanonName *string
	Next      *Node
	Addr      SockAddr
	Family    protocol.Family
	AddrLen   int
	SockType  protocol.SockType
	Proto     protocol.Proto
}

// New allocates a single result node for the given family and raw
// address bytes. hints is copied by value into the node's socket
// type/protocol; family and address length are then derived from family
// and addr, and the embedded sockaddr is stamped, with port left at zero
// pending the service-resolution step.
//
// addr must be 4 bytes for protocol.INET or 16 bytes for protocol.INET6;
// any other combination is a programmer error in a caller internal to
// this module, not a condition the public API can trigger, so New panics
// rather than returning EBADFAMILY for it.
func New(family protocol.Family, addr []byte, hints protocol.Hints) *Node {
	var addrLen int
	switch family {
	case protocol.INET:
		addrLen = net.IPv4len
	case protocol.INET6:
		addrLen = net.IPv6len
	default:
		panic("result: New called with unsupported family")
	}
	if len(addr) != addrLen {
		panic("result: New called with wrong-length address")
	}

	ipCopy := make(net.IP, addrLen)
	copy(ipCopy, addr)

	return &Node{
		Family:   family,
		AddrLen:  addrLen,
		SockType: hints.SockType,
		Proto:    hints.Proto,
		Addr: SockAddr{
			Family: family,
			Port:   0,
			IP:     ipCopy,
		},
	}
}

// NewInet allocates a node for a 4-byte IPv4 address.
func NewInet(addr [net.IPv4len]byte, hints protocol.Hints) *Node {
	return New(protocol.INET, addr[:], hints)
}

// NewInet6 allocates a node for a 16-byte IPv6 address.
func NewInet6(addr [net.IPv6len]byte, hints protocol.Hints) *Node {
	return New(protocol.INET6, addr[:], hints)
}

// SetCanonName attaches an owned copy of name as the node's canonical
// name.
func (n *Node) SetCanonName(name string) {
	c := name
	n.CanonName = &c
}

// Prepend returns a new chain head with n inserted before head, in O(1).
func Prepend(head *Node, n *Node) *Node {
	n.Next = head
	return n
}

// Walk calls fn for every node in the chain, head first.
func Walk(head *Node, fn func(*Node)) {
	for n := head; n != nil; n = n.Next {
		fn(n)
	}
}

// Len returns the number of nodes in the chain.
func Len(head *Node) int {
	n := 0
	Walk(head, func(*Node) { n++ })
	return n
}

// Free releases every node in the chain. In Go there is nothing to
// explicitly release — the garbage collector reclaims the nodes once
// head is dropped — but Free is kept as an explicit operation so the
// release contract has one obvious call site and so a future
// pooled-allocation optimization has somewhere to hook in without
// changing any caller.
func Free(head *Node) {
	// Breaking Next links lets head be released before its tail even if
	// some other reference to an interior node were still alive,
	// matching the "free the whole chain, not just the head" contract.
	for n := head; n != nil; {
		next := n.Next
		n.Next = nil
		n.CanonName = nil
		n = next
	}
}
