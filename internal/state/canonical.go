package state

import (
	"github.com/aresinfo/addrinfo/internal/aierrors"
	"github.com/aresinfo/addrinfo/internal/protocol"
	"github.com/aresinfo/addrinfo/internal/result"
)

// FindCanonical selects the chain's canonical name: if the head node
// already carries one, it is a noop. Otherwise it scans the chain for
// the first node (in any position) that carries one and copies it onto
// the head, since the numeric and DNS steps can attach a canonical name
// to a node other than the head. If no node anywhere carries one, it
// fails EBadName.
func FindCanonical(head *result.Node) error {
	if head == nil {
		return aierrors.New("find_canonical", protocol.EBadName)
	}
	if head.CanonName != nil {
		return nil
	}

	for n := head.Next; n != nil; n = n.Next {
		if n.CanonName != nil {
			head.SetCanonName(*n.CanonName)
			return nil
		}
	}

	return aierrors.New("find_canonical", protocol.EBadName)
}
