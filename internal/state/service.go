package state

import (
	"strconv"

	"github.com/aresinfo/addrinfo/internal/aierrors"
	"github.com/aresinfo/addrinfo/internal/netdb"
	"github.com/aresinfo/addrinfo/internal/protocol"
	"github.com/aresinfo/addrinfo/internal/result"
)

// applyDefaults runs the socket-type/protocol defaulting shared by both
// service sub-steps: every result node gets its socket type defaulted
// to STREAM if unset, then its protocol derived from (family, socktype)
// if unset.
func applyDefaults(head *result.Node) error {
	for n := head; n != nil; n = n.Next {
		if n.SockType == 0 {
			switch n.Family {
			case protocol.INET, protocol.INET6:
				n.SockType = protocol.SockStream
			default:
				return aierrors.New("service defaulting", protocol.EBadFamily)
			}
		}
		if n.Proto == 0 {
			proto, ok := protocol.DefaultProto(n.Family, n.SockType)
			if !ok {
				return aierrors.New("service defaulting", protocol.EBadFamily)
			}
			n.Proto = proto
		}
	}
	return nil
}

// stampPort writes port into every node's embedded sockaddr.
func stampPort(head *result.Node, port int) {
	for n := head; n != nil; n = n.Next {
		n.Addr.Port = port
	}
}

// TryServStrtol attempts to parse service as a base-10 integer
// consuming the whole string. ok is false on parse failure, meaning
// "fall through to the symbolic step", not an error.
func TryServStrtol(head *result.Node, service string) (ok bool, err error) {
	port, convErr := strconv.Atoi(service)
	if convErr != nil || port < 0 || port > 65535 {
		return false, nil
	}

	if err := applyDefaults(head); err != nil {
		return true, err
	}
	stampPort(head, port)
	return true, nil
}

// ResolveServ resolves a symbolic service: it runs the same defaulting
// pass, then for each node looks up its protocol's canonical name and
// the service's port under that protocol name via db, stamping the
// resulting port into every node.
//
// A node's protocol name is looked up once per node, not once for the
// whole chain, because mixed-family chains can carry different
// protocols per node after defaulting.
func ResolveServ(db *netdb.DB, head *result.Node, service string) error {
	if err := applyDefaults(head); err != nil {
		return err
	}

	for n := head; n != nil; n = n.Next {
		protoName, ok := db.ProtocolName(n.Proto)
		if !ok {
			return aierrors.New("resolve_serv", protocol.EBadHints)
		}

		port, ok := db.ServicePort(service, protoName)
		if !ok {
			return aierrors.New("resolve_serv", protocol.ENoName)
		}

		n.Addr.Port = port
	}
	return nil
}
