package state

import (
	"log"

	"github.com/aresinfo/addrinfo/internal/aierrors"
	"github.com/aresinfo/addrinfo/internal/netdb"
	"github.com/aresinfo/addrinfo/internal/numeric"
	"github.com/aresinfo/addrinfo/internal/protocol"
	"github.com/aresinfo/addrinfo/internal/result"
)

// Debug gates dispatch tracing. Tracing is not part of the resolution
// contract, so it hides behind a package variable a binary can flip at
// startup rather than a build tag.
var Debug = false

// HostAnswer is the host-resolution result the external DNS channel
// delivers to HostCallback: zero or more addresses of a single family,
// plus an optional canonical name.
type HostAnswer struct {
	CanonName string
	Addrs     [][]byte
	Family    protocol.Family
}

// Machine is one request's re-entrant dispatcher: the bitmask, the
// request's inputs, and the result chain it accumulates. It holds no
// reference to the DNS channel itself. Step returns a request for
// asynchronous host resolution, and the caller (internal/request)
// drives the channel and feeds the answer back through HostCallback,
// so the suspension is plain message passing rather than callback
// chaining internal to this package.
type Machine struct {
	Bits    Bits
	Hints   protocol.Hints
	Node    *string
	Service string

	Head     *result.Node
	Timeouts int

	Parser numeric.AddressParser
	DB     *netdb.DB
}

// New builds a Machine from a request's derived initial bitmask and
// inputs.
func New(initial Bits, hints protocol.Hints, node *string, service string, parser numeric.AddressParser, db *netdb.DB) *Machine {
	return &Machine{
		Bits:    initial,
		Hints:   hints,
		Node:    node,
		Service: service,
		Parser:  parser,
		DB:      db,
	}
}

// Result is what Step returns after one dispatch pass: either a request
// to suspend for asynchronous host resolution of Family, or a terminal
// outcome (Done true), or neither (never — Step only returns once one
// of the two holds).
type Result struct {
	Suspend bool
	Family  protocol.Family

	Done   bool
	Status protocol.Status
}

func trace(step string, bits Bits) {
	if Debug {
		log.Printf("next_state: step=%s bits=%#04x", step, bits)
	}
}

// Step runs the dispatch cascade until it either must suspend for
// asynchronous host resolution or reaches a terminal outcome. It is
// re-entered by internal/request after every suspension's callback via
// HostCallback.
func (m *Machine) Step() Result {
	for {
		switch {
		case m.Bits.Has(NumericHostInet6):
			m.Bits = m.Bits.Clear(NumericHostInet6)
			trace("try_pton_inet6", m.Bits)
			if status, ok := m.stepNumeric(protocol.INET6); !ok {
				return m.fail(status)
			}

		case m.Bits.Has(NumericHostInet):
			m.Bits = m.Bits.Clear(NumericHostInet)
			trace("try_pton_inet", m.Bits)
			if status, ok := m.stepNumeric(protocol.INET); !ok {
				return m.fail(status)
			}

		case m.Bits.HasHostWork() && m.Hints.Flags.Has(protocol.FlagNumericHost):
			trace("numeric-host-required", m.Bits)
			return m.fail(protocol.ENoName)

		case m.Bits.Has(HostInet6):
			m.Bits = m.Bits.Clear(HostInet6)
			trace("resolve_host_inet6", m.Bits)
			return Result{Suspend: true, Family: protocol.INET6}

		case m.Bits.Has(HostInet):
			m.Bits = m.Bits.Clear(HostInet)
			trace("resolve_host_inet", m.Bits)
			return Result{Suspend: true, Family: protocol.INET}

		case m.Bits.Has(Canonical):
			m.Bits = m.Bits.Clear(Canonical)
			trace("find_canonical", m.Bits)
			if err := FindCanonical(m.Head); err != nil {
				return m.failErr(err)
			}

		case m.Bits.Has(NumericServ):
			m.Bits = m.Bits.Clear(NumericServ)
			trace("try_serv_strtol", m.Bits)
			ok, err := TryServStrtol(m.Head, m.Service)
			if err != nil {
				return m.failErr(err)
			}
			if ok {
				// A numeric service resolves the whole service
				// concern; the symbolic step must not run.
				m.Bits = m.Bits.Clear(Serv)
			}
			// On parse failure SERV stays set and the symbolic step
			// dispatches on the next pass.

		case m.Bits.Has(Serv) && m.Hints.Flags.Has(protocol.FlagNumericServ):
			trace("numeric-serv-required", m.Bits)
			return m.fail(protocol.ENoName)

		case m.Bits.Has(Serv):
			m.Bits = m.Bits.Clear(Serv)
			trace("resolve_serv", m.Bits)
			if err := ResolveServ(m.DB, m.Head, m.Service); err != nil {
				return m.failErr(err)
			}

		case m.Bits.IsZero():
			trace("success", m.Bits)
			return Result{Done: true, Status: protocol.Success}

		default:
			// Unreachable given correct bit derivation: every bit
			// this switch doesn't recognize means an internal
			// invariant broke.
			trace("unreachable", m.Bits)
			return m.fail(protocol.EFormErr)
		}
	}
}

// stepNumeric runs try_pton_inet/try_pton_inet6 for family and prepends
// its result, returning ok=false with the terminal status on failure (a
// parse failure is not itself a failure — it is handled inside
// TryPtonInet/TryPtonInet6 by returning numeric=false, which this
// method folds into "continue the loop, leave remaining bits alone").
func (m *Machine) stepNumeric(family protocol.Family) (protocol.Status, bool) {
	var n *result.Node
	var numericOK bool

	if family == protocol.INET6 {
		n, numericOK = numeric.TryPtonInet6(m.Parser, m.Node, m.Hints)
	} else {
		n, numericOK = numeric.TryPtonInet(m.Parser, m.Node, m.Hints)
	}

	if !numericOK {
		// Not numeric: give DNS a chance. Host bits are left
		// untouched other than the numeric bit already cleared
		// above.
		return protocol.Success, true
	}

	m.Head = result.Prepend(m.Head, n)

	// A successful numeric parse resolves the node outright; clear
	// both host bits so DNS is never consulted.
	m.Bits = m.Bits.Clear(HostInet | HostInet6)
	return protocol.Success, true
}

// HostCallback is the external DNS channel's completion notification
// for one suspended host lookup. It accumulates timeouts, folds the
// answer (or failure) into the bitmask and chain, and resumes the
// dispatch cascade.
func (m *Machine) HostCallback(status protocol.Status, answer *HostAnswer, timeouts int) Result {
	m.Timeouts += timeouts

	if status != protocol.Success {
		if m.Bits.HasHostWork() {
			// Fall through to next_state; the other family may still
			// succeed.
			return m.Step()
		}
		return m.fail(status)
	}

	returnedFamily := answer.Family
	for _, addr := range answer.Addrs {
		var n *result.Node
		if returnedFamily == protocol.INET6 {
			var a [16]byte
			copy(a[:], addr)
			n = result.NewInet6(a, m.Hints)
		} else {
			var a [4]byte
			copy(a[:], addr)
			n = result.NewInet(a, m.Hints)
		}
		m.Head = result.Prepend(m.Head, n)
	}

	// Clear the bit for the family that was returned, not necessarily
	// the family that was requested: INET answers may arrive from an
	// INET6 query.
	if returnedFamily == protocol.INET6 {
		m.Bits = m.Bits.Clear(HostInet6)
	} else {
		m.Bits = m.Bits.Clear(HostInet)
	}

	// After an INET6 success for a caller that asked for INET6 without
	// AI_ALL, skip the other family entirely.
	if m.Hints.Family == protocol.INET6 && returnedFamily == protocol.INET6 && !m.Hints.Flags.Has(protocol.FlagAll) {
		m.Bits = m.Bits.Clear(HostInet)
	}

	if m.Hints.Flags.Has(protocol.FlagCanonName) && answer.CanonName != "" && m.Head != nil && m.Head.CanonName == nil {
		m.Head.SetCanonName(answer.CanonName)
	}

	return m.Step()
}

func (m *Machine) fail(status protocol.Status) Result {
	result.Free(m.Head)
	m.Head = nil
	return Result{Done: true, Status: status}
}

func (m *Machine) failErr(err error) Result {
	if le, ok := err.(*aierrors.LookupError); ok {
		return m.fail(le.Status)
	}
	return m.fail(protocol.EFormErr)
}
