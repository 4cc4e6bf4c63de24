// Package netdb implements the synchronous services/protocols database
// collaborator service resolution needs: protocol-number-to-name and
// (service name, protocol name)-to-port lookups.
//
// The protocol-number table below follows the same minimal, hand-written
// map shape as the Go standard library's own `protocols` fallback table
// in net/lookup.go — a small, platform-independent table used when no
// fuller system database is available, rather than shelling out to cgo.
// The services table follows the same spirit for the small set of
// well-known service names a getaddrinfo caller is likely to pass.
package netdb

import (
	"sync"

	"github.com/aresinfo/addrinfo/internal/protocol"
)

// protocolNames maps a protocol number to its canonical name, the
// getprotobynumber_r half of the collaborator.
var protocolNames = map[protocol.Proto]string{
	protocol.ProtoTCP:  "tcp",
	protocol.ProtoUDP:  "udp",
	protocol.ProtoRaw:  "raw",
	protocol.ProtoSCTP: "sctp",
	1:                  "icmp",
	58:                 "ipv6-icmp",
}

// serviceKey identifies a (service name, protocol name) pair, the input
// to getservbyname_r.
type serviceKey struct {
	Service string
	Proto   string
}

// servicePorts is a minimal, well-known subset of a system services
// database, keyed by (name, protocol).
var servicePorts = map[serviceKey]int{
	{"echo", "tcp"}:    7,
	{"echo", "udp"}:    7,
	{"ftp", "tcp"}:     21,
	{"ssh", "tcp"}:     22,
	{"telnet", "tcp"}:  23,
	{"smtp", "tcp"}:    25,
	{"domain", "tcp"}:  53,
	{"domain", "udp"}:  53,
	{"http", "tcp"}:    80,
	{"pop3", "tcp"}:    110,
	{"ntp", "udp"}:     123,
	{"imap", "tcp"}:    143,
	{"https", "tcp"}:   443,
	{"submission", "tcp"}: 587,
}

// DB is the services/protocols collaborator. Obtain one with New, which
// fills in the built-in tables; the zero value holds no tables, so its
// lookups find nothing and its Register* methods panic. Register*
// methods exist so callers (and tests) can extend the built-in tables
// without needing a system database.
//
// A DB is safe for concurrent use: it provides its own locking rather
// than pushing serialization onto callers.
type DB struct {
	mu        sync.RWMutex
	protocols map[protocol.Proto]string
	services  map[serviceKey]int
}

// New returns a DB pre-populated with the built-in protocol and service
// tables.
func New() *DB {
	protos := make(map[protocol.Proto]string, len(protocolNames))
	for k, v := range protocolNames {
		protos[k] = v
	}
	svcs := make(map[serviceKey]int, len(servicePorts))
	for k, v := range servicePorts {
		svcs[k] = v
	}
	return &DB{protocols: protos, services: svcs}
}

// ProtocolName resolves a protocol number to its canonical name. ok is
// false if the protocol is unknown.
func (d *DB) ProtocolName(p protocol.Proto) (name string, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok = d.protocols[p]
	return name, ok
}

// ServicePort resolves (service name, protocol name) to a port number.
// ok is false if the service is unknown.
func (d *DB) ServicePort(service, protoName string) (port int, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	port, ok = d.services[serviceKey{service, protoName}]
	return port, ok
}

// RegisterProtocol adds or overrides a protocol-number-to-name mapping.
func (d *DB) RegisterProtocol(p protocol.Proto, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.protocols[p] = name
}

// RegisterService adds or overrides a (service, protocol) to port
// mapping.
func (d *DB) RegisterService(service, protoName string, port int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.services[serviceKey{service, protoName}] = port
}
