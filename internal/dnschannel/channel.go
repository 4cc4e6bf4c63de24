package dnschannel

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/aresinfo/addrinfo/internal/aierrors"
	"github.com/aresinfo/addrinfo/internal/protocol"
)

const (
	// defaultPort is the standard DNS port, used when a configured
	// server string carries no port of its own.
	defaultPort = "53"

	// defaultTimeout bounds a single query/response round trip.
	defaultTimeout = 5 * time.Second

	// defaultUDPSize is the initial udpSize setting, equal to the read
	// buffer udp.go allocates per Receive.
	defaultUDPSize = udpBufferSize
)

// Channel is the external DNS channel collaborator: it owns the
// transports and resolver server list, and turns a (name, family) pair
// into a hostAnswer by sending a query and parsing its response.
type Channel struct {
	servers    []string
	timeout    time.Duration
	udpSize    int
	transports map[protocol.Family]Transport

	mu     sync.Mutex
	nextID uint16
}

// Option configures a Channel via the functional-options style for
// optional, validated construction parameters.
type Option func(*Channel) error

// WithServers overrides the default resolver list. Each entry is a
// "host" or "host:port" string; entries without a port default to 53.
func WithServers(servers ...string) Option {
	return func(c *Channel) error {
		if len(servers) == 0 {
			return &aierrors.ValidationError{Field: "servers", Value: servers, Message: "must not be empty"}
		}
		c.servers = append([]string(nil), servers...)
		return nil
	}
}

// WithTimeout overrides the per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Channel) error {
		if d <= 0 {
			return &aierrors.ValidationError{Field: "timeout", Value: d, Message: "must be positive"}
		}
		c.timeout = d
		return nil
	}
}

// WithUDPSize records the expected maximum UDP response size on the
// Channel. The transports do not read this setting: each Receive uses
// a fixed udpBufferSize buffer whatever value is given here.
func WithUDPSize(size int) Option {
	return func(c *Channel) error {
		if size <= 0 {
			return &aierrors.ValidationError{Field: "udpSize", Value: size, Message: "must be positive"}
		}
		c.udpSize = size
		return nil
	}
}

// systemResolvServers are used when no WithServers option is given;
// loopback resolvers are the common default for a locally running
// caching resolver and are a safe, side-effect-free default for a
// library to ship.
var systemResolvServers = []string{"127.0.0.1:53"}

// New constructs a Channel, opening the UDP transports it will use for
// the lifetime of the channel. Callers must Close the returned Channel
// when done.
func New(opts ...Option) (*Channel, error) {
	c := &Channel{
		servers: append([]string(nil), systemResolvServers...),
		timeout: defaultTimeout,
		udpSize: defaultUDPSize,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	transports := make(map[protocol.Family]Transport, 2)
	v4, err := newUDPTransport("udp4")
	if err != nil {
		return nil, err
	}
	transports[protocol.INET] = v4

	v6, err := newUDPTransport("udp6")
	if err != nil {
		_ = v4.Close()
		return nil, err
	}
	transports[protocol.INET6] = v6

	c.transports = transports
	return c, nil
}

// Close releases both transports, reporting the first error
// encountered but always attempting to close both.
func (c *Channel) Close() error {
	var firstErr error
	for _, t := range c.transports {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HostAnswer is the result of a successful ResolveHost call: the
// addresses found for name in the requested family, plus any canonical
// name the resolver chain revealed.
type HostAnswer struct {
	CanonName string
	Addrs     [][]byte
	Family    protocol.Family
}

// ResolveHost queries the configured resolvers for name's A or AAAA
// records (per family) and delivers the result to cb, along with the
// number of per-server attempts that ended in a timeout (the caller
// aggregates these across its lookups). The call returns immediately;
// cb runs on a separate goroutine, so ResolveHost never blocks its
// caller.
func (c *Channel) ResolveHost(ctx context.Context, name string, family protocol.Family, cb func(*HostAnswer, int, error)) {
	go func() {
		cb(c.resolveHostSync(ctx, name, family))
	}()
}

func (c *Channel) resolveHostSync(ctx context.Context, name string, family protocol.Family) (*HostAnswer, int, error) {
	transport, ok := c.transports[family]
	if !ok {
		return nil, 0, &aierrors.ValidationError{Field: "family", Value: family, Message: "no transport configured for this family"}
	}

	qtype := dnsmessage.TypeA
	if family == protocol.INET6 {
		qtype = dnsmessage.TypeAAAA
	}

	id := c.newQueryID()
	query, err := buildQuery(id, name, qtype)
	if err != nil {
		return nil, 0, err
	}

	var lastErr error
	timeouts := 0
	for _, server := range c.servers {
		addr, err := resolveServerAddr(server, family)
		if err != nil {
			lastErr = err
			continue
		}

		// Each server attempt gets its own timeout budget, so one dead
		// resolver does not consume the slice meant for the next.
		queryCtx, cancel := context.WithTimeout(ctx, c.timeout)

		if err := transport.Send(queryCtx, query, addr); err != nil {
			cancel()
			lastErr = err
			continue
		}

		answer, err := c.awaitResponse(queryCtx, transport, id, family, qtype)
		cancel()
		if err != nil {
			if isTimeout(err) {
				timeouts++
			}
			lastErr = err
			continue
		}

		return &HostAnswer{CanonName: answer.CanonName, Addrs: answer.Addrs, Family: answer.Family}, timeouts, nil
	}

	if lastErr == nil {
		lastErr = &aierrors.ValidationError{Field: "servers", Value: c.servers, Message: "no resolver servers configured"}
	}
	return nil, timeouts, lastErr
}

// isTimeout reports whether err (possibly wrapped in a NetworkError)
// is a network timeout or deadline expiry.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// awaitResponse reads packets until one carries id, discarding
// datagrams whose header does not parse or whose ID differs (a
// resolver socket can legitimately see delayed replies to earlier,
// already-timed-out queries). The first response with a matching ID
// decides the outcome: if it is not a usable answer, that error is
// returned.
func (c *Channel) awaitResponse(ctx context.Context, transport Transport, id uint16, family protocol.Family, qtype dnsmessage.Type) (*hostAnswer, error) {
	for {
		data, _, err := transport.Receive(ctx)
		if err != nil {
			return nil, err
		}

		var p dnsmessage.Parser
		header, err := p.Start(data)
		if err != nil || header.ID != id {
			continue
		}

		answer, err := parseResponse(data, family, qtype)
		if err != nil {
			return nil, err
		}
		return answer, nil
	}
}

// newQueryID returns a non-zero query ID. The first ID a Channel hands
// out is pseudo-random; each later one is the previous ID plus one,
// wrapping from 65535 to 1.
func (c *Channel) newQueryID() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nextID == 0 {
		c.nextID = uint16(rand.Intn(65535)) + 1
	}
	id := c.nextID
	c.nextID++
	if c.nextID == 0 {
		c.nextID = 1
	}
	return id
}

// resolveServerAddr turns a configured "host" or "host:port" server
// string into a concrete net.Addr for the given family.
func resolveServerAddr(server string, family protocol.Family) (net.Addr, error) {
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		host, port = server, defaultPort
	}

	network := "udp4"
	if family == protocol.INET6 {
		network = "udp6"
	}

	addr, err := net.ResolveUDPAddr(network, net.JoinHostPort(host, port))
	if err != nil {
		return nil, &aierrors.NetworkError{
			Operation: "resolve server address",
			Err:       err,
			Details:   fmt.Sprintf("failed to resolve %s", server),
		}
	}
	return addr, nil
}
