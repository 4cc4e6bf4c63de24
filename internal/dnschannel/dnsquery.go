// dnsquery.go builds and parses the wire-format DNS messages this
// channel sends and receives, using golang.org/x/net/dns/dnsmessage —
// the same library Go's standard library pure-Go resolver is built on.
package dnschannel

import (
	"fmt"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/aresinfo/addrinfo/internal/protocol"
)

// buildQuery serializes a single-question query for name of the given
// DNS record type.
func buildQuery(id uint16, name string, qtype dnsmessage.Type) ([]byte, error) {
	dnsName, err := dnsmessage.NewName(fqdn(name))
	if err != nil {
		return nil, fmt.Errorf("dnschannel: invalid name %q: %w", name, err)
	}

	b := dnsmessage.NewBuilder(nil, dnsmessage.Header{
		ID:               id,
		RecursionDesired: true,
	})
	b.EnableCompression()

	if err := b.StartQuestions(); err != nil {
		return nil, fmt.Errorf("dnschannel: start questions: %w", err)
	}
	if err := b.Question(dnsmessage.Question{
		Name:  dnsName,
		Type:  qtype,
		Class: dnsmessage.ClassINET,
	}); err != nil {
		return nil, fmt.Errorf("dnschannel: add question: %w", err)
	}

	msg, err := b.Finish()
	if err != nil {
		return nil, fmt.Errorf("dnschannel: finish message: %w", err)
	}
	return msg, nil
}

// fqdn ensures name ends with a trailing dot, as dnsmessage.NewName
// expects for an absolute name.
func fqdn(name string) string {
	if len(name) == 0 || name[len(name)-1] == '.' {
		return name
	}
	return name + "."
}

// hostAnswer is the parsed, family-filtered result of a single query:
// one or more addresses of a single family plus an optional canonical
// name lifted from a CNAME chain.
type hostAnswer struct {
	CanonName string
	Addrs     [][]byte
	Family    protocol.Family
}

// parseResponse extracts the addresses (and canonical name, if any) of
// the requested family from a raw DNS response.
func parseResponse(data []byte, family protocol.Family, wantType dnsmessage.Type) (*hostAnswer, error) {
	var p dnsmessage.Parser

	header, err := p.Start(data)
	if err != nil {
		return nil, fmt.Errorf("dnschannel: parse header: %w", err)
	}
	if header.RCode != dnsmessage.RCodeSuccess {
		return nil, fmt.Errorf("dnschannel: response rcode %v", header.RCode)
	}

	if err := p.SkipAllQuestions(); err != nil {
		return nil, fmt.Errorf("dnschannel: skip questions: %w", err)
	}

	answers, err := p.AllAnswers()
	if err != nil {
		return nil, fmt.Errorf("dnschannel: read answers: %w", err)
	}

	out := &hostAnswer{Family: family}
	for _, a := range answers {
		switch body := a.Body.(type) {
		case *dnsmessage.AResource:
			if family == protocol.INET {
				addr := make([]byte, 4)
				copy(addr, body.A[:])
				out.Addrs = append(out.Addrs, addr)
			}
		case *dnsmessage.AAAAResource:
			if family == protocol.INET6 {
				addr := make([]byte, 16)
				copy(addr, body.AAAA[:])
				out.Addrs = append(out.Addrs, addr)
			}
		case *dnsmessage.CNAMEResource:
			out.CanonName = trimDot(body.CNAME.String())
		}
	}

	if len(out.Addrs) == 0 {
		return nil, fmt.Errorf("dnschannel: no %v records in response", wantType)
	}
	return out, nil
}

// trimDot strips the trailing dot dnsmessage.Name.String() always
// includes, so canonical names read naturally to a Go caller.
func trimDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}
