package dnschannel

import (
	"testing"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/aresinfo/addrinfo/internal/protocol"
)

func TestBuildQuery(t *testing.T) {
	data, err := buildQuery(1234, "example.com", dnsmessage.TypeA)
	if err != nil {
		t.Fatalf("buildQuery() error = %v", err)
	}

	var p dnsmessage.Parser
	header, err := p.Start(data)
	if err != nil {
		t.Fatalf("parsing built query: %v", err)
	}
	if header.ID != 1234 {
		t.Errorf("header.ID = %d, want 1234", header.ID)
	}
	if !header.RecursionDesired {
		t.Error("RecursionDesired = false, want true")
	}

	q, err := p.Question()
	if err != nil {
		t.Fatalf("Question() error = %v", err)
	}
	if q.Type != dnsmessage.TypeA {
		t.Errorf("question type = %v, want A", q.Type)
	}
	if got := q.Name.String(); got != "example.com." {
		t.Errorf("question name = %q, want %q", got, "example.com.")
	}
}

func TestFQDN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"example.com", "example.com."},
		{"example.com.", "example.com."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := fqdn(tt.in); got != tt.want {
			t.Errorf("fqdn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrimDot(t *testing.T) {
	tests := []struct{ in, want string }{
		{"example.com.", "example.com"},
		{"example.com", "example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := trimDot(tt.in); got != tt.want {
			t.Errorf("trimDot(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// buildResponse constructs a minimal, well-formed DNS response carrying
// a single A or AAAA answer, so parseResponse can be exercised without
// a live resolver.
func buildResponse(t *testing.T, id uint16, name string, qtype dnsmessage.Type, rdata []byte) []byte {
	t.Helper()

	dnsName, err := dnsmessage.NewName(fqdn(name))
	if err != nil {
		t.Fatalf("NewName: %v", err)
	}

	b := dnsmessage.NewBuilder(nil, dnsmessage.Header{ID: id, Response: true, RCode: dnsmessage.RCodeSuccess})
	b.EnableCompression()

	if err := b.StartQuestions(); err != nil {
		t.Fatalf("StartQuestions: %v", err)
	}
	if err := b.Question(dnsmessage.Question{Name: dnsName, Type: qtype, Class: dnsmessage.ClassINET}); err != nil {
		t.Fatalf("Question: %v", err)
	}

	if err := b.StartAnswers(); err != nil {
		t.Fatalf("StartAnswers: %v", err)
	}

	header := dnsmessage.ResourceHeader{Name: dnsName, Class: dnsmessage.ClassINET, TTL: 60}
	switch qtype {
	case dnsmessage.TypeA:
		var a [4]byte
		copy(a[:], rdata)
		if err := b.AResource(header, dnsmessage.AResource{A: a}); err != nil {
			t.Fatalf("AResource: %v", err)
		}
	case dnsmessage.TypeAAAA:
		var a [16]byte
		copy(a[:], rdata)
		if err := b.AAAAResource(header, dnsmessage.AAAAResource{AAAA: a}); err != nil {
			t.Fatalf("AAAAResource: %v", err)
		}
	}

	msg, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return msg
}

func TestParseResponse_A(t *testing.T) {
	want := []byte{93, 184, 216, 34}
	data := buildResponse(t, 42, "example.com", dnsmessage.TypeA, want)

	answer, err := parseResponse(data, protocol.INET, dnsmessage.TypeA)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if len(answer.Addrs) != 1 {
		t.Fatalf("len(Addrs) = %d, want 1", len(answer.Addrs))
	}
	for i, b := range want {
		if answer.Addrs[0][i] != b {
			t.Errorf("Addrs[0][%d] = %d, want %d", i, answer.Addrs[0][i], b)
		}
	}
}

func TestParseResponse_AAAA(t *testing.T) {
	want := make([]byte, 16)
	want[15] = 1
	data := buildResponse(t, 7, "example.com", dnsmessage.TypeAAAA, want)

	answer, err := parseResponse(data, protocol.INET6, dnsmessage.TypeAAAA)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if len(answer.Addrs) != 1 {
		t.Fatalf("len(Addrs) = %d, want 1", len(answer.Addrs))
	}
}

func TestParseResponse_NoMatchingRecords(t *testing.T) {
	data := buildResponse(t, 1, "example.com", dnsmessage.TypeA, []byte{1, 2, 3, 4})

	// Ask for INET6 when the response only carries an A record.
	if _, err := parseResponse(data, protocol.INET6, dnsmessage.TypeAAAA); err == nil {
		t.Error("parseResponse() error = nil, want error for family mismatch")
	}
}
