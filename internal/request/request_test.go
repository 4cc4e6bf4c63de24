package request

import (
	"context"
	"testing"

	"github.com/aresinfo/addrinfo/internal/aierrors"
	"github.com/aresinfo/addrinfo/internal/dnschannel"
	"github.com/aresinfo/addrinfo/internal/protocol"
	"github.com/aresinfo/addrinfo/internal/result"
)

// fakeChannel lets tests drive host resolution synchronously without a
// real socket.
type fakeChannel struct {
	answers  map[protocol.Family]*dnschannel.HostAnswer
	errs     map[protocol.Family]error
	timeouts map[protocol.Family]int
	calls    []protocol.Family
}

func (f *fakeChannel) ResolveHost(ctx context.Context, name string, family protocol.Family, cb func(*dnschannel.HostAnswer, int, error)) {
	f.calls = append(f.calls, family)
	cb(f.answers[family], f.timeouts[family], f.errs[family])
}

func strPtr(s string) *string { return &s }

func TestNew_NilChannelFailsSynchronously(t *testing.T) {
	var gotStatus protocol.Status
	var called bool
	New(context.Background(), nil, strPtr("example.com"), nil, nil, func(status protocol.Status, timeouts int, head *result.Node) {
		called = true
		gotStatus = status
	})
	if !called {
		t.Fatal("callback was not invoked")
	}
	if gotStatus != protocol.EBadQuery {
		t.Errorf("status = %v, want EBADQUERY", gotStatus)
	}
}

func TestNew_NoNodeOrServiceFails(t *testing.T) {
	ch := &fakeChannel{}
	var gotStatus protocol.Status
	New(context.Background(), ch, nil, nil, nil, func(status protocol.Status, timeouts int, head *result.Node) {
		gotStatus = status
	})
	if gotStatus != protocol.ENoName {
		t.Errorf("status = %v, want ENONAME", gotStatus)
	}
}

func TestNew_CanonNameWithoutNodeFails(t *testing.T) {
	ch := &fakeChannel{}
	hints := protocol.Hints{Flags: protocol.FlagCanonName}
	service := "80"
	var gotStatus protocol.Status
	New(context.Background(), ch, nil, &service, &hints, func(status protocol.Status, timeouts int, head *result.Node) {
		gotStatus = status
	})
	if gotStatus != protocol.EBadFlags {
		t.Errorf("status = %v, want EBADFLAGS", gotStatus)
	}
}

func TestNew_AllWithoutV4MappedFails(t *testing.T) {
	ch := &fakeChannel{}
	hints := protocol.Hints{Flags: protocol.FlagAll}
	node := "example.com"
	var gotStatus protocol.Status
	New(context.Background(), ch, &node, nil, &hints, func(status protocol.Status, timeouts int, head *result.Node) {
		gotStatus = status
	})
	if gotStatus != protocol.EBadFlags {
		t.Errorf("status = %v, want EBADFLAGS", gotStatus)
	}
}

func TestNew_BadFamilyFails(t *testing.T) {
	ch := &fakeChannel{}
	hints := protocol.Hints{Family: protocol.Family(99)}
	node := "example.com"
	var gotStatus protocol.Status
	New(context.Background(), ch, &node, nil, &hints, func(status protocol.Status, timeouts int, head *result.Node) {
		gotStatus = status
	})
	if gotStatus != protocol.EBadFamily {
		t.Errorf("status = %v, want EBADFAMILY", gotStatus)
	}
}

// TestNew_NumericLiteralNeverCallsChannel covers seed scenario 1: a
// numeric literal resolves without touching the DNS channel at all.
func TestNew_NumericLiteralNeverCallsChannel(t *testing.T) {
	ch := &fakeChannel{}
	node := "127.0.0.1"
	var gotStatus protocol.Status
	var gotHead *result.Node
	New(context.Background(), ch, &node, nil, nil, func(status protocol.Status, timeouts int, head *result.Node) {
		gotStatus = status
		gotHead = head
	})
	if gotStatus != protocol.Success {
		t.Fatalf("status = %v, want SUCCESS", gotStatus)
	}
	if result.Len(gotHead) != 1 {
		t.Errorf("Len(head) = %d, want 1", result.Len(gotHead))
	}
	if len(ch.calls) != 0 {
		t.Errorf("channel.calls = %v, want none (literal needs no DNS)", ch.calls)
	}
}

// TestNew_SymbolicHostResolvesViaChannel covers seed scenario 4: a
// symbolic name with default hints consults the DNS channel for both
// families.
func TestNew_SymbolicHostResolvesViaChannel(t *testing.T) {
	ch := &fakeChannel{
		answers: map[protocol.Family]*dnschannel.HostAnswer{
			protocol.INET:  {Family: protocol.INET, Addrs: [][]byte{{127, 0, 0, 1}}},
			protocol.INET6: {Family: protocol.INET6, Addrs: [][]byte{make([]byte, 16)}},
		},
	}
	node := "localhost"
	var gotStatus protocol.Status
	var gotHead *result.Node
	New(context.Background(), ch, &node, nil, nil, func(status protocol.Status, timeouts int, head *result.Node) {
		gotStatus = status
		gotHead = head
	})
	if gotStatus != protocol.Success {
		t.Fatalf("status = %v, want SUCCESS", gotStatus)
	}
	if result.Len(gotHead) < 2 {
		t.Errorf("Len(head) = %d, want >= 2", result.Len(gotHead))
	}
}

// TestNew_HostFailureWithNoFallbackPropagates: a channel failure with
// no other host bit pending fails the whole request.
func TestNew_HostFailureWithNoFallbackPropagates(t *testing.T) {
	ch := &fakeChannel{
		errs: map[protocol.Family]error{
			protocol.INET: aierrors.New("resolve_host_inet", protocol.ENoName),
		},
	}
	hints := protocol.Hints{Family: protocol.INET}
	node := "nonexistent.invalid"
	var gotStatus protocol.Status
	New(context.Background(), ch, &node, nil, &hints, func(status protocol.Status, timeouts int, head *result.Node) {
		gotStatus = status
	})
	if gotStatus != protocol.ENoName {
		t.Errorf("status = %v, want ENONAME", gotStatus)
	}
}

// TestNew_TimeoutsAccumulateAcrossFamilies: the timeouts each host
// callback reports are summed across both families and handed to the
// completion callback.
func TestNew_TimeoutsAccumulateAcrossFamilies(t *testing.T) {
	ch := &fakeChannel{
		answers: map[protocol.Family]*dnschannel.HostAnswer{
			protocol.INET: {Family: protocol.INET, Addrs: [][]byte{{127, 0, 0, 1}}},
		},
		errs: map[protocol.Family]error{
			protocol.INET6: aierrors.New("resolve_host_inet6", protocol.ENoName),
		},
		timeouts: map[protocol.Family]int{
			protocol.INET:  1,
			protocol.INET6: 2,
		},
	}
	node := "slow.example.com"
	var gotStatus protocol.Status
	var gotTimeouts int
	New(context.Background(), ch, &node, nil, nil, func(status protocol.Status, timeouts int, head *result.Node) {
		gotStatus = status
		gotTimeouts = timeouts
	})
	if gotStatus != protocol.Success {
		t.Fatalf("status = %v, want SUCCESS", gotStatus)
	}
	if gotTimeouts != 3 {
		t.Errorf("timeouts = %d, want 3 (2 from the failed INET6 step + 1 from INET)", gotTimeouts)
	}
}

// TestNew_NumericServiceStampsPort covers seed scenario 6.
func TestNew_NumericServiceStampsPort(t *testing.T) {
	ch := &fakeChannel{}
	node := "127.0.0.1"
	service := "80"
	var gotHead *result.Node
	New(context.Background(), ch, &node, &service, nil, func(status protocol.Status, timeouts int, head *result.Node) {
		gotHead = head
	})
	if gotHead == nil {
		t.Fatal("head is nil")
	}
	if gotHead.Addr.Port != 80 {
		t.Errorf("Port = %d, want 80", gotHead.Addr.Port)
	}
	if gotHead.SockType != protocol.SockStream {
		t.Errorf("SockType = %v, want STREAM", gotHead.SockType)
	}
	if gotHead.Proto != protocol.ProtoTCP {
		t.Errorf("Proto = %v, want TCP", gotHead.Proto)
	}
}
