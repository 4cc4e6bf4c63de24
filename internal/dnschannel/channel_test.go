package dnschannel

import (
	"testing"
	"time"
)

func TestWithServers_Empty(t *testing.T) {
	c := &Channel{}
	if err := WithServers()(c); err == nil {
		t.Error("WithServers() with no servers should error")
	}
}

func TestWithServers_Valid(t *testing.T) {
	c := &Channel{}
	if err := WithServers("8.8.8.8", "1.1.1.1:53")(c); err != nil {
		t.Fatalf("WithServers() error = %v", err)
	}
	if len(c.servers) != 2 {
		t.Errorf("len(servers) = %d, want 2", len(c.servers))
	}
}

func TestWithTimeout_Invalid(t *testing.T) {
	c := &Channel{}
	if err := WithTimeout(0)(c); err == nil {
		t.Error("WithTimeout(0) should error")
	}
	if err := WithTimeout(-time.Second)(c); err == nil {
		t.Error("WithTimeout(negative) should error")
	}
}

func TestWithTimeout_Valid(t *testing.T) {
	c := &Channel{}
	if err := WithTimeout(2 * time.Second)(c); err != nil {
		t.Fatalf("WithTimeout() error = %v", err)
	}
	if c.timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", c.timeout)
	}
}

func TestWithUDPSize_Invalid(t *testing.T) {
	c := &Channel{}
	if err := WithUDPSize(0)(c); err == nil {
		t.Error("WithUDPSize(0) should error")
	}
}

func TestNewQueryID_NonZeroAndIncrementing(t *testing.T) {
	c := &Channel{}
	first := c.newQueryID()
	if first == 0 {
		t.Error("newQueryID() returned 0")
	}
	second := c.newQueryID()
	if second != first+1 && second != 1 {
		t.Errorf("newQueryID() sequence = %d, %d; want incrementing (with wraparound to 1)", first, second)
	}
}
