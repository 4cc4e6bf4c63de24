package state

import (
	"testing"

	"github.com/aresinfo/addrinfo/internal/protocol"
	"github.com/aresinfo/addrinfo/internal/result"
)

func TestFindCanonical_NilHead(t *testing.T) {
	if err := FindCanonical(nil); err == nil {
		t.Error("FindCanonical(nil) should error")
	}
}

func TestFindCanonical_HeadAlreadySet(t *testing.T) {
	head := result.NewInet([4]byte{1, 2, 3, 4}, protocol.Default())
	head.SetCanonName("example.com")

	if err := FindCanonical(head); err != nil {
		t.Fatalf("FindCanonical() error = %v", err)
	}
	if *head.CanonName != "example.com" {
		t.Errorf("CanonName = %q, want example.com", *head.CanonName)
	}
}

func TestFindCanonical_CopiesFromTail(t *testing.T) {
	tail := result.NewInet([4]byte{1, 2, 3, 4}, protocol.Default())
	tail.SetCanonName("example.com")
	head := result.Prepend(tail, result.NewInet([4]byte{5, 6, 7, 8}, protocol.Default()))

	if err := FindCanonical(head); err != nil {
		t.Fatalf("FindCanonical() error = %v", err)
	}
	if head.CanonName == nil || *head.CanonName != "example.com" {
		t.Errorf("head.CanonName = %v, want example.com", head.CanonName)
	}
}

func TestFindCanonical_NoneFoundFails(t *testing.T) {
	head := result.NewInet([4]byte{1, 2, 3, 4}, protocol.Default())
	if err := FindCanonical(head); err == nil {
		t.Error("FindCanonical() should fail EBADNAME when no node has a canonical name")
	}
}
