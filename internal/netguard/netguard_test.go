package netguard

import (
	"context"
	"net"
	"testing"
)

func TestBlockedRejectsPrivateAndLoopback(t *testing.T) {
	cases := []string{"127.0.0.1", "10.0.0.5", "192.168.1.1", "172.16.0.1", "169.254.1.1", "0.0.0.0"}
	for _, c := range cases {
		ip := net.ParseIP(c)
		if ip == nil {
			t.Fatalf("ParseIP(%q) returned nil", c)
		}
		if !blocked(ip) {
			t.Errorf("blocked(%q) = false, want true", c)
		}
	}
}

func TestBlockedAllowsPublicAddress(t *testing.T) {
	ip := net.ParseIP("8.8.8.8")
	if blocked(ip) {
		t.Error("blocked(8.8.8.8) = true, want false")
	}
}

func TestDialContextRejectsLoopbackLiteral(t *testing.T) {
	_, err := DialContext(context.Background(), "tcp", "127.0.0.1:80")
	if err == nil {
		t.Fatal("expected error dialing loopback literal, got nil")
	}
}
