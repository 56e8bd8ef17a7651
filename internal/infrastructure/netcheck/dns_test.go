package netcheck

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
)

type stubResolver struct {
	addrs []string
	err   error
	host  string
}

func (s *stubResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	s.host = host
	return s.addrs, s.err
}

func upInterfaces() ([]net.Interface, error) {
	return []net.Interface{
		{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
		{Name: "en0", Flags: net.FlagUp | net.FlagBroadcast},
	}, nil
}

func TestDNSChecker(t *testing.T) {
	tests := []struct {
		name       string
		resolver   *stubResolver
		interfaces func() ([]net.Interface, error)
		want       string
	}{
		{
			name:       "healthy",
			resolver:   &stubResolver{addrs: []string{"140.82.112.3"}},
			interfaces: upInterfaces,
			want:       "",
		},
		{
			name:       "lookup failure",
			resolver:   &stubResolver{err: errors.New("lookup github.com: no such host")},
			interfaces: upInterfaces,
			want:       "lookup github.com: no such host",
		},
		{
			name:       "empty answer",
			resolver:   &stubResolver{},
			interfaces: upInterfaces,
			want:       "DNS lookup for github.com returned no addresses",
		},
		{
			name:     "loopback only",
			resolver: &stubResolver{err: errors.New("should not be called")},
			interfaces: func() ([]net.Interface, error) {
				return []net.Interface{{Name: "lo", Flags: net.FlagUp | net.FlagLoopback}, {Name: "en0"}}, nil
			},
			want: NotConnectedMessage,
		},
		{
			name:       "interface listing fails",
			resolver:   &stubResolver{addrs: []string{"140.82.112.3"}},
			interfaces: func() ([]net.Interface, error) { return nil, errors.New("denied") },
			want:       "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDNSChecker("", nil)
			c.resolver = tt.resolver
			c.interfaces = tt.interfaces
			if got := c.Check(context.Background()); got != tt.want {
				t.Fatalf("Check() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDNSCheckerUsesConfiguredHost(t *testing.T) {
	r := &stubResolver{addrs: []string{"1.1.1.1"}}
	c := NewDNSChecker("example.org", nil)
	c.resolver = r
	c.interfaces = upInterfaces
	c.Check(context.Background())
	if r.host != "example.org" {
		t.Fatalf("looked up %q", r.host)
	}
}

func TestNotConnectedIsBenign(t *testing.T) {
	if !strings.Contains(strings.ToLower(NotConnectedMessage), "not connected to wifi") {
		t.Fatal("offline message must match the benign substring")
	}
}
