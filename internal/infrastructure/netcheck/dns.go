// Package netcheck probes connectivity once at startup.
package netcheck

import (
	"context"
	"fmt"
	"net"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/logger"
	"github.com/doeshing/companion-go/internal/ports"
)

// NotConnectedMessage is reported when no usable interface is up.
const NotConnectedMessage = "Not connected to WiFi"

// Resolver is the subset of net.Resolver used by DNSChecker.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DNSChecker resolves a well-known host. A lookup failure becomes the problem
// message; an offline host reports NotConnectedMessage.
type DNSChecker struct {
	host       string
	resolver   Resolver
	interfaces func() ([]net.Interface, error)
	log        ports.Logger
}

// NewDNSChecker probes host (DefaultProbeHost when empty) with the system resolver.
func NewDNSChecker(host string, log ports.Logger) *DNSChecker {
	if host == "" {
		host = domain.DefaultProbeHost
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &DNSChecker{
		host:       host,
		resolver:   net.DefaultResolver,
		interfaces: net.Interfaces,
		log:        log,
	}
}

// Check implements ports.NetworkChecker.
func (c *DNSChecker) Check(ctx context.Context) string {
	if !c.hasUsableInterface() {
		return NotConnectedMessage
	}
	ctx, cancel := context.WithTimeout(ctx, domain.DefaultProbeTimeout)
	defer cancel()

	addrs, err := c.resolver.LookupHost(ctx, c.host)
	if err != nil {
		c.log.Debug("dns probe failed", map[string]interface{}{"host": c.host, "error": err.Error()})
		return err.Error()
	}
	if len(addrs) == 0 {
		return fmt.Sprintf("DNS lookup for %s returned no addresses", c.host)
	}
	return ""
}

func (c *DNSChecker) hasUsableInterface() bool {
	ifaces, err := c.interfaces()
	if err != nil {
		// Unknown; let the lookup decide.
		return true
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}

var _ ports.NetworkChecker = (*DNSChecker)(nil)
