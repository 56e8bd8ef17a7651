// Package platform reads the host operating system identity.
package platform

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/ports"
)

// ErrUnsupportedPlatform is returned when no probe exists for the running GOOS.
var ErrUnsupportedPlatform = errors.New("platform: no identity probe for this OS")

// Probe implements ports.PlatformProbe. A simulated identity from config takes
// precedence over the host.
type Probe struct {
	simulate domain.SimulatedOS
	goos     string
	run      func(ctx context.Context, name string, args ...string) (string, error)
	readFile func(string) ([]byte, error)
}

// NewProbe returns a probe for the running host.
func NewProbe(settings domain.PlatformSettings) *Probe {
	return &Probe{
		simulate: settings.Simulate,
		goos:     runtime.GOOS,
		run:      runCmd,
		readFile: os.ReadFile,
	}
}

// Simulated reports whether the identity comes from configuration.
func (p *Probe) Simulated() bool {
	return p.simulate.Enabled
}

// Identity implements ports.PlatformProbe.
func (p *Probe) Identity(ctx context.Context) (domain.OSIdentity, error) {
	if p.simulate.Enabled {
		return p.simulate.Identity(), nil
	}
	switch p.goos {
	case "darwin":
		return p.darwin(ctx)
	case "linux":
		return p.linux(ctx)
	default:
		return domain.OSIdentity{}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p.goos)
	}
}

func (p *Probe) darwin(ctx context.Context) (domain.OSIdentity, error) {
	version, err := p.run(ctx, "sw_vers", "-productVersion")
	if err != nil {
		return domain.OSIdentity{}, fmt.Errorf("sw_vers: %w", err)
	}
	id, err := ParseVersion(version)
	if err != nil {
		return domain.OSIdentity{}, err
	}
	if build, err := p.run(ctx, "sw_vers", "-buildVersion"); err == nil {
		id.BuildID = strings.TrimSpace(build)
	}
	return id, nil
}

func (p *Probe) linux(ctx context.Context) (domain.OSIdentity, error) {
	data, err := p.readFile("/etc/os-release")
	if err != nil {
		return domain.OSIdentity{}, fmt.Errorf("read os-release: %w", err)
	}
	fields := parseOSRelease(data)
	versionID := fields["VERSION_ID"]
	if versionID == "" {
		return domain.OSIdentity{}, errors.New("os-release has no VERSION_ID")
	}
	id, err := ParseVersion(versionID)
	if err != nil {
		return domain.OSIdentity{}, err
	}
	id.BuildID = fields["BUILD_ID"]
	if id.BuildID == "" {
		if kernel, err := p.run(ctx, "uname", "-r"); err == nil {
			id.BuildID = strings.TrimSpace(kernel)
		}
	}
	return id, nil
}

var versionStringPattern = regexp.MustCompile(`(?i)version\s+([0-9]+(?:\.[0-9]+){0,2})\s*\(build\s+([^)\s]+)\s*\)`)

// ParseVersionString decodes the platform's human readable form,
// e.g. "Version 18.4 (Build 22E5200)". A missing patch component is zero.
func ParseVersionString(s string) (domain.OSIdentity, error) {
	m := versionStringPattern.FindStringSubmatch(s)
	if m == nil {
		return domain.OSIdentity{}, fmt.Errorf("unrecognised version string %q", s)
	}
	id, err := ParseVersion(m[1])
	if err != nil {
		return domain.OSIdentity{}, err
	}
	id.BuildID = m[2]
	return id, nil
}

// ParseVersion decodes "major[.minor[.patch]]".
func ParseVersion(s string) (domain.OSIdentity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.OSIdentity{}, errors.New("empty version")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return domain.OSIdentity{}, fmt.Errorf("too many version components in %q", s)
	}
	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return domain.OSIdentity{}, fmt.Errorf("invalid version component %q in %q", part, s)
		}
		nums[i] = n
	}
	return domain.OSIdentity{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func parseOSRelease(data []byte) map[string]string {
	fields := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = strings.Trim(value, `"'`)
	}
	return fields
}

func runCmd(ctx context.Context, name string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, domain.DefaultCommandTimeout)
	defer cancel()
	out, err := exec.CommandContext(cctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

var _ ports.PlatformProbe = (*Probe)(nil)
