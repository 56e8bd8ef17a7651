package platform

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/doeshing/companion-go/internal/domain"
)

func TestParseVersionString(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.OSIdentity
		wantErr bool
	}{
		{in: "Version 18.4 (Build 22E5200)", want: domain.OSIdentity{Major: 18, Minor: 4, Patch: 0, BuildID: "22E5200"}},
		{in: "Version 17.0.3 (Build 21A360)", want: domain.OSIdentity{Major: 17, Minor: 0, Patch: 3, BuildID: "21A360"}},
		{in: "version 18 (build 22A3354)", want: domain.OSIdentity{Major: 18, BuildID: "22A3354"}},
		{in: "18.4", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseVersionString(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseVersionString(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseVersionString(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.OSIdentity
		wantErr bool
	}{
		{in: "14.4.1", want: domain.OSIdentity{Major: 14, Minor: 4, Patch: 1}},
		{in: " 22.04\n", want: domain.OSIdentity{Major: 22, Minor: 4}},
		{in: "12", want: domain.OSIdentity{Major: 12}},
		{in: "1.2.3.4", wantErr: true},
		{in: "18.x", wantErr: true},
		{in: "-1", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestProbeSimulated(t *testing.T) {
	p := NewProbe(domain.PlatformSettings{Simulate: domain.SimulatedOS{
		Enabled: true, Major: 18, Minor: 4, BuildID: "22E5200",
	}})
	got, err := p.Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if got.String() != "18.4.0 (22E5200)" || !p.Simulated() {
		t.Fatalf("Identity = %s", got)
	}
}

func TestProbeDarwin(t *testing.T) {
	p := &Probe{
		goos: "darwin",
		run: func(_ context.Context, name string, args ...string) (string, error) {
			if name != "sw_vers" {
				t.Fatalf("unexpected command %s", name)
			}
			if args[0] == "-productVersion" {
				return "14.4.1", nil
			}
			return "23E224", nil
		},
	}
	got, err := p.Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	want := domain.OSIdentity{Major: 14, Minor: 4, Patch: 1, BuildID: "23E224"}
	if got != want {
		t.Fatalf("Identity = %+v, want %+v", got, want)
	}
}

func TestProbeLinux(t *testing.T) {
	osRelease := []byte("NAME=\"Ubuntu\"\nVERSION_ID=\"22.04\"\n# comment\nID=ubuntu\n")
	p := &Probe{
		goos:     "linux",
		readFile: func(string) ([]byte, error) { return osRelease, nil },
		run: func(context.Context, string, ...string) (string, error) {
			return "6.8.0-45-generic", nil
		},
	}
	got, err := p.Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	want := domain.OSIdentity{Major: 22, Minor: 4, BuildID: "6.8.0-45-generic"}
	if got != want {
		t.Fatalf("Identity = %+v, want %+v", got, want)
	}
}

func TestProbeLinuxMissingRelease(t *testing.T) {
	p := &Probe{
		goos:     "linux",
		readFile: func(string) ([]byte, error) { return nil, os.ErrNotExist },
	}
	if _, err := p.Identity(context.Background()); err == nil {
		t.Fatal("expected error without os-release")
	}
}

func TestProbeUnsupportedGOOS(t *testing.T) {
	p := &Probe{goos: "plan9"}
	if _, err := p.Identity(context.Background()); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("error = %v, want ErrUnsupportedPlatform", err)
	}
}
