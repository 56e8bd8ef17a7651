// Package compat decides whether the host OS can run the application.
package compat

import (
	"fmt"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/ports"
)

// Validator applies a minimum version floor and an exact-build denylist.
type Validator struct {
	minMajor int
	minMinor int
	denied   []domain.DeniedBuild
}

// Option customises a Validator.
type Option func(*Validator)

// WithMinimum overrides the 17.0 floor.
func WithMinimum(major, minor int) Option {
	return func(v *Validator) {
		v.minMajor = major
		v.minMinor = minor
	}
}

// WithDeniedBuilds appends entries to the built-in denylist.
func WithDeniedBuilds(builds ...domain.DeniedBuild) Option {
	return func(v *Validator) {
		v.denied = append(v.denied, builds...)
	}
}

// NewValidator returns a validator seeded with DefaultDeniedBuilds.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		minMajor: domain.DefaultMinimumMajor,
		minMinor: domain.DefaultMinimumMinor,
		denied:   append([]domain.DeniedBuild(nil), DefaultDeniedBuilds...),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// FromConfig builds a validator from the compatibility section.
func FromConfig(cfg domain.CompatibilitySettings) *Validator {
	opts := []Option{WithDeniedBuilds(cfg.DeniedBuilds...)}
	if cfg.MinimumMajor > 0 {
		opts = append(opts, WithMinimum(cfg.MinimumMajor, cfg.MinimumMinor))
	}
	return NewValidator(opts...)
}

// Validate implements ports.CompatibilityValidator. Rules are evaluated in order and
// the first match wins.
func (v *Validator) Validate(os domain.OSIdentity) domain.CompatibilityVerdict {
	if os.Major < v.minMajor || (os.Major == v.minMajor && os.Minor < v.minMinor) {
		return domain.CompatibilityVerdict{
			Supported: false,
			Title:     domain.TitleUnsupportedOS,
			Message: fmt.Sprintf("This app only supports %d.%d and above. Your device is running iOS/iPadOS %d.%d.%d.",
				v.minMajor, v.minMinor, os.Major, os.Minor, os.Patch),
		}
	}

	for _, build := range v.denied {
		if build.Matches(os) {
			return domain.CompatibilityVerdict{
				Supported: false,
				Title:     domain.TitleUnsupportedOS,
				Message:   deniedMessage(build),
			}
		}
	}

	return domain.CompatibilityVerdict{Supported: true}
}

// DeniedBuilds returns a copy of the active denylist.
func (v *Validator) DeniedBuilds() []domain.DeniedBuild {
	return append([]domain.DeniedBuild(nil), v.denied...)
}

func deniedMessage(build domain.DeniedBuild) string {
	name := build.Reason
	if name == "" {
		name = fmt.Sprintf("%d.%d.%d", build.Major, build.Minor, build.Patch)
	}
	return fmt.Sprintf("This app does not support %s (%s).", name, build.BuildID)
}

var _ ports.CompatibilityValidator = (*Validator)(nil)
