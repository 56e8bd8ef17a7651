package compat

import "github.com/doeshing/companion-go/internal/domain"

// DefaultDeniedBuilds lists exact builds that are unsupported even though they satisfy
// the version floor. New exceptions are added here, not as extra branches.
var DefaultDeniedBuilds = []domain.DeniedBuild{
	{Major: 18, Minor: 4, Patch: 0, BuildID: "22E5200", Reason: "iOS 18.4 beta 1"},
}
