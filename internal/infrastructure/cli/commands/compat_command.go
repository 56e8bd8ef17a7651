package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/companion-go/internal/app"
	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/infrastructure/platform"
)

// NewCompatCommand evaluates an OS identity against the compatibility rules.
func NewCompatCommand(container *app.Container) *cobra.Command {
	var (
		identity      domain.OSIdentity
		versionString string
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "compat",
		Short: "Check whether an OS version is supported (defaults to this host)",
		Example: `  companion compat
  companion compat --major 18 --minor 4 --build 22E5200
  companion compat --version-string "Version 18.4 (Build 22E5200)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Validator == nil {
				return errors.New(ErrValidatorUnavailable)
			}

			target, err := resolveIdentity(cmd, container, identity, versionString)
			if err != nil {
				return err
			}
			verdict := container.Validator.Validate(target)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					OS      domain.OSIdentity           `json:"os"`
					Verdict domain.CompatibilityVerdict `json:"verdict"`
				}{target, verdict})
			}
			displayVerdict(cmd.OutOrStdout(), target, verdict)
			return nil
		},
	}

	cmd.Flags().IntVar(&identity.Major, "major", 0, "Major version")
	cmd.Flags().IntVar(&identity.Minor, "minor", 0, "Minor version")
	cmd.Flags().IntVar(&identity.Patch, "patch", 0, "Patch version")
	cmd.Flags().StringVar(&identity.BuildID, "build", "", "Build identifier (e.g. 22E5200)")
	cmd.Flags().StringVar(&versionString, "version-string", "", `Full version string, e.g. "Version 18.4 (Build 22E5200)"`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the verdict as JSON")
	cmd.MarkFlagsMutuallyExclusive("version-string", "major")
	return cmd
}

func resolveIdentity(cmd *cobra.Command, container *app.Container, flags domain.OSIdentity, versionString string) (domain.OSIdentity, error) {
	if versionString != "" {
		return platform.ParseVersionString(versionString)
	}
	if cmd.Flags().Changed("major") {
		return flags, nil
	}
	if container.Platform == nil {
		return domain.OSIdentity{}, errors.New("no OS given and host probe unavailable")
	}
	id, err := container.Platform.Identity(cmd.Context())
	if err != nil {
		return domain.OSIdentity{}, fmt.Errorf("probe host OS: %w", err)
	}
	return id, nil
}

func displayVerdict(out io.Writer, os domain.OSIdentity, verdict domain.CompatibilityVerdict) {
	if verdict.Supported {
		fmt.Fprintf(out, "%s: supported\n", os)
		return
	}
	fmt.Fprintf(out, "%s: %s\n%s\n", os, verdict.Title, verdict.Message)
}
