package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/doeshing/companion-go/internal/app"
	"github.com/doeshing/companion-go/internal/version"
)

// NewVersionCommand creates the version command
func NewVersionCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show companion version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return displayVersionInformation(cmd.OutOrStdout(), container)
		},
	}
}

// displayVersionInformation displays version information
func displayVersionInformation(out io.Writer, container *app.Container) error {
	fmt.Fprintf(out, "companion version %s\n", version.Version)

	if container != nil && container.LocalVersion != version.Version {
		fmt.Fprintf(out, "Reported as: %s (app.local_version)\n", container.LocalVersion)
	}

	if version.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
	}

	if version.BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
	}

	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())

	return nil
}
