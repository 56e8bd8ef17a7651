package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/companion-go/internal/app"
	"github.com/doeshing/companion-go/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	runCmd := commands.NewRunCommand(container, NewSurface)

	root := &cobra.Command{
		Use:   "companion",
		Short: "Companion - readiness orchestrator",
		Long: "Companion runs the startup compatibility check, the daily release check and the\n" +
			"foreground heartbeat restart, and reports the resulting state and alert.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("verbose", opts.Verbose, "Enable debug logging")

	root.AddCommand(
		runCmd,
		commands.NewCheckUpdateCommand(container),
		commands.NewCompatCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewConfigCommand(container),
		commands.NewVersionCommand(container),
	)
	return root, nil
}
