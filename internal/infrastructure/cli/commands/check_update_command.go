package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/companion-go/internal/app"
	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/infrastructure/cli/helpers"
)

// NewCheckUpdateCommand runs the daily version gate once.
func NewCheckUpdateCommand(container *app.Container) *cobra.Command {
	var (
		force  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check-update",
		Short: "Check for a newer release (at most once per calendar day)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Gate == nil {
				return errors.New(ErrGateUnavailable)
			}
			ctx := cmd.Context()
			if force {
				if err := container.Gate.Reset(ctx); err != nil {
					return fmt.Errorf("failed to reset last checked date: %w", err)
				}
			}
			var spinner *helpers.Spinner
			if !asJSON && helpers.IsTerminal(cmd.OutOrStdout()) {
				spinner = helpers.NewSpinner(cmd.OutOrStdout(), "Checking for updates")
				spinner.Start()
			}
			outcome := container.Gate.CheckForUpdate(ctx, container.Clock.Now(), container.LocalVersion)
			if spinner != nil {
				spinner.Stop()
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), outcome)
			}
			record := container.Gate.Record(ctx)
			displayUpdateOutcome(cmd.OutOrStdout(), outcome, record, container.LocalVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Forget today's check and fetch again")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outcome as JSON")
	return cmd
}

func displayUpdateOutcome(out io.Writer, outcome domain.UpdateOutcome, record domain.VersionCheckRecord, local string) {
	switch {
	case outcome.Throttled:
		fmt.Fprintln(out, MsgAlreadyCheckedToday)
		if !record.LastCheckedDate.IsZero() {
			fmt.Fprintf(out, "Last checked: %s\n", record.LastCheckedDate.Format(domain.DateLayout))
		}
	case outcome.ShouldNotify:
		fmt.Fprintln(out, domain.TitleUpdateAvailable)
		fmt.Fprintln(out, domain.UpdateMessage(outcome.RemoteVersion))
	default:
		fmt.Fprintf(out, "%s (local %s)\n", MsgUpToDate, local)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
