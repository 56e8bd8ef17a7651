package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/companion-go/internal/app"
	"github.com/doeshing/companion-go/internal/application/readiness"
	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/infrastructure/lifecycle"
	"github.com/doeshing/companion-go/internal/ports"
)

// SurfaceFactory builds the presentation surface for the run command.
type SurfaceFactory func(out io.Writer) ports.AlertSurface

// NewRunCommand starts the readiness orchestrator and feeds it lifecycle events until
// the inputs close or the process is interrupted.
func NewRunCommand(container *app.Container, newSurface SurfaceFactory) *cobra.Command {
	var (
		noStdin        bool
		noNetworkProbe bool
		activeOnStart  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the readiness orchestrator",
		Long: `Run performs the startup checks and then reads lifecycle events, one per line:

  became_active
  network_degraded <message>
  dismiss [alert-id]
  pairing on|off

When heartbeat.nats_url is configured, events are also received on lifecycle.nats_subject
and heartbeat restarts are published to heartbeat.subject.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var in io.Reader
			if !noStdin {
				in = cmd.InOrStdin()
			}
			return runOrchestrator(ctx, cmd.OutOrStdout(), container, newSurface, in, !noNetworkProbe, activeOnStart)
		},
	}

	cmd.Flags().BoolVar(&noStdin, "no-stdin", false, "Do not read lifecycle events from stdin")
	cmd.Flags().BoolVar(&noNetworkProbe, "no-network-probe", false, "Skip the startup DNS probe")
	cmd.Flags().BoolVar(&activeOnStart, "active-on-start", true, "Treat launch as the first became_active event")
	return cmd
}

func runOrchestrator(ctx context.Context, out io.Writer, container *app.Container, newSurface SurfaceFactory, in io.Reader, probeNetwork, activeOnStart bool) error {
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			container.Logger.Warn("shutdown incomplete", map[string]interface{}{"error": err.Error()})
		}
	}()

	machine, err := container.NewMachine(newSurface(out), probeNetwork)
	if err != nil {
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}
	if err := machine.Start(ctx); err != nil {
		return err
	}
	// Registered after the close above so background checks finish before the store closes.
	defer machine.Wait()
	if activeOnStart {
		machine.BecameActive(ctx)
	}

	sources, err := container.LifecycleSources(in)
	if err != nil {
		return fmt.Errorf("failed to open lifecycle sources: %w", err)
	}
	if err := consumeEvents(ctx, machine, sources, container.Logger); err != nil {
		return err
	}

	machine.Wait()
	return writeJSON(out, machine.Snapshot())
}

func consumeEvents(ctx context.Context, machine *readiness.Machine, sources []ports.LifecycleSource, log ports.Logger) error {
	if len(sources) == 0 {
		<-ctx.Done()
		return nil
	}
	events, err := lifecycle.Merge(ctx, sources...)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := machine.Dispatch(ctx, ev); err != nil {
				log.Warn("lifecycle event rejected", map[string]interface{}{
					"kind":  string(ev.Kind),
					"error": err.Error(),
				})
			}
			if ev.Kind == domain.LifecycleBecameActive {
				log.Debug("heartbeat restarts", map[string]interface{}{"count": machine.HeartbeatRestarts()})
			}
		}
	}
}
