package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/doeshing/companion-go/internal/application/compat"
	"github.com/doeshing/companion-go/internal/application/doctor"
	"github.com/doeshing/companion-go/internal/application/readiness"
	"github.com/doeshing/companion-go/internal/application/versiongate"
	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/infrastructure/config"
	"github.com/doeshing/companion-go/internal/infrastructure/datestore"
	"github.com/doeshing/companion-go/internal/infrastructure/fetcher"
	"github.com/doeshing/companion-go/internal/infrastructure/heartbeat"
	"github.com/doeshing/companion-go/internal/infrastructure/lifecycle"
	"github.com/doeshing/companion-go/internal/infrastructure/netcheck"
	"github.com/doeshing/companion-go/internal/infrastructure/platform"
	"github.com/doeshing/companion-go/internal/pkg/clock"
	"github.com/doeshing/companion-go/internal/pkg/logger"
	"github.com/doeshing/companion-go/internal/pkg/telemetry"
	"github.com/doeshing/companion-go/internal/ports"
	"github.com/doeshing/companion-go/internal/version"
)

// ServiceName identifies the process in traces and NATS connection names.
const ServiceName = "companion"

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         ports.Logger
	Clock          ports.Clock
	Store          datestore.Store
	Fetcher        *fetcher.HTTPFetcher
	Gate           *versiongate.Gate
	Validator      *compat.Validator
	Platform       *platform.Probe
	Network        *netcheck.DNSChecker
	DoctorService  *doctor.Service
	LocalVersion   string

	mu                sync.Mutex
	heartbeat         ports.HeartbeatRestarter
	closers           []func() error
	shutdownTelemetry func(context.Context) error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)

	loc, err := clock.LoadLocation(cfg.GetTimezone())
	if err != nil {
		return nil, err
	}

	store, err := datestore.New(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Warn("telemetry disabled", map[string]interface{}{"error": err.Error()})
	}

	versionFetcher := fetcher.New(cfg.GetVersionURL(), cfg.GetFetchTimeout(), log)
	gate := &versiongate.Gate{
		Store:    store,
		Fetcher:  versionFetcher,
		Logger:   log,
		Location: loc,
		Tracer:   telemetry.Tracer(),
	}

	validator := compat.FromConfig(cfg.Compatibility)
	probe := platform.NewProbe(cfg.Platform)
	localVersion := cfg.GetLocalVersion(version.Version)

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Store:          store,
		Platform:       probe,
		Validator:      validator,
		Version:        versionFetcher,
		DialBroker:     heartbeat.Ping,
		LocalVersion:   localVersion,
	}

	return &Container{
		Config:            cfg,
		ConfigProvider:    cfgLoader,
		ConfigLoader:      cfgLoader,
		Logger:            log,
		Clock:             clock.System{},
		Store:             store,
		Fetcher:           versionFetcher,
		Gate:              gate,
		Validator:         validator,
		Platform:          probe,
		Network:           netcheck.NewDNSChecker(cfg.GetProbeHost(), log),
		DoctorService:     doctorService,
		LocalVersion:      localVersion,
		closers:           []func() error{store.Close},
		shutdownTelemetry: shutdown,
	}, nil
}

// Heartbeat returns the restart collaborator, connecting to NATS on first use when a
// broker is configured. The connection retries in the background, so an unreachable
// broker does not prevent startup.
func (c *Container) Heartbeat() (ports.HeartbeatRestarter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.heartbeat != nil {
		return c.heartbeat, nil
	}
	if !c.Config.IsHeartbeatBrokerEnabled() {
		c.heartbeat = heartbeat.NoopRestarter{Logger: c.Logger}
		return c.heartbeat, nil
	}
	restarter, err := heartbeat.NewNATSRestarter(
		c.Config.Heartbeat.NATSURL,
		c.Config.GetHeartbeatSubject(),
		c.Clock,
		c.Logger,
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, err
	}
	c.heartbeat = restarter
	c.closers = append(c.closers, restarter.Close)
	return restarter, nil
}

// NewMachine builds a readiness machine reporting to surface.
func (c *Container) NewMachine(surface ports.AlertSurface, withNetworkProbe bool) (*readiness.Machine, error) {
	hb, err := c.Heartbeat()
	if err != nil {
		return nil, err
	}
	opts := readiness.Options{
		Validator:              c.Validator,
		Updates:                c.Gate,
		Heartbeat:              hb,
		Platform:               c.Platform,
		Surface:                surface,
		Clock:                  c.Clock,
		Logger:                 c.Logger,
		LocalVersion:           c.LocalVersion,
		BlockOnIncompatible:    c.Config.ShouldBlockOnIncompatible(),
		BenignNetworkSubstring: c.Config.GetBenignSubstring(),
	}
	if withNetworkProbe {
		opts.Network = c.Network
	}
	return readiness.New(opts), nil
}

// LifecycleSources returns the line reader over in (when non-nil) plus a NATS
// subscription when a broker is configured. A broker that cannot be reached never
// fails startup; the subscription connects once the broker comes up.
func (c *Container) LifecycleSources(in io.Reader) ([]ports.LifecycleSource, error) {
	var sources []ports.LifecycleSource
	if in != nil {
		sources = append(sources, lifecycle.NewLineSource(in, c.Logger))
	}
	if c.Config.IsHeartbeatBrokerEnabled() {
		src, err := lifecycle.NewNATSSource(
			c.Config.Heartbeat.NATSURL,
			c.Config.GetLifecycleSubject(),
			c.Logger,
			nats.RetryOnFailedConnect(true),
		)
		if err != nil {
			c.Logger.Warn("lifecycle broker unavailable; continuing without it", map[string]interface{}{
				"url":   c.Config.Heartbeat.NATSURL,
				"error": err.Error(),
			})
			return sources, nil
		}
		c.mu.Lock()
		c.closers = append(c.closers, src.Close)
		c.mu.Unlock()
		sources = append(sources, src)
	}
	return sources, nil
}

// Close releases connections and flushes telemetry.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if c.shutdownTelemetry != nil {
		if err := c.shutdownTelemetry(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
