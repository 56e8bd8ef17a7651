package doctor

import (
	"context"
	"fmt"

	appconfig "github.com/doeshing/companion-go/internal/application/config"
	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/ports"
)

// StateStore is the DateStore plus where it lives.
type StateStore interface {
	ports.DateStore
	Path() string
	Backend() string
}

// VersionProbe fetches the remote version with the failure reason kept.
type VersionProbe interface {
	URL() string
	Fetch(ctx context.Context) (string, error)
}

// BrokerDialer checks that a NATS server accepts connections.
type BrokerDialer func(ctx context.Context, url string) error

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Store          StateStore
	Platform       ports.PlatformProbe
	Validator      ports.CompatibilityValidator
	Version        VersionProbe
	DialBroker     BrokerDialer
	LocalVersion   string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format %s is valid", cfg.ConfigFormatVersion)))
	}

	checks = append(checks, s.storeCheck(ctx))
	checks = append(checks, s.platformCheck(ctx))
	checks = append(checks, s.versionCheck(ctx))
	checks = append(checks, s.brokerCheck(ctx, cfg))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) storeCheck(ctx context.Context) domain.HealthCheck {
	if s.Store == nil {
		return warn("State store", "not initialized")
	}
	last, found, err := s.Store.Get(ctx, domain.KeyLastCheckedDate)
	if err != nil {
		return fail("State store", fmt.Sprintf("%s at %s: %v", s.Store.Backend(), s.Store.Path(), err))
	}
	if !found || last == "" {
		return ok("State store", fmt.Sprintf("%s at %s; never checked", s.Store.Backend(), s.Store.Path()))
	}
	return ok("State store", fmt.Sprintf("%s at %s; last checked %s", s.Store.Backend(), s.Store.Path(), last))
}

func (s *Service) platformCheck(ctx context.Context) domain.HealthCheck {
	if s.Platform == nil || s.Validator == nil {
		return warn("Host OS", "platform probe not initialized")
	}
	identity, err := s.Platform.Identity(ctx)
	if err != nil {
		return warn("Host OS", err.Error())
	}
	verdict := s.Validator.Validate(identity)
	if !verdict.Supported {
		return warn("Host OS", fmt.Sprintf("%s: %s", identity, verdict.Message))
	}
	return ok("Host OS", fmt.Sprintf("%s supported", identity))
}

func (s *Service) versionCheck(ctx context.Context) domain.HealthCheck {
	if s.Version == nil {
		return warn("Version endpoint", "fetcher not initialized")
	}
	remote, err := s.Version.Fetch(ctx)
	if err != nil {
		return warn("Version endpoint", fmt.Sprintf("%s: %v", s.Version.URL(), err))
	}
	if remote != s.LocalVersion {
		return warn("Version endpoint", fmt.Sprintf("remote %s differs from local %s", remote, s.LocalVersion))
	}
	return ok("Version endpoint", fmt.Sprintf("up to date (%s)", remote))
}

func (s *Service) brokerCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	if !cfg.IsHeartbeatBrokerEnabled() {
		return ok("Heartbeat broker", "disabled; restart signals are logged only")
	}
	if s.DialBroker == nil {
		return warn("Heartbeat broker", "no dialer configured")
	}
	if err := s.DialBroker(ctx, cfg.Heartbeat.NATSURL); err != nil {
		return fail("Heartbeat broker", err.Error())
	}
	return ok("Heartbeat broker", fmt.Sprintf("%s reachable", cfg.Heartbeat.NATSURL))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
