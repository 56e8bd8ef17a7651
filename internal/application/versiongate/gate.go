// Package versiongate throttles the remote release check to once per calendar day.
package versiongate

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/clock"
	"github.com/doeshing/companion-go/internal/pkg/logger"
	"github.com/doeshing/companion-go/internal/pkg/telemetry"
	"github.com/doeshing/companion-go/internal/ports"
)

// Gate decides whether an update notification should fire today.
type Gate struct {
	Store    ports.DateStore
	Fetcher  ports.VersionFetcher
	Logger   ports.Logger
	Location *time.Location
	Tracer   trace.Tracer

	// mu serializes checks so at most one fetch is in flight per process.
	mu sync.Mutex
}

// CheckForUpdate implements ports.UpdateChecker. It never returns an error: fetch
// failures count as "no update" and persistence failures are only logged.
func (g *Gate) CheckForUpdate(ctx context.Context, now time.Time, localVersion string) domain.UpdateOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	ctx, span := g.tracer().Start(ctx, "versiongate.CheckForUpdate")
	defer span.End()
	span.SetAttributes(attribute.String("version.local", localVersion))

	record := g.loadRecord(ctx)
	today := clock.StartOfDay(now, g.location())
	last := record.LastCheckedDate
	if !last.IsZero() {
		last = clock.StartOfDay(last, g.location())
	}

	if !today.After(last) {
		span.SetAttributes(attribute.Bool("version.throttled", true))
		g.logger().Debug("version check throttled", map[string]interface{}{
			"today":        today.Format(domain.DateLayout),
			"last_checked": last.Format(domain.DateLayout),
		})
		return domain.UpdateOutcome{Throttled: true}
	}

	outcome := domain.UpdateOutcome{}
	if g.Fetcher != nil {
		if remote, ok := g.Fetcher.FetchVersion(ctx); ok {
			span.SetAttributes(attribute.String("version.remote", remote))
			if remote != localVersion {
				outcome = domain.UpdateOutcome{ShouldNotify: true, RemoteVersion: remote}
			}
		} else {
			g.logger().Debug("version fetch failed; treating as no update", nil)
		}
	}

	g.saveRecord(ctx, domain.VersionCheckRecord{LastCheckedDate: today, LocalVersion: localVersion})
	span.SetAttributes(attribute.Bool("version.notify", outcome.ShouldNotify))
	return outcome
}

// Record returns the persisted check record. Absent or unreadable dates yield the
// zero time, which sorts before every real day.
func (g *Gate) Record(ctx context.Context) domain.VersionCheckRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadRecord(ctx)
}

// Reset forgets the last checked date so the next call fetches again.
func (g *Gate) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Store == nil {
		return errors.New("versiongate: no date store configured")
	}
	return g.Store.Set(ctx, domain.KeyLastCheckedDate, "")
}

func (g *Gate) loadRecord(ctx context.Context) domain.VersionCheckRecord {
	var record domain.VersionCheckRecord
	if g.Store == nil {
		return record
	}

	raw, ok, err := g.Store.Get(ctx, domain.KeyLastCheckedDate)
	switch {
	case err != nil:
		g.logger().Error("read last checked date", err, nil)
	case ok && raw != "":
		if t, err := time.ParseInLocation(domain.DateLayout, raw, g.location()); err == nil {
			record.LastCheckedDate = t
		} else {
			g.logger().Warn("ignoring malformed last checked date", map[string]interface{}{"value": raw})
		}
	}

	if v, ok, err := g.Store.Get(ctx, domain.KeyLocalVersion); err == nil && ok {
		record.LocalVersion = v
	}
	return record
}

func (g *Gate) saveRecord(ctx context.Context, record domain.VersionCheckRecord) {
	if g.Store == nil {
		return
	}
	if err := g.Store.Set(ctx, domain.KeyLastCheckedDate, record.LastCheckedDate.Format(domain.DateLayout)); err != nil {
		g.logger().Error("persist last checked date", err, map[string]interface{}{
			"date": record.LastCheckedDate.Format(domain.DateLayout),
		})
	}
	if err := g.Store.Set(ctx, domain.KeyLocalVersion, record.LocalVersion); err != nil {
		g.logger().Error("persist local version", err, nil)
	}
}

func (g *Gate) location() *time.Location {
	if g.Location == nil {
		return time.Local
	}
	return g.Location
}

func (g *Gate) tracer() trace.Tracer {
	if g.Tracer == nil {
		return telemetry.Tracer()
	}
	return g.Tracer
}

func (g *Gate) logger() ports.Logger {
	if g.Logger == nil {
		return logger.NewNop()
	}
	return g.Logger
}

var _ ports.UpdateChecker = (*Gate)(nil)
