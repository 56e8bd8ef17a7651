package lifecycle

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/doeshing/companion-go/internal/domain"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		data    string
		want    domain.LifecycleEvent
		wantErr bool
	}{
		{name: "kind from subject", subject: "companion.lifecycle.became_active", want: domain.LifecycleEvent{Kind: domain.LifecycleBecameActive}},
		{name: "payload", subject: "companion.lifecycle.network", data: `{"kind":"network_degraded","message":"offline"}`, want: domain.LifecycleEvent{Kind: domain.LifecycleNetworkDegraded, Message: "offline"}},
		{name: "payload without kind", subject: "companion.lifecycle.pairing_required", data: `{"enabled":true}`, want: domain.LifecycleEvent{Kind: domain.LifecyclePairing, Enabled: true}},
		{name: "bad json", subject: "companion.lifecycle.became_active", data: `{`, wantErr: true},
		{name: "unknown", subject: "companion.lifecycle.suspended", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMessage(tt.subject, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNATSSourceDeliversEvents(t *testing.T) {
	url := startTestNATS(t)

	src, err := NewNATSSource(url, "", nil)
	if err != nil {
		t.Fatalf("NewNATSSource: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := src.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}

	pub, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pub.Close()
	if err := pub.Publish("companion.lifecycle.garbage", []byte("{")); err != nil {
		t.Fatal(err)
	}
	if err := pub.Publish("companion.lifecycle.became_active", nil); err != nil {
		t.Fatal(err)
	}
	pub.Flush()

	select {
	case ev := <-ch:
		if ev.Kind != domain.LifecycleBecameActive {
			t.Fatalf("kind = %s", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel to close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestNATSSourcePendingWhileBrokerDown(t *testing.T) {
	src, err := NewNATSSource("nats://127.0.0.1:1", "", nil, nats.RetryOnFailedConnect(true))
	if err != nil {
		t.Fatalf("NewNATSSource: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	events, err := src.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Events blocked for %v", elapsed)
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("unexpected event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}
