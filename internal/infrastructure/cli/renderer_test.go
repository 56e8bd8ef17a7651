package cli

import (
	"bytes"
	"testing"

	"github.com/doeshing/companion-go/internal/domain"
)

func TestTerminalSurface(t *testing.T) {
	var buf bytes.Buffer
	s := NewTerminalSurface(&buf)

	s.StateChanged(domain.StateReady)
	s.AlertChanged(domain.AlertState{
		ID:      "al-1",
		Title:   domain.TitleUpdateAvailable,
		Message: domain.UpdateMessage("1.1"),
		Visible: true,
		Source:  domain.AlertSourceUpdate,
	})
	s.AlertChanged(domain.AlertState{ID: "al-1", Title: domain.TitleUpdateAvailable})
	s.AlertChanged(domain.AlertState{})
	s.PairingChanged(true)

	want := "[state] ready\n" +
		"[alert] Update Available!: Update to: version 1.1! (id=al-1 source=update)\n" +
		"[alert] dismissed al-1\n" +
		"[pairing] pairing file required\n"
	if got := buf.String(); got != want {
		t.Fatalf("output mismatch\n got: %q\nwant: %q", got, want)
	}
}
