package helpers

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStartStop(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "checking")
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "checking") {
		t.Fatalf("spinner never drew its label: %q", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Fatalf("spinner did not clear the line: %q", got)
	}
}

func TestIsTerminalRejectsNonTTYs(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Fatal("a buffer is not a terminal")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Fatal("a regular file is not a terminal")
	}
}
