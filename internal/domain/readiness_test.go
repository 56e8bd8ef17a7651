package domain_test

import (
	"testing"

	"github.com/doeshing/companion-go/internal/domain"
)

func TestReadinessStateTerminal(t *testing.T) {
	tests := []struct {
		state domain.ReadinessState
		want  bool
	}{
		{domain.StateLoading, false},
		{domain.StateAwaitingUserAction, true},
		{domain.StateReady, true},
	}
	for _, tt := range tests {
		if got := tt.state.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.state, got, tt.want)
		}
	}
}
