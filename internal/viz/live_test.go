package viz

import (
	"testing"
	"time"

	"github.com/san-kum/physlab/internal/engine"
)

func TestFrameIntervalClampsRate(t *testing.T) {
	sim, err := engine.New(engine.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		fps  int
		want time.Duration
	}{
		{"zero clamps to one", 0, time.Second},
		{"negative clamps to one", -5, time.Second},
		{"normal rate", 60, time.Second / 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(sim, "empty", tt.fps, 1)
			if got := m.frameInterval(); got != tt.want {
				t.Errorf("frameInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}
