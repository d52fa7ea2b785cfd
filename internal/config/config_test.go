package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/physlab/internal/scene"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Engine.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Engine.Gravity <= 0 {
		t.Error("gravity should be positive")
	}
	if !cfg.Engine.Friction {
		t.Error("friction should default to enabled")
	}
	if !cfg.Engine.Ground.Enabled {
		t.Error("ground should default to enabled")
	}
	if cfg.TimeScale != DefaultTimeScale {
		t.Errorf("expected time scale %g, got %g", DefaultTimeScale, cfg.TimeScale)
	}
}

func TestToEngineValidates(t *testing.T) {
	cfg := DefaultConfig()
	ec := cfg.ToEngine()
	if ec.Dt != cfg.Engine.Dt {
		t.Errorf("dt not mapped: %g vs %g", ec.Dt, cfg.Engine.Dt)
	}
	if ec.GroundFriction != cfg.Engine.Ground.Friction {
		t.Error("ground friction not mapped")
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  gravity: 3.7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Engine.Gravity != 3.7 {
		t.Errorf("expected gravity 3.7, got %g", cfg.Engine.Gravity)
	}
	// Absent fields keep defaults.
	if cfg.Engine.Dt != DefaultConfig().Engine.Dt {
		t.Errorf("dt should keep default, got %g", cfg.Engine.Dt)
	}
	if !cfg.Engine.Friction {
		t.Error("friction should keep default true")
	}
}

func TestLoadRejectsBadPlayback(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero frame rate", "frame_rate: 0\n"},
		{"negative frame rate", "frame_rate: -30\n"},
		{"zero time scale", "time_scale: 0\n"},
		{"negative duration", "duration: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, scene.ErrInvalidParameter) {
				t.Errorf("Load err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Engine.Restitution = 0.25

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Engine.Restitution != 0.25 {
		t.Errorf("expected restitution 0.25, got %g", loaded.Engine.Restitution)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("ramp_slide")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(p.Objects) != 2 {
		t.Errorf("expected 2 objects, got %d", len(p.Objects))
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Error("expected presets")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Error("preset names should be sorted")
		}
	}
}
