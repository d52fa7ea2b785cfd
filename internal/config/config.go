package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/engine"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	DefaultDuration  = 10.0
	DefaultTimeScale = 1.0
	DefaultFrameRate = 60
)

// Config is the file-level configuration: engine options plus host-side
// playback settings. Playback pacing never reaches the engine; it only
// changes how much wall time each frame feeds into Advance.
type Config struct {
	Engine    EngineConfig `yaml:"engine"`
	Duration  float64      `yaml:"duration"`
	TimeScale float64      `yaml:"time_scale"`
	FrameRate int          `yaml:"frame_rate"`
}

type EngineConfig struct {
	Gravity     float64      `yaml:"gravity"`
	Dt          float64      `yaml:"dt"`
	Restitution float64      `yaml:"restitution"`
	Friction    bool         `yaml:"friction"`
	MaxSubSteps int          `yaml:"max_sub_steps"`
	Ground      GroundConfig `yaml:"ground"`
}

type GroundConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Y        float64 `yaml:"y"`
	Friction float64 `yaml:"friction"`
}

func DefaultConfig() *Config {
	ec := engine.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			Gravity:     ec.Gravity,
			Dt:          ec.Dt,
			Restitution: ec.Restitution,
			Friction:    ec.Friction,
			MaxSubSteps: ec.MaxSubSteps,
			Ground: GroundConfig{
				Enabled:  ec.GroundEnabled,
				Y:        ec.GroundY,
				Friction: ec.GroundFriction,
			},
		},
		Duration:  DefaultDuration,
		TimeScale: DefaultTimeScale,
		FrameRate: DefaultFrameRate,
	}
}

// Validate checks the host-side playback settings. The engine half of
// the config is validated by the engine itself at construction.
func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", scene.ErrInvalidParameter, c.Duration)
	}
	if c.TimeScale <= 0 {
		return fmt.Errorf("%w: time scale must be positive, got %g", scene.ErrInvalidParameter, c.TimeScale)
	}
	if c.FrameRate < 1 {
		return fmt.Errorf("%w: frame rate must be >= 1, got %d", scene.ErrInvalidParameter, c.FrameRate)
	}
	return nil
}

// ToEngine maps the yaml form onto the engine's option struct.
func (c *Config) ToEngine() engine.Config {
	e := c.Engine
	return engine.Config{
		Gravity:        e.Gravity,
		Dt:             e.Dt,
		Restitution:    e.Restitution,
		Friction:       e.Friction,
		MaxSubSteps:    e.MaxSubSteps,
		GroundEnabled:  e.Ground.Enabled,
		GroundY:        e.Ground.Y,
		GroundFriction: e.Ground.Friction,
	}
}

// Load reads a config file over the defaults, so absent fields keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
