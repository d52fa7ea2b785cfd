package engine

import (
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	DefaultGravity     = 9.8
	DefaultDt          = 0.005
	DefaultMaxSubSteps = 8
)

// Config carries the recognized simulation options. It is passed in at
// construction; there is no global state.
type Config struct {
	Gravity     float64 // magnitude, acts downward
	Dt          float64 // fixed step, never scaled
	Restitution float64 // 0 = inelastic resting contact
	Friction    bool    // friction model toggle
	MaxSubSteps int     // catch-up cap per Advance call

	GroundEnabled  bool
	GroundY        float64
	GroundFriction float64
}

func DefaultConfig() Config {
	return Config{
		Gravity:        DefaultGravity,
		Dt:             DefaultDt,
		Restitution:    scene.DefaultRestitution,
		Friction:       true,
		MaxSubSteps:    DefaultMaxSubSteps,
		GroundEnabled:  true,
		GroundFriction: scene.DefaultFriction,
	}
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", scene.ErrInvalidParameter, c.Dt)
	}
	if c.Gravity < 0 {
		return fmt.Errorf("%w: gravity must be >= 0, got %g", scene.ErrInvalidParameter, c.Gravity)
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be in [0,1], got %g", scene.ErrInvalidParameter, c.Restitution)
	}
	if c.MaxSubSteps < 1 {
		return fmt.Errorf("%w: max sub-steps must be >= 1, got %d", scene.ErrInvalidParameter, c.MaxSubSteps)
	}
	return nil
}

// RunState is the simulator's lifecycle state.
type RunState int

const (
	Idle RunState = iota
	Running
	Paused
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return "unknown"
}

type baselineState struct {
	pos, vel geom.Vec
	angle    float64
}

// Simulator owns a scene and advances it in fixed steps. All commands
// and ticks must come from one goroutine (or be serialized by the
// caller); the simulator does no internal locking.
type Simulator struct {
	cfg       Config
	scene     *scene.Scene
	clock     Clock
	state     RunState
	contacts  map[scene.Handle][]contact
	baseline  map[scene.Handle]baselineState
	listeners []Listener
	accum     float64
}

// New creates a simulator with an empty scene.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:      cfg,
		scene:    scene.New(),
		contacts: make(map[scene.Handle][]contact),
		baseline: make(map[scene.Handle]baselineState),
	}, nil
}

// NewFromDescription creates a simulator from a serialized scene.
// Handles are preserved, so a reloaded scene resumes identically.
func NewFromDescription(cfg Config, desc scene.Description) (*Simulator, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	sc, err := scene.Decode(desc)
	if err != nil {
		return nil, err
	}
	s.scene = sc
	sc.Each(func(h scene.Handle, o scene.Object) {
		s.capture(h, o)
	})
	return s, nil
}

// AddListener registers an event callback for warnings surfaced during
// ticks.
func (s *Simulator) AddListener(l Listener) { s.listeners = append(s.listeners, l) }

func (s *Simulator) emit(e Event) {
	for _, l := range s.listeners {
		l(e)
	}
}

func (s *Simulator) State() RunState { return s.state }

func (s *Simulator) Config() Config { return s.cfg }

// CreateObject builds an object from its spec and adds it to the scene.
func (s *Simulator) CreateObject(spec scene.ObjectSpec) (scene.Handle, error) {
	if s.state == Running {
		return 0, fmt.Errorf("%w: cannot edit scene while running", ErrInvalidOperation)
	}
	o, err := scene.Build(spec)
	if err != nil {
		return 0, err
	}
	if err := s.checkEndpoints(o); err != nil {
		return 0, err
	}
	h := s.scene.Add(o)
	s.capture(h, o)
	return h, nil
}

// CreateConstraint adds a spring, rope or pin joint between two
// endpoints.
func (s *Simulator) CreateConstraint(kind string, a, b scene.Endpoint, params scene.ObjectSpec) (scene.Handle, error) {
	params.Kind = kind
	params.A, params.B = &a, &b
	return s.CreateObject(params)
}

func (s *Simulator) checkEndpoints(o scene.Object) error {
	check := func(e scene.Endpoint) error {
		if _, ok := s.scene.EndpointBody(e); !ok {
			return fmt.Errorf("%w: endpoint handle %d", ErrUnknownHandle, e.Object)
		}
		return nil
	}
	switch t := o.(type) {
	case *scene.Spring:
		if err := check(t.A); err != nil {
			return err
		}
		return check(t.B)
	case *scene.Rope:
		if err := check(t.A); err != nil {
			return err
		}
		return check(t.B)
	case *scene.PinJoint:
		if err := check(t.A); err != nil {
			return err
		}
		return check(t.B)
	}
	return nil
}

// RemoveObject deletes an object. Constraints referencing it are
// dropped on the next tick.
func (s *Simulator) RemoveObject(h scene.Handle) error {
	if s.state == Running {
		return fmt.Errorf("%w: cannot edit scene while running", ErrInvalidOperation)
	}
	if !s.scene.Remove(h) {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	delete(s.baseline, h)
	delete(s.contacts, h)
	return nil
}

// capture records the state restored by Reset. Edits made while Idle
// update the baseline: the scene is still being built.
func (s *Simulator) capture(h scene.Handle, o scene.Object) {
	var bs baselineState
	switch t := o.(type) {
	case *scene.Box:
		bs = baselineState{pos: t.Pos, vel: t.Vel, angle: t.Angle}
	case *scene.Ball:
		bs = baselineState{pos: t.Pos, vel: t.Vel}
	case *scene.Ramp:
		bs = baselineState{pos: t.Anchor, angle: t.Angle}
	default:
		return
	}
	s.baseline[h] = bs
}

// Play starts or resumes the simulation.
func (s *Simulator) Play() error {
	if s.state == Running {
		return fmt.Errorf("%w: already running", ErrInvalidOperation)
	}
	s.state = Running
	s.accum = 0
	return nil
}

// Pause stops the clock, preserving all state. The scene becomes
// editable again.
func (s *Simulator) Pause() error {
	if s.state != Running {
		return fmt.Errorf("%w: pause requires a running simulation", ErrInvalidOperation)
	}
	s.state = Paused
	return nil
}

// Reset returns to Idle and restores every object to the state
// captured at scene-build time. The clock returns to zero.
func (s *Simulator) Reset() {
	s.scene.Each(func(h scene.Handle, o scene.Object) {
		bs, ok := s.baseline[h]
		if !ok {
			return
		}
		switch t := o.(type) {
		case *scene.Box:
			t.Pos, t.Vel, t.Angle = bs.pos, bs.vel, bs.angle
		case *scene.Ball:
			t.Pos, t.Vel = bs.pos, bs.vel
		case *scene.Ramp:
			t.Anchor, t.Angle = bs.pos, bs.angle
		}
	})
	s.clock.reset()
	s.contacts = make(map[scene.Handle][]contact)
	s.accum = 0
	s.state = Idle
}

// Step advances exactly n fixed steps. Valid while Idle or Paused; the
// simulator returns to its prior state afterwards.
func (s *Simulator) Step(n uint) error {
	if s.state == Running {
		return fmt.Errorf("%w: step requires idle or paused", ErrInvalidOperation)
	}
	for i := uint(0); i < n; i++ {
		s.tick()
	}
	return nil
}

// Advance consumes elapsed wall-clock seconds, running as many fixed
// sub-steps as fit. The step size is never scaled; if the host falls
// further behind than MaxSubSteps can cover, the remainder is dropped
// and playback slows rather than destabilizing stiff springs. Returns
// the number of steps taken.
func (s *Simulator) Advance(elapsed float64) int {
	if s.state != Running || elapsed <= 0 || math.IsNaN(elapsed) {
		return 0
	}
	s.accum += elapsed
	steps := int(s.accum / s.cfg.Dt)
	if steps > s.cfg.MaxSubSteps {
		steps = s.cfg.MaxSubSteps
		s.accum = 0
	} else {
		s.accum -= float64(steps) * s.cfg.Dt
	}
	for i := 0; i < steps; i++ {
		s.tick()
	}
	return steps
}

// tick runs one fixed step: accumulate, integrate, resolve, publish.
// It always runs to completion; pause and reset only take effect
// between ticks.
func (s *Simulator) tick() {
	s.pruneDangling()
	forces := s.accumulate()
	s.integrate(forces, s.cfg.Dt)
	s.contacts = s.resolveContacts()
	s.resolveRopes()
	s.resolvePinJoints()
	s.clock.advance(s.cfg.Dt)
}
