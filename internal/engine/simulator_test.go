package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

func mustCreate(t *testing.T, s *Simulator, spec scene.ObjectSpec) scene.Handle {
	t.Helper()
	h, err := s.CreateObject(spec)
	if err != nil {
		t.Fatalf("CreateObject(%s): %v", spec.Kind, err)
	}
	return h
}

func testDescription() scene.Description {
	return scene.Description{Objects: []scene.ObjectSpec{
		{Handle: 1, Kind: "ramp", Pos: geom.V(-2, 0), Length: 6, Angle: 20 * math.Pi / 180, Friction: 0.4},
		{Handle: 2, Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1, Friction: 0.4},
		{Handle: 3, Kind: "box", Pos: geom.V(4, 3), Width: 1, Height: 1, Mass: 2, Friction: 0.5},
		{Handle: 4, Kind: "spring", A: &scene.Endpoint{Point: geom.V(4, 8)}, B: &scene.Endpoint{Object: 3},
			RestLength: 2, Stiffness: 12, Damping: 0.2},
	}}
}

func TestLifecycle(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if s.State() != Idle {
		t.Fatalf("initial state = %v, want idle", s.State())
	}
	if err := s.Pause(); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("pause while idle = %v, want ErrInvalidOperation", err)
	}
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	if s.State() != Running {
		t.Fatalf("state after play = %v", s.State())
	}
	if err := s.Play(); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("play while running = %v, want ErrInvalidOperation", err)
	}
	if err := s.Step(1); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("step while running = %v, want ErrInvalidOperation", err)
	}
	if err := s.Pause(); err != nil {
		t.Fatal(err)
	}
	if s.State() != Paused {
		t.Fatalf("state after pause = %v", s.State())
	}
	if err := s.Step(5); err != nil {
		t.Errorf("step while paused: %v", err)
	}
	s.Reset()
	if s.State() != Idle {
		t.Fatalf("state after reset = %v", s.State())
	}
}

func TestEditWhileRunningRejected(t *testing.T) {
	s, _ := New(DefaultConfig())
	h := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1})

	if err := s.Play(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateObject(scene.ObjectSpec{Kind: "ball", Pos: geom.V(2, 5), Radius: 0.5, Mass: 1}); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("create while running = %v, want ErrInvalidOperation", err)
	}
	if err := s.RemoveObject(h); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("remove while running = %v, want ErrInvalidOperation", err)
	}
	if err := s.SetParameter(h, "mass", 2); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("set while running = %v, want ErrInvalidOperation", err)
	}

	if err := s.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetParameter(h, "mass", 2); err != nil {
		t.Errorf("set while paused: %v", err)
	}
}

func TestRemoveUnknownHandle(t *testing.T) {
	s, _ := New(DefaultConfig())
	if err := s.RemoveObject(42); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("remove unknown = %v, want ErrUnknownHandle", err)
	}
}

func TestConstraintNeedsKnownEndpoints(t *testing.T) {
	s, _ := New(DefaultConfig())
	h := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1})

	if _, err := s.CreateConstraint("rope", scene.Endpoint{Object: h}, scene.Endpoint{Object: 99},
		scene.ObjectSpec{MaxLength: 3}); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("constraint to unknown handle = %v, want ErrUnknownHandle", err)
	}
	if _, err := s.CreateConstraint("rope", scene.Endpoint{Object: h}, scene.Endpoint{Point: geom.V(0, 9)},
		scene.ObjectSpec{MaxLength: 3}); err != nil {
		t.Errorf("valid constraint: %v", err)
	}
}

func TestPinJointNeedsBodyEndpoints(t *testing.T) {
	s, _ := New(DefaultConfig())
	ramp := mustCreate(t, s, scene.ObjectSpec{Kind: "ramp", Pos: geom.V(0, 0), Length: 4, Angle: 0.3})
	ball := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1})

	if _, err := s.CreateConstraint("pin", scene.Endpoint{Object: ramp}, scene.Endpoint{Object: ball},
		scene.ObjectSpec{Pivot: geom.V(0, 3)}); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("pin joint to a ramp = %v, want ErrUnknownHandle", err)
	}
	if _, err := s.CreateConstraint("pin", scene.Endpoint{Point: geom.V(0, 3)}, scene.Endpoint{Object: ball},
		scene.ObjectSpec{}); !errors.Is(err, scene.ErrInvalidParameter) {
		t.Errorf("pin joint with a fixed endpoint = %v, want ErrInvalidParameter", err)
	}
}

func TestStepDeterminism(t *testing.T) {
	desc := testDescription()
	a, err := NewFromDescription(DefaultConfig(), desc)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFromDescription(DefaultConfig(), desc)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Step(150); err != nil {
		t.Fatal(err)
	}
	if err := b.Step(50); err != nil {
		t.Fatal(err)
	}
	if err := b.Step(100); err != nil {
		t.Fatal(err)
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	if len(sa) != len(sb) {
		t.Fatalf("snapshot lengths differ: %d vs %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i].Pos != sb[i].Pos || sa[i].Vel != sb[i].Vel {
			t.Errorf("object %d diverged: %v/%v vs %v/%v",
				sa[i].Handle, sa[i].Pos, sa[i].Vel, sb[i].Pos, sb[i].Vel)
		}
	}
}

func TestResetRestoresBaseline(t *testing.T) {
	s, err := NewFromDescription(DefaultConfig(), testDescription())
	if err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	if err := s.Step(100); err != nil {
		t.Fatal(err)
	}
	moved := false
	for i, st := range s.Snapshot() {
		if st.Pos != before[i].Pos {
			moved = true
		}
	}
	if !moved {
		t.Fatal("nothing moved in 100 steps")
	}

	s.Reset()
	d := s.Diagnostics()
	if d.SimTime != 0 || d.StepCount != 0 {
		t.Errorf("clock not reset: t=%g steps=%d", d.SimTime, d.StepCount)
	}
	for i, st := range s.Snapshot() {
		if st.Pos != before[i].Pos || st.Vel != before[i].Vel {
			t.Errorf("object %d not restored: %v/%v, want %v/%v",
				st.Handle, st.Pos, st.Vel, before[i].Pos, before[i].Vel)
		}
	}
}

func TestResetUsesEditedBaseline(t *testing.T) {
	s, _ := New(DefaultConfig())
	h := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1})

	// Idle edits move the baseline: the scene is still being built.
	if err := s.SetParameter(h, "y", 9); err != nil {
		t.Fatal(err)
	}
	if err := s.Step(50); err != nil {
		t.Fatal(err)
	}
	s.Reset()

	st := s.Snapshot()[0]
	if st.Pos != geom.V(0, 9) {
		t.Errorf("reset position = %v, want (0,9)", st.Pos)
	}
}

func TestAdvanceSubStepping(t *testing.T) {
	s, _ := New(DefaultConfig())
	mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1})

	if got := s.Advance(0.1); got != 0 {
		t.Errorf("advance while idle took %d steps", got)
	}

	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	if got := s.Advance(0.013); got != 2 {
		t.Errorf("advance(0.013) = %d steps, want 2", got)
	}
	if got := s.Advance(0.013); got != 3 {
		t.Errorf("advance(0.013) with carry = %d steps, want 3", got)
	}

	// A long stall is capped, not caught up.
	if got := s.Advance(1.0); got != DefaultMaxSubSteps {
		t.Errorf("advance(1.0) = %d steps, want %d", got, DefaultMaxSubSteps)
	}

	if d := s.Diagnostics(); d.StepCount != 5+DefaultMaxSubSteps {
		t.Errorf("step count = %d, want %d", d.StepCount, 5+DefaultMaxSubSteps)
	}

	if got := s.Advance(math.NaN()); got != 0 {
		t.Errorf("advance(NaN) = %d steps, want 0", got)
	}
}

func TestDanglingConstraintDropped(t *testing.T) {
	s, _ := New(DefaultConfig())
	h1 := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1})
	h2 := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(2, 5), Radius: 0.5, Mass: 1})
	rope, err := s.CreateConstraint("rope", scene.Endpoint{Object: h1}, scene.Endpoint{Object: h2},
		scene.ObjectSpec{MaxLength: 3})
	if err != nil {
		t.Fatal(err)
	}

	var events []Event
	s.AddListener(func(e Event) { events = append(events, e) })

	if err := s.RemoveObject(h1); err != nil {
		t.Fatal(err)
	}
	if err := s.Step(1); err != nil {
		t.Fatal(err)
	}

	if d := s.Diagnostics(); d.Objects != 1 {
		t.Errorf("objects after prune = %d, want 1", d.Objects)
	}
	found := false
	for _, e := range events {
		if e.Code == EventConstraintDropped && e.Handle == rope {
			found = true
		}
	}
	if !found {
		t.Errorf("no constraint-dropped event for handle %d in %v", rope, events)
	}
}

func TestInstabilityContained(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.GroundEnabled = false
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	h := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(2, 0), Radius: 0.5, Mass: 1})
	if _, err := s.CreateConstraint("spring", scene.Endpoint{Point: geom.V(0, 0)}, scene.Endpoint{Object: h},
		scene.ObjectSpec{RestLength: 1, Stiffness: 1e12}); err != nil {
		t.Fatal(err)
	}

	var events []Event
	s.AddListener(func(e Event) { events = append(events, e) })

	if err := s.Step(100); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, e := range events {
		if e.Code == EventInstability {
			found = true
			if !errors.Is(e.Err(), ErrNumericalInstability) {
				t.Errorf("event error = %v, want ErrNumericalInstability", e.Err())
			}
		}
	}
	if !found {
		t.Error("runaway spring produced no instability event")
	}
	for _, st := range s.Snapshot() {
		if !st.Pos.IsFinite() {
			t.Errorf("object %d left with non-finite position %v", st.Handle, st.Pos)
		}
	}
}

func TestSetParameterRollback(t *testing.T) {
	s, _ := New(DefaultConfig())
	h := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1})

	if err := s.SetParameter(h, "mass", -2); !errors.Is(err, scene.ErrInvalidParameter) {
		t.Fatalf("negative mass = %v, want ErrInvalidParameter", err)
	}
	if err := s.SetParameter(h, "spin", 3); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("unknown key = %v, want ErrInvalidOperation", err)
	}

	// The failed edits left the object untouched.
	st := s.Snapshot()[0]
	if st.Pos != geom.V(0, 5) || st.Radius != 0.5 {
		t.Errorf("object mutated by rejected edit: %+v", st)
	}

	if err := s.SetParameter(h, "radius", 0.8); err != nil {
		t.Fatal(err)
	}
	if st := s.Snapshot()[0]; st.Radius != 0.8 {
		t.Errorf("radius = %g, want 0.8", st.Radius)
	}
}

func TestDescribeRoundTrip(t *testing.T) {
	a, err := NewFromDescription(DefaultConfig(), testDescription())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Step(75); err != nil {
		t.Fatal(err)
	}

	b, err := NewFromDescription(DefaultConfig(), a.Describe())
	if err != nil {
		t.Fatal(err)
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	if len(sa) != len(sb) {
		t.Fatalf("snapshot lengths differ: %d vs %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i].Handle != sb[i].Handle || sa[i].Pos != sb[i].Pos || sa[i].Vel != sb[i].Vel {
			t.Errorf("object %d: %v/%v vs %v/%v",
				sa[i].Handle, sa[i].Pos, sa[i].Vel, sb[i].Pos, sb[i].Vel)
		}
	}

	// A reloaded mid-flight scene continues identically.
	if err := a.Step(25); err != nil {
		t.Fatal(err)
	}
	if err := b.Step(25); err != nil {
		t.Fatal(err)
	}
	sa, sb = a.Snapshot(), b.Snapshot()
	for i := range sa {
		if sa[i].Pos != sb[i].Pos {
			t.Errorf("object %d diverged after reload: %v vs %v", sa[i].Handle, sa[i].Pos, sb[i].Pos)
		}
	}
}

func TestObjectAtPicksTopMost(t *testing.T) {
	s, _ := New(DefaultConfig())
	mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 1, Mass: 1})
	h2 := mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0.5, 5), Radius: 1, Mass: 1})

	h, ok := s.ObjectAt(geom.V(0.3, 5))
	if !ok || h != h2 {
		t.Errorf("ObjectAt = %d,%v, want %d,true", h, ok, h2)
	}
	if _, ok := s.ObjectAt(geom.V(50, 50)); ok {
		t.Error("ObjectAt reported a hit in empty space")
	}
}

func TestPinnedBodyHolds(t *testing.T) {
	s, _ := New(DefaultConfig())
	mustCreate(t, s, scene.ObjectSpec{Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1, Pinned: true})

	if err := s.Step(200); err != nil {
		t.Fatal(err)
	}
	st := s.Snapshot()[0]
	if st.Pos != geom.V(0, 5) {
		t.Errorf("pinned ball moved to %v", st.Pos)
	}
	if st.Vel != geom.V(0, 0) {
		t.Errorf("pinned ball gained velocity %v", st.Vel)
	}
}
