package engine

import (
	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

// ObjectState is one object's renderable state. For constraints A and
// B carry the resolved endpoint positions; a pin joint's Pos is its
// pivot.
type ObjectState struct {
	Handle scene.Handle
	Kind   scene.Kind
	Pos    geom.Vec
	Vel    geom.Vec
	Angle  float64

	// shape parameters for drawing
	HalfW, HalfH float64 // box
	Radius       float64 // ball
	Length       float64 // ramp
	A, B         geom.Vec
	Taut         bool // rope at its length cap
}

// Snapshot returns a read-only copy of every object's transform in
// scene order. The rendering layer owns nothing; it redraws from this
// each frame.
func (s *Simulator) Snapshot() []ObjectState {
	out := make([]ObjectState, 0, s.scene.Len())
	s.scene.Each(func(h scene.Handle, o scene.Object) {
		st := ObjectState{Handle: h, Kind: o.Kind()}
		switch t := o.(type) {
		case *scene.Box:
			st.Pos, st.Vel, st.Angle = t.Pos, t.Vel, t.Angle
			st.HalfW, st.HalfH = t.HalfW, t.HalfH
		case *scene.Ball:
			st.Pos, st.Vel = t.Pos, t.Vel
			st.Radius = t.Radius
		case *scene.Ramp:
			st.Pos, st.Angle, st.Length = t.Anchor, t.Angle, t.Length
			st.A, st.B = t.Anchor, t.SurfaceEnd()
		case *scene.Spring:
			st.A, _ = s.scene.EndpointPos(t.A)
			st.B, _ = s.scene.EndpointPos(t.B)
			st.Pos = st.A.Lerp(st.B, 0.5)
		case *scene.Rope:
			st.A, _ = s.scene.EndpointPos(t.A)
			st.B, _ = s.scene.EndpointPos(t.B)
			st.Pos = st.A.Lerp(st.B, 0.5)
			st.Taut = st.A.Distance(st.B) >= t.MaxLength-1e-9
		case *scene.PinJoint:
			st.A, _ = s.scene.EndpointPos(t.A)
			st.B, _ = s.scene.EndpointPos(t.B)
			st.Pos = t.Pivot
		}
		out = append(out, st)
	})
	return out
}

// Diagnostics summarizes the simulation for display.
type Diagnostics struct {
	SimTime   float64
	StepCount int
	Kinetic   float64 // total kinetic energy
	Elastic   float64 // total spring potential energy
	Objects   int
	State     RunState
}

func (s *Simulator) Diagnostics() Diagnostics {
	d := Diagnostics{
		SimTime:   s.clock.SimTime,
		StepCount: s.clock.Steps,
		Objects:   s.scene.Len(),
		State:     s.state,
	}
	s.scene.Each(func(_ scene.Handle, o scene.Object) {
		d.Kinetic += o.KineticEnergy()
		if sp, ok := o.(*scene.Spring); ok {
			pa, okA := s.scene.EndpointPos(sp.A)
			pb, okB := s.scene.EndpointPos(sp.B)
			if okA && okB {
				stretch := pa.Distance(pb) - sp.RestLength
				d.Elastic += 0.5 * sp.Stiffness * stretch * stretch
			}
		}
	})
	return d
}

// ObjectAt reports the top-most object containing the world point p.
func (s *Simulator) ObjectAt(p geom.Vec) (scene.Handle, bool) {
	h, _, ok := s.scene.ObjectAt(p)
	return h, ok
}

// Describe serializes the current scene, including each object's
// live state, under stable handles.
func (s *Simulator) Describe() scene.Description {
	return scene.Encode(s.scene)
}
