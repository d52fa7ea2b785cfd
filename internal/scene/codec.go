package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/geom"
)

// ObjectSpec is the serialized form of a scene object: its kind, its
// parameters and its current kinematic state. It doubles as the
// construction record accepted by the simulator's factory interface.
type ObjectSpec struct {
	Handle Handle `yaml:"handle,omitempty"`
	Kind   string `yaml:"kind"`

	Pos      geom.Vec `yaml:"pos,omitempty"`
	Vel      geom.Vec `yaml:"vel,omitempty"`
	Mass     float64  `yaml:"mass,omitempty"`
	Friction float64  `yaml:"friction,omitempty"`
	Pinned   bool     `yaml:"pinned,omitempty"`

	Width  float64 `yaml:"width,omitempty"`  // box
	Height float64 `yaml:"height,omitempty"` // box
	Angle  float64 `yaml:"angle,omitempty"`  // box rotation, ramp incline
	Radius float64 `yaml:"radius,omitempty"` // ball
	Length float64 `yaml:"length,omitempty"` // ramp surface length

	A *Endpoint `yaml:"a,omitempty"` // spring, rope
	B *Endpoint `yaml:"b,omitempty"`

	RestLength float64 `yaml:"rest_length,omitempty"` // spring
	Stiffness  float64 `yaml:"stiffness,omitempty"`
	Damping    float64 `yaml:"damping,omitempty"`
	MaxLength  float64 `yaml:"max_length,omitempty"` // rope

	Pivot   geom.Vec `yaml:"pivot,omitempty"` // pin joint
	RadiusA float64  `yaml:"radius_a,omitempty"`
	RadiusB float64  `yaml:"radius_b,omitempty"`
}

// Description is a complete serialized scene.
type Description struct {
	Objects []ObjectSpec `yaml:"objects"`
}

// Build constructs an object from its spec, validating parameters.
// Friction is taken as written; zero means frictionless.
func Build(spec ObjectSpec) (Object, error) {
	kind, err := ParseKind(spec.Kind)
	if err != nil {
		return nil, err
	}

	friction := spec.Friction

	switch kind {
	case KindBox:
		b := &Box{
			Body:  Body{Pos: spec.Pos, Vel: spec.Vel, Mass: spec.Mass, Friction: friction, Pinned: spec.Pinned},
			HalfW: spec.Width / 2,
			HalfH: spec.Height / 2,
			Angle: spec.Angle,
		}
		return b, b.Validate()
	case KindBall:
		b := &Ball{
			Body:   Body{Pos: spec.Pos, Vel: spec.Vel, Mass: spec.Mass, Friction: friction, Pinned: spec.Pinned},
			Radius: spec.Radius,
		}
		return b, b.Validate()
	case KindRamp:
		r := &Ramp{Anchor: spec.Pos, Length: spec.Length, Angle: spec.Angle, Friction: friction}
		return r, r.Validate()
	case KindSpring:
		if spec.A == nil || spec.B == nil {
			return nil, fmt.Errorf("%w: spring requires two endpoints", ErrInvalidParameter)
		}
		s := &Spring{
			A: *spec.A, B: *spec.B,
			RestLength: spec.RestLength,
			Stiffness:  spec.Stiffness,
			Damping:    spec.Damping,
		}
		return s, s.Validate()
	case KindRope:
		if spec.A == nil || spec.B == nil {
			return nil, fmt.Errorf("%w: rope requires two endpoints", ErrInvalidParameter)
		}
		r := &Rope{A: *spec.A, B: *spec.B, MaxLength: spec.MaxLength}
		return r, r.Validate()
	case KindPinJoint:
		if spec.A == nil || spec.B == nil {
			return nil, fmt.Errorf("%w: pin joint requires two endpoints", ErrInvalidParameter)
		}
		j := &PinJoint{
			A: *spec.A, B: *spec.B,
			Pivot:   spec.Pivot,
			RadiusA: spec.RadiusA,
			RadiusB: spec.RadiusB,
		}
		return j, j.Validate()
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidParameter, spec.Kind)
}

// SpecOf captures an object's serialized form under its handle.
func SpecOf(h Handle, o Object) ObjectSpec {
	spec := ObjectSpec{Handle: h, Kind: o.Kind().String()}
	switch t := o.(type) {
	case *Box:
		spec.Pos, spec.Vel = t.Pos, t.Vel
		spec.Mass, spec.Friction, spec.Pinned = t.Mass, t.Friction, t.Pinned
		spec.Width, spec.Height = t.HalfW*2, t.HalfH*2
		spec.Angle = t.Angle
	case *Ball:
		spec.Pos, spec.Vel = t.Pos, t.Vel
		spec.Mass, spec.Friction, spec.Pinned = t.Mass, t.Friction, t.Pinned
		spec.Radius = t.Radius
	case *Ramp:
		spec.Pos = t.Anchor
		spec.Length, spec.Angle, spec.Friction = t.Length, t.Angle, t.Friction
	case *Spring:
		a, b := t.A, t.B
		spec.A, spec.B = &a, &b
		spec.RestLength, spec.Stiffness, spec.Damping = t.RestLength, t.Stiffness, t.Damping
	case *Rope:
		a, b := t.A, t.B
		spec.A, spec.B = &a, &b
		spec.MaxLength = t.MaxLength
	case *PinJoint:
		a, b := t.A, t.B
		spec.A, spec.B = &a, &b
		spec.Pivot = t.Pivot
		spec.RadiusA, spec.RadiusB = t.RadiusA, t.RadiusB
	}
	return spec
}

// Encode serializes a scene, preserving handles and insertion order.
func Encode(s *Scene) Description {
	desc := Description{Objects: make([]ObjectSpec, 0, s.Len())}
	s.Each(func(h Handle, o Object) {
		desc.Objects = append(desc.Objects, SpecOf(h, o))
	})
	return desc
}

// Decode rebuilds a scene from a description. Every object keeps its
// serialized handle; endpoint references are checked against them.
func Decode(desc Description) (*Scene, error) {
	s := New()
	handles := make(map[Handle]bool, len(desc.Objects))
	bodies := make(map[Handle]bool, len(desc.Objects))
	for _, spec := range desc.Objects {
		if spec.Handle <= 0 {
			return nil, fmt.Errorf("%w: object of kind %q missing handle", ErrInvalidParameter, spec.Kind)
		}
		handles[spec.Handle] = true
		if k, err := ParseKind(spec.Kind); err == nil && (k == KindBox || k == KindBall) {
			bodies[spec.Handle] = true
		}
	}
	for _, spec := range desc.Objects {
		o, err := Build(spec)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", spec.Handle, err)
		}
		if err := checkEndpoints(o, handles, bodies); err != nil {
			return nil, fmt.Errorf("object %d: %w", spec.Handle, err)
		}
		if err := s.Restore(spec.Handle, o); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// checkEndpoints mirrors the simulator's live-creation rule: an object
// endpoint must name a body, not a ramp or another constraint.
func checkEndpoints(o Object, handles, bodies map[Handle]bool) error {
	check := func(e Endpoint) error {
		if e.Fixed() {
			return nil
		}
		if !handles[e.Object] {
			return fmt.Errorf("%w: endpoint references unknown handle %d", ErrInvalidParameter, e.Object)
		}
		if !bodies[e.Object] {
			return fmt.Errorf("%w: endpoint handle %d is not a body", ErrInvalidParameter, e.Object)
		}
		return nil
	}
	var a, b Endpoint
	switch t := o.(type) {
	case *Spring:
		a, b = t.A, t.B
	case *Rope:
		a, b = t.A, t.B
	case *PinJoint:
		a, b = t.A, t.B
	default:
		return nil
	}
	if err := check(a); err != nil {
		return err
	}
	return check(b)
}

// Marshal renders a description as yaml.
func Marshal(desc Description) ([]byte, error) {
	return yaml.Marshal(desc)
}

// Unmarshal parses a yaml scene description.
func Unmarshal(data []byte) (Description, error) {
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Description{}, err
	}
	return desc, nil
}

// LoadFile reads and decodes a scene file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	desc, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return Decode(desc)
}

// SaveFile encodes and writes a scene file.
func SaveFile(path string, s *Scene) error {
	data, err := Marshal(Encode(s))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
