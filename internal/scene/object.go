package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/physlab/internal/geom"
)

// ErrInvalidParameter is returned when an object is constructed or
// mutated with out-of-range parameters. The scene is left unchanged.
var ErrInvalidParameter = errors.New("physlab: invalid parameter")

// Kind identifies one of the closed set of object variants.
type Kind int

const (
	KindBox Kind = iota
	KindBall
	KindRamp
	KindSpring
	KindRope
	KindPinJoint
)

var kindNames = [...]string{"box", "ball", "ramp", "spring", "rope", "pin"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a serialized kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidParameter, s)
}

// Handle is a stable identifier for an object within a scene. Handles
// survive serialization so reloaded scenes resume identically. Zero is
// never a valid handle.
type Handle int

// Endpoint is one end of a constraint: either another object
// (by handle) or a fixed world point.
type Endpoint struct {
	Object Handle   `yaml:"object,omitempty" json:"object,omitempty"`
	Point  geom.Vec `yaml:"point,omitempty" json:"point,omitempty"`
}

func (e Endpoint) Fixed() bool { return e.Object == 0 }

// Object is the capability set shared by every scene variant.
// The variant set is closed: Box, Ball, Ramp, Spring, Rope, PinJoint.
type Object interface {
	Kind() Kind
	Bounds() geom.AABB
	Translate(d geom.Vec)
	KineticEnergy() float64
	ContainsPoint(p geom.Vec) bool
	Validate() error
}

// Body holds the kinematic state shared by dynamic variants (Box, Ball).
// A pinned body keeps its position and ignores forces and impacts, like
// a nail through the object.
type Body struct {
	Pos      geom.Vec
	Vel      geom.Vec
	Mass     float64
	Friction float64
	Pinned   bool
}

func (b *Body) ApplyImpulse(dv geom.Vec) { b.Vel = b.Vel.Add(dv) }

func (b *Body) Translate(d geom.Vec) { b.Pos = b.Pos.Add(d) }

func (b *Body) KineticEnergy() float64 { return 0.5 * b.Mass * b.Vel.LengthSq() }

func (b *Body) validate() error {
	if b.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidParameter, b.Mass)
	}
	if b.Friction < 0 || b.Friction > 1 {
		return fmt.Errorf("%w: friction must be in [0,1], got %g", ErrInvalidParameter, b.Friction)
	}
	if !b.Pos.IsFinite() || !b.Vel.IsFinite() {
		return fmt.Errorf("%w: non-finite position or velocity", ErrInvalidParameter)
	}
	return nil
}

// Box is a rectangle described by its center, half extents and rotation.
type Box struct {
	Body
	HalfW float64
	HalfH float64
	Angle float64
}

func NewBox(pos geom.Vec, width, height, mass float64) (*Box, error) {
	b := &Box{
		Body:  Body{Pos: pos, Mass: mass, Friction: DefaultFriction},
		HalfW: width / 2,
		HalfH: height / 2,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Box) Kind() Kind { return KindBox }

func (b *Box) Validate() error {
	if err := b.Body.validate(); err != nil {
		return err
	}
	if b.HalfW <= 0 || b.HalfH <= 0 {
		return fmt.Errorf("%w: box extents must be positive", ErrInvalidParameter)
	}
	return nil
}

// Corners returns the four rotated corners in world coordinates.
func (b *Box) Corners() [4]geom.Vec {
	ext := [4]geom.Vec{
		{X: -b.HalfW, Y: -b.HalfH},
		{X: b.HalfW, Y: -b.HalfH},
		{X: b.HalfW, Y: b.HalfH},
		{X: -b.HalfW, Y: b.HalfH},
	}
	var out [4]geom.Vec
	for i, c := range ext {
		out[i] = b.Pos.Add(c.Rotate(b.Angle))
	}
	return out
}

func (b *Box) Bounds() geom.AABB {
	corners := b.Corners()
	bb := geom.AABB{Min: corners[0], Max: corners[0]}
	for _, c := range corners[1:] {
		bb = bb.Expand(c)
	}
	return bb
}

func (b *Box) ContainsPoint(p geom.Vec) bool {
	local := p.Sub(b.Pos).Rotate(-b.Angle)
	return math.Abs(local.X) <= b.HalfW && math.Abs(local.Y) <= b.HalfH
}

// Ball is a circle described by its center and radius.
type Ball struct {
	Body
	Radius float64
}

func NewBall(pos geom.Vec, radius, mass float64) (*Ball, error) {
	b := &Ball{
		Body:   Body{Pos: pos, Mass: mass, Friction: DefaultFriction},
		Radius: radius,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Ball) Kind() Kind { return KindBall }

func (b *Ball) Validate() error {
	if err := b.Body.validate(); err != nil {
		return err
	}
	if b.Radius <= 0 {
		return fmt.Errorf("%w: ball radius must be positive, got %g", ErrInvalidParameter, b.Radius)
	}
	return nil
}

func (b *Ball) Bounds() geom.AABB {
	return geom.NewAABB(b.Pos.X-b.Radius, b.Pos.Y-b.Radius, b.Pos.X+b.Radius, b.Pos.Y+b.Radius)
}

func (b *Ball) ContainsPoint(p geom.Vec) bool {
	return p.Sub(b.Pos).LengthSq() <= b.Radius*b.Radius
}

// Ramp is an immovable inclined support surface. The surface runs from
// Anchor for Length meters at Angle radians above the horizontal; the
// solid wedge sits below the surface. Angle is limited to (-pi/2, pi/2)
// so the surface stays a function of x.
type Ramp struct {
	Anchor   geom.Vec
	Length   float64
	Angle    float64
	Friction float64
}

func NewRamp(anchor geom.Vec, length, angle float64) (*Ramp, error) {
	r := &Ramp{Anchor: anchor, Length: length, Angle: angle, Friction: DefaultFriction}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Ramp) Kind() Kind { return KindRamp }

func (r *Ramp) Validate() error {
	if r.Length <= 0 {
		return fmt.Errorf("%w: ramp length must be positive, got %g", ErrInvalidParameter, r.Length)
	}
	if math.Abs(r.Angle) >= math.Pi/2 {
		return fmt.Errorf("%w: ramp angle must be within (-pi/2, pi/2), got %g", ErrInvalidParameter, r.Angle)
	}
	if r.Friction < 0 || r.Friction > 1 {
		return fmt.Errorf("%w: friction must be in [0,1], got %g", ErrInvalidParameter, r.Friction)
	}
	return nil
}

// SurfaceEnd returns the far end of the surface segment.
func (r *Ramp) SurfaceEnd() geom.Vec {
	return r.Anchor.Add(geom.V(math.Cos(r.Angle), math.Sin(r.Angle)).Mult(r.Length))
}

// SurfaceNormal returns the unit normal of the surface, pointing away
// from the solid side.
func (r *Ramp) SurfaceNormal() geom.Vec {
	return geom.V(-math.Sin(r.Angle), math.Cos(r.Angle))
}

// HeightAt reports the surface height at horizontal position x. The
// second result is false when x falls outside the ramp's span.
func (r *Ramp) HeightAt(x float64) (float64, bool) {
	end := r.SurfaceEnd()
	lo, hi := r.Anchor.X, end.X
	if lo > hi {
		lo, hi = hi, lo
	}
	if x < lo || x > hi {
		return 0, false
	}
	return r.Anchor.Y + (x-r.Anchor.X)*math.Tan(r.Angle), true
}

func (r *Ramp) Bounds() geom.AABB {
	bb := geom.AABB{Min: r.Anchor, Max: r.Anchor}
	return bb.Expand(r.SurfaceEnd())
}

func (r *Ramp) Translate(d geom.Vec) { r.Anchor = r.Anchor.Add(d) }

func (r *Ramp) KineticEnergy() float64 { return 0 }

func (r *Ramp) ContainsPoint(p geom.Vec) bool {
	h, ok := r.HeightAt(p.X)
	if !ok {
		return false
	}
	base := math.Min(r.Anchor.Y, r.SurfaceEnd().Y)
	return p.Y >= base && p.Y <= h
}

// Spring connects two endpoints with a damped Hooke force.
type Spring struct {
	A, B       Endpoint
	RestLength float64
	Stiffness  float64
	Damping    float64
}

func NewSpring(a, b Endpoint, restLength, stiffness, damping float64) (*Spring, error) {
	s := &Spring{A: a, B: b, RestLength: restLength, Stiffness: stiffness, Damping: damping}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Spring) Kind() Kind { return KindSpring }

func (s *Spring) Validate() error {
	if s.Stiffness < 0 {
		return fmt.Errorf("%w: spring stiffness must be >= 0, got %g", ErrInvalidParameter, s.Stiffness)
	}
	if s.Damping < 0 {
		return fmt.Errorf("%w: spring damping must be >= 0, got %g", ErrInvalidParameter, s.Damping)
	}
	if s.RestLength < 0 {
		return fmt.Errorf("%w: spring rest length must be >= 0, got %g", ErrInvalidParameter, s.RestLength)
	}
	if s.A.Fixed() && s.B.Fixed() {
		return fmt.Errorf("%w: spring needs at least one dynamic endpoint", ErrInvalidParameter)
	}
	return nil
}

func (s *Spring) Bounds() geom.AABB { return endpointBounds(s.A, s.B) }

func (s *Spring) Translate(d geom.Vec) { translateEndpoints(&s.A, &s.B, d) }

func (s *Spring) KineticEnergy() float64 { return 0 }

func (s *Spring) ContainsPoint(geom.Vec) bool { return false }

// Rope caps the distance between two endpoints. It exerts nothing while
// slack and becomes a hard length constraint once taut.
type Rope struct {
	A, B      Endpoint
	MaxLength float64
}

func NewRope(a, b Endpoint, maxLength float64) (*Rope, error) {
	r := &Rope{A: a, B: b, MaxLength: maxLength}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rope) Kind() Kind { return KindRope }

func (r *Rope) Validate() error {
	if r.MaxLength <= 0 {
		return fmt.Errorf("%w: rope max length must be positive, got %g", ErrInvalidParameter, r.MaxLength)
	}
	if r.A.Fixed() && r.B.Fixed() {
		return fmt.Errorf("%w: rope needs at least one dynamic endpoint", ErrInvalidParameter)
	}
	return nil
}

func (r *Rope) Bounds() geom.AABB { return endpointBounds(r.A, r.B) }

func (r *Rope) Translate(d geom.Vec) { translateEndpoints(&r.A, &r.B, d) }

func (r *Rope) KineticEnergy() float64 { return 0 }

func (r *Rope) ContainsPoint(geom.Vec) bool { return false }

// PinJoint holds two bodies at fixed distances from a shared pivot
// point, so each swings around it without drifting in or out. Zero
// radii are captured from the bodies' positions on the first tick.
type PinJoint struct {
	A, B    Endpoint
	Pivot   geom.Vec
	RadiusA float64
	RadiusB float64
}

func NewPinJoint(a, b Endpoint, pivot geom.Vec, radiusA, radiusB float64) (*PinJoint, error) {
	j := &PinJoint{A: a, B: b, Pivot: pivot, RadiusA: radiusA, RadiusB: radiusB}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *PinJoint) Kind() Kind { return KindPinJoint }

func (j *PinJoint) Validate() error {
	if j.A.Fixed() || j.B.Fixed() {
		return fmt.Errorf("%w: pin joint endpoints must both be objects", ErrInvalidParameter)
	}
	if j.RadiusA < 0 || j.RadiusB < 0 {
		return fmt.Errorf("%w: pin joint radii must be >= 0, got %g and %g", ErrInvalidParameter, j.RadiusA, j.RadiusB)
	}
	return nil
}

func (j *PinJoint) Bounds() geom.AABB { return geom.AABB{Min: j.Pivot, Max: j.Pivot} }

func (j *PinJoint) Translate(d geom.Vec) { j.Pivot = j.Pivot.Add(d) }

func (j *PinJoint) KineticEnergy() float64 { return 0 }

func (j *PinJoint) ContainsPoint(geom.Vec) bool { return false }

func endpointBounds(a, b Endpoint) geom.AABB {
	// Only fixed anchors have an intrinsic position; object endpoints
	// are resolved by the engine each frame.
	var pts []geom.Vec
	if a.Fixed() {
		pts = append(pts, a.Point)
	}
	if b.Fixed() {
		pts = append(pts, b.Point)
	}
	if len(pts) == 0 {
		return geom.AABB{}
	}
	bb := geom.AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		bb = bb.Expand(p)
	}
	return bb
}

func translateEndpoints(a, b *Endpoint, d geom.Vec) {
	if a.Fixed() {
		a.Point = a.Point.Add(d)
	}
	if b.Fixed() {
		b.Point = b.Point.Add(d)
	}
}
