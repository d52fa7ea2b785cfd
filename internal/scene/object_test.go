package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/physlab/internal/geom"
)

const tol = 1e-9

func TestNewBoxValidation(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		mass          float64
		wantErr       bool
	}{
		{"valid", 2, 1, 1, false},
		{"zero mass", 2, 1, 0, true},
		{"negative mass", 2, 1, -1, true},
		{"zero width", 0, 1, 1, true},
		{"negative height", 2, -1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBox(geom.V(0, 0), tt.width, tt.height, tt.mass)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBox err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("error should wrap ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestNewBallValidation(t *testing.T) {
	if _, err := NewBall(geom.V(0, 0), 0.5, 1); err != nil {
		t.Fatalf("valid ball rejected: %v", err)
	}
	if _, err := NewBall(geom.V(0, 0), 0, 1); err == nil {
		t.Error("zero radius should be rejected")
	}
	if _, err := NewBall(geom.V(math.NaN(), 0), 0.5, 1); err == nil {
		t.Error("non-finite position should be rejected")
	}
}

func TestBodyFrictionRange(t *testing.T) {
	b, err := NewBall(geom.V(0, 0), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	b.Friction = 1.5
	if err := b.Validate(); err == nil {
		t.Error("friction above 1 should be rejected")
	}
	b.Friction = -0.1
	if err := b.Validate(); err == nil {
		t.Error("negative friction should be rejected")
	}
}

func TestBoxCorners(t *testing.T) {
	b, err := NewBox(geom.V(1, 1), 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	b.Angle = math.Pi / 4

	corners := b.Corners()
	d := math.Sqrt2
	want := [4]geom.Vec{
		{X: 1, Y: 1 - d},
		{X: 1 + d, Y: 1},
		{X: 1, Y: 1 + d},
		{X: 1 - d, Y: 1},
	}
	for i := range corners {
		if math.Abs(corners[i].X-want[i].X) > tol || math.Abs(corners[i].Y-want[i].Y) > tol {
			t.Errorf("corner %d = %v, want %v", i, corners[i], want[i])
		}
	}
}

func TestBoxContainsPointRotated(t *testing.T) {
	b, _ := NewBox(geom.V(0, 0), 4, 2, 1)
	b.Angle = math.Pi / 2

	// After 90 degree rotation the long side is vertical.
	if !b.ContainsPoint(geom.V(0, 1.9)) {
		t.Error("point inside rotated box reported outside")
	}
	if b.ContainsPoint(geom.V(1.9, 0)) {
		t.Error("point outside rotated box reported inside")
	}
}

func TestKineticEnergy(t *testing.T) {
	b, _ := NewBall(geom.V(0, 0), 1, 2)
	b.Vel = geom.V(3, 4)
	if got := b.KineticEnergy(); math.Abs(got-25) > tol {
		t.Errorf("kinetic energy = %g, want 25", got)
	}

	r, _ := NewRamp(geom.V(0, 0), 5, 0.3)
	if r.KineticEnergy() != 0 {
		t.Error("ramp kinetic energy should be zero")
	}
}

func TestRampValidation(t *testing.T) {
	if _, err := NewRamp(geom.V(0, 0), 5, math.Pi/2); err == nil {
		t.Error("vertical ramp should be rejected")
	}
	if _, err := NewRamp(geom.V(0, 0), 0, 0.5); err == nil {
		t.Error("zero length ramp should be rejected")
	}
	if _, err := NewRamp(geom.V(0, 0), 5, -0.5); err != nil {
		t.Errorf("downhill ramp rejected: %v", err)
	}
}

func TestRampSurface(t *testing.T) {
	angle := 30 * math.Pi / 180
	r, err := NewRamp(geom.V(0, 0), 4, angle)
	if err != nil {
		t.Fatal(err)
	}

	end := r.SurfaceEnd()
	if math.Abs(end.X-4*math.Cos(angle)) > tol || math.Abs(end.Y-2) > tol {
		t.Errorf("surface end = %v", end)
	}

	n := r.SurfaceNormal()
	if math.Abs(n.Length()-1) > tol {
		t.Errorf("normal not unit length: %v", n)
	}
	if n.Y <= 0 {
		t.Errorf("normal should point up, got %v", n)
	}

	h, ok := r.HeightAt(math.Cos(angle) * 2)
	if !ok {
		t.Fatal("mid-span height not reported")
	}
	if math.Abs(h-1) > tol {
		t.Errorf("height at mid-span = %g, want 1", h)
	}

	if _, ok := r.HeightAt(10); ok {
		t.Error("height beyond the span should report false")
	}
}

func TestRampContainsPoint(t *testing.T) {
	r, _ := NewRamp(geom.V(0, 0), 4, 30*math.Pi/180)

	if !r.ContainsPoint(geom.V(1.0, 0.2)) {
		t.Error("point inside the wedge reported outside")
	}
	if r.ContainsPoint(geom.V(1.0, 2.0)) {
		t.Error("point above the surface reported inside")
	}
	if r.ContainsPoint(geom.V(-1.0, 0.0)) {
		t.Error("point before the anchor reported inside")
	}
}

func TestSpringValidation(t *testing.T) {
	fixed := Endpoint{Point: geom.V(0, 5)}
	dyn := Endpoint{Object: 1}

	if _, err := NewSpring(fixed, dyn, 1, 10, 0.1); err != nil {
		t.Fatalf("valid spring rejected: %v", err)
	}
	if _, err := NewSpring(fixed, fixed, 1, 10, 0.1); err == nil {
		t.Error("spring with two fixed endpoints should be rejected")
	}
	if _, err := NewSpring(fixed, dyn, 1, -1, 0); err == nil {
		t.Error("negative stiffness should be rejected")
	}
	if _, err := NewSpring(fixed, dyn, -1, 10, 0); err == nil {
		t.Error("negative rest length should be rejected")
	}
}

func TestRopeValidation(t *testing.T) {
	fixed := Endpoint{Point: geom.V(0, 5)}
	dyn := Endpoint{Object: 1}

	if _, err := NewRope(fixed, dyn, 3); err != nil {
		t.Fatalf("valid rope rejected: %v", err)
	}
	if _, err := NewRope(fixed, dyn, 0); err == nil {
		t.Error("zero max length should be rejected")
	}
	if _, err := NewRope(fixed, fixed, 3); err == nil {
		t.Error("rope with two fixed endpoints should be rejected")
	}
}

func TestPinJointValidation(t *testing.T) {
	a := Endpoint{Object: 1}
	b := Endpoint{Object: 2}
	pivot := geom.V(0, 5)

	if _, err := NewPinJoint(a, b, pivot, 1, 2); err != nil {
		t.Fatalf("valid pin joint rejected: %v", err)
	}
	// Zero radii are legal; they are captured from the bodies later.
	if _, err := NewPinJoint(a, b, pivot, 0, 0); err != nil {
		t.Errorf("zero radii rejected: %v", err)
	}
	if _, err := NewPinJoint(Endpoint{Point: pivot}, b, pivot, 1, 1); err == nil {
		t.Error("fixed endpoint should be rejected")
	}
	if _, err := NewPinJoint(a, b, pivot, -1, 1); err == nil {
		t.Error("negative radius should be rejected")
	}
}

func TestSceneAddRemove(t *testing.T) {
	s := New()
	b1, _ := NewBall(geom.V(0, 0), 1, 1)
	b2, _ := NewBall(geom.V(5, 0), 1, 1)

	h1 := s.Add(b1)
	h2 := s.Add(b2)
	if h1 == h2 {
		t.Fatal("handles must be unique")
	}
	if h1 == 0 || h2 == 0 {
		t.Fatal("zero is not a valid handle")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}

	if !s.Remove(h1) {
		t.Error("remove of existing handle failed")
	}
	if s.Remove(h1) {
		t.Error("double remove should report false")
	}
	if _, ok := s.Get(h1); ok {
		t.Error("removed object still retrievable")
	}

	// Handles are never reused.
	h3 := s.Add(b1)
	if h3 == h1 {
		t.Error("removed handle was reused")
	}
}

func TestSceneObjectAtZOrder(t *testing.T) {
	s := New()
	b1, _ := NewBall(geom.V(0, 0), 1, 1)
	b2, _ := NewBall(geom.V(0.5, 0), 1, 1)
	s.Add(b1)
	h2 := s.Add(b2)

	// Both contain the origin region; the later object wins.
	h, _, ok := s.ObjectAt(geom.V(0.3, 0))
	if !ok {
		t.Fatal("no object reported at overlapping point")
	}
	if h != h2 {
		t.Errorf("top-most object = %d, want %d", h, h2)
	}

	if _, _, ok := s.ObjectAt(geom.V(100, 100)); ok {
		t.Error("object reported in empty space")
	}
}

func TestEndpointResolution(t *testing.T) {
	s := New()
	b, _ := NewBall(geom.V(2, 3), 1, 1)
	h := s.Add(b)

	p, ok := s.EndpointPos(Endpoint{Object: h})
	if !ok || p != geom.V(2, 3) {
		t.Errorf("endpoint pos = %v ok=%v", p, ok)
	}

	p, ok = s.EndpointPos(Endpoint{Point: geom.V(7, 8)})
	if !ok || p != geom.V(7, 8) {
		t.Errorf("fixed endpoint pos = %v ok=%v", p, ok)
	}

	if _, ok := s.EndpointPos(Endpoint{Object: 99}); ok {
		t.Error("dangling endpoint should not resolve")
	}

	body, ok := s.EndpointBody(Endpoint{Object: h})
	if !ok || body == nil {
		t.Error("dynamic endpoint should resolve to a body")
	}
	body, ok = s.EndpointBody(Endpoint{Point: geom.V(0, 0)})
	if !ok || body != nil {
		t.Error("fixed endpoint should resolve to nil body")
	}
}
