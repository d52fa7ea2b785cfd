package engine

import (
	"fmt"

	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

// pruneDangling removes constraints whose endpoints refer to deleted
// objects. The host is notified; nothing fails.
func (s *Simulator) pruneDangling() {
	var drop []scene.Handle
	s.scene.Each(func(h scene.Handle, o scene.Object) {
		var a, b scene.Endpoint
		switch t := o.(type) {
		case *scene.Spring:
			a, b = t.A, t.B
		case *scene.Rope:
			a, b = t.A, t.B
		case *scene.PinJoint:
			a, b = t.A, t.B
		default:
			return
		}
		if _, ok := s.scene.EndpointBody(a); !ok {
			drop = append(drop, h)
			return
		}
		if _, ok := s.scene.EndpointBody(b); !ok {
			drop = append(drop, h)
		}
	})
	for _, h := range drop {
		o, _ := s.scene.Get(h)
		s.scene.Remove(h)
		delete(s.baseline, h)
		s.emit(Event{
			Code:    EventConstraintDropped,
			Handle:  h,
			Step:    s.clock.Steps,
			Time:    s.clock.SimTime,
			Message: fmt.Sprintf("%s %d lost an endpoint and was removed", o.Kind(), h),
		})
	}
}

// resolveRopes enforces the hard length cap on taut ropes: endpoints
// are clamped back symmetrically (or fully toward a fixed anchor) and
// the outward radial velocity component is removed. A slack rope does
// nothing.
func (s *Simulator) resolveRopes() {
	s.scene.Each(func(_ scene.Handle, o scene.Object) {
		r, ok := o.(*scene.Rope)
		if !ok {
			return
		}

		pa, okA := s.scene.EndpointPos(r.A)
		pb, okB := s.scene.EndpointPos(r.B)
		if !okA || !okB {
			return // pruned next tick
		}
		bodyA, _ := s.scene.EndpointBody(r.A)
		bodyB, _ := s.scene.EndpointBody(r.B)
		if bodyA != nil && bodyA.Pinned {
			bodyA = nil
		}
		if bodyB != nil && bodyB.Pinned {
			bodyB = nil
		}
		if bodyA == nil && bodyB == nil {
			return
		}

		delta := pb.Sub(pa)
		dist := delta.Length()
		if dist <= r.MaxLength || dist == 0 {
			return
		}
		n := delta.Mult(1 / dist)
		excess := dist - r.MaxLength

		switch {
		case bodyA != nil && bodyB != nil:
			bodyA.Pos = bodyA.Pos.Add(n.Mult(excess / 2))
			bodyB.Pos = bodyB.Pos.Sub(n.Mult(excess / 2))
			// Remove the separating component of the relative velocity,
			// split between the two ends.
			if vrel := bodyB.Vel.Sub(bodyA.Vel).Dot(n); vrel > 0 {
				bodyA.Vel = bodyA.Vel.Add(n.Mult(vrel / 2))
				bodyB.Vel = bodyB.Vel.Sub(n.Mult(vrel / 2))
			}
		case bodyA != nil:
			bodyA.Pos = bodyA.Pos.Add(n.Mult(excess))
			if vn := bodyA.Vel.Dot(n); vn < 0 {
				bodyA.Vel = bodyA.Vel.Sub(n.Mult(vn))
			}
		default:
			bodyB.Pos = bodyB.Pos.Sub(n.Mult(excess))
			if vn := bodyB.Vel.Dot(n); vn > 0 {
				bodyB.Vel = bodyB.Vel.Sub(n.Mult(vn))
			}
		}
	})
}

// resolvePinJoints projects each jointed body back onto its circle
// around the pivot, so the bodies swing without drifting in or out.
func (s *Simulator) resolvePinJoints() {
	s.scene.Each(func(_ scene.Handle, o scene.Object) {
		j, ok := o.(*scene.PinJoint)
		if !ok {
			return
		}
		bodyA, okA := s.scene.EndpointBody(j.A)
		bodyB, okB := s.scene.EndpointBody(j.B)
		if !okA || !okB {
			return // pruned next tick
		}
		holdAtRadius(bodyA, j.Pivot, &j.RadiusA)
		holdAtRadius(bodyB, j.Pivot, &j.RadiusB)
	})
}

// holdAtRadius moves a body back to its captured distance from the
// pivot and removes the radial velocity component, leaving only the
// swing. A zero radius is captured from the current separation.
func holdAtRadius(b *scene.Body, pivot geom.Vec, radius *float64) {
	if b == nil || b.Pinned {
		return
	}
	delta := b.Pos.Sub(pivot)
	dist := delta.Length()
	if *radius == 0 {
		*radius = dist
		return
	}
	if dist == 0 {
		return
	}
	n := delta.Mult(1 / dist)
	b.Translate(n.Mult(*radius - dist))
	if vn := b.Vel.Dot(n); vn != 0 {
		b.Vel = b.Vel.Sub(n.Mult(vn))
	}
}
