package engine

import (
	"math"

	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

// contact is a resolved support recorded for one tick. Friction reads
// the previous tick's contacts, so it lags detection by one step.
type contact struct {
	normal   geom.Vec
	normalN  float64 // estimated normal force, mass * g * cos(incline)
	friction float64 // combined coefficient for the pair
}

// mixFriction combines two friction coefficients the way contact
// solvers usually do.
func mixFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}

// accumulate computes the net force on every dynamic body: gravity,
// spring tension, and friction from the previous tick's contacts.
// Rope tension is absent on purpose; taut ropes are resolved
// positionally after integration.
func (s *Simulator) accumulate() map[scene.Handle]geom.Vec {
	forces := make(map[scene.Handle]geom.Vec, s.scene.Len())

	s.scene.Each(func(h scene.Handle, o scene.Object) {
		if b := dynamicBody(o); b != nil && !b.Pinned {
			forces[h] = geom.V(0, -s.cfg.Gravity*b.Mass)
		}
	})

	s.scene.Each(func(h scene.Handle, o scene.Object) {
		if sp, ok := o.(*scene.Spring); ok {
			s.applySpring(sp, forces)
		}
	})

	for h, f := range forces {
		o, _ := s.scene.Get(h)
		b := dynamicBody(o)
		forces[h] = s.applyContacts(h, b, f)
	}

	return forces
}

// applySpring adds the damped Hooke force to both dynamic endpoints.
func (s *Simulator) applySpring(sp *scene.Spring, forces map[scene.Handle]geom.Vec) {
	pa, okA := s.scene.EndpointPos(sp.A)
	pb, okB := s.scene.EndpointPos(sp.B)
	if !okA || !okB {
		return // dangling, pruned at the start of the next tick
	}

	delta := pb.Sub(pa)
	dist := delta.Length()
	if dist < minSpringLength {
		return
	}
	n := delta.Mult(1 / dist)

	var va, vb geom.Vec
	if body, _ := s.scene.EndpointBody(sp.A); body != nil {
		va = body.Vel
	}
	if body, _ := s.scene.EndpointBody(sp.B); body != nil {
		vb = body.Vel
	}
	relVel := vb.Sub(va).Dot(n)

	// Positive magnitude pulls the endpoints together.
	mag := sp.Stiffness*(dist-sp.RestLength) + sp.Damping*relVel
	f := n.Mult(mag)

	if !sp.A.Fixed() {
		if cur, ok := forces[sp.A.Object]; ok {
			forces[sp.A.Object] = cur.Add(f)
		}
	}
	if !sp.B.Fixed() {
		if cur, ok := forces[sp.B.Object]; ok {
			forces[sp.B.Object] = cur.Sub(f)
		}
	}
}

// applyContacts cancels the force component pressing into each support
// surface and adds friction opposing tangential motion. Friction is
// capped against the tangential momentum the tick would otherwise
// produce, so it can stop a body dead but never reverse it: a box on a
// shallow incline slides with a = g(sin t - mu cos t), and sticks when
// mu exceeds tan t.
func (s *Simulator) applyContacts(h scene.Handle, b *scene.Body, f geom.Vec) geom.Vec {
	contacts := s.contacts[h]
	if len(contacts) == 0 {
		return f
	}
	dt := s.cfg.Dt

	for _, c := range contacts {
		n := c.normal
		if into := f.Dot(n); into < 0 {
			// The support carries the load.
			f = f.Sub(n.Mult(into))
		}

		if !s.cfg.Friction || c.friction == 0 {
			continue
		}

		t := n.Perp()
		vt := b.Vel.Dot(t)
		ft := f.Dot(t)

		// Tangential momentum after this tick, absent friction.
		pt := b.Mass*vt + ft*dt
		mag := math.Min(c.friction*c.normalN, math.Abs(pt)/dt)
		if pt > 0 {
			f = f.Sub(t.Mult(mag))
		} else {
			f = f.Add(t.Mult(mag))
		}
	}
	return f
}

// dynamicBody returns the kinematic body of a movable object, nil for
// ramps and constraints.
func dynamicBody(o scene.Object) *scene.Body {
	switch t := o.(type) {
	case *scene.Box:
		return &t.Body
	case *scene.Ball:
		return &t.Body
	}
	return nil
}
