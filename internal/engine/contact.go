package engine

import (
	"math"

	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

// contactSlop keeps a resting contact alive: a body settled exactly on
// a surface would otherwise lose and regain its contact on alternating
// ticks, making friction flicker.
const contactSlop = 1e-4

// resolveContacts detects and resolves support and pair contacts after
// integration. Objects are visited in scene insertion order; an object
// touching several surfaces is corrected against each in that order,
// last write wins. The returned map feeds next tick's friction.
func (s *Simulator) resolveContacts() map[scene.Handle][]contact {
	out := make(map[scene.Handle][]contact)

	type entry struct {
		h scene.Handle
		o scene.Object
		b *scene.Body
	}
	var dyn []entry
	var ramps []*scene.Ramp
	s.scene.Each(func(h scene.Handle, o scene.Object) {
		if b := dynamicBody(o); b != nil {
			dyn = append(dyn, entry{h, o, b})
		} else if r, ok := o.(*scene.Ramp); ok {
			ramps = append(ramps, r)
		}
	})

	for _, e := range dyn {
		if c, ok := s.resolveGround(e.o, e.b); ok {
			out[e.h] = append(out[e.h], c)
		}
		for _, r := range ramps {
			if c, ok := s.resolveRamp(e.o, e.b, r); ok {
				out[e.h] = append(out[e.h], c)
			}
		}
	}

	for i := 0; i < len(dyn); i++ {
		for j := i + 1; j < len(dyn); j++ {
			s.resolvePair(dyn[i].h, dyn[i].o, dyn[i].b, dyn[j].h, dyn[j].o, dyn[j].b, out)
		}
	}

	return out
}

// resolveGround settles a body on the ground plane.
func (s *Simulator) resolveGround(o scene.Object, b *scene.Body) (contact, bool) {
	if !s.cfg.GroundEnabled {
		return contact{}, false
	}
	minY := o.Bounds().Min.Y
	pen := s.cfg.GroundY - minY
	if pen <= -contactSlop {
		return contact{}, false
	}
	if !b.Pinned {
		if pen > 0 {
			b.Translate(geom.V(0, pen))
		}
		if b.Vel.Y < 0 {
			b.Vel.Y = -s.cfg.Restitution * b.Vel.Y
		}
	}
	return contact{
		normal:   geom.V(0, 1),
		normalN:  b.Mass * s.cfg.Gravity,
		friction: mixFriction(b.Friction, s.cfg.GroundFriction),
	}, true
}

// resolveRamp pushes a penetrating body out along the ramp's surface
// normal. The ramp never moves.
func (s *Simulator) resolveRamp(o scene.Object, b *scene.Body, r *scene.Ramp) (contact, bool) {
	n := r.SurfaceNormal()

	var pen float64
	switch t := o.(type) {
	case *scene.Ball:
		if _, ok := r.HeightAt(t.Pos.X); !ok {
			return contact{}, false
		}
		sd := t.Pos.Sub(r.Anchor).Dot(n)
		if sd >= t.Radius+contactSlop || sd <= -t.Radius {
			return contact{}, false
		}
		pen = t.Radius - sd
	case *scene.Box:
		bb := t.Bounds()
		span := r.Bounds()
		if bb.Max.X < span.Min.X || bb.Min.X > span.Max.X {
			return contact{}, false
		}
		min := math.Inf(1)
		for _, c := range t.Corners() {
			if _, ok := r.HeightAt(c.X); !ok {
				continue
			}
			if sd := c.Sub(r.Anchor).Dot(n); sd < min {
				min = sd
			}
		}
		diag := 2 * (t.HalfW + t.HalfH)
		if min >= contactSlop || min <= -diag {
			return contact{}, false
		}
		pen = -min
	default:
		return contact{}, false
	}

	if !b.Pinned {
		if pen > 0 {
			b.Translate(n.Mult(pen))
		}
		if vn := b.Vel.Dot(n); vn < 0 {
			b.ApplyImpulse(n.Mult(-(1 + s.cfg.Restitution) * vn))
		}
	}
	return contact{
		normal:   n,
		normalN:  b.Mass * s.cfg.Gravity * math.Max(0, n.Y),
		friction: mixFriction(b.Friction, r.Friction),
	}, true
}

// resolvePair separates two overlapping dynamic bodies and exchanges a
// normal impulse. Ball-ball uses the exact center distance; any pair
// with a box falls back to bounding boxes with a minimum-penetration
// axis, which is adequate for the small interactive scenes this engine
// targets.
func (s *Simulator) resolvePair(ha scene.Handle, oa scene.Object, a *scene.Body,
	hb scene.Handle, ob scene.Object, b *scene.Body, out map[scene.Handle][]contact) {

	ballA, isBallA := oa.(*scene.Ball)
	ballB, isBallB := ob.(*scene.Ball)

	var n geom.Vec // points from a to b
	var pen float64

	if isBallA && isBallB {
		delta := b.Pos.Sub(a.Pos)
		dist := delta.Length()
		pen = ballA.Radius + ballB.Radius - dist
		if pen <= 0 {
			return
		}
		if dist > 0 {
			n = delta.Mult(1 / dist)
		} else {
			n = geom.V(0, 1)
		}
	} else {
		ba, bb := oa.Bounds(), ob.Bounds()
		if !ba.Overlaps(bb) {
			return
		}
		overlapX := math.Min(ba.Max.X, bb.Max.X) - math.Max(ba.Min.X, bb.Min.X)
		overlapY := math.Min(ba.Max.Y, bb.Max.Y) - math.Max(ba.Min.Y, bb.Min.Y)
		if overlapX < overlapY {
			pen = overlapX
			if bb.Center().X >= ba.Center().X {
				n = geom.V(1, 0)
			} else {
				n = geom.V(-1, 0)
			}
		} else {
			pen = overlapY
			if bb.Center().Y >= ba.Center().Y {
				n = geom.V(0, 1)
			} else {
				n = geom.V(0, -1)
			}
		}
	}

	invA, invB := invMass(a), invMass(b)
	invSum := invA + invB
	if invSum == 0 {
		return
	}

	a.Translate(n.Mult(-pen * invA / invSum))
	b.Translate(n.Mult(pen * invB / invSum))

	// Impulse only if the bodies are approaching.
	vn := b.Vel.Sub(a.Vel).Dot(n)
	if vn < 0 {
		j := -(1 + s.cfg.Restitution) * vn / invSum
		a.ApplyImpulse(n.Mult(-j * invA))
		b.ApplyImpulse(n.Mult(j * invB))
	}

	mu := mixFriction(a.Friction, b.Friction)
	g := s.cfg.Gravity
	out[ha] = append(out[ha], contact{
		normal:   n.Neg(),
		normalN:  a.Mass * g * math.Max(0, -n.Y),
		friction: mu,
	})
	out[hb] = append(out[hb], contact{
		normal:   n,
		normalN:  b.Mass * g * math.Max(0, n.Y),
		friction: mu,
	})
}

func invMass(b *scene.Body) float64 {
	if b.Pinned {
		return 0
	}
	return 1 / b.Mass
}
