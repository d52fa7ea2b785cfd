package engine

import (
	"fmt"

	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

const minSpringLength = 1e-9

// integrate advances every dynamic body with semi-implicit Euler:
// velocity first, then position from the new velocity. This ordering
// is what keeps spring oscillation energy-stable over long runs;
// explicit Euler visibly gains energy within seconds.
func (s *Simulator) integrate(forces map[scene.Handle]geom.Vec, dt float64) {
	s.scene.Each(func(h scene.Handle, o scene.Object) {
		b := dynamicBody(o)
		if b == nil {
			return
		}
		if b.Pinned {
			b.Vel = geom.Vec{}
			return
		}

		f := forces[h]
		prevPos := b.Pos

		a := f.Mult(1 / b.Mass)
		b.Vel = b.Vel.Add(a.Mult(dt))
		b.Pos = b.Pos.Add(b.Vel.Mult(dt))

		if !b.Pos.IsFinite() || !b.Vel.IsFinite() {
			// Contain the blow-up: hold the last valid position,
			// drop the velocity, and warn the host.
			b.Pos = prevPos
			b.Vel = geom.Vec{}
			s.emit(Event{
				Code:    EventInstability,
				Handle:  h,
				Step:    s.clock.Steps,
				Time:    s.clock.SimTime,
				Message: fmt.Sprintf("%s %d produced a non-finite state; velocity zeroed", o.Kind(), h),
			})
		}
	})
}
