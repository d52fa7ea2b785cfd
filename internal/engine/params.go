package engine

import (
	"fmt"

	"github.com/san-kum/physlab/internal/scene"
)

// SetParameter edits one named parameter of an object. Edits are
// rejected while the simulation runs; pause first. Changing mass never
// rewrites accumulated velocity, so no energy is injected. Invalid
// values leave the object untouched.
func (s *Simulator) SetParameter(h scene.Handle, key string, value float64) error {
	if s.state == Running {
		return fmt.Errorf("%w: cannot edit parameters while running, pause first", ErrInvalidOperation)
	}
	o, ok := s.scene.Get(h)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}

	var err error
	switch t := o.(type) {
	case *scene.Box:
		err = setBoxParam(t, key, value)
	case *scene.Ball:
		err = setBallParam(t, key, value)
	case *scene.Ramp:
		err = setRampParam(t, key, value)
	case *scene.Spring:
		err = setSpringParam(t, key, value)
	case *scene.Rope:
		err = setRopeParam(t, key, value)
	case *scene.PinJoint:
		err = setPinJointParam(t, key, value)
	}
	if err != nil {
		return err
	}

	if s.state == Idle {
		s.capture(h, o)
	}
	return nil
}

func setBodyParam(b *scene.Body, key string, value float64) (bool, error) {
	switch key {
	case "x":
		b.Pos.X = value
	case "y":
		b.Pos.Y = value
	case "vx":
		b.Vel.X = value
	case "vy":
		b.Vel.Y = value
	case "mass":
		b.Mass = value
	case "friction":
		b.Friction = value
	case "pinned":
		b.Pinned = value != 0
	default:
		return false, nil
	}
	return true, nil
}

func setBoxParam(b *scene.Box, key string, value float64) error {
	prev := *b
	handled, _ := setBodyParam(&b.Body, key, value)
	if !handled {
		switch key {
		case "width":
			b.HalfW = value / 2
		case "height":
			b.HalfH = value / 2
		case "angle":
			b.Angle = value
		default:
			return unknownKey(b, key)
		}
	}
	if err := b.Validate(); err != nil {
		*b = prev
		return err
	}
	return nil
}

func setBallParam(b *scene.Ball, key string, value float64) error {
	prev := *b
	handled, _ := setBodyParam(&b.Body, key, value)
	if !handled {
		switch key {
		case "radius":
			b.Radius = value
		default:
			return unknownKey(b, key)
		}
	}
	if err := b.Validate(); err != nil {
		*b = prev
		return err
	}
	return nil
}

func setRampParam(r *scene.Ramp, key string, value float64) error {
	prev := *r
	switch key {
	case "x":
		r.Anchor.X = value
	case "y":
		r.Anchor.Y = value
	case "length":
		r.Length = value
	case "angle":
		r.Angle = value
	case "friction":
		r.Friction = value
	default:
		return unknownKey(r, key)
	}
	if err := r.Validate(); err != nil {
		*r = prev
		return err
	}
	return nil
}

func setSpringParam(sp *scene.Spring, key string, value float64) error {
	prev := *sp
	switch key {
	case "rest_length":
		sp.RestLength = value
	case "stiffness":
		sp.Stiffness = value
	case "damping":
		sp.Damping = value
	default:
		return unknownKey(sp, key)
	}
	if err := sp.Validate(); err != nil {
		*sp = prev
		return err
	}
	return nil
}

func setRopeParam(r *scene.Rope, key string, value float64) error {
	prev := *r
	switch key {
	case "max_length":
		r.MaxLength = value
	default:
		return unknownKey(r, key)
	}
	if err := r.Validate(); err != nil {
		*r = prev
		return err
	}
	return nil
}

func setPinJointParam(j *scene.PinJoint, key string, value float64) error {
	prev := *j
	switch key {
	case "pivot_x":
		j.Pivot.X = value
	case "pivot_y":
		j.Pivot.Y = value
	case "radius_a":
		j.RadiusA = value
	case "radius_b":
		j.RadiusB = value
	default:
		return unknownKey(j, key)
	}
	if err := j.Validate(); err != nil {
		*j = prev
		return err
	}
	return nil
}

func unknownKey(o scene.Object, key string) error {
	return fmt.Errorf("%w: %s has no parameter %q", ErrInvalidOperation, o.Kind(), key)
}
