package scene

import (
	"fmt"

	"github.com/san-kum/physlab/internal/geom"
)

const (
	DefaultFriction    = 0.5
	DefaultRestitution = 0.0
)

// Scene is an ordered collection of objects. Insertion order is z-order
// for rendering and the tie-break order for contact resolution. A scene
// is exclusively owned by the simulator that created it.
type Scene struct {
	order   []Handle
	objects map[Handle]Object
	next    Handle
}

func New() *Scene {
	return &Scene{
		objects: make(map[Handle]Object),
		next:    1,
	}
}

// Add appends an object and returns its handle.
func (s *Scene) Add(o Object) Handle {
	h := s.next
	s.next++
	s.order = append(s.order, h)
	s.objects[h] = o
	return h
}

// Restore inserts an object under a specific handle, used when decoding
// a serialized scene so handles stay stable across save/load.
func (s *Scene) Restore(h Handle, o Object) error {
	if h <= 0 {
		return fmt.Errorf("%w: handle must be positive, got %d", ErrInvalidParameter, h)
	}
	if _, exists := s.objects[h]; exists {
		return fmt.Errorf("%w: duplicate handle %d", ErrInvalidParameter, h)
	}
	s.order = append(s.order, h)
	s.objects[h] = o
	if h >= s.next {
		s.next = h + 1
	}
	return nil
}

func (s *Scene) Remove(h Handle) bool {
	if _, ok := s.objects[h]; !ok {
		return false
	}
	delete(s.objects, h)
	for i, oh := range s.order {
		if oh == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Scene) Get(h Handle) (Object, bool) {
	o, ok := s.objects[h]
	return o, ok
}

func (s *Scene) Len() int { return len(s.order) }

// Handles returns the handles in insertion order.
func (s *Scene) Handles() []Handle {
	out := make([]Handle, len(s.order))
	copy(out, s.order)
	return out
}

// Each visits every object in insertion order.
func (s *Scene) Each(fn func(Handle, Object)) {
	for _, h := range s.order {
		fn(h, s.objects[h])
	}
}

func (s *Scene) Clear() {
	s.order = s.order[:0]
	s.objects = make(map[Handle]Object)
	s.next = 1
}

// ObjectAt returns the top-most object containing p, checking in
// reverse insertion order so later (higher z) objects win.
func (s *Scene) ObjectAt(p geom.Vec) (Handle, Object, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		h := s.order[i]
		o := s.objects[h]
		if o.ContainsPoint(p) {
			return h, o, true
		}
	}
	return 0, nil, false
}

// EndpointPos resolves an endpoint to a world position. The second
// result is false when the endpoint references a removed object.
func (s *Scene) EndpointPos(e Endpoint) (geom.Vec, bool) {
	if e.Fixed() {
		return e.Point, true
	}
	o, ok := s.objects[e.Object]
	if !ok {
		return geom.Vec{}, false
	}
	switch t := o.(type) {
	case *Box:
		return t.Pos, true
	case *Ball:
		return t.Pos, true
	default:
		return geom.Vec{}, false
	}
}

// EndpointBody resolves an endpoint to its dynamic body, or nil for a
// fixed anchor. The second result is false for a dangling reference.
func (s *Scene) EndpointBody(e Endpoint) (*Body, bool) {
	if e.Fixed() {
		return nil, true
	}
	o, ok := s.objects[e.Object]
	if !ok {
		return nil, false
	}
	switch t := o.(type) {
	case *Box:
		return &t.Body, true
	case *Ball:
		return &t.Body, true
	default:
		return nil, false
	}
}
