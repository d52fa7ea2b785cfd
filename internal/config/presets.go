package config

import (
	"math"
	"sort"

	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

// Preset is a named demo scene, the toolbox scenarios a user would
// otherwise place by hand.
type Preset struct {
	Note    string
	Objects []scene.ObjectSpec
}

var Presets = map[string]Preset{
	"ramp_slide": {
		Note: "box released from rest on a 30 degree incline",
		Objects: []scene.ObjectSpec{
			{Handle: 1, Kind: "ramp", Pos: geom.V(0, 0), Length: 8, Angle: 30 * math.Pi / 180, Friction: 0.3},
			{Handle: 2, Kind: "box", Pos: rampSurface(30*math.Pi/180, 4, 0.6), Width: 1, Height: 1, Mass: 2, Friction: 0.3},
		},
	},
	"spring_bounce": {
		Note: "ball oscillating on a spring from a fixed anchor",
		Objects: []scene.ObjectSpec{
			{Handle: 1, Kind: "ball", Pos: geom.V(0, 3), Radius: 0.4, Mass: 1},
			{Handle: 2, Kind: "spring",
				A:          &scene.Endpoint{Point: geom.V(0, 7)},
				B:          &scene.Endpoint{Object: 1},
				RestLength: 2, Stiffness: 25, Damping: 0.4},
		},
	},
	"rope_pair": {
		Note: "two balls joined by a rope, one pinned",
		Objects: []scene.ObjectSpec{
			{Handle: 1, Kind: "ball", Pos: geom.V(0, 6), Radius: 0.4, Mass: 1, Pinned: true},
			{Handle: 2, Kind: "ball", Pos: geom.V(2.5, 6), Radius: 0.4, Mass: 1},
			{Handle: 3, Kind: "rope",
				A:         &scene.Endpoint{Object: 1},
				B:         &scene.Endpoint{Object: 2},
				MaxLength: 3},
		},
	},
	"stack_drop": {
		Note: "two boxes dropped onto the ground",
		Objects: []scene.ObjectSpec{
			{Handle: 1, Kind: "box", Pos: geom.V(0, 2), Width: 1.2, Height: 0.8, Mass: 2, Friction: 0.5},
			{Handle: 2, Kind: "box", Pos: geom.V(0.15, 4), Width: 0.8, Height: 0.8, Mass: 1, Friction: 0.5},
		},
	},
	"pin_swing": {
		Note: "two balls swinging around a shared pivot",
		Objects: []scene.ObjectSpec{
			{Handle: 1, Kind: "ball", Pos: geom.V(-2, 5), Radius: 0.3, Mass: 1},
			{Handle: 2, Kind: "ball", Pos: geom.V(1.5, 5), Radius: 0.3, Mass: 1},
			{Handle: 3, Kind: "pin",
				A:     &scene.Endpoint{Object: 1},
				B:     &scene.Endpoint{Object: 2},
				Pivot: geom.V(0, 5), RadiusA: 2, RadiusB: 1.5},
		},
	},
	"ball_drop": {
		Note: "single ball falling onto the ground plane",
		Objects: []scene.ObjectSpec{
			{Handle: 1, Kind: "ball", Pos: geom.V(0, 5), Radius: 0.5, Mass: 1, Friction: 0.4},
		},
	},
}

// rampSurface places a body center a little off the incline surface at
// arc position s.
func rampSurface(angle, s, lift float64) geom.Vec {
	p := geom.V(math.Cos(angle), math.Sin(angle)).Mult(s)
	n := geom.V(-math.Sin(angle), math.Cos(angle))
	return p.Add(n.Mult(lift))
}

// GetPreset returns the named demo scene, or nil.
func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
