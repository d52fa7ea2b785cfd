// Package scene defines the objects a simulation is built from.
//
// Objects fall into two groups, all addressed by stable [Handle] ids:
//
//   - [Box], [Ball]: dynamic rigid bodies with mass and friction
//   - [Ramp]: a static inclined surface bodies slide along
//   - [Spring]: a Hookean link between two [Endpoint] anchors
//   - [Rope]: an inextensible tether with a maximum length
//   - [PinJoint]: two bodies held at fixed distances around a pivot
//
// A [Scene] owns the objects and never reuses a handle, so recorders
// and renderers can key on handles across edits.
//
// # Serialization
//
// [Encode] flattens a scene into a [Description] of [ObjectSpec]
// values, and [Decode] rebuilds it with identical handles:
//
//	data, _ := scene.Marshal(scene.Encode(s))
//	desc, _ := scene.Unmarshal(data)
//	restored, _ := scene.Decode(desc)
//
// Constraints referencing handles absent from the description are
// rejected at decode time.
package scene
