package geom

import "math"

// Vec is a 2D vector in world coordinates (meters, y up).
type Vec struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Neg() Vec { return Vec{-v.X, -v.Y} }

func (v Vec) Mult(s float64) Vec { return Vec{v.X * s, v.Y * s} }

func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 3D cross product of two
// in-plane vectors.
func (v Vec) Cross(o Vec) float64 { return v.X*o.Y - v.Y*o.X }

// Perp returns v rotated 90 degrees counterclockwise.
func (v Vec) Perp() Vec { return Vec{-v.Y, v.X} }

func (v Vec) Length() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec) LengthSq() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec) Distance(o Vec) float64 { return v.Sub(o).Length() }

// Normalize returns the unit vector along v, or the zero vector if v
// has no length.
func (v Vec) Normalize() Vec {
	l := v.Length()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

func (v Vec) Rotate(angle float64) Vec {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

func (v Vec) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec
}

func NewAABB(minX, minY, maxX, maxY float64) AABB {
	return AABB{Min: Vec{minX, minY}, Max: Vec{maxX, maxY}}
}

func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

func (b AABB) Contains(p Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func (b AABB) Center() Vec {
	return Vec{(b.Min.X + b.Max.X) * 0.5, (b.Min.Y + b.Max.Y) * 0.5}
}

// Expand grows the box to include p.
func (b AABB) Expand(p Vec) AABB {
	return AABB{
		Min: Vec{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y)},
		Max: Vec{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y)},
	}
}
