package viz

import (
	"math"
	"strings"

	"github.com/san-kum/physlab/internal/geom"
)

// Braille patterns give a 2x4 sub-pixel grid per character cell,
// unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille character grid with a world-coordinate viewport.
// World y points up; the grid row 0 is the top of the viewport.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	// viewport in world coordinates
	min, max geom.Vec
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		min:    geom.V(-10, -1),
		max:    geom.V(10, 9),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// SetViewport frames the world rectangle, preserving aspect ratio by
// growing the smaller dimension.
func (c *Canvas) SetViewport(min, max geom.Vec) {
	w := max.X - min.X
	h := max.Y - min.Y
	if w <= 0 || h <= 0 {
		return
	}
	// braille sub-pixels are 2 wide, 4 tall per cell
	aspect := float64(c.Width*2) / float64(c.Height*4)
	if w/h < aspect {
		grow := (h*aspect - w) / 2
		min.X -= grow
		max.X += grow
	} else {
		grow := (w/aspect - h) / 2
		min.Y -= grow
		max.Y += grow
	}
	c.min, c.max = min, max
}

// project maps a world point to sub-pixel coordinates.
func (c *Canvas) project(p geom.Vec) (int, int) {
	sx := (p.X - c.min.X) / (c.max.X - c.min.X) * float64(c.Width*2-1)
	sy := (1 - (p.Y-c.min.Y)/(c.max.Y-c.min.Y)) * float64(c.Height*4-1)
	return int(math.Round(sx)), int(math.Round(sy))
}

func (c *Canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// Plot marks a single world point.
func (c *Canvas) Plot(p geom.Vec) {
	x, y := c.project(p)
	c.set(x, y)
}

// Line draws a world-space segment with Bresenham's algorithm.
func (c *Canvas) Line(a, b geom.Vec) {
	x0, y0 := c.project(a)
	x1, y1 := c.project(b)

	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Circle draws a world-space circle outline.
func (c *Canvas) Circle(center geom.Vec, r float64) {
	steps := 24 + int(r*16)
	prev := center.Add(geom.V(r, 0))
	for i := 1; i <= steps; i++ {
		a := float64(i) / float64(steps) * 2 * math.Pi
		p := center.Add(geom.V(r*math.Cos(a), r*math.Sin(a)))
		c.Line(prev, p)
		prev = p
	}
}

// Poly draws a closed polygon through the given world points.
func (c *Canvas) Poly(pts ...geom.Vec) {
	for i := range pts {
		c.Line(pts[i], pts[(i+1)%len(pts)])
	}
}

// Zigzag draws a spring-like path between two points.
func (c *Canvas) Zigzag(a, b geom.Vec, coils int, amplitude float64) {
	delta := b.Sub(a)
	if delta.Length() < 1e-9 {
		return
	}
	side := delta.Normalize().Perp().Mult(amplitude)
	prev := a
	for i := 1; i < coils*2; i++ {
		t := float64(i) / float64(coils*2)
		p := a.Lerp(b, t)
		if i%2 == 1 {
			if (i/2)%2 == 0 {
				p = p.Add(side)
			} else {
				p = p.Sub(side)
			}
		}
		c.Line(prev, p)
		prev = p
	}
	c.Line(prev, b)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
