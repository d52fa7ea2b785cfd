package engine

// Clock tracks simulated time. It advances monotonically while the
// simulator runs and resets to zero with the scene.
type Clock struct {
	SimTime float64
	Steps   int
}

func (c *Clock) advance(dt float64) {
	c.SimTime += dt
	c.Steps++
}

func (c *Clock) reset() {
	c.SimTime = 0
	c.Steps = 0
}
