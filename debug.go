package colorbook

import "time"

// renderStats holds compositor timing and upload counters.
type renderStats struct {
	renders int
	uploads int
	last    time.Duration
}

// RenderStats reports how many full renders and Drawing uploads the
// compositor has performed and how long the last render took.
func (c *Compositor) RenderStats() (renders, uploads int, last time.Duration) {
	return c.stats.renders, c.stats.uploads, c.stats.last
}

// debugLog logs timing for the last render when debug is enabled.
func (c *Compositor) debugLog() {
	if !c.debug {
		return
	}
	s := c.scaleInfo()
	Logger().Debug("compositor: render",
		"took", c.stats.last,
		"renders", c.stats.renders,
		"uploads", c.stats.uploads,
		"scale", s)
}

func (c *Compositor) scaleInfo() float64 {
	if c.vp == nil {
		return 0
	}
	return c.vp.Scale()
}
