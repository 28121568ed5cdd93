package core

// Clock tracks simulation time explicitly so tests can drive it
// deterministically instead of reading a process-wide wall clock.
//
// Pause freezes Now(): Advance is a no-op while the clock is paused.
type Clock struct {
	now    float64
	paused bool
}

// NewClock returns a Clock starting at simulation time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current simulation time in seconds.
func (c *Clock) Now() float64 { return c.now }

// Advance moves the clock forward by dt seconds unless paused.
func (c *Clock) Advance(dt float64) {
	if c.paused {
		return
	}
	c.now += dt
}

// SetPaused freezes or resumes the clock.
func (c *Clock) SetPaused(paused bool) { c.paused = paused }

// Paused reports whether the clock is currently frozen.
func (c *Clock) Paused() bool { return c.paused }
