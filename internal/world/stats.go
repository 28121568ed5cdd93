package world

// Stats accumulates frame-rate and update-to-render-ratio telemetry across
// ticks, exponentially smoothing the average the way a long-running demo
// reports FPS without the instantaneous value jittering the display.
type Stats struct {
	lastFrameRate float64
	avgFrameRate  float64

	ticksSinceRender int
	lastRatio        float64

	emitAccumulator float64
}

const statsEmitInterval = 1.0 // seconds of simulation time between telemetry events

const frameRateSmoothing = 0.1 // EMA weight given to each new sample

// recordTick folds one tick's wall-clock-equivalent duration (dt, the
// simulation step size) into the frame-rate estimate. Real wall-clock
// jitter is the host's concern; the core reports the rate it was asked to
// simulate at.
func (st *Stats) recordTick(dt float64) {
	if dt <= 0 {
		return
	}
	rate := 1 / dt
	st.lastFrameRate = rate
	if st.avgFrameRate == 0 {
		st.avgFrameRate = rate
	} else {
		st.avgFrameRate += (rate - st.avgFrameRate) * frameRateSmoothing
	}
	st.ticksSinceRender++
}

// RecordRender tells Stats a render frame was presented, closing out the
// update-to-render ratio for the ticks since the previous render.
func (st *Stats) RecordRender() {
	st.lastRatio = float64(st.ticksSinceRender)
	st.ticksSinceRender = 0
}

// LastFrameRate and AvgFrameRate report the most recent instantaneous and
// smoothed simulation rate, in ticks per second.
func (st *Stats) LastFrameRate() float64 { return st.lastFrameRate }
func (st *Stats) AvgFrameRate() float64  { return st.avgFrameRate }

// LastUpdateToRenderRatio reports how many simulation ticks occurred per the
// most recently completed render frame.
func (st *Stats) LastUpdateToRenderRatio() float64 { return st.lastRatio }

// dueForEmit advances the telemetry cadence and reports whether a
// FrameRate/UpdateToRenderRatio event pair should be pushed this tick.
func (st *Stats) dueForEmit(dt float64) bool {
	st.emitAccumulator += dt
	if st.emitAccumulator >= statsEmitInterval {
		st.emitAccumulator -= statsEmitInterval
		return true
	}
	return false
}
