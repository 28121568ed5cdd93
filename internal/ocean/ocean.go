// Package ocean implements the 1D shallow-water surface simulation: two
// double-buffered fields (height, edge velocity), semi-Lagrangian
// advection, reflective boundaries, and a user-driven external wave state
// machine.
package ocean

import (
	"math"

	"shipbreaker/internal/core"
)

// Params carries the tunable constants for one ocean tick.
type Params struct {
	DT      float64
	DX      float64
	Gravity float64

	RestHeight          float64
	VerticalAmplification float64

	GhostCells int

	WindMagnitude float64
	GustIncisiveness float64
	RippleSpatialFrequency float64
	RippleTimeFrequency    float64
	RippleSmoothing        float64 // exponential smoothing factor in [0,1]
}

// WaveState is the external-wave state machine's phase.
type WaveState uint8

const (
	WaveAtRest WaveState = iota
	WaveRising
	WaveFalling
)

// externalWave tracks one in-flight user-triggered wave at a tagged cell.
type externalWave struct {
	state      WaveState
	cell       int
	startValue float64
	targetValue float64
	lowValue   float64
	elapsed    float64
	duration   float64
}

// Surface holds the shallow-water state and runs its per-tick update.
type Surface struct {
	sTotal int
	ghost  int

	hCurr, hNext []float64
	vCurr, vNext []float64

	smoothedRipplePhase float64
	time                float64

	wave *externalWave
}

// New allocates a Surface with sInterior interior cells plus ghostCells on
// each side (S_total = 2*G + S_interior), resting at restHeight.
func New(sInterior, ghostCells int, restHeight float64) *Surface {
	sTotal := sInterior + 2*ghostCells
	s := &Surface{
		sTotal: sTotal,
		ghost:  ghostCells,
		hCurr:  make([]float64, sTotal),
		hNext:  make([]float64, sTotal),
		vCurr:  make([]float64, sTotal),
		vNext:  make([]float64, sTotal),
	}
	for i := range s.hCurr {
		s.hCurr[i] = restHeight
		s.hNext[i] = restHeight
	}
	return s
}

// STotal returns the total cell count including ghost cells.
func (s *Surface) STotal() int { return s.sTotal }

// HeightAt returns the current height at a clamped cell index.
func (s *Surface) HeightAt(i int) float64 {
	return s.hCurr[clampInt(i, 0, s.sTotal-1)]
}

// TriggerTsunami starts a rise-then-fall wave spanning the whole surface,
// rooted at the midpoint cell.
func (s *Surface) TriggerTsunami(amplitude, duration float64) {
	s.Restart(s.sTotal/2, s.hCurr[s.sTotal/2]+amplitude, duration)
}

// TriggerRogueWave starts a rise-then-fall wave at cell (clamped to the
// surface); callers pick the cell (e.g. via core.RNG) and pass it in.
func (s *Surface) TriggerRogueWave(cell int, amplitude, duration float64) {
	s.Restart(cell, s.hCurr[clampInt(cell, 0, s.sTotal-1)]+amplitude, duration)
}

// Restart (re)roots the external wave's Rise phase toward target at cell,
// regardless of any wave currently in flight: calling Restart at any point
// reroots the rise.
func (s *Surface) Restart(cell int, target, duration float64) {
	cell = clampInt(cell, 0, s.sTotal-1)
	if duration <= 0 {
		duration = 1
	}
	low := s.hCurr[cell]
	if s.wave != nil {
		low = s.wave.lowValue
	}
	s.wave = &externalWave{
		state:       WaveRising,
		cell:        cell,
		startValue:  s.hCurr[cell],
		targetValue: target,
		lowValue:    low,
		duration:    duration,
	}
}

// Release ends the Rise phase early, transitioning to Fall back toward the
// stored low height.
func (s *Surface) Release() {
	if s.wave == nil || s.wave.state != WaveRising {
		return
	}
	s.wave.state = WaveFalling
	s.wave.startValue = s.hCurr[s.wave.cell]
	s.wave.targetValue = s.wave.lowValue
	s.wave.elapsed = 0
}

// Step advances the surface by one tick.
func (s *Surface) Step(p Params) {
	s.time += p.DT
	s.waveGenesis(p)
	s.advect(p)
	s.updateHeight(p)
	s.updateVelocity(p)
	s.applyBoundaries()
	s.hCurr, s.hNext = s.hNext, s.hCurr
	s.vCurr, s.vNext = s.vNext, s.vCurr
}

// waveGenesis drives the external wave's tagged cell along the wave state
// machine's trajectory; with no wave in flight it changes nothing.
func (s *Surface) waveGenesis(p Params) {
	if s.wave == nil {
		return
	}
	w := s.wave
	w.elapsed += p.DT
	t := 1.0
	if w.duration > 0 {
		t = w.elapsed / w.duration
	}
	if t > 1 {
		t = 1
	}
	trajectory := core.SmoothStep2(t)
	s.hCurr[w.cell] = core.Lerp(w.startValue, w.targetValue, trajectory)

	if t >= 1 {
		switch w.state {
		case WaveRising:
			w.state = WaveFalling
			w.startValue = w.targetValue
			w.targetValue = w.lowValue
			w.elapsed = 0
		case WaveFalling:
			s.wave = nil
		}
	}
}

// advect performs semi-Lagrangian back-tracing for both H and V over the
// interior cells.
func (s *Surface) advect(p Params) {
	dx := p.DX
	if dx <= 0 {
		dx = 1
	}
	for i := s.ghost; i < s.sTotal-s.ghost; i++ {
		vAvg := (s.vCurr[i] + s.vCurr[i+1]) / 2
		back := float64(i) - vAvg*p.DT/dx
		back = core.Clamp(back, 0, float64(s.sTotal-1))
		floor := int(math.Floor(back))
		frac := back - float64(floor)
		s.hNext[i] = core.Lerp(s.hCurr[floor], s.hCurr[clampInt(floor+1, 0, s.sTotal-1)], frac)
		s.vNext[i] = core.Lerp(s.vCurr[floor], s.vCurr[clampInt(floor+1, 0, s.sTotal-1)], frac)
	}
}

// updateHeight applies the divergence correction.
func (s *Surface) updateHeight(p Params) {
	dx := p.DX
	if dx <= 0 {
		dx = 1
	}
	for i := s.ghost; i < s.sTotal-s.ghost; i++ {
		vNextIP1 := s.vNext[clampInt(i+1, 0, s.sTotal-1)]
		s.hNext[i] -= s.hNext[i] * (vNextIP1 - s.vNext[i]) / dx * p.DT
	}
}

// updateVelocity applies the pressure-gradient term.
func (s *Surface) updateVelocity(p Params) {
	dx := p.DX
	if dx <= 0 {
		dx = 1
	}
	for i := s.ghost; i < s.sTotal-s.ghost; i++ {
		hPrev := s.hNext[clampInt(i-1, 0, s.sTotal-1)]
		s.vNext[i] += p.Gravity * (hPrev - s.hNext[i]) / dx * p.DT
	}
}

// applyBoundaries mirrors height into the boundary cell on each side and
// clamps edge velocity to 0.
func (s *Surface) applyBoundaries() {
	if s.sTotal < 2 {
		return
	}
	s.hNext[0] = s.hNext[1]
	s.hNext[s.sTotal-1] = s.hNext[s.sTotal-2]
	s.vNext[0] = 0
	s.vNext[s.sTotal-1] = 0
}

// RenderSample returns the amplified height deviation plus a sinusoidal
// wind-ripple term at cell i, and advances the
// exponentially-smoothed ripple phase.
func (s *Surface) RenderSample(i int, restHeight, amplification float64, p Params) float64 {
	deviation := (s.HeightAt(i) - restHeight) * amplification

	targetPhase := p.RippleTimeFrequency * s.time * (1 + p.GustIncisiveness)
	alpha := p.RippleSmoothing
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	s.smoothedRipplePhase += (targetPhase - s.smoothedRipplePhase) * alpha

	ripple := p.WindMagnitude * math.Sin(p.RippleSpatialFrequency*float64(i)+s.smoothedRipplePhase)
	return deviation + ripple
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

