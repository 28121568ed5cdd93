package combustion

import (
	"math"
	"sort"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/particle"
)

// Subsystem runs the low- and high-frequency combustion passes over a
// particle.Store and mesh.Mesh, maintaining a plane-id-ordered burning list.
type Subsystem struct {
	store *particle.Store
	mesh  *mesh.Mesh
	rng   *core.RNG

	burningList []core.ParticleIndex
}

// New builds a combustion Subsystem.
func New(store *particle.Store, m *mesh.Mesh, rng *core.RNG) *Subsystem {
	return &Subsystem{store: store, mesh: m, rng: rng}
}

// LiveBurning returns the current burning-list length.
func (s *Subsystem) LiveBurning() int { return len(s.burningList) }

// candidate is one ignition candidate found by the low-frequency scan.
type candidate struct {
	idx core.ParticleIndex
	key float64
}

// LowFrequencyStep runs the ignition scan and the burning-particle
// decay/extinguish check. Ignition thresholds come from each material's
// IgnitionTemperature plus the Params watermarks; Params.AmbientTemperature
// is not read here.
func (s *Subsystem) LowFrequencyStep(p Params) {
	s.scanIgnitionCandidates(p)
	s.decayBurningParticles(p)
}

func (s *Subsystem) scanIgnitionCandidates(p Params) {
	store := s.store
	var candidates []candidate

	for i := 0; i < store.NShip(); i++ {
		idx := core.ParticleIndex(i)
		if store.CombustionState[i] != particle.NotBurning {
			continue
		}
		mat := store.StructuralMaterial[i]
		if mat == nil || mat.Structural.IgnitionTemperature <= 0 {
			continue
		}
		if store.Water[i] > 0 {
			continue // not dry
		}
		if store.Decay[i] <= p.SmotheringDecayLowWatermark {
			continue
		}
		ignition := mat.Structural.IgnitionTemperature
		if store.Temperature[i] <= ignition+p.HighWatermark {
			continue
		}
		key := (store.Temperature[i] - ignition) / ignition
		candidates = append(candidates, candidate{idx: idx, key: key})
	}

	if len(candidates) == 0 {
		return
	}

	budget := p.MaxBurning - s.LiveBurning()
	if budget <= 0 {
		return
	}
	k := s.rng.IntRange(4, 10)
	if k > budget {
		k = budget
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	if k <= 0 {
		return
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].key > candidates[j].key })
	for _, c := range candidates[:k] {
		s.igniteCandidate(c.idx, c.key)
	}
	s.resortBurningList()
}

// smoothStep is the standard Hermite interpolation used to taper a value
// into [0,1] across [edge0, edge1].
func smoothStep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// igniteCandidate transitions idx into Developing1. key is how deep into
// its ignition zone the particle was found (temperature above ignition,
// normalized); a direct Ignite call (no scan key available) passes 2, the
// scan's own saturation point, matching a heat blaster's full-intensity
// ignition.
func (s *Subsystem) igniteCandidate(idx core.ParticleIndex, key float64) {
	store := s.store
	store.CombustionState[idx] = particle.Developing1
	personality := s.rng.Float64()
	store.Personality[idx] = personality
	nSprings := len(store.ConnectedSprings(idx))

	// Developing1's growth rule is d += 0.105*d, a pure multiplier that
	// never leaves zero; seed a nonzero start scaled by how deep into the
	// ignition zone the particle was found, the same initial-development
	// formula Points.cpp's ignition uses.
	flameDevelopment := 0.1 + 0.5*smoothStep(0, 2, key)
	store.FlameDevelopment[idx] = flameDevelopment

	candidate := 0.25 + 0.0625*float64(nSprings) + 0.5*personality
	if candidate > flameDevelopment {
		store.MaxFlameDevelopment[idx] = candidate
	} else {
		store.MaxFlameDevelopment[idx] = flameDevelopment
	}
	s.burningList = append(s.burningList, idx)
}

func (s *Subsystem) decayBurningParticles(p Params) {
	store := s.store
	for i := 0; i < store.NShip(); i++ {
		if store.CombustionState[i] != particle.Burning {
			continue
		}
		idx := core.ParticleIndex(i)
		mat := store.StructuralMaterial[i]
		ignition := 0.0
		if mat != nil {
			ignition = mat.Structural.IgnitionTemperature
		}
		if store.Temperature[i] < ignition+p.LowWatermark || store.Decay[i] < p.SmotheringDecayLowWatermark {
			store.CombustionState[i] = particle.ExtinguishingConsumed
			continue
		}
		mass := store.CurrentMass[i]
		refMass := p.ReferenceMass
		if refMass <= 0 {
			refMass = 1
		}
		totalSteps := p.BaseDecayRate * math.Pow(mass/refMass, 0.15)
		if totalSteps <= 0 {
			continue
		}
		alpha := math.Pow(0.01, 1/totalSteps)
		store.Decay[i] *= alpha
		for _, ref := range store.ConnectedSprings(idx) {
			store.Decay[ref.OtherEndpoint] *= alpha
		}
	}
}

// Extinguish forces idx toward NotBurning over the next few ticks, the same
// smothered-decay path HighFrequencyStep drives a water-soaked particle
// through. A no-op if idx isn't currently burning.
func (s *Subsystem) Extinguish(idx core.ParticleIndex) {
	if s.store.CombustionState[idx].IsActive() {
		s.store.CombustionState[idx] = particle.ExtinguishingSmothered
	}
}

// Ignite force-ignites idx, the heat-blaster's direct-ignition action,
// bypassing the low-frequency scan's temperature/dryness/budget gating.
func (s *Subsystem) Ignite(idx core.ParticleIndex) {
	if s.store.CombustionState[idx] != particle.NotBurning {
		return
	}
	s.igniteCandidate(idx, 2)
	s.resortBurningList()
}

// HighFrequencyStep runs the per-tick smothering check, heat deposition, and
// flame-development recursion.
func (s *Subsystem) HighFrequencyStep(p Params) {
	store := s.store
	for i := 0; i < len(s.burningList); i++ {
		idx := s.burningList[i]
		state := store.CombustionState[idx]
		if !state.OnBurningList() {
			continue
		}
		if store.Water[idx] > p.SmotheringWaterHighWatermark {
			store.CombustionState[idx] = particle.ExtinguishingSmothered
			state = particle.ExtinguishingSmothered
		}

		if state == particle.Burning {
			s.depositHeat(idx, p)
		}
		s.advanceFlameDevelopment(idx, p)
	}
	s.compactBurningList()
}

func (s *Subsystem) depositHeat(idx core.ParticleIndex, p Params) {
	store := s.store
	mat := store.StructuralMaterial[idx]
	if mat == nil {
		return
	}
	ignition := mat.Structural.IgnitionTemperature
	cap := ignition * p.TemperatureAdjust * 1.1
	if store.Temperature[idx] > cap {
		store.Temperature[idx] = cap
	}

	gx, gy := p.Gravity[0], p.Gravity[1]
	gLen := math.Hypot(gx, gy)
	if gLen == 0 {
		gLen = 1
	}

	for _, ref := range store.ConnectedSprings(idx) {
		n := ref.OtherEndpoint
		nMat := material.Material{}
		if store.IsShip(n) && store.StructuralMaterial[n] != nil {
			nMat = *store.StructuralMaterial[n]
		}
		if nMat.Structural.HeatCapacity <= 0 {
			continue
		}
		dx := store.PosX[n] - store.PosX[idx]
		dy := store.PosY[n] - store.PosY[idx]
		dLen := math.Hypot(dx, dy)
		if dLen == 0 {
			continue
		}
		cosTheta := (dx*gx + dy*gy) / (dLen * gLen)
		alphaDir := 0.2 + 1.5*(1-cosTheta)
		dT := mat.Structural.CombustionHeat * alphaDir / nMat.Structural.HeatCapacity
		store.Temperature[n] += dT
	}
}

func (s *Subsystem) advanceFlameDevelopment(idx core.ParticleIndex, p Params) {
	store := s.store
	d := store.FlameDevelopment[idx]
	max := store.MaxFlameDevelopment[idx]

	switch store.CombustionState[idx] {
	case particle.Developing1:
		d += 0.105 * d
		if d > max+0.2 {
			store.CombustionState[idx] = particle.Developing2
		}
	case particle.Developing2:
		d = max + (1-0.2)*(d-max)
		if d-max < 0.02 {
			store.CombustionState[idx] = particle.Burning
		}
	case particle.ExtinguishingConsumed:
		d -= 0.0625 * (max - d + 0.01)
	case particle.ExtinguishingSmothered:
		d -= 0.3 * d
	}

	if (store.CombustionState[idx] == particle.ExtinguishingConsumed ||
		store.CombustionState[idx] == particle.ExtinguishingSmothered) && d <= 0.02 {
		store.CombustionState[idx] = particle.NotBurning
		store.FlameDevelopment[idx] = 0
		store.MaxFlameDevelopment[idx] = 0
		store.Personality[idx] = 0
		return
	}
	store.FlameDevelopment[idx] = d
}

// compactBurningList drops every entry whose state is back to NotBurning.
func (s *Subsystem) compactBurningList() {
	store := s.store
	out := s.burningList[:0]
	for _, idx := range s.burningList {
		if store.CombustionState[idx].OnBurningList() {
			out = append(out, idx)
		}
	}
	s.burningList = out
}

// ResortBurningList re-sorts the burning list by plane-id. Callers invoke
// this after any bulk plane-id reassignment; ignition already keeps
// new insertions in order via resortBurningList.
func (s *Subsystem) ResortBurningList() { s.resortBurningList() }

func (s *Subsystem) resortBurningList() {
	store := s.store
	sort.SliceStable(s.burningList, func(i, j int) bool {
		return store.PlaneID[s.burningList[i]] < store.PlaneID[s.burningList[j]]
	})
}

// BurningList returns the current plane-id-ordered burning list, for
// rendering upload.
func (s *Subsystem) BurningList() []core.ParticleIndex { return s.burningList }
