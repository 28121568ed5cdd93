// Package world owns the tick scheduler that orders every subsystem update
// inside one simulation step, plus pause semantics and parameter smoothing.
package world

import (
	"shipbreaker/internal/combustion"
	"shipbreaker/internal/mechanics"
	"shipbreaker/internal/ocean"
	"shipbreaker/internal/water"
)

// Config bundles every tunable a World needs at construction time. Most
// fields map directly onto a subsystem's own Params; World recomputes the
// derived per-substep values (e.g. mechanics DT) on every Step call.
type Config struct {
	NShip, NEphemeral int
	MaxSprings, MaxTriangles int

	Gravity [2]float64
	Wind    [2]float64

	NMech, NRelax int
	GlobalDamping float64
	BreakThresholdRelative float64
	WaterDensity float64

	WaterRestitution float64
	EphemeralMaxLifetime float64
	VortexAmplitude, VortexFrequency float64

	Combustion combustion.Params

	OceanInteriorCells int
	OceanGhostCells    int
	OceanRestHeight    float64
	Ocean              ocean.Params
	OceanOriginX       float64 // world x of ocean cell GhostCells (the first interior cell)

	// CombustionStride/CombustionOffset spread the low-frequency combustion
	// pass (decay/extinguish scan) round-robin across ticks so it never runs
	// for every particle on every tick; Offset lets multiple worlds (tests)
	// desynchronize deterministically.
	CombustionStride, CombustionOffset int

	Workers int

	Seed int64
}

func (c Config) mechanicsParams(dt float64, oceanSurfaceY func(float64) float64) mechanics.Params {
	sub := dt
	if c.NMech > 0 {
		sub = dt / float64(c.NMech)
	}
	return mechanics.Params{
		NMech:                  c.NMech,
		NRelax:                 c.NRelax,
		Gravity:                c.Gravity,
		Wind:                   c.Wind,
		GlobalDamping:          c.GlobalDamping,
		DT:                     sub,
		BreakThresholdRelative: c.BreakThresholdRelative,
		WaterDensity:           c.WaterDensity,
		OceanSurfaceY:          oceanSurfaceY,
	}
}

func (c Config) waterParams(dt float64, oceanSurfaceY func(float64) float64) water.Params {
	return water.Params{
		DT:                   dt,
		WaterRestitution:     c.WaterRestitution,
		OceanSurfaceY:        oceanSurfaceY,
		EphemeralMaxLifetime: c.EphemeralMaxLifetime,
	}
}

func (c Config) oceanParams(dt float64) ocean.Params {
	p := c.Ocean
	p.DT = dt
	p.RestHeight = c.OceanRestHeight
	p.GhostCells = c.OceanGhostCells
	return p
}
