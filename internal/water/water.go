// Package water implements the intake, diffusion, and momentum phases that
// move water through a ship's particle mesh.
package water

import (
	"math"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/particle"
)

// AirBubbleThreshold is the cumulated-intaken-water level that spawns one
// air-bubble ephemeral and resets the accumulator.
const AirBubbleThreshold = 1.0

// Params carries the tunable constants for one tick's water phases.
type Params struct {
	DT              float64
	WaterRestitution float64
	OceanSurfaceY   func(x float64) float64
	EphemeralMaxLifetime float64
}

// Subsystem runs the water phases over a particle.Store and mesh.Mesh.
type Subsystem struct {
	store *particle.Store
	mesh  *mesh.Mesh
	rng   *core.RNG
}

// New builds a water Subsystem.
func New(store *particle.Store, m *mesh.Mesh, rng *core.RNG) *Subsystem {
	return &Subsystem{store: store, mesh: m, rng: rng}
}

// Step runs intake, diffusion, and momentum update in order.
func (s *Subsystem) Step(p Params) {
	s.intake(p)
	s.diffuse(p)
	s.updateMomentum(p)
}

// intake accumulates water into leaking, submerged particles, spawning an
// air-bubble ephemeral each time the threshold is crossed.
func (s *Subsystem) intake(p Params) {
	store := s.store
	if p.OceanSurfaceY == nil {
		return
	}
	for i := 0; i < store.NShip(); i++ {
		if !store.IsLeaking[i] {
			continue
		}
		mat := store.StructuralMaterial[i]
		if mat == nil || mat.Structural.WaterIntake <= 0 {
			continue
		}
		surfaceY := p.OceanSurfaceY(store.PosX[i])
		if store.PosY[i] >= surfaceY {
			continue // above the surface, not submerged
		}
		store.CumulatedIntakenWater[i] += mat.Structural.WaterIntake * p.DT
		if store.CumulatedIntakenWater[i] < AirBubbleThreshold {
			continue
		}
		store.CumulatedIntakenWater[i] -= AirBubbleThreshold
		store.CumulatedIntakenWater[i] += s.rng.Float64Range(0, AirBubbleThreshold*0.1)

		fill := mat.Structural.WaterVolumeFill
		if store.Water[i] < fill {
			store.Water[i] += mat.Structural.WaterIntake
			if store.Water[i] > fill {
				store.Water[i] = fill
			}
		}
		_, _ = store.CreateEphemeral(particle.EphemeralParams{
			Kind:        particle.KindAirBubble,
			PosX:        store.PosX[i],
			PosY:        store.PosY[i],
			MaxLifetime: p.EphemeralMaxLifetime,
		}, false)
	}
}

// diffuse exchanges water between spring-connected particles proportional to
// the relative fill-fraction difference.
func (s *Subsystem) diffuse(p Params) {
	store := s.store
	m := s.mesh
	for i := 0; i < m.SpringCap(); i++ {
		if !m.IsSpringLive(core.SpringIndex(i)) {
			continue
		}
		sp := m.Spring(core.SpringIndex(i))
		a, b := sp.EndpointA, sp.EndpointB
		matA, matB := materialOf(store, a), materialOf(store, b)
		if matA == nil || matB == nil {
			continue
		}
		fillA, fillB := matA.Structural.WaterVolumeFill, matB.Structural.WaterVolumeFill
		if fillA <= 0 || fillB <= 0 {
			continue
		}
		diffusionSpeed := math.Min(matA.Structural.WaterDiffusionSpeed, matB.Structural.WaterDiffusionSpeed)
		if diffusionSpeed <= 0 {
			continue
		}
		fracA := store.Water[a] / fillA
		fracB := store.Water[b] / fillB
		flow := (fracA - fracB) * diffusionSpeed * p.DT

		if flow > 0 {
			flow = math.Min(flow, store.Water[a])
			flow = math.Min(flow, fillB-store.Water[b])
		} else {
			flow = math.Max(flow, -store.Water[b])
			flow = math.Max(flow, -(fillA - store.Water[a]))
		}
		if flow == 0 {
			continue
		}
		store.Water[a] -= flow
		store.Water[b] += flow
	}
}

// updateMomentum advects water velocity with particle velocity under a
// retention factor, and reports momentum for rendering of flow lines.
// Momentum itself is derivable as water_mass * water_velocity, so it
// is not stored separately.
func (s *Subsystem) updateMomentum(p Params) {
	store := s.store
	retention := 1 - p.WaterRestitution
	for i := 0; i < store.NShip(); i++ {
		if store.Water[i] <= 0 {
			store.WaterVelX[i] = 0
			store.WaterVelY[i] = 0
			continue
		}
		store.WaterVelX[i] = (store.WaterVelX[i] + store.VelX[i]) * 0.5 * retention
		store.WaterVelY[i] = (store.WaterVelY[i] + store.VelY[i]) * 0.5 * retention
	}
}

// Momentum returns the water momentum vector for idx (water_mass *
// water_velocity), exposed for flow-line rendering.
func (s *Subsystem) Momentum(idx core.ParticleIndex) (float64, float64) {
	store := s.store
	waterMass := store.Water[idx] // unit water density assumed at the render layer
	return waterMass * store.WaterVelX[idx], waterMass * store.WaterVelY[idx]
}

func materialOf(store *particle.Store, idx core.ParticleIndex) *material.Material {
	if !store.IsShip(idx) {
		return nil
	}
	return store.StructuralMaterial[idx]
}
