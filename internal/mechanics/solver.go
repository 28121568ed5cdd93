package mechanics

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/particle"
)

// Solver runs the mechanical sub-iteration loop over one particle.Store and
// mesh.Mesh.
type Solver struct {
	store *particle.Store
	mesh  *mesh.Mesh

	externalForceX, externalForceY []float64

	workers int
}

// New builds a Solver with a force-accumulation worker pool sized to
// workers (0 or negative runs force accumulation serially on the calling
// goroutine, the same as 1).
func New(store *particle.Store, m *mesh.Mesh, workers int) *Solver {
	n := store.N()
	return &Solver{
		store:          store,
		mesh:           m,
		externalForceX: make([]float64, n),
		externalForceY: make([]float64, n),
		workers:        workers,
	}
}

// ApplyExternalForce accumulates a force contribution (draw-to, swirl-at,
// explosion) that the next Step call's force-accumulation phase will fold
// in, then clear.
func (s *Solver) ApplyExternalForce(idx core.ParticleIndex, fx, fy float64) {
	s.externalForceX[idx] += fx
	s.externalForceY[idx] += fy
}

// Step runs p.NMech mechanical sub-iterations, each starting with a
// particle.Store.UpdateMasses pass that uses p.DT² as the integration time
// coefficient. Springs destroyed in a sub-iteration go through mesh.Mesh's
// own break handler; water, decay, and sparkle reactions to breaks are the
// caller's responsibility, wired through mesh.SetBreakHandler before
// calling Step.
func (s *Solver) Step(ctx context.Context, p Params) error {
	for sub := 0; sub < p.NMech; sub++ {
		s.store.UpdateMasses(particle.MassParams{WaterDensity: p.WaterDensity, IntegrationTimeCoefficient: p.DT * p.DT})
		if err := s.accumulateForces(ctx, p); err != nil {
			return err
		}
		s.integrate(p)
		for relax := 0; relax < p.NRelax; relax++ {
			s.relaxSprings(p)
		}
		s.mesh.DestroyMarkedSprings()
	}
	return nil
}

// accumulateForces computes gravity, wind, buoyancy, and external forces for
// every live particle, parallelized across a worker pool.
func (s *Solver) accumulateForces(ctx context.Context, p Params) error {
	n := s.store.N()
	workers := s.workers
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		s.accumulateRange(0, n, p)
		return nil
	}

	chunk := (n + workers - 1) / workers
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			s.accumulateRange(start, end, p)
			return nil
		})
	}
	return g.Wait()
}

func (s *Solver) accumulateRange(start, end int, p Params) {
	store := s.store
	for i := start; i < end; i++ {
		idx := core.ParticleIndex(i)
		if !store.IsLive(idx) {
			continue
		}
		mass := store.CurrentMass[i]
		fx := p.Gravity[0] * mass
		fy := p.Gravity[1] * mass

		var mat *material.Material
		if store.IsShip(idx) {
			mat = store.StructuralMaterial[i]
		}
		if mat != nil {
			fx += p.Wind[0] * mat.Structural.WindReceptivity
			fy += p.Wind[1] * mat.Structural.WindReceptivity

			if p.OceanSurfaceY != nil {
				surfaceY := p.OceanSurfaceY(store.PosX[i])
				submerged := store.PosY[i] < surfaceY
				fill := mat.Structural.WaterVolumeFill
				buoy := fill * p.WaterDensity * (-p.Gravity[1])
				if submerged {
					fy += buoy
				}
			}
		}

		fx += s.externalForceX[i]
		fy += s.externalForceY[i]
		s.externalForceX[i] = 0
		s.externalForceY[i] = 0

		store.ForceX[i] = fx
		store.ForceY[i] = fy
	}
}

// integrate applies the Verlet-like position/velocity update to every live
// particle.
func (s *Solver) integrate(p Params) {
	store := s.store
	dt := p.DT
	if dt <= 0 {
		return
	}
	for i := 0; i < store.N(); i++ {
		idx := core.ParticleIndex(i)
		if !store.IsLive(idx) || store.IsPinned[i] {
			continue
		}
		oldX, oldY := store.PosX[i], store.PosY[i]
		newX := oldX + store.VelX[i]*dt + store.ForceX[i]*store.IntegrationFactor[i]
		newY := oldY + store.VelY[i]*dt + store.ForceY[i]*store.IntegrationFactor[i]
		store.PosX[i] = newX
		store.PosY[i] = newY
		store.VelX[i] = (newX - oldX) / dt * (1 - p.GlobalDamping)
		store.VelY[i] = (newY - oldY) / dt * (1 - p.GlobalDamping)
	}
}

// relaxSprings performs one Gauss-Seidel pass over every live spring,
// enqueueing over-strained springs for destruction rather than mutating
// them mid-pass.
func (s *Solver) relaxSprings(p Params) {
	store := s.store
	m := s.mesh

	// Springs are walked by ascending index regardless of destruction so
	// strain ties break by spring index, matching the deterministic
	// ordering the step describes.
	for i := 0; i < m.SpringCap(); i++ {
		if !m.IsSpringLive(core.SpringIndex(i)) {
			continue
		}
		sp := m.Spring(core.SpringIndex(i))
		a, b := sp.EndpointA, sp.EndpointB

		dx := store.PosX[b] - store.PosX[a]
		dy := store.PosY[b] - store.PosY[a]
		length := math.Hypot(dx, dy)
		if length < 1e-9 {
			continue
		}
		strain := (length - sp.RestLength) / sp.RestLength
		if math.Abs(strain) > p.BreakThresholdRelative {
			m.MarkForDestruction(core.SpringIndex(i))
			continue
		}

		massA, massB := effectiveMass(store, a), effectiveMass(store, b)
		totalMass := massA + massB
		if totalMass <= 0 {
			continue
		}
		ratioA := massB / totalMass
		ratioB := massA / totalMass

		correction := (length - sp.RestLength) / length * 0.5
		cx, cy := dx*correction, dy*correction

		if !store.IsPinned[a] {
			store.PosX[a] += cx * ratioA
			store.PosY[a] += cy * ratioA
		}
		if !store.IsPinned[b] {
			store.PosX[b] -= cx * ratioB
			store.PosY[b] -= cy * ratioB
		}

		// Damping: project relative velocity onto d/len, subtract a
		// fraction of it from both endpoints (opposite signs).
		dvx := store.VelX[b] - store.VelX[a]
		dvy := store.VelY[b] - store.VelY[a]
		nx, ny := dx/length, dy/length
		proj := (dvx*nx + dvy*ny) * sp.DampingCoefficient
		if !store.IsPinned[a] {
			store.VelX[a] += proj * nx * ratioA
			store.VelY[a] += proj * ny * ratioA
		}
		if !store.IsPinned[b] {
			store.VelX[b] -= proj * nx * ratioB
			store.VelY[b] -= proj * ny * ratioB
		}
	}
}

// effectiveMass treats a pinned particle as infinitely massive, approximated
// with a very large finite value so ratios stay computable.
func effectiveMass(store *particle.Store, idx core.ParticleIndex) float64 {
	if store.IsPinned[idx] {
		return 1e18
	}
	m := store.CurrentMass[idx]
	if m <= 0 {
		return 1e18
	}
	return m
}

