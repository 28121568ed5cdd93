// Package mechanics drives the per-tick force accumulation, Verlet-like
// integration, and Gauss-Seidel spring relaxation over a particle.Store and
// mesh.Mesh.
package mechanics

// Params carries the tunable constants for one simulation step.
// Changing NMech or NRelax takes effect on the following step; Solver
// recomputes every particle's current mass and integration factor from
// WaterDensity and DT at the start of every sub-iteration, before force
// accumulation.
type Params struct {
	NMech int
	NRelax int

	Gravity        [2]float64
	Wind           [2]float64
	GlobalDamping  float64
	DT             float64

	BreakThresholdRelative float64

	WaterDensity float64
	OceanSurfaceY func(x float64) float64
}
