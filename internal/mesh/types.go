// Package mesh owns spring and triangle topology over a particle.Store: the
// graph connecting mass points, and the per-spring coefficients derived from
// endpoint material and mass.
package mesh

import "shipbreaker/internal/core"

// Spring connects two particles with a rest length and material-derived
// coefficients, recomputed whenever an endpoint's mass changes.
type Spring struct {
	EndpointA, EndpointB core.ParticleIndex
	RestLength           float64

	MaterialStiffness float64
	MaterialDamping   float64
	MaterialStrength  float64

	StiffnessCoefficient float64
	DampingCoefficient   float64
	BreakThreshold       float64

	IsRope bool

	// SuperTriangles lists the (at most two) triangles using this spring as
	// an edge.
	SuperTriangles [2]core.TriangleIndex
	nSuperTriangles uint8

	toDestroy bool
	destroyed bool
}

// AddSuperTriangle registers tri as using this spring as an edge.
func (s *Spring) AddSuperTriangle(tri core.TriangleIndex) {
	if s.nSuperTriangles >= 2 {
		core.PanicInvariant("spring already has 2 super-triangles")
	}
	s.SuperTriangles[s.nSuperTriangles] = tri
	s.nSuperTriangles++
}

// RemoveSuperTriangle unregisters tri, if present.
func (s *Spring) RemoveSuperTriangle(tri core.TriangleIndex) {
	for i := uint8(0); i < s.nSuperTriangles; i++ {
		if s.SuperTriangles[i] == tri {
			s.SuperTriangles[i] = s.SuperTriangles[s.nSuperTriangles-1]
			s.nSuperTriangles--
			return
		}
	}
}

// SuperTriangleList returns the live super-triangles of this spring.
func (s *Spring) SuperTriangleList() []core.TriangleIndex {
	return s.SuperTriangles[:s.nSuperTriangles]
}

// Triangle is a mesh face bounded by three springs (its sub-springs), each
// spring shared with at most one other triangle.
type Triangle struct {
	Vertices [3]core.ParticleIndex
	Springs  [3]core.SpringIndex

	destroyed bool
}

// CoefficientParams carries the simulation constants needed to derive a
// spring's stiffness/damping/break-threshold coefficients.
type CoefficientParams struct {
	StiffnessAdjust float64
	StrengthAdjust  float64
	Step            float64
}
