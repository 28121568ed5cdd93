package mesh

import (
	"shipbreaker/internal/core"
	"shipbreaker/internal/particle"
)

// Mesh is the spring/triangle topology over one particle.Store. It
// implements particle.MeshNotifier and particle.DetachHandler so the store
// can ask it to recompute coefficients or sever connectivity without
// importing this package.
type Mesh struct {
	store *particle.Store

	springs   []Spring
	triangles []Triangle

	nSprings   int
	nTriangles int

	coeff CoefficientParams

	onBreak func(core.SpringIndex)
}

// New wraps store with an empty topology, capacity-sized for maxSprings and
// maxTriangles (known once the ship image has been scanned).
func New(store *particle.Store, maxSprings, maxTriangles int, coeff CoefficientParams) *Mesh {
	return &Mesh{
		store:     store,
		springs:   make([]Spring, 0, maxSprings),
		triangles: make([]Triangle, 0, maxTriangles),
		coeff:     coeff,
	}
}

// SetBreakHandler wires the callback invoked when a spring is destroyed by
// over-strain.
func (m *Mesh) SetBreakHandler(f func(core.SpringIndex)) { m.onBreak = f }

// NSprings and NTriangles report the live topology size.
func (m *Mesh) NSprings() int   { return m.nSprings }
func (m *Mesh) NTriangles() int { return m.nTriangles }

// SpringCap and TriangleCap report the backing slice length, including
// destroyed entries — needed by callers that must walk raw indices in
// deterministic order (e.g. mechanics' Gauss-Seidel pass, which breaks
// strain ties by spring index).
func (m *Mesh) SpringCap() int   { return len(m.springs) }
func (m *Mesh) TriangleCap() int { return len(m.triangles) }

// Spring and Triangle return pointers into the backing slices by index.
func (m *Mesh) Spring(idx core.SpringIndex) *Spring     { return &m.springs[idx] }
func (m *Mesh) Triangle(idx core.TriangleIndex) *Triangle { return &m.triangles[idx] }

// AddSpring appends a new spring between a and b, registers it on both
// endpoints' connected-spring sets, and computes its initial coefficients.
func (m *Mesh) AddSpring(a, b core.ParticleIndex, restLength float64, matStiffness, matDamping, matStrength float64, isRope bool) core.SpringIndex {
	idx := core.SpringIndex(len(m.springs))
	m.springs = append(m.springs, Spring{
		EndpointA:         a,
		EndpointB:         b,
		RestLength:        restLength,
		MaterialStiffness: matStiffness,
		MaterialDamping:   matDamping,
		MaterialStrength:  matStrength,
		IsRope:            isRope,
	})
	m.nSprings++
	m.store.AddSpringRef(a, particle.SpringRef{Spring: idx, OtherEndpoint: b})
	m.store.AddSpringRef(b, particle.SpringRef{Spring: idx, OtherEndpoint: a})
	m.recomputeCoefficients(idx)
	return idx
}

// AddTriangle appends a new triangle over three vertices and their bounding
// springs, registering cross-references in both directions. The three
// springs must already exist and form a cycle over vertices.
func (m *Mesh) AddTriangle(vertices [3]core.ParticleIndex, springs [3]core.SpringIndex) core.TriangleIndex {
	idx := core.TriangleIndex(len(m.triangles))
	m.triangles = append(m.triangles, Triangle{Vertices: vertices, Springs: springs})
	m.nTriangles++
	for _, v := range vertices {
		m.store.AddTriangleRef(v, idx)
	}
	for _, sp := range springs {
		m.springs[sp].AddSuperTriangle(idx)
	}
	return idx
}

// recomputeCoefficients derives stiffness/damping/break-threshold from
// current endpoint mass.
func (m *Mesh) recomputeCoefficients(idx core.SpringIndex) {
	sp := &m.springs[idx]
	if sp.destroyed {
		return
	}
	massA := m.store.CurrentMass[sp.EndpointA]
	massB := m.store.CurrentMass[sp.EndpointB]
	reducedMass := reducedMass(massA, massB)

	step := m.coeff.Step
	if step <= 0 {
		step = 1
	}
	sp.StiffnessCoefficient = m.coeff.StiffnessAdjust * sp.MaterialStiffness * 2 * reducedMass / (step * step)
	sp.DampingCoefficient = sp.MaterialDamping * 2 * reducedMass / step
	sp.BreakThreshold = sp.MaterialStrength * m.coeff.StrengthAdjust * sp.RestLength
}

// reducedMass computes the two-body reduced mass 1/(1/a + 1/b), treating a
// non-positive mass (pinned-to-infinity convention) as an anchor.
func reducedMass(a, b float64) float64 {
	switch {
	case a <= 0 && b <= 0:
		return 0
	case a <= 0:
		return b
	case b <= 0:
		return a
	default:
		return (a * b) / (a + b)
	}
}

// SetCoefficientParams installs new stiffness/strength adjust constants (the
// live targets of the spring-stiffness-adjust and spring-strength-adjust
// smoothers) and recomputes every live spring's coefficients against them.
func (m *Mesh) SetCoefficientParams(c CoefficientParams) {
	m.coeff = c
	for i := range m.springs {
		m.recomputeCoefficients(core.SpringIndex(i))
	}
}

// CoefficientParams returns the currently installed stiffness/strength
// adjust constants.
func (m *Mesh) CoefficientParams() CoefficientParams { return m.coeff }

// NotifyMassChanged implements particle.MeshNotifier: recompute every spring
// touching idx.
func (m *Mesh) NotifyMassChanged(idx core.ParticleIndex) {
	for _, ref := range m.store.ConnectedSprings(idx) {
		m.recomputeCoefficients(ref.Spring)
	}
}

// SeverConnectivity implements particle.DetachHandler: destroy every spring
// (and transitively every triangle) touching idx.
func (m *Mesh) SeverConnectivity(idx core.ParticleIndex) {
	for _, ref := range append([]particle.SpringRef(nil), m.store.ConnectedSprings(idx)...) {
		m.DestroySpring(ref.Spring, false)
	}
}

// MarkForDestruction flags a spring as broken; actual
// removal happens at the next DestroyMarkedSprings call, a well-defined
// phase boundary.
func (m *Mesh) MarkForDestruction(idx core.SpringIndex) {
	sp := &m.springs[idx]
	if sp.destroyed {
		return
	}
	sp.toDestroy = true
}

// DestroyMarkedSprings removes every spring flagged by MarkForDestruction,
// firing the break handler for each.
func (m *Mesh) DestroyMarkedSprings() {
	for i := range m.springs {
		if m.springs[i].toDestroy && !m.springs[i].destroyed {
			m.DestroySpring(core.SpringIndex(i), true)
		}
	}
}

// DestroySpring removes a spring from both endpoints' connectivity and
// destroys any super-triangle whose edge just disappeared.
func (m *Mesh) DestroySpring(idx core.SpringIndex, fireEvent bool) {
	sp := &m.springs[idx]
	if sp.destroyed {
		return
	}
	sp.destroyed = true
	sp.toDestroy = false

	m.store.RemoveSpringRef(sp.EndpointA, idx)
	m.store.RemoveSpringRef(sp.EndpointB, idx)
	m.nSprings--

	for _, tri := range append([]core.TriangleIndex{}, sp.SuperTriangles[:sp.nSuperTriangles]...) {
		m.destroyTriangle(tri)
	}

	if fireEvent && m.onBreak != nil {
		m.onBreak(idx)
	}
}

func (m *Mesh) destroyTriangle(idx core.TriangleIndex) {
	tri := &m.triangles[idx]
	if tri.destroyed {
		return
	}
	tri.destroyed = true
	m.nTriangles--
	for _, v := range tri.Vertices {
		m.store.RemoveTriangleRef(v, idx)
	}
	for _, sp := range tri.Springs {
		m.springs[sp].RemoveSuperTriangle(idx)
	}
}

// RemapTriangles replaces the triangle slice with newOrder (a permutation of
// the old one) and fixes up every back-reference — spring.SuperTriangles and
// the particle store's per-vertex triangle sets — so indices stay valid
// after a reordering pass.
func (m *Mesh) RemapTriangles(newOrder []Triangle, oldToNew map[core.TriangleIndex]core.TriangleIndex) {
	remap := func(old core.TriangleIndex) core.TriangleIndex {
		if nu, ok := oldToNew[old]; ok {
			return nu
		}
		return old
	}
	for i := range m.springs {
		sp := &m.springs[i]
		for j := uint8(0); j < sp.nSuperTriangles; j++ {
			sp.SuperTriangles[j] = remap(sp.SuperTriangles[j])
		}
	}
	m.store.RemapTriangleIndices(remap)
	m.triangles = newOrder
}

// IsSpringLive and IsTriangleLive report destruction state, for iteration
// code that walks the raw backing slices.
func (m *Mesh) IsSpringLive(idx core.SpringIndex) bool     { return !m.springs[idx].destroyed }
func (m *Mesh) IsTriangleLive(idx core.TriangleIndex) bool { return !m.triangles[idx].destroyed }
