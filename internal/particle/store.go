package particle

import (
	"errors"
	"image/color"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
)

// ErrConstructionFinished is returned by AddShipParticle once the store has
// left the ship-construction phase.
var ErrConstructionFinished = errors.New("particle store: ship construction already finished")

// ErrPoolExhausted is returned by CreateEphemeral when force is false and no
// slot is free.
var ErrPoolExhausted = errors.New("particle store: ephemeral pool exhausted")

// springSet and triangleSet are fixed-capacity, append/remove-in-place sets
// of spring or triangle references.
type springSet struct {
	refs [MaxConnectedSprings]SpringRef
	n    uint8
}

type triangleSet struct {
	refs [MaxConnectedTriangles]core.TriangleIndex
	n    uint8
}

// Store is the struct-of-arrays particle container. Index space
// is partitioned [0, nShip) ship particles, [nShip, n) ephemeral slots.
type Store struct {
	nShip int
	n     int

	constructing bool

	rng *core.RNG

	// Kinematics.
	PosX, PosY     []float64
	VelX, VelY     []float64
	ForceX, ForceY []float64

	AugmentedMass     []float64
	CurrentMass       []float64
	IntegrationFactor []float64

	Decay       []float64
	Temperature []float64

	// Water. Store owns these rather than the water subsystem because
	// current-mass depends on water content.
	Water                 []float64
	WaterVelX, WaterVelY  []float64
	CumulatedIntakenWater []float64
	IsLeaking             []bool

	IsPinned []bool

	StructuralMaterial []*material.Material
	ElectricalMaterial []*material.Material

	Color      []color.RGBA
	TexCoordX  []float64
	TexCoordY  []float64
	PlaneID    []int32
	ComponentID []int32

	ColorDirty bool
	PlaneDirty bool

	Light []float64

	// Combustion. The combustion subsystem mutates these; Store owns the
	// backing arrays alongside position/velocity/mass/water/temperature/decay.
	CombustionState     []CombustionPhase
	FlameDevelopment    []float64
	Personality         []float64
	MaxFlameDevelopment []float64

	// Ephemeral-only state.
	EphemeralKind         []EphemeralKind
	EphemeralStartTime    []float64
	EphemeralMaxLifetime  []float64
	EphemeralSubstate     []float64
	EphemeralAux          []float64
	ephemeralSearchStart  int

	connSprings   []springSet
	connTriangles []triangleSet

	isShipRope []bool

	onDetach  func(idx core.ParticleIndex)
	onDestroy func(idx core.ParticleIndex)
}

// NewStore allocates a Store with capacity for nShip ship particles plus
// nEphemeral ephemeral slots.
func NewStore(nShip, nEphemeral int, rng *core.RNG) *Store {
	n := nShip + nEphemeral
	s := &Store{
		nShip:        nShip,
		n:            n,
		constructing: true,
		rng:          rng,

		PosX: make([]float64, n), PosY: make([]float64, n),
		VelX: make([]float64, n), VelY: make([]float64, n),
		ForceX: make([]float64, n), ForceY: make([]float64, n),

		AugmentedMass:     make([]float64, n),
		CurrentMass:       make([]float64, n),
		IntegrationFactor: make([]float64, n),

		Decay:       make([]float64, n),
		Temperature: make([]float64, n),

		Water:                 make([]float64, n),
		WaterVelX:             make([]float64, n),
		WaterVelY:             make([]float64, n),
		CumulatedIntakenWater: make([]float64, n),
		IsLeaking:             make([]bool, n),

		IsPinned: make([]bool, n),

		StructuralMaterial: make([]*material.Material, n),
		ElectricalMaterial: make([]*material.Material, n),

		Color:       make([]color.RGBA, n),
		TexCoordX:   make([]float64, n),
		TexCoordY:   make([]float64, n),
		PlaneID:     make([]int32, n),
		ComponentID: make([]int32, n),

		Light: make([]float64, n),

		CombustionState:     make([]CombustionPhase, n),
		FlameDevelopment:    make([]float64, n),
		Personality:         make([]float64, n),
		MaxFlameDevelopment: make([]float64, n),

		EphemeralKind:        make([]EphemeralKind, n),
		EphemeralStartTime:   make([]float64, n),
		EphemeralMaxLifetime: make([]float64, n),
		EphemeralSubstate:    make([]float64, n),
		EphemeralAux:         make([]float64, n),
		ephemeralSearchStart: nShip,

		connSprings:   make([]springSet, n),
		connTriangles: make([]triangleSet, n),
		isShipRope:    make([]bool, n),
	}
	for i := 0; i < n; i++ {
		s.Temperature[i] = 293.15
	}
	return s
}

// NShip returns the number of ship particles.
func (s *Store) NShip() int { return s.nShip }

// N returns the total particle count (ship + ephemeral).
func (s *Store) N() int { return s.n }

// IsShip reports whether idx lives in the ship partition.
func (s *Store) IsShip(idx core.ParticleIndex) bool {
	return int(idx) >= 0 && int(idx) < s.nShip
}

// IsLive reports whether idx currently denotes a live particle: ship
// particles are always live (detachment is logical, never deallocation);
// ephemeral slots are live iff they hold a kind other than KindNone.
func (s *Store) IsLive(idx core.ParticleIndex) bool {
	i := int(idx)
	if i < 0 || i >= s.n {
		return false
	}
	if i < s.nShip {
		return true
	}
	return s.EphemeralKind[i] != KindNone
}

// SetDetachHandlers wires the callbacks invoked by Detach/DestroyEphemeral.
// World wires these to its event-aggregation logic; nil callbacks are valid
// no-ops, since the core never suspends on I/O or fails a tick because a
// host didn't subscribe.
func (s *Store) SetDetachHandlers(onDetach, onDestroy func(core.ParticleIndex)) {
	s.onDetach = onDetach
	s.onDestroy = onDestroy
}

// AddShipParticle fills ship particle slot idx from mat and the given
// position and flags. Precondition: the store must still be in its ship-construction phase
//; call FinishConstruction once the ship mesh is fully built.
func (s *Store) AddShipParticle(idx core.ParticleIndex, mat *material.Material, posX, posY float64, isRope, isLeaking bool) error {
	if !s.constructing {
		return ErrConstructionFinished
	}
	i := int(idx)
	if i < 0 || i >= s.nShip {
		core.PanicInvariant("ship particle index %d out of range [0, %d)", i, s.nShip)
	}
	s.PosX[i], s.PosY[i] = posX, posY
	s.StructuralMaterial[i] = mat
	s.AugmentedMass[i] = mat.Structural.Mass
	s.CurrentMass[i] = mat.Structural.Mass
	s.Color[i] = mat.Structural.RenderColor
	s.isShipRope[i] = isRope
	s.IsLeaking[i] = isLeaking
	if isLeaking {
		s.CumulatedIntakenWater[i] = s.rng.Float64Range(0, airBubbleThreshold*0.5)
	}
	return nil
}

// FinishConstruction ends the ship-construction phase; after this,
// AddShipParticle fails. Marks the color buffer dirty so its first render
// upload happens once construction has filled every particle's Color.
func (s *Store) FinishConstruction() {
	s.constructing = false
	s.ColorDirty = true
}

// IsRope reports whether idx was created as part of a rope chain.
func (s *Store) IsRope(idx core.ParticleIndex) bool { return s.isShipRope[idx] }

// MeshNotifier is implemented by internal/mesh so AugmentMass can ask the
// mesh to recompute the mass-dependent spring coefficients for one particle,
// without particle importing mesh (dependency direction runs mesh →
// particle, never the reverse).
type MeshNotifier interface {
	NotifyMassChanged(idx core.ParticleIndex)
}

// AugmentMass adds a transient mass offset (used by pinning weights etc.)
// and asks mesh to recompute every spring attached to idx.
func (s *Store) AugmentMass(idx core.ParticleIndex, offset float64, mesh MeshNotifier) {
	s.AugmentedMass[idx] += offset
	s.CurrentMass[idx] += offset
	if mesh != nil {
		mesh.NotifyMassChanged(idx)
	}
}

// MassParams controls UpdateMasses' water→mass conversion:
// current_mass = augmented + min(water, fill) * water_density.
type MassParams struct {
	WaterDensity               float64
	IntegrationTimeCoefficient float64
}

// UpdateMasses recomputes current mass and the integration factor for every
// live particle. Must run before force accumulation each tick.
func (s *Store) UpdateMasses(p MassParams) {
	for i := 0; i < s.n; i++ {
		if !s.IsLive(core.ParticleIndex(i)) {
			continue
		}
		mat := s.StructuralMaterial[i]
		fill := 0.0
		if mat != nil {
			fill = mat.Structural.WaterVolumeFill
		}
		w := s.Water[i]
		if w > fill {
			w = fill
		}
		mass := s.AugmentedMass[i] + w*p.WaterDensity
		s.CurrentMass[i] = mass
		if s.IsPinned[i] || mass <= 0 {
			s.IntegrationFactor[i] = 0
			continue
		}
		s.IntegrationFactor[i] = p.IntegrationTimeCoefficient / mass
	}
}

// Detach severs idx's connectivity (via the registered mesh handler) and,
// unless the particle is pinned, overwrites its velocity.
// Detachment for ship particles is logical: the particle stays live, often
// as an orphan.
func (s *Store) Detach(idx core.ParticleIndex, meshHandler DetachHandler, velX, velY float64, opts DetachOptions) {
	if meshHandler != nil {
		meshHandler.SeverConnectivity(idx)
	}
	if !s.IsPinned[idx] {
		s.VelX[idx] = velX
		s.VelY[idx] = velY
	}
	if opts.GenerateDebris {
		s.GenerateDebris(idx, opts.Now, opts.MaxLifetime)
	}
	if opts.FireEvent && s.onDetach != nil {
		s.onDetach(idx)
	}
}

// DetachHandler is implemented by internal/mesh: severing a particle's
// connectivity is a mesh-graph operation, so Store only holds the reference
// to ask for it (same non-cyclic-dependency shape as MeshNotifier).
type DetachHandler interface {
	SeverConnectivity(idx core.ParticleIndex)
}

// DetachOptions controls Detach's side effects.
type DetachOptions struct {
	GenerateDebris bool
	Now            float64
	MaxLifetime    float64
	FireEvent      bool
}

// ConnectedSprings returns the live spring references attached to idx.
func (s *Store) ConnectedSprings(idx core.ParticleIndex) []SpringRef {
	set := &s.connSprings[idx]
	return set.refs[:set.n]
}

// ConnectedTriangles returns the live triangle references attached to idx.
func (s *Store) ConnectedTriangles(idx core.ParticleIndex) []core.TriangleIndex {
	set := &s.connTriangles[idx]
	return set.refs[:set.n]
}

// AddSpringRef registers a spring as attached to idx.
func (s *Store) AddSpringRef(idx core.ParticleIndex, ref SpringRef) {
	set := &s.connSprings[idx]
	if int(set.n) >= MaxConnectedSprings {
		core.PanicInvariant("particle %d exceeds MaxConnectedSprings", idx)
	}
	set.refs[set.n] = ref
	set.n++
}

// RemoveSpringRef unregisters the spring identified by springIdx from idx,
// compacting the set in place. No-op if not present.
func (s *Store) RemoveSpringRef(idx core.ParticleIndex, springIdx core.SpringIndex) {
	set := &s.connSprings[idx]
	for i := uint8(0); i < set.n; i++ {
		if set.refs[i].Spring == springIdx {
			set.refs[i] = set.refs[set.n-1]
			set.n--
			return
		}
	}
}

// AddTriangleRef registers a triangle as bordering idx.
func (s *Store) AddTriangleRef(idx core.ParticleIndex, tri core.TriangleIndex) {
	set := &s.connTriangles[idx]
	if int(set.n) >= MaxConnectedTriangles {
		core.PanicInvariant("particle %d exceeds MaxConnectedTriangles", idx)
	}
	set.refs[set.n] = tri
	set.n++
}

// RemoveTriangleRef unregisters tri from idx's triangle set, if present.
func (s *Store) RemoveTriangleRef(idx core.ParticleIndex, tri core.TriangleIndex) {
	set := &s.connTriangles[idx]
	for i := uint8(0); i < set.n; i++ {
		if set.refs[i] == tri {
			set.refs[i] = set.refs[set.n-1]
			set.n--
			return
		}
	}
}

// RemapTriangleIndices rewrites every particle's triangle-connectivity set
// through remap, used by internal/mesh after a reordering pass changes
// which slice position each triangle lives at.
func (s *Store) RemapTriangleIndices(remap func(core.TriangleIndex) core.TriangleIndex) {
	for i := range s.connTriangles {
		set := &s.connTriangles[i]
		for j := uint8(0); j < set.n; j++ {
			set.refs[j] = remap(set.refs[j])
		}
	}
}

// airBubbleThreshold is the cumulated-intaken-water level that spawns one
// air-bubble ephemeral; lives here because AddShipParticle's
// randomized initial offset needs it and internal/water imports this
// package, not the reverse.
const airBubbleThreshold = 1.0
