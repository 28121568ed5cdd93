package world

import (
	"context"
	"log"

	"shipbreaker/internal/combustion"
	"shipbreaker/internal/core"
	"shipbreaker/internal/electrical"
	"shipbreaker/internal/event"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mechanics"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/ocean"
	"shipbreaker/internal/particle"
	"shipbreaker/internal/water"
)

// World orders every subsystem update inside one simulation step (Step),
// owns pause semantics, and is the single place that wires cross-subsystem
// reactions (a spring breaking leaks water and spawns debris; electrical
// power follows mechanical connectivity) that no individual subsystem
// package is allowed to know about the others.
type World struct {
	cfg   Config
	clock *core.Clock
	rng   *core.RNG

	store *particle.Store
	mesh  *mesh.Mesh

	solver     *mechanics.Solver
	waterSub   *water.Subsystem
	combustion *combustion.Subsystem
	oceanSurf  *ocean.Surface
	electrical *electrical.Network

	queue event.Queue

	smoothers []*core.Smoother

	tick int64

	topologyDirty bool
	breakCounts   map[breakKey]int

	wasBurning bool

	Stats Stats

	paused bool

	// Dispatcher receives the flushed event batch at the end of every Step;
	// nil means events are discarded after being generated, which is fine
	// for headless tests that only inspect Store/Mesh state directly.
	Dispatcher event.Dispatcher
}

type breakKey struct {
	material   string
	underwater bool
}

// New builds a World over a freshly constructed ship (store+mesh), wiring
// every subsystem and the break/detach reaction handlers between them.
func New(cfg Config, store *particle.Store, m *mesh.Mesh) *World {
	rng := core.NewRNG(cfg.Seed)
	w := &World{
		cfg:         cfg,
		clock:       core.NewClock(),
		rng:         rng,
		store:       store,
		mesh:        m,
		solver:      mechanics.New(store, m, cfg.Workers),
		waterSub:    water.New(store, m, rng),
		combustion:  combustion.New(store, m, rng),
		oceanSurf:   ocean.New(cfg.OceanInteriorCells, cfg.OceanGhostCells, cfg.OceanRestHeight),
		breakCounts: make(map[breakKey]int),
	}
	w.electrical = electrical.New(&w.queue, func(idx core.ParticleIndex) int32 { return store.ComponentID[idx] })

	store.SetDetachHandlers(w.onDetach, w.onDestroyEphemeral)
	m.SetBreakHandler(w.onSpringBreak)
	m.RecomputeComponents()

	return w
}

// InstallSmoother registers a parameter smoother (spring stiffness/strength
// adjust, sea depth, flame-size adjust, camera pan, zoom, ...) to be
// advanced every tick regardless of pause state. The controller façade owns
// the Smoother instances; World only drives them.
func (w *World) InstallSmoother(s *core.Smoother) { w.smoothers = append(w.smoothers, s) }

// Store, Mesh, Ocean, Electrical, Solver, Water, Combustion expose the
// owned subsystems read-only to controller/render/telemetry code that needs
// to act on them between ticks.
func (w *World) Store() *particle.Store         { return w.store }
func (w *World) Mesh() *mesh.Mesh               { return w.mesh }
func (w *World) Ocean() *ocean.Surface          { return w.oceanSurf }
func (w *World) Electrical() *electrical.Network { return w.electrical }
func (w *World) Solver() *mechanics.Solver       { return w.solver }
func (w *World) Water() *water.Subsystem        { return w.waterSub }
func (w *World) Combustion() *combustion.Subsystem { return w.combustion }
func (w *World) Clock() *core.Clock             { return w.clock }
func (w *World) Now() float64                   { return w.clock.Now() }
func (w *World) RNG() *core.RNG                 { return w.rng }

// SetPaused freezes or resumes the simulation clock; Step still runs
// smoothers and flushes events while paused.
func (w *World) SetPaused(paused bool) { w.paused = paused }
func (w *World) Paused() bool          { return w.paused }

// oceanSurfaceY maps a world x-coordinate to the ocean surface height at
// that point, the shared closure mechanics and water need for buoyancy and
// leak checks.
func (w *World) oceanSurfaceY(x float64) float64 {
	return w.oceanSurf.HeightAt(w.OceanCellForX(x))
}

// OceanCellForX resolves a world x-coordinate to its ocean surface cell
// index, the same mapping oceanSurfaceY uses internally. Exposed so the
// controller façade can target a specific cell for position-based ocean
// tools (adjust_ocean_surface_to/adjust_ocean_floor_to) without duplicating
// the ghost-cell/origin arithmetic.
func (w *World) OceanCellForX(x float64) int {
	dx := w.cfg.Ocean.DX
	if dx <= 0 {
		dx = 1
	}
	return w.cfg.OceanGhostCells + int((x-w.cfg.OceanOriginX)/dx)
}

// Step advances the simulation by dt seconds, unless paused, in the fixed
// seven-phase order: parameter smoothers, ocean, mechanics, water,
// heat/combustion/electrical, ephemerals, then an end-of-tick event flush.
func (w *World) Step(ctx context.Context, dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			inv, ok := r.(*core.InvariantError)
			if !ok {
				panic(r)
			}
			log.Printf("world: tick %d aborted: %v", w.tick, inv)
			err = inv
		}
	}()

	w.tick++

	// Phase 1: parameter smoothers run even while paused.
	for _, s := range w.smoothers {
		s.Update(dt)
	}

	if w.paused {
		w.queue.Flush(event.DispatcherFunc(w.dispatcher))
		return nil
	}

	w.clock.Advance(dt)
	now := w.clock.Now()

	// Phase 2: ocean surface.
	w.oceanSurf.Step(w.cfg.oceanParams(dt))

	// Phase 3: mechanical solver sub-iterations.
	mp := w.cfg.mechanicsParams(dt, w.oceanSurfaceY)
	if err := w.solver.Step(ctx, mp); err != nil {
		return err
	}
	if w.topologyDirty {
		w.mesh.RecomputeComponents()
		w.topologyDirty = false
		w.flushBreakEvents()
	}

	// Phase 4: water intake + diffusion.
	w.waterSub.Step(w.cfg.waterParams(dt, w.oceanSurfaceY))

	// Phase 5: heat & combustion (high-frequency every tick, low-frequency
	// round-robin every CombustionStride-th tick) plus electrical, which
	// reacts to the same per-tick particle/connectivity state.
	if w.combustionDue() {
		w.combustion.LowFrequencyStep(w.cfg.Combustion)
	}
	nowBurning := w.combustion.LiveBurning() > 0
	if nowBurning && !w.wasBurning {
		w.queue.Push(event.CombustionBegin())
	}
	w.combustion.HighFrequencyStep(w.cfg.Combustion)
	if !nowBurning && w.wasBurning {
		w.queue.Push(event.CombustionEnd())
	}
	w.wasBurning = w.combustion.LiveBurning() > 0

	if len(w.electrical.Elements()) > 0 {
		w.queue.Push(event.ElectricalAnnouncementsBegin())
		w.electrical.Update()
		w.queue.Push(event.ElectricalAnnouncementsEnd())
	}

	// Phase 6: ephemeral updates.
	w.store.ExpireEphemerals(now)
	w.store.UpdateEphemerals(now, particle.EphemeralBehaviorParams{
		DT:               dt,
		Wind:             w.cfg.Wind,
		Gravity:          w.cfg.Gravity,
		OceanSurfaceY:    w.oceanSurfaceY,
		VortexAmplitude:  w.cfg.VortexAmplitude,
		VortexFrequency:  w.cfg.VortexFrequency,
		SparkleFrameRate: 1,
	})

	// Telemetry, folded into the same end-of-tick flush.
	w.Stats.recordTick(dt)
	if w.Stats.dueForEmit(dt) {
		w.queue.Push(event.FrameRate(w.Stats.LastFrameRate(), w.Stats.AvgFrameRate()))
		w.queue.Push(event.UpdateToRenderRatio(w.Stats.LastUpdateToRenderRatio()))
	}

	// Phase 7: flush queued events.
	w.queue.Flush(event.DispatcherFunc(w.dispatcher))
	return nil
}

// combustionDue implements the round-robin low-frequency schedule: every
// CombustionStride-th tick, offset by CombustionOffset so multiple worlds
// (or future sharded ships) don't all do their expensive scan on the same
// tick.
func (w *World) combustionDue() bool {
	stride := int64(w.cfg.CombustionStride)
	if stride <= 0 {
		stride = 1
	}
	return (w.tick+int64(w.cfg.CombustionOffset))%stride == 0
}

// dispatcher reads w.Dispatcher fresh on every flush so a host can
// attach/detach its telemetry sink without rebuilding the World.
func (w *World) dispatcher(events []event.Event) {
	if w.Dispatcher != nil {
		w.Dispatcher.Dispatch(events)
	}
}

// onSpringBreak reacts to a spring destroyed by over-strain: mark both
// endpoints leaking if they're underwater, spawn cosmetic debris, and defer
// the aggregated Destroy event and component relabeling to the end of the
// mechanical-solver phase (several springs can break in the same
// relaxation pass).
func (w *World) onSpringBreak(idx core.SpringIndex) {
	sp := w.mesh.Spring(idx)
	w.topologyDirty = true
	for _, end := range [2]core.ParticleIndex{sp.EndpointA, sp.EndpointB} {
		underwater := w.store.PosY[end] < w.oceanSurfaceY(w.store.PosX[end])
		if underwater {
			w.store.IsLeaking[end] = true
		}
		mat := w.store.StructuralMaterial[end]
		name := "unknown"
		if mat != nil {
			name = mat.Structural.Name
		}
		w.breakCounts[breakKey{material: name, underwater: underwater}]++
		w.store.GenerateDebris(end, w.clock.Now(), w.cfg.EphemeralMaxLifetime)
	}
}

// flushBreakEvents turns this tick's aggregated break counts into Destroy
// events, one per distinct (material, underwater) pair, and clears the
// accumulator.
func (w *World) flushBreakEvents() {
	for key, count := range w.breakCounts {
		w.queue.Push(event.Destroy(key.material, key.underwater, count))
		delete(w.breakCounts, key)
	}
}

// onDetach fires when particle.Store.Detach severs a particle (e.g. a
// Thanos-snap or saw-through tool operation); electrical decoration for the
// detached particle no longer belongs to any powered network.
func (w *World) onDetach(idx core.ParticleIndex) {
	w.topologyDirty = true
	w.electrical.Unregister(idx)
}

// onDestroyEphemeral is a placeholder hook for ephemeral-destruction
// reactions; nothing currently needs to react beyond the pool bookkeeping
// Store already does itself.
func (w *World) onDestroyEphemeral(idx core.ParticleIndex) {}

// RegisterElectricalElement decorates particle idx with an electrical
// element of the given material kind, called by ship construction once per
// electrical-layer pixel.
func (w *World) RegisterElectricalElement(idx core.ParticleIndex, kind material.ElectricalKind) int {
	return w.electrical.Register(idx, kind)
}

// Reset replaces the simulation state with a freshly built store/mesh (a
// new ship load), resetting the clock and firing GameReset.
func (w *World) Reset(store *particle.Store, m *mesh.Mesh) {
	w.store = store
	w.mesh = m
	w.clock = core.NewClock()
	w.tick = 0
	w.wasBurning = false
	w.topologyDirty = false
	w.breakCounts = make(map[breakKey]int)

	w.solver = mechanics.New(store, m, w.cfg.Workers)
	w.waterSub = water.New(store, m, w.rng)
	w.combustion = combustion.New(store, m, w.rng)
	w.electrical = electrical.New(&w.queue, func(idx core.ParticleIndex) int32 { return store.ComponentID[idx] })

	store.SetDetachHandlers(w.onDetach, w.onDestroyEphemeral)
	m.SetBreakHandler(w.onSpringBreak)
	m.RecomputeComponents()

	w.queue.Push(event.GameReset())
}
