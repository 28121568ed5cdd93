// Package render defines the render-target interface a host implements
// (spec.md §6's "core ← host" direction) plus the dirty-flag bookkeeping
// that lets a host skip re-uploading buffers that haven't changed — the
// render interface boundary SPEC_FULL.md §6 names, one method per
// upload_* call.
package render

import (
	"image/color"
	"math"

	"shipbreaker/internal/core"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/particle"
	"shipbreaker/internal/world"
)

// Target is implemented by the host. Each method mirrors one upload_* call
// spec.md §6 lists; the core never calls into a host outside these, and
// only between ticks.
type Target interface {
	UploadOcean(samples []float64)
	UploadShipPoints(points ShipPoints)
	UploadShipElements(elements ShipElements)
	UploadShipFlames(flames []Flame)
	UploadEphemeral(instances []EphemeralInstance)
	UploadVectors(vectors []Vector)
}

// ShipPoints is upload_ship_points' payload: one entry per live particle,
// parallel-indexed the same way particle.Store itself is.
type ShipPoints struct {
	PosX, PosY  []float64
	Water       []float64
	Light       []float64
	Temperature []float64
	Color       []color.RGBA
	PlaneID     []int32
	Decay       []float64
}

// ShipElements is upload_ship_elements' payload: the mesh topology, plus
// which springs are ropes and which are currently stressed past a
// highlight threshold.
type ShipElements struct {
	Points          int
	Springs         [][2]int32
	Ropes           []bool
	Triangles       [][3]int32
	StressedSprings []int32
}

// Flame is one burning particle's render state, per upload_ship_flames.
type Flame struct {
	PlaneID     int32
	X, Y        float64
	Development float64
	Personality float64
	OnChain     bool
}

// EphemeralInstance is one live ephemeral's render state.
type EphemeralInstance struct {
	Kind     particle.EphemeralKind
	X, Y     float64
	Substate float64
}

// Vector is a single debug arrow (e.g. a force or velocity sample),
// per upload_vectors.
type Vector struct {
	X, Y, DX, DY float64
}

// StressHighlightThreshold is the fraction of a spring's rest length
// (absolute relative deviation) past which it is reported in
// ShipElements.StressedSprings for the host to highlight, a render-only
// concern distinct from mechanics' own break threshold.
const StressHighlightThreshold = 0.35

// Producer pulls render payloads out of a world.World. It is not
// goroutine-safe and must only be driven between ticks, per spec.md §5's
// "external callers receive snapshots... obtained between ticks".
type Producer struct {
	w *world.World

	haveTopology              bool
	lastSprings, lastTriangles int
}

// NewProducer builds a Producer over w.
func NewProducer(w *world.World) *Producer { return &Producer{w: w} }

// Sync pushes every buffer to target, skipping UploadShipElements when the
// live spring/triangle counts haven't changed since the last Sync. Ship
// points, flames, ephemerals, and ocean samples are uploaded on every call,
// and Store.ColorDirty/PlaneDirty are cleared at the end of every call.
func (p *Producer) Sync(target Target) {
	store := p.w.Store()
	m := p.w.Mesh()

	target.UploadShipPoints(p.shipPoints(store))

	if !p.haveTopology || m.NSprings() != p.lastSprings || m.NTriangles() != p.lastTriangles {
		target.UploadShipElements(buildShipElements(store, m))
		p.lastSprings = m.NSprings()
		p.lastTriangles = m.NTriangles()
		p.haveTopology = true
	}

	target.UploadShipFlames(buildFlames(store))
	target.UploadEphemeral(buildEphemerals(store))
	target.UploadOcean(buildOceanSamples(p.w))

	store.ColorDirty = false
	store.PlaneDirty = false
}

func (p *Producer) shipPoints(store *particle.Store) ShipPoints {
	n := store.NShip()
	out := ShipPoints{
		PosX: make([]float64, n), PosY: make([]float64, n),
		Water: make([]float64, n), Light: make([]float64, n),
		Temperature: make([]float64, n), Color: make([]color.RGBA, n),
		PlaneID: make([]int32, n), Decay: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		out.PosX[i], out.PosY[i] = store.PosX[i], store.PosY[i]
		out.Water[i] = store.Water[i]
		out.Light[i] = store.Light[i]
		out.Temperature[i] = store.Temperature[i]
		out.Color[i] = store.Color[i]
		out.PlaneID[i] = store.PlaneID[i]
		out.Decay[i] = store.Decay[i]
	}
	return out
}

// buildShipElements walks every live spring/triangle into flat index pairs
// and triples, flagging ropes and stressed springs as it goes (a single
// linear scan rather than separate passes, since live-ness gating is the
// same check for all three). Strain is recomputed from current positions
// rather than read from a stored field: mechanics only ever computes strain
// transiently during relaxation, so render recomputes the same
// (length-restLength)/restLength ratio itself to decide the
// StressHighlightThreshold cut.
func buildShipElements(store *particle.Store, m *mesh.Mesh) ShipElements {
	out := ShipElements{Points: store.NShip()}
	for i := 0; i < m.SpringCap(); i++ {
		idx := core.SpringIndex(i)
		if !m.IsSpringLive(idx) {
			continue
		}
		sp := m.Spring(idx)
		out.Springs = append(out.Springs, [2]int32{int32(sp.EndpointA), int32(sp.EndpointB)})
		out.Ropes = append(out.Ropes, sp.IsRope)

		dx := store.PosX[sp.EndpointA] - store.PosX[sp.EndpointB]
		dy := store.PosY[sp.EndpointA] - store.PosY[sp.EndpointB]
		length := math.Hypot(dx, dy)
		strain := math.Abs((length - sp.RestLength) / sp.RestLength)
		if strain > StressHighlightThreshold {
			out.StressedSprings = append(out.StressedSprings, int32(idx))
		}
	}
	for i := 0; i < m.TriangleCap(); i++ {
		idx := core.TriangleIndex(i)
		if !m.IsTriangleLive(idx) {
			continue
		}
		tri := m.Triangle(idx)
		out.Triangles = append(out.Triangles, [3]int32{
			int32(tri.Vertices[0]), int32(tri.Vertices[1]), int32(tri.Vertices[2]),
		})
	}
	return out
}

func buildFlames(store *particle.Store) []Flame {
	var out []Flame
	for i := 0; i < store.NShip(); i++ {
		idx := core.ParticleIndex(i)
		if store.CombustionState[idx] == particle.NotBurning {
			continue
		}
		out = append(out, Flame{
			PlaneID:     store.PlaneID[idx],
			X:           store.PosX[idx],
			Y:           store.PosY[idx],
			Development: store.FlameDevelopment[idx],
			Personality: store.Personality[idx],
			OnChain:     store.IsRope(idx),
		})
	}
	return out
}

func buildEphemerals(store *particle.Store) []EphemeralInstance {
	var out []EphemeralInstance
	for i := store.NShip(); i < store.N(); i++ {
		kind := store.EphemeralKind[i]
		if kind == particle.KindNone {
			continue
		}
		out = append(out, EphemeralInstance{
			Kind:     kind,
			X:        store.PosX[i],
			Y:        store.PosY[i],
			Substate: store.EphemeralSubstate[i],
		})
	}
	return out
}

func buildOceanSamples(w *world.World) []float64 {
	ocean := w.Ocean()
	n := ocean.STotal()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = ocean.HeightAt(i)
	}
	return out
}
