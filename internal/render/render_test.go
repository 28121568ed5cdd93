package render

import (
	"testing"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/ocean"
	"shipbreaker/internal/world"
)

type recordingTarget struct {
	points   ShipPoints
	elements ShipElements
	elemCalls int
	ocean    []float64
}

func (r *recordingTarget) UploadOcean(s []float64)                  { r.ocean = s }
func (r *recordingTarget) UploadShipPoints(p ShipPoints)             { r.points = p }
func (r *recordingTarget) UploadShipElements(e ShipElements)         { r.elements = e; r.elemCalls++ }
func (r *recordingTarget) UploadShipFlames(f []Flame)                {}
func (r *recordingTarget) UploadEphemeral(e []EphemeralInstance)     {}
func (r *recordingTarget) UploadVectors(v []Vector)                  {}

func testHullMaterial() *material.Material {
	return &material.Material{
		Structural: material.Structural{Name: "hull", Mass: 10, Stiffness: 1, Strength: 1},
	}
}

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	mat := testHullMaterial()
	cells := make([]*material.Material, 4)
	for i := range cells {
		cells[i] = mat
	}
	img := &mesh.ShipImage{Width: 2, Height: 2, Cell: cells, IsLeaking: make([]bool, 4)}
	rng := core.NewRNG(1)
	store, m, err := mesh.Build(img, material.NewDatabase(), mesh.BuildParams{
		PixelSpacing: 1,
		Coeff:        mesh.CoefficientParams{StiffnessAdjust: 1, StrengthAdjust: 1, Step: 1},
	}, 8, rng, mesh.IdentityReorder{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cfg := world.Config{
		Gravity: [2]float64{0, -9.8}, NMech: 2, NRelax: 2,
		WaterDensity: 1000, OceanInteriorCells: 16, OceanGhostCells: 2,
		OceanRestHeight: -100, Ocean: ocean.Params{DX: 1, Gravity: 9.8},
		CombustionStride: 4, Workers: 1,
	}
	return world.New(cfg, store, m)
}

func TestSyncUploadsElementsOnlyOnTopologyChange(t *testing.T) {
	w := newTestWorld(t)
	p := NewProducer(w)
	target := &recordingTarget{}

	p.Sync(target)
	if target.elemCalls != 1 {
		t.Fatalf("expected first Sync to upload elements, got %d calls", target.elemCalls)
	}
	if len(target.points.PosX) != w.Store().NShip() {
		t.Fatalf("expected %d points, got %d", w.Store().NShip(), len(target.points.PosX))
	}

	p.Sync(target)
	if target.elemCalls != 1 {
		t.Fatalf("expected unchanged topology to skip re-upload, got %d calls", target.elemCalls)
	}

	w.Mesh().DestroySpring(0, false)
	p.Sync(target)
	if target.elemCalls != 2 {
		t.Fatalf("expected a topology change to trigger re-upload, got %d calls", target.elemCalls)
	}
}

func TestSyncUploadsOceanSamples(t *testing.T) {
	w := newTestWorld(t)
	p := NewProducer(w)
	target := &recordingTarget{}

	p.Sync(target)
	if len(target.ocean) != w.Ocean().STotal() {
		t.Fatalf("expected %d ocean samples, got %d", w.Ocean().STotal(), len(target.ocean))
	}
}
