package controller

import (
	"context"
	"testing"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/ocean"
	"shipbreaker/internal/world"
)

func testHullMaterial() *material.Material {
	return &material.Material{
		Structural: material.Structural{
			Name:                "hull",
			Mass:                10,
			Stiffness:           1,
			Strength:            1,
			IsHull:              true,
			WaterVolumeFill:     1,
			HeatCapacity:        1000,
			IgnitionTemperature: 100,
			CombustionHeat:      2000,
		},
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
		Gravity:            [2]float64{0, -9.8},
		NMech:              2,
		NRelax:             2,
		WaterDensity:       1000,
		OceanInteriorCells: 16,
		OceanGhostCells:    2,
		OceanRestHeight:    -100,
		Ocean:              ocean.Params{DX: 1, Gravity: 9.8},
		CombustionStride:   4,
		Workers:            1,
	}
	return world.New(cfg, store, m)
}

func TestPickToMoveFindsNearestParticle(t *testing.T) {
	w := newTestWorld(t)
	c := New(w, Config{InitialZoom: 1})

	idx, ok := c.PickToMove(0, 0)
	if !ok {
		t.Fatal("expected a particle near the origin")
	}
	if int(idx) < 0 || int(idx) >= w.Store().NShip() {
		t.Fatalf("picked index %d out of range", idx)
	}
}

func TestTogglePinAtFlipsPinned(t *testing.T) {
	w := newTestWorld(t)
	c := New(w, Config{InitialZoom: 1})

	idx, ok := c.PickToMove(0, 0)
	if !ok {
		t.Fatal("expected a particle near the origin")
	}
	store := w.Store()
	before := store.IsPinned[idx]
	c.TogglePinAt(0, 0)
	if store.IsPinned[idx] == before {
		t.Fatal("expected IsPinned to flip")
	}
}

func TestDestroyAtDetachesParticlesInRadius(t *testing.T) {
	w := newTestWorld(t)
	c := New(w, Config{InitialZoom: 1})
	store := w.Store()

	refsBefore := store.ConnectedSprings(0)
	if len(refsBefore) == 0 {
		t.Fatal("expected particle 0 to start connected")
	}

	c.DestroyAt(store.PosX[0], store.PosY[0], 0.1)

	if len(store.ConnectedSprings(0)) != 0 {
		t.Fatal("expected particle 0 detached from its springs")
	}
}

func TestApplyHeatBlasterIgnitesDryHotMaterial(t *testing.T) {
	w := newTestWorld(t)
	c := New(w, Config{InitialZoom: 1})
	store := w.Store()

	c.ApplyHeatBlasterAt(store.PosX[0], store.PosY[0], 0.1, HeatBlasterHeat)

	if w.Combustion().LiveBurning() == 0 {
		t.Fatal("expected heat blaster to ignite a dry particle past its ignition point")
	}
}

func TestFloodAtMarksLeakingAndAddsWater(t *testing.T) {
	w := newTestWorld(t)
	c := New(w, Config{InitialZoom: 1})
	store := w.Store()

	c.FloodAt(store.PosX[0], store.PosY[0], 0.5)

	if !store.IsLeaking[0] {
		t.Fatal("expected particle marked leaking after FloodAt")
	}
	if store.Water[0] <= 0 {
		t.Fatal("expected water added after FloodAt")
	}
}

func TestBombToggleAndDetonateAppliesForce(t *testing.T) {
	w := newTestWorld(t)
	c := New(w, Config{InitialZoom: 1})
	store := w.Store()

	c.ToggleRCBombAt(store.PosX[0], store.PosY[0])
	if len(c.bombs) != 1 {
		t.Fatalf("expected one bomb tagged, got %d", len(c.bombs))
	}

	c.DetonateRCBombs()
	if len(c.bombs) != 0 {
		t.Fatal("expected bomb consumed after detonation")
	}
}

func TestPanAndZoomSmoothTowardTarget(t *testing.T) {
	w := newTestWorld(t)
	c := New(w, Config{InitialZoom: 1, CameraTrajectoryTime: 1, ZoomTrajectoryTime: 1})

	c.PanTo(10, 20)
	c.ZoomTo(2)

	before := c.zoom
	if err := w.Step(context.Background(), 0.1); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.zoom == before {
		t.Fatal("expected zoom to move toward its target after a tick")
	}
	if c.cameraX == 0 && c.cameraY == 0 {
		t.Fatal("expected camera to move toward its target after a tick")
	}
}

func TestAdjustOceanSurfaceToDrivesSurfaceRiseAndRelease(t *testing.T) {
	w := newTestWorld(t)
	c := New(w, Config{InitialZoom: 1})

	before := w.Ocean().HeightAt(w.OceanCellForX(0))
	c.AdjustOceanSurfaceTo(0, before+5, 0.5)

	for i := 0; i < 10; i++ {
		if err := w.Step(context.Background(), 0.1); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	risen := w.Ocean().HeightAt(w.OceanCellForX(0))
	if risen <= before {
		t.Fatalf("expected ocean surface to rise toward target, before=%v after=%v", before, risen)
	}

	c.ReleaseOcean()
	for i := 0; i < 10; i++ {
		if err := w.Step(context.Background(), 0.1); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	released := w.Ocean().HeightAt(w.OceanCellForX(0))
	if released >= risen {
		t.Fatalf("expected ocean surface to fall back after release, risen=%v after_release=%v", risen, released)
	}
}
