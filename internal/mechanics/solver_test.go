package mechanics

import (
	"context"
	"math"
	"testing"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/particle"
)

func buildTwoParticleSpring(t *testing.T) (*particle.Store, *mesh.Mesh) {
	t.Helper()
	mat := &material.Material{Structural: material.Structural{Mass: 1, Stiffness: 1, Strength: 100}}
	img := &mesh.ShipImage{
		Width: 2, Height: 1,
		Cell:      []*material.Material{mat, mat},
		IsLeaking: make([]bool, 2),
	}
	store, m, err := mesh.Build(img, material.NewDatabase(), mesh.BuildParams{
		PixelSpacing: 1,
		Coeff:        mesh.CoefficientParams{StiffnessAdjust: 1, StrengthAdjust: 1, Step: 1},
	}, 0, core.NewRNG(1), mesh.IdentityReorder{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	store.UpdateMasses(particle.MassParams{WaterDensity: 1, IntegrationTimeCoefficient: 1})
	return store, m
}

func TestIntegrateMovesFreeParticleUnderGravity(t *testing.T) {
	store, m := buildTwoParticleSpring(t)
	store.IsPinned[0] = true // anchor one end so the spring doesn't just free-fall together

	solver := New(store, m, 1)
	p := Params{
		NMech:                  1,
		NRelax:                 2,
		Gravity:                [2]float64{0, -9.8},
		DT:                     0.1,
		BreakThresholdRelative: 10,
	}
	y0 := store.PosY[1]
	if err := solver.Step(context.Background(), p); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if store.PosY[1] >= y0 {
		t.Fatalf("expected particle 1 to move under gravity, y0=%v y1=%v", y0, store.PosY[1])
	}
	if store.PosX[0] != 0 || store.PosY[0] != 0 {
		t.Fatalf("expected pinned particle 0 to stay put, got (%v, %v)", store.PosX[0], store.PosY[0])
	}
}

func TestBuoyancyPushesSubmergedParticleUpward(t *testing.T) {
	mat := &material.Material{Structural: material.Structural{Mass: 1, Stiffness: 1, Strength: 100, WaterVolumeFill: 1}}
	img := &mesh.ShipImage{
		Width: 1, Height: 1,
		Cell:      []*material.Material{mat},
		IsLeaking: make([]bool, 1),
	}
	store, m, err := mesh.Build(img, material.NewDatabase(), mesh.BuildParams{
		PixelSpacing: 1,
		Coeff:        mesh.CoefficientParams{StiffnessAdjust: 1, StrengthAdjust: 1, Step: 1},
	}, 0, core.NewRNG(1), mesh.IdentityReorder{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	store.UpdateMasses(particle.MassParams{WaterDensity: 1, IntegrationTimeCoefficient: 1})

	// Surface is well above the particle, so it is submerged (PosY <
	// surfaceY), and a dense enough fluid should make it rise rather than
	// sink under gravity.
	solver := New(store, m, 1)
	p := Params{
		NMech:                  1,
		NRelax:                 1,
		Gravity:                [2]float64{0, -9.8},
		DT:                     0.1,
		BreakThresholdRelative: 10,
		WaterDensity:           1000,
		OceanSurfaceY:          func(float64) float64 { return 1000 },
	}
	y0 := store.PosY[0]
	if err := solver.Step(context.Background(), p); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if store.PosY[0] <= y0 {
		t.Fatalf("expected submerged particle to rise under buoyancy, y0=%v y1=%v", y0, store.PosY[0])
	}
}

func TestRelaxSpringsBreaksOverstrainedSpring(t *testing.T) {
	store, m := buildTwoParticleSpring(t)
	store.IsPinned[0] = true
	store.IsPinned[1] = true
	// Pull particle 1 far away to force massive strain.
	store.PosX[1] = 100

	solver := New(store, m, 1)
	p := Params{
		NMech:                  1,
		NRelax:                 1,
		DT:                     0.1,
		BreakThresholdRelative: 0.5,
	}
	refs := store.ConnectedSprings(0)
	if len(refs) == 0 {
		t.Fatal("expected a connecting spring")
	}
	victim := refs[0].Spring

	if err := solver.Step(context.Background(), p); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if m.IsSpringLive(victim) {
		t.Fatal("expected over-strained spring to be destroyed")
	}
}

func TestApplyExternalForceIsConsumedOncePerStep(t *testing.T) {
	store, m := buildTwoParticleSpring(t)
	store.IsPinned[0] = true
	store.IsPinned[1] = true // isolate force accumulation from spring relaxation movement

	solver := New(store, m, 1)
	solver.ApplyExternalForce(1, 5, 0)

	p := Params{NMech: 1, NRelax: 0, DT: 0.1, BreakThresholdRelative: 10}
	if err := solver.Step(context.Background(), p); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if math.Abs(store.ForceX[1]-5) > 1e-9 {
		t.Fatalf("expected force 5 applied on first step, got %v", store.ForceX[1])
	}

	if err := solver.Step(context.Background(), p); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if store.ForceX[1] != 0 {
		t.Fatalf("expected external force cleared after being consumed, got %v", store.ForceX[1])
	}
}
