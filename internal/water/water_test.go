package water

import (
	"testing"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/particle"
)

func buildLeakingPair(t *testing.T) (*particle.Store, *mesh.Mesh) {
	t.Helper()
	leaky := &material.Material{Structural: material.Structural{
		Mass: 1, Stiffness: 1, Strength: 10,
		WaterVolumeFill: 10, WaterIntake: 1, WaterDiffusionSpeed: 1,
	}}
	dry := &material.Material{Structural: material.Structural{
		Mass: 1, Stiffness: 1, Strength: 10,
		WaterVolumeFill: 10, WaterIntake: 1, WaterDiffusionSpeed: 1,
	}}
	img := &mesh.ShipImage{
		Width: 2, Height: 1,
		Cell:      []*material.Material{leaky, dry},
		IsLeaking: []bool{true, false},
	}
	store, m, err := mesh.Build(img, material.NewDatabase(), mesh.BuildParams{
		PixelSpacing: 1,
		Coeff:        mesh.CoefficientParams{StiffnessAdjust: 1, StrengthAdjust: 1, Step: 1},
	}, 4, core.NewRNG(1), mesh.IdentityReorder{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return store, m
}

func belowSurface(float64) float64 { return 100 } // surface far above PosY=0, so every particle is submerged

func TestIntakeAccumulatesAndSpawnsAirBubble(t *testing.T) {
	store, m := buildLeakingPair(t)
	sub := New(store, m, core.NewRNG(2))

	for i := 0; i < 20; i++ {
		sub.intake(Params{DT: 0.1, OceanSurfaceY: belowSurface, EphemeralMaxLifetime: 3})
	}
	if counts := store.CountEphemeralsByKind(); counts[particle.KindAirBubble] == 0 {
		t.Fatal("expected at least one air bubble spawned after repeated intake")
	}
	if store.Water[0] <= 0 {
		t.Fatal("expected leaking particle to have accumulated water")
	}
}

func TestIntakeSkipsNonLeakingParticles(t *testing.T) {
	store, m := buildLeakingPair(t)
	sub := New(store, m, core.NewRNG(2))
	sub.intake(Params{DT: 1, OceanSurfaceY: belowSurface, EphemeralMaxLifetime: 3})
	if store.Water[1] != 0 {
		t.Fatalf("expected non-leaking particle to stay dry, got %v", store.Water[1])
	}
}

func TestDiffuseMovesWaterTowardEquilibrium(t *testing.T) {
	store, m := buildLeakingPair(t)
	store.Water[0] = 10
	store.Water[1] = 0
	sub := New(store, m, core.NewRNG(2))

	for i := 0; i < 50; i++ {
		sub.diffuse(Params{DT: 0.1})
	}
	if store.Water[1] <= 0 {
		t.Fatal("expected water to diffuse into the dry particle")
	}
	if store.Water[0] >= 10 {
		t.Fatal("expected the wet particle to lose water")
	}
	if store.Water[0] < 0 || store.Water[1] < 0 {
		t.Fatal("water must never go negative")
	}
}

func TestDiffuseNeverExceedsFill(t *testing.T) {
	store, m := buildLeakingPair(t)
	store.Water[0] = 10
	store.Water[1] = 9.99
	sub := New(store, m, core.NewRNG(2))
	for i := 0; i < 100; i++ {
		sub.diffuse(Params{DT: 1})
	}
	if store.Water[1] > 10.0001 {
		t.Fatalf("expected water to stay within fill capacity, got %v", store.Water[1])
	}
}
