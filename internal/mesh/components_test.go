package mesh

import (
	"testing"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
)

func TestRecomputeComponentsLabelsWholeHullAsOneComponent(t *testing.T) {
	store, m, err := Build(squareImage(), material.NewDatabase(), buildParams(), 0, core.NewRNG(1), IdentityReorder{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m.RecomputeComponents()

	want := store.ComponentID[0]
	for i := 0; i < store.NShip(); i++ {
		if store.ComponentID[i] != want {
			t.Fatalf("expected all particles in a solid hull to share one component, particle %d had %d vs %d", i, store.ComponentID[i], want)
		}
	}
}

func TestRecomputeComponentsSplitsAfterAllSpringsBreak(t *testing.T) {
	store, m, err := Build(squareImage(), material.NewDatabase(), buildParams(), 0, core.NewRNG(1), IdentityReorder{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m.SeverConnectivity(0)
	m.RecomputeComponents()

	for i := 1; i < store.NShip(); i++ {
		if store.ComponentID[i] == store.ComponentID[0] {
			t.Fatalf("expected particle 0 isolated from particle %d after severing, both report component %d", i, store.ComponentID[0])
		}
	}
}
