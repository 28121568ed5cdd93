package particle

import (
	"testing"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
)

func testMaterial() *material.Material {
	return &material.Material{
		Color: material.ColorKey{R: 0x80, G: 0x80, B: 0x80},
		Structural: material.Structural{
			Name:            "steel",
			Mass:            10,
			WaterVolumeFill: 5,
		},
	}
}

func TestAddShipParticleFailsAfterConstruction(t *testing.T) {
	s := NewStore(4, 4, core.NewRNG(1))
	if err := s.AddShipParticle(0, testMaterial(), 0, 0, false, false); err != nil {
		t.Fatalf("AddShipParticle: %v", err)
	}
	s.FinishConstruction()
	if err := s.AddShipParticle(1, testMaterial(), 1, 1, false, false); err != ErrConstructionFinished {
		t.Fatalf("expected ErrConstructionFinished, got %v", err)
	}
}

func TestUpdateMassesClampsWaterToFill(t *testing.T) {
	s := NewStore(1, 0, core.NewRNG(1))
	if err := s.AddShipParticle(0, testMaterial(), 0, 0, false, false); err != nil {
		t.Fatalf("AddShipParticle: %v", err)
	}
	s.Water[0] = 100 // far above WaterVolumeFill=5
	s.FinishConstruction()
	s.UpdateMasses(MassParams{WaterDensity: 1, IntegrationTimeCoefficient: 1})

	// mass should be augmented (10) + min(100, 5)*1 = 15, not 110.
	if s.CurrentMass[0] != 15 {
		t.Fatalf("expected clamped mass 15, got %v", s.CurrentMass[0])
	}
}

func TestUpdateMassesZerosPinnedIntegrationFactor(t *testing.T) {
	s := NewStore(1, 0, core.NewRNG(1))
	_ = s.AddShipParticle(0, testMaterial(), 0, 0, false, false)
	s.IsPinned[0] = true
	s.FinishConstruction()
	s.UpdateMasses(MassParams{WaterDensity: 1, IntegrationTimeCoefficient: 1})
	if s.IntegrationFactor[0] != 0 {
		t.Fatalf("expected zero integration factor for pinned particle, got %v", s.IntegrationFactor[0])
	}
}

func TestEphemeralPoolCreateDestroyRoundTrip(t *testing.T) {
	s := NewStore(2, 3, core.NewRNG(1))
	s.FinishConstruction()

	idx, err := s.CreateEphemeral(EphemeralParams{Kind: KindAirBubble, StartTime: 0, MaxLifetime: 5}, false)
	if err != nil {
		t.Fatalf("CreateEphemeral: %v", err)
	}
	if !s.IsShip(0) || s.IsShip(idx) {
		t.Fatalf("expected ephemeral index outside ship partition, got %d", idx)
	}
	if counts := s.CountEphemeralsByKind(); counts[KindAirBubble] != 1 {
		t.Fatalf("expected one air bubble, got %v", counts)
	}
	s.DestroyEphemeral(idx, false)
	if counts := s.CountEphemeralsByKind(); counts[KindAirBubble] != 0 {
		t.Fatalf("expected air bubble destroyed, got %v", counts)
	}
}

func TestEphemeralPoolExhaustionWithoutForce(t *testing.T) {
	s := NewStore(1, 2, core.NewRNG(1))
	s.FinishConstruction()
	for i := 0; i < 2; i++ {
		if _, err := s.CreateEphemeral(EphemeralParams{Kind: KindSparkle, StartTime: 0, MaxLifetime: 1}, false); err != nil {
			t.Fatalf("CreateEphemeral %d: %v", i, err)
		}
	}
	if _, err := s.CreateEphemeral(EphemeralParams{Kind: KindSparkle, StartTime: 0, MaxLifetime: 1}, false); err != ErrPoolExhausted {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestEphemeralPoolForceEvictsOldest(t *testing.T) {
	s := NewStore(1, 2, core.NewRNG(1))
	s.FinishConstruction()

	oldest, err := s.CreateEphemeral(EphemeralParams{Kind: KindSparkle, StartTime: 1, MaxLifetime: 100}, false)
	if err != nil {
		t.Fatalf("CreateEphemeral: %v", err)
	}
	_, err = s.CreateEphemeral(EphemeralParams{Kind: KindSparkle, StartTime: 5, MaxLifetime: 100}, false)
	if err != nil {
		t.Fatalf("CreateEphemeral: %v", err)
	}

	evicted, err := s.CreateEphemeral(EphemeralParams{Kind: KindDebris, StartTime: 10, MaxLifetime: 100}, true)
	if err != nil {
		t.Fatalf("CreateEphemeral with force: %v", err)
	}
	if evicted != oldest {
		t.Fatalf("expected force-eviction to reuse oldest slot %d, got %d", oldest, evicted)
	}
	if s.EphemeralKind[evicted] != KindDebris {
		t.Fatalf("expected reused slot to carry new kind, got %v", s.EphemeralKind[evicted])
	}
}

func TestExpireEphemeralsDestroysPastLifetime(t *testing.T) {
	s := NewStore(1, 2, core.NewRNG(1))
	s.FinishConstruction()
	idx, _ := s.CreateEphemeral(EphemeralParams{Kind: KindAirBubble, StartTime: 0, MaxLifetime: 2}, false)
	if n := s.ExpireEphemerals(1); n != 0 {
		t.Fatalf("expected no expirations at t=1, got %d", n)
	}
	if n := s.ExpireEphemerals(2); n != 1 {
		t.Fatalf("expected one expiration at t=2, got %d", n)
	}
	if s.EphemeralKind[idx] != KindNone {
		t.Fatal("expected expired slot to return to KindNone")
	}
}

func TestConnectivitySetsAddRemove(t *testing.T) {
	s := NewStore(4, 0, core.NewRNG(1))
	for i := core.ParticleIndex(0); i < 4; i++ {
		_ = s.AddShipParticle(i, testMaterial(), float64(i), 0, false, false)
	}
	s.FinishConstruction()

	s.AddSpringRef(0, SpringRef{Spring: 5, OtherEndpoint: 1})
	s.AddSpringRef(0, SpringRef{Spring: 6, OtherEndpoint: 2})
	if got := s.ConnectedSprings(0); len(got) != 2 {
		t.Fatalf("expected 2 connected springs, got %d", len(got))
	}
	s.RemoveSpringRef(0, 5)
	got := s.ConnectedSprings(0)
	if len(got) != 1 || got[0].Spring != 6 {
		t.Fatalf("expected only spring 6 left, got %+v", got)
	}

	s.AddTriangleRef(0, 3)
	if got := s.ConnectedTriangles(0); len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected triangle 3 attached, got %v", got)
	}
	s.RemoveTriangleRef(0, 3)
	if got := s.ConnectedTriangles(0); len(got) != 0 {
		t.Fatalf("expected triangle set empty, got %v", got)
	}
}

type fakeMeshNotifier struct{ notified []core.ParticleIndex }

func (f *fakeMeshNotifier) NotifyMassChanged(idx core.ParticleIndex) {
	f.notified = append(f.notified, idx)
}

func TestAugmentMassNotifiesMesh(t *testing.T) {
	s := NewStore(1, 0, core.NewRNG(1))
	_ = s.AddShipParticle(0, testMaterial(), 0, 0, false, false)
	s.FinishConstruction()

	mesh := &fakeMeshNotifier{}
	s.AugmentMass(0, 2.5, mesh)
	if s.AugmentedMass[0] != 12.5 {
		t.Fatalf("expected augmented mass 12.5, got %v", s.AugmentedMass[0])
	}
	if len(mesh.notified) != 1 || mesh.notified[0] != 0 {
		t.Fatalf("expected mesh notified of particle 0, got %v", mesh.notified)
	}
}

type fakeDetachHandler struct{ severed []core.ParticleIndex }

func (f *fakeDetachHandler) SeverConnectivity(idx core.ParticleIndex) {
	f.severed = append(f.severed, idx)
}

func TestDetachFiresEventAndSeversConnectivity(t *testing.T) {
	s := NewStore(1, 0, core.NewRNG(1))
	_ = s.AddShipParticle(0, testMaterial(), 0, 0, false, false)
	s.FinishConstruction()

	var detached []core.ParticleIndex
	s.SetDetachHandlers(func(idx core.ParticleIndex) { detached = append(detached, idx) }, nil)

	handler := &fakeDetachHandler{}
	s.Detach(0, handler, 1, 2, DetachOptions{FireEvent: true})

	if s.VelX[0] != 1 || s.VelY[0] != 2 {
		t.Fatalf("expected velocity overwritten, got (%v, %v)", s.VelX[0], s.VelY[0])
	}
	if len(handler.severed) != 1 || handler.severed[0] != 0 {
		t.Fatalf("expected mesh asked to sever particle 0, got %v", handler.severed)
	}
	if len(detached) != 1 || detached[0] != 0 {
		t.Fatalf("expected detach event fired for particle 0, got %v", detached)
	}
}

func TestDetachDoesNotOverwritePinnedVelocity(t *testing.T) {
	s := NewStore(1, 0, core.NewRNG(1))
	_ = s.AddShipParticle(0, testMaterial(), 0, 0, false, false)
	s.IsPinned[0] = true
	s.VelX[0], s.VelY[0] = 9, 9
	s.FinishConstruction()

	s.Detach(0, nil, 1, 1, DetachOptions{})
	if s.VelX[0] != 9 || s.VelY[0] != 9 {
		t.Fatalf("expected pinned particle velocity untouched, got (%v, %v)", s.VelX[0], s.VelY[0])
	}
}
