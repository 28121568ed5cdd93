package ocean

import "testing"

func baseParams() Params {
	return Params{DT: 0.05, DX: 1, Gravity: 9.8, GhostCells: 1}
}

func TestNewSurfaceRestsAtGivenHeight(t *testing.T) {
	s := New(8, 1, 10)
	for i := 0; i < s.STotal(); i++ {
		if s.HeightAt(i) != 10 {
			t.Fatalf("expected rest height 10 at cell %d, got %v", i, s.HeightAt(i))
		}
	}
}

func TestStepPreservesRestEquilibrium(t *testing.T) {
	s := New(8, 1, 10)
	p := baseParams()
	for i := 0; i < 20; i++ {
		s.Step(p)
	}
	for i := 1; i < s.STotal()-1; i++ {
		h := s.HeightAt(i)
		if h < 9.9 || h > 10.1 {
			t.Fatalf("expected surface to stay near rest height, cell %d = %v", i, h)
		}
	}
}

func TestBoundaryVelocityStaysZero(t *testing.T) {
	s := New(8, 1, 10)
	s.Restart(4, 15, 1)
	p := baseParams()
	for i := 0; i < 10; i++ {
		s.Step(p)
	}
	if s.vCurr[0] != 0 || s.vCurr[s.STotal()-1] != 0 {
		t.Fatalf("expected boundary velocities clamped to 0, got %v and %v", s.vCurr[0], s.vCurr[s.STotal()-1])
	}
}

func TestTriggerTsunamiRaisesThenLowersHeight(t *testing.T) {
	s := New(8, 1, 10)
	s.TriggerTsunami(5, 2)
	p := baseParams()

	mid := s.STotal() / 2
	peak := 0.0
	for i := 0; i < 200; i++ {
		s.Step(p)
		if s.HeightAt(mid) > peak {
			peak = s.HeightAt(mid)
		}
	}
	if peak <= 10.5 {
		t.Fatalf("expected the tsunami to raise the midpoint well above rest, peak=%v", peak)
	}
	final := s.HeightAt(mid)
	if final >= peak {
		t.Fatalf("expected height to fall back down after rising, peak=%v final=%v", peak, final)
	}
}

func TestRestartReroutesInFlightWave(t *testing.T) {
	s := New(8, 1, 10)
	s.Restart(4, 20, 10)
	p := baseParams()
	s.Step(p)
	firstTarget := s.wave.targetValue

	s.Restart(4, 50, 10)
	if s.wave.targetValue == firstTarget {
		t.Fatal("expected Restart to reroot the wave toward a new target")
	}
	if s.wave.state != WaveRising {
		t.Fatalf("expected Restart to put the wave back into Rise, got %v", s.wave.state)
	}
}
