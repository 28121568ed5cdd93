package particle

import "shipbreaker/internal/core"

// EphemeralParams configures a newly created ephemeral particle.
type EphemeralParams struct {
	Kind         EphemeralKind
	PosX, PosY   float64
	VelX, VelY   float64
	StartTime    float64
	MaxLifetime  float64
	Substate     float64
	Aux          float64
}

// CreateEphemeral finds a free ephemeral slot and populates it. The search
// begins at the cursor left by the previous call and wraps once, so repeated
// creation spreads across the pool rather than always reusing slot nShip
//. If force is false and the pool is full, ErrPoolExhausted is
// returned; if force is true, the oldest live ephemeral (by StartTime) is
// evicted to make room.
func (s *Store) CreateEphemeral(p EphemeralParams, force bool) (core.ParticleIndex, error) {
	if idx, ok := s.scanFreeEphemeralSlot(); ok {
		s.populateEphemeral(idx, p)
		return idx, nil
	}
	if !force {
		return core.NoParticle, ErrPoolExhausted
	}
	victim := s.oldestEphemeral()
	if victim == core.NoParticle {
		core.PanicInvariant("ephemeral pool full but no victim found")
	}
	s.DestroyEphemeral(victim, false)
	s.populateEphemeral(victim, p)
	return victim, nil
}

// scanFreeEphemeralSlot performs the linear search for a KindNone slot,
// starting at the cursor and wrapping exactly once around the ephemeral
// partition [nShip, n).
func (s *Store) scanFreeEphemeralSlot() (core.ParticleIndex, bool) {
	span := s.n - s.nShip
	if span <= 0 {
		return core.NoParticle, false
	}
	start := s.ephemeralSearchStart
	if start < s.nShip || start >= s.n {
		start = s.nShip
	}
	for step := 0; step < span; step++ {
		i := s.nShip + (start-s.nShip+step)%span
		if s.EphemeralKind[i] == KindNone {
			s.ephemeralSearchStart = i + 1
			return core.ParticleIndex(i), true
		}
	}
	return core.NoParticle, false
}

// oldestEphemeral scans for the live ephemeral particle with the smallest
// StartTime, used as the force-eviction victim.
func (s *Store) oldestEphemeral() core.ParticleIndex {
	best := core.NoParticle
	bestStart := 0.0
	for i := s.nShip; i < s.n; i++ {
		if s.EphemeralKind[i] == KindNone {
			continue
		}
		if best == core.NoParticle || s.EphemeralStartTime[i] < bestStart {
			best = core.ParticleIndex(i)
			bestStart = s.EphemeralStartTime[i]
		}
	}
	return best
}

func (s *Store) populateEphemeral(idx core.ParticleIndex, p EphemeralParams) {
	i := int(idx)
	s.PosX[i], s.PosY[i] = p.PosX, p.PosY
	s.VelX[i], s.VelY[i] = p.VelX, p.VelY
	s.ForceX[i], s.ForceY[i] = 0, 0
	s.EphemeralKind[i] = p.Kind
	s.EphemeralStartTime[i] = p.StartTime
	s.EphemeralMaxLifetime[i] = p.MaxLifetime
	s.EphemeralSubstate[i] = p.Substate
	s.EphemeralAux[i] = p.Aux
	s.AugmentedMass[i] = 0
	s.CurrentMass[i] = 0
	s.IntegrationFactor[i] = 0
	s.IsPinned[i] = false
	s.connSprings[i].n = 0
	s.connTriangles[i].n = 0
}

// DestroyEphemeral frees idx back to the pool. If fireEvent is true and a
// destroy handler is registered, it fires after the slot is cleared.
func (s *Store) DestroyEphemeral(idx core.ParticleIndex, fireEvent bool) {
	i := int(idx)
	if i < s.nShip || i >= s.n {
		core.PanicInvariant("DestroyEphemeral called on non-ephemeral index %d", i)
	}
	s.EphemeralKind[i] = KindNone
	s.EphemeralStartTime[i] = 0
	s.EphemeralMaxLifetime[i] = 0
	s.EphemeralSubstate[i] = 0
	s.EphemeralAux[i] = 0
	if fireEvent && s.onDestroy != nil {
		s.onDestroy(idx)
	}
}

// ExpireEphemerals destroys every live ephemeral whose age (now - StartTime)
// has reached its MaxLifetime. Returns the count destroyed.
func (s *Store) ExpireEphemerals(now float64) int {
	count := 0
	for i := s.nShip; i < s.n; i++ {
		if s.EphemeralKind[i] == KindNone {
			continue
		}
		if now-s.EphemeralStartTime[i] >= s.EphemeralMaxLifetime[i] {
			s.DestroyEphemeral(core.ParticleIndex(i), true)
			count++
		}
	}
	return count
}

// CountEphemeralsByKind reports how many live ephemeral particles of each
// kind are currently in the pool, for diagnostics and tests.
func (s *Store) CountEphemeralsByKind() map[EphemeralKind]int {
	counts := make(map[EphemeralKind]int)
	for i := s.nShip; i < s.n; i++ {
		k := s.EphemeralKind[i]
		if k == KindNone {
			continue
		}
		counts[k]++
	}
	return counts
}

// GenerateDebris spawns a debris ephemeral at idx's current position, used
// by Detach when DetachOptions.GenerateDebris is set. Best-effort: pool
// exhaustion silently drops the debris rather than evicting, since debris is
// cosmetic and must never force out a more important ephemeral.
func (s *Store) GenerateDebris(idx core.ParticleIndex, now float64, maxLifetime float64) {
	i := int(idx)
	_, _ = s.CreateEphemeral(EphemeralParams{
		Kind:        KindDebris,
		PosX:        s.PosX[i],
		PosY:        s.PosY[i],
		VelX:        s.VelX[i],
		VelY:        s.VelY[i],
		StartTime:   now,
		MaxLifetime: maxLifetime,
	}, false)
}
