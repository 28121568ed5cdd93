package particle

import (
	"math"

	"shipbreaker/internal/core"
)

// EphemeralBehaviorParams carries the tunable constants for UpdateEphemerals
//.
type EphemeralBehaviorParams struct {
	DT            float64
	Wind          [2]float64
	Gravity       [2]float64
	OceanSurfaceY func(x float64) float64

	VortexAmplitude float64
	VortexFrequency float64

	SparkleFrameRate float64
}

// UpdateEphemerals advances every live ephemeral particle's per-kind
// physics: air bubbles rise toward the surface with a vortex wobble, debris
// and sparkles fall ballistically under wind and gravity, and expired or
// surfaced particles are destroyed.
func (s *Store) UpdateEphemerals(now float64, p EphemeralBehaviorParams) {
	for i := s.nShip; i < s.n; i++ {
		kind := s.EphemeralKind[i]
		if kind == KindNone {
			continue
		}
		idx := core.ParticleIndex(i)
		switch kind {
		case KindAirBubble:
			s.updateAirBubble(idx, p)
		case KindDebris:
			s.updateDebris(idx, now, p)
		case KindSparkle:
			s.updateSparkle(idx, now, p)
		}
	}
}

func (s *Store) updateAirBubble(idx core.ParticleIndex, p EphemeralBehaviorParams) {
	i := int(idx)
	if s.IsPinned[i] {
		return
	}
	// EphemeralAux holds the per-particle normalized angular velocity
	// (assigned at spawn time); EphemeralSubstate accumulates phase.
	s.EphemeralSubstate[i] += s.EphemeralAux[i] * p.DT
	wobble := p.VortexAmplitude * math.Sin(p.VortexFrequency*s.EphemeralSubstate[i])

	s.VelY[i] += 9.8 * p.DT // buoyant rise: +y, opposite sign from gravity's fall
	s.PosY[i] += s.VelY[i] * p.DT
	s.PosX[i] += wobble * p.DT

	if p.OceanSurfaceY != nil && s.PosY[i] >= p.OceanSurfaceY(s.PosX[i]) {
		s.DestroyEphemeral(idx, true)
	}
}

func (s *Store) updateDebris(idx core.ParticleIndex, now float64, p EphemeralBehaviorParams) {
	i := int(idx)
	const debrisWindReceptivity = 3
	s.VelX[i] += (p.Wind[0]*debrisWindReceptivity + p.Gravity[0]) * p.DT
	s.VelY[i] += (p.Wind[1]*debrisWindReceptivity + p.Gravity[1]) * p.DT
	s.PosX[i] += s.VelX[i] * p.DT
	s.PosY[i] += s.VelY[i] * p.DT

	remaining := s.EphemeralMaxLifetime[i] - (now - s.EphemeralStartTime[i])
	if remaining <= 0 {
		s.DestroyEphemeral(idx, true)
	}
}

func (s *Store) updateSparkle(idx core.ParticleIndex, now float64, p EphemeralBehaviorParams) {
	i := int(idx)
	const sparkleWindReceptivity = 5
	s.VelX[i] += (p.Wind[0]*sparkleWindReceptivity + p.Gravity[0]) * p.DT
	s.VelY[i] += (p.Wind[1]*sparkleWindReceptivity + p.Gravity[1]) * p.DT
	s.PosX[i] += s.VelX[i] * p.DT
	s.PosY[i] += s.VelY[i] * p.DT

	if p.SparkleFrameRate > 0 {
		s.EphemeralSubstate[i] += p.SparkleFrameRate * p.DT
	}
	if s.EphemeralSubstate[i] >= 1 {
		s.DestroyEphemeral(idx, true)
		return
	}

	remaining := s.EphemeralMaxLifetime[i] - (now - s.EphemeralStartTime[i])
	if remaining <= 0 {
		s.DestroyEphemeral(idx, true)
	}
}

// DebrisAlpha returns the linear lifetime-based fade for a debris particle:
// 1 at spawn, 0 at expiry.
func (s *Store) DebrisAlpha(i int, now float64) float64 {
	lifetime := s.EphemeralMaxLifetime[i]
	if lifetime <= 0 {
		return 0
	}
	remaining := lifetime - (now - s.EphemeralStartTime[i])
	if remaining < 0 {
		return 0
	}
	if remaining > lifetime {
		return 1
	}
	return remaining / lifetime
}

// SparkleFrame returns the sparkle's animation progress in [0, 1], driving
// which frame of the sparkle animation is rendered.
func (s *Store) SparkleFrame(i int) float64 { return s.EphemeralSubstate[i] }
