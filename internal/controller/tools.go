package controller

import (
	"shipbreaker/internal/core"
	"shipbreaker/internal/particle"
)

// MoveTarget selects whether a drag tool moves a single picked particle or
// every particle sharing its connected component.
type MoveTarget int

const (
	MoveElement MoveTarget = iota
	MoveShip
)

// HeatBlasterAction selects whether the heat blaster heats or cools.
type HeatBlasterAction int

const (
	HeatBlasterHeat HeatBlasterAction = iota
	HeatBlasterCool
)

// PickToMove finds the ship particle nearest a screen-space point within
// PickRadius, returning ok=false if nothing qualifies.
func (c *Controller) PickToMove(screenX, screenY float64) (core.ParticleIndex, bool) {
	x, y := c.ToWorld(screenX, screenY)
	return nearestShipParticle(c.w.Store(), x, y, PickRadius)
}

// MoveBy applies an external-force impulse toward closing offset over the
// next tick, scaled by inertia (higher inertia resists the tug more). target
// selects whether idx alone moves, or every particle sharing its connected
// component (a whole-ship drag).
func (c *Controller) MoveBy(idx core.ParticleIndex, target MoveTarget, offsetX, offsetY, inertia float64) {
	if inertia <= 0 {
		inertia = 1
	}
	store := c.w.Store()
	for _, p := range c.moveTargets(idx, target) {
		mass := store.CurrentMass[p]
		if mass <= 0 {
			mass = 1
		}
		c.w.Solver().ApplyExternalForce(p, offsetX*mass/inertia, offsetY*mass/inertia)
	}
}

// RotateBy applies a tangential external-force field around a screen-space
// pivot, rotating the target by angleRadians over the next tick, the same
// force-field idiom DrawTo/SwirlAt use rather than teleporting positions.
func (c *Controller) RotateBy(idx core.ParticleIndex, target MoveTarget, pivotScreenX, pivotScreenY, angleRadians, inertia float64) {
	if inertia <= 0 {
		inertia = 1
	}
	pivotX, pivotY := c.ToWorld(pivotScreenX, pivotScreenY)
	store := c.w.Store()
	for _, p := range c.moveTargets(idx, target) {
		rx, ry := store.PosX[p]-pivotX, store.PosY[p]-pivotY
		mass := store.CurrentMass[p]
		if mass <= 0 {
			mass = 1
		}
		fx, fy := -ry*angleRadians, rx*angleRadians
		c.w.Solver().ApplyExternalForce(p, fx*mass/inertia, fy*mass/inertia)
	}
}

// moveTargets resolves idx plus (for MoveShip) every particle sharing its
// connected component.
func (c *Controller) moveTargets(idx core.ParticleIndex, target MoveTarget) []core.ParticleIndex {
	if target == MoveElement {
		return []core.ParticleIndex{idx}
	}
	store := c.w.Store()
	component := store.ComponentID[idx]
	var out []core.ParticleIndex
	for i := 0; i < store.NShip(); i++ {
		p := core.ParticleIndex(i)
		if store.IsLive(p) && store.ComponentID[p] == component {
			out = append(out, p)
		}
	}
	return out
}

// DestroyAt detaches every live ship particle within radius of a
// screen-space point, spawning debris and firing the detach reaction (leak
// marking, electrical unregister, component relabel) World wires on New.
func (c *Controller) DestroyAt(screenX, screenY, radius float64) {
	x, y := c.ToWorld(screenX, screenY)
	store := c.w.Store()
	for _, idx := range particlesWithin(store, x, y, radius) {
		c.detach(idx)
	}
}

// SawThrough detaches every live ship particle within SawRadius of the
// segment from a to b (screen space), approximating a cut along a dragged
// line by sampling points along it.
const SawRadius = 0.75
const sawSamples = 24

func (c *Controller) SawThrough(aScreenX, aScreenY, bScreenX, bScreenY float64) {
	ax, ay := c.ToWorld(aScreenX, aScreenY)
	bx, by := c.ToWorld(bScreenX, bScreenY)
	store := c.w.Store()
	seen := make(map[core.ParticleIndex]bool)
	for i := 0; i <= sawSamples; i++ {
		t := float64(i) / sawSamples
		x := core.Lerp(ax, bx, t)
		y := core.Lerp(ay, by, t)
		for _, idx := range particlesWithin(store, x, y, SawRadius) {
			if seen[idx] {
				continue
			}
			seen[idx] = true
			c.detach(idx)
		}
	}
}

// ScrubThrough samples along the segment from a to b and restores full decay
// (the integrity/soot field combustion's smothering checks read) to every
// particle found within SawRadius, the tool's "clean this up" effect.
func (c *Controller) ScrubThrough(aScreenX, aScreenY, bScreenX, bScreenY float64) {
	ax, ay := c.ToWorld(aScreenX, aScreenY)
	bx, by := c.ToWorld(bScreenX, bScreenY)
	store := c.w.Store()
	for i := 0; i <= sawSamples; i++ {
		t := float64(i) / sawSamples
		x := core.Lerp(ax, bx, t)
		y := core.Lerp(ay, by, t)
		for _, idx := range particlesWithin(store, x, y, SawRadius) {
			store.Decay[idx] = 1
		}
	}
}

func (c *Controller) detach(idx core.ParticleIndex) {
	store := c.w.Store()
	vx := c.rng.Float64Range(-1, 1)
	vy := c.rng.Float64Range(-1, 1)
	store.Detach(idx, c.w.Mesh(), vx, vy, particle.DetachOptions{
		GenerateDebris: true,
		Now:            c.w.Now(),
		MaxLifetime:    c.w.EphemeralMaxLifetime(),
		FireEvent:      true,
	})
}

// ApplyHeatBlasterAt raises (Heat) or lowers (Cool) the temperature of every
// live ship particle within radius, force-igniting dry particles already
// past their ignition point when heating.
func (c *Controller) ApplyHeatBlasterAt(screenX, screenY, radius float64, action HeatBlasterAction) {
	const heatDelta = 500
	x, y := c.ToWorld(screenX, screenY)
	store := c.w.Store()
	for _, idx := range particlesWithin(store, x, y, radius) {
		switch action {
		case HeatBlasterHeat:
			store.Temperature[idx] += heatDelta
			mat := store.StructuralMaterial[idx]
			if mat != nil && mat.Structural.IgnitionTemperature > 0 && store.Water[idx] <= 0 &&
				store.Temperature[idx] > mat.Structural.IgnitionTemperature {
				c.w.Combustion().Ignite(idx)
			}
		case HeatBlasterCool:
			store.Temperature[idx] -= heatDelta
			if store.Temperature[idx] < 0 {
				store.Temperature[idx] = 0
			}
			c.w.Combustion().Extinguish(idx)
		}
	}
}

// ExtinguishFireAt smothers every currently-burning particle within radius.
func (c *Controller) ExtinguishFireAt(screenX, screenY, radius float64) {
	x, y := c.ToWorld(screenX, screenY)
	store := c.w.Store()
	for _, idx := range particlesWithin(store, x, y, radius) {
		c.w.Combustion().Extinguish(idx)
	}
}

// DrawTo pulls every live ship particle within 4*PickRadius toward the point,
// an inverse-distance attraction force scaled by strength.
func (c *Controller) DrawTo(screenX, screenY, strength float64) {
	x, y := c.ToWorld(screenX, screenY)
	store := c.w.Store()
	for _, idx := range particlesWithin(store, x, y, PickRadius*4) {
		dx, dy, dist := core.Normalize(x-store.PosX[idx], y-store.PosY[idx])
		if dist < 1e-6 {
			continue
		}
		mag := strength / dist
		c.w.Solver().ApplyExternalForce(idx, dx*mag, dy*mag)
	}
}

// SwirlAt applies a tangential (perpendicular-to-radius) force to every live
// ship particle within 4*PickRadius, a localized vortex.
func (c *Controller) SwirlAt(screenX, screenY, strength float64) {
	x, y := c.ToWorld(screenX, screenY)
	store := c.w.Store()
	for _, idx := range particlesWithin(store, x, y, PickRadius*4) {
		rx, ry := store.PosX[idx]-x, store.PosY[idx]-y
		c.w.Solver().ApplyExternalForce(idx, -ry*strength, rx*strength)
	}
}

// TogglePinAt flips IsPinned on the nearest ship particle within PickRadius.
func (c *Controller) TogglePinAt(screenX, screenY float64) {
	idx, ok := c.PickToMove(screenX, screenY)
	if !ok {
		return
	}
	store := c.w.Store()
	store.IsPinned[idx] = !store.IsPinned[idx]
}

// InjectBubblesAt spawns one air-bubble ephemeral at the point, evicting the
// oldest ephemeral if the pool is full since this is an explicit user
// action rather than a best-effort cosmetic spawn.
func (c *Controller) InjectBubblesAt(screenX, screenY float64) {
	x, y := c.ToWorld(screenX, screenY)
	store := c.w.Store()
	_, _ = store.CreateEphemeral(particle.EphemeralParams{
		Kind:        particle.KindAirBubble,
		PosX:        x,
		PosY:        y,
		StartTime:   c.w.Now(),
		MaxLifetime: c.w.EphemeralMaxLifetime(),
	}, true)
}

// FloodAt marks the nearest ship particle within PickRadius leaking and adds
// q water to it, up to its material's fill fraction.
func (c *Controller) FloodAt(screenX, screenY, q float64) {
	idx, ok := c.PickToMove(screenX, screenY)
	if !ok {
		return
	}
	store := c.w.Store()
	store.IsLeaking[idx] = true
	mat := store.StructuralMaterial[idx]
	if mat == nil {
		return
	}
	fill := mat.Structural.WaterVolumeFill
	store.Water[idx] += q
	if store.Water[idx] > fill {
		store.Water[idx] = fill
	}
}
