package mesh

import (
	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/particle"
)

// ShipImage is the decoded pixel grid a ship layer parses into: one
// material lookup (or nil for background) per cell, row-major.
type ShipImage struct {
	Width, Height int
	Cell          []*material.Material // len == Width*Height
	IsLeaking     []bool               // len == Width*Height
}

func (img *ShipImage) at(x, y int) *material.Material {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return nil
	}
	return img.Cell[y*img.Width+x]
}

func (img *ShipImage) leaking(x, y int) bool {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return false
	}
	return img.IsLeaking[y*img.Width+x]
}

// ParticleIndexGrid replays the same row-major, non-background-only scan
// Build uses to assign particle indices, so a ship-layer decoder can map a
// pixel position to the particle index Build gave it without duplicating
// the assignment order itself.
func ParticleIndexGrid(img *ShipImage) []core.ParticleIndex {
	out := make([]core.ParticleIndex, img.Width*img.Height)
	next := 0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if img.at(x, y) == nil {
				out[y*img.Width+x] = core.NoParticle
				continue
			}
			out[y*img.Width+x] = core.ParticleIndex(next)
			next++
		}
	}
	return out
}

// neighborOffsets is the 8-neighborhood scan order, grounded on the
// teacher's Moore-neighborhood iteration used for CA updates.
var neighborOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// BuildParams carries the simulation constants needed during construction.
type BuildParams struct {
	PixelSpacing float64
	Coeff        CoefficientParams
	RopeStiffness, RopeDamping, RopeStrength float64
}

// Build performs the five-step ship-image-to-graph construction:
// instantiate particles from non-background pixels, connect 8-neighbors
// with springs, triangulate 2x2 blocks, cross-register triangle/spring
// connectivity, then reorder for locality.
func Build(img *ShipImage, db *material.Database, params BuildParams, extraEphemeralCapacity int, rng *core.RNG, reorder ReorderStrategy) (*particle.Store, *Mesh, error) {
	w, h := img.Width, img.Height

	particleIndexAt := make([]core.ParticleIndex, w*h)
	for i := range particleIndexAt {
		particleIndexAt[i] = core.NoParticle
	}

	nShip := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mat := img.at(x, y)
			if mat == nil {
				continue
			}
			particleIndexAt[y*w+x] = core.ParticleIndex(nShip)
			nShip++
		}
	}

	store := particle.NewStore(nShip, extraEphemeralCapacity, rng)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := particleIndexAt[y*w+x]
			if idx == core.NoParticle {
				continue
			}
			mat := img.at(x, y)
			err := store.AddShipParticle(idx, mat, float64(x)*params.PixelSpacing, float64(y)*params.PixelSpacing,
				mat.Structural.IsRope, img.leaking(x, y))
			if err != nil {
				return nil, nil, err
			}
		}
	}

	// Upper bound on springs: each pixel can start an edge toward 4 of the
	// 8 neighbors without double-counting (the other 4 are covered by the
	// neighbor's own scan); triangles: at most 2 per 2x2 block.
	maxSprings := nShip * 4
	maxTriangles := w * h * 2
	m := New(store, maxSprings, maxTriangles, params.Coeff)

	// Step 2: springs between adjacent non-background pixels. Scan only the
	// four "forward" directions per pixel so each edge is created once.
	springAt := make(map[[2]core.ParticleIndex]core.SpringIndex)
	forward := neighborOffsets[:4]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := particleIndexAt[y*w+x]
			if a == core.NoParticle {
				continue
			}
			for _, off := range forward {
				nx, ny := x+off[0], y+off[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				b := particleIndexAt[ny*w+nx]
				if b == core.NoParticle {
					continue
				}
				restLength := params.PixelSpacing
				if off[0] != 0 && off[1] != 0 {
					restLength *= diagonalFactor
				}
				matA := img.at(x, y)
				stiffness, damping, strength := matA.Structural.Stiffness, defaultDamping, matA.Structural.Strength
				isRope := matA.Structural.IsRope
				if isRope {
					stiffness, damping, strength = params.RopeStiffness, params.RopeDamping, params.RopeStrength
				}
				springIdx := m.AddSpring(a, b, restLength, stiffness, damping, strength, isRope)
				springAt[key(a, b)] = springIdx
			}
		}
	}

	// Step 3: triangulate each 2x2 block with >= 3 live particles into one
	// or two non-overlapping triangles, each edge an existing spring.
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			tl := particleIndexAt[y*w+x]
			tr := particleIndexAt[y*w+x+1]
			bl := particleIndexAt[(y+1)*w+x]
			br := particleIndexAt[(y+1)*w+x+1]
			triangulateBlock(m, springAt, tl, tr, bl, br)
		}
	}

	store.FinishConstruction()

	// Step 5: reorder for locality.
	if reorder != nil {
		reorder.Reorder(store, m)
	}

	return store, m, nil
}

const diagonalFactor = 1.4142135623730951 // sqrt(2)
const defaultDamping = 0.0

func key(a, b core.ParticleIndex) [2]core.ParticleIndex {
	if a < b {
		return [2]core.ParticleIndex{a, b}
	}
	return [2]core.ParticleIndex{b, a}
}

func springBetween(springAt map[[2]core.ParticleIndex]core.SpringIndex, a, b core.ParticleIndex) (core.SpringIndex, bool) {
	idx, ok := springAt[key(a, b)]
	return idx, ok
}

// triangulateBlock picks, among the four corners of a 2x2 pixel block, up to
// two triangles such that each chosen triangle's three edges already exist
// as springs and the two triangles (if both chosen) don't overlap: the
// diagonal tl-br or tr-bl, whichever exists as a spring, splits the quad.
func triangulateBlock(m *Mesh, springAt map[[2]core.ParticleIndex]core.SpringIndex, tl, tr, bl, br core.ParticleIndex) {
	live := 0
	for _, p := range [4]core.ParticleIndex{tl, tr, bl, br} {
		if p != core.NoParticle {
			live++
		}
	}
	if live < 3 {
		return
	}

	tryTriangle := func(a, b, c core.ParticleIndex) bool {
		if a == core.NoParticle || b == core.NoParticle || c == core.NoParticle {
			return false
		}
		sab, ok1 := springBetween(springAt, a, b)
		sbc, ok2 := springBetween(springAt, b, c)
		sca, ok3 := springBetween(springAt, c, a)
		if !ok1 || !ok2 || !ok3 {
			return false
		}
		m.AddTriangle([3]core.ParticleIndex{a, b, c}, [3]core.SpringIndex{sab, sbc, sca})
		return true
	}

	// Prefer splitting along the tl-br diagonal; if that diagonal spring
	// doesn't exist (because tl or br is missing), fall back to tr-bl.
	if _, ok := springBetween(springAt, tl, br); ok || (tl != core.NoParticle && br != core.NoParticle) {
		madeOne := tryTriangle(tl, tr, br)
		madeTwo := tryTriangle(tl, br, bl)
		if madeOne || madeTwo {
			return
		}
	}
	tryTriangle(tr, br, bl)
	tryTriangle(tl, tr, bl)
}
