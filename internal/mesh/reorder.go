package mesh

import (
	"sort"

	"shipbreaker/internal/core"
	"shipbreaker/internal/particle"
)

// ReorderStrategy rearranges a freshly built mesh's iteration order to
// improve vertex-cache and memory locality. It is
// isolated behind this interface so a trivial identity strategy can stand in
// during bring-up or testing without touching Build's other four steps.
type ReorderStrategy interface {
	Reorder(store *particle.Store, m *Mesh)
}

// IdentityReorder performs no reordering. Useful in tests where stable,
// construction-order indices make assertions easier to write.
type IdentityReorder struct{}

func (IdentityReorder) Reorder(*particle.Store, *Mesh) {}

// ForsythReorder reorders triangles by a Tom Forsyth-style vertex cache
// reuse score: at each step it picks the triangle whose vertices are most
// recently used, approximating an LRU vertex cache of cacheSize entries.
// Particle and spring order are left as constructed; only triangle
// iteration order changes, since triangles are what vertex shaders stream
// through a GPU cache.
type ForsythReorder struct {
	CacheSize int
}

func (f ForsythReorder) Reorder(store *particle.Store, m *Mesh) {
	cacheSize := f.CacheSize
	if cacheSize <= 0 {
		cacheSize = 32
	}

	n := len(m.triangles)
	if n == 0 {
		return
	}

	newOrder := make([]Triangle, 0, n)
	oldToNew := make(map[core.TriangleIndex]core.TriangleIndex, n)
	used := make([]bool, n)

	cache := make([]int, 0, cacheSize)
	inCache := make(map[int]int)

	score := func(tri *Triangle) int {
		s := 0
		for _, v := range tri.Vertices {
			if pos, ok := inCache[int(v)]; ok {
				s += cacheSize - pos
			}
		}
		return s
	}

	for picked := 0; picked < n; picked++ {
		best := -1
		bestScore := -1
		for i := 0; i < n; i++ {
			if used[i] || m.triangles[i].destroyed {
				continue
			}
			s := score(&m.triangles[i])
			if s > bestScore {
				bestScore = s
				best = i
			}
		}
		if best == -1 {
			break
		}
		used[best] = true
		oldToNew[core.TriangleIndex(best)] = core.TriangleIndex(len(newOrder))
		newOrder = append(newOrder, m.triangles[best])

		for _, v := range m.triangles[best].Vertices {
			cache = append([]int{int(v)}, cache...)
		}
		if len(cache) > cacheSize {
			cache = cache[:cacheSize]
		}
		inCache = make(map[int]int, len(cache))
		for pos, v := range cache {
			if _, exists := inCache[v]; !exists {
				inCache[v] = pos
			}
		}
	}
	// Destroyed slots keep their relative order at the tail.
	for i, tri := range m.triangles {
		if tri.destroyed {
			oldToNew[core.TriangleIndex(i)] = core.TriangleIndex(len(newOrder))
			newOrder = append(newOrder, tri)
		}
	}
	m.RemapTriangles(newOrder, oldToNew)
}

// StripeReorder groups triangles by the horizontal band their centroid
// falls in, so that triangles close in screen space are iterated close
// together; particle and spring order are left as constructed.
// Useful for ephemeral-heavy or rope-only meshes where triangle
// vertex-cache locality doesn't pay off as well as it does for a densely
// triangulated hull.
type StripeReorder struct {
	StripeHeight float64
}

func (s StripeReorder) Reorder(store *particle.Store, m *Mesh) {
	height := s.StripeHeight
	if height <= 0 {
		height = 1
	}
	n := len(m.triangles)
	if n == 0 {
		return
	}
	stripeOf := func(tri *Triangle) int {
		y := 0.0
		for _, v := range tri.Vertices {
			y += store.PosY[v]
		}
		y /= 3
		return int(y / height)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return stripeOf(&m.triangles[order[i]]) < stripeOf(&m.triangles[order[j]])
	})

	newOrder := make([]Triangle, n)
	oldToNew := make(map[core.TriangleIndex]core.TriangleIndex, n)
	for newIdx, oldIdx := range order {
		newOrder[newIdx] = m.triangles[oldIdx]
		oldToNew[core.TriangleIndex(oldIdx)] = core.TriangleIndex(newIdx)
	}
	m.RemapTriangles(newOrder, oldToNew)
}
