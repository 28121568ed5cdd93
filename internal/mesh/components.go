package mesh

import "shipbreaker/internal/core"

// RecomputeComponents relabels every ship particle's connected-component id
// by flood-filling the live spring graph, and assigns a plane-id within each
// component so draw order stays monotonic inside a connected piece of hull.
// Run once after construction and again whenever structural breaks can have
// split or merged components (a tick's spring-destruction phase, a detach).
func (m *Mesh) RecomputeComponents() {
	store := m.store
	n := store.NShip()
	visited := make([]bool, n)

	var componentID int32
	queue := make([]core.ParticleIndex, 0, n)

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		queue = queue[:0]
		queue = append(queue, core.ParticleIndex(start))
		visited[start] = true

		var planeID int32
		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]

			store.ComponentID[idx] = componentID
			store.PlaneID[idx] = planeID
			planeID++

			for _, ref := range store.ConnectedSprings(idx) {
				if !m.IsSpringLive(ref.Spring) {
					continue
				}
				other := ref.OtherEndpoint
				if !visited[other] {
					visited[other] = true
					queue = append(queue, other)
				}
			}
		}
		componentID++
	}
	store.PlaneDirty = true
}
