package optimize

import (
	"math/rand"

	"github.com/netqos/routeopt/pkg/graph"
)

// RandomWalkTo builds a simple path from 'from' to 'to' by repeatedly
// stepping to a random unvisited neighbor, restarting the walk from 'from'
// up to 25 times on dead ends. It is the "produce a random candidate path"
// primitive GA's population seeding and mutation rely on. minCapacityMbps,
// when non-zero, restricts steps to edges whose capacity meets it.
func RandomWalkTo(rng *rand.Rand, g *graph.Graph, from, to graph.NodeID, minCapacityMbps float64, maxHops int) ([]graph.NodeID, bool) {
	const maxAttempts = 25
	for attempt := 0; attempt < maxAttempts; attempt++ {
		path, ok := attemptWalk(rng, g, from, to, minCapacityMbps, maxHops)
		if ok {
			return path, true
		}
	}
	return nil, false
}

func attemptWalk(rng *rand.Rand, g *graph.Graph, from, to graph.NodeID, minCapacityMbps float64, maxHops int) ([]graph.NodeID, bool) {
	visited := map[graph.NodeID]bool{from: true}
	path := []graph.NodeID{from}
	cur := from
	for hop := 0; hop < maxHops; hop++ {
		if cur == to {
			return path, true
		}
		candidates := make([]graph.NodeID, 0, 4)
		for _, n := range g.Neighbors(cur) {
			if visited[n] {
				continue
			}
			if minCapacityMbps > 0 {
				e, err := g.Edge(cur, n)
				if err != nil || e.CapacityMbps < minCapacityMbps {
					continue
				}
			}
			candidates = append(candidates, n)
		}
		if len(candidates) == 0 {
			return nil, false
		}
		next := candidates[rng.Intn(len(candidates))]
		visited[next] = true
		path = append(path, next)
		cur = next
	}
	if cur == to {
		return path, true
	}
	return nil, false
}
