// Package aco implements an Ant Colony Optimization router: ants
// probabilistically build paths biased by a pheromone table and a
// distance/reliability heuristic. After each iteration every edge's
// pheromone evaporates, then every ant that reached the destination deposits
// pheromone along its path in proportion to how cheap that path was.
package aco

import (
	"context"
	"math"
	"math/rand"

	lru "github.com/hashicorp/golang-lru"

	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
	"github.com/netqos/routeopt/pkg/optimize"
)

// Options configures a single Route call.
type Options struct {
	Iterations       int
	Ants             int
	Alpha            float64 // pheromone exponent
	Beta             float64 // heuristic exponent
	Rho              float64 // evaporation rate, in (0,1)
	InitialPheromone float64
	Q                float64 // deposit scale
	TauMin           float64 // pheromone floor
	TauMax           float64 // pheromone ceiling
	MaxHops          int
	Demand           *float64
}

// DefaultOptions returns the option set used when a caller supplies no
// per-algorithm configuration.
func DefaultOptions() Options {
	return Options{
		Iterations:       60,
		Ants:             20,
		Alpha:            1.0,
		Beta:             2.0,
		Rho:              0.3,
		InitialPheromone: 0.1,
		Q:                1.0,
		TauMin:           0.01,
		TauMax:           10_000,
		MaxHops:          64,
	}
}

type edgeKey struct{ u, v graph.NodeID }

// Route runs the colony and returns the best path found. It cancels and
// returns the best-so-far path with Notes set to "cancelled" if ctx is
// cancelled between iterations.
func Route(ctx context.Context, g *graph.Graph, eng *metrics.Engine, s, d graph.NodeID, w metrics.Weights, opts Options, rng *rand.Rand) (optimize.RawResult, error) {
	if !g.HasNode(s) || !g.HasNode(d) {
		return optimize.RawResult{}, errUnknownNode
	}
	if s == d {
		return optimize.RawResult{Path: []graph.NodeID{s}}, nil
	}

	pheromone := make(map[edgeKey]float64)
	for _, e := range g.Edges() {
		pheromone[edgeKey{e.From, e.To}] = opts.InitialPheromone
		pheromone[edgeKey{e.To, e.From}] = opts.InitialPheromone
	}

	etaCache, _ := lru.NewARC(4 * g.EdgeCount())

	var bestPath []graph.NodeID
	bestCost := math.Inf(1)
	notes := "converged"

	for iter := 0; iter < opts.Iterations; iter++ {
		if ctx.Err() != nil {
			notes = "cancelled"
			break
		}

		type antResult struct {
			path []graph.NodeID
			cost float64
		}
		results := make([]antResult, 0, opts.Ants)

		for a := 0; a < opts.Ants; a++ {
			p, ok := buildAntPath(g, eng, s, d, w, opts, pheromone, etaCache, rng)
			if !ok {
				continue
			}
			m, err := eng.Compute(g, p, opts.Demand)
			if err != nil {
				continue
			}
			cost := eng.WeightedSum(m, w, infeasiblePenalty)
			results = append(results, antResult{path: p, cost: cost})
			if cost < bestCost {
				bestCost = cost
				bestPath = p
			}
		}

		// evaporate
		for k := range pheromone {
			pheromone[k] *= (1 - opts.Rho)
			if pheromone[k] < opts.TauMin {
				pheromone[k] = opts.TauMin
			}
		}
		// deposit along each ant's path, proportional to how good it was
		for _, r := range results {
			deposit := opts.Q / math.Max(r.cost, 0.1)
			for i := 0; i < len(r.path)-1; i++ {
				k := edgeKey{r.path[i], r.path[i+1]}
				pheromone[k] = math.Min(pheromone[k]+deposit, opts.TauMax)
			}
		}
	}

	if bestPath == nil {
		return optimize.RawResult{}, errNoFeasiblePath
	}
	return optimize.RawResult{Path: bestPath, Notes: notes}, nil
}

const infeasiblePenalty = 1e9

func buildAntPath(g *graph.Graph, eng *metrics.Engine, s, d graph.NodeID, w metrics.Weights, opts Options, pheromone map[edgeKey]float64, etaCache *lru.ARCCache, rng *rand.Rand) ([]graph.NodeID, bool) {
	visited := map[graph.NodeID]bool{s: true}
	path := []graph.NodeID{s}
	cur := s

	for hop := 0; hop < opts.MaxHops; hop++ {
		if cur == d {
			return path, true
		}
		neighbors := g.Neighbors(cur)
		type candidate struct {
			id     graph.NodeID
			weight float64
		}
		candidates := make([]candidate, 0, len(neighbors))
		var total float64
		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			if opts.Demand != nil {
				e, err := g.Edge(cur, n)
				if err != nil || e.CapacityMbps < *opts.Demand {
					continue
				}
			}
			tau := math.Min(pheromone[edgeKey{cur, n}], opts.TauMax)
			eta := heuristic(g, eng, cur, n, w, etaCache)
			wt := math.Max(math.Pow(tau, opts.Alpha)*math.Pow(eta, opts.Beta), 1e-6)
			if math.IsNaN(wt) {
				continue
			}
			candidates = append(candidates, candidate{id: n, weight: wt})
			total += wt
		}
		if len(candidates) == 0 {
			return nil, false
		}
		pick := rng.Float64() * total
		next := candidates[len(candidates)-1].id
		for _, c := range candidates {
			pick -= c.weight
			if pick <= 0 {
				next = c.id
				break
			}
		}
		visited[next] = true
		path = append(path, next)
		cur = next
	}
	return nil, false
}

// heuristic returns eta(u,v): higher for shorter, more reliable, higher
// capacity edges. Results are memoized per (u,v) for the lifetime of one
// Route call since the underlying graph and weights never change mid-run.
func heuristic(g *graph.Graph, eng *metrics.Engine, u, v graph.NodeID, w metrics.Weights, cache *lru.ARCCache) float64 {
	key := edgeKey{u, v}
	if cache != nil {
		if v, ok := cache.Get(key); ok {
			return v.(float64)
		}
	}
	e, err := g.Edge(u, v)
	if err != nil {
		return 0
	}
	vNode, _ := g.Node(v)
	cost := w.Delay*e.LinkDelayMS + w.Reliability*(-math.Log(math.Max(e.LinkReliability, eng.ReliabilityFloor()))+(-math.Log(math.Max(vNode.NodeReliability, eng.ReliabilityFloor())))) + w.Resource*(eng.ReferenceBandwidthMbps()/e.CapacityMbps)
	eta := 1.0 / (1.0 + cost)
	if cache != nil {
		cache.Add(key, eta)
	}
	return eta
}
