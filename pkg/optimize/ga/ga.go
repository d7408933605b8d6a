// Package ga implements a Genetic Algorithm router over candidate paths: a
// population of paths is scored, the fittest half is kept as parents,
// common-node crossover recombines pairs, and tail-rewrite mutation explores
// new sub-paths. Each new generation consists of offspring only.
package ga

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"golang.org/x/exp/slices"

	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
	"github.com/netqos/routeopt/pkg/optimize"
)

// ErrNoFeasiblePath is returned when the population never produces a single
// path from source to destination.
var ErrNoFeasiblePath = errors.New("ga: unable to build any candidate path")

// Options configures a single Route call.
type Options struct {
	PopulationSize int
	Generations    int
	MutationRate   float64 // probability an offspring's tail is rewritten
	MaxHops        int
	Demand         *float64
}

// DefaultOptions returns the option set used when a caller supplies no
// per-algorithm configuration.
func DefaultOptions() Options {
	return Options{
		PopulationSize: 40,
		Generations:    50,
		MutationRate:   0.15,
		MaxHops:        64,
	}
}

const infeasiblePenalty = 1e9

type individual struct {
	path []graph.NodeID
	cost float64
}

// Route runs the genetic search and returns the best path found.
func Route(ctx context.Context, g *graph.Graph, eng *metrics.Engine, s, d graph.NodeID, w metrics.Weights, opts Options, rng *rand.Rand) (optimize.RawResult, error) {
	if !g.HasNode(s) || !g.HasNode(d) {
		return optimize.RawResult{}, errors.New("ga: unknown source or destination")
	}
	if s == d {
		return optimize.RawResult{Path: []graph.NodeID{s}}, nil
	}

	pop := seedPopulation(g, s, d, opts, rng)
	if len(pop) == 0 {
		return optimize.RawResult{}, ErrNoFeasiblePath
	}
	score(pop, g, eng, w, opts)
	sortByFitness(pop)

	bestPath := append([]graph.NodeID(nil), pop[0].path...)
	bestCost := pop[0].cost
	notes := "converged"

	for gen := 0; gen < opts.Generations; gen++ {
		if ctx.Err() != nil {
			notes = "cancelled"
			break
		}
		if math.IsInf(pop[0].cost, 1) {
			notes = "no feasible parent"
			break
		}

		survivors := pop[:max(2, len(pop)/2)]
		children := make([]individual, 0, opts.PopulationSize)

		for len(children) < opts.PopulationSize {
			p1 := survivors[rng.Intn(len(survivors))]
			p2 := survivors[rng.Intn(len(survivors))]
			child, ok := crossover(p1.path, p2.path, rng)
			if !ok {
				continue
			}
			if rng.Float64() < opts.MutationRate {
				child, ok = mutate(g, child, s, d, opts, rng)
				if !ok {
					continue
				}
			}
			children = append(children, individual{path: child})
		}

		pop = children
		score(pop, g, eng, w, opts)
		sortByFitness(pop)

		if pop[0].cost < bestCost {
			bestCost = pop[0].cost
			bestPath = append([]graph.NodeID(nil), pop[0].path...)
		}
	}

	if bestPath == nil {
		return optimize.RawResult{}, ErrNoFeasiblePath
	}
	return optimize.RawResult{Path: bestPath, Notes: notes}, nil
}

func seedPopulation(g *graph.Graph, s, d graph.NodeID, opts Options, rng *rand.Rand) []individual {
	pop := make([]individual, 0, opts.PopulationSize)
	for i := 0; i < opts.PopulationSize; i++ {
		p, ok := optimize.RandomWalkTo(rng, g, s, d, 0, opts.MaxHops)
		if !ok {
			continue
		}
		pop = append(pop, individual{path: p})
	}
	return pop
}

func score(pop []individual, g *graph.Graph, eng *metrics.Engine, w metrics.Weights, opts Options) {
	for i := range pop {
		if !isSimple(pop[i].path) {
			pop[i].cost = math.Inf(1)
			continue
		}
		m, err := eng.Compute(g, pop[i].path, opts.Demand)
		if err != nil {
			pop[i].cost = math.Inf(1)
			continue
		}
		pop[i].cost = eng.WeightedSum(m, w, infeasiblePenalty)
	}
}

// isSimple reports whether path visits no node twice. Crossover (see below)
// can produce paths that repeat a node; those are scored +Inf rather than
// rejected outright.
func isSimple(path []graph.NodeID) bool {
	seen := make(map[graph.NodeID]bool, len(path))
	for _, n := range path {
		if seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

func sortByFitness(pop []individual) {
	slices.SortFunc(pop, func(a, b individual) bool { return a.cost < b.cost })
}

// crossover finds a node common to both parents (other than the shared
// endpoints) and splices parent1's prefix up to that node with parent2's
// suffix from that node onward. The result is not guaranteed to be a simple
// path when the two halves revisit a node; score treats such a path as
// infeasible rather than rejecting it at construction time.
func crossover(p1, p2 []graph.NodeID, rng *rand.Rand) ([]graph.NodeID, bool) {
	common := make(map[graph.NodeID][]int)
	for i, n := range p2 {
		common[n] = append(common[n], i)
	}
	candidates := make([]int, 0)
	for i := 1; i < len(p1)-1; i++ {
		if _, ok := common[p1[i]]; ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return append([]graph.NodeID(nil), p1...), true
	}
	i := candidates[rng.Intn(len(candidates))]
	node := p1[i]
	j := common[node][rng.Intn(len(common[node]))]

	child := make([]graph.NodeID, 0, i+len(p2)-j)
	child = append(child, p1[:i+1]...)
	child = append(child, p2[j+1:]...)
	return child, true
}

// mutate rewrites the tail of path from a random pivot onward with a fresh
// random walk to the destination.
func mutate(g *graph.Graph, path []graph.NodeID, s, d graph.NodeID, opts Options, rng *rand.Rand) ([]graph.NodeID, bool) {
	if len(path) < 2 {
		return path, true
	}
	pivot := rng.Intn(len(path) - 1)
	tail, ok := optimize.RandomWalkTo(rng, g, path[pivot], d, 0, opts.MaxHops)
	if !ok {
		return path, true
	}
	child := make([]graph.NodeID, 0, pivot+len(tail))
	child = append(child, path[:pivot]...)
	child = append(child, tail...)
	return child, true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
