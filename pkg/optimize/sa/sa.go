// Package sa implements a Simulated Annealing router. It starts from a
// shortest-delay path over a hard bandwidth-filtered working graph and
// repeatedly proposes pivot-tail rewrites, accepting worse candidates with a
// probability that shrinks as the temperature cools.
package sa

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
	"github.com/netqos/routeopt/pkg/optimize"
)

// ErrBandwidthInfeasible is returned when no path survives the hard
// bandwidth filter.
var ErrBandwidthInfeasible = errors.New("sa: no path satisfies the bandwidth filter")

// Options configures a single Route call.
type Options struct {
	InitialTemperature float64
	CoolingRate        float64 // per-iteration multiplicative cooling, in (0,1)
	MinTemperature     float64
	MaxIterations      int
	MaxHops            int
	Demand             *float64
}

// DefaultOptions returns the option set used when a caller supplies no
// per-algorithm configuration.
func DefaultOptions() Options {
	return Options{
		InitialTemperature: 100,
		CoolingRate:        0.95,
		MinTemperature:     0.01,
		MaxIterations:      500,
		MaxHops:            64,
	}
}

const infeasiblePenalty = 1e9

// Route runs the annealing search and returns the best path found.
func Route(ctx context.Context, g *graph.Graph, eng *metrics.Engine, s, d graph.NodeID, w metrics.Weights, opts Options, rng *rand.Rand) (optimize.RawResult, error) {
	if !g.HasNode(s) || !g.HasNode(d) {
		return optimize.RawResult{}, errors.New("sa: unknown source or destination")
	}
	if s == d {
		return optimize.RawResult{Path: []graph.NodeID{s}}, nil
	}

	minCapacity := 0.0
	if opts.Demand != nil {
		minCapacity = *opts.Demand
	}

	current, ok := shortestByDelay(g, s, d, minCapacity)
	if !ok {
		return optimize.RawResult{}, ErrBandwidthInfeasible
	}
	currentCost := cost(g, eng, current, w, opts)

	best := append([]graph.NodeID(nil), current...)
	bestCost := currentCost
	notes := "converged"

	temp := opts.InitialTemperature
	for iter := 0; iter < opts.MaxIterations && temp > opts.MinTemperature; iter++ {
		if ctx.Err() != nil {
			notes = "cancelled"
			break
		}

		candidate, ok := pivotTailRewrite(g, current, d, minCapacity, opts, rng)
		if !ok {
			temp *= opts.CoolingRate
			continue
		}
		candidateCost := cost(g, eng, candidate, w, opts)

		if candidateCost < currentCost || acceptWorse(currentCost, candidateCost, temp, rng) {
			current = candidate
			currentCost = candidateCost
			if currentCost < bestCost {
				bestCost = currentCost
				best = append([]graph.NodeID(nil), current...)
			}
		}
		temp *= opts.CoolingRate
	}

	return optimize.RawResult{Path: best, Notes: notes}, nil
}

func cost(g *graph.Graph, eng *metrics.Engine, p []graph.NodeID, w metrics.Weights, opts Options) float64 {
	m, err := eng.Compute(g, p, opts.Demand)
	if err != nil {
		return infeasiblePenalty * 10
	}
	return eng.WeightedSum(m, w, infeasiblePenalty)
}

func acceptWorse(currentCost, candidateCost, temp float64, rng *rand.Rand) bool {
	delta := candidateCost - currentCost
	if temp <= 0 {
		return false
	}
	prob := math.Exp(-delta / temp)
	return rng.Float64() < prob
}

// pivotTailRewrite picks a uniformly random interior index, then
// re-computes the shortest-by-delay tail from that pivot to d -- always
// against the bandwidth-filtered working graph, never the unfiltered graph,
// so init and rewrite never disagree about which edges are usable.
func pivotTailRewrite(g *graph.Graph, current []graph.NodeID, d graph.NodeID, minCapacity float64, opts Options, rng *rand.Rand) ([]graph.NodeID, bool) {
	if len(current) < 3 {
		return nil, false
	}
	pivot := 1 + rng.Intn(len(current)-2)
	tail, ok := shortestByDelay(g, current[pivot], d, minCapacity)
	if !ok {
		return nil, false
	}
	out := make([]graph.NodeID, 0, pivot+len(tail))
	out = append(out, current[:pivot]...)
	out = append(out, tail...)
	return out, true
}

// shortestByDelay finds the path minimizing total link delay over the edges
// whose capacity meets minCapacity, ignoring reliability/resource weights --
// it seeds SA's initial solution and builds every pivot-tail rewrite's tail.
func shortestByDelay(g *graph.Graph, s, d graph.NodeID, minCapacity float64) ([]graph.NodeID, bool) {
	dg := simple.NewWeightedDirectedGraph(0, 0)
	for _, id := range g.NodeIDs() {
		dg.AddNode(simple.Node(id))
	}
	for _, e := range g.Edges() {
		if e.CapacityMbps < minCapacity {
			continue
		}
		dg.SetWeightedEdge(dg.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), e.LinkDelayMS))
		dg.SetWeightedEdge(dg.NewWeightedEdge(simple.Node(e.To), simple.Node(e.From), e.LinkDelayMS))
	}
	shortest := path.DijkstraFrom(simple.Node(s), dg)
	nodes, _ := shortest.To(int64(d))
	if len(nodes) == 0 {
		return nil, false
	}
	out := make([]graph.NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = graph.NodeID(n.ID())
	}
	return out, true
}
