// Package qlearn implements a tabular Q-learning router. The state space is
// simplified to the current node, rewarding arrival at the destination and
// penalizing loops, while hops over edges below the demanded capacity are
// never offered as actions, so the learned policy converges to a low-cost
// simple path.
package qlearn

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
	"github.com/netqos/routeopt/pkg/optimize"
)

// ErrNoFeasiblePath is returned when the greedy final rollout never reaches
// the destination.
var ErrNoFeasiblePath = errors.New("qlearn: greedy rollout failed to reach destination")

// Options configures a single Route call.
type Options struct {
	Episodes     int
	Alpha        float64 // learning rate
	Gamma        float64 // discount factor
	Epsilon      float64 // initial exploration rate
	EpsilonMin   float64 // exploration rate floor
	EpsilonDecay float64 // multiplicative decay per episode
	LoopPenalty  float64 // R_loop
	StepPenalty  float64 // R_step
	MaxHops      int
	Demand       *float64
}

// DefaultOptions returns the option set used when a caller supplies no
// per-algorithm configuration.
func DefaultOptions() Options {
	return Options{
		Episodes:     400,
		Alpha:        0.3,
		Gamma:        0.9,
		Epsilon:      1.0,
		EpsilonMin:   0.01,
		EpsilonDecay: 0.995,
		LoopPenalty:  -1000,
		StepPenalty:  -1,
		MaxHops:      64,
	}
}

const infeasiblePenalty = 1e9

// feasibleNeighbors returns cur's neighbors not already in visited whose
// edge capacity meets demand, matching the same feasibility filter ACO
// applies to its candidate set.
func feasibleNeighbors(g *graph.Graph, cur graph.NodeID, visited map[graph.NodeID]bool, demand *float64) []graph.NodeID {
	all := g.Neighbors(cur)
	out := make([]graph.NodeID, 0, len(all))
	for _, n := range all {
		if visited[n] {
			continue
		}
		if demand != nil {
			e, err := g.Edge(cur, n)
			if err != nil || e.CapacityMbps < *demand {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// Route trains a Q-table over Options.Episodes episodes and then greedily
// rolls out the learned policy once to produce the returned path.
func Route(ctx context.Context, g *graph.Graph, eng *metrics.Engine, s, d graph.NodeID, w metrics.Weights, opts Options, rng *rand.Rand) (optimize.RawResult, error) {
	if !g.HasNode(s) || !g.HasNode(d) {
		return optimize.RawResult{}, errors.New("qlearn: unknown source or destination")
	}
	if s == d {
		return optimize.RawResult{Path: []graph.NodeID{s}}, nil
	}

	q := make(map[graph.NodeID]map[graph.NodeID]float64)
	epsilon := opts.Epsilon
	notes := "converged"

	for ep := 0; ep < opts.Episodes; ep++ {
		if ctx.Err() != nil {
			notes = "cancelled"
			break
		}
		runEpisode(g, eng, s, d, w, opts, q, epsilon, rng)
		epsilon *= opts.EpsilonDecay
		if epsilon < opts.EpsilonMin {
			epsilon = opts.EpsilonMin
		}
	}

	path, ok := greedyRollout(g, q, s, d, opts)
	if !ok {
		return optimize.RawResult{}, ErrNoFeasiblePath
	}
	return optimize.RawResult{Path: path, Notes: notes}, nil
}

// runEpisode walks one S->D rollout, training q in place. The action space
// at each state is every demand-feasible neighbor, independent of the path
// taken to reach the state (the state is Markov in the current node per the
// model's deliberate simplification); the per-episode visited set only
// decides when to cut the episode short as a loop, not which actions exist.
func runEpisode(g *graph.Graph, eng *metrics.Engine, s, d graph.NodeID, w metrics.Weights, opts Options, q map[graph.NodeID]map[graph.NodeID]float64, epsilon float64, rng *rand.Rand) {
	visited := map[graph.NodeID]bool{s: true}
	path := []graph.NodeID{s}
	cur := s
	for hop := 0; hop < opts.MaxHops && cur != d; hop++ {
		actions := feasibleNeighbors(g, cur, nil, opts.Demand)
		if len(actions) == 0 {
			return
		}
		next := selectAction(q, cur, actions, epsilon, rng)
		ensureState(q, cur)
		ensureState(q, next)

		if visited[next] {
			old := q[cur][next]
			q[cur][next] = old + opts.Alpha*(opts.LoopPenalty-old)
			return
		}

		var reward float64
		if next == d {
			m, err := eng.Compute(g, append(append([]graph.NodeID(nil), path...), next), opts.Demand)
			cost := infeasiblePenalty
			if err == nil {
				cost = eng.WeightedSum(m, w, infeasiblePenalty)
			}
			reward = 10000 / (cost + 1e-9)
		} else {
			reward = opts.StepPenalty
		}

		bestNext := bestQ(q, next, feasibleNeighbors(g, next, nil, opts.Demand))
		old := q[cur][next]
		q[cur][next] = old + opts.Alpha*(reward+opts.Gamma*bestNext-old)

		visited[next] = true
		path = append(path, next)
		cur = next
	}
}

func selectAction(q map[graph.NodeID]map[graph.NodeID]float64, cur graph.NodeID, actions []graph.NodeID, epsilon float64, rng *rand.Rand) graph.NodeID {
	if rng.Float64() < epsilon || q[cur] == nil {
		return actions[rng.Intn(len(actions))]
	}
	best := actions[0]
	bestVal := q[cur][best]
	found := false
	if v, ok := q[cur][best]; ok {
		found = true
		bestVal = v
	}
	for _, n := range actions[1:] {
		if v, ok := q[cur][n]; ok && (!found || v > bestVal) {
			bestVal = v
			best = n
			found = true
		}
	}
	if !found {
		return actions[rng.Intn(len(actions))]
	}
	return best
}

func bestQ(q map[graph.NodeID]map[graph.NodeID]float64, node graph.NodeID, actions []graph.NodeID) float64 {
	if len(actions) == 0 {
		return 0
	}
	best := math.Inf(-1)
	found := false
	for _, n := range actions {
		if v, ok := q[node][n]; ok {
			found = true
			if v > best {
				best = v
			}
		}
	}
	if !found {
		return 0
	}
	return best
}

func ensureState(q map[graph.NodeID]map[graph.NodeID]float64, node graph.NodeID) {
	if q[node] == nil {
		q[node] = make(map[graph.NodeID]float64)
	}
}

// greedyRollout walks from S choosing the feasible unvisited neighbor with
// maximum learned Q at each step, stopping at D or when no progress is
// possible.
func greedyRollout(g *graph.Graph, q map[graph.NodeID]map[graph.NodeID]float64, s, d graph.NodeID, opts Options) ([]graph.NodeID, bool) {
	visited := map[graph.NodeID]bool{s: true}
	path := []graph.NodeID{s}
	cur := s
	for hop := 0; hop < opts.MaxHops; hop++ {
		if cur == d {
			return path, true
		}
		candidates := feasibleNeighbors(g, cur, visited, opts.Demand)
		var best graph.NodeID
		bestVal := math.Inf(-1)
		found := false
		for _, n := range candidates {
			v := q[cur][n]
			if !found || v > bestVal {
				found = true
				bestVal = v
				best = n
			}
		}
		if !found {
			return nil, false
		}
		visited[best] = true
		path = append(path, best)
		cur = best
	}
	return nil, false
}
