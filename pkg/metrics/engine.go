// Package metrics computes the per-path QoS metrics every router and the
// Comparison Harness scores candidate paths with.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/netqos/routeopt/pkg/graph"
)

var (
	// ErrInvalidPath is returned by Compute for a path with fewer than two
	// nodes or a consecutive pair with no edge between them.
	ErrInvalidPath = errors.New("metrics: invalid path")
	// ErrInvalidWeights is returned by Weights.Normalize for weights with a
	// negative component or with no positive component.
	ErrInvalidWeights = errors.New("metrics: invalid weights")
)

// Engine computes PathMetrics against a reference bandwidth and a
// reliability floor. Both are configuration, not constants, per the design
// note that recommends exposing them as Engine fields.
type Engine struct {
	referenceBandwidthMbps float64
	reliabilityFloor       float64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithReferenceBandwidth sets the bandwidth used to normalize resource cost.
func WithReferenceBandwidth(mbps float64) EngineOption {
	return func(e *Engine) { e.referenceBandwidthMbps = mbps }
}

// WithReliabilityFloor sets the minimum reliability value used before taking
// -log, preventing a division-by-zero-like blowup for reliability values
// that round to exactly zero.
func WithReliabilityFloor(floor float64) EngineOption {
	return func(e *Engine) { e.reliabilityFloor = floor }
}

// ReferenceBandwidthMbps returns the bandwidth resource costs are normalized
// against.
func (e *Engine) ReferenceBandwidthMbps() float64 { return e.referenceBandwidthMbps }

// ReliabilityFloor returns the minimum reliability value used before -log.
func (e *Engine) ReliabilityFloor() float64 { return e.reliabilityFloor }

// NewEngine returns an Engine with sensible defaults, overridden by opts.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		referenceBandwidthMbps: 1000,
		reliabilityFloor:       1e-12,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PathMetrics is the full set of QoS metrics for a single candidate path.
type PathMetrics struct {
	TotalDelayMS           float64
	ReliabilityCost        float64
	TotalReliability       float64
	ResourceCost           float64
	BottleneckCapacityMbps float64
	FeasibleForDemand      bool
}

// Weights scalarizes PathMetrics into a single comparable cost.
type Weights struct {
	Delay       float64
	Reliability float64
	Resource    float64
}

// Normalize rescales w so its components sum to 1, returning ErrInvalidWeights
// if any component is negative or every component is zero.
func (w Weights) Normalize() (Weights, error) {
	if w.Delay < 0 || w.Reliability < 0 || w.Resource < 0 {
		return Weights{}, fmt.Errorf("%w: negative component", ErrInvalidWeights)
	}
	sum := w.Delay + w.Reliability + w.Resource
	if sum <= 0 {
		return Weights{}, fmt.Errorf("%w: all components non-positive", ErrInvalidWeights)
	}
	return Weights{Delay: w.Delay / sum, Reliability: w.Reliability / sum, Resource: w.Resource / sum}, nil
}

// Compute evaluates every metric of path p over g. demand, if non-nil, is
// the minimum acceptable bottleneck bandwidth for the request; when nil,
// FeasibleForDemand is always true.
func (e *Engine) Compute(g *graph.Graph, p []graph.NodeID, demand *float64) (PathMetrics, error) {
	if len(p) < 2 {
		return PathMetrics{}, fmt.Errorf("%w: path has fewer than two nodes", ErrInvalidPath)
	}

	var totalDelay float64
	var reliabilityCost float64
	var resourceCost float64
	bottleneck := math.Inf(1)

	for i, id := range p {
		n, err := g.Node(id)
		if err != nil {
			return PathMetrics{}, fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
		if i != 0 && i != len(p)-1 {
			totalDelay += n.ProcessingDelayMS
		}
		reliabilityCost += -math.Log(math.Max(n.NodeReliability, e.reliabilityFloor))
	}

	for i := 0; i < len(p)-1; i++ {
		edge, err := g.Edge(p[i], p[i+1])
		if err != nil {
			return PathMetrics{}, fmt.Errorf("%w: no edge %d-%d", ErrInvalidPath, p[i], p[i+1])
		}
		totalDelay += edge.LinkDelayMS
		reliabilityCost += -math.Log(math.Max(edge.LinkReliability, e.reliabilityFloor))
		resourceCost += e.referenceBandwidthMbps / edge.CapacityMbps
		if edge.CapacityMbps < bottleneck {
			bottleneck = edge.CapacityMbps
		}
	}

	feasible := true
	if demand != nil {
		feasible = bottleneck >= *demand
	}

	return PathMetrics{
		TotalDelayMS:           totalDelay,
		ReliabilityCost:        reliabilityCost,
		TotalReliability:       math.Exp(-reliabilityCost),
		ResourceCost:           resourceCost,
		BottleneckCapacityMbps: bottleneck,
		FeasibleForDemand:      feasible,
	}, nil
}

// WeightedSum scalarizes m under w, normalizing w to sum to 1 first so the
// result is invariant under positive scaling of the weight triple -- a
// caller that already normalized (the Adapter does, via Normalize) pays
// nothing extra since the second normalization is a no-op. infeasiblePenalty
// is added when the path failed the bandwidth check, so an optimizer that
// scores by WeightedSum alone still prefers feasible paths without needing a
// separate hard filter.
func (e *Engine) WeightedSum(m PathMetrics, w Weights, infeasiblePenalty float64) float64 {
	if sum := w.Delay + w.Reliability + w.Resource; sum > 0 {
		w.Delay /= sum
		w.Reliability /= sum
		w.Resource /= sum
	}
	score := w.Delay*m.TotalDelayMS + w.Reliability*m.ReliabilityCost + w.Resource*m.ResourceCost
	if !m.FeasibleForDemand {
		score += infeasiblePenalty
	}
	return score
}
