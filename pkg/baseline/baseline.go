// Package baseline implements the deterministic shortest-path router every
// other optimizer is compared against and falls back to.
package baseline

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
)

// ErrNoPath is returned when source and destination are disconnected.
var ErrNoPath = errors.New("baseline: no path between source and destination")

// Route finds the path minimizing the scalarized QoS cost under w, using
// gonum's Dijkstra over a directed graph built fresh for this (source,
// weights) pair -- the per-edge weight depends on the destination node's
// attributes and on w, so it cannot be precomputed once for the topology the
// way a plain shortest-path weight could.
//
// The Dijkstra weight omits the constant contribution of the source node's
// own reliability (it is identical for every candidate path from s, so it
// cannot change the argmin); node_reliability(s) is picked up automatically
// when the caller re-scores the returned path with metrics.Engine.Compute,
// which sums reliability over every node on the path including the source.
func Route(g *graph.Graph, eng *metrics.Engine, s, d graph.NodeID, w metrics.Weights) ([]graph.NodeID, error) {
	if !g.HasNode(s) {
		return nil, fmt.Errorf("baseline: unknown source %d", s)
	}
	if !g.HasNode(d) {
		return nil, fmt.Errorf("baseline: unknown destination %d", d)
	}
	if s == d {
		return []graph.NodeID{s}, nil
	}

	dg := simple.NewWeightedDirectedGraph(0, 0)
	for _, id := range g.NodeIDs() {
		dg.AddNode(simple.Node(id))
	}
	for _, e := range g.Edges() {
		vDest, _ := g.Node(e.To)
		vSrc, _ := g.Node(e.From)

		wForward := edgeWeight(eng, e.LinkDelayMS, e.CapacityMbps, e.LinkReliability, vDest, e.To, s, d, w)
		dg.SetWeightedEdge(dg.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), wForward))

		wBackward := edgeWeight(eng, e.LinkDelayMS, e.CapacityMbps, e.LinkReliability, vSrc, e.From, s, d, w)
		dg.SetWeightedEdge(dg.NewWeightedEdge(simple.Node(e.To), simple.Node(e.From), wBackward))
	}

	shortest := path.DijkstraFrom(simple.Node(s), dg)
	nodes, _ := shortest.To(int64(d))
	if len(nodes) == 0 {
		return nil, ErrNoPath
	}

	out := make([]graph.NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = graph.NodeID(n.ID())
	}
	return out, nil
}

func edgeWeight(eng *metrics.Engine, linkDelayMS, capacityMbps, linkReliability float64, v graph.Node, vID, s, d graph.NodeID, w metrics.Weights) float64 {
	delay := linkDelayMS
	if vID != s && vID != d {
		delay += v.ProcessingDelayMS
	}
	reliability := -logClamped(eng, linkReliability) - logClamped(eng, v.NodeReliability)
	resource := eng.ReferenceBandwidthMbps() / capacityMbps
	return w.Delay*delay + w.Reliability*reliability + w.Resource*resource
}

func logClamped(eng *metrics.Engine, x float64) float64 {
	floor := eng.ReliabilityFloor()
	if x < floor {
		x = floor
	}
	return math.Log(x)
}
