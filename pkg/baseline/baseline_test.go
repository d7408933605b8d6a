package baseline

import (
	"testing"

	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
)

func diamondGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	nodes := []struct {
		id    graph.NodeID
		delay float64
		rel   float64
	}{
		{1, 0, 0.999},
		{2, 2, 0.99},
		{3, 5, 0.999},
		{4, 0, 0.999},
	}
	for _, n := range nodes {
		if err := g.AddNode(graph.Node{ID: n.id, ProcessingDelayMS: n.delay, NodeReliability: n.rel}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	edges := []graph.Edge{
		{From: 1, To: 2, LinkDelayMS: 5, CapacityMbps: 100, LinkReliability: 0.999},
		{From: 2, To: 4, LinkDelayMS: 5, CapacityMbps: 100, LinkReliability: 0.999},
		{From: 1, To: 3, LinkDelayMS: 1, CapacityMbps: 100, LinkReliability: 0.999},
		{From: 3, To: 4, LinkDelayMS: 1, CapacityMbps: 100, LinkReliability: 0.999},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func TestRoutePrefersLowerDelayPath(t *testing.T) {
	g := diamondGraph(t)
	eng := metrics.NewEngine()
	w := metrics.Weights{Delay: 1}

	path, err := Route(g, eng, 1, 4, w)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	want := []graph.NodeID{1, 3, 4}
	if !equalPath(path, want) {
		t.Fatalf("Route = %v, want %v", path, want)
	}
}

func TestRouteSameSourceAndDest(t *testing.T) {
	g := diamondGraph(t)
	eng := metrics.NewEngine()
	path, err := Route(g, eng, 1, 1, metrics.Weights{Delay: 1})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(path) != 1 || path[0] != 1 {
		t.Fatalf("Route(s,s) = %v, want [1]", path)
	}
}

func TestRouteNoPath(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: 1, NodeReliability: 1})
	_ = g.AddNode(graph.Node{ID: 2, NodeReliability: 1})
	eng := metrics.NewEngine()
	_, err := Route(g, eng, 1, 2, metrics.Weights{Delay: 1})
	if err == nil {
		t.Fatal("expected ErrNoPath for disconnected nodes")
	}
}

// TestBaselineOptimality checks that the baseline path's scalarized cost is
// no worse than every other simple path between the same endpoints -- the
// Baseline Router is the deterministic lower bound every optimizer is
// compared against.
func TestBaselineOptimality(t *testing.T) {
	g := diamondGraph(t)
	eng := metrics.NewEngine()
	w := metrics.Weights{Delay: 1, Reliability: 1, Resource: 1}

	path, err := Route(g, eng, 1, 4, w)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	m, err := eng.Compute(g, path, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	baselineCost := eng.WeightedSum(m, w, 0)

	candidates := [][]graph.NodeID{
		{1, 3, 4},
		{1, 2, 4},
	}
	for _, c := range candidates {
		cm, err := eng.Compute(g, c, nil)
		if err != nil {
			t.Fatalf("Compute(%v): %v", c, err)
		}
		cost := eng.WeightedSum(cm, w, 0)
		if baselineCost > cost+1e-9 {
			t.Fatalf("baseline cost %v exceeds candidate %v cost %v", baselineCost, c, cost)
		}
	}
}

func equalPath(a, b []graph.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
