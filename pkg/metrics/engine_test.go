package metrics

import (
	"math"
	"testing"

	"github.com/netqos/routeopt/pkg/graph"
)

func chainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	nodes := []struct {
		id    graph.NodeID
		delay float64
		rel   float64
	}{
		{1, 1, 0.99},
		{2, 2, 0.98},
		{3, 3, 0.97},
	}
	for _, n := range nodes {
		if err := g.AddNode(graph.Node{ID: n.id, ProcessingDelayMS: n.delay, NodeReliability: n.rel}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	edges := []graph.Edge{
		{From: 1, To: 2, LinkDelayMS: 10, CapacityMbps: 100, LinkReliability: 0.999},
		{From: 2, To: 3, LinkDelayMS: 20, CapacityMbps: 50, LinkReliability: 0.995},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func TestComputeExcludesEndpointProcessingDelay(t *testing.T) {
	g := chainGraph(t)
	eng := NewEngine()
	m, err := eng.Compute(g, []graph.NodeID{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// delay = link(1,2)=10 + node2 processing=2 + link(2,3)=20; node1/node3 excluded.
	want := 10 + 2 + 20.0
	if math.Abs(m.TotalDelayMS-want) > 1e-9 {
		t.Fatalf("TotalDelayMS = %v, want %v", m.TotalDelayMS, want)
	}
}

func TestComputeBottleneckIsMinCapacity(t *testing.T) {
	g := chainGraph(t)
	eng := NewEngine()
	m, err := eng.Compute(g, []graph.NodeID{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if m.BottleneckCapacityMbps != 50 {
		t.Fatalf("BottleneckCapacityMbps = %v, want 50", m.BottleneckCapacityMbps)
	}
}

func TestComputeFeasibleForDemand(t *testing.T) {
	g := chainGraph(t)
	eng := NewEngine()
	demandOK := 40.0
	m, err := eng.Compute(g, []graph.NodeID{1, 2, 3}, &demandOK)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !m.FeasibleForDemand {
		t.Fatal("expected feasible for demand 40 with bottleneck 50")
	}

	demandTooHigh := 60.0
	m, err = eng.Compute(g, []graph.NodeID{1, 2, 3}, &demandTooHigh)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if m.FeasibleForDemand {
		t.Fatal("expected infeasible for demand 60 with bottleneck 50")
	}
}

func TestComputeRejectsNonAdjacentPath(t *testing.T) {
	g := chainGraph(t)
	eng := NewEngine()
	if _, err := eng.Compute(g, []graph.NodeID{1, 3}, nil); err == nil {
		t.Fatal("expected error for a path with no direct edge")
	}
}

func TestComputeRejectsShortPath(t *testing.T) {
	g := chainGraph(t)
	eng := NewEngine()
	if _, err := eng.Compute(g, []graph.NodeID{1}, nil); err == nil {
		t.Fatal("expected error for a single-node path")
	}
}

func TestNormalizeRejectsAllZero(t *testing.T) {
	w := Weights{}
	if _, err := w.Normalize(); err == nil {
		t.Fatal("expected error normalizing all-zero weights")
	}
}

func TestNormalizeSumsToOne(t *testing.T) {
	w := Weights{Delay: 2, Reliability: 1, Resource: 1}
	n, err := w.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	sum := n.Delay + n.Reliability + n.Resource
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("normalized weights sum to %v, want 1", sum)
	}
}

func TestWeightedSumAddsInfeasiblePenalty(t *testing.T) {
	eng := NewEngine()
	feasible := PathMetrics{TotalDelayMS: 10, FeasibleForDemand: true}
	infeasible := PathMetrics{TotalDelayMS: 10, FeasibleForDemand: false}
	w := Weights{Delay: 1}

	scoreFeasible := eng.WeightedSum(feasible, w, 1000)
	scoreInfeasible := eng.WeightedSum(infeasible, w, 1000)
	if scoreInfeasible-scoreFeasible != 1000 {
		t.Fatalf("expected infeasible penalty of 1000, got delta %v", scoreInfeasible-scoreFeasible)
	}
}
