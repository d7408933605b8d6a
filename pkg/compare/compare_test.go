package compare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netqos/routeopt/pkg/adapter"
	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i := graph.NodeID(1); i <= 5; i++ {
		require.NoError(t, g.AddNode(graph.Node{ID: i, ProcessingDelayMS: 1, NodeReliability: 0.99}))
	}
	edges := [][2]graph.NodeID{{1, 2}, {2, 3}, {3, 5}, {1, 4}, {4, 5}, {2, 4}}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(graph.Edge{From: e[0], To: e[1], LinkDelayMS: 4, CapacityMbps: 50, LinkReliability: 0.997}))
	}
	return g
}

func TestRunProducesOneRowPerAlgorithmPerTrial(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := adapter.New(g, eng, nil)

	req := Request{
		Source:     1,
		Dest:       5,
		Weights:    metrics.Weights{Delay: 1, Reliability: 1, Resource: 1},
		Algorithms: []string{adapter.Baseline, adapter.ACO},
		Trials:     4,
		BaseSeed:   10,
	}
	report, err := Run(context.Background(), a, g, nil, req)
	require.NoError(t, err)
	require.Len(t, report.PerRun, 8)
	require.Len(t, report.PerAlgorithm, 2)
}

func TestBaselineTrialsAreIdenticalAcrossRuns(t *testing.T) {
	// The baseline is deterministic: every trial for it should produce the
	// same path and cost regardless of run index, unlike the stochastic
	// optimizers.
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := adapter.New(g, eng, nil)

	req := Request{
		Source:     1,
		Dest:       5,
		Weights:    metrics.Weights{Delay: 1, Reliability: 1, Resource: 1},
		Algorithms: []string{adapter.Baseline},
		Trials:     5,
		BaseSeed:   99,
	}
	report, err := Run(context.Background(), a, g, nil, req)
	require.NoError(t, err)
	require.Len(t, report.PerRun, 5)

	first := report.PerRun[0]
	for _, row := range report.PerRun[1:] {
		require.Equal(t, first.Cost, row.Cost)
	}
	require.Equal(t, 0.0, report.PerAlgorithm[0].StdDevCost)
}

func TestComparisonRespectsDemandInfeasibility(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := adapter.New(g, eng, nil)
	demand := 1000.0 // no edge has this much capacity

	req := Request{
		Source:     1,
		Dest:       5,
		Demand:     &demand,
		Weights:    metrics.Weights{Delay: 1, Reliability: 1, Resource: 1},
		Algorithms: []string{adapter.Baseline},
		Trials:     1,
		BaseSeed:   1,
	}
	report, err := Run(context.Background(), a, g, nil, req)
	require.NoError(t, err)
	require.Len(t, report.PerRun, 1)
	require.Equal(t, "OK", report.PerRun[0].Status)
	require.False(t, report.PerRun[0].Metrics.FeasibleForDemand)
}

func TestPerAlgorithmBestCostIsTheMinimum(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := adapter.New(g, eng, nil)

	req := Request{
		Source:     1,
		Dest:       5,
		Weights:    metrics.Weights{Delay: 1, Reliability: 1, Resource: 1},
		Algorithms: []string{adapter.GA},
		Trials:     6,
		BaseSeed:   42,
	}
	report, err := Run(context.Background(), a, g, nil, req)
	require.NoError(t, err)

	row := report.PerAlgorithm[0]
	minCost := row.BestCost
	for _, r := range report.PerRun {
		if r.Status == "OK" && r.Cost < minCost-1e-9 {
			t.Fatalf("per-algorithm BestCost %v is not the minimum observed cost %v", row.BestCost, r.Cost)
		}
	}
}
