package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i := graph.NodeID(1); i <= 4; i++ {
		require.NoError(t, g.AddNode(graph.Node{ID: i, ProcessingDelayMS: 1, NodeReliability: 0.99}))
	}
	edges := [][2]graph.NodeID{{1, 2}, {2, 4}, {1, 3}, {3, 4}}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(graph.Edge{From: e[0], To: e[1], LinkDelayMS: 5, CapacityMbps: 50, LinkReliability: 0.998}))
	}
	return g
}

func TestRunBaseline(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := New(g, eng, nil)

	result, err := a.Run(context.Background(), Baseline, Request{
		Source:  1,
		Dest:    4,
		Weights: metrics.Weights{Delay: 1, Reliability: 1, Resource: 1},
		Seed:    1,
	})
	require.NoError(t, err)
	require.Equal(t, Baseline, result.Algorithm)
	require.Equal(t, graph.NodeID(1), result.Path[0])
	require.Equal(t, graph.NodeID(4), result.Path[len(result.Path)-1])
}

func TestRunUnknownAlgorithm(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := New(g, eng, nil)

	_, err := a.Run(context.Background(), "not-a-real-algorithm", Request{
		Source:  1,
		Dest:    4,
		Weights: metrics.Weights{Delay: 1},
	})
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestRunSourceEqualsDestRejected(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := New(g, eng, nil)

	_, err := a.Run(context.Background(), Baseline, Request{
		Source:  1,
		Dest:    1,
		Weights: metrics.Weights{Delay: 1, Reliability: 1, Resource: 1},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRunUnknownNodeRejected(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := New(g, eng, nil)

	_, err := a.Run(context.Background(), Baseline, Request{
		Source:  1,
		Dest:    999,
		Weights: metrics.Weights{Delay: 1, Reliability: 1, Resource: 1},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRunInvalidWeightsRejected(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := New(g, eng, nil)

	_, err := a.Run(context.Background(), Baseline, Request{Source: 1, Dest: 4, Weights: metrics.Weights{}})
	require.ErrorIs(t, err, ErrInvalidWeights)
}

func TestRunInvalidConfigAggregatesEveryError(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := New(g, eng, nil)

	_, err := a.Run(context.Background(), ACO, Request{
		Source:  1,
		Dest:    4,
		Weights: metrics.Weights{Delay: 1},
		Params: map[string]interface{}{
			"num_iterations": -5.0,
			"num_ants":       -1.0,
			"rho":            "not-a-number",
		},
	})
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Contains(t, err.Error(), "num_iterations")
	require.Contains(t, err.Error(), "num_ants")
	require.Contains(t, err.Error(), "rho")
}

func TestRunACOProducesFeasiblePath(t *testing.T) {
	g := testGraph(t)
	eng := metrics.NewEngine()
	a := New(g, eng, nil)

	result, err := a.Run(context.Background(), ACO, Request{
		Source:  1,
		Dest:    4,
		Weights: metrics.Weights{Delay: 1, Reliability: 1, Resource: 1},
		Seed:    11,
	})
	require.NoError(t, err)
	require.Equal(t, graph.NodeID(1), result.Path[0])
	require.Equal(t, graph.NodeID(4), result.Path[len(result.Path)-1])
}
