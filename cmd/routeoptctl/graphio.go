package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/netqos/routeopt/pkg/graph"
)

// loadGraph reads an edge list CSV of the form
// node_from,node_to,link_delay_ms,capacity_mbps,link_reliability
// and derives node reliability/processing delay of 1.0/0.0 for every node
// seen, since the CLI's demo use case has no separate node attribute feed.
// When path is empty, a small built-in demo topology is used instead.
func loadGraph(path string) (*graph.Graph, error) {
	if path == "" {
		return demoGraph(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("routeoptctl: opening graph file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("routeoptctl: parsing graph CSV: %w", err)
	}

	b := graph.NewBuilder()
	seen := make(map[graph.NodeID]bool)
	for i, rec := range records {
		u, err1 := strconv.ParseInt(rec[0], 10, 64)
		v, err2 := strconv.ParseInt(rec[1], 10, 64)
		delay, err3 := strconv.ParseFloat(rec[2], 64)
		capacity, err4 := strconv.ParseFloat(rec[3], 64)
		reliability, err5 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return nil, fmt.Errorf("routeoptctl: malformed row %d in graph CSV", i+1)
		}
		for _, n := range []graph.NodeID{graph.NodeID(u), graph.NodeID(v)} {
			if !seen[n] {
				seen[n] = true
				if err := b.AddNode(n, graph.RawAttrs{"node_reliability": 1.0, "processing_delay_ms": 0}); err != nil {
					return nil, err
				}
			}
		}
		if err := b.AddEdge(graph.NodeID(u), graph.NodeID(v), graph.RawAttrs{
			"link_delay_ms":    delay,
			"capacity_mbps":    capacity,
			"link_reliability": reliability,
		}); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// demoGraph is a small five-node topology used when no --graph flag is given.
func demoGraph() *graph.Graph {
	b := graph.NewBuilder()
	nodes := []struct {
		id    int64
		delay float64
		rel   float64
	}{
		{1, 0.1, 0.999},
		{2, 0.3, 0.995},
		{3, 0.2, 0.997},
		{4, 0.4, 0.993},
		{5, 0.1, 0.998},
	}
	for _, n := range nodes {
		_ = b.AddNode(graph.NodeID(n.id), graph.RawAttrs{"processing_delay_ms": n.delay, "node_reliability": n.rel})
	}
	edges := []struct {
		u, v            int64
		delay, capacity, rel float64
	}{
		{1, 2, 5, 100, 0.999},
		{2, 3, 4, 50, 0.997},
		{1, 3, 12, 200, 0.998},
		{3, 4, 3, 80, 0.996},
		{2, 4, 8, 40, 0.994},
		{4, 5, 2, 120, 0.999},
		{3, 5, 15, 60, 0.995},
	}
	for _, e := range edges {
		_ = b.AddEdge(graph.NodeID(e.u), graph.NodeID(e.v), graph.RawAttrs{
			"link_delay_ms":    e.delay,
			"capacity_mbps":    e.capacity,
			"link_reliability": e.rel,
		})
	}
	return b.Build()
}
