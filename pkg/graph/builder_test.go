package graph

import "testing"

func TestBuilderResolvesAliases(t *testing.T) {
	b := NewBuilder()
	if err := b.AddNode(1, RawAttrs{"proc_delay_ms": 2, "reliability": 0.9}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := b.AddNode(2, RawAttrs{"processing_delay_ms": 1, "node_reliability": 0.95}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := b.AddEdge(1, 2, RawAttrs{"link_delay": 4, "bandwidth_mbps": 50, "reliability": 0.98}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	g := b.Build()
	n1, err := g.Node(1)
	if err != nil {
		t.Fatalf("Node(1): %v", err)
	}
	if n1.NodeReliability != 0.9 {
		t.Fatalf("expected aliased reliability 0.9, got %v", n1.NodeReliability)
	}
	e, err := g.Edge(1, 2)
	if err != nil {
		t.Fatalf("Edge(1,2): %v", err)
	}
	if e.CapacityMbps != 50 {
		t.Fatalf("expected aliased capacity 50, got %v", e.CapacityMbps)
	}
	if e.LinkDelayMS != 4 {
		t.Fatalf("expected aliased delay 4, got %v", e.LinkDelayMS)
	}
}

func TestBuilderRejectsMissingAttributes(t *testing.T) {
	b := NewBuilder()
	if err := b.AddNode(1, RawAttrs{}); err == nil {
		t.Fatal("expected error for node missing reliability")
	}
}
