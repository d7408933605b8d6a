package graph

import "fmt"

// RawAttrs is an attribute bag keyed by the field name an upstream feed used,
// which may be a documented alias rather than the canonical name. Builder
// resolves aliases once, at ingest, so every other package only ever sees
// canonical Node/Edge values.
type RawAttrs map[string]float64

// nodeAliases maps every accepted spelling to its canonical attribute.
var nodeAliases = map[string]string{
	"processing_delay_ms": "processing_delay_ms",
	"proc_delay_ms":       "processing_delay_ms",
	"node_reliability":    "node_reliability",
	"reliability":         "node_reliability",
}

var edgeAliases = map[string]string{
	"link_delay_ms":    "link_delay_ms",
	"link_delay":       "link_delay_ms",
	"capacity_mbps":    "capacity_mbps",
	"bandwidth_mbps":   "capacity_mbps",
	"link_reliability": "link_reliability",
	"reliability":      "link_reliability",
}

func resolve(attrs RawAttrs, aliases map[string]string) map[string]float64 {
	out := make(map[string]float64, len(attrs))
	for k, v := range attrs {
		canon, ok := aliases[k]
		if !ok {
			continue
		}
		out[canon] = v
	}
	return out
}

// Builder accumulates nodes and edges from raw, possibly alias-spelled
// attribute bags and produces a finished Graph. It exists so upstream feeds
// don't need to agree on field names before the graph is constructed.
type Builder struct {
	g *Graph
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// AddNode resolves aliases in attrs and inserts the node.
func (b *Builder) AddNode(id NodeID, attrs RawAttrs) error {
	canon := resolve(attrs, nodeAliases)
	delay, hasDelay := canon["processing_delay_ms"]
	rel, hasRel := canon["node_reliability"]
	if !hasRel {
		return fmt.Errorf("graph: node %d missing reliability attribute", id)
	}
	if !hasDelay {
		delay = 0
	}
	return b.g.AddNode(Node{ID: id, ProcessingDelayMS: delay, NodeReliability: rel})
}

// AddEdge resolves aliases in attrs and inserts the undirected edge.
func (b *Builder) AddEdge(u, v NodeID, attrs RawAttrs) error {
	canon := resolve(attrs, edgeAliases)
	delay, hasDelay := canon["link_delay_ms"]
	cap_, hasCap := canon["capacity_mbps"]
	rel, hasRel := canon["link_reliability"]
	if !hasDelay {
		return fmt.Errorf("graph: edge %d-%d missing delay attribute", u, v)
	}
	if !hasCap {
		return fmt.Errorf("graph: edge %d-%d missing capacity attribute", u, v)
	}
	if !hasRel {
		return fmt.Errorf("graph: edge %d-%d missing reliability attribute", u, v)
	}
	return b.g.AddEdge(Edge{From: u, To: v, LinkDelayMS: delay, CapacityMbps: cap_, LinkReliability: rel})
}

// Build returns the constructed Graph. The Builder must not be reused after
// Build is called.
func (b *Builder) Build() *Graph {
	return b.g
}
