// Package engine is the thin driver-facing facade that wires a graph, a
// metric engine, and a logger together behind the two operations a caller
// actually needs: Run one algorithm once, or Compare several algorithms
// across many trials. It carries none of the background-goroutine lifecycle
// of the coordinator it was adapted from -- the graph here is built once and
// never mutated again for the lifetime of a session, so there is nothing
// for a topology-refresh or health-monitor loop to watch.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/netqos/routeopt/pkg/adapter"
	"github.com/netqos/routeopt/pkg/compare"
	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
)

// Driver owns the graph and metric engine a session was constructed with.
type Driver struct {
	graph   *graph.Graph
	engine  *metrics.Engine
	logger  *zap.Logger
	adapter *adapter.Adapter
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger injects a *zap.Logger. The default is zap.NewNop(); library
// code never constructs a production logger for itself.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithMetricEngine overrides the default metric engine.
func WithMetricEngine(eng *metrics.Engine) Option {
	return func(d *Driver) { d.engine = eng }
}

// New returns a Driver bound to g.
func New(g *graph.Graph, opts ...Option) *Driver {
	d := &Driver{
		graph:  g,
		engine: metrics.NewEngine(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.adapter = adapter.New(d.graph, d.engine, d.logger)
	return d
}

// Run evaluates one algorithm against req.
func (d *Driver) Run(ctx context.Context, algorithm string, req adapter.Request) (adapter.Result, error) {
	return d.adapter.Run(ctx, algorithm, req)
}

// Compare runs the Comparison Harness across req.Algorithms and req.Trials.
func (d *Driver) Compare(ctx context.Context, req compare.Request) (compare.Report, error) {
	return compare.Run(ctx, d.adapter, d.graph, d.logger, req)
}

// Graph returns the bound graph.
func (d *Driver) Graph() *graph.Graph { return d.graph }

// Engine returns the bound metric engine.
func (d *Driver) Engine() *metrics.Engine { return d.engine }
