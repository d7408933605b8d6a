// Package adapter is the single uniform entry point every caller (the CLI,
// the Comparison Harness) uses to run one routing algorithm against one
// request. It validates the request, dispatches to the chosen algorithm,
// re-scores whatever path comes back against the Metric Engine, and falls
// back to the baseline router if the chosen algorithm fails outright.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/netqos/routeopt/pkg/baseline"
	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
	"github.com/netqos/routeopt/pkg/optimize"
	"github.com/netqos/routeopt/pkg/optimize/aco"
	"github.com/netqos/routeopt/pkg/optimize/ga"
	"github.com/netqos/routeopt/pkg/optimize/qlearn"
	"github.com/netqos/routeopt/pkg/optimize/sa"
)

// Algorithm names accepted by Run.
const (
	Baseline = "baseline"
	ACO      = "aco"
	GA       = "ga"
	QLearn   = "qlearn"
	SA       = "sa"
)

var (
	// ErrUnknownAlgorithm is returned for any algorithm name Run doesn't register.
	ErrUnknownAlgorithm = errors.New("adapter: unknown algorithm")
	// ErrInvalidConfig aggregates every malformed per-algorithm parameter.
	ErrInvalidConfig = errors.New("adapter: invalid configuration")
	// ErrInvalidWeights is returned when the request's weights cannot be normalized.
	ErrInvalidWeights = errors.New("adapter: invalid weights")
	// ErrInvalidPath is returned when a router's returned path has the wrong
	// endpoints, a repeated node, a consecutive pair with no edge, or (for
	// hard-demand algorithms) an edge below the requested bandwidth.
	ErrInvalidPath = errors.New("adapter: invalid path")
	// ErrInvalidInput is returned for a request that is malformed before any
	// router even runs: S == D, or S/D missing from the graph.
	ErrInvalidInput = errors.New("adapter: invalid input")
)

// hardDemandAlgorithms treats the bandwidth request as a filter rather than
// a soft scoring penalty; only SA enforces it as hard.
var hardDemandAlgorithms = map[string]bool{SA: true}

const infeasiblePenalty = 1e9

// Request describes one routing query.
type Request struct {
	Source  graph.NodeID
	Dest    graph.NodeID
	Demand  *float64
	Weights metrics.Weights
	Seed    int64
	Params  map[string]interface{}
}

// Result is the uniform record returned for any algorithm: the path, its
// authoritative metrics, the scalarized cost used to rank it, and any notes
// (e.g. "cancelled", "fallback: <reason>").
type Result struct {
	Algorithm string
	Path      []graph.NodeID
	Metrics   metrics.PathMetrics
	Cost      float64
	Notes     string
}

// Adapter wires a graph and a metric engine to the registry of routers.
type Adapter struct {
	Graph  *graph.Graph
	Engine *metrics.Engine
	Logger *zap.Logger
}

// New returns an Adapter. logger may be nil, in which case a no-op logger is
// used -- library code never constructs a production logger itself.
func New(g *graph.Graph, eng *metrics.Engine, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{Graph: g, Engine: eng, Logger: logger}
}

// Run validates req, dispatches to algorithm, and returns the re-scored
// result, falling back to the baseline router if the chosen algorithm fails.
func (a *Adapter) Run(ctx context.Context, algorithm string, req Request) (Result, error) {
	if req.Source == req.Dest {
		return Result{}, fmt.Errorf("%w: source and destination are both %d", ErrInvalidInput, req.Source)
	}
	if !a.Graph.HasNode(req.Source) {
		return Result{}, fmt.Errorf("%w: source %d not in graph", ErrInvalidInput, req.Source)
	}
	if !a.Graph.HasNode(req.Dest) {
		return Result{}, fmt.Errorf("%w: destination %d not in graph", ErrInvalidInput, req.Dest)
	}

	normalized, err := req.Weights.Normalize()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	req.Weights = normalized

	rng := optimize.NewRand(req.Seed)

	path, notes, err := a.dispatch(ctx, algorithm, req, rng)
	if err == nil {
		err = a.validatePath(path, req, algorithm)
	}
	if err != nil {
		if errors.Is(err, ErrUnknownAlgorithm) || errors.Is(err, ErrInvalidConfig) {
			return Result{}, err
		}
		a.Logger.Warn("algorithm failed, falling back to baseline",
			zap.String("algorithm", algorithm), zap.Error(err))
		fallbackErr := err
		path, err = baseline.Route(a.Graph, a.Engine, req.Source, req.Dest, req.Weights)
		if err != nil {
			return Result{}, fmt.Errorf("adapter: fallback to baseline also failed: %w", err)
		}
		notes = fmt.Sprintf("fallback: %v", fallbackErr)
		algorithm = Baseline
	}

	m, err := a.Engine.Compute(a.Graph, path, req.Demand)
	if err != nil {
		return Result{}, fmt.Errorf("adapter: failed to score returned path: %w", err)
	}
	cost := a.Engine.WeightedSum(m, req.Weights, infeasiblePenalty)

	a.Logger.Info("route computed",
		zap.String("algorithm", algorithm),
		zap.Int64("source", int64(req.Source)),
		zap.Int64("dest", int64(req.Dest)),
		zap.Float64("cost", cost),
		zap.Bool("feasible", m.FeasibleForDemand))

	return Result{Algorithm: algorithm, Path: path, Metrics: m, Cost: cost, Notes: notes}, nil
}

// validatePath checks whatever an optimizer returned: correct endpoints, no
// repeated nodes, every consecutive pair a real edge, and -- for algorithms
// that treat demand as a hard constraint -- every edge meeting the
// requested bandwidth.
func (a *Adapter) validatePath(path []graph.NodeID, req Request, algorithm string) error {
	if len(path) < 1 {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if path[0] != req.Source || path[len(path)-1] != req.Dest {
		return fmt.Errorf("%w: endpoints %d..%d do not match requested %d..%d", ErrInvalidPath, path[0], path[len(path)-1], req.Source, req.Dest)
	}
	seen := make(map[graph.NodeID]bool, len(path))
	for _, n := range path {
		if seen[n] {
			return fmt.Errorf("%w: node %d repeated", ErrInvalidPath, n)
		}
		seen[n] = true
	}
	for i := 0; i < len(path)-1; i++ {
		e, err := a.Graph.Edge(path[i], path[i+1])
		if err != nil {
			return fmt.Errorf("%w: no edge %d-%d", ErrInvalidPath, path[i], path[i+1])
		}
		if hardDemandAlgorithms[algorithm] && req.Demand != nil && e.CapacityMbps < *req.Demand {
			return fmt.Errorf("%w: edge %d-%d capacity %.2f below demand %.2f", ErrInvalidPath, path[i], path[i+1], e.CapacityMbps, *req.Demand)
		}
	}
	return nil
}

func (a *Adapter) dispatch(ctx context.Context, algorithm string, req Request, rng *rand.Rand) ([]graph.NodeID, string, error) {
	switch algorithm {
	case Baseline:
		p, err := baseline.Route(a.Graph, a.Engine, req.Source, req.Dest, req.Weights)
		return p, "", err
	case ACO:
		opts, notice, err := parseACOOptions(req.Params, req.Demand)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		r, err := aco.Route(ctx, a.Graph, a.Engine, req.Source, req.Dest, req.Weights, opts, rng)
		return r.Path, joinNotes(notice, r.Notes), err
	case GA:
		opts, notice, err := parseGAOptions(req.Params, req.Demand)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		r, err := ga.Route(ctx, a.Graph, a.Engine, req.Source, req.Dest, req.Weights, opts, rng)
		return r.Path, joinNotes(notice, r.Notes), err
	case QLearn:
		opts, notice, err := parseQLearnOptions(req.Params, req.Demand)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		r, err := qlearn.Route(ctx, a.Graph, a.Engine, req.Source, req.Dest, req.Weights, opts, rng)
		return r.Path, joinNotes(notice, r.Notes), err
	case SA:
		opts, notice, err := parseSAOptions(req.Params, req.Demand)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		r, err := sa.Route(ctx, a.Graph, a.Engine, req.Source, req.Dest, req.Weights, opts, rng)
		return r.Path, joinNotes(notice, r.Notes), err
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

func joinNotes(notice, notes string) string {
	if notice == "" {
		return notes
	}
	if notes == "" {
		return notice
	}
	return notice + "; " + notes
}

// multierrJoin is a thin helper named for readability at call sites that
// accumulate per-parameter validation errors.
func multierrJoin(errs ...error) error {
	return multierr.Combine(errs...)
}
