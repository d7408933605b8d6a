// Package compare implements the Comparison Harness: it runs every
// requested algorithm a fixed number of times against the same request,
// each run on its own cloned graph and its own deterministically derived
// seed, and aggregates per-algorithm statistics.
package compare

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/netqos/routeopt/pkg/adapter"
	"github.com/netqos/routeopt/pkg/baseline"
	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
	"github.com/netqos/routeopt/pkg/optimize"
	"github.com/netqos/routeopt/pkg/optimize/sa"
)

// Failure reason categories reported on a failed run row.
const (
	FailNone                 = ""
	FailNoPath               = "no_path"
	FailInvalidPath          = "invalid_path"
	FailBandwidthConstraint  = "bandwidth_constraint"
	FailRuntimeErrorTemplate = "runtime_error"
)

// Request describes one harness invocation.
type Request struct {
	// ScenarioID labels every row this call produces; purely descriptive,
	// used only to stamp the CSV-friendly output.
	ScenarioID string
	Source     graph.NodeID
	Dest       graph.NodeID
	Demand     *float64
	Weights    metrics.Weights
	Algorithms []string
	Trials     int
	BaseSeed   int64
	Params     map[string]map[string]interface{}
	// MaxWorkers bounds concurrent (algorithm, trial) evaluations. Zero
	// means "use the number of algorithm*trial pairs" i.e. unbounded up
	// to the natural fan-out.
	MaxWorkers int
}

// RunRow is one row of the per-run output.
type RunRow struct {
	ScenarioID string
	Source     graph.NodeID
	Dest       graph.NodeID
	Demand     *float64
	Algorithm  string
	RunIndex   int
	Seed       int64
	Status     string // "OK" or "FAIL"
	FailReason string
	Cost       float64
	Metrics    metrics.PathMetrics
	Path       []graph.NodeID
	RuntimeMS  float64
	Notes      string
}

// AlgoRow is one row of the per-algorithm summary output.
type AlgoRow struct {
	ScenarioID   string
	Algorithm    string
	Runs         int
	Successes    int
	SuccessRate  float64
	MeanCost     float64
	StdDevCost   float64
	BestCost     float64
	WorstCost    float64
	AvgRuntimeMS float64
	BestPath     []graph.NodeID
}

// Report is the full output of one Compare call.
type Report struct {
	PerRun       []RunRow
	PerAlgorithm []AlgoRow
}

// Run executes Request.Trials runs of each requested algorithm and returns
// the aggregated report. No cache or state is shared across runs: each
// (algorithm, run) pair gets its own graph clone and its own RNG stream, so
// runs never interfere with one another even though they execute
// concurrently. Aggregation only happens after every run of every algorithm
// has completed; no partial table is ever exposed mid-run.
func Run(ctx context.Context, a *adapter.Adapter, g *graph.Graph, logger *zap.Logger, req Request) (Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	type job struct {
		algoIdx int
		algo    string
		run     int
	}

	jobs := make([]job, 0, len(req.Algorithms)*req.Trials)
	for i, algo := range req.Algorithms {
		for r := 0; r < req.Trials; r++ {
			jobs = append(jobs, job{algoIdx: i, algo: algo, run: r})
		}
	}

	workers := req.MaxWorkers
	if workers <= 0 || workers > len(jobs) {
		workers = len(jobs)
	}
	if workers == 0 {
		return Report{}, nil
	}

	rows := make([]RunRow, len(jobs))
	jobCh := make(chan int, len(jobs))
	for idx := range jobs {
		jobCh <- idx
	}
	close(jobCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				j := jobs[idx]
				rows[idx] = runOne(ctx, a, g, req, j.algo, j.algoIdx, j.run)
			}
		}()
	}
	wg.Wait()

	report := Report{PerRun: rows}
	report.PerAlgorithm = summarize(req.ScenarioID, req.Algorithms, rows)

	for _, row := range report.PerRun {
		if row.Status == "FAIL" {
			logger.Warn("trial failed", zap.String("algorithm", row.Algorithm), zap.Int("run", row.RunIndex), zap.String("fail_reason", row.FailReason), zap.String("notes", row.Notes))
		}
	}
	logger.Info("comparison complete", zap.Int("algorithms", len(req.Algorithms)), zap.Int("trials", req.Trials))

	return report, nil
}

func runOne(ctx context.Context, a *adapter.Adapter, g *graph.Graph, req Request, algo string, algoIdx, runIdx int) RunRow {
	seed := optimize.DeriveSeed(req.BaseSeed, algoIdx, runIdx)
	trialGraph := g.Clone()
	trialAdapter := &adapter.Adapter{Graph: trialGraph, Engine: a.Engine, Logger: a.Logger}

	params := req.Params[algo]

	start := time.Now()
	result, err := trialAdapter.Run(ctx, algo, adapter.Request{
		Source:  req.Source,
		Dest:    req.Dest,
		Demand:  req.Demand,
		Weights: req.Weights,
		Seed:    seed,
		Params:  params,
	})
	runtimeMS := float64(time.Since(start)) / float64(time.Millisecond)

	base := RunRow{
		ScenarioID: req.ScenarioID,
		Source:     req.Source,
		Dest:       req.Dest,
		Demand:     req.Demand,
		Algorithm:  algo,
		RunIndex:   runIdx,
		Seed:       seed,
		RuntimeMS:  runtimeMS,
	}
	if err != nil {
		base.Status = "FAIL"
		base.FailReason = classifyFailure(err)
		base.Notes = err.Error()
		return base
	}
	base.Status = "OK"
	base.Cost = result.Cost
	base.Metrics = result.Metrics
	base.Path = result.Path
	base.Notes = result.Notes
	return base
}

// classifyFailure maps an adapter error onto one of the fail reason
// categories: no_path, invalid_path, bandwidth_constraint, or a detailed
// runtime_error for anything else.
func classifyFailure(err error) string {
	switch {
	case errors.Is(err, baseline.ErrNoPath):
		return FailNoPath
	case errors.Is(err, sa.ErrBandwidthInfeasible):
		return FailBandwidthConstraint
	case errors.Is(err, adapter.ErrInvalidPath):
		return FailInvalidPath
	default:
		return FailRuntimeErrorTemplate + "(" + err.Error() + ")"
	}
}

func summarize(scenarioID string, algorithms []string, rows []RunRow) []AlgoRow {
	out := make([]AlgoRow, 0, len(algorithms))
	for _, algo := range algorithms {
		var costs []float64
		var runtimes []float64
		var bestPath []graph.NodeID
		best := 0.0
		worst := 0.0
		successes := 0
		runs := 0
		first := true
		for _, r := range rows {
			if r.Algorithm != algo {
				continue
			}
			runs++
			runtimes = append(runtimes, r.RuntimeMS)
			if r.Status != "OK" {
				continue
			}
			successes++
			costs = append(costs, r.Cost)
			if first || r.Cost < best {
				best = r.Cost
				bestPath = r.Path
			}
			if first || r.Cost > worst {
				worst = r.Cost
			}
			first = false
		}
		mean, std := 0.0, 0.0
		if len(costs) > 0 {
			mean, std = stat.MeanStdDev(costs, nil)
		}
		avgRuntime := 0.0
		if len(runtimes) > 0 {
			avgRuntime = stat.Mean(runtimes, nil)
		}
		successRate := 0.0
		if runs > 0 {
			successRate = float64(successes) / float64(runs)
		}
		out = append(out, AlgoRow{
			ScenarioID:   scenarioID,
			Algorithm:    algo,
			Runs:         runs,
			Successes:    successes,
			SuccessRate:  successRate,
			MeanCost:     mean,
			StdDevCost:   std,
			BestCost:     best,
			WorstCost:    worst,
			AvgRuntimeMS: avgRuntime,
			BestPath:     bestPath,
		})
	}
	return out
}
