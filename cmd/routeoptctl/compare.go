package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netqos/routeopt/internal/engine"
	"github.com/netqos/routeopt/pkg/compare"
	"github.com/netqos/routeopt/pkg/graph"
	"github.com/netqos/routeopt/pkg/metrics"
)

func newCompareCmd() *cobra.Command {
	var (
		scenarioID         string
		algos              string
		from, to           int64
		demand             float64
		hasDemand          bool
		wDelay, wRel, wRes float64
		trials             int
		baseSeed           int64
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the Comparison Harness across several algorithms",
		RunE: func(cmd *cobra.Command, args []string) error {
			graphPath, _ := cmd.Flags().GetString("graph")
			verbose, _ := cmd.Flags().GetBool("verbose")

			g, err := loadGraph(graphPath)
			if err != nil {
				return err
			}
			d := engine.New(g, engine.WithLogger(newLogger(verbose)))

			var demandPtr *float64
			if hasDemand {
				demandPtr = &demand
			}

			report, err := d.Compare(context.Background(), compare.Request{
				ScenarioID: scenarioID,
				Source:     graph.NodeID(from),
				Dest:       graph.NodeID(to),
				Demand:     demandPtr,
				Weights:    metrics.Weights{Delay: wDelay, Reliability: wRel, Resource: wRes},
				Algorithms: strings.Split(algos, ","),
				Trials:     trials,
				BaseSeed:   baseSeed,
			})
			if err != nil {
				return err
			}
			return writeCompareReport(os.Stdout, report)
		},
	}

	cmd.Flags().StringVar(&scenarioID, "scenario-id", "default", "label stamped onto every output row")
	cmd.Flags().StringVar(&algos, "algos", "baseline,aco,ga,qlearn,sa", "comma-separated algorithm list")
	cmd.Flags().Int64Var(&from, "from", 0, "source node id")
	cmd.Flags().Int64Var(&to, "to", 0, "destination node id")
	cmd.Flags().Float64Var(&demand, "demand", 0, "minimum acceptable bottleneck bandwidth in Mbps")
	cmd.Flags().BoolVar(&hasDemand, "has-demand", false, "apply the --demand constraint")
	cmd.Flags().Float64Var(&wDelay, "w-delay", 1, "delay weight")
	cmd.Flags().Float64Var(&wRel, "w-reliability", 1, "reliability weight")
	cmd.Flags().Float64Var(&wRes, "w-resource", 1, "resource weight")
	cmd.Flags().IntVar(&trials, "trials", 10, "number of trials per algorithm")
	cmd.Flags().Int64Var(&baseSeed, "base-seed", 1, "base seed the per-run seeds are derived from")
	return cmd
}

// writeCompareReport renders both output tables: the per-run row and the
// per-algorithm summary row, each with its exact column set. Missing values
// (no successes) are emitted as an empty field rather than a zero that
// would read as a real measurement.
func writeCompareReport(out *os.File, report compare.Report) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"# per-run"}); err != nil {
		return err
	}
	if err := w.Write([]string{
		"scenario_id", "S", "D", "B", "algorithm", "run_id", "status", "fail_reason",
		"total_delay", "reliability_cost", "resource_cost", "total_cost", "runtime_ms", "path",
	}); err != nil {
		return err
	}
	for _, r := range report.PerRun {
		b := ""
		if r.Demand != nil {
			b = strconv.FormatFloat(*r.Demand, 'f', 6, 64)
		}
		totalDelay, reliabilityCost, resourceCost, totalCost := "", "", "", ""
		if r.Status == "OK" {
			totalDelay = strconv.FormatFloat(r.Metrics.TotalDelayMS, 'f', 6, 64)
			reliabilityCost = strconv.FormatFloat(r.Metrics.ReliabilityCost, 'f', 6, 64)
			resourceCost = strconv.FormatFloat(r.Metrics.ResourceCost, 'f', 6, 64)
			totalCost = strconv.FormatFloat(r.Cost, 'f', 6, 64)
		}
		if err := w.Write([]string{
			r.ScenarioID,
			strconv.FormatInt(int64(r.Source), 10),
			strconv.FormatInt(int64(r.Dest), 10),
			b,
			r.Algorithm,
			strconv.Itoa(r.RunIndex),
			r.Status,
			r.FailReason,
			totalDelay,
			reliabilityCost,
			resourceCost,
			totalCost,
			strconv.FormatFloat(r.RuntimeMS, 'f', 3, 64),
			pathString(r.Path),
		}); err != nil {
			return err
		}
	}

	if err := w.Write([]string{"# per-algorithm"}); err != nil {
		return err
	}
	if err := w.Write([]string{
		"scenario_id", "algorithm", "success_count", "success_rate",
		"avg_total_cost", "std_total_cost", "best_total_cost", "worst_total_cost", "avg_runtime_ms",
	}); err != nil {
		return err
	}
	for _, a := range report.PerAlgorithm {
		avgCost, stdCost, bestCost, worstCost := "", "", "", ""
		if a.Successes > 0 {
			avgCost = strconv.FormatFloat(a.MeanCost, 'f', 6, 64)
			stdCost = strconv.FormatFloat(a.StdDevCost, 'f', 6, 64)
			bestCost = strconv.FormatFloat(a.BestCost, 'f', 6, 64)
			worstCost = strconv.FormatFloat(a.WorstCost, 'f', 6, 64)
		}
		if err := w.Write([]string{
			a.ScenarioID,
			a.Algorithm,
			strconv.Itoa(a.Successes),
			strconv.FormatFloat(a.SuccessRate, 'f', 4, 64),
			avgCost,
			stdCost,
			bestCost,
			worstCost,
			strconv.FormatFloat(a.AvgRuntimeMS, 'f', 3, 64),
		}); err != nil {
			return err
		}
	}
	return nil
}

// pathString renders a path as "n0->n1->...->nk", empty when no path.
func pathString(path []graph.NodeID) string {
	if len(path) == 0 {
		return ""
	}
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, "->")
}
