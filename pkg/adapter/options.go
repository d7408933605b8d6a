package adapter

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/netqos/routeopt/pkg/optimize/aco"
	"github.com/netqos/routeopt/pkg/optimize/ga"
	"github.com/netqos/routeopt/pkg/optimize/qlearn"
	"github.com/netqos/routeopt/pkg/optimize/sa"
)

// Each parse*Options function starts from the algorithm's defaults and
// overrides whatever keys the caller supplied in Params, collecting every
// malformed value with multierr instead of stopping at the first one, so a
// caller fixing their config sees every problem in one pass. Anything in
// Params outside the algorithm's recognized keys is ignored and reported
// back through the returned notice string rather than rejected outright.

func floatParam(params map[string]interface{}, key string, errs *[]error) (float64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		*errs = append(*errs, fmt.Errorf("parameter %q must be a number, got %T", key, v))
		return 0, false
	}
	return f, true
}

func intParam(params map[string]interface{}, key string, errs *[]error) (int, bool) {
	f, ok := floatParam(params, key, errs)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// unknownKeysNotice reports every key in params not present in recognized,
// sorted for deterministic output, as a human-readable notice about ignored
// configuration.
func unknownKeysNotice(params map[string]interface{}, recognized map[string]bool) string {
	keys := maps.Keys(params)
	unknown := make([]string, 0, len(keys))
	for _, k := range keys {
		if !recognized[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return ""
	}
	slices.Sort(unknown)
	return fmt.Sprintf("ignored unknown parameters: %s", strings.Join(unknown, ", "))
}

func parseACOOptions(params map[string]interface{}, demand *float64) (aco.Options, string, error) {
	opts := aco.DefaultOptions()
	opts.Demand = demand
	var errs []error
	if v, ok := intParam(params, "num_iterations", &errs); ok {
		opts.Iterations = v
	}
	if v, ok := intParam(params, "num_ants", &errs); ok {
		opts.Ants = v
	}
	if v, ok := floatParam(params, "alpha", &errs); ok {
		opts.Alpha = v
	}
	if v, ok := floatParam(params, "beta", &errs); ok {
		opts.Beta = v
	}
	if v, ok := floatParam(params, "rho", &errs); ok {
		opts.Rho = v
	}
	if v, ok := floatParam(params, "Q", &errs); ok {
		opts.Q = v
	}
	if v, ok := floatParam(params, "initial_pheromone", &errs); ok {
		opts.InitialPheromone = v
	}
	if v, ok := floatParam(params, "demand_bw", &errs); ok {
		opts.Demand = &v
	}
	if opts.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("num_iterations must be positive, got %d", opts.Iterations))
	}
	if opts.Ants <= 0 {
		errs = append(errs, fmt.Errorf("num_ants must be positive, got %d", opts.Ants))
	}
	if opts.Rho <= 0 || opts.Rho >= 1 {
		errs = append(errs, fmt.Errorf("rho must be in (0,1), got %.4f", opts.Rho))
	}
	if opts.InitialPheromone <= 0 {
		errs = append(errs, fmt.Errorf("initial_pheromone must be positive, got %.4f", opts.InitialPheromone))
	}
	notice := unknownKeysNotice(params, map[string]bool{
		"num_iterations": true, "num_ants": true, "rho": true, "Q": true,
		"alpha": true, "beta": true, "initial_pheromone": true, "demand_bw": true,
	})
	return opts, notice, multierrJoin(errs...)
}

func parseGAOptions(params map[string]interface{}, demand *float64) (ga.Options, string, error) {
	opts := ga.DefaultOptions()
	opts.Demand = demand
	var errs []error
	if v, ok := intParam(params, "pop_size", &errs); ok {
		opts.PopulationSize = v
	}
	if v, ok := intParam(params, "generations", &errs); ok {
		opts.Generations = v
	}
	if v, ok := floatParam(params, "mutation_rate", &errs); ok {
		opts.MutationRate = v
	}
	if opts.PopulationSize < 2 {
		errs = append(errs, fmt.Errorf("pop_size must be at least 2, got %d", opts.PopulationSize))
	}
	if opts.Generations <= 0 {
		errs = append(errs, fmt.Errorf("generations must be positive, got %d", opts.Generations))
	}
	if opts.MutationRate < 0 || opts.MutationRate > 1 {
		errs = append(errs, fmt.Errorf("mutation_rate must be in [0,1], got %.4f", opts.MutationRate))
	}
	notice := unknownKeysNotice(params, map[string]bool{
		"pop_size": true, "generations": true, "mutation_rate": true,
	})
	return opts, notice, multierrJoin(errs...)
}

func parseQLearnOptions(params map[string]interface{}, demand *float64) (qlearn.Options, string, error) {
	opts := qlearn.DefaultOptions()
	opts.Demand = demand
	var errs []error
	if v, ok := intParam(params, "episodes", &errs); ok {
		opts.Episodes = v
	}
	if v, ok := floatParam(params, "alpha", &errs); ok {
		opts.Alpha = v
	}
	if v, ok := floatParam(params, "gamma", &errs); ok {
		opts.Gamma = v
	}
	if v, ok := floatParam(params, "epsilon_decay", &errs); ok {
		opts.EpsilonDecay = v
	}
	if v, ok := floatParam(params, "min_bandwidth", &errs); ok {
		opts.Demand = &v
	}
	if opts.Episodes <= 0 {
		errs = append(errs, fmt.Errorf("episodes must be positive, got %d", opts.Episodes))
	}
	if opts.Alpha <= 0 || opts.Alpha > 1 {
		errs = append(errs, fmt.Errorf("alpha must be in (0,1], got %.4f", opts.Alpha))
	}
	if opts.Gamma < 0 || opts.Gamma >= 1 {
		errs = append(errs, fmt.Errorf("gamma must be in [0,1), got %.4f", opts.Gamma))
	}
	if opts.EpsilonDecay <= 0 || opts.EpsilonDecay > 1 {
		errs = append(errs, fmt.Errorf("epsilon_decay must be in (0,1], got %.4f", opts.EpsilonDecay))
	}
	notice := unknownKeysNotice(params, map[string]bool{
		"episodes": true, "alpha": true, "gamma": true,
		"epsilon_decay": true, "min_bandwidth": true,
	})
	return opts, notice, multierrJoin(errs...)
}

func parseSAOptions(params map[string]interface{}, demand *float64) (sa.Options, string, error) {
	opts := sa.DefaultOptions()
	opts.Demand = demand
	var errs []error
	if v, ok := floatParam(params, "T0", &errs); ok {
		opts.InitialTemperature = v
	}
	if v, ok := floatParam(params, "alpha", &errs); ok {
		opts.CoolingRate = v
	}
	if v, ok := intParam(params, "max_iter", &errs); ok {
		opts.MaxIterations = v
	}
	if v, ok := floatParam(params, "demand_bw", &errs); ok {
		opts.Demand = &v
	}
	if opts.InitialTemperature <= 0 {
		errs = append(errs, fmt.Errorf("T0 must be positive, got %.4f", opts.InitialTemperature))
	}
	if opts.CoolingRate <= 0 || opts.CoolingRate >= 1 {
		errs = append(errs, fmt.Errorf("alpha must be in (0,1), got %.4f", opts.CoolingRate))
	}
	if opts.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("max_iter must be positive, got %d", opts.MaxIterations))
	}
	notice := unknownKeysNotice(params, map[string]bool{
		"T0": true, "alpha": true, "max_iter": true, "demand_bw": true,
	})
	return opts, notice, multierrJoin(errs...)
}
