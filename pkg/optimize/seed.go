// Package optimize holds types shared by the four metaheuristic/learning
// routers (aco, ga, qlearn, sa) and the deterministic RNG seeding scheme
// every one of them uses.
package optimize

import (
	"math/rand"

	"github.com/netqos/routeopt/pkg/graph"
)

// DeriveSeed mixes a base seed with an algorithm index and a run index into
// a single independent stream seed, following the SplitMix64-style mixing
// the wider example pack uses for reproducible per-run RNGs (tsp.Options'
// seed derivation). The Comparison Harness calls this for every trial
// instead of seeding from wall-clock time, so a given (base, algo, run)
// triple always produces the same path.
func DeriveSeed(base int64, algoIndex, runIndex int) int64 {
	x := uint64(base) + uint64(algoIndex)*0x9E3779B97F4A7C15 + uint64(runIndex)*0xBF58476D1CE4E5B9
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return int64(x)
}

// NewRand returns a *rand.Rand seeded deterministically from seed. Every
// optimizer takes this as an injected dependency rather than calling
// math/rand's package-level functions, so a run never depends on
// process-global RNG state.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// RawResult is what each optimizer's Route function returns before the
// Adapter re-scores it against the Metric Engine and wraps it into a full
// Result.
type RawResult struct {
	Path  []graph.NodeID
	Notes string
}
