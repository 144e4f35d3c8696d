package aco

import "fmt"

// Mode selects which ant-system variant governs pheromone update.
type Mode int

const (
	// ModeMMAS is the MAX-MIN Ant System: pheromone is updated on every
	// edge after each iteration (reinforcement plus global decay) and
	// clamped to [MinPheromone, MaxPheromone].
	ModeMMAS Mode = iota
	// ModeACS is the Ant Colony System: each ant applies a local decay to
	// the edges it walks as it walks them, and there is no global decay
	// pass.
	ModeACS
)

// DualCostFn selects how the dual cost function (DCF) breaks ties between
// an ant's schedule and the current best when both report equal primary
// cost.
type DualCostFn int

const (
	// DualCostOff disables the tiebreak; schedules with equal cost never
	// replace one another.
	DualCostOff DualCostFn = iota
	// DualCostGlobalOnly applies the tiebreak only when comparing against
	// the global-best schedule, never the iteration-best.
	DualCostGlobalOnly
	// DualCostGlobalAndTighten applies the tiebreak against the global
	// best only. On an extra-spill-cost tie it also compares normalized
	// spill cost, but the tiebreak is only reached when that cost is
	// already equal, so it ranks ties exactly as DualCostGlobalOnly does.
	DualCostGlobalAndTighten
	// DualCostGlobalAndIteration applies the tiebreak against both the
	// global best and the iteration best.
	DualCostGlobalAndIteration
)

// ParseDualCostFn parses the textual config values accepted by the dual
// cost function setting.
func ParseDualCostFn(s string) (DualCostFn, error) {
	switch s {
	case "OFF", "":
		return DualCostOff, nil
	case "GLOBAL_ONLY":
		return DualCostGlobalOnly, nil
	case "GLOBAL_AND_TIGHTEN":
		return DualCostGlobalAndTighten, nil
	case "GLOBAL_AND_ITERATION":
		return DualCostGlobalAndIteration, nil
	default:
		return DualCostOff, fmt.Errorf("aco: unknown dual cost function %q", s)
	}
}

// SpillCostFn names an alternate register-pressure metric the dual cost
// function tiebreak uses to rank two schedules CostModel.NormSpillCost and
// ExecCost already rate as exactly equal. It is the scheduler's equivalent
// of the original's DCFFnName setting: which secondary cost function the
// tiebreak computes, as opposed to DualCostFn, which is when the tiebreak
// applies (global best only, global and iteration, etc.).
type SpillCostFn int

const (
	// SpillCostFnNone disables the secondary comparison: ExtraSpillCost
	// always reports 0 for every schedule, so ties never break on it.
	SpillCostFnNone SpillCostFn = iota
	// SpillCostFnPeakPressure scores a schedule by the single highest
	// simultaneous live-register weight it reaches anywhere in the
	// schedule, preferring schedules that spread register pressure out
	// even when their total excess-over-capacity cost is identical.
	SpillCostFnPeakPressure
	// SpillCostFnLiveRangeSpan scores a schedule by the sum, over every
	// register the block defines, of the distance between its definition
	// and its last use, preferring schedules that keep live ranges short.
	SpillCostFnLiveRangeSpan
)

// ParseSpillCostFn parses the textual config values accepted by the dual
// cost function's spill-cost-function setting.
func ParseSpillCostFn(s string) (SpillCostFn, error) {
	switch s {
	case "NONE", "":
		return SpillCostFnNone, nil
	case "PEAK_PRESSURE":
		return SpillCostFnPeakPressure, nil
	case "LIVE_RANGE_SPAN":
		return SpillCostFnLiveRangeSpan, nil
	default:
		return SpillCostFnNone, fmt.Errorf("aco: unknown spill cost function %q", s)
	}
}

// Config holds every tunable of the scheduler. It is immutable once built:
// callers construct a Config value (optionally via DefaultConfig) and pass
// it to NewEngine; nothing in this package ever mutates a Config in place.
type Config struct {
	// Mode selects MMAS or ACS pheromone dynamics.
	Mode Mode

	// AntsPerIteration is the number of ants constructed per iteration in
	// the main (or only) pass.
	AntsPerIteration int
	// TwoPassAntsPerIteration overrides AntsPerIteration for the second
	// pass of a two-pass run; if zero, AntsPerIteration is reused.
	TwoPassAntsPerIteration int
	// MaxIterations bounds the number of iterations per pass.
	MaxIterations int
	// NoImprovementMax stops a pass early after this many consecutive
	// iterations fail to improve the global-best schedule.
	NoImprovementMax int

	// DecayFactor is the global pheromone evaporation rate applied once
	// per iteration under MMAS (ignored under ACS).
	DecayFactor float64
	// LocalDecay is the per-edge decay applied by each ant immediately
	// after walking an edge under ACS (ignored under MMAS).
	LocalDecay float64
	// MinPheromone and MaxPheromone clamp every pheromone entry after
	// each MMAS update.
	MinPheromone float64
	MaxPheromone float64

	// UseFixedBias selects the fixed-bias selection rule
	// (argmax with probability max(0, 1-FixedBias/eligibleCount), where
	// eligibleCount is the number of ready entries issuable this cycle) over the
	// ratio-based bias rule (argmax with probability BiasRatio).
	UseFixedBias bool
	FixedBias    float64
	BiasRatio    float64
	// Tournament enables two-draw tournament selection instead of plain
	// roulette-wheel selection whenever the bias draw does not fire.
	Tournament bool
	// HeuristicImportance enables folding the heuristic key into edge
	// score; when false, Score degenerates to raw pheromone.
	HeuristicImportance bool

	// UseTwoPass runs a first pass that only minimizes normalized spill
	// cost, then reseeds pheromone and runs a second pass that minimizes
	// execution cost subject to the first pass's spill cost as a ceiling.
	UseTwoPass bool

	// DualCostFunction selects the DCF tiebreak behavior.
	DualCostFunction DualCostFn
	// DualCostSpillFn selects which secondary register-pressure metric the
	// DCF tiebreak computes and compares when DualCostFunction applies.
	DualCostSpillFn SpillCostFn

	// Trace, when non-nil, receives human-readable progress lines as the
	// engine runs (gated the same way debug logging is gated elsewhere:
	// nil means silent).
	Trace Tracer

	// DebugRegions, when non-empty, restricts pheromone-graph dumps to
	// regions whose name appears in this set; a nil/empty set with
	// DebugOutPath set dumps every region.
	DebugRegions map[string]bool
	// DebugOutPath is the directory pheromone-graph .dot dumps are
	// written to. Empty disables dumping regardless of DebugRegions.
	DebugOutPath string
}

// DefaultConfig returns the configuration used when a caller supplies no
// overrides: MMAS mode, no two-pass, ratio-based bias with a modest
// tournament-free roulette wheel.
func DefaultConfig() Config {
	return Config{
		Mode:                ModeMMAS,
		AntsPerIteration:    10,
		MaxIterations:       100,
		NoImprovementMax:    20,
		DecayFactor:         0.1,
		LocalDecay:          0.1,
		MinPheromone:        1.0,
		MaxPheromone:        8.0,
		UseFixedBias:        false,
		FixedBias:           2.0,
		BiasRatio:           0.05,
		Tournament:          false,
		HeuristicImportance: true,
		UseTwoPass:          false,
		DualCostFunction:    DualCostOff,
		DualCostSpillFn:     SpillCostFnPeakPressure,
	}
}

// Validate reports a configuration error for settings the engine cannot
// reasonably act on.
func (c Config) Validate() error {
	if c.AntsPerIteration <= 0 {
		return fmt.Errorf("%w: AntsPerIteration must be positive, got %d", ErrConfigurationInvalid, c.AntsPerIteration)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: MaxIterations must be positive, got %d", ErrConfigurationInvalid, c.MaxIterations)
	}
	if c.Mode == ModeMMAS && c.MinPheromone > c.MaxPheromone {
		return fmt.Errorf("%w: MinPheromone %.3f exceeds MaxPheromone %.3f", ErrConfigurationInvalid, c.MinPheromone, c.MaxPheromone)
	}
	if c.DecayFactor < 0 || c.DecayFactor > 1 {
		return fmt.Errorf("%w: DecayFactor must be in [0,1], got %.3f", ErrConfigurationInvalid, c.DecayFactor)
	}
	if c.LocalDecay < 0 || c.LocalDecay > 1 {
		return fmt.Errorf("%w: LocalDecay must be in [0,1], got %.3f", ErrConfigurationInvalid, c.LocalDecay)
	}
	return nil
}

// antsForPass returns the ant count to use for the given pass (1 or 2).
func (c Config) antsForPass(pass int) int {
	if pass == 2 && c.TwoPassAntsPerIteration > 0 {
		return c.TwoPassAntsPerIteration
	}
	return c.AntsPerIteration
}

// Tracer receives progress lines from the engine. It is satisfied by
// *log.Logger and by any type with a Printf method, including the Trace
// helper in trace.go.
type Tracer interface {
	Printf(format string, args ...interface{})
}
