package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/minz/minzc/pkg/aco"
	"github.com/minz/minzc/pkg/ir"
	"github.com/minz/minzc/pkg/mir"
	"github.com/minz/minzc/pkg/optimizer"
	"github.com/spf13/cobra"
)

// scheduleFlags follows a gated-fmt.Printf/env-var convention (DEBUG
// enables --debug): every ACO_* env var here is an
// equivalent, less-discoverable alternative to its --aco-* flag, read only
// as a fallback when the flag was left at its zero value.
type scheduleFlags struct {
	output       string
	debug        bool
	platform     string
	mode         string
	antsP1       int
	antsP2       int
	maxIterations int
	noImprovement int
	decayFactor  float64
	localDecay   float64
	minPheromone float64
	maxPheromone float64
	useTwoPass   bool
	dualCostFn   string
	dualCostSpillFn string
	trace        bool
	dbgRegions   string
	dbgOutPath   string
	timeout      time.Duration
	minBlockSize int
	verify       bool
	vizPath      string
}

func newScheduleCmd() *cobra.Command {
	f := &scheduleFlags{}
	cmd := &cobra.Command{
		Use:   "schedule <file.mir>",
		Short: "reschedule a MIR function's instructions with the ACO engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd.Context(), args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "output .mir file (default: overwrite input)")
	flags.BoolVarP(&f.debug, "debug", "d", false, "print per-function scheduling summary")
	flags.StringVarP(&f.platform, "target", "t", "zxspectrum", "target platform, used to scale the register-pressure ceiling")

	flags.StringVar(&f.mode, "aco-mode", "mmas", "ant system variant: mmas or acs")
	flags.IntVar(&f.antsP1, "aco-ants", 0, "ants per iteration (0 keeps the platform default)")
	flags.IntVar(&f.antsP2, "aco-ants-pass2", 0, "ants per iteration for pass 2 of a two-pass run (0 reuses --aco-ants)")
	flags.IntVar(&f.maxIterations, "aco-max-iterations", 0, "iteration cap per pass (0 keeps the platform default)")
	flags.IntVar(&f.noImprovement, "aco-no-improvement-max", 0, "stop a pass after this many non-improving iterations (0 keeps the platform default)")
	flags.Float64Var(&f.decayFactor, "aco-decay", 0, "MMAS global pheromone decay (0 keeps the platform default)")
	flags.Float64Var(&f.localDecay, "aco-local-decay", 0, "ACS local pheromone decay (0 keeps the platform default)")
	flags.Float64Var(&f.minPheromone, "aco-min-pheromone", 0, "MMAS pheromone floor (0 keeps the platform default)")
	flags.Float64Var(&f.maxPheromone, "aco-max-pheromone", 0, "MMAS pheromone ceiling (0 keeps the platform default)")
	flags.BoolVar(&f.useTwoPass, "aco-two-pass", true, "minimize spill cost in a first pass, then execution cost in a second")
	flags.StringVar(&f.dualCostFn, "aco-dual-cost-fn", "OFF", "tie-break rule: OFF, GLOBAL_ONLY, GLOBAL_AND_TIGHTEN, GLOBAL_AND_ITERATION")
	flags.StringVar(&f.dualCostSpillFn, "aco-dual-cost-spill-fn", "PEAK_PRESSURE", "secondary register-pressure metric the tie-break compares: NONE, PEAK_PRESSURE, LIVE_RANGE_SPAN")

	flags.BoolVar(&f.trace, "aco-trace", false, "print per-iteration progress to stderr")
	flags.StringVar(&f.dbgRegions, "aco-dbg-regions", "", "comma-separated list of function.bN regions to dump pheromone graphs for (empty dumps every region when --aco-dbg-out is set)")
	flags.StringVar(&f.dbgOutPath, "aco-dbg-out", "", "directory to write per-region pheromone-graph .dot files to")

	flags.DurationVar(&f.timeout, "aco-timeout", 2*time.Second, "scheduling deadline per basic block")
	flags.IntVar(&f.minBlockSize, "aco-min-block-size", 3, "basic blocks at or below this many instructions are left unscheduled")

	flags.BoolVar(&f.verify, "verify", false, "interpret every function before and after scheduling and fail if the reschedule changed its result")
	flags.StringVar(&f.vizPath, "viz", "", "write a Graphviz .dot rendering of the (post-scheduling) control flow to this path")

	return cmd
}

func runSchedule(ctx context.Context, mirFile string, f *scheduleFlags) error {
	applyEnvOverrides(f)

	module, err := mir.ParseMIRFile(mirFile)
	if err != nil {
		return fmt.Errorf("MIR parse error: %w", err)
	}

	opts, err := schedulingOptionsFromFlags(f)
	if err != nil {
		return err
	}

	var before []*ir.Function
	if f.verify {
		before = optimizer.SnapshotFunctions(module.Functions)
	}

	pass := optimizer.NewInstructionSchedulingPass(opts)
	changed, err := pass.Run(module)
	if err != nil {
		return fmt.Errorf("scheduling error: %w", err)
	}

	if f.verify {
		for _, r := range optimizer.VerifyReschedule(before, module.Functions) {
			switch {
			case !r.Checked:
				if f.debug {
					fmt.Printf("verify %s: unchecked (uses opcodes the interpreter does not model)\n", r.Function)
				}
			case r.Err != "":
				return fmt.Errorf("verify %s: scheduling changed whether the function runs: %s", r.Function, r.Err)
			case !r.Match:
				return fmt.Errorf("verify %s: scheduling changed its result (%d -> %d)", r.Function, r.Before, r.After)
			case f.debug:
				fmt.Printf("verify %s: matched (%d)\n", r.Function, r.Before)
			}
		}
	}

	output := f.output
	if output == "" {
		output = mirFile
	}
	if err := mir.WriteMIRFile(output, module); err != nil {
		return fmt.Errorf("writing scheduled MIR: %w", err)
	}

	if f.vizPath != "" {
		vizFile, err := os.Create(f.vizPath)
		if err != nil {
			return fmt.Errorf("creating viz output: %w", err)
		}
		defer vizFile.Close()
		if err := mir.NewVisualizer(vizFile).Visualize(module); err != nil {
			return fmt.Errorf("writing viz output: %w", err)
		}
	}

	if f.debug {
		if changed {
			fmt.Printf("Scheduled %s -> %s\n", mirFile, output)
		} else {
			fmt.Printf("No eligible blocks in %s; wrote %s unchanged\n", mirFile, output)
		}
	}
	_ = ctx
	return nil
}

func schedulingOptionsFromFlags(f *scheduleFlags) (optimizer.SchedulingOptions, error) {
	opts := optimizer.SchedulingOptionsForPlatform(f.platform)
	cfg := opts.Config

	switch strings.ToLower(f.mode) {
	case "acs":
		cfg.Mode = aco.ModeACS
	case "mmas", "":
		cfg.Mode = aco.ModeMMAS
	default:
		return opts, fmt.Errorf("aco: unknown --aco-mode %q (want mmas or acs)", f.mode)
	}

	if f.antsP1 > 0 {
		cfg.AntsPerIteration = f.antsP1
	}
	if f.antsP2 > 0 {
		cfg.TwoPassAntsPerIteration = f.antsP2
	}
	if f.maxIterations > 0 {
		cfg.MaxIterations = f.maxIterations
	}
	if f.noImprovement > 0 {
		cfg.NoImprovementMax = f.noImprovement
	}
	if f.decayFactor > 0 {
		cfg.DecayFactor = f.decayFactor
	}
	if f.localDecay > 0 {
		cfg.LocalDecay = f.localDecay
	}
	if f.minPheromone > 0 {
		cfg.MinPheromone = f.minPheromone
	}
	if f.maxPheromone > 0 {
		cfg.MaxPheromone = f.maxPheromone
	}
	cfg.UseTwoPass = f.useTwoPass

	dcf, err := aco.ParseDualCostFn(f.dualCostFn)
	if err != nil {
		return opts, err
	}
	cfg.DualCostFunction = dcf

	spillFn, err := aco.ParseSpillCostFn(f.dualCostSpillFn)
	if err != nil {
		return opts, err
	}
	cfg.DualCostSpillFn = spillFn

	if f.trace {
		cfg.Trace = aco.NewTrace(os.Stderr)
	}
	if f.dbgOutPath != "" {
		cfg.DebugOutPath = f.dbgOutPath
		if f.dbgRegions != "" {
			regions := map[string]bool{}
			for _, r := range strings.Split(f.dbgRegions, ",") {
				if r = strings.TrimSpace(r); r != "" {
					regions[r] = true
				}
			}
			cfg.DebugRegions = regions
		}
	}

	if err := cfg.Validate(); err != nil {
		return opts, err
	}
	opts.Config = cfg
	opts.Timeout = f.timeout
	opts.MinBlockSize = f.minBlockSize
	return opts, nil
}

// applyEnvOverrides applies the DEBUG and ACO_* env vars: an env var only
// takes effect when the corresponding flag was left at its
// zero value, so an explicit flag always wins.
func applyEnvOverrides(f *scheduleFlags) {
	if !f.debug && os.Getenv("DEBUG") != "" {
		f.debug = true
	}
	if !f.trace && os.Getenv("ACO_TRACE") != "" {
		f.trace = true
	}
	if f.dbgOutPath == "" {
		if v := os.Getenv("ACO_DBG_REGIONS_OUT_PATH"); v != "" {
			f.dbgOutPath = v
		}
	}
	if f.dbgRegions == "" {
		if v := os.Getenv("ACO_DBG_REGIONS"); v != "" {
			f.dbgRegions = v
		}
	}
	if f.antsP1 == 0 {
		if v := os.Getenv("ACO_ANTS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				f.antsP1 = n
			}
		}
	}
}
