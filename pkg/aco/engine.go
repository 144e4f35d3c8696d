package aco

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
)

// Engine runs the ant colony construction/reinforcement loop over a single
// region's dependence graph. One Engine is built per region; it holds no
// state that outlives a single Run or RunTwoPass call other than the
// (read-only, after construction) KeyHelper.
type Engine struct {
	dag     DAG
	machine MachineModel
	cost    CostModel
	cfg     Config
	keys    *KeyHelper
	rng     *rand.Rand
	region  string
}

// NewEngine validates cfg and returns an Engine ready to schedule dag.
// seed fixes the base RNG stream; pass a value derived from the region id
// for reproducible traces, or time-derived entropy for production use.
// region names this DAG for Config.DebugRegions filtering and pheromone-dump
// file naming; pass "" when a caller has no natural region identifier.
func NewEngine(dag DAG, machine MachineModel, cost CostModel, cfg Config, seed int64, region string) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		dag:     dag,
		machine: machine,
		cost:    cost,
		cfg:     cfg,
		keys:    NewKeyHelper(dag),
		rng:     rand.New(rand.NewSource(seed)),
		region:  region,
	}, nil
}

// shouldDumpRegion reports whether this engine's region passes
// Config.DebugRegions filtering for pheromone-graph dumping.
func (e *Engine) shouldDumpRegion() bool {
	if e.cfg.DebugOutPath == "" {
		return false
	}
	if len(e.cfg.DebugRegions) == 0 {
		return true
	}
	return e.cfg.DebugRegions[e.region]
}

// dumpPheromoneGraph writes the current pheromone matrix and best schedule
// to Config.DebugOutPath, named after the region and pass. Write failures
// are traced, not returned: a debug dump failing is not a scheduling error.
func (e *Engine) dumpPheromoneGraph(pher *PheromoneMatrix, pass int, best *Schedule) {
	name := e.region
	if name == "" {
		name = "region"
	}
	path := filepath.Join(e.cfg.DebugOutPath, fmt.Sprintf("%s_pass%d.dot", name, pass))
	if err := os.MkdirAll(e.cfg.DebugOutPath, 0o755); err != nil {
		if e.cfg.Trace != nil {
			e.cfg.Trace.Printf("aco: could not create debug output dir %s: %v", e.cfg.DebugOutPath, err)
		}
		return
	}
	f, err := os.Create(path)
	if err != nil {
		if e.cfg.Trace != nil {
			e.cfg.Trace.Printf("aco: could not create pheromone dump %s: %v", path, err)
		}
		return
	}
	defer f.Close()
	if err := WritePheromoneGraph(f, e.dag, pher, best, best, nil); err != nil && e.cfg.Trace != nil {
		e.cfg.Trace.Printf("aco: writing pheromone dump %s: %v", path, err)
	}
}

// Run executes a single pass that minimizes execution cost subject to
// maxRPCost as a hard per-ant ceiling on register-pressure cost. Most
// callers that do not need the two-pass spill-then-speed strategy should
// use this directly.
func (e *Engine) Run(ctx context.Context, maxRPCost int) (*Schedule, *Summary, error) {
	perAnt := func(int) int { return maxRPCost }
	return e.runPass(ctx, 1, false, perAnt, nil)
}

// antSeed derives a distinct, deterministic RNG seed for ant antIdx of
// iteration iter from the engine's base stream, so that parallel-ants mode
// produces the same schedules as sequential mode for a fixed base seed.
func (e *Engine) antSeed(iter, antIdx int) int64 {
	return e.rng.Int63() + int64(iter)*1_000_003 + int64(antIdx)
}

// runPass runs one full ant-colony pass: a heuristic-only warm-up ant to
// calibrate the pheromone scale, then MaxIterations iterations of
// AntsPerIteration ants each, reinforcing and decaying pheromone between
// iterations. spillPrimary selects whether the cost comparator optimizes
// NormSpillCost (pass 1 of a two-pass run) or ExecCost (pass 2, or the
// entirety of a single-pass run). perAntTarget supplies each ant's
// register-pressure ceiling by its position within the iteration.
func (e *Engine) runPass(ctx context.Context, pass int, spillPrimary bool, perAntTarget func(antIdx int) int, warmStart *Schedule) (*Schedule, *Summary, error) {
	n := e.dag.NumNodes()
	pher := NewPheromoneMatrix(n, e.cfg, 1.0)

	warmup := NewAntConstructor(e.dag, e.machine, e.cost, pher, e.keys, e.cfg, rand.New(rand.NewSource(e.antSeed(-1, 0))))
	_, heuristicSummary, err := warmup.FindOneSchedule(perAntTarget(0))
	if err != nil {
		return nil, nil, fmt.Errorf("aco: heuristic warm-up failed: %w", err)
	}
	hCost := heuristicSummary.ExecCost
	if spillPrimary {
		hCost = heuristicSummary.NormSpillCost
	}
	hCost++ // avoid division by zero downstream

	antsThisPass := e.cfg.antsForPass(pass)
	var initial float64
	if e.cfg.Mode == ModeACS {
		initial = 2.0 / (float64(antsThisPass) * float64(hCost))
	} else {
		initial = float64(antsThisPass) / float64(hCost)
	}
	pher.Seed(initial)

	var best *Schedule
	var bestSummary *Summary
	if warmStart != nil {
		best = warmStart
		bestSummary = &Summary{
			ExecCost:       e.cost.ExecCost(warmStart),
			NormSpillCost:  e.cost.NormSpillCost(warmStart),
			ExtraSpillCost: e.cost.ExtraSpillCost(warmStart, e.cfg.DualCostSpillFn),
			Length:         len(warmStart.Order),
		}
		cost := bestSummary.ExecCost
		if spillPrimary {
			cost = bestSummary.NormSpillCost
		}
		pher.Deposit(best, cost, float64(hCost))
	}

	noImprovement := 0
	iter := 0
	for ; iter < e.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return best, bestSummary, err
		}

		iterBest, iterBestSummary := e.runIteration(pher, spillPrimary, antsThisPass, perAntTarget, iter)

		if iterBest == nil {
			noImprovement++
			if e.cfg.Trace != nil {
				e.cfg.Trace.Printf("aco: iteration %d produced no feasible schedule", iter)
			}
			if noImprovement > e.cfg.NoImprovementMax {
				break
			}
			continue
		}

		depositCost := iterBestSummary.ExecCost
		if spillPrimary {
			depositCost = iterBestSummary.NormSpillCost
		}
		pher.Deposit(iterBest, depositCost, float64(hCost))
		if e.cfg.Trace != nil {
			e.cfg.Trace.Printf("aco: %s pass %d iteration %d: iteration-best exec=%d spill=%d", e.region, pass, iter, iterBestSummary.ExecCost, iterBestSummary.NormSpillCost)
		}

		if shouldReplaceSchedule(bestSummary, iterBestSummary, true, e.cfg, spillPrimary) {
			best, bestSummary = iterBest, iterBestSummary
			bestSummary.BestFoundIteration = iter
			noImprovement = 0
			primaryCost := bestSummary.ExecCost
			if spillPrimary {
				primaryCost = bestSummary.NormSpillCost
			}
			if primaryCost == 0 {
				break
			}
		} else {
			noImprovement++
			if noImprovement > e.cfg.NoImprovementMax {
				break
			}
		}
	}

	if bestSummary != nil {
		bestSummary.Iterations = iter + 1
	}
	if best == nil {
		return nil, nil, ErrInfeasibleRegion
	}
	if e.shouldDumpRegion() {
		e.dumpPheromoneGraph(pher, pass, best)
	}
	return best, bestSummary, nil
}

// runIteration constructs antsThisPass ants (concurrently under MMAS,
// one after another under ACS) and returns whichever produced the best
// schedule per the cost comparator, or (nil, nil) if every ant aborted as
// infeasible.
func (e *Engine) runIteration(pher *PheromoneMatrix, spillPrimary bool, antsThisPass int, perAntTarget func(int) int, iter int) (*Schedule, *Summary) {
	type result struct {
		schedule *Schedule
		summary  *Summary
	}
	results := make([]result, antsThisPass)

	seeds := make([]int64, antsThisPass)
	for i := range seeds {
		seeds[i] = e.antSeed(iter, i)
	}

	runOne := func(antIdx int) {
		ant := NewAntConstructor(e.dag, e.machine, e.cost, pher, e.keys, e.cfg, rand.New(rand.NewSource(seeds[antIdx])))
		sched, summ, err := ant.FindOneSchedule(perAntTarget(antIdx))
		if err != nil {
			return
		}
		results[antIdx] = result{sched, summ}
	}

	if e.cfg.Mode == ModeACS {
		// ACS ants apply local pheromone decay to the shared matrix as
		// they walk each edge, so they cannot run concurrently; MMAS ants
		// only read pheromone during construction and reinforce it in a
		// single barrier after the whole iteration, so those run in
		// parallel goroutines joined by a WaitGroup.
		for i := 0; i < antsThisPass; i++ {
			runOne(i)
		}
	} else {
		var wg sync.WaitGroup
		for i := 0; i < antsThisPass; i++ {
			wg.Add(1)
			go func(antIdx int) {
				defer wg.Done()
				runOne(antIdx)
			}(i)
		}
		wg.Wait()
	}

	var best *Schedule
	var bestSummary *Summary
	for _, r := range results {
		if r.schedule == nil {
			continue
		}
		if shouldReplaceSchedule(bestSummary, r.summary, false, e.cfg, spillPrimary) {
			best, bestSummary = r.schedule, r.summary
		}
	}
	return best, bestSummary
}
