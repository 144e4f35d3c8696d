package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/minz/minzc/pkg/aco"
	"github.com/minz/minzc/pkg/ir"
	"github.com/minz/minzc/pkg/platform"
)

// SchedulingMetrics tracks what a scheduling pass changed, in the same
// spirit as the greedy scheduler's OptimizationMetrics.
type SchedulingMetrics struct {
	BlocksScheduled       int
	InstructionsReordered int
	InfeasibleBlocks      int
	BestExecCost          int
	BestNormSpillCost     int
}

// SchedulingOptions configures the instruction-scheduling pass.
type SchedulingOptions struct {
	Config       aco.Config
	Machine      aco.MachineModel
	MaxRPCost    int           // register-pressure ceiling; 0 means unconstrained
	Timeout      time.Duration // per-basic-block scheduling budget, 0 means none
	MinBlockSize int           // blocks at or below this size are left alone
}

// DefaultSchedulingOptions returns the scheduling options NewOptimizer wires
// in at OptLevelFull: MMAS, two-pass, a generous register-pressure ceiling,
// and a per-basic-block timeout so one pathological block cannot stall a whole
// compilation. Equivalent to SchedulingOptionsForPlatform("zxspectrum").
func DefaultSchedulingOptions() SchedulingOptions {
	return SchedulingOptionsForPlatform("zxspectrum")
}

// SchedulingOptionsForPlatform scales the register-pressure ceiling to the
// target platform's usable per-frame cycle budget (platform.GetFrameBudget):
// a platform with more headroom per frame can afford ants to explore
// schedules with higher transient register pressure before the two-pass
// driver's spill-cost ceiling kicks in.
func SchedulingOptionsForPlatform(platformName string) SchedulingOptions {
	cfg := aco.DefaultConfig()
	cfg.UseTwoPass = true
	return SchedulingOptions{
		Config:       cfg,
		Machine:      Z80MachineModel{},
		MaxRPCost:    platform.GetFrameBudget(platformName, 60) / 8,
		Timeout:      2 * time.Second,
		MinBlockSize: 3,
	}
}

// InstructionSchedulingPass reorders each basic block's instructions with an
// ant colony scheduler: BuildBlockDAG supplies the dependence graph,
// Z80MachineModel supplies per-class latencies, and Z80SpillCostModel scores
// each candidate schedule's register pressure.
type InstructionSchedulingPass struct {
	opts    SchedulingOptions
	metrics SchedulingMetrics
	seed    int64
}

// NewInstructionSchedulingPass creates the pass. seed is fixed rather than
// time-derived so a given module schedules identically across compiler runs.
func NewInstructionSchedulingPass(opts SchedulingOptions) *InstructionSchedulingPass {
	return &InstructionSchedulingPass{opts: opts, seed: 0x6d696e7a}
}

func (p *InstructionSchedulingPass) Name() string { return "instruction-scheduling" }

// Run schedules every basic block of every function in module. It never
// returns an error for a single infeasible or unschedulable block -- it
// leaves that block's instructions in their original order and keeps going,
// since a missed scheduling opportunity is not a correctness problem.
func (p *InstructionSchedulingPass) Run(module *ir.Module) (bool, error) {
	changed := false
	for _, fn := range module.Functions {
		fnChanged, err := p.scheduleFunction(fn)
		if err != nil {
			return changed, fmt.Errorf("scheduling function %s: %w", fn.Name, err)
		}
		if fnChanged {
			changed = true
		}
	}
	return changed, nil
}

func (p *InstructionSchedulingPass) scheduleFunction(fn *ir.Function) (bool, error) {
	blocks := SplitBasicBlocks(fn)
	var rebuilt []ir.Instruction
	changed := false

	for blockIdx, block := range blocks {
		if len(block) <= p.opts.MinBlockSize {
			rebuilt = append(rebuilt, block...)
			continue
		}

		region := fmt.Sprintf("%s.b%d", fn.Name, blockIdx)
		scheduled, ok, err := p.scheduleBlock(fn, block, region)
		if err != nil {
			return changed, err
		}
		if !ok {
			p.metrics.InfeasibleBlocks++
			rebuilt = append(rebuilt, block...)
			continue
		}

		rebuilt = append(rebuilt, scheduled...)
		p.metrics.BlocksScheduled++
		p.metrics.InstructionsReordered += len(block)
		changed = true
	}

	fn.Instructions = rebuilt
	return changed, nil
}

// scheduleBlock runs the ACO engine over one basic block and returns its
// instructions in scheduled order. Label and control-transfer instructions
// never leave the positions SplitBasicBlocks put them in (a block begins
// with at most one label and ends with at most one control transfer), so
// only the interior is handed to BuildBlockDAG.
func (p *InstructionSchedulingPass) scheduleBlock(fn *ir.Function, block []ir.Instruction, region string) ([]ir.Instruction, bool, error) {
	head := 0
	if block[0].Op == ir.OpLabel {
		head = 1
	}
	tail := len(block)
	switch block[tail-1].Op {
	case ir.OpJump, ir.OpJumpIf, ir.OpJumpIfNot, ir.OpBranch, ir.OpReturn:
		tail--
	}
	interior := block[head:tail]
	if len(interior) <= 1 {
		return block, true, nil
	}

	machine := p.opts.Machine
	dag := BuildBlockDAG(interior, machine)
	cost := NewZ80SpillCostModel(fn, interior)

	engine, err := aco.NewEngine(dag, machine, cost, p.opts.Config, p.seed, region)
	if err != nil {
		return nil, false, fmt.Errorf("constructing scheduling engine: %w", err)
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if p.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	maxRP := p.opts.MaxRPCost
	if maxRP <= 0 {
		maxRP = 1 << 20
	}
	schedule, summary, err := engine.RunSchedule(ctx, maxRP)
	if err != nil {
		return nil, false, nil
	}

	p.metrics.BestExecCost += summary.ExecCost
	p.metrics.BestNormSpillCost += summary.NormSpillCost

	result := make([]ir.Instruction, 0, len(block))
	result = append(result, block[:head]...)
	for _, id := range schedule.Order {
		result = append(result, interior[id])
	}
	result = append(result, block[tail:]...)
	return result, true, nil
}
