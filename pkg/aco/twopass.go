package aco

import "context"

// RunTwoPass runs the two-pass driver: a first pass that minimizes
// NormSpillCost alone (with maxRPCost as the only ceiling, representing
// the machine's hard capacity), followed by a second pass, reseeded with
// fresh pheromone, that minimizes ExecCost subject to the first pass's
// NormSpillCost as a per-ant ceiling — except the first ant of every
// iteration, which is still given the loose maxRPCost ceiling so at least
// one ant keeps exploring outside the tightened target instead of the
// whole colony converging prematurely.
//
// The second pass is warm-started from the first pass's best schedule, so
// it can never finish worse than pass 1 already achieved.
//
// Only used when Config.UseTwoPass is set; RunSchedule below picks between
// this and a single Run call based on that flag.
func (e *Engine) RunTwoPass(ctx context.Context, maxRPCost int) (*Schedule, *Summary, error) {
	pass1Target := func(int) int { return maxRPCost }
	schedule1, summary1, err := e.runPass(ctx, 1, true, pass1Target, nil)
	if err != nil {
		return nil, nil, err
	}

	targetNSC := summary1.NormSpillCost
	pass2Target := func(antIdx int) int {
		if antIdx == 0 {
			return maxRPCost
		}
		return targetNSC
	}

	schedule2, summary2, err := e.runPass(ctx, 2, false, pass2Target, schedule1)
	if err != nil {
		return nil, nil, err
	}
	return schedule2, summary2, nil
}

// RunSchedule is the single entry point most callers should use: it
// dispatches to RunTwoPass or Run depending on Config.UseTwoPass.
func (e *Engine) RunSchedule(ctx context.Context, maxRPCost int) (*Schedule, *Summary, error) {
	if e.cfg.UseTwoPass {
		return e.RunTwoPass(ctx, maxRPCost)
	}
	return e.Run(ctx, maxRPCost)
}
