package optimizer

import (
	"github.com/minz/minzc/pkg/aco"
	"github.com/minz/minzc/pkg/ir"
)

// z80GPRegisterCapacity is the number of general-purpose registers the Z80
// backend treats as spill-free, the same assumption register_pressure.go
// used when deciding a function's maximum live range count was too high.
const z80GPRegisterCapacity = 7

// Z80SpillCostModel is the aco.CostModel for one basic block: execution
// cost is the schedule's makespan in cycles, and normalized spill cost is
// the integral, over the schedule, of how far simultaneous live-register
// weight exceeds the machine's register capacity. This replaces the
// standalone greedy live-range/rematerialization pass register_pressure.go
// used to drive with its own selectBestInstruction search; the live-range
// bookkeeping survives, adapted to score ant-constructed schedules instead
// of picking them itself.
type Z80SpillCostModel struct {
	block     []ir.Instruction
	useCount  map[ir.Register]int
	weight    map[ir.Register]int
	regIndex  map[ir.Register]int
	capacity  int
}

// NewZ80SpillCostModel builds a cost model for block, using fn's
// parameters and locals to size each register's contribution to pressure
// by its declared type's width (defaulting to 1 for registers with no
// declared type, e.g. compiler-introduced temporaries).
func NewZ80SpillCostModel(fn *ir.Function, block []ir.Instruction) *Z80SpillCostModel {
	m := &Z80SpillCostModel{
		block:    block,
		useCount: map[ir.Register]int{},
		weight:   map[ir.Register]int{},
		regIndex: map[ir.Register]int{},
		capacity: z80GPRegisterCapacity,
	}
	for _, p := range fn.Params {
		m.weight[p.Reg] = regWeight(p.Type)
	}
	for _, l := range fn.Locals {
		m.weight[l.Reg] = regWeight(l.Type)
	}
	for _, inst := range block {
		for _, use := range inst.Uses() {
			m.useCount[use]++
			m.indexOf(use)
		}
		if dest, ok := inst.Def(); ok {
			m.indexOf(dest)
		}
	}
	return m
}

func regWeight(t ir.Type) int {
	if t == nil {
		return 1
	}
	if s := t.Size(); s > 0 {
		return s
	}
	return 1
}

func (m *Z80SpillCostModel) indexOf(r ir.Register) int {
	if idx, ok := m.regIndex[r]; ok {
		return idx
	}
	idx := len(m.regIndex)
	m.regIndex[r] = idx
	return idx
}

func (m *Z80SpillCostModel) weightOf(r ir.Register) int {
	if w, ok := m.weight[r]; ok {
		return w
	}
	return 1
}

// ExecCost returns the schedule's makespan: the cycle of its last
// instruction, plus one.
func (m *Z80SpillCostModel) ExecCost(s *aco.Schedule) int {
	if len(s.Cycle) == 0 {
		return 0
	}
	max := s.Cycle[0]
	for _, c := range s.Cycle {
		if c > max {
			max = c
		}
	}
	return max + 1
}

// NormSpillCost integrates excess register pressure across the whole
// schedule.
func (m *Z80SpillCostModel) NormSpillCost(s *aco.Schedule) int {
	r := m.simulate(s.Order)
	return r.excessCost
}

// IncrementalRPCost returns the same integrated excess-pressure cost as
// NormSpillCost, computed over the schedule built so far (s.Order already
// includes inst, the instruction an ant just committed to). Recomputing
// the whole prefix each call is O(n) rather than O(1) amortized, but stays
// correct under the swap-remove/rescan churn of ready-list bookkeeping;
// revisit if this shows up in profiles of very large basic blocks.
func (m *Z80SpillCostModel) IncrementalRPCost(s *aco.Schedule, inst int) int {
	r := m.simulate(s.Order)
	return r.excessCost
}

// ExtraSpillCost scores s under an alternate register-pressure metric,
// used only by the dual cost function tiebreak to distinguish schedules
// NormSpillCost and ExecCost already rate as exactly equal.
func (m *Z80SpillCostModel) ExtraSpillCost(s *aco.Schedule, fn aco.SpillCostFn) int {
	switch fn {
	case aco.SpillCostFnPeakPressure:
		return m.simulate(s.Order).peakWeight
	case aco.SpillCostFnLiveRangeSpan:
		return m.simulate(s.Order).liveRangeSpan
	default:
		return 0
	}
}

// simulationResult collects every metric simulate computes in one replay of
// a schedule, so the three cost queries above (and future ones) don't each
// demand their own traversal.
type simulationResult struct {
	finalWeight   int
	excessCost    int
	peakWeight    int
	liveRangeSpan int
}

// simulate replays order (a full or partial schedule), tracking live
// register weight step by step. excessCost integrates how far simultaneous
// live weight exceeds the machine's register capacity; peakWeight is the
// single highest live weight reached; liveRangeSpan sums, over every
// register the block defines, the distance in schedule steps between its
// definition and its last use.
func (m *Z80SpillCostModel) simulate(order []int) simulationResult {
	remaining := make(map[ir.Register]int, len(m.useCount))
	for r, c := range m.useCount {
		remaining[r] = c
	}
	defStep := make(map[ir.Register]int, len(m.regIndex))
	live := aco.NewWeightedBitSet(len(m.regIndex))

	var result simulationResult
	for step, id := range order {
		inst := m.block[id]
		for _, use := range inst.Uses() {
			remaining[use]--
			if remaining[use] <= 0 {
				live.SetWeighted(m.indexOf(use), false, m.weightOf(use))
				if start, ok := defStep[use]; ok {
					result.liveRangeSpan += step - start
				}
			}
		}
		if dest, ok := inst.Def(); ok {
			live.SetWeighted(m.indexOf(dest), true, m.weightOf(dest))
			defStep[dest] = step
		}
		weight := live.WeightedSum()
		if excess := weight - m.capacity; excess > 0 {
			result.excessCost += excess
		}
		if weight > result.peakWeight {
			result.peakWeight = weight
		}
	}
	result.finalWeight = live.WeightedSum()
	return result
}
