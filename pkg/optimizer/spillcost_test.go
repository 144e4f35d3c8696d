package optimizer

import (
	"testing"

	"github.com/minz/minzc/pkg/aco"
	"github.com/minz/minzc/pkg/ir"
)

func TestSpillCostZeroWhenUnderCapacity(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	block := []ir.Instruction{
		{Op: ir.OpLoadConst, Dest: 1, Imm: 1},
		{Op: ir.OpLoadConst, Dest: 2, Imm: 2},
		{Op: ir.OpAdd, Dest: 3, Src1: 1, Src2: 2},
	}
	model := NewZ80SpillCostModel(fn, block)

	s := aco.NewSchedule(3)
	s.Append(0, 0)
	s.Append(1, 1)
	s.Append(2, 2)

	if cost := model.NormSpillCost(s); cost != 0 {
		t.Fatalf("expected zero spill cost under capacity, got %d", cost)
	}
}

func TestSpillCostPenalizesExcessLiveRegisters(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	var block []ir.Instruction
	// Define more registers than capacity before any of them die.
	for i := 1; i <= z80GPRegisterCapacity+3; i++ {
		block = append(block, ir.Instruction{Op: ir.OpLoadConst, Dest: ir.Register(i), Imm: int64(i)})
	}
	model := NewZ80SpillCostModel(fn, block)

	s := aco.NewSchedule(len(block))
	for i := range block {
		s.Append(i, i)
	}

	if cost := model.NormSpillCost(s); cost <= 0 {
		t.Fatalf("expected positive spill cost once live registers exceed capacity, got %d", cost)
	}
}

func TestSpillCostDropsAfterLastUse(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	block := []ir.Instruction{
		{Op: ir.OpLoadConst, Dest: 1, Imm: 1},
		{Op: ir.OpAdd, Dest: 2, Src1: 1, Src2: 1}, // last use of r1
	}
	model := NewZ80SpillCostModel(fn, block)

	s := aco.NewSchedule(2)
	s.Append(0, 0)
	s.Append(1, 1)

	result := model.simulate(s.Order)
	if result.finalWeight != model.weightOf(2) {
		t.Fatalf("expected only r2 live after r1's last use, got weighted live %d", result.finalWeight)
	}
}

func TestExtraSpillCostPrefersShorterLiveRanges(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	// r1 is defined first and used last: a long live range. r2 is defined
	// and used back-to-back: a short one.
	block := []ir.Instruction{
		{Op: ir.OpLoadConst, Dest: 1, Imm: 1},
		{Op: ir.OpLoadConst, Dest: 2, Imm: 2},
		{Op: ir.OpAdd, Dest: 3, Src1: 2, Src2: 2},
		{Op: ir.OpAdd, Dest: 4, Src1: 1, Src2: 1},
	}
	model := NewZ80SpillCostModel(fn, block)

	long := aco.NewSchedule(4)
	for i := range block {
		long.Append(i, i)
	}

	// Reorder so each register's definition sits immediately next to its
	// one use: same instructions, shorter total span.
	short := aco.NewSchedule(4)
	for _, id := range []int{0, 3, 1, 2} {
		short.Append(id, 0)
	}

	longSpan := model.ExtraSpillCost(long, aco.SpillCostFnLiveRangeSpan)
	shortSpan := model.ExtraSpillCost(short, aco.SpillCostFnLiveRangeSpan)
	if shortSpan >= longSpan {
		t.Fatalf("expected reordered schedule to have a shorter live-range span (%d) than the original (%d)", shortSpan, longSpan)
	}

	if cost := model.ExtraSpillCost(long, aco.SpillCostFnNone); cost != 0 {
		t.Fatalf("expected SpillCostFnNone to always report 0, got %d", cost)
	}
}

func TestExecCostIsMakespan(t *testing.T) {
	fn := &ir.Function{Name: "f"}
	block := []ir.Instruction{
		{Op: ir.OpLoadConst, Dest: 1, Imm: 1},
		{Op: ir.OpLoadConst, Dest: 2, Imm: 2},
	}
	model := NewZ80SpillCostModel(fn, block)

	s := aco.NewSchedule(2)
	s.Append(0, 0)
	s.Append(1, 5)

	if got := model.ExecCost(s); got != 6 {
		t.Fatalf("expected exec cost 6 (last cycle 5 + 1), got %d", got)
	}
}
