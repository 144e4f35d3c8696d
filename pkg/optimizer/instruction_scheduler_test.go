package optimizer

import (
	"testing"

	"github.com/minz/minzc/pkg/ir"
)

func buildSchedulableFunction() *ir.Function {
	return &ir.Function{
		Name: "sum",
		Locals: []ir.Local{
			{Name: "a", Reg: 1, Type: &ir.BasicType{Kind: ir.TypeU16}},
			{Name: "b", Reg: 2, Type: &ir.BasicType{Kind: ir.TypeU16}},
		},
		Instructions: []ir.Instruction{
			{Op: ir.OpLoadConst, Dest: 1, Imm: 10},
			{Op: ir.OpLoadConst, Dest: 2, Imm: 20},
			{Op: ir.OpLoadConst, Dest: 3, Imm: 30},
			{Op: ir.OpAdd, Dest: 4, Src1: 1, Src2: 2},
			{Op: ir.OpAdd, Dest: 5, Src1: 4, Src2: 3},
			{Op: ir.OpReturn, Src1: 5},
		},
	}
}

func TestInstructionSchedulingPassPreservesInstructionSet(t *testing.T) {
	fn := buildSchedulableFunction()
	module := &ir.Module{Name: "m", Functions: []*ir.Function{fn}}

	opts := DefaultSchedulingOptions()
	opts.MinBlockSize = 1
	opts.Config.MaxIterations = 5
	opts.Config.AntsPerIteration = 3
	pass := NewInstructionSchedulingPass(opts)

	before := len(fn.Instructions)
	if _, err := pass.Run(module); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fn.Instructions) != before {
		t.Fatalf("expected %d instructions after scheduling, got %d", before, len(fn.Instructions))
	}

	counts := map[ir.Opcode]int{}
	for _, inst := range fn.Instructions {
		counts[inst.Op]++
	}
	if counts[ir.OpReturn] != 1 || fn.Instructions[len(fn.Instructions)-1].Op != ir.OpReturn {
		t.Fatalf("expected the return to remain last, got %v", fn.Instructions)
	}
}

func TestInstructionSchedulingPassRespectsDependencies(t *testing.T) {
	fn := buildSchedulableFunction()
	module := &ir.Module{Name: "m", Functions: []*ir.Function{fn}}

	opts := DefaultSchedulingOptions()
	opts.MinBlockSize = 1
	pass := NewInstructionSchedulingPass(opts)
	if _, err := pass.Run(module); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := map[ir.Register]int{}
	for i, inst := range fn.Instructions {
		if dest, ok := inst.Def(); ok {
			pos[dest] = i
		}
	}
	if !(pos[4] > pos[1] && pos[4] > pos[2]) {
		t.Fatalf("expected first add to follow both its operands' definitions: %v", pos)
	}
	if !(pos[5] > pos[4] && pos[5] > pos[3]) {
		t.Fatalf("expected second add to follow r4 and r3's definitions: %v", pos)
	}
}

func TestInstructionSchedulingPassSkipsSmallBlocks(t *testing.T) {
	fn := &ir.Function{
		Name: "tiny",
		Instructions: []ir.Instruction{
			{Op: ir.OpLoadConst, Dest: 1, Imm: 1},
			{Op: ir.OpReturn, Src1: 1},
		},
	}
	module := &ir.Module{Name: "m", Functions: []*ir.Function{fn}}

	pass := NewInstructionSchedulingPass(DefaultSchedulingOptions())
	changed, err := pass.Run(module)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatalf("expected no change for a block at or below MinBlockSize")
	}
}
