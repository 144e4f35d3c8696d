package optimizer

import (
	"testing"

	"github.com/minz/minzc/pkg/ir"
)

func TestBuildBlockDAGTracksDataDependency(t *testing.T) {
	block := []ir.Instruction{
		{Op: ir.OpLoadConst, Dest: 1, Imm: 10},
		{Op: ir.OpLoadConst, Dest: 2, Imm: 20},
		{Op: ir.OpAdd, Dest: 3, Src1: 1, Src2: 2},
	}
	dag := BuildBlockDAG(block, Z80MachineModel{})

	if dag.NumNodes() != 3 {
		t.Fatalf("expected 3 nodes, got %d", dag.NumNodes())
	}
	if got := len(dag.Roots()); got != 2 {
		t.Fatalf("expected 2 roots (the two loads), got %d", got)
	}

	preds := dag.Predecessors(2)
	if len(preds) != 2 {
		t.Fatalf("expected add to depend on both loads, got %d preds", len(preds))
	}
}

func TestBuildBlockDAGOrdersSideEffectsByProgramOrder(t *testing.T) {
	block := []ir.Instruction{
		{Op: ir.OpStoreVar, Src1: 1, Symbol: "x"},
		{Op: ir.OpStoreVar, Src1: 2, Symbol: "y"},
	}
	dag := BuildBlockDAG(block, Z80MachineModel{})

	preds := dag.Predecessors(1)
	if len(preds) != 1 || preds[0].From != 0 {
		t.Fatalf("expected second store to depend on first store, got %v", preds)
	}
}

func TestBuildBlockDAGAntiDependency(t *testing.T) {
	block := []ir.Instruction{
		{Op: ir.OpAdd, Dest: 3, Src1: 1, Src2: 2}, // reads r1
		{Op: ir.OpLoadConst, Dest: 1, Imm: 99},    // redefines r1
	}
	dag := BuildBlockDAG(block, Z80MachineModel{})

	preds := dag.Predecessors(1)
	if len(preds) != 1 || preds[0].From != 0 {
		t.Fatalf("expected redefinition to anti-depend on the read, got %v", preds)
	}
}

func TestSplitBasicBlocksBreaksAtLabelsAndJumps(t *testing.T) {
	fn := &ir.Function{
		Instructions: []ir.Instruction{
			{Op: ir.OpLoadConst, Dest: 1, Imm: 1},
			{Op: ir.OpJump, Label: "L1"},
			{Op: ir.OpLabel, Label: "L1"},
			{Op: ir.OpReturn},
		},
	}
	blocks := SplitBasicBlocks(fn)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if len(blocks[0]) != 2 || blocks[0][1].Op != ir.OpJump {
		t.Fatalf("expected first block to end with the jump, got %v", blocks[0])
	}
	if len(blocks[1]) != 2 || blocks[1][0].Op != ir.OpLabel {
		t.Fatalf("expected second block to start with the label, got %v", blocks[1])
	}
}
