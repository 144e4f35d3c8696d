package optimizer

import "github.com/minz/minzc/pkg/ir"

// z80Latency is the same per-opcode T-state table the original greedy
// scheduler used to estimate instruction cost, now serving as the
// MachineModel the ACO engine schedules against.
var z80Latency = map[string]int{
	"loadconst": 7,
	"load":      13,
	"store":     13,
	"alu":       4,
	"mul":       30,
	"div":       40,
	"shift":     8,
	"call":      17,
	"ret":       10,
	"branch":    12,
	"default":   4,
}

// issueTypeOf classifies an instruction into one of z80Latency's buckets.
// This is the one place opcode-to-cost knowledge lives; everything
// downstream (the DAG adapter, the scheduler pass) only ever asks for an
// instruction's issue type string.
func issueTypeOf(op ir.Opcode) string {
	switch op {
	case ir.OpLoadConst:
		return "loadconst"
	case ir.OpLoadVar, ir.OpLoadField, ir.OpLoadIndex, ir.OpLoadPtr, ir.OpLoad, ir.OpLoadAddr, ir.OpLoadString, ir.OpLoadParam:
		return "load"
	case ir.OpStoreVar, ir.OpStoreField, ir.OpStoreIndex, ir.OpStorePtr, ir.OpStore:
		return "store"
	case ir.OpAdd, ir.OpSub, ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpNot, ir.OpNeg, ir.OpInc, ir.OpDec,
		ir.OpEq, ir.OpNe, ir.OpLt, ir.OpGt, ir.OpLe, ir.OpGe, ir.OpMove:
		return "alu"
	case ir.OpMul:
		return "mul"
	case ir.OpDiv, ir.OpMod:
		return "div"
	case ir.OpShl, ir.OpShr:
		return "shift"
	case ir.OpCall, ir.OpCallIndirect:
		return "call"
	case ir.OpReturn:
		return "ret"
	case ir.OpJump, ir.OpJumpIf, ir.OpJumpIfNot, ir.OpBranch:
		return "branch"
	default:
		return "default"
	}
}

// Z80MachineModel is the MachineModel implementation for the Z80 backend:
// strictly single-issue (true of every Z80-family target this compiler
// emits for), with per-class latencies drawn from z80Latency.
type Z80MachineModel struct{}

// IssueSlots always returns 1: the Z80 issues exactly one instruction per
// cycle regardless of class.
func (Z80MachineModel) IssueSlots(issueType string) int { return 1 }

// Latency returns how many cycles must elapse after an instruction of
// fromType issues before a dependent may issue. Control dependences use a
// fixed conservative latency since by the time a region reaches the
// scheduler its internal control flow has already been linearized into a
// single basic block.
func (Z80MachineModel) Latency(fromType, kind string) int {
	if kind == "control" {
		return 1
	}
	if l, ok := z80Latency[fromType]; ok {
		return l
	}
	return z80Latency["default"]
}
