package mir

import (
	"bufio"
	"fmt"
	"os"

	"github.com/minz/minzc/pkg/ir"
)

// WriteMIRFile serializes module back to the textual format ParseMIRFile
// reads, overwriting filename. ParseMIRFile reads the result back: the pair
// lets a pass like instruction scheduling round-trip a function through the
// same .mir representation the rest of the toolchain already shares. Fields
// the format has no place for (parameter registers, call arguments, and the
// operands of instructions written in UNKNOWN_OP_<n> form) are not written
// and do not survive the round trip.
func WriteMIRFile(filename string, module *ir.Module) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := WriteMIR(w, module); err != nil {
		return err
	}
	return w.Flush()
}

// WriteMIR writes module to w in the format ParseMIRFile understands.
func WriteMIR(w *bufio.Writer, module *ir.Module) error {
	for i, fn := range module.Functions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeFunction(w, fn); err != nil {
			return err
		}
	}
	return nil
}

func writeFunction(w *bufio.Writer, fn *ir.Function) error {
	fmt.Fprintf(w, "Function %s(%s) -> %s\n", fn.Name, formatParamList(fn.Params), typeString(fn.ReturnType))
	if fn.IsInterrupt {
		fmt.Fprintln(w, "@interrupt")
	}

	if len(fn.Locals) > 0 {
		fmt.Fprintln(w, "Locals:")
		for _, l := range fn.Locals {
			fmt.Fprintf(w, "  r%d = %s: %s\n", l.Reg, l.Name, typeString(l.Type))
		}
	}

	fmt.Fprintln(w, "Instructions:")
	for i, inst := range fn.Instructions {
		fmt.Fprintf(w, "  %d: %s\n", i, formatInstruction(&inst))
	}
	fmt.Fprintln(w)
	return nil
}

func formatParamList(params []ir.Parameter) string {
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %s", p.Name, typeString(p.Type))
	}
	return s
}

func typeString(t ir.Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

// formatInstruction renders inst in the assignment/statement syntax
// parseInstruction and parseRHS parse back, covering the opcodes the
// instruction scheduler actually reorders (arithmetic, loads, stores, calls,
// control transfers). Opcodes this format has no dedicated syntax for fall
// back to their UNKNOWN_OP_<n> form, which parseOpcode also recognizes.
func formatInstruction(inst *ir.Instruction) string {
	switch inst.Op {
	case ir.OpLoadConst:
		return fmt.Sprintf("r%d = %d", inst.Dest, inst.Imm)
	case ir.OpLoadVar:
		return fmt.Sprintf("r%d = load %s", inst.Dest, inst.Symbol)
	case ir.OpStoreVar:
		if inst.Symbol != "" {
			return fmt.Sprintf("store %s, r%d", inst.Symbol, inst.Src1)
		}
		return fmt.Sprintf("store r%d", inst.Src1)
	case ir.OpAdd:
		return fmt.Sprintf("r%d = r%d + r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpSub:
		return fmt.Sprintf("r%d = r%d - r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpMul:
		return fmt.Sprintf("r%d = r%d * r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpAnd:
		return fmt.Sprintf("r%d = r%d & r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpOr:
		return fmt.Sprintf("r%d = r%d | r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpXor:
		return fmt.Sprintf("r%d = r%d ^ r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpEq:
		return fmt.Sprintf("r%d = r%d == r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpNe:
		return fmt.Sprintf("r%d = r%d != r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpLt:
		return fmt.Sprintf("r%d = r%d < r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpGt:
		return fmt.Sprintf("r%d = r%d > r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpLe:
		return fmt.Sprintf("r%d = r%d <= r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpGe:
		return fmt.Sprintf("r%d = r%d >= r%d", inst.Dest, inst.Src1, inst.Src2)
	case ir.OpCall:
		if inst.Dest != 0 {
			return fmt.Sprintf("r%d = call %s", inst.Dest, inst.Symbol)
		}
		return fmt.Sprintf("call %s", inst.Symbol)
	case ir.OpReturn:
		if inst.Src1 != 0 {
			return fmt.Sprintf("return r%d", inst.Src1)
		}
		return "return"
	case ir.OpJump:
		return fmt.Sprintf("jump %s", inst.Label)
	case ir.OpJumpIf:
		return fmt.Sprintf("jump_if r%d, %s", inst.Src1, inst.Label)
	case ir.OpJumpIfNot:
		return fmt.Sprintf("jump_if_not r%d, %s", inst.Src1, inst.Label)
	case ir.OpLabel:
		return fmt.Sprintf("%s:", inst.Label)
	case ir.OpPrint:
		return fmt.Sprintf("PRINT r%d", inst.Src1)
	case ir.OpPrintU8:
		return fmt.Sprintf("PRINT_U8 r%d", inst.Src1)
	case ir.OpPrintU16:
		return fmt.Sprintf("PRINT_U16 r%d", inst.Src1)
	case ir.OpLoadString:
		return fmt.Sprintf("r%d = string(%s)", inst.Dest, inst.Symbol)
	default:
		return fmt.Sprintf("UNKNOWN_OP_%d", uint8(inst.Op))
	}
}
