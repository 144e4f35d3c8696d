package optimizer

import (
	"github.com/minz/minzc/pkg/ir"
	"github.com/minz/minzc/pkg/mir"
)

// VerifyResult reports whether interpreting one function before and after
// scheduling agreed.
type VerifyResult struct {
	Function string
	// Checked is false when the function could not be interpreted at all
	// (its instructions touch memory, calls, or I/O opcodes outside the
	// arithmetic/control-flow subset mir.Interpreter understands); such a
	// function is neither confirmed correct nor flagged as a mismatch.
	Checked bool
	Match   bool
	Before  int64
	After   int64
	// Err holds the first interpreter error seen, when exactly one of the
	// before/after runs failed -- that divergence is itself a mismatch,
	// since scheduling should never change whether a function can run.
	Err string
}

// VerifyReschedule interprets every function present in both before and
// after (snapshots of a module's functions taken immediately before and
// after a scheduling pass) on the same zero-valued arguments, and reports
// whether each pair of runs agreed. It is a best-effort regression check on
// the scheduler, not a proof of semantic equivalence: mir.Interpreter only
// executes the arithmetic/control-flow subset of opcodes a compile-time
// evaluator needs, so any function using memory or I/O opcodes is reported
// with Checked=false rather than as a failure.
func VerifyReschedule(before, after []*ir.Function) []VerifyResult {
	beforeInterp := mir.NewInterpreter()
	afterInterp := mir.NewInterpreter()
	for _, fn := range before {
		beforeInterp.AddFunction(fn)
	}
	afterByName := make(map[string]*ir.Function, len(after))
	for _, fn := range after {
		afterInterp.AddFunction(fn)
		afterByName[fn.Name] = fn
	}

	results := make([]VerifyResult, 0, len(before))
	for _, fn := range before {
		if afterByName[fn.Name] == nil {
			continue
		}
		args := make([]int64, len(fn.Params))

		beforeVal, beforeErr := beforeInterp.Execute(fn.Name, args)
		afterVal, afterErr := afterInterp.Execute(fn.Name, args)

		r := VerifyResult{Function: fn.Name}
		switch {
		case beforeErr != nil && afterErr != nil:
			r.Checked = false
		case beforeErr != nil:
			r.Checked, r.Err = true, beforeErr.Error()
		case afterErr != nil:
			r.Checked, r.Err = true, afterErr.Error()
		default:
			r.Checked = true
			r.Before, r.After = beforeVal, afterVal
			r.Match = beforeVal == afterVal
		}
		results = append(results, r)
	}
	return results
}

// SnapshotFunctions returns a shallow copy of each function in fns with its
// own copy of the Instructions slice, so a caller can snapshot a module's
// functions before a pass mutates them in place (as scheduleFunction does)
// and later hand both snapshots to VerifyReschedule.
func SnapshotFunctions(fns []*ir.Function) []*ir.Function {
	out := make([]*ir.Function, len(fns))
	for i, fn := range fns {
		cp := *fn
		cp.Instructions = append([]ir.Instruction(nil), fn.Instructions...)
		out[i] = &cp
	}
	return out
}
