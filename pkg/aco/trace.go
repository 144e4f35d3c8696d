package aco

import (
	"fmt"
	"io"
)

// Trace adapts an io.Writer into a Tracer, mirroring the gated-Printf
// logging convention used elsewhere in this module: nil means silent,
// a non-nil Trace writes one line per Printf call.
type Trace struct {
	w io.Writer
}

// NewTrace wraps w as a Tracer.
func NewTrace(w io.Writer) *Trace { return &Trace{w: w} }

// Printf writes one formatted, newline-terminated line to the underlying
// writer. Write errors are not reported: tracing is diagnostic output, not
// a control-flow path, matching how debug dumps are treated elsewhere.
func (t *Trace) Printf(format string, args ...interface{}) {
	fmt.Fprintf(t.w, format+"\n", args...)
}

type edgeKey struct{ from, to int }

// WritePheromoneGraph writes a Graphviz DOT rendering of pher to w, colored
// to highlight which edges were walked by any ant this run (red), the
// iteration-best schedule (green), the global-best schedule (blue), both
// best schedules at once (cyan), or never walked at all (black). This is
// the scheduler's analogue of pkg/mir/visualizer.go's instruction-graph
// dump: same io.Writer convention, digraph/rankdir/box-node styling, one
// file per region.
func WritePheromoneGraph(w io.Writer, dag DAG, pher *PheromoneMatrix, iterationBest, globalBest *Schedule, walked map[edgeKey]bool) error {
	fmt.Fprintln(w, "digraph ACOPheromone {")
	fmt.Fprintln(w, "  rankdir=TB;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	inIteration := edgeSetOf(iterationBest)
	inGlobal := edgeSetOf(globalBest)

	n := dag.NumNodes()
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "  n%d [label=\"%d\"];\n", i, i)
	}
	fmt.Fprintln(w)

	for i := 0; i < n; i++ {
		for _, e := range dag.Successors(i) {
			key := edgeKey{i, e.To}
			iter, global := inIteration[key], inGlobal[key]
			color := "black"
			switch {
			case iter && global:
				color = "cyan"
			case iter:
				color = "green"
			case global:
				color = "blue"
			case walked != nil && walked[key]:
				color = "red"
			}
			p := pher.Get(i, e.To)
			fmt.Fprintf(w, "  n%d -> n%d [color=%s, label=\"%.2f\"];\n", i, e.To, color, p)
		}
	}

	fmt.Fprintln(w, "}")
	return nil
}

func edgeSetOf(s *Schedule) map[edgeKey]bool {
	set := map[edgeKey]bool{}
	if s == nil {
		return set
	}
	prev := -1
	for _, inst := range s.Order {
		if prev >= 0 {
			set[edgeKey{prev, inst}] = true
		}
		prev = inst
	}
	return set
}
