package aco

// fakeInstruction is the test double for Instruction.
type fakeInstruction struct {
	id        int
	issueType string
}

func (f fakeInstruction) ID() int            { return f.id }
func (f fakeInstruction) IssueType() string   { return f.issueType }

// fakeDAG is a minimal in-memory DAG for tests, built from a flat edge
// list exactly as pkg/optimizer/dag.go builds one from an ir.Function.
type fakeDAG struct {
	insts []fakeInstruction
	succ  [][]Edge
	pred  [][]Edge
	roots []int
}

func newFakeDAG(n int, edges []Edge) *fakeDAG {
	d := &fakeDAG{
		insts: make([]fakeInstruction, n),
		succ:  make([][]Edge, n),
		pred:  make([][]Edge, n),
	}
	for i := 0; i < n; i++ {
		d.insts[i] = fakeInstruction{id: i, issueType: "alu"}
	}
	for _, e := range edges {
		d.succ[e.From] = append(d.succ[e.From], e)
		d.pred[e.To] = append(d.pred[e.To], e)
	}
	for i := 0; i < n; i++ {
		if len(d.pred[i]) == 0 {
			d.roots = append(d.roots, i)
		}
	}
	return d
}

func (d *fakeDAG) NumNodes() int                  { return len(d.insts) }
func (d *fakeDAG) Instruction(id int) Instruction  { return d.insts[id] }
func (d *fakeDAG) Successors(id int) []Edge        { return d.succ[id] }
func (d *fakeDAG) Predecessors(id int) []Edge      { return d.pred[id] }
func (d *fakeDAG) Roots() []int                    { return d.roots }

// fakeMachine lets m.slots instructions of every issue type issue per
// cycle and reports latency 1 for every dependence kind.
type fakeMachine struct{ slots int }

func (m fakeMachine) IssueSlots(string) int { return m.slots }
func (m fakeMachine) Latency(string, string) int {
	return 1
}

// fakeCost treats exec cost as schedule length (cycle of the last
// instruction + 1) and reports zero spill cost always, so tests can focus
// on ordering/length behavior without a register model.
type fakeCost struct{}

func (fakeCost) ExecCost(s *Schedule) int {
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

func (fakeCost) NormSpillCost(s *Schedule) int                       { return 0 }
func (fakeCost) IncrementalRPCost(s *Schedule, inst int) int         { return 0 }
func (fakeCost) ExtraSpillCost(s *Schedule, fn SpillCostFn) int      { return 0 }

// chainDAG returns a straight-line dependence chain 0 -> 1 -> ... -> n-1,
// each edge carrying the given latency.
func chainDAG(n, latency int) *fakeDAG {
	edges := make([]Edge, 0, n-1)
	for i := 0; i < n-1; i++ {
		edges = append(edges, Edge{From: i, To: i + 1, Latency: latency})
	}
	return newFakeDAG(n, edges)
}

// diamondDAG returns 0 -> {1,2} -> 3.
func diamondDAG(latency int) *fakeDAG {
	return newFakeDAG(4, []Edge{
		{From: 0, To: 1, Latency: latency},
		{From: 0, To: 2, Latency: latency},
		{From: 1, To: 3, Latency: latency},
		{From: 2, To: 3, Latency: latency},
	})
}
