package aco

import "math/rand"

// AntConstructor builds one candidate schedule for a region, guided by a
// shared PheromoneMatrix and KeyHelper. Each ant owns its own ready list,
// cycle state, and RNG draw sequence so that ants within an iteration can
// run independently (see engine.go's parallel-ants mode).
type AntConstructor struct {
	dag     DAG
	machine MachineModel
	cost    CostModel
	pher    *PheromoneMatrix
	keys    *KeyHelper
	cfg     Config
	rng     *rand.Rand

	numPreds      []int
	scheduledPred []int
	issuedCycle   []int
	scheduled     *BitSet
	overflowed    bool
}

// NewAntConstructor builds an ant for one region. rng must not be shared
// with any other concurrently running ant.
func NewAntConstructor(dag DAG, machine MachineModel, cost CostModel, pher *PheromoneMatrix, keys *KeyHelper, cfg Config, rng *rand.Rand) *AntConstructor {
	n := dag.NumNodes()
	a := &AntConstructor{
		dag: dag, machine: machine, cost: cost, pher: pher, keys: keys, cfg: cfg, rng: rng,
		numPreds:      make([]int, n),
		scheduledPred: make([]int, n),
		issuedCycle:   make([]int, n),
		scheduled:     NewBitSet(n),
	}
	for i := 0; i < n; i++ {
		a.numPreds[i] = len(dag.Predecessors(i))
	}
	return a
}

// computeLUC approximates the original scheduler's last-use count for
// candidate: the number of candidate's predecessors for which candidate is
// the only not-yet-scheduled successor, i.e. scheduling candidate now would
// retire that predecessor's live value. This is the one dynamic component
// of the heuristic key and is recomputed on every ready-list rescan.
func (a *AntConstructor) computeLUC(candidate int) int {
	luc := 0
	for _, e := range a.dag.Predecessors(candidate) {
		allOthersScheduled := true
		for _, se := range a.dag.Successors(e.From) {
			if se.To != candidate && !a.scheduled.Get(se.To) {
				allOthersScheduled = false
				break
			}
		}
		if allOthersScheduled {
			luc++
		}
	}
	return luc
}

func (a *AntConstructor) readyOnFor(node int) int {
	arrival := 0
	for _, e := range a.dag.Predecessors(node) {
		if c := a.issuedCycle[e.From] + e.Latency; c > arrival {
			arrival = c
		}
	}
	return arrival
}

// rescan recomputes heuristic/score for every entry currently in the ready
// list against prev (the instruction id just scheduled, or -1 at the
// start), reflecting the latest LUC values and pheromone edge weights.
func (a *AntConstructor) rescan(ready *ReadyList, prev int) {
	maxKey := a.keys.MaxValue()
	entries := ready.All()
	for i := range entries {
		candidate := entries[i].InstID
		luc := a.computeLUC(candidate)
		heur := a.keys.ComputeKeyWithoutLUC(candidate).withLUC(luc)
		score := a.pher.Score(prev, candidate, heur, maxKey)
		entries[i].Heuristic = heur
		entries[i].Score = score
	}
	ready.RescoreSum()
}

// FindOneSchedule constructs a single complete schedule, aborting early
// with ErrInfeasibleRegion if the running register-pressure cost exceeds
// targetRPCost before every instruction has been placed.
func (a *AntConstructor) FindOneSchedule(targetRPCost int) (*Schedule, *Summary, error) {
	n := a.dag.NumNodes()
	schedule := NewSchedule(n)
	cycleState := NewCycleState(a.machine)
	ready := NewReadyList(func() {
		a.overflowed = true
		if a.cfg.Trace != nil {
			a.cfg.Trace.Printf("%v", ErrReadyListOverflow)
		}
	})

	maxKey := a.keys.MaxValue()
	for _, root := range a.dag.Roots() {
		heur := a.keys.ComputeKeyWithoutLUC(root)
		ready.Add(ReadyListEntry{
			InstID:    root,
			ReadyOn:   0,
			Heuristic: heur,
			Score:     a.pher.Score(-1, root, heur, maxKey),
		})
	}

	for ready.Len() > 0 {
		eligible := a.eligibleIndices(ready, cycleState)
		if len(eligible) == 0 {
			if cycleState.Slot == 0 {
				schedule.Stall++
			}
			cycleState.Advance()
			continue
		}

		chosen := a.selectAmong(ready, eligible)
		entry := ready.At(chosen)
		instID := entry.InstID

		prev := schedule.Last()
		a.scheduled.Set(instID, true)
		a.issuedCycle[instID] = cycleState.Cycle
		schedule.Append(instID, cycleState.Cycle)
		cycleState.Reserve(a.dag.Instruction(instID).IssueType())
		a.pher.LocalDecay(prev, instID, a.cost.ExecCost(schedule))
		ready.RemoveAt(chosen)

		for _, e := range a.dag.Successors(instID) {
			a.scheduledPred[e.To]++
			if a.scheduledPred[e.To] == a.numPreds[e.To] {
				heur := a.keys.ComputeKeyWithoutLUC(e.To)
				ready.Add(ReadyListEntry{
					InstID:    e.To,
					ReadyOn:   a.readyOnFor(e.To),
					Heuristic: heur,
					Score:     0,
				})
			}
		}
		a.rescan(ready, instID)

		if cost := a.cost.IncrementalRPCost(schedule, instID); cost > targetRPCost {
			return nil, nil, ErrInfeasibleRegion
		}
	}

	summary := &Summary{
		ExecCost:       a.cost.ExecCost(schedule),
		NormSpillCost:  a.cost.NormSpillCost(schedule),
		ExtraSpillCost: a.cost.ExtraSpillCost(schedule, a.cfg.DualCostSpillFn),
		Length:         cycleState.Cycle + 1,
	}
	return schedule, summary, nil
}

// eligibleIndices returns ready-list indices whose data dependences and
// issue-slot availability both permit scheduling this cycle.
func (a *AntConstructor) eligibleIndices(ready *ReadyList, cycleState *CycleState) []int {
	var out []int
	for i := 0; i < ready.Len(); i++ {
		e := ready.At(i)
		if e.ReadyOn > cycleState.Cycle {
			continue
		}
		if !cycleState.CanIssue(a.dag.Instruction(e.InstID).IssueType()) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// selectAmong runs the selection rule restricted to the given subset of
// ready-list indices, returning a ready-list index — never a raw score
// value, which is the index-vs-value interpretation this package commits
// to for the bias and tournament branches alike.
func (a *AntConstructor) selectAmong(ready *ReadyList, eligible []int) int {
	if len(eligible) == 1 {
		return eligible[0]
	}

	argmax, best := eligible[0], ready.At(eligible[0]).Score
	for _, idx := range eligible[1:] {
		if s := ready.At(idx).Score; s > best {
			best = s
			argmax = idx
		}
	}

	var chooseBest float64
	if a.cfg.UseFixedBias {
		chooseBest = 1.0 - a.cfg.FixedBias/float64(len(eligible))
		if chooseBest < 0 {
			chooseBest = 0
		}
	} else {
		chooseBest = a.cfg.BiasRatio
	}
	if a.rng.Float64() < chooseBest {
		return argmax
	}

	if a.cfg.Tournament {
		i, j := eligible[a.rng.Intn(len(eligible))], eligible[a.rng.Intn(len(eligible))]
		if ready.At(i).Score >= ready.At(j).Score {
			return i
		}
		return j
	}

	sum := 0.0
	for _, idx := range eligible {
		sum += ready.At(idx).Score
	}
	if sum <= 0 {
		return eligible[a.rng.Intn(len(eligible))]
	}
	point := a.rng.Float64() * sum
	for _, idx := range eligible {
		point -= ready.At(idx).Score
		if point <= 1e-9 {
			return idx
		}
	}
	return eligible[len(eligible)-1]
}
