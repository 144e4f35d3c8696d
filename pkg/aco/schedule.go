package aco

// Schedule is a fully (or partially, while an ant is still constructing it)
// ordered list of instruction ids, together with the cycle each was issued
// in.
type Schedule struct {
	Order []int
	Cycle []int
	Stall int // number of STALL cycles inserted (cycles with no issue)
}

// NewSchedule returns an empty schedule with capacity for n instructions.
func NewSchedule(n int) *Schedule {
	return &Schedule{
		Order: make([]int, 0, n),
		Cycle: make([]int, 0, n),
	}
}

// Append records instruction instID as issued in the given cycle.
func (s *Schedule) Append(instID, cycle int) {
	s.Order = append(s.Order, instID)
	s.Cycle = append(s.Cycle, cycle)
}

// Len returns how many instructions have been scheduled so far.
func (s *Schedule) Len() int { return len(s.Order) }

// Last returns the most recently scheduled instruction id, or -1 if the
// schedule is still empty (the virtual start state).
func (s *Schedule) Last() int {
	if len(s.Order) == 0 {
		return -1
	}
	return s.Order[len(s.Order)-1]
}

// Clone returns a deep copy, used when an ant must branch its tentative
// schedule (e.g. the engine keeping the iteration-best's schedule alive
// across ants that mutate shared scratch state).
func (s *Schedule) Clone() *Schedule {
	c := &Schedule{
		Order: append([]int(nil), s.Order...),
		Cycle: append([]int(nil), s.Cycle...),
		Stall: s.Stall,
	}
	return c
}

// Summary is the scored outcome of a completed schedule, reported to
// callers and used by the cost comparator to rank schedules.
type Summary struct {
	ExecCost           int
	NormSpillCost      int
	ExtraSpillCost     int
	Length             int
	Iterations         int
	BestFoundIteration int
}

// shouldReplaceSchedule implements the cost comparator used both to pick
// an iteration's best ant and to decide whether that iteration-best
// replaces the pass's running global best.
//
// Pass 1 of a two-pass run (spillPrimary == true) minimizes NormSpillCost
// alone. Pass 2 (or the entirety of a single-pass run) minimizes ExecCost,
// but only accepts a change that does not regress NormSpillCost, or that
// improves NormSpillCost outright even at equal-or-worse ExecCost. Exact
// ties are broken by the configured dual cost function, which by default
// (DualCostOff) never lets a tie replace the incumbent.
func shouldReplaceSchedule(old, new *Summary, isGlobal bool, cfg Config, spillPrimary bool) bool {
	if new == nil {
		return false
	}
	if old == nil {
		return true
	}

	if spillPrimary {
		if new.NormSpillCost < old.NormSpillCost {
			return true
		}
		if new.NormSpillCost > old.NormSpillCost {
			return false
		}
		return dcfTiebreak(old, new, isGlobal, cfg)
	}

	better := (new.ExecCost < old.ExecCost && new.NormSpillCost <= old.NormSpillCost) ||
		new.NormSpillCost < old.NormSpillCost
	if better {
		return true
	}
	if new.ExecCost == old.ExecCost && new.NormSpillCost == old.NormSpillCost {
		return dcfTiebreak(old, new, isGlobal, cfg)
	}
	return false
}

// dcfTiebreak decides whether an exact cost tie should replace the
// incumbent, per the configured dual cost function. Each variant first
// decides whether it applies to this comparison at all (global-best only,
// vs. also the iteration-best), then prefers whichever schedule scores
// lower under Config.DualCostSpillFn's secondary register-pressure metric
// -- the actual tiebreak, not merely a scope check.
func dcfTiebreak(old, new *Summary, isGlobal bool, cfg Config) bool {
	switch cfg.DualCostFunction {
	case DualCostGlobalOnly:
		if !isGlobal {
			return false
		}
		return new.ExtraSpillCost < old.ExtraSpillCost
	case DualCostGlobalAndTighten:
		if !isGlobal {
			return false
		}
		if new.ExtraSpillCost != old.ExtraSpillCost {
			return new.ExtraSpillCost < old.ExtraSpillCost
		}
		// Extra-cost tie too: compare normalized spill cost. Both callers
		// only reach dcfTiebreak when NormSpillCost is already equal, so
		// this never replaces and the variant behaves as DualCostGlobalOnly.
		return new.NormSpillCost < old.NormSpillCost
	case DualCostGlobalAndIteration:
		return new.ExtraSpillCost < old.ExtraSpillCost
	default:
		return false
	}
}
