package aco

// CycleState tracks where an ant's construction currently stands: which
// cycle it is issuing into, which issue slot within that cycle, and how
// many instructions the machine model still allows it to pack into the
// current cycle before it must advance.
type CycleState struct {
	Cycle         int
	Slot          int
	issueRate     map[string]int // remaining issue slots this cycle, by issue type
	machine       MachineModel
}

// NewCycleState returns a CycleState positioned at cycle 0, slot 0, with a
// fresh per-cycle issue budget drawn from machine.
func NewCycleState(machine MachineModel) *CycleState {
	return &CycleState{machine: machine, issueRate: map[string]int{}}
}

// CanIssue reports whether an instruction of issueType may still issue in
// the current cycle.
func (c *CycleState) CanIssue(issueType string) bool {
	remaining, ok := c.issueRate[issueType]
	if !ok {
		remaining = c.machine.IssueSlots(issueType)
	}
	return remaining > 0
}

// Reserve consumes one issue slot of issueType in the current cycle. It is
// the caller's responsibility to have checked CanIssue first.
func (c *CycleState) Reserve(issueType string) {
	remaining, ok := c.issueRate[issueType]
	if !ok {
		remaining = c.machine.IssueSlots(issueType)
	}
	c.issueRate[issueType] = remaining - 1
	c.Slot++
}

// Advance moves to the next cycle and resets the per-cycle issue budget.
func (c *CycleState) Advance() {
	c.Cycle++
	c.Slot = 0
	for k := range c.issueRate {
		delete(c.issueRate, k)
	}
}
