package aco

import "errors"

// ErrConfigurationInvalid is wrapped by Config.Validate to describe exactly
// which field failed.
var ErrConfigurationInvalid = errors.New("aco: invalid configuration")

// ErrInfeasibleRegion is returned when every ant in a pass aborts before
// completing a schedule because it cannot satisfy the target normalized
// spill cost (or, in the heuristic-only warm-up run, the machine model's
// hard capacity) no matter which ready instruction it picks next.
var ErrInfeasibleRegion = errors.New("aco: region has no feasible schedule under the current target")

// ErrReadyListOverflow is reported through Config.Trace (never returned as
// an error) when the ready list grows past its preallocated capacity and
// must reallocate. It is exported so callers that want to count
// reallocations can match on it with errors.Is against values wrapping it.
var ErrReadyListOverflow = errors.New("aco: ready list exceeded preallocated capacity")
