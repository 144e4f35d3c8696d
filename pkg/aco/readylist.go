package aco

// readyListInitialCapacity is the starting backing-array size; it grows
// geometrically (doubling) rather than failing once a region's ready list
// needs more room, since a too-small guess is common on wide DAGs and is
// not itself an error.
const readyListInitialCapacity = 16

// ReadyListEntry is one instruction currently eligible to be scheduled.
// Indices into the list are transient: any Add or RemoveAt invalidates
// every index a caller may be holding, because RemoveAt is a swap-remove.
type ReadyListEntry struct {
	InstID    int
	ReadyOn   int // earliest cycle this instruction may issue
	Heuristic HeuristicKey
	Score     float64
}

// ReadyList is an O(1)-append, O(1)-swap-remove bag of ready instructions
// with a running sum of scores cached for roulette-wheel selection.
type ReadyList struct {
	entries  []ReadyListEntry
	scoreSum float64
	onOverflow func()
}

// NewReadyList returns an empty ReadyList. onOverflow, if non-nil, is
// called (not treated as an error) each time Add finds the backing array
// full and must grow it, so callers can count/trace it.
func NewReadyList(onOverflow func()) *ReadyList {
	return &ReadyList{
		entries:    make([]ReadyListEntry, 0, readyListInitialCapacity),
		onOverflow: onOverflow,
	}
}

// Len returns the number of ready instructions.
func (r *ReadyList) Len() int { return len(r.entries) }

// ScoreSum returns the cached sum of all entries' scores.
func (r *ReadyList) ScoreSum() float64 { return r.scoreSum }

// At returns the entry at index i. Valid only until the next Add/RemoveAt.
func (r *ReadyList) At(i int) ReadyListEntry { return r.entries[i] }

// All returns the live entries. The returned slice aliases internal
// storage and must not be retained across a mutating call.
func (r *ReadyList) All() []ReadyListEntry { return r.entries }

// Add appends a new ready instruction, growing the backing array
// geometrically if needed.
func (r *ReadyList) Add(e ReadyListEntry) {
	if len(r.entries) == cap(r.entries) && r.onOverflow != nil {
		r.onOverflow()
	}
	r.entries = append(r.entries, e)
	r.scoreSum += e.Score
}

// RemoveAt removes the entry at index i via swap-remove: the last entry
// takes i's place, so any index other than len-1 held by a caller is
// invalidated.
func (r *ReadyList) RemoveAt(i int) {
	r.scoreSum -= r.entries[i].Score
	last := len(r.entries) - 1
	r.entries[i] = r.entries[last]
	r.entries = r.entries[:last]
}

// UpdateScore replaces the score of the entry at index i, keeping scoreSum
// consistent.
func (r *ReadyList) UpdateScore(i int, score float64) {
	r.scoreSum += score - r.entries[i].Score
	r.entries[i].Score = score
}

// RescoreSum recomputes scoreSum from scratch. Called whenever floating
// point drift across many incremental updates could have pulled the cached
// sum far enough from the true total to bias roulette selection; because
// every rescore of the ready list already recomputes each entry's score
// and therefore the sum, this is the natural correction point rather than
// a separate periodic pass.
func (r *ReadyList) RescoreSum() {
	sum := 0.0
	for _, e := range r.entries {
		sum += e.Score
	}
	r.scoreSum = sum
}

// Clear empties the list, resetting scoreSum to 0.
func (r *ReadyList) Clear() {
	r.entries = r.entries[:0]
	r.scoreSum = 0
}
