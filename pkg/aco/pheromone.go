package aco

import "math"

const (
	minDeposition        = 1.0
	maxDeposition         = 6.0
	maxDepositionMinusMin = maxDeposition - minDeposition
)

// PheromoneMatrix is a dense (n+1) x n matrix indexed by (from, to), where
// from ranges over [-1, n) and to over [0, n). Row 0 holds the virtual "no
// predecessor" start state (from == -1); real predecessor from is stored at
// row from+1. It is dense rather than sparse because every ant needs O(1)
// Score lookups on every ready-list rescore, and n is a single region's
// instruction count, not the whole program.
type PheromoneMatrix struct {
	n     int
	rows  int
	table []float64 // rows*n, row-major
	cfg   Config
}

// NewPheromoneMatrix returns a matrix for a region of n instructions, with
// every entry seeded to initial.
func NewPheromoneMatrix(n int, cfg Config, initial float64) *PheromoneMatrix {
	rows := n + 1
	m := &PheromoneMatrix{n: n, rows: rows, table: make([]float64, rows*n), cfg: cfg}
	m.Seed(initial)
	return m
}

// Seed overwrites every entry with value. Used both for the initial
// uniform seeding (value 1) and for the reseed to initialValue_ that
// precedes the real iterations of each pass.
func (m *PheromoneMatrix) Seed(value float64) {
	for i := range m.table {
		m.table[i] = value
	}
}

func (m *PheromoneMatrix) index(from, to int) int {
	return (from+1)*m.n + to
}

// Get returns the pheromone level on edge (from, to). from == -1 addresses
// the virtual start row.
func (m *PheromoneMatrix) Get(from, to int) float64 {
	return m.table[m.index(from, to)]
}

// Set overwrites the pheromone level on edge (from, to).
func (m *PheromoneMatrix) Set(from, to int, val float64) {
	m.table[m.index(from, to)] = val
}

// Score returns the edge score an ant uses to weigh candidate to when the
// previously scheduled instruction was from (-1 for the region's start):
// pheromone, optionally scaled by a heuristic term normalized by maxKey.
func (m *PheromoneMatrix) Score(from, to int, heuristic HeuristicKey, maxKey HeuristicKey) float64 {
	p := m.Get(from, to)
	if !m.cfg.HeuristicImportance {
		return p
	}
	maxInv := 1.0 / float64(maxKey)
	return p * (heuristic.value()*maxInv + 1.0)
}

// LocalDecay applies the ACS local-decay rule to a single edge immediately
// after an ant walks it: P = (1-decay)*P + decay/(cost+1). No-op under
// MMAS, where decay is global and applied once per iteration instead.
func (m *PheromoneMatrix) LocalDecay(from, to int, cost int) {
	if m.cfg.Mode != ModeACS {
		return
	}
	decay := m.cfg.LocalDecay
	idx := m.index(from, to)
	m.table[idx] = (1-decay)*m.table[idx] + decay/float64(cost+1)
}

// depositionFor returns how much pheromone a schedule of the given cost
// deposits on each edge it walked, scaled down as cost approaches (and
// past) 1.5x the relative cost ceiling scRelMax.
func depositionFor(cost int, scRelMax float64) float64 {
	portion := float64(cost) / (scRelMax * 1.5)
	d := (1 - portion) * maxDepositionMinusMin
	if d < 0 {
		d = 0
	}
	return d + minDeposition
}

// Deposit reinforces every edge walked by schedule, then — under MMAS only
// — applies global decay and clamps every entry in the matrix to
// [MinPheromone, MaxPheromone]. scRelMax is the relative cost ceiling used
// to scale deposition amounts (typically the heuristic-only schedule's
// cost for the region).
func (m *PheromoneMatrix) Deposit(schedule *Schedule, cost int, scRelMax float64) {
	deposition := depositionFor(cost, scRelMax)

	prev := -1
	for _, instID := range schedule.Order {
		idx := m.index(prev, instID)
		if m.cfg.Mode == ModeACS {
			decay := m.cfg.LocalDecay
			m.table[idx] = (1-decay)*m.table[idx] + decay/float64(cost+1)
		} else {
			m.table[idx] += deposition
		}
		prev = instID
	}

	if m.cfg.Mode == ModeACS {
		return
	}

	decay := m.cfg.DecayFactor
	for i := range m.table {
		v := m.table[i] * (1 - decay)
		m.table[i] = math.Max(m.cfg.MinPheromone, math.Min(m.cfg.MaxPheromone, v))
	}
}
