package aco

// HeuristicKey is a packed priority tuple compared as a plain integer. Bit
// layout, most significant first:
//
//	[63:44] critical path length to the end of the region (20 bits)
//	[43:32] successor count                                (12 bits)
//	[31:20] last-use count (LUC), the one dynamic field     (12 bits)
//	[19:0]  node id, used only to break exact ties          (20 bits)
//
// Packing the tuple this way means "bigger key is higher priority" reduces
// to a single uint64 compare instead of a four-way lexicographic one.
type HeuristicKey uint64

const (
	keyNodeIDBits  = 20
	keyLUCBits     = 12
	keySuccBits    = 12
	keyCritBits    = 20

	keyNodeIDShift = 0
	keyLUCShift    = keyNodeIDShift + keyNodeIDBits
	keySuccShift   = keyLUCShift + keyLUCBits
	keyCritShift   = keySuccShift + keySuccBits

	keyNodeIDMask = (1 << keyNodeIDBits) - 1
	keyLUCMask    = (1 << keyLUCBits) - 1
	keySuccMask   = (1 << keySuccBits) - 1
	keyCritMask   = (1 << keyCritBits) - 1
)

func clampField(v, maxVal int) uint64 {
	if v < 0 {
		v = 0
	}
	if v > maxVal {
		v = maxVal
	}
	return uint64(v)
}

// packKey builds a HeuristicKey from its four components, clamping each to
// its field width rather than overflowing into a neighboring field.
func packKey(criticalPath, successors, luc, nodeID int) HeuristicKey {
	k := clampField(criticalPath, keyCritMask) << keyCritShift
	k |= clampField(successors, keySuccMask) << keySuccShift
	k |= clampField(luc, keyLUCMask) << keyLUCShift
	k |= clampField(nodeID, keyNodeIDMask) << keyNodeIDShift
	return HeuristicKey(k)
}

// withLUC returns a copy of k with its LUC field replaced. Used to graft
// the dynamic last-use-count contribution onto a key computed once
// statically from the DAG.
func (k HeuristicKey) withLUC(luc int) HeuristicKey {
	cleared := uint64(k) &^ (uint64(keyLUCMask) << keyLUCShift)
	return HeuristicKey(cleared | clampField(luc, keyLUCMask)<<keyLUCShift)
}

// value returns the key as a plain float64, used when folding the
// heuristic into an edge score.
func (k HeuristicKey) value() float64 { return float64(k) }

// KeyHelper computes and remembers HeuristicKeys for every instruction in a
// region. It is built once per region from static DAG properties
// (critical-path length, successor count, node id); the LUC field is
// supplied dynamically by the ready list as predecessors retire.
type KeyHelper struct {
	criticalPath []int // indexed by instruction index
	successors   []int
	maxValue     HeuristicKey
}

// NewKeyHelper computes per-instruction critical-path length and successor
// counts from dag and returns a KeyHelper ready to produce keys.
func NewKeyHelper(dag DAG) *KeyHelper {
	n := dag.NumNodes()
	kh := &KeyHelper{
		criticalPath: make([]int, n),
		successors:   make([]int, n),
	}
	for i := 0; i < n; i++ {
		kh.successors[i] = len(dag.Successors(i))
	}
	kh.criticalPath = criticalPathLengths(dag)
	max := HeuristicKey(0)
	for i := 0; i < n; i++ {
		k := kh.computeKeyWithLUC(i, len(dag.Predecessors(i)))
		if k > max {
			max = k
		}
	}
	kh.maxValue = max
	return kh
}

// MaxValue returns the largest key producible for this region, used to
// normalize the heuristic contribution to a [0,1]-ish range in Score. A
// region with no instructions reports 1 to avoid division by zero.
func (kh *KeyHelper) MaxValue() HeuristicKey {
	if kh.maxValue == 0 {
		return 1
	}
	return kh.maxValue
}

// ComputeKeyWithoutLUC computes the static portion of node's key, leaving
// the LUC field zeroed. Callers fold in the dynamic LUC value later via
// HeuristicKey.withLUC as predecessors retire.
func (kh *KeyHelper) ComputeKeyWithoutLUC(node int) HeuristicKey {
	return kh.computeKeyWithLUC(node, 0)
}

func (kh *KeyHelper) computeKeyWithLUC(node, luc int) HeuristicKey {
	return packKey(kh.criticalPath[node], kh.successors[node], luc, node)
}

// criticalPathLengths computes, for every node, the length (in latency-
// weighted hops) of the longest path from that node to any sink, via a
// single reverse topological (memoized DFS) pass. The DAG is required to be
// acyclic; a cycle is a programming error in the caller's adapter and
// panics rather than looping forever.
func criticalPathLengths(dag DAG) []int {
	n := dag.NumNodes()
	lengths := make([]int, n)
	state := make([]int8, n) // 0=unvisited 1=in-progress 2=done

	var visit func(node int) int
	visit = func(node int) int {
		switch state[node] {
		case 2:
			return lengths[node]
		case 1:
			panic("aco: dependence graph contains a cycle")
		}
		state[node] = 1
		best := 0
		for _, e := range dag.Successors(node) {
			succLen := visit(e.To) + e.Latency
			if succLen > best {
				best = succLen
			}
		}
		lengths[node] = best
		state[node] = 2
		return best
	}

	for i := 0; i < n; i++ {
		visit(i)
	}
	return lengths
}
