package aco

import "testing"

func TestKeyHelperCriticalPathFavorsLongerChain(t *testing.T) {
	// 0 -> 1 -> 2 (long chain) and 0 -> 3 (short leaf)
	dag := newFakeDAG(4, []Edge{
		{From: 0, To: 1, Latency: 1},
		{From: 1, To: 2, Latency: 1},
		{From: 0, To: 3, Latency: 1},
	})
	kh := NewKeyHelper(dag)
	k1 := kh.ComputeKeyWithoutLUC(1)
	k3 := kh.ComputeKeyWithoutLUC(3)
	if k1 <= k3 {
		t.Fatalf("node 1 sits on the longer critical path and should outrank node 3: k1=%v k3=%v", k1, k3)
	}
}

func TestHeuristicKeyWithLUCOnlyChangesLUCField(t *testing.T) {
	base := packKey(10, 3, 0, 7)
	withLUC := base.withLUC(5)
	if withLUC == base {
		t.Fatalf("expected withLUC to change the key")
	}
	again := withLUC.withLUC(0)
	if again != base {
		t.Fatalf("withLUC(0) should restore the original key, got %v want %v", again, base)
	}
}

func TestKeyHelperMaxValueNeverZero(t *testing.T) {
	dag := newFakeDAG(1, nil)
	kh := NewKeyHelper(dag)
	if kh.MaxValue() == 0 {
		t.Fatalf("MaxValue must never be zero to avoid divide-by-zero in Score")
	}
}

func TestCriticalPathLengthsPanicsOnCycle(t *testing.T) {
	dag := newFakeDAG(2, []Edge{
		{From: 0, To: 1, Latency: 1},
		{From: 1, To: 0, Latency: 1},
	})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a cyclic dependence graph to panic rather than infinite-loop")
		}
	}()
	criticalPathLengths(dag)
}
