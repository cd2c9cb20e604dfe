package liftplan

// kpkcFrame is one level of the explicit backtracking stack: the filtered
// candidate list for this partition and the cursor into it. An explicit
// stack object rather than a goroutine/coroutine generator, so Next can
// advance one binding at a time without a parked goroutine per in-flight
// search.
type kpkcFrame struct {
	candidates []int
	idx        int
}

// KPKCIterator enumerates exactly-k cliques of a k-partite graph, one
// vertex per partition, as a restartable lazy iterator (C5, spec §4.3).
// Each Next() call resumes the suspended DFS and returns either the next
// clique or (nil, false) once the search is exhausted; no clique is ever
// emitted twice, since each frame's candidate cursor only advances.
type KPKCIterator struct {
	graph      *StaticConsistencyGraph
	partitions [][]int
	k          int
	path       []int
	stack      []kpkcFrame
	done       bool
}

// NewKPKCIterator returns an iterator over graph's k-partite adjacency,
// where partitions[i] lists the vertex indices belonging to parameter i.
func NewKPKCIterator(graph *StaticConsistencyGraph, partitions [][]int) *KPKCIterator {
	k := len(partitions)
	it := &KPKCIterator{graph: graph, partitions: partitions, k: k, path: make([]int, k)}
	if k == 0 {
		it.done = true
		return it
	}
	it.stack = append(it.stack, kpkcFrame{candidates: append([]int(nil), partitions[0]...)})
	return it
}

// consistentWithPath reports whether v is adjacent to every vertex
// already chosen at path[0:depth].
func (it *KPKCIterator) consistentWithPath(v, depth int) bool {
	for i := 0; i < depth; i++ {
		if !it.graph.Adjacent(it.path[i], v) {
			return false
		}
	}
	return true
}

// Next advances the suspended search and returns the next clique, a
// freshly-allocated slice of length k with one vertex index per
// partition in partition order, or (nil, false) when exhausted.
func (it *KPKCIterator) Next() ([]int, bool) {
	if it.done {
		return nil, false
	}
	for len(it.stack) > 0 {
		depth := len(it.stack) - 1
		f := &it.stack[depth]
		if f.idx >= len(f.candidates) {
			it.stack = it.stack[:depth]
			continue
		}
		v := f.candidates[f.idx]
		f.idx++
		if !it.consistentWithPath(v, depth) {
			continue
		}
		it.path[depth] = v
		if depth+1 == it.k {
			clique := make([]int, it.k)
			copy(clique, it.path)
			return clique, true
		}
		next := depth + 1
		candidates := make([]int, 0, len(it.partitions[next]))
		for _, cand := range it.partitions[next] {
			if it.consistentWithPath(cand, next) {
				candidates = append(candidates, cand)
			}
		}
		it.stack = append(it.stack, kpkcFrame{candidates: candidates})
	}
	it.done = true
	return nil, false
}

// Stop releases the iterator's stack, honouring the C5 contract that "the
// caller may stop at any time; resources are released deterministically".
func (it *KPKCIterator) Stop() {
	it.stack = nil
	it.done = true
}
