package liftplan

// Vertex is one (parameter, object) pair of a static consistency graph:
// an object consistent with a parameter's declared type (spec §4.2).
type Vertex struct {
	Index     int
	Param     int
	Object    *Object
}

// StaticConsistencyGraph is the precomputed k-partite graph of statically
// consistent (parameter, object) vertices and (v,w) edges for one
// ConjunctiveCondition (C4, spec §4.2). Built once at problem-load time;
// read-only during search.
type StaticConsistencyGraph struct {
	Vertices []Vertex

	// Adjacency is the |V|x|V| adjacency bitmatrix: Adjacency[i] has bit j
	// set iff vertices i and j are adjacent.
	Adjacency []BitSet

	// VerticesByParam and ObjectsByParam are the precomputed auxiliary
	// indexes spec §4.2 names: vertices_by_parameter_index[p],
	// objects_by_parameter_index[p].
	VerticesByParam [][]int
	ObjectsByParam  [][]*Object
}

// NumVertices returns |V|.
func (g *StaticConsistencyGraph) NumVertices() int { return len(g.Vertices) }

// Adjacent reports whether vertices i and j are adjacent.
func (g *StaticConsistencyGraph) Adjacent(i, j int) bool {
	return g.Adjacency[i].Get(j)
}

// typeConsistent reports whether object o satisfies every required type of
// slot (an object must carry every listed type; empty Types means
// untyped, always consistent).
func typeConsistent(o *Object, slot ParameterSlot) bool {
	for _, t := range slot.Types {
		if !o.HasType(t) {
			return false
		}
	}
	return true
}

// BuildStaticConsistencyGraph constructs the static consistency graph for
// condition cc over problem p (spec §4.2). Only called for arity>=1
// conditions; ShapeNullary conditions never acquire a graph.
func BuildStaticConsistencyGraph(cc *ConjunctiveCondition, p *Problem) (*StaticConsistencyGraph, error) {
	g := &StaticConsistencyGraph{
		VerticesByParam: make([][]int, len(cc.Parameters)),
		ObjectsByParam:  make([][]*Object, len(cc.Parameters)),
	}

	for _, slot := range cc.Parameters {
		for _, o := range p.Objects.All() {
			if !typeConsistent(o, slot) {
				continue
			}
			idx := len(g.Vertices)
			g.Vertices = append(g.Vertices, Vertex{Index: idx, Param: slot.Index, Object: o})
			g.VerticesByParam[slot.Index] = append(g.VerticesByParam[slot.Index], idx)
			g.ObjectsByParam[slot.Index] = append(g.ObjectsByParam[slot.Index], o)
		}
	}

	n := len(g.Vertices)
	g.Adjacency = make([]BitSet, n)
	for i := range g.Adjacency {
		g.Adjacency[i] = NewBitSet(n)
	}

	if len(cc.Parameters) < 2 {
		// Unary/nullary conditions carry no edges (spec §4.2: "Arity 1
		// uses a unary path (no edges)").
		return g, nil
	}

	staticAS := BuildStaticAssignmentSet(p)

	for i := 0; i < n; i++ {
		vi := g.Vertices[i]
		for j := i + 1; j < n; j++ {
			vj := g.Vertices[j]
			if vi.Param == vj.Param {
				continue
			}
			if !staticAS.ConsistentEdge(cc.StaticLiterals, vi.Param, vi.Object, vj.Param, vj.Object) {
				continue
			}
			g.Adjacency[i].SetMut(j)
			g.Adjacency[j].SetMut(i)
		}
	}

	return g, nil
}
