package term

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cottand/motifsat/graph"
)

// LabelIndex maps a vertex label to its 0-based index: a is 0, z is 25, aa is 26 and so on.
func LabelIndex(label string) (int, bool) {
	if label == "" {
		return 0, false
	}
	n := 0
	for _, r := range label {
		if r < 'a' || r > 'z' {
			return 0, false
		}
		n = n*26 + int(r-'a') + 1
		if n > graph.MaxVertices {
			return 0, false
		}
	}
	return n - 1, true
}

// Label is the inverse of LabelIndex.
func Label(i int) string {
	n := i + 1
	var out []byte
	for n > 0 {
		n--
		out = append(out, byte('a'+n%26))
		n /= 26
	}
	slices.Reverse(out)
	return string(out)
}

func compareLabels(a, b string) int {
	ia, okA := LabelIndex(a)
	ib, okB := LabelIndex(b)
	if okA && okB {
		return cmp.Compare(ia, ib)
	}
	return cmp.Compare(a, b)
}

type pairFact struct {
	op   Op
	u, v string
}

// NormalizeMatch orients every pair of a Match term so the smaller label comes first, drops
// repeated facts and sorts them by pair. A pair that is both an edge and an anti-edge is an error.
func NormalizeMatch(t *Term) (*Term, error) {
	if t.Op != OpMatch {
		return nil, fmt.Errorf("expected Match, got %s", t)
	}
	facts := make([]pairFact, 0, len(t.Args))
	for _, a := range t.Args {
		if a.Op != OpEdge && a.Op != OpAntiEdge && a.Op != OpNotEqual {
			return nil, fmt.Errorf("unexpected %s in Match", a.Op)
		}
		u, v := a.Args[0].Sym, a.Args[1].Sym
		for _, label := range []string{u, v} {
			if _, ok := LabelIndex(label); !ok {
				return nil, fmt.Errorf("invalid vertex label %q", label)
			}
		}
		if u == v {
			return nil, fmt.Errorf("self loop on %q", u)
		}
		if compareLabels(u, v) > 0 {
			u, v = v, u
		}
		facts = append(facts, pairFact{op: a.Op, u: u, v: v})
	}
	slices.SortFunc(facts, func(a, b pairFact) int {
		return cmp.Or(compareLabels(a.u, b.u), compareLabels(a.v, b.v), cmp.Compare(a.op, b.op))
	})
	facts = slices.Compact(facts)

	args := make([]*Term, 0, len(facts))
	for i, f := range facts {
		if i > 0 && facts[i-1].u == f.u && facts[i-1].v == f.v {
			prev := facts[i-1].op
			if prev == OpEdge && f.op == OpAntiEdge {
				return nil, fmt.Errorf("pair (%s, %s) is both an edge and an anti-edge", f.u, f.v)
			}
			if f.op == OpNotEqual {
				continue
			}
		}
		args = append(args, New(f.op, Symbol(f.u), Symbol(f.v)))
	}
	return New(OpMatch, args...), nil
}

// ToPattern converts a Match term into a graph pattern. Vertices are numbered by label order, so
// labels need not be contiguous. NotEqual facts only contribute their vertices.
func ToPattern(t *Term) (graph.Pattern, error) {
	norm, err := NormalizeMatch(t)
	if err != nil {
		return graph.Pattern{}, err
	}
	labels := norm.Vertices()
	if len(labels) > graph.MaxVertices {
		return graph.Pattern{}, fmt.Errorf("pattern has %d vertices, at most %d are supported", len(labels), graph.MaxVertices)
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	p := graph.NewPattern(len(labels))
	for _, a := range norm.Args {
		u, v := index[a.Args[0].Sym], index[a.Args[1].Sym]
		switch a.Op {
		case OpEdge:
			p.AddEdge(u, v)
		case OpAntiEdge:
			p.AddAntiEdge(u, v)
		}
	}
	return p, nil
}

// FromPattern renders a pattern as a normalised Match term with labels a, b, c, ...
// A vertex without any edge or anti-edge is kept alive with a NotEqual fact.
func FromPattern(p graph.Pattern) *Term {
	var args []*Term
	covered := make([]bool, p.N())
	for u := 0; u < p.N(); u++ {
		for v := u + 1; v < p.N(); v++ {
			switch p.State(u, v) {
			case graph.Adjacent:
				args = append(args, Edge(Label(u), Label(v)))
			case graph.NonAdjacent:
				args = append(args, AntiEdge(Label(u), Label(v)))
			default:
				continue
			}
			covered[u], covered[v] = true, true
		}
	}
	for v, ok := range covered {
		if ok || p.N() < 2 {
			continue
		}
		other := 0
		if v == 0 {
			other = 1
		}
		args = append(args, NotEqual(Label(min(v, other)), Label(max(v, other))))
	}
	norm, err := NormalizeMatch(New(OpMatch, args...))
	if err != nil {
		panic(fmt.Sprintf("term: pattern %v does not render to a valid Match: %v", p, err))
	}
	return norm
}

// FromGraph renders an edge-only pattern.
func FromGraph(g graph.Graph) *Term {
	return FromPattern(graph.EdgePattern(g))
}

// CanonicalMatch relabels a Match term into the canonical form of its isomorphism class.
func CanonicalMatch(t *Term) (*Term, error) {
	p, err := ToPattern(t)
	if err != nil {
		return nil, err
	}
	return FromPattern(graph.Canonical(p)), nil
}

// IsClique reports whether the edges of a Match term connect every pair of its vertices.
func IsClique(t *Term) (bool, error) {
	p, err := ToPattern(t)
	if err != nil {
		return false, err
	}
	return p.Edges.IsComplete(), nil
}
