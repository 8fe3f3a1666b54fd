package egraph

import (
	"fmt"
	"math"

	"github.com/cottand/motifsat/term"
)

// Resolve reconstructs a concrete term for the class of id, choosing the smallest tree.
func (g *EGraph) Resolve(id ClassID) (*term.Term, error) {
	sizes := g.sizes()
	return g.build(g.Find(id), sizes, map[ClassID]bool{})
}

// sizes computes, per class, the size of its smallest finite term and the node achieving it.
func (g *EGraph) sizes() map[ClassID]sized {
	best := make(map[ClassID]sized, len(g.classes))
	for changed := true; changed; {
		changed = false
		for _, id := range g.Classes() {
			for _, n := range g.classes[id].nodes {
				total := 1
				for _, k := range n.Kids {
					s, ok := best[g.Find(k)]
					if !ok {
						total = math.MaxInt
						break
					}
					total += s.size
				}
				if total == math.MaxInt {
					continue
				}
				if cur, ok := best[id]; !ok || total < cur.size {
					best[id] = sized{size: total, node: g.canonicalize(n)}
					changed = true
				}
			}
		}
	}
	return best
}

type sized struct {
	size int
	node Node
}

func (g *EGraph) build(id ClassID, best map[ClassID]sized, onPath map[ClassID]bool) (*term.Term, error) {
	s, ok := best[id]
	if !ok || onPath[id] {
		return nil, fmt.Errorf("class %d has no finite representative", id)
	}
	onPath[id] = true
	defer delete(onPath, id)
	args := make([]*term.Term, len(s.node.Kids))
	for i, k := range s.node.Kids {
		a, err := g.build(g.Find(k), best, onPath)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	return &term.Term{Op: s.node.Op, Num: s.node.Num, Sym: s.node.Sym, Args: args}, nil
}

// NumOf returns the integer held by the class of id.
func (g *EGraph) NumOf(id ClassID) (int64, bool) {
	for _, n := range g.Nodes(id) {
		if n.Op == term.OpNum {
			return n.Num, true
		}
	}
	return 0, false
}

// SymOf returns the symbol held by the class of id.
func (g *EGraph) SymOf(id ClassID) (string, bool) {
	for _, n := range g.Nodes(id) {
		if n.Op == term.OpSymbol {
			return n.Sym, true
		}
	}
	return "", false
}

// PiOf returns a Pi term of the class of id.
func (g *EGraph) PiOf(id ClassID) (*term.Term, bool) {
	for _, n := range g.Nodes(id) {
		if n.Op != term.OpPi {
			continue
		}
		indices := make([]int, 0, len(n.Kids))
		for _, k := range n.Kids {
			idx, ok := g.NumOf(k)
			if !ok {
				break
			}
			indices = append(indices, int(idx))
		}
		if len(indices) == len(n.Kids) {
			return term.Pi(indices...), true
		}
	}
	return nil, false
}

// MatchOf returns a Match term of the class of id.
func (g *EGraph) MatchOf(id ClassID) (*term.Term, bool) {
	for _, n := range g.Nodes(id) {
		if n.Op != term.OpMatch {
			continue
		}
		if t, ok := g.matchTerm(n); ok {
			return t, true
		}
	}
	return nil, false
}

func (g *EGraph) matchTerm(n Node) (*term.Term, bool) {
	facts := make([]*term.Term, 0, len(n.Kids))
	for _, k := range n.Kids {
		var fact *term.Term
		for _, e := range g.Nodes(k) {
			if e.Op != term.OpEdge && e.Op != term.OpAntiEdge && e.Op != term.OpNotEqual {
				continue
			}
			u, okU := g.SymOf(e.Kids[0])
			v, okV := g.SymOf(e.Kids[1])
			if okU && okV {
				fact = term.New(e.Op, term.Symbol(u), term.Symbol(v))
				break
			}
		}
		if fact == nil {
			return nil, false
		}
		facts = append(facts, fact)
	}
	return term.New(term.OpMatch, facts...), true
}

// FormulaOf returns the provenance and formula of a Const term in the class of id.
func (g *EGraph) FormulaOf(id ClassID) (*term.Term, term.Formula, bool) {
	for _, n := range g.Nodes(id) {
		if n.Op != term.OpConst {
			continue
		}
		pi, okPi := g.PiOf(n.Kids[0])
		sym, okSym := g.SymOf(n.Kids[1])
		if okPi && okSym && term.Formula(sym).Valid() {
			return pi, term.Formula(sym), true
		}
	}
	return nil, "", false
}
