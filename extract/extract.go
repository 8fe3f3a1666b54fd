// Package extract selects, for a class of the e-graph, the equivalent expression of least cost.
//
// Match and Const nodes cost whatever the cost table says for their pattern or formula, and
// every other node costs the sum of its children. Keys missing from the table are free.
package extract

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-set/v3"

	"github.com/cottand/motifsat/costs"
	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/term"
)

// Costs prices the leaf keys of an expression. *costs.Table implements it.
type Costs interface {
	Lookup(key string) (float64, bool)
}

var _ Costs = &costs.Table{}

// Overlay makes some keys free on top of Base, without modifying it.
type Overlay struct {
	Base Costs
	Free *set.Set[string]
}

func (o Overlay) Lookup(key string) (float64, bool) {
	if o.Free != nil && o.Free.Contains(key) {
		return 0, true
	}
	return o.Base.Lookup(key)
}

type choice struct {
	cost float64
	node egraph.Node
}

// Extractor holds the best choice of every class of an e-graph. It must be rebuilt when the
// e-graph changes.
type Extractor struct {
	g     *egraph.EGraph
	costs Costs
	best  map[egraph.ClassID]choice
	// keys caches the cost key of Match and Const classes.
	keys map[egraph.ClassID]string
}

func New(g *egraph.EGraph, c Costs) *Extractor {
	e := &Extractor{g: g, costs: c, best: map[egraph.ClassID]choice{}, keys: map[egraph.ClassID]string{}}
	e.solve()
	return e
}

// solve iterates to a fixpoint. A class only takes a node whose children all have a cost, and
// only switches to a strictly cheaper node, so the first cheapest node found wins ties.
func (e *Extractor) solve() {
	classes := e.g.Classes()
	for changed := true; changed; {
		changed = false
		for _, id := range classes {
			for _, n := range e.g.Nodes(id) {
				c, ok := e.nodeCost(id, n)
				if !ok {
					continue
				}
				if cur, ok := e.best[id]; !ok || c < cur.cost {
					e.best[id] = choice{cost: c, node: n}
					changed = true
				}
			}
		}
	}
}

func (e *Extractor) nodeCost(id egraph.ClassID, n egraph.Node) (float64, bool) {
	switch n.Op {
	case term.OpMatch:
		return e.lookup(e.matchKey(id)), true
	case term.OpConst:
		sym, ok := e.g.SymOf(n.Kids[1])
		if !ok {
			return 0, false
		}
		return e.lookup(costs.FormulaKey(term.Formula(sym))), true
	}
	total := 0.0
	for _, k := range n.Kids {
		c, ok := e.best[e.g.Find(k)]
		if !ok {
			return 0, false
		}
		total += c.cost
	}
	return total, true
}

func (e *Extractor) lookup(key string) float64 {
	if key == "" {
		return 0
	}
	c, _ := e.costs.Lookup(key)
	return c
}

func (e *Extractor) matchKey(id egraph.ClassID) string {
	if key, ok := e.keys[id]; ok {
		return key
	}
	key := ""
	if m, ok := e.g.MatchOf(id); ok {
		key = costs.MatchKey(m)
	}
	e.keys[id] = key
	return key
}

// Cost returns the least cost of the class of id.
func (e *Extractor) Cost(id egraph.ClassID) (float64, bool) {
	c, ok := e.best[e.g.Find(id)]
	if !ok {
		return math.Inf(1), false
	}
	return c.cost, true
}

// Best returns the cheapest expression of the class of id and its cost.
func (e *Extractor) Best(id egraph.ClassID) (*term.Term, float64, error) {
	id = e.g.Find(id)
	c, ok := e.best[id]
	if !ok {
		return nil, 0, fmt.Errorf("class %d has no finite expression", id)
	}
	t, err := e.build(id, map[egraph.ClassID]bool{})
	if err != nil {
		return nil, 0, err
	}
	return t, c.cost, nil
}

func (e *Extractor) build(id egraph.ClassID, onPath map[egraph.ClassID]bool) (*term.Term, error) {
	c, ok := e.best[id]
	if !ok || onPath[id] {
		return nil, fmt.Errorf("class %d has no finite expression", id)
	}
	if c.node.Op == term.OpMatch {
		if m, ok := e.g.MatchOf(id); ok {
			return m, nil
		}
	}
	onPath[id] = true
	defer delete(onPath, id)
	args := make([]*term.Term, len(c.node.Kids))
	for i, k := range c.node.Kids {
		a, err := e.build(e.g.Find(k), onPath)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	return &term.Term{Op: c.node.Op, Num: c.node.Num, Sym: c.node.Sym, Args: args}, nil
}
