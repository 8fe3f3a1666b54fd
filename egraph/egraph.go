// Package egraph is a congruence-closure store over term.Term: it holds equivalence classes of
// terms, hash-conses nodes whose children are classes, and restores congruence after merges.
package egraph

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cottand/motifsat/internal/log"
	"github.com/cottand/motifsat/term"
)

var logger = log.DefaultLogger.With("section", "egraph")

// ClassID identifies an equivalence class. IDs are only meaningful after passing them through Find.
type ClassID int

// Node is one term constructor whose children are equivalence classes.
type Node struct {
	Op   term.Op
	Num  int64
	Sym  string
	Kids []ClassID
}

func (n Node) key() string {
	sb := &strings.Builder{}
	sb.WriteString(strconv.Itoa(int(n.Op)))
	switch n.Op {
	case term.OpNum:
		sb.WriteByte('#')
		sb.WriteString(strconv.FormatInt(n.Num, 10))
	case term.OpSymbol:
		sb.WriteByte('$')
		sb.WriteString(n.Sym)
	}
	for _, k := range n.Kids {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(int(k)))
	}
	return sb.String()
}

type parentRef struct {
	node  Node
	class ClassID
}

type class struct {
	nodes   []Node
	parents []parentRef
}

type EGraph struct {
	parents []ClassID
	ranks   []int
	classes map[ClassID]*class
	memo    map[string]ClassID
	pending []ClassID
	// version increases on every change, so derived data can be cached.
	version int
}

func New() *EGraph {
	return &EGraph{
		classes: map[ClassID]*class{},
		memo:    map[string]ClassID{},
	}
}

// Find returns the canonical id of the class containing id.
func (g *EGraph) Find(id ClassID) ClassID {
	root := id
	for g.parents[root] != root {
		root = g.parents[root]
	}
	for id != root {
		parent := g.parents[id]
		g.parents[id] = root
		id = parent
	}
	return root
}

func (g *EGraph) canonicalize(n Node) Node {
	kids := make([]ClassID, len(n.Kids))
	for i, k := range n.Kids {
		kids[i] = g.Find(k)
	}
	n.Kids = kids
	return n
}

// Add inserts a node and returns its class. A node structurally identical to one already present
// (after canonicalizing its children) returns the existing class.
func (g *EGraph) Add(n Node) ClassID {
	n = g.canonicalize(n)
	key := n.key()
	if id, ok := g.memo[key]; ok {
		return g.Find(id)
	}
	id := ClassID(len(g.parents))
	g.parents = append(g.parents, id)
	g.ranks = append(g.ranks, 0)
	g.classes[id] = &class{nodes: []Node{n}}
	for _, k := range n.Kids {
		kc := g.classes[k]
		kc.parents = append(kc.parents, parentRef{node: n, class: id})
	}
	g.memo[key] = id
	g.version++
	return id
}

// AddTerm inserts every subterm of t bottom-up and returns the class of t.
func (g *EGraph) AddTerm(t *term.Term) ClassID {
	kids := make([]ClassID, len(t.Args))
	for i, a := range t.Args {
		kids[i] = g.AddTerm(a)
	}
	return g.Add(Node{Op: t.Op, Num: t.Num, Sym: t.Sym, Kids: kids})
}

// Lookup returns the class of t if every subterm of t is already present.
func (g *EGraph) Lookup(t *term.Term) (ClassID, bool) {
	kids := make([]ClassID, len(t.Args))
	for i, a := range t.Args {
		k, ok := g.Lookup(a)
		if !ok {
			return 0, false
		}
		kids[i] = k
	}
	n := g.canonicalize(Node{Op: t.Op, Num: t.Num, Sym: t.Sym, Kids: kids})
	id, ok := g.memo[n.key()]
	if !ok {
		return 0, false
	}
	return g.Find(id), true
}

// Union merges the classes of a and b and reports whether they were distinct.
// Congruence is only restored by Rebuild.
func (g *EGraph) Union(a, b ClassID) bool {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return false
	}
	// union by rank
	if g.ranks[ra] < g.ranks[rb] {
		ra, rb = rb, ra
	}
	g.parents[rb] = ra
	if g.ranks[ra] == g.ranks[rb] {
		g.ranks[ra]++
	}

	dst, src := g.classes[ra], g.classes[rb]
	dst.nodes = append(dst.nodes, src.nodes...)
	dst.parents = append(dst.parents, src.parents...)
	delete(g.classes, rb)

	g.pending = append(g.pending, ra)
	g.version++
	return true
}

// Rebuild restores the congruence invariant: after it returns, two nodes with the same operator
// and equivalent children are in the same class, and no class holds duplicate nodes.
func (g *EGraph) Rebuild() int {
	merges := 0
	for len(g.pending) > 0 {
		todo := g.pending
		g.pending = nil
		repaired := map[ClassID]bool{}
		for _, id := range todo {
			root := g.Find(id)
			if repaired[root] {
				continue
			}
			repaired[root] = true
			merges += g.repair(root)
		}
	}
	for id, c := range g.classes {
		c.nodes = g.dedupe(c.nodes)
		g.classes[id] = c
	}
	if merges > 0 {
		logger.Debug("rebuilt", "congruenceMerges", merges, "classes", len(g.classes), "nodes", g.NumNodes())
	}
	return merges
}

func (g *EGraph) repair(id ClassID) int {
	old := g.classes[id].parents
	g.classes[id].parents = nil
	for _, p := range old {
		delete(g.memo, p.node.key())
		canon := g.canonicalize(p.node)
		g.memo[canon.key()] = g.Find(p.class)
	}

	merges := 0
	seen := map[string]int{}
	var parents []parentRef
	for _, p := range old {
		canon := g.canonicalize(p.node)
		key := canon.key()
		if i, ok := seen[key]; ok {
			if g.Union(parents[i].class, p.class) {
				merges++
			}
			parents[i].class = g.Find(p.class)
			continue
		}
		seen[key] = len(parents)
		parents = append(parents, parentRef{node: canon, class: g.Find(p.class)})
	}
	root := g.classes[g.Find(id)]
	root.parents = append(root.parents, parents...)
	return merges
}

func (g *EGraph) dedupe(nodes []Node) []Node {
	seen := make(map[string]bool, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		n = g.canonicalize(n)
		key := n.key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// Nodes returns the nodes of the class of id, children canonicalized.
func (g *EGraph) Nodes(id ClassID) []Node {
	c := g.classes[g.Find(id)]
	out := make([]Node, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = g.canonicalize(n)
	}
	return out
}

// Classes returns the canonical ids of all classes in ascending order.
func (g *EGraph) Classes() []ClassID {
	ids := make([]ClassID, 0, len(g.classes))
	for id := range g.classes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (g *EGraph) NumClasses() int { return len(g.classes) }

func (g *EGraph) NumNodes() int {
	total := 0
	for _, c := range g.classes {
		total += len(c.nodes)
	}
	return total
}

// Size is the number of distinct hash-consed nodes. It is cheaper than NumNodes and serves as a
// growth bound.
func (g *EGraph) Size() int { return len(g.memo) }

// Version changes whenever a node is added or two classes are merged.
func (g *EGraph) Version() int { return g.version }

// Equivalent reports whether both terms are present and in the same class.
func (g *EGraph) Equivalent(a, b *term.Term) bool {
	ia, okA := g.Lookup(a)
	ib, okB := g.Lookup(b)
	return okA && okB && ia == ib
}
