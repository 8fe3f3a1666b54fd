package graph

import (
	"fmt"
	"strings"
)

// PairState is what a Pattern says about a pair of vertices.
type PairState uint8

const (
	Unspecified PairState = iota
	NonAdjacent
	Adjacent
)

// Pattern is a motif with explicit edges and explicit anti-edges (pairs that must not be adjacent).
// Pairs that are neither are unconstrained.
type Pattern struct {
	Edges Graph
	Anti  Graph
}

func NewPattern(n int) Pattern {
	return Pattern{Edges: New(n), Anti: New(n)}
}

// EdgePattern wraps g as a pattern without anti-edges.
func EdgePattern(g Graph) Pattern {
	return Pattern{Edges: g.Clone(), Anti: New(g.N())}
}

// InducedPattern wraps g as a fully specified pattern: every non-edge of g is an anti-edge.
func InducedPattern(g Graph) Pattern {
	p := EdgePattern(g)
	for _, pair := range g.NonEdges() {
		p.Anti.AddEdge(pair[0], pair[1])
	}
	return p
}

func (p Pattern) N() int { return p.Edges.N() }

// AddAntiEdge marks the pair as non-adjacent. It panics if the pair is already an edge.
func (p Pattern) AddAntiEdge(u, v int) {
	if p.Edges.HasEdge(u, v) {
		panic(fmt.Sprintf("graph: pair (%d, %d) is both an edge and an anti-edge", u, v))
	}
	p.Anti.AddEdge(u, v)
}

// AddEdge marks the pair as adjacent. It panics if the pair is already an anti-edge.
func (p Pattern) AddEdge(u, v int) {
	if p.Anti.HasEdge(u, v) {
		panic(fmt.Sprintf("graph: pair (%d, %d) is both an edge and an anti-edge", u, v))
	}
	p.Edges.AddEdge(u, v)
}

func (p Pattern) State(u, v int) PairState {
	switch {
	case p.Edges.HasEdge(u, v):
		return Adjacent
	case p.Anti.HasEdge(u, v):
		return NonAdjacent
	default:
		return Unspecified
	}
}

// EdgeOnly drops every anti-edge. This is the edge-induced closure of the pattern.
func (p Pattern) EdgeOnly() Pattern {
	return EdgePattern(p.Edges)
}

// Induced turns every unspecified pair into an anti-edge.
func (p Pattern) Induced() Pattern {
	return InducedPattern(p.Edges)
}

// Specified is the graph of every pair the pattern constrains, adjacent or not.
func (p Pattern) Specified() Graph {
	return p.Edges.Union(p.Anti)
}

func (p Pattern) IsEdgeOnly() bool {
	return p.Anti.NumEdges() == 0
}

// IsFullyInduced reports whether every vertex pair is either an edge or an anti-edge.
func (p Pattern) IsFullyInduced() bool {
	return p.Specified().IsComplete()
}

func (p Pattern) Clone() Pattern {
	return Pattern{Edges: p.Edges.Clone(), Anti: p.Anti.Clone()}
}

func (p Pattern) Equal(o Pattern) bool {
	return p.Edges.Equal(o.Edges) && p.Anti.Equal(o.Anti)
}

func (p Pattern) Permute(perm []int) Pattern {
	return Pattern{Edges: p.Edges.Permute(perm), Anti: p.Anti.Permute(perm)}
}

func (p Pattern) String() string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "pattern(%d", p.N())
	for _, e := range p.Edges.Edges() {
		fmt.Fprintf(sb, " %d-%d", e[0], e[1])
	}
	for _, e := range p.Anti.Edges() {
		fmt.Fprintf(sb, " %d!%d", e[0], e[1])
	}
	sb.WriteString(")")
	return sb.String()
}
