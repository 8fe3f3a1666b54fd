// Package graph holds the small dense graphs that motifs are made of, the partial patterns
// built on top of them, and the combinatorics the rewrite rules and collaborators need:
// canonical labelling, supergraph enumeration and embedding counts.
package graph

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxVertices is the largest vertex count a Graph can hold.
const MaxVertices = 64

// Graph is a simple undirected graph on vertices 0..N()-1 stored as adjacency bitsets.
// The zero value is the empty graph on zero vertices.
type Graph struct {
	n   int
	adj []uint64
}

func New(n int) Graph {
	if n < 0 || n > MaxVertices {
		panic(fmt.Sprintf("graph: unsupported vertex count %d", n))
	}
	return Graph{n: n, adj: make([]uint64, n)}
}

// Complete returns the clique on n vertices.
func Complete(n int) Graph {
	g := New(n)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			g.AddEdge(u, v)
		}
	}
	return g
}

func (g Graph) N() int { return g.n }

func (g *Graph) AddEdge(u, v int) {
	g.check(u, v)
	g.adj[u] |= 1 << v
	g.adj[v] |= 1 << u
}

func (g *Graph) RemoveEdge(u, v int) {
	g.check(u, v)
	g.adj[u] &^= 1 << v
	g.adj[v] &^= 1 << u
}

func (g Graph) HasEdge(u, v int) bool {
	if u < 0 || v < 0 || u >= g.n || v >= g.n {
		return false
	}
	return g.adj[u]&(1<<v) != 0
}

func (g Graph) check(u, v int) {
	if u == v || u < 0 || v < 0 || u >= g.n || v >= g.n {
		panic(fmt.Sprintf("graph: invalid pair (%d, %d) on %d vertices", u, v, g.n))
	}
}

func (g Graph) Degree(v int) int {
	return bits.OnesCount64(g.adj[v])
}

func (g Graph) Neighbors(v int) []int {
	var out []int
	for row := g.adj[v]; row != 0; row &= row - 1 {
		out = append(out, bits.TrailingZeros64(row))
	}
	return out
}

func (g Graph) NumEdges() int {
	total := 0
	for _, row := range g.adj {
		total += bits.OnesCount64(row)
	}
	return total / 2
}

// Edges returns every edge once as (u, v) with u < v, in row-major order.
func (g Graph) Edges() [][2]int {
	var edges [][2]int
	for u := 0; u < g.n; u++ {
		for v := u + 1; v < g.n; v++ {
			if g.HasEdge(u, v) {
				edges = append(edges, [2]int{u, v})
			}
		}
	}
	return edges
}

// NonEdges returns every vertex pair that is not an edge, as (u, v) with u < v.
func (g Graph) NonEdges() [][2]int {
	var pairs [][2]int
	for u := 0; u < g.n; u++ {
		for v := u + 1; v < g.n; v++ {
			if !g.HasEdge(u, v) {
				pairs = append(pairs, [2]int{u, v})
			}
		}
	}
	return pairs
}

func (g Graph) IsComplete() bool {
	return g.NumEdges() == g.n*(g.n-1)/2
}

func (g Graph) Clone() Graph {
	c := Graph{n: g.n, adj: make([]uint64, g.n)}
	copy(c.adj, g.adj)
	return c
}

func (g Graph) Equal(o Graph) bool {
	if g.n != o.n {
		return false
	}
	for i := range g.adj {
		if g.adj[i] != o.adj[i] {
			return false
		}
	}
	return true
}

// Contains reports whether every edge of o is an edge of g. Both graphs must have the same vertex count.
func (g Graph) Contains(o Graph) bool {
	if g.n != o.n {
		return false
	}
	for i := range o.adj {
		if o.adj[i]&^g.adj[i] != 0 {
			return false
		}
	}
	return true
}

// Union returns the graph holding the edges of both g and o.
func (g Graph) Union(o Graph) Graph {
	if g.n != o.n {
		panic("graph: union of graphs with different vertex counts")
	}
	u := g.Clone()
	for i := range u.adj {
		u.adj[i] |= o.adj[i]
	}
	return u
}

// Permute relabels the graph so that vertex v becomes perm[v].
func (g Graph) Permute(perm []int) Graph {
	p := New(g.n)
	for _, e := range g.Edges() {
		p.AddEdge(perm[e[0]], perm[e[1]])
	}
	return p
}

func (g Graph) String() string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "graph(%d", g.n)
	for _, e := range g.Edges() {
		fmt.Fprintf(sb, " %d-%d", e[0], e[1])
	}
	sb.WriteString(")")
	return sb.String()
}
