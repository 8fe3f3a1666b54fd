package graph

import "slices"

// Adjacency is a read-only view of a host graph that patterns are embedded into.
type Adjacency interface {
	N() int
	HasEdge(u, v int) bool
	Neighbors(v int) []int
}

var (
	_ Adjacency = Graph{}
	_ Adjacency = &DataGraph{}
)

// matchOrder orders pattern vertices so that every vertex after the first of its component has
// an already placed neighbour. anchors[i] is that neighbour, or -1.
func matchOrder(p Pattern) (order, anchors []int) {
	n := p.N()
	placed := make([]bool, n)
	for len(order) < n {
		next, nextLinks := -1, -1
		for v := 0; v < n; v++ {
			if placed[v] {
				continue
			}
			links := 0
			for _, w := range p.Edges.Neighbors(v) {
				if placed[w] {
					links++
				}
			}
			if links > nextLinks || (links == nextLinks && p.Edges.Degree(v) > p.Edges.Degree(next)) {
				next, nextLinks = v, links
			}
		}
		anchor := -1
		for _, w := range p.Edges.Neighbors(next) {
			if placed[w] {
				anchor = w
				break
			}
		}
		placed[next] = true
		order = append(order, next)
		anchors = append(anchors, anchor)
	}
	return order, anchors
}

// Embeddings counts the injective maps from the vertices of p into host that send every edge of
// p to an edge and every anti-edge of p to a non-adjacent pair.
func Embeddings(p Pattern, host Adjacency) int64 {
	n := p.N()
	if n > host.N() {
		return 0
	}
	order, anchors := matchOrder(p)
	image := make([]int, n)
	hostUsed := make(map[int]bool, n)
	all := make([]int, host.N())
	for i := range all {
		all[i] = i
	}

	fits := func(v, x int, upTo int) bool {
		for _, u := range order[:upTo] {
			switch p.State(u, v) {
			case Adjacent:
				if !host.HasEdge(image[u], x) {
					return false
				}
			case NonAdjacent:
				if host.HasEdge(image[u], x) {
					return false
				}
			}
		}
		return true
	}

	var count int64
	var extend func(i int)
	extend = func(i int) {
		if i == n {
			count++
			return
		}
		v := order[i]
		candidates := all
		if anchors[i] >= 0 {
			candidates = host.Neighbors(image[anchors[i]])
		}
		for _, x := range candidates {
			if hostUsed[x] || !fits(v, x, i) {
				continue
			}
			image[v] = x
			hostUsed[x] = true
			extend(i + 1)
			delete(hostUsed, x)
		}
	}
	extend(0)
	return count
}

// Automorphisms counts the permutations of p that preserve both its edges and its anti-edges.
func Automorphisms(p Pattern) int64 {
	n := p.N()
	sigs := signatures(p)
	image := make([]int, n)
	used := make([]bool, n)

	var count int64
	var extend func(v int)
	extend = func(v int) {
		if v == n {
			count++
			return
		}
		for x := 0; x < n; x++ {
			if used[x] || sigs[x] != sigs[v] {
				continue
			}
			ok := true
			for u := 0; u < v && ok; u++ {
				ok = p.State(u, v) == p.State(image[u], x)
			}
			if !ok {
				continue
			}
			image[v] = x
			used[x] = true
			extend(v + 1)
			used[x] = false
		}
	}
	extend(0)
	return count
}

// Occurrences counts the distinct occurrences of p in host: embeddings up to automorphisms of p.
func Occurrences(p Pattern, host Adjacency) int64 {
	return Embeddings(p, host) / Automorphisms(p)
}

// Supergraphs returns one canonical representative for each isomorphism class of graphs on the
// vertices of g that contain g, g's own class included. Representatives are ordered by edge
// count and then by key.
func Supergraphs(g Graph) []Graph {
	type entry struct {
		key   string
		graph Graph
	}
	seen := map[string]bool{}
	start := Canonical(EdgePattern(g)).Edges
	frontier := []entry{{key: GraphKey(start), graph: start}}
	seen[frontier[0].key] = true

	var out []entry
	for len(frontier) > 0 {
		out = append(out, frontier...)
		var next []entry
		for _, e := range frontier {
			for _, pair := range e.graph.NonEdges() {
				h := e.graph.Clone()
				h.AddEdge(pair[0], pair[1])
				c := Canonical(EdgePattern(h)).Edges
				key := GraphKey(c)
				if seen[key] {
					continue
				}
				seen[key] = true
				next = append(next, entry{key: key, graph: c})
			}
		}
		slices.SortFunc(next, func(a, b entry) int {
			if a.key < b.key {
				return -1
			}
			if a.key > b.key {
				return 1
			}
			return 0
		})
		frontier = next
	}

	graphs := make([]Graph, len(out))
	for i, e := range out {
		graphs[i] = e.graph
	}
	return graphs
}
