package graph

import "math"

// MinCut returns the edges of a minimum s-t cut of g, every edge having unit capacity in both
// directions. Each cut edge is reported as (u, v) with u on the side of s.
func MinCut(g Graph, s, t int) [][2]int {
	n := g.N()
	residual := make([][]int, n)
	for u := range residual {
		residual[u] = make([]int, n)
		for _, v := range g.Neighbors(u) {
			residual[u][v] = 1
		}
	}

	parent := make([]int, n)
	reach := func() bool {
		for i := range parent {
			parent[i] = -1
		}
		parent[s] = s
		queue := []int{s}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for v := 0; v < n; v++ {
				if parent[v] == -1 && residual[u][v] > 0 {
					parent[v] = u
					queue = append(queue, v)
				}
			}
		}
		return parent[t] != -1
	}

	for reach() {
		for v := t; v != s; v = parent[v] {
			u := parent[v]
			residual[u][v]--
			residual[v][u]++
		}
	}

	var cut [][2]int
	for _, e := range g.Edges() {
		u, v := e[0], e[1]
		switch {
		case parent[u] != -1 && parent[v] == -1:
			cut = append(cut, [2]int{u, v})
		case parent[v] != -1 && parent[u] == -1:
			cut = append(cut, [2]int{v, u})
		}
	}
	return cut
}

// FragmentEstimate approximates how much work matching p against data takes. The pattern is cut
// between its first and last vertex, and for the first cut edge (u, v) the estimate sums, over
// ordered adjacent pairs (x, y) of data, the number of ways to pick the remaining neighbours of
// u around x and of v around y.
func FragmentEstimate(data *DataGraph, p Graph) float64 {
	if p.N() < 2 || p.NumEdges() == 0 {
		return float64(data.N())
	}
	cut := MinCut(p, 0, p.N()-1)
	if len(cut) == 0 {
		cut = p.Edges()
	}
	u, v := cut[0][0], cut[0][1]
	needU, needV := p.Degree(u)-1, p.Degree(v)-1

	total := 0.0
	for x := 0; x < data.N(); x++ {
		dx := data.Degree(x) - 1
		if dx < needU {
			continue
		}
		left := binomial(dx, needU)
		for _, y := range data.Neighbors(x) {
			dy := data.Degree(y) - 1
			if dy < needV {
				continue
			}
			total += left * binomial(dy, needV)
		}
	}
	return total
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	lg := func(x int) float64 {
		v, _ := math.Lgamma(float64(x + 1))
		return v
	}
	return math.Round(math.Exp(lg(n) - lg(k) - lg(n-k)))
}
