package graph

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// signature is an isomorphism-invariant vertex colouring used to prune the labelling search.
type signature struct {
	deg, anti, neighbourDeg int
}

func compareSignatures(a, b signature) int {
	return cmp.Or(cmp.Compare(a.deg, b.deg), cmp.Compare(a.anti, b.anti), cmp.Compare(a.neighbourDeg, b.neighbourDeg))
}

func signatures(p Pattern) []signature {
	sigs := make([]signature, p.N())
	for v := range sigs {
		sigs[v] = signature{deg: p.Edges.Degree(v), anti: p.Anti.Degree(v)}
		for _, w := range p.Edges.Neighbors(v) {
			sigs[v].neighbourDeg += p.Edges.Degree(w)
		}
	}
	return sigs
}

// CanonicalLabel returns a permutation perm such that p.Permute(perm) is the canonical form of p.
// Isomorphic patterns have identical canonical forms.
//
// Vertices are placed by non-decreasing signature, and among the placements allowed by the
// signatures the one with the lexicographically largest column-major pair code wins.
func CanonicalLabel(p Pattern) []int {
	n := p.N()
	sigs := signatures(p)
	slots := slices.Clone(sigs)
	slices.SortFunc(slots, compareSignatures)

	var (
		best    []byte
		bestInv []int
		inv     = make([]int, n) // position -> vertex
		used    = make([]bool, n)
		code    = make([]byte, 0, n*(n-1)/2)
	)

	var search func(pos int)
	search = func(pos int) {
		if pos == n {
			if best == nil || slices.Compare(code, best) > 0 {
				best = slices.Clone(code)
				bestInv = slices.Clone(inv)
			}
			return
		}
		for v := 0; v < n; v++ {
			if used[v] || sigs[v] != slots[pos] {
				continue
			}
			mark := len(code)
			for i := 0; i < pos; i++ {
				code = append(code, byte(p.State(inv[i], v)))
			}
			if best != nil && slices.Compare(code, best[:len(code)]) < 0 {
				code = code[:mark]
				continue
			}
			used[v] = true
			inv[pos] = v
			search(pos + 1)
			used[v] = false
			code = code[:mark]
		}
	}
	search(0)

	perm := make([]int, n)
	for pos, v := range bestInv {
		perm[v] = pos
	}
	return perm
}

// Canonical returns the canonical form of p.
func Canonical(p Pattern) Pattern {
	return p.Permute(CanonicalLabel(p))
}

// Key is a string that identifies the isomorphism class of p.
func Key(p Pattern) string {
	c := Canonical(p)
	sb := &strings.Builder{}
	sb.WriteString(strconv.Itoa(c.N()))
	sb.WriteByte(':')
	for j := 1; j < c.N(); j++ {
		for i := 0; i < j; i++ {
			sb.WriteByte('0' + byte(c.State(i, j)))
		}
	}
	return sb.String()
}

// GraphKey is Key for a pattern without anti-edges.
func GraphKey(g Graph) string {
	return Key(EdgePattern(g))
}

func Isomorphic(a, b Pattern) bool {
	return a.N() == b.N() && a.Edges.NumEdges() == b.Edges.NumEdges() && Key(a) == Key(b)
}
