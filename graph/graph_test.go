package graph

import (
	"bytes"
	"fmt"
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

func fromEdges(n int, edges ...[2]int) Graph {
	g := New(n)
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

var (
	triangle = fromEdges(3, [2]int{0, 1}, [2]int{0, 2}, [2]int{1, 2})
	path3    = fromEdges(3, [2]int{0, 1}, [2]int{1, 2})
	path4    = fromEdges(4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})
	star3    = fromEdges(4, [2]int{0, 3}, [2]int{1, 3}, [2]int{2, 3})
	cycle4   = fromEdges(4, [2]int{0, 1}, [2]int{0, 2}, [2]int{1, 3}, [2]int{2, 3})
)

func TestGraphBasics(t *testing.T) {
	g := path4.Clone()
	assert.Equal(t, 3, g.NumEdges())
	assert.Equal(t, []int{0, 2}, g.Neighbors(1))
	assert.True(t, g.HasEdge(2, 1))
	assert.False(t, g.HasEdge(0, 3))
	assert.False(t, g.HasEdge(0, 7))

	g.AddEdge(0, 3)
	assert.True(t, g.Contains(path4))
	assert.False(t, path4.Contains(g))
	assert.Equal(t, 3, path4.NumEdges(), "clone must not share storage")

	assert.True(t, Complete(4).IsComplete())
	assert.Equal(t, 3, len(path4.NonEdges()))
}

func TestPatternStates(t *testing.T) {
	p := NewPattern(3)
	p.AddEdge(0, 1)
	p.AddAntiEdge(1, 2)
	assert.Equal(t, Adjacent, p.State(1, 0))
	assert.Equal(t, NonAdjacent, p.State(2, 1))
	assert.Equal(t, Unspecified, p.State(0, 2))
	assert.False(t, p.IsFullyInduced())
	assert.False(t, p.IsEdgeOnly())
	assert.True(t, p.EdgeOnly().IsEdgeOnly())
	assert.True(t, p.Induced().IsFullyInduced())

	assert.Panics(t, func() { p.AddEdge(1, 2) })
}

func TestCanonicalIsInvariant(t *testing.T) {
	perms := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}
	for _, g := range []Graph{path4, star3, cycle4} {
		for _, perm := range perms {
			t.Run(fmt.Sprintf("%v/%v", g, perm), func(t *testing.T) {
				relabelled := g.Permute(perm)
				assert.Equal(t, Canonical(EdgePattern(g)), Canonical(EdgePattern(relabelled)))
				assert.Equal(t, GraphKey(g), GraphKey(relabelled))
			})
		}
	}
}

func TestCanonicalSeparatesClasses(t *testing.T) {
	keys := map[string]Graph{}
	for _, g := range []Graph{path4, star3, cycle4, Complete(4), fromEdges(4, [2]int{0, 1})} {
		key := GraphKey(g)
		_, dup := keys[key]
		assert.False(t, dup, "key %s shared by %v and %v", key, g, keys[key])
		keys[key] = g
	}

	edgeOnly := EdgePattern(path3)
	induced := InducedPattern(path3)
	assert.NotEqual(t, Key(edgeOnly), Key(induced))
}

func TestAutomorphisms(t *testing.T) {
	testCases := []struct {
		name     string
		p        Pattern
		expected int64
	}{
		{"triangle", EdgePattern(triangle), 6},
		{"path4", EdgePattern(path4), 2},
		{"star3", EdgePattern(star3), 6},
		{"cycle4", EdgePattern(cycle4), 8},
		{"K4", EdgePattern(Complete(4)), 24},
		{"induced path3", InducedPattern(path3), 2},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Automorphisms(testCase.p))
		})
	}
}

func TestOccurrences(t *testing.T) {
	testCases := []struct {
		name     string
		p        Pattern
		host     Graph
		expected int64
	}{
		{"triangles in K4", EdgePattern(triangle), Complete(4), 4},
		{"paths in triangle", EdgePattern(path3), triangle, 3},
		{"induced paths in triangle", InducedPattern(path3), triangle, 0},
		{"induced paths in path4", InducedPattern(path3), path4, 2},
		{"4-cycles in K4", EdgePattern(cycle4), Complete(4), 3},
		{"stars in star", EdgePattern(star3), star3, 1},
		{"pattern larger than host", EdgePattern(Complete(4)), triangle, 0},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Occurrences(testCase.p, testCase.host))
		})
	}
}

func TestSupergraphs(t *testing.T) {
	testCases := []struct {
		name     string
		g        Graph
		expected int
	}{
		{"path3", path3, 2},
		{"star3", star3, 4},
		{"path4", path4, 5},
		{"empty on four vertices", New(4), 11},
		{"K4", Complete(4), 1},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			supers := Supergraphs(testCase.g)
			assert.Len(t, supers, testCase.expected)
			assert.Equal(t, GraphKey(testCase.g), GraphKey(supers[0]))
			for _, h := range supers {
				assert.Positive(t, Embeddings(EdgePattern(testCase.g), h), "%v is not a supergraph", h)
			}
		})
	}
}

func TestMinCut(t *testing.T) {
	assert.Len(t, MinCut(path4, 0, 3), 1)
	assert.Len(t, MinCut(cycle4, 0, 3), 2)
	assert.Len(t, MinCut(Complete(4), 0, 3), 3)
	assert.Empty(t, MinCut(fromEdges(4, [2]int{0, 1}), 0, 3))
}

func TestFragmentEstimate(t *testing.T) {
	data := NewDataGraph(3)
	data.AddEdge(0, 1)
	data.AddEdge(1, 2)
	data.AddEdge(0, 2)

	edge := fromEdges(2, [2]int{0, 1})
	assert.Equal(t, 6.0, FragmentEstimate(data, edge))
	assert.Equal(t, 3.0, FragmentEstimate(data, New(1)))
	assert.Equal(t, 6.0, FragmentEstimate(data, triangle))
	assert.Zero(t, FragmentEstimate(data, star3))
}

func TestDIMACSRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.NoError(t, WriteDIMACS(buf, cycle4))
	assert.Equal(t, "p edge 4 4\ne 1 2\ne 1 3\ne 2 4\ne 3 4\n", buf.String())

	g, scalars, err := ReadDIMACS(strings.NewReader("c comment\n-3\n" + buf.String()))
	assert.NoError(t, err)
	assert.Equal(t, []int64{-3}, scalars)
	assert.True(t, g.Equal(cycle4))

	_, _, err = ReadDIMACS(strings.NewReader("e 1 2\n"))
	assert.Error(t, err)
	_, _, err = ReadDIMACS(strings.NewReader("p edge 2 1\ne 1 3\n"))
	assert.Error(t, err)
}

func TestPatternEdges(t *testing.T) {
	p := EdgePattern(path3)
	p.AddAntiEdge(0, 2)
	buf := &bytes.Buffer{}
	assert.NoError(t, WritePatternEdges(buf, p))
	assert.Equal(t, "1 2\n2 3\n1 3 1\n", buf.String())
}

func TestPermutationFiles(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.NoError(t, WritePermutation(buf, []int{2, 0, 1}))
	perm, err := ReadPermutation(buf, 3)
	assert.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, perm)

	_, err = ReadPermutation(strings.NewReader("0 0\n0 1\n"), 2)
	assert.Error(t, err)
	_, err = ReadPermutation(strings.NewReader("0 0\n"), 2)
	assert.Error(t, err)
}

func TestReadEdgeList(t *testing.T) {
	input := "# header\n10 20\n20 30\n\n30 10 7\n10 20\n10 10\n"
	d, err := ReadEdgeList(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, 3, d.N())
	assert.Equal(t, 3, d.NumEdges())
	assert.Equal(t, int64(1), Occurrences(EdgePattern(triangle), d))

	_, err = ReadEdgeList(strings.NewReader("1\n"))
	assert.Error(t, err)
	_, err = ReadEdgeList(strings.NewReader("a b\n"))
	assert.Error(t, err)
}
