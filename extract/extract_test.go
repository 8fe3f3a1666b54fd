package extract

import (
	"github.com/cottand/motifsat/costs"
	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/term"
	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const (
	triangle = "(Match (-- a b) (-- a c) (-- b c))"
	path3    = "(Match (-- a b) (-- b c))"
)

type mapCosts map[string]float64

func (m mapCosts) Lookup(key string) (float64, bool) {
	c, ok := m[key]
	return c, ok
}

var table = mapCosts{
	triangle:                   30,
	path3:                      50,
	costs.FormulaKey(term.F4):  10,
	costs.FormulaKey(term.F14): 5,
}

func morph(match string) *term.Term {
	return term.Morph(term.Pi(0), term.MustParse(match))
}

func TestTriangleUnchanged(t *testing.T) {
	g := egraph.New()
	in := term.Count(1, morph(triangle))
	id := g.AddTerm(in)

	got, cost, err := New(g, table).Best(id)
	require.NoError(t, err)
	assert.Equal(t, in.String(), got.String())
	assert.Equal(t, 30.0, cost)
}

func TestSumsChildren(t *testing.T) {
	g := egraph.New()
	in := term.Union(term.Count(1, morph(triangle)), term.Count(-2, morph(path3)))
	id := g.AddTerm(in)
	c, ok := New(g, table).Cost(id)
	assert.True(t, ok)
	assert.Equal(t, 80.0, c)
}

func TestMissingKeysAreFree(t *testing.T) {
	g := egraph.New()
	id := g.AddTerm(term.Union(
		term.Count(1, morph("(Match (-- a b) (-- a c) (-- a d))")),
		term.Count(1, term.Const(term.Pi(0), term.Fa)),
	))
	c, ok := New(g, table).Cost(id)
	assert.True(t, ok)
	assert.Zero(t, c)
}

func TestPicksCheapest(t *testing.T) {
	g := egraph.New()
	expensive := term.Count(1, morph(path3))
	cheap := term.Count(1, term.Const(term.Pi(0), term.F4))
	id := g.AddTerm(expensive)
	g.Union(id, g.AddTerm(cheap))
	g.Rebuild()

	got, cost, err := New(g, table).Best(id)
	require.NoError(t, err)
	assert.Equal(t, cheap.String(), got.String())
	assert.Equal(t, 10.0, cost)

	free := Overlay{Base: table, Free: set.From([]string{path3})}
	got, cost, err = New(g, free).Best(id)
	require.NoError(t, err)
	assert.Equal(t, expensive.String(), got.String())
	assert.Zero(t, cost)
	// the overlay leaves the base untouched
	c, _ := table.Lookup(path3)
	assert.Equal(t, 50.0, c)
}

func TestTiesKeepFirstNode(t *testing.T) {
	g := egraph.New()
	first := term.Count(1, term.Const(term.Pi(0), term.Fa))
	second := term.Count(1, term.Const(term.Pi(0), term.Fb))
	id := g.AddTerm(first)
	g.Union(id, g.AddTerm(second))
	g.Rebuild()

	got, _, err := New(g, table).Best(id)
	require.NoError(t, err)
	assert.Equal(t, first.String(), got.String())
}

func TestSelfReferentialClass(t *testing.T) {
	g := egraph.New()
	a := term.Count(1, morph(triangle))
	b := term.Count(1, term.Const(term.Pi(0), term.F0))
	ida := g.AddTerm(a)
	union := g.AddTerm(term.Union(a, b))
	// a = a + 0 puts a cycle through the class of a
	g.Union(ida, union)
	g.Rebuild()

	got, cost, err := New(g, table).Best(ida)
	require.NoError(t, err)
	assert.Equal(t, a.String(), got.String())
	assert.Equal(t, 30.0, cost)
}

func TestFormulaCost(t *testing.T) {
	g := egraph.New()
	id := g.AddTerm(term.Union(
		term.Count(1, term.Const(term.Pi(0), term.F14)),
		term.Count(-2, term.Const(term.Pi(0), term.F4)),
	))
	c, _ := New(g, table).Cost(id)
	assert.Equal(t, 15.0, c)
}
