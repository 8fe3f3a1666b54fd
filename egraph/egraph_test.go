package egraph

import (
	"github.com/cottand/motifsat/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const (
	triangle = "(Match (-- a b) (-- a c) (-- b c))"
	path     = "(Match (-- a b) (-- b c))"
)

func morph(pi, match string) string {
	return "(Morph " + pi + " " + match + ")"
}

func TestAddIsIdempotent(t *testing.T) {
	g := New()
	expr := term.MustParse("(Union (Count 1 " + morph("(Pi 0)", triangle) + ") (Count 2 " + morph("(Pi 1)", path) + "))")
	first := g.AddTerm(expr)
	nodes, classes := g.NumNodes(), g.NumClasses()

	second := g.AddTerm(term.MustParse(expr.String()))
	assert.Equal(t, first, second)
	assert.Equal(t, nodes, g.NumNodes())
	assert.Equal(t, classes, g.NumClasses())

	// shared leaves are stored once
	one := g.AddTerm(term.Num(1))
	id, ok := g.Lookup(term.MustParse("(Count 1 " + morph("(Pi 0)", triangle) + ")"))
	require.True(t, ok)
	assert.Equal(t, one, g.Nodes(id)[0].Kids[0])
}

func TestUnionAndCongruence(t *testing.T) {
	g := New()
	countTriangle := term.MustParse("(Count 3 " + morph("(Pi 0)", triangle) + ")")
	countPath := term.MustParse("(Count 3 " + morph("(Pi 0)", path) + ")")
	a := g.AddTerm(countTriangle)
	b := g.AddTerm(countPath)
	assert.NotEqual(t, a, b)

	tri, _ := g.Lookup(term.MustParse(triangle))
	pth, _ := g.Lookup(term.MustParse(path))
	assert.True(t, g.Union(tri, pth))
	assert.False(t, g.Union(pth, tri))
	assert.Positive(t, g.Rebuild())

	assert.Equal(t, g.Find(a), g.Find(b))
	assert.True(t, g.Equivalent(countTriangle, countPath))
	assert.Len(t, g.Nodes(a), 1, "congruent nodes are deduplicated")
}

func TestAddAfterUnionBeforeRebuild(t *testing.T) {
	g := New()
	x := g.AddTerm(term.Num(1))
	y := g.AddTerm(term.Num(2))
	fy := g.AddTerm(term.MustParse("(Pi 2)"))
	g.Union(x, y)
	fx := g.AddTerm(term.MustParse("(Pi 1)"))
	g.Rebuild()
	assert.Equal(t, g.Find(fx), g.Find(fy))
}

func TestResolvePicksSmallest(t *testing.T) {
	g := New()
	big := g.AddTerm(term.MustParse("(Union (Count 1 " + morph("(Pi 0)", triangle) + ") (Count 1 (Const (Pi 0) F0)))"))
	small := g.AddTerm(term.MustParse("(Count 1 (Const (Pi 0) Fa))"))
	g.Union(big, small)
	g.Rebuild()

	resolved, err := g.Resolve(big)
	require.NoError(t, err)
	assert.Equal(t, "(Count 1 (Const (Pi 0) Fa))", resolved.String())
}

func TestResolveCycle(t *testing.T) {
	g := New()
	leaf := g.AddTerm(term.MustParse(triangle))
	wrapped := g.AddTerm(term.MustParse("(Count 1 " + triangle + ")"))
	g.Union(leaf, wrapped)
	g.Rebuild()

	resolved, err := g.Resolve(wrapped)
	require.NoError(t, err)
	assert.Equal(t, triangle, resolved.String())
}

func TestSearchNonLinear(t *testing.T) {
	g := New()
	same := g.AddTerm(term.MustParse("(Union (Count 1 " + morph("(Pi 0)", triangle) + ") (Count 2 " + morph("(Pi 1)", triangle) + "))"))
	g.AddTerm(term.MustParse("(Union (Count 1 " + morph("(Pi 0)", triangle) + ") (Count 2 " + morph("(Pi 1)", path) + "))"))

	pattern := MustParsePattern("(Union (Count ?n1 (Morph ?pi1 ?pat)) (Count ?n2 (Morph ?pi2 ?pat)))")
	assert.Equal(t, []string{"?n1", "?pi1", "?pat", "?n2", "?pi2"}, pattern.Vars())

	matches := pattern.Search(g)
	require.Len(t, matches, 1)
	assert.Equal(t, g.Find(same), matches[0].Class)

	n2, ok := g.NumOf(matches[0].Subst["?n2"])
	assert.True(t, ok)
	assert.Equal(t, int64(2), n2)
	pi, ok := g.PiOf(matches[0].Subst["?pi2"])
	assert.True(t, ok)
	assert.Equal(t, "(Pi 1)", pi.String())
	match, ok := g.MatchOf(matches[0].Subst["?pat"])
	assert.True(t, ok)
	assert.Equal(t, triangle, match.String())
}

func TestInstantiate(t *testing.T) {
	g := New()
	root := g.AddTerm(term.MustParse("(Union (Count 1 (Const (Pi 0) Fa)) (Count 2 (Const (Pi 0) Fb)))"))
	pattern := MustParsePattern("(Union ?a ?b)")
	matches := pattern.Search(g)
	require.Len(t, matches, 1)

	rhs, err := term.Read("(Union ?b ?a)")
	require.NoError(t, err)
	id, err := g.Instantiate(rhs, matches[0].Subst)
	require.NoError(t, err)
	g.Union(root, id)
	g.Rebuild()
	assert.True(t, g.Equivalent(
		term.MustParse("(Union (Count 2 (Const (Pi 0) Fb)) (Count 1 (Const (Pi 0) Fa)))"),
		term.MustParse("(Union (Count 1 (Const (Pi 0) Fa)) (Count 2 (Const (Pi 0) Fb)))"),
	))

	unbound, err := term.Read("(Union ?c ?a)")
	require.NoError(t, err)
	_, err = g.Instantiate(unbound, matches[0].Subst)
	assert.ErrorContains(t, err, "unbound variable ?c")
}

func TestFormulaOf(t *testing.T) {
	g := New()
	id := g.AddTerm(term.MustParse("(Const (Pi 0 3) F7)"))
	pi, f, ok := g.FormulaOf(id)
	require.True(t, ok)
	assert.Equal(t, "(Pi 0 3)", pi.String())
	assert.Equal(t, term.F7, f)

	_, _, ok = g.FormulaOf(g.AddTerm(term.Num(4)))
	assert.False(t, ok)
}
