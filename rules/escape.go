package rules

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/graph"
	"github.com/cottand/motifsat/term"
)

const (
	triangleMotif       = "(Match (-- a b) (-- a c) (-- b c))"
	tailedTriangleMotif = "(Match (-- a d) (-- b c) (-- b d) (-- c d))"
	cycle4Motif         = "(Match (-- a b) (-- a c) (-- b d) (-- c d))"
	diamondMotif        = "(Match (-- a c) (-- a d) (-- b c) (-- b d) (-- c d))"
	clique4Motif        = "(Match (-- a b) (-- a c) (-- a d) (-- b c) (-- b d) (-- c d))"
)

// escape is a closed form for the count of one edge-only motif.
type escape struct {
	name  string
	motif string
	parts []escapePart
}

type escapePart struct {
	n       int64
	formula term.Formula
	motif   string
}

var escapeTable = []escape{
	{"3star", "(Match (-- a d) (-- b d) (-- c d))", []escapePart{{n: 1, formula: term.Fa}}},
	{"diamond", diamondMotif, []escapePart{{n: 1, formula: term.Fe}}},
	{"3path", "(Match (-- a c) (-- b d) (-- c d))", []escapePart{
		{n: -3, motif: triangleMotif},
		{n: 1, formula: term.Fb},
	}},
	{"tailed-triangle", tailedTriangleMotif, []escapePart{{n: 1, formula: term.Fc}}},
	{"N1", "(Match (-- a e) (-- b e) (-- c e) (-- d e))", []escapePart{{n: 1, formula: term.F1}}},
	{"N2", "(Match (-- a d) (-- b e) (-- c e) (-- d e))", []escapePart{
		{n: 1, formula: term.F2},
		{n: -2, motif: tailedTriangleMotif},
	}},
	{"N3", "(Match (-- a d) (-- b e) (-- c d) (-- c e))", []escapePart{
		{n: 1, formula: term.F3},
		{n: -4, motif: cycle4Motif},
		{n: -2, motif: tailedTriangleMotif},
		{n: -3, motif: triangleMotif},
	}},
	{"N4", "(Match (-- a e) (-- b e) (-- c d) (-- c e) (-- d e))", []escapePart{{n: 1, formula: term.F4}}},
	{"N5", "(Match (-- a d) (-- b c) (-- b e) (-- c e) (-- d e))", []escapePart{
		{n: 1, formula: term.F5},
		{n: -4, motif: diamondMotif},
	}},
	{"N6", "(Match (-- a d) (-- b e) (-- c d) (-- c e) (-- d e))", []escapePart{
		{n: 1, formula: term.F6},
		{n: -2, motif: diamondMotif},
	}},
	{"N7", "(Match (-- a e) (-- b c) (-- b d) (-- c e) (-- d e))", []escapePart{
		{n: 1, formula: term.F7},
		{n: -2, motif: diamondMotif},
	}},
	{"N9", "(Match (-- a b) (-- a e) (-- b e) (-- c d) (-- c e) (-- d e))", []escapePart{
		{n: 1, formula: term.F9},
		{n: -2, motif: diamondMotif},
	}},
	{"N10", "(Match (-- a c) (-- b d) (-- b e) (-- c d) (-- c e) (-- d e))", []escapePart{
		{n: 1, formula: term.F10},
		{n: -4, motif: clique4Motif},
	}},
	{"N11", "(Match (-- a e) (-- b d) (-- b e) (-- c d) (-- c e) (-- d e))", []escapePart{{n: 1, formula: term.F11}}},
	{"N14", "(Match (-- a d) (-- a e) (-- b d) (-- b e) (-- c d) (-- c e) (-- d e))", []escapePart{{n: 1, formula: term.F14}}},
}

// compiledEscape is an escape with its motifs in canonical form.
type compiledEscape struct {
	name  string
	key   string
	parts []part
}

var (
	escapes    = compileEscapes()
	escapeKeys = func() *set.Set[string] {
		keys := set.New[string](len(escapes))
		for _, e := range escapes {
			keys.Insert(e.key)
		}
		return keys
	}()
)

func compileEscapes() []compiledEscape {
	canonical := func(s string) (graph.Pattern, *term.Term) {
		p, err := term.ToPattern(term.MustParse(s))
		if err != nil {
			panic(fmt.Sprintf("rules: escape motif %s: %v", s, err))
		}
		c := graph.Canonical(p)
		return c, term.FromPattern(c)
	}
	out := make([]compiledEscape, len(escapeTable))
	for i, e := range escapeTable {
		p, _ := canonical(e.motif)
		c := compiledEscape{name: e.name, key: graph.Key(p)}
		for _, ep := range e.parts {
			pt := part{n: ep.n, formula: ep.formula}
			if ep.motif != "" {
				_, pt.motif = canonical(ep.motif)
			}
			c.parts = append(c.parts, pt)
		}
		out[i] = c
	}
	return out
}

// isEscape reports whether some escape rule covers p.
func isEscape(p graph.Pattern) bool {
	return p.IsEdgeOnly() && escapeKeys.Contains(graph.Key(p))
}

// Escapes returns one rule per escape motif. Each replaces Morph(pi, M), for M isomorphic to its
// motif, with the closed form of M's count.
func Escapes() []Rule {
	rules := make([]Rule, len(escapes))
	for i, e := range escapes {
		rules[i] = Rule{
			Name:    "escape-" + e.name,
			Pattern: egraph.MustParsePattern("(Morph ?pi ?pat)"),
			Apply: func(_ context.Context, s *Session, g *egraph.EGraph, subst egraph.Subst) ([]egraph.ClassID, error) {
				return e.apply(s, g, subst)
			},
		}
	}
	return rules
}

func (e compiledEscape) apply(s *Session, g *egraph.EGraph, subst egraph.Subst) ([]egraph.ClassID, error) {
	pi, okPi := g.PiOf(subst["?pi"])
	match, okMatch := g.MatchOf(subst["?pat"])
	if !okPi || !okMatch {
		return nil, nil
	}
	p, err := term.ToPattern(match)
	if err != nil {
		return nil, err
	}
	if !p.IsEdgeOnly() || graph.Key(p) != e.key {
		return nil, nil
	}
	expr := sum(pi, e.parts)
	if err := s.Register(expr); err != nil {
		return nil, err
	}
	return []egraph.ClassID{g.AddTerm(expr)}, nil
}
