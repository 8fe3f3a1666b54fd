package rules

import (
	"context"

	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/term"
	"github.com/cottand/motifsat/util"
)

// Dedup returns the rules summing two counts of the same Morph pattern or the same formula.
func Dedup() []Rule {
	return []Rule{
		{
			Name:    "union-dedup-morph",
			Pattern: egraph.MustParsePattern("(Union (Count ?n1 (Morph ?pi1 ?pat)) (Count ?n2 (Morph ?pi2 ?pat)))"),
			Apply: func(_ context.Context, s *Session, g *egraph.EGraph, subst egraph.Subst) ([]egraph.ClassID, error) {
				return dedup(s, g, subst, term.OpMorph, subst["?pat"])
			},
		},
		{
			Name:    "union-dedup-const",
			Pattern: egraph.MustParsePattern("(Union (Count ?n1 (Const ?pi1 ?f)) (Count ?n2 (Const ?pi2 ?f)))"),
			Apply: func(_ context.Context, s *Session, g *egraph.EGraph, subst egraph.Subst) ([]egraph.ClassID, error) {
				return dedup(s, g, subst, term.OpConst, subst["?f"])
			},
		},
	}
}

// dedup replaces n1*X(pi1, body) + n2*X(pi2, body) with (n1+n2)*X(pi1 ∪ pi2, body). A zero sum
// collapses to the F0 constant of the merged provenance.
func dedup(s *Session, g *egraph.EGraph, subst egraph.Subst, op term.Op, body egraph.ClassID) ([]egraph.ClassID, error) {
	n1, ok1 := g.NumOf(subst["?n1"])
	n2, ok2 := g.NumOf(subst["?n2"])
	pi1, okPi1 := g.PiOf(subst["?pi1"])
	pi2, okPi2 := g.PiOf(subst["?pi2"])
	if !ok1 || !ok2 || !okPi1 || !okPi2 {
		return nil, nil
	}
	sum, ok := util.AddInt64(n1, n2)
	if !ok {
		s.Logger.Debug("coefficient overflow", "op", op, "n1", n1, "n2", n2)
		return nil, nil
	}

	pi := subst["?pi1"]
	if g.Find(subst["?pi1"]) != g.Find(subst["?pi2"]) && !pi1.Equal(pi2) {
		merged, err := term.MergePi(pi1, pi2)
		if err != nil {
			return nil, err
		}
		pi = g.AddTerm(merged)
		pi1 = merged
	}

	// a zero sum over different provenances also becomes F0, attributed to the merged provenance
	if sum == 0 {
		zero := term.Const(pi1, term.F0)
		if err := s.Register(zero); err != nil {
			return nil, err
		}
		return []egraph.ClassID{addCount(g, 1, g.AddTerm(zero))}, nil
	}
	inner := g.Add(egraph.Node{Op: op, Kids: []egraph.ClassID{pi, body}})
	return []egraph.ClassID{addCount(g, sum, inner)}, nil
}
