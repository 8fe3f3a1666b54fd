package rules

import (
	"context"

	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/util"
)

// Algebra returns the laws of the count semiring: Union is commutative and associative, Count
// distributes over Union, and nested Counts multiply.
func Algebra() []Rule {
	return []Rule{
		Rewrite("union-switch", "(Union ?a ?b)", "(Union ?b ?a)"),
		Rewrite("union-assoc", "(Union (Union ?a ?b) ?c)", "(Union ?a (Union ?b ?c))"),
		Rewrite("count-dist", "(Count ?n (Union ?a ?b))", "(Union (Count ?n ?a) (Count ?n ?b))"),
		{
			Name:    "count-mult",
			Pattern: egraph.MustParsePattern("(Count ?n1 (Count ?n2 ?e))"),
			Apply:   countMult,
		},
	}
}

func countMult(_ context.Context, s *Session, g *egraph.EGraph, subst egraph.Subst) ([]egraph.ClassID, error) {
	n1, ok1 := g.NumOf(subst["?n1"])
	n2, ok2 := g.NumOf(subst["?n2"])
	if !ok1 || !ok2 {
		return nil, nil
	}
	product, ok := util.MulInt64(n1, n2)
	if !ok {
		s.Logger.Debug("coefficient overflow", "rule", "count-mult", "n1", n1, "n2", n2)
		return nil, nil
	}
	return []egraph.ClassID{addCount(g, product, subst["?e"])}, nil
}
