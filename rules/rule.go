package rules

import (
	"context"
	"fmt"
	"slices"

	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/term"
)

// Applier computes the replacements for one match of a rule. It inserts them into g and returns
// their classes; the caller merges each of them with the matched class. Returning no classes
// means the rule does not apply to this match.
type Applier func(ctx context.Context, s *Session, g *egraph.EGraph, subst egraph.Subst) ([]egraph.ClassID, error)

// Rule is a pattern to search for and what to do with each match.
type Rule struct {
	Name    string
	Pattern *egraph.Pattern
	Apply   Applier
}

func (r Rule) String() string { return r.Name }

// Rewrite builds a rule replacing lhs with rhs. Every variable of rhs must occur in lhs.
func Rewrite(name, lhs, rhs string) Rule {
	from := egraph.MustParsePattern(lhs)
	to, err := term.Read(rhs)
	if err != nil {
		panic(fmt.Sprintf("rules: rule %s: %v", name, err))
	}
	for _, v := range egraph.NewPattern(to).Vars() {
		if !slices.Contains(from.Vars(), v) {
			panic(fmt.Sprintf("rules: rule %s: variable %s is not bound by %s", name, v, lhs))
		}
	}
	return Rule{
		Name:    name,
		Pattern: from,
		Apply: func(_ context.Context, _ *Session, g *egraph.EGraph, subst egraph.Subst) ([]egraph.ClassID, error) {
			id, err := g.Instantiate(to, subst)
			if err != nil {
				return nil, err
			}
			return []egraph.ClassID{id}, nil
		},
	}
}

// All returns every rule of the optimizer: the algebraic laws, the dedup laws, the escapes and
// Morph expansion.
func All() []Rule {
	rules := Algebra()
	rules = append(rules, Dedup()...)
	rules = append(rules, Escapes()...)
	rules = append(rules, MorphExpansion())
	return rules
}

func addNum(g *egraph.EGraph, n int64) egraph.ClassID {
	return g.Add(egraph.Node{Op: term.OpNum, Num: n})
}

func addCount(g *egraph.EGraph, n int64, e egraph.ClassID) egraph.ClassID {
	return g.Add(egraph.Node{Op: term.OpCount, Kids: []egraph.ClassID{addNum(g, n), e}})
}
