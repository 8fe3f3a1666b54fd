package optimizer

import (
	"fmt"

	"github.com/benbjohnson/immutable"

	"github.com/cottand/motifsat/costs"
	"github.com/cottand/motifsat/term"
	"github.com/cottand/motifsat/util"
)

// Coefficients maps the cost key of each motif or formula of an expression to its total
// coefficient, in key order.
type Coefficients = *immutable.SortedMap[string, int64]

type leaf struct {
	key   string
	match *term.Term
	f     term.Formula
}

// flatten expands an expression into a linear combination of motifs and formulas: Counts
// multiply, Unions add, and F0 is dropped. leaves receives the motif or formula of every key.
func flatten(t *term.Term, scale int64, acc Coefficients, leaves map[string]leaf) (Coefficients, error) {
	switch t.Op {
	case term.OpCount:
		n, err := t.Coefficient()
		if err != nil {
			return nil, err
		}
		scaled, ok := util.MulInt64(scale, n)
		if !ok {
			return nil, fmt.Errorf("coefficient overflow flattening %s", t)
		}
		return flatten(t.Args[1], scaled, acc, leaves)
	case term.OpUnion:
		acc, err := flatten(t.Args[0], scale, acc, leaves)
		if err != nil {
			return nil, err
		}
		return flatten(t.Args[1], scale, acc, leaves)
	case term.OpMorph:
		key := costs.MatchKey(t.Args[1])
		leaves[key] = leaf{key: key, match: t.Args[1]}
		return add(acc, key, scale, t)
	case term.OpConst:
		f, err := t.Formula()
		if err != nil {
			return nil, err
		}
		if f.IsZero() {
			return acc, nil
		}
		key := costs.FormulaKey(f)
		leaves[key] = leaf{key: key, f: f}
		return add(acc, key, scale, t)
	}
	return nil, fmt.Errorf("cannot flatten %s", t)
}

func add(acc Coefficients, key string, n int64, at *term.Term) (Coefficients, error) {
	cur, _ := acc.Get(key)
	sum, ok := util.AddInt64(cur, n)
	if !ok {
		return nil, fmt.Errorf("coefficient overflow flattening %s", at)
	}
	if sum == 0 {
		return acc.Delete(key), nil
	}
	return acc.Set(key, sum), nil
}

// Flatten returns the linear combination of t.
func Flatten(t *term.Term) (Coefficients, error) {
	return flatten(t, 1, immutable.NewSortedMap[string, int64](nil), map[string]leaf{})
}

// simplified flattens t and renders it as a Union of Counts attributed to input i alone.
// An expression equal to zero renders as the F0 constant.
func simplified(t *term.Term, i int) (*term.Term, error) {
	leaves := map[string]leaf{}
	coefficients, err := flatten(t, 1, immutable.NewSortedMap[string, int64](nil), leaves)
	if err != nil {
		return nil, err
	}
	pi := term.Pi(i)
	var parts []*term.Term
	itr := coefficients.Iterator()
	for !itr.Done() {
		key, n, _ := itr.Next()
		l := leaves[key]
		if l.match != nil {
			parts = append(parts, term.Count(n, term.Morph(pi, l.match)))
		} else {
			parts = append(parts, term.Count(n, term.Const(pi, l.f)))
		}
	}
	if len(parts) == 0 {
		return term.Count(1, term.Const(pi, term.F0)), nil
	}
	return unionAll(parts), nil
}

// unionAll folds terms into a right-nested Union.
func unionAll(terms []*term.Term) *term.Term {
	out := terms[len(terms)-1]
	for i := len(terms) - 2; i >= 0; i-- {
		out = term.Union(terms[i], out)
	}
	return out
}
