package rules

import (
	"context"
	"fmt"

	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/graph"
	"github.com/cottand/motifsat/oracle"
	"github.com/cottand/motifsat/term"
	"github.com/cottand/motifsat/util"
)

// MorphExpansion rewrites Morph(pi, P) into an exact integer combination of Morph terms over the
// supergraphs of P:
//
//   - a fully induced P is expanded by inclusion-exclusion into edge-only supergraphs H, with
//     coefficient (-1)^(e(H)-e(P)) times the number of copies of P's edges in H;
//   - any other P is expanded into induced supergraphs H, with coefficient the number of
//     occurrences of P (anti-edges included) in H.
//
// Cliques and escape patterns are never expanded, and every (pi, P) pair is expanded once per
// Session.
func MorphExpansion() Rule {
	return Rule{
		Name:    "morph-expand",
		Pattern: egraph.MustParsePattern("(Morph ?pi ?pat)"),
		Apply:   expandMorph,
	}
}

func expandMorph(ctx context.Context, s *Session, g *egraph.EGraph, subst egraph.Subst) ([]egraph.ClassID, error) {
	pi, okPi := g.PiOf(subst["?pi"])
	match, okMatch := g.MatchOf(subst["?pat"])
	if !okPi || !okMatch {
		return nil, nil
	}
	p, err := term.ToPattern(match)
	if err != nil {
		return nil, err
	}
	if p.Edges.IsComplete() || isEscape(p) {
		return nil, nil
	}
	if !s.markExpanded(pi, match) {
		return nil, nil
	}

	var parts []part
	if p.IsFullyInduced() {
		parts, err = s.subtract(ctx, p)
	} else {
		parts, err = s.embed(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", match, err)
	}
	if len(parts) == 0 {
		return nil, nil
	}
	expr := sum(pi, parts)
	if err := s.Register(expr); err != nil {
		return nil, err
	}
	s.Logger.Debug("expanded morph", "pi", pi, "pattern", match, "terms", len(parts))
	return []egraph.ClassID{g.AddTerm(expr)}, nil
}

// part is one term n * Morph(pi, motif) or n * Const(pi, formula) of an expansion.
type part struct {
	n       int64
	motif   *term.Term
	formula term.Formula
}

func (pt part) term(pi *term.Term) *term.Term {
	if pt.motif != nil {
		return term.Count(pt.n, term.Morph(pi, pt.motif))
	}
	return term.Count(pt.n, term.Const(pi, pt.formula))
}

// sum folds parts into a right-nested Union.
func sum(pi *term.Term, parts []part) *term.Term {
	expr := parts[len(parts)-1].term(pi)
	for i := len(parts) - 2; i >= 0; i-- {
		expr = term.Union(parts[i].term(pi), expr)
	}
	return expr
}

// subtract expands a fully induced pattern into counts of edge-only supergraphs.
func (s *Session) subtract(ctx context.Context, p graph.Pattern) ([]part, error) {
	edges := p.EdgeOnly()
	reps, err := s.Canonicalizer.Supergraphs(ctx, p.Edges, oracle.EdgeInduced)
	if err != nil {
		return nil, err
	}
	coefficients, err := s.coefficients(ctx, edges, reps)
	if err != nil {
		return nil, err
	}
	var parts []part
	for i, rep := range reps {
		n := coefficients[i]
		if (rep.Graph.NumEdges()-p.Edges.NumEdges())%2 != 0 {
			var ok bool
			if n, ok = util.MulInt64(n, -1); !ok {
				return nil, fmt.Errorf("coefficient %d overflows", coefficients[i])
			}
		}
		if n == 0 {
			continue
		}
		motif := term.FromPattern(graph.Canonical(graph.EdgePattern(rep.Graph)))
		parts = append(parts, part{n: n, motif: motif})
	}
	return parts, nil
}

// embed expands a pattern with unconstrained pairs into counts of induced supergraphs.
func (s *Session) embed(ctx context.Context, p graph.Pattern) ([]part, error) {
	reps, err := s.Canonicalizer.Supergraphs(ctx, p.Edges, oracle.VertexInduced)
	if err != nil {
		return nil, err
	}
	coefficients, err := s.coefficients(ctx, p, reps)
	if err != nil {
		return nil, err
	}
	var parts []part
	for i, rep := range reps {
		if coefficients[i] == 0 {
			continue
		}
		motif := term.FromPattern(graph.Canonical(graph.InducedPattern(rep.Graph)))
		parts = append(parts, part{n: coefficients[i], motif: motif})
	}
	return parts, nil
}

// coefficients returns the occurrences of p in every representative, using the coefficients
// reported by the canonicalizer when it reports all of them and the Counter otherwise.
func (s *Session) coefficients(ctx context.Context, p graph.Pattern, reps []oracle.Representative) ([]int64, error) {
	out := make([]int64, len(reps))
	hosts := make([]graph.Graph, len(reps))
	reported := true
	for i, rep := range reps {
		hosts[i] = rep.Graph
		out[i] = rep.Coefficient
		reported = reported && rep.HasCoefficient
	}
	if reported {
		return out, nil
	}
	counts, err := s.Counter.Count(ctx, p, hosts)
	if err != nil {
		return nil, err
	}
	if len(counts) != len(reps) {
		return nil, fmt.Errorf("counter returned %d counts for %d graphs", len(counts), len(reps))
	}
	return counts, nil
}
