// Package optimizer runs the whole pipeline over a list of input motifs: canonicalise them, build
// the union of their counts, saturate it with the rewrite rules, measure the cost of every motif
// discovered, and extract the cheapest equivalent expression.
package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"

	"github.com/cottand/motifsat/costs"
	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/extract"
	"github.com/cottand/motifsat/graph"
	"github.com/cottand/motifsat/internal/log"
	"github.com/cottand/motifsat/internal/metrics"
	"github.com/cottand/motifsat/oracle"
	"github.com/cottand/motifsat/rules"
	"github.com/cottand/motifsat/saturate"
	"github.com/cottand/motifsat/term"
)

var logger = log.DefaultLogger.With("section", "optimizer")

type Options struct {
	Limits        saturate.Limits
	Canonicalizer oracle.Canonicalizer
	Counter       oracle.Counter
	Measurer      oracle.CostMeasurer
	// Cache is consulted before measuring costs. It may be nil.
	Cache *costs.Cache
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// Rules defaults to rules.All.
	Rules []rules.Rule
}

// Motif is one distinct motif or formula of the best expression.
type Motif struct {
	Key          string
	Multiplicity int
	Cost         float64
}

type Result struct {
	RunID string
	// Inputs are the input motifs in canonical form.
	Inputs []*term.Term
	Best   *term.Term
	// Cost is the cost of Best as computed by the extractor.
	Cost float64
	// Motifs are the motifs and formulas of Best in order of first occurrence.
	Motifs []Motif
	// DistinctCost counts the cost of every distinct motif once.
	DistinctCost float64
	// Simplified holds, for every input, its cheapest expression once the motifs of Best are
	// considered free.
	Simplified []*term.Term
	Saturation saturate.Report
	Elapsed    time.Duration
}

// Optimize finds the cheapest expression equal to the sum of the counts of inputs, which must be
// normalised Match terms.
func Optimize(ctx context.Context, inputs []*term.Term, opts Options) (*Result, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input patterns")
	}
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	l := logger.With("run", res.RunID)
	l.Info("optimizing", "inputs", len(inputs))

	canonical, err := canonicalize(ctx, opts.Canonicalizer, inputs)
	if err != nil {
		return nil, err
	}
	res.Inputs = canonical

	table := costs.NewTable()
	session := rules.NewSession(table, opts.Canonicalizer, opts.Counter)
	session.Logger = session.Logger.With("run", res.RunID)

	g := egraph.New()
	parts := make([]*term.Term, len(canonical))
	perInput := make([]egraph.ClassID, len(canonical))
	for i, in := range canonical {
		morph := term.Morph(term.Pi(i), in)
		parts[i] = term.Count(1, morph)
		perInput[i] = g.AddTerm(morph)
	}
	initial := unionAll(parts)
	if err := session.Register(initial); err != nil {
		return nil, err
	}
	root := g.AddTerm(initial)

	ruleSet := opts.Rules
	if ruleSet == nil {
		ruleSet = rules.All()
	}
	report, err := saturate.NewRunner(ruleSet, opts.Limits, opts.Metrics).Run(ctx, session, g)
	if err != nil {
		return nil, fmt.Errorf("saturating: %w", err)
	}
	res.Saturation = report

	if err := table.Finalize(ctx, opts.Measurer, opts.Cache); err != nil {
		return nil, err
	}
	if opts.Metrics != nil {
		opts.Metrics.CostEntries.Set(float64(table.Len()))
	}

	best, cost, err := extract.New(g, table).Best(root)
	if err != nil {
		return nil, err
	}
	res.Best, res.Cost = best, cost
	res.Motifs = motifs(best, table)
	for _, m := range res.Motifs {
		res.DistinctCost += m.Cost
	}
	if opts.Metrics != nil {
		opts.Metrics.BestCost.Set(cost)
	}

	free := set.New[string](len(res.Motifs))
	for _, m := range res.Motifs {
		free.Insert(m.Key)
	}
	overlay := extract.New(g, extract.Overlay{Base: table, Free: free})
	for i, id := range perInput {
		t, _, err := overlay.Best(id)
		if err != nil {
			return nil, fmt.Errorf("extracting input %d: %w", i, err)
		}
		s, err := simplified(t, i)
		if err != nil {
			return nil, fmt.Errorf("simplifying input %d: %w", i, err)
		}
		res.Simplified = append(res.Simplified, s)
	}

	res.Elapsed = time.Since(start)
	l.Info("optimized",
		"cost", res.Cost,
		"distinctCost", res.DistinctCost,
		"motifs", len(res.Motifs),
		"stop", report.Stop,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// canonicalize relabels every input into the labelling of c, keeping explicit anti-edges.
func canonicalize(ctx context.Context, c oracle.Canonicalizer, inputs []*term.Term) ([]*term.Term, error) {
	patterns := make([]graph.Pattern, len(inputs))
	for i, in := range inputs {
		p, err := term.ToPattern(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		patterns[i] = p
	}
	relabelled, err := oracle.Canonicalize(ctx, c, patterns)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing inputs: %w", err)
	}
	out := make([]*term.Term, len(relabelled))
	for i, p := range relabelled {
		out[i] = term.FromPattern(p)
	}
	return out, nil
}

// Canonicalize exposes the input canonicalisation step on its own.
func Canonicalize(ctx context.Context, c oracle.Canonicalizer, inputs []*term.Term) ([]*term.Term, error) {
	return canonicalize(ctx, c, inputs)
}

// motifs lists the motifs and formulas of t with their multiplicities. F0 is not a motif.
func motifs(t *term.Term, table *costs.Table) []Motif {
	var out []Motif
	index := map[string]int{}
	t.Walk(func(s *term.Term) bool {
		var key string
		switch s.Op {
		case term.OpMorph:
			key = costs.MatchKey(s.Args[1])
		case term.OpConst:
			f, err := s.Formula()
			if err != nil || f.IsZero() {
				return false
			}
			key = costs.FormulaKey(f)
		default:
			return true
		}
		if i, ok := index[key]; ok {
			out[i].Multiplicity++
			return false
		}
		index[key] = len(out)
		out = append(out, Motif{Key: key, Multiplicity: 1, Cost: table.Cost(key)})
		return false
	})
	return out
}
