package oracle

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cottand/motifsat/graph"
)

// InProcess answers canonicalizer and counter requests with the graph package, without any
// external tool.
type InProcess struct {
	// Parallelism bounds how many hosts are counted at once. Zero means one at a time.
	Parallelism int
}

var (
	_ Canonicalizer = InProcess{}
	_ Counter       = InProcess{}
)

func (InProcess) CanonicalLabels(ctx context.Context, patterns []graph.Pattern) ([][]int, error) {
	perms := make([][]int, len(patterns))
	for i, p := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		perms[i] = graph.CanonicalLabel(p)
	}
	return perms, nil
}

// Supergraphs never reports coefficients: callers count them with a Counter.
func (InProcess) Supergraphs(ctx context.Context, g graph.Graph, _ Mode) ([]Representative, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	graphs := graph.Supergraphs(g)
	reps := make([]Representative, len(graphs))
	for i, h := range graphs {
		reps[i] = Representative{Graph: h}
	}
	return reps, nil
}

func (c InProcess) Count(ctx context.Context, pattern graph.Pattern, hosts []graph.Graph) ([]int64, error) {
	counts := make([]int64, len(hosts))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(c.Parallelism, 1))
	for i, host := range hosts {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			counts[i] = graph.Occurrences(pattern, host)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// FragmentMeasurer prices a pattern by splitting it along a minimum cut and estimating how many
// partial matches the two fragments produce in Data.
type FragmentMeasurer struct {
	Data *graph.DataGraph
}

var _ CostMeasurer = &FragmentMeasurer{}

func (m *FragmentMeasurer) MeasureCosts(ctx context.Context, patterns []graph.Pattern) ([]float64, error) {
	out := make([]float64, len(patterns))
	for i, p := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = graph.FragmentEstimate(m.Data, p.Edges)
	}
	logger.Debug("estimated costs", "patterns", len(patterns), "vertices", m.Data.N(), "edges", m.Data.NumEdges())
	return out, nil
}
