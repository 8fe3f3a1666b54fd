package optimizer

import (
	"context"
	"errors"
	"github.com/cottand/motifsat/graph"
	"github.com/cottand/motifsat/internal/metrics"
	"github.com/cottand/motifsat/oracle"
	"github.com/cottand/motifsat/saturate"
	"github.com/cottand/motifsat/term"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

const (
	triangle = "(Match (-- a b) (-- a c) (-- b c))"
	path3    = "(Match (-- a b) (-- b c))"
	star3    = "(Match (-- a d) (-- b d) (-- c d))"
)

func pattern(t *testing.T, s string) graph.Pattern {
	t.Helper()
	p, err := term.ToPattern(term.MustParse(s))
	require.NoError(t, err)
	return p
}

func options(costs map[string]float64) Options {
	return Options{
		Limits:        saturate.DefaultLimits(),
		Canonicalizer: oracle.InProcess{},
		Counter:       oracle.InProcess{},
		Measurer:      oracle.StaticMeasurer{Costs: costs, Default: 10},
	}
}

func inputs(ss ...string) []*term.Term {
	out := make([]*term.Term, len(ss))
	for i, s := range ss {
		out[i] = term.MustParse(s)
	}
	return out
}

func TestTriangleIsAlreadyOptimal(t *testing.T) {
	res, err := Optimize(context.Background(), inputs(triangle), options(nil))
	require.NoError(t, err)

	want := term.Count(1, term.Morph(term.Pi(0), term.MustParse(triangle)))
	assert.Equal(t, want.String(), res.Best.String())
	assert.Equal(t, 10.0, res.Cost)
	assert.Equal(t, []Motif{{Key: triangle, Multiplicity: 1, Cost: 10}}, res.Motifs)
	assert.Equal(t, 10.0, res.DistinctCost)
	assert.Equal(t, saturate.Saturated, res.Saturation.Stop)
	require.Len(t, res.Simplified, 1)
	assert.Equal(t, want.String(), res.Simplified[0].String())
	assert.NotEmpty(t, res.RunID)
}

func TestThreeStarBecomesFormula(t *testing.T) {
	res, err := Optimize(context.Background(), inputs(star3), options(nil))
	require.NoError(t, err)

	want := term.Count(1, term.Const(term.Pi(0), term.Fa))
	assert.Equal(t, want.String(), res.Best.String())
	// Fa needs no query
	assert.Zero(t, res.Cost)
	assert.Equal(t, []Motif{{Key: "Fa", Multiplicity: 1}}, res.Motifs)
	assert.Equal(t, want.String(), res.Simplified[0].String())
}

func TestPathSplitsIntoCheaperMotifs(t *testing.T) {
	path := pattern(t, path3)
	induced := graph.InducedPattern(path.Edges)
	tri := graph.EdgePattern(graph.Complete(3))
	opts := options(map[string]float64{
		graph.Key(path):    100,
		graph.Key(induced): 1,
		graph.Key(tri):     5,
	})
	opts.Metrics = metrics.New()

	res, err := Optimize(context.Background(), inputs(path3), opts)
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Cost)
	assert.Equal(t, 6.0, res.DistinctCost)

	inducedKey := term.FromPattern(graph.Canonical(induced)).String()
	triKey := term.FromPattern(graph.Canonical(tri)).String()
	assert.ElementsMatch(t, []Motif{
		{Key: inducedKey, Multiplicity: 1, Cost: 1},
		{Key: triKey, Multiplicity: 1, Cost: 5},
	}, res.Motifs)

	coefficients, err := Flatten(res.Best)
	require.NoError(t, err)
	n, _ := coefficients.Get(inducedKey)
	assert.Equal(t, int64(1), n)
	n, _ = coefficients.Get(triKey)
	assert.Equal(t, int64(3), n)

	simplified, err := Flatten(res.Simplified[0])
	require.NoError(t, err)
	assert.Equal(t, 2, simplified.Len())

	assert.Equal(t, 6.0, testutil.ToFloat64(opts.Metrics.BestCost))
	// path, induced path and triangle
	assert.Equal(t, 3.0, testutil.ToFloat64(opts.Metrics.CostEntries))
}

func TestCanonicalInputsGiveTheSameResult(t *testing.T) {
	path := pattern(t, path3)
	induced := graph.InducedPattern(path.Edges)
	opts := options(map[string]float64{graph.Key(path): 100, graph.Key(induced): 1})
	first, err := Optimize(context.Background(), inputs("(Match (-- a c) (-- b c))", triangle), opts)
	require.NoError(t, err)

	second, err := Optimize(context.Background(), first.Inputs, opts)
	require.NoError(t, err)
	assert.Equal(t, first.Cost, second.Cost)
	assert.ElementsMatch(t, first.Motifs, second.Motifs)
	for i := range first.Inputs {
		assert.Equal(t, first.Inputs[i].String(), second.Inputs[i].String())
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSharedMotifIsCountedOnce(t *testing.T) {
	res, err := Optimize(context.Background(), inputs(triangle, "(Match (-- a c) (-- a b) (-- c b))"), options(nil))
	require.NoError(t, err)

	require.Len(t, res.Motifs, 1)
	assert.Equal(t, triangle, res.Motifs[0].Key)
	assert.Equal(t, 10.0, res.DistinctCost)
	require.Len(t, res.Simplified, 2)
	for i, s := range res.Simplified {
		want := term.Count(1, term.Morph(term.Pi(i), term.MustParse(triangle)))
		assert.Equal(t, want.String(), s.String())
	}
}

func TestOptimizeErrors(t *testing.T) {
	_, err := Optimize(context.Background(), nil, options(nil))
	assert.Error(t, err)

	opts := options(nil)
	opts.Counter = failingCounter{}
	_, err = Optimize(context.Background(), inputs(path3), opts)
	assert.ErrorContains(t, err, "no counts today")
}

type failingCounter struct{}

func (failingCounter) Count(context.Context, graph.Pattern, []graph.Graph) ([]int64, error) {
	return nil, errors.New("no counts today")
}

func TestFlatten(t *testing.T) {
	x := term.Morph(term.Pi(0), term.MustParse(triangle))
	tests := []struct {
		name string
		in   *term.Term
		want map[string]int64
	}{
		{"single", term.Count(2, x), map[string]int64{triangle: 2}},
		{"nested counts multiply", term.Count(-2, term.Count(3, x)), map[string]int64{triangle: -6}},
		{"cancelling", term.Union(term.Count(2, term.Count(3, x)), term.Count(-6, x)), map[string]int64{}},
		{"zero formula", term.Union(term.Count(4, term.Const(term.Pi(0), term.F0)), term.Count(1, term.Const(term.Pi(0), term.F7))), map[string]int64{"F7": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Flatten(tt.in)
			require.NoError(t, err)
			flat := map[string]int64{}
			itr := got.Iterator()
			for !itr.Done() {
				k, v, _ := itr.Next()
				flat[k] = v
			}
			assert.Equal(t, tt.want, flat)
		})
	}
}

func TestFlattenOverflow(t *testing.T) {
	x := term.Morph(term.Pi(0), term.MustParse(triangle))
	_, err := Flatten(term.Count(math.MaxInt64, term.Count(2, x)))
	assert.ErrorContains(t, err, "overflow")
	_, err = Flatten(term.Union(term.Count(math.MaxInt64, x), term.Count(1, x)))
	assert.ErrorContains(t, err, "overflow")
	_, err = Flatten(term.MustParse(triangle))
	assert.Error(t, err)
}

func TestSimplifiedZero(t *testing.T) {
	x := term.Morph(term.Pi(0, 1), term.MustParse(triangle))
	got, err := simplified(term.Union(term.Count(1, x), term.Count(-1, x)), 1)
	require.NoError(t, err)
	assert.Equal(t, term.Count(1, term.Const(term.Pi(1), term.F0)).String(), got.String())
}
