package costs

import (
	"context"
	"github.com/cottand/motifsat/graph"
	"github.com/cottand/motifsat/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type countingMeasurer struct {
	calls    int
	measured int
}

func (m *countingMeasurer) MeasureCosts(_ context.Context, patterns []graph.Pattern) ([]float64, error) {
	m.calls++
	m.measured += len(patterns)
	out := make([]float64, len(patterns))
	for i, p := range patterns {
		out[i] = float64(10 * p.Edges.NumEdges())
	}
	return out, nil
}

const (
	triangle = "(Match (-- a b) (-- a c) (-- b c))"
	path     = "(Match (-- a b) (-- b c))"
)

func TestTableRegistersInOrder(t *testing.T) {
	table := NewTable()
	key, err := table.RegisterMatch(term.MustParse(path))
	require.NoError(t, err)
	assert.Equal(t, path, key)
	_, err = table.RegisterMatch(term.MustParse(triangle))
	require.NoError(t, err)
	_, err = table.RegisterMatch(term.MustParse(path))
	require.NoError(t, err)
	table.RegisterFormula(term.F7)
	table.RegisterFormula(term.Fa)

	keys := make([]string, 0, table.Len())
	for _, e := range table.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{path, triangle, "F7"}, keys)
}

func TestFinalize(t *testing.T) {
	table := NewTable()
	_, _ = table.RegisterMatch(term.MustParse(triangle))
	table.RegisterFormula(term.F7)
	m := &countingMeasurer{}
	require.NoError(t, table.Finalize(context.Background(), m, nil))

	assert.Equal(t, 1, m.calls)
	assert.Equal(t, 30.0, table.Cost(triangle))
	assert.Equal(t, 40.0, table.Cost("F7"))
	assert.Zero(t, table.Cost("Fa"))
	_, ok := table.Lookup("Fa")
	assert.False(t, ok)

	assert.Error(t, table.Finalize(context.Background(), m, nil))
	assert.Panics(t, func() { table.RegisterFormula(term.F4) })
}

func TestFinalizeUsesCache(t *testing.T) {
	cache, err := OpenCache("", "test-graph")
	require.NoError(t, err)
	defer cache.Close()

	first := NewTable()
	_, _ = first.RegisterMatch(term.MustParse(triangle))
	m := &countingMeasurer{}
	require.NoError(t, first.Finalize(context.Background(), m, cache))
	assert.Equal(t, 1, m.measured)

	// the same class under another labelling is served from the cache
	second := NewTable()
	_, _ = second.RegisterMatch(term.MustParse("(Match (-- a c) (-- b c) (-- a b))"))
	_, _ = second.RegisterMatch(term.MustParse(path))
	require.NoError(t, second.Finalize(context.Background(), m, cache))
	assert.Equal(t, 2, m.measured)
	assert.Equal(t, 30.0, second.Cost(triangle))
	assert.Equal(t, 20.0, second.Cost(path))
}

func TestCacheNamespaces(t *testing.T) {
	cache, err := OpenCache("", "a")
	require.NoError(t, err)
	defer cache.Close()

	p, err := term.ToPattern(term.MustParse(triangle))
	require.NoError(t, err)
	require.NoError(t, cache.PutAll([]graph.Pattern{p}, []float64{1.5}))

	cost, ok, err := cache.Get(p)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.5, cost)

	other := &Cache{db: cache.db, namespace: "b"}
	_, ok, err = other.Get(p)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, cache.PutAll([]graph.Pattern{p}, nil))
}
