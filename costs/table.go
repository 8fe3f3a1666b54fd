// Package costs holds the pattern/cost table of one run: the distinct motifs and formula proxies
// discovered while rewriting, in discovery order, and the cost measured for each of them.
package costs

import (
	"context"
	"fmt"

	"github.com/cottand/motifsat/graph"
	"github.com/cottand/motifsat/internal/log"
	"github.com/cottand/motifsat/term"
)

var logger = log.DefaultLogger.With("section", "costs")

// Measurer prices a batch of patterns. The result holds one cost per pattern, in order.
type Measurer interface {
	MeasureCosts(ctx context.Context, patterns []graph.Pattern) ([]float64, error)
}

// Entry is one registered key and the pattern measured for it.
type Entry struct {
	Key     string
	Pattern graph.Pattern
}

// Table only grows during a run. It is filled by the rewrite rules, finalised once, and then
// read by extraction.
type Table struct {
	entries   []Entry
	index     map[string]int
	costs     map[string]float64
	finalized bool
}

func NewTable() *Table {
	return &Table{index: map[string]int{}, costs: map[string]float64{}}
}

// Register records key with the pattern that will be measured for it, and reports whether the
// key is new. It panics once the table is finalised.
func (t *Table) Register(key string, p graph.Pattern) bool {
	if t.finalized {
		panic("costs: register after finalize")
	}
	if _, ok := t.index[key]; ok {
		return false
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, Entry{Key: key, Pattern: p})
	return true
}

// RegisterMatch records a normalised Match term under its printed form.
func (t *Table) RegisterMatch(match *term.Term) (string, error) {
	p, err := term.ToPattern(match)
	if err != nil {
		return "", err
	}
	key := MatchKey(match)
	t.Register(key, p)
	return key, nil
}

// RegisterFormula records the proxy query of f under the formula id. Formulas without a proxy are
// not recorded and therefore cost nothing.
func (t *Table) RegisterFormula(f term.Formula) {
	if proxy, ok := f.Proxy(); ok {
		t.Register(FormulaKey(f), graph.EdgePattern(proxy))
	}
}

func MatchKey(match *term.Term) string { return match.String() }

func FormulaKey(f term.Formula) string { return string(f) }

// Entries returns the registered entries in insertion order.
func (t *Table) Entries() []Entry { return t.entries }

func (t *Table) Len() int { return len(t.entries) }

func (t *Table) Finalized() bool { return t.finalized }

// Finalize measures every registered entry in a single call to m. Entries found in cache are not
// sent to m, and fresh measurements are written back to it. cache may be nil.
func (t *Table) Finalize(ctx context.Context, m Measurer, cache *Cache) error {
	if t.finalized {
		return fmt.Errorf("cost table already finalized")
	}
	var missing []Entry
	for _, e := range t.entries {
		if cache != nil {
			c, ok, err := cache.Get(e.Pattern)
			if err != nil {
				return fmt.Errorf("reading cost cache: %w", err)
			}
			if ok {
				t.costs[e.Key] = c
				continue
			}
		}
		missing = append(missing, e)
	}
	logger.Debug("finalizing costs", "entries", len(t.entries), "measuring", len(missing))

	if len(missing) > 0 {
		patterns := make([]graph.Pattern, len(missing))
		for i, e := range missing {
			patterns[i] = e.Pattern
		}
		measured, err := m.MeasureCosts(ctx, patterns)
		if err != nil {
			return fmt.Errorf("measuring %d patterns: %w", len(patterns), err)
		}
		if len(measured) != len(patterns) {
			return fmt.Errorf("cost measurer returned %d costs for %d patterns", len(measured), len(patterns))
		}
		for i, e := range missing {
			if measured[i] < 0 {
				return fmt.Errorf("negative cost %v for %s", measured[i], e.Key)
			}
			t.costs[e.Key] = measured[i]
		}
		if cache != nil {
			if err := cache.PutAll(patterns, measured); err != nil {
				return fmt.Errorf("writing cost cache: %w", err)
			}
		}
	}
	t.finalized = true
	return nil
}

// Cost returns the measured cost of key. Unknown keys are free.
func (t *Table) Cost(key string) float64 {
	return t.costs[key]
}

// Lookup is Cost that also reports whether key was measured.
func (t *Table) Lookup(key string) (float64, bool) {
	c, ok := t.costs[key]
	return c, ok
}
