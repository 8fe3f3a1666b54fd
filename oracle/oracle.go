// Package oracle holds the collaborators the rewriter consults: a canonicalizer that labels
// patterns and enumerates supergraphs, a counter that counts pattern occurrences in small host
// graphs, and a cost measurer that prices patterns against the data graph.
//
// Each collaborator has an implementation talking to external tools over named pipes or
// subprocesses, and an in-process implementation.
package oracle

import (
	"context"

	"github.com/cottand/motifsat/costs"
	"github.com/cottand/motifsat/graph"
	"github.com/cottand/motifsat/internal/log"
)

var logger = log.DefaultLogger.With("section", "oracle")

// Mode tells the canonicalizer which decomposition a supergraph request serves.
type Mode string

const (
	VertexInduced Mode = "vertex_induced"
	EdgeInduced   Mode = "edge_induced"
)

// Representative is one isomorphism class returned by the canonicalizer.
type Representative struct {
	Graph graph.Graph
	// Coefficient is set when the canonicalizer reported one alongside the graph.
	Coefficient    int64
	HasCoefficient bool
}

type Canonicalizer interface {
	// CanonicalLabels returns, for every pattern, a permutation mapping each vertex to its
	// canonical position.
	CanonicalLabels(ctx context.Context, patterns []graph.Pattern) ([][]int, error)
	// Supergraphs returns one representative per isomorphism class of graphs on the vertices of
	// g that contain g.
	Supergraphs(ctx context.Context, g graph.Graph, mode Mode) ([]Representative, error)
}

type Counter interface {
	// Count returns, for every host, the number of occurrences of pattern in it.
	Count(ctx context.Context, pattern graph.Pattern, hosts []graph.Graph) ([]int64, error)
}

// CostMeasurer prices patterns against the data graph.
type CostMeasurer = costs.Measurer

// Canonicalize relabels every pattern into the labelling chosen by c.
func Canonicalize(ctx context.Context, c Canonicalizer, patterns []graph.Pattern) ([]graph.Pattern, error) {
	perms, err := c.CanonicalLabels(ctx, patterns)
	if err != nil {
		return nil, err
	}
	out := make([]graph.Pattern, len(patterns))
	for i, p := range patterns {
		out[i] = p.Permute(perms[i])
	}
	return out, nil
}
