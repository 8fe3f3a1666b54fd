package term

import (
	"slices"

	"github.com/cottand/motifsat/graph"
)

// Formula names a closed-form count computed directly from the data graph.
type Formula string

const (
	F0  Formula = "F0"
	F1  Formula = "F1"
	F2  Formula = "F2"
	F3  Formula = "F3"
	F4  Formula = "F4"
	F5  Formula = "F5"
	F6  Formula = "F6"
	F7  Formula = "F7"
	F8  Formula = "F8"
	F9  Formula = "F9"
	F10 Formula = "F10"
	F11 Formula = "F11"
	F12 Formula = "F12"
	F13 Formula = "F13"
	F14 Formula = "F14"
	Fa  Formula = "Fa"
	Fb  Formula = "Fb"
	Fc  Formula = "Fc"
	Fe  Formula = "Fe"
)

var formulas = []Formula{F0, F1, F2, F3, F4, F5, F6, F7, F8, F9, F10, F11, F12, F13, F14, Fa, Fb, Fc, Fe}

func (f Formula) Valid() bool {
	return slices.Contains(formulas, f)
}

// IsZero reports whether f is the additive identity.
func (f Formula) IsZero() bool {
	return f == F0
}

var (
	triangleProxy = func() graph.Graph {
		g := graph.New(3)
		g.AddEdge(0, 1)
		g.AddEdge(0, 2)
		g.AddEdge(1, 2)
		return g
	}()
	cycleProxy = func() graph.Graph {
		g := graph.New(4)
		g.AddEdge(0, 1)
		g.AddEdge(0, 2)
		g.AddEdge(1, 3)
		g.AddEdge(2, 3)
		return g
	}()
)

// Proxy returns the query whose cost stands in for evaluating f. Formulas that only need vertex
// degrees have no proxy and are free.
func (f Formula) Proxy() (graph.Graph, bool) {
	switch f {
	case F4, F5, F6, F9, F10, F11, F14, Fc, Fe:
		return triangleProxy.Clone(), true
	case F7:
		return cycleProxy.Clone(), true
	default:
		return graph.Graph{}, false
	}
}
