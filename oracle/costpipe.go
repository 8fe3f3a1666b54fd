package oracle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cottand/motifsat/graph"
)

const (
	costDir        = "cost"
	costResultFile = "result.txt"
)

// PipeMeasurer asks an external estimator, listening on the morph pipe of a Workspace, for the
// cost of every pattern. Pattern i is written to cost/<i>.txt, and the estimator answers with
// one cost per line in cost/result.txt.
type PipeMeasurer struct {
	Workspace Workspace
}

var _ CostMeasurer = &PipeMeasurer{}

func (m *PipeMeasurer) MeasureCosts(ctx context.Context, patterns []graph.Pattern) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w := m.Workspace
	dir := w.path(costDir)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, errors.Wrap(err, "creating cost dir")
	}
	defer os.RemoveAll(dir)

	for i, p := range patterns {
		name := filepath.Join(dir, strconv.Itoa(i)+".txt")
		if err := writeFile(name, func(f *os.File) error { return writeCostPattern(f, p) }); err != nil {
			return nil, err
		}
	}
	if err := w.signal(ctx, w.MorphPipe, "start"); err != nil {
		return nil, err
	}
	if err := w.await(ctx, w.MorphPipe); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, costResultFile))
	if err != nil {
		return nil, errors.Wrap(err, "opening cost results")
	}
	defer f.Close()
	costs, err := readCosts(f)
	if err != nil {
		return nil, err
	}
	if len(costs) != len(patterns) {
		return nil, errors.Errorf("estimator returned %d costs for %d patterns", len(costs), len(patterns))
	}
	return costs, nil
}

// writeCostPattern writes the edges then the anti-edges of p, one "u v" or "u v 1" line each,
// numbering vertices from 1 in order of first appearance.
func writeCostPattern(w io.Writer, p graph.Pattern) error {
	ids := make(map[int]int)
	id := func(v int) int {
		if n, ok := ids[v]; ok {
			return n
		}
		ids[v] = len(ids) + 1
		return ids[v]
	}
	bw := bufio.NewWriter(w)
	for _, e := range p.Edges.Edges() {
		u, v := id(e[0]), id(e[1])
		fmt.Fprintf(bw, "%d %d\n", u, v)
	}
	for _, e := range p.Anti.Edges() {
		u, v := id(e[0]), id(e[1])
		fmt.Fprintf(bw, "%d %d 1\n", u, v)
	}
	return bw.Flush()
}

func readCosts(r io.Reader) ([]float64, error) {
	var out []float64
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		c, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "cost results line %d", line)
		}
		out = append(out, c)
	}
	return out, errors.Wrap(scanner.Err(), "reading cost results")
}
