package oracle

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/cottand/motifsat/graph"
)

const (
	srcGraphFile = "src_graph.txt"
	srcDir       = "src"
	resultDir    = "result"
)

// PipeCanonicalizer drives an external canonical labelling tool that watches the bliss pipe of
// a Workspace.
//
// Labelling: the pattern count is written to the pipe, each pattern's edge graph to
// src/<i>.txt in DIMACS form, then "start". Once the tool answers, every
// src/<i>.txt holds the labelling of pattern i as "position vertex" lines.
//
// Supergraphs: the graph goes to src_graph.txt and the mode to the pipe. Once the tool answers,
// result/ holds one DIMACS file per representative, which are consumed and deleted.
//
// The tool answers on the completion pipe of the bliss pipe, and stops when it reads "done".
type PipeCanonicalizer struct {
	Workspace Workspace
}

var _ Canonicalizer = &PipeCanonicalizer{}

func (c *PipeCanonicalizer) CanonicalLabels(ctx context.Context, patterns []graph.Pattern) ([][]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w := c.Workspace
	dir := w.path(srcDir)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, errors.Wrap(err, "creating labelling dir")
	}
	defer os.RemoveAll(dir)

	if err := w.signal(ctx, w.BlissPipe, strconv.Itoa(len(patterns))); err != nil {
		return nil, err
	}
	for i, p := range patterns {
		if err := writeDIMACSFile(filepath.Join(dir, strconv.Itoa(i)+".txt"), p.Edges); err != nil {
			return nil, err
		}
	}
	if err := w.signal(ctx, w.BlissPipe, "start"); err != nil {
		return nil, err
	}
	if err := w.await(ctx, w.BlissPipe); err != nil {
		return nil, err
	}

	perms := make([][]int, len(patterns))
	for i, p := range patterns {
		name := filepath.Join(dir, strconv.Itoa(i)+".txt")
		f, err := os.Open(name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading labelling of pattern %d", i)
		}
		perm, err := graph.ReadPermutation(f, p.N())
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "parsing labelling of pattern %d", i)
		}
		perms[i] = perm
	}
	logger.Debug("labelled patterns", "count", len(patterns))
	return perms, nil
}

func (c *PipeCanonicalizer) Supergraphs(ctx context.Context, g graph.Graph, mode Mode) ([]Representative, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w := c.Workspace
	dir := w.path(resultDir)
	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.Wrap(err, "clearing stale canonicalizer results")
	}
	if err := writeDIMACSFile(w.path(srcGraphFile), g); err != nil {
		return nil, err
	}
	if err := w.signal(ctx, w.BlissPipe, string(mode)); err != nil {
		return nil, err
	}
	if err := w.await(ctx, w.BlissPipe); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "listing canonicalizer results")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	reps := make([]Representative, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := filepath.Join(dir, entry.Name())
		rep, err := readRepresentative(name)
		if err != nil {
			return nil, err
		}
		if err := os.Remove(name); err != nil {
			return nil, errors.Wrapf(err, "removing %s", name)
		}
		reps = append(reps, rep)
	}
	logger.Debug("supergraphs", "mode", mode, "graph", g, "representatives", len(reps))
	return reps, nil
}

// Close tells the tool the run is over.
func (c *PipeCanonicalizer) Close(ctx context.Context) error {
	return c.Workspace.signal(ctx, c.Workspace.BlissPipe, "done")
}

func readRepresentative(name string) (Representative, error) {
	f, err := os.Open(name)
	if err != nil {
		return Representative{}, errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()
	g, scalars, err := graph.ReadDIMACS(f)
	if err != nil {
		return Representative{}, errors.Wrapf(err, "parsing %s", name)
	}
	rep := Representative{Graph: g}
	if len(scalars) > 0 {
		rep.Coefficient, rep.HasCoefficient = scalars[len(scalars)-1], true
	}
	return rep, nil
}

func writeDIMACSFile(name string, g graph.Graph) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	defer f.Close()
	return errors.Wrapf(graph.WriteDIMACS(f, g), "writing %s", name)
}
