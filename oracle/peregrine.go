package oracle

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cottand/motifsat/graph"
)

const peregrineDir = "peregrine"

// ExecCounter counts occurrences with external binaries: ConvertBin turns an edge list into the
// counter's data format, and CountBin prints the occurrence count of a pattern file in a data
// graph as the last line of its output.
type ExecCounter struct {
	Workspace   Workspace
	CountBin    string
	ConvertBin  string
	Parallelism int
}

var _ Counter = &ExecCounter{}

func (c *ExecCounter) Count(ctx context.Context, pattern graph.Pattern, hosts []graph.Graph) ([]int64, error) {
	dir := c.Workspace.path(peregrineDir)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, errors.Wrap(err, "creating counter dir")
	}
	defer os.RemoveAll(dir)

	patternFile := filepath.Join(dir, "pattern.txt")
	if err := writeFile(patternFile, func(f *os.File) error { return graph.WritePatternEdges(f, pattern) }); err != nil {
		return nil, err
	}

	counts := make([]int64, len(hosts))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(c.Parallelism, 1))
	for i, host := range hosts {
		eg.Go(func() error {
			n, err := c.countOne(ctx, dir, i+1, patternFile, host)
			if err != nil {
				return errors.Wrapf(err, "counting %v in host %d", pattern, i+1)
			}
			counts[i] = n
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *ExecCounter) countOne(ctx context.Context, dir string, index int, patternFile string, host graph.Graph) (int64, error) {
	edgeFile := filepath.Join(dir, strconv.Itoa(index)+".txt")
	dataDir := filepath.Join(dir, "data"+strconv.Itoa(index))
	err := writeFile(edgeFile, func(f *os.File) error {
		return graph.WritePatternEdges(f, graph.EdgePattern(host))
	})
	if err != nil {
		return 0, err
	}
	if _, err := run(ctx, c.ConvertBin, edgeFile, dataDir); err != nil {
		return 0, err
	}
	out, err := run(ctx, c.CountBin, dataDir, patternFile)
	if err != nil {
		return 0, err
	}
	return lastInt(out)
}

func run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrapf(err, "running %s %s: %s", bin, strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// lastInt parses the last non-blank line of out as an integer.
func lastInt(out []byte) (int64, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	n, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected counter output %q", last)
	}
	return n, nil
}

func writeFile(name string, write func(*os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", name)
	}
	return errors.Wrapf(f.Close(), "closing %s", name)
}
