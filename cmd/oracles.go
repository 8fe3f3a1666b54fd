package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cottand/motifsat/config"
	"github.com/cottand/motifsat/graph"
	"github.com/cottand/motifsat/oracle"
	"github.com/cottand/motifsat/term"
)

// collaborators is the set of oracles a run talks to.
type collaborators struct {
	canon    oracle.Canonicalizer
	counter  oracle.Counter
	measurer oracle.CostMeasurer
}

// closeTimeout bounds how long shutdown waits for an external tool to take the "done" message.
const closeTimeout = 5 * time.Second

// close tells the canonicalizer the run is over, when it is an external process.
func (c collaborators) close() error {
	closer, ok := c.canon.(interface{ Close(context.Context) error })
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := closer.Close(ctx); err != nil {
		return fmt.Errorf("could not stop canonicalizer: %w", err)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := ""
	if f := cmd.Flags().Lookup("config"); f != nil {
		path = f.Value.String()
	}
	return config.Load(path)
}

func newCollaborators(cfg config.Config) (collaborators, error) {
	if cfg.Oracle.Mode == "inprocess" {
		c := collaborators{
			canon:    oracle.InProcess{Parallelism: cfg.Oracle.Counter.Parallelism},
			counter:  oracle.InProcess{Parallelism: cfg.Oracle.Counter.Parallelism},
			measurer: oracle.StaticMeasurer{Default: 1},
		}
		if cfg.DataGraph != "" {
			data, err := readDataGraph(cfg.DataGraph)
			if err != nil {
				return collaborators{}, err
			}
			c.measurer = &oracle.FragmentMeasurer{Data: data}
		}
		return c, nil
	}

	ws := oracle.Workspace{Dir: cfg.WorkDir, BlissPipe: cfg.Oracle.BlissPipe, MorphPipe: cfg.Oracle.MorphPipe}
	if err := ws.Prepare(); err != nil {
		return collaborators{}, err
	}
	return collaborators{
		canon: &oracle.PipeCanonicalizer{Workspace: ws},
		counter: &oracle.ExecCounter{
			Workspace:   ws,
			CountBin:    cfg.Oracle.Counter.CountBin,
			ConvertBin:  cfg.Oracle.Counter.ConvertBin,
			Parallelism: cfg.Oracle.Counter.Parallelism,
		},
		measurer: &oracle.PipeMeasurer{Workspace: ws},
	}, nil
}

func readDataGraph(path string) (*graph.DataGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open data graph: %w", err)
	}
	defer f.Close()
	data, err := graph.ReadEdgeList(f)
	if err != nil {
		return nil, fmt.Errorf("could not read data graph %s: %w", path, err)
	}
	return data, nil
}

func readPatterns(path string) ([]*term.Term, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open patterns file: %w", err)
	}
	defer f.Close()
	patterns, err := term.ReadPatterns(f)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%s holds no patterns", path)
	}
	return patterns, nil
}
