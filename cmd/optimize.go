package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cottand/motifsat/costs"
	"github.com/cottand/motifsat/internal/metrics"
	"github.com/cottand/motifsat/optimizer"
	"github.com/cottand/motifsat/report"
)

var OptimizeCmd = &cobra.Command{
	Use:          "optimize patterns-file",
	Short:        "Find the cheapest way to count the motifs of a patterns file",
	RunE:         runOptimize,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	maxIterations *int
	maxNodes      *int
	timeout       *time.Duration
	metricsOut    *string
)

func init() {
	maxIterations = OptimizeCmd.Flags().Int("max-iterations", 0, "saturation iteration limit, overrides the config")
	maxNodes = OptimizeCmd.Flags().Int("max-nodes", 0, "e-graph size limit, overrides the config")
	timeout = OptimizeCmd.Flags().Duration("timeout", 0, "saturation time limit, overrides the config")
	metricsOut = OptimizeCmd.Flags().String("metrics-out", "", "write run metrics to this file")
}

func runOptimize(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("max-iterations") {
		cfg.Limits.Iterations = *maxIterations
	}
	if flags.Changed("max-nodes") {
		cfg.Limits.Nodes = *maxNodes
	}
	if flags.Changed("timeout") {
		cfg.Limits.Time = *timeout
	}
	if flags.Changed("metrics-out") {
		cfg.MetricsOut = *metricsOut
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	inputs, err := readPatterns(args[0])
	if err != nil {
		return err
	}
	c, err := newCollaborators(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	opts := optimizer.Options{
		Limits:        cfg.Limits.Saturation(),
		Canonicalizer: c.canon,
		Counter:       c.counter,
		Measurer:      c.measurer,
		Metrics:       metrics.New(),
	}
	if cfg.CostCache != "" {
		cache, err := costs.OpenCache(cfg.CostCache, cfg.Oracle.Mode+":"+cfg.DataGraph)
		if err != nil {
			return err
		}
		defer cache.Close()
		opts.Cache = cache
	}

	res, err := optimizer.Optimize(cmd.Context(), inputs, opts)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}
	if cfg.MetricsOut != "" {
		if err := opts.Metrics.WriteTextfile(cfg.MetricsOut); err != nil {
			return fmt.Errorf("could not write metrics: %w", err)
		}
	}
	return report.NewPrinter(cmd.OutOrStdout()).Print(res)
}
