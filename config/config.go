// Package config loads the settings of the motifsat binary from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cottand/motifsat/saturate"
)

const envPrefix = "MOTIFSAT_"

type Config struct {
	// WorkDir is the scratch directory shared with the external tools.
	WorkDir string `yaml:"work_dir" validate:"required"`
	Limits  Limits `yaml:"limits"`
	Oracle  Oracle `yaml:"oracle"`
	// DataGraph is an edge list used by the in-process cost estimator.
	DataGraph string `yaml:"data_graph"`
	// CostCache is the directory of the persistent cost cache. Empty disables the cache.
	CostCache string `yaml:"cost_cache"`
	// MetricsOut is where run metrics are written in the Prometheus text format. Empty disables
	// writing them.
	MetricsOut string `yaml:"metrics_out"`
}

// Limits bound saturation. Zero means unbounded.
type Limits struct {
	Iterations int           `yaml:"iterations" validate:"gte=0"`
	Nodes      int           `yaml:"nodes" validate:"gte=0"`
	Time       time.Duration `yaml:"time" validate:"gte=0"`
}

func (l Limits) Saturation() saturate.Limits {
	return saturate.Limits{Iterations: l.Iterations, Nodes: l.Nodes, Time: l.Time}
}

type Oracle struct {
	// Mode is either "pipe", to talk to the external tools, or "inprocess".
	Mode      string  `yaml:"mode" validate:"oneof=pipe inprocess"`
	BlissPipe string  `yaml:"bliss_pipe" validate:"required_if=Mode pipe"`
	MorphPipe string  `yaml:"morph_pipe" validate:"required_if=Mode pipe"`
	Counter   Counter `yaml:"counter"`
}

type Counter struct {
	CountBin    string `yaml:"count_bin" validate:"required"`
	ConvertBin  string `yaml:"convert_bin" validate:"required"`
	Parallelism int    `yaml:"parallelism" validate:"gte=1"`
}

func Default() Config {
	limits := saturate.DefaultLimits()
	return Config{
		WorkDir: "/tmp/gql/",
		Limits:  Limits{Iterations: limits.Iterations, Nodes: limits.Nodes, Time: limits.Time},
		Oracle: Oracle{
			Mode:      "pipe",
			BlissPipe: "my_pipe",
			MorphPipe: "morph_pipe",
			Counter: Counter{
				CountBin:    "../peregrine-master/bin/count",
				ConvertBin:  "../peregrine-master/bin/convert_data",
				Parallelism: 1,
			},
		},
	}
}

var validate = validator.New()

// Load reads the file at path on top of the defaults, applies MOTIFSAT_* environment overrides
// and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"WORK_DIR":            &c.WorkDir,
		"DATA_GRAPH":          &c.DataGraph,
		"COST_CACHE":          &c.CostCache,
		"METRICS_OUT":         &c.MetricsOut,
		"ORACLE_MODE":         &c.Oracle.Mode,
		"ORACLE_BLISS_PIPE":   &c.Oracle.BlissPipe,
		"ORACLE_MORPH_PIPE":   &c.Oracle.MorphPipe,
		"COUNTER_COUNT_BIN":   &c.Oracle.Counter.CountBin,
		"COUNTER_CONVERT_BIN": &c.Oracle.Counter.ConvertBin,
	}
	for name, field := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*field = v
		}
	}
	ints := map[string]*int{
		"LIMITS_ITERATIONS":   &c.Limits.Iterations,
		"LIMITS_NODES":        &c.Limits.Nodes,
		"COUNTER_PARALLELISM": &c.Oracle.Counter.Parallelism,
	}
	for name, field := range ints {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*field = n
	}
	if v, ok := lookup(envPrefix + "LIMITS_TIME"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sLIMITS_TIME: %w", envPrefix, err)
		}
		c.Limits.Time = d
	}
	return nil
}
