// Package saturate runs rewrite rules over an e-graph until nothing changes or a limit is hit.
package saturate

import (
	"context"
	"fmt"
	"time"

	"github.com/cottand/motifsat/egraph"
	"github.com/cottand/motifsat/internal/log"
	"github.com/cottand/motifsat/internal/metrics"
	"github.com/cottand/motifsat/rules"
)

var logger = log.DefaultLogger.With("section", "saturate")

// Limits bound a saturation run. A zero field means no bound on that resource.
type Limits struct {
	Iterations int
	Nodes      int
	Time       time.Duration
}

func DefaultLimits() Limits {
	return Limits{Iterations: 40, Nodes: 100_000, Time: 120 * time.Second}
}

type StopReason string

const (
	Saturated      StopReason = "saturated"
	IterationLimit StopReason = "iteration_limit"
	NodeLimit      StopReason = "node_limit"
	TimeLimit      StopReason = "time_limit"
)

// Report describes a finished run.
type Report struct {
	Stop       StopReason
	Iterations int
	Classes    int
	Nodes      int
	Elapsed    time.Duration
	// Applications counts the merges caused by each rule.
	Applications map[string]int
}

type Runner struct {
	Rules   []rules.Rule
	Limits  Limits
	Metrics *metrics.Metrics

	clock func() time.Time
}

func NewRunner(rs []rules.Rule, limits Limits, m *metrics.Metrics) *Runner {
	return &Runner{Rules: rs, Limits: limits, Metrics: m, clock: time.Now}
}

type pending struct {
	rule  *rules.Rule
	match egraph.Match
}

// Run saturates g. Each iteration searches every rule against the current e-graph, then applies
// all matches, then restores congruence. Errors from appliers abort the run.
func (r *Runner) Run(ctx context.Context, s *rules.Session, g *egraph.EGraph) (Report, error) {
	if r.clock == nil {
		r.clock = time.Now
	}
	start := r.clock()
	report := Report{Applications: map[string]int{}}
	finish := func(stop StopReason) (Report, error) {
		report.Stop = stop
		report.Classes = g.NumClasses()
		report.Nodes = g.NumNodes()
		report.Elapsed = r.clock().Sub(start)
		if r.Metrics != nil {
			r.Metrics.Stops.WithLabelValues(string(stop)).Inc()
		}
		logger.Info("saturation finished",
			"stop", stop,
			"iterations", report.Iterations,
			"classes", report.Classes,
			"nodes", report.Nodes,
			"elapsed", report.Elapsed,
		)
		return report, nil
	}

	for {
		if stop, ok := r.exceeded(g, report.Iterations, start); ok {
			return finish(stop)
		}
		iterStart := r.clock()
		version := g.Version()

		var found []pending
		for i := range r.Rules {
			rule := &r.Rules[i]
			for _, m := range rule.Pattern.Search(g) {
				found = append(found, pending{rule: rule, match: m})
			}
		}

		interrupted := StopReason("")
		for _, p := range found {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			ids, err := p.rule.Apply(ctx, s, g, p.match.Subst)
			if err != nil {
				return report, fmt.Errorf("rule %s: %w", p.rule.Name, err)
			}
			for _, id := range ids {
				if g.Union(p.match.Class, id) {
					report.Applications[p.rule.Name]++
					if r.Metrics != nil {
						r.Metrics.RuleApplications.WithLabelValues(p.rule.Name).Inc()
					}
				}
			}
			if stop, ok := r.exceeded(g, -1, start); ok {
				interrupted = stop
				break
			}
		}
		g.Rebuild()
		report.Iterations++

		if r.Metrics != nil {
			r.Metrics.Iterations.Inc()
			r.Metrics.IterationSeconds.Observe(r.clock().Sub(iterStart).Seconds())
			r.Metrics.Classes.Set(float64(g.NumClasses()))
			r.Metrics.Nodes.Set(float64(g.Size()))
		}
		logger.Debug("iteration", "n", report.Iterations, "matches", len(found), "classes", g.NumClasses(), "size", g.Size())

		if interrupted != "" {
			return finish(interrupted)
		}
		if g.Version() == version {
			return finish(Saturated)
		}
	}
}

// exceeded reports the first limit reached. iterations < 0 skips the iteration limit.
func (r *Runner) exceeded(g *egraph.EGraph, iterations int, start time.Time) (StopReason, bool) {
	switch {
	case r.Limits.Iterations > 0 && iterations >= r.Limits.Iterations:
		return IterationLimit, true
	case r.Limits.Nodes > 0 && g.Size() >= r.Limits.Nodes:
		return NodeLimit, true
	case r.Limits.Time > 0 && r.clock().Sub(start) >= r.Limits.Time:
		return TimeLimit, true
	}
	return "", false
}
