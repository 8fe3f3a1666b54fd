// Package rules holds the rewrite rules of the optimizer and the Session they share during one
// saturation pass.
package rules

import (
	"log/slog"

	"github.com/hashicorp/go-set/v3"

	"github.com/cottand/motifsat/costs"
	"github.com/cottand/motifsat/internal/log"
	"github.com/cottand/motifsat/oracle"
	"github.com/cottand/motifsat/term"
)

var logger = log.DefaultLogger.With("section", "rules")

// Session is the state of one run that rules read and write: the cost table being filled, the
// collaborators that Morph expansion consults, and the set of already expanded Morph terms.
// A Session belongs to a single saturation pass and must not be shared between goroutines.
type Session struct {
	Costs         *costs.Table
	Canonicalizer oracle.Canonicalizer
	Counter       oracle.Counter
	Logger        *slog.Logger

	expanded *set.Set[string]
}

func NewSession(table *costs.Table, canon oracle.Canonicalizer, counter oracle.Counter) *Session {
	return &Session{
		Costs:         table,
		Canonicalizer: canon,
		Counter:       counter,
		Logger:        logger,
		expanded:      set.New[string](0),
	}
}

// Expanded returns how many distinct (provenance, pattern) pairs were expanded so far.
func (s *Session) Expanded() int { return s.expanded.Size() }

// markExpanded records the pair and reports whether it was new.
func (s *Session) markExpanded(pi, match *term.Term) bool {
	return s.expanded.Insert(pi.String() + " " + match.String())
}

// Register records every Match and formula occurring in t in the cost table.
func (s *Session) Register(t *term.Term) error {
	var err error
	t.Walk(func(sub *term.Term) bool {
		if err != nil {
			return false
		}
		switch sub.Op {
		case term.OpMatch:
			_, err = s.Costs.RegisterMatch(sub)
			return false
		case term.OpConst:
			var f term.Formula
			if f, err = sub.Formula(); err == nil {
				s.Costs.RegisterFormula(f)
			}
			return false
		}
		return true
	})
	return err
}
