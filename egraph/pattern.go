package egraph

import (
	"fmt"
	"maps"

	"github.com/cottand/motifsat/term"
)

// Subst binds pattern variables to classes.
type Subst map[string]ClassID

// Match is one place a Pattern was found: the matched class and the variable bindings.
type Match struct {
	Class ClassID
	Subst Subst
}

// Pattern is a term whose symbols starting with '?' are variables. A variable that occurs
// more than once must bind the same class everywhere.
type Pattern struct {
	root *term.Term
	vars []string
}

func ParsePattern(s string) (*Pattern, error) {
	t, err := term.Read(s)
	if err != nil {
		return nil, err
	}
	return NewPattern(t), nil
}

func MustParsePattern(s string) *Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

func NewPattern(t *term.Term) *Pattern {
	p := &Pattern{root: t}
	seen := map[string]bool{}
	t.Walk(func(s *term.Term) bool {
		if s.IsVar() && !seen[s.Sym] {
			seen[s.Sym] = true
			p.vars = append(p.vars, s.Sym)
		}
		return true
	})
	return p
}

func (p *Pattern) Vars() []string { return p.vars }

func (p *Pattern) String() string { return p.root.String() }

// Search returns every match of the pattern in the store, classes in ascending id order.
func (p *Pattern) Search(g *EGraph) []Match {
	var out []Match
	for _, id := range g.Classes() {
		for _, s := range p.SearchClass(g, id) {
			out = append(out, Match{Class: id, Subst: s})
		}
	}
	return out
}

// SearchClass returns every substitution under which the pattern matches a term of the class of id.
func (p *Pattern) SearchClass(g *EGraph, id ClassID) []Subst {
	return g.ematch(p.root, g.Find(id), Subst{})
}

func (g *EGraph) ematch(pat *term.Term, id ClassID, subst Subst) []Subst {
	if pat.IsVar() {
		if bound, ok := subst[pat.Sym]; ok {
			if g.Find(bound) == id {
				return []Subst{subst}
			}
			return nil
		}
		next := maps.Clone(subst)
		next[pat.Sym] = id
		return []Subst{next}
	}

	var out []Subst
	for _, n := range g.Nodes(id) {
		if n.Op != pat.Op || n.Num != pat.Num || n.Sym != pat.Sym || len(n.Kids) != len(pat.Args) {
			continue
		}
		partial := []Subst{subst}
		for i, kid := range n.Kids {
			var next []Subst
			for _, s := range partial {
				next = append(next, g.ematch(pat.Args[i], kid, s)...)
			}
			partial = next
			if len(partial) == 0 {
				break
			}
		}
		out = append(out, partial...)
	}
	return out
}

// Instantiate inserts t with its variables replaced by their bindings and returns its class.
func (g *EGraph) Instantiate(t *term.Term, subst Subst) (ClassID, error) {
	if t.IsVar() {
		id, ok := subst[t.Sym]
		if !ok {
			return 0, fmt.Errorf("unbound variable %s", t.Sym)
		}
		return g.Find(id), nil
	}
	kids := make([]ClassID, len(t.Args))
	for i, a := range t.Args {
		k, err := g.Instantiate(a, subst)
		if err != nil {
			return 0, err
		}
		kids[i] = k
	}
	return g.Add(Node{Op: t.Op, Num: t.Num, Sym: t.Sym, Kids: kids}), nil
}
