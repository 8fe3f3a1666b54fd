// Package term is the expression algebra rewritten by the optimizer: motif patterns, provenance
// tags, formula constants and the count semiring built over them.
package term

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type Op uint8

const (
	OpSymbol Op = iota
	OpNum
	OpEdge
	OpAntiEdge
	OpNotEqual
	OpMatch
	OpPi
	OpConst
	OpCount
	OpUnion
	OpMorph
)

var heads = map[Op]string{
	OpEdge:     "--",
	OpAntiEdge: "!-",
	OpNotEqual: "<>",
	OpMatch:    "Match",
	OpPi:       "Pi",
	OpConst:    "Const",
	OpCount:    "Count",
	OpUnion:    "Union",
	OpMorph:    "Morph",
}

func (o Op) String() string {
	switch o {
	case OpSymbol:
		return "Symbol"
	case OpNum:
		return "Num"
	}
	if h, ok := heads[o]; ok {
		return h
	}
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// OpFromHead returns the operator spelled head in the surface syntax.
func OpFromHead(head string) (Op, bool) {
	for op, h := range heads {
		if h == head {
			return op, true
		}
	}
	return 0, false
}

// Arity is the fixed number of arguments of o, or -1 when o takes any positive number of them.
func (o Op) Arity() int {
	switch o {
	case OpSymbol, OpNum:
		return 0
	case OpMatch, OpPi:
		return -1
	default:
		return 2
	}
}

// Term is an immutable expression tree. Only Sym is set on symbols and only Num on numbers.
type Term struct {
	Op   Op
	Num  int64
	Sym  string
	Args []*Term
}

func Symbol(name string) *Term { return &Term{Op: OpSymbol, Sym: name} }

func Num(n int64) *Term { return &Term{Op: OpNum, Num: n} }

// New builds a compound term without validating or normalising its arguments.
func New(op Op, args ...*Term) *Term { return &Term{Op: op, Args: args} }

func Edge(u, v string) *Term { return New(OpEdge, Symbol(u), Symbol(v)) }

func AntiEdge(u, v string) *Term { return New(OpAntiEdge, Symbol(u), Symbol(v)) }

func NotEqual(u, v string) *Term { return New(OpNotEqual, Symbol(u), Symbol(v)) }

func Count(n int64, t *Term) *Term { return New(OpCount, Num(n), t) }

func Union(l, r *Term) *Term { return New(OpUnion, l, r) }

func Morph(pi, pattern *Term) *Term { return New(OpMorph, pi, pattern) }

func Const(pi *Term, f Formula) *Term { return New(OpConst, pi, Symbol(string(f))) }

// IsVar reports whether t is a pattern variable such as ?x.
func (t *Term) IsVar() bool {
	return t.Op == OpSymbol && strings.HasPrefix(t.Sym, "?")
}

func (t *Term) Equal(o *Term) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Op != o.Op || t.Num != o.Num || t.Sym != o.Sym || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Size is the number of nodes in the tree.
func (t *Term) Size() int {
	n := 1
	for _, a := range t.Args {
		n += a.Size()
	}
	return n
}

// Walk calls f on t and every subterm in pre-order until f returns false.
func (t *Term) Walk(f func(*Term) bool) {
	if !f(t) {
		return
	}
	for _, a := range t.Args {
		a.Walk(f)
	}
}

// Contains reports whether some subterm of t has operator op.
func (t *Term) Contains(op Op) bool {
	found := false
	t.Walk(func(s *Term) bool {
		found = found || s.Op == op
		return !found
	})
	return found
}

func (t *Term) String() string {
	sb := &strings.Builder{}
	t.write(sb)
	return sb.String()
}

func (t *Term) write(sb *strings.Builder) {
	switch t.Op {
	case OpSymbol:
		sb.WriteString(t.Sym)
	case OpNum:
		sb.WriteString(strconv.FormatInt(t.Num, 10))
	default:
		sb.WriteByte('(')
		sb.WriteString(t.Op.String())
		for _, a := range t.Args {
			sb.WriteByte(' ')
			a.write(sb)
		}
		sb.WriteByte(')')
	}
}

// Coefficient returns n for a term (Count n _).
func (t *Term) Coefficient() (int64, error) {
	if t.Op != OpCount || t.Args[0].Op != OpNum {
		return 0, fmt.Errorf("expected (Count n _), got %s", t)
	}
	return t.Args[0].Num, nil
}

// Indices returns the provenance indices of a Pi term.
func (t *Term) Indices() ([]int, error) {
	if t.Op != OpPi {
		return nil, fmt.Errorf("expected Pi, got %s", t)
	}
	out := make([]int, len(t.Args))
	for i, a := range t.Args {
		if a.Op != OpNum {
			return nil, fmt.Errorf("expected index in %s, got %s", t, a)
		}
		out[i] = int(a.Num)
	}
	return out, nil
}

// Formula returns the formula id of a Const term.
func (t *Term) Formula() (Formula, error) {
	if t.Op != OpConst || t.Args[1].Op != OpSymbol {
		return "", fmt.Errorf("expected (Const pi f), got %s", t)
	}
	f := Formula(t.Args[1].Sym)
	if !f.Valid() {
		return "", fmt.Errorf("unknown formula %q", f)
	}
	return f, nil
}

// Vertices returns the distinct vertex labels of a Match term in label order.
func (t *Term) Vertices() []string {
	var labels []string
	for _, e := range t.Args {
		for _, v := range e.Args {
			if !slices.Contains(labels, v.Sym) {
				labels = append(labels, v.Sym)
			}
		}
	}
	slices.SortFunc(labels, compareLabels)
	return labels
}
