package term

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/cottand/motifsat/util"
)

var intPattern = regexp.MustCompile(`^[+-]?\d+$`)

// ParseError reports malformed surface syntax. Offset is the byte offset of the offending token.
type ParseError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d in %q: %s", e.Offset, e.Input, e.Msg)
}

type tokenType uint8

const (
	tokenLeftParen tokenType = iota
	tokenRightParen
	tokenAtom
)

type token struct {
	typ    tokenType
	value  string
	offset int
}

func lex(input string) []token {
	var tokens []token
	for pos := 0; pos < len(input); {
		ch := rune(input[pos])
		switch {
		case unicode.IsSpace(ch):
			pos++
		case ch == '(':
			tokens = append(tokens, token{typ: tokenLeftParen, offset: pos})
			pos++
		case ch == ')':
			tokens = append(tokens, token{typ: tokenRightParen, offset: pos})
			pos++
		default:
			start := pos
			for pos < len(input) && !unicode.IsSpace(rune(input[pos])) && input[pos] != '(' && input[pos] != ')' {
				pos++
			}
			tokens = append(tokens, token{typ: tokenAtom, value: input[start:pos], offset: start})
		}
	}
	return tokens
}

// frame is a list being read: its head operator and the arguments seen so far.
type frame struct {
	op     Op
	offset int
	args   []*Term
}

// Read parses one term without normalising it. Symbols starting with '?' are pattern variables
// and are accepted in any argument position.
func Read(input string) (*Term, error) {
	fail := func(offset int, format string, args ...any) (*Term, error) {
		return nil, &ParseError{Input: input, Offset: offset, Msg: fmt.Sprintf(format, args...)}
	}

	tokens := lex(input)
	if len(tokens) == 0 {
		return fail(0, "empty input")
	}

	var (
		stack  util.Stack[frame]
		result *Term
	)
	emit := func(t *Term) {
		if top := stack.Peek(); top != nil {
			top.args = append(top.args, t)
			return
		}
		result = t
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if result != nil {
			return fail(tok.offset, "unexpected input after term")
		}
		switch tok.typ {
		case tokenLeftParen:
			if i+1 >= len(tokens) || tokens[i+1].typ != tokenAtom {
				return fail(tok.offset, "expected operator after '('")
			}
			i++
			op, ok := OpFromHead(tokens[i].value)
			if !ok {
				return fail(tokens[i].offset, "unknown operator %q", tokens[i].value)
			}
			stack.Push(frame{op: op, offset: tok.offset})
		case tokenRightParen:
			f, ok := stack.Pop()
			if !ok {
				return fail(tok.offset, "unbalanced ')'")
			}
			t := New(f.op, f.args...)
			if err := checkShape(t); err != nil {
				return fail(f.offset, "%s", err)
			}
			emit(t)
		case tokenAtom:
			if intPattern.MatchString(tok.value) {
				n, err := strconv.ParseInt(tok.value, 10, 64)
				if err != nil {
					return fail(tok.offset, "integer %s out of range", tok.value)
				}
				emit(Num(n))
				continue
			}
			emit(Symbol(tok.value))
		}
	}
	if stack.Len() > 0 {
		return fail(len(input), "unterminated list")
	}
	return result, nil
}

// checkShape validates the argument count and argument kinds of a compound term.
func checkShape(t *Term) error {
	switch arity := t.Op.Arity(); {
	case arity < 0 && len(t.Args) == 0:
		return fmt.Errorf("%s needs at least one argument", t.Op)
	case arity >= 0 && len(t.Args) != arity:
		return fmt.Errorf("%s takes %d arguments, got %d", t.Op, arity, len(t.Args))
	}
	want := func(i int, ops ...Op) error {
		a := t.Args[i]
		if a.IsVar() {
			return nil
		}
		for _, op := range ops {
			if a.Op == op {
				return nil
			}
		}
		return fmt.Errorf("argument %d of %s cannot be %s", i+1, t.Op, a)
	}
	var err error
	switch t.Op {
	case OpEdge, OpAntiEdge, OpNotEqual:
		err = firstError(want(0, OpSymbol), want(1, OpSymbol))
	case OpMatch:
		for i := range t.Args {
			err = firstError(err, want(i, OpEdge, OpAntiEdge, OpNotEqual))
		}
	case OpPi:
		for i := range t.Args {
			err = firstError(err, want(i, OpNum))
		}
	case OpConst:
		err = firstError(want(0, OpPi), want(1, OpSymbol))
		if err == nil && !t.Args[1].IsVar() && !Formula(t.Args[1].Sym).Valid() {
			err = fmt.Errorf("unknown formula %q", t.Args[1].Sym)
		}
	case OpCount:
		err = want(0, OpNum)
	case OpMorph:
		err = firstError(want(0, OpPi), want(1, OpMatch))
	}
	return err
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Parse reads one concrete term and normalises its Match and Pi subterms.
func Parse(input string) (*Term, error) {
	t, err := Read(input)
	if err != nil {
		return nil, err
	}
	var hasVar bool
	t.Walk(func(s *Term) bool {
		hasVar = hasVar || s.IsVar()
		return !hasVar
	})
	if hasVar {
		return nil, &ParseError{Input: input, Msg: "pattern variables are not allowed here"}
	}
	norm, err := Normalize(t)
	if err != nil {
		return nil, &ParseError{Input: input, Msg: err.Error()}
	}
	return norm, nil
}

func MustParse(input string) *Term {
	t, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return t
}

// Normalize rebuilds t with every Match and Pi subterm in normal form.
func Normalize(t *Term) (*Term, error) {
	switch t.Op {
	case OpMatch:
		return NormalizeMatch(t)
	case OpPi:
		return NormalizePi(t)
	case OpSymbol, OpNum:
		return t, nil
	}
	args := make([]*Term, len(t.Args))
	for i, a := range t.Args {
		norm, err := Normalize(a)
		if err != nil {
			return nil, err
		}
		args[i] = norm
	}
	return New(t.Op, args...), nil
}

// ReadPatterns reads one Match term per non-blank line. Lines starting with ';' or '#' are comments.
func ReadPatterns(r io.Reader) ([]*Term, error) {
	var patterns []*Term
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if t.Op != OpMatch {
			return nil, fmt.Errorf("line %d: expected a Match pattern, got %s", lineNo, t.Op)
		}
		patterns = append(patterns, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}
