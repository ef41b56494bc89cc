package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-ispdn/pkg/visibility"
)

// Evaluator is a small rule evaluator for step conditions.
//
// Supported forms:
//   - truthy checks: `employeesOnly`, `!employeesOnly`
//   - comparisons against literals: `employeesOnly == false`,
//     `dataType != "public"`, `nonEmployeeScope == null`
//   - membership for list answers: `threats has "unknown"`
//   - composition: `a && b`, `a || (b && !c)`
//
// An empty rule is always visible. Missing answers compare as null.
type Evaluator struct{}

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval parses and evaluates rule against ctx.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	tokens, err := lex(rule)
	if err != nil {
		return false, err
	}
	p := &parser{tokens: tokens}
	node, err := p.or()
	if err != nil {
		return false, err
	}
	if p.pos < len(p.tokens) {
		return false, fmt.Errorf("visibility/expr: unexpected token %q", p.tokens[p.pos].text)
	}
	return node.eval(ctx), nil
}

// Compile checks that rule parses without evaluating it.
func Compile(rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}
	tokens, err := lex(rule)
	if err != nil {
		return err
	}
	p := &parser{tokens: tokens}
	if _, err := p.or(); err != nil {
		return err
	}
	if p.pos < len(p.tokens) {
		return fmt.Errorf("visibility/expr: unexpected token %q", p.tokens[p.pos].text)
	}
	return nil
}

type kind int

const (
	kindIdent kind = iota
	kindString
	kindBool
	kindNull
	kindEq
	kindNeq
	kindHas
	kindAnd
	kindOr
	kindNot
	kindLParen
	kindRParen
)

type token struct {
	kind kind
	text string
}

func lex(input string) ([]token, error) {
	var out []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			out = append(out, token{kindLParen, "("})
			i++
		case ch == ')':
			out = append(out, token{kindRParen, ")"})
			i++
		case strings.HasPrefix(input[i:], "=="):
			out = append(out, token{kindEq, "=="})
			i += 2
		case strings.HasPrefix(input[i:], "!="):
			out = append(out, token{kindNeq, "!="})
			i += 2
		case strings.HasPrefix(input[i:], "&&"):
			out = append(out, token{kindAnd, "&&"})
			i += 2
		case strings.HasPrefix(input[i:], "||"):
			out = append(out, token{kindOr, "||"})
			i += 2
		case ch == '!':
			out = append(out, token{kindNot, "!"})
			i++
		case ch == '"' || ch == '\'':
			end := strings.IndexByte(input[i+1:], ch)
			if end < 0 {
				return nil, errors.New("visibility/expr: unterminated string literal")
			}
			out = append(out, token{kindString, input[i+1 : i+1+end]})
			i += end + 2
		case ch == '=' || ch == '&' || ch == '|':
			return nil, fmt.Errorf("visibility/expr: unexpected %q", ch)
		default:
			start := i
			for i < len(input) && !strings.ContainsRune(" \t\n\r()!=&|\"'", rune(input[i])) {
				i++
			}
			word := input[start:i]
			switch strings.ToLower(word) {
			case "true", "false":
				out = append(out, token{kindBool, strings.ToLower(word)})
			case "null", "nil":
				out = append(out, token{kindNull, "null"})
			case "has":
				out = append(out, token{kindHas, "has"})
			default:
				out = append(out, token{kindIdent, word})
			}
		}
	}
	return out, nil
}

type node interface {
	eval(ctx visibility.Context) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) || n.right.eval(ctx) }

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) && n.right.eval(ctx) }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) bool { return !n.inner.eval(ctx) }

type truthyNode struct{ ident string }

func (n truthyNode) eval(ctx visibility.Context) bool { return truthy(ctx.Values[n.ident]) }

type compareNode struct {
	ident   string
	op      kind
	literal token
}

func (n compareNode) eval(ctx visibility.Context) bool {
	value := ctx.Values[n.ident]
	var equal bool
	switch n.literal.kind {
	case kindNull:
		equal = isNull(value)
	case kindBool:
		got, ok := asBool(value)
		equal = ok && got == (n.literal.text == "true")
	default:
		equal = !isNull(value) && asString(value) == n.literal.text
	}
	if n.op == kindNeq {
		return !equal
	}
	return equal
}

type hasNode struct {
	ident string
	value string
}

func (n hasNode) eval(ctx visibility.Context) bool {
	switch list := ctx.Values[n.ident].(type) {
	case []string:
		for _, item := range list {
			if item == n.value {
				return true
			}
		}
	case []any:
		for _, item := range list {
			if asString(item) == n.value {
				return true
			}
		}
	}
	return false
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) match(k kind) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].kind == k {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(kindOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(kindAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.match(kindNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.match(kindLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.match(kindRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}
	if p.pos >= len(p.tokens) {
		return nil, errors.New("visibility/expr: empty expression")
	}
	ident := p.tokens[p.pos]
	if ident.kind != kindIdent {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", ident.text)
	}
	p.pos++

	switch {
	case p.match(kindEq):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return compareNode{ident: ident.text, op: kindEq, literal: lit}, nil
	case p.match(kindNeq):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return compareNode{ident: ident.text, op: kindNeq, literal: lit}, nil
	case p.match(kindHas):
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		return hasNode{ident: ident.text, value: lit.text}, nil
	}
	return truthyNode{ident: ident.text}, nil
}

func (p *parser) literal() (token, error) {
	if p.pos >= len(p.tokens) {
		return token{}, errors.New("visibility/expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case kindString, kindBool, kindNull:
		return tok, nil
	case kindIdent:
		// bare words compare as strings
		return token{kindString, tok.text}, nil
	default:
		return token{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.text)
	}
}

func isNull(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *bool:
		return v == nil
	case string:
		return v == ""
	}
	return false
}

func asBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case *bool:
		if v == nil {
			return false, false
		}
		return *v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return parsed, err == nil
	}
	return false, false
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	}
	return fmt.Sprint(value)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case *bool:
		return v != nil && *v
	case string:
		return strings.TrimSpace(v) != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	}
	return true
}
