// Package expr evaluates the small arithmetic expressions accepted for
// frequencies, offsets and sample counts, such as "(500.0/328.0)*(11.0/19.0)"
// or "77*19".
//
// Evaluation is float64 and follows the grouping as written, so an expression
// copied from a reference driver reproduces its literal value bit for bit.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Errors returned by Eval.
var (
	// ErrSyntax indicates a malformed expression.
	ErrSyntax = errors.New("invalid expression")

	// ErrDivisionByZero indicates a literal division by zero.
	ErrDivisionByZero = errors.New("division by zero in expression")
)

// Eval parses and evaluates s.
//
// Grammar:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = [ "+" | "-" ] unary | factor
//	factor = number | "(" expr ")"
//	number = digits [ "." [ digits ] ] [ exponent ] | "." digits [ exponent ]
//	exponent = ( "e" | "E" ) [ "+" | "-" ] digits
func Eval(s string) (float64, error) {
	p := &parser{src: s}
	p.next()
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, p.tok.text, p.tok.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrSyntax, s)
	}
	return v, nil
}

// EvalInt evaluates s and requires a whole-number result.
func EvalInt(s string) (int, error) {
	v, err := Eval(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrSyntax, s)
	}
	return int(v), nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  float64
}

type parser struct {
	src string
	pos int
	tok token
}

func (p *parser) next() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.src[p.pos]
	switch {
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case c == '+' || c == '-' || c == '*' || c == '/':
		p.pos++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	case isDigit(c) || c == '.':
		p.scanNumber(start)
	default:
		p.pos++
		p.tok = token{kind: tokInvalid, text: string(c), pos: start}
	}
}

func (p *parser) scanNumber(start int) {
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	// Exponent: 1e6, 2.5E-3
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}

	text := p.src[start:p.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.tok = token{kind: tokInvalid, text: text, pos: start}
		return
	}
	p.tok = token{kind: tokNumber, text: text, pos: start, num: v}
}

func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

func (p *parser) term() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op, pos := p.tok.text, p.tok.pos
		p.next()
		rhs, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			v = float64(v * rhs)
			continue
		}
		if rhs == 0 {
			return 0, fmt.Errorf("%w at offset %d", ErrDivisionByZero, pos)
		}
		v = float64(v / rhs)
	}
	return v, nil
}

func (p *parser) unary() (float64, error) {
	if p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		neg := p.tok.text == "-"
		p.next()
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if neg {
			return -v, nil
		}
		return v, nil
	}
	return p.factor()
}

func (p *parser) factor() (float64, error) {
	switch p.tok.kind {
	case tokNumber:
		v := p.tok.num
		p.next()
		return v, nil
	case tokLParen:
		p.next()
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			return 0, fmt.Errorf("%w: missing ')' at offset %d", ErrSyntax, p.tok.pos)
		}
		p.next()
		return v, nil
	case tokEOF:
		return 0, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	default:
		return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, p.tok.text, p.tok.pos)
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
