package arith

import (
	"fmt"
	"strconv"
)

// EvalExpression evaluates src with a grammar restricted to decimal numbers,
// + - * / and parentheses. Whitespace is not accepted; callers strip it.
func EvalExpression(src string) (float64, error) {
	p := &parser{src: src}
	if src == "" {
		return 0, fmt.Errorf("empty expression: %w", ErrNotUnderstood)
	}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("unexpected %q at offset %d: %w", p.src[p.pos], p.pos, ErrNotUnderstood)
	}
	return v, nil
}

type parser struct {
	src   string
	pos   int
	depth int
}

const maxDepth = 64

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

// expr := term (('+' | '-') term)*
func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// term := factor (('*' | '/') factor)*
func (p *parser) term() (float64, error) {
	left, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.factor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
			continue
		}
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		left /= right
	}
}

// factor := ('+' | '-') factor | number | '(' expr ')'
func (p *parser) factor() (float64, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return 0, fmt.Errorf("expression nested too deeply: %w", ErrNotUnderstood)
	}

	switch c := p.peek(); {
	case c == '+' || c == '-':
		p.pos++
		v, err := p.factor()
		if c == '-' {
			v = -v
		}
		return v, err
	case c == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis: %w", ErrNotUnderstood)
		}
		p.pos++
		return v, nil
	case isDigit(c) || c == '.':
		return p.number()
	default:
		return 0, fmt.Errorf("unexpected input at offset %d: %w", p.pos, ErrNotUnderstood)
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	if p.peek() == '.' {
		p.pos++
		for isDigit(p.peek()) {
			p.pos++
		}
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", p.src[start:p.pos], ErrNotUnderstood)
	}
	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
