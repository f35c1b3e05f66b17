// Package eval parses and evaluates restricted arithmetic expressions into
// monetary amounts. The grammar is closed: numbers, "+", "-", "*", "/" and
// parentheses, nothing else. No identifiers, no calls, no code execution.
package eval

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"moneyplus/internal/core"
)

// Evaluate computes the expression and rounds the result to two decimals
// (half away from zero). It fails with core.ErrInvalidExpression on
// malformed input and core.ErrDivisionByZero on division by zero.
func Evaluate(s string) (core.Money, error) {
	p, err := newParser(s, true)
	if err != nil {
		return core.Money{}, err
	}
	v, err := p.parseExpr()
	if err != nil {
		return core.Money{}, err
	}
	if err := p.expectEOF(); err != nil {
		return core.Money{}, err
	}
	return core.MoneyFromDecimal(v), nil
}

// Check validates the expression's shape without computing it. Division by
// zero is deliberately not detected here; it surfaces at evaluation time.
func Check(s string) error {
	p, err := newParser(s, false)
	if err != nil {
		return err
	}
	if _, err := p.parseExpr(); err != nil {
		return err
	}
	return p.expectEOF()
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	tokens  []token
	idx     int
	compute bool
}

func newParser(s string, compute bool) (*parser, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	return &parser{tokens: tokens, compute: compute}, nil
}

func tokenize(s string) ([]token, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty expression: %w", core.ErrInvalidExpression)
	}
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ':
			i++
		case c == '+':
			tokens = append(tokens, token{tokPlus, "+", i})
			i++
		case c == '-':
			tokens = append(tokens, token{tokMinus, "-", i})
			i++
		case c == '*':
			tokens = append(tokens, token{tokStar, "*", i})
			i++
		case c == '/':
			tokens = append(tokens, token{tokSlash, "/", i})
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			dots := 0
			for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
				if s[i] == '.' {
					dots++
				}
				i++
			}
			text := s[start:i]
			if dots > 1 || text == "." {
				return nil, fmt.Errorf("malformed number %q at %d: %w", text, start, core.ErrInvalidExpression)
			}
			tokens = append(tokens, token{tokNumber, text, start})
		default:
			return nil, fmt.Errorf("disallowed character %q at %d: %w", c, i, core.ErrInvalidExpression)
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(s)})
	return tokens, nil
}

func (p *parser) peek() token {
	return p.tokens[p.idx]
}

func (p *parser) next() token {
	t := p.tokens[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

func (p *parser) expectEOF() error {
	if t := p.peek(); t.kind != tokEOF {
		return fmt.Errorf("unexpected %q at %d: %w", t.text, t.pos, core.ErrInvalidExpression)
	}
	return nil
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (decimal.Decimal, error) {
	v, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			rhs, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			v = v.Add(rhs)
		case tokMinus:
			p.next()
			rhs, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			v = v.Sub(rhs)
		default:
			return v, nil
		}
	}
}

// term := factor (('*'|'/') factor)*
func (p *parser) parseTerm() (decimal.Decimal, error) {
	v, err := p.parseFactor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			rhs, err := p.parseFactor()
			if err != nil {
				return decimal.Zero, err
			}
			v = v.Mul(rhs)
		case tokSlash:
			t := p.next()
			rhs, err := p.parseFactor()
			if err != nil {
				return decimal.Zero, err
			}
			if p.compute {
				if rhs.IsZero() {
					return decimal.Zero, fmt.Errorf("at %d: %w", t.pos, core.ErrDivisionByZero)
				}
				// 16 significant fractional digits is far beyond the final
				// two-decimal rounding; DivRound keeps the quotient exact
				// enough for any chained arithmetic.
				v = v.DivRound(rhs, 16)
			}
		default:
			return v, nil
		}
	}
}

// factor := ('+'|'-') factor | number | '(' expr ')'
func (p *parser) parseFactor() (decimal.Decimal, error) {
	t := p.next()
	switch t.kind {
	case tokPlus:
		return p.parseFactor()
	case tokMinus:
		v, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	case tokNumber:
		text := t.text
		if strings.HasPrefix(text, ".") {
			text = "0" + text
		}
		if strings.HasSuffix(text, ".") {
			text += "0"
		}
		v, err := decimal.NewFromString(text)
		if err != nil {
			return decimal.Zero, fmt.Errorf("malformed number %q at %d: %w", t.text, t.pos, core.ErrInvalidExpression)
		}
		return v, nil
	case tokLParen:
		v, err := p.parseExpr()
		if err != nil {
			return decimal.Zero, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return decimal.Zero, fmt.Errorf("unbalanced parenthesis at %d: %w", t.pos, core.ErrInvalidExpression)
		}
		return v, nil
	case tokEOF:
		return decimal.Zero, fmt.Errorf("missing operand at %d: %w", t.pos, core.ErrInvalidExpression)
	default:
		return decimal.Zero, fmt.Errorf("unexpected %q at %d: %w", t.text, t.pos, core.ErrInvalidExpression)
	}
}
