package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrorResult is displayed instead of a value when a formula cannot be evaluated
const ErrorResult = "Error"

var (
	ErrEmpty     = errors.New("empty formula")
	ErrSyntax    = errors.New("syntax error")
	ErrNonFinite = errors.New("result is not a finite number")
)

// Evaluate computes expr and formats the result with exactly two decimals, or
// returns ErrorResult. It never panics.
func Evaluate(expr string) (result string) {
	defer func() {
		if recover() != nil {
			result = ErrorResult
		}
	}()
	v, err := Compute(expr)
	if err != nil {
		return ErrorResult
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Compute evaluates expr with the usual precedence: + - below * / %, then unary
// signs, then right-associative ^, then parentheses.
func Compute(expr string) (float64, error) {
	p := &parser{input: expr}
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, ErrEmpty
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, p.input[p.pos], p.pos)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// peek returns the next non-space byte, or 0 at the end
func (p *parser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
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

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			left *= right
		case '/':
			left /= right
		case '%':
			left = mod(left, right)
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	switch p.peek() {
	case '+':
		p.pos++
		return p.parseUnary()
	case '-':
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePower()
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) parsePrimary() (float64, error) {
	ch := p.peek()
	switch {
	case ch == 0:
		return 0, fmt.Errorf("%w: unexpected end of formula", ErrSyntax)
	case ch == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrSyntax)
		}
		p.pos++
		return v, nil
	case isDigit(ch) || ch == '.':
		return p.parseNumber()
	}
	return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, ch, p.pos)
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	// exponent only when digits follow
	if p.pos < len(p.input) && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
		j := p.pos + 1
		if j < len(p.input) && (p.input[j] == '+' || p.input[j] == '-') {
			j++
		}
		if j < len(p.input) && isDigit(p.input[j]) {
			for j < len(p.input) && isDigit(p.input[j]) {
				j++
			}
			p.pos = j
		}
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number %q", ErrSyntax, p.input[start:p.pos])
	}
	return v, nil
}

// mod takes the sign of the divisor; a zero divisor leaves x unchanged
func mod(x, y float64) float64 {
	if y == 0 {
		return x
	}
	return x - y*math.Floor(x/y)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
