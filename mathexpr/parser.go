package mathexpr

import (
	"fmt"
	"math"
)

// node is a compiled expression tree node.
type node interface {
	eval(x, y float64) (float64, error)
}

type numNode float64

func (n numNode) eval(x, y float64) (float64, error) { return float64(n), nil }

type varNode byte // 'x' or 'y'

func (v varNode) eval(x, y float64) (float64, error) {
	if v == 'x' {
		return x, nil
	}
	return y, nil
}

type negNode struct{ arg node }

func (n negNode) eval(x, y float64) (float64, error) {
	v, err := n.arg.eval(x, y)
	return -v, err
}

type binNode struct {
	op   tokenKind
	l, r node
}

func (b binNode) eval(x, y float64) (float64, error) {
	lv, err := b.l.eval(x, y)
	if err != nil {
		return 0, err
	}
	rv, err := b.r.eval(x, y)
	if err != nil {
		return 0, err
	}
	var v float64
	switch b.op {
	case tokenPlus:
		v = lv + rv
	case tokenMinus:
		v = lv - rv
	case tokenStar:
		v = lv * rv
	case tokenSlash:
		if rv == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrDomain)
		}
		v = lv / rv
	case tokenPower:
		v = math.Pow(lv, rv)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite result", ErrDomain)
	}
	return v, nil
}

type callNode struct {
	name string
	fn   func(float64) (float64, error)
	arg  node
}

func (c callNode) eval(x, y float64) (float64, error) {
	v, err := c.arg.eval(x, y)
	if err != nil {
		return 0, err
	}
	r, err := c.fn(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", c.name, err)
	}
	return r, nil
}

// parser is a recursive-descent parser over the token stream.
//
// Grammar, loosest binding first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = { "+" | "-" } power
//	power   = primary [ ("^" | "**") unary ]     (right-associative)
//	primary = number | "x" | "y" | constant | func "(" expr ")" | "(" expr ")"
//
// Unary minus binds looser than the power operator, so "-x^2" parses as
// "-(x^2)", matching usual mathematical convention.
type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("%w: expected %v, found %s at offset %d", ErrSyntax, kind, t.describe(), t.pos)
	}
	return t, nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokenPlus && op != tokenMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binNode{op: op, l: left, r: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokenStar && op != tokenSlash {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binNode{op: op, l: left, r: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	switch p.peek().kind {
	case tokenMinus:
		p.next()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negNode{arg: arg}, nil
	case tokenPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenPower {
		return base, nil
	}
	p.next()
	// Right-associative: the exponent may itself be a unary or a power.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return binNode{op: tokenPower, l: base, r: exp}, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokenNumber:
		return numNode(t.num), nil
	case tokenIdent:
		return p.parseName(t)
	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, t.describe(), t.pos)
}

func (p *parser) parseName(t token) (node, error) {
	switch t.text {
	case "x":
		return varNode('x'), nil
	case "y":
		return varNode('y'), nil
	}
	if c, ok := constants[t.text]; ok {
		return numNode(c), nil
	}
	fn, ok := functions[t.text]
	if !ok {
		return nil, fmt.Errorf("%w: %q at offset %d", ErrUnknownName, t.text, t.pos)
	}
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	return callNode{name: t.text, fn: fn, arg: arg}, nil
}
