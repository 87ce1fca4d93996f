package expr

import "fmt"

// ParseLinear parses linear-notation text into an expression tree.
//
// The grammar is precedence-climbing over the operators in tree.go,
// with explicit parentheses preserved as Group nodes and recognized
// function names followed by "(" parsed as calls. Function arguments
// split on top-level commas only; each argument is itself recursively
// parsed.
func ParseLinear(text string) (Node, error) {
	toks, err := scanLinear(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	node, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("unexpected %q after expression", tok.text)}
	}
	return node, nil
}

type parser struct {
	toks []tokenText
	idx  int
}

func (p *parser) peek() tokenText {
	return p.toks[p.idx]
}

func (p *parser) next() tokenText {
	t := p.toks[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

// parseExpr implements precedence climbing: parse a primary, then fold
// in operators whose precedence is at least minPrec.
func (p *parser) parseExpr(minPrec int) (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp {
			return left, nil
		}
		op := Op(tok.text)
		prec := op.precedence()
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		p.next()
		nextMin := prec + 1
		if op.rightAssoc() {
			nextMin = prec
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

// parsePrimary parses a leaf or prefix form: unary minus, number,
// parenthesized group, function call, or identifier.
func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokOp:
		if tok.text == "-" {
			p.next()
			operand, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return Neg{Operand: operand}, nil
		}
		return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("unexpected operator %q", tok.text)}
	case tokNumber:
		p.next()
		return Number{Value: tok.num}, nil
	case tokLParen:
		p.next()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return Group{Inner: inner}, nil
	case tokIdent:
		p.next()
		if IsFunc(tok.text) && p.peek().kind == tokLParen {
			return p.parseCall(tok.text)
		}
		return Variable{Name: tok.text}, nil
	case tokEOF:
		return nil, &ParseError{Pos: tok.pos, Message: "unexpected end of expression"}
	default:
		return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("unexpected %q", tok.text)}
	}
}

// parseCall parses the argument list of a recognized function. The
// opening paren is known to be next.
func (p *parser) parseCall(name string) (Node, error) {
	p.next() // consume "("
	var args []Node
	if p.peek().kind == tokRParen {
		p.next()
		return Call{Func: name, Args: args}, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.next()
		switch tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return Call{Func: name, Args: args}, nil
		default:
			return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("expected ',' or ')' in %s(...), got %q", name, tok.text)}
		}
	}
}

func (p *parser) expect(kind tokenKind, what string) error {
	tok := p.next()
	if tok.kind != kind {
		return &ParseError{Pos: tok.pos, Message: fmt.Sprintf("expected %q, got %q", what, tok.text)}
	}
	return nil
}
