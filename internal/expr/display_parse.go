package expr

import (
	"fmt"
	"strconv"
)

// ParseDisplay parses display (typeset) notation back into a tree.
// It accepts everything FormatDisplay emits: operator commands,
// superscripts, radicals, bars, bracket glyph commands, and grouped
// identifiers.
func ParseDisplay(text string) (Node, error) {
	toks, err := scanDisplay(text)
	if err != nil {
		return nil, err
	}
	p := &displayParser{toks: toks}
	node, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != dtokEOF {
		return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("unexpected %q after expression", tok.text)}
	}
	return node, nil
}

type dtokKind int

const (
	dtokEOF dtokKind = iota
	dtokNumber
	dtokIdent
	dtokCmd // backslash command, text holds the bare name
	dtokOp  // single-character operator: + - = < >
	dtokLParen
	dtokRParen
	dtokLBrace
	dtokRBrace
	dtokCaret
	dtokUnderscore
	dtokComma
)

type dtok struct {
	kind dtokKind
	text string
	num  float64
	pos  int
}

// scanDisplay tokenizes display notation. Backslash commands scan as
// one token; "\left|" and "\right|" fold the trailing bar into the
// command so the parser sees balanced bar delimiters.
func scanDisplay(src string) ([]dtok, error) {
	var toks []dtok
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\\':
			j := i + 1
			for j < len(src) && (src[j] >= 'a' && src[j] <= 'z' || src[j] >= 'A' && src[j] <= 'Z') {
				j++
			}
			if j == i+1 {
				return nil, &ParseError{Pos: i, Message: "bare backslash"}
			}
			name := src[i+1 : j]
			if (name == "left" || name == "right") && j < len(src) && src[j] == '|' {
				name += "|"
				j++
			}
			toks = append(toks, dtok{kind: dtokCmd, text: name, pos: i})
			i = j
		case c == '{':
			toks = append(toks, dtok{kind: dtokLBrace, text: "{", pos: i})
			i++
		case c == '}':
			toks = append(toks, dtok{kind: dtokRBrace, text: "}", pos: i})
			i++
		case c == '(':
			toks = append(toks, dtok{kind: dtokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, dtok{kind: dtokRParen, text: ")", pos: i})
			i++
		case c == '^':
			toks = append(toks, dtok{kind: dtokCaret, text: "^", pos: i})
			i++
		case c == '_':
			toks = append(toks, dtok{kind: dtokUnderscore, text: "_", pos: i})
			i++
		case c == ',':
			toks = append(toks, dtok{kind: dtokComma, text: ",", pos: i})
			i++
		case c == '+' || c == '-' || c == '=' || c == '<' || c == '>':
			toks = append(toks, dtok{kind: dtokOp, text: string(c), pos: i})
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			num, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, &ParseError{Pos: i, Message: fmt.Sprintf("malformed number %q", src[i:j])}
			}
			toks = append(toks, dtok{kind: dtokNumber, text: src[i:j], num: num, pos: i})
			i = j
		case isIdentStart(rune(c)):
			j := i
			for j < len(src) && isIdentPart(rune(src[j])) {
				j++
			}
			toks = append(toks, dtok{kind: dtokIdent, text: src[i:j], pos: i})
			i = j
		default:
			return nil, &ParseError{Pos: i, Message: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, dtok{kind: dtokEOF, pos: len(src)})
	return toks, nil
}

type displayParser struct {
	toks []dtok
	idx  int
}

func (p *displayParser) peek() dtok {
	return p.toks[p.idx]
}

func (p *displayParser) next() dtok {
	t := p.toks[p.idx]
	if t.kind != dtokEOF {
		p.idx++
	}
	return t
}

// displayInfix maps a token to its operator, if it is one. The "in"
// command is handled separately because it builds a call, not a Binary.
func displayInfix(t dtok) (Op, bool) {
	switch t.kind {
	case dtokOp:
		switch t.text {
		case "+":
			return OpAdd, true
		case "-":
			return OpSub, true
		case "=":
			return OpEq, true
		case "<":
			return OpLt, true
		case ">":
			return OpGt, true
		}
	case dtokCmd:
		switch t.text {
		case "times":
			return OpMul, true
		case "div":
			return OpDiv, true
		case "bmod":
			return OpMod, true
		case "neq":
			return OpNe, true
		case "leq":
			return OpLe, true
		case "geq":
			return OpGe, true
		}
	}
	return "", false
}

func (p *displayParser) parseExpr(minPrec int) (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind == dtokCmd && tok.text == "in" {
			if minPrec > 1 {
				return left, nil
			}
			p.next()
			right, err := p.parseExpr(2)
			if err != nil {
				return nil, err
			}
			// "x \in list" is contains(list, x).
			left = Call{Func: "contains", Args: []Node{right, left}}
			continue
		}
		op, ok := displayInfix(tok)
		if !ok {
			return left, nil
		}
		prec := op.precedence()
		if prec < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

// parsePrimary parses one display primary, then folds in a trailing
// superscript if present.
func (p *displayParser) parsePrimary() (Node, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != dtokCaret {
		return base, nil
	}
	p.next()
	exponent, err := p.parseBraceOrAtom()
	if err != nil {
		return nil, err
	}
	// "e" superscripted is the exponential function, not a power.
	if v, ok := base.(Variable); ok && v.Name == "e" {
		return Call{Func: "exp", Args: []Node{exponent}}, nil
	}
	if g, ok := base.(Group); ok {
		// Parens around a compound power base are notation, not
		// author grouping.
		return Binary{Op: OpPow, Left: g.Inner, Right: exponent}, nil
	}
	return Binary{Op: OpPow, Left: base, Right: exponent}, nil
}

func (p *displayParser) parseAtom() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case dtokNumber:
		p.next()
		return Number{Value: tok.num}, nil
	case dtokIdent:
		p.next()
		return Variable{Name: tok.text}, nil
	case dtokOp:
		if tok.text == "-" {
			p.next()
			operand, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return Neg{Operand: operand}, nil
		}
	case dtokLParen:
		p.next()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(dtokRParen, ")"); err != nil {
			return nil, err
		}
		return Group{Inner: inner}, nil
	case dtokCmd:
		return p.parseCommand()
	case dtokEOF:
		return nil, &ParseError{Pos: tok.pos, Message: "unexpected end of expression"}
	}
	return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("unexpected %q", tok.text)}
}

// parseBraceOrAtom parses either a braced expression or a single atom.
// Superscript exponents are usually braced but a bare digit is legal.
func (p *displayParser) parseBraceOrAtom() (Node, error) {
	if p.peek().kind != dtokLBrace {
		return p.parseAtom()
	}
	p.next()
	inner, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(dtokRBrace, "}"); err != nil {
		return nil, err
	}
	return inner, nil
}

func (p *displayParser) parseCommand() (Node, error) {
	tok := p.next()
	switch tok.text {
	case "mathit":
		name, err := p.parseBracedIdent()
		if err != nil {
			return nil, err
		}
		return Variable{Name: name}, nil
	case "sqrt":
		inner, err := p.parseBraceOrAtom()
		if err != nil {
			return nil, err
		}
		return Call{Func: "sqrt", Args: []Node{inner}}, nil
	case "left|":
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectCmd("right|"); err != nil {
			return nil, err
		}
		return Call{Func: "abs", Args: []Node{inner}}, nil
	case "lfloor":
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectCmd("rfloor"); err != nil {
			return nil, err
		}
		return Call{Func: "floor", Args: []Node{inner}}, nil
	case "lceil":
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectCmd("rceil"); err != nil {
			return nil, err
		}
		return Call{Func: "ceil", Args: []Node{inner}}, nil
	case "log":
		// Only base 10 is written with a subscript.
		if err := p.expect(dtokUnderscore, "_"); err != nil {
			return nil, err
		}
		baseNode, err := p.parseBraceOrAtom()
		if err != nil {
			return nil, err
		}
		if num, ok := baseNode.(Number); !ok || num.Value != 10 {
			return nil, &ParseError{Pos: tok.pos, Message: "unsupported log base"}
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return Call{Func: "log10", Args: args}, nil
	case "min", "max", "sin", "cos", "tan", "ln":
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return Call{Func: tok.text, Args: args}, nil
	case "operatorname":
		name, err := p.parseBracedIdent()
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return Call{Func: name, Args: args}, nil
	}
	return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("unknown command %q", "\\"+tok.text)}
}

func (p *displayParser) parseBracedIdent() (string, error) {
	if err := p.expect(dtokLBrace, "{"); err != nil {
		return "", err
	}
	tok := p.next()
	if tok.kind != dtokIdent {
		return "", &ParseError{Pos: tok.pos, Message: fmt.Sprintf("expected identifier, got %q", tok.text)}
	}
	if err := p.expect(dtokRBrace, "}"); err != nil {
		return "", err
	}
	return tok.text, nil
}

func (p *displayParser) parseArgs() ([]Node, error) {
	if err := p.expect(dtokLParen, "("); err != nil {
		return nil, err
	}
	var args []Node
	if p.peek().kind == dtokRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.next()
		switch tok.kind {
		case dtokComma:
			continue
		case dtokRParen:
			return args, nil
		default:
			return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("expected ',' or ')', got %q", tok.text)}
		}
	}
}

func (p *displayParser) expect(kind dtokKind, what string) error {
	tok := p.next()
	if tok.kind != kind {
		return &ParseError{Pos: tok.pos, Message: fmt.Sprintf("expected %q, got %q", what, tok.text)}
	}
	return nil
}

func (p *displayParser) expectCmd(name string) error {
	tok := p.next()
	if tok.kind != dtokCmd || tok.text != name {
		return &ParseError{Pos: tok.pos, Message: fmt.Sprintf("expected %q, got %q", "\\"+name, tok.text)}
	}
	return nil
}
