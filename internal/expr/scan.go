package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// tokenKind discriminates scanner output.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

// tokenText holds one scanned token with its source position for error
// reporting.
type tokenText struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// scanLinear tokenizes linear-notation text. At each position it
// greedily tries, in order: a two-character operator, a one-character
// operator or delimiter, a number, then an identifier. Whitespace is
// skipped.
func scanLinear(src string) ([]tokenText, error) {
	var toks []tokenText
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.HasPrefix(src[i:], "==") || strings.HasPrefix(src[i:], "!=") ||
			strings.HasPrefix(src[i:], "<=") || strings.HasPrefix(src[i:], ">="):
			toks = append(toks, tokenText{kind: tokOp, text: src[i : i+2], pos: i})
			i += 2
		case strings.ContainsRune("+-*/%^<>", rune(c)):
			toks = append(toks, tokenText{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, tokenText{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, tokenText{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, tokenText{kind: tokComma, text: ",", pos: i})
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			text := src[i:j]
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &ParseError{Pos: i, Message: fmt.Sprintf("malformed number %q", text)}
			}
			toks = append(toks, tokenText{kind: tokNumber, text: text, num: num, pos: i})
			i = j
		case isIdentStart(rune(c)):
			j := i
			for j < len(src) && isIdentPart(rune(src[j])) {
				j++
			}
			toks = append(toks, tokenText{kind: tokIdent, text: src[i:j], pos: i})
			i = j
		default:
			return nil, &ParseError{Pos: i, Message: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, tokenText{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ParseError reports a malformed expression with its source offset.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Message)
}
