package mathexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPower // both "^" and "**"
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind tokenKind
	pos  int
	text string  // identifiers
	num  float64 // numbers
}

// tokenize splits src into tokens. It accepts decimal literals with an
// optional fraction and exponent, identifiers of letters and digits, and
// the operator set of the expression language.
func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			i = scanNumber(src, i)
			val, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at offset %d", ErrSyntax, src[start:i], start)
			}
			tokens = append(tokens, token{kind: tokenNumber, pos: start, num: val})
		case isIdentStart(rune(c)):
			start := i
			for i < len(src) && isIdentPart(rune(src[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, pos: start, text: src[start:i]})
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				tokens = append(tokens, token{kind: tokenPower, pos: i})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenStar, pos: i})
				i++
			}
		default:
			kind, ok := singleCharToken(c)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, c, i)
			}
			tokens = append(tokens, token{kind: kind, pos: i})
			i++
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, pos: len(src)})
	return tokens, nil
}

func singleCharToken(c byte) (tokenKind, bool) {
	switch c {
	case '+':
		return tokenPlus, true
	case '-':
		return tokenMinus, true
	case '/':
		return tokenSlash, true
	case '^':
		return tokenPower, true
	case '(':
		return tokenLParen, true
	case ')':
		return tokenRParen, true
	case ',':
		return tokenComma, true
	}
	return tokenEOF, false
}

// scanNumber consumes a numeric literal starting at i and returns the
// offset just past it. Exponent suffixes like "1e-3" are included only
// when the exponent digits are actually present, so "2e" lexes as the
// number 2 followed by the identifier e.
func scanNumber(src string, i int) int {
	for i < len(src) && (src[i] >= '0' && src[i] <= '9' || src[i] == '.') {
		i++
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && src[j] >= '0' && src[j] <= '9' {
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			return j
		}
	}
	return i
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenNumber:
		return "number"
	case tokenIdent:
		return "identifier"
	case tokenPlus:
		return `"+"`
	case tokenMinus:
		return `"-"`
	case tokenStar:
		return `"*"`
	case tokenSlash:
		return `"/"`
	case tokenPower:
		return `"^"`
	case tokenLParen:
		return `"("`
	case tokenRParen:
		return `")"`
	case tokenComma:
		return `","`
	}
	return "unknown token"
}

func (t token) describe() string {
	if t.kind == tokenIdent {
		return fmt.Sprintf("identifier %q", t.text)
	}
	if t.kind == tokenNumber {
		return "number " + strings.TrimRight(strconv.FormatFloat(t.num, 'g', -1, 64), ".")
	}
	return t.kind.String()
}
