package sparql

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF     tokenKind = iota
	tokIRI               // <...>, text without the brackets
	tokPName             // prefix:local as written
	tokBlank             // _:label, text is the label
	tokVar               // ?x or $x, text is the name
	tokString            // quoted literal, text is the unescaped value
	tokLangTag           // @tag, text is the tag
	tokInteger
	tokDecimal
	tokDouble
	tokWord  // keyword or function name
	tokPunct // brackets, separators and operators
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of query"
	case tokIRI:
		return "<" + t.text + ">"
	case tokVar:
		return "?" + t.text
	case tokString:
		return strconv.Quote(t.text)
	case tokLangTag:
		return "@" + t.text
	case tokBlank:
		return "_:" + t.text
	default:
		return "'" + t.text + "'"
	}
}

// SyntaxError reports a malformed query with the position of the
// offending token.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

// lex splits a query into tokens. The returned slice always ends with a
// tokEOF token.
func lex(src string) ([]token, error) {
	l := &lexer{src: []rune(src), line: 1, col: 1}
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) peek(off int) rune {
	if i := l.pos + off; i < len(l.src) {
		return l.src[i]
	}
	return 0
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		switch {
		case r == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		case unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) scanWhile(ok func(rune) bool) string {
	start := l.pos
	for l.pos < len(l.src) && ok(l.src[l.pos]) {
		l.advance()
	}
	return string(l.src[start:l.pos])
}

func isNameStart(r rune) bool { return unicode.IsLetter(r) }

func isVarRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isNameRune(r rune) bool { return isVarRune(r) || r == '-' }

func (l *lexer) next() (token, error) {
	l.skipSpace()
	line, col := l.line, l.col
	tok := func(kind tokenKind, text string) (token, error) {
		return token{kind: kind, text: text, line: line, col: col}, nil
	}
	if l.pos >= len(l.src) {
		return tok(tokEOF, "")
	}

	r := l.src[l.pos]
	switch {
	case r == '<':
		if iri, ok := l.scanIRI(); ok {
			return tok(tokIRI, iri)
		}
		l.advance()
		if l.peek(0) == '=' {
			l.advance()
			return tok(tokPunct, "<=")
		}
		return tok(tokPunct, "<")

	case r == '?' || r == '$':
		l.advance()
		name := l.scanWhile(isVarRune)
		if name == "" {
			return token{}, l.errorf(line, col, "empty variable name")
		}
		return tok(tokVar, name)

	case r == '"' || r == '\'':
		s, err := l.scanString(line, col)
		if err != nil {
			return token{}, err
		}
		return tok(tokString, s)

	case r == '@':
		l.advance()
		tag := l.scanWhile(func(r rune) bool { return r < unicode.MaxASCII && isNameRune(r) && r != '_' })
		if tag == "" {
			return token{}, l.errorf(line, col, "empty language tag")
		}
		return tok(tokLangTag, tag)

	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peek(1))):
		return l.scanNumber(line, col)

	case r == '_' && l.peek(1) == ':':
		l.advance()
		l.advance()
		label := l.scanLocal()
		if label == "" {
			return token{}, l.errorf(line, col, "empty blank node label")
		}
		return tok(tokBlank, label)

	case isNameStart(r) || r == ':':
		prefix := l.scanWhile(isNameRune)
		if l.peek(0) == ':' {
			l.advance()
			return tok(tokPName, prefix+":"+l.scanLocal())
		}
		return tok(tokWord, prefix)
	}

	switch two := string(r) + string(l.peek(1)); two {
	case "^^", "!=", ">=", "&&", "||":
		l.advance()
		l.advance()
		return tok(tokPunct, two)
	}
	if strings.ContainsRune("{}()[].,;*=<>!+-/", r) {
		l.advance()
		return tok(tokPunct, string(r))
	}
	return token{}, l.errorf(line, col, "unexpected character %q", r)
}

// scanIRI consumes an IRI reference if the input at the current '<'
// forms one. Otherwise nothing is consumed and '<' is an operator.
func (l *lexer) scanIRI() (string, bool) {
	for i := l.pos + 1; i < len(l.src); i++ {
		c := l.src[i]
		if c == '>' {
			iri := string(l.src[l.pos+1 : i])
			for l.pos <= i {
				l.advance()
			}
			return iri, true
		}
		if c <= ' ' || strings.ContainsRune("<\"{}|^`\\", c) {
			return "", false
		}
	}
	return "", false
}

// scanLocal reads the local part of a prefixed name. Dots are allowed
// inside but not at the end, where they terminate a triple.
func (l *lexer) scanLocal() string {
	start := l.pos
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		if !isNameRune(r) && r != '.' && r != ':' {
			break
		}
		l.advance()
	}
	for l.pos > start && l.src[l.pos-1] == '.' {
		l.pos--
		l.col--
	}
	return string(l.src[start:l.pos])
}

func (l *lexer) scanNumber(line, col int) (token, error) {
	start := l.pos
	kind := tokInteger
	l.scanWhile(unicode.IsDigit)
	if l.peek(0) == '.' && unicode.IsDigit(l.peek(1)) {
		kind = tokDecimal
		l.advance()
		l.scanWhile(unicode.IsDigit)
	}
	if r := l.peek(0); r == 'e' || r == 'E' {
		next := l.peek(1)
		if next == '+' || next == '-' {
			next = l.peek(2)
		}
		if unicode.IsDigit(next) {
			kind = tokDouble
			l.advance()
			if r := l.peek(0); r == '+' || r == '-' {
				l.advance()
			}
			l.scanWhile(unicode.IsDigit)
		}
	}
	return token{kind: kind, text: string(l.src[start:l.pos]), line: line, col: col}, nil
}

func (l *lexer) scanString(line, col int) (string, error) {
	q := l.advance()
	long := l.peek(0) == q && l.peek(1) == q
	if long {
		l.advance()
		l.advance()
	}

	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(line, col, "unterminated string literal")
		}
		r := l.advance()
		switch {
		case r == q && !long:
			return b.String(), nil
		case r == q && l.peek(0) == q && l.peek(1) == q:
			l.advance()
			l.advance()
			return b.String(), nil
		case (r == '\n' || r == '\r') && !long:
			return "", l.errorf(line, col, "newline in string literal")
		case r == '\\':
			if err := l.scanEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (l *lexer) scanEscape(b *strings.Builder) error {
	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return l.errorf(line, col, "unterminated escape sequence")
	}
	switch r := l.advance(); r {
	case 't':
		b.WriteByte('\t')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case '"', '\'', '\\':
		b.WriteRune(r)
	case 'u', 'U':
		n := 4
		if r == 'U' {
			n = 8
		}
		if l.pos+n > len(l.src) {
			return l.errorf(line, col, "truncated \\%c escape", r)
		}
		hex := string(l.src[l.pos : l.pos+n])
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return l.errorf(line, col, "invalid \\%c escape %q", r, hex)
		}
		for i := 0; i < n; i++ {
			l.advance()
		}
		b.WriteRune(rune(v))
	default:
		return l.errorf(line, col, "invalid escape sequence \\%c", r)
	}
	return nil
}
