package sparql

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Parse parses a SELECT or ASK query. Prefixes not declared in the query
// are looked up in ns, which may be nil.
func Parse(query string, ns *rdf.NamespaceManager) (*Query, error) {
	toks, err := lex(query)
	if err != nil {
		return nil, err
	}
	p := &parser{
		toks:     toks,
		prefixes: make(map[string]string),
		ns:       ns,
		seen:     make(map[string]bool),
	}
	return p.parseQuery()
}

type parser struct {
	toks     []token
	pos      int
	prefixes map[string]string
	base     string
	ns       *rdf.NamespaceManager
	anon     int

	// variables in order of first appearance, for SELECT *
	vars []string
	seen map[string]bool
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(off int) token {
	if i := p.pos + off; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) error {
	t := p.peek()
	return &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokWord && strings.EqualFold(t.text, kw)
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.acceptKeyword(kw) {
		return p.errorf("expected %s, found %s", kw, p.peek())
	}
	return nil
}

func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) acceptPunct(s string) bool {
	if p.isPunct(s) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectPunct(s string) error {
	if !p.acceptPunct(s) {
		return p.errorf("expected '%s', found %s", s, p.peek())
	}
	return nil
}

func (p *parser) noteVar(name string) {
	if !p.seen[name] {
		p.seen[name] = true
		if !isHiddenVar(name) {
			p.vars = append(p.vars, name)
		}
	}
}

func (p *parser) parseQuery() (*Query, error) {
	if err := p.parsePrologue(); err != nil {
		return nil, err
	}

	q := &Query{Limit: -1}
	switch {
	case p.acceptKeyword("SELECT"):
		q.Form = FormSelect
		if p.acceptKeyword("DISTINCT") || p.acceptKeyword("REDUCED") {
			q.Distinct = true
		}
		if p.acceptPunct("*") {
			q.Star = true
		} else {
			for p.peek().kind == tokVar {
				name := p.next().text
				q.Vars = append(q.Vars, name)
			}
			if len(q.Vars) == 0 {
				if p.isPunct("(") {
					return nil, p.errorf("projection expressions are not supported")
				}
				return nil, p.errorf("expected variables or '*' after SELECT, found %s", p.peek())
			}
		}
	case p.acceptKeyword("ASK"):
		q.Form = FormAsk
	default:
		for _, kw := range []string{"CONSTRUCT", "DESCRIBE", "INSERT", "DELETE", "LOAD", "CLEAR", "CREATE", "DROP"} {
			if p.isKeyword(kw) {
				return nil, p.errorf("%s queries are not supported", kw)
			}
		}
		return nil, p.errorf("expected SELECT or ASK, found %s", p.peek())
	}

	if p.isKeyword("FROM") {
		return nil, p.errorf("dataset clauses are not supported")
	}
	p.acceptKeyword("WHERE")
	where, err := p.parseGroup()
	if err != nil {
		return nil, err
	}
	q.Where = where
	if q.Star {
		q.Vars = p.vars
	}

	if err := p.parseModifiers(q); err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf("unexpected %s after query", t)
	}
	return q, nil
}

func (p *parser) parsePrologue() error {
	for {
		switch {
		case p.acceptKeyword("BASE"):
			t := p.next()
			if t.kind != tokIRI {
				return p.errorf("expected IRI after BASE, found %s", t)
			}
			p.base = p.resolve(t.text)
		case p.acceptKeyword("PREFIX"):
			t := p.next()
			if t.kind != tokPName || !strings.HasSuffix(t.text, ":") {
				return p.errorf("expected prefix name after PREFIX, found %s", t)
			}
			iri := p.next()
			if iri.kind != tokIRI {
				return p.errorf("expected IRI for prefix %s, found %s", t.text, iri)
			}
			p.prefixes[strings.TrimSuffix(t.text, ":")] = p.resolve(iri.text)
		default:
			return nil
		}
	}
}

func (p *parser) parseModifiers(q *Query) error {
	if p.isKeyword("GROUP") || p.isKeyword("HAVING") {
		return p.errorf("aggregation is not supported")
	}
	if p.acceptKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return err
		}
		for {
			cond, ok, err := p.parseOrderCondition()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			q.Order = append(q.Order, cond)
		}
		if len(q.Order) == 0 {
			return p.errorf("expected ORDER BY condition, found %s", p.peek())
		}
	}
	for {
		switch {
		case p.acceptKeyword("LIMIT"):
			n, err := p.parseCount("LIMIT")
			if err != nil {
				return err
			}
			q.Limit = n
		case p.acceptKeyword("OFFSET"):
			n, err := p.parseCount("OFFSET")
			if err != nil {
				return err
			}
			q.Offset = n
		default:
			return nil
		}
	}
}

func (p *parser) parseCount(clause string) (int, error) {
	t := p.next()
	if t.kind != tokInteger {
		return 0, p.errorf("expected integer after %s, found %s", clause, t)
	}
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, p.errorf("invalid %s %s", clause, t.text)
	}
	return n, nil
}

func (p *parser) parseOrderCondition() (OrderCondition, bool, error) {
	switch {
	case p.isKeyword("ASC") || p.isKeyword("DESC"):
		desc := strings.EqualFold(p.next().text, "DESC")
		e, err := p.parseBracketted()
		return OrderCondition{Expr: e, Desc: desc}, err == nil, err
	case p.peek().kind == tokVar:
		name := p.next().text
		return OrderCondition{Expr: varExpr{name: name}}, true, nil
	case p.isPunct("("):
		e, err := p.parseBracketted()
		return OrderCondition{Expr: e}, err == nil, err
	case p.peek().kind == tokWord && p.peekAt(1).kind == tokPunct && p.peekAt(1).text == "(":
		if p.isKeyword("LIMIT") || p.isKeyword("OFFSET") {
			return OrderCondition{}, false, nil
		}
		e, err := p.parseCall()
		return OrderCondition{Expr: e}, err == nil, err
	}
	return OrderCondition{}, false, nil
}

func (p *parser) parseGroup() (*Group, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	g := &Group{}
	var bgp BGP
	flush := func() {
		if len(bgp) > 0 {
			g.Patterns = append(g.Patterns, bgp)
			bgp = nil
		}
	}

	for {
		switch {
		case p.acceptPunct("}"):
			flush()
			return g, nil

		case p.peek().kind == tokEOF:
			return nil, p.errorf("unterminated group pattern")

		case p.acceptPunct("."):

		case p.acceptKeyword("OPTIONAL"):
			flush()
			opt, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			g.Patterns = append(g.Patterns, &OptionalPattern{Group: opt})

		case p.acceptKeyword("FILTER"):
			e, err := p.parseConstraint()
			if err != nil {
				return nil, err
			}
			g.Filters = append(g.Filters, e)

		case p.isPunct("{"):
			flush()
			first, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			branches := []*Group{first}
			for p.acceptKeyword("UNION") {
				b, err := p.parseGroup()
				if err != nil {
					return nil, err
				}
				branches = append(branches, b)
			}
			if len(branches) == 1 {
				g.Patterns = append(g.Patterns, first)
			} else {
				g.Patterns = append(g.Patterns, &UnionPattern{Branches: branches})
			}

		case p.isKeyword("GRAPH") || p.isKeyword("MINUS") || p.isKeyword("SERVICE") ||
			p.isKeyword("BIND") || p.isKeyword("VALUES"):
			return nil, p.errorf("%s is not supported", strings.ToUpper(p.peek().text))

		default:
			tps, err := p.parseTriplesSameSubject()
			if err != nil {
				return nil, err
			}
			bgp = append(bgp, tps...)
			if p.peek().kind == tokEOF {
				return nil, p.errorf("unterminated group pattern")
			}
			if !p.isPunct(".") && !p.isPunct("}") && !p.isPunct("{") &&
				!p.isKeyword("OPTIONAL") && !p.isKeyword("FILTER") {
				return nil, p.errorf("expected '.' or '}' after triple pattern, found %s", p.peek())
			}
		}
	}
}

func (p *parser) parseTriplesSameSubject() ([]TriplePattern, error) {
	bracketed := p.isPunct("[") && !(p.peekAt(1).kind == tokPunct && p.peekAt(1).text == "]")
	subj, triples, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if bracketed && (p.isPunct(".") || p.isPunct("}")) {
		return triples, nil
	}
	more, err := p.parsePropertyList(subj)
	if err != nil {
		return nil, err
	}
	return append(triples, more...), nil
}

func (p *parser) parsePropertyList(subj Node) ([]TriplePattern, error) {
	var out []TriplePattern
	for {
		verb, err := p.parseVerb()
		if err != nil {
			return nil, err
		}
		for {
			obj, extra, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			out = append(out, extra...)
			out = append(out, TriplePattern{S: subj, P: verb, O: obj})
			if !p.acceptPunct(",") {
				break
			}
		}
		if !p.acceptPunct(";") {
			return out, nil
		}
		for p.acceptPunct(";") {
		}
		if p.isPunct(".") || p.isPunct("}") || p.isPunct("]") {
			return out, nil
		}
	}
}

func (p *parser) parseVerb() (Node, error) {
	t := p.peek()
	switch {
	case t.kind == tokWord && t.text == "a":
		p.next()
		return Node{Term: rdf.IRI(rdf.RDFType)}, nil
	case t.kind == tokVar:
		p.next()
		p.noteVar(t.text)
		return Node{Var: t.text}, nil
	case t.kind == tokIRI || t.kind == tokPName:
		iri, err := p.parseIRI()
		if err != nil {
			return Node{}, err
		}
		return Node{Term: iri}, nil
	}
	return Node{}, p.errorf("expected predicate, found %s", t)
}

// parseNode reads a subject or object. A blank node property list
// yields a fresh variable and the triples it describes.
func (p *parser) parseNode() (Node, []TriplePattern, error) {
	t := p.peek()
	switch {
	case t.kind == tokVar:
		p.next()
		p.noteVar(t.text)
		return Node{Var: t.text}, nil, nil

	case t.kind == tokBlank:
		p.next()
		name := "_:" + t.text
		p.noteVar(name)
		return Node{Var: name}, nil, nil

	case t.kind == tokIRI || t.kind == tokPName:
		iri, err := p.parseIRI()
		return Node{Term: iri}, nil, err

	case p.isPunct("["):
		p.next()
		p.anon++
		n := Node{Var: fmt.Sprintf("_:anon%d", p.anon)}
		p.noteVar(n.Var)
		if p.acceptPunct("]") {
			return n, nil, nil
		}
		triples, err := p.parsePropertyList(n)
		if err != nil {
			return Node{}, nil, err
		}
		if err := p.expectPunct("]"); err != nil {
			return Node{}, nil, err
		}
		return n, triples, nil

	case p.isPunct("("):
		return Node{}, nil, p.errorf("RDF collections are not supported")
	}

	lit, ok, err := p.parseLiteral()
	if err != nil {
		return Node{}, nil, err
	}
	if !ok {
		return Node{}, nil, p.errorf("expected RDF term, found %s", t)
	}
	return Node{Term: lit}, nil, nil
}

func (p *parser) parseIRI() (rdf.Term, error) {
	t := p.next()
	switch t.kind {
	case tokIRI:
		return rdf.IRI(p.resolve(t.text)), nil
	case tokPName:
		prefix, local, _ := strings.Cut(t.text, ":")
		if ns, ok := p.prefixes[prefix]; ok {
			return rdf.IRI(ns + local), nil
		}
		if p.ns != nil {
			if ns, ok := p.ns.Expand(prefix); ok {
				return rdf.IRI(ns + local), nil
			}
		}
		return rdf.Term{}, &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("unknown prefix %q", prefix)}
	}
	return rdf.Term{}, &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("expected IRI, found %s", t)}
}

// parseLiteral reads a string, numeric or boolean literal. ok is false
// when the next token does not start a literal.
func (p *parser) parseLiteral() (rdf.Term, bool, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.next()
		if lt := p.peek(); lt.kind == tokLangTag {
			p.next()
			return rdf.LangLiteral(t.text, lt.text), true, nil
		}
		if p.acceptPunct("^^") {
			dt, err := p.parseIRI()
			if err != nil {
				return rdf.Term{}, false, err
			}
			return rdf.TypedLiteral(t.text, dt.Value), true, nil
		}
		return rdf.Literal(t.text), true, nil

	case tokInteger, tokDecimal, tokDouble:
		p.next()
		return numericLiteral(t.kind, t.text), true, nil

	case tokWord:
		switch strings.ToLower(t.text) {
		case "true", "false":
			p.next()
			return rdf.Boolean(strings.EqualFold(t.text, "true")), true, nil
		}

	case tokPunct:
		if t.text == "+" || t.text == "-" {
			n := p.peekAt(1)
			if n.kind == tokInteger || n.kind == tokDecimal || n.kind == tokDouble {
				p.next()
				p.next()
				text := n.text
				if t.text == "-" {
					text = "-" + text
				}
				return numericLiteral(n.kind, text), true, nil
			}
		}
	}
	return rdf.Term{}, false, nil
}

func numericLiteral(kind tokenKind, text string) rdf.Term {
	switch kind {
	case tokDecimal:
		return rdf.TypedLiteral(text, rdf.XSDDecimal)
	case tokDouble:
		return rdf.TypedLiteral(text, rdf.XSDDouble)
	default:
		return rdf.TypedLiteral(text, rdf.XSDInteger)
	}
}

// resolve resolves a relative IRI against the BASE, if any.
func (p *parser) resolve(iri string) string {
	if p.base == "" {
		return iri
	}
	ref, err := url.Parse(iri)
	if err != nil || ref.IsAbs() {
		return iri
	}
	base, err := url.Parse(p.base)
	if err != nil {
		return iri
	}
	return base.ResolveReference(ref).String()
}
