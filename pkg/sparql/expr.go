package sparql

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Expr is a FILTER or ORDER BY expression.
type Expr interface {
	eval(s Solution) (rdf.Term, error)
}

// errUnbound and errType make an expression fail. A failing FILTER
// rejects the solution.
var (
	errUnbound = errors.New("unbound variable")
	errType    = errors.New("type error")
)

type varExpr struct{ name string }

type constExpr struct{ term rdf.Term }

type unaryExpr struct {
	op string
	x  Expr
}

type binaryExpr struct {
	op          string
	left, right Expr
}

type callExpr struct {
	name string
	args []Expr
}

// builtin arities as {min, max}.
var builtins = map[string][2]int{
	"BOUND":       {1, 1},
	"STR":         {1, 1},
	"LANG":        {1, 1},
	"DATATYPE":    {1, 1},
	"ISIRI":       {1, 1},
	"ISURI":       {1, 1},
	"ISBLANK":     {1, 1},
	"ISLITERAL":   {1, 1},
	"ISNUMERIC":   {1, 1},
	"REGEX":       {2, 3},
	"LANGMATCHES": {2, 2},
	"SAMETERM":    {2, 2},
	"CONTAINS":    {2, 2},
	"STRSTARTS":   {2, 2},
	"STRENDS":     {2, 2},
	"STRLEN":      {1, 1},
	"UCASE":       {1, 1},
	"LCASE":       {1, 1},
}

// parseConstraint reads the argument of FILTER: a bracketted expression
// or a function call.
func (p *parser) parseConstraint() (Expr, error) {
	if p.isPunct("(") {
		return p.parseBracketted()
	}
	if p.peek().kind == tokWord {
		return p.parseCall()
	}
	return nil, p.errorf("expected '(' or function call after FILTER, found %s", p.peek())
}

func (p *parser) parseBracketted() (Expr, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseCall() (Expr, error) {
	t := p.next()
	name := strings.ToUpper(t.text)
	arity, ok := builtins[name]
	if !ok {
		return nil, &SyntaxError{Line: t.line, Col: t.col, Msg: "unknown function " + t.text}
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []Expr
	if !p.isPunct(")") {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.acceptPunct(",") {
				break
			}
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if len(args) < arity[0] || len(args) > arity[1] {
		return nil, &SyntaxError{Line: t.line, Col: t.col, Msg: "wrong number of arguments to " + name}
	}
	if name == "BOUND" {
		if _, ok := args[0].(varExpr); !ok {
			return nil, &SyntaxError{Line: t.line, Col: t.col, Msg: "BOUND requires a variable"}
		}
	}
	return callExpr{name: name, args: args}, nil
}

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.acceptPunct("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.acceptPunct("&&") {
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for _, op := range []string{"=", "!=", "<", ">", "<=", ">="} {
		if p.acceptPunct(op) {
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return binaryExpr{op: op, left: left, right: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		op := p.next().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	for _, op := range []string{"!", "-", "+"} {
		if p.acceptPunct(op) {
			x, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return unaryExpr{op: op, x: x}, nil
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()
	switch {
	case p.isPunct("("):
		return p.parseBracketted()
	case t.kind == tokVar:
		p.next()
		return varExpr{name: t.text}, nil
	case t.kind == tokIRI || t.kind == tokPName:
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		if p.isPunct("(") {
			return nil, p.errorf("extension function %s is not supported", iri.Value)
		}
		return constExpr{term: iri}, nil
	case t.kind == tokWord && !strings.EqualFold(t.text, "true") && !strings.EqualFold(t.text, "false"):
		return p.parseCall()
	}
	lit, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.errorf("expected expression, found %s", t)
	}
	return constExpr{term: lit}, nil
}
