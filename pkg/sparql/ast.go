package sparql

import "github.com/JervenBolleman/rdflib-web/pkg/rdf"

// QueryForm is the kind of result a query produces.
type QueryForm int

const (
	FormSelect QueryForm = iota + 1
	FormAsk
)

func (f QueryForm) String() string {
	switch f {
	case FormSelect:
		return "SELECT"
	case FormAsk:
		return "ASK"
	default:
		return "UNKNOWN"
	}
}

// Query is a parsed SELECT or ASK query.
type Query struct {
	Form QueryForm

	// Distinct is set by both DISTINCT and REDUCED.
	Distinct bool

	// Vars is the projection. For SELECT * it holds every variable of the
	// pattern in order of first appearance.
	Vars []string
	Star bool

	Where  *Group
	Order  []OrderCondition
	Limit  int // -1 when absent
	Offset int
}

// OrderCondition is one ORDER BY key.
type OrderCondition struct {
	Expr Expr
	Desc bool
}

// Pattern is an element of a group graph pattern.
type Pattern interface {
	pattern()
}

// Group is a group graph pattern. Its filters constrain the solutions of
// the whole group.
type Group struct {
	Patterns []Pattern
	Filters  []Expr
}

// BGP is a basic graph pattern.
type BGP []TriplePattern

// OptionalPattern is an OPTIONAL group.
type OptionalPattern struct {
	Group *Group
}

// UnionPattern is a chain of groups joined by UNION.
type UnionPattern struct {
	Branches []*Group
}

func (*Group) pattern()           {}
func (BGP) pattern()              {}
func (*OptionalPattern) pattern() {}
func (*UnionPattern) pattern()    {}

// Node is a position of a triple pattern: a variable when Var is set,
// otherwise a concrete term. Blank nodes in patterns become variables
// whose names start with "_:" and are never projected by SELECT *.
type Node struct {
	Var  string
	Term rdf.Term
}

// TriplePattern is a triple whose positions may be variables.
type TriplePattern struct {
	S, P, O Node
}

func (n Node) bound(s Solution) rdf.Term {
	if n.Var == "" {
		return n.Term
	}
	return s[n.Var]
}

func isHiddenVar(name string) bool {
	return len(name) > 1 && name[0] == '_' && name[1] == ':'
}
