package sparql

import (
	"context"
	"maps"
	"strings"

	"github.com/JervenBolleman/rdflib-web/pkg/graph"
	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

// Solution maps variable names (without '?') to the terms bound to them.
type Solution map[string]rdf.Term

type evaluator struct {
	ctx   context.Context
	graph graph.Graph
}

// group evaluates g once per input solution, seeding every pattern with
// the bindings already made.
func (ev *evaluator) group(g *Group, input []Solution) ([]Solution, error) {
	sols := input
	for _, pat := range g.Patterns {
		if len(sols) == 0 {
			return nil, nil
		}
		var err error
		switch pat := pat.(type) {
		case BGP:
			sols, err = ev.bgp(pat, sols)
		case *OptionalPattern:
			sols, err = ev.optional(pat.Group, sols)
		case *UnionPattern:
			sols, err = ev.union(pat.Branches, sols)
		case *Group:
			sols, err = ev.group(pat, sols)
		}
		if err != nil {
			return nil, err
		}
	}
	if len(g.Filters) == 0 {
		return sols, nil
	}

	out := sols[:0:0]
	for _, s := range sols {
		if passes(g.Filters, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func passes(filters []Expr, s Solution) bool {
	for _, f := range filters {
		ok, err := evalBool(f, s)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func (ev *evaluator) bgp(pats BGP, input []Solution) ([]Solution, error) {
	var out []Solution
	for _, s := range input {
		res, err := ev.match(pats, s)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// match joins the triple patterns, always expanding the pattern with the
// most positions already bound.
func (ev *evaluator) match(pats []TriplePattern, s Solution) ([]Solution, error) {
	if len(pats) == 0 {
		return []Solution{s}, nil
	}
	if err := ev.ctx.Err(); err != nil {
		return nil, err
	}

	best, bestScore := 0, -1
	for i, tp := range pats {
		score := 0
		for _, n := range []Node{tp.S, tp.P, tp.O} {
			if !n.bound(s).IsZero() {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	tp := pats[best]
	rest := make([]TriplePattern, 0, len(pats)-1)
	rest = append(rest, pats[:best]...)
	rest = append(rest, pats[best+1:]...)

	triples, err := ev.graph.Match(ev.ctx, tp.S.bound(s), tp.P.bound(s), tp.O.bound(s))
	if err != nil {
		return nil, err
	}

	var out []Solution
	for _, t := range triples {
		ext, ok := extend(s, tp, t)
		if !ok {
			continue
		}
		res, err := ev.match(rest, ext)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// extend binds the variables of tp to the matching triple t. It fails
// when a variable repeated in tp would need two different values.
func extend(s Solution, tp TriplePattern, t rdf.Triple) (Solution, bool) {
	var ext Solution
	for _, pair := range [3]struct {
		n    Node
		term rdf.Term
	}{{tp.S, t.S}, {tp.P, t.P}, {tp.O, t.O}} {
		if pair.n.Var == "" {
			continue
		}
		cur := s
		if ext != nil {
			cur = ext
		}
		if prev, ok := cur[pair.n.Var]; ok {
			if prev != pair.term {
				return nil, false
			}
			continue
		}
		if ext == nil {
			ext = maps.Clone(s)
			if ext == nil {
				ext = Solution{}
			}
		}
		ext[pair.n.Var] = pair.term
	}
	if ext == nil {
		return s, true
	}
	return ext, true
}

func (ev *evaluator) optional(g *Group, input []Solution) ([]Solution, error) {
	var out []Solution
	for _, s := range input {
		res, err := ev.group(g, []Solution{s})
		if err != nil {
			return nil, err
		}
		if len(res) == 0 {
			out = append(out, s)
		} else {
			out = append(out, res...)
		}
	}
	return out, nil
}

func (ev *evaluator) union(branches []*Group, input []Solution) ([]Solution, error) {
	var out []Solution
	for _, b := range branches {
		res, err := ev.group(b, input)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// key identifies a projected solution for DISTINCT.
func key(vars []string, s Solution) string {
	var b strings.Builder
	for _, v := range vars {
		b.WriteString(s[v].NTriples())
		b.WriteByte(0)
	}
	return b.String()
}
