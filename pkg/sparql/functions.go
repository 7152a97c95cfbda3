package sparql

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/JervenBolleman/rdflib-web/pkg/rdf"
)

func (e varExpr) eval(s Solution) (rdf.Term, error) {
	t, ok := s[e.name]
	if !ok {
		return rdf.Term{}, errUnbound
	}
	return t, nil
}

func (e constExpr) eval(Solution) (rdf.Term, error) { return e.term, nil }

func (e unaryExpr) eval(s Solution) (rdf.Term, error) {
	x, err := e.x.eval(s)
	if err != nil {
		return rdf.Term{}, err
	}
	if e.op == "!" {
		b, err := ebv(x)
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.Boolean(!b), nil
	}
	n, ok := toNumber(x)
	if !ok {
		return rdf.Term{}, errType
	}
	if e.op == "-" {
		n.v = -n.v
	}
	return n.term(), nil
}

func (e binaryExpr) eval(s Solution) (rdf.Term, error) {
	switch e.op {
	case "||", "&&":
		return e.logical(s)
	}

	l, err := e.left.eval(s)
	if err != nil {
		return rdf.Term{}, err
	}
	r, err := e.right.eval(s)
	if err != nil {
		return rdf.Term{}, err
	}

	switch e.op {
	case "=", "!=":
		eq, err := equalTerms(l, r)
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.Boolean(eq == (e.op == "=")), nil
	case "<", ">", "<=", ">=":
		c, err := compareTerms(l, r)
		if err != nil {
			return rdf.Term{}, err
		}
		switch e.op {
		case "<":
			return rdf.Boolean(c < 0), nil
		case ">":
			return rdf.Boolean(c > 0), nil
		case "<=":
			return rdf.Boolean(c <= 0), nil
		default:
			return rdf.Boolean(c >= 0), nil
		}
	}
	return arithmetic(e.op, l, r)
}

// logical applies the three-valued logic of || and &&: an error on one
// side is absorbed when the other side decides the result.
func (e binaryExpr) logical(s Solution) (rdf.Term, error) {
	lb, lerr := evalBool(e.left, s)
	rb, rerr := evalBool(e.right, s)
	if e.op == "||" {
		switch {
		case (lerr == nil && lb) || (rerr == nil && rb):
			return rdf.Boolean(true), nil
		case lerr != nil:
			return rdf.Term{}, lerr
		case rerr != nil:
			return rdf.Term{}, rerr
		}
		return rdf.Boolean(false), nil
	}
	switch {
	case (lerr == nil && !lb) || (rerr == nil && !rb):
		return rdf.Boolean(false), nil
	case lerr != nil:
		return rdf.Term{}, lerr
	case rerr != nil:
		return rdf.Term{}, rerr
	}
	return rdf.Boolean(true), nil
}

func evalBool(e Expr, s Solution) (bool, error) {
	t, err := e.eval(s)
	if err != nil {
		return false, err
	}
	return ebv(t)
}

// ebv computes the effective boolean value of a term.
func ebv(t rdf.Term) (bool, error) {
	if !t.IsLiteral() || t.Lang != "" {
		return false, errType
	}
	if t.Datatype == rdf.XSDBoolean {
		return t.Value == "true" || t.Value == "1", nil
	}
	if n, ok := toNumber(t); ok {
		return n.v != 0 && !math.IsNaN(n.v), nil
	}
	if t.Datatype == "" {
		return t.Value != "", nil
	}
	return false, errType
}

type numKind int

const (
	numInteger numKind = iota
	numDecimal
	numDouble
)

type number struct {
	v    float64
	kind numKind
}

var numericTypes = map[string]numKind{
	rdf.XSDInteger:                   numInteger,
	rdf.XSDInt:                       numInteger,
	rdf.XSDLong:                      numInteger,
	rdf.XSDNonNegative:               numInteger,
	rdf.NSXSD + "short":              numInteger,
	rdf.NSXSD + "byte":               numInteger,
	rdf.NSXSD + "positiveInteger":    numInteger,
	rdf.NSXSD + "negativeInteger":    numInteger,
	rdf.NSXSD + "nonPositiveInteger": numInteger,
	rdf.NSXSD + "unsignedInt":        numInteger,
	rdf.NSXSD + "unsignedLong":       numInteger,
	rdf.XSDDecimal:                   numDecimal,
	rdf.XSDDouble:                    numDouble,
	rdf.XSDFloat:                     numDouble,
}

func toNumber(t rdf.Term) (number, bool) {
	if !t.IsLiteral() {
		return number{}, false
	}
	kind, ok := numericTypes[t.Datatype]
	if !ok {
		return number{}, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil {
		return number{}, false
	}
	return number{v: v, kind: kind}, true
}

func (n number) term() rdf.Term {
	switch n.kind {
	case numInteger:
		return rdf.Integer(int64(n.v))
	case numDecimal:
		s := strconv.FormatFloat(n.v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return rdf.TypedLiteral(s, rdf.XSDDecimal)
	default:
		return rdf.TypedLiteral(strconv.FormatFloat(n.v, 'E', -1, 64), rdf.XSDDouble)
	}
}

func arithmetic(op string, l, r rdf.Term) (rdf.Term, error) {
	a, ok1 := toNumber(l)
	b, ok2 := toNumber(r)
	if !ok1 || !ok2 {
		return rdf.Term{}, errType
	}
	res := number{kind: max(a.kind, b.kind)}
	switch op {
	case "+":
		res.v = a.v + b.v
	case "-":
		res.v = a.v - b.v
	case "*":
		res.v = a.v * b.v
	case "/":
		if res.kind == numInteger {
			res.kind = numDecimal
		}
		if b.v == 0 && res.kind != numDouble {
			return rdf.Term{}, errType
		}
		res.v = a.v / b.v
	default:
		return rdf.Term{}, errType
	}
	return res.term(), nil
}

func isSimple(t rdf.Term) bool {
	return t.IsLiteral() && t.Lang == "" && t.Datatype == ""
}

func equalTerms(a, b rdf.Term) (bool, error) {
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			return x.v == y.v, nil
		}
	}
	if a.IsLiteral() && b.IsLiteral() && a.Datatype == rdf.XSDBoolean && b.Datatype == rdf.XSDBoolean {
		x, _ := ebv(a)
		y, _ := ebv(b)
		return x == y, nil
	}
	return a == b, nil
}

// compareTerms orders two comparable literals.
func compareTerms(a, b rdf.Term) (int, error) {
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			switch {
			case x.v < y.v:
				return -1, nil
			case x.v > y.v:
				return 1, nil
			}
			return 0, nil
		}
	}
	switch {
	case isSimple(a) && isSimple(b):
		return strings.Compare(a.Value, b.Value), nil
	case a.IsLiteral() && b.IsLiteral() && a.Lang == "" && a.Datatype == b.Datatype &&
		(a.Datatype == rdf.XSDDateTime || a.Datatype == rdf.XSDDate || a.Datatype == rdf.XSDBoolean):
		return strings.Compare(a.Value, b.Value), nil
	}
	return 0, errType
}

// orderCompare is the total order used by ORDER BY: unbound, blank
// nodes, IRIs, then literals.
func orderCompare(a, b rdf.Term) int {
	if a.Kind != b.Kind {
		return int(rank(a)) - int(rank(b))
	}
	if a.IsLiteral() {
		if c, err := compareTerms(a, b); err == nil {
			return c
		}
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := strings.Compare(a.Lang, b.Lang); c != 0 {
		return c
	}
	return strings.Compare(a.Datatype, b.Datatype)
}

func rank(t rdf.Term) int {
	switch t.Kind {
	case rdf.KindBlank:
		return 1
	case rdf.KindIRI:
		return 2
	case rdf.KindLiteral:
		return 3
	}
	return 0
}

// stringArg returns the lexical form of a simple or language-tagged
// literal.
func stringArg(t rdf.Term) (string, error) {
	if !t.IsLiteral() || t.Datatype != "" {
		return "", errType
	}
	return t.Value, nil
}

var regexCache sync.Map // pattern+flags -> *regexp.Regexp

func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	key := flags + "/" + pattern
	if re, ok := regexCache.Load(key); ok {
		return re.(*regexp.Regexp), nil
	}
	var mods string
	for _, f := range flags {
		switch f {
		case 'i', 's', 'm':
			mods += string(f)
		case 'q':
			pattern = regexp.QuoteMeta(pattern)
		default:
			return nil, errType
		}
	}
	if mods != "" {
		pattern = "(?" + mods + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errType
	}
	regexCache.Store(key, re)
	return re, nil
}

func langMatches(tag, rng string) bool {
	if rng == "*" {
		return tag != ""
	}
	tag, rng = strings.ToLower(tag), strings.ToLower(rng)
	return tag == rng || strings.HasPrefix(tag, rng+"-")
}

func (e callExpr) eval(s Solution) (rdf.Term, error) {
	if e.name == "BOUND" {
		_, ok := s[e.args[0].(varExpr).name]
		return rdf.Boolean(ok), nil
	}

	args := make([]rdf.Term, len(e.args))
	for i, a := range e.args {
		t, err := a.eval(s)
		if err != nil {
			return rdf.Term{}, err
		}
		args[i] = t
	}
	x := args[0]

	switch e.name {
	case "STR":
		if x.IsBlank() {
			return rdf.Term{}, errType
		}
		return rdf.Literal(x.Value), nil
	case "LANG":
		if !x.IsLiteral() {
			return rdf.Term{}, errType
		}
		return rdf.Literal(x.Lang), nil
	case "DATATYPE":
		switch {
		case !x.IsLiteral():
			return rdf.Term{}, errType
		case x.Lang != "":
			return rdf.IRI(rdf.RDFLangString), nil
		case x.Datatype == "":
			return rdf.IRI(rdf.XSDString), nil
		}
		return rdf.IRI(x.Datatype), nil
	case "ISIRI", "ISURI":
		return rdf.Boolean(x.IsIRI()), nil
	case "ISBLANK":
		return rdf.Boolean(x.IsBlank()), nil
	case "ISLITERAL":
		return rdf.Boolean(x.IsLiteral()), nil
	case "ISNUMERIC":
		_, ok := toNumber(x)
		return rdf.Boolean(ok), nil
	case "SAMETERM":
		return rdf.Boolean(x == args[1]), nil
	case "STRLEN":
		v, err := stringArg(x)
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.Integer(int64(utf8.RuneCountInString(v))), nil
	case "UCASE", "LCASE":
		v, err := stringArg(x)
		if err != nil {
			return rdf.Term{}, err
		}
		if e.name == "UCASE" {
			v = strings.ToUpper(v)
		} else {
			v = strings.ToLower(v)
		}
		out := x
		out.Value = v
		return out, nil
	case "LANGMATCHES":
		if !isSimple(x) || !isSimple(args[1]) {
			return rdf.Term{}, errType
		}
		return rdf.Boolean(langMatches(x.Value, args[1].Value)), nil
	}

	// Two string arguments from here on.
	text, err := stringArg(x)
	if err != nil {
		return rdf.Term{}, err
	}
	arg, err := stringArg(args[1])
	if err != nil {
		return rdf.Term{}, err
	}
	switch e.name {
	case "CONTAINS":
		return rdf.Boolean(strings.Contains(text, arg)), nil
	case "STRSTARTS":
		return rdf.Boolean(strings.HasPrefix(text, arg)), nil
	case "STRENDS":
		return rdf.Boolean(strings.HasSuffix(text, arg)), nil
	case "REGEX":
		var flags string
		if len(args) == 3 {
			if !isSimple(args[2]) {
				return rdf.Term{}, errType
			}
			flags = args[2].Value
		}
		re, err := compileRegex(arg, flags)
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.Boolean(re.MatchString(text)), nil
	}
	return rdf.Term{}, errType
}
