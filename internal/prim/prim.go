// Package prim lists the primitive operations the lowering pass may refer to
// and maps host-syntax operators onto them.
package prim

import "sort"

// Primitive is an opaque builtin operation. Values are interned: compare by
// pointer or by Name.
type Primitive struct {
	Name  string
	Arity int // -1 for variadic
}

func (p *Primitive) String() string { return p.Name }

var registry = map[string]*Primitive{}

func define(name string, arity int) *Primitive {
	p := &Primitive{Name: name, Arity: arity}
	registry[name] = p
	return p
}

// Arithmetic and bitwise.
var (
	Add      = define("add", 2)
	Sub      = define("sub", 2)
	Mul      = define("mul", 2)
	TrueDiv  = define("truediv", 2)
	FloorDiv = define("floordiv", 2)
	Mod      = define("mod", 2)
	Pow      = define("pow", 2)
	MatMul   = define("matmul", 2)
	LShift   = define("lshift", 2)
	RShift   = define("rshift", 2)
	BitAnd   = define("bitand", 2)
	BitOr    = define("bitor", 2)
	BitXor   = define("bitxor", 2)
	USub     = define("usub", 1)
	UAdd     = define("uadd", 1)
	Invert   = define("invert", 1)
	Not      = define("not", 1)
)

// Comparisons.
var (
	Eq    = define("eq", 2)
	Ne    = define("ne", 2)
	Lt    = define("lt", 2)
	Le    = define("le", 2)
	Gt    = define("gt", 2)
	Ge    = define("ge", 2)
	In    = define("in", 2)
	NotIn = define("not_in", 2)
	Is    = define("is", 2)
	IsNot = define("is_not", 2)
)

// Structural primitives used by desugaring and graph construction.
var (
	Index     = define("index", 2)
	GetAttr   = define("getattr", 2)
	Map       = define("map", 2)
	Filter    = define("filter", 2)
	MakeTuple = define("make_tuple", -1)
	MakeList  = define("make_list", -1)
	Return    = define("return", 1)
	If        = define("if", 3)
)

// Lookup finds a primitive by name.
func Lookup(name string) (*Primitive, bool) {
	p, ok := registry[name]
	return p, ok
}

// Names returns every registered primitive name, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var binary = map[string]*Primitive{
	"+":  Add,
	"-":  Sub,
	"*":  Mul,
	"/":  TrueDiv,
	"//": FloorDiv,
	"%":  Mod,
	"**": Pow,
	"@":  MatMul,
	"<<": LShift,
	">>": RShift,
	"&":  BitAnd,
	"|":  BitOr,
	"^":  BitXor,
}

var unary = map[string]*Primitive{
	"-":   USub,
	"+":   UAdd,
	"~":   Invert,
	"not": Not,
}

var compare = map[string]*Primitive{
	"==":     Eq,
	"!=":     Ne,
	"<":      Lt,
	"<=":     Le,
	">":      Gt,
	">=":     Ge,
	"in":     In,
	"not in": NotIn,
	"is":     Is,
	"is not": IsNot,
}

// BinaryOperator maps an infix arithmetic operator token.
func BinaryOperator(tok string) (*Primitive, bool) {
	p, ok := binary[tok]
	return p, ok
}

// AugmentedOperator maps an augmented assignment token such as "+=".
func AugmentedOperator(tok string) (*Primitive, bool) {
	if len(tok) < 2 || tok[len(tok)-1] != '=' {
		return nil, false
	}
	return BinaryOperator(tok[:len(tok)-1])
}

// UnaryOperator maps a prefix operator token.
func UnaryOperator(tok string) (*Primitive, bool) {
	p, ok := unary[tok]
	return p, ok
}

// CompareOperator maps a comparison token; multi-word tokens use a single
// space ("not in", "is not").
func CompareOperator(tok string) (*Primitive, bool) {
	p, ok := compare[tok]
	return p, ok
}
