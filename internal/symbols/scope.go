package symbols

import (
	"loom/internal/source"
	"loom/internal/surface"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid       ScopeKind = iota
	ScopeUnit                    // artificial root per compilation unit
	ScopeFunction                // def body
	ScopeLambda                  // lambda expression body
	ScopeBranch                  // one arm of a conditional
	ScopeLoop                    // while body (both discovery and emission passes)
	ScopeComprehension           // list comprehension element scope
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeUnit:
		return "unit"
	case ScopeFunction:
		return "function"
	case ScopeLambda:
		return "lambda"
	case ScopeBranch:
		return "branch"
	case ScopeLoop:
		return "loop"
	case ScopeComprehension:
		return "comprehension"
	default:
		return "invalid"
	}
}

// BindingKind tags a Binding.
type BindingKind uint8

const (
	// BindValue maps a name directly onto a symbol.
	BindValue BindingKind = iota + 1
	// BindRedirect maps a name onto another name of the same scope.
	BindRedirect
)

// Binding is either a direct symbol or a redirect to another label.
type Binding struct {
	Kind   BindingKind
	Value  *surface.Symbol
	Target string
}

// Scope models a lexical scope with a parent-child hierarchy.
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Span     source.Span
	Bindings map[string]Binding
	Names    []string // binding order, first definition wins the slot
	Children []ScopeID
}

func (s *Scope) set(name string, b Binding) {
	if _, ok := s.Bindings[name]; !ok {
		s.Names = append(s.Names, name)
	}
	s.Bindings[name] = b
}
