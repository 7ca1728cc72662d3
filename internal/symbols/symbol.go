// symbols/symbol.go - interned identifiers
//
// A Symbol is an identifier interned to an integer together with the
// namespace it was written in. The namespace decides which environment
// mapping a symbol is stored in; identity ignores it.

package symbols

import "fmt"

type Namespace int

const (
	Invalid Namespace = iota
	Field
	Function
	TypeName
	Variable
	Pseudo // Reserved bindings such as the enclosing function's return type
)

func (ns Namespace) String() string {
	switch ns {
	case Field:
		return "field"
	case Function:
		return "fun"
	case TypeName:
		return "typename"
	case Variable:
		return "var"
	case Pseudo:
		return "pseudo"
	default:
		return "invalid"
	}
}

// Symbol is immutable once created. Only an Interner creates valid symbols.
type Symbol struct {
	ns   Namespace
	id   int
	name string
}

func (s Symbol) Namespace() Namespace { return s.ns }
func (s Symbol) ID() int              { return s.id }
func (s Symbol) String() string       { return s.name }

func (s Symbol) IsValid() bool    { return s.ns != Invalid }
func (s Symbol) IsField() bool    { return s.ns == Field }
func (s Symbol) IsFunction() bool { return s.ns == Function }
func (s Symbol) IsTypeName() bool { return s.ns == TypeName }
func (s Symbol) IsVariable() bool { return s.ns == Variable }
func (s Symbol) IsPseudo() bool   { return s.ns == Pseudo }

// IsStorable reports whether the symbol may be bound in an environment.
// Struct fields live inside struct types and are never bound directly.
func (s Symbol) IsStorable() bool {
	return s.IsValid() && s.ns != Field
}

// GoString renders the namespace too, e.g. (sym-var x).
func (s Symbol) GoString() string {
	switch s.ns {
	case Field:
		return fmt.Sprintf("(sym-field %s)", s.name)
	case Function:
		return fmt.Sprintf("(sym-fun %s)", s.name)
	case TypeName:
		return fmt.Sprintf("(sym-typename %s)", s.name)
	case Variable, Pseudo:
		return fmt.Sprintf("(sym-var %s)", s.name)
	default:
		return "(sym-invalid)"
	}
}

// Equal compares interned ids only. A variable and a type name spelled the
// same way are equal.
func Equal(a, b Symbol) bool {
	return a.id == b.id
}

// Compare orders symbols by interned id, the canonical order for struct fields.
func Compare(a, b Symbol) int {
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	default:
		return 0
	}
}
