package typesystem

import (
	"sort"
	"strings"

	"github.com/funvibe/liger/internal/symbols"
)

// Type is the interface for all types in our system.
// Types are immutable values: constructors copy their inputs, so a Type may be
// shared freely between the AST side table and any environment.
// A nil Type means "no type" (the node failed to check, or the context is untyped).
type Type interface {
	String() string
	typeNode()
}

// TInt is the primitive integer type.
type TInt struct{}

// TBool is the primitive boolean type.
type TBool struct{}

// TVoid is the return type of functions that return nothing.
type TVoid struct{}

// TNil is the type of the nil literal.
type TNil struct{}

// TOk marks a statement or declaration that passed all of its rules.
type TOk struct{}

// TConflict marks a fatal redeclaration. It is never recomputed.
type TConflict struct{}

// TNamed refers to a type-name binding, resolved lazily through an environment.
type TNamed struct {
	Name symbols.Symbol
}

// TArray is an array with element type Elem.
// A nil Elem is an array of anything; builtins use it for generic parameters.
type TArray struct {
	Elem Type
}

// Field is a named, typed slot: a struct field or a function parameter.
type Field struct {
	Name symbols.Symbol
	Type Type
}

// TStruct holds its fields sorted by symbol id. Use NewStruct to build one.
type TStruct struct {
	Fields []Field
}

// TFunc is a function signature. Parameter names are kept for printing and
// scope construction but ignored by equality.
type TFunc struct {
	Params []Field
	Return Type
}

func (TInt) typeNode()      {}
func (TBool) typeNode()     {}
func (TVoid) typeNode()     {}
func (TNil) typeNode()      {}
func (TOk) typeNode()       {}
func (TConflict) typeNode() {}
func (TNamed) typeNode()    {}
func (TArray) typeNode()    {}
func (TStruct) typeNode()   {}
func (TFunc) typeNode()     {}

var (
	Int      Type = TInt{}
	Bool     Type = TBool{}
	Void     Type = TVoid{}
	Nil      Type = TNil{}
	Ok       Type = TOk{}
	Conflict Type = TConflict{}
)

func NewNamed(name symbols.Symbol) Type {
	return TNamed{Name: name}
}

func NewArray(elem Type) Type {
	return TArray{Elem: elem}
}

// NewStruct copies fields and sorts them into canonical (symbol id) order.
func NewStruct(fields []Field) Type {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return symbols.Compare(sorted[i].Name, sorted[j].Name) < 0
	})
	return TStruct{Fields: sorted}
}

func NewFunc(params []Field, ret Type) Type {
	ps := make([]Field, len(params))
	copy(ps, params)
	return TFunc{Params: ps, Return: ret}
}

func (TInt) String() string      { return "int" }
func (TBool) String() string     { return "bool" }
func (TVoid) String() string     { return "void" }
func (TNil) String() string      { return "nil" }
func (TOk) String() string       { return "ok" }
func (TConflict) String() string { return "CONFLICT" }
func (t TNamed) String() string  { return t.Name.String() }

func (t TArray) String() string {
	return "[" + typeString(t.Elem) + "]"
}

func (t TStruct) String() string {
	return "{" + fieldsString(t.Fields) + "}"
}

func (t TFunc) String() string {
	return "(" + fieldsString(t.Params) + ") -> " + typeString(t.Return)
}

// typeString prints a possibly absent type.
func typeString(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// Format is like String but accepts a nil (absent) type.
func Format(t Type) string {
	if t == nil {
		return "NONE"
	}
	return t.String()
}

func fieldsString(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name.String() + " : " + typeString(f.Type)
	}
	return strings.Join(parts, ", ")
}

// Equal is recursive structural equality. Two absent types are equal.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case TNamed:
		bt, ok := b.(TNamed)
		return ok && symbols.Equal(at.Name, bt.Name)
	case TArray:
		bt, ok := b.(TArray)
		return ok && Equal(at.Elem, bt.Elem)
	case TStruct:
		bt, ok := b.(TStruct)
		return ok && fieldsEqual(at.Fields, bt.Fields)
	case TFunc:
		bt, ok := b.(TFunc)
		return ok && Equal(at.Return, bt.Return) && typesEqual(ParamTypes(at), ParamTypes(bt))
	default:
		return sameTag(a, b)
	}
}

func sameTag(a, b Type) bool {
	switch a.(type) {
	case TInt:
		_, ok := b.(TInt)
		return ok
	case TBool:
		_, ok := b.(TBool)
		return ok
	case TVoid:
		_, ok := b.(TVoid)
		return ok
	case TNil:
		_, ok := b.(TNil)
		return ok
	case TOk:
		_, ok := b.(TOk)
		return ok
	case TConflict:
		_, ok := b.(TConflict)
		return ok
	}
	return false
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !symbols.Equal(a[i].Name, b[i].Name) || !Equal(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of t.
func Clone(t Type) Type {
	switch tt := t.(type) {
	case nil:
		return nil
	case TArray:
		return TArray{Elem: Clone(tt.Elem)}
	case TStruct:
		return TStruct{Fields: cloneFields(tt.Fields)}
	case TFunc:
		return TFunc{Params: cloneFields(tt.Params), Return: Clone(tt.Return)}
	default:
		// Remaining variants carry no mutable payload.
		return tt
	}
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Name: f.Name, Type: Clone(f.Type)}
	}
	return out
}
