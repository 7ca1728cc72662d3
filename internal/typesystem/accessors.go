package typesystem

import (
	"fmt"

	"github.com/funvibe/liger/internal/symbols"
)

func IsInt(t Type) bool      { _, ok := t.(TInt); return ok }
func IsBool(t Type) bool     { _, ok := t.(TBool); return ok }
func IsVoid(t Type) bool     { _, ok := t.(TVoid); return ok }
func IsNil(t Type) bool      { _, ok := t.(TNil); return ok }
func IsOk(t Type) bool       { _, ok := t.(TOk); return ok }
func IsConflict(t Type) bool { _, ok := t.(TConflict); return ok }
func IsNamed(t Type) bool    { _, ok := t.(TNamed); return ok }
func IsArray(t Type) bool    { _, ok := t.(TArray); return ok }
func IsStruct(t Type) bool   { _, ok := t.(TStruct); return ok }
func IsFunc(t Type) bool     { _, ok := t.(TFunc); return ok }

// IsObject reports whether values of t are references: arrays, structs,
// nil, and named types (which always name an array or struct shape).
func IsObject(t Type) bool {
	switch t.(type) {
	case TArray, TStruct, TNil, TNamed:
		return true
	}
	return false
}

// The accessors below panic on a variant mismatch: calling them on the wrong
// shape is a bug in the caller, not a user error.

func ArrayElem(t Type) Type {
	at, ok := t.(TArray)
	if !ok {
		panic(fmt.Sprintf("typesystem: ArrayElem on %s", Format(t)))
	}
	return at.Elem
}

// StructField returns the declared type of field, or nil when the struct has
// no such field.
func StructField(t Type, field symbols.Symbol) Type {
	st, ok := t.(TStruct)
	if !ok {
		panic(fmt.Sprintf("typesystem: StructField on %s", Format(t)))
	}
	if !field.IsField() {
		panic(fmt.Sprintf("typesystem: StructField with %#v", field))
	}
	for _, f := range st.Fields {
		if symbols.Equal(f.Name, field) {
			return f.Type
		}
	}
	return nil
}

// FieldOffset is the index of field in canonical order. The code generator
// lays out struct records with it.
func FieldOffset(t Type, field symbols.Symbol) int {
	st, ok := t.(TStruct)
	if !ok {
		panic(fmt.Sprintf("typesystem: FieldOffset on %s", Format(t)))
	}
	for i, f := range st.Fields {
		if f.Name.ID() == field.ID() {
			return i
		}
	}
	panic(fmt.Sprintf("typesystem: field %s not in %s", field, t))
}

func FuncParams(t Type) []Field {
	ft, ok := t.(TFunc)
	if !ok {
		panic(fmt.Sprintf("typesystem: FuncParams on %s", Format(t)))
	}
	return ft.Params
}

func FuncReturn(t Type) Type {
	ft, ok := t.(TFunc)
	if !ok {
		panic(fmt.Sprintf("typesystem: FuncReturn on %s", Format(t)))
	}
	if ft.Return == nil {
		panic("typesystem: function without a return type")
	}
	return ft.Return
}

// ParamTypes drops the parameter names of a function type.
func ParamTypes(t Type) []Type {
	params := FuncParams(t)
	out := make([]Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}
