package typesystem

import "github.com/funvibe/liger/internal/symbols"

// Resolver looks up the declared shape of a type name. Environments implement it.
type Resolver interface {
	ResolveType(name symbols.Symbol) Type
}

// Expand replaces a named type with its declared type. Unbound names expand
// to nil; other types are returned unchanged.
func Expand(t Type, r Resolver) Type {
	if nt, ok := t.(TNamed); ok {
		return r.ResolveType(nt.Name)
	}
	return t
}

// Subtype reports whether a value of type sub is usable where super is expected.
//
// Only super is expanded through named types. Arrays are covariant in their
// element type and structs require the same fields in the same order with
// pairwise subtyping (no width subtyping). Nil is usable as any array or struct.
// An absent super accepts every type; an absent sub is accepted by nothing
// except an absent super.
func Subtype(sub, super Type, r Resolver) bool {
	if Equal(sub, super) {
		return true
	}
	if sub == nil {
		return false
	}
	if super == nil {
		return true
	}

	super = Expand(super, r)
	if Equal(sub, super) {
		return true
	}

	switch st := super.(type) {
	case TArray:
		if IsNil(sub) {
			return true
		}
		at, ok := sub.(TArray)
		return ok && Subtype(at.Elem, st.Elem, r)
	case TStruct:
		if IsNil(sub) {
			return true
		}
		ss, ok := sub.(TStruct)
		return ok && fieldsSubtype(ss.Fields, st.Fields, r)
	default:
		return false
	}
}

// fieldsSubtype relies on both sides being in canonical order.
func fieldsSubtype(sub, super []Field, r Resolver) bool {
	if len(sub) != len(super) {
		return false
	}
	for i := range super {
		if !symbols.Equal(sub[i].Name, super[i].Name) {
			return false
		}
		if !Subtype(sub[i].Type, super[i].Type, r) {
			return false
		}
	}
	return true
}

// ParamsSubtype checks call arguments against declared parameter types,
// pairwise and in order. Arity must match and every argument must have a type.
func ParamsSubtype(args, params []Type, r Resolver) bool {
	if len(args) != len(params) {
		return false
	}
	for i := range params {
		if args[i] == nil {
			return false
		}
		if !Subtype(args[i], params[i], r) {
			return false
		}
	}
	return true
}

// Supremum computes the least upper bound of two inferred types, or nil when
// they have no common supertype. It is only used to infer array literal
// element types.
func Supremum(a, b Type, r Resolver) Type {
	if a == nil || b == nil {
		return nil
	}
	if Equal(a, b) {
		return a
	}

	if IsNamed(a) {
		if Subtype(b, a, r) {
			return a
		}
		return nil
	}
	if IsNamed(b) {
		if Subtype(a, b, r) {
			return b
		}
		return nil
	}

	if IsNil(a) && IsObject(b) {
		return b
	}
	if IsNil(b) && IsObject(a) {
		return a
	}

	switch at := a.(type) {
	case TArray:
		bt, ok := b.(TArray)
		if !ok {
			return nil
		}
		elem := Supremum(at.Elem, bt.Elem, r)
		if elem == nil {
			return nil
		}
		return TArray{Elem: elem}
	case TStruct:
		bt, ok := b.(TStruct)
		if !ok {
			return nil
		}
		fields := fieldsSupremum(at.Fields, bt.Fields, r)
		if fields == nil {
			return nil
		}
		return TStruct{Fields: fields}
	}
	return nil
}

// fieldsSupremum requires identical field symbols (canonical order makes this
// a pairwise walk) and a supremum for every field pair.
func fieldsSupremum(a, b []Field, r Resolver) []Field {
	if len(a) == 0 || len(a) != len(b) {
		return nil
	}
	out := make([]Field, len(a))
	for i := range a {
		if !symbols.Equal(a[i].Name, b[i].Name) {
			return nil
		}
		sup := Supremum(a[i].Type, b[i].Type, r)
		if sup == nil {
			return nil
		}
		out[i] = Field{Name: a[i].Name, Type: sup}
	}
	return out
}
