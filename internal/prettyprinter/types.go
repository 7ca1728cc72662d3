package prettyprinter

import (
	"strings"

	"github.com/funvibe/liger/internal/typesystem"
)

// TypeSExpr renders t in the tree-dump form, e.g. (type-array (type-int)).
// An absent type is (no-type).
func TypeSExpr(t typesystem.Type) string {
	var sb strings.Builder
	writeTypeSExpr(&sb, t)
	return sb.String()
}

func writeTypeSExpr(sb *strings.Builder, t typesystem.Type) {
	if t == nil {
		sb.WriteString("(no-type)")
		return
	}
	sb.WriteString("(")
	switch t := t.(type) {
	case typesystem.TInt:
		sb.WriteString("type-int")
	case typesystem.TBool:
		sb.WriteString("type-bool")
	case typesystem.TNil:
		sb.WriteString("type-nil")
	case typesystem.TVoid:
		sb.WriteString("type-void")
	case typesystem.TOk:
		sb.WriteString("type-ok")
	case typesystem.TConflict:
		sb.WriteString("type-conflict")
	case typesystem.TNamed:
		sb.WriteString("type-id ")
		sb.WriteString(t.Name.String())
	case typesystem.TArray:
		sb.WriteString("type-array ")
		writeTypeSExpr(sb, t.Elem)
	case typesystem.TStruct:
		sb.WriteString("type-struct")
		for _, f := range t.Fields {
			sb.WriteString(" ")
			writeTypedID(sb, f)
		}
	case typesystem.TFunc:
		sb.WriteString("type-fun (params")
		for _, p := range t.Params {
			sb.WriteString(" ")
			writeTypedID(sb, p)
		}
		sb.WriteString(") ")
		writeTypeSExpr(sb, t.Return)
	}
	sb.WriteString(")")
}

func writeTypedID(sb *strings.Builder, f typesystem.Field) {
	sb.WriteString("(typed-id (id ")
	sb.WriteString(f.Name.String())
	sb.WriteString(") ")
	writeTypeSExpr(sb, f.Type)
	sb.WriteString(")")
}

// TypeSource renders t in Liger surface syntax, as written in declarations:
// {a: int, next: node}. Struct fields come out in canonical order.
func TypeSource(t typesystem.Type) string {
	switch t := t.(type) {
	case nil:
		return "?"
	case typesystem.TArray:
		return "[" + TypeSource(t.Elem) + "]"
	case typesystem.TStruct:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Name.String() + ": " + TypeSource(f.Type)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return t.String()
	}
}
