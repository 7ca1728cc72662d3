package analyzer

import (
	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/environment"
	"github.com/funvibe/liger/internal/symbols"
	"github.com/funvibe/liger/internal/typesystem"
)

// annotateExpr infers the type of expr under env, records it and returns
// it. Every child is annotated even when an earlier one fails, so the
// report can point at each root cause.
func (a *Analyzer) annotateExpr(expr ast.Expression, env *environment.Environment) typesystem.Type {
	if expr == nil {
		return nil
	}
	ok := a.enter(expr)
	defer a.leave()
	if !ok {
		return a.set(expr, nil)
	}
	return a.set(expr, a.inferExpr(expr, env))
}

func (a *Analyzer) inferExpr(expr ast.Expression, env *environment.Environment) typesystem.Type {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return typesystem.Int
	case *ast.BooleanLiteral:
		return typesystem.Bool
	case *ast.NilLiteral:
		return typesystem.Nil
	case *ast.StringLiteral:
		return typesystem.NewArray(typesystem.Int)

	case *ast.Identifier:
		return env.Lookup(e.Name)

	case *ast.PrefixExpression:
		if typesystem.IsBool(a.annotateExpr(e.Right, env)) {
			return typesystem.Bool
		}
		return nil

	case *ast.InfixExpression:
		left := a.annotateExpr(e.Left, env)
		right := a.annotateExpr(e.Right, env)
		return infixResult(e.Operator, left, right)

	case *ast.StructLiteral:
		return a.inferStructLiteral(e, env)

	case *ast.ArrayLiteral:
		return a.inferArrayLiteral(e, env)

	case *ast.CallExpression:
		return a.inferCall(e, env)

	case *ast.IndexExpression:
		base := typesystem.Expand(a.annotateExpr(e.Left, env), env)
		index := a.annotateExpr(e.Index, env)
		if typesystem.IsArray(base) && typesystem.IsInt(index) {
			return typesystem.ArrayElem(base)
		}
		return nil

	case *ast.MemberExpression:
		base := typesystem.Expand(a.annotateExpr(e.Left, env), env)
		if typesystem.IsStruct(base) {
			return typesystem.StructField(base, e.Member)
		}
		return nil
	}
	return nil
}

func infixResult(op string, left, right typesystem.Type) typesystem.Type {
	switch op {
	case "+", "-", "*", "/", "%":
		if typesystem.IsInt(left) && typesystem.IsInt(right) {
			return typesystem.Int
		}
	case "|", "&":
		if typesystem.IsBool(left) && typesystem.IsBool(right) {
			return typesystem.Bool
		}
	case "<", "<=", ">", ">=":
		if typesystem.IsInt(left) && typesystem.IsInt(right) {
			return typesystem.Bool
		}
	case "==", "!=":
		if left == nil || right == nil {
			return nil
		}
		if typesystem.Equal(left, right) || (typesystem.IsObject(left) && typesystem.IsObject(right)) {
			return typesystem.Bool
		}
	}
	return nil
}

// inferStructLiteral builds the literal's type from its initializers; it is
// checked against a declared struct only later, by Subtype.
func (a *Analyzer) inferStructLiteral(lit *ast.StructLiteral, env *environment.Environment) typesystem.Type {
	fields := make([]typesystem.Field, 0, len(lit.Fields))
	complete := true
	for _, init := range lit.Fields {
		t := a.annotateExpr(init.Value, env)
		if t == nil {
			complete = false
			continue
		}
		fields = append(fields, typesystem.Field{Name: init.Name, Type: t})
	}
	if !complete {
		return nil
	}
	return typesystem.NewStruct(fields)
}

// inferArrayLiteral folds Supremum over the element types. A literal with
// no common element type is untyped.
func (a *Analyzer) inferArrayLiteral(lit *ast.ArrayLiteral, env *environment.Environment) typesystem.Type {
	var sup typesystem.Type
	for i, elem := range lit.Elements {
		t := a.annotateExpr(elem, env)
		if i == 0 {
			sup = t
			continue
		}
		sup = typesystem.Supremum(sup, t, env)
	}
	if sup == nil {
		return nil
	}
	return typesystem.NewArray(sup)
}

// inferCall checks the arguments against the callee's parameters. resize
// is the one polymorphic builtin: its result has the type of its first
// argument.
func (a *Analyzer) inferCall(call *ast.CallExpression, env *environment.Environment) typesystem.Type {
	fn := env.Lookup(call.Function)

	args := make([]typesystem.Type, len(call.Arguments))
	for i, arg := range call.Arguments {
		args[i] = a.annotateExpr(arg, env)
	}

	if fn == nil || !typesystem.IsFunc(fn) {
		return nil
	}
	if !typesystem.ParamsSubtype(args, typesystem.ParamTypes(fn), env) {
		return nil
	}

	if symbols.Equal(call.Function, a.resizeSym) && len(args) > 0 {
		first := args[0]
		if typesystem.IsNil(first) {
			return nil
		}
		return first
	}
	return typesystem.FuncReturn(fn)
}
