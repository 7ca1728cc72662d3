package analyzer

import (
	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/environment"
	"github.com/funvibe/liger/internal/typesystem"
)

// insertDecl binds decl in env before any checking happens, so declarations
// may refer to each other regardless of order. A name already bound in env,
// or a type name for something other than an array or struct, makes the
// declaration Conflict and leaves env unchanged.
func (a *Analyzer) insertDecl(decl *ast.Declaration, env *environment.Environment) {
	if env.Contains(decl.Name) {
		a.conflict(decl, "%s redeclared", decl.Name)
		return
	}

	if decl.IsTypeName() && !typesystem.IsArray(decl.Type) && !typesystem.IsStruct(decl.Type) {
		a.conflict(decl, "type %s must name an array or struct, not %s", decl.Name, typesystem.Format(decl.Type))
		return
	}

	if !decl.IsFunction() {
		env.Insert(decl.Name, decl.Type)
		return
	}

	scope := environment.New()
	for _, param := range typesystem.FuncParams(decl.Type) {
		if scope.Contains(param.Name) {
			a.conflict(decl, "duplicate parameter %s in %s", param.Name, decl.Name)
			continue
		}
		scope.Insert(param.Name, param.Type)
	}
	for _, local := range decl.Locals {
		a.insertDecl(local, scope)
	}
	scope.Insert(a.returnSym, typesystem.FuncReturn(decl.Type))
	env.InsertFunction(decl.Name, decl.Type, scope, decl)
}

func (a *Analyzer) conflict(decl *ast.Declaration, format string, args ...interface{}) {
	a.TypeMap[decl] = typesystem.Conflict
	a.logger.Printf("conflict at %d:%d: "+format, append([]interface{}{decl.Token.Line, decl.Token.Column}, args...)...)
}

// annotateDecl checks decl under env. Conflict is final: such a declaration
// is never re-checked.
func (a *Analyzer) annotateDecl(decl *ast.Declaration, env *environment.Environment) {
	if typesystem.IsConflict(a.TypeOf(decl)) {
		return
	}

	var calculated typesystem.Type
	switch {
	case decl.Value != nil:
		t := a.annotateExpr(decl.Value, env)
		if typesystem.Subtype(t, decl.Type, env) {
			calculated = typesystem.Ok
		}

	case decl.HasBody():
		merged := environment.Union(env, env.LookupFunctionScope(decl.Name))
		for _, local := range decl.Locals {
			a.annotateDecl(local, merged)
		}
		a.annotateStmts(decl.Body, merged)
		if a.declsOk(decl.Locals) && a.stmtsOk(decl.Body) {
			calculated = typesystem.Ok
		}

	default:
		calculated = typesystem.Ok
	}

	a.set(decl, calculated)
}

func (a *Analyzer) declsOk(decls []*ast.Declaration) bool {
	for _, d := range decls {
		if !typesystem.IsOk(a.TypeOf(d)) {
			return false
		}
	}
	return true
}
