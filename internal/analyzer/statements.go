package analyzer

import (
	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/environment"
	"github.com/funvibe/liger/internal/typesystem"
)

func (a *Analyzer) annotateStmts(stmts []ast.Statement, env *environment.Environment) {
	for _, s := range stmts {
		a.annotateStmt(s, env)
	}
}

// stmtsOk reports whether every statement got a type. Statements are only
// ever annotated Ok.
func (a *Analyzer) stmtsOk(stmts []ast.Statement) bool {
	for _, s := range stmts {
		if a.TypeOf(s) == nil {
			return false
		}
	}
	return true
}

func (a *Analyzer) annotateStmt(stmt ast.Statement, env *environment.Environment) {
	ok := a.enter(stmt)
	defer a.leave()
	if !ok {
		a.set(stmt, nil)
		return
	}

	var result typesystem.Type
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		if a.annotateExpr(s.Expression, env) != nil {
			result = typesystem.Ok
		}

	case *ast.AssignStatement:
		left := a.annotateExpr(s.Left, env)
		right := a.annotateExpr(s.Right, env)
		if typesystem.Subtype(right, left, env) {
			result = typesystem.Ok
		}

	case *ast.IfStatement:
		cond := a.annotateExpr(s.Condition, env)
		a.annotateStmts(s.Consequence, env)
		a.annotateStmts(s.Alternative, env)
		if typesystem.IsBool(cond) && a.stmtsOk(s.Consequence) && a.stmtsOk(s.Alternative) {
			result = typesystem.Ok
		}

	case *ast.WhileStatement:
		cond := a.annotateExpr(s.Condition, env)
		a.annotateStmts(s.Body, env)
		if typesystem.IsBool(cond) && a.stmtsOk(s.Body) {
			result = typesystem.Ok
		}

	case *ast.ForStatement:
		variable := a.annotateExpr(s.Variable, env)
		from := a.annotateExpr(s.From, env)
		to := a.annotateExpr(s.To, env)
		a.annotateStmts(s.Body, env)
		if typesystem.IsInt(variable) && typesystem.IsInt(from) && typesystem.IsInt(to) && a.stmtsOk(s.Body) {
			result = typesystem.Ok
		}

	case *ast.ReturnStatement:
		expected := env.Lookup(a.returnSym)
		actual := typesystem.Void
		if s.Value != nil {
			actual = a.annotateExpr(s.Value, env)
		}
		if typesystem.Subtype(actual, expected, env) {
			result = typesystem.Ok
		}
	}

	a.set(stmt, result)
}
