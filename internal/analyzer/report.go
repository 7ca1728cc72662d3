package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/typesystem"
)

// Report walks an annotated program and turns the failures into
// diagnostics. A conflicting declaration yields one A002 and is not looked
// into. Otherwise only untyped nodes whose children all have types are
// reported (A001), so a failure is reported where it starts rather than at
// every enclosing node.
func (a *Analyzer) Report(program *ast.Program) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	if program == nil {
		return errs
	}

	ast.Inspect(program, func(n ast.Node) bool {
		if _, ok := n.(*ast.Program); ok {
			return true
		}
		if decl, ok := n.(*ast.Declaration); ok && typesystem.IsConflict(a.TypeOf(decl)) {
			errs = append(errs, a.newError(diagnostics.ErrA002, n, "%s conflicts with an earlier declaration or is not a valid type declaration", decl.Name))
			return false
		}
		if a.TypeOf(n) != nil {
			return true
		}
		if a.tooDeep[n] {
			errs = append(errs, a.newError(diagnostics.ErrA001, n, "nesting too deep to check: limit is %d", a.maxDepth))
			return false
		}
		if a.childrenTyped(n) {
			errs = append(errs, a.newError(diagnostics.ErrA001, n, "%s", a.explain(n)))
		}
		return true
	})
	return errs
}

// MainError is the A003 diagnostic for a program whose main is missing or
// has the wrong signature.
func (a *Analyzer) MainError(program *ast.Program) *diagnostics.DiagnosticError {
	var at ast.Node = program
	if b := a.env.LookupFunction(a.mainSym); b != nil && b.Body != nil {
		at = b.Body
	}
	got := typesystem.Format(a.env.Lookup(a.mainSym))
	return a.newError(diagnostics.ErrA003, at, "function main() not defined or has wrong type: want ([[int]]) -> int, got %s", got)
}

func (a *Analyzer) newError(code diagnostics.ErrorCode, n ast.Node, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.NewError(code, n.GetToken(), format, args...)
}

func children(n ast.Node) []ast.Node {
	var out []ast.Node
	ast.Inspect(n, func(c ast.Node) bool {
		if c == n {
			return true
		}
		out = append(out, c)
		return false
	})
	return out
}

func (a *Analyzer) childrenTyped(n ast.Node) bool {
	for _, c := range children(n) {
		if a.TypeOf(c) == nil {
			return false
		}
	}
	return true
}

// explain describes why n, whose children all checked, failed its own rule.
func (a *Analyzer) explain(n ast.Node) string {
	f := func(n ast.Node) string { return typesystem.Format(a.TypeOf(n)) }

	switch n := n.(type) {
	case *ast.Declaration:
		if n.Value != nil {
			return fmt.Sprintf("cannot initialize %s of type %s with %s", n.Name, typesystem.Format(n.Type), f(n.Value))
		}
		if n.IsFunction() {
			return fmt.Sprintf("function %s has a conflicting local declaration", n.Name)
		}
		return fmt.Sprintf("declaration of %s does not check", n.Name)
	case *ast.AssignStatement:
		return fmt.Sprintf("cannot assign %s to %s", f(n.Right), f(n.Left))
	case *ast.IfStatement:
		return fmt.Sprintf("if condition must be bool, got %s", f(n.Condition))
	case *ast.WhileStatement:
		return fmt.Sprintf("while condition must be bool, got %s", f(n.Condition))
	case *ast.ForStatement:
		return fmt.Sprintf("for loop needs int variable and bounds, got %s = %s to %s", f(n.Variable), f(n.From), f(n.To))
	case *ast.ReturnStatement:
		if n.Value == nil {
			return "missing return value"
		}
		return fmt.Sprintf("cannot return %s", f(n.Value))
	case *ast.Identifier:
		return fmt.Sprintf("undeclared variable %s", n.Name)
	case *ast.PrefixExpression:
		return fmt.Sprintf("invalid operand to %s: %s", n.Operator, f(n.Right))
	case *ast.InfixExpression:
		return fmt.Sprintf("invalid operands to %s: %s and %s", n.Operator, f(n.Left), f(n.Right))
	case *ast.ArrayLiteral:
		return "array elements have no common type"
	case *ast.CallExpression:
		fn := a.env.Lookup(n.Function)
		if fn == nil {
			return fmt.Sprintf("undeclared function %s", n.Function)
		}
		args := make([]string, len(n.Arguments))
		for i, arg := range n.Arguments {
			args[i] = f(arg)
		}
		return fmt.Sprintf("cannot call %s of type %s with (%s)", n.Function, typesystem.Format(fn), strings.Join(args, ", "))
	case *ast.IndexExpression:
		return fmt.Sprintf("cannot index %s with %s", f(n.Left), f(n.Index))
	case *ast.MemberExpression:
		return fmt.Sprintf("%s has no field %s", f(n.Left), n.Member)
	}
	return fmt.Sprintf("%s does not check", n.TokenLiteral())
}
