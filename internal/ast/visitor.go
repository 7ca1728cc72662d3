package ast

// Visitor is implemented by passes that walk the tree node by node.
type Visitor interface {
	VisitProgram(p *Program)
	VisitDeclaration(d *Declaration)

	VisitExpressionStatement(s *ExpressionStatement)
	VisitAssignStatement(s *AssignStatement)
	VisitIfStatement(s *IfStatement)
	VisitWhileStatement(s *WhileStatement)
	VisitForStatement(s *ForStatement)
	VisitReturnStatement(s *ReturnStatement)

	VisitIdentifier(e *Identifier)
	VisitIntegerLiteral(e *IntegerLiteral)
	VisitBooleanLiteral(e *BooleanLiteral)
	VisitNilLiteral(e *NilLiteral)
	VisitStringLiteral(e *StringLiteral)
	VisitPrefixExpression(e *PrefixExpression)
	VisitInfixExpression(e *InfixExpression)
	VisitStructLiteral(e *StructLiteral)
	VisitArrayLiteral(e *ArrayLiteral)
	VisitCallExpression(e *CallExpression)
	VisitIndexExpression(e *IndexExpression)
	VisitMemberExpression(e *MemberExpression)
}

// Inspect traverses the tree in depth-first order, calling f for each node
// before its children. If f returns false the children are skipped.
// Nil children are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, d := range n.Declarations {
			Inspect(d, f)
		}
	case *Declaration:
		inspectExpr(n.Value, f)
		for _, d := range n.Locals {
			Inspect(d, f)
		}
		inspectStmts(n.Body, f)
	case *ExpressionStatement:
		inspectExpr(n.Expression, f)
	case *AssignStatement:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *IfStatement:
		inspectExpr(n.Condition, f)
		inspectStmts(n.Consequence, f)
		inspectStmts(n.Alternative, f)
	case *WhileStatement:
		inspectExpr(n.Condition, f)
		inspectStmts(n.Body, f)
	case *ForStatement:
		inspectExpr(n.Variable, f)
		inspectExpr(n.From, f)
		inspectExpr(n.To, f)
		inspectStmts(n.Body, f)
	case *ReturnStatement:
		inspectExpr(n.Value, f)
	case *PrefixExpression:
		inspectExpr(n.Right, f)
	case *InfixExpression:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *StructLiteral:
		for _, fi := range n.Fields {
			inspectExpr(fi.Value, f)
		}
	case *ArrayLiteral:
		for _, e := range n.Elements {
			inspectExpr(e, f)
		}
	case *CallExpression:
		for _, e := range n.Arguments {
			inspectExpr(e, f)
		}
	case *IndexExpression:
		inspectExpr(n.Left, f)
		inspectExpr(n.Index, f)
	case *MemberExpression:
		inspectExpr(n.Left, f)
	}
}

// inspectExpr guards against typed nil interfaces from partial parses.
func inspectExpr(e Expression, f func(Node) bool) {
	if e == nil {
		return
	}
	Inspect(e, f)
}

func inspectStmts(stmts []Statement, f func(Node) bool) {
	for _, s := range stmts {
		if s != nil {
			Inspect(s, f)
		}
	}
}
