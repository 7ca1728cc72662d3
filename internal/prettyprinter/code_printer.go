package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/typesystem"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"|":  1,
	"&":  2,
	"==": 3,
	"!=": 3,
	"<":  4,
	">":  4,
	"<=": 4,
	">=": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
	"%":  6,
}

const prefixPrecedence = 7

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 10 // Default high precedence for unknown ops
}

// CodePrinter renders a program back to Liger source in canonical layout.
// Parsing its output yields an equivalent tree.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// printExpr prints an expression, adding parentheses only if needed.
// All binary operators are left-associative.
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.InfixExpression:
		prec := getPrecedence(e.Operator)
		if isNegation(e) {
			prec = prefixPrecedence
		}
		needParens := prec < parentPrec || (prec == parentPrec && isRight)
		if needParens {
			p.write("(")
		}
		if isNegation(e) {
			p.write("-")
			p.printExpr(e.Right, prefixPrecedence, false)
		} else {
			p.printExpr(e.Left, prec, false)
			p.write(" " + e.Operator + " ")
			p.printExpr(e.Right, prec, true)
		}
		if needParens {
			p.write(")")
		}
	case *ast.PrefixExpression:
		needParens := prefixPrecedence < parentPrec
		if needParens {
			p.write("(")
		}
		p.write(e.Operator)
		p.printExpr(e.Right, prefixPrecedence, false)
		if needParens {
			p.write(")")
		}
	default:
		// For non-infix expressions, just use visitor
		expr.Accept(p)
	}
}

// isNegation recognizes the tree the parser builds for unary minus: a
// synthesized zero sharing the position of the '-' token.
func isNegation(e *ast.InfixExpression) bool {
	if e.Operator != "-" {
		return false
	}
	zero, ok := e.Left.(*ast.IntegerLiteral)
	return ok && zero.Value == 0 && zero.Token.Line == e.Token.Line && zero.Token.Column == e.Token.Column
}

// printPostfixBase prints the operand of a[i] or a.f, which binds tighter
// than any operator.
func (p *CodePrinter) printPostfixBase(expr ast.Expression) {
	p.printExpr(expr, prefixPrecedence+1, false)
}

func (p *CodePrinter) printExprList(list []ast.Expression) {
	for i, e := range list {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(e, 0, false)
	}
}

func (p *CodePrinter) printBlock(stmts []ast.Statement) {
	p.write("{")
	if len(stmts) == 0 {
		p.write("}")
		return
	}
	p.writeln()
	p.indent++
	for _, s := range stmts {
		p.printStatement(s)
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) printStatement(s ast.Statement) {
	p.writeIndent()
	if s == nil {
		p.write("<???>")
	} else {
		s.Accept(p)
	}
	p.writeln()
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for i, d := range n.Declarations {
		if i > 0 && (d.IsFunction() || n.Declarations[i-1].IsFunction()) {
			p.writeln()
		}
		d.Accept(p)
		p.writeln()
	}
}

func (p *CodePrinter) VisitDeclaration(n *ast.Declaration) {
	switch {
	case n.IsTypeName():
		p.write("type " + n.Name.String() + " = " + TypeSource(n.Type) + ";")

	case n.IsFunction():
		p.write("fun " + n.Name.String() + "(")
		for i, param := range typesystem.FuncParams(n.Type) {
			if i > 0 {
				p.write(", ")
			}
			p.write(param.Name.String() + ": " + TypeSource(param.Type))
		}
		p.write(")")
		if ret := typesystem.FuncReturn(n.Type); !typesystem.IsVoid(ret) {
			p.write(": " + TypeSource(ret))
		}
		p.write(" {")
		if len(n.Locals) == 0 && len(n.Body) == 0 {
			p.write("}")
			return
		}
		p.writeln()
		p.indent++
		for _, local := range n.Locals {
			p.writeIndent()
			local.Accept(p)
			p.writeln()
		}
		for _, s := range n.Body {
			p.printStatement(s)
		}
		p.indent--
		p.writeIndent()
		p.write("}")

	default:
		p.write("var " + n.Name.String() + ": " + TypeSource(n.Type))
		if n.Value != nil {
			p.write(" = ")
			p.printExpr(n.Value, 0, false)
		}
		p.write(";")
	}
}

func (p *CodePrinter) VisitExpressionStatement(n *ast.ExpressionStatement) {
	p.printExpr(n.Expression, 0, false)
	p.write(";")
}

func (p *CodePrinter) VisitAssignStatement(n *ast.AssignStatement) {
	p.printExpr(n.Left, 0, false)
	p.write(" = ")
	p.printExpr(n.Right, 0, false)
	p.write(";")
}

func (p *CodePrinter) VisitIfStatement(n *ast.IfStatement) {
	p.write("if ")
	p.printExpr(n.Condition, 0, false)
	p.write(" ")
	p.printBlock(n.Consequence)
	if len(n.Alternative) == 0 {
		return
	}
	p.write(" else ")
	if len(n.Alternative) == 1 {
		if elseIf, ok := n.Alternative[0].(*ast.IfStatement); ok {
			elseIf.Accept(p)
			return
		}
	}
	p.printBlock(n.Alternative)
}

func (p *CodePrinter) VisitWhileStatement(n *ast.WhileStatement) {
	p.write("while ")
	p.printExpr(n.Condition, 0, false)
	p.write(" ")
	p.printBlock(n.Body)
}

func (p *CodePrinter) VisitForStatement(n *ast.ForStatement) {
	p.write("for ")
	p.printExpr(n.Variable, 0, false)
	p.write(" = ")
	p.printExpr(n.From, 0, false)
	p.write(" to ")
	p.printExpr(n.To, 0, false)
	p.write(" ")
	p.printBlock(n.Body)
}

func (p *CodePrinter) VisitReturnStatement(n *ast.ReturnStatement) {
	p.write("return")
	if n.Value != nil {
		p.write(" ")
		p.printExpr(n.Value, 0, false)
	}
	p.write(";")
}

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier) {
	p.write(n.Name.String())
}

func (p *CodePrinter) VisitIntegerLiteral(n *ast.IntegerLiteral) {
	p.write(strconv.FormatInt(n.Value, 10))
}

func (p *CodePrinter) VisitBooleanLiteral(n *ast.BooleanLiteral) {
	if n.Value {
		p.write("true")
	} else {
		p.write("false")
	}
}

func (p *CodePrinter) VisitNilLiteral(n *ast.NilLiteral) {
	p.write("nil")
}

func (p *CodePrinter) VisitStringLiteral(n *ast.StringLiteral) {
	p.write(quoteLiger(n.Value))
}

// quoteLiger quotes s with the escapes the lexer understands.
func quoteLiger(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func (p *CodePrinter) VisitPrefixExpression(n *ast.PrefixExpression) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitInfixExpression(n *ast.InfixExpression) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitStructLiteral(n *ast.StructLiteral) {
	p.write("{")
	for i, fi := range n.Fields {
		if i > 0 {
			p.write(", ")
		}
		p.write(fi.Name.String() + " = ")
		p.printExpr(fi.Value, 0, false)
	}
	p.write("}")
}

func (p *CodePrinter) VisitArrayLiteral(n *ast.ArrayLiteral) {
	p.write("[")
	p.printExprList(n.Elements)
	p.write("]")
}

func (p *CodePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.write(n.Function.String() + "(")
	p.printExprList(n.Arguments)
	p.write(")")
}

func (p *CodePrinter) VisitIndexExpression(n *ast.IndexExpression) {
	p.printPostfixBase(n.Left)
	p.write("[")
	p.printExpr(n.Index, 0, false)
	p.write("]")
}

func (p *CodePrinter) VisitMemberExpression(n *ast.MemberExpression) {
	p.printPostfixBase(n.Left)
	p.write("." + n.Member.String())
}

// PrintCode is a shorthand for formatting a whole program.
func PrintCode(program *ast.Program) string {
	p := NewCodePrinter()
	program.Accept(p)
	return p.String()
}
