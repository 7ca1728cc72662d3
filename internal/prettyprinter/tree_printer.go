package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/typesystem"
)

// --- Tree Printer (annotated s-expressions) ---

const treeShiftWidth = 3

// TreePrinter dumps a program as s-expressions with each node's inferred
// type after a colon, e.g. (+:int (num:int 1) (id:int x)). Declarations
// and statements start on their own lines; expressions stay inline.
type TreePrinter struct {
	buf    bytes.Buffer
	types  map[ast.Node]typesystem.Type
	indent int
}

// NewTreePrinter prints with the annotations in types, which may be nil
// for an unchecked tree.
func NewTreePrinter(types map[ast.Node]typesystem.Type) *TreePrinter {
	return &TreePrinter{types: types}
}

func (p *TreePrinter) String() string {
	return p.buf.String()
}

func (p *TreePrinter) write(s string) {
	p.buf.WriteString(s)
}

// open starts a nested line-level form.
func (p *TreePrinter) open() {
	if p.buf.Len() > 0 {
		p.write("\n")
	}
	p.write(strings.Repeat(" ", p.indent))
	p.indent += treeShiftWidth
}

func (p *TreePrinter) close() {
	p.indent -= treeShiftWidth
}

func (p *TreePrinter) typeOf(n ast.Node) string {
	return typesystem.Format(p.types[n])
}

func (p *TreePrinter) head(label string, n ast.Node) {
	p.write("(" + label + ":" + p.typeOf(n))
}

func (p *TreePrinter) expr(e ast.Expression) {
	if e == nil {
		p.write("(no-exp)")
		return
	}
	e.Accept(p)
}

func (p *TreePrinter) exprs(list []ast.Expression) {
	p.write("(exps")
	for _, e := range list {
		p.write(" ")
		p.expr(e)
	}
	p.write(")")
}

func (p *TreePrinter) stmts(list []ast.Statement) {
	p.open()
	p.write("(stmts")
	for _, s := range list {
		if s != nil {
			s.Accept(p)
		}
	}
	p.write(")")
	p.close()
}

func (p *TreePrinter) decls(list []*ast.Declaration) {
	p.open()
	p.write("(decls")
	for _, d := range list {
		d.Accept(p)
	}
	p.write(")")
	p.close()
}

func (p *TreePrinter) VisitProgram(n *ast.Program) {
	p.decls(n.Declarations)
}

func (p *TreePrinter) VisitDeclaration(n *ast.Declaration) {
	p.open()
	defer p.close()

	label := "decl-var"
	switch {
	case n.IsFunction():
		label = "decl-fun"
	case n.IsTypeName():
		label = "decl-type"
	}
	p.head(label, n)
	p.write(" (id " + n.Name.String() + ") " + TypeSExpr(n.Type))

	switch {
	case n.Value != nil:
		p.write(" ")
		p.expr(n.Value)
	case n.IsFunction():
		p.decls(n.Locals)
		p.stmts(n.Body)
	}
	p.write(")")
}

func (p *TreePrinter) VisitExpressionStatement(n *ast.ExpressionStatement) {
	p.open()
	defer p.close()
	p.head("exp-stmt", n)
	p.write(" ")
	p.expr(n.Expression)
	p.write(")")
}

func (p *TreePrinter) VisitAssignStatement(n *ast.AssignStatement) {
	p.open()
	defer p.close()
	p.head("assign", n)
	p.write(" ")
	p.expr(n.Left)
	p.write(" ")
	p.expr(n.Right)
	p.write(")")
}

func (p *TreePrinter) VisitIfStatement(n *ast.IfStatement) {
	p.open()
	defer p.close()
	p.head("if", n)
	p.write(" ")
	p.expr(n.Condition)
	p.stmts(n.Consequence)
	p.stmts(n.Alternative)
	p.write(")")
}

func (p *TreePrinter) VisitWhileStatement(n *ast.WhileStatement) {
	p.open()
	defer p.close()
	p.head("while", n)
	p.write(" ")
	p.expr(n.Condition)
	p.stmts(n.Body)
	p.write(")")
}

func (p *TreePrinter) VisitForStatement(n *ast.ForStatement) {
	p.open()
	defer p.close()
	p.head("for", n)
	p.write(" ")
	p.expr(n.Variable)
	p.write(" ")
	p.expr(n.From)
	p.write(" ")
	p.expr(n.To)
	p.stmts(n.Body)
	p.write(")")
}

func (p *TreePrinter) VisitReturnStatement(n *ast.ReturnStatement) {
	p.open()
	defer p.close()
	p.head("return", n)
	if n.Value != nil {
		p.write(" ")
		p.expr(n.Value)
	}
	p.write(")")
}

func (p *TreePrinter) VisitIdentifier(n *ast.Identifier) {
	p.head("id", n)
	p.write(" " + n.Name.String() + ")")
}

func (p *TreePrinter) VisitIntegerLiteral(n *ast.IntegerLiteral) {
	p.write("(num:int " + strconv.FormatInt(n.Value, 10) + ")")
}

func (p *TreePrinter) VisitBooleanLiteral(n *ast.BooleanLiteral) {
	if n.Value {
		p.write("(true:bool)")
	} else {
		p.write("(false:bool)")
	}
}

func (p *TreePrinter) VisitNilLiteral(n *ast.NilLiteral) {
	p.write("(nil:nil)")
}

func (p *TreePrinter) VisitStringLiteral(n *ast.StringLiteral) {
	p.write("(str:[int] " + strconv.Quote(n.Value) + ")")
}

func (p *TreePrinter) VisitPrefixExpression(n *ast.PrefixExpression) {
	p.head(n.Operator, n)
	p.write(" ")
	p.expr(n.Right)
	p.write(")")
}

func (p *TreePrinter) VisitInfixExpression(n *ast.InfixExpression) {
	p.head(n.Operator, n)
	p.write(" ")
	p.expr(n.Left)
	p.write(" ")
	p.expr(n.Right)
	p.write(")")
}

func (p *TreePrinter) VisitStructLiteral(n *ast.StructLiteral) {
	p.head("struct-lit", n)
	p.write(" (field-inits")
	for _, fi := range n.Fields {
		p.write(" (field-init (id " + fi.Name.String() + ") ")
		p.expr(fi.Value)
		p.write(")")
	}
	p.write("))")
}

func (p *TreePrinter) VisitArrayLiteral(n *ast.ArrayLiteral) {
	p.head("array-lit", n)
	p.write(" ")
	p.exprs(n.Elements)
	p.write(")")
}

func (p *TreePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.head("fun-call", n)
	p.write(" (id " + n.Function.String() + ") ")
	p.exprs(n.Arguments)
	p.write(")")
}

func (p *TreePrinter) VisitIndexExpression(n *ast.IndexExpression) {
	p.head("array-idx", n)
	p.write(" ")
	p.expr(n.Left)
	p.write(" ")
	p.expr(n.Index)
	p.write(")")
}

func (p *TreePrinter) VisitMemberExpression(n *ast.MemberExpression) {
	p.head("field-lkup", n)
	p.write(" ")
	p.expr(n.Left)
	p.write(" (id " + n.Member.String() + "))")
}

// PrintTree is a shorthand for dumping a whole program.
func PrintTree(program *ast.Program, types map[ast.Node]typesystem.Type) string {
	p := NewTreePrinter(types)
	program.Accept(p)
	return p.String()
}
