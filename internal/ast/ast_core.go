package ast

import (
	"github.com/funvibe/liger/internal/symbols"
	"github.com/funvibe/liger/internal/token"
	"github.com/funvibe/liger/internal/typesystem"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
// Nodes carry no inferred type; the checker records types in a side table
// keyed by node.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File         string // Source file path
	Declarations []*Declaration
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) TokenLiteral() string {
	if len(p.Declarations) > 0 {
		return p.Declarations[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token {
	if p == nil || len(p.Declarations) == 0 {
		return token.Token{}
	}
	return p.Declarations[0].Token
}

// Declaration binds a name. The namespace of Name says which kind it is:
//
//	var x: int = 5;             Variable, Value optional
//	type node = {next: node};   TypeName
//	fun f(a: int): int { ... }  Function, Locals and Body set
//
// For functions, Type is the full signature; parameter names live in its
// parameter list.
type Declaration struct {
	Token  token.Token // The 'var', 'type' or 'fun' keyword
	Name   symbols.Symbol
	Type   typesystem.Type
	Value  Expression     // Initializer, variables only
	Locals []*Declaration // Function-local declarations
	Body   []Statement    // Function body
}

func (d *Declaration) Accept(v Visitor)     { v.VisitDeclaration(d) }
func (d *Declaration) TokenLiteral() string { return d.Token.Lexeme }
func (d *Declaration) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

func (d *Declaration) IsVariable() bool { return d.Name.IsVariable() }
func (d *Declaration) IsFunction() bool { return d.Name.IsFunction() }
func (d *Declaration) IsTypeName() bool { return d.Name.IsTypeName() }

// HasBody reports whether the declaration carries a function body to check.
// Every function declaration has one, possibly empty.
func (d *Declaration) HasBody() bool {
	return d.IsFunction()
}
