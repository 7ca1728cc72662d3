package parser

import (
	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	ok := p.enter()
	defer p.leave()
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}

	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.VAR, token.TYPE, token.FUN:
		p.unexpected(p.curToken, "in function body: declarations must come before statements")
		return nil
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

// parseStatementsUntilBrace parses statements until the closing '}' and
// leaves curToken on it.
func (p *Parser) parseStatementsUntilBrace() ([]ast.Statement, bool) {
	stmts := []ast.Statement{}
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
				diagnostics.ErrP002,
				p.curToken,
				"expected '}', got end of file",
			))
			return nil, false
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil, false
		}
		stmts = append(stmts, stmt)
		p.nextToken()
	}
	return stmts, true
}

// parseBlock expects curToken on '{'.
func (p *Parser) parseBlock() ([]ast.Statement, bool) {
	p.nextToken()
	return p.parseStatementsUntilBrace()
}

// if cond { ... } else if cond { ... } else { ... }
func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	cons, ok := p.parseBlock()
	if !ok {
		return nil
	}
	stmt.Consequence = cons
	stmt.Alternative = []ast.Statement{}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken() // else
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			nested := p.parseStatement()
			if nested == nil {
				return nil
			}
			stmt.Alternative = []ast.Statement{nested}
			return stmt
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		alt, ok := p.parseBlock()
		if !ok {
			return nil
		}
		stmt.Alternative = alt
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	stmt.Body = body
	return stmt
}

// for i = 0 to n { ... }
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	p.nextToken()
	stmt.Variable = p.parseExpression(LOWEST)
	if stmt.Variable == nil || !p.checkAssignable(stmt.Variable) {
		return nil
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.From = p.parseExpression(LOWEST)
	if stmt.From == nil {
		return nil
	}
	if !p.expectPeek(token.TO) {
		return nil
	}
	p.nextToken()
	stmt.To = p.parseExpression(LOWEST)
	if stmt.To == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	stmt.Body = body
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionOrAssignStatement() ast.Statement {
	first := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if p.peekTokenIs(token.ASSIGN) {
		if !p.checkAssignable(expr) {
			return nil
		}
		p.nextToken()
		stmt := &ast.AssignStatement{Token: p.curToken, Left: expr}
		p.nextToken()
		stmt.Right = p.parseExpression(LOWEST)
		if stmt.Right == nil {
			return nil
		}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return stmt
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.ExpressionStatement{Token: first, Expression: expr}
}

// checkAssignable accepts variables, array elements and struct fields.
func (p *Parser) checkAssignable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.IndexExpression, *ast.MemberExpression:
		return true
	}
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP001,
		expr.GetToken(),
		"cannot assign to %s",
		describeToken(expr.GetToken()),
	))
	return false
}
