package parser

import (
	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	ok := p.enter()
	defer p.leave()
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.EOF {
		p.unexpected(tok, "in expression")
		return
	}
	p.unexpected(tok, "at start of expression")
}

// parseIdentifier handles both variable references and calls: Liger calls
// only named functions.
func (p *Parser) parseIdentifier() ast.Expression {
	if !p.peekTokenIs(token.LPAREN) {
		return &ast.Identifier{Token: p.curToken, Name: p.names.Variable(p.curToken.Lexeme)}
	}

	call := &ast.CallExpression{Token: p.curToken, Function: p.names.Function(p.curToken.Lexeme)}
	p.nextToken() // (
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	return call
}

// parseExpressionList expects curToken on the opening delimiter and leaves
// it on end.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil, false
	}
	list = append(list, first)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil, false
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, ok := p.curToken.Literal.(int64)
	if !ok {
		p.unexpected(p.curToken, "integer literal")
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parseNegation rewrites -e as 0 - e.
func (p *Parser) parseNegation() ast.Expression {
	minus := p.curToken
	zero := token.Token{Type: token.INT, Lexeme: "0", Literal: int64(0), Line: minus.Line, Column: minus.Column}
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.InfixExpression{
		Token:    minus,
		Left:     &ast.IntegerLiteral{Token: zero, Value: 0},
		Operator: "-",
		Right:    right,
	}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := precedences[p.curToken.Type]
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

// [e1, e2, ...]; array literals are never empty.
func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}
	if p.peekTokenIs(token.RBRACKET) {
		p.unexpected(p.peekToken, "after '[': array literals must not be empty")
		return nil
	}
	elems, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elems
	return array
}

// {name = e, ...}
func (p *Parser) parseStructLiteral() ast.Expression {
	lit := &ast.StructLiteral{Token: p.curToken}
	seen := make(map[int]bool)

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		init := &ast.FieldInit{Token: p.curToken, Name: p.names.Field(p.curToken.Lexeme)}
		if !p.checkDuplicateField(seen, init.Name) {
			return nil
		}
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		init.Value = p.parseExpression(LOWEST)
		if init.Value == nil {
			return nil
		}
		lit.Fields = append(lit.Fields, init)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{Token: p.curToken, Left: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Member = p.names.Field(p.curToken.Lexeme)
	return exp
}
