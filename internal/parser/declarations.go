package parser

import (
	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/symbols"
	"github.com/funvibe/liger/internal/token"
	"github.com/funvibe/liger/internal/typesystem"
)

func (p *Parser) parseDeclaration() *ast.Declaration {
	switch p.curToken.Type {
	case token.VAR:
		return p.parseVarDeclaration()
	case token.TYPE:
		return p.parseTypeDeclaration()
	case token.FUN:
		return p.parseFunctionDeclaration()
	default:
		p.unexpected(p.curToken, "at top level: expected 'var', 'type' or 'fun'")
		return nil
	}
}

// var x: int = 5;
func (p *Parser) parseVarDeclaration() *ast.Declaration {
	decl := &ast.Declaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = p.names.Variable(p.curToken.Lexeme)

	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	decl.Type = p.parseType()
	if decl.Type == nil {
		return nil
	}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken() // =
		p.nextToken()
		decl.Value = p.parseExpression(LOWEST)
		if decl.Value == nil {
			return nil
		}
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return decl
}

// type node = {value: int, next: node};
func (p *Parser) parseTypeDeclaration() *ast.Declaration {
	decl := &ast.Declaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = p.names.TypeName(p.curToken.Lexeme)

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	decl.Type = p.parseType()
	if decl.Type == nil {
		return nil
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return decl
}

// fun f(a: int, b: [int]): int { var t: int; stmt* }
// A missing return type means void.
func (p *Parser) parseFunctionDeclaration() *ast.Declaration {
	decl := &ast.Declaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = p.names.Function(p.curToken.Lexeme)

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseParameters()
	if !ok {
		return nil
	}

	ret := typesystem.Void
	if p.peekTokenIs(token.COLON) {
		p.nextToken() // :
		p.nextToken()
		ret = p.parseType()
		if ret == nil {
			return nil
		}
	}
	decl.Type = typesystem.NewFunc(params, ret)

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	decl.Locals = []*ast.Declaration{}
	for p.curTokenIs(token.VAR) {
		local := p.parseVarDeclaration()
		if local == nil {
			return nil
		}
		decl.Locals = append(decl.Locals, local)
		p.nextToken()
	}

	body, ok := p.parseStatementsUntilBrace()
	if !ok {
		return nil
	}
	decl.Body = body
	return decl
}

// parseParameters expects curToken on '(' and leaves it on ')'.
func (p *Parser) parseParameters() ([]typesystem.Field, bool) {
	params := []typesystem.Field{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		name := p.names.Variable(p.curToken.Lexeme)
		if !p.expectPeek(token.COLON) {
			return nil, false
		}
		p.nextToken()
		typ := p.parseType()
		if typ == nil {
			return nil, false
		}
		params = append(params, typesystem.Field{Name: name, Type: typ})

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseType reads a type expression starting at curToken and leaves
// curToken on its last token.
func (p *Parser) parseType() typesystem.Type {
	ok := p.enter()
	defer p.leave()
	if !ok {
		return nil
	}

	switch p.curToken.Type {
	case token.INT_T:
		return typesystem.Int
	case token.BOOL_T:
		return typesystem.Bool
	case token.IDENT:
		return typesystem.NewNamed(p.names.TypeName(p.curToken.Lexeme))
	case token.LBRACKET:
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return typesystem.NewArray(elem)
	case token.LBRACE:
		return p.parseStructType()
	default:
		p.unexpected(p.curToken, "where a type was expected")
		return nil
	}
}

func (p *Parser) parseStructType() typesystem.Type {
	fields := []typesystem.Field{}
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return typesystem.NewStruct(fields)
	}

	seen := make(map[int]bool)
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name := p.names.Field(p.curToken.Lexeme)
		if !p.checkDuplicateField(seen, name) {
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		typ := p.parseType()
		if typ == nil {
			return nil
		}
		fields = append(fields, typesystem.Field{Name: name, Type: typ})

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return typesystem.NewStruct(fields)
}

func (p *Parser) checkDuplicateField(seen map[int]bool, name symbols.Symbol) bool {
	if seen[name.ID()] {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP001,
			p.curToken,
			"duplicate field %s",
			name,
		))
		return false
	}
	seen[name.ID()] = true
	return true
}
