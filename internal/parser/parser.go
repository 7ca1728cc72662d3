package parser

import (
	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/pipeline"
	"github.com/funvibe/liger/internal/symbols"
	"github.com/funvibe/liger/internal/token"
)

const (
	_ int = iota
	LOWEST
	OR          // |
	AND         // &
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // !x -x
	POSTFIX     // a[i] a.f
)

var precedences = map[token.TokenType]int{
	token.PIPE:     OR,
	token.AMPER:    AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GT:       LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LBRACKET: POSTFIX,
	token.DOT:      POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	stream pipeline.TokenStream
	ctx    *pipeline.PipelineContext
	names  *symbols.Interner

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth               int
	maxDepth            int
	inRecursionRecovery bool
}

func New(stream pipeline.TokenStream, ctx *pipeline.PipelineContext) *Parser {
	ctx.EnsureSession()
	p := &Parser{
		stream:   stream,
		ctx:      ctx,
		names:    ctx.Interner,
		maxDepth: ctx.MaxDepth(),
	}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.INT:      p.parseIntegerLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBoolean,
		token.FALSE:    p.parseBoolean,
		token.NIL:      p.parseNil,
		token.BANG:     p.parsePrefixExpression,
		token.MINUS:    p.parseNegation,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACKET: p.parseArrayLiteral,
		token.LBRACE:   p.parseStructLiteral,
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, op := range []token.TokenType{
		token.PIPE, token.AMPER, token.EQ, token.NOT_EQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
	} {
		p.infixParseFns[op] = p.parseInfixExpression
	}
	p.infixParseFns[token.LBRACKET] = p.parseIndexExpression
	p.infixParseFns[token.DOT] = p.parseMemberExpression

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.Next()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

// expectPeek advances if the next token has type t and reports P002 otherwise.
func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	if p.peekTokenIs(token.ILLEGAL) {
		// Already reported by the lexer.
		return
	}
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP002,
		p.peekToken,
		"expected %s, got %s",
		describe(t), describeToken(p.peekToken),
	))
}

func (p *Parser) unexpected(tok token.Token, context string) {
	if tok.Type == token.ILLEGAL {
		return
	}
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
		diagnostics.ErrP001,
		tok,
		"unexpected %s %s",
		describeToken(tok), context,
	))
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// enter bumps the nesting depth. On overflow it reports P003 once per
// recovery and the caller must bail out.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth <= p.maxDepth {
		return true
	}
	if !p.inRecursionRecovery {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrP003,
			p.curToken,
			"nesting too deep: limit is %d",
			p.maxDepth,
		))
		p.inRecursionRecovery = true
	}
	return false
}

func (p *Parser) leave() {
	p.depth--
	if p.depth == 0 {
		p.inRecursionRecovery = false
	}
}

// ParseProgram parses declarations until EOF. A declaration that fails to
// parse is dropped and parsing resumes at the next top-level keyword.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.ctx.FilePath}

	for !p.curTokenIs(token.EOF) {
		errs := len(p.ctx.Errors)
		decl := p.parseDeclaration()
		if decl != nil && len(p.ctx.Errors) == errs {
			program.Declarations = append(program.Declarations, decl)
			p.nextToken()
			continue
		}
		p.synchronize()
	}
	return program
}

// synchronize skips to the next 'var', 'type' or 'fun' that starts a line of
// declarations, tracking braces so nested locals are not mistaken for one.
func (p *Parser) synchronize() {
	p.depth = 0
	p.inRecursionRecovery = false
	braces := 0
	for !p.curTokenIs(token.EOF) {
		p.nextToken()
		switch p.curToken.Type {
		case token.LBRACE:
			braces++
		case token.RBRACE:
			if braces > 0 {
				braces--
			}
		case token.VAR, token.TYPE, token.FUN:
			if braces == 0 {
				return
			}
		}
	}
}

// skipToStatementBoundary advances to the next ';' or '}' without consuming
// the closing brace.
func (p *Parser) skipToStatementBoundary() {
	for !p.curTokenIs(token.SEMICOLON) && !p.peekTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func describe(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.INT:
		return "integer"
	case token.STRING:
		return "string"
	case token.EOF:
		return "end of file"
	}
	if len(t) > 0 && t[0] >= 'A' && t[0] <= 'Z' {
		return "'" + lowerKeyword(t) + "'"
	}
	return "'" + string(t) + "'"
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of file"
	case token.IDENT:
		return "identifier " + tok.Lexeme
	case token.INT:
		return "integer " + tok.Lexeme
	}
	return "'" + tok.Lexeme + "'"
}

func lowerKeyword(t token.TokenType) string {
	switch t {
	case token.INT_T:
		return "int"
	case token.BOOL_T:
		return "bool"
	}
	b := []byte(t)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
