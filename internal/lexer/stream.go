package lexer

import "github.com/funvibe/liger/internal/token"

// TokenStream is a fully buffered token sequence ending in EOF.
// Liger sources are small, so the whole file is lexed up front; this lets
// lexical errors be reported before parsing starts and gives the parser
// unbounded lookahead.
type TokenStream struct {
	tokens []token.Token
	pos    int
	lexer  *Lexer
}

func NewTokenStream(l *Lexer) *TokenStream {
	ts := &TokenStream{lexer: l}
	for {
		tok := l.NextToken()
		ts.tokens = append(ts.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return ts
}

// Next returns the next token. After the end it keeps returning EOF.
func (ts *TokenStream) Next() token.Token {
	tok := ts.tokens[ts.pos]
	if ts.pos < len(ts.tokens)-1 {
		ts.pos++
	}
	return tok
}

// Peek returns up to n tokens that Next would return, without consuming them.
func (ts *TokenStream) Peek(n int) []token.Token {
	end := ts.pos + n
	if end > len(ts.tokens) {
		end = len(ts.tokens)
	}
	return ts.tokens[ts.pos:end]
}

// Tokens exposes the buffered tokens, EOF included.
func (ts *TokenStream) Tokens() []token.Token {
	return ts.tokens
}

func (ts *TokenStream) Lexer() *Lexer {
	return ts.lexer
}
