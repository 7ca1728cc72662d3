package diagnostics

import (
	"fmt"

	"github.com/funvibe/liger/internal/token"
)

type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // Illegal character
	ErrL002 ErrorCode = "L002" // Integer literal out of range
	ErrL003 ErrorCode = "L003" // Unterminated string or comment

	// Parser
	ErrP001 ErrorCode = "P001" // Unexpected token
	ErrP002 ErrorCode = "P002" // Expected token
	ErrP003 ErrorCode = "P003" // Nesting too deep

	// Analyzer
	ErrA001 ErrorCode = "A001" // Node has no type
	ErrA002 ErrorCode = "A002" // Redeclaration conflict
	ErrA003 ErrorCode = "A003" // Missing or mistyped main

	// Configuration
	ErrC001 ErrorCode = "C001"
)

var errorMessages = map[ErrorCode]string{
	ErrL001: "illegal character",
	ErrL002: "integer literal out of range",
	ErrL003: "unterminated literal",
	ErrP001: "unexpected token",
	ErrP002: "expected token",
	ErrP003: "nesting too deep",
	ErrA001: "type error",
	ErrA002: "conflicting declaration",
	ErrA003: "invalid main",
	ErrC001: "configuration error",
}

// DiagnosticError is a located, coded error produced by any front-end stage.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
}

// NewError builds a diagnostic. Extra args format the message like fmt.Sprintf.
func NewError(code ErrorCode, tok token.Token, msg string, args ...interface{}) *DiagnosticError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

func (e *DiagnosticError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	msg := e.Message
	if msg == "" {
		msg = errorMessages[e.Code]
	}
	return fmt.Sprintf("%s: [%s] %s", loc, e.Code, msg)
}

// Summary is the generic description of a code.
func (c ErrorCode) Summary() string {
	return errorMessages[c]
}

// Stage names the phase that emits errors with this code.
func (c ErrorCode) Stage() string {
	if c == "" {
		return ""
	}
	switch c[0] {
	case 'L':
		return "lexer"
	case 'P':
		return "parser"
	case 'A':
		return "analyzer"
	case 'C':
		return "config"
	}
	return ""
}
