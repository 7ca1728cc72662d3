package diagnostics

import (
	"testing"

	"github.com/funvibe/liger/internal/token"
)

func TestErrorString(t *testing.T) {
	tok := token.Token{Type: token.IDENT, Lexeme: "x", Line: 3, Column: 7}

	tests := []struct {
		name string
		err  *DiagnosticError
		want string
	}{
		{"formatted", NewError(ErrA001, tok, "undeclared variable %s", "x"), "3:7: [A001] undeclared variable x"},
		{"summary fallback", NewError(ErrP003, tok, ""), "3:7: [P003] nesting too deep"},
		{"with file", &DiagnosticError{Code: ErrL001, Token: tok, File: "a.lig", Message: "illegal character '@'"}, "a.lig:3:7: [L001] illegal character '@'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStage(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrL002: "lexer",
		ErrP001: "parser",
		ErrA003: "analyzer",
		ErrC001: "config",
		"":      "",
		"X999":  "",
	}
	for code, want := range tests {
		if got := code.Stage(); got != want {
			t.Errorf("%q.Stage() = %q, want %q", code, got, want)
		}
	}
}

func TestEveryCodeHasSummary(t *testing.T) {
	for _, code := range []ErrorCode{ErrL001, ErrL002, ErrL003, ErrP001, ErrP002, ErrP003, ErrA001, ErrA002, ErrA003, ErrC001} {
		if code.Summary() == "" {
			t.Errorf("%s has no summary", code)
		}
	}
}
