package parser_test

import (
	"bytes"
	"log"
	"strconv"
	"strings"
	"testing"

	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/lexer"
	"github.com/funvibe/liger/internal/parser"
	"github.com/funvibe/liger/internal/pipeline"
	"github.com/funvibe/liger/internal/typesystem"
)

// parse is a test helper: lexes+parses input and fails on errors.
func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := &pipeline.PipelineContext{SourceCode: input}
	lp := &lexer.LexerProcessor{}
	ctx = lp.Process(ctx)
	pp := &parser.ParserProcessor{}
	ctx = pp.Process(ctx)
	if len(ctx.Errors) > 0 {
		for _, e := range ctx.Errors {
			t.Errorf("parse error: %s", e)
		}
		t.FailNow()
	}
	return ctx.AstRoot.(*ast.Program)
}

// declValue extracts the initializer of the nth declaration.
func declValue(t *testing.T, prog *ast.Program, idx int) ast.Expression {
	t.Helper()
	if idx >= len(prog.Declarations) {
		t.Fatalf("expected at least %d declarations, got %d", idx+1, len(prog.Declarations))
	}
	v := prog.Declarations[idx].Value
	if v == nil {
		t.Fatalf("declaration %d has no initializer", idx)
	}
	return v
}

// show renders an expression fully parenthesized.
func show(e ast.Expression) string {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Name.String()
	case *ast.IntegerLiteral:
		return strconv.FormatInt(e.Value, 10)
	case *ast.BooleanLiteral:
		return strconv.FormatBool(e.Value)
	case *ast.NilLiteral:
		return "nil"
	case *ast.StringLiteral:
		return strconv.Quote(e.Value)
	case *ast.PrefixExpression:
		return "(" + e.Operator + show(e.Right) + ")"
	case *ast.InfixExpression:
		return "(" + show(e.Left) + " " + e.Operator + " " + show(e.Right) + ")"
	case *ast.CallExpression:
		args := make([]string, len(e.Arguments))
		for i, a := range e.Arguments {
			args[i] = show(a)
		}
		return e.Function.String() + "(" + strings.Join(args, ", ") + ")"
	case *ast.IndexExpression:
		return show(e.Left) + "[" + show(e.Index) + "]"
	case *ast.MemberExpression:
		return show(e.Left) + "." + e.Member.String()
	}
	return "?"
}

func TestDeclarationKinds(t *testing.T) {
	prog := parse(t, `
type node = {value: int, next: node};
var head: node;
fun f(a: int, b: [bool]): int { var t: int; return t; }
fun g() {}
`)
	if len(prog.Declarations) != 4 {
		t.Fatalf("got %d declarations", len(prog.Declarations))
	}
	typ, v, f, g := prog.Declarations[0], prog.Declarations[1], prog.Declarations[2], prog.Declarations[3]

	if !typ.IsTypeName() || !typesystem.IsStruct(typ.Type) {
		t.Errorf("type declaration = %s", typesystem.Format(typ.Type))
	}
	if !v.IsVariable() || !typesystem.IsNamed(v.Type) || v.Value != nil {
		t.Errorf("var declaration = %s", typesystem.Format(v.Type))
	}
	if !f.IsFunction() || !f.HasBody() {
		t.Fatalf("f should be a function with a body")
	}
	if got := typesystem.Format(f.Type); got != "(a : int, b : [bool]) -> int" {
		t.Errorf("f type = %s", got)
	}
	if len(f.Locals) != 1 || !f.Locals[0].IsVariable() || len(f.Body) != 1 {
		t.Errorf("f locals %d, body %d", len(f.Locals), len(f.Body))
	}
	if got := typesystem.Format(g.Type); got != "() -> void" {
		t.Errorf("missing return type must mean void, got %s", got)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a | b & c", "(a | (b & c))"},
		{"a == b < c", "(a == (b < c))"},
		{"1 + 2 < 3 == true", "(((1 + 2) < 3) == true)"},
		{"!a & b", "((!a) & b)"},
		{"-a * b", "((0 - a) * b)"},
		{"-a.f", "(0 - a.f)"},
		{"a[1 + 2].f[0]", "a[(1 + 2)].f[0]"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"f(1, g(2)) % 3", "(f(1, g(2)) % 3)"},
	}
	for _, tt := range tests {
		prog := parse(t, "var x: int = "+tt.input+";")
		if got := show(declValue(t, prog, 0)); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestNegationDesugar(t *testing.T) {
	prog := parse(t, "var x: int =\n   -y;")
	infix, ok := declValue(t, prog, 0).(*ast.InfixExpression)
	if !ok || infix.Operator != "-" {
		t.Fatalf("negation should become a subtraction, got %T", declValue(t, prog, 0))
	}
	zero, ok := infix.Left.(*ast.IntegerLiteral)
	if !ok || zero.Value != 0 {
		t.Fatalf("left operand = %v", infix.Left)
	}
	if zero.Token.Line != 2 || zero.Token.Column != 4 || infix.Token.Column != 4 {
		t.Errorf("synthesized zero at %d:%d, want the position of '-'", zero.Token.Line, zero.Token.Column)
	}
}

func TestLiterals(t *testing.T) {
	prog := parse(t, `
var p: {a: int, b: [int]} = {b = "hi", a = 1};
var q: [bool] = [true, false, nil == nil];
`)
	lit, ok := declValue(t, prog, 0).(*ast.StructLiteral)
	if !ok || len(lit.Fields) != 2 {
		t.Fatalf("struct literal = %v", declValue(t, prog, 0))
	}
	if lit.Fields[0].Name.String() != "b" {
		t.Errorf("field initializers keep source order, got %s first", lit.Fields[0].Name)
	}
	if s, ok := lit.Fields[0].Value.(*ast.StringLiteral); !ok || s.Value != "hi" {
		t.Errorf("string initializer = %v", lit.Fields[0].Value)
	}

	arr, ok := declValue(t, prog, 1).(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("array literal = %v", declValue(t, prog, 1))
	}
}

func TestStatements(t *testing.T) {
	prog := parse(t, `
fun f(a: [int]): int {
	var i: int;
	a[0] = 1;
	print(a);
	for i = 0 to sizeof(a) { }
	while i > 0 { i = i - 1; }
	if i == 0 { return 1; } else if i == 1 { return 2; } else { return 3; }
	return;
}
`)
	body := prog.Declarations[0].Body
	if len(body) != 6 {
		t.Fatalf("got %d statements", len(body))
	}
	if _, ok := body[0].(*ast.AssignStatement); !ok {
		t.Errorf("stmt 0: %T", body[0])
	}
	if es, ok := body[1].(*ast.ExpressionStatement); !ok {
		t.Errorf("stmt 1: %T", body[1])
	} else if _, ok := es.Expression.(*ast.CallExpression); !ok {
		t.Errorf("stmt 1 expression: %T", es.Expression)
	}
	if fs, ok := body[2].(*ast.ForStatement); !ok || len(fs.Body) != 0 {
		t.Errorf("stmt 2: %T", body[2])
	}
	if _, ok := body[3].(*ast.WhileStatement); !ok {
		t.Errorf("stmt 3: %T", body[3])
	}

	ifs, ok := body[4].(*ast.IfStatement)
	if !ok {
		t.Fatalf("stmt 4: %T", body[4])
	}
	if len(ifs.Alternative) != 1 {
		t.Fatalf("else-if should nest as the only alternative statement")
	}
	nested, ok := ifs.Alternative[0].(*ast.IfStatement)
	if !ok || len(nested.Alternative) != 1 {
		t.Errorf("nested if = %v", ifs.Alternative[0])
	}

	if rs, ok := body[5].(*ast.ReturnStatement); !ok || rs.Value != nil {
		t.Errorf("bare return = %v", body[5])
	}
}

func TestIfWithoutElseHasEmptyAlternative(t *testing.T) {
	prog := parse(t, "fun f() { if true { } }")
	ifs := prog.Declarations[0].Body[0].(*ast.IfStatement)
	if ifs.Alternative == nil || len(ifs.Alternative) != 0 {
		t.Errorf("alternative = %#v", ifs.Alternative)
	}
}

func TestFilePathRecorded(t *testing.T) {
	ctx := pipeline.NewPipelineContext("var x: int;")
	ctx.FilePath = "a.lig"
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if prog := ctx.Program(); prog == nil || prog.File != "a.lig" {
		t.Errorf("program file not recorded")
	}
}

func TestSymbolsShareOneInterner(t *testing.T) {
	ctx := pipeline.NewPipelineContext("type a = int; fun a() {} var a: int;")
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	prog := ctx.Program()
	if len(prog.Declarations) != 3 {
		t.Fatalf("errors: %v", ctx.Errors)
	}
	first := prog.Declarations[0].Name
	for _, d := range prog.Declarations[1:] {
		if d.Name.ID() != first.ID() {
			t.Errorf("%s interned as %d and %d", d.Name, first.ID(), d.Name.ID())
		}
	}
	if ctx.Interner.Len() != 1 {
		t.Errorf("interner holds %d names, want 1", ctx.Interner.Len())
	}
}

func TestProcessorTracesDeclarationsAndNames(t *testing.T) {
	var buf bytes.Buffer
	ctx := pipeline.NewPipelineContext("var x: int; fun f(x: int): int { return x; }")
	ctx.Logger = log.New(&buf, "", 0)
	pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)

	want := "[" + ctx.SessionID[:8] + "] parsed 2 declarations, 2 names"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("trace = %q, want a line %q", buf.String(), want)
	}
}
