package analyzer

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/funvibe/liger/internal/config"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/lexer"
	"github.com/funvibe/liger/internal/parser"
	"github.com/funvibe/liger/internal/pipeline"
)

func runPipeline(input string, cfg *config.Config) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(input)
	ctx.FilePath = "test.lig"
	if cfg != nil {
		ctx.Config = cfg
	}
	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&SemanticAnalyzerProcessor{},
	)
	return p.Run(ctx)
}

// expectAnalyzerError asserts that at least one error with the given code is produced.
func expectAnalyzerError(t *testing.T, ctx *pipeline.PipelineContext, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	for _, e := range ctx.Errors {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range ctx.Errors {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s", code, strings.Join(msgs, "\n"))
	return nil
}

func expectNoErrors(t *testing.T, ctx *pipeline.PipelineContext) {
	t.Helper()
	if len(ctx.Errors) > 0 {
		var msgs []string
		for _, e := range ctx.Errors {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected no errors, got:\n%s", strings.Join(msgs, "\n"))
	}
}

const validProgram = `
type list = {head: int, tail: list};

fun length(l: list): int {
	var n: int = 0;
	while l != nil {
		n = n + 1;
		l = l.tail;
	}
	return n;
}

fun main(args: [[int]]): int {
	var l: list = {head = 1, tail = {head = 2, tail = nil}};
	print("hello");
	return length(l);
}
`

func TestProcessorValidProgram(t *testing.T) {
	ctx := runPipeline(validProgram, nil)
	expectNoErrors(t, ctx)
	if !ctx.AllOk || !ctx.MainOk || !ctx.Ok() {
		t.Errorf("gates: all ok %v, main ok %v", ctx.AllOk, ctx.MainOk)
	}
	if ctx.Env == nil || ctx.TypeMap == nil {
		t.Fatalf("environment and type map must be published")
	}
	if ctx.Env.LookupFunctionBody(ctx.Interner.Function("length")) == nil {
		t.Errorf("length should be re-enterable through the environment")
	}
}

func TestProcessorReportsRootCause(t *testing.T) {
	ctx := runPipeline(`
fun main(args: [[int]]): int {
	var x: int;
	x = 1 + true * 2;
	return 0;
}
`, nil)
	err := expectAnalyzerError(t, ctx, diagnostics.ErrA001)
	if len(ctx.Errors) != 1 {
		t.Errorf("want exactly one error, got %v", ctx.Errors)
	}
	if !strings.Contains(err.Message, "invalid operands to *: bool and int") {
		t.Errorf("message = %q", err.Message)
	}
	if err.File != "test.lig" || err.Token.Line != 4 {
		t.Errorf("location = %s:%d", err.File, err.Token.Line)
	}
}

func TestProcessorConflict(t *testing.T) {
	ctx := runPipeline(`
var x: int;
var x: bool;
fun main(args: [[int]]): int { return 0; }
`, nil)
	err := expectAnalyzerError(t, ctx, diagnostics.ErrA002)
	if err.Token.Line != 3 {
		t.Errorf("conflict reported on line %d, want 3", err.Token.Line)
	}
	if ctx.AllOk {
		t.Errorf("conflict must fail the all-ok gate")
	}
}

func TestProcessorMain(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		ctx := runPipeline(`var x: int;`, nil)
		err := expectAnalyzerError(t, ctx, diagnostics.ErrA003)
		if !strings.Contains(err.Message, "got NONE") {
			t.Errorf("message = %q", err.Message)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := runPipeline(`fun main(): int { return 0; }`, nil)
		err := expectAnalyzerError(t, ctx, diagnostics.ErrA003)
		if !strings.Contains(err.Message, "got () -> int") {
			t.Errorf("message = %q", err.Message)
		}
		if !ctx.AllOk || ctx.MainOk {
			t.Errorf("gates: all ok %v, main ok %v", ctx.AllOk, ctx.MainOk)
		}
	})

	t.Run("not required", func(t *testing.T) {
		cfg, err := config.ParseConfig([]byte("require_main: false\n"), "liger.yaml")
		if err != nil {
			t.Fatal(err)
		}
		ctx := runPipeline(`var x: int;`, cfg)
		expectNoErrors(t, ctx)
		if ctx.MainOk {
			t.Errorf("main is still absent")
		}
	})
}

func TestProcessorSkipsWithoutProgram(t *testing.T) {
	ctx := &pipeline.PipelineContext{}
	ctx = (&SemanticAnalyzerProcessor{}).Process(ctx)
	if ctx.Env != nil || len(ctx.Errors) != 0 {
		t.Errorf("no program should mean no analysis")
	}
}

func TestProcessorSkipsUnparsedSource(t *testing.T) {
	ctx := runPipeline(`
var x: int = ;
fun main(args: [[int]]): int { return y; }
`, nil)
	for _, e := range ctx.Errors {
		if e.Code.Stage() == "analyzer" {
			t.Errorf("analysis should not run after a syntax error: %s", e)
		}
	}
	if ctx.Env != nil || ctx.AllOk {
		t.Errorf("no environment should be published")
	}
}

func TestProcessorTracesWithSessionID(t *testing.T) {
	var buf bytes.Buffer
	ctx := pipeline.NewPipelineContext(`
fun f(x: int): int { return x; }
fun f(x: int): int { return x; }
fun main(args: [[int]]): int { return 0; }
`)
	ctx.Logger = log.New(&buf, "liger: ", 0)
	pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&SemanticAnalyzerProcessor{},
	).Run(ctx)

	tag := "liger: [" + ctx.SessionID[:8] + "] "
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var sawConflict bool
	for _, line := range lines {
		if !strings.HasPrefix(line, tag) {
			t.Errorf("line without session tag: %q", line)
		}
		if strings.Contains(line, "conflict at 3:1") {
			sawConflict = true
		}
	}
	if !sawConflict {
		t.Errorf("conflict not traced:\n%s", buf.String())
	}
}
