package pipeline

import (
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/config"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/environment"
	"github.com/funvibe/liger/internal/symbols"
	"github.com/funvibe/liger/internal/token"
	"github.com/funvibe/liger/internal/typesystem"
)

// TokenStream is the lexer output consumed by the parser.
type TokenStream interface {
	Next() token.Token
	Peek(n int) []token.Token
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext is one compilation session. It owns the symbol interner,
// so symbols from different sessions must never be mixed.
type PipelineContext struct {
	SessionID  string
	SourceCode string
	FilePath   string
	Config     *config.Config
	Logger     *log.Logger

	Interner    *symbols.Interner
	TokenStream TokenStream
	AstRoot     ast.Node

	// Filled by the analyzer.
	Env     *environment.Environment
	TypeMap map[ast.Node]typesystem.Type
	AllOk   bool
	MainOk  bool

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{
		SessionID:  uuid.NewString(),
		SourceCode: source,
		Config:     config.Default(),
		Logger:     log.New(io.Discard, "", 0),
		Interner:   symbols.NewInterner(),
	}
}

// Logf traces through the session logger, tagged with the session id.
func (ctx *PipelineContext) Logf(format string, args ...interface{}) {
	if ctx.Logger == nil {
		return
	}
	ctx.Logger.Printf("[%s] "+format, append([]interface{}{ctx.shortID()}, args...)...)
}

// SessionLogger returns a logger for stages that trace on their own. It
// writes where ctx.Logger does, with the session id after its prefix.
func (ctx *PipelineContext) SessionLogger() *log.Logger {
	if ctx.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return log.New(ctx.Logger.Writer(), ctx.Logger.Prefix()+"["+ctx.shortID()+"] ", ctx.Logger.Flags())
}

func (ctx *PipelineContext) shortID() string {
	if len(ctx.SessionID) >= 8 {
		return ctx.SessionID[:8]
	}
	return ctx.SessionID
}

// MaxDepth is the effective recursion bound for this session.
func (ctx *PipelineContext) MaxDepth() int {
	if ctx.Config == nil || ctx.Config.MaxDepth <= 0 {
		return config.DefaultMaxDepth
	}
	return ctx.Config.MaxDepth
}

// Program returns the parsed root, or nil if parsing produced none.
func (ctx *PipelineContext) Program() *ast.Program {
	prog, _ := ctx.AstRoot.(*ast.Program)
	return prog
}

// Ok reports whether the session produced no diagnostics and every
// declaration checked.
func (ctx *PipelineContext) Ok() bool {
	return len(ctx.Errors) == 0 && ctx.AllOk
}

// EnsureSession fills in the interner and session id of contexts built as
// struct literals rather than through NewPipelineContext.
func (ctx *PipelineContext) EnsureSession() {
	if ctx.Interner == nil {
		ctx.Interner = symbols.NewInterner()
	}
	if ctx.SessionID == "" {
		ctx.SessionID = uuid.NewString()
	}
}
