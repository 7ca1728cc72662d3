package lexer

import (
	"github.com/funvibe/liger/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.EnsureSession()
	l := New(ctx.SourceCode)
	stream := NewTokenStream(l)
	ctx.TokenStream = stream

	for _, err := range l.Errors() {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}
	ctx.Logf("lexed %d tokens", len(stream.Tokens()))
	return ctx
}
