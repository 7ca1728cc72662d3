package analyzer

import (
	"github.com/funvibe/liger/internal/pipeline"
)

// SemanticAnalyzerProcessor type-checks ctx.AstRoot and publishes the
// global environment, the type map and both gates on the context.
type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program := ctx.Program()
	if program == nil {
		return ctx
	}
	ctx.EnsureSession()
	if hasSyntaxErrors(ctx) {
		ctx.Logf("skipping analysis: source did not parse")
		return ctx
	}

	analyzer := New(ctx.Interner)
	analyzer.SetLogger(ctx.SessionLogger())
	analyzer.SetMaxDepth(ctx.MaxDepth())

	ctx.AllOk = analyzer.Analyze(program)
	ctx.Env = analyzer.Env()
	ctx.TypeMap = analyzer.TypeMap

	errors := analyzer.Report(program)

	ctx.MainOk = analyzer.CheckMain()
	if !ctx.MainOk && mainRequired(ctx) {
		errors = append(errors, analyzer.MainError(program))
	}

	for _, err := range errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}
	ctx.Errors = append(ctx.Errors, errors...)

	ctx.Logf("analyzed %d declarations: all ok %v, main ok %v", len(program.Declarations), ctx.AllOk, ctx.MainOk)
	return ctx
}

func mainRequired(ctx *pipeline.PipelineContext) bool {
	if ctx.Config == nil {
		return true
	}
	return ctx.Config.MainRequired()
}

// A program recovered from syntax errors is missing declarations, so
// checking it would only report their absence.
func hasSyntaxErrors(ctx *pipeline.PipelineContext) bool {
	for _, err := range ctx.Errors {
		switch err.Code.Stage() {
		case "lexer", "parser":
			return true
		}
	}
	return false
}
