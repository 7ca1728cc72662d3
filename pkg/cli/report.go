package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/config"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/prettyprinter"
	"github.com/funvibe/liger/internal/typesystem"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

// colorEnabled resolves a color mode for w. In auto mode color is used
// only on a terminal, and never when NO_COLOR is set or TERM is dumb.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type reporter struct {
	out  io.Writer
	opts checkOptions
}

func newReporter(out io.Writer, opts checkOptions) *reporter {
	return &reporter{out: out, opts: opts}
}

// settings picks format and color from the flags, falling back to the
// configuration of the first checked file.
func (r *reporter) settings(results []*fileResult) (format, color string) {
	format, color = r.opts.format, r.opts.color
	for _, res := range results {
		if res.cfg == nil {
			continue
		}
		if format == "" {
			format = res.cfg.Format
		}
		if color == "" {
			color = res.cfg.Color
		}
		break
	}
	if format == "" {
		format = config.FormatText
	}
	return format, color
}

func (r *reporter) write(results []*fileResult) error {
	format, color := r.settings(results)
	if format == config.FormatYAML {
		return r.writeYAML(results)
	}
	r.writeText(results, colorEnabled(color, r.out))
	return nil
}

func (r *reporter) writeText(results []*fileResult, color bool) {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}

	for _, res := range results {
		switch {
		case res.skipped:
			fmt.Fprintf(r.out, "%s: %s\n", res.path, paint(ansiYellow, "skipped, not a "+config.SourceFileExt+" file"))
			continue
		case res.failure != nil:
			fmt.Fprintf(r.out, "%s: %s\n", res.path, paint(ansiRed, res.failure.Error()))
			continue
		}

		for _, err := range sortedErrors(res.ctx.Errors) {
			loc := fmt.Sprintf("%s:%d:%d", res.path, err.Token.Line, err.Token.Column)
			msg := err.Message
			if msg == "" {
				msg = err.Code.Summary()
			}
			fmt.Fprintf(r.out, "%s: %s %s\n", loc, paint(ansiRed, "["+string(err.Code)+"]"), msg)
		}
		if r.opts.dumpAST && res.ctx.Program() != nil {
			fmt.Fprintln(r.out, prettyprinter.PrintTree(res.ctx.Program(), res.ctx.TypeMap))
		}
		if r.opts.dumpEnv && res.ctx.Env != nil {
			_ = res.ctx.Env.Dump(r.out)
		}

		if res.passed() {
			fmt.Fprintf(r.out, "%s: %s\n", res.path, paint(ansiGreen, "ok"))
		} else {
			fmt.Fprintf(r.out, "%s: %s\n", res.path, paint(ansiBold+ansiRed, "FAIL"))
		}
	}
}

func sortedErrors(errs []*diagnostics.DiagnosticError) []*diagnostics.DiagnosticError {
	out := make([]*diagnostics.DiagnosticError, len(errs))
	copy(out, errs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Token, out[j].Token
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// --- YAML report ---

type yamlReport struct {
	Version string       `yaml:"version"`
	Passed  bool         `yaml:"passed"`
	Files   []fileReport `yaml:"files"`
}

type fileReport struct {
	File         string        `yaml:"file"`
	Status       string        `yaml:"status"`
	Session      string        `yaml:"session,omitempty"`
	Reason       string        `yaml:"reason,omitempty"`
	AllOk        bool          `yaml:"all_ok"`
	MainOk       bool          `yaml:"main_ok"`
	Declarations []declReport  `yaml:"declarations,omitempty"`
	Errors       []errorReport `yaml:"errors,omitempty"`
	Tree         string        `yaml:"tree,omitempty"`
	Env          string        `yaml:"env,omitempty"`
}

type declReport struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Type   string `yaml:"type"`
	Status string `yaml:"status"`
	Line   int    `yaml:"line"`
}

type errorReport struct {
	Code    string `yaml:"code"`
	Stage   string `yaml:"stage"`
	Line    int    `yaml:"line"`
	Column  int    `yaml:"column"`
	Message string `yaml:"message"`
}

func (r *reporter) writeYAML(results []*fileResult) error {
	rep := yamlReport{Version: config.Version, Passed: true}
	for _, res := range results {
		fr := r.fileReport(res)
		if !res.passed() {
			rep.Passed = false
		}
		rep.Files = append(rep.Files, fr)
	}
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

func (r *reporter) fileReport(res *fileResult) fileReport {
	fr := fileReport{File: res.path}
	switch {
	case res.skipped:
		fr.Status = "skipped"
		fr.Reason = "not a " + config.SourceFileExt + " file"
		return fr
	case res.failure != nil:
		fr.Status = "fail"
		var d *diagnostics.DiagnosticError
		if errors.As(res.failure, &d) {
			fr.Errors = append(fr.Errors, toErrorReport(d))
		} else {
			fr.Reason = res.failure.Error()
		}
		return fr
	}

	ctx := res.ctx
	fr.Status = "fail"
	if res.passed() {
		fr.Status = "pass"
	}
	fr.Session = ctx.SessionID
	fr.AllOk, fr.MainOk = ctx.AllOk, ctx.MainOk
	if prog := ctx.Program(); prog != nil {
		fr.Declarations = declReports(prog, ctx.TypeMap)
		if r.opts.dumpAST {
			fr.Tree = prettyprinter.PrintTree(prog, ctx.TypeMap)
		}
	}
	if r.opts.dumpEnv && ctx.Env != nil {
		var buf bytes.Buffer
		_ = ctx.Env.Dump(&buf)
		fr.Env = buf.String()
	}
	for _, err := range sortedErrors(ctx.Errors) {
		fr.Errors = append(fr.Errors, toErrorReport(err))
	}
	return fr
}

func toErrorReport(err *diagnostics.DiagnosticError) errorReport {
	msg := err.Message
	if msg == "" {
		msg = err.Code.Summary()
	}
	return errorReport{
		Code:    string(err.Code),
		Stage:   err.Code.Stage(),
		Line:    err.Token.Line,
		Column:  err.Token.Column,
		Message: msg,
	}
}

func declReports(prog *ast.Program, types map[ast.Node]typesystem.Type) []declReport {
	out := make([]declReport, 0, len(prog.Declarations))
	for _, d := range prog.Declarations {
		out = append(out, declReport{
			Name:   d.Name.String(),
			Kind:   declKind(d),
			Type:   typesystem.Format(d.Type),
			Status: declStatus(types[d]),
			Line:   d.Token.Line,
		})
	}
	return out
}

func declKind(d *ast.Declaration) string {
	switch {
	case d.IsFunction():
		return "fun"
	case d.IsTypeName():
		return "type"
	}
	return "var"
}

func declStatus(t typesystem.Type) string {
	switch {
	case typesystem.IsOk(t):
		return "ok"
	case typesystem.IsConflict(t):
		return "conflict"
	}
	return "error"
}
