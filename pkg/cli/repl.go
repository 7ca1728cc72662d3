package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/funvibe/liger/internal/analyzer"
	"github.com/funvibe/liger/internal/config"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/lexer"
	"github.com/funvibe/liger/internal/parser"
	"github.com/funvibe/liger/internal/pipeline"
	"github.com/funvibe/liger/internal/prettyprinter"
	"github.com/funvibe/liger/internal/token"
	"github.com/funvibe/liger/internal/typesystem"
)

const (
	promptMain  = "liger> "
	promptCont  = "  ...> "
	historyFile = ".liger_history"
)

const replHelp = `Enter declarations; each one is checked against everything accepted so far.
  :list    print the accepted declarations
  :env     print the global environment
  :ast     print the annotated tree
  :main    report whether main is defined with the right type
  :reset   forget all declarations
  :quit    leave
`

// replSession accumulates the declarations that checked cleanly.
type replSession struct {
	out    io.Writer
	source string // accepted declarations, newline-terminated
	ndecls int
	last   *pipeline.PipelineContext
}

func newReplSession(out io.Writer) *replSession {
	return &replSession{out: out}
}

func replConfig() *config.Config {
	cfg := config.Default()
	requireMain := false
	cfg.RequireMain = &requireMain
	return cfg
}

func parseOnly(src string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(src)
	ctx.Config = replConfig()
	return pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
}

func checkAll(src string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(src)
	ctx.Config = replConfig()
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
	).Run(ctx)
}

// incomplete reports whether src stops in the middle of a declaration, so
// more lines should be read before checking it.
func incomplete(src string) bool {
	for _, err := range parseOnly(src).Errors {
		if err.Token.Type == token.EOF {
			return true
		}
		if err.Code == diagnostics.ErrL003 && err.Token.Lexeme == "/*" {
			return true
		}
	}
	return false
}

// eval handles one chunk of input and reports whether the session is over.
func (s *replSession) eval(chunk string) bool {
	trimmed := strings.TrimSpace(chunk)
	if strings.HasPrefix(trimmed, ":") {
		return s.command(strings.ToLower(trimmed))
	}

	if ctx := parseOnly(chunk); len(ctx.Errors) > 0 {
		for _, e := range ctx.Errors {
			s.printError(e, 0)
		}
		return false
	}

	candidate := s.source + chunk + "\n"
	ctx := checkAll(candidate)
	prog := ctx.Program()
	offset := strings.Count(s.source, "\n")

	// Every accepted declaration must stay ok, not only the new ones.
	fresh := prog.Declarations[s.ndecls:]
	for _, e := range ctx.Errors {
		s.printError(e, offset)
	}
	for _, d := range fresh {
		fmt.Fprintf(s.out, "%s %s : %s  %s\n", declKind(d), d.Name, typesystem.Format(d.Type), declStatus(ctx.TypeMap[d]))
	}
	if !ctx.AllOk {
		fmt.Fprintln(s.out, "discarded")
		return false
	}

	s.source = candidate
	s.ndecls = len(prog.Declarations)
	s.last = ctx
	return false
}

// printError reports e relative to the current input; errors in earlier
// input keep a caret before their absolute line.
func (s *replSession) printError(e *diagnostics.DiagnosticError, lineOffset int) {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Summary()
	}
	loc := fmt.Sprintf("%d:%d", e.Token.Line-lineOffset, e.Token.Column)
	if e.Token.Line <= lineOffset {
		loc = fmt.Sprintf("^%d:%d", e.Token.Line, e.Token.Column)
	}
	fmt.Fprintf(s.out, "%s: [%s] %s\n", loc, e.Code, msg)
}

func (s *replSession) command(cmd string) bool {
	switch cmd {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprint(s.out, replHelp)
	case ":reset":
		*s = replSession{out: s.out}
		fmt.Fprintln(s.out, "cleared")
	case ":list":
		if s.last != nil {
			fmt.Fprint(s.out, prettyprinter.PrintCode(s.last.Program()))
		}
	case ":env":
		if s.last != nil {
			_ = s.last.Env.Dump(s.out)
		}
	case ":ast":
		if s.last != nil {
			fmt.Fprintln(s.out, prettyprinter.PrintTree(s.last.Program(), s.last.TypeMap))
		}
	case ":main":
		if s.last != nil && s.last.MainOk {
			fmt.Fprintln(s.out, "main ok")
		} else {
			fmt.Fprintln(s.out, "main missing or mistyped")
		}
	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for a list.")
	}
	return false
}

// lineReader prompts for one line. It returns io.EOF at end of input.
type lineReader func(prompt string) (string, error)

// readChunk reads lines until they form a complete declaration or command.
func readChunk(read lineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := read(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			if b.Len() > 0 && errors.Is(err, io.EOF) {
				return b.String(), true
			}
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		trimmed := strings.TrimSpace(src)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") || !incomplete(src) {
			return src, true
		}
	}
}

func runRepl(read lineReader, out io.Writer, remember func(string)) int {
	s := newReplSession(out)
	for {
		chunk, ok := readChunk(read)
		if !ok {
			return exitOK
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if remember != nil {
			remember(strings.ReplaceAll(chunk, "\n", " "))
		}
		if s.eval(chunk) {
			return exitOK
		}
	}
}

func handleRepl(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(stderr, "Usage: liger repl")
		return exitUsage
	}

	if f, ok := stdin.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		sc := bufio.NewScanner(stdin)
		read := func(string) (string, error) {
			if sc.Scan() {
				return sc.Text(), nil
			}
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return runRepl(read, stdout, nil)
	}

	fmt.Fprintf(stdout, "liger %s. Type :help for commands.\n", config.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	code := runRepl(ln.Prompt, stdout, ln.AppendHistory)
	fmt.Fprintln(stdout)
	return code
}
