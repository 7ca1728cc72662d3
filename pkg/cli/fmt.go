package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/lexer"
	"github.com/funvibe/liger/internal/parser"
	"github.com/funvibe/liger/internal/pipeline"
	"github.com/funvibe/liger/internal/prettyprinter"
)

// formatSource reprints src in canonical layout. Sources with syntax errors
// are not formatted.
func formatSource(src, path string) (string, []*diagnostics.DiagnosticError) {
	ctx := pipeline.NewPipelineContext(src)
	ctx.FilePath = path
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if len(ctx.Errors) > 0 {
		return "", ctx.Errors
	}
	return prettyprinter.PrintCode(ctx.Program()), nil
}

func handleFmt(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	write := fs.Bool("w", false, "write result to the source file instead of stdout")
	check := fs.Bool("check", false, "list files whose layout differs; exit 1 if any")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: liger fmt [-w] [-check] <file>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	status := exitOK
	for _, path := range fs.Args() {
		if !isSourceFile(path) {
			fmt.Fprintf(stderr, "%s: skipped, not a source file\n", path)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			status = exitFailure
			continue
		}
		src := string(data)
		out, errs := formatSource(src, path)
		if errs != nil {
			for _, e := range errs {
				fmt.Fprintln(stderr, e.Error())
			}
			status = exitFailure
			continue
		}

		switch {
		case *check:
			if out != src {
				fmt.Fprintln(stdout, path)
				status = exitFailure
			}
		case *write:
			if out == src {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %s\n", err)
				status = exitFailure
				continue
			}
			if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
				fmt.Fprintf(stderr, "Error writing %s: %s\n", path, err)
				status = exitFailure
			}
		default:
			fmt.Fprint(stdout, out)
		}
	}
	return status
}
