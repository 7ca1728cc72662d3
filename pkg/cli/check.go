package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/liger/internal/analyzer"
	"github.com/funvibe/liger/internal/config"
	"github.com/funvibe/liger/internal/diagnostics"
	"github.com/funvibe/liger/internal/lexer"
	"github.com/funvibe/liger/internal/parser"
	"github.com/funvibe/liger/internal/pipeline"
	"github.com/funvibe/liger/internal/token"
)

// checkOptions are the flags shared by check and watch. Zero values leave
// the liger.yaml setting alone.
type checkOptions struct {
	dumpAST  bool
	dumpEnv  bool
	verbose  bool
	noMain   bool
	format   string
	color    string
	maxDepth int
}

func (o *checkOptions) register(fs *flag.FlagSet) {
	fs.BoolVar(&o.dumpAST, "ast", false, "print the annotated syntax tree")
	fs.BoolVar(&o.dumpEnv, "env", false, "print the global environment")
	fs.BoolVar(&o.verbose, "verbose", false, "trace checker decisions to stderr")
	fs.BoolVar(&o.noMain, "no-main", false, "do not require fun main(args: [[int]]): int")
	fs.StringVar(&o.format, "format", "", "report format: text or yaml")
	fs.StringVar(&o.color, "color", "", "colorize output: auto, always or never")
	fs.IntVar(&o.maxDepth, "max-depth", 0, "nesting limit for parser and checker")
}

func (o *checkOptions) validate() error {
	switch o.format {
	case "", config.FormatText, config.FormatYAML:
	default:
		return fmt.Errorf("--format must be text or yaml, got %q", o.format)
	}
	switch o.color {
	case "", config.ColorAuto, config.ColorAlways, config.ColorNever:
	default:
		return fmt.Errorf("--color must be auto, always or never, got %q", o.color)
	}
	if o.maxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative")
	}
	return nil
}

// apply returns a copy of cfg with the command-line overrides.
func (o *checkOptions) apply(cfg *config.Config) *config.Config {
	out := *cfg
	if o.verbose {
		out.Verbose = true
	}
	if o.noMain {
		requireMain := false
		out.RequireMain = &requireMain
	}
	if o.format != "" {
		out.Format = o.format
	}
	if o.color != "" {
		out.Color = o.color
	}
	if o.maxDepth > 0 {
		out.MaxDepth = o.maxDepth
	}
	return &out
}

// fileResult is the outcome of checking one path.
type fileResult struct {
	path    string
	skipped bool
	failure error // the file could not be read or configured
	cfg     *config.Config
	ctx     *pipeline.PipelineContext
}

func (r *fileResult) passed() bool {
	if r.skipped {
		return true
	}
	return r.failure == nil && r.ctx != nil && r.ctx.Ok()
}

// checker runs one compilation session per file. Config files are loaded
// once per directory.
type checker struct {
	opts  checkOptions
	trace *log.Logger
	quiet *log.Logger

	mu      sync.Mutex
	configs map[string]configEntry
}

type configEntry struct {
	cfg *config.Config
	err error
}

func newChecker(opts checkOptions, stderr io.Writer) *checker {
	return &checker{
		opts:    opts,
		trace:   log.New(stderr, "liger: ", 0),
		quiet:   log.New(io.Discard, "", 0),
		configs: make(map[string]configEntry),
	}
}

// loggerFor traces when the file's configuration asks for it.
func (c *checker) loggerFor(cfg *config.Config) *log.Logger {
	if cfg != nil && cfg.Verbose {
		return c.trace
	}
	return c.quiet
}

func (c *checker) configFor(path string) (*config.Config, error) {
	dir := filepath.Dir(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.configs[dir]; ok {
		return e.cfg, e.err
	}
	cfg, cfgPath, err := config.LoadNearest(dir)
	if err != nil {
		err = fmt.Errorf("loading configuration: %w", err)
	} else {
		cfg = c.opts.apply(cfg)
		if cfgPath != "" {
			c.loggerFor(cfg).Printf("%s: using %s", path, cfgPath)
		}
	}
	c.configs[dir] = configEntry{cfg: cfg, err: err}
	return cfg, err
}

// checkFile runs lexer, parser and analyzer over one source file.
func (c *checker) checkFile(path string) *fileResult {
	res := &fileResult{path: path}
	if !isSourceFile(path) {
		res.skipped = true
		return res
	}

	cfg, err := c.configFor(path)
	if err != nil {
		d := configError(err)
		d.File = path
		res.failure = d
		return res
	}
	res.cfg = cfg

	src, err := os.ReadFile(path)
	if err != nil {
		res.failure = fmt.Errorf("reading source: %w", err)
		return res
	}
	res.ctx = c.checkSource(string(src), path, cfg)
	return res
}

func (c *checker) checkSource(src, path string, cfg *config.Config) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(src)
	ctx.FilePath = path
	ctx.Config = cfg
	ctx.Logger = c.loggerFor(cfg)

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
	)
	return p.Run(ctx)
}

// checkFiles checks paths concurrently and returns results in input order.
// Once ctx is done the remaining files are not checked: their results
// carry the context error, which is also returned.
func (c *checker) checkFiles(ctx context.Context, paths []string) ([]*fileResult, error) {
	results := make([]*fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &fileResult{path: path, failure: err}
				return err
			}
			results[i] = c.checkFile(path)
			return nil
		})
	}
	return results, g.Wait()
}

// expandPaths replaces directories by the Liger sources directly inside
// them. Plain files are kept whatever their extension so that the report
// can say they were skipped.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isSourceFile(entry.Name()) {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}

func configError(err error) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrC001, token.Token{}, "%v", err)
}

func handleCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts checkOptions
	opts.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: liger check [flags] <file|dir>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if err := opts.validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	paths, err := expandPaths(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitFailure
	}
	if len(paths) == 0 {
		fmt.Fprintln(stdout, "No source files found")
		return exitOK
	}

	c := newChecker(opts, stderr)
	results, err := c.checkFiles(context.Background(), paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitFailure
	}

	rep := newReporter(stdout, opts)
	if err := rep.write(results); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitFailure
	}
	for _, r := range results {
		if !r.passed() {
			return exitFailure
		}
	}
	return exitOK
}
