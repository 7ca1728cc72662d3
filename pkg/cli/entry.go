package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/funvibe/liger/internal/config"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

const usage = `Usage: liger <command> [arguments]

Commands:
  check [flags] <file|dir>...   type-check Liger sources
  watch [flags] <file|dir>...   re-check sources whenever they change
  fmt [-w] [-check] <file>...   print sources in canonical layout
  repl                          check declarations interactively
  version                       print the toolchain version
  help                          show this message

Run 'liger check -h' for the check flags. A bare list of .lig files
is the same as 'liger check'.
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// Execute runs one command line and returns the process exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "check":
		return handleCheck(rest, stdout, stderr)
	case "watch":
		return handleWatch(rest, stdout, stderr)
	case "fmt":
		return handleFmt(rest, stdout, stderr)
	case "repl":
		return handleRepl(rest, stdin, stdout, stderr)
	case "version", "-v", "-version", "--version":
		fmt.Fprintln(stdout, "liger "+config.Version)
		return exitOK
	case "help", "-h", "-help", "--help":
		printUsage(stdout)
		return exitOK
	}

	if isSourceFile(cmd) || strings.HasPrefix(cmd, "-") {
		return handleCheck(args, stdout, stderr)
	}
	fmt.Fprintf(stderr, "Unknown command: %s\n\n", cmd)
	printUsage(stderr)
	return exitUsage
}

func Run() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			// Print stack trace for debugging
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(exitFailure)
		}
	}()

	os.Exit(Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
