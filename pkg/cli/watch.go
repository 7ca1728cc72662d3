package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/funvibe/liger/internal/config"
	"github.com/funvibe/liger/internal/watcher"
)

const watchDebounce = 150 * time.Millisecond

func handleWatch(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts checkOptions
	opts.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: liger watch [flags] <file|dir>...")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(ctx, opts, fs.Args(), stdout, stderr, nil)
}

// watchSet decides which changed paths belong to the watched arguments:
// anything inside a watched directory, or one of the named files.
type watchSet struct {
	dirs  map[string]bool
	files map[string]bool
}

func newWatchSet(args []string) (*watchSet, error) {
	ws := &watchSet{dirs: make(map[string]bool), files: make(map[string]bool)}
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			ws.dirs[abs] = true
		} else {
			ws.files[abs] = true
		}
	}
	return ws, nil
}

// watchDirs are the directories to subscribe to; fsnotify watches
// directories more reliably than files that editors replace on save.
func (ws *watchSet) watchDirs() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for d := range ws.dirs {
		add(d)
	}
	for f := range ws.files {
		add(filepath.Dir(f))
	}
	return out
}

func (ws *watchSet) wants(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return ws.files[abs] || ws.dirs[filepath.Dir(abs)]
}

// watch checks args once, then again for every batch of saved sources,
// until ctx is done. ready, if set, is called once the watcher is armed.
func watch(ctx context.Context, opts checkOptions, args []string, stdout, stderr io.Writer, ready func()) int {
	ws, err := newWatchSet(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitFailure
	}
	paths, err := expandPaths(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitFailure
	}

	w, err := watcher.New(config.SourceFileExtensions...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: starting watcher: %s\n", err)
		return exitFailure
	}
	defer w.Close()
	for _, dir := range ws.watchDirs() {
		if err := w.Add(dir); err != nil {
			fmt.Fprintf(stderr, "Error: watching %s: %s\n", dir, err)
			return exitFailure
		}
	}

	run := func(paths []string) {
		c := newChecker(opts, stderr)
		results, err := c.checkFiles(ctx, paths)
		if err != nil {
			return // interrupted
		}
		if err := newReporter(stdout, opts).write(results); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
		}
	}
	run(paths)

	stop := make(chan struct{})
	wait := pumpErrors(w.Errors(), stderr, stop)
	defer func() {
		close(stop)
		wait()
	}()

	watched := len(w.WatchList())
	fmt.Fprintf(stderr, "Watching %d director%s for changes. Press Ctrl+C to stop.\n", watched, plural(watched, "y", "ies"))
	if ready != nil {
		ready()
	}

	watcher.Debounce(ctx, w.Events(), watchDebounce, func(changed []string) {
		var batch []string
		for _, p := range changed {
			if !ws.wants(p) {
				continue
			}
			if _, err := os.Stat(p); err != nil {
				continue // removed or renamed away
			}
			batch = append(batch, p)
		}
		if len(batch) == 0 {
			return
		}
		fmt.Fprintf(stdout, "--- %s: %d changed ---\n", time.Now().Format("15:04:05"), len(batch))
		run(batch)
	})
	return exitOK
}

// pumpErrors reports watcher errors until stop is closed or errs is. The
// returned func blocks until the pump has exited.
func pumpErrors(errs <-chan error, stderr io.Writer, stop <-chan struct{}) (wait func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case err, ok := <-errs:
				if !ok {
					return
				}
				fmt.Fprintf(stderr, "watch error: %s\n", err)
			case <-stop:
				return
			}
		}
	}()
	return wg.Wait
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
