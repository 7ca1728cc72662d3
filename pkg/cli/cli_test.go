package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/liger/internal/config"
)

const goodSource = `type list = {head: int, tail: list};

fun length(l: list): int {
	var n: int = 0;
	while l != nil {
		n = n + 1;
		l = l.tail;
	}
	return n;
}

fun main(args: [[int]]): int {
	return length({head = 1, tail = nil});
}
`

const badSource = `fun main(args: [[int]]): int {
	var b: bool;
	b = 1 + true;
	return 0;
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Execute(args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersionAndHelp(t *testing.T) {
	code, out, _ := execute("version")
	if code != exitOK || out != "liger "+config.Version+"\n" {
		t.Errorf("version: %d %q", code, out)
	}
	code, out, _ = execute("help")
	if code != exitOK || !strings.Contains(out, "Usage: liger") {
		t.Errorf("help: %d %q", code, out)
	}
	if code, _, _ := execute(); code != exitUsage {
		t.Errorf("no arguments: exit %d", code)
	}
	if code, _, errOut := execute("frobnicate"); code != exitUsage || !strings.Contains(errOut, "Unknown command") {
		t.Errorf("unknown command: %d %q", code, errOut)
	}
}

func TestCheckPassAndFail(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.lig", goodSource)
	bad := writeFile(t, dir, "bad.lig", badSource)

	code, out, _ := execute("check", "--color", "never", good)
	if code != exitOK {
		t.Fatalf("good file failed:\n%s", out)
	}
	if !strings.Contains(out, good+": ok") {
		t.Errorf("output = %q", out)
	}

	code, out, _ = execute("check", "--color", "never", bad)
	if code != exitFailure {
		t.Fatalf("bad file passed:\n%s", out)
	}
	if !strings.Contains(out, bad+":3:") || !strings.Contains(out, "[A001] invalid operands to +: int and bool") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, bad+": FAIL") {
		t.Errorf("missing verdict in %q", out)
	}
}

func TestBareFilesMeanCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.lig", goodSource)
	if code, out, _ := execute(good); code != exitOK || !strings.Contains(out, "ok") {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestCheckKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"e.lig", "d.lig", "c.lig", "b.lig", "a.lig"} {
		paths = append(paths, writeFile(t, dir, name, goodSource))
	}
	code, out, _ := execute(append([]string{"check", "--color", "never"}, paths...)...)
	if code != exitOK {
		t.Fatalf("exit %d:\n%s", code, out)
	}
	last := -1
	for _, p := range paths {
		i := strings.Index(out, p+": ok")
		if i < last {
			t.Errorf("%s reported out of order", p)
		}
		last = i
	}
}

func TestCheckSkipsOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "notes.txt", "not liger")
	code, out, _ := execute("check", "--color", "never", txt)
	if code != exitOK || !strings.Contains(out, "skipped") {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestCheckDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lig", goodSource)
	writeFile(t, dir, "b.lig", badSource)
	writeFile(t, dir, "readme.md", "# docs")

	code, out, _ := execute("check", "--color", "never", dir)
	if code != exitFailure {
		t.Errorf("exit %d", code)
	}
	if strings.Contains(out, "readme.md") {
		t.Errorf("directories expand to sources only: %q", out)
	}
	if !strings.Contains(out, "a.lig: ok") || !strings.Contains(out, "b.lig: FAIL") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckMissingFile(t *testing.T) {
	code, _, errOut := execute("check", filepath.Join(t.TempDir(), "nope.lig"))
	if code != exitFailure || errOut == "" {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}

func TestCheckUsageErrors(t *testing.T) {
	tests := [][]string{
		{"check"},
		{"check", "--format", "xml", "a.lig"},
		{"check", "--color", "sometimes", "a.lig"},
		{"check", "--bogus", "a.lig"},
	}
	for _, args := range tests {
		if code, _, _ := execute(args...); code != exitUsage {
			t.Errorf("%v: exit %d, want %d", args, code, exitUsage)
		}
	}
}

func TestMainRequirement(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "lib.lig", "var x: int = 1;\n")

	code, out, _ := execute("check", "--color", "never", lib)
	if code != exitFailure || !strings.Contains(out, "[A003]") {
		t.Errorf("main is required by default: exit %d, %q", code, out)
	}

	code, out, _ = execute("check", "--no-main", "--color", "never", lib)
	if code != exitOK {
		t.Errorf("--no-main: exit %d, %q", code, out)
	}

	writeFile(t, dir, config.ConfigFileName, "require_main: false\n")
	code, out, _ = execute("check", "--color", "never", lib)
	if code != exitOK {
		t.Errorf("require_main: false: exit %d, %q", code, out)
	}
}

func TestConfigErrorFailsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.ConfigFileName, "liger_version: \">= 99.0\"\n")
	src := writeFile(t, dir, "main.lig", goodSource)

	code, out, _ := execute("check", "--color", "never", src)
	if code != exitFailure || !strings.Contains(out, "[C001]") {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestYAMLReport(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.lig", goodSource)
	bad := writeFile(t, dir, "bad.lig", badSource)
	txt := writeFile(t, dir, "x.txt", "")

	code, out, _ := execute("check", "--format", "yaml", "--ast", good, bad, txt)
	if code != exitFailure {
		t.Errorf("exit %d", code)
	}

	var rep yamlReport
	if err := yaml.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("report is not YAML: %v\n%s", err, out)
	}
	if rep.Passed || rep.Version != config.Version || len(rep.Files) != 3 {
		t.Fatalf("report = %+v", rep)
	}

	g := rep.Files[0]
	if g.Status != "pass" || !g.AllOk || !g.MainOk || g.Session == "" {
		t.Errorf("good file = %+v", g)
	}
	if len(g.Declarations) != 3 || g.Declarations[1].Name != "length" || g.Declarations[1].Status != "ok" {
		t.Errorf("declarations = %+v", g.Declarations)
	}
	if !strings.HasPrefix(g.Tree, "(decls") {
		t.Errorf("tree = %q", g.Tree)
	}

	b := rep.Files[1]
	if b.Status != "fail" || len(b.Errors) != 1 {
		t.Fatalf("bad file = %+v", b)
	}
	if e := b.Errors[0]; e.Code != "A001" || e.Stage != "analyzer" || e.Line != 3 {
		t.Errorf("error = %+v", e)
	}

	if s := rep.Files[2]; s.Status != "skipped" {
		t.Errorf("txt file = %+v", s)
	}
}

func TestConfigFormatDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.ConfigFileName, "format: yaml\n")
	src := writeFile(t, dir, "main.lig", goodSource)

	_, out, _ := execute("check", src)
	if !strings.HasPrefix(out, "version:") {
		t.Errorf("liger.yaml format should select YAML, got %q", out)
	}
}

func TestDumpEnv(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.lig", goodSource)
	_, out, _ := execute("check", "--env", "--color", "never", src)
	if !strings.Contains(out, "fun(length) |-> ((l : list) -> int, <fun_env>, <fun_body>)") {
		t.Errorf("environment dump missing from %q", out)
	}
	if !strings.Contains(out, "fun(print) |-> ((what : [int]) -> void, NULL, NULL)") {
		t.Errorf("builtins missing from %q", out)
	}
}

func TestVerboseTracesToStderr(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.lig", goodSource)
	_, _, errOut := execute("check", "--verbose", src)
	if !strings.Contains(errOut, "analyzed 3 declarations") {
		t.Errorf("stderr = %q", errOut)
	}
	_, _, errOut = execute("check", src)
	if errOut != "" {
		t.Errorf("quiet run wrote to stderr: %q", errOut)
	}
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	if !colorEnabled(config.ColorAlways, &buf) {
		t.Error("always")
	}
	if colorEnabled(config.ColorNever, os.Stdout) {
		t.Error("never")
	}
	if colorEnabled(config.ColorAuto, &buf) {
		t.Error("a buffer is not a terminal")
	}
	t.Setenv("NO_COLOR", "1")
	if colorEnabled(config.ColorAuto, os.Stdout) {
		t.Error("NO_COLOR must win in auto mode")
	}
}

func TestColoredOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.lig", goodSource)
	_, out, _ := execute("check", "--color", "always", src)
	if !strings.Contains(out, ansiGreen+"ok"+ansiReset) {
		t.Errorf("output = %q", out)
	}
}

// --- fmt ---

func TestFmt(t *testing.T) {
	dir := t.TempDir()
	messy := "var x:int=((1+2));\nfun main(args:[[int]]):int{return x;}\n"
	want := "var x: int = 1 + 2;\n\nfun main(args: [[int]]): int {\n    return x;\n}\n"
	path := writeFile(t, dir, "m.lig", messy)

	code, out, _ := execute("fmt", path)
	if code != exitOK || out != want {
		t.Fatalf("fmt: exit %d\n%s", code, out)
	}

	code, out, _ = execute("fmt", "-check", path)
	if code != exitFailure || strings.TrimSpace(out) != path {
		t.Errorf("fmt -check: exit %d, %q", code, out)
	}

	if code, _, _ := execute("fmt", "-w", path); code != exitOK {
		t.Fatalf("fmt -w: exit %d", code)
	}
	data, _ := os.ReadFile(path)
	if string(data) != want {
		t.Errorf("rewritten file:\n%s", data)
	}

	if code, out, _ := execute("fmt", "-check", path); code != exitOK || out != "" {
		t.Errorf("formatted file should pass -check: exit %d, %q", code, out)
	}
}

func TestFmtRejectsSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.lig", "var x: int = ;\n")
	code, out, errOut := execute("fmt", "-w", path)
	if code != exitFailure || out != "" || !strings.Contains(errOut, "[P00") {
		t.Errorf("exit %d, stdout %q, stderr %q", code, out, errOut)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "var x: int = ;\n" {
		t.Errorf("broken file must not be rewritten")
	}
}

// --- repl ---

func scripted(lines ...string) lineReader {
	return func(string) (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"var x: int = 1;", false},
		{"var x: int = 1", true},
		{"fun f(): int {", true},
		{"fun f(): int {\n  return 1;\n}", false},
		{"var x: int = ;", false},
		{"/* still open", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestReplSession(t *testing.T) {
	var out bytes.Buffer
	var history []string
	code := runRepl(scripted(
		"var x: int = 1;",
		"fun inc(a: int): int {",
		"  return a + x;",
		"}",
		"var x: bool;",
		"var y: bool = inc(2);",
		"",
		":list",
		":main",
		":quit",
		"var never: int;",
	), &out, func(s string) { history = append(history, s) })

	if code != exitOK {
		t.Errorf("exit %d", code)
	}
	got := out.String()
	for _, want := range []string{
		"var x : int  ok",
		"fun inc : (a : int) -> int  ok",
		"var x : bool  conflict",
		"1:1: [A002]",
		"[A001] cannot initialize y of type bool with int",
		"var y : bool  error",
		"discarded",
		"var x: int = 1;\n\nfun inc(a: int): int {\n    return a + x;\n}\n",
		"main missing or mistyped",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "never") {
		t.Errorf("input after :quit must not be read")
	}
	if len(history) != 7 || history[1] != "fun inc(a: int): int {   return a + x; }" {
		t.Errorf("history = %q", history)
	}
}

func TestReplSyntaxErrorAndReset(t *testing.T) {
	var out bytes.Buffer
	runRepl(scripted(
		"var x: int = 1 2;",
		"var x: int;",
		":reset",
		"var x: bool;",
		":bogus",
	), &out, nil)
	got := out.String()
	for _, want := range []string{"[P002]", "var x : int  ok", "cleared", "var x : bool  ok", "unknown command"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestReplReadsPipedInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := strings.NewReader("fun main(args: [[int]]): int {\n  return 0;\n}\n:main\n")
	if code := Execute([]string{"repl"}, in, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "main ok") {
		t.Errorf("output = %q", stdout.String())
	}
}

// --- watch ---

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRechecksOnSave(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.lig", goodSource)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stdout, stderr syncBuffer
	ready := make(chan struct{})
	done := make(chan int, 1)
	go func() {
		done <- watch(ctx, checkOptions{color: config.ColorNever}, []string{dir}, &stdout, &stderr, func() { close(ready) })
	}()

	select {
	case <-ready:
	case code := <-done:
		t.Skipf("watcher unavailable (exit %d): %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "main.lig: ok") {
		t.Fatalf("initial check missing: %q", stdout.String())
	}

	if err := os.WriteFile(src, []byte(badSource), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(stdout.String(), "main.lig: FAIL") {
		if time.Now().After(deadline) {
			t.Fatalf("no re-check after save:\n%s", stdout.String())
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if code := <-done; code != exitOK {
		t.Errorf("exit %d", code)
	}
}

func TestWatchSet(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	file := writeFile(t, dir, "one.lig", "")
	other := writeFile(t, dir, "two.lig", "")

	ws, err := newWatchSet([]string{sub, file})
	if err != nil {
		t.Fatal(err)
	}
	if len(ws.watchDirs()) != 2 {
		t.Errorf("dirs = %v", ws.watchDirs())
	}
	if !ws.wants(file) || ws.wants(other) || !ws.wants(filepath.Join(sub, "x.lig")) {
		t.Errorf("wants: file %v, other %v, sub %v", ws.wants(file), ws.wants(other), ws.wants(filepath.Join(sub, "x.lig")))
	}
}

func TestPumpErrorsStopsWithWatch(t *testing.T) {
	var stderr syncBuffer
	errs := make(chan error)
	stop := make(chan struct{})
	wait := pumpErrors(errs, &stderr, stop)

	errs <- errors.New("queue overflow")
	close(stop)
	wait()

	if got := stderr.String(); got != "watch error: queue overflow\n" {
		t.Errorf("stderr = %q", got)
	}
	select {
	case errs <- errors.New("late"):
		t.Error("errors are still drained after stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPumpErrorsEndsOnClosedChannel(t *testing.T) {
	errs := make(chan error)
	close(errs)
	done := make(chan struct{})
	go func() {
		pumpErrors(errs, io.Discard, make(chan struct{}))()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pump kept running after its channel closed")
	}
}

func TestCheckFilesStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.lig", goodSource),
		writeFile(t, dir, "b.lig", goodSource),
	}
	c := newChecker(checkOptions{}, io.Discard)

	results, err := c.checkFiles(context.Background(), paths)
	if err != nil || len(results) != 2 || !results[0].passed() || !results[1].passed() {
		t.Fatalf("uncancelled run: %v, %+v", err, results)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err = c.checkFiles(ctx, paths)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	for _, r := range results {
		if r == nil || r.passed() || !errors.Is(r.failure, context.Canceled) {
			t.Errorf("result = %+v, want a cancelled failure", r)
		}
	}
}
