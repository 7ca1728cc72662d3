package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestFunctional checks every testdata/check/*.lig file and compares the
// report with the .want file next to it. Paths in the report are reduced
// to base names.
func TestFunctional(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "check", "*.lig"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Skip("No test files found")
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		t.Run(name, func(t *testing.T) {
			wantBytes, err := os.ReadFile(strings.TrimSuffix(file, ".lig") + ".want")
			if err != nil {
				t.Fatalf("Failed to read .want file: %v", err)
			}
			want := strings.TrimSpace(string(wantBytes))

			var stdout, stderr bytes.Buffer
			code := Execute([]string{"check", "--color", "never", file}, nil, &stdout, &stderr)

			dir := filepath.Dir(file) + string(filepath.Separator)
			got := strings.TrimSpace(strings.ReplaceAll(stdout.String(), dir, ""))
			if got != want {
				t.Errorf("Output mismatch\ngot:\n%s\nwant:\n%s", got, want)
			}

			wantCode := exitOK
			if strings.HasSuffix(want, "FAIL") {
				wantCode = exitFailure
			}
			if code != wantCode {
				t.Errorf("exit %d, want %d (stderr: %s)", code, wantCode, stderr.String())
			}
		})
	}
}
