// ABOUTME: Tests for directory walking, file discovery, and concurrent audits.
// ABOUTME: Uses temp directories with planted source files.

package scanner

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/audit"
	"github.com/arcqubit/pqcaudit/internal/types"
)

func newTestScanner() *Scanner {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(audit.NewEngine(logger), logger)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestScanPathSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hash.py", "import hashlib\nh = hashlib.md5(data)\n")

	summary, err := newTestScanner().ScanPath(context.Background(), path)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if summary.FilesScanned != 1 {
		t.Fatalf("FilesScanned = %d, want 1", summary.FilesScanned)
	}
	if summary.TotalFindings != 1 {
		t.Errorf("TotalFindings = %d, want 1", summary.TotalFindings)
	}
	if summary.Files[0].Language != types.Python {
		t.Errorf("Language = %v, want Python", summary.Files[0].Language)
	}
}

func TestScanPathDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "const h = crypto.createHash('md5');\n")
	writeFile(t, dir, "sub/b.rs", "let key = Rsa::generate(1024);\n")
	writeFile(t, dir, "README.md", "md5 mentioned here should not count\n")

	summary, err := newTestScanner().ScanPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if summary.FilesScanned != 2 {
		t.Fatalf("FilesScanned = %d, want 2", summary.FilesScanned)
	}
	if summary.TotalFindings != 2 {
		t.Errorf("TotalFindings = %d, want 2", summary.TotalFindings)
	}
}

func TestScanPathSkipsDependencyDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "const x = 1;\n")
	writeFile(t, dir, "node_modules/dep/index.js", "crypto.createHash('md5')\n")
	writeFile(t, dir, ".git/hooks/pre-commit.py", "import md5\n")
	writeFile(t, dir, "target/debug/build.rs", "let h = Md5::new();\n")
	writeFile(t, dir, "vendor/lib/mod.go", "h := md5.New()\n")

	summary, err := newTestScanner().ScanPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if summary.FilesScanned != 1 {
		t.Fatalf("FilesScanned = %d, want 1", summary.FilesScanned)
	}
	if summary.TotalFindings != 0 {
		t.Errorf("TotalFindings = %d, want 0", summary.TotalFindings)
	}
}

func TestScanPathExtraExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "x = 1\n")
	writeFile(t, dir, "generated/gen.py", "h = md5(x)\n")

	s := newTestScanner()
	s.Exclude("generated")

	summary, err := s.ScanPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if summary.FilesScanned != 1 {
		t.Fatalf("FilesScanned = %d, want 1", summary.FilesScanned)
	}
	if summary.TotalFindings != 0 {
		t.Errorf("TotalFindings = %d, want 0", summary.TotalFindings)
	}
}

func TestScanPathResultsSortedByPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zz.py", "x = 1\n")
	writeFile(t, dir, "aa.py", "y = 2\n")
	writeFile(t, dir, "mm.py", "z = 3\n")

	summary, err := newTestScanner().ScanPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if len(summary.Files) != 3 {
		t.Fatalf("len(Files) = %d, want 3", len(summary.Files))
	}
	for i := 1; i < len(summary.Files); i++ {
		if summary.Files[i-1].Path >= summary.Files[i].Path {
			t.Errorf("results not sorted: %q before %q", summary.Files[i-1].Path, summary.Files[i].Path)
		}
	}
}

func TestScanPathOversizedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.py", "x = 1\n")
	big := make([]byte, audit.MaxSourceBytes+1)
	for i := range big {
		big[i] = 'a'
	}
	writeFile(t, dir, "huge.py", string(big))

	summary, err := newTestScanner().ScanPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if summary.FilesScanned != 1 {
		t.Fatalf("FilesScanned = %d, want 1", summary.FilesScanned)
	}

	var found bool
	for _, fr := range summary.Files {
		if filepath.Base(fr.Path) != "huge.py" {
			continue
		}
		found = true
		var tooLarge *audit.SourceTooLargeError
		if !errors.As(fr.Err, &tooLarge) {
			t.Fatalf("Err = %v, want SourceTooLargeError", fr.Err)
		}
		if tooLarge.Actual != audit.MaxSourceBytes+1 {
			t.Errorf("Actual = %d, want %d", tooLarge.Actual, audit.MaxSourceBytes+1)
		}
		if tooLarge.Limit != audit.MaxSourceBytes {
			t.Errorf("Limit = %d, want %d", tooLarge.Limit, audit.MaxSourceBytes)
		}
	}
	if !found {
		t.Error("oversized file missing from results")
	}
}

func TestScanPathMissingTarget(t *testing.T) {
	_, err := newTestScanner().ScanPath(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing target")
	}
}

