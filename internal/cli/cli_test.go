package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/mdwalk/internal/tokenizer"
	"github.com/temirov/mdwalk/internal/types"
)

type stubCounter struct{}

func (stubCounter) Name() string { return "stub" }

func (stubCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

type recordingClipboard struct {
	copied []string
}

func (clipboard *recordingClipboard) Copy(text string) error {
	clipboard.copied = append(clipboard.copied, text)
	return nil
}

type testHarness struct {
	workingDirectory string
	homeDirectory    string
	stdout           bytes.Buffer
	clipboard        recordingClipboard
	logLevel         zap.AtomicLevel
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	return &testHarness{
		workingDirectory: t.TempDir(),
		homeDirectory:    t.TempDir(),
		logLevel:         zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}
}

func (harness *testHarness) run(arguments ...string) error {
	command := NewRootCommand(Environment{
		LogLevel:         harness.logLevel,
		Stdout:           &harness.stdout,
		WorkingDirectory: harness.workingDirectory,
		HomeDirectory:    harness.homeDirectory,
		Now:              func() time.Time { return time.Date(2024, time.March, 4, 5, 6, 7, 0, time.Local) },
		Clipboard:        &harness.clipboard,
		NewTokenCounter: func(cfg tokenizer.Config) (tokenizer.Counter, string, error) {
			return stubCounter{}, tokenizer.ResolveModel(cfg.Model), nil
		},
	})
	command.SetArgs(arguments)
	command.SetOut(&harness.stdout)
	command.SetErr(&harness.stdout)
	return command.Execute()
}

func (harness *testHarness) write(t *testing.T, relativePath string, content []byte) {
	t.Helper()
	path := filepath.Join(harness.workingDirectory, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write %s: %v", relativePath, err)
	}
}

func (harness *testHarness) read(t *testing.T, relativePath string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(harness.workingDirectory, filepath.FromSlash(relativePath)))
	if err != nil {
		t.Fatalf("read %s: %v", relativePath, err)
	}
	return string(content)
}

func TestRootCommandCombinesByDefault(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, "proj/a.py", []byte("print(1)"))
	harness.write(t, "proj/b.bin", []byte{0x00, 0x01, 0x02})

	if err := harness.run("proj"); err != nil {
		t.Fatalf("run: %v", err)
	}

	document := harness.read(t, types.DefaultCombineOutputFile)
	expectedFragments := []string{
		"# Combined Files Report\n",
		"Generated on: 2024-03-04 05:06:07\n",
		"```\nproj/\n├── a.py\n└── b.bin\n```\n",
		"1. [a.py](#apy)\n2. [b.bin](#bbin)\n",
		"## a.py\n\n```python\nprint(1)\n```\n",
		"## b.bin\n\n*[File unreadable: binary content]*\n",
		"Summary: 1 file included, 1 unreadable, 8b, generated on 2024-03-04 05:06:07\n",
	}
	for _, fragment := range expectedFragments {
		if !strings.Contains(document, fragment) {
			t.Fatalf("expected fragment %q in document:\n%s", fragment, document)
		}
	}
}

func TestTreeCommandWritesDiagram(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, "proj/src/main.go", []byte("package main"))
	harness.write(t, "proj/README.md", []byte("# readme"))
	harness.write(t, "proj/.env", []byte("SECRET=1"))
	harness.write(t, "proj/logo.png", []byte("\x89PNG\x0D\x0A\x1A\x0A"))

	if err := harness.run("t", "proj", "--sizes", "-o", "tree.md"); err != nil {
		t.Fatalf("run: %v", err)
	}

	document := harness.read(t, "tree.md")
	expectedTree := "```\nproj/\n├── src/\n│   └── main.go (12 bytes)\n└── README.md (8 bytes)\n```\n"
	if !strings.Contains(document, expectedTree) {
		t.Fatalf("expected tree %q in document:\n%s", expectedTree, document)
	}
	if !strings.HasPrefix(document, "# Directory Tree Report\n") || !strings.HasSuffix(document, "# End of Directory Tree Report\n") {
		t.Fatalf("unexpected document framing:\n%s", document)
	}

	if err := harness.run("tree", "proj", "--hidden", "-o", "tree.md"); err != nil {
		t.Fatalf("run with hidden: %v", err)
	}
	if !strings.Contains(harness.read(t, "tree.md"), ".env") {
		t.Fatalf("expected hidden file with --hidden")
	}
}

func TestCombineAppliesSizeLimitAndExclusions(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, "proj/small.txt", []byte("ok"))
	harness.write(t, "proj/large.txt", []byte(strings.Repeat("x", 200)))
	harness.write(t, "proj/debug.log", []byte("log line"))
	harness.write(t, "proj/old.BAK", []byte("backup"))

	if err := harness.run("combine", "proj", "--max-size", "100", "--exclude", "log, .bak"); err != nil {
		t.Fatalf("run: %v", err)
	}
	document := harness.read(t, types.DefaultCombineOutputFile)
	for _, absent := range []string{"large.txt", "debug.log", "old.BAK"} {
		if strings.Contains(document, absent) {
			t.Fatalf("expected %s to be excluded:\n%s", absent, document)
		}
	}
	if !strings.Contains(document, "## small.txt") {
		t.Fatalf("expected small.txt section:\n%s", document)
	}

	if err := harness.run("tree", "proj", "--max-size", "100"); err == nil {
		t.Fatalf("expected tree to reject combine-only flag")
	}
}

func TestCombineSkipsItsOwnOutput(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, "main.go", []byte("package main"))

	for attempt := 0; attempt < 2; attempt++ {
		if err := harness.run("c"); err != nil {
			t.Fatalf("run %d: %v", attempt, err)
		}
	}
	document := harness.read(t, types.DefaultCombineOutputFile)
	if strings.Contains(document, types.DefaultCombineOutputFile) || strings.Contains(document, `combined\_output.md`) {
		t.Fatalf("expected output file to be skipped:\n%s", document)
	}
}

func TestCombineWithoutTOCAndWithTokens(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, "proj/a.txt", []byte("hello"))

	if err := harness.run("proj", "--no-toc", "--tokens", "--model", "gpt-4"); err != nil {
		t.Fatalf("run: %v", err)
	}
	document := harness.read(t, types.DefaultCombineOutputFile)
	if strings.Contains(document, "Table of Contents") {
		t.Fatalf("expected no table of contents:\n%s", document)
	}
	if !strings.Contains(document, "5 tokens (model: gpt-4)") {
		t.Fatalf("expected token summary:\n%s", document)
	}
}

func TestConfigurationFileAndFlagPrecedence(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, ".mdwalk.yaml", []byte("hidden: true\nverbose: true\ncombine:\n  toc: false\n  output: report.md\n"))
	harness.write(t, "proj/.hidden.txt", []byte("hidden"))
	harness.write(t, "proj/visible.txt", []byte("visible"))

	if err := harness.run("proj"); err != nil {
		t.Fatalf("run: %v", err)
	}
	document := harness.read(t, "report.md")
	if !strings.Contains(document, "## .hidden.txt") || strings.Contains(document, "Table of Contents") {
		t.Fatalf("expected configuration values applied:\n%s", document)
	}
	if harness.logLevel.Level() != zapcore.DebugLevel {
		t.Fatalf("expected verbose configuration to lower the log level")
	}

	if err := harness.run("proj", "--hidden=false", "-o", "flags.md"); err != nil {
		t.Fatalf("run with flags: %v", err)
	}
	if strings.Contains(harness.read(t, "flags.md"), ".hidden.txt") {
		t.Fatalf("expected --hidden=false to override configuration")
	}
}

func TestGitignoreIsAppliedUnlessDisabled(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, "proj/.gitignore", []byte("generated/\n"))
	harness.write(t, "proj/generated/out.txt", []byte("generated"))
	harness.write(t, "proj/keep.txt", []byte("keep"))

	if err := harness.run("tree", "proj"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(harness.read(t, types.DefaultTreeOutputFile), "generated") {
		t.Fatalf("expected gitignored directory to be skipped")
	}

	if err := harness.run("tree", "proj", "--no-gitignore", "--ignore", "keep.*"); err != nil {
		t.Fatalf("run: %v", err)
	}
	document := harness.read(t, types.DefaultTreeOutputFile)
	if !strings.Contains(document, "generated/") || strings.Contains(document, "keep.txt") {
		t.Fatalf("unexpected tree:\n%s", document)
	}
}

func TestInvalidRootAndWriteFailure(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, "file.txt", []byte("x"))

	if err := harness.run("missing"); !errors.Is(err, types.ErrInvalidRoot) {
		t.Fatalf("expected invalid root, got %v", err)
	}
	if err := harness.run("tree", "file.txt"); !errors.Is(err, types.ErrInvalidRoot) {
		t.Fatalf("expected invalid root for a file, got %v", err)
	}
	if err := harness.run(".", "-o", filepath.Join("absent", "out.md")); !errors.Is(err, types.ErrWriteFailure) {
		t.Fatalf("expected write failure, got %v", err)
	}
}

func TestCopyFlagUsesClipboard(t *testing.T) {
	harness := newHarness(t)
	harness.write(t, "proj/a.txt", []byte("a"))

	if err := harness.run("tree", "proj", "--copy"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(harness.clipboard.copied) != 1 || harness.clipboard.copied[0] != harness.read(t, types.DefaultTreeOutputFile) {
		t.Fatalf("expected the report to be copied once")
	}
}

func TestInitAndVersionCommands(t *testing.T) {
	harness := newHarness(t)
	if err := harness.run("init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(harness.read(t, ".mdwalk.yaml"), "combined_output.md") {
		t.Fatalf("expected default configuration")
	}
	if err := harness.run("init"); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	if err := harness.run("init", "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	if err := harness.run("--version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(harness.stdout.String(), "mdwalk version: ") {
		t.Fatalf("unexpected version output %q", harness.stdout.String())
	}
}

func TestNegativeMaxSizeIsRejected(t *testing.T) {
	harness := newHarness(t)
	if err := harness.run(".", "--max-size", "-1"); err == nil {
		t.Fatalf("expected error for negative max size")
	}
}
