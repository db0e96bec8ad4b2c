package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetCompileFlags returns compileFlags to its defaults between tests.
func resetCompileFlags() {
	compileFlags.output = ""
	compileFlags.outDir = ""
	compileFlags.format = "text"
	compileFlags.noCache = false
}

func TestRunCompileSingleFile(t *testing.T) {
	testConfig(t)
	resetCompileFlags()

	tmpDir := t.TempDir()
	src := writeSourceFile(t, tmpDir, "program.lisp", "(add 2 (subtract 4 2))")
	compileFlags.output = filepath.Join(tmpDir, "out.txt")

	if err := runCompile(nil, []string{src}); err != nil {
		t.Fatalf("runCompile() error: %v", err)
	}

	data, err := os.ReadFile(compileFlags.output)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "add(2, subtract(4, 2));\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunCompileDirectoryToOutDir(t *testing.T) {
	testConfig(t)
	resetCompileFlags()

	srcDir := t.TempDir()
	writeSourceFile(t, srcDir, "first.lisp", "(add 1 2)")
	writeSourceFile(t, srcDir, "second.sexpr", "(subtract 9 3)")
	writeSourceFile(t, srcDir, "notes.txt", "not a source file")

	outDir := filepath.Join(t.TempDir(), "build")
	compileFlags.outDir = outDir

	if err := runCompile(nil, []string{srcDir}); err != nil {
		t.Fatalf("runCompile() error: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(outDir, "first.c"))
	if err != nil {
		t.Fatalf("first.c not written: %v", err)
	}
	if got, want := string(first), "add(1, 2);\n"; got != want {
		t.Errorf("first.c = %q, want %q", got, want)
	}

	second, err := os.ReadFile(filepath.Join(outDir, "second.c"))
	if err != nil {
		t.Fatalf("second.c not written: %v", err)
	}
	if got, want := string(second), "subtract(9, 3);\n"; got != want {
		t.Errorf("second.c = %q, want %q", got, want)
	}

	if _, err := os.Stat(filepath.Join(outDir, "notes.c")); !os.IsNotExist(err) {
		t.Error("non-source file should not produce a target file")
	}
}

func TestRunCompileJSONFormat(t *testing.T) {
	testConfig(t)
	resetCompileFlags()

	tmpDir := t.TempDir()
	src := writeSourceFile(t, tmpDir, "program.lisp", "(add 2 (subtract 4 2))")
	compileFlags.format = "json"
	compileFlags.output = filepath.Join(tmpDir, "results.json")

	if err := runCompile(nil, []string{src}); err != nil {
		t.Fatalf("runCompile() error: %v", err)
	}

	data, err := os.ReadFile(compileFlags.output)
	if err != nil {
		t.Fatal(err)
	}
	var results []fileResult
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].File != src {
		t.Errorf("File = %q, want %q", results[0].File, src)
	}
	if results[0].Output != "add(2, subtract(4, 2));" {
		t.Errorf("Output = %q", results[0].Output)
	}
	if results[0].TokenCount != 10 {
		t.Errorf("TokenCount = %d, want 10", results[0].TokenCount)
	}
}

func TestRunCompileParseError(t *testing.T) {
	testConfig(t)
	resetCompileFlags()

	tmpDir := t.TempDir()
	src := writeSourceFile(t, tmpDir, "broken.lisp", "(add 2")

	err := runCompile(nil, []string{src})
	if err == nil {
		t.Fatal("runCompile() with broken source should return error")
	}
	if !strings.Contains(err.Error(), "broken.lisp") {
		t.Errorf("error %q should name the failing file", err)
	}
}

func TestRunCompileConflictingFlags(t *testing.T) {
	testConfig(t)
	resetCompileFlags()
	compileFlags.output = "out.c"
	compileFlags.outDir = "build"

	err := runCompile(nil, []string{"program.lisp"})
	if err == nil {
		t.Fatal("runCompile() with --output and --outdir should return error")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("error = %q, want mention of mutual exclusion", err)
	}
}

func TestRunCompileOutDirRequiresArgs(t *testing.T) {
	testConfig(t)
	resetCompileFlags()
	compileFlags.outDir = "build"

	err := runCompile(nil, nil)
	if err == nil {
		t.Fatal("runCompile() with --outdir and no files should return error")
	}
	if !strings.Contains(err.Error(), "requires file arguments") {
		t.Errorf("error = %q, want mention of file arguments", err)
	}
}

func TestRunCompileNoSourcesFound(t *testing.T) {
	testConfig(t)
	resetCompileFlags()

	err := runCompile(nil, []string{t.TempDir()})
	if err == nil {
		t.Fatal("runCompile() on an empty directory should return error")
	}
	if !strings.Contains(err.Error(), "no source files found") {
		t.Errorf("error = %q", err)
	}
}

func TestRunCompileOutputSingleFileOnly(t *testing.T) {
	testConfig(t)
	resetCompileFlags()

	tmpDir := t.TempDir()
	a := writeSourceFile(t, tmpDir, "a.lisp", "(add 1 2)")
	b := writeSourceFile(t, tmpDir, "b.lisp", "(add 3 4)")
	compileFlags.output = filepath.Join(tmpDir, "out.c")

	err := runCompile(nil, []string{a, b})
	if err == nil {
		t.Fatal("runCompile() with --output and two files should return error")
	}
	if !strings.Contains(err.Error(), "single input file") {
		t.Errorf("error = %q", err)
	}
}

func TestRunCompileTargetCollision(t *testing.T) {
	testConfig(t)
	resetCompileFlags()

	srcDir := t.TempDir()
	writeSourceFile(t, srcDir, "same.lisp", "(add 1 2)")
	writeSourceFile(t, srcDir, "same.sexpr", "(add 3 4)")
	compileFlags.outDir = filepath.Join(t.TempDir(), "build")

	err := runCompile(nil, []string{srcDir})
	if err == nil {
		t.Fatal("two sources compiling to the same target should return error")
	}
	if !strings.Contains(err.Error(), "both compile to") {
		t.Errorf("error = %q", err)
	}
}

func TestCollectSourceFiles(t *testing.T) {
	srcDir := t.TempDir()
	writeSourceFile(t, srcDir, "top.lisp", "(add 1 2)")
	writeSourceFile(t, srcDir, "notes.txt", "skip me")

	nested := filepath.Join(srcDir, "nested")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSourceFile(t, nested, "deep.sexpr", "(add 3 4)")

	hidden := filepath.Join(srcDir, ".hidden")
	if err := os.Mkdir(hidden, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSourceFile(t, hidden, "secret.lisp", "(add 5 6)")

	files, err := collectSourceFiles([]string{srcDir}, []string{".lisp", ".sexpr"})
	if err != nil {
		t.Fatalf("collectSourceFiles() error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want top.lisp and nested/deep.sexpr", files)
	}
	for _, f := range files {
		if strings.Contains(f, ".hidden") {
			t.Errorf("hidden directory should be skipped, got %s", f)
		}
	}
}

func TestCollectSourceFilesExplicitFile(t *testing.T) {
	// Explicit file arguments are taken as-is regardless of extension.
	tmpDir := t.TempDir()
	txt := writeSourceFile(t, tmpDir, "program.txt", "(add 1 2)")

	files, err := collectSourceFiles([]string{txt}, []string{".lisp"})
	if err != nil {
		t.Fatalf("collectSourceFiles() error: %v", err)
	}
	if len(files) != 1 || files[0] != txt {
		t.Errorf("files = %v, want [%s]", files, txt)
	}
}

func TestCollectSourceFilesMissingArg(t *testing.T) {
	_, err := collectSourceFiles([]string{"does-not-exist.lisp"}, []string{".lisp"})
	if err == nil {
		t.Error("missing argument should return error")
	}
}

func TestTargetFileName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"program.lisp", "program.c"},
		{"src/program.sexpr", "program.c"},
		{"noext", "noext.c"},
		{"archive.tar.gz", "archive.tar.c"},
	}

	for _, tt := range tests {
		if got := targetFileName(tt.source); got != tt.want {
			t.Errorf("targetFileName(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestHasSourceExtension(t *testing.T) {
	extensions := []string{".lisp", ".sexpr"}

	tests := []struct {
		path string
		want bool
	}{
		{"program.lisp", true},
		{"program.LISP", true},
		{"program.sexpr", true},
		{"program.txt", false},
		{"program", false},
	}

	for _, tt := range tests {
		if got := hasSourceExtension(tt.path, extensions); got != tt.want {
			t.Errorf("hasSourceExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
