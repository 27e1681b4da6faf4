package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/b-inary/gaia-software/diag"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadStripsBlankLinesAndAppendsAlign(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.s", "main:\n\n  add r1, r2, r3, 0\n")

	res, err := Load(nil, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != 3 {
		t.Fatalf("expected 2 source lines + trailing align, got %d: %v", len(res.Lines), res.Lines)
	}
	last := res.Lines[len(res.Lines)-1]
	if last.Text != ".align 4" {
		t.Errorf("expected trailing .align 4, got %q", last.Text)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(nil, []string{"/nonexistent/path/file.s"}); err == nil {
		t.Error("expected file-not-found error")
	}
}

func TestLoadMarksLibraries(t *testing.T) {
	dir := t.TempDir()
	lib := writeTemp(t, dir, "lib.s", "helper:\n  add r1, r2, r3, 0\n")
	main := writeTemp(t, dir, "main.s", "main:\n  add r1, r2, r3, 0\n")

	res, err := Load([]string{lib}, []string{main})
	if err != nil {
		t.Fatal(err)
	}
	rel, _ := filepath.Rel(".", lib)
	if !res.Libraries[rel] {
		t.Errorf("expected %q to be marked as a library file", rel)
	}
}

func TestAppendEndMarker(t *testing.T) {
	lines := AppendEndMarker(nil, "_end")
	if len(lines) != 2 || lines[0].File != GeneratedFile || lines[1].Text != "_end:" {
		t.Errorf("unexpected end marker lines: %v", lines)
	}
}

func TestCacheLine(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.s", "main:\n")
	res, err := Load(nil, []string{path})
	if err != nil {
		t.Fatal(err)
	}
	rel, _ := filepath.Rel(".", path)
	line, ok := res.Cache.Line(diag.Pos{File: rel, Line: 1})
	if !ok || line != "main:" {
		t.Errorf("expected cached line 'main:', got %q, %v", line, ok)
	}
}
