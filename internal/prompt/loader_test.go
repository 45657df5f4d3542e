package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoader_BuiltinTemplates(t *testing.T) {
	l := NewLoader()
	for _, name := range []string{
		"srs_template",
		"functional_spec",
		"api_docs",
		"architecture",
		"document_refine",
		"content_quality",
		"planning_create",
		"planning_refine",
	} {
		body, err := l.Load(name)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", name, err)
		}
		if body == "" {
			t.Fatalf("Load(%s) returned empty body", name)
		}
		if strings.HasPrefix(body, "---") {
			t.Fatalf("Load(%s) did not strip frontmatter", name)
		}
	}
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func TestLoad_StripsFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "greet.prompty", "---\nname: greet\nmodel: test\n---\nHello {{ who }}!\n")

	l := NewLoaderFromDir(dir)
	body, err := l.Load("greet")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if body != "Hello {{ who }}!" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestLoad_MissingTemplate(t *testing.T) {
	l := NewLoaderFromDir(t.TempDir())
	if _, err := l.Load("nope"); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestRender_SubstitutesVariables(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "x.prompty", "A={{ a }} B={{b}} again={{ a }}")

	l := NewLoaderFromDir(dir)
	out, err := l.Render("x", map[string]string{"a": "1", "b": "2"})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if out != "A=1 B=2 again=1" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRender_UnknownPlaceholderLeftVerbatim(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "x.prompty", "keep {{ missing }}")

	l := NewLoaderFromDir(dir)
	out, err := l.Render("x", map[string]string{"other": "v"})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if out != "keep {{ missing }}" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRender_ValueInsertedLiterally(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "x.prompty", "v={{ a }}")

	l := NewLoaderFromDir(dir)
	// regex metacharacters in values must not be expanded
	out, err := l.Render("x", map[string]string{"a": "cost is $1.50 (approx)"})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if out != "v=cost is $1.50 (approx)" {
		t.Fatalf("unexpected output %q", out)
	}
}
