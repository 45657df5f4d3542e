package docgen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeDocs struct {
	content string
	err     error
	calls   int
}

func (f *fakeDocs) FullLibraryContext(_ context.Context, name string, _ []string) (string, error) {
	f.calls++
	return f.content, f.err
}

type fakeRetriever struct {
	content string
	err     error
}

func (f *fakeRetriever) ContextForGeneration(_ context.Context, _ string) (string, error) {
	return f.content, f.err
}

func TestContextBuilder_AssemblesAllSections(t *testing.T) {
	b := NewContextBuilder(
		&fakeDocs{content: "# React Documentation"},
		&fakeRetriever{content: "## Retrieved Context"},
	)
	out := b.Build(context.Background(), Request{
		LibraryName:       "react",
		Query:             "hooks",
		AdditionalContext: "follow the outline",
	})

	parts := strings.Split(out, "\n\n---\n\n")
	if len(parts) != 3 {
		t.Fatalf("expected 3 sections, got %d: %q", len(parts), out)
	}
	if parts[0] != "# React Documentation" {
		t.Fatalf("docs section first, got %q", parts[0])
	}
	if parts[1] != "## Retrieved Context" {
		t.Fatalf("retrieval section second, got %q", parts[1])
	}
	if parts[2] != "## Additional Context\n\nfollow the outline" {
		t.Fatalf("additional context last, got %q", parts[2])
	}
}

func TestContextBuilder_DocsFailureBecomesNote(t *testing.T) {
	b := NewContextBuilder(&fakeDocs{err: errors.New("mcp down")}, nil)
	out := b.Build(context.Background(), Request{LibraryName: "react"})
	if out != "Note: Could not fetch documentation for react." {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestContextBuilder_RetrievalFailureDropped(t *testing.T) {
	b := NewContextBuilder(nil, &fakeRetriever{err: errors.New("kb down")})
	out := b.Build(context.Background(), Request{Query: "hooks", AdditionalContext: "extra"})
	if out != "## Additional Context\n\nextra" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestContextBuilder_NoLibraryNameSkipsDocs(t *testing.T) {
	docs := &fakeDocs{content: "x"}
	b := NewContextBuilder(docs, nil)
	out := b.Build(context.Background(), Request{})
	if out != "" {
		t.Fatalf("expected empty context, got %q", out)
	}
	if docs.calls != 0 {
		t.Fatalf("docs provider must not be called without a library name")
	}
}
