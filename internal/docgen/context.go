package docgen

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// DocsProvider supplies library documentation for the generation context.
type DocsProvider interface {
	FullLibraryContext(ctx context.Context, name string, topics []string) (string, error)
}

// Retriever supplies knowledge-base context for the generation prompt.
type Retriever interface {
	ContextForGeneration(ctx context.Context, query string) (string, error)
}

// ContextBuilder aggregates documentation, retrieval hits, and caller
// extras into one context blob. Both providers are optional; a nil
// provider simply contributes nothing.
type ContextBuilder struct {
	docs      DocsProvider
	retriever Retriever
}

func NewContextBuilder(docs DocsProvider, retriever Retriever) *ContextBuilder {
	return &ContextBuilder{docs: docs, retriever: retriever}
}

// Request carries the inputs for one context assembly.
type Request struct {
	LibraryName       string
	Topics            []string
	Query             string
	AdditionalContext string
}

// Build gathers the context sections in a fixed order: library docs,
// retrieval hits, additional context. Provider failures degrade to a note
// or are dropped; Build itself never fails.
func (b *ContextBuilder) Build(ctx context.Context, req Request) string {
	var parts []string

	if b.docs != nil && req.LibraryName != "" {
		docs, err := b.docs.FullLibraryContext(ctx, req.LibraryName, req.Topics)
		if err != nil {
			log.Printf("docgen: library docs unavailable: %v", err)
			docs = fmt.Sprintf("Note: Could not fetch documentation for %s.", req.LibraryName)
		}
		parts = append(parts, docs)
	}

	if b.retriever != nil && req.Query != "" {
		retrieved, err := b.retriever.ContextForGeneration(ctx, req.Query)
		if err != nil {
			log.Printf("docgen: retrieval unavailable: %v", err)
		} else {
			parts = append(parts, retrieved)
		}
	}

	if req.AdditionalContext != "" {
		parts = append(parts, "## Additional Context\n\n"+req.AdditionalContext)
	}

	return strings.Join(parts, "\n\n---\n\n")
}
