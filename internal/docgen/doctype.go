// Package docgen produces markdown documents from an LLM behind a
// validate-and-refine loop.
package docgen

import "fmt"

// DocumentType selects which prompt template drives generation.
type DocumentType string

const (
	TypeSRS            DocumentType = "srs"
	TypeFunctionalSpec DocumentType = "functional_spec"
	TypeAPIDocs        DocumentType = "api_docs"
	TypeArchitecture   DocumentType = "architecture"
)

// templateNames maps each document type to its prompt template.
var templateNames = map[DocumentType]string{
	TypeSRS:            "srs_template",
	TypeFunctionalSpec: "functional_spec",
	TypeAPIDocs:        "api_docs",
	TypeArchitecture:   "architecture",
}

func (t DocumentType) templateName() (string, error) {
	name, ok := templateNames[t]
	if !ok {
		return "", fmt.Errorf("docgen: unknown document type %q", t)
	}
	return name, nil
}

// Metadata records how a document was produced.
type Metadata struct {
	PromptLength         int            `json:"prompt_length"`
	ResponseLength       int            `json:"response_length"`
	RefinementIterations int            `json:"refinement_iterations"`
	Extra                map[string]any `json:"extra,omitempty"`
}

// GeneratedDocument is the output of one generation run.
type GeneratedDocument struct {
	DocumentType DocumentType `json:"document_type"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	LibraryName  string       `json:"library_name,omitempty"`
	Topics       []string     `json:"topics,omitempty"`
	GeneratedAt  string       `json:"generated_at"`
	Metadata     Metadata     `json:"metadata"`
}
