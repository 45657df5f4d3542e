package critic

import (
	"docforge/internal/llm"
	"docforge/internal/prompt"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single finding in a document. Immutable once created.
type Issue struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	Line       int      `json:"line,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Result is the outcome of one validation check.
type Result struct {
	Passed       bool    `json:"passed"`
	Issues       []Issue `json:"issues"`
	CheckedItems int     `json:"checked_items"`
}

// AddIssue appends an issue and flips Passed in the same step when the
// issue is an error, so the two never disagree.
func (r *Result) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError {
		r.Passed = false
	}
}

// Report bundles the results of a full review. Built once, never mutated.
type Report struct {
	OverallPassed bool     `json:"overall_passed"`
	Markdown      Result   `json:"markdown_result"`
	Mermaid       Result   `json:"mermaid_result"`
	Content       *Result  `json:"content_result,omitempty"`
	TotalErrors   int      `json:"total_errors"`
	TotalWarnings int      `json:"total_warnings"`
	Suggestions   []string `json:"suggestions"`
}

// Critic validates generated technical documents: markdown syntax, mermaid
// chart syntax, and (optionally, via the model) content quality.
type Critic struct {
	llm     llm.Completer
	prompts *prompt.Loader
}

func New(completer llm.Completer, prompts *prompt.Loader) *Critic {
	return &Critic{llm: completer, prompts: prompts}
}
