package critic

import (
	"context"
	"log"
)

// FullReview runs the markdown and mermaid checks unconditionally and the
// model-backed content check only when requested. Overall pass means zero
// errors across all results.
func (c *Critic) FullReview(ctx context.Context, content, requirements string, checkContent bool) Report {
	log.Printf("critic: starting full document review")

	markdown := ValidateMarkdown(content)
	mermaid := ValidateMermaid(content)

	var contentResult *Result
	if checkContent {
		r := c.CheckContentQuality(ctx, content, requirements)
		contentResult = &r
	}

	all := make([]Issue, 0, len(markdown.Issues)+len(mermaid.Issues))
	all = append(all, markdown.Issues...)
	all = append(all, mermaid.Issues...)
	if contentResult != nil {
		all = append(all, contentResult.Issues...)
	}

	totalErrors, totalWarnings := 0, 0
	seen := map[string]bool{}
	var suggestions []string
	for _, issue := range all {
		switch issue.Severity {
		case SeverityError:
			totalErrors++
		case SeverityWarning:
			totalWarnings++
		}
		if issue.Suggestion != "" && !seen[issue.Suggestion] {
			seen[issue.Suggestion] = true
			suggestions = append(suggestions, issue.Suggestion)
		}
	}

	report := Report{
		OverallPassed: totalErrors == 0,
		Markdown:      markdown,
		Mermaid:       mermaid,
		Content:       contentResult,
		TotalErrors:   totalErrors,
		TotalWarnings: totalWarnings,
		Suggestions:   suggestions,
	}

	log.Printf("critic: review complete: %d errors, %d warnings", totalErrors, totalWarnings)
	return report
}
