package critic

import (
	"context"
	"log"
	"unicode/utf8"

	"docforge/internal/llm"
	"docforge/internal/util/jsonutil"
)

// contentCharBudget truncates the document sent to the model so the check
// stays within the prompt window.
const contentCharBudget = 8000

type qualityVerdict struct {
	Passed *bool `json:"passed"`
	Issues []struct {
		Severity   string `json:"severity"`
		Message    string `json:"message"`
		Suggestion string `json:"suggestion"`
	} `json:"issues"`
	OverallQuality float64 `json:"overall_quality"`
}

// CheckContentQuality asks the model to judge quality and requirements
// compliance. The check fails open: if the completion fails or returns no
// parsable JSON, the result carries a single warning and still passes.
func (c *Critic) CheckContentQuality(ctx context.Context, content, requirements string) Result {
	result := Result{Passed: true, CheckedItems: 1}

	content = truncateAtRuneBoundary(content, contentCharBudget)
	reqSection := ""
	if requirements != "" {
		reqSection = "## Requirements to Check\n" + requirements
	}

	rendered, err := c.prompts.Render("content_quality", map[string]string{
		"document":             content,
		"requirements_section": reqSection,
	})
	if err == nil {
		var text string
		text, err = c.llm.Complete(llm.WithOp(ctx, "content_quality"), rendered)
		if err == nil {
			var verdict qualityVerdict
			if perr := jsonutil.UnmarshalExtracted(text, &verdict); perr != nil {
				err = perr
			} else {
				if verdict.Passed != nil {
					result.Passed = *verdict.Passed
				}
				for _, it := range verdict.Issues {
					sev := Severity(it.Severity)
					switch sev {
					case SeverityError, SeverityWarning, SeverityInfo:
					default:
						sev = SeverityInfo
					}
					result.AddIssue(Issue{
						Severity:   sev,
						Category:   "content",
						Message:    it.Message,
						Suggestion: it.Suggestion,
					})
				}
				return result
			}
		}
	}

	log.Printf("critic: LLM content check failed: %v", err)
	result.AddIssue(Issue{
		Severity: SeverityWarning,
		Category: "content",
		Message:  "Could not perform LLM-based content analysis",
	})
	return result
}

// truncateAtRuneBoundary cuts s to at most limit bytes without splitting a
// multi-byte rune.
func truncateAtRuneBoundary(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
