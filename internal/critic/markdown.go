package critic

import (
	"fmt"
	"regexp"
	"strings"
)

var reInlineLink = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

// ValidateMarkdown checks basic markdown syntax in a single pass over the
// lines: fence closure, heading levels, link targets, inline code spans.
// It is total over any input and never invokes the model.
func ValidateMarkdown(content string) Result {
	result := Result{Passed: true}
	lines := strings.Split(content, "\n")
	result.CheckedItems = len(lines)

	inFence := false
	fenceStart := 0
	var headingLevels []int

	for i, line := range lines {
		lineNo := i + 1
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "```") {
			if inFence {
				inFence = false
			} else {
				inFence = true
				fenceStart = lineNo
			}
			continue
		}
		if inFence {
			// fenced content is exempt from prose rules
			continue
		}

		if strings.HasPrefix(stripped, "#") {
			level := len(stripped) - len(strings.TrimLeft(stripped, "#"))
			if level > 6 {
				result.AddIssue(Issue{
					Severity: SeverityError,
					Category: "heading",
					Message:  "Heading level exceeds maximum (6)",
					Line:     lineNo,
				})
			}
			// Levels accumulate in document order and are never popped, so
			// the skip check compares against the last heading seen, not a
			// true hierarchy stack.
			if n := len(headingLevels); n > 0 && level > headingLevels[n-1]+1 {
				result.AddIssue(Issue{
					Severity:   SeverityWarning,
					Category:   "heading",
					Message:    fmt.Sprintf("Heading skips from level %d to %d", headingLevels[n-1], level),
					Line:       lineNo,
					Suggestion: "Consider using intermediate heading levels",
				})
			}
			headingLevels = append(headingLevels, level)
		}

		for _, m := range reInlineLink.FindAllStringSubmatch(line, -1) {
			if m[2] == "" {
				result.AddIssue(Issue{
					Severity: SeverityWarning,
					Category: "link",
					Message:  fmt.Sprintf("Empty URL in link '%s'", m[1]),
					Line:     lineNo,
				})
			}
		}

		// Triple-backtick runs count 3 apiece toward the exclusion.
		backticks := strings.Count(line, "`") - strings.Count(line, "```")*3
		if backticks%2 != 0 {
			result.AddIssue(Issue{
				Severity: SeverityWarning,
				Category: "code",
				Message:  "Possible unclosed inline code block",
				Line:     lineNo,
			})
		}
	}

	if inFence {
		result.AddIssue(Issue{
			Severity: SeverityError,
			Category: "code",
			Message:  fmt.Sprintf("Unclosed code block starting at line %d", fenceStart),
			Line:     fenceStart,
		})
	}

	return result
}
