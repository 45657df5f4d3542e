package critic

import (
	"fmt"
	"regexp"
	"strings"
)

// mermaidTypes is the accepted diagram-type vocabulary for the first line
// of a mermaid block.
var mermaidTypes = []string{
	"flowchart",
	"graph",
	"sequenceDiagram",
	"classDiagram",
	"stateDiagram",
	"stateDiagram-v2",
	"erDiagram",
	"gantt",
	"pie",
	"journey",
	"gitGraph",
	"mindmap",
	"timeline",
	"quadrantChart",
	"xychart-beta",
	"block-beta",
}

// mermaidErrorPatterns are line-level anti-patterns, checked in order.
var mermaidErrorPatterns = []struct {
	re  *regexp.Regexp
	msg string
}{
	{regexp.MustCompile(`\[\s*\[`), "Double brackets not allowed in node definitions"},
	{regexp.MustCompile(`\]\s*\]`), "Double brackets not allowed in node definitions"},
	{regexp.MustCompile(`-->\s*$`), "Arrow must have a target node"},
	{regexp.MustCompile(`^\s*-->|^\s*---`), "Arrow must have a source node"},
	{regexp.MustCompile(`subgraph\s*$`), "Subgraph must have a name"},
	{regexp.MustCompile(`participant\s*$`), "Participant must have a name"},
}

var (
	reMermaidBlock   = regexp.MustCompile("(?s)```mermaid\\s*\n(.*?)```")
	reSubgraphOpen   = regexp.MustCompile(`\bsubgraph\b`)
	reSubgraphClose  = regexp.MustCompile(`\bend\b`)
	bracketOpenings  = []string{"[", "{", "("}
	bracketClosings  = []string{"]", "}", ")"}
)

// ValidateMermaid extracts all ```mermaid fenced blocks and checks each for
// common syntax errors. A document with no mermaid blocks passes with a
// single info issue.
func ValidateMermaid(content string) Result {
	result := Result{Passed: true}

	matches := reMermaidBlock.FindAllStringSubmatch(content, -1)
	result.CheckedItems = len(matches)

	if len(matches) == 0 {
		result.AddIssue(Issue{
			Severity: SeverityInfo,
			Category: "mermaid",
			Message:  "No Mermaid diagrams found in document",
		})
		return result
	}

	for i, m := range matches {
		blockNo := i + 1
		block := m[1]
		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			result.AddIssue(Issue{
				Severity: SeverityError,
				Category: "mermaid",
				Message:  fmt.Sprintf("Empty Mermaid block #%d", blockNo),
			})
			continue
		}
		blockLines := strings.Split(trimmed, "\n")

		firstLine := strings.TrimSpace(blockLines[0])
		validType := false
		for _, dtype := range mermaidTypes {
			if strings.HasPrefix(firstLine, dtype) {
				validType = true
				break
			}
		}
		if !validType {
			result.AddIssue(Issue{
				Severity:   SeverityError,
				Category:   "mermaid",
				Message:    fmt.Sprintf("Invalid diagram type in block #%d: '%s'", blockNo, firstLine),
				Suggestion: fmt.Sprintf("Use one of: %s...", strings.Join(mermaidTypes[:5], ", ")),
			})
		}

		for n, line := range blockLines {
			for _, p := range mermaidErrorPatterns {
				if p.re.MatchString(line) {
					result.AddIssue(Issue{
						Severity: SeverityError,
						Category: "mermaid",
						Message:  fmt.Sprintf("Block #%d, line %d: %s", blockNo, n+1, p.msg),
					})
				}
			}
		}

		open, closed := 0, 0
		for _, b := range bracketOpenings {
			open += strings.Count(block, b)
		}
		for _, b := range bracketClosings {
			closed += strings.Count(block, b)
		}
		if open != closed {
			result.AddIssue(Issue{
				Severity:   SeverityWarning,
				Category:   "mermaid",
				Message:    fmt.Sprintf("Block #%d: Unbalanced brackets", blockNo),
				Suggestion: "Check that all brackets are properly closed",
			})
		}

		opens := len(reSubgraphOpen.FindAllString(block, -1))
		ends := len(reSubgraphClose.FindAllString(block, -1))
		if opens != ends {
			result.AddIssue(Issue{
				Severity: SeverityError,
				Category: "mermaid",
				Message:  fmt.Sprintf("Block #%d: Unclosed subgraph (%d opens, %d ends)", blockNo, opens, ends),
			})
		}
	}

	return result
}
