package docgen

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"docforge/internal/critic"
	"docforge/internal/llm"
	"docforge/internal/prompt"
)

// maxReviewPasses bounds the critic loop. The final pass reviews without
// triggering another repair, so a run costs at most one initial completion
// plus four repair completions.
const maxReviewPasses = 5

// Generator drives document generation: assemble context, render the type
// template, complete, then iterate review-and-refine until the document is
// clean or the pass budget is spent.
type Generator struct {
	llm     llm.Completer
	prompts *prompt.Loader
	critic  *critic.Critic
	builder *ContextBuilder
	now     func() time.Time
}

func NewGenerator(completer llm.Completer, prompts *prompt.Loader, reviewer *critic.Critic, builder *ContextBuilder) *Generator {
	return &Generator{
		llm:     completer,
		prompts: prompts,
		critic:  reviewer,
		builder: builder,
		now:     time.Now,
	}
}

// GenerateRequest is the input for one document run.
type GenerateRequest struct {
	Type              DocumentType
	Requirements      string
	LibraryName       string
	Topics            []string
	Query             string
	AdditionalContext string
}

// Generate produces a document of the requested type. Syntax issues found
// by review are fed back through the refine template; the loop stops as
// soon as a pass comes back clean.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GeneratedDocument, error) {
	templateName, err := req.Type.templateName()
	if err != nil {
		return nil, err
	}

	libraryName := req.LibraryName
	if libraryName == "" {
		libraryName = "General"
	}

	contextBlob := ""
	if g.builder != nil {
		contextBlob = g.builder.Build(ctx, Request{
			LibraryName:       req.LibraryName,
			Topics:            req.Topics,
			Query:             req.Query,
			AdditionalContext: req.AdditionalContext,
		})
	}

	generatedAt := g.now().UTC().Format(time.RFC3339)
	rendered, err := g.prompts.Render(templateName, map[string]string{
		"library_name":  libraryName,
		"requirements":  req.Requirements,
		"topics":        strings.Join(req.Topics, ", "),
		"context":       contextBlob,
		"document_type": string(req.Type),
		"generated_at":  generatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("docgen: render %s: %w", templateName, err)
	}

	log.Printf("docgen: generating %s document for %s", req.Type, libraryName)
	content, err := g.llm.Complete(llm.WithOp(ctx, "generate:"+string(req.Type)), rendered)
	if err != nil {
		return nil, fmt.Errorf("docgen: initial completion: %w", err)
	}

	content, iterations, err := g.refine(ctx, content)
	if err != nil {
		return nil, err
	}

	title := strings.ToUpper(strings.ReplaceAll(string(req.Type), "_", " "))
	if req.LibraryName != "" {
		title += " - " + req.LibraryName
	}

	return &GeneratedDocument{
		DocumentType: req.Type,
		Title:        title,
		Content:      content,
		LibraryName:  req.LibraryName,
		Topics:       req.Topics,
		GeneratedAt:  generatedAt,
		Metadata: Metadata{
			PromptLength:         len(rendered),
			ResponseLength:       len(content),
			RefinementIterations: iterations,
		},
	}, nil
}

// refine runs the review loop. The content-quality check stays off here;
// only syntax issues feed the repair prompt. A passing review stops the
// loop even when warnings remain.
func (g *Generator) refine(ctx context.Context, content string) (string, int, error) {
	iterations := 0
	for pass := 1; pass <= maxReviewPasses; pass++ {
		report := g.critic.FullReview(ctx, content, "", false)
		if report.OverallPassed {
			log.Printf("docgen: document passed review on pass %d", pass)
			break
		}
		issues := formatIssues(report)
		if len(issues) == 0 {
			// failed review with nothing actionable for the repair prompt
			break
		}
		if pass == maxReviewPasses {
			log.Printf("docgen: pass budget spent with %d issues remaining", len(issues))
			break
		}
		log.Printf("docgen: pass %d found %d issues, refining", pass, len(issues))

		rendered, err := g.prompts.Render("document_refine", map[string]string{
			"issues":            strings.Join(issues, "\n"),
			"original_document": content,
		})
		if err != nil {
			return "", iterations, fmt.Errorf("docgen: render refine prompt: %w", err)
		}
		refined, err := g.llm.Complete(llm.WithOp(ctx, "refine"), rendered)
		if err != nil {
			return "", iterations, fmt.Errorf("docgen: refine completion: %w", err)
		}
		content = refined
		iterations++
	}
	return content, iterations, nil
}

// formatIssues flattens error and warning issues into repair-prompt lines.
// Info issues never trigger a repair.
func formatIssues(report critic.Report) []string {
	var lines []string
	for _, issue := range report.Markdown.Issues {
		if issue.Severity == critic.SeverityInfo {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", issue.Severity, issue.Category, issue.Message))
	}
	for _, issue := range report.Mermaid.Issues {
		if issue.Severity == critic.SeverityInfo {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] Mermaid: %s", issue.Severity, issue.Message))
	}
	return lines
}

// GenerateSRS is a convenience wrapper for software-requirements documents.
func (g *Generator) GenerateSRS(ctx context.Context, libraryName, requirements string, topics []string) (*GeneratedDocument, error) {
	return g.Generate(ctx, GenerateRequest{
		Type:         TypeSRS,
		Requirements: requirements,
		LibraryName:  libraryName,
		Topics:       topics,
		Query:        requirements,
	})
}

// GenerateFunctionalSpec is a convenience wrapper for functional specs; the
// feature list becomes both the requirements bullets and the focus topics.
func (g *Generator) GenerateFunctionalSpec(ctx context.Context, libraryName string, features []string) (*GeneratedDocument, error) {
	bullets := make([]string, len(features))
	for i, f := range features {
		bullets[i] = "- " + f
	}
	requirements := strings.Join(bullets, "\n")
	return g.Generate(ctx, GenerateRequest{
		Type:         TypeFunctionalSpec,
		Requirements: requirements,
		LibraryName:  libraryName,
		Topics:       features,
		Query:        requirements,
	})
}
