package plan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"docforge/internal/docgen"
	"docforge/internal/llm"
	"docforge/internal/planstore"
	"docforge/internal/prompt"
	"docforge/internal/util/jsonutil"
)

// DocumentGenerator is the slice of the generator the agent needs.
type DocumentGenerator interface {
	Generate(ctx context.Context, req docgen.GenerateRequest) (*docgen.GeneratedDocument, error)
}

// Agent runs the planning workflow: create an outline, refine it from user
// comments, approve it, then generate the full document from the approved
// structure. All collaborators are injected.
type Agent struct {
	llm       llm.Completer
	prompts   *prompt.Loader
	store     planstore.Store
	generator DocumentGenerator
	now       func() time.Time
}

func NewAgent(completer llm.Completer, prompts *prompt.Loader, store planstore.Store, generator DocumentGenerator) *Agent {
	return &Agent{
		llm:       completer,
		prompts:   prompts,
		store:     store,
		generator: generator,
		now:       time.Now,
	}
}

func (a *Agent) timestamp() string {
	return a.now().UTC().Format(time.RFC3339)
}

// savePlan persists best-effort. A storage failure is logged but does not
// fail the workflow step that produced the plan.
func (a *Agent) savePlan(ctx context.Context, p *DocumentPlan) {
	data, err := p.Encode()
	if err != nil {
		log.Printf("plan: encode %s: %v", p.PlanID, err)
		return
	}
	if err := a.store.Put(ctx, p.PlanID, data); err != nil {
		log.Printf("plan: persist %s: %v", p.PlanID, err)
	}
}

// CreatePlan asks the model for a document outline and stores it pending
// review. An unparsable outline falls back to a minimal structure rather
// than failing the request.
func (a *Agent) CreatePlan(ctx context.Context, userRequest string) (*DocumentPlan, error) {
	rendered, err := a.prompts.Render("planning_create", map[string]string{
		"user_request": userRequest,
	})
	if err != nil {
		return nil, fmt.Errorf("plan: render outline prompt: %w", err)
	}
	text, err := a.llm.Complete(llm.WithOp(ctx, "plan:create"), rendered)
	if err != nil {
		return nil, fmt.Errorf("plan: outline completion: %w", err)
	}

	result := ParseOutline(text)
	if result.Fallback {
		log.Printf("plan: outline fallback: %s", result.Reason)
	}
	outline := result.Outline
	if outline.DocumentType == "" {
		outline.DocumentType = "custom"
	}
	if outline.Title == "" {
		outline.Title = "Document"
	}

	now := a.timestamp()
	p := &DocumentPlan{
		PlanID:       uuid.NewString(),
		Status:       StatusPendingReview,
		UserRequest:  userRequest,
		DocumentType: outline.DocumentType,
		Title:        outline.Title,
		Sections:     outline.Sections,
		CreatedAt:    now,
		UpdatedAt:    now,
		UserComments: []string{},
	}
	a.savePlan(ctx, p)
	log.Printf("plan: created %s with %d sections", p.PlanID, len(p.Sections))
	return p, nil
}

// GetPlan loads a plan. A missing plan is reported through found, not an
// error.
func (a *Agent) GetPlan(ctx context.Context, planID string) (*DocumentPlan, bool, error) {
	data, err := a.store.Get(ctx, planID)
	if errors.Is(err, planstore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("plan: load %s: %w", planID, err)
	}
	p, err := DecodePlan(data)
	if err != nil {
		return nil, false, fmt.Errorf("plan: decode %s: %w", planID, err)
	}
	return p, true, nil
}

// AddComment records user feedback and asks the model to refine the
// outline against the full comment history.
func (a *Agent) AddComment(ctx context.Context, planID, comment string) (*DocumentPlan, bool, error) {
	p, found, err := a.GetPlan(ctx, planID)
	if err != nil || !found {
		return nil, found, err
	}

	p.UserComments = append(p.UserComments, comment)

	currentOutline, err := jsonutil.MarshalNoEscapeIndent(Outline{
		DocumentType: p.DocumentType,
		Title:        p.Title,
		Sections:     p.Sections,
	}, "", "  ")
	if err != nil {
		return nil, true, fmt.Errorf("plan: encode outline: %w", err)
	}
	rendered, err := a.prompts.Render("planning_refine", map[string]string{
		"current_outline": string(currentOutline),
		"user_comments":   strings.Join(p.UserComments, "\n"),
	})
	if err != nil {
		return nil, true, fmt.Errorf("plan: render refine prompt: %w", err)
	}
	text, err := a.llm.Complete(llm.WithOp(ctx, "plan:refine"), rendered)
	if err != nil {
		return nil, true, fmt.Errorf("plan: refine completion: %w", err)
	}

	result := ParseOutline(text)
	if result.Fallback {
		log.Printf("plan: refine fallback for %s: %s", planID, result.Reason)
	}
	p.Sections = result.Outline.Sections
	if result.Outline.Title != "" {
		p.Title = result.Outline.Title
	}
	p.UpdatedAt = a.timestamp()

	a.savePlan(ctx, p)
	log.Printf("plan: refined %s from user feedback", planID)
	return p, true, nil
}

// ApprovePlan marks a plan ready for generation.
func (a *Agent) ApprovePlan(ctx context.Context, planID string) (*DocumentPlan, bool, error) {
	p, found, err := a.GetPlan(ctx, planID)
	if err != nil || !found {
		return nil, found, err
	}
	p.Status = StatusApproved
	p.UpdatedAt = a.timestamp()
	a.savePlan(ctx, p)
	log.Printf("plan: approved %s", planID)
	return p, true, nil
}

// GenerateFromPlan produces the full document for an approved plan. The
// generating status is persisted before the model runs so readers can
// observe progress. Generation failure marks the plan failed with the
// error recorded in metadata; it is not returned as an error.
func (a *Agent) GenerateFromPlan(ctx context.Context, planID string) (*DocumentPlan, bool, error) {
	p, found, err := a.GetPlan(ctx, planID)
	if err != nil || !found {
		return nil, found, err
	}
	if p.Status != StatusApproved {
		return nil, false, nil
	}

	p.Status = StatusGenerating
	a.savePlan(ctx, p)

	structure := outlineToText(p)
	doc, err := a.generator.Generate(ctx, docgen.GenerateRequest{
		Type:              mapDocumentType(p.DocumentType),
		Requirements:      p.UserRequest,
		Query:             p.UserRequest,
		AdditionalContext: "## Document Structure (MUST FOLLOW):\n" + structure,
	})
	if err != nil {
		log.Printf("plan: generation failed for %s: %v", planID, err)
		p.Status = StatusFailed
		p.Metadata.Error = err.Error()
	} else {
		p.FinalDocument = doc.Content
		p.Status = StatusCompleted
	}
	p.UpdatedAt = a.timestamp()

	a.savePlan(ctx, p)
	return p, true, nil
}

// ListPlans returns every stored plan. Undecodable entries are skipped
// with a log line.
func (a *Agent) ListPlans(ctx context.Context) ([]*DocumentPlan, error) {
	blobs, err := a.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan: list: %w", err)
	}
	plans := make([]*DocumentPlan, 0, len(blobs))
	for _, data := range blobs {
		p, err := DecodePlan(data)
		if err != nil {
			log.Printf("plan: skipping undecodable plan: %v", err)
			continue
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func mapDocumentType(docType string) docgen.DocumentType {
	switch docType {
	case "functional_spec":
		return docgen.TypeFunctionalSpec
	case "api_docs":
		return docgen.TypeAPIDocs
	case "architecture":
		return docgen.TypeArchitecture
	default:
		return docgen.TypeSRS
	}
}

// outlineToText renders the approved outline as the numbered structure the
// generation prompt must follow.
func outlineToText(p *DocumentPlan) string {
	lines := []string{fmt.Sprintf("# %s\n", p.Title)}
	for i, section := range p.Sections {
		lines = append(lines, fmt.Sprintf("## %d. %s", i+1, section.Title))
		lines = append(lines, "   "+section.Description)
		for j, sub := range section.Subsections {
			lines = append(lines, fmt.Sprintf("   %d.%d. %s", i+1, j+1, sub))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
