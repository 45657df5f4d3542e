package plan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"docforge/internal/docgen"
	"docforge/internal/llm"
	"docforge/internal/planstore"
	"docforge/internal/prompt"
)

const outlineJSON = `{
  "document_type": "srs",
  "title": "Chat App SRS",
  "sections": [
    {"title": "Overview", "description": "intro", "subsections": [], "estimated_length": "short"},
    {"title": "Features", "description": "what it does", "subsections": ["Messaging"], "estimated_length": "long"}
  ]
}`

type fakeGenerator struct {
	req docgen.GenerateRequest
	doc *docgen.GeneratedDocument
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, req docgen.GenerateRequest) (*docgen.GeneratedDocument, error) {
	f.req = req
	return f.doc, f.err
}

func newTestAgent(completer llm.Completer, generator DocumentGenerator) (*Agent, *planstore.MemoryStore) {
	store := planstore.NewMemoryStore()
	a := NewAgent(completer, prompt.NewLoader(), store, generator)
	a.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return a, store
}

func TestCreatePlan(t *testing.T) {
	a, store := newTestAgent(llm.NewScriptedCompleter(outlineJSON), nil)

	p, err := a.CreatePlan(context.Background(), "build a chat app")
	if err != nil {
		t.Fatalf("CreatePlan error: %v", err)
	}
	if p.PlanID == "" {
		t.Fatal("plan must get an ID")
	}
	if p.Status != StatusPendingReview {
		t.Fatalf("expected pending_review, got %s", p.Status)
	}
	if p.Title != "Chat App SRS" || p.DocumentType != "srs" {
		t.Fatalf("unexpected header %+v", p)
	}
	if len(p.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(p.Sections))
	}
	if p.CreatedAt != "2026-03-01T12:00:00Z" || p.UpdatedAt != p.CreatedAt {
		t.Fatalf("unexpected timestamps %s / %s", p.CreatedAt, p.UpdatedAt)
	}

	// the plan is persisted immediately
	if _, err := store.Get(context.Background(), p.PlanID); err != nil {
		t.Fatalf("plan not persisted: %v", err)
	}
}

func TestCreatePlan_FallbackOutline(t *testing.T) {
	a, _ := newTestAgent(llm.NewScriptedCompleter("no json here"), nil)

	p, err := a.CreatePlan(context.Background(), "something")
	if err != nil {
		t.Fatalf("CreatePlan error: %v", err)
	}
	if p.DocumentType != "custom" || p.Title != "Document" {
		t.Fatalf("expected fallback header, got %+v", p)
	}
	if len(p.Sections) != 1 || p.Sections[0].Title != "Overview" {
		t.Fatalf("expected fallback section, got %+v", p.Sections)
	}
}

func TestGetPlan_Missing(t *testing.T) {
	a, _ := newTestAgent(llm.NewScriptedCompleter(), nil)
	p, found, err := a.GetPlan(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetPlan error: %v", err)
	}
	if found || p != nil {
		t.Fatal("missing plan must report found=false")
	}
}

func TestAddComment_RefinesOutline(t *testing.T) {
	refined := `{"title": "Chat App SRS v2", "sections": [{"title": "Security", "description": "auth"}]}`
	a, _ := newTestAgent(llm.NewScriptedCompleter(outlineJSON, refined), nil)

	created, err := a.CreatePlan(context.Background(), "build a chat app")
	if err != nil {
		t.Fatalf("CreatePlan error: %v", err)
	}

	p, found, err := a.AddComment(context.Background(), created.PlanID, "add security")
	if err != nil || !found {
		t.Fatalf("AddComment: found=%v err=%v", found, err)
	}
	if len(p.UserComments) != 1 || p.UserComments[0] != "add security" {
		t.Fatalf("comment not recorded: %+v", p.UserComments)
	}
	if p.Title != "Chat App SRS v2" {
		t.Fatalf("title not refined: %q", p.Title)
	}
	if len(p.Sections) != 1 || p.Sections[0].Title != "Security" {
		t.Fatalf("sections not replaced: %+v", p.Sections)
	}
}

func TestAddComment_MissingTitleKeepsExisting(t *testing.T) {
	refined := `{"sections": [{"title": "Security", "description": "auth"}]}`
	a, _ := newTestAgent(llm.NewScriptedCompleter(outlineJSON, refined), nil)

	created, _ := a.CreatePlan(context.Background(), "build a chat app")
	p, _, err := a.AddComment(context.Background(), created.PlanID, "add security")
	if err != nil {
		t.Fatalf("AddComment error: %v", err)
	}
	if p.Title != "Chat App SRS" {
		t.Fatalf("title must survive when the model omits it, got %q", p.Title)
	}
}

func TestApprovePlan(t *testing.T) {
	a, _ := newTestAgent(llm.NewScriptedCompleter(outlineJSON), nil)
	created, _ := a.CreatePlan(context.Background(), "build a chat app")

	p, found, err := a.ApprovePlan(context.Background(), created.PlanID)
	if err != nil || !found {
		t.Fatalf("ApprovePlan: found=%v err=%v", found, err)
	}
	if p.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", p.Status)
	}
}

func TestGenerateFromPlan_Success(t *testing.T) {
	gen := &fakeGenerator{doc: &docgen.GeneratedDocument{Content: "# Final\n"}}
	a, _ := newTestAgent(llm.NewScriptedCompleter(outlineJSON), gen)

	created, _ := a.CreatePlan(context.Background(), "build a chat app")
	if _, _, err := a.ApprovePlan(context.Background(), created.PlanID); err != nil {
		t.Fatalf("ApprovePlan error: %v", err)
	}

	p, found, err := a.GenerateFromPlan(context.Background(), created.PlanID)
	if err != nil || !found {
		t.Fatalf("GenerateFromPlan: found=%v err=%v", found, err)
	}
	if p.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", p.Status)
	}
	if p.FinalDocument != "# Final\n" {
		t.Fatalf("final document not stored: %q", p.FinalDocument)
	}

	if gen.req.Type != docgen.TypeSRS {
		t.Fatalf("expected srs mapping, got %s", gen.req.Type)
	}
	if gen.req.Requirements != "build a chat app" {
		t.Fatalf("requirements must come from the plan, got %q", gen.req.Requirements)
	}
	if !strings.HasPrefix(gen.req.AdditionalContext, "## Document Structure (MUST FOLLOW):\n# Chat App SRS") {
		t.Fatalf("structure missing from context: %q", gen.req.AdditionalContext)
	}
	if !strings.Contains(gen.req.AdditionalContext, "## 2. Features") {
		t.Fatalf("numbered sections missing: %q", gen.req.AdditionalContext)
	}
	if !strings.Contains(gen.req.AdditionalContext, "   2.1. Messaging") {
		t.Fatalf("subsections missing: %q", gen.req.AdditionalContext)
	}
}

func TestGenerateFromPlan_NotApproved(t *testing.T) {
	a, _ := newTestAgent(llm.NewScriptedCompleter(outlineJSON), &fakeGenerator{})
	created, _ := a.CreatePlan(context.Background(), "build a chat app")

	p, found, err := a.GenerateFromPlan(context.Background(), created.PlanID)
	if err != nil {
		t.Fatalf("GenerateFromPlan error: %v", err)
	}
	if found || p != nil {
		t.Fatal("unapproved plan must not generate")
	}
}

func TestGenerateFromPlan_FailureRecorded(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model exploded")}
	a, store := newTestAgent(llm.NewScriptedCompleter(outlineJSON), gen)

	created, _ := a.CreatePlan(context.Background(), "build a chat app")
	_, _, _ = a.ApprovePlan(context.Background(), created.PlanID)

	a.now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }
	p, found, err := a.GenerateFromPlan(context.Background(), created.PlanID)
	if err != nil || !found {
		t.Fatalf("GenerateFromPlan: found=%v err=%v", found, err)
	}
	if p.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", p.Status)
	}
	if p.Metadata.Error != "model exploded" {
		t.Fatalf("error not recorded: %q", p.Metadata.Error)
	}
	if p.UpdatedAt != "2026-03-01T12:30:00Z" {
		t.Fatalf("failure must bump UpdatedAt, got %s", p.UpdatedAt)
	}

	// failure state is persisted
	data, err := store.Get(context.Background(), created.PlanID)
	if err != nil {
		t.Fatalf("store.Get error: %v", err)
	}
	stored, err := DecodePlan(data)
	if err != nil {
		t.Fatalf("DecodePlan error: %v", err)
	}
	if stored.Status != StatusFailed {
		t.Fatalf("persisted status %s", stored.Status)
	}
}

func TestListPlans(t *testing.T) {
	a, _ := newTestAgent(llm.NewScriptedCompleter(outlineJSON), nil)
	for i := 0; i < 3; i++ {
		if _, err := a.CreatePlan(context.Background(), "req"); err != nil {
			t.Fatalf("CreatePlan error: %v", err)
		}
	}
	plans, err := a.ListPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPlans error: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
}
