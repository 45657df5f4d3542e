package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"docforge/internal/critic"
	"docforge/internal/docgen"
	"docforge/internal/llm"
	"docforge/internal/plan"
	"docforge/internal/planstore"
	"docforge/internal/prompt"
	"docforge/internal/render"
)

type apiServer struct {
	completer llm.Completer
	prompts   *prompt.Loader
	reviewer  *critic.Critic
	builder   *docgen.ContextBuilder
	generator *docgen.Generator
	store     planstore.Store
	agent     *plan.Agent
	jobs      *jobStore
}

// jobGenerator builds a generator whose completions report progress for
// jobID.
func (s *apiServer) jobGenerator(jobID string) *docgen.Generator {
	hooked := llm.WithHook(s.completer, s.jobs.hookFor(jobID))
	return docgen.NewGenerator(hooked, s.prompts, critic.New(hooked, s.prompts), s.builder)
}

// jobAgent builds an agent whose completions report progress for jobID.
func (s *apiServer) jobAgent(jobID string) *plan.Agent {
	hooked := llm.WithHook(s.completer, s.jobs.hookFor(jobID))
	return plan.NewAgent(hooked, s.prompts, s.store, s.jobGenerator(jobID))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"llm":    s.completer.Name(),
	})
}

// handleGenerateDocument runs a full generation, synchronously by default
// or as a watchable background job with ?watch=1.
func (s *apiServer) handleGenerateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		DocumentType      string   `json:"document_type"`
		Requirements      string   `json:"requirements"`
		LibraryName       string   `json:"library_name"`
		Topics            []string `json:"topics"`
		Query             string   `json:"query"`
		AdditionalContext string   `json:"additional_context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(in.Requirements) == "" {
		writeError(w, http.StatusBadRequest, "requirements is required")
		return
	}
	if in.DocumentType == "" {
		in.DocumentType = string(docgen.TypeSRS)
	}

	req := docgen.GenerateRequest{
		Type:              docgen.DocumentType(in.DocumentType),
		Requirements:      in.Requirements,
		LibraryName:       in.LibraryName,
		Topics:            in.Topics,
		Query:             in.Query,
		AdditionalContext: in.AdditionalContext,
	}

	// ?watch=1 runs the job in the background; progress and the final
	// document stream on /api/watch/{job} and /api/ws/{job}.
	if r.URL.Query().Get("watch") == "1" {
		jobID := uuid.NewString()
		s.jobs.start(jobID)
		go func() {
			doc, err := s.jobGenerator(jobID).Generate(context.Background(), req)
			if err != nil {
				s.jobs.finish(jobID, jobEvent{EventType: eventError, Message: err.Error()})
				return
			}
			s.jobs.finish(jobID, jobEvent{EventType: eventComplete, Message: "document generated", Result: doc})
		}()
		writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
		return
	}

	doc, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleValidateDocument reviews caller-supplied content without the model
// loop. The content-quality check is opt-in.
func (s *apiServer) handleValidateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Content      string `json:"content"`
		Requirements string `json:"requirements"`
		CheckContent bool   `json:"check_content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if in.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	report := s.reviewer.FullReview(r.Context(), in.Content, in.Requirements, in.CheckContent)
	writeJSON(w, http.StatusOK, report)
}

// handlePlans covers the collection: create and list.
func (s *apiServer) handlePlans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var in struct {
			UserRequest string `json:"user_request"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if strings.TrimSpace(in.UserRequest) == "" {
			writeError(w, http.StatusBadRequest, "user_request is required")
			return
		}
		p, err := s.agent.CreatePlan(r.Context(), in.UserRequest)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, p)
	case http.MethodGet:
		plans, err := s.agent.ListPlans(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handlePlanByID routes /api/plans/{id} and its subresources:
// comments, approve, generate, preview.
func (s *apiServer) handlePlanByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/plans/")
	planID, action, _ := strings.Cut(rest, "/")
	if planID == "" {
		writeError(w, http.StatusBadRequest, "plan_id required")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p, found, err := s.agent.GetPlan(r.Context(), planID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "plan not found")
			return
		}
		writeJSON(w, http.StatusOK, p)
	case "comments":
		s.handlePlanComment(w, r, planID)
	case "approve":
		s.handlePlanApprove(w, r, planID)
	case "generate":
		s.handlePlanGenerate(w, r, planID)
	case "preview":
		s.handlePlanPreview(w, r, planID)
	default:
		writeError(w, http.StatusNotFound, "unknown plan action")
	}
}

func (s *apiServer) handlePlanComment(w http.ResponseWriter, r *http.Request, planID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(in.Comment) == "" {
		writeError(w, http.StatusBadRequest, "comment is required")
		return
	}
	p, found, err := s.agent.AddComment(r.Context(), planID, in.Comment)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *apiServer) handlePlanApprove(w http.ResponseWriter, r *http.Request, planID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p, found, err := s.agent.ApprovePlan(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePlanGenerate starts generation in the background and returns a job
// ID immediately. Progress streams on /api/watch/{job} and /api/ws/{job}.
func (s *apiServer) handlePlanGenerate(w http.ResponseWriter, r *http.Request, planID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p, found, err := s.agent.GetPlan(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	if p.Status != plan.StatusApproved {
		writeError(w, http.StatusConflict, "plan is not approved")
		return
	}

	s.jobs.start(planID)
	go func() {
		// detached from the request; the job outlives the HTTP call
		agent := s.jobAgent(planID)
		result, found, err := agent.GenerateFromPlan(context.Background(), planID)
		switch {
		case err != nil:
			s.jobs.finish(planID, jobEvent{EventType: eventError, Message: err.Error()})
		case !found:
			s.jobs.finish(planID, jobEvent{EventType: eventError, Message: "plan is no longer approved"})
		case result.Status == plan.StatusFailed:
			s.jobs.finish(planID, jobEvent{EventType: eventError, Message: result.Metadata.Error})
		default:
			s.jobs.finish(planID, jobEvent{EventType: eventComplete, Message: "document generated"})
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": planID,
		"status": string(plan.StatusGenerating),
	})
}

// handlePlanPreview renders the completed document as HTML.
func (s *apiServer) handlePlanPreview(w http.ResponseWriter, r *http.Request, planID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p, found, err := s.agent.GetPlan(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	if p.FinalDocument == "" {
		writeError(w, http.StatusConflict, "plan has no generated document")
		return
	}
	html, err := render.HTML(p.FinalDocument)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}
