// Package plan implements the review workflow for document generation:
// outline first, user feedback, approval, then full generation.
package plan

import "encoding/json"

// Status is the lifecycle state of a document plan.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusGenerating    Status = "generating"
	StatusCompleted     Status = "completed"
	StatusFailed        Status = "failed"
)

// SectionOutline is one planned section of the document.
type SectionOutline struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Subsections     []string `json:"subsections"`
	EstimatedLength string   `json:"estimated_length"`
}

// Metadata carries auxiliary plan state, most notably the failure reason
// when generation fails.
type Metadata struct {
	Error string         `json:"error,omitempty"`
	Extra map[string]any `json:"extra,omitempty"`
}

// DocumentPlan is the persisted unit of the planning workflow. Timestamps
// are RFC 3339 UTC strings so the stored JSON round-trips exactly.
type DocumentPlan struct {
	PlanID        string           `json:"plan_id"`
	Status        Status           `json:"status"`
	UserRequest   string           `json:"user_request"`
	DocumentType  string           `json:"document_type"`
	Title         string           `json:"title"`
	Sections      []SectionOutline `json:"sections"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
	UserComments  []string         `json:"user_comments"`
	FinalDocument string           `json:"final_document,omitempty"`
	Metadata      Metadata         `json:"metadata"`
}

// Encode serializes the plan for storage.
func (p *DocumentPlan) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodePlan restores a plan from its stored form.
func DecodePlan(data []byte) (*DocumentPlan, error) {
	var p DocumentPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
