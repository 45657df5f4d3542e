package plan

import "testing"

func TestParseOutline_ValidJSON(t *testing.T) {
	text := "Here is the outline:\n" + `{
  "document_type": "srs",
  "title": "Chat App SRS",
  "sections": [
    {"title": "Overview", "description": "intro", "subsections": ["Scope"], "estimated_length": "short"},
    {"description": "no title given"}
  ]
}`
	result := ParseOutline(text)
	if result.Fallback {
		t.Fatalf("expected parsed outline, got fallback: %s", result.Reason)
	}
	o := result.Outline
	if o.DocumentType != "srs" || o.Title != "Chat App SRS" {
		t.Fatalf("unexpected outline header %+v", o)
	}
	if len(o.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(o.Sections))
	}
	if o.Sections[0].EstimatedLength != "short" {
		t.Fatalf("explicit length must survive, got %q", o.Sections[0].EstimatedLength)
	}
	second := o.Sections[1]
	if second.Title != "Untitled" {
		t.Fatalf("missing title must default, got %q", second.Title)
	}
	if second.EstimatedLength != "medium" {
		t.Fatalf("missing length must default, got %q", second.EstimatedLength)
	}
	if second.Subsections == nil || len(second.Subsections) != 0 {
		t.Fatalf("missing subsections must default to empty, got %#v", second.Subsections)
	}
}

func TestParseOutline_MissingHeaderFieldsStayEmpty(t *testing.T) {
	result := ParseOutline(`{"sections": []}`)
	if result.Fallback {
		t.Fatal("valid JSON must not fall back")
	}
	if result.Outline.DocumentType != "" || result.Outline.Title != "" {
		t.Fatalf("caller applies header defaults, got %+v", result.Outline)
	}
}

func TestParseOutline_NoJSONFallsBack(t *testing.T) {
	result := ParseOutline("I could not produce an outline, sorry.")
	if !result.Fallback {
		t.Fatal("expected fallback")
	}
	if result.Reason == "" {
		t.Fatal("fallback must carry a reason")
	}
	o := result.Outline
	if o.DocumentType != "custom" || o.Title != "Document" {
		t.Fatalf("unexpected fallback header %+v", o)
	}
	if len(o.Sections) != 1 || o.Sections[0].Title != "Overview" {
		t.Fatalf("unexpected fallback sections %+v", o.Sections)
	}
	if o.Sections[0].Description != "Introduction and overview" {
		t.Fatalf("unexpected fallback description %q", o.Sections[0].Description)
	}
}

func TestParseOutline_MalformedJSONFallsBack(t *testing.T) {
	result := ParseOutline(`{"title": "x", "sections": [`)
	if !result.Fallback {
		t.Fatal("expected fallback on malformed JSON")
	}
}
