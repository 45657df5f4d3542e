package plan

import (
	"docforge/internal/util/jsonutil"
)

// Outline is the model-proposed document structure.
type Outline struct {
	DocumentType string           `json:"document_type"`
	Title        string           `json:"title"`
	Sections     []SectionOutline `json:"sections"`
}

// OutlineResult tags a parsed outline with its provenance: either the model
// produced usable JSON, or the built-in fallback structure was substituted.
type OutlineResult struct {
	Outline  Outline
	Fallback bool
	Reason   string
}

func fallbackOutline(reason string) OutlineResult {
	return OutlineResult{
		Outline: Outline{
			DocumentType: "custom",
			Title:        "Document",
			Sections: []SectionOutline{{
				Title:           "Overview",
				Description:     "Introduction and overview",
				Subsections:     []string{},
				EstimatedLength: "medium",
			}},
		},
		Fallback: true,
		Reason:   reason,
	}
}

// ParseOutline extracts the outline JSON from a model completion. Missing
// section fields get defaults; a completion with no parsable JSON object
// yields the fallback outline. DocumentType and Title stay empty when the
// model omits them so callers can apply their own defaults.
func ParseOutline(text string) OutlineResult {
	var raw struct {
		DocumentType string `json:"document_type"`
		Title        string `json:"title"`
		Sections     []struct {
			Title           string   `json:"title"`
			Description     string   `json:"description"`
			Subsections     []string `json:"subsections"`
			EstimatedLength string   `json:"estimated_length"`
		} `json:"sections"`
	}
	if err := jsonutil.UnmarshalExtracted(text, &raw); err != nil {
		return fallbackOutline(err.Error())
	}

	outline := Outline{
		DocumentType: raw.DocumentType,
		Title:        raw.Title,
		Sections:     make([]SectionOutline, 0, len(raw.Sections)),
	}
	for _, s := range raw.Sections {
		section := SectionOutline{
			Title:           s.Title,
			Description:     s.Description,
			Subsections:     s.Subsections,
			EstimatedLength: s.EstimatedLength,
		}
		if section.Title == "" {
			section.Title = "Untitled"
		}
		if section.EstimatedLength == "" {
			section.EstimatedLength = "medium"
		}
		if section.Subsections == nil {
			section.Subsections = []string{}
		}
		outline.Sections = append(outline.Sections, section)
	}
	return OutlineResult{Outline: outline}
}
