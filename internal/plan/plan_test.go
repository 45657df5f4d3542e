package plan

import (
	"reflect"
	"testing"
)

func TestDocumentPlan_RoundTrip(t *testing.T) {
	original := &DocumentPlan{
		PlanID:       "abc-123",
		Status:       StatusFailed,
		UserRequest:  "write an SRS",
		DocumentType: "srs",
		Title:        "Chat App SRS",
		Sections: []SectionOutline{{
			Title:           "Overview",
			Description:     "intro",
			Subsections:     []string{"Scope", "Goals"},
			EstimatedLength: "short",
		}},
		CreatedAt:     "2026-03-01T12:00:00Z",
		UpdatedAt:     "2026-03-01T12:05:00Z",
		UserComments:  []string{"add a security section"},
		FinalDocument: "# done",
		Metadata:      Metadata{Error: "model timeout"},
	}

	data, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	decoded, err := DecodePlan(data)
	if err != nil {
		t.Fatalf("DecodePlan error: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", original, decoded)
	}
}

func TestDecodePlan_Invalid(t *testing.T) {
	if _, err := DecodePlan([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
