package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRetrievalClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/retrieve" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key123" {
			t.Errorf("unexpected auth header %q", got)
		}
		var in struct {
			Query string `json:"query"`
			TopK  int    `json:"top_k"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if in.Query != "react hooks" || in.TopK != 5 {
			t.Errorf("unexpected request %+v", in)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"content": "useEffect runs after render", "score": 0.91, "source": "docs"},
			},
		})
	}))
	defer srv.Close()

	c := NewRetrievalClient(srv.URL, "key123")
	results, err := c.Search(context.Background(), "react hooks", 0)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(results) != 1 || results[0].Score != 0.91 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestRetrievalClient_SearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kb offline", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewRetrievalClient(srv.URL, "")
	_, err := c.Search(context.Background(), "q", 3)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestContextForGeneration_FormatsSections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"content": "chunk one", "score": 0.9},
				{"content": "chunk two", "score": 0.5},
			},
		})
	}))
	defer srv.Close()

	c := NewRetrievalClient(srv.URL, "")
	out, err := c.ContextForGeneration(context.Background(), "q")
	if err != nil {
		t.Fatalf("ContextForGeneration error: %v", err)
	}
	if !strings.HasPrefix(out, "## Retrieved Context\n") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "### Source 1 (Score: 0.90)\nchunk one") {
		t.Fatalf("missing first section: %q", out)
	}
	if !strings.Contains(out, "### Source 2 (Score: 0.50)\nchunk two") {
		t.Fatalf("missing second section: %q", out)
	}
}

func TestContextForGeneration_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	c := NewRetrievalClient(srv.URL, "")
	out, err := c.ContextForGeneration(context.Background(), "q")
	if err != nil {
		t.Fatalf("ContextForGeneration error: %v", err)
	}
	if out != "No relevant context found in Knowledge Base." {
		t.Fatalf("unexpected output %q", out)
	}
}
