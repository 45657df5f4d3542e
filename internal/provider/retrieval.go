package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// RetrievalResult is one chunk returned by the knowledge-base service.
type RetrievalResult struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Source   string         `json:"source,omitempty"`
}

// RetrievalClient talks to an external RAG retrieval service over HTTP.
type RetrievalClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	topK    int
}

func NewRetrievalClient(baseURL, apiKey string) *RetrievalClient {
	return &RetrievalClient{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		topK:    5,
	}
}

// Search posts a query to the retrieval endpoint and returns the scored
// chunks. topK <= 0 falls back to the client default.
func (r *RetrievalClient) Search(ctx context.Context, query string, topK int) ([]RetrievalResult, error) {
	if r == nil || r.baseURL == "" {
		return nil, fmt.Errorf("retrieval: client is not configured")
	}
	if topK <= 0 {
		topK = r.topK
	}

	body, err := json.Marshal(map[string]any{
		"query": query,
		"top_k": topK,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/retrieve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("retrieval: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("retrieval: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload struct {
		Results []RetrievalResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("retrieval: decode response: %w", err)
	}
	return payload.Results, nil
}

// ContextForGeneration formats the top search hits as a markdown section
// ready to inline into a generation prompt.
func (r *RetrievalClient) ContextForGeneration(ctx context.Context, query string) (string, error) {
	results, err := r.Search(ctx, query, 0)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No relevant context found in Knowledge Base.", nil
	}
	log.Printf("retrieval: %d chunks for query %q", len(results), query)

	var b strings.Builder
	b.WriteString("## Retrieved Context\n")
	for i, res := range results {
		fmt.Fprintf(&b, "\n### Source %d (Score: %.2f)\n%s\n", i+1, res.Score, strings.TrimSpace(res.Content))
	}
	return b.String(), nil
}
