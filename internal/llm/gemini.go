package llm

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	genai "google.golang.org/genai"
)

// GeminiCompleter is a thin wrapper around the official genai client.
type GeminiCompleter struct {
	cli   *genai.Client
	model string
	rl    *rpsLimiter
}

func NewGeminiCompleter(ctx context.Context, model string) (*GeminiCompleter, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	// Optional RPS limiter via env: LLM_RPS/GEMINI_RPS and LLM_BURST/GEMINI_BURST
	var rps float64
	var burst int
	for _, key := range []string{"LLM_RPS", "GEMINI_RPS"} {
		if rps != 0 {
			break
		}
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				rps = f
			}
		}
	}
	for _, key := range []string{"LLM_BURST", "GEMINI_BURST"} {
		if burst != 0 {
			break
		}
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				burst = n
			}
		}
	}
	return &GeminiCompleter{cli: cli, model: model, rl: newRPSLimiter(rps, burst)}, nil
}

func (g *GeminiCompleter) Name() string { return "Gemini:" + g.model }
func (g *GeminiCompleter) Close() error {
	g.rl.Stop()
	return nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	log.Printf("llm: request (%s): %d bytes", OpFrom(ctx), len(prompt))

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		// Each API call consumes a limiter token.
		if err := g.rl.Acquire(ctx); err != nil {
			lastErr = err
			break
		}
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			nil,
		)
		if err != nil {
			lastErr = err
		} else if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrEmptyCompletion
		} else {
			return resp.Candidates[0].Content.Parts[0].Text, nil
		}
		time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
	}
	return "", lastErr
}
