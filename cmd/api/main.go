package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"docforge/internal/config"
	"docforge/internal/critic"
	"docforge/internal/docgen"
	"docforge/internal/llm"
	"docforge/internal/plan"
	"docforge/internal/planstore"
	"docforge/internal/prompt"
	"docforge/internal/provider"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	completer, err := buildCompleter(cfg)
	if err != nil {
		log.Fatalf("init llm: %v", err)
	}
	defer completer.Close()
	log.Printf("LLM provider: %s", completer.Name())

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("init plan store: %v", err)
	}

	prompts := prompt.NewLoader()

	docs := provider.NewContext7Client(cfg.Context7.Endpoint, cfg.Context7.APIKey)
	defer docs.Close()

	var retriever docgen.Retriever
	if cfg.Retrieval.Endpoint != "" {
		retriever = provider.NewRetrievalClient(cfg.Retrieval.Endpoint, cfg.Retrieval.APIKey)
	}

	builder := docgen.NewContextBuilder(docs, retriever)
	reviewer := critic.New(completer, prompts)
	generator := docgen.NewGenerator(completer, prompts, reviewer, builder)
	agent := plan.NewAgent(completer, prompts, store, generator)

	s := &apiServer{
		completer: completer,
		prompts:   prompts,
		reviewer:  reviewer,
		builder:   builder,
		generator: generator,
		store:     store,
		agent:     agent,
		jobs:      newJobStore(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/documents/generate", s.handleGenerateDocument)
	mux.HandleFunc("/api/documents/validate", s.handleValidateDocument)
	mux.HandleFunc("/api/plans", s.handlePlans)
	mux.HandleFunc("/api/plans/", s.handlePlanByID)
	mux.HandleFunc("/api/watch/", s.handleWatchSSE)
	mux.HandleFunc("/api/ws/", s.handleWatchWS)

	// Simple CORS middleware
	h := http.Handler(mux)
	h = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Vary", "Origin")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	}(h)

	log.Printf("Starting API server on %s", cfg.Port)
	log.Fatal(http.ListenAndServe(cfg.Port, h2c.NewHandler(h, &http2.Server{})))
}

func buildCompleter(cfg *config.Config) (llm.Completer, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return llm.NewOpenAICompleter(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	case "scripted":
		return llm.NewScriptedCompleter(), nil
	default:
		return llm.NewGeminiCompleter(context.Background(), cfg.LLM.Model)
	}
}

// buildStore picks the first configured backend: postgres, then S3, then
// in-memory. Everything but memory gets a read cache in front.
func buildStore(cfg *config.Config) (planstore.Store, error) {
	var (
		inner planstore.Store
		err   error
	)
	switch {
	case cfg.Plans.PostgresDSN != "":
		inner, err = planstore.NewPostgresStore(cfg.Plans.PostgresDSN)
		log.Printf("plan store: postgres")
	case cfg.Plans.S3Endpoint != "":
		inner, err = planstore.NewS3Store(planstore.S3Config{
			Endpoint:  cfg.Plans.S3Endpoint,
			AccessKey: cfg.Plans.S3AccessKey,
			SecretKey: cfg.Plans.S3SecretKey,
			Bucket:    cfg.Plans.S3Bucket,
			UseSSL:    cfg.Plans.S3UseSSL,
		})
		log.Printf("plan store: s3 bucket %s", cfg.Plans.S3Bucket)
	default:
		log.Printf("plan store: in-memory (plans are not persisted)")
		return planstore.NewMemoryStore(), nil
	}
	if err != nil {
		return nil, err
	}
	return planstore.NewCachedStore(inner, cfg.Plans.CacheSize)
}
