package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	LLM       LLMConfig
	Plans     PlanStoreConfig
	Context7  Context7Config
	Retrieval RetrievalConfig
}

type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

type PlanStoreConfig struct {
	PostgresDSN string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
	CacheSize   int
}

type Context7Config struct {
	Endpoint string
	APIKey   string
}

type RetrievalConfig struct {
	Endpoint string
	APIKey   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:      *port,
		Env:       env,
		LLM:       loadLLMConfig(),
		Plans:     loadPlanStoreConfig(env),
		Context7:  loadContext7Config(),
		Retrieval: loadRetrievalConfig(),
	}, nil
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		provider = "gemini"
	}
	return LLMConfig{
		Provider: provider,
		Model:    strings.TrimSpace(os.Getenv("LLM_MODEL")),
		APIKey: firstNonEmpty(
			strings.TrimSpace(os.Getenv("LLM_API_KEY")),
			strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		),
		BaseURL: strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
	}
}

func loadPlanStoreConfig(env string) PlanStoreConfig {
	return PlanStoreConfig{
		PostgresDSN: strings.TrimSpace(os.Getenv("PLANS_POSTGRES_DSN")),
		S3Endpoint:  resolvePlanS3Endpoint(env),
		S3AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("PLANS_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		S3SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("PLANS_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		S3Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("PLANS_S3_BUCKET")), "docforge-plans"),
		S3UseSSL:    resolvePlanS3UseSSL(env),
		CacheSize:   resolvePlanCacheSize(),
	}
}

func resolvePlanS3Endpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("PLANS_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("PLANS_S3_ENDPOINT"))
}

func resolvePlanS3UseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("PLANS_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func resolvePlanCacheSize() int {
	raw := strings.TrimSpace(os.Getenv("PLANS_CACHE_SIZE"))
	if raw == "" {
		return 128
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 128
	}
	return n
}

func loadContext7Config() Context7Config {
	return Context7Config{
		Endpoint: strings.TrimSpace(os.Getenv("CONTEXT7_MCP_URL")),
		APIKey:   strings.TrimSpace(os.Getenv("CONTEXT7_API_KEY")),
	}
}

func loadRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		Endpoint: strings.TrimSpace(os.Getenv("RETRIEVAL_ENDPOINT")),
		APIKey:   strings.TrimSpace(os.Getenv("RETRIEVAL_API_KEY")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
