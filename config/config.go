package config

import (
	"os"
	"strconv"
	"time"
)

const (
	ProviderNVIDIA  = "nvidia"
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderOffline = "offline"
)

type LLMConfig struct {
	Provider string
	Model    string
}

type EmbeddingConfig struct {
	Provider  string
	Model     string
	Dimension int
}

// FactCheckConfig carries the chunking and classification thresholds used
// when scoring a generated script against its source paper.
type FactCheckConfig struct {
	ChunkSize      int
	ValidThreshold float64
	PassThreshold  float64
}

type Config struct {
	LLM        LLMConfig
	Embeddings EmbeddingConfig
	FactCheck  FactCheckConfig

	NIMEndpoint string
	NIMAPIKey   string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// RequestTimeout bounds a single gateway call. Generation against the
	// hosted NIM catalog can take minutes for long papers.
	RequestTimeout time.Duration

	PostgresDSN string
	Neo4jURI    string
	Neo4jUser   string
	Neo4jPass   string

	APIAddr string
}

func Load() Config {
	return Config{
		LLM: LLMConfig{
			Provider: getEnv("PAPERCAST_LLM_PROVIDER", ProviderNVIDIA),
			Model:    getEnv("PAPERCAST_LLM_MODEL", "nvidia/llama-3.1-nemotron-nano-8b-v1"),
		},
		Embeddings: EmbeddingConfig{
			Provider:  getEnv("PAPERCAST_EMBEDDING_PROVIDER", ProviderNVIDIA),
			Model:     getEnv("PAPERCAST_EMBEDDING_MODEL", "nvidia/nv-embedqa-e5-v5"),
			Dimension: getEnvInt("PAPERCAST_EMBEDDING_DIMENSION", 1024),
		},
		FactCheck: FactCheckConfig{
			ChunkSize:      getEnvInt("PAPERCAST_FACTCHECK_CHUNK_SIZE", 500),
			ValidThreshold: getEnvFloat("PAPERCAST_FACTCHECK_VALID_THRESHOLD", 0.7),
			PassThreshold:  getEnvFloat("PAPERCAST_FACTCHECK_PASS_THRESHOLD", 0.75),
		},
		NIMEndpoint:    getEnv("NVIDIA_NIM_ENDPOINT", "https://integrate.api.nvidia.com/v1"),
		NIMAPIKey:      getEnv("NVIDIA_API_KEY", ""),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		RequestTimeout: time.Duration(getEnvInt("PAPERCAST_REQUEST_TIMEOUT_SECONDS", 300)) * time.Second,
		PostgresDSN:    getEnv("POSTGRES_DSN", "postgres://localhost:5432/papercast?sslmode=disable"),
		Neo4jURI:       getEnv("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPass:      getEnv("NEO4J_PASSWORD", "password"),
		APIAddr:        getEnv("PAPERCAST_API_ADDR", ":8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
