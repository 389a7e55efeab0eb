package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Session  SessionConfig
	Prompt   PromptConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	InstanceID         string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	JwtSecret      string
	IndexTopicName string
}

type AIConfig struct {
	ChatMode string // "local" or "remote"

	OllamaBaseURL        string
	OllamaModel          string
	OllamaEmbeddingModel string

	RemoteBaseURL     string
	RemoteAPIKey      string
	RemoteModel       string
	RemoteTemperature float64
	RemoteMaxTokens   int

	EmbeddingProvider  string // "ollama" or "openai"
	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	EmbeddingModel     string
	EmbeddingDimension int

	VectorBackend       string // "memory" or "pgvector"
	SimilarityThreshold float64
	TopK                int

	GenerationTimeout time.Duration
	EmbeddingTimeout  time.Duration
	BreakerCooldown   time.Duration

	ReindexConcurrency int
	ReindexRatePerSec  float64
}

type SessionConfig struct {
	Store           string // "memory" or "redis"
	TTL             time.Duration
	CleanupInterval time.Duration
}

type PromptConfig struct {
	System               string
	PreventHallucination string
	Citation             string
	FormatInstruction    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm_rag.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			InstanceID:         getEnv("INSTANCE_ID", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			JwtSecret:      getEnv("JWT_SECRET", ""),
			IndexTopicName: getEnv("INDEX_SEGMENT_TOPIC_NAME", "INDEX_SEGMENT"),
		},
		Ai: AIConfig{
			ChatMode: getEnv("CHAT_MODE", "local"),

			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("OLLAMA_MODEL", "qwen2.5:7b"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),

			RemoteBaseURL:     getEnv("REMOTE_LLM_BASE_URL", "https://api.deepseek.com/v1"),
			RemoteAPIKey:      getEnv("REMOTE_LLM_API_KEY", ""),
			RemoteModel:       getEnv("REMOTE_LLM_MODEL", "deepseek-chat"),
			RemoteTemperature: getEnvAsFloat("REMOTE_LLM_TEMPERATURE", 0.7),
			RemoteMaxTokens:   getEnvAsInt("REMOTE_LLM_MAX_TOKENS", 2048),

			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
			EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),

			VectorBackend:       getEnv("VECTOR_BACKEND", "memory"),
			SimilarityThreshold: getEnvAsFloat("RAG_SIMILARITY_THRESHOLD", 0.7),
			TopK:                getEnvAsInt("RAG_TOP_K", 3),

			GenerationTimeout: getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			EmbeddingTimeout:  getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
			BreakerCooldown:   getEnvAsDuration("LLM_BREAKER_COOLDOWN", 30*time.Second),

			ReindexConcurrency: getEnvAsInt("REINDEX_CONCURRENCY", 4),
			ReindexRatePerSec:  getEnvAsFloat("REINDEX_RATE_PER_SEC", 10),
		},
		Session: SessionConfig{
			Store:           getEnv("SESSION_STORE", "memory"),
			TTL:             getEnvAsDuration("SESSION_TTL", time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Prompt: PromptConfig{
			System:               getEnv("PROMPT_SYSTEM", ""),
			PreventHallucination: getEnv("PROMPT_PREVENT_HALLUCINATION", ""),
			Citation:             getEnv("PROMPT_CITATION", ""),
			FormatInstruction:    getEnv("PROMPT_FORMAT_INSTRUCTION", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
