package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Memory   MemoryConfig
	Rag      RagConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	RequestTimeout     time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type MemoryConfig struct {
	SessionTimeout         time.Duration
	SessionCleanupInterval time.Duration
	ShortTermTTL           time.Duration
	MaxConversationHistory int
	MaxRecentInteractions  int
}

type RagConfig struct {
	DocumentCorpusID    string
	MemoryCorpusID      string
	MaxRetrievalDocs    int
	TopK                int
	SimilarityThreshold float64
	HybridAlpha         float64
	EnableReranking     bool
	MaxResults          int
	SnippetLength       int
	AnalyticsSubject    string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", ...
	LLMModel          string // e.g. "llama3", "qwen2.5"
	GeminiAPIKey      string
	CallTimeout       time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8080"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT_SECONDS", 30*time.Second),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Memory: MemoryConfig{
			SessionTimeout:         getEnvAsDuration("SESSION_TIMEOUT_SECONDS", time.Hour),
			SessionCleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL_SECONDS", 10*time.Minute),
			ShortTermTTL:           getEnvAsDuration("SHORT_TERM_MEMORY_TTL_SECONDS", 24*time.Hour),
			MaxConversationHistory: getEnvAsInt("MAX_CONVERSATION_HISTORY", 50),
			MaxRecentInteractions:  getEnvAsInt("MAX_RECENT_INTERACTIONS", 100),
		},
		Rag: RagConfig{
			DocumentCorpusID:    getEnv("RAG_DOCUMENT_CORPUS_ID", "documents"),
			MemoryCorpusID:      getEnv("RAG_MEMORY_CORPUS_ID", "conversations"),
			MaxRetrievalDocs:    getEnvAsInt("MAX_RETRIEVAL_DOCUMENTS", 10),
			TopK:                getEnvAsInt("RETRIEVAL_TOP_K", 10),
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.7),
			HybridAlpha:         getEnvAsFloat("HYBRID_SEARCH_ALPHA", 0.6),
			EnableReranking:     getEnvAsBool("ENABLE_RERANKING", true),
			MaxResults:          getEnvAsInt("MAX_QUERY_RESULTS", 5),
			SnippetLength:       getEnvAsInt("SOURCE_SNIPPET_LENGTH", 200),
			AnalyticsSubject:    getEnv("ANALYTICS_NATS_SUBJECT", "interaction_logged"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			CallTimeout:       getEnvAsDuration("AI_CALL_TIMEOUT_SECONDS", 30*time.Second),
		},
	}
}

// Validate rejects out-of-range retrieval weights at startup so that
// per-call code never has to re-check them.
func (c *Config) Validate() error {
	if c.Rag.HybridAlpha < 0 || c.Rag.HybridAlpha > 1 {
		return fmt.Errorf("HYBRID_SEARCH_ALPHA must be between 0 and 1, got %v", c.Rag.HybridAlpha)
	}
	if c.Rag.SimilarityThreshold < 0 || c.Rag.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be between 0 and 1, got %v", c.Rag.SimilarityThreshold)
	}
	if c.Memory.MaxConversationHistory <= 0 {
		return fmt.Errorf("MAX_CONVERSATION_HISTORY must be positive, got %d", c.Memory.MaxConversationHistory)
	}
	if c.Memory.MaxRecentInteractions <= 0 {
		return fmt.Errorf("MAX_RECENT_INTERACTIONS must be positive, got %d", c.Memory.MaxRecentInteractions)
	}
	return nil
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(value) * time.Second
	}
	return fallback
}
