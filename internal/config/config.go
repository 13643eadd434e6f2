package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Memory    MemoryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	VaultRoot          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama"
	EmbeddingModel    string // e.g. "nomic-embed-text"
	OllamaBaseURL     string
	LLMProvider       string // "ollama"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	ClassifierModel   string // small model for intent labels; empty = LLMModel
}

type RetrievalConfig struct {
	SimilarityThreshold float64
	TopK                int
	WebMaxResults       int
	WebCacheTTLMinutes  int
}

// MemoryConfig holds per-platform conversation window policies.
type MemoryConfig struct {
	DesktopMaxMessages int
	DesktopMaxChars    int
	MobileMaxMessages  int
	MobileMaxChars     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm_rag.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			VaultRoot:          getEnv("VAULT_ROOT", "./vault"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			ClassifierModel:   getEnv("CLASSIFIER_MODEL", ""),
		},
		Retrieval: RetrievalConfig{
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.35),
			TopK:                getEnvAsInt("RETRIEVAL_TOP_K", 10),
			WebMaxResults:       getEnvAsInt("WEB_MAX_RESULTS", 5),
			WebCacheTTLMinutes:  getEnvAsInt("WEB_CACHE_TTL_MINUTES", 15),
		},
		Memory: MemoryConfig{
			DesktopMaxMessages: getEnvAsInt("MEMORY_DESKTOP_MAX_MESSAGES", 50),
			DesktopMaxChars:    getEnvAsInt("MEMORY_DESKTOP_MAX_CHARS", 16000),
			MobileMaxMessages:  getEnvAsInt("MEMORY_MOBILE_MAX_MESSAGES", 30),
			MobileMaxChars:     getEnvAsInt("MEMORY_MOBILE_MAX_CHARS", 8000),
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
