package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration, loaded from environment variables.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	CORSOrigins    string
	GuardrailsPath string

	// Collaborator timeout applied to every external call (LLM, retrieval,
	// directory). A failed or timed-out call degrades to the rule-based
	// fallback; it never fails the request.
	CollaboratorTimeout time.Duration

	// AWS / Bedrock
	AWSRegion               string
	BedrockModelID          string
	BedrockEmbeddingModelID string

	// Gemini fallback provider
	GeminiAPIKey  string
	GeminiModelID string

	// Retrieval
	RAGTopK      int
	KnowledgeDir string

	// Emergency directory
	DefaultCountry    string
	RedisAddr         string
	RedisPassword     string
	DirectoryCacheTTL time.Duration
}

// Load reads configuration from the environment. A .env file is honored when
// present; missing values fall back to development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", ""),
		GuardrailsPath: getEnv("GUARDRAILS_PATH", "guardrails.yaml"),

		CollaboratorTimeout: getEnvAsDuration("COLLABORATOR_TIMEOUT", 10*time.Second),

		AWSRegion:               getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID:          getEnv("BEDROCK_MODEL_ID", ""),
		BedrockEmbeddingModelID: getEnv("BEDROCK_EMBEDDING_MODEL_ID", "amazon.titan-embed-text-v2:0"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		RAGTopK:      getEnvAsInt("RAG_TOP_K", 4),
		KnowledgeDir: getEnv("KNOWLEDGE_DIR", ""),

		DefaultCountry:    getEnv("DEFAULT_COUNTRY", "LK"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		DirectoryCacheTTL: getEnvAsDuration("DIRECTORY_CACHE_TTL", 12*time.Hour),
	}
}

// HasBedrock reports whether a Bedrock generation model is configured.
func (c *Config) HasBedrock() bool { return c.BedrockModelID != "" }

// HasGemini reports whether the Gemini fallback provider is configured.
func (c *Config) HasGemini() bool { return c.GeminiAPIKey != "" }

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a
// default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
