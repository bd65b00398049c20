package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"

	StorageS3     = "s3"
	StorageMemory = "memory"
)

const defaultDatabaseURL = "data/docvault.db"

type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string

	// Blob storage
	StorageBackend    string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3Region          string
	S3UseSSL          bool
	SignedURLTTL      time.Duration

	// Extraction model
	ExtractionProvider string
	ExtractionTimeout  time.Duration
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	OpenRouterAPIKey   string
	OpenRouterModel    string
	OpenRouterBaseURL  string

	// Auth
	JWTSecret string

	// Upload limits
	MaxFileSize int64
}

func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", defaultDatabaseURL),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StorageBackend:     getEnv("STORAGE_BACKEND", StorageS3),
		S3Endpoint:         getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "documents"),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3UseSSL:           getEnv("S3_USE_SSL", "false") == "true",
		SignedURLTTL:       time.Duration(getEnvInt("SIGNED_URL_TTL", 3600)) * time.Second,
		ExtractionProvider: getEnv("EXTRACTION_PROVIDER", ProviderGemini),
		ExtractionTimeout:  time.Duration(getEnvInt("EXTRACTION_TIMEOUT", 60)) * time.Second,
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:    getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterBaseURL:  getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		MaxFileSize:        int64(getEnvInt("MAX_FILE_SIZE", 10*1024*1024)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	switch c.ExtractionProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required")
		}
	default:
		return fmt.Errorf("unknown EXTRACTION_PROVIDER %q", c.ExtractionProvider)
	}

	switch c.StorageBackend {
	case StorageS3, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}

	return nil
}

// DatabaseURL reads only the database setting. Tools that never serve
// requests use it instead of Load.
func DatabaseURL() string {
	loadDotEnv()
	return getEnv("DATABASE_URL", defaultDatabaseURL)
}

// loadDotEnv reads an optional .env; plain environment variables win when
// both are set.
func loadDotEnv() {
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
