package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider identifies which text-generation backend to use.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	Port         string
	DatabasePath string
	CORSOrigin   string

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	AIProvider   Provider
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string

	DefaultPeople int
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	jwtRefreshSecret := os.Getenv("JWT_REFRESH_SECRET")
	if jwtRefreshSecret == "" {
		// Fallback to the access secret if only one is provided
		jwtRefreshSecret = jwtSecret
	}

	provider := Provider(os.Getenv("AI_PROVIDER"))
	if provider == "" {
		provider = ProviderGemini
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	groqAPIKey := os.Getenv("GROQ_API_KEY")
	switch provider {
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if groqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q", provider)
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-1.5-flash"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data/nutriplan.db"
	}

	defaultPeople := 1
	if v := os.Getenv("DEFAULT_PEOPLE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("DEFAULT_PEOPLE must be a positive integer, got %q", v)
		}
		defaultPeople = n
	}

	accessTTL, err := ttlFromEnv("JWT_EXPIRES_IN", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := ttlFromEnv("REFRESH_EXPIRES_IN", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:             port,
		DatabasePath:     dbPath,
		CORSOrigin:       os.Getenv("CORS_ORIGIN"),
		JWTSecret:        jwtSecret,
		JWTRefreshSecret: jwtRefreshSecret,
		AccessTokenTTL:   accessTTL,
		RefreshTokenTTL:  refreshTTL,
		AIProvider:       provider,
		GeminiAPIKey:     geminiAPIKey,
		GeminiModel:      geminiModel,
		GroqAPIKey:       groqAPIKey,
		DefaultPeople:    defaultPeople,
	}, nil
}

func ttlFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 15m or 24h, got %q", key, v)
	}
	return d, nil
}
