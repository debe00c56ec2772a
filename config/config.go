package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port    string
	GinMode string

	// External services (all optional; absence selects the heuristic path)
	SerperAPIKey string // competitive SERP lookup
	GoogleAPIKey string // PageSpeed audits
	OpenAIAPIKey string // AI writer

	// Persistence
	DatabasePath string
	DataDir      string

	// Predictor
	EnsembleEnabled bool
	EnsemblePasses  int

	// Outbound crawling
	UserAgent      string
	CrawlRPS       float64
	FetchTimeoutMs int
}

// Load reads configuration from .env files and environment variables with
// sensible defaults.
func Load() *Config {
	// .env.development first for local work, then plain .env
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}

	return &Config{
		Port:            getEnv("PORT", "8082"),
		GinMode:         getEnv("GIN_MODE", ""),
		SerperAPIKey:    os.Getenv("SERPER_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		DatabasePath:    getEnv("DATABASE_PATH", "rankforge.db"),
		DataDir:         getEnv("DATA_DIR", "data"),
		EnsembleEnabled: getEnvBool("ENSEMBLE_ENABLED", true),
		EnsemblePasses:  getEnvInt("ENSEMBLE_PASSES", 30),
		UserAgent:       getEnv("CRAWLER_USER_AGENT", "RankForgeBot/1.0"),
		CrawlRPS:        getEnvFloat("CRAWL_RPS", 4),
		FetchTimeoutMs:  getEnvInt("FETCH_TIMEOUT_MS", 30000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
