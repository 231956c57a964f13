package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-level settings read from the environment.
type Config struct {
	Port          string
	DatabaseURL   string
	GeminiAPIKey  string
	GeminiModel   string
	RemoteTimeout time.Duration
}

// Load reads configuration from .env (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Config{
		Port:          os.Getenv("PORT"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		RemoteTimeout: 15 * time.Second,
	}

	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.GeminiModel == "" {
		// Flash for speed/cost balance
		cfg.GeminiModel = "gemini-1.5-flash"
	}
	if v := os.Getenv("REMOTE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RemoteTimeout = d
		}
	}

	return cfg
}
