package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DB_DSN     string
	JWTSecret  string
	GitHubRepo string
}

// Load reads configuration from the environment, with .env as a fallback.
// An empty DB_DSN selects the in-memory store.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:       getEnv("APP_PORT", "8080"),
		DB_DSN:     getEnv("DB_DSN", ""),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		GitHubRepo: getEnv("GITHUB_REPO", "AvelDev/EasyFood"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
