package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every environment-driven setting of the importer server.
type Config struct {
	Port          string
	PublicBaseURL string

	GitHubAPIURL      string
	GitHubCodeloadURL string
	GitHubToken       string

	MaxRepoSizeMB   int
	RateLimitMax    int
	RateLimitWindow time.Duration

	ContainerStore string // "redis" (default) or "postgres"
	RedisAddr      string
	PostgresURL    string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from the environment, consulting a local .env
// file first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          os.Getenv("PORT"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		GitHubAPIURL:      os.Getenv("GITHUB_API_URL"),
		GitHubCodeloadURL: os.Getenv("GITHUB_CODELOAD_URL"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),

		MaxRepoSizeMB:   envInt("MAX_REPO_SIZE_MB", 100),
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", 60*time.Second),

		ContainerStore: os.Getenv("CONTAINER_STORE"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		PostgresURL:    os.Getenv("POSTGRES_URL"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.GitHubAPIURL == "" {
		cfg.GitHubAPIURL = "https://api.github.com"
	}
	if cfg.GitHubCodeloadURL == "" {
		cfg.GitHubCodeloadURL = "https://codeload.github.com"
	}
	if cfg.ContainerStore == "" {
		cfg.ContainerStore = "redis"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}

	return cfg
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
