package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             int
	NatsURL          string
	NatsToken        string
	DatabaseURL      string
	LogLevel         string
	OpenRouterAPIKey string
	OpenRouterModel  string
	OpenRouterBase   string
	DataDir          string
	StatePath        string
	MemoryBucket     string
	MemoryTTL        time.Duration
	ChunkSize        int
	IndexChunkSize   int
	MaxRetries       int
	RetryDelay       time.Duration
	RateLimitDelay   time.Duration
	APIToken         string
}

func Load() Config {
	return Config{
		Port:             envInt("KRAMANK_PORT", 8760),
		NatsURL:          envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:        envStr("NATS_TOKEN", ""),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		OpenRouterAPIKey: envStr("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  envStr("OPENROUTER_MODEL", "qwen/qwen3-32b"),
		OpenRouterBase:   envStr("OPENROUTER_BASE_URL", ""),
		DataDir:          envStr("KRAMANK_DATA_DIR", "/data/ocr"),
		StatePath:        envStr("KRAMANK_STATE_PATH", "/data/kramank-run-state.json"),
		MemoryBucket:     envStr("KRAMANK_MEMORY_BUCKET", "kramank-extraction-memory"),
		MemoryTTL:        envDur("KRAMANK_MEMORY_TTL", time.Hour),
		ChunkSize:        envInt("KRAMANK_CHUNK_SIZE", 2000),
		IndexChunkSize:   envInt("KRAMANK_INDEX_CHUNK_SIZE", 3000),
		MaxRetries:       envInt("KRAMANK_MAX_RETRIES", 2),
		RetryDelay:       envDur("KRAMANK_RETRY_DELAY", time.Second),
		RateLimitDelay:   envDur("KRAMANK_RATE_LIMIT_DELAY", 2*time.Second),
		APIToken:         envStr("KRAMANK_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
