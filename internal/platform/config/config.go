// Package config builds runtime configuration from environment variables so
// main stays lean. All variables share the FASTPASS_ prefix.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process level configuration.
type Config struct {
	Addr string
	// HostURL is the public origin this service is reachable at. The embed
	// script uses it to open the popup and to filter postMessage events.
	HostURL string

	SessionSigningKey string
	SessionTTL        time.Duration

	// AdminKeyHash is the bcrypt hash of the admin key gating verification.
	// Empty disables admin actions.
	AdminKeyHash string

	// PostgresURL enables the Postgres stores when set; otherwise everything
	// runs in memory.
	PostgresURL string

	Redis RedisConfig
	Kafka KafkaConfig

	// CloseDelay is how long the popup stays open after dispatching a result.
	CloseDelay time.Duration

	// EmbedRPS / EmbedBurst bound unauthenticated embed traffic per client.
	EmbedRPS   float64
	EmbedBurst int
}

// RedisConfig captures Redis connection configuration.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the optional activity log publisher configuration.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:              getenv("FASTPASS_ADDR", ":8080"),
		HostURL:           getenv("FASTPASS_HOST_URL", "http://localhost:8080"),
		SessionSigningKey: getenv("FASTPASS_SESSION_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:        getduration("FASTPASS_SESSION_TTL", 24*time.Hour),
		AdminKeyHash:      os.Getenv("FASTPASS_ADMIN_KEY_HASH"),
		PostgresURL:       os.Getenv("FASTPASS_POSTGRES_URL"),
		CloseDelay:        getduration("FASTPASS_CLOSE_DELAY", 1500*time.Millisecond),
		EmbedRPS:          getfloat("FASTPASS_EMBED_RPS", 10),
		EmbedBurst:        getint("FASTPASS_EMBED_BURST", 20),
		Redis: RedisConfig{
			URL:          os.Getenv("FASTPASS_REDIS_URL"),
			PoolSize:     getint("FASTPASS_REDIS_POOL_SIZE", 10),
			MinIdleConns: getint("FASTPASS_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getduration("FASTPASS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getduration("FASTPASS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getduration("FASTPASS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: split(os.Getenv("FASTPASS_KAFKA_BROKERS")),
			Topic:   getenv("FASTPASS_KAFKA_TOPIC", "fastpass.activity"),
		},
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getfloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
