package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort    string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	CORSOrigins   []string
	SwaggerHost   string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/todos?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		SessionSecret: getEnv("SESSION_SECRET", "change-me"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 168*time.Hour),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
