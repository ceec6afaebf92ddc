package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	// Empty DBURL means the API runs on in-memory stores (local demo mode).
	DBURL string

	JWTSecret     string
	UserTokenTTL  time.Duration
	AdminTokenTTL time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration

	GoogleAPIKey    string
	GoogleCSEID     string
	UpstreamTimeout time.Duration

	// Seed identities, upserted at startup. Credentials come from the
	// environment so nothing secret lives in the binary.
	SeedUserEmail     string
	SeedUserPassword  string
	SeedUserName      string
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string

	AllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string
}

func Load() Config {
	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: databaseURL(),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		UserTokenTTL:  time.Duration(getEnvInt("JWT_USER_TTL_MINUTES", 60)) * time.Minute,
		AdminTokenTTL: time.Duration(getEnvInt("JWT_ADMIN_TTL_MINUTES", 120)) * time.Minute,

		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 20),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		GoogleAPIKey:    getEnv("GOOGLE_API_KEY", ""),
		GoogleCSEID:     getEnv("GOOGLE_CSE_ID", ""),
		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,

		SeedUserEmail:     getEnv("SEED_USER_EMAIL", "test@demo.com"),
		SeedUserPassword:  getEnv("SEED_USER_PASSWORD", "password123"),
		SeedUserName:      getEnv("SEED_USER_NAME", "Test User"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "rishabh@gmail.com"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		SeedAdminName:     getEnv("SEED_ADMIN_NAME", "Admin User"),

		AllowedOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}
}

// databaseURL prefers a full DATABASE_URL; otherwise it is assembled from
// DB_* parts when DB_HOST is set. No DB configured at all means memory mode.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := os.Getenv("DB_HOST")

	if host == "" {
		return ""
	}

	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "searchhub")
	pass := getEnv("DB_PASSWORD", "searchhub")
	name := getEnv("DB_NAME", "searchhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")

	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
