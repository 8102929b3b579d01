package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret           string
	JWTAccessTTLMinutes int

	// OTP settings
	OTPStore   string // "memory" or "redis"
	OTPTTL     time.Duration
	OTPDevEcho bool // dev only: include the code in the send-otp response

	OtelEndpoint string

	AllowedOrigins []string

	SeedDemoData bool
}

func Load() Config {
	// best effort: local development keeps settings in a .env file
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	return Config{
		Env:   env,
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:           getEnv("JWT_SECRET", "dev-only-secret"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60),

		OTPStore:   getEnv("OTP_STORE", "memory"),
		OTPTTL:     time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		OTPDevEcho: env == "dev" && getEnv("OTP_DEV_ECHO", "") == "1",

		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		AllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		SeedDemoData: env == "dev" && getEnv("SEED_DEMO_DATA", "1") == "1",
	}
}

func buildDBURL() string {
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "labourhub")
	pass := getEnv("DB_PASSWORD", "labourhub")
	name := getEnv("DB_NAME", "labourhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
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
			return fallback
		}

		return num
	}
	return fallback
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
