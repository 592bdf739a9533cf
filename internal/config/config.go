package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
	CodeTTL   time.Duration

	EmailFrom    string
	SESRegion    string
	SESEndpoint  string
	SESAccessKey string
	SESSecretKey string

	S3Region    string
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	PlaybackURLTTL time.Duration
	MaxPhotoBytes  int64
	MaxVideoBytes  int64

	RedisAddr      string
	RedisPassword  string
	ResendCooldown time.Duration

	FFmpegPath string
}

func Load() Config {
	return Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DatabaseURL: databaseURL(),

		JWTSecret: getenv("JWT_SECRET", ""),
		JWTIssuer: getenv("JWT_ISSUER", "coachassist"),
		TokenTTL:  getenvDuration("TOKEN_TTL", 6*time.Hour),
		CodeTTL:   getenvDuration("CODE_TTL", 15*time.Minute),

		EmailFrom:    getenv("EMAIL_FROM", ""),
		SESRegion:    getenv("SES_REGION", "us-east-1"),
		SESEndpoint:  getenv("SES_ENDPOINT", ""),
		SESAccessKey: getenv("SES_ACCESS_KEY_ID", os.Getenv("AWS_ACCESS_KEY_ID")),
		SESSecretKey: getenv("SES_SECRET_ACCESS_KEY", os.Getenv("AWS_SECRET_ACCESS_KEY")),

		S3Region:    getenv("S3_REGION", "us-east-1"),
		S3Endpoint:  getenv("S3_ENDPOINT", ""),
		S3Bucket:    getenv("S3_BUCKET", ""),
		S3AccessKey: getenv("S3_ACCESS_KEY_ID", os.Getenv("AWS_ACCESS_KEY_ID")),
		S3SecretKey: getenv("S3_SECRET_ACCESS_KEY", os.Getenv("AWS_SECRET_ACCESS_KEY")),

		PlaybackURLTTL: getenvDuration("PLAYBACK_URL_TTL", 4*time.Hour),
		MaxPhotoBytes:  getenvInt64("MAX_PHOTO_BYTES", 5<<20),
		MaxVideoBytes:  getenvInt64("MAX_VIDEO_BYTES", 2<<30),

		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		ResendCooldown: getenvDuration("RESEND_COOLDOWN", time.Minute),

		FFmpegPath: getenv("FFMPEG_PATH", "ffmpeg"),
	}
}

// databaseURL prefers DATABASE_URL and falls back to the discrete PG* fields
// the deployment environment provides.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := getenv("PGHOST", "127.0.0.1")
	port := getenv("PGPORT", "5432")
	user := getenv("PGUSER", "postgres")
	password := getenv("PGPASSWORD", "postgres")
	name := getenv("PGDATABASE", "coachassist")
	sslmode := getenv("PGSSLMODE", "disable")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
