package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port       string
	Env        string
	LogLevel   string
	ClientURL  string
	BcryptCost int

	MongoURI          string
	MongoDB           string
	MongoTransactions bool

	JWTSecret     string
	TokenExpiry   time.Duration
	ResetTokenTTL time.Duration
	OTPTTL        time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string

	StreamAPIKey    string
	StreamAPISecret string
	StreamBaseURL   string

	S3 S3Config

	Redis     RedisConfig
	RateLimit RateLimitConfig

	RabbitMQURL string
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// Enabled reports whether an avatar bucket is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadEnvFile loads key/value pairs from path into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil {
		logrus.WithField("path", path).Info("No .env file loaded, using process environment")
	}
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:       envStr("PORT", "5001"),
		Env:        envStr("APP_ENV", envStr("NODE_ENV", "development")),
		LogLevel:   envStr("LOG_LEVEL", "info"),
		ClientURL:  strings.TrimRight(envStr("CLIENT_URL", "http://localhost:5173"), "/"),
		BcryptCost: envInt("BCRYPT_COST", 10),

		MongoURI:          envStr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           envStr("MONGO_DB", "shadowmeet"),
		MongoTransactions: envBool("MONGO_TRANSACTIONS", false),

		JWTSecret:     envStr("JWT_SECRET_KEY", os.Getenv("JWT_SECRET")),
		TokenExpiry:   envDur("TOKEN_EXPIRY", 7*24*time.Hour),
		ResetTokenTTL: resetTokenTTL(),
		OTPTTL:        envDur("OTP_TTL", 5*time.Minute),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envStr("SMTP_PORT", "587"),
		SMTPSender:   os.Getenv("SMTP_SENDER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		StreamAPIKey:    os.Getenv("STREAM_API_KEY"),
		StreamAPISecret: os.Getenv("STREAM_API_SECRET"),
		StreamBaseURL:   envStr("STREAM_BASE_URL", "https://chat.stream-io-api.com"),

		S3: S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    envStr("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},

		Redis:     loadRedisConfig(),
		RateLimit: loadRateLimitConfig(),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		cfg.BcryptCost = 10
	}
	return cfg, nil
}

// resetTokenTTL honours the legacy millisecond variable when the duration
// form is absent.
func resetTokenTTL() time.Duration {
	if os.Getenv("RESET_TOKEN_TTL") == "" {
		if ms := envInt("PW_RESET_EXP_MS", 0); ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return envDur("RESET_TOKEN_TTL", time.Hour)
}

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
