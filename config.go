package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"storefront-admin/database"
	aws_pkg "storefront-admin/pkg/aws"
)

type Config struct {
	Env            string
	Port           string
	ServiceName    string
	AllowedOrigins string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Bucket      string
	S3PublicBase  string
	SNSTopicArn   string
	OrderQueueURL string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	MetricsEnabled   bool
	MetricsNamespace string
	LogGroup         string

	RateLimitRPS   float64
	RateLimitBurst int
	LoginRPS       float64
	LoginBurst     int
}

// secretsReader is the part of aws_pkg.SecretsClient LoadConfig uses.
type secretsReader interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		ServiceName:    getEnv("SERVICE_NAME", "storefront-admin"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "America/Argentina/Buenos_Aires"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getDuration("JWT_TTL", 12*time.Hour),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		S3Bucket:      os.Getenv("AWS_S3_BUCKET"),
		S3PublicBase:  os.Getenv("AWS_S3_PUBLIC_BASE"),
		SNSTopicArn:   os.Getenv("ADMIN_EVENTS_TOPIC_ARN"),
		OrderQueueURL: os.Getenv("ORDER_EVENTS_QUEUE_URL"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_WHATSAPP_FROM"),

		MetricsEnabled:   os.Getenv("CLOUDWATCH_METRICS_ENABLED") == "true",
		MetricsNamespace: getEnv("CLOUDWATCH_NAMESPACE", "StorefrontAdmin"),
		LogGroup:         os.Getenv("CLOUDWATCH_LOG_GROUP"),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 40),
		LoginRPS:       getFloat("LOGIN_RATE_LIMIT_RPS", 0.2),
		LoginBurst:     getInt("LOGIN_RATE_LIMIT_BURST", 5),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			applySecrets(context.Background(), cfg, aws_pkg.NewSecretsClient(awsCfg))
		}
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// applySecrets overrides credentials with the values stored in Secrets Manager.
func applySecrets(ctx context.Context, cfg *Config, sm secretsReader) {
	if m, err := sm.GetSecretMap(ctx, "storefront-admin/DB_CREDENTIALS"); err == nil {
		override(&cfg.PostgresUser, m["POSTGRES_USER"])
		override(&cfg.PostgresPassword, m["POSTGRES_PASSWORD"])
		override(&cfg.PostgresDB, m["POSTGRES_DB"])
		override(&cfg.PostgresHost, m["POSTGRES_HOST"])
		override(&cfg.PostgresPort, m["POSTGRES_PORT"])
	}
	if m, err := sm.GetSecretMap(ctx, "storefront-admin/JWT"); err == nil {
		override(&cfg.JWTSecret, m["JWT_SECRET"])
	}
	if m, err := sm.GetSecretMap(ctx, "storefront-admin/TWILIO"); err == nil {
		override(&cfg.TwilioAccountSID, m["TWILIO_ACCOUNT_SID"])
		override(&cfg.TwilioAuthToken, m["TWILIO_AUTH_TOKEN"])
		override(&cfg.TwilioFrom, m["TWILIO_WHATSAPP_FROM"])
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Database returns the connection settings for database.Connect.
func (c *Config) Database() database.Config {
	return database.Config{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPassword,
		Name:     c.PostgresDB,
		SSLMode:  c.PostgresSSLMode,
		TimeZone: c.PostgresTimeZone,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
