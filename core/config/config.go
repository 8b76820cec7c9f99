package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Server   ServerConfig
		Postgres PostgresConfig
		Redis    RedisConfig
		S3       S3Config
		SMTP     SMTPConfig
		Google   GoogleConfig
		JWT      JWTConfig
		Frontend FrontendConfig
		Worker   WorkerConfig
	}

	ServerConfig struct {
		Port        string
		Environment string
		BaseURL     string
	}

	PostgresConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	S3Config struct {
		Region          string
		Bucket          string
		AccessKeyID     string
		AccessKeySecret string
		Endpoint        string // optional, for S3-compatible stores
	}

	SMTPConfig struct {
		Host string
		Port int
		User string
		Pass string
		From string
	}

	GoogleConfig struct {
		ClientID     string
		ClientSecret string
		CallbackURL  string
	}

	JWTConfig struct {
		Secret string
	}

	FrontendConfig struct {
		URL string
	}

	WorkerConfig struct {
		Enabled     bool
		Concurrency int
	}
)

// Load reads configuration from the environment (with .env already loaded
// by godotenv). Missing required values fail fast.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "3001")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "ClubOps <certificates@clubops.in>")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("WORKER_ENABLED", false)
	v.SetDefault("WORKER_CONCURRENCY", 4)

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("PORT"),
			Environment: v.GetString("ENVIRONMENT"),
			BaseURL:     v.GetString("BACKEND_URL"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		S3: S3Config{
			Region:          v.GetString("S3_REGION"),
			Bucket:          v.GetString("S3_BUCKET"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			AccessKeySecret: v.GetString("S3_ACCESS_KEY_SECRET"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
		},
		SMTP: SMTPConfig{
			Host: v.GetString("SMTP_HOST"),
			Port: v.GetInt("SMTP_PORT"),
			User: v.GetString("SMTP_USER"),
			Pass: v.GetString("SMTP_PASS"),
			From: v.GetString("SMTP_FROM"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  v.GetString("GOOGLE_CALLBACK_URL"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Frontend: FrontendConfig{
			URL: v.GetString("FRONTEND_URL"),
		},
		Worker: WorkerConfig{
			Enabled:     v.GetBool("WORKER_ENABLED"),
			Concurrency: v.GetInt("WORKER_CONCURRENCY"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	if cfg.Google.CallbackURL == "" && cfg.Server.BaseURL != "" {
		cfg.Google.CallbackURL = cfg.Server.BaseURL + "/api/auth/google/callback"
	}

	return cfg, nil
}
