package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting of the service, read from the environment.
type Config struct {
	DatabaseURL  string     `env:"DATABASE_URL,required,notEmpty"`
	JWTSecretKey string     `env:"JWT_SECRET_KEY,required,notEmpty"`
	ServerPort   int        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	// Accounts registered with one of these addresses get the admin role.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Standings cache. Empty disables redis.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	// Snapshot storage. Without a bucket snapshots stay in memory.
	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
	R2Endpoint        string `env:"R2_ENDPOINT"`

	// Cron spec for exporting snapshots of active tournaments. Empty disables it.
	SnapshotCron string `env:"SNAPSHOT_CRON" envDefault:"@every 5m"`

	// Fixed seed for table assignment. Zero draws from crypto/rand.
	TableRNGSeed uint64 `env:"TABLE_RNG_SEED" envDefault:"0"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	return &cfg, nil
}
