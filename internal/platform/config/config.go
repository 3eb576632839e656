package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config captures the full server configuration from environment variables.
// Secrets (signing key, admin credentials, storage keys) are environment-provided
// and never logged.
type Config struct {
	Addr string `env:"USERHUB_ADDR" env-default:":8080"`

	Mongo   MongoConfig
	JWT     JWTConfig
	Admin   AdminConfig
	Storage StorageConfig
	Redis   RedisConfig

	// MaxUploadBytes caps multipart profile image uploads. Default 2MB.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" env-default:"2097152"`
}

// MongoConfig configures the document database. An empty URI selects the
// in-memory store, which is only suitable for development and tests.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB" env-default:"userhub"`
}

type JWTConfig struct {
	SigningKey string        `env:"JWT_SIGNING_KEY" env-default:"dev-secret-key-change-in-production"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" env-default:"720h"`
}

// AdminConfig holds the static administrative credentials. The admin is a
// single configured trust boundary, not a record collection.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

// StorageConfig configures the S3-compatible object storage collaborator used
// for profile images. An empty bucket disables remote storage.
type StorageConfig struct {
	Endpoint      string `env:"S3_ENDPOINT"`
	Region        string `env:"S3_REGION" env-default:"us-east-1"`
	Bucket        string `env:"S3_BUCKET"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// RedisConfig configures the optional login throttle backend. An empty URL
// disables throttling.
type RedisConfig struct {
	URL           string        `env:"REDIS_URL"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" env-default:"10"`
	LoginAttempts int           `env:"LOGIN_MAX_ATTEMPTS" env-default:"10"`
	LoginWindow   time.Duration `env:"LOGIN_ATTEMPT_WINDOW" env-default:"5m"`
}

// Load builds a Config from environment variables so main stays lean.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}
	return &cfg, nil
}
