package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	envProduction  = "production"
	envDevelopment = "development"

	// fallbackSigningSecret is only ever used outside production.
	fallbackSigningSecret = "insecure-development-signing-secret"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	TokenTTL     time.Duration `env:"TOKEN_TTL,     default=1h"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT, default=5s"`

	MaxPictureBytes int64 `env:"MAX_PICTURE_BYTES, default=5242880"`

	Mongo MongoConfig
	Redis RedisConfig
	Login LoginConfig
	Blob  BlobConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// LoginConfig bounds failed login attempts per email address.
type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Lockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

type BlobConfig struct {
	Backend string `env:"BLOB_BACKEND, default=minio"`
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,     default=profile-pictures"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
	PublicURL string `env:"BLOB_PUBLIC_URL"`
}

type GCSConfig struct {
	Bucket          string `env:"GCS_BUCKET"`
	ProjectID       string `env:"GCS_PROJECT_ID"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
	PublicURL       string `env:"BLOB_PUBLIC_URL"`
}

// Load reads configuration from environment variables using go-envconfig.
// In development a local .env file is loaded first when present.
func Load(ctx context.Context) (*Config, error) {
	if env := strings.TrimSpace(strings.ToLower(os.Getenv("ENV"))); env == "" || env == envDevelopment {
		_ = godotenv.Load()
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Env == envProduction
}

// PrettyLogs reports whether logs should use the console writer.
func (c *Config) PrettyLogs() bool {
	return c.LogPretty || c.Env == envDevelopment
}

// SigningSecret returns the token signing secret and whether it is the
// insecure fallback.
func (c *Config) SigningSecret() (string, bool) {
	if s := strings.TrimSpace(c.JWTSecret); s != "" {
		return s, false
	}
	return fallbackSigningSecret, true
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.MaxPictureBytes <= 0 {
		errs = append(errs, errors.New("MAX_PICTURE_BYTES must be positive"))
	}
	switch c.Blob.Backend {
	case "minio", "gcs":
	default:
		errs = append(errs, fmt.Errorf("BLOB_BACKEND %q is not one of minio, gcs", c.Blob.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
