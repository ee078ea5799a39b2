package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/simple-resource/pkg/simpleresource"
	"github.com/tendant/simple-resource/pkg/simpleresource/format"
	billystorage "github.com/tendant/simple-resource/pkg/simpleresource/storage/billy"
	fsstorage "github.com/tendant/simple-resource/pkg/simpleresource/storage/fs"
	memorystorage "github.com/tendant/simple-resource/pkg/simpleresource/storage/memory"
	pgstorage "github.com/tendant/simple-resource/pkg/simpleresource/storage/postgres"
	s3storage "github.com/tendant/simple-resource/pkg/simpleresource/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    EnvDevelopment,
		LogLevel:       "info",
		StorageURL:     "file://./storage/app",
		MaxBodyBytes:   10 << 20,
		RequestTimeout: 60 * time.Second,
		Storage: StorageConfig{
			S3: S3Config{
				Region: "us-east-1",
			},
			PGSchema: pgstorage.DefaultSchema,
		},
	}
}

// ServerConfig represents server configuration for the simple-resource service
type ServerConfig struct {
	Port        string `yaml:"port" json:"port" env:"PORT" env-description:"Server port"`
	Environment string `yaml:"environment" json:"environment" env:"ENVIRONMENT" env-description:"development, production or testing"` // development, production, testing
	LogLevel    string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL" env-description:"debug, info, warn or error"`       // debug, info, warn, error

	// StorageURL selects the backend, see ParseStorageURL
	StorageURL string        `yaml:"storage_url" json:"storage_url" env:"STORAGE_URL" env-description:"Storage backend URL"`
	Storage    StorageConfig `yaml:"storage" json:"storage"`

	// Server options
	StaticDir      string        `yaml:"static_dir" json:"static_dir" env:"STATIC_DIR" env-description:"Front end directory served at /"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" json:"max_body_bytes" env:"MAX_BODY_BYTES" env-description:"Request body cap in bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" env:"REQUEST_TIMEOUT" env-description:"Per request timeout"`
}

// StorageConfig holds backend settings that do not fit in the storage URL
type StorageConfig struct {
	S3       S3Config `yaml:"s3" json:"s3"`
	PGSchema string   `yaml:"pg_schema" json:"pg_schema" env:"PG_SCHEMA" env-description:"Schema for postgres storage"`
}

// S3Config carries credentials and encryption settings for s3:// storage.
// Region and endpoint given in the URL take precedence.
type S3Config struct {
	Region          string `yaml:"region" json:"region" env:"S3_REGION,AWS_REGION" env-description:"S3 region"`
	Endpoint        string `yaml:"endpoint" json:"endpoint" env:"S3_ENDPOINT" env-description:"S3-compatible endpoint"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" env:"S3_ACCESS_KEY_ID,AWS_ACCESS_KEY_ID" env-description:"S3 access key ID"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" env:"S3_SECRET_ACCESS_KEY,AWS_SECRET_ACCESS_KEY" env-description:"S3 secret access key"`
	UsePathStyle    bool   `yaml:"use_path_style" json:"use_path_style" env:"S3_USE_PATH_STYLE" env-description:"Use path-style S3 addressing"`
	EnableSSE       bool   `yaml:"enable_sse" json:"enable_sse" env:"S3_ENABLE_SSE" env-description:"Enable S3 server-side encryption"`
	SSEAlgorithm    string `yaml:"sse_algorithm" json:"sse_algorithm" env:"S3_SSE_ALGORITHM" env-description:"AES256 or aws:kms"`
	SSEKMSKeyID     string `yaml:"sse_kms_key_id" json:"sse_kms_key_id" env:"S3_SSE_KMS_KEY_ID" env-description:"KMS key ID for aws:kms"`
	CreateBucket    bool   `yaml:"create_bucket" json:"create_bucket" env:"S3_CREATE_BUCKET" env-description:"Create the bucket when missing"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTesting:
	default:
		return fmt.Errorf("environment must be one of development, production, testing, got: %s", c.Environment)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if _, err := ParseStorageURL(c.StorageURL); err != nil {
		return err
	}

	if c.MaxBodyBytes < 0 {
		return errors.New("max_body_bytes cannot be negative")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout cannot be negative")
	}

	return nil
}

// Level returns the configured log level
func (c *ServerConfig) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// IsDevelopment reports whether the server runs in the development environment
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// BuildBackend creates the storage backend selected by StorageURL. The
// returned cleanup func releases connections and is never nil.
func (c *ServerConfig) BuildBackend(ctx context.Context) (simpleresource.Backend, func(), error) {
	noop := func() {}

	target, err := ParseStorageURL(c.StorageURL)
	if err != nil {
		return nil, noop, err
	}

	switch target.Kind {
	case StorageMemory:
		return memorystorage.New(), noop, nil

	case StorageFS:
		backend, err := fsstorage.New(fsstorage.Config{BaseDir: target.Path})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create fs storage: %w", err)
		}
		return backend, noop, nil

	case StorageMemFS:
		return billystorage.NewMemory(), noop, nil

	case StorageBilly:
		backend, err := billystorage.NewBoundOS(target.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create billy storage: %w", err)
		}
		return backend, noop, nil

	case StorageS3:
		backend, err := s3storage.New(c.s3Config(target))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create s3 storage: %w", err)
		}
		return backend, noop, nil

	case StoragePostgres:
		backend, pool, err := pgstorage.Open(ctx, target.DatabaseURL, pgstorage.Config{Schema: c.Storage.PGSchema})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create postgres storage: %w", err)
		}
		if err := backend.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("failed to prepare postgres storage: %w", err)
		}
		return backend, pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported storage kind: %s", target.Kind)
	}
}

func (c *ServerConfig) s3Config(target *StorageTarget) s3storage.Config {
	s3c := c.Storage.S3
	cfg := s3storage.Config{
		Region:                 s3c.Region,
		Bucket:                 target.Bucket,
		Prefix:                 target.Prefix,
		AccessKeyID:            s3c.AccessKeyID,
		SecretAccessKey:        s3c.SecretAccessKey,
		Endpoint:               s3c.Endpoint,
		UsePathStyle:           s3c.UsePathStyle,
		EnableSSE:              s3c.EnableSSE,
		SSEAlgorithm:           s3c.SSEAlgorithm,
		SSEKMSKeyID:            s3c.SSEKMSKeyID,
		CreateBucketIfNotExist: s3c.CreateBucket,
	}
	if target.Region != "" {
		cfg.Region = target.Region
	}
	if target.Endpoint != "" {
		cfg.Endpoint = target.Endpoint
	}
	if target.UsePathStyle {
		cfg.UsePathStyle = true
	}
	return cfg
}

// BuildService creates a Service with every shipped format on top of the
// configured backend
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (simpleresource.Service, func(), error) {
	backend, cleanup, err := c.BuildBackend(ctx)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to build storage backend: %w", err)
	}

	svc, err := simpleresource.New(
		simpleresource.WithBackend(backend),
		simpleresource.WithFormats(format.All()...),
		simpleresource.WithLogger(logger),
	)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}
