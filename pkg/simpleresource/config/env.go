package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv applies environment variable overrides on top of the current values.
//
// Server:
//
//	PORT            - Server port (default: "8080")
//	ENVIRONMENT     - development, production or testing (default: "development")
//	LOG_LEVEL       - debug, info, warn or error (default: "info")
//	STATIC_DIR      - Front end directory served at / (default: disabled)
//	MAX_BODY_BYTES  - Request body cap (default: 10 MiB)
//	REQUEST_TIMEOUT - Per request timeout, e.g. "30s" (default: "60s")
//
// Storage:
//
//	STORAGE_URL - see ParseStorageURL (default: "file://./storage/app")
//	S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY,
//	S3_USE_PATH_STYLE, S3_ENABLE_SSE, S3_SSE_ALGORITHM, S3_SSE_KMS_KEY_ID,
//	S3_CREATE_BUCKET - s3:// options; AWS_REGION and AWS_* credentials are
//	                   accepted as fallbacks
//	PG_SCHEMA        - schema for postgres:// storage (default: "public")
//
// Unset variables leave the current value untouched.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithFile loads a YAML, JSON, TOML or .env file, then applies environment
// overrides the same way WithEnv does.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// Usage returns the description of every environment variable understood by
// WithEnv, for --help output.
func Usage() (string, error) {
	var cfg ServerConfig
	return cleanenv.GetDescription(&cfg, nil)
}
