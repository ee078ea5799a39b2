package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the log level (debug, info, warn, error)
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		return nil
	}
}

// WithStorageURL selects the storage backend
func WithStorageURL(storageURL string) Option {
	return func(c *ServerConfig) error {
		if _, err := ParseStorageURL(storageURL); err != nil {
			return err
		}
		c.StorageURL = storageURL
		return nil
	}
}

// WithStaticDir serves the front end from dir
func WithStaticDir(dir string) Option {
	return func(c *ServerConfig) error {
		c.StaticDir = dir
		return nil
	}
}

// WithMaxBodyBytes caps request bodies
func WithMaxBodyBytes(n int64) Option {
	return func(c *ServerConfig) error {
		c.MaxBodyBytes = n
		return nil
	}
}

// WithRequestTimeout bounds each request
func WithRequestTimeout(d time.Duration) Option {
	return func(c *ServerConfig) error {
		c.RequestTimeout = d
		return nil
	}
}

// WithS3 sets the S3 credentials and options used by s3:// storage URLs
func WithS3(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		c.Storage.S3 = s3
		return nil
	}
}

// WithPostgresSchema sets the schema for postgres:// storage URLs
func WithPostgresSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.Storage.PGSchema = schema
		return nil
	}
}
