package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// StorageKind names a storage backend implementation
type StorageKind string

const (
	StorageFS       StorageKind = "fs"
	StorageMemory   StorageKind = "memory"
	StorageMemFS    StorageKind = "memfs"
	StorageBilly    StorageKind = "billy"
	StorageS3       StorageKind = "s3"
	StoragePostgres StorageKind = "postgres"
)

// StorageTarget is the parsed form of a storage URL
type StorageTarget struct {
	Kind StorageKind

	// Path is the directory for fs and billy
	Path string

	// S3 location and per-URL overrides
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool

	// DatabaseURL is the full connection string for postgres
	DatabaseURL string
}

// ParseStorageURL parses one of:
//
//	memory:// (or memory)                     in-process map
//	file:///abs/path, file://./rel/path       directory on disk
//	memfs://                                  go-billy in-memory filesystem
//	billy:///abs/path                         go-billy filesystem bound to a directory
//	s3://bucket/prefix?region=&endpoint=&path_style=true
//	postgres://..., postgresql://...          resources table in Postgres
func ParseStorageURL(raw string) (*StorageTarget, error) {
	switch {
	case raw == "":
		return nil, fmt.Errorf("storage_url is required")

	case raw == "memory" || raw == "memory://":
		return &StorageTarget{Kind: StorageMemory}, nil

	case raw == "memfs" || raw == "memfs://":
		return &StorageTarget{Kind: StorageMemFS}, nil

	case strings.HasPrefix(raw, "file://"):
		path := strings.TrimPrefix(raw, "file://")
		if path == "" {
			return nil, fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		return &StorageTarget{Kind: StorageFS, Path: path}, nil

	case strings.HasPrefix(raw, "billy://"):
		path := strings.TrimPrefix(raw, "billy://")
		if path == "" {
			return nil, fmt.Errorf("billy path cannot be empty in STORAGE_URL")
		}
		return &StorageTarget{Kind: StorageBilly, Path: path}, nil

	case strings.HasPrefix(raw, "s3://"):
		return parseS3URL(raw)

	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return &StorageTarget{Kind: StoragePostgres, DatabaseURL: raw}, nil
	}

	return nil, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', 'memfs://', 'billy://...', 's3://...' or 'postgres://...')", raw)
}

// parseS3URL handles s3://bucket/prefix?region=us-east-1&endpoint=http://localhost:9000
func parseS3URL(raw string) (*StorageTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	target := &StorageTarget{
		Kind:     StorageS3,
		Bucket:   u.Host,
		Prefix:   strings.Trim(u.Path, "/"),
		Region:   u.Query().Get("region"),
		Endpoint: u.Query().Get("endpoint"),
	}

	if v := u.Query().Get("path_style"); v != "" {
		pathStyle, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid path_style in STORAGE_URL: %w", err)
		}
		target.UsePathStyle = pathStyle
	}

	return target, nil
}
