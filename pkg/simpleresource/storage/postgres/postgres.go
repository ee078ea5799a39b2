// Package postgres stores resources as rows of a single table, keyed by name.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-resource/pkg/simpleresource"
)

var _ simpleresource.Backend = (*Backend)(nil)

// DefaultSchema is used when Config.Schema is empty
const DefaultSchema = "public"

// TableName is the table holding the resource directory
const TableName = "resources"

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Config options for the Postgres backend
type Config struct {
	Schema string // Schema holding the resources table (default: public)
}

// Backend implements simpleresource.Backend using PostgreSQL
type Backend struct {
	db     DBTX
	schema string
	table  string
}

// New creates a backend on top of an existing connection, pool or transaction
func New(db DBTX, config Config) (*Backend, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}
	schema := config.Schema
	if schema == "" {
		schema = DefaultSchema
	}
	return &Backend{
		db:     db,
		schema: schema,
		table:  pgx.Identifier{schema, TableName}.Sanitize(),
	}, nil
}

// Open creates a connection pool for databaseURL and returns a backend using it.
// The caller owns the returned pool.
func Open(ctx context.Context, databaseURL string, config Config) (*Backend, *pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, nil, errors.New("database_url is required")
	}
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	backend, err := New(pool, config)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return backend, pool, nil
}

// EnsureSchema creates the schema and resources table when they are missing
func (b *Backend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{b.schema}.Sanitize()); err != nil {
		return b.handlePostgresError("ensure schema", err)
	}
	query := `
		CREATE TABLE IF NOT EXISTS ` + b.table + ` (
			name TEXT PRIMARY KEY,
			content BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := b.db.Exec(ctx, query); err != nil {
		return b.handlePostgresError("ensure schema", err)
	}
	return nil
}

// Error handling helper
func (b *Backend) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("table %s does not exist - database migration required", b.table)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Exists reports whether a row is stored for name
func (b *Backend) Exists(ctx context.Context, name string) (bool, error) {
	if err := simpleresource.ValidateName(name); err != nil {
		return false, err
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + b.table + ` WHERE name = $1)`
	if err := b.db.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, b.handlePostgresError("exists", err)
	}
	return exists, nil
}

// Read returns the content stored for name
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	if err := simpleresource.ValidateName(name); err != nil {
		return nil, err
	}
	var content []byte
	query := `SELECT content FROM ` + b.table + ` WHERE name = $1`
	if err := b.db.QueryRow(ctx, query, name).Scan(&content); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
		}
		return nil, b.handlePostgresError("read", err)
	}
	return content, nil
}

// Write stores data for name, replacing any existing row
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	if err := simpleresource.ValidateName(name); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	query := `
		INSERT INTO ` + b.table + ` (name, content)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET content = EXCLUDED.content, updated_at = now()`
	if _, err := b.db.Exec(ctx, query, name, data); err != nil {
		return b.handlePostgresError("write", err)
	}
	return nil
}

// Delete removes the row stored for name
func (b *Backend) Delete(ctx context.Context, name string) error {
	if err := simpleresource.ValidateName(name); err != nil {
		return err
	}
	tag, err := b.db.Exec(ctx, `DELETE FROM `+b.table+` WHERE name = $1`, name)
	if err != nil {
		return b.handlePostgresError("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
	}
	return nil
}

// List returns every stored name ordered by name
func (b *Backend) List(ctx context.Context) ([]string, error) {
	rows, err := b.db.Query(ctx, `SELECT name FROM `+b.table+` ORDER BY name`)
	if err != nil {
		return nil, b.handlePostgresError("list", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, b.handlePostgresError("list", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
