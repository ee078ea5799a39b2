package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-resource/pkg/simpleresource"
)

// tempPrefix marks in-flight writes. It is reserved: names carrying it are
// rejected and never listed.
const tempPrefix = ".tmp-"

var _ simpleresource.Backend = (*Backend)(nil)

// Backend is a filesystem implementation of the simpleresource.Backend interface.
// Every resource is one regular file directly under BaseDir.
type Backend struct {
	baseDir  string
	fileMode os.FileMode
}

// Config options for the filesystem backend
type Config struct {
	BaseDir  string      // Directory holding the resources
	FileMode os.FileMode // Permissions for new files (default: 0644)
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	mode := config.FileMode
	if mode == 0 {
		mode = 0644
	}

	return &Backend{
		baseDir:  filepath.Clean(config.BaseDir),
		fileMode: mode,
	}, nil
}

// BaseDir returns the directory backing the store
func (b *Backend) BaseDir() string {
	return b.baseDir
}

func (b *Backend) path(name string) (string, error) {
	if name == "" || !filepath.IsLocal(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", simpleresource.ErrInvalidName, name)
	}
	if strings.HasPrefix(name, tempPrefix) {
		return "", fmt.Errorf("%w: %q uses the reserved prefix %s", simpleresource.ErrInvalidName, name, tempPrefix)
	}
	return filepath.Join(b.baseDir, name), nil
}

// Exists reports whether a regular file called name is stored
func (b *Backend) Exists(ctx context.Context, name string) (bool, error) {
	filePath, err := b.path(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to get file info: %w", err)
	}

	return info.Mode().IsRegular(), nil
}

// Read returns the content of name
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	filePath, err := b.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Write stores data under name. The content is written to a temporary file
// and renamed into place, so a reader never observes a partial write.
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	filePath, err := b.path(name)
	if err != nil {
		return err
	}

	tmpPath := filepath.Join(b.baseDir, tempPrefix+uuid.NewString())
	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, b.fileMode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// Delete removes name from the filesystem
func (b *Backend) Delete(ctx context.Context, name string) error {
	filePath, err := b.path(name)
	if err != nil {
		return err
	}

	// Check if file exists
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) || (err == nil && !info.Mode().IsRegular()) {
		return fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
	} else if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// List returns the regular files directly under the base directory in
// directory order (sorted by name)
func (b *Backend) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(b.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}
