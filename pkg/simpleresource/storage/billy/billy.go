// Package billy stores resources on any go-billy filesystem. It backs the
// memfs:// and billy:// storage URLs.
package billy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/tendant/simple-resource/pkg/simpleresource"
)

var _ simpleresource.Backend = (*Backend)(nil)

// Backend adapts a billy.Filesystem root to simpleresource.Backend
type Backend struct {
	fs gobilly.Filesystem
}

// New wraps an existing billy filesystem. Resources live at its root.
func New(fs gobilly.Filesystem) (*Backend, error) {
	if fs == nil {
		return nil, errors.New("filesystem is required")
	}
	return &Backend{fs: fs}, nil
}

// NewMemory returns a backend over a fresh in-memory filesystem
func NewMemory() *Backend {
	return &Backend{fs: memfs.New()}
}

// NewBoundOS returns a backend over baseDir that refuses to resolve paths,
// including symlinks, outside of it
func NewBoundOS(baseDir string) (*Backend, error) {
	if baseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{fs: osfs.New(baseDir, osfs.WithBoundOS())}, nil
}

// Exists reports whether a regular file called name is stored
func (b *Backend) Exists(ctx context.Context, name string) (bool, error) {
	if err := simpleresource.ValidateName(name); err != nil {
		return false, err
	}

	info, err := b.fs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return info.Mode().IsRegular(), nil
}

// Read returns the content of name
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	if err := simpleresource.ValidateName(name); err != nil {
		return nil, err
	}

	f, err := b.fs.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Write creates or truncates name and writes data
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	if err := simpleresource.ValidateName(name); err != nil {
		return err
	}

	f, err := b.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Delete removes name
func (b *Backend) Delete(ctx context.Context, name string) error {
	exists, err := b.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
	}

	if err := b.fs.Remove(name); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// List returns the regular files at the filesystem root, sorted by name
func (b *Backend) List(ctx context.Context) ([]string, error) {
	infos, err := b.fs.ReadDir(".")
	if err != nil {
		// an untouched memfs has no root entry yet
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}
