package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tendant/simple-resource/pkg/simpleresource"
)

var _ simpleresource.Backend = (*Backend)(nil)

// Backend is an in-memory implementation of the simpleresource.Backend interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

// Exists reports whether name is stored
func (b *Backend) Exists(ctx context.Context, name string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.objects[name]
	return exists, nil
}

// Read returns a copy of the stored bytes
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
	}

	return append([]byte(nil), data...), nil
}

// Write stores a copy of data under name
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[name] = append([]byte(nil), data...)
	return nil
}

// Delete removes name
func (b *Backend) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[name]; !exists {
		return fmt.Errorf("%w: %s", simpleresource.ErrNotFound, name)
	}

	delete(b.objects, name)
	return nil
}

// List returns the stored names sorted lexically
func (b *Backend) List(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.objects))
	for name := range b.objects {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}
