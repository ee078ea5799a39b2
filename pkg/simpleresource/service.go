package simpleresource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Service is the family-aware entry point used by transports
type Service interface {
	// List returns the names that belong to family
	List(ctx context.Context, family Family) (*Result, error)

	// Create stores a new resource
	Create(ctx context.Context, family Family, req WriteRequest) (*Result, error)

	// Read returns the decoded structured view of a resource
	Read(ctx context.Context, family Family, name string) (*Result, error)

	// Update replaces the content of an existing resource
	Update(ctx context.Context, family Family, req WriteRequest) (*Result, error)

	// Delete removes an existing resource
	Delete(ctx context.Context, family Family, name string) (*Result, error)

	// Collection returns the per-family CRUD procedure
	Collection(family Family) (*Collection, error)
}

// service implements the Service interface
type service struct {
	backend     Backend
	formats     []Format
	logger      *slog.Logger
	collections map[Family]*Collection
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithBackend sets the storage backend shared by every family
func WithBackend(backend Backend) Option {
	return func(s *service) {
		s.backend = backend
	}
}

// WithFormat registers the format for its family, replacing any earlier one
func WithFormat(format Format) Option {
	return func(s *service) {
		s.formats = append(s.formats, format)
	}
}

// WithFormats registers several formats at once
func WithFormats(formats ...Format) Option {
	return func(s *service) {
		s.formats = append(s.formats, formats...)
	}
}

// WithLogger sets the logger used for operation logs
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger:      slog.Default(),
		collections: make(map[Family]*Collection),
	}

	for _, option := range options {
		option(s)
	}

	if s.backend == nil {
		return nil, errors.New("backend is required")
	}
	if len(s.formats) == 0 {
		return nil, errors.New("at least one format is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	for _, format := range s.formats {
		if format == nil {
			continue
		}
		if !format.Family().IsValid() {
			return nil, fmt.Errorf("format registered for unsupported family %q", format.Family())
		}
		s.collections[format.Family()] = NewCollection(format, s.backend, s.logger)
	}

	return s, nil
}

func (s *service) Collection(family Family) (*Collection, error) {
	c, ok := s.collections[family]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	return c, nil
}

func (s *service) List(ctx context.Context, family Family) (*Result, error) {
	c, err := s.collection("list", family, "")
	if err != nil {
		return nil, err
	}
	return c.List(ctx)
}

func (s *service) Create(ctx context.Context, family Family, req WriteRequest) (*Result, error) {
	c, err := s.collection("create", family, req.Name)
	if err != nil {
		return nil, err
	}
	return c.Create(ctx, req)
}

func (s *service) Read(ctx context.Context, family Family, name string) (*Result, error) {
	c, err := s.collection("read", family, name)
	if err != nil {
		return nil, err
	}
	return c.Read(ctx, name)
}

func (s *service) Update(ctx context.Context, family Family, req WriteRequest) (*Result, error) {
	c, err := s.collection("update", family, req.Name)
	if err != nil {
		return nil, err
	}
	return c.Update(ctx, req)
}

func (s *service) Delete(ctx context.Context, family Family, name string) (*Result, error) {
	c, err := s.collection("delete", family, name)
	if err != nil {
		return nil, err
	}
	return c.Delete(ctx, name)
}

func (s *service) collection(op string, family Family, name string) (*Collection, error) {
	c, err := s.Collection(family)
	if err != nil {
		s.logger.Warn("Resource operation rejected", "op", op, "family", string(family), "error", err)
		return nil, &ResourceError{Op: op, Family: family, Name: name, Err: err}
	}
	return c, nil
}
