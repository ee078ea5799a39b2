package simpleresource

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"path/filepath"
)

// Collection runs the CRUD procedure for one family. The family specific
// behaviour lives entirely in the Format; the procedure itself is shared.
type Collection struct {
	format  Format
	backend Backend
	logger  *slog.Logger
}

// NewCollection binds a format to a backend
func NewCollection(format Format, backend Backend, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{
		format:  format,
		backend: backend,
		logger:  logger.With("family", string(format.Family())),
	}
}

// Family returns the family served by the collection
func (c *Collection) Family() Family {
	return c.format.Family()
}

// List returns the base names stored in the backend that belong to the family
func (c *Collection) List(ctx context.Context) (*Result, error) {
	names, err := c.backend.List(ctx)
	if err != nil {
		return nil, c.fail("list", "", backendError(err))
	}

	seen := make(map[string]struct{}, len(names))
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		base := path.Base(filepath.ToSlash(name))
		if _, dup := seen[base]; dup || !c.format.Matches(base) {
			continue
		}
		seen[base] = struct{}{}
		filtered = append(filtered, base)
	}

	return c.succeed("list", "", MessageListed, filtered), nil
}

// Create stores new content. It fails with ErrAlreadyExists when the name is
// taken and never overwrites.
func (c *Collection) Create(ctx context.Context, req WriteRequest) (*Result, error) {
	const op = "create"
	if err := checkWriteRequest(req); err != nil {
		return nil, c.fail(op, req.Name, err)
	}

	exists, err := c.backend.Exists(ctx, req.Name)
	if err != nil {
		return nil, c.fail(op, req.Name, storageError(err))
	}
	if exists {
		return nil, c.fail(op, req.Name, ErrAlreadyExists)
	}

	if err := c.format.Validate([]byte(req.Content)); err != nil {
		return nil, c.fail(op, req.Name, c.contentError(err))
	}

	if err := c.backend.Write(ctx, req.Name, []byte(req.Content)); err != nil {
		return nil, c.fail(op, req.Name, storageError(err))
	}

	return c.succeed(op, req.Name, MessageCreated, nil), nil
}

// Read loads and decodes a stored resource
func (c *Collection) Read(ctx context.Context, name string) (*Result, error) {
	const op = "read"
	if err := ValidateName(name); err != nil {
		return nil, c.fail(op, name, err)
	}

	if err := c.mustExist(ctx, name); err != nil {
		return nil, c.fail(op, name, err)
	}

	data, err := c.backend.Read(ctx, name)
	if err != nil {
		return nil, c.fail(op, name, storageError(err))
	}

	view, err := c.format.Decode(data)
	if err != nil {
		return nil, c.fail(op, name, c.contentError(err))
	}

	return c.succeed(op, name, MessageRead, view), nil
}

// Update replaces the content of an existing resource
func (c *Collection) Update(ctx context.Context, req WriteRequest) (*Result, error) {
	const op = "update"
	if err := checkWriteRequest(req); err != nil {
		return nil, c.fail(op, req.Name, err)
	}

	// Existence is checked before validation: a missing name reports
	// NotFound even when the content is also invalid.
	if err := c.mustExist(ctx, req.Name); err != nil {
		return nil, c.fail(op, req.Name, err)
	}

	if err := c.format.Validate([]byte(req.Content)); err != nil {
		return nil, c.fail(op, req.Name, c.contentError(err))
	}

	if err := c.backend.Write(ctx, req.Name, []byte(req.Content)); err != nil {
		return nil, c.fail(op, req.Name, storageError(err))
	}

	return c.succeed(op, req.Name, MessageUpdated, nil), nil
}

// Delete removes an existing resource
func (c *Collection) Delete(ctx context.Context, name string) (*Result, error) {
	const op = "delete"
	if err := ValidateName(name); err != nil {
		return nil, c.fail(op, name, err)
	}

	if err := c.mustExist(ctx, name); err != nil {
		return nil, c.fail(op, name, err)
	}

	if err := c.backend.Delete(ctx, name); err != nil {
		return nil, c.fail(op, name, storageError(err))
	}

	return c.succeed(op, name, MessageDeleted, nil), nil
}

func (c *Collection) mustExist(ctx context.Context, name string) error {
	exists, err := c.backend.Exists(ctx, name)
	if err != nil {
		return storageError(err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (c *Collection) contentError(err error) error {
	if errors.Is(err, ErrInvalidContent) {
		return err
	}
	return &ValidationError{Family: c.Family(), Reason: err.Error()}
}

func (c *Collection) succeed(op, name, message string, content any) *Result {
	c.logger.Debug("Resource operation succeeded", "op", op, "name", name)
	return &Result{
		Status:  StatusOK,
		Message: message,
		Content: content,
	}
}

func (c *Collection) fail(op, name string, err error) error {
	status := StatusOf(err)
	if status == StatusInternalFailure {
		c.logger.Error("Resource operation failed", "op", op, "name", name, "status", status.String(), "error", err)
	} else {
		c.logger.Warn("Resource operation rejected", "op", op, "name", name, "status", status.String(), "error", err)
	}
	return &ResourceError{
		Op:     op,
		Family: c.Family(),
		Name:   name,
		Err:    err,
	}
}

func checkWriteRequest(req WriteRequest) error {
	if err := ValidateName(req.Name); err != nil {
		return err
	}
	if req.Content == "" {
		return &FieldError{Field: "content", Reason: "is required"}
	}
	return nil
}

// storageError keeps NotFound visible (the entry vanished after the
// existence check) along with names a backend refuses to store, and
// classifies everything else as a backend failure.
func storageError(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidRequest) {
		return err
	}
	return backendError(err)
}
