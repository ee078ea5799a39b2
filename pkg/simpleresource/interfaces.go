package simpleresource

import "context"

// Backend is a byte store rooted at a single flat directory
type Backend interface {
	// Exists reports whether name is stored. A missing name is not an error.
	Exists(ctx context.Context, name string) (bool, error)

	// Read returns the stored bytes, or an error matching ErrNotFound
	Read(ctx context.Context, name string) ([]byte, error)

	// Write creates or overwrites name
	Write(ctx context.Context, name string, data []byte) error

	// Delete removes name, or returns an error matching ErrNotFound
	Delete(ctx context.Context, name string) error

	// List returns the base names of direct entries, excluding directories
	List(ctx context.Context) ([]string, error)
}

// Format validates and decodes the content of one family
type Format interface {
	// Family returns the family this format serves
	Family() Family

	// Matches reports whether a stored name belongs to the family for List
	Matches(name string) bool

	// Validate returns nil for acceptable content, or an error matching
	// ErrInvalidContent. It never touches storage.
	Validate(content []byte) error

	// Decode converts stored content into the structured view returned by Read
	Decode(content []byte) (any, error)
}
