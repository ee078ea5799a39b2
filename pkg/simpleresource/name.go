package simpleresource

import (
	"fmt"
	"strings"
)

// ValidateName checks that name can be used as a storage key.
//
// Names are opaque base names: they may not be empty, may not be "." or "..",
// and may not contain path separators or NUL bytes. Anything that could be
// interpreted as a path outside the storage root is rejected.
func ValidateName(name string) error {
	switch {
	case name == "":
		return &FieldError{Field: "filename", Reason: "is required"}
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}
