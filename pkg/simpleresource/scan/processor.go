package scan

import (
	"context"

	"github.com/tendant/simple-resource/pkg/simpleresource"
)

// Resource is one stored resource handed to a Processor
type Resource struct {
	Family simpleresource.Family
	Name   string

	// View is the decoded structured view, as returned by Read
	View any
}

// ResourceProcessor processes individual resources.
// External apps implement this to define custom processing logic.
//
// Example implementations:
//   - Exporter (copies resources to another backend)
//   - Reporter (counts rows or keys per resource)
type ResourceProcessor interface {
	// Process is called for each resource that decodes cleanly.
	// Return error to mark this resource as failed (scan continues with next resource).
	Process(ctx context.Context, resource *Resource) error
}
