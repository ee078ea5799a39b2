package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-resource/pkg/simpleresource"
)

// Scanner reads every resource of a family and processes it with the provided processor.
type Scanner struct {
	svc    simpleresource.Service
	logger *slog.Logger
}

// New creates a new Scanner instance.
func New(svc simpleresource.Service, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{svc: svc, logger: logger}
}

// ScanOptions configures the scan operation.
type ScanOptions struct {
	// Family selects which resources to process
	Family simpleresource.Family

	// Processor defines the processing logic (optional; without one the scan
	// only verifies that every resource reads and decodes)
	Processor ResourceProcessor

	// BatchSize controls how often OnProgress is called (default: 100)
	BatchSize int

	// DryRun if true, doesn't read resources, just reports what would be processed
	DryRun bool

	// OnProgress is called after each batch is processed (optional)
	OnProgress func(processed, total int64)
}

// Failure records why one resource could not be processed
type Failure struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ScanResult contains statistics about the scan operation.
type ScanResult struct {
	// TotalFound is the number of names listed for the family
	TotalFound int64 `json:"total_found"`

	// TotalProcessed is the number of resources successfully processed
	TotalProcessed int64 `json:"total_processed"`

	// TotalFailed is the number of resources that failed to read, decode or process
	TotalFailed int64 `json:"total_failed"`

	// Failures lists each failed resource in scan order
	Failures []Failure `json:"failures,omitempty"`
}

// Scan lists the family and reads each resource through the service, so stored
// content that no longer passes the family codec shows up as a failure.
// A failure to list aborts the scan; per-resource failures do not.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	listed, err := s.svc.List(ctx, opts.Family)
	if err != nil {
		return result, fmt.Errorf("failed to list %s resources: %w", opts.Family, err)
	}
	names, _ := listed.Content.([]string)
	result.TotalFound = int64(len(names))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if opts.DryRun {
			s.logger.Info("[DRY-RUN] Would process", "family", string(opts.Family), "name", name)
			result.TotalProcessed++
		} else {
			s.process(ctx, opts, name, result)
		}

		if opts.OnProgress != nil && ((i+1)%opts.BatchSize == 0 || i == len(names)-1) {
			opts.OnProgress(result.TotalProcessed+result.TotalFailed, result.TotalFound)
		}
	}

	return result, nil
}

func (s *Scanner) process(ctx context.Context, opts ScanOptions, name string, result *ScanResult) {
	read, err := s.svc.Read(ctx, opts.Family, name)
	if err == nil && opts.Processor != nil {
		err = opts.Processor.Process(ctx, &Resource{Family: opts.Family, Name: name, View: read.Content})
	}
	if err == nil {
		result.TotalProcessed++
		return
	}

	failure := Failure{Name: name, Status: "ProcessorFailed", Message: err.Error()}
	var resourceErr *simpleresource.ResourceError
	if errors.As(err, &resourceErr) {
		failure.Status = simpleresource.StatusOf(err).String()
		failure.Message = simpleresource.MessageOf(err)
	}

	result.TotalFailed++
	result.Failures = append(result.Failures, failure)
	s.logger.Warn("Failed to process resource", "family", string(opts.Family), "name", name, "error", err)
}

// ForEach is a convenience method that processes each resource with a callback function.
//
// Example:
//
//	scanner.ForEach(ctx, simpleresource.FamilyCSV, func(ctx context.Context, r *scan.Resource) error {
//	    rows := r.View.([]format.Row)
//	    fmt.Printf("%s: %d rows\n", r.Name, len(rows))
//	    return nil
//	})
func (s *Scanner) ForEach(ctx context.Context, family simpleresource.Family, fn func(context.Context, *Resource) error) (*ScanResult, error) {
	return s.Scan(ctx, ScanOptions{
		Family:    family,
		Processor: &funcProcessor{fn: fn},
	})
}

// Verify reads every resource of family and reports the ones that fail to decode
func (s *Scanner) Verify(ctx context.Context, family simpleresource.Family) (*ScanResult, error) {
	return s.Scan(ctx, ScanOptions{Family: family})
}

// funcProcessor adapts a function to the ResourceProcessor interface.
type funcProcessor struct {
	fn func(context.Context, *Resource) error
}

func (p *funcProcessor) Process(ctx context.Context, resource *Resource) error {
	return p.fn(ctx, resource)
}
