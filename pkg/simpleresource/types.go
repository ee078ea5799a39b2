package simpleresource

import (
	"fmt"
	"net/http"
)

// Family identifies how a resource is validated and decoded
type Family string

const (
	FamilyPlain Family = "plain"
	FamilyCSV   Family = "csv"
	FamilyJSON  Family = "json"
)

// Families returns the supported families in a stable order
func Families() []Family {
	return []Family{FamilyPlain, FamilyCSV, FamilyJSON}
}

// IsValid reports whether f is one of the supported families
func (f Family) IsValid() bool {
	switch f {
	case FamilyPlain, FamilyCSV, FamilyJSON:
		return true
	}
	return false
}

// ParseFamily converts a route segment into a Family
func ParseFamily(s string) (Family, error) {
	f := Family(s)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFamily, s)
	}
	return f, nil
}

// Status classifies the outcome of an operation
type Status int

const (
	StatusOK Status = iota
	StatusConflict
	StatusNotFound
	StatusUnsupportedContent
	StatusValidationFailed
	StatusInternalFailure
)

var statusNames = map[Status]string{
	StatusOK:                 "OK",
	StatusConflict:           "Conflict",
	StatusNotFound:           "NotFound",
	StatusUnsupportedContent: "UnsupportedContent",
	StatusValidationFailed:   "ValidationFailed",
	StatusInternalFailure:    "InternalFailure",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// HTTPCode maps the status onto the HTTP status code used by the transport
func (s Status) HTTPCode() int {
	switch s {
	case StatusOK:
		return http.StatusOK
	case StatusConflict:
		return http.StatusConflict
	case StatusNotFound:
		return http.StatusNotFound
	case StatusUnsupportedContent:
		return http.StatusUnsupportedMediaType
	case StatusValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteRequest carries the payload for Create and Update
type WriteRequest struct {
	Name    string
	Content string
}

// Result is what a service operation produces for the transport to render.
//
// Content holds the structured view: a []string of names for List, the
// decoded value for Read, and nil for the mutating operations.
type Result struct {
	Status  Status
	Message string
	Content any
}

// Success messages
const (
	MessageListed  = "operation successful"
	MessageCreated = "file saved successfully"
	MessageRead    = "file read successfully"
	MessageUpdated = "file updated successfully"
	MessageDeleted = "file deleted successfully"
)
