package simpleresource

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status Status
		code   int
	}{
		{"nil", nil, StatusOK, http.StatusOK},
		{"field", &FieldError{Field: "content", Reason: "is required"}, StatusValidationFailed, http.StatusUnprocessableEntity},
		{"name", fmt.Errorf("%w: %q", ErrInvalidName, ".."), StatusValidationFailed, http.StatusUnprocessableEntity},
		{"family", ErrUnknownFamily, StatusValidationFailed, http.StatusUnprocessableEntity},
		{"conflict", ErrAlreadyExists, StatusConflict, http.StatusConflict},
		{"not found", fmt.Errorf("%w: a.csv", ErrNotFound), StatusNotFound, http.StatusNotFound},
		{"content", &ValidationError{Family: FamilyCSV, Reason: "no data row"}, StatusUnsupportedContent, http.StatusUnsupportedMediaType},
		{"backend", backendError(errors.New("EIO")), StatusInternalFailure, http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), StatusInternalFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := StatusOf(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, status.HTTPCode())
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, "the content field is required", MessageOf(&FieldError{Field: "content", Reason: "is required"}))
	assert.Equal(t, "invalid file name", MessageOf(ErrInvalidName))
	assert.Equal(t, "file already exists", MessageOf(ErrAlreadyExists))
	assert.Equal(t, "content is not valid json: unexpected end", MessageOf(&ValidationError{Family: FamilyJSON, Reason: "unexpected end"}))
	assert.Equal(t, "storage operation failed", MessageOf(backendError(errors.New("permission denied: /srv/data"))))
}

func TestResultFromError(t *testing.T) {
	err := &ResourceError{Op: "read", Family: FamilyCSV, Name: "a.csv", Err: ErrNotFound}

	result := ResultFromError(err)
	assert.Equal(t, StatusNotFound, result.Status)
	assert.Equal(t, "file does not exist", result.Message)
	assert.Nil(t, result.Content)
	assert.Contains(t, err.Error(), `"a.csv"`)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(backendError(errors.New("timeout"))))
	assert.True(t, IsRetryable(&ResourceError{Op: "list", Err: backendError(errors.New("timeout"))}))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(ErrAlreadyExists))
	assert.False(t, IsRetryable(&ValidationError{Family: FamilyCSV}))
	assert.False(t, IsRetryable(&FieldError{Field: "filename"}))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "UnsupportedContent", StatusUnsupportedContent.String())
	assert.Equal(t, "Status(42)", Status(42).String())
}

func TestParseFamily(t *testing.T) {
	for _, f := range Families() {
		got, err := ParseFamily(string(f))
		assert.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFamily("xml")
	assert.ErrorIs(t, err, ErrUnknownFamily)
}
