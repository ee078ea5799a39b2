package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-resource/pkg/simpleresource"
)

// WriteRequest is the request body for Create and Update
type WriteRequest struct {
	Filename string `json:"filename" form:"filename"`
	Content  string `json:"content" form:"content"`
}

// Response is the body of every resource response
type Response struct {
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// Handler handles HTTP requests for the resources of one family
type Handler struct {
	service      simpleresource.Service
	family       simpleresource.Family
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewHandler creates a new handler serving family
func NewHandler(service simpleresource.Service, family simpleresource.Family, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:      service,
		family:       family,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       logger.With("family", string(family)),
	}
}

// Routes returns the routes for the family
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{name}", h.Read)
	r.Put("/{name}", h.Update)
	r.Delete("/{name}", h.Delete)

	return r
}

// List returns the names stored for the family
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), h.family)
	h.respond(w, r, result, err)
}

// Create stores a new resource named by the filename field
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.service.Create(r.Context(), h.family, simpleresource.WriteRequest{
		Name:    req.Filename,
		Content: req.Content,
	})
	h.respond(w, r, result, err)
}

// Read returns the decoded content of a resource
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Read(r.Context(), h.family, resourceName(r))
	h.respond(w, r, result, err)
}

// Update replaces the content of the resource named in the path
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	// The path names the resource; a filename in the body is ignored.
	result, err := h.service.Update(r.Context(), h.family, simpleresource.WriteRequest{
		Name:    resourceName(r),
		Content: req.Content,
	})
	h.respond(w, r, result, err)
}

// Delete removes the resource named in the path
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Delete(r.Context(), h.family, resourceName(r))
	h.respond(w, r, result, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*WriteRequest, bool) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req WriteRequest
	if err := render.Decode(r, &req); err != nil {
		status := http.StatusUnprocessableEntity
		message := "invalid request body"

		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = "request body too large"
		}

		h.logger.Warn("Failed to decode request body", "path", r.URL.Path, "error", err)
		render.Status(r, status)
		render.JSON(w, r, Response{Message: message})
		return nil, false
	}
	return &req, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, result *simpleresource.Result, err error) {
	if err != nil {
		result = simpleresource.ResultFromError(err)
	}
	render.Status(r, result.Status.HTTPCode())
	render.JSON(w, r, Response{
		Message: result.Message,
		Content: result.Content,
	})
}

// resourceName returns the unescaped {name} path parameter
func resourceName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
