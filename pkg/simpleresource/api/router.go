// Package api exposes a simpleresource.Service over HTTP.
//
// Each family is mounted under /api/{family}:
//
//	GET    /api/csv          list names
//	POST   /api/csv          create {filename, content}
//	GET    /api/csv/{name}   read the decoded content
//	PUT    /api/csv/{name}   replace {content}
//	DELETE /api/csv/{name}   delete
//
// /api/hello is kept as an alias of /api/plain.
package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/simple-resource/pkg/simpleresource"
)

const (
	// DefaultMaxBodyBytes caps request bodies
	DefaultMaxBodyBytes int64 = 10 << 20

	// DefaultRequestTimeout bounds each request
	DefaultRequestTimeout = 60 * time.Second
)

// HelloAlias is the legacy route name for the plain family
const HelloAlias = "hello"

type routerConfig struct {
	logger         *slog.Logger
	staticDir      string
	maxBodyBytes   int64
	requestTimeout time.Duration
	cors           bool
}

// RouterOption configures NewRouter
type RouterOption func(*routerConfig)

// WithLogger sets the logger for request and handler logs
func WithLogger(logger *slog.Logger) RouterOption {
	return func(c *routerConfig) {
		c.logger = logger
	}
}

// WithStaticDir serves index.html at / and files under /static/ from dir
func WithStaticDir(dir string) RouterOption {
	return func(c *routerConfig) {
		c.staticDir = dir
	}
}

// WithMaxBodyBytes caps request bodies. Zero or less disables the cap.
func WithMaxBodyBytes(n int64) RouterOption {
	return func(c *routerConfig) {
		c.maxBodyBytes = n
	}
}

// WithRequestTimeout bounds each request. Zero or less disables the timeout.
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(c *routerConfig) {
		c.requestTimeout = d
	}
}

// WithCORS enables permissive CORS headers, used in development
func WithCORS(enabled bool) RouterOption {
	return func(c *routerConfig) {
		c.cors = enabled
	}
}

// NewRouter builds the HTTP handler for svc
func NewRouter(svc simpleresource.Service, opts ...RouterOption) http.Handler {
	cfg := routerConfig{
		logger:         slog.Default(),
		maxBodyBytes:   DefaultMaxBodyBytes,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.logger))
	r.Use(middleware.Recoverer)
	if cfg.requestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.requestTimeout))
	}
	if cfg.cors {
		r.Use(CORS(nil))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		for _, family := range simpleresource.Families() {
			if _, err := svc.Collection(family); err != nil {
				continue
			}
			h := NewHandler(svc, family, cfg.logger)
			h.maxBodyBytes = cfg.maxBodyBytes

			r.Mount("/"+string(family), h.Routes())
			if family == simpleresource.FamilyPlain {
				r.Mount("/"+HelloAlias, h.Routes())
			}
		}
	})

	if cfg.staticDir != "" {
		mountStatic(r, cfg.staticDir, cfg.logger)
	}

	return r
}

func mountStatic(r chi.Router, dir string, logger *slog.Logger) {
	index := filepath.Join(dir, "index.html")

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		info, err := os.Stat(index)
		if err != nil || info.IsDir() {
			logger.Warn("Front end index not found", "path", index)
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})

	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
	r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})
}
