// Package http exposes the transaction REST surface and the embedded
// dashboard page.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/service"
	appweb "fintrack/web"
)

// Options tune the server; zero values fall back to sensible defaults.
type Options struct {
	CORSOrigin string
	CacheTTL   time.Duration
	CacheSize  int
	Logger     *applog.Logger
}

type Server struct {
	http.Server
	svc       *service.Service
	logger    *applog.Logger
	limiter   *rateLimiter
	templates *template.Template

	// Response caches, purged wholesale on any successful mutation so
	// reads always reflect server state after a write.
	listCache    *cache.LRU[listResponse]
	summaryCache *cache.LRU[core.Summary]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server listening on addr.
func NewServer(addr string, svc *service.Service, opts Options) *Server {
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	mux := http.NewServeMux()
	s := &Server{
		svc:              svc,
		logger:           opts.Logger,
		limiter:          newRateLimiter(),
		listCache:        cache.NewLRU[listResponse](opts.CacheSize, opts.CacheTTL),
		summaryCache:     cache.NewLRU[core.Summary](opts.CacheSize, opts.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}
	s.Server = http.Server{
		Addr:    addr,
		Handler: chain(mux,
			applog.Middleware(opts.Logger),
			corsMiddleware(opts.CORSOrigin),
			securityHeadersMiddleware,
			s.rateLimitMiddleware),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("POST /api/transactions", s.handleCreate)
	mux.HandleFunc("GET /api/transactions", s.handleList)
	mux.HandleFunc("GET /api/transactions/summary", s.handleSummary)
	mux.HandleFunc("GET /api/transactions/summary/chart", s.handleSummaryChart)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDelete)

	go s.startCacheCleanup()
	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			listCleaned := s.listCache.CleanExpired()
			summaryCleaned := s.summaryCache.CleanExpired()
			if listCleaned > 0 || summaryCleaned > 0 {
				s.logger.Debug("Cache cleanup completed",
					"list_entries_removed", listCleaned,
					"summary_entries_removed", summaryCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the HTTP server and background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateCaches drops every cached read; called after each mutation.
func (s *Server) invalidateCaches() {
	s.listCache.Purge()
	s.summaryCache.Purge()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", "path", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
