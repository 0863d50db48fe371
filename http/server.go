package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/sitelinks"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the web crawler API!"

// ShutdownTimeout bounds graceful shutdown of the API server.
const ShutdownTimeout = 10 * time.Second

// CrawlRequest is the body of POST /crawl.
type CrawlRequest struct {
	URL string `json:"url"`
}

// CrawlResponse is the success body of POST /crawl.
type CrawlResponse struct {
	TotalLinks int      `json:"total_links"`
	Links      []string `json:"links"`
}

// ErrorResponse is the failure body of every endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Server exposes discovery over HTTP.
//
// Discoveries run one at a time because every run overwrites the same
// artifact.
type Server struct {
	discoverer sitelinks.Discoverer
	logger     *slog.Logger
	router     *http.ServeMux

	mu sync.Mutex
}

// NewServer creates a Server running discoveries through d.
func NewServer(d sitelinks.Discoverer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		discoverer: d,
		logger:     logger,
		router:     http.NewServeMux(),
	}
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.HandleFunc("POST /crawl", s.handleCrawl)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, sitelinks.Errorf(sitelinks.EINVALID, "invalid request body: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.discoverer.Discover(r.Context(), req.URL)
	if err != nil {
		s.logger.Error("crawl failed", "url", req.URL, "code", sitelinks.ErrorCode(err), "error", err)
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CrawlResponse{
		TotalLinks: res.Count,
		Links:      res.Links,
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, ErrorStatusCode(err), ErrorResponse{Detail: errorDetail(err)})
}

// ErrorStatusCode maps an error to the HTTP status reported to clients.
func ErrorStatusCode(err error) int {
	switch sitelinks.ErrorCode(err) {
	case sitelinks.EINVALID:
		return http.StatusBadRequest
	case sitelinks.EDISALLOWED:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func errorDetail(err error) string {
	var e *sitelinks.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
