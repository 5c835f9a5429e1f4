// Package api exposes the analysis engine over HTTP. It is a thin wrapper:
// every handler parses a request, calls the engine (or the verdict cache)
// and encodes the result. The engine contract stays synchronous and pure.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/qrshield/engine/internal/api/gateway"
	"github.com/qrshield/engine/internal/cache"
	"github.com/qrshield/engine/internal/config"
	"github.com/qrshield/engine/internal/engine"
)

// Server wires the engine, cache and rate limiter behind a chi router.
type Server struct {
	engine  *engine.Engine
	cache   cache.Store
	limiter *gateway.RateLimiter
	logger  *zap.Logger
	cfg     config.ServerConfig
	version string
}

// NewServer builds the HTTP layer.
func NewServer(eng *engine.Engine, store cache.Store, cfg *config.Config, logger *zap.Logger, version string) *Server {
	return &Server{
		engine:  eng,
		cache:   store,
		limiter: gateway.NewRateLimiter(cfg.RateLimit, logger),
		logger:  logger,
		cfg:     cfg.Server,
		version: version,
	}
}

// Router assembles all routes with the standard middleware stack.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.limiter.Middleware(1)).Post("/analyze", s.handleAnalyze)
		r.With(s.limiter.Middleware(10)).Post("/analyze/batch", s.handleAnalyzeBatch)
		r.With(s.limiter.Middleware(1)).Post("/unicode", s.handleUnicode)
		r.Get("/tables/stats", s.handleTableStats)
	})

	return r
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

type batchResponse struct {
	Results []engine.Result `json:"results"`
	Count   int             `json:"count"`
}

type unicodeRequest struct {
	Hostname string `json:"hostname"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, s.analyzeCached(r, req.URL))
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls is required")
		return
	}
	if max := s.cfg.MaxBatchSize; max > 0 && len(req.URLs) > max {
		writeError(w, http.StatusRequestEntityTooLarge, "batch too large")
		return
	}

	results := make([]engine.Result, len(req.URLs))
	for i, u := range req.URLs {
		results[i] = s.analyzeCached(r, u)
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results, Count: len(results)})
}

func (s *Server) handleUnicode(w http.ResponseWriter, r *http.Request) {
	var req unicodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.AnalyzeUnicode(req.Hostname))
}

func (s *Server) handleTableStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.TableStats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": s.version})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Tables are embedded and loaded at startup; once the process serves
	// traffic it is ready.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// analyzeCached consults the verdict cache before running the engine. The
// cache key is the raw input: analysis is case-sensitive outside the host,
// so folding variants onto one key would serve a result for a different
// string than the client sent.
func (s *Server) analyzeCached(r *http.Request, rawURL string) engine.Result {
	key := rawURL
	if res, ok := s.cache.Get(r.Context(), key); ok {
		s.logger.Debug("verdict cache hit", zap.String("key", key))
		return *res
	}

	res := s.engine.Analyze(rawURL)
	s.cache.Set(r.Context(), key, &res)
	return res
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
