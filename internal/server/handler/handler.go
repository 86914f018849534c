package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
	"github.com/msto63/cdlc/internal/store"
	"github.com/msto63/cdlc/pkg/core/config"
	"github.com/msto63/cdlc/pkg/core/health"
)

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// RootResponse describes the service at GET /api/v1
type RootResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Uptime    string   `json:"uptime"`
	Endpoints []string `json:"endpoints"`
}

// RunsResponse represents a page of the compile history
type RunsResponse struct {
	Runs  []*store.Run `json:"runs"`
	Total int          `json:"total"`
}

// Options configures a Handler
type Options struct {
	Version string
	Health  *health.Registry
	Logger  *mdwlog.Logger
	CORS    config.CORSConfig

	// MaxBodyBytes limits request bodies. Zero means no limit.
	MaxBodyBytes int64
}

// Handler handles HTTP requests for the compile API
type Handler struct {
	service   *Service
	health    *health.Registry
	logger    *mdwlog.Logger
	cors      config.CORSConfig
	maxBody   int64
	startTime time.Time
	version   string
}

// NewHandler creates a new API handler
func NewHandler(service *Service, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = service.logger
	}
	return &Handler{
		service:   service,
		health:    opts.Health,
		logger:    logger.WithName("handler"),
		cors:      opts.CORS,
		maxBody:   opts.MaxBodyBytes,
		startTime: time.Now(),
		version:   opts.Version,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cors.Enabled {
		h.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	// Route requests
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		h.handleRoot(w, r)
	case path == "health":
		h.handleHealth(w, r)
	case path == "compile":
		h.handleCompile(w, r)
	case path == "runs":
		h.handleRuns(w, r)
	case path == "runs/stats":
		h.handleRunStats(w, r)
	case strings.HasPrefix(path, "runs/"):
		h.handleRun(w, r, strings.TrimPrefix(path, "runs/"))
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Endpoint not found", "")
	}
}

func (h *Handler) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	allowed := len(h.cors.AllowedOrigins) == 0
	for _, o := range h.cors.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}

	if origin == "" || len(h.cors.AllowedOrigins) == 0 {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Allow-Methods", strings.Join(h.cors.AllowedMethods, ", "))
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// handleRoot handles the root endpoint
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	h.writeJSON(w, http.StatusOK, RootResponse{
		Name:    "cdlc",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Endpoints: []string{
			"POST /api/v1/compile",
			"GET /api/v1/runs",
			"GET /api/v1/runs/stats",
			"GET /api/v1/runs/{id}",
			"GET /health",
			"GET /ws",
		},
	})
}

// handleHealth reports the health registry. Unhealthy reports use 503.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	if h.health == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": string(health.StatusHealthy)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	report := h.health.Check(ctx)

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

// handleCompile compiles the posted source
func (h *Handler) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req CompileRequest
	if err := h.readJSON(w, r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "Request body too large", err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}
	if q := r.URL.Query().Get("ast"); q != "" {
		req.IncludeAst, _ = strconv.ParseBool(q)
	}

	resp, err := h.service.Compile(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleRuns lists recorded compilations. Query parameters: name, hash,
// failed, limit, offset.
func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	q := r.URL.Query()
	filter := store.RunFilter{
		Name:  q.Get("name"),
		Hash:  q.Get("hash"),
		Limit: 50,
	}
	if v := q.Get("failed"); v != "" {
		filter.FailedOnly, _ = strconv.ParseBool(v)
	}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid "+key, v)
			return
		}
		*dst = n
	}

	runs, err := h.service.Runs().List(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	h.writeJSON(w, http.StatusOK, RunsResponse{Runs: runs, Total: len(runs)})
}

// handleRunStats summarizes the compile history
func (h *Handler) handleRunStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	stats, err := h.service.Runs().Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// handleRun returns one recorded compilation including its source
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	run, err := h.service.Runs().Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// Helper methods

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	dec := json.NewDecoder(body)
	return dec.Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", mdwlog.Err(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// writeServiceError maps a structured error to its HTTP status
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	code := mdwerror.GetCode(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.ErrorWithErr("request failed", err)
	}
	h.writeError(w, status, strings.ToLower(string(code)), err.Error(), "")
}
