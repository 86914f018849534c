package handler

import (
	"context"
	"errors"
	"time"

	"github.com/msto63/cdlc/foundation/cdl"
	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
	"github.com/msto63/cdlc/internal/store"
	"github.com/msto63/cdlc/pkg/core/cache"
	"github.com/msto63/cdlc/pkg/core/logging"
)

// CompileRequest is the body of POST /api/v1/compile and the payload of a
// websocket compile message
type CompileRequest struct {
	Name        string `json:"name,omitempty"`
	Source      string `json:"source"`
	SkipResolve bool   `json:"skip_resolve,omitempty"`
	IncludeAst  bool   `json:"include_ast,omitempty"`
}

// CompileResponse reports the outcome of one compilation. A syntax error is
// a regular outcome with OK false and a single fatal diagnostic.
type CompileResponse struct {
	RunID       string          `json:"run_id,omitempty"`
	Name        string          `json:"name,omitempty"`
	OK          bool            `json:"ok"`
	Cached      bool            `json:"cached"`
	Nodes       int             `json:"nodes"`
	Tokens      int             `json:"tokens"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
	Timings     *Timings        `json:"timings,omitempty"`
	Ast         *ast.ExportNode `json:"ast,omitempty"`
}

// Diagnostic is the wire form of a front-end diagnostic
type Diagnostic struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Fatal   bool   `json:"fatal"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Timings holds phase durations in milliseconds
type Timings struct {
	TokenizeMS float64 `json:"tokenize_ms"`
	ParseMS    float64 `json:"parse_ms"`
	ResolveMS  float64 `json:"resolve_ms"`
	TotalMS    float64 `json:"total_ms"`
}

// ServiceConfig wires the compile service
type ServiceConfig struct {
	Cache         *cache.ResultCache
	Runs          store.RunStore
	Logger        *mdwlog.Logger
	MaxInputBytes int
}

// Service compiles sources through the result cache and records every
// compilation in the run store. It is shared by the HTTP and websocket
// handlers.
type Service struct {
	cache         *cache.ResultCache
	runs          store.RunStore
	logger        *mdwlog.Logger
	maxInputBytes int
}

// NewService creates a compile service. A nil cache compiles every request;
// a nil store keeps runs in memory.
func NewService(cfg ServiceConfig) *Service {
	runs := cfg.Runs
	if runs == nil {
		runs = store.NewMemoryRunStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		cache:         cfg.Cache,
		runs:          runs,
		logger:        logger.WithName("service"),
		maxInputBytes: cfg.MaxInputBytes,
	}
}

// Runs returns the run store
func (s *Service) Runs() store.RunStore {
	return s.runs
}

// Compile runs one compilation. The returned error is set only when the
// input is rejected before compiling (e.g. over the size limit).
func (s *Service) Compile(ctx context.Context, req CompileRequest) (*CompileResponse, error) {
	opts := cdl.Options{
		Name:          req.Name,
		MaxInputBytes: s.maxInputBytes,
		SkipResolve:   req.SkipResolve,
		Logger:        s.logger,
	}

	start := time.Now()
	var outcome cache.Outcome
	var cached bool
	if s.cache != nil {
		outcome, cached = s.cache.Compile(req.Source, opts)
	} else {
		outcome.Result, outcome.Err = cdl.Compile(req.Source, opts)
	}
	elapsed := time.Since(start)

	if outcome.Err != nil && !cdl.IsSyntaxError(outcome.Err) {
		return nil, outcome.Err
	}

	resp := &CompileResponse{
		Name:        req.Name,
		Cached:      cached,
		Diagnostics: []Diagnostic{},
	}

	if outcome.Err != nil {
		var d *diag.Diagnostic
		errors.As(outcome.Err, &d)
		resp.Diagnostics = append(resp.Diagnostics, toDiagnostic(d))
	} else {
		res := outcome.Result
		resp.OK = res.OK()
		resp.Nodes = res.Ast.Len()
		resp.Tokens = res.Tokens
		for _, d := range res.Diagnostics {
			resp.Diagnostics = append(resp.Diagnostics, toDiagnostic(d))
		}
		resp.Timings = &Timings{
			TokenizeMS: ms(res.Timings.Tokenize),
			ParseMS:    ms(res.Timings.Parse),
			ResolveMS:  ms(res.Timings.Resolve),
			TotalMS:    ms(res.Timings.Total),
		}
		if req.IncludeAst {
			resp.Ast = res.Ast.Export()
		}
	}

	logger := logging.FromContext(ctx, s.logger)
	run := store.NewRun(req.Name, req.Source, outcome.Result, outcome.Err, elapsed)
	if err := s.runs.Record(ctx, run); err != nil {
		logger.Warn("failed to record run", mdwlog.Err(err))
	} else {
		resp.RunID = run.ID
	}

	logger.Debug("compiled", mdwlog.Fields{
		"name":        req.Name,
		"ok":          resp.OK,
		"cached":      cached,
		"diagnostics": len(resp.Diagnostics),
	})
	return resp, nil
}

func toDiagnostic(d *diag.Diagnostic) Diagnostic {
	return Diagnostic{
		Kind:    d.Kind.String(),
		Code:    string(d.Kind.Code()),
		Fatal:   d.Kind.Fatal(),
		Message: d.Describe(),
		Line:    d.Position.Line,
		Column:  d.Position.Column,
		Start:   d.Span.Start,
		End:     d.Span.End,
	}
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
