// File: cdl.go
// Title: CDL Compiler Facade
// Description: Runs the front-end phases (tokenize, parse, resolve) on a
//              source text and reports the Ast, the resolution diagnostics
//              and per-phase timings.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial facade

package cdl

import (
	"errors"
	"io"
	"time"

	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/foundation/cdl/parser"
	"github.com/msto63/cdlc/foundation/cdl/resolver"
	"github.com/msto63/cdlc/foundation/cdl/source"
	"github.com/msto63/cdlc/foundation/cdl/token"
	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
)

// Options configures a compilation
type Options struct {
	// Name identifies the source in log output, usually the file name
	Name string

	// MaxInputBytes rejects larger sources. Zero means no limit.
	MaxInputBytes int

	// SkipResolve stops after parsing
	SkipResolve bool

	Logger *mdwlog.Logger
}

// Timings holds the duration of each phase
type Timings struct {
	Tokenize time.Duration `json:"tokenize" yaml:"tokenize"`
	Parse    time.Duration `json:"parse" yaml:"parse"`
	Resolve  time.Duration `json:"resolve" yaml:"resolve"`
	Total    time.Duration `json:"total" yaml:"total"`
}

// Result is a successful compilation. Diagnostics holds the non-fatal
// resolution problems.
type Result struct {
	Ast         *ast.Ast
	Tokens      int
	Lines       *source.LineIndex
	Symbols     *resolver.Context
	Diagnostics diag.List
	Timings     Timings
}

// OK reports whether resolution found no problems
func (r *Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Compile tokenizes, parses and resolves src. Syntax errors abort the
// compilation and are returned as *diag.Diagnostic with line and column.
func Compile(src string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = mdwlog.NewWithConfig(mdwlog.Config{Level: mdwlog.LevelFatal, Output: io.Discard})
	}
	logger = logger.WithName("cdl")
	if opts.Name != "" {
		logger = logger.WithField("source", opts.Name)
	}

	if opts.MaxInputBytes > 0 && len(src) > opts.MaxInputBytes {
		return nil, mdwerror.Newf("source is %d bytes, limit is %d", len(src), opts.MaxInputBytes).
			WithCode(mdwerror.CodeInvalidLength).
			WithOperation("cdl.Compile").
			WithDetail("bytes", len(src))
	}

	timer := logger.StartTimer("compile").WithField("bytes", len(src))
	defer timer.Stop()

	result := &Result{Lines: source.NewLineIndex(src)}

	tokens, err := token.Tokenize(src)
	result.Timings.Tokenize = timer.Checkpoint("tokenize")
	if err != nil {
		return nil, fail(logger, locate(err, result.Lines))
	}
	result.Tokens = len(tokens)

	result.Ast, err = parser.Parse(tokens, parser.Options{
		Logger: logger,
		Lines:  result.Lines,
		Source: src,
	})
	result.Timings.Parse = timer.Checkpoint("parse", mdwlog.Field("nodes", astLen(result.Ast)))
	if err != nil {
		return nil, fail(logger, err)
	}

	if !opts.SkipResolve {
		result.Symbols = resolver.NewContext(resolver.WithLines(result.Lines), resolver.WithLogger(logger))
		result.Diagnostics = resolver.Resolve(result.Ast, result.Symbols)
		result.Timings.Resolve = timer.Checkpoint("resolve", mdwlog.Field("diagnostics", len(result.Diagnostics)))
	}

	result.Timings.Total = timer.Elapsed()
	return result, nil
}

// IsSyntaxError reports whether err is a diagnostic from tokenizing or
// parsing, as opposed to a rejected input
func IsSyntaxError(err error) bool {
	var d *diag.Diagnostic
	return errors.As(err, &d)
}

func fail(logger *mdwlog.Logger, err error) error {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		logger.Debug("compile failed", mdwlog.Fields{
			"kind":   d.Kind.String(),
			"line":   d.Position.Line,
			"column": d.Position.Column,
		})
	}
	return err
}

func locate(err error, lines *source.LineIndex) error {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		d.Locate(lines)
	}
	return err
}

func astLen(a *ast.Ast) int {
	if a == nil {
		return 0
	}
	return a.Len()
}
