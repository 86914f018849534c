// ============================================================================
// cdlc - CDL compiler front-end
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating foundation loggers from config
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"strings"

	mdwlog "github.com/msto63/cdlc/foundation/core/log"
	"github.com/msto63/cdlc/pkg/core/config"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name, used as the logger name
	ServiceName string

	// Log level (trace, debug, info, warn, error, fatal, audit)
	Level string

	// Output format: "json", "text", "console" or "logfmt" (default: json)
	Format string

	// Primary output (default: os.Stderr)
	Output io.Writer

	// Additional outputs besides the primary one
	AdditionalOutputs []io.Writer

	// Record file:line of the log call
	EnableCaller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// ConfigFor derives a LoggerConfig from the general section of the
// application configuration
func ConfigFor(serviceName string, general config.GeneralConfig) LoggerConfig {
	cfg := DefaultLoggerConfig(serviceName)
	if general.LogLevel != "" {
		cfg.Level = general.LogLevel
	}
	if general.LogFormat != "" {
		cfg.Format = general.LogFormat
	}
	cfg.EnableCaller = general.Environment == "development" && cfg.Level == "debug"
	return cfg
}

// NewLogger creates a new foundation logger
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	level := parseLevel(cfg.Level)

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	// Unknown formats fall back to JSON
	format, _ := mdwlog.ParseFormat(cfg.Format)

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:        level,
		Format:       format,
		Output:       output,
		Name:         cfg.ServiceName,
		EnableCaller: cfg.EnableCaller,
	})
}

// NewSimpleLogger creates a logger with the default configuration
func NewSimpleLogger(serviceName string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// Discard returns a logger that drops everything below fatal
func Discard() *mdwlog.Logger {
	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:  mdwlog.LevelFatal,
		Format: mdwlog.FormatJSON,
		Output: io.Discard,
	})
}

// parseLevel converts a string level to mdwlog.Level, defaulting to info
func parseLevel(level string) mdwlog.Level {
	parsed, err := mdwlog.ParseLevel(level)
	if err != nil {
		return mdwlog.LevelInfo
	}
	return parsed
}

// KV converts alternating key-value pairs to mdwlog.Fields. Non-string keys
// and a trailing key without value are skipped.
func KV(keysAndValues ...interface{}) mdwlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(mdwlog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
