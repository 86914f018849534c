// File: timer.go
// Title: Performance Timer
// Description: Measures the duration of an operation and logs it on completion.
//              Used for the tokenize, parse and resolve phase timings.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-03-02 v0.2.0: Checkpoints return the lap duration

package log

import (
	"time"
)

// Timer represents a performance timer for measuring operation duration
type Timer struct {
	logger    *Logger
	operation string
	startTime time.Time
	lastLap   time.Time
	fields    Fields
	level     Level
	stopped   bool
}

// NewTimer creates a new timer for the given operation
func NewTimer(logger *Logger, operation string) *Timer {
	now := time.Now()
	return &Timer{
		logger:    logger,
		operation: operation,
		startTime: now,
		lastLap:   now,
		fields:    make(Fields),
		level:     LevelDebug,
	}
}

// WithLevel sets the log level for the timer completion message
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to be logged when the timer completes
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the elapsed time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Checkpoint logs the time since the previous checkpoint and returns it
func (t *Timer) Checkpoint(name string, fields ...Fields) time.Duration {
	now := time.Now()
	lap := now.Sub(t.lastLap)
	t.lastLap = now

	if t.logger != nil {
		f := Fields{
			"operation":   t.operation,
			"checkpoint":  name,
			"duration_ms": float64(lap.Nanoseconds()) / 1e6,
		}
		for _, set := range fields {
			f = f.Merge(set)
		}
		t.logger.log(t.level, t.operation+" "+name, nil, f)
	}
	return lap
}

// Stop stops the timer and logs the elapsed time. A second call returns 0.
func (t *Timer) Stop() time.Duration {
	if t.stopped {
		return 0
	}
	t.stopped = true
	elapsed := t.Elapsed()

	if t.logger != nil {
		t.fields["operation"] = t.operation
		t.fields["duration_ms"] = float64(elapsed.Nanoseconds()) / 1e6
		t.logger.log(t.level, t.operation+" completed", nil, t.fields)
	}
	return elapsed
}

// StopWithError stops the timer and logs err with the elapsed time
func (t *Timer) StopWithError(err error) time.Duration {
	if t.stopped {
		return 0
	}
	t.stopped = true
	elapsed := t.Elapsed()

	if t.logger != nil {
		t.fields["operation"] = t.operation
		t.fields["duration_ms"] = float64(elapsed.Nanoseconds()) / 1e6
		t.fields["success"] = false
		t.logger.log(LevelError, t.operation+" failed", err, t.fields)
	}
	return elapsed
}
