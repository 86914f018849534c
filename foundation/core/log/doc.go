// Package log provides structured logging for cdlc.
//
// Package: log
// Title: Structured Logging
// Description: Structured logging with contextual fields, several output
//              formats, level filtering and integration with the structured
//              error package.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-03-02 v0.2.0: Synchronous writer, compile phase timers
//
// Usage:
//   import mdwlog "github.com/msto63/cdlc/foundation/core/log"
//
//   logger := mdwlog.New().
//     WithLevel(mdwlog.LevelDebug).
//     WithFormat(mdwlog.FormatText).
//     WithField("source", "dashboard.cdl")
//
//   logger.Info("compile finished", mdwlog.Fields{"nodes": 412})
//
//   timer := logger.StartTimer("compile")
//   timer.Checkpoint("tokenize")
//   timer.Checkpoint("parse")
//   timer.Stop()
package log
