// File: doc.go
// Title: Error Package Documentation
// Description: Structured errors for cdlc with codes, severity and context.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-03-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-03-02 v0.2.0: CDL codes
//
// Usage:
//   import mdwerror "github.com/msto63/cdlc/foundation/core/error"
//
//   err := mdwerror.New("unexpected token").
//     WithCode(mdwerror.CodeCDLUnexpectedToken).
//     WithDetail("line", 3).
//     WithOperation("parser.Parse")
//
//   wrapped := mdwerror.Wrap(err, "compile dashboard.cdl")
//   if mdwerror.HasCode(wrapped, mdwerror.CodeCDLUnexpectedToken) {
//     // report as a syntax error
//   }

// Package error provides structured errors with codes and severity.
package error
