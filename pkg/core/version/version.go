// ============================================================================
// cdlc - CDL compiler front-end
// ============================================================================
//
// Package:     version
// Description: Central version management for the tool and its components
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for cdlc and its components
const (
	// Tool version
	Tool = "0.3.0"

	// Component versions
	Language = "1.0.0" // CDL grammar accepted by the parser
	Server   = "0.2.0"
	Store    = "0.1.0" // history database schema
)

// Commit is set at build time via -ldflags "-X .../version.Commit=..."
var Commit = "dev"

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "language", "cdl":
		return Language
	case "server":
		return Server
	case "store":
		return Store
	default:
		return Tool
	}
}

// String returns the one-line version banner printed by `cdlc version`
func String() string {
	return fmt.Sprintf("cdlc %s (cdl %s, commit %s, %s %s/%s)",
		Tool, Language, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
