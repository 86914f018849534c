// ============================================================================
// cdlc - CDL compiler front-end
// ============================================================================
//
// Package:     astview
// Description: Message types for async operations in the Ast viewer
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package astview

import (
	"time"

	"github.com/msto63/cdlc/foundation/cdl"
)

// compiledMsg is sent when a (re)compilation finished
type compiledMsg struct {
	result  *cdl.Result
	err     error
	elapsed time.Duration
}

// reloadMsg asks the model to load and compile the source again
type reloadMsg struct{}
