// ============================================================================
// cdlc - CDL compiler front-end
// ============================================================================
//
// Package:     astview
// Description: Styles for the Ast viewer TUI
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package astview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/cdlc/foundation/cdl/ast"
)

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	ColorBgPanel = lipgloss.Color("#1E293B") // Slate 800

	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

// Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2).
			MarginBottom(1)
)

// Tree styles
var (
	TreePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	LinePrefixStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	ContainerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	ReferenceStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	LiteralStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	PlainStyle = lipgloss.NewStyle().
			Foreground(ColorText)
)

// Diagnostics panel styles
var (
	DiagPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorWarning).
			Padding(0, 1)

	DiagFatalStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	DiagWarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	DiagOKStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)
)

// Status and help styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Logo
const Logo = "cdlc Ast viewer"

// RenderKeyHint renders a keyboard shortcut hint
func RenderKeyHint(key, description string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}

// styleFor picks the tree line style for a node kind
func styleFor(kind ast.Kind) lipgloss.Style {
	switch kind {
	case ast.KindScript, ast.KindEntity, ast.KindProperty, ast.KindFormula:
		return ContainerStyle
	case ast.KindReference, ast.KindVPath, ast.KindTableAlias:
		return ReferenceStyle
	case ast.KindString, ast.KindNumber, ast.KindBoolean, ast.KindColor:
		return LiteralStyle
	default:
		return PlainStyle
	}
}
