// ============================================================================
// cdlc - CDL compiler front-end
// ============================================================================
//
// Package:     astview
// Description: Bubbletea model browsing a compiled Ast as an indented tree
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package astview

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/cdlc/foundation/cdl"
	"github.com/msto63/cdlc/foundation/cdl/ast"
	"github.com/msto63/cdlc/foundation/cdl/diag"
	"github.com/msto63/cdlc/pkg/core/version"
)

const (
	headerHeight   = 4 // Title panel + margin
	footerHeight   = 4 // Status bar + help
	maxDiagEntries = 6
)

// Loader returns the source to compile. It is called on start and on every
// reload.
type Loader func() (string, error)

// Config holds viewer configuration
type Config struct {
	// Name is shown in the header, usually the file name
	Name string

	// Load provides the source
	Load Loader

	// Options are passed to cdl.Compile
	Options cdl.Options
}

// Model is the Bubbletea model for the Ast viewer
type Model struct {
	// State
	width           int
	height          int
	ready           bool
	showDiagnostics bool
	err             error

	// Components
	viewport viewport.Model

	// Compilation
	name    string
	load    Loader
	opts    cdl.Options
	result  *cdl.Result
	lines   []treeLine
	elapsed time.Duration
}

// treeLine is one node of the rendered tree
type treeLine struct {
	kind  ast.Kind
	depth int
	pos   string
	text  string
}

// New creates a new viewer model
func New(cfg Config) Model {
	name := cfg.Name
	if name == "" {
		name = "<input>"
	}
	opts := cfg.Options
	if opts.Name == "" {
		opts.Name = name
	}
	return Model{
		name:            name,
		load:            cfg.Load,
		opts:            opts,
		showDiagnostics: true,
	}
}

// Init starts the first compilation
func (m Model) Init() tea.Cmd {
	return m.compile
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, 1)
			m.viewport.YPosition = headerHeight
			m.ready = true
		}
		m.resize()
		m.updateViewportContent()

	case compiledMsg:
		m.elapsed = msg.elapsed
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
			m.lines = buildTree(msg.result)
		}
		m.resize()
		m.updateViewportContent()

	case reloadMsg:
		return m, m.compile
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			return m, tea.Quit
		case "j":
			m.viewport.LineDown(1)
		case "k":
			m.viewport.LineUp(1)
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()

		// Toggle diagnostics panel
		case "d":
			m.showDiagnostics = !m.showDiagnostics
			m.resize()

		// Reload source
		case "r":
			return m, func() tea.Msg { return reloadMsg{} }
		}

	case tea.KeyUp:
		m.viewport.LineUp(1)
	case tea.KeyDown:
		m.viewport.LineDown(1)
	case tea.KeyPgUp:
		m.viewport.ViewUp()
	case tea.KeyPgDown:
		m.viewport.ViewDown()
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading " + m.name + "..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(TreePanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	if m.showDiagnostics {
		b.WriteString(DiagPanelStyle.Width(m.width - 2).Render(strings.Join(m.diagnosticLines(), "\n")))
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderHeader() string {
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(Logo),
		strings.Repeat(" ", 3),
		PlainStyle.Render(m.name),
	)
	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

func (m Model) renderStatusBar() string {
	left := HelpDescStyle.Render(fmt.Sprintf("Nodes: %d", len(m.lines)))
	if m.result != nil {
		left += HelpDescStyle.Render(fmt.Sprintf("  Tokens: %d  %s", m.result.Tokens, m.elapsed.Round(time.Microsecond)))
	}
	right := HelpDescStyle.Render("cdl " + version.Language)

	space := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if space < 2 {
		space = 2
	}
	return StatusBarStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", space) + right)
}

func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("j/k", "Scroll"),
		RenderKeyHint("g/G", "Top/Bottom"),
		RenderKeyHint("d", "Diagnostics"),
		RenderKeyHint("r", "Reload"),
		RenderKeyHint("q", "Quit"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// diagnosticLines renders the compile error or the resolution diagnostics
func (m Model) diagnosticLines() []string {
	if m.err != nil {
		label := "error"
		var d *diag.Diagnostic
		if errors.As(m.err, &d) {
			label = d.Kind.String()
		}
		return []string{DiagFatalStyle.Render(label+": ") + m.err.Error()}
	}
	if m.result == nil {
		return []string{HelpDescStyle.Render("compiling...")}
	}
	if len(m.result.Diagnostics) == 0 {
		return []string{DiagOKStyle.Render("no diagnostics")}
	}

	var out []string
	for i, d := range m.result.Diagnostics {
		if i == maxDiagEntries {
			out = append(out, HelpDescStyle.Render(fmt.Sprintf("... %d more", len(m.result.Diagnostics)-i)))
			break
		}
		out = append(out, DiagWarnStyle.Render(d.Kind.String()+" ")+d.Error())
	}
	return out
}

// resize recomputes the viewport height after layout changes
func (m *Model) resize() {
	if !m.ready {
		return
	}
	height := m.height - headerHeight - footerHeight
	if m.showDiagnostics {
		height -= len(m.diagnosticLines()) + 2
	}
	if height < 1 {
		height = 1
	}
	m.viewport.Width = m.width - 4
	m.viewport.Height = height
}

// updateViewportContent renders the tree into the viewport
func (m *Model) updateViewportContent() {
	var content strings.Builder
	for _, l := range m.lines {
		content.WriteString(LinePrefixStyle.Render(fmt.Sprintf("%7s ", l.pos)))
		content.WriteString(strings.Repeat("  ", l.depth))
		content.WriteString(styleFor(l.kind).Render(l.text))
		content.WriteString("\n")
	}
	m.viewport.SetContent(content.String())
}

// compile loads and compiles the source
func (m Model) compile() tea.Msg {
	if m.load == nil {
		return compiledMsg{err: errors.New("no source loader configured")}
	}
	src, err := m.load()
	if err != nil {
		return compiledMsg{err: err}
	}
	start := time.Now()
	res, err := cdl.Compile(src, m.opts)
	return compiledMsg{result: res, err: err, elapsed: time.Since(start)}
}

// buildTree flattens the Ast in pre-order
func buildTree(res *cdl.Result) []treeLine {
	if res == nil || res.Ast == nil {
		return nil
	}
	var lines []treeLine
	res.Ast.Walk(func(h ast.Handle, depth int) bool {
		pos := ""
		if res.Lines != nil {
			p := res.Lines.Position(res.Ast.LocationOf(h).Start)
			pos = fmt.Sprintf("%d:%d", p.Line, p.Column)
		}
		lines = append(lines, treeLine{
			kind:  res.Ast.Node(h).Kind(),
			depth: depth,
			pos:   pos,
			text:  res.Ast.Summary(h),
		})
		return true
	})
	return lines
}

// Run starts the viewer
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
