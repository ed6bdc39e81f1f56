// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/promptdeck/promptdeck-tui/internal/api"
	"github.com/promptdeck/promptdeck-tui/internal/classify"
	"github.com/promptdeck/promptdeck-tui/internal/config"
	"github.com/promptdeck/promptdeck-tui/internal/model"
	"github.com/promptdeck/promptdeck-tui/internal/storage"
	"github.com/promptdeck/promptdeck-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// focusArea identifies which widget receives keyboard input.
type focusArea int

const (
	focusInput focusArea = iota
	focusViewport
	focusSessions
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the top-level Bubble Tea model for the chat interface.
//
// Pointer fields (session, runner, buffer, cancelMgr) are shared by
// every copy Bubble Tea makes of the model; value fields are the
// per-frame widget state.
type Model struct {
	cfg    *config.Config
	theme  *styles.Theme
	keys   KeyMap
	store  *storage.Store
	engine *api.Engine

	session   *model.Session
	runner    *StreamRunner
	buffer    *StreamingBuffer
	cancelMgr *cancelManager

	input    textarea.Model
	viewport viewport.Model
	spin     spinner.Model
	markdown *glamour.TermRenderer

	focus     focusArea
	width     int
	height    int
	ready     bool
	showVars  bool
	showHelp  bool
	statusMsg string

	// Streaming state for the in-flight generation.
	generating bool
	streamKind classify.Kind
	streamText string

	// Session picker overlay.
	sessionList []storage.SessionMeta
	sessionSel  int

	err error
}

// New creates the chat model over an existing session. The store may be
// nil in tests; saving is then skipped.
func New(cfg *config.Config, sess *model.Session, store *storage.Store, engine *api.Engine) Model {
	theme := styles.NewTheme()

	ta := textarea.New()
	ta.Placeholder = "Type a prompt. {{variables}} are substituted on send."
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.BrailleSpinner.Frames,
		FPS:    styles.BrailleSpinner.Duration(),
	}
	sp.Style = theme.Spinner

	return Model{
		cfg:       cfg,
		theme:     theme,
		keys:      DefaultKeyMap(),
		store:     store,
		engine:    engine,
		session:   sess,
		runner:    NewStreamRunner(engine),
		buffer:    NewStreamingBuffer(),
		cancelMgr: newCancelManager(),
		input:     ta,
		spin:      sp,
		focus:     focusInput,
	}
}

// BindProgram attaches the running program so the stream runner can send
// messages from its goroutine. Call after tea.NewProgram.
func (m Model) BindProgram(p *tea.Program) {
	m.runner.Bind(p)
}

// Session exposes the active session, mainly for tests and for main to
// persist it on exit.
func (m Model) Session() *model.Session {
	return m.session
}

// Init starts the cursor blink and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick)
}

// buildMarkdownRenderer creates a glamour renderer wrapped to the given
// terminal width. Returns nil on failure; callers fall back to plain
// text.
func buildMarkdownRenderer(width int) *glamour.TermRenderer {
	wrap := width - 8
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}
