// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptdeck/promptdeck-tui/internal/classify"
	"github.com/promptdeck/promptdeck-tui/internal/model"
	"github.com/promptdeck/promptdeck-tui/internal/storage"
)

// statusNoticeTTL is how long a transient status line notice stays up.
const statusNoticeTTL = 3 * time.Second

// =============================================================================
// UPDATE
// =============================================================================

// Update is the Bubble Tea message dispatcher.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case StreamStartMsg:
		m.statusMsg = ""
		return m, nil

	case StreamTokenMsg:
		// Tokens only land in the buffer; rendering waits for the tick.
		m.buffer.Write(msg.Token)
		m.streamKind = msg.Kind
		return m, nil

	case StreamTickMsg:
		if chunk, ok := m.buffer.Flush(); ok {
			m.streamText += chunk
			m.session.UpdateOutput(m.streamKind, m.streamText)
			m.refreshViewport()
		}
		if m.generating {
			return m, streamTickCmd()
		}
		return m, nil

	case StreamMetricsMsg:
		m.session.UpdateOutputMetrics(msg.Tokens, msg.TokensPerSec)
		return m, nil

	case StreamCompleteMsg:
		m.generating = false
		m.cancelMgr.release()
		m.streamText = msg.Text
		m.session.FinalizeOutput(msg.Text)
		m.refreshViewport()
		return m, m.saveSessionCmd()

	case StreamErrorMsg:
		m.generating = false
		m.cancelMgr.release()
		m.err = msg.Err
		// Keep whatever partial output arrived before the failure.
		if chunk, ok := m.buffer.ForceFlush(); ok {
			m.streamText += chunk
			m.session.UpdateOutput(m.streamKind, m.streamText)
		}
		m.refreshViewport()
		return m, nil

	case sessionSavedMsg:
		if msg.err != nil {
			return m.notice(fmt.Sprintf("save failed: %v", msg.err))
		}
		return m.notice("session saved")

	case sessionListMsg:
		if msg.err != nil {
			return m.notice(fmt.Sprintf("list failed: %v", msg.err))
		}
		m.sessionList = msg.sessions
		m.sessionSel = 0
		m.focus = focusSessions
		return m, nil

	case sessionLoadedMsg:
		if msg.err != nil {
			m.focus = focusInput
			return m.notice(fmt.Sprintf("load failed: %v", msg.err))
		}
		m.session = msg.sess
		m.streamText = ""
		m.err = nil
		m.focus = focusInput
		m.refreshViewport()
		return m, m.setCurrentCmd(msg.sess.ID)

	case exportDoneMsg:
		if msg.err != nil {
			return m.notice(fmt.Sprintf("export failed: %v", msg.err))
		}
		return m.notice("exported to " + msg.path)

	case statusClearMsg:
		m.statusMsg = ""
		return m, nil
	}

	return m.updateFocused(msg)
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// The renderer wraps at a fixed width; rebuild on every resize.
	if m.cfg == nil || m.cfg.UI.RenderMarkdown {
		m.markdown = buildMarkdownRenderer(msg.Width)
	} else {
		m.markdown = nil
	}

	contentHeight := msg.Height - m.chromeHeight()
	if contentHeight < 1 {
		contentHeight = 1
	}

	if !m.ready {
		m.viewport = newViewport(msg.Width, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = contentHeight
	}
	m.input.SetWidth(msg.Width - 4)

	m.refreshViewport()
	return m, nil
}

// chromeHeight is everything on screen that is not the conversation:
// header, input box, and status bar.
func (m Model) chromeHeight() int {
	h := 1 + m.input.Height() + 2 + 1
	if m.showHelp {
		h += len(m.keys.ShortcutHints())
	}
	return h
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.generating {
			m.cancelMgr.cancel()
		}
		return m, tea.Quit
	}

	if m.focus == focusSessions {
		return m.handleSessionPickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.generating {
			return m.stopGeneration()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleFocus):
		if m.focus == focusInput {
			m.focus = focusViewport
			m.input.Blur()
		} else {
			m.focus = focusInput
			return m, m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit) && m.focus == focusInput:
		return m.submitInput()

	case key.Matches(msg, m.keys.Save):
		return m, m.saveSessionCmd()

	case key.Matches(msg, m.keys.NewSession):
		return m.newSession()

	case key.Matches(msg, m.keys.Sessions):
		return m, m.listSessionsCmd()

	case key.Matches(msg, m.keys.PushOutput):
		return m.pushOutput()

	case key.Matches(msg, m.keys.Export):
		return m, m.exportMarkdownCmd()

	case key.Matches(msg, m.keys.Variables):
		m.showVars = !m.showVars
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}

	return m.updateFocused(msg)
}

func (m Model) handleSessionPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.sessionSel > 0 {
			m.sessionSel--
		}
	case "down", "j":
		if m.sessionSel < len(m.sessionList)-1 {
			m.sessionSel++
		}
	case "enter":
		if len(m.sessionList) > 0 {
			id := m.sessionList[m.sessionSel].ID
			return m, m.loadSessionCmd(id)
		}
		m.focus = focusInput
	case "esc", "q":
		m.focus = focusInput
	}
	return m, nil
}

// updateFocused routes remaining messages to whichever widget has focus.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	case focusViewport:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// GENERATION LIFECYCLE
// =============================================================================

// submitInput appends the input as a user message and starts streaming.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}
	if strings.HasPrefix(content, "/") {
		return m.handleCommand(content)
	}
	if m.generating {
		return m.notice("already generating, Esc to stop")
	}

	m.session.AddMessage(model.NewMessage(model.RoleUser, content))
	m.input.Reset()
	return m.startGeneration()
}

func (m Model) startGeneration() (tea.Model, tea.Cmd) {
	req := m.session.BuildRequest()

	m.session.BeginOutput()
	m.buffer.Reset()
	m.streamText = ""
	m.streamKind = classify.KindRegular
	m.generating = true
	m.err = nil
	m.refreshViewport()

	ctx := m.cancelMgr.arm(context.Background())
	go m.runner.Run(ctx, req)

	return m, tea.Batch(streamTickCmd(), m.spin.Tick)
}

// stopGeneration cancels the stream but keeps the partial output on
// screen. The engine suppresses callbacks after a cancel, so the tail
// of the buffer is drained here.
func (m Model) stopGeneration() (tea.Model, tea.Cmd) {
	m.cancelMgr.cancel()
	m.generating = false

	if chunk, ok := m.buffer.ForceFlush(); ok {
		m.streamText += chunk
	}
	if m.streamText != "" {
		m.session.UpdateOutput(m.streamKind, m.streamText)
	}
	m.refreshViewport()
	return m.notice("generation stopped")
}

// pushOutput promotes the finished output into the conversation. The
// session refuses thinking-only or empty output.
func (m Model) pushOutput() (tea.Model, tea.Cmd) {
	if pushed := m.session.PushOutput(); pushed != nil {
		m.streamText = ""
		m.refreshViewport()
		return m, m.saveSessionCmd()
	}
	return m.notice("nothing pushable in output")
}

func (m Model) newSession() (tea.Model, tea.Cmd) {
	if m.generating {
		m.cancelMgr.cancel()
		m.generating = false
	}

	fresh := model.NewSession("untitled")
	fresh.Config = m.session.Config.Clone()
	prev := m.session
	m.session = fresh
	m.streamText = ""
	m.err = nil
	m.refreshViewport()

	store := m.store
	return m, func() tea.Msg {
		if store == nil {
			return sessionSavedMsg{}
		}
		if err := store.SaveSession(prev); err != nil {
			return sessionSavedMsg{err: err}
		}
		if err := store.SaveSession(fresh); err != nil {
			return sessionSavedMsg{err: err}
		}
		return sessionSavedMsg{err: store.SetCurrentSessionID(fresh.ID)}
	}
}

// =============================================================================
// STORE COMMANDS
// =============================================================================

func (m Model) saveSessionCmd() tea.Cmd {
	store, sess := m.store, m.session
	return func() tea.Msg {
		if store == nil {
			return sessionSavedMsg{}
		}
		return sessionSavedMsg{err: store.SaveSession(sess)}
	}
}

func (m Model) listSessionsCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return sessionListMsg{}
		}
		sessions, err := store.ListSessions()
		return sessionListMsg{sessions: sessions, err: err}
	}
}

func (m Model) loadSessionCmd(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return sessionLoadedMsg{err: storage.ErrNotFound}
		}
		sess, err := store.LoadSession(id)
		return sessionLoadedMsg{sess: sess, err: err}
	}
}

func (m Model) setCurrentCmd(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return statusClearMsg{}
		}
		if err := store.SetCurrentSessionID(id); err != nil {
			return sessionSavedMsg{err: err}
		}
		return statusClearMsg{}
	}
}

func (m Model) exportMarkdownCmd() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		md := storage.ExportSessionMarkdown(sess)
		path := filepath.Join(exportDir(), exportFileName(sess.Name))
		if err := storage.WriteSessionExport(path, []byte(md)); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func exportDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func exportFileName(name string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	if base == "" {
		base = "session"
	}
	return base + "-" + time.Now().Format("20060102-150405") + ".md"
}

// =============================================================================
// HELPERS
// =============================================================================

// notice shows a transient message in the status bar.
func (m Model) notice(text string) (tea.Model, tea.Cmd) {
	m.statusMsg = text
	return m, tea.Tick(statusNoticeTTL, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}
