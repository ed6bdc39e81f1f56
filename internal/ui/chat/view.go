// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptdeck/promptdeck-tui/internal/classify"
	"github.com/promptdeck/promptdeck-tui/internal/model"
	"github.com/promptdeck/promptdeck-tui/internal/ui/styles"
	"github.com/promptdeck/promptdeck-tui/internal/util"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	if m.focus == focusSessions {
		return m.renderSessionPicker()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderHelp())
	}
	return b.String()
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("promptdeck")
	name := m.session.Name
	if name == "" {
		name = "untitled"
	}
	sub := fmt.Sprintf("%s · %s", name, m.session.Config.ModelName)
	if m.theme.GetLayoutMode() == styles.LayoutNarrow {
		sub = name
	}
	sub = util.TruncateWidth(sub, m.width-14)
	return m.theme.Header.Render(title + "  " + m.theme.HeaderSubtitle.Render(sub))
}

// =============================================================================
// CONVERSATION
// =============================================================================

// refreshViewport re-renders the conversation and pins to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	var parts []string

	if sp := strings.TrimSpace(m.session.SystemPrompt); sp != "" {
		parts = append(parts, m.theme.SystemBubble.Render("system: "+sp))
	}

	for _, msg := range m.session.Messages {
		parts = append(parts, m.renderMessage(msg))
	}

	if m.showVars {
		parts = append(parts, m.renderVariables())
	}

	if out := m.renderOutput(); out != "" {
		parts = append(parts, out)
	}

	if m.err != nil {
		parts = append(parts, m.renderError())
	}

	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg *model.Message) string {
	label := msg.Role.DisplayName()

	switch {
	case msg.Type == classify.KindThinking:
		return m.theme.ThinkingBubble.Render(msg.Content)
	case msg.Type == classify.KindToolCall:
		return m.theme.ToolCallBubble.Render(label + " [tool call]\n" + msg.Content)
	case msg.Role == model.RoleUser:
		return m.theme.UserBubble.Render(msg.Content)
	case msg.Role == model.RoleAssistant:
		return m.theme.AssistantBubble.Render(m.renderMarkdown(msg.Content))
	case msg.Role == model.RoleTool:
		return m.theme.ToolCallBubble.Render(label + ": " + msg.Content)
	default:
		return m.theme.SystemBubble.Render(label + ": " + msg.Content)
	}
}

// renderMarkdown renders assistant text through glamour when enabled,
// falling back to the raw text on any renderer failure.
func (m Model) renderMarkdown(text string) string {
	if m.markdown == nil {
		return text
	}
	out, err := m.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// OUTPUT SLOT
// =============================================================================

// renderOutput shows the transient generation output below the
// conversation. Thinking output renders dimmed; it never looks like a
// pushed message.
func (m Model) renderOutput() string {
	out := m.session.Output()
	if out == nil {
		return ""
	}

	var b strings.Builder
	if m.generating {
		b.WriteString(m.spin.View())
		b.WriteString(" ")
		b.WriteString(m.theme.ThinkingText.Render("generating"))
		b.WriteString("\n")
	}

	if out.Text != "" {
		switch out.Kind {
		case classify.KindThinking:
			b.WriteString(m.theme.ThinkingBubble.Render(out.Text))
		case classify.KindToolCall:
			b.WriteString(m.theme.ToolCallBubble.Render(out.Text))
		default:
			b.WriteString(m.theme.StreamOutput.Render(out.Text))
		}
	} else if !m.generating {
		return ""
	}

	if out.Done {
		b.WriteString("\n")
		b.WriteString(m.theme.StatusMetrics.Render("C-p to push to conversation"))
	}
	return b.String()
}

func (m Model) renderError() string {
	title := m.theme.ErrorTitle.Render("generation failed")
	body := m.theme.ErrorMessage.Render(m.err.Error())
	return m.theme.ErrorBox.Render(title + "\n" + body)
}

// =============================================================================
// VARIABLES PANEL
// =============================================================================

func (m Model) renderVariables() string {
	names := m.session.VariableNames()
	if len(names) == 0 {
		return m.theme.VariablePanel.Render(m.theme.VariableEmpty.Render("no variables"))
	}

	var rows []string
	for _, name := range names {
		value := m.session.VariableValues[name]
		rendered := m.theme.VariableName.Render("{{"+name+"}}") + " = "
		if value == "" {
			rendered += m.theme.VariableEmpty.Render("(unset)")
		} else {
			rendered += m.theme.VariableValue.Render(util.TruncateWidth(value, 40))
		}
		rows = append(rows, rendered)
	}
	return m.theme.VariablePanel.Render(strings.Join(rows, "\n"))
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	return m.theme.InputContainer.Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.statusMsg != "":
		left = m.theme.StatusState.Render(m.statusMsg)
	case m.generating:
		left = m.theme.StatusState.Render("streaming")
	default:
		left = m.theme.StatusState.Render("ready")
	}

	var right string
	if out := m.session.Output(); out != nil && out.Tokens > 0 {
		metrics := fmt.Sprintf("%d tok · %.1f tok/s", out.Tokens, out.TokensPerSec)
		if max := m.session.Config.MaxTokens; m.generating && max > 0 {
			pct := float64(out.Tokens) / float64(max) * 100
			metrics = styles.RenderProgressBar(10, pct) + " " + metrics
		}
		right = m.theme.StatusMetrics.Render(metrics)
	} else if m.cfg == nil || m.cfg.UI.ShowMetrics {
		right = m.theme.StatusMetrics.Render(
			fmt.Sprintf("~%d prompt tok", m.session.EstimatePromptTokens()))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var rows []string
	for _, hint := range m.keys.ShortcutHints() {
		rows = append(rows, m.theme.ShortcutKey.Render(hint[0])+" "+m.theme.ShortcutDesc.Render(hint[1]))
	}
	return strings.Join(rows, "\n")
}

// =============================================================================
// SESSION PICKER
// =============================================================================

func (m Model) renderSessionPicker() string {
	title := m.theme.HeaderTitle.Render("sessions")
	if len(m.sessionList) == 0 {
		return m.theme.SessionList.Render(title + "\n\n" + m.theme.SessionMeta.Render("no saved sessions") + "\n\n" + m.theme.ShortcutDesc.Render("Esc to go back"))
	}

	var rows []string
	for i, meta := range m.sessionList {
		name := meta.Name
		if name == "" {
			name = "untitled"
		}
		line := fmt.Sprintf("%s  %s", name,
			m.theme.SessionMeta.Render(fmt.Sprintf("%d msgs · %s", meta.MessageCount, meta.UpdatedAt.Format("Jan 2 15:04"))))
		if i == m.sessionSel {
			line = m.theme.SessionItemSelected.Render("> " + line)
		} else {
			line = m.theme.SessionItem.Render("  " + line)
		}
		rows = append(rows, line)
	}

	return m.theme.SessionList.Render(title + "\n\n" + strings.Join(rows, "\n") + "\n\n" + m.theme.ShortcutDesc.Render("Enter to open · Esc to go back"))
}
