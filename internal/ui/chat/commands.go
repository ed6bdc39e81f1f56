// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// commandHandler handles one slash command with its arguments.
type commandHandler func(m Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to handlers. Input starting with
// "/" is dispatched here instead of being sent as a message.
var commandHandlers = map[string]commandHandler{
	"help":   handleHelpCommand,
	"h":      handleHelpCommand,
	"set":    handleSetCommand,
	"var":    handleSetCommand,
	"unset":  handleUnsetCommand,
	"vars":   handleVarsCommand,
	"system": handleSystemCommand,
	"sys":    handleSystemCommand,
	"name":   handleNameCommand,
	"model":  handleModelCommand,
	"clear":  handleClearCommand,
	"quit":   handleQuitCommand,
	"q":      handleQuitCommand,
}

// handleCommand parses and dispatches one slash command.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))

	handler, ok := commandHandlers[name]
	if !ok {
		return m.notice(fmt.Sprintf("unknown command /%s", name))
	}
	return handler(m, parts[1:])
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleHelpCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.showHelp = !m.showHelp
	return m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
}

// handleSetCommand assigns a variable value: /set name value words...
// Setting an undetected name registers it as a manual variable.
func handleSetCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) < 1 {
		return m.notice("usage: /set <name> <value>")
	}
	name := args[0]
	value := strings.Join(args[1:], " ")

	vars := m.session.Variables()
	vars.AddManual(name)
	vars.SetValue(name, value)
	m.session.SyncVariables()

	m.showVars = true
	m.refreshViewport()
	return m, m.saveSessionCmd()
}

func handleUnsetCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) != 1 {
		return m.notice("usage: /unset <name>")
	}
	vars := m.session.Variables()
	vars.SetValue(args[0], "")
	vars.RemoveManual(args[0])
	m.session.SyncVariables()

	m.refreshViewport()
	return m, m.saveSessionCmd()
}

func handleVarsCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.showVars = !m.showVars
	m.refreshViewport()
	return m, nil
}

func handleSystemCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	m.session.SystemPrompt = strings.Join(args, " ")
	m.refreshViewport()
	return m, m.saveSessionCmd()
}

func handleNameCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.notice("usage: /name <session name>")
	}
	m.session.Name = strings.Join(args, " ")
	return m, m.saveSessionCmd()
}

func handleModelCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) != 1 {
		return m.notice(fmt.Sprintf("model: %s", m.session.Config.ModelName))
	}
	m.session.Config.ModelName = args[0]
	return m, m.saveSessionCmd()
}

// handleClearCommand removes all messages but keeps the system prompt,
// tools, variables and config.
func handleClearCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	if m.generating {
		m.cancelMgr.cancel()
		m.generating = false
	}
	m.session.Messages = nil
	m.session.ClearOutput()
	m.streamText = ""
	m.err = nil
	m.refreshViewport()
	return m, m.saveSessionCmd()
}

func handleQuitCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	if m.generating {
		m.cancelMgr.cancel()
	}
	return m, tea.Quit
}
