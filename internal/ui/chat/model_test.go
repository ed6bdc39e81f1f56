// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptdeck/promptdeck-tui/internal/api"
	"github.com/promptdeck/promptdeck-tui/internal/classify"
	"github.com/promptdeck/promptdeck-tui/internal/config"
	"github.com/promptdeck/promptdeck-tui/internal/model"
	"github.com/promptdeck/promptdeck-tui/internal/storage"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	cfg := config.Default()
	sess := model.NewSession("test session")
	engine := api.NewEngine(api.NewClient(&api.ClientConfig{
		BaseURL: "http://localhost:9",
		APIKey:  "test",
	}))

	m := New(cfg, sess, nil, engine)

	// Simulate the initial window size message.
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

// =============================================================================
// MODEL TESTS
// =============================================================================

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t)

	if m.focus != focusInput {
		t.Errorf("Expected input focus, got %d", m.focus)
	}
	if m.buffer == nil || m.cancelMgr == nil || m.runner == nil {
		t.Fatal("Shared pointer state must be initialized")
	}
	if !m.ready {
		t.Error("Model should be ready after a window size message")
	}
	if m.generating {
		t.Error("Fresh model should not be generating")
	}
}

func TestStreamTokenBuffersWithoutRender(t *testing.T) {
	m := newTestModel(t)
	m.session.BeginOutput()

	updated, _ := m.Update(StreamTokenMsg{Token: "hello", Kind: classify.KindRegular})
	m = updated.(Model)

	if !m.buffer.Pending() {
		t.Error("Token should be buffered")
	}
	if out := m.session.Output(); out.Text != "" {
		t.Errorf("Output should not update before a tick, got %q", out.Text)
	}
}

func TestStreamTickFlushesIntoOutput(t *testing.T) {
	m := newTestModel(t)
	m.session.BeginOutput()
	m.generating = true

	updated, _ := m.Update(StreamTokenMsg{Token: "hello world", Kind: classify.KindRegular})
	m = updated.(Model)

	// Force the time threshold.
	m.buffer.mu.Lock()
	m.buffer.lastFlush = m.buffer.lastFlush.Add(-2 * flushInterval)
	m.buffer.mu.Unlock()

	updated, cmd := m.Update(StreamTickMsg{})
	m = updated.(Model)

	if out := m.session.Output(); out.Text != "hello world" {
		t.Errorf("Output = %q, want %q", out.Text, "hello world")
	}
	if cmd == nil {
		t.Error("Tick should reschedule while generating")
	}
}

func TestStreamCompleteFinalizesOutput(t *testing.T) {
	m := newTestModel(t)
	m.session.BeginOutput()
	m.generating = true

	updated, _ := m.Update(StreamCompleteMsg{Text: "final answer"})
	m = updated.(Model)

	if m.generating {
		t.Error("Completion should end the generating state")
	}
	out := m.session.Output()
	if out == nil || !out.Done {
		t.Fatal("Output should be finalized")
	}
	if out.Text != "final answer" {
		t.Errorf("Output text = %q", out.Text)
	}
}

func TestStreamErrorKeepsPartialOutput(t *testing.T) {
	m := newTestModel(t)
	m.session.BeginOutput()
	m.generating = true
	m.streamText = "partial "
	m.session.UpdateOutput(classify.KindRegular, "partial ")
	m.buffer.Write("tail")

	updated, _ := m.Update(StreamErrorMsg{Err: errors.New("connection reset")})
	m = updated.(Model)

	if m.generating {
		t.Error("Error should end the generating state")
	}
	if m.err == nil {
		t.Fatal("Error should be recorded")
	}
	if out := m.session.Output(); out.Text != "partial tail" {
		t.Errorf("Partial output = %q, want %q", out.Text, "partial tail")
	}
	if out := m.session.Output(); out.Done {
		t.Error("Failed generation must not be marked done")
	}
}

func TestStopGenerationKeepsPartialOutput(t *testing.T) {
	m := newTestModel(t)
	m.session.BeginOutput()
	m.generating = true
	m.buffer.Write("partial text")

	updated, _ := m.stopGeneration()
	m = updated.(Model)

	if m.generating {
		t.Error("Stop should end the generating state")
	}
	out := m.session.Output()
	if out.Text != "partial text" {
		t.Errorf("Partial output = %q", out.Text)
	}
	if out.Done {
		t.Error("Cancelled output must not be marked done")
	}
	if m.statusMsg == "" {
		t.Error("Stop should post a status notice")
	}
}

func TestPushOutputAppendsAssistantMessage(t *testing.T) {
	m := newTestModel(t)
	m.session.BeginOutput()
	m.session.FinalizeOutput("the answer is 42")

	before := len(m.session.Messages)
	updated, _ := m.pushOutput()
	m = updated.(Model)

	if len(m.session.Messages) != before+1 {
		t.Fatalf("Expected %d messages, got %d", before+1, len(m.session.Messages))
	}
	last := m.session.Messages[len(m.session.Messages)-1]
	if last.Role != model.RoleAssistant {
		t.Errorf("Pushed role = %q", last.Role)
	}
	if m.session.Output() != nil {
		t.Error("Push should clear the output slot")
	}
}

func TestPushOutputRejectsThinking(t *testing.T) {
	m := newTestModel(t)
	m.session.BeginOutput()
	m.session.FinalizeOutput("<think>internal reasoning only</think>")

	before := len(m.session.Messages)
	updated, _ := m.pushOutput()
	m = updated.(Model)

	if len(m.session.Messages) != before {
		t.Error("Thinking output must not be pushed")
	}
	if m.statusMsg == "" {
		t.Error("Rejected push should post a status notice")
	}
}

func TestSubmitEmptyInputIsNoop(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("   ")

	before := len(m.session.Messages)
	updated, cmd := m.submitInput()
	m = updated.(Model)

	if len(m.session.Messages) != before {
		t.Error("Blank input must not append a message")
	}
	if cmd != nil {
		t.Error("Blank input must not start a generation")
	}
}

func TestNewSessionKeepsAPIConfig(t *testing.T) {
	m := newTestModel(t)
	m.session.Config.ModelName = "gpt-4o"
	oldID := m.session.ID

	updated, _ := m.newSession()
	m = updated.(Model)

	if m.session.ID == oldID {
		t.Error("New session should have a fresh ID")
	}
	if m.session.Config.ModelName != "gpt-4o" {
		t.Errorf("API config should carry over, got %q", m.session.Config.ModelName)
	}
	if len(m.session.Messages) != 0 {
		t.Error("New session should start empty")
	}
}

func TestSessionPickerNavigation(t *testing.T) {
	m := newTestModel(t)
	m.focus = focusSessions
	m.sessionList = []storage.SessionMeta{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "second"},
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	if m.sessionSel != 1 {
		t.Errorf("Selection = %d, want 1", m.sessionSel)
	}

	// Down at the end clamps.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	if m.sessionSel != 1 {
		t.Errorf("Selection = %d, want 1 after clamp", m.sessionSel)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.focus != focusInput {
		t.Error("Esc should close the picker")
	}
}

// =============================================================================
// CANCEL MANAGER TESTS
// =============================================================================

func TestCancelManagerArmAndCancel(t *testing.T) {
	cm := newCancelManager()

	ctx := cm.arm(context.Background())
	if ctx.Err() != nil {
		t.Fatal("Fresh context should be live")
	}

	cm.cancel()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Error("Cancel should cancel the armed context")
	}

	// Idempotent.
	cm.cancel()
	cm.release()
}

func TestCancelManagerArmSupersedes(t *testing.T) {
	cm := newCancelManager()

	first := cm.arm(context.Background())
	second := cm.arm(context.Background())

	if !errors.Is(first.Err(), context.Canceled) {
		t.Error("Re-arming should cancel the previous context")
	}
	if second.Err() != nil {
		t.Error("The new context should be live")
	}
}

// =============================================================================
// EXPORT HELPERS
// =============================================================================

func TestExportFileName(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"My Session", "My-Session-"},
		{"", "session-"},
		{"!!!", "session-"},
		{"notes_v2", "notes_v2-"},
	}

	for _, tt := range tests {
		got := exportFileName(tt.name)
		if !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("exportFileName(%q) = %q, want prefix %q", tt.name, got, tt.prefix)
		}
		if !strings.HasSuffix(got, ".md") {
			t.Errorf("exportFileName(%q) = %q, want .md suffix", tt.name, got)
		}
	}
}
