// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck-tui/internal/api"
	"github.com/promptdeck/promptdeck-tui/internal/classify"
	"github.com/promptdeck/promptdeck-tui/internal/template"
	"github.com/promptdeck/promptdeck-tui/internal/token"
)

// =============================================================================
// CURRENT OUTPUT SLOT
// =============================================================================

// Output is the transient slot the streaming engine writes into. It is
// created when a generation starts and survives until cleared or pushed;
// it is never persisted.
type Output struct {
	Text         string
	Kind         classify.Kind
	Tokens       int
	TokensPerSec float64

	// Done is set when the generation finished (success only; a
	// cancelled generation leaves the partial output with Done false).
	Done bool
}

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session bundles a system prompt, the ordered message list, tool
// definitions, the API configuration and variable values. It is the
// explicit context object handed to the engine and the UI.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SystemPrompt string     `json:"system_prompt"`
	Messages     []*Message `json:"messages"`
	Tools        []*Tool    `json:"tools"`
	Config       APIConfig  `json:"config"`

	// VariableValues persists name -> value assignments; manual variable
	// names are kept separately since detected names are recomputed.
	VariableValues  map[string]string `json:"variable_values,omitempty"`
	ManualVariables []string          `json:"manual_variables,omitempty"`

	// vars is the live variable set, rebuilt from the persisted fields.
	vars *template.Set

	// output is the transient current-output slot.
	output *Output
}

// NewSession creates an empty session with defaults.
func NewSession(name string) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.NewString(),
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
		Config:         DefaultAPIConfig(),
		VariableValues: make(map[string]string),
	}
}

// touch bumps the modification timestamp.
func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (s *Session) AddMessage(msg *Message) {
	s.Messages = append(s.Messages, msg)
	s.touch()
}

// MessageByID returns the message with the given ID, or nil.
func (s *Session) MessageByID(id string) *Message {
	for _, msg := range s.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// indexOf returns the position of a message, or -1.
func (s *Session) indexOf(id string) int {
	for i, msg := range s.Messages {
		if msg.ID == id {
			return i
		}
	}
	return -1
}

// EditMessage replaces a message's content in place.
func (s *Session) EditMessage(id, content string) bool {
	msg := s.MessageByID(id)
	if msg == nil {
		return false
	}
	msg.Content = content
	s.touch()
	return true
}

// RemoveMessage deletes a message by ID.
func (s *Session) RemoveMessage(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
	s.touch()
	return true
}

// DuplicateMessage inserts a fresh-ID copy directly after the original.
func (s *Session) DuplicateMessage(id string) *Message {
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}

	dup := s.Messages[i].Duplicate()
	s.Messages = append(s.Messages, nil)
	copy(s.Messages[i+2:], s.Messages[i+1:])
	s.Messages[i+1] = dup
	s.touch()
	return dup
}

// MoveMessage reorders a message to a new index, clamped to the list.
func (s *Session) MoveMessage(id string, to int) bool {
	from := s.indexOf(id)
	if from < 0 {
		return false
	}
	if to < 0 {
		to = 0
	}
	if to >= len(s.Messages) {
		to = len(s.Messages) - 1
	}
	if from == to {
		return true
	}

	msg := s.Messages[from]
	s.Messages = append(s.Messages[:from], s.Messages[from+1:]...)
	s.Messages = append(s.Messages[:to], append([]*Message{msg}, s.Messages[to:]...)...)
	s.touch()
	return true
}

// =============================================================================
// VARIABLES
// =============================================================================

// Variables returns the live variable set, rebuilding it from the
// persisted fields on first use.
func (s *Session) Variables() *template.Set {
	if s.vars == nil {
		s.vars = template.NewSet()
		for _, name := range s.ManualVariables {
			s.vars.AddManual(name)
		}
		for name, value := range s.VariableValues {
			s.vars.SetValue(name, value)
		}
	}
	return s.vars
}

// SyncVariables copies the live variable state back into the persisted
// fields before saving.
func (s *Session) SyncVariables() {
	vars := s.Variables()
	s.ManualVariables = vars.ManualNames()
	s.VariableValues = vars.Values()
}

// VariableNames returns the merged variable set for display: names
// detected across the system prompt and every message, plus manual ones.
// Always recomputed from the current text, never cached.
func (s *Session) VariableNames() []string {
	return s.Variables().Names(s.textSources()...)
}

// textSources lists every text the placeholder pattern applies to.
func (s *Session) textSources() []string {
	sources := make([]string, 0, len(s.Messages)+1)
	sources = append(sources, s.SystemPrompt)
	for _, msg := range s.Messages {
		sources = append(sources, msg.Content)
	}
	return sources
}

// =============================================================================
// REQUEST BUILDING
// =============================================================================

// BuildRequest assembles the fully-resolved generation request: variables
// substituted into the system prompt and every message, sampling
// parameters from the config, and the enabled subset of tools.
func (s *Session) BuildRequest() api.Request {
	values := s.Variables().Values()

	messages := make([]api.Message, 0, len(s.Messages)+1)
	if resolved := template.Substitute(s.SystemPrompt, values); resolved != "" {
		messages = append(messages, api.NewSystemMessage(resolved))
	}
	for _, msg := range s.Messages {
		if !ValidRole(msg.Role) {
			continue
		}
		messages = append(messages, api.Message{
			Role:    msg.Role.String(),
			Content: template.Substitute(msg.Content, values),
		})
	}

	var tools []api.Tool
	for _, tool := range s.Tools {
		if tool.Enabled {
			tools = append(tools, tool.ToWire())
		}
	}

	return api.Request{
		Model:            s.Config.ModelName,
		Messages:         messages,
		Temperature:      s.Config.Temperature,
		MaxTokens:        s.Config.MaxTokens,
		TopP:             s.Config.TopP,
		FrequencyPenalty: s.Config.FrequencyPenalty,
		PresencePenalty:  s.Config.PresencePenalty,
		Tools:            tools,
		Custom:           s.Config.CustomParams,
	}
}

// EstimatePromptTokens approximates the token count of the full prompt
// as it would be sent, including framing overhead.
func (s *Session) EstimatePromptTokens() int {
	values := s.Variables().Values()

	contents := make([]string, 0, len(s.Messages))
	for _, msg := range s.Messages {
		contents = append(contents, template.Substitute(msg.Content, values))
	}

	return token.EstimatePrompt(template.Substitute(s.SystemPrompt, values), contents)
}

// =============================================================================
// CURRENT OUTPUT
// =============================================================================

// BeginOutput resets the current-output slot for a new generation.
func (s *Session) BeginOutput() {
	s.output = &Output{Kind: classify.KindRegular}
}

// UpdateOutput records a token notification from the engine.
func (s *Session) UpdateOutput(kind classify.Kind, text string) {
	if s.output == nil {
		s.BeginOutput()
	}
	s.output.Kind = kind
	s.output.Text = text
}

// UpdateOutputMetrics records a metrics notification from the engine.
func (s *Session) UpdateOutputMetrics(tokens int, tokensPerSec float64) {
	if s.output == nil {
		return
	}
	s.output.Tokens = tokens
	s.output.TokensPerSec = tokensPerSec
}

// FinalizeOutput marks the current output as complete.
func (s *Session) FinalizeOutput(text string) {
	if s.output == nil {
		s.BeginOutput()
	}
	s.output.Text = text
	s.output.Kind = classify.Classify(text)
	s.output.Done = true
}

// Output returns the current-output slot, or nil when no generation has
// run since the last clear.
func (s *Session) Output() *Output {
	return s.output
}

// ClearOutput discards the current output.
func (s *Session) ClearOutput() {
	s.output = nil
}

// CanPushOutput reports whether the current output may be appended to
// the conversation. Reasoning-only and empty output is never pushable.
func (s *Session) CanPushOutput() bool {
	return s.output != nil && classify.Pushable(s.output.Text)
}

// PushOutput re-classifies the finalized output and appends it as a new
// assistant message. No-ops (returns nil) when the output is not
// pushable, even if invoked anyway.
func (s *Session) PushOutput() *Message {
	if !s.CanPushOutput() {
		return nil
	}

	msg := NewMessage(RoleAssistant, s.output.Text)
	msg.Type = classify.Classify(s.output.Text)
	s.AddMessage(msg)
	s.ClearOutput()
	return msg
}
