// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// PromptTemplate is a named snapshot of a session's prompt surface: the
// system prompt, the message list, and the variable assignments. API
// configuration is deliberately excluded; presets cover that.
type PromptTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	SystemPrompt    string            `json:"system_prompt"`
	Messages        []*Message        `json:"messages"`
	VariableValues  map[string]string `json:"variable_values,omitempty"`
	ManualVariables []string          `json:"manual_variables,omitempty"`
}

// SnapshotTemplate captures the session's current prompt surface under
// the given name. Messages are duplicated so later session edits do not
// mutate the snapshot.
func SnapshotTemplate(name string, s *Session) *PromptTemplate {
	s.SyncVariables()

	messages := make([]*Message, 0, len(s.Messages))
	for _, msg := range s.Messages {
		messages = append(messages, msg.Duplicate())
	}

	values := make(map[string]string, len(s.VariableValues))
	for k, v := range s.VariableValues {
		values[k] = v
	}

	return &PromptTemplate{
		ID:              uuid.NewString(),
		Name:            name,
		CreatedAt:       time.Now(),
		SystemPrompt:    s.SystemPrompt,
		Messages:        messages,
		VariableValues:  values,
		ManualVariables: append([]string(nil), s.ManualVariables...),
	}
}

// Apply loads the template into the session, replacing its prompt
// surface. The session's API configuration and tools are untouched.
func (t *PromptTemplate) Apply(s *Session) {
	s.SystemPrompt = t.SystemPrompt

	s.Messages = make([]*Message, 0, len(t.Messages))
	for _, msg := range t.Messages {
		s.Messages = append(s.Messages, msg.Duplicate())
	}

	s.VariableValues = make(map[string]string, len(t.VariableValues))
	for k, v := range t.VariableValues {
		s.VariableValues[k] = v
	}
	s.ManualVariables = append([]string(nil), t.ManualVariables...)
	s.vars = nil

	s.ClearOutput()
	s.touch()
}
