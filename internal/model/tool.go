// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck-tui/internal/api"
)

// =============================================================================
// TOOL TYPE
// =============================================================================

// Tool is a user-defined function definition. Only enabled tools are sent
// with a completion request.
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`

	// Parameters is a JSON-schema-like object with type "object".
	Parameters map[string]any `json:"parameters"`
}

// NewTool creates an enabled tool with a fresh ID. A nil parameters map
// becomes the minimal empty object schema.
func NewTool(name, description string, parameters map[string]any) *Tool {
	if parameters == nil {
		parameters = map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}
	return &Tool{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Enabled:     true,
		Parameters:  parameters,
	}
}

// ToWire converts the tool to its request envelope.
func (t *Tool) ToWire() api.Tool {
	return api.NewFunctionTool(t.Name, t.Description, t.Parameters)
}

// =============================================================================
// TOOL SETS
// =============================================================================

// ToolSet is a named collection of tool definitions.
type ToolSet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tools     []*Tool   `json:"tools"`
	CreatedAt time.Time `json:"created_at"`
}

// NewToolSet creates a named, empty tool set.
func NewToolSet(name string) *ToolSet {
	return &ToolSet{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
}
