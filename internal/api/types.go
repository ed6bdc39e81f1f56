// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
package api

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is a chat message on the wire.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant", "tool"
	Content string `json:"content"`
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// Tool is a tool definition on the wire, always {type:"function", function:{...}}.
type Tool struct {
	Type     string     `json:"type"`
	Function ToolSchema `json:"function"`
}

// ToolSchema defines a callable function's interface.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON-schema object, type "object"
}

// NewFunctionTool wraps a schema in the wire envelope.
func NewFunctionTool(name, description string, parameters map[string]any) Tool {
	return Tool{
		Type: "function",
		Function: ToolSchema{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Request holds everything one generation call needs. Variables are
// expected to be substituted already; the engine sends content verbatim.
type Request struct {
	Model    string
	Messages []Message

	// Sampling parameters
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64

	// Enabled tool definitions; when non-empty the body carries
	// tools plus tool_choice "auto".
	Tools []Tool

	// Custom merges into the wire body after the standard fields, so a
	// custom parameter may override any of them (last write wins).
	Custom map[string]any
}

// body builds the wire JSON object for /chat/completions.
func (r *Request) body() map[string]any {
	body := map[string]any{
		"model":             r.Model,
		"messages":          r.Messages,
		"temperature":       r.Temperature,
		"max_tokens":        r.MaxTokens,
		"top_p":             r.TopP,
		"frequency_penalty": r.FrequencyPenalty,
		"presence_penalty":  r.PresencePenalty,
		"stream":            true,
	}

	if len(r.Tools) > 0 {
		body["tools"] = r.Tools
		body["tool_choice"] = "auto"
	}

	for k, v := range r.Custom {
		body[k] = v
	}

	return body
}

// =============================================================================
// STREAM EVENT TYPES
// =============================================================================

// streamEvent is one parsed "data: {...}" frame.
type streamEvent struct {
	Choices []struct {
		Delta        Delta  `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Delta is the incremental payload of one frame: content text and/or a
// partial tool invocation.
type Delta struct {
	Content   string          `json:"content"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

// ToolCallDelta is a partial tool invocation as it arrives on the stream.
type ToolCallDelta struct {
	Index    int           `json:"index"`
	ID       string        `json:"id,omitempty"`
	Type     string        `json:"type,omitempty"`
	Function FunctionDelta `json:"function"`
}

// FunctionDelta carries incremental function name/argument fragments.
type FunctionDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// errorEnvelope is the JSON error body OpenAI-compatible servers return
// on non-2xx responses.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
