// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureRequest runs one streaming call and returns the decoded request
// body and headers the server saw.
func captureRequest(t *testing.T, req Request) (map[string]any, http.Header) {
	t.Helper()

	var body map[string]any
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, APIKey: "secret-key"})
	_, err := client.Stream(context.Background(), req, nil, nil)
	require.NoError(t, err)

	return body, headers
}

// =============================================================================
// REQUEST BODY TESTS
// =============================================================================

func TestClient_RequestBodyStandardFields(t *testing.T) {
	req := Request{
		Model:            "gpt-test",
		Messages:         []Message{NewSystemMessage("sys"), NewUserMessage("hi")},
		Temperature:      0.7,
		MaxTokens:        512,
		TopP:             0.9,
		FrequencyPenalty: 0.5,
		PresencePenalty:  -0.5,
	}

	body, headers := captureRequest(t, req)

	assert.Equal(t, "gpt-test", body["model"])
	assert.Equal(t, 0.7, body["temperature"])
	assert.Equal(t, float64(512), body["max_tokens"])
	assert.Equal(t, 0.9, body["top_p"])
	assert.Equal(t, 0.5, body["frequency_penalty"])
	assert.Equal(t, -0.5, body["presence_penalty"])
	assert.Equal(t, true, body["stream"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	assert.Equal(t, "Bearer secret-key", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))

	// No tools enabled: neither tools nor tool_choice on the wire.
	assert.NotContains(t, body, "tools")
	assert.NotContains(t, body, "tool_choice")
}

func TestClient_RequestBodyTools(t *testing.T) {
	req := testRequest()
	req.Tools = []Tool{
		NewFunctionTool("search", "look things up", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
			},
		}),
	}

	body, _ := captureRequest(t, req)

	assert.Equal(t, "auto", body["tool_choice"])
	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)

	tool := tools[0].(map[string]any)
	assert.Equal(t, "function", tool["type"])
	fn := tool["function"].(map[string]any)
	assert.Equal(t, "search", fn["name"])
}

func TestClient_CustomParametersOverrideStandard(t *testing.T) {
	req := testRequest()
	req.Temperature = 0.7
	req.Custom = map[string]any{
		"temperature": 1.5, // overrides the standard field
		"seed":        42,  // extra parameter passes through
		"stop":        []string{"\n\n"},
	}

	body, _ := captureRequest(t, req)

	assert.Equal(t, 1.5, body["temperature"], "custom parameters must win (last write)")
	assert.Equal(t, float64(42), body["seed"])
	assert.Contains(t, body, "stop")
}

// =============================================================================
// URL HANDLING
// =============================================================================

func TestClient_TrailingSlashBaseURL(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL + "/", APIKey: "k"})
	_, err := client.Stream(context.Background(), testRequest(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", path)
}
