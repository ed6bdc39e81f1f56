// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/promptdeck/promptdeck-tui/internal/classify"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds connection settings for a completion server.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	// The client appends /chat/completions.
	BaseURL string

	// APIKey is sent as "Authorization: Bearer <key>".
	APIKey string
}

// Validate checks that a request can be attempted at all. Configuration
// errors are surfaced before any network traffic happens.
func (c *ClientConfig) Validate(model string) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	if strings.TrimSpace(model) == "" {
		return ErrMissingModel
	}
	return nil
}

// =============================================================================
// CLIENT
// =============================================================================

// Client issues streaming completion requests. It is safe for concurrent
// use; each Stream call carries its own state in a StreamReader.
type Client struct {
	config *ClientConfig

	// httpClient has no timeout: stream lifetime is bounded only by the
	// caller's context or the server closing the connection.
	httpClient *http.Client
}

// NewClient creates a client for the given connection settings.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = &ClientConfig{}
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{},
	}
}

// Config returns the client connection settings.
func (c *Client) Config() *ClientConfig {
	return c.config
}

// =============================================================================
// STREAMING REQUEST
// =============================================================================

// StreamResult summarizes a finished stream.
type StreamResult struct {
	// Text is the full accumulated output.
	Text string

	// Kind is the final classification of Text.
	Kind classify.Kind

	// Tokens is the estimated token count received.
	Tokens int

	// TokensPerSec is the final throughput, rounded to 2 decimals.
	TokensPerSec float64

	// SkippedFrames counts malformed frames dropped along the way.
	SkippedFrames int
}

// Stream POSTs the request with stream:true and processes the response
// through a StreamReader. A nil error means the stream completed
// normally. Context cancellation is passed through unchanged so the
// caller can tell a stop from a failure; the partial result accompanies
// it either way.
func (c *Client) Stream(ctx context.Context, req Request, onToken TokenFunc, onMetrics MetricsFunc) (*StreamResult, error) {
	if err := c.config.Validate(req.Model); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req.body())
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled at the request boundary.
			return nil, ctx.Err()
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(resp)
	}

	if resp.Body == nil {
		return nil, ErrNoBody
	}

	reader := NewStreamReader(resp.Body)
	_, err = reader.Process(ctx, onToken, onMetrics)

	result := &StreamResult{
		Text:          reader.Accumulated(),
		Kind:          reader.Kind(),
		Tokens:        reader.TokenCount(),
		TokensPerSec:  reader.TokensPerSecond(),
		SkippedFrames: reader.SkippedFrames(),
	}
	return result, err
}

// httpError extracts the server's error.message when present, else a
// generic "HTTP <status>: <statusText>".
func httpError(resp *http.Response) error {
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		return &ClientError{Type: ErrTypeHTTP, Message: envelope.Error.Message}
	}

	statusText := http.StatusText(resp.StatusCode)
	if statusText == "" {
		statusText = resp.Status
	}
	return &ClientError{
		Type:    ErrTypeHTTP,
		Message: "HTTP " + strconv.Itoa(resp.StatusCode) + ": " + statusText,
	}
}
