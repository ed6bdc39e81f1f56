// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
package api

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the completion client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota

	// ErrTypeConfig means the request could not be attempted at all:
	// missing API key, base URL or model name.
	ErrTypeConfig

	// ErrTypeConnection covers network failures reaching the server.
	ErrTypeConnection

	// ErrTypeHTTP is a non-2xx response from the server.
	ErrTypeHTTP

	// ErrTypeInvalidResponse covers unusable response bodies.
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrMissingAPIKey  = &ClientError{Type: ErrTypeConfig, Message: "API key is not configured"}
	ErrMissingBaseURL = &ClientError{Type: ErrTypeConfig, Message: "base URL is not configured"}
	ErrMissingModel   = &ClientError{Type: ErrTypeConfig, Message: "model name is not configured"}
	ErrNoBody         = &ClientError{Type: ErrTypeInvalidResponse, Message: "response has no body to stream"}
)

// IsConfigError checks whether an error is a pre-request configuration error.
func IsConfigError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConfig
	}
	return false
}

// IsHTTPError checks whether an error is a non-2xx server response.
func IsHTTPError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeHTTP
	}
	return false
}
