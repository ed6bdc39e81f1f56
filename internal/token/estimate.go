// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package token provides approximate token counting for prompt display.
package token

// =============================================================================
// OVERHEAD CONSTANTS
// =============================================================================

// Chat-completion framing adds a few tokens around every message and one
// trailing block that primes the completion. These match the overhead of
// the common chat templates closely enough for display.
const (
	// PerMessageOverhead is added for each message in a prompt.
	PerMessageOverhead = 3

	// PerCompletionOverhead is added once per request for the reply priming.
	PerCompletionOverhead = 3
)

// =============================================================================
// ENCODER
// =============================================================================

// Encoder counts tokens exactly. Implementations may fail (missing
// vocabulary, unsupported model); the estimator falls back to the
// character heuristic when they do.
type Encoder interface {
	Encode(text string) (int, error)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(text string) (int, error)

// Encode calls the wrapped function.
func (f EncoderFunc) Encode(text string) (int, error) {
	return f(text)
}

// =============================================================================
// ESTIMATOR
// =============================================================================

// Estimator approximates token counts for text and message lists.
// The zero value uses the character heuristic only.
type Estimator struct {
	// Exact is the optional exact encoder. When nil, or when it returns
	// an error, the character heuristic is used instead.
	Exact Encoder
}

// Estimate returns an approximate token count for text. It never fails
// and never returns a negative count; empty text is 0 tokens.
func (e *Estimator) Estimate(text string) int {
	if text == "" {
		return 0
	}

	if e != nil && e.Exact != nil {
		if n, err := e.Exact.Encode(text); err == nil && n >= 0 {
			return n
		}
	}

	return heuristic(text)
}

// EstimatePrompt approximates the token count of a full chat prompt:
// the system prompt plus every message content, with per-message and
// per-completion framing overhead.
func (e *Estimator) EstimatePrompt(systemPrompt string, contents []string) int {
	total := 0

	if systemPrompt != "" {
		total += e.Estimate(systemPrompt) + PerMessageOverhead
	}

	for _, content := range contents {
		total += e.Estimate(content) + PerMessageOverhead
	}

	return total + PerCompletionOverhead
}

// =============================================================================
// PACKAGE-LEVEL HELPERS
// =============================================================================

// defaultEstimator backs the package-level functions.
var defaultEstimator = &Estimator{}

// Estimate approximates the token count of text using the default estimator.
func Estimate(text string) int {
	return defaultEstimator.Estimate(text)
}

// EstimatePrompt approximates the token count of a full chat prompt using
// the default estimator.
func EstimatePrompt(systemPrompt string, contents []string) int {
	return defaultEstimator.EstimatePrompt(systemPrompt, contents)
}

// heuristic is the ~4 chars/token approximation, rounded up.
func heuristic(text string) int {
	return (len(text) + 3) / 4
}
