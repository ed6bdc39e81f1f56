// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package token provides approximate token counting for prompt display.
package token

import (
	"errors"
	"testing"
)

// =============================================================================
// ESTIMATE TESTS
// =============================================================================

func TestEstimate_Empty(t *testing.T) {
	if got := Estimate(""); got != 0 {
		t.Errorf("Estimate(\"\") = %d, want 0", got)
	}
}

func TestEstimate_NonEmptyIsPositive(t *testing.T) {
	cases := []string{"a", "hi", "one two three", "{}", "\n"}
	for _, text := range cases {
		if got := Estimate(text); got < 1 {
			t.Errorf("Estimate(%q) = %d, want >= 1", text, got)
		}
	}
}

func TestEstimate_Heuristic(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{"123456789", 3},
	}

	for _, tt := range tests {
		if got := Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

// =============================================================================
// ENCODER FALLBACK TESTS
// =============================================================================

func TestEstimator_ExactEncoder(t *testing.T) {
	e := &Estimator{Exact: EncoderFunc(func(text string) (int, error) {
		return 42, nil
	})}

	if got := e.Estimate("anything"); got != 42 {
		t.Errorf("Estimate = %d, want 42 from exact encoder", got)
	}
}

func TestEstimator_FallbackOnEncoderError(t *testing.T) {
	e := &Estimator{Exact: EncoderFunc(func(text string) (int, error) {
		return 0, errors.New("vocabulary not loaded")
	})}

	// "abcdefgh" is 8 chars -> 2 tokens by heuristic
	if got := e.Estimate("abcdefgh"); got != 2 {
		t.Errorf("Estimate = %d, want heuristic fallback 2", got)
	}
}

func TestEstimator_FallbackOnNegativeCount(t *testing.T) {
	e := &Estimator{Exact: EncoderFunc(func(text string) (int, error) {
		return -1, nil
	})}

	if got := e.Estimate("abcd"); got != 1 {
		t.Errorf("Estimate = %d, want heuristic fallback 1", got)
	}
}

// =============================================================================
// PROMPT ESTIMATE TESTS
// =============================================================================

func TestEstimatePrompt_EmptyPrompt(t *testing.T) {
	// No system prompt, no messages: only the completion overhead remains.
	if got := EstimatePrompt("", nil); got != PerCompletionOverhead {
		t.Errorf("EstimatePrompt = %d, want %d", got, PerCompletionOverhead)
	}
}

func TestEstimatePrompt_SumsSegmentsAndOverhead(t *testing.T) {
	// system "abcd" = 1 token + 3 overhead
	// message "abcdefgh" = 2 tokens + 3 overhead
	// completion overhead = 3
	want := 1 + PerMessageOverhead + 2 + PerMessageOverhead + PerCompletionOverhead

	got := EstimatePrompt("abcd", []string{"abcdefgh"})
	if got != want {
		t.Errorf("EstimatePrompt = %d, want %d", got, want)
	}
}

func TestEstimatePrompt_MultipleMessages(t *testing.T) {
	contents := []string{"abcd", "abcd", "abcd"}
	want := 3*(1+PerMessageOverhead) + PerCompletionOverhead

	got := EstimatePrompt("", contents)
	if got != want {
		t.Errorf("EstimatePrompt = %d, want %d", got, want)
	}
}
