// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify decides what kind of content a completion produced.
package classify

import "strings"

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind is the semantic category of completion output.
type Kind string

const (
	// KindRegular is ordinary assistant text.
	KindRegular Kind = "regular"

	// KindThinking is reasoning output that should not be pushed back
	// into the conversation.
	KindThinking Kind = "thinking"

	// KindToolCall is a structured function/tool invocation payload.
	KindToolCall Kind = "tool_call"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// =============================================================================
// RULE TABLE
// =============================================================================

// Rule is a single named classification signal. Rules are evaluated in
// table order against the lowercased text; the first match wins, which
// makes the priority between signals explicit.
type Rule struct {
	// ID names the signal for tests and debugging.
	ID string

	// Kind is the classification a match produces.
	Kind Kind

	// Match reports whether the signal is present. It receives the
	// lowercased full text.
	Match func(text string) bool
}

// reasoningPhrases announce reasoning output. Matched case-insensitively
// anywhere in the text.
var reasoningPhrases = []string{
	"reasoning_content",
	"reasoning:",
	"let me think",
	"step by step",
	"my thoughts:",
	"thinking:",
	"i need to think",
	"let me analyze",
	"first, let me",
	"i should consider",
}

// rules is the ordered signal table. Tool-call structure is the most
// specific and unambiguous signal, so those rules come first.
var rules = []Rule{
	{
		ID:   "tool-calls-array",
		Kind: KindToolCall,
		Match: func(t string) bool {
			return strings.Contains(t, `"tool_calls"`) && strings.Contains(t, "[")
		},
	},
	{
		ID:   "function-object",
		Kind: KindToolCall,
		Match: func(t string) bool {
			return strings.Contains(t, `"function"`) &&
				strings.Contains(t, `"name"`) &&
				strings.Contains(t, `"arguments"`)
		},
	},
	{
		ID:   "tool-marker",
		Kind: KindToolCall,
		Match: func(t string) bool {
			return strings.Contains(t, `"tool_use"`) ||
				strings.Contains(t, `"type":"tool_call"`) ||
				strings.Contains(t, `"type": "tool_call"`)
		},
	},
	{
		ID:   "function-call-object",
		Kind: KindToolCall,
		Match: func(t string) bool {
			return strings.Contains(t, `"function_call"`) && strings.Contains(t, `"name"`)
		},
	},
	{
		ID:   "thinking-tag",
		Kind: KindThinking,
		Match: func(t string) bool {
			return strings.Contains(t, "<think>") || strings.Contains(t, "<thinking>")
		},
	},
	{
		ID:   "reasoning-phrase",
		Kind: KindThinking,
		Match: func(t string) bool {
			for _, phrase := range reasoningPhrases {
				if strings.Contains(t, phrase) {
					return true
				}
			}
			return false
		},
	},
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classify returns the kind of the accumulated output text. Empty or
// whitespace-only text is regular. The same priority order is used on the
// live streaming path and when pushing output back into the conversation,
// so the two paths cannot disagree about a text's kind.
func Classify(text string) Kind {
	if strings.TrimSpace(text) == "" {
		return KindRegular
	}

	kind, _ := classify(strings.ToLower(text))
	return kind
}

// ClassifyRule returns the kind together with the ID of the rule that
// matched, or an empty ID when no signal fired.
func ClassifyRule(text string) (Kind, string) {
	if strings.TrimSpace(text) == "" {
		return KindRegular, ""
	}
	return classify(strings.ToLower(text))
}

func classify(lowered string) (Kind, string) {
	for _, r := range rules {
		if r.Match(lowered) {
			return r.Kind, r.ID
		}
	}
	return KindRegular, ""
}

// =============================================================================
// PUSHABILITY
// =============================================================================

// Pushable reports whether finalized output may be appended to the
// conversation as a new message. Tool calls are always pushable; otherwise
// the text must be non-empty and free of reasoning signals. Pure
// reasoning-only output is never pushable.
func Pushable(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	switch Classify(text) {
	case KindToolCall:
		return true
	case KindThinking:
		return false
	default:
		return true
	}
}
