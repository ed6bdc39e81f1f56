// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify decides what kind of content a completion produced.
package classify

import "testing"

// =============================================================================
// CLASSIFY TESTS
// =============================================================================

func TestClassify_Empty(t *testing.T) {
	if got := Classify(""); got != KindRegular {
		t.Errorf("Classify(\"\") = %v, want regular", got)
	}
	if got := Classify("   \n\t "); got != KindRegular {
		t.Errorf("Classify(whitespace) = %v, want regular", got)
	}
}

func TestClassify_Regular(t *testing.T) {
	texts := []string{
		"The answer is 42.",
		"Here is a poem about autumn leaves.",
		"func main() { println(\"hi\") }",
	}

	for _, text := range texts {
		if got := Classify(text); got != KindRegular {
			t.Errorf("Classify(%q) = %v, want regular", text, got)
		}
	}
}

func TestClassify_ToolCall(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"tool_calls array", `{"tool_calls": [{"function":{"name":"x","arguments":"{}"}}]}`},
		{"function object", `{"function": {"name": "search", "arguments": "{\"q\":\"go\"}"}}`},
		{"tool_use marker", `{"type": "tool_use", "id": "t1"}`},
		{"type tool_call", `{"type":"tool_call","name":"lookup"}`},
		{"function_call object", `{"function_call": {"name": "get_weather"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != KindToolCall {
				t.Errorf("Classify = %v, want tool_call", got)
			}
		})
	}
}

func TestClassify_Thinking(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"think tag", "<think>maybe the user wants X</think>"},
		{"open tag mid-stream", "<thinking>so far the problem is"},
		{"let me think", "Let me think step by step about this..."},
		{"reasoning prefix", "Reasoning: the input has two parts"},
		{"analyze", "Let me analyze the requirements first"},
		{"consider", "I should consider the edge cases here"},
		{"reasoning_content", `{"reasoning_content": "hmm"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != KindThinking {
				t.Errorf("Classify(%q) = %v, want thinking", tt.text, got)
			}
		})
	}
}

// Tool-call structure outranks reasoning phrases: text that looked like
// reasoning can reveal a tool call as more of the stream arrives.
func TestClassify_ToolCallBeatsThinking(t *testing.T) {
	text := `Let me think step by step. {"tool_calls": [{"function":{"name":"x","arguments":"{}"}}]}`

	if got := Classify(text); got != KindToolCall {
		t.Errorf("Classify = %v, want tool_call to win over thinking", got)
	}
}

func TestClassifyRule_ReportsMatchedRule(t *testing.T) {
	kind, rule := ClassifyRule(`{"tool_calls": [1]}`)
	if kind != KindToolCall || rule != "tool-calls-array" {
		t.Errorf("ClassifyRule = (%v, %q), want (tool_call, tool-calls-array)", kind, rule)
	}

	kind, rule = ClassifyRule("just text")
	if kind != KindRegular || rule != "" {
		t.Errorf("ClassifyRule = (%v, %q), want (regular, \"\")", kind, rule)
	}
}

// =============================================================================
// PUSHABILITY TESTS
// =============================================================================

func TestPushable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace", "  \n ", false},
		{"regular", "The answer is 42.", true},
		{"tool call", `{"tool_calls": [{"function":{"name":"x","arguments":"{}"}}]}`, true},
		{"thinking phrase", "Let me think step by step about this...", false},
		{"thinking tag", "<think>internal monologue</think>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pushable(tt.text); got != tt.want {
				t.Errorf("Pushable(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
