// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
package api

import (
	"context"
	"strings"
	"testing"

	"github.com/promptdeck/promptdeck-tui/internal/classify"
)

// collect runs a reader over raw stream text and records every token
// notification.
func collect(t *testing.T, raw string) (texts []string, kinds []classify.Kind, final string) {
	t.Helper()

	reader := NewStreamReader(strings.NewReader(raw))
	final, err := reader.Process(context.Background(), func(kind classify.Kind, text string) {
		kinds = append(kinds, kind)
		texts = append(texts, text)
	}, nil)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	return texts, kinds, final
}

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_ContentDeltas(t *testing.T) {
	raw := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
		"data: [DONE]\n"

	texts, kinds, final := collect(t, raw)

	if len(texts) != 2 {
		t.Fatalf("got %d token callbacks, want 2", len(texts))
	}
	if texts[0] != "Hel" || texts[1] != "Hello" {
		t.Errorf("cumulative texts = %v, want [Hel Hello]", texts)
	}
	for i, kind := range kinds {
		if kind != classify.KindRegular {
			t.Errorf("kinds[%d] = %v, want regular", i, kind)
		}
	}
	if final != "Hello" {
		t.Errorf("final text = %q, want Hello", final)
	}
}

func TestStreamReader_BlankLinesIgnored(t *testing.T) {
	raw := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
		"\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n" +
		"\n" +
		"data: [DONE]\n"

	texts, _, final := collect(t, raw)

	if len(texts) != 2 || final != "ab" {
		t.Errorf("texts = %v, final = %q; want 2 callbacks and final ab", texts, final)
	}
}

func TestStreamReader_MalformedFrameSkipped(t *testing.T) {
	raw := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n" +
		"data: {not valid json}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
		"data: [DONE]\n"

	reader := NewStreamReader(strings.NewReader(raw))
	var texts []string
	final, err := reader.Process(context.Background(), func(_ classify.Kind, text string) {
		texts = append(texts, text)
	}, nil)

	if err != nil {
		t.Fatalf("malformed frame must not be fatal: %v", err)
	}
	if len(texts) != 2 || final != "Hello" {
		t.Errorf("texts = %v, final = %q; want same callbacks as without the bad line", texts, final)
	}
	if reader.SkippedFrames() != 1 {
		t.Errorf("SkippedFrames = %d, want 1", reader.SkippedFrames())
	}
}

func TestStreamReader_NonDataLinesIgnored(t *testing.T) {
	raw := ": keep-alive comment\n" +
		"event: message\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n" +
		"data: [DONE]\n"

	texts, _, final := collect(t, raw)
	if len(texts) != 1 || final != "x" {
		t.Errorf("texts = %v, final = %q", texts, final)
	}
}

func TestStreamReader_EOFWithoutSentinel(t *testing.T) {
	raw := "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n"

	_, _, final := collect(t, raw)
	if final != "partial" {
		t.Errorf("final = %q, want partial output preserved on EOF", final)
	}
}

func TestStreamReader_ToolCallDelta(t *testing.T) {
	raw := "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"name\":\"search\",\"arguments\":\"{\\\"q\\\":1}\"}}]}}]}\n" +
		"data: [DONE]\n"

	reader := NewStreamReader(strings.NewReader(raw))
	var kinds []classify.Kind
	final, err := reader.Process(context.Background(), func(kind classify.Kind, _ string) {
		kinds = append(kinds, kind)
	}, nil)

	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(kinds) != 1 || kinds[0] != classify.KindToolCall {
		t.Errorf("kinds = %v, want one tool_call", kinds)
	}
	if !strings.Contains(final, `"search"`) {
		t.Errorf("accumulated text should carry the serialized call, got %q", final)
	}

	// Token contribution is length-based, not a single token.
	if reader.TokenCount() < 2 {
		t.Errorf("TokenCount = %d, want length-based estimate", reader.TokenCount())
	}
}

func TestStreamReader_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewStreamReader(strings.NewReader("data: [DONE]\n"))
	_, err := reader.Process(ctx, nil, nil)

	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStreamReader_MetricsEveryTenTokens(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		sb.WriteString("data: {\"choices\":[{\"delta\":{\"content\":\"w \"}}]}\n")
	}
	sb.WriteString("data: [DONE]\n")

	reader := NewStreamReader(strings.NewReader(sb.String()))
	var metrics []int
	_, err := reader.Process(context.Background(), nil, func(tokens int, tokensPerSec float64) {
		metrics = append(metrics, tokens)
		if tokensPerSec < 0 {
			t.Errorf("tokensPerSec = %f, want >= 0", tokensPerSec)
		}
	})

	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	// 25 content tokens -> notifications at 10 and 20.
	if len(metrics) != 2 || metrics[0] != 10 || metrics[1] != 20 {
		t.Errorf("metrics at %v, want [10 20]", metrics)
	}
}

func TestStreamReader_CRLFLines(t *testing.T) {
	raw := "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\r\n" +
		"data: [DONE]\r\n"

	_, _, final := collect(t, raw)
	if final != "ok" {
		t.Errorf("final = %q, want ok", final)
	}
}
