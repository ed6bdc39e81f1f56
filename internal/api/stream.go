// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"math"
	"strings"
	"time"

	"github.com/promptdeck/promptdeck-tui/internal/classify"
)

// =============================================================================
// STREAM CONSTANTS
// =============================================================================

const (
	// dataPrefix introduces every event frame.
	dataPrefix = "data: "

	// doneSentinel terminates the stream.
	doneSentinel = "[DONE]"

	// metricsEvery is how many estimated tokens pass between metrics
	// notifications.
	metricsEvery = 10
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader parses the text/event-stream shaped response body into
// content and tool-call deltas. Reads go through bufio, which buffers raw
// bytes and hands back whole newline-terminated lines, so partial lines
// (and partial multi-byte sequences inside them) stay buffered until the
// next read completes them.
type StreamReader struct {
	reader *bufio.Reader

	// Accumulated output. strings.Builder avoids quadratic allocations.
	accumulator strings.Builder

	tokenCount    int
	lastMetricsAt int
	startTime     time.Time
	kind          classify.Kind

	// skipped counts malformed frames that were dropped. Local recovery:
	// a bad frame is never fatal and never surfaces past this counter.
	skipped int
}

// NewStreamReader creates a stream reader over a response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader:    bufio.NewReader(r),
		startTime: time.Now(),
		kind:      classify.KindRegular,
	}
}

// TokenFunc receives the classified kind and the full accumulated text
// after every appended delta, in arrival order.
type TokenFunc func(kind classify.Kind, text string)

// MetricsFunc receives the running token estimate and tokens-per-second.
type MetricsFunc func(tokens int, tokensPerSec float64)

// Process consumes the stream until the done sentinel, EOF, cancellation
// or a read error. It returns the full accumulated text; a nil error
// means the stream completed normally.
func (s *StreamReader) Process(ctx context.Context, onToken TokenFunc, onMetrics MetricsFunc) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return s.accumulator.String(), ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Process whatever arrived before EOF, then finish.
				if line != "" {
					s.processLine(line, onToken, onMetrics)
				}
				return s.accumulator.String(), nil
			}
			return s.accumulator.String(), err
		}

		done, err := s.processLine(line, onToken, onMetrics)
		if err != nil {
			return s.accumulator.String(), err
		}
		if done {
			return s.accumulator.String(), nil
		}
	}
}

// processLine handles one complete line. Returns done=true on the stream
// termination sentinel.
func (s *StreamReader) processLine(line string, onToken TokenFunc, onMetrics MetricsFunc) (bool, error) {
	line = strings.TrimRight(line, "\r\n")

	// Blank keep-alive lines between frames.
	if line == "" {
		return false, nil
	}

	if !strings.HasPrefix(line, dataPrefix) {
		// Comments and unknown fields of the SSE framing are ignored.
		return false, nil
	}

	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == doneSentinel {
		return true, nil
	}

	var event streamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		// Malformed frame: skip it, the stream continues.
		s.skipped++
		return false, nil
	}

	for _, choice := range event.Choices {
		if choice.Delta.Content != "" {
			s.appendContent(choice.Delta.Content, onToken)
		}
		for _, tc := range choice.Delta.ToolCalls {
			s.appendToolCall(tc, onToken)
		}
	}

	s.maybeEmitMetrics(onMetrics)
	return false, nil
}

// appendContent adds a content delta, reclassifies and notifies.
func (s *StreamReader) appendContent(content string, onToken TokenFunc) {
	s.accumulator.WriteString(content)
	s.tokenCount++
	s.notify(onToken)
}

// appendToolCall serializes a partial tool invocation into the
// accumulator and estimates its token contribution by length.
func (s *StreamReader) appendToolCall(tc ToolCallDelta, onToken TokenFunc) {
	encoded, err := json.Marshal(tc)
	if err != nil {
		s.skipped++
		return
	}

	s.accumulator.WriteString(string(encoded))
	s.tokenCount += (len(encoded) + 3) / 4
	s.notify(onToken)
}

// notify reclassifies the full text and invokes the token callback.
// Classification runs on the whole accumulated text every time: what a
// prefix meant can change once more of the stream arrives.
func (s *StreamReader) notify(onToken TokenFunc) {
	text := s.accumulator.String()
	s.kind = classify.Classify(text)
	if onToken != nil {
		onToken(s.kind, text)
	}
}

// maybeEmitMetrics emits a metrics notification every metricsEvery
// estimated tokens.
func (s *StreamReader) maybeEmitMetrics(onMetrics MetricsFunc) {
	if onMetrics == nil {
		return
	}
	if s.tokenCount-s.lastMetricsAt < metricsEvery {
		return
	}

	s.lastMetricsAt = s.tokenCount
	onMetrics(s.tokenCount, s.TokensPerSecond())
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Accumulated returns the full accumulated text so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// TokenCount returns the estimated tokens received so far.
func (s *StreamReader) TokenCount() int {
	return s.tokenCount
}

// Kind returns the current classification of the accumulated text.
func (s *StreamReader) Kind() classify.Kind {
	return s.kind
}

// SkippedFrames returns how many malformed frames were dropped.
func (s *StreamReader) SkippedFrames() int {
	return s.skipped
}

// TokensPerSecond returns the current throughput, rounded to 2 decimals.
func (s *StreamReader) TokensPerSecond() float64 {
	elapsed := time.Since(s.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return math.Round(float64(s.tokenCount)/elapsed*100) / 100
}
