// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptdeck/promptdeck-tui/internal/api"
	"github.com/promptdeck/promptdeck-tui/internal/classify"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

const (
	// flushBatchSize is the token count that forces a flush regardless
	// of elapsed time.
	flushBatchSize = 15

	// flushInterval caps re-rendering at roughly 30fps. Rendering once
	// per token flickers and burns CPU at high throughput.
	flushInterval = 33 * time.Millisecond
)

// StreamingBuffer accumulates token deltas from the streaming goroutine
// and releases them in batches to the Update loop. A flush happens when
// either flushBatchSize tokens have accumulated or flushInterval has
// passed since the last flush.
//
// Write is called from the streaming goroutine, Flush from the Bubble
// Tea loop, so every operation takes the mutex.
type StreamingBuffer struct {
	mu         sync.Mutex
	buf        strings.Builder
	tokenCount int
	lastFlush  time.Time
}

// NewStreamingBuffer creates an empty buffer ready for a generation.
func NewStreamingBuffer() *StreamingBuffer {
	return &StreamingBuffer{lastFlush: time.Now()}
}

// Write appends one token delta.
func (sb *StreamingBuffer) Write(token string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.WriteString(token)
	sb.tokenCount++
}

// Flush returns the accumulated deltas when a flush is due. The second
// return is false when the buffer is empty or neither threshold has
// been reached yet.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buf.Len() == 0 {
		return "", false
	}
	if sb.tokenCount < flushBatchSize && time.Since(sb.lastFlush) < flushInterval {
		return "", false
	}
	return sb.drainLocked(), true
}

// ForceFlush returns whatever is buffered without threshold checks.
// Used at end of stream and on cancellation so no tail tokens are lost.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buf.Len() == 0 {
		return "", false
	}
	return sb.drainLocked(), true
}

// Reset discards any buffered content, readying the buffer for the next
// generation.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.Reset()
	sb.tokenCount = 0
	sb.lastFlush = time.Now()
}

// Pending reports whether undelivered content is buffered.
func (sb *StreamingBuffer) Pending() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.Len() > 0
}

func (sb *StreamingBuffer) drainLocked() string {
	content := sb.buf.String()
	sb.buf.Reset()
	sb.tokenCount = 0
	sb.lastFlush = time.Now()
	return content
}

// streamTickCmd schedules the next flush check while a stream is live.
func streamTickCmd() tea.Cmd {
	return tea.Tick(flushInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// =============================================================================
// STREAM RUNNER
// =============================================================================

// StreamRunner executes generations on the engine and forwards progress
// to the program as messages. It runs in its own goroutine; program.Send
// is safe to call from there.
type StreamRunner struct {
	mu      sync.Mutex
	program *tea.Program
	engine  *api.Engine
}

// NewStreamRunner creates a runner over the given engine. The program
// is bound later, once tea.NewProgram has been called.
func NewStreamRunner(engine *api.Engine) *StreamRunner {
	return &StreamRunner{engine: engine}
}

// Bind attaches the Bubble Tea program the runner sends messages to.
func (r *StreamRunner) Bind(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

func (r *StreamRunner) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Run executes one generation and translates engine callbacks into
// program messages. Token callbacks carry the full accumulated text, so
// the runner tracks the previous length and forwards only the delta.
func (r *StreamRunner) Run(ctx context.Context, req api.Request) {
	sent := 0

	cb := api.Callbacks{
		OnStart: func() {
			r.send(StreamStartMsg{StartTime: time.Now()})
		},
		OnToken: func(kind classify.Kind, text string) {
			if len(text) <= sent {
				return
			}
			delta := text[sent:]
			sent = len(text)
			r.send(StreamTokenMsg{Token: delta, Kind: kind})
		},
		OnMetrics: func(tokens int, tokensPerSec float64) {
			r.send(StreamMetricsMsg{Tokens: tokens, TokensPerSec: tokensPerSec})
		},
		OnComplete: func(text string) {
			r.send(StreamCompleteMsg{Text: text})
		},
		OnError: func(err error) {
			r.send(StreamErrorMsg{Err: err})
		},
	}

	// Errors already arrived through OnError; cancellation arrives as
	// nothing at all and the Update loop resolves it on the next tick.
	_ = r.engine.Generate(ctx, req, cb)
}
