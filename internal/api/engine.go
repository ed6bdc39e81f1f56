// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
package api

import (
	"context"
	"errors"
	"sync"

	"github.com/promptdeck/promptdeck-tui/internal/classify"
)

// =============================================================================
// ENGINE STATE
// =============================================================================

// State is the engine's position in the generation lifecycle.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateCompleted
	StateCancelled
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// CALLBACKS
// =============================================================================

// Callbacks is the notification surface toward the UI layer. Any callback
// may be nil. Token callbacks arrive strictly in byte/line arrival order;
// exactly one of OnComplete or OnError fires per generation, and neither
// fires after a cancellation.
type Callbacks struct {
	// OnStart fires once the request is about to be issued.
	OnStart func()

	// OnToken fires after every appended delta with the classified kind
	// and the new full accumulated text.
	OnToken func(kind classify.Kind, text string)

	// OnMetrics fires periodically with the running token estimate and
	// throughput in tokens per second.
	OnMetrics func(tokens int, tokensPerSec float64)

	// OnComplete fires with the full text when the stream finishes.
	OnComplete func(text string)

	// OnError fires with the failure that aborted the generation.
	OnError func(err error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives generations against one completion server. It enforces
// the at-most-one-active invariant: starting a generation atomically
// cancels and supersedes any previous one.
type Engine struct {
	client *Client

	mu     sync.Mutex
	state  State
	active *Token
}

// NewEngine creates an engine over the given client.
func NewEngine(client *Client) *Engine {
	return &Engine{
		client: client,
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsActive reports whether a generation currently holds the active handle.
func (e *Engine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}

// Stop cancels the active generation, if any. The in-progress partial
// output stays as-is; no completion or error callback follows.
func (e *Engine) Stop() {
	e.mu.Lock()
	token := e.active
	e.mu.Unlock()

	if token != nil {
		token.Cancel()
	}
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate runs one full generation synchronously: validate, request,
// stream, finalize. Callers that need a responsive UI run it in a
// goroutine; all notifications go through cb. The returned error mirrors
// what OnError saw, nil for both completion and cancellation.
func (e *Engine) Generate(ctx context.Context, req Request, cb Callbacks) error {
	// Configuration errors abort before any request or state change.
	if err := e.client.Config().Validate(req.Model); err != nil {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return err
	}

	genCtx, token := e.begin(ctx)
	defer e.finish(token)

	if cb.OnStart != nil {
		cb.OnStart()
	}

	// Requesting lasts until the first delta arrives.
	started := false
	onToken := func(kind classify.Kind, text string) {
		if !started {
			started = true
			e.setState(token, StateStreaming)
		}
		if cb.OnToken != nil {
			cb.OnToken(kind, text)
		}
	}

	result, err := e.client.Stream(genCtx, req, onToken, cb.OnMetrics)

	if err != nil {
		// A user stop is not an error: suppress callbacks entirely.
		if token.IsCancelled() || errors.Is(err, context.Canceled) {
			e.setState(token, StateCancelled)
			return nil
		}

		e.setState(token, StateFailed)
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return err
	}

	e.setState(token, StateCompleted)

	// Final metrics, then the completion notification.
	if cb.OnMetrics != nil {
		cb.OnMetrics(result.Tokens, result.TokensPerSec)
	}
	if cb.OnComplete != nil {
		cb.OnComplete(result.Text)
	}
	return nil
}

// begin atomically supersedes any previous generation: the old token is
// cancelled before the new one becomes the single active handle.
func (e *Engine) begin(ctx context.Context) (context.Context, *Token) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		e.active.Cancel()
	}

	genCtx, cancel := context.WithCancel(ctx)
	token := newToken(cancel)
	e.active = token
	e.state = StateRequesting
	return genCtx, token
}

// finish releases the active handle if this generation still owns it,
// then returns the engine to Idle. A superseding generation may already
// have replaced the handle; in that case only the token is released.
func (e *Engine) finish(token *Token) {
	token.release()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == token {
		e.active = nil
		e.state = StateIdle
	}
}

// setState records a transition, but only while this generation still
// owns the active handle; a superseded generation must not clobber its
// successor's state.
func (e *Engine) setState(token *Token, s State) {
	e.mu.Lock()
	if e.active == token {
		e.state = s
	}
	e.mu.Unlock()
}
