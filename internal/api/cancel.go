// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
package api

import (
	"context"
	"sync"
)

// =============================================================================
// CANCELLATION TOKEN
// =============================================================================

// Token is the cancellation handle for one generation. It wraps a
// context cancel function behind Cancel/IsCancelled so the engine can
// tell a user stop apart from a transport failure.
//
// Must be used as a pointer: it carries a mutex, and the same token is
// touched from the engine goroutine and from whatever calls Stop.
type Token struct {
	mu        sync.Mutex
	cancel    context.CancelFunc
	cancelled bool
}

// newToken wraps a context cancel function in a Token.
func newToken(cancel context.CancelFunc) *Token {
	return &Token{cancel: cancel}
}

// Cancel requests cancellation. Safe to call multiple times; the
// underlying context is cancelled exactly once.
func (t *Token) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled {
		return
	}
	t.cancelled = true
	if t.cancel != nil {
		t.cancel()
	}
}

// IsCancelled reports whether Cancel was called.
func (t *Token) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// release cancels the underlying context without marking the token as
// user-cancelled. Called when a generation finishes for any reason so
// the context never leaks.
func (t *Token) release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
