// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// =============================================================================
// CANCEL MANAGEMENT
// =============================================================================

// cancelManager holds the cancel function of the in-flight generation
// behind a mutex. The Update loop and the streaming goroutine both touch
// it, and Bubble Tea copies the Model on every Update, so the manager
// must live behind a pointer shared by all copies.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// arm creates a cancellable context for the next generation, cancelling
// any previous one first.
func (cm *cancelManager) arm(parent context.Context) context.Context {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
	}
	ctx, cancel := context.WithCancel(parent)
	cm.cancelFunc = cancel
	return ctx
}

// cancel stops the in-flight generation. Safe to call repeatedly or
// with nothing armed.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

// release cancels and clears the stored function. Called when a stream
// finishes so the context never leaks.
func (cm *cancelManager) release() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}
