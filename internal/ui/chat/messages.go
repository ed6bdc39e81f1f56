// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/promptdeck/promptdeck-tui/internal/classify"
	"github.com/promptdeck/promptdeck-tui/internal/model"
	"github.com/promptdeck/promptdeck-tui/internal/storage"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that the request has gone out and the engine is
// waiting for the first delta.
type StreamStartMsg struct {
	StartTime time.Time
}

// StreamTokenMsg carries one token delta from the streaming goroutine.
// Kind is the classification of the full accumulated text so far, not
// of the delta alone.
type StreamTokenMsg struct {
	Token string
	Kind  classify.Kind
}

// StreamMetricsMsg carries the running token estimate and throughput.
type StreamMetricsMsg struct {
	Tokens       int
	TokensPerSec float64
}

// StreamCompleteMsg signals a successful end of stream with the full
// accumulated text.
type StreamCompleteMsg struct {
	Text string
}

// StreamErrorMsg signals that the generation aborted. Cancellation never
// produces one; the engine suppresses callbacks on a user stop.
type StreamErrorMsg struct {
	Err error
}

// StreamTickMsg drives the flush loop while streaming is active.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// sessionSavedMsg reports the outcome of a background session save.
type sessionSavedMsg struct {
	err error
}

// sessionListMsg delivers the stored sessions for the picker overlay.
type sessionListMsg struct {
	sessions []storage.SessionMeta
	err      error
}

// sessionLoadedMsg delivers a session restored from the store.
type sessionLoadedMsg struct {
	sess *model.Session
	err  error
}

// exportDoneMsg reports the outcome of a markdown or JSON export.
type exportDoneMsg struct {
	path string
	err  error
}

// statusClearMsg clears a transient status line notice.
type statusClearMsg struct{}
