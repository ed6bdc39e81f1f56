// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea front end for promptdeck.
//
// The package is a thin collaborator over the core packages: it builds
// requests through model.Session, runs them on api.Engine, and renders
// the streamed output. The core never imports this package; everything
// flows in through engine callbacks translated to Bubble Tea messages.
//
// # Key Types
//
//   - Model: the top-level Bubble Tea model holding the session, the
//     engine, the store, and the widget state.
//   - StreamRunner: bridges engine callbacks to program messages from
//     the streaming goroutine.
//   - StreamingBuffer: batches token deltas so rendering stays at a
//     capped frame rate instead of once per token.
//
// # Usage
//
//	m := chat.New(cfg, sess, store, engine)
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	m.BindProgram(p)
//	if _, err := p.Run(); err != nil {
//		log.Fatal(err)
//	}
package chat
