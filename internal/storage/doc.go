// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for promptdeck.
//
// Sessions, prompt templates, config presets, tool sets and small
// key-value settings live in one SQLite database. Export files
// (Markdown, JSON) are written atomically next to it.
//
// # Key Types
//
//   - Store: the SQLite-backed store
//   - SessionMeta: lightweight row for session listings
//
// # Usage
//
// Open the default store and persist a session:
//
//	store, err := storage.OpenDefault()
//	err = store.SaveSession(sess)
//
// List and restore sessions:
//
//	metas, err := store.ListSessions()
//	sess, err := store.LoadSession(metas[0].ID)
//
// # Storage Location
//
// The database lives at ~/.promptdeck/promptdeck.db.
package storage
