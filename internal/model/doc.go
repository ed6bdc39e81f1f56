// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model holds the session state the rest of promptdeck operates
// on: the system prompt, the ordered message list, tool definitions, the
// API configuration, variable values, and the transient current-output
// slot the streaming engine writes into.
//
// A Session is an explicit context object. Nothing here reads ambient
// global state, so multiple independent sessions can coexist and tests
// stay deterministic.
package model
