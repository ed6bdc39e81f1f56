// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package token provides approximate token counting for prompt display.
//
// Counts are display-only estimates, not a correctness guarantee. The
// default heuristic assumes ~4 characters per token, which tracks common
// BPE tokenizers closely enough for a live counter. An exact encoder can
// be plugged in; if it fails the heuristic takes over so estimation
// never errors.
package token
