// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify decides what kind of content a completion produced:
// plain text, reasoning ("thinking") output, or a tool invocation.
//
// Classification is a pure function of the full accumulated text and is
// re-evaluated on every streaming update, because the meaning of a prefix
// can change as more text arrives (output that reads like reasoning can
// later reveal a tool call). The signals live in an ordered rule table;
// tool-call structure is the most specific signal and is checked first.
package classify
