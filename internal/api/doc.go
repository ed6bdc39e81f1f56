// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the streaming completion engine for
// OpenAI-compatible chat completion servers.
//
// The engine owns the whole request lifecycle: building the JSON body,
// issuing the cancellable HTTP POST, decoding the server-sent-event style
// byte stream line by line, classifying the accumulating output, and
// computing live throughput metrics. State is held in an explicit Engine
// object with defined transitions (Idle, Requesting, Streaming, then
// Completed, Cancelled or Failed) rather than ad hoc closures, so the
// whole pipeline is unit-testable without a UI.
//
// Cancellation is cooperative. A Token is observed at the request
// boundary and at each read of the response body; cancelling mid-stream
// stops processing silently without invoking the failure callback, and
// the partial output stays as-is.
package api
