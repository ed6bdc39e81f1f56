// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package template implements {{name}} placeholder detection and
// substitution for prompt text.
//
// Detection is a pure function of the current text: detected names are
// always recomputed from the prompt sources, never cached, so they can
// not drift from the actual placeholder occurrences. Manually declared
// names live alongside detected ones in a Set and survive even when no
// placeholder references them.
package template
