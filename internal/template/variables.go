// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package template implements {{name}} placeholder detection and
// substitution for prompt text.
package template

import (
	"regexp"
	"strings"
)

// =============================================================================
// PLACEHOLDER PATTERN
// =============================================================================

// placeholderPattern matches {{name}} where name is any run of non-brace
// characters. Unterminated "{{" simply does not match, so malformed input
// never errors. Surrounding whitespace inside the braces is trimmed before
// the name is compared or looked up.
var placeholderPattern = regexp.MustCompile(`\{\{([^}]*)\}\}`)

// =============================================================================
// DETECTION
// =============================================================================

// Detect returns the distinct placeholder names in text, whitespace-trimmed,
// in first-seen order. Empty names ("{{}}" or "{{   }}") are ignored.
func Detect(text string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(match[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names
}

// DetectAll returns the union of Detect over multiple text sources
// (system prompt plus every message), de-duplicated in first-seen order.
func DetectAll(texts ...string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, text := range texts {
		for _, name := range Detect(text) {
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}

// =============================================================================
// SUBSTITUTION
// =============================================================================

// Substitute replaces every placeholder occurrence in text with its value.
// Whitespace around the name inside the braces is tolerated. Names absent
// from values substitute to the empty string, same as names explicitly set
// to "": a submitted prompt never carries a literal {{name}}.
func Substitute(text string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if name == "" {
			// Nameless braces are not a variable, leave them alone.
			return match
		}
		return values[name]
	})
}

// =============================================================================
// VARIABLE SET
// =============================================================================

// Set holds the user-facing variable state for a session: manually declared
// names and the values assigned to any name. Detected names are never stored
// here; Names recomputes them from the live text on every call.
type Set struct {
	manual []string
	values map[string]string
}

// NewSet creates an empty variable set.
func NewSet() *Set {
	return &Set{
		values: make(map[string]string),
	}
}

// AddManual declares a name that should be offered as an input slot even
// if no placeholder references it. Returns false if already declared.
func (s *Set) AddManual(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, existing := range s.manual {
		if existing == name {
			return false
		}
	}
	s.manual = append(s.manual, name)
	return true
}

// RemoveManual deletes a manually declared name and its stored value.
// Detected names are unaffected: they reappear from Names as long as the
// placeholder remains in the text.
func (s *Set) RemoveManual(name string) {
	for i, existing := range s.manual {
		if existing == name {
			s.manual = append(s.manual[:i], s.manual[i+1:]...)
			break
		}
	}
	delete(s.values, name)
}

// ManualNames returns the manually declared names in declaration order.
func (s *Set) ManualNames() []string {
	out := make([]string, len(s.manual))
	copy(out, s.manual)
	return out
}

// SetValue assigns a value to a name. Empty string is a valid value.
func (s *Set) SetValue(name, value string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.values[name] = value
}

// Value returns the value for a name, or "" when none is set.
func (s *Set) Value(name string) string {
	return s.values[name]
}

// Values returns a copy of the stored name -> value map.
func (s *Set) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Names returns the merged variable set for display: names detected across
// the given text sources followed by manual names not already detected,
// each group in first-seen order.
func (s *Set) Names(texts ...string) []string {
	names := DetectAll(texts...)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}

	for _, name := range s.manual {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}
