// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/promptdeck/promptdeck-tui/internal/classify"
	"github.com/promptdeck/promptdeck-tui/internal/token"
	"github.com/promptdeck/promptdeck-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleTool:
		return "Tool"
	default:
		return string(r)
	}
}

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single conversation entry. Order in the session's list is
// semantically meaningful; the UI may edit, delete, duplicate and reorder
// messages in place.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Type is the semantic category of the content; defaults to regular.
	Type classify.Kind `json:"type"`

	// Metadata is an open key-value bag for UI and export concerns.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewMessage creates a message with a freshly generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      role,
		Content:   content,
		Type:      classify.KindRegular,
		Timestamp: time.Now(),
	}
}

// Duplicate returns a copy with a fresh ID and timestamp.
func (m *Message) Duplicate() *Message {
	dup := *m
	dup.ID = generateMessageID()
	dup.Timestamp = time.Now()
	if m.Metadata != nil {
		dup.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			dup.Metadata[k] = v
		}
	}
	return &dup
}

// EstimateTokens gives a rough token estimate for the content.
func (m *Message) EstimateTokens() int {
	return token.Estimate(m.Content)
}

// Preview returns a truncated single-line preview of the content.
// Rune-based truncation keeps multi-byte characters intact.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.Content, maxLen)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
