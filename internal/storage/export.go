// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/promptdeck/promptdeck-tui/internal/model"
	"github.com/promptdeck/promptdeck-tui/internal/util"
)

// =============================================================================
// JSON EXPORT / IMPORT
// =============================================================================

// presetFile is the on-disk envelope for preset export.
type presetFile struct {
	ExportedAt time.Time       `json:"exported_at"`
	Presets    []*model.Preset `json:"presets"`
}

// toolSetFile is the on-disk envelope for tool set export.
type toolSetFile struct {
	ExportedAt time.Time        `json:"exported_at"`
	ToolSets   []*model.ToolSet `json:"tool_sets"`
}

// ExportPresets writes all stored presets to a JSON file.
func (s *Store) ExportPresets(path string) error {
	presets, err := s.ListPresets()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(presetFile{
		ExportedAt: time.Now(),
		Presets:    presets,
	}, "", "  ")
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	return util.AtomicWriteFile(path, data, 0644)
}

// ImportPresets loads presets from a JSON file into the store. A file
// that cannot be read or parsed is logged and skipped; import never
// fails the application.
func (s *Store) ImportPresets(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("preset import: cannot read %s: %v", path, err)
		return 0
	}

	var file presetFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("preset import: invalid JSON in %s: %v", path, err)
		return 0
	}

	imported := 0
	for _, p := range file.Presets {
		if p == nil || p.Name == "" {
			continue
		}
		// Out-of-range values from hand-edited files are clamped, not rejected.
		p.Config.Clamp()
		if p.ID == "" {
			fresh := model.NewPreset(p.Name, p.Config)
			p = fresh
		}
		if err := s.SavePreset(p); err != nil {
			log.Printf("preset import: cannot save %q: %v", p.Name, err)
			continue
		}
		imported++
	}
	return imported
}

// ExportToolSets writes all stored tool sets to a JSON file.
func (s *Store) ExportToolSets(path string) error {
	sets, err := s.ListToolSets()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(toolSetFile{
		ExportedAt: time.Now(),
		ToolSets:   sets,
	}, "", "  ")
	if err != nil {
		return err
	}

	return util.AtomicWriteFile(path, data, 0644)
}

// ImportToolSets loads tool sets from a JSON file into the store, with
// the same never-crash contract as ImportPresets.
func (s *Store) ImportToolSets(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("tool set import: cannot read %s: %v", path, err)
		return 0
	}

	var file toolSetFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("tool set import: invalid JSON in %s: %v", path, err)
		return 0
	}

	imported := 0
	for _, ts := range file.ToolSets {
		if ts == nil || ts.Name == "" {
			continue
		}
		if ts.ID == "" {
			fresh := model.NewToolSet(ts.Name)
			fresh.Tools = ts.Tools
			ts = fresh
		}
		if err := s.SaveToolSet(ts); err != nil {
			log.Printf("tool set import: cannot save %q: %v", ts.Name, err)
			continue
		}
		imported++
	}
	return imported
}

// =============================================================================
// SESSION EXPORT
// =============================================================================

// ExportSessionMarkdown renders a session as Markdown: metadata header,
// system prompt, then every message with a role label.
func ExportSessionMarkdown(sess *model.Session) string {
	var sb strings.Builder
	sb.WriteString("# " + sess.Name + "\n\n")
	sb.WriteString("Created: " + sess.CreatedAt.Format(time.RFC3339) + "\n\n")

	if sess.SystemPrompt != "" {
		sb.WriteString("**System**:\n\n")
		sb.WriteString(sess.SystemPrompt)
		sb.WriteString("\n\n")
	}
	sb.WriteString("---\n\n")

	for _, msg := range sess.Messages {
		sb.WriteString("**" + exportRoleLabel(msg.Role) + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// exportRoleLabel names a role for exported documents. The chat UI's
// "You" label does not belong in a file read outside the session.
func exportRoleLabel(r model.Role) string {
	if r == model.RoleUser {
		return "User"
	}
	return r.DisplayName()
}

// ExportSessionJSON renders a session as pretty-printed JSON.
func ExportSessionJSON(sess *model.Session) ([]byte, error) {
	sess.SyncVariables()
	return json.MarshalIndent(sess, "", "  ")
}

// WriteSessionExport writes a rendered export to disk atomically.
func WriteSessionExport(path string, data []byte) error {
	return util.AtomicWriteFile(path, data, 0644)
}
