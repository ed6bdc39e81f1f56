// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// SQLite schema for the local store. Entities are stored as JSON blobs
// keyed by ID; the columns duplicated out of the blob (name, timestamps)
// exist so list queries never have to unmarshal every row.
const Schema = `
-- Metadata table for schema version and store state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Sessions: full session snapshots
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    data TEXT NOT NULL,          -- JSON-encoded model.Session
    message_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL, -- Unix nanoseconds
    updated_at INTEGER NOT NULL
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);

-- Prompt templates: named prompt-surface snapshots
CREATE TABLE IF NOT EXISTS templates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    data TEXT NOT NULL,          -- JSON-encoded model.PromptTemplate
    created_at INTEGER NOT NULL
) WITHOUT ROWID;

-- Config presets: named APIConfig snapshots
CREATE TABLE IF NOT EXISTS presets (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    data TEXT NOT NULL,          -- JSON-encoded model.Preset
    created_at INTEGER NOT NULL
) WITHOUT ROWID;

-- Tool sets: named tool collections
CREATE TABLE IF NOT EXISTS toolsets (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    data TEXT NOT NULL,          -- JSON-encoded model.ToolSet
    created_at INTEGER NOT NULL
) WITHOUT ROWID;

-- Settings: small key-value state (current session pointer, UI settings)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;
`

// InitMetadata initializes the metadata table with default values
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`

// Settings keys used by the application.
const (
	SettingCurrentSession = "current_session"
	SettingTheme          = "theme"
	SettingShowMetrics    = "show_metrics"
)
