// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/promptdeck/promptdeck-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("record not found")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// STORE
// =============================================================================

// Store is the local persistence layer: sessions, prompt templates,
// config presets, tool sets, and small key-value settings, all in one
// SQLite database under the user's promptdeck directory.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given database path.
func Open(dbPath string) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenDefault opens the store at ~/.promptdeck/promptdeck.db.
func OpenDefault() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(homeDir, ".promptdeck", "promptdeck.db"))
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("%w: failed to create schema: %v", ErrDatabaseError, err)
	}
	if _, err := s.db.Exec(InitMetadata); err != nil {
		return fmt.Errorf("%w: failed to init metadata: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// SessionMeta is the listing row for a stored session.
type SessionMeta struct {
	ID           string
	Name         string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SaveSession persists a session, inserting or replacing by ID.
func (s *Store) SaveSession(sess *model.Session) error {
	sess.SyncVariables()
	sess.UpdatedAt = time.Now()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO sessions (id, name, data, message_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, string(data), len(sess.Messages),
		sess.CreatedAt.UnixNano(), sess.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// LoadSession retrieves a session by ID.
func (s *Store) LoadSession(id string) (*model.Session, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &sess, nil
}

// ListSessions returns all stored sessions, most recently updated first.
func (s *Store) ListSessions() ([]SessionMeta, error) {
	rows, err := s.db.Query(`
		SELECT id, name, message_count, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.MessageCount, &created, &updated); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		meta.CreatedAt = time.Unix(0, created)
		meta.UpdatedAt = time.Unix(0, updated)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// DeleteSession removes a session by ID.
func (s *Store) DeleteSession(id string) error {
	return s.deleteByID("sessions", id)
}

// =============================================================================
// CURRENT SESSION POINTER
// =============================================================================

// CurrentSessionID returns the ID of the session to restore on startup,
// or empty when none has been recorded.
func (s *Store) CurrentSessionID() (string, error) {
	id, err := s.Setting(SettingCurrentSession)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return id, err
}

// SetCurrentSessionID records which session to restore on startup.
func (s *Store) SetCurrentSessionID(id string) error {
	return s.SetSetting(SettingCurrentSession, id)
}

// =============================================================================
// PROMPT TEMPLATES
// =============================================================================

// SaveTemplate persists a prompt template.
func (s *Store) SaveTemplate(tpl *model.PromptTemplate) error {
	return s.saveNamed("templates", tpl.ID, tpl.Name, tpl.CreatedAt, tpl)
}

// LoadTemplate retrieves a prompt template by ID.
func (s *Store) LoadTemplate(id string) (*model.PromptTemplate, error) {
	var tpl model.PromptTemplate
	if err := s.loadByID("templates", id, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ListTemplates returns all stored prompt templates, newest first.
func (s *Store) ListTemplates() ([]*model.PromptTemplate, error) {
	var templates []*model.PromptTemplate
	err := s.forEachRow("templates", func(data string) error {
		var tpl model.PromptTemplate
		if err := json.Unmarshal([]byte(data), &tpl); err != nil {
			return err
		}
		templates = append(templates, &tpl)
		return nil
	})
	return templates, err
}

// DeleteTemplate removes a prompt template by ID.
func (s *Store) DeleteTemplate(id string) error {
	return s.deleteByID("templates", id)
}

// =============================================================================
// CONFIG PRESETS
// =============================================================================

// SavePreset persists a config preset.
func (s *Store) SavePreset(p *model.Preset) error {
	return s.saveNamed("presets", p.ID, p.Name, p.CreatedAt, p)
}

// LoadPreset retrieves a preset by ID.
func (s *Store) LoadPreset(id string) (*model.Preset, error) {
	var p model.Preset
	if err := s.loadByID("presets", id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPresets returns all stored presets, newest first.
func (s *Store) ListPresets() ([]*model.Preset, error) {
	var presets []*model.Preset
	err := s.forEachRow("presets", func(data string) error {
		var p model.Preset
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return err
		}
		presets = append(presets, &p)
		return nil
	})
	return presets, err
}

// DeletePreset removes a preset by ID.
func (s *Store) DeletePreset(id string) error {
	return s.deleteByID("presets", id)
}

// =============================================================================
// TOOL SETS
// =============================================================================

// SaveToolSet persists a tool set.
func (s *Store) SaveToolSet(ts *model.ToolSet) error {
	return s.saveNamed("toolsets", ts.ID, ts.Name, ts.CreatedAt, ts)
}

// LoadToolSet retrieves a tool set by ID.
func (s *Store) LoadToolSet(id string) (*model.ToolSet, error) {
	var ts model.ToolSet
	if err := s.loadByID("toolsets", id, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

// ListToolSets returns all stored tool sets, newest first.
func (s *Store) ListToolSets() ([]*model.ToolSet, error) {
	var sets []*model.ToolSet
	err := s.forEachRow("toolsets", func(data string) error {
		var ts model.ToolSet
		if err := json.Unmarshal([]byte(data), &ts); err != nil {
			return err
		}
		sets = append(sets, &ts)
		return nil
	})
	return sets, err
}

// DeleteToolSet removes a tool set by ID.
func (s *Store) DeleteToolSet(id string) error {
	return s.deleteByID("toolsets", id)
}

// =============================================================================
// SETTINGS
// =============================================================================

// Setting returns the value for a settings key.
func (s *Store) Setting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return value, nil
}

// SetSetting writes a settings key.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// GENERIC ROW HELPERS
// =============================================================================

// saveNamed writes a JSON-encoded entity into one of the named-entity
// tables (templates, presets, toolsets), which share a column layout.
func (s *Store) saveNamed(table, id, name string, createdAt time.Time, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, name, data, created_at) VALUES (?, ?, ?, ?)`, table)
	if _, err := s.db.Exec(query, id, name, string(data), createdAt.UnixNano()); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

func (s *Store) loadByID(table, id string, v any) error {
	var data string
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, table)
	err := s.db.QueryRow(query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return nil
}

func (s *Store) forEachRow(table string, fn func(data string) error) error {
	query := fmt.Sprintf(`SELECT data FROM %s ORDER BY created_at DESC`, table)
	rows, err := s.db.Query(query)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		if err := fn(data); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) deleteByID(table, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table)
	res, err := s.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
