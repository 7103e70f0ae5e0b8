// Package store keeps widget state slots in SQLite so a widget can be
// restored across mounts of the terminal host.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/widget"
)

const schemaVersion = 1

const ddlSettings = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

const ddlWidgetState = `
CREATE TABLE IF NOT EXISTS widget_state (
	slot       TEXT PRIMARY KEY,
	prompt     TEXT NOT NULL,
	response   TEXT NOT NULL,
	model      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Store wraps *sql.DB with widget state accessors.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
// The driver name is "sqlite" (modernc.org/sqlite, no cgo).
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("store.Open: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store.Open: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.Open: ping: %w", err)
	}
	// One writer at a time avoids SQLITE_BUSY; also keeps :memory: on one connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(ddlSettings); err != nil {
		return fmt.Errorf("store.migrate: settings table: %w", err)
	}

	var version int
	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key='schema_version'`).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no row yet means version 0
	case err != nil:
		return fmt.Errorf("store.migrate: read schema version: %w", err)
	default:
		if version, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("store.migrate: invalid schema version %q: %w", raw, err)
		}
	}

	if version >= schemaVersion {
		return nil
	}

	if _, err := s.db.Exec(ddlWidgetState); err != nil {
		return fmt.Errorf("store.migrate: widget_state table: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, fmt.Sprint(schemaVersion),
	); err != nil {
		return fmt.Errorf("store.migrate: record version: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the persisted state of slot. ok is false when nothing was saved.
func (s *Store) Load(ctx context.Context, slot string) (*widget.PersistedState, bool, error) {
	var prompt, response, model string
	err := s.db.QueryRowContext(ctx,
		`SELECT prompt, response, model FROM widget_state WHERE slot=?`, slot,
	).Scan(&prompt, &response, &model)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store.Load: %w", err)
	}

	id := models.ID(model)
	return &widget.PersistedState{
		Prompt:   &prompt,
		Response: &response,
		Model:    &id,
	}, true, nil
}

// Save replaces the state of slot with state.
func (s *Store) Save(ctx context.Context, slot string, state widget.FormState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO widget_state (slot, prompt, response, model, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			prompt=excluded.prompt,
			response=excluded.response,
			model=excluded.model,
			updated_at=excluded.updated_at`,
		slot, state.Prompt, state.Response, string(state.Model), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store.Save: %w", err)
	}
	return nil
}

// Delete forgets slot. Deleting a missing slot is not an error.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM widget_state WHERE slot=?`, slot); err != nil {
		return fmt.Errorf("store.Delete: %w", err)
	}
	return nil
}
