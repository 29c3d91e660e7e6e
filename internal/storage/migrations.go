package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a single database migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// ExpectedSchemaVersion is the schema version this build requires.
const ExpectedSchemaVersion = 3

// migrations contains all database migrations in order.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create notes, clients, and projects tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS notes (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					organizer TEXT NOT NULL DEFAULT '',
					attendees TEXT NOT NULL DEFAULT '[]',
					status TEXT NOT NULL DEFAULT 'pending',
					classification TEXT,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					classified_at TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_notes_status ON notes(status)`,
				`CREATE TABLE IF NOT EXISTS clients (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					domains TEXT NOT NULL DEFAULT '[]',
					keywords TEXT NOT NULL DEFAULT '[]',
					is_active BOOLEAN DEFAULT TRUE,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS projects (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					client_id INTEGER NOT NULL,
					name TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'active',
					keywords TEXT NOT NULL DEFAULT '[]',
					team TEXT NOT NULL DEFAULT '[]',
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (client_id) REFERENCES clients(id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,
				`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute migration query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Create classification rules table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT 'active',
					priority INTEGER NOT NULL DEFAULT 0,
					confidence_boost REAL NOT NULL DEFAULT 0,
					conditions TEXT NOT NULL,
					actions TEXT NOT NULL,
					times_applied INTEGER NOT NULL DEFAULT 0,
					times_corrected INTEGER NOT NULL DEFAULT 0,
					last_applied TIMESTAMP,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_rules_status_priority ON rules(status, priority DESC)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute migration query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Create feedback log and learned patterns tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS feedback_records (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					note_id TEXT NOT NULL,
					author TEXT NOT NULL DEFAULT '',
					original TEXT NOT NULL,
					corrected TEXT NOT NULL,
					correction_types TEXT NOT NULL DEFAULT '[]',
					meeting_snapshot TEXT NOT NULL DEFAULT '{}',
					corrected_client_id INTEGER,
					corrected_project_id INTEGER,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_feedback_target
					ON feedback_records(corrected_client_id, corrected_project_id)`,
				`CREATE INDEX IF NOT EXISTS idx_feedback_note ON feedback_records(note_id)`,
				`CREATE TABLE IF NOT EXISTS learned_patterns (
					user_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					pattern TEXT NOT NULL,
					action TEXT NOT NULL,
					confidence REAL NOT NULL,
					times_applied INTEGER NOT NULL DEFAULT 1,
					last_applied TIMESTAMP,
					created_at TIMESTAMP,
					PRIMARY KEY (user_id, position)
				)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute migration query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}
