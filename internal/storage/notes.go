package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/notabene-app/notabene/internal/common"
	"github.com/notabene-app/notabene/internal/model"
)

// SaveNote inserts a note or replaces an existing one with the same ID.
func (s *SQLiteStorage) SaveNote(ctx context.Context, note *model.Note) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("note cannot be nil")
	}
	if err := validateString(note.ID, "note ID"); err != nil {
		return err
	}
	if err := validateString(note.Title, "note title"); err != nil {
		return err
	}

	attendees, err := marshalColumn(note.Attendees)
	if err != nil {
		return err
	}

	var classification sql.NullString
	if note.Result != nil {
		encoded, encErr := marshalColumn(note.Result)
		if encErr != nil {
			return encErr
		}
		classification = sql.NullString{String: encoded, Valid: true}
	}

	status := note.Status
	if status == "" {
		status = model.NotePending
	}
	createdAt := note.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, description, organizer, attendees, status, classification, created_at, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			organizer = excluded.organizer,
			attendees = excluded.attendees,
			status = excluded.status,
			classification = excluded.classification,
			classified_at = excluded.classified_at`,
		note.ID, note.Title, note.Description, note.Organizer,
		attendees, status, classification, createdAt, note.ClassifiedAt)
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

// GetNote retrieves a single note by ID.
func (s *SQLiteStorage) GetNote(ctx context.Context, id string) (*model.Note, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "note ID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, organizer, attendees, status, classification, created_at, classified_at
		FROM notes WHERE id = ?`, id)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// GetNotesByStatus retrieves all notes in a pipeline state, oldest first.
func (s *SQLiteStorage) GetNotesByStatus(ctx context.Context, status model.NoteStatus) ([]model.Note, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(status), "status"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, organizer, attendees, status, classification, created_at, classified_at
		FROM notes WHERE status = ? ORDER BY created_at ASC, id ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notes []model.Note
	for rows.Next() {
		note, scanErr := scanNote(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan note: %w", scanErr)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

// UpdateNoteClassification stores a verdict and moves the note to its
// new pipeline state.
func (s *SQLiteStorage) UpdateNoteClassification(ctx context.Context, id string, result model.ClassificationResult, status model.NoteStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "note ID"); err != nil {
		return err
	}
	if err := validateString(string(status), "status"); err != nil {
		return err
	}

	classification, err := marshalColumn(result)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET classification = ?, status = ?, classified_at = ?
		WHERE id = ?`,
		classification, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update note classification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*model.Note, error) {
	var note model.Note
	var attendees string
	var classification sql.NullString
	var classifiedAt sql.NullTime

	err := row.Scan(&note.ID, &note.Title, &note.Description, &note.Organizer,
		&attendees, &note.Status, &classification, &note.CreatedAt, &classifiedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(attendees, &note.Attendees); err != nil {
		return nil, err
	}
	if classification.Valid {
		var result model.ClassificationResult
		if err := unmarshalColumn(classification.String, &result); err != nil {
			return nil, err
		}
		note.Result = &result
	}
	if classifiedAt.Valid {
		t := classifiedAt.Time
		note.ClassifiedAt = &t
	}
	return &note, nil
}
