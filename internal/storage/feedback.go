package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/notabene-app/notabene/internal/model"
)

// AppendFeedback writes one correction record to the append-only log.
// Records are never updated or deleted.
func (s *SQLiteStorage) AppendFeedback(ctx context.Context, record *model.FeedbackRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("feedback record cannot be nil")
	}
	if err := validateString(record.NoteID, "note ID"); err != nil {
		return err
	}

	original, err := marshalColumn(record.Original)
	if err != nil {
		return err
	}
	corrected, err := marshalColumn(record.Corrected)
	if err != nil {
		return err
	}
	correctionTypes, err := marshalColumn(record.CorrectionTypes)
	if err != nil {
		return err
	}
	snapshot, err := marshalColumn(record.Snapshot)
	if err != nil {
		return err
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	// Target columns are denormalized from the corrected verdict so
	// recurring corrections can be counted without JSON parsing.
	var clientID, projectID any
	if record.Corrected.ClientID != nil {
		clientID = *record.Corrected.ClientID
	}
	if record.Corrected.ProjectID != nil {
		projectID = *record.Corrected.ProjectID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_records
			(note_id, author, original, corrected, correction_types, meeting_snapshot,
			 corrected_client_id, corrected_project_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.NoteID, record.Author, original, corrected, correctionTypes,
		snapshot, clientID, projectID, createdAt)
	if err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get feedback ID: %w", err)
	}
	record.ID = id
	record.CreatedAt = createdAt
	return nil
}

// CountFeedbackByTarget counts corrections pointing at the same client
// and project combination. A nil projectID matches records with no
// corrected project.
func (s *SQLiteStorage) CountFeedbackByTarget(ctx context.Context, clientID, projectID *int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if clientID == nil {
		return 0, fmt.Errorf("client ID is required")
	}

	var count int
	var err error
	if projectID != nil {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM feedback_records
			WHERE corrected_client_id = ? AND corrected_project_id = ?`,
			*clientID, *projectID).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM feedback_records
			WHERE corrected_client_id = ? AND corrected_project_id IS NULL`,
			*clientID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

// ListFeedback returns the most recent corrections, newest first.
func (s *SQLiteStorage) ListFeedback(ctx context.Context, limit int) ([]model.FeedbackRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, note_id, author, original, corrected, correction_types, meeting_snapshot, created_at
		FROM feedback_records ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.FeedbackRecord
	for rows.Next() {
		var record model.FeedbackRecord
		var original, corrected, correctionTypes, snapshot string
		if scanErr := rows.Scan(&record.ID, &record.NoteID, &record.Author,
			&original, &corrected, &correctionTypes, &snapshot, &record.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", scanErr)
		}
		if err := unmarshalColumn(original, &record.Original); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(corrected, &record.Corrected); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(correctionTypes, &record.CorrectionTypes); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(snapshot, &record.Snapshot); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return records, nil
}

// GetLearnedPatterns returns a user's patterns, oldest first.
func (s *SQLiteStorage) GetLearnedPatterns(ctx context.Context, userID string) ([]model.LearnedPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "user ID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern, action, confidence, times_applied, last_applied, created_at
		FROM learned_patterns WHERE user_id = ? ORDER BY position ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learned patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.LearnedPattern
	for rows.Next() {
		var p model.LearnedPattern
		var lastApplied, createdAt sql.NullTime
		if scanErr := rows.Scan(&p.Pattern, &p.Action, &p.Confidence,
			&p.TimesApplied, &lastApplied, &createdAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan learned pattern: %w", scanErr)
		}
		if lastApplied.Valid {
			p.LastApplied = lastApplied.Time
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate learned patterns: %w", err)
	}
	return patterns, nil
}

// ReplaceLearnedPatterns swaps a user's whole pattern list in one
// transaction, preserving list order as the position column.
func (s *SQLiteStorage) ReplaceLearnedPatterns(ctx context.Context, userID string, patterns []model.LearnedPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "user ID"); err != nil {
		return err
	}
	if len(patterns) > model.MaxLearnedPatterns {
		return fmt.Errorf("pattern list exceeds cap of %d", model.MaxLearnedPatterns)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM learned_patterns WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear learned patterns: %w", err)
	}

	for i, p := range patterns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO learned_patterns
				(user_id, position, pattern, action, confidence, times_applied, last_applied, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, i, p.Pattern, p.Action, p.Confidence,
			p.TimesApplied, p.LastApplied, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert learned pattern: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit learned patterns: %w", err)
	}
	return nil
}
