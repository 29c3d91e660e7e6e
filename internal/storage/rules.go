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

// CreateRule inserts a validated rule and populates its ID.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	conditions, err := marshalColumn(rule.Group)
	if err != nil {
		return err
	}
	actions, err := marshalColumn(rule.Actions)
	if err != nil {
		return err
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (name, description, status, priority, confidence_boost, conditions, actions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.Name, rule.Description, rule.Status, rule.Priority,
		rule.ConfidenceBoost, conditions, actions, now, now)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}
	rule.ID = id
	rule.CreatedAt = now
	rule.UpdatedAt = now
	return nil
}

// GetRule retrieves a rule by ID.
func (s *SQLiteStorage) GetRule(ctx context.Context, id int64) (*model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "rule ID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, ruleSelect+` WHERE id = ?`, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// ListRules returns every rule regardless of status, highest priority
// first with ID breaking ties.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryRules(ctx, ruleSelect+` ORDER BY priority DESC, id ASC`)
}

// ListActiveRules returns rules eligible for evaluation. Testing rules
// are included only when requested, for dry-run evaluation.
func (s *SQLiteStorage) ListActiveRules(ctx context.Context, includeTesting bool) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if includeTesting {
		return s.queryRules(ctx,
			ruleSelect+` WHERE status IN (?, ?) ORDER BY priority DESC, id ASC`,
			model.RuleActive, model.RuleTesting)
	}
	return s.queryRules(ctx,
		ruleSelect+` WHERE status = ? ORDER BY priority DESC, id ASC`,
		model.RuleActive)
}

// SetRuleStatus updates a rule's status.
func (s *SQLiteStorage) SetRuleStatus(ctx context.Context, id int64, status model.RuleStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "rule ID"); err != nil {
		return err
	}
	switch status {
	case model.RuleActive, model.RuleDisabled, model.RuleTesting:
	default:
		return fmt.Errorf("unknown rule status %q", status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE rules SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set rule status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// RecordRuleApplied bumps a rule's applied counter and timestamp.
func (s *SQLiteStorage) RecordRuleApplied(ctx context.Context, ruleID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(ruleID, "rule ID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rules SET times_applied = times_applied + 1, last_applied = ?
		WHERE id = ?`, time.Now(), ruleID)
	if err != nil {
		return fmt.Errorf("failed to record rule application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %d: %w", ruleID, common.ErrNotFound)
	}
	return nil
}

// IncrementRuleCorrected bumps a rule's corrected counter.
func (s *SQLiteStorage) IncrementRuleCorrected(ctx context.Context, ruleID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(ruleID, "rule ID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rules SET times_corrected = times_corrected + 1
		WHERE id = ?`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to record rule correction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %d: %w", ruleID, common.ErrNotFound)
	}
	return nil
}

const ruleSelect = `
	SELECT id, name, description, status, priority, confidence_boost,
	       conditions, actions, times_applied, times_corrected, last_applied,
	       created_at, updated_at
	FROM rules`

func (s *SQLiteStorage) queryRules(ctx context.Context, query string, args ...any) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", scanErr)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}

func scanRule(row rowScanner) (*model.Rule, error) {
	var rule model.Rule
	var conditions, actions string
	var lastApplied sql.NullTime

	err := row.Scan(&rule.ID, &rule.Name, &rule.Description, &rule.Status,
		&rule.Priority, &rule.ConfidenceBoost, &conditions, &actions,
		&rule.Stats.TimesApplied, &rule.Stats.TimesCorrected, &lastApplied,
		&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(conditions, &rule.Group); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(actions, &rule.Actions); err != nil {
		return nil, err
	}
	if lastApplied.Valid {
		t := lastApplied.Time
		rule.Stats.LastApplied = &t
	}
	return &rule, nil
}
