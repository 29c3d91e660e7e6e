// Package feedback records human corrections and closes the learning
// loop: rule statistics, per-user learned patterns, and advisory rule
// suggestions.
package feedback

import (
	"context"

	"github.com/notabene-app/notabene/internal/model"
)

// Store is the persistence surface the recorder needs. Only
// AppendFeedback is on the critical path; everything else is
// best-effort.
type Store interface {
	// AppendFeedback persists the immutable correction record and
	// fills in its assigned ID.
	AppendFeedback(ctx context.Context, record *model.FeedbackRecord) error
	// CountFeedbackByTarget counts prior records whose corrected
	// classification points at the same client and project.
	CountFeedbackByTarget(ctx context.Context, clientID, projectID *int64) (int, error)
	// IncrementRuleCorrected bumps a rule's times_corrected counter.
	IncrementRuleCorrected(ctx context.Context, ruleID int64) error
	// GetLearnedPatterns returns a user's stored patterns, oldest first.
	GetLearnedPatterns(ctx context.Context, userID string) ([]model.LearnedPattern, error)
	// ReplaceLearnedPatterns overwrites a user's pattern list.
	ReplaceLearnedPatterns(ctx context.Context, userID string, patterns []model.LearnedPattern) error
}
