// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/notabene-app/notabene/internal/model"
)

// Storage defines the contract for the document-store collaborator.
type Storage interface {
	// Note operations
	SaveNote(ctx context.Context, note *model.Note) error
	GetNote(ctx context.Context, id string) (*model.Note, error)
	GetNotesByStatus(ctx context.Context, status model.NoteStatus) ([]model.Note, error)
	UpdateNoteClassification(ctx context.Context, id string, result model.ClassificationResult, status model.NoteStatus) error

	// Directory operations (read-only snapshots for the engine)
	ListActiveClients(ctx context.Context) ([]model.Client, error)
	ListActiveProjects(ctx context.Context) ([]model.Project, error)
	ListActiveRules(ctx context.Context, includeTesting bool) ([]model.Rule, error)

	// Client/project management
	CreateClient(ctx context.Context, client *model.Client) error
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	CreateProject(ctx context.Context, project *model.Project) error

	// Rule operations
	CreateRule(ctx context.Context, rule *model.Rule) error
	GetRule(ctx context.Context, id int64) (*model.Rule, error)
	ListRules(ctx context.Context) ([]model.Rule, error)
	SetRuleStatus(ctx context.Context, id int64, status model.RuleStatus) error
	RecordRuleApplied(ctx context.Context, ruleID int64) error
	IncrementRuleCorrected(ctx context.Context, ruleID int64) error

	// Feedback operations
	AppendFeedback(ctx context.Context, record *model.FeedbackRecord) error
	CountFeedbackByTarget(ctx context.Context, clientID, projectID *int64) (int, error)
	ListFeedback(ctx context.Context, limit int) ([]model.FeedbackRecord, error)

	// Learned pattern operations
	GetLearnedPatterns(ctx context.Context, userID string) ([]model.LearnedPattern, error)
	ReplaceLearnedPatterns(ctx context.Context, userID string, patterns []model.LearnedPattern) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// AISuggestion is a cached AI classification for one meeting.
type AISuggestion struct {
	Type       model.ClassificationType
	Reasoning  string
	Confidence float64
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// CompletionStats shows the results of a classification run.
type CompletionStats struct {
	TotalNotes    int
	AutoFiled     int
	SentToReview  int
	Uncategorized int
	Duration      time.Duration
}
