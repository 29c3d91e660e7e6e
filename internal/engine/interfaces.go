// Package engine implements the core classification engine for meeting notes.
package engine

import (
	"context"

	"github.com/notabene-app/notabene/internal/model"
)

// Directory supplies read-only snapshots of the rule/client/project
// documents. The engine fetches once per classification call and never
// writes through this interface.
type Directory interface {
	ListActiveClients(ctx context.Context) ([]model.Client, error)
	ListActiveProjects(ctx context.Context) ([]model.Project, error)
	// ListActiveRules returns active rules; when includeTesting is set
	// (dry-run contexts only) testing rules are included as well.
	ListActiveRules(ctx context.Context, includeTesting bool) ([]model.Rule, error)
}

// AIResult is what the external AI classifier returns.
type AIResult struct {
	Type       model.ClassificationType
	Reasoning  string
	Confidence float64
}

// AIClassifier is the external LLM-backed fallback, invoked only when
// local signals are weak.
type AIClassifier interface {
	ClassifyMeeting(ctx context.Context, facts model.MeetingFacts) (AIResult, error)
}

// StatsSink receives best-effort rule statistics writes. Failures are
// logged by the engine, never propagated.
type StatsSink interface {
	RecordRuleApplied(ctx context.Context, ruleID int64) error
}
