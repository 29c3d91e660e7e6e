package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/notabene-app/notabene/internal/model"
)

// DefaultAITimeout bounds the single external AI fallback call.
const DefaultAITimeout = 15 * time.Second

// Config holds the engine's tunables.
type Config struct {
	InternalDomain string
	Weights        Weights
	Thresholds     Thresholds
	AITimeout      time.Duration
}

// DefaultConfig returns the default engine configuration. The internal
// domain is deployment-specific and must be set for internal/external
// discrimination to work.
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights(),
		Thresholds: DefaultThresholds(),
		AITimeout:  DefaultAITimeout,
	}
}

// Engine orchestrates classification of meeting notes. The
// classification path is stateless and safe for concurrent use; the
// only writes are best-effort rule statistics.
type Engine struct {
	directory Directory
	ai        AIClassifier
	stats     StatsSink
	cfg       Config
}

// New creates a classification engine. The AI classifier and stats sink
// are optional; a nil AI classifier disables the fallback and a nil
// sink disables statistics.
func New(directory Directory, ai AIClassifier, stats StatsSink, cfg Config) *Engine {
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = DefaultAITimeout
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	return &Engine{
		directory: directory,
		ai:        ai,
		stats:     stats,
		cfg:       cfg,
	}
}

// Thresholds exposes the engine's routing cutoffs.
func (e *Engine) Thresholds() Thresholds {
	return e.cfg.Thresholds
}

// Outcome separates the authoritative classification from advisory
// side-effect status, so callers can treat stats failures as non-fatal
// by construction.
type Outcome struct {
	Result        model.ClassificationResult
	Decision      model.Decision
	StatsRecorded bool
}

// Classify runs the full classification pipeline for one meeting. It
// always returns a result; the worst case is uncategorized with
// confidence 0, which routes the meeting to manual review.
func (e *Engine) Classify(ctx context.Context, meeting model.MeetingInput) Outcome {
	return e.classify(ctx, meeting, false)
}

// ClassifyDryRun previews a classification with testing-status rules in
// play and without side effects. Verdicts are otherwise computed
// exactly as Classify computes them.
func (e *Engine) ClassifyDryRun(ctx context.Context, meeting model.MeetingInput) Outcome {
	return e.classify(ctx, meeting, true)
}

func (e *Engine) classify(ctx context.Context, meeting model.MeetingInput, dryRun bool) Outcome {
	facts := model.NewMeetingFacts(meeting)

	clients, err := e.directory.ListActiveClients(ctx)
	if err != nil {
		slog.Error("Failed to load clients, classifying without directory", "error", err)
		clients = nil
	}
	projects, err := e.directory.ListActiveProjects(ctx)
	if err != nil {
		slog.Error("Failed to load projects, classifying without projects", "error", err)
		projects = nil
	}
	rules, err := e.directory.ListActiveRules(ctx, dryRun)
	if err != nil {
		slog.Error("Failed to load rules, classifying without rules", "error", err)
		rules = nil
	}

	sig := signals{
		domainClient: findDomainClient(clients, facts),
		rule:         selectRule(rules, facts, dryRun),
	}
	sig.keyword = findKeywordHit(clients, projects, facts, sig.domainClient)

	if sig.rule != nil && sig.domainClient == nil && sig.keyword.Client == nil {
		sig.ruleClient, sig.ruleProject, sig.ruleTeam = resolveRuleTargets(sig.rule.Actions, facts, clients, projects)
	}

	result := score(sig, facts, e.cfg.Weights, e.cfg.InternalDomain)

	if result.Confidence < e.cfg.Weights.WeakFloor {
		result = e.tryAIFallback(ctx, facts, result)
	}

	project := sig.keyword.Project
	if project == nil {
		project = sig.ruleProject
	}
	decision := decide(result, sig.rule, project, facts, e.cfg.Thresholds, e.cfg.InternalDomain)

	outcome := Outcome{Result: result, Decision: decision}
	if sig.rule != nil && decision.AutoApply && !dryRun && e.stats != nil {
		if err := e.stats.RecordRuleApplied(ctx, sig.rule.ID); err != nil {
			slog.Warn("Failed to record rule application",
				"rule_id", sig.rule.ID,
				"error", err)
		} else {
			outcome.StatsRecorded = true
		}
	}

	slog.Debug("Meeting classified",
		"type", result.Type,
		"method", result.Method,
		"confidence", result.Confidence,
		"auto_apply", decision.AutoApply)

	return outcome
}

// tryAIFallback consults the external AI classifier when local signals
// are weak. The call carries a bounded timeout; any failure keeps the
// local result. The AI result is adopted only when it raises confidence
// above what local signals produced.
func (e *Engine) tryAIFallback(ctx context.Context, facts model.MeetingFacts, local model.ClassificationResult) model.ClassificationResult {
	if e.ai == nil {
		return local
	}

	aiCtx, cancel := context.WithTimeout(ctx, e.cfg.AITimeout)
	defer cancel()

	aiResult, err := e.ai.ClassifyMeeting(aiCtx, facts)
	if err != nil {
		slog.Warn("AI fallback failed, keeping local result",
			"local_type", local.Type,
			"error", err)
		return local
	}

	confidence := clampConfidence(aiResult.Confidence)
	if confidence <= local.Confidence {
		return local
	}

	local.Type = aiResult.Type
	local.Confidence = confidence
	local.Method = model.MethodAI
	local.AIReasoning = aiResult.Reasoning
	return local
}

// TestRule evaluates a rule against a meeting without touching rule
// status or statistics. It delegates to the exact matcher used by
// Classify, so dry-run results cannot drift from production behavior.
func (e *Engine) TestRule(rule model.Rule, meeting model.MeetingInput) MatchResult {
	return MatchRule(rule, model.NewMeetingFacts(meeting))
}
