package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/notabene-app/notabene/internal/model"
)

// RuleSuggestionThreshold is the number of prior corrections with the
// same corrected client+project target after which a new rule is
// proposed.
const RuleSuggestionThreshold = 3

// Result separates the authoritative feedback record from the advisory
// side effects, so callers treat stat/pattern failures as non-fatal by
// construction.
type Result struct {
	SuggestedRule    *model.Rule
	Record           model.FeedbackRecord
	PatternUpdated   bool
	RuleStatsUpdated bool
}

// Recorder persists corrections and evolves learned patterns.
type Recorder struct {
	store          Store
	internalDomain string
	now            func() time.Time
}

// NewRecorder creates a feedback recorder. internalDomain is used to
// tell external attendee domains apart when deriving patterns.
func NewRecorder(store Store, internalDomain string) *Recorder {
	return &Recorder{
		store:          store,
		internalDomain: strings.ToLower(strings.TrimSpace(internalDomain)),
		now:            time.Now,
	}
}

// Record logs one human correction. Failure to write the feedback
// record itself is a hard error (there is no safe degradation for the
// source of truth); every other step is best-effort and reflected in
// the returned Result instead of an error.
func (r *Recorder) Record(ctx context.Context, noteID string, original, corrected model.ClassificationResult, snapshot model.MeetingSnapshot, author string) (Result, error) {
	// Prior-correction count is taken before appending so the
	// threshold means "at least N earlier records share this target".
	priorCount := 0
	if corrected.ClientID != nil {
		count, err := r.store.CountFeedbackByTarget(ctx, corrected.ClientID, corrected.ProjectID)
		if err != nil {
			slog.Warn("Failed to count prior feedback", "note_id", noteID, "error", err)
		} else {
			priorCount = count
		}
	}

	record := model.FeedbackRecord{
		NoteID:          noteID,
		Author:          author,
		Original:        original,
		Corrected:       corrected,
		CorrectionTypes: model.DeriveCorrectionTypes(original, corrected),
		Snapshot:        snapshot,
		CreatedAt:       r.now(),
	}

	if err := r.store.AppendFeedback(ctx, &record); err != nil {
		return Result{}, fmt.Errorf("failed to append feedback record: %w", err)
	}

	result := Result{Record: record}

	if original.MatchedRuleID != nil {
		if err := r.store.IncrementRuleCorrected(ctx, *original.MatchedRuleID); err != nil {
			slog.Warn("Failed to increment rule correction count",
				"rule_id", *original.MatchedRuleID,
				"error", err)
		} else {
			result.RuleStatsUpdated = true
		}
	}

	result.PatternUpdated = r.updateLearnedPattern(ctx, author, snapshot, corrected)

	if corrected.ClientID != nil && priorCount >= RuleSuggestionThreshold {
		result.SuggestedRule = r.buildRuleSuggestion(snapshot, corrected)
		slog.Info("Recurring correction detected, suggesting rule",
			"note_id", noteID,
			"client", corrected.ClientName,
			"prior_corrections", priorCount)
	}

	return result, nil
}

// updateLearnedPattern derives a textual pattern from the meeting and
// upserts it into the author's bounded pattern list. Best-effort: any
// storage failure logs and reports no update.
func (r *Recorder) updateLearnedPattern(ctx context.Context, author string, snapshot model.MeetingSnapshot, corrected model.ClassificationResult) bool {
	pattern := r.derivePattern(snapshot)
	if pattern == "" {
		return false
	}
	action := describeAction(corrected)

	stored, err := r.store.GetLearnedPatterns(ctx, author)
	if err != nil {
		slog.Warn("Failed to load learned patterns", "user", author, "error", err)
		return false
	}

	list := model.NewPatternList(stored)
	updated := list.Observe(pattern, action, r.now())

	if err := r.store.ReplaceLearnedPatterns(ctx, author, list.Patterns()); err != nil {
		slog.Warn("Failed to save learned patterns", "user", author, "error", err)
		return false
	}

	return updated
}

// derivePattern builds a stable textual pattern from the meeting's
// external attendee domains and title keywords. Two corrections of the
// same kind of meeting must produce the same text so the pattern's
// confidence accumulates.
func (r *Recorder) derivePattern(snapshot model.MeetingSnapshot) string {
	domains := r.externalDomains(snapshot.AttendeeEmails)
	keywords := titleKeywords(snapshot.Title)

	if len(domains) == 0 && len(keywords) == 0 {
		return ""
	}

	var parts []string
	if len(domains) > 0 {
		parts = append(parts, "meetings with "+strings.Join(domains, ", "))
	}
	if len(keywords) > 0 {
		parts = append(parts, "titled about "+strings.Join(keywords, " "))
	}
	return strings.Join(parts, " ")
}

// externalDomains returns the sorted unique attendee domains that are
// not the deployment's internal domain.
func (r *Recorder) externalDomains(emails []string) []string {
	seen := make(map[string]struct{})
	var domains []string
	for _, email := range emails {
		domain := model.EmailDomain(email)
		if domain == "" || domain == r.internalDomain {
			continue
		}
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains
}

// titleKeywords extracts up to three significant lower-cased words from
// a meeting title.
func titleKeywords(title string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.Trim(word, ".,:;!?\"'()[]")
		if len(word) <= 3 || stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == 3 {
			break
		}
	}
	return keywords
}

var stopWords = map[string]bool{
	"with": true, "from": true, "this": true, "that": true,
	"meeting": true, "sync": true, "call": true, "weekly": true,
	"monthly": true, "review": true,
}

// describeAction renders the corrected classification as the pattern's
// action text.
func describeAction(corrected model.ClassificationResult) string {
	switch corrected.Type {
	case model.TypeClient:
		action := "file under client " + corrected.ClientName
		if corrected.ProjectName != "" {
			action += " / " + corrected.ProjectName
		}
		return action
	case model.TypeInternal:
		if corrected.InternalTeam != "" {
			return "file under internal team " + corrected.InternalTeam
		}
		return "file as internal"
	default:
		return "file as " + string(corrected.Type)
	}
}

// buildRuleSuggestion proposes a new rule skeleton targeting the
// corrected classification. Conditions are intentionally left for the
// author to refine; the suggestion is advisory and never auto-created.
func (r *Recorder) buildRuleSuggestion(snapshot model.MeetingSnapshot, corrected model.ClassificationResult) *model.Rule {
	name := "Auto-file " + string(corrected.Type) + " meetings"
	if corrected.ClientName != "" {
		name = "Auto-file " + corrected.ClientName + " meetings"
	}

	actions := model.ActionSet{ClassifyAs: corrected.Type}
	if corrected.ClientID != nil {
		actions.Client = model.TargetRef{
			Mode:  model.TargetExplicit,
			Value: fmt.Sprintf("%d", *corrected.ClientID),
		}
	}
	if corrected.ProjectID != nil {
		actions.Project = model.TargetRef{
			Mode:  model.TargetExplicit,
			Value: fmt.Sprintf("%d", *corrected.ProjectID),
		}
	}
	if corrected.InternalTeam != "" {
		actions.Team = model.TargetRef{
			Mode:  model.TargetExplicit,
			Value: corrected.InternalTeam,
		}
	}

	return &model.Rule{
		Name:        name,
		Description: "Suggested after repeated corrections; add conditions before enabling. Pattern: " + r.derivePattern(snapshot),
		Status:      model.RuleTesting,
		Priority:    50,
		Group:       model.ConditionGroup{Operator: model.GroupAnd},
		Actions:     actions,
	}
}
