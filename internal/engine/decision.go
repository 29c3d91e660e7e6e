package engine

import (
	"strings"

	"github.com/notabene-app/notabene/internal/model"
)

// Confidence thresholds driving auto-file vs. review routing. Exposed
// as named constants so boundary behavior can be asserted exactly;
// deployments may override them through configuration.
const (
	// DefaultAutoApplyThreshold: at or above, the classification is
	// filed without human review.
	DefaultAutoApplyThreshold = 0.90
	// DefaultReviewThreshold: at or above (but below auto-apply), the
	// note goes to the human review queue. Below it, uncategorized.
	DefaultReviewThreshold = 0.70
)

// Thresholds holds the routing cutoffs.
type Thresholds struct {
	AutoApply float64
	Review    float64
}

// DefaultThresholds returns the default routing cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AutoApply: DefaultAutoApplyThreshold,
		Review:    DefaultReviewThreshold,
	}
}

// RouteFor maps a confidence to a note status: auto-filed, in-review,
// or uncategorized.
func (t Thresholds) RouteFor(confidence float64) model.NoteStatus {
	switch {
	case confidence >= t.AutoApply:
		return model.NoteAutoFiled
	case confidence >= t.Review:
		return model.NoteInReview
	default:
		return model.NoteUncategorized
	}
}

// decide applies thresholds and builds the suggested filing actions for
// a classification.
func decide(result model.ClassificationResult, rule *model.Rule, project *model.Project, facts model.MeetingFacts, t Thresholds, internalDomain string) model.Decision {
	return model.Decision{
		AutoApply: result.Confidence >= t.AutoApply,
		Suggested: buildSuggestedActions(result, rule, project, facts, internalDomain),
	}
}

// buildSuggestedActions derives folder, share list and tags from the
// winning rule's action set when a rule matched, falling back to the
// generic type-based folder conventions otherwise.
func buildSuggestedActions(result model.ClassificationResult, rule *model.Rule, project *model.Project, facts model.MeetingFacts, internalDomain string) model.SuggestedActions {
	actions := model.SuggestedActions{
		FolderPath: defaultFolder(result),
	}

	if rule != nil {
		if rule.Actions.FolderPath != "" {
			actions.FolderPath = rule.Actions.FolderPath
		} else if rule.Actions.FolderTemplate != "" {
			actions.FolderPath = expandFolderTemplate(rule.Actions.FolderTemplate, result)
		}
		actions.Tags = append(actions.Tags, rule.Actions.AddTags...)
		actions.ShareWith = append(actions.ShareWith, rule.Actions.ShareWith...)
	}

	if project != nil {
		actions.ShareWith = append(actions.ShareWith, project.TeamEmails()...)
	}
	if internalDomain != "" {
		for _, email := range facts.AttendeeEmails {
			if model.EmailDomain(email) == internalDomain {
				actions.ShareWith = append(actions.ShareWith, email)
			}
		}
	}
	actions.ShareWith = dedupeEmails(actions.ShareWith)

	return actions
}

// DefaultActions derives the type-based filing actions for a verdict
// when no live rule or directory context is at hand, e.g. when
// redisplaying a stored classification.
func DefaultActions(result model.ClassificationResult) model.SuggestedActions {
	return model.SuggestedActions{FolderPath: defaultFolder(result)}
}

// defaultFolder is the generic type-based folder convention used when
// no rule supplies a folder.
func defaultFolder(result model.ClassificationResult) string {
	switch result.Type {
	case model.TypeClient:
		path := "Clients"
		if result.ClientName != "" {
			path += "/" + result.ClientName
		}
		if result.ProjectName != "" {
			path += "/" + result.ProjectName
		}
		return path
	case model.TypeInternal:
		if result.InternalTeam != "" {
			return "Internal/" + result.InternalTeam
		}
		return "Internal"
	case model.TypeExternal:
		return "External"
	case model.TypePersonal:
		return "Personal"
	default:
		return "Uncategorized"
	}
}

// expandFolderTemplate substitutes {client}, {project} and {team}
// placeholders from the resolved classification.
func expandFolderTemplate(template string, result model.ClassificationResult) string {
	replacer := strings.NewReplacer(
		"{client}", result.ClientName,
		"{project}", result.ProjectName,
		"{team}", result.InternalTeam,
	)
	return strings.Trim(replacer.Replace(template), "/")
}

// dedupeEmails removes case-insensitive duplicates, preserving first
// occurrence order (order is not significant, but determinism helps
// tests and diffs).
func dedupeEmails(emails []string) []string {
	if len(emails) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		key := strings.ToLower(strings.TrimSpace(e))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
