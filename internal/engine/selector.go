package engine

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/notabene-app/notabene/internal/model"
)

// selectRule evaluates the given rules against the meeting and returns
// the highest-priority match, or nil. Malformed rule documents are
// logged and skipped; one bad rule never blocks classification.
// Ties on priority keep the earliest-created rule (lowest id).
func selectRule(rules []model.Rule, facts model.MeetingFacts, dryRun bool) *model.Rule {
	ordered := make([]model.Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	for i := range ordered {
		rule := ordered[i]
		switch rule.Status {
		case model.RuleActive:
		case model.RuleTesting:
			if !dryRun {
				continue
			}
		default:
			continue
		}

		if err := rule.Validate(); err != nil {
			slog.Warn("Skipping malformed rule",
				"rule_id", rule.ID,
				"rule_name", rule.Name,
				"error", err)
			continue
		}

		if MatchRule(rule, facts).Matched {
			return &ordered[i]
		}
	}

	return nil
}

// findDomainClient returns the first active client with any attendee
// domain in its domain set. Clients are checked in id order so ties are
// deterministic.
func findDomainClient(clients []model.Client, facts model.MeetingFacts) *model.Client {
	ordered := make([]model.Client, len(clients))
	copy(ordered, clients)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for i := range ordered {
		if !ordered[i].IsActive {
			continue
		}
		for _, domain := range ordered[i].Domains {
			if facts.HasDomain(domain) {
				return &ordered[i]
			}
		}
	}
	return nil
}

// keywordHit is the keyword-signal result. Project is set when a
// project-level keyword matched; project matches outrank client-level
// ones because they are more specific.
type keywordHit struct {
	Client  *model.Client
	Project *model.Project
}

// findKeywordHit scans active project then client keyword lists against
// the meeting title and description. When preferClient is non-nil only
// that client's projects are considered (domain already resolved the
// client; the keyword just narrows the project).
func findKeywordHit(clients []model.Client, projects []model.Project, facts model.MeetingFacts, preferClient *model.Client) keywordHit {
	text := facts.Title
	if facts.Description != "" {
		text += "\n" + facts.Description
	}

	clientByID := make(map[int64]*model.Client, len(clients))
	for i := range clients {
		clientByID[clients[i].ID] = &clients[i]
	}

	ordered := make([]model.Project, len(projects))
	copy(ordered, projects)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for i := range ordered {
		project := &ordered[i]
		if project.Status != model.ProjectActive {
			continue
		}
		if preferClient != nil && project.ClientID != preferClient.ID {
			continue
		}
		owner := clientByID[project.ClientID]
		if owner == nil || !owner.IsActive {
			continue
		}
		if matchesAnyKeyword(text, project.Keywords) {
			return keywordHit{Client: owner, Project: project}
		}
	}

	if preferClient != nil {
		return keywordHit{}
	}

	orderedClients := make([]model.Client, len(clients))
	copy(orderedClients, clients)
	sort.SliceStable(orderedClients, func(i, j int) bool { return orderedClients[i].ID < orderedClients[j].ID })

	for i := range orderedClients {
		if !orderedClients[i].IsActive {
			continue
		}
		if matchesAnyKeyword(text, orderedClients[i].Keywords) {
			return keywordHit{Client: &orderedClients[i]}
		}
	}

	return keywordHit{}
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
