package engine

import (
	"testing"

	"github.com/notabene-app/notabene/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titleRule(id int64, priority int, keyword string, status model.RuleStatus) model.Rule {
	return model.Rule{
		ID:       id,
		Name:     "rule-" + keyword,
		Status:   status,
		Priority: priority,
		Group: model.ConditionGroup{
			Operator: model.GroupAnd,
			Conditions: []model.Condition{
				{Field: model.FieldTitle, Operator: model.OpContains, Value: keyword},
			},
		},
		Actions: model.ActionSet{ClassifyAs: model.TypeClient, Client: model.TargetRef{Mode: model.TargetFromDomain}},
	}
}

func TestSelectRulePriorityOrder(t *testing.T) {
	facts := testFacts()

	rules := []model.Rule{
		titleRule(1, 10, "acme", model.RuleActive),
		titleRule(2, 100, "acme", model.RuleActive),
		titleRule(3, 50, "acme", model.RuleActive),
	}

	selected := selectRule(rules, facts, false)
	require.NotNil(t, selected)
	assert.Equal(t, int64(2), selected.ID)
}

func TestSelectRuleTieBreaksOnLowestID(t *testing.T) {
	facts := testFacts()

	rules := []model.Rule{
		titleRule(9, 50, "acme", model.RuleActive),
		titleRule(4, 50, "acme", model.RuleActive),
		titleRule(7, 50, "acme", model.RuleActive),
	}

	selected := selectRule(rules, facts, false)
	require.NotNil(t, selected)
	assert.Equal(t, int64(4), selected.ID)
}

func TestSelectRuleSkipsByStatus(t *testing.T) {
	facts := testFacts()

	rules := []model.Rule{
		titleRule(1, 100, "acme", model.RuleDisabled),
		titleRule(2, 90, "acme", model.RuleTesting),
		titleRule(3, 10, "acme", model.RuleActive),
	}

	selected := selectRule(rules, facts, false)
	require.NotNil(t, selected)
	assert.Equal(t, int64(3), selected.ID, "disabled and testing rules lose to a lower-priority active rule")

	// Dry-run evaluation admits testing rules.
	selected = selectRule(rules, facts, true)
	require.NotNil(t, selected)
	assert.Equal(t, int64(2), selected.ID)
}

func TestSelectRuleSkipsMalformedRules(t *testing.T) {
	facts := testFacts()

	malformed := titleRule(1, 100, "acme", model.RuleActive)
	malformed.ConfidenceBoost = 2.0

	rules := []model.Rule{
		malformed,
		titleRule(2, 10, "acme", model.RuleActive),
	}

	selected := selectRule(rules, facts, false)
	require.NotNil(t, selected)
	assert.Equal(t, int64(2), selected.ID)
}

func TestSelectRuleNoMatch(t *testing.T) {
	facts := testFacts()
	assert.Nil(t, selectRule([]model.Rule{titleRule(1, 10, "initech", model.RuleActive)}, facts, false))
	assert.Nil(t, selectRule(nil, facts, false))
}

func TestFindDomainClient(t *testing.T) {
	facts := testFacts()

	clients := []model.Client{
		{ID: 3, Name: "Acme Later", Domains: []string{"acme.com"}, IsActive: true},
		{ID: 1, Name: "Inactive Acme", Domains: []string{"acme.com"}, IsActive: false},
		{ID: 2, Name: "Acme", Domains: []string{"acme.com"}, IsActive: true},
	}

	found := findDomainClient(clients, facts)
	require.NotNil(t, found)
	assert.Equal(t, int64(2), found.ID, "lowest-id active client wins")

	assert.Nil(t, findDomainClient([]model.Client{{ID: 1, Domains: []string{"initech.io"}, IsActive: true}}, facts))
}

func TestFindKeywordHitProjectBeforeClient(t *testing.T) {
	facts := model.NewMeetingFacts(model.MeetingInput{
		Title: "Phoenix planning",
	})

	clients := []model.Client{
		{ID: 1, Name: "Acme", Keywords: []string{"phoenix"}, IsActive: true},
	}
	projects := []model.Project{
		{ID: 10, ClientID: 1, Name: "Phoenix", Status: model.ProjectActive, Keywords: []string{"phoenix"}},
	}

	hit := findKeywordHit(clients, projects, facts, nil)
	require.NotNil(t, hit.Client)
	require.NotNil(t, hit.Project)
	assert.Equal(t, int64(10), hit.Project.ID, "project keyword outranks client keyword")
}

func TestFindKeywordHitScopedToPreferredClient(t *testing.T) {
	facts := model.NewMeetingFacts(model.MeetingInput{Title: "Phoenix planning"})

	clients := []model.Client{
		{ID: 1, Name: "Acme", IsActive: true},
		{ID: 2, Name: "Initech", Keywords: []string{"phoenix"}, IsActive: true},
	}
	projects := []model.Project{
		{ID: 10, ClientID: 2, Name: "Phoenix", Status: model.ProjectActive, Keywords: []string{"phoenix"}},
	}

	// Scoped to client 1, the other client's project and keywords are
	// out of bounds.
	hit := findKeywordHit(clients, projects, facts, &clients[0])
	assert.Nil(t, hit.Client)
	assert.Nil(t, hit.Project)

	hit = findKeywordHit(clients, projects, facts, &clients[1])
	require.NotNil(t, hit.Project)
	assert.Equal(t, int64(10), hit.Project.ID)
}

func TestFindKeywordHitIgnoresInactive(t *testing.T) {
	facts := model.NewMeetingFacts(model.MeetingInput{Title: "Phoenix planning"})

	clients := []model.Client{
		{ID: 1, Name: "Acme", Keywords: []string{"phoenix"}, IsActive: false},
	}
	projects := []model.Project{
		{ID: 10, ClientID: 1, Name: "Phoenix", Status: model.ProjectOnHold, Keywords: []string{"phoenix"}},
	}

	hit := findKeywordHit(clients, projects, facts, nil)
	assert.Nil(t, hit.Client, "inactive clients and non-active projects contribute nothing")
}
