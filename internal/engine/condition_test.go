package engine

import (
	"testing"

	"github.com/notabene-app/notabene/internal/model"
	"github.com/stretchr/testify/assert"
)

func testFacts() model.MeetingFacts {
	return model.NewMeetingFacts(model.MeetingInput{
		Title:       "Acme Weekly Sync",
		Description: "Status update on the Phoenix rollout",
		Organizer:   "jo@acme.com",
		Attendees: []model.Attendee{
			{Email: "jo@acme.com"},
			{Email: "sam@ourco.com"},
		},
	})
}

func TestEvaluateCondition(t *testing.T) {
	facts := testFacts()

	tests := []struct {
		name string
		cond model.Condition
		want bool
	}{
		{
			name: "title contains case-insensitive",
			cond: model.Condition{Field: model.FieldTitle, Operator: model.OpContains, Value: "ACME"},
			want: true,
		},
		{
			name: "title contains miss",
			cond: model.Condition{Field: model.FieldTitle, Operator: model.OpContains, Value: "initech"},
			want: false,
		},
		{
			name: "title equals full string",
			cond: model.Condition{Field: model.FieldTitle, Operator: model.OpEquals, Value: "acme weekly sync"},
			want: true,
		},
		{
			name: "title starts_with",
			cond: model.Condition{Field: model.FieldTitle, Operator: model.OpStartsWith, Value: "acme"},
			want: true,
		},
		{
			name: "title contains_any hit",
			cond: model.Condition{Field: model.FieldTitle, Operator: model.OpContainsAny, Values: []string{"standup", "sync"}},
			want: true,
		},
		{
			name: "title contains_any all miss",
			cond: model.Condition{Field: model.FieldTitle, Operator: model.OpContainsAny, Values: []string{"standup", "retro"}},
			want: false,
		},
		{
			name: "description contains",
			cond: model.Condition{Field: model.FieldDescription, Operator: model.OpContains, Value: "phoenix"},
			want: true,
		},
		{
			name: "attendee_domains contains",
			cond: model.Condition{Field: model.FieldAttendeeDomains, Operator: model.OpContains, Value: "acme.com"},
			want: true,
		},
		{
			name: "attendee_domains intersects",
			cond: model.Condition{Field: model.FieldAttendeeDomains, Operator: model.OpIntersects, Values: []string{"initech.io", "ourco.com"}},
			want: true,
		},
		{
			name: "attendee_domains intersects all miss",
			cond: model.Condition{Field: model.FieldAttendeeDomains, Operator: model.OpIntersects, Values: []string{"initech.io"}},
			want: false,
		},
		{
			name: "organizer equals",
			cond: model.Condition{Field: model.FieldOrganizer, Operator: model.OpEquals, Value: "jo@acme.com"},
			want: true,
		},
		{
			name: "organizer ends_with domain suffix",
			cond: model.Condition{Field: model.FieldOrganizer, Operator: model.OpEndsWith, Value: "@acme.com"},
			want: true,
		},
		{
			name: "all_attendees_domain mixed attendance",
			cond: model.Condition{Field: model.FieldAllAttendeesDomain, Operator: model.OpEquals, Value: "acme.com"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(tt.cond, facts))
		})
	}
}

func TestEvaluateConditionFailsClosed(t *testing.T) {
	facts := testFacts()

	tests := []struct {
		name string
		cond model.Condition
	}{
		{
			name: "unknown field",
			cond: model.Condition{Field: "location", Operator: model.OpContains, Value: "acme"},
		},
		{
			name: "operator invalid for field",
			cond: model.Condition{Field: model.FieldOrganizer, Operator: model.OpContains, Value: "acme"},
		},
		{
			name: "description rejects contains_any",
			cond: model.Condition{Field: model.FieldDescription, Operator: model.OpContainsAny, Values: []string{"phoenix"}},
		},
		{
			name: "all_attendees_domain rejects non-equals",
			cond: model.Condition{Field: model.FieldAllAttendeesDomain, Operator: model.OpContains, Value: "acme.com"},
		},
		{
			name: "list operator with empty list",
			cond: model.Condition{Field: model.FieldAttendeeDomains, Operator: model.OpIntersects},
		},
		{
			name: "scalar operator with empty value",
			cond: model.Condition{Field: model.FieldTitle, Operator: model.OpContains},
		},
		{
			name: "scalar where list expected",
			cond: model.Condition{Field: model.FieldTitle, Operator: model.OpContainsAny, Value: "sync"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, EvaluateCondition(tt.cond, facts))
		})
	}
}

func TestEvaluateConditionAllAttendeesDomain(t *testing.T) {
	internal := model.NewMeetingFacts(model.MeetingInput{
		Title:     "retro",
		Attendees: []model.Attendee{{Email: "a@ourco.com"}, {Email: "b@ourco.com"}},
	})
	cond := model.Condition{Field: model.FieldAllAttendeesDomain, Operator: model.OpEquals, Value: "ourco.com"}
	assert.True(t, EvaluateCondition(cond, internal))

	// Zero attendees never satisfy an all-attendees claim.
	empty := model.NewMeetingFacts(model.MeetingInput{Title: "solo"})
	assert.False(t, EvaluateCondition(cond, empty))
}
