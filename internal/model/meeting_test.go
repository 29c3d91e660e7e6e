package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMeetingFacts(t *testing.T) {
	facts := NewMeetingFacts(MeetingInput{
		Title:     "  Acme Weekly SYNC ",
		Organizer: "Jo@Acme.com",
		Attendees: []Attendee{
			{Email: "Jo@Acme.com"},
			{Email: "sam@ourco.com"},
			{Email: "second@acme.com"},
			{Email: "no-domain"},
			{Email: ""},
			{Email: "@acme.com"},
			{Email: "trailing@"},
		},
	})

	assert.Equal(t, "acme weekly sync", facts.Title)
	assert.Equal(t, "jo@acme.com", facts.Organizer)
	assert.Equal(t, []string{"jo@acme.com", "sam@ourco.com", "second@acme.com"}, facts.AttendeeEmails)
	assert.Equal(t, []string{"acme.com", "ourco.com"}, facts.AttendeeDomains)
	assert.True(t, facts.HasDomain("ACME.com"))
	assert.False(t, facts.HasDomain("initech.io"))
}

func TestAllDomainsEqual(t *testing.T) {
	internal := NewMeetingFacts(MeetingInput{
		Title:     "retro",
		Attendees: []Attendee{{Email: "a@ourco.com"}, {Email: "b@OurCo.com"}},
	})
	assert.True(t, internal.AllDomainsEqual("ourco.com"))
	assert.False(t, internal.AllDomainsEqual("acme.com"))

	mixed := NewMeetingFacts(MeetingInput{
		Title:     "intro",
		Attendees: []Attendee{{Email: "a@ourco.com"}, {Email: "b@acme.com"}},
	})
	assert.False(t, mixed.AllDomainsEqual("ourco.com"))

	// No attendees means no domain claim at all.
	empty := NewMeetingFacts(MeetingInput{Title: "solo"})
	assert.False(t, empty.AllDomainsEqual("ourco.com"))
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jo@acme.com", "acme.com"},
		{"Jo@ACME.com", "acme.com"},
		{"no-at-sign", ""},
		{"@acme.com", ""},
		{"jo@", ""},
		{"", ""},
		{"odd@name@host.com", "host.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EmailDomain(tt.email), "email %q", tt.email)
	}
}
