// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Attendee is a single meeting participant.
type Attendee struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// MeetingInput carries the metadata the classifier works from. It is
// constructed per classification call and never persisted by the engine.
type MeetingInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Organizer   string     `json:"organizer,omitempty"`
	Attendees   []Attendee `json:"attendees"`
}

// MeetingFacts is the lower-cased, trimmed projection of a meeting that
// conditions are evaluated against. Building it once up front keeps the
// evaluator pure and case-handling in a single place.
type MeetingFacts struct {
	Title           string
	Description     string
	Organizer       string
	AttendeeEmails  []string
	AttendeeDomains []string
	domainSet       map[string]struct{}
}

// NewMeetingFacts projects a meeting into evaluation form. Malformed
// attendee entries (empty or domainless emails) are dropped rather than
// rejected; classification never hard-fails on input.
func NewMeetingFacts(m MeetingInput) MeetingFacts {
	facts := MeetingFacts{
		Title:       strings.ToLower(strings.TrimSpace(m.Title)),
		Description: strings.ToLower(strings.TrimSpace(m.Description)),
		Organizer:   strings.ToLower(strings.TrimSpace(m.Organizer)),
		domainSet:   make(map[string]struct{}),
	}

	for _, a := range m.Attendees {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		domain := EmailDomain(email)
		if domain == "" {
			continue
		}
		facts.AttendeeEmails = append(facts.AttendeeEmails, email)
		if _, seen := facts.domainSet[domain]; !seen {
			facts.domainSet[domain] = struct{}{}
			facts.AttendeeDomains = append(facts.AttendeeDomains, domain)
		}
	}

	return facts
}

// HasDomain reports whether any attendee's email uses the given domain.
func (f MeetingFacts) HasDomain(domain string) bool {
	_, ok := f.domainSet[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// AllDomainsEqual reports whether the attendee list is non-empty and
// every attendee's domain equals the given one.
func (f MeetingFacts) AllDomainsEqual(domain string) bool {
	if len(f.AttendeeEmails) == 0 {
		return false
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, d := range f.AttendeeDomains {
		if d != domain {
			return false
		}
	}
	return true
}

// EmailDomain extracts the lower-cased domain part of an email address.
// Returns "" for anything without a non-empty local and domain part.
func EmailDomain(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
