package model

import "time"

// NoteStatus tracks where a meeting note sits in the filing pipeline.
type NoteStatus string

// Note status constants.
const (
	// NotePending means the note has not been classified yet.
	NotePending NoteStatus = "pending"
	// NoteAutoFiled means the classification cleared the auto-apply
	// threshold and was applied without review.
	NoteAutoFiled NoteStatus = "auto_filed"
	// NoteInReview means the classification needs human confirmation.
	NoteInReview NoteStatus = "in_review"
	// NoteUncategorized means no signal was strong enough; the note
	// sits in the uncategorized queue.
	NoteUncategorized NoteStatus = "uncategorized"
	// NoteConfirmed means a human accepted or corrected the verdict.
	NoteConfirmed NoteStatus = "confirmed"
)

// Note is a stored meeting note with its current classification state.
type Note struct {
	CreatedAt    time.Time             `json:"created_at"`
	ClassifiedAt *time.Time            `json:"classified_at,omitempty"`
	Result       *ClassificationResult `json:"classification,omitempty"`
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	Organizer    string                `json:"organizer,omitempty"`
	Status       NoteStatus            `json:"status"`
	Attendees    []Attendee            `json:"attendees"`
}

// Meeting projects the note into classifier input.
func (n Note) Meeting() MeetingInput {
	return MeetingInput{
		Title:       n.Title,
		Description: n.Description,
		Organizer:   n.Organizer,
		Attendees:   n.Attendees,
	}
}

// Snapshot returns the minimal meeting context kept with feedback.
func (n Note) Snapshot() MeetingSnapshot {
	emails := make([]string, 0, len(n.Attendees))
	for _, a := range n.Attendees {
		if a.Email != "" {
			emails = append(emails, a.Email)
		}
	}
	return MeetingSnapshot{Title: n.Title, AttendeeEmails: emails}
}
