package model

import "time"

// CorrectionType labels what a human changed about a classification.
type CorrectionType string

// Correction type constants.
const (
	CorrectionTypeChange    CorrectionType = "type_change"
	CorrectionClientChange  CorrectionType = "client_change"
	CorrectionProjectChange CorrectionType = "project_change"
	CorrectionTeamChange    CorrectionType = "team_change"
	CorrectionOther         CorrectionType = "other"
)

// MeetingSnapshot is the minimal meeting context stored with feedback:
// title and attendee emails only, nothing else is retained.
type MeetingSnapshot struct {
	Title          string   `json:"title"`
	AttendeeEmails []string `json:"attendee_emails"`
}

// FeedbackRecord is an immutable log entry for one human correction.
// Records are append-only; nothing in the system mutates or deletes them.
type FeedbackRecord struct {
	CreatedAt       time.Time            `json:"created_at"`
	NoteID          string               `json:"note_id"`
	Author          string               `json:"author"`
	Original        ClassificationResult `json:"original"`
	Corrected       ClassificationResult `json:"corrected"`
	CorrectionTypes []CorrectionType     `json:"correction_types"`
	Snapshot        MeetingSnapshot      `json:"meeting_snapshot"`
	ID              int64                `json:"id"`
}

// DeriveCorrectionTypes diffs two classifications into the set of
// correction categories. If nothing differs the category is "other".
func DeriveCorrectionTypes(original, corrected ClassificationResult) []CorrectionType {
	var types []CorrectionType
	if original.Type != corrected.Type {
		types = append(types, CorrectionTypeChange)
	}
	if !int64PtrEqual(original.ClientID, corrected.ClientID) {
		types = append(types, CorrectionClientChange)
	}
	if !int64PtrEqual(original.ProjectID, corrected.ProjectID) {
		types = append(types, CorrectionProjectChange)
	}
	if original.InternalTeam != corrected.InternalTeam {
		types = append(types, CorrectionTeamChange)
	}
	if len(types) == 0 {
		types = append(types, CorrectionOther)
	}
	return types
}
