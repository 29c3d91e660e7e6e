package model

// ClassificationType is the category a meeting is filed under.
type ClassificationType string

// Classification type constants.
const (
	TypeClient        ClassificationType = "client"
	TypeInternal      ClassificationType = "internal"
	TypeExternal      ClassificationType = "external"
	TypePersonal      ClassificationType = "personal"
	TypeUncategorized ClassificationType = "uncategorized"
)

// ClassificationMethod records which signal produced the verdict.
type ClassificationMethod string

// Classification method constants.
const (
	MethodRule    ClassificationMethod = "rule"
	MethodDomain  ClassificationMethod = "domain"
	MethodKeyword ClassificationMethod = "keyword"
	MethodAI      ClassificationMethod = "ai"
	MethodDefault ClassificationMethod = "default"
)

// ClassificationResult is the engine's verdict for one meeting.
type ClassificationResult struct {
	Type          ClassificationType   `json:"type"`
	Method        ClassificationMethod `json:"classification_method"`
	ClientID      *int64               `json:"client_id,omitempty"`
	ClientName    string               `json:"client_name,omitempty"`
	ProjectID     *int64               `json:"project_id,omitempty"`
	ProjectName   string               `json:"project_name,omitempty"`
	InternalTeam  string               `json:"internal_team,omitempty"`
	MatchedRuleID *int64               `json:"matched_rule_id,omitempty"`
	AIReasoning   string               `json:"ai_reasoning,omitempty"`
	Confidence    float64              `json:"confidence"`
}

// SuggestedActions are the filing actions derived from a verdict:
// target folder, who to share with, tags to attach.
type SuggestedActions struct {
	FolderPath string   `json:"folder_path,omitempty"`
	ShareWith  []string `json:"share_with,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Decision is the routing verdict layered on a classification result.
type Decision struct {
	Suggested SuggestedActions `json:"suggested_actions"`
	AutoApply bool             `json:"auto_apply"`
}

// SameTarget reports whether two results point at the same client and
// project, used when counting recurring corrections.
func (r ClassificationResult) SameTarget(other ClassificationResult) bool {
	return int64PtrEqual(r.ClientID, other.ClientID) &&
		int64PtrEqual(r.ProjectID, other.ProjectID)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
