package model

import "fmt"

// TargetMode says how a rule action resolves a client, project or team:
// an explicit value, detection from attendee domains, detection from
// title/description keywords, or whatever the engine can work out.
type TargetMode string

// Target mode constants.
const (
	TargetNone         TargetMode = ""
	TargetExplicit     TargetMode = "explicit"
	TargetFromDomain   TargetMode = "from_domain"
	TargetFromKeywords TargetMode = "from_keywords"
	TargetAuto         TargetMode = "auto"
)

// TargetRef is the sum type behind dynamic action targets. Value is
// only meaningful in explicit mode (a client/project id or a team name).
type TargetRef struct {
	Mode  TargetMode `json:"mode,omitempty"`
	Value string     `json:"value,omitempty"`
}

// IsSet reports whether the target was specified at all.
func (t TargetRef) IsSet() bool {
	return t.Mode != TargetNone
}

// Validate rejects unknown modes and explicit targets without a value.
func (t TargetRef) Validate() error {
	switch t.Mode {
	case TargetNone, TargetFromDomain, TargetFromKeywords, TargetAuto:
		return nil
	case TargetExplicit:
		if t.Value == "" {
			return fmt.Errorf("explicit target requires a value")
		}
		return nil
	default:
		return fmt.Errorf("unknown target mode %q", t.Mode)
	}
}

// ActionSet describes what happens when a rule matches: the resulting
// classification type plus optional filing targets.
type ActionSet struct {
	ClassifyAs     ClassificationType `json:"classify_as"`
	Client         TargetRef          `json:"client,omitempty"`
	Project        TargetRef          `json:"project,omitempty"`
	Team           TargetRef          `json:"team,omitempty"`
	FolderPath     string             `json:"folder_path,omitempty"`
	FolderTemplate string             `json:"folder_template,omitempty"`
	ShareWith      []string           `json:"share_with,omitempty"`
	AddTags        []string           `json:"add_tags,omitempty"`
}

// Validate checks the action set at the boundary.
func (a ActionSet) Validate() error {
	switch a.ClassifyAs {
	case TypeClient, TypeInternal, TypeExternal, TypePersonal:
	default:
		return fmt.Errorf("classify_as must be one of client, internal, external, personal; got %q", a.ClassifyAs)
	}
	if err := a.Client.Validate(); err != nil {
		return fmt.Errorf("client target: %w", err)
	}
	if err := a.Project.Validate(); err != nil {
		return fmt.Errorf("project target: %w", err)
	}
	if err := a.Team.Validate(); err != nil {
		return fmt.Errorf("team target: %w", err)
	}
	if a.FolderPath != "" && a.FolderTemplate != "" {
		return fmt.Errorf("folder_path and folder_template are mutually exclusive")
	}
	return nil
}
