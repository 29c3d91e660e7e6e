package model

import "time"

// ProjectStatus tracks a project's lifecycle.
type ProjectStatus string

// Project status constants.
const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
)

// Client is an external organization meetings can be filed under. The
// directory owns these documents; the engine only reads them.
type Client struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
	Domains   []string  `json:"domains"`
	Keywords  []string  `json:"keywords"`
	ID        int64     `json:"id"`
	IsActive  bool      `json:"is_active"`
}

// ProjectMember is one entry in a project's team roster.
type ProjectMember struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Project is a unit of client work with its own keywords and roster.
type Project struct {
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Name      string          `json:"name"`
	Status    ProjectStatus   `json:"status"`
	Keywords  []string        `json:"keywords"`
	Team      []ProjectMember `json:"team"`
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
}

// TeamEmails returns the roster's email addresses.
func (p Project) TeamEmails() []string {
	emails := make([]string, 0, len(p.Team))
	for _, m := range p.Team {
		if m.Email != "" {
			emails = append(emails, m.Email)
		}
	}
	return emails
}
