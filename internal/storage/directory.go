package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/notabene-app/notabene/internal/common"
	"github.com/notabene-app/notabene/internal/model"
)

// CreateClient inserts a new client and populates its ID.
func (s *SQLiteStorage) CreateClient(ctx context.Context, client *model.Client) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("client cannot be nil")
	}
	if err := validateString(client.Name, "client name"); err != nil {
		return err
	}

	domains, err := marshalColumn(client.Domains)
	if err != nil {
		return err
	}
	keywords, err := marshalColumn(client.Keywords)
	if err != nil {
		return err
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (name, domains, keywords, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		client.Name, domains, keywords, client.IsActive, now, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("client %q: %w", client.Name, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get client ID: %w", err)
	}
	client.ID = id
	client.CreatedAt = now
	client.UpdatedAt = now
	return nil
}

// GetClient retrieves a client by ID.
func (s *SQLiteStorage) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "client ID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, domains, keywords, is_active, created_at, updated_at
		FROM clients WHERE id = ?`, id)

	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// ListActiveClients returns all active clients ordered by ID.
func (s *SQLiteStorage) ListActiveClients(ctx context.Context) ([]model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, domains, keywords, is_active, created_at, updated_at
		FROM clients WHERE is_active = TRUE ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var clients []model.Client
	for rows.Next() {
		client, scanErr := scanClient(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan client: %w", scanErr)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

// CreateProject inserts a new project and populates its ID.
func (s *SQLiteStorage) CreateProject(ctx context.Context, project *model.Project) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project cannot be nil")
	}
	if err := validateString(project.Name, "project name"); err != nil {
		return err
	}
	if err := validateID(project.ClientID, "project client ID"); err != nil {
		return err
	}

	keywords, err := marshalColumn(project.Keywords)
	if err != nil {
		return err
	}
	team, err := marshalColumn(project.Team)
	if err != nil {
		return err
	}

	status := project.Status
	if status == "" {
		status = model.ProjectActive
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (client_id, name, status, keywords, team, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ClientID, project.Name, status, keywords, team, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get project ID: %w", err)
	}
	project.ID = id
	project.Status = status
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

// ListActiveProjects returns all active projects ordered by ID.
func (s *SQLiteStorage) ListActiveProjects(ctx context.Context) ([]model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, name, status, keywords, team, created_at, updated_at
		FROM projects WHERE status = ? ORDER BY id ASC`, model.ProjectActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		project, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan project: %w", scanErr)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

func scanClient(row rowScanner) (*model.Client, error) {
	var client model.Client
	var domains, keywords string

	err := row.Scan(&client.ID, &client.Name, &domains, &keywords,
		&client.IsActive, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(domains, &client.Domains); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(keywords, &client.Keywords); err != nil {
		return nil, err
	}
	return &client, nil
}

func scanProject(row rowScanner) (*model.Project, error) {
	var project model.Project
	var keywords, team string

	err := row.Scan(&project.ID, &project.ClientID, &project.Name, &project.Status,
		&keywords, &team, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(keywords, &project.Keywords); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(team, &project.Team); err != nil {
		return nil, err
	}
	return &project, nil
}
