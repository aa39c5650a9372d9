package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ WorkspaceStore = (*WorkspaceRepository)(nil)

// WorkspaceRepository handles database operations for workspaces
type WorkspaceRepository struct {
	db *DB
}

func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) GetWorkspace(id string) (*Workspace, error) {
	row := r.db.QueryRow(`
		SELECT id, name, purpose, keywords, monitored_urls, monitor_interval, created_at, updated_at
		FROM workspaces WHERE id = ?
	`, id)

	w, err := scanWorkspace(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return w, nil
}

func (r *WorkspaceRepository) ListWorkspaces() ([]Workspace, error) {
	rows, err := r.db.Query(`
		SELECT id, name, purpose, keywords, monitored_urls, monitor_interval, created_at, updated_at
		FROM workspaces ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, *w)
	}
	return workspaces, rows.Err()
}

func (r *WorkspaceRepository) UpsertWorkspace(w Workspace) error {
	keywords, err := marshalStrings(w.Keywords)
	if err != nil {
		return err
	}
	urls, err := marshalStrings(w.MonitoredURLs)
	if err != nil {
		return err
	}

	now := formatTime(time.Now())
	_, err = r.db.Exec(`
		INSERT INTO workspaces (id, name, purpose, keywords, monitored_urls, monitor_interval, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			purpose = excluded.purpose,
			keywords = excluded.keywords,
			monitored_urls = excluded.monitored_urls,
			monitor_interval = excluded.monitor_interval,
			updated_at = excluded.updated_at
	`, w.ID, w.Name, w.Purpose, keywords, urls, w.MonitorInterval, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) GetWorkspaceCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM workspaces`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count workspaces: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkspace(row rowScanner) (*Workspace, error) {
	var w Workspace
	var keywords, urls, createdAt, updatedAt string

	err := row.Scan(&w.ID, &w.Name, &w.Purpose, &keywords, &urls, &w.MonitorInterval, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if w.Keywords, err = unmarshalStrings(keywords); err != nil {
		return nil, err
	}
	if w.MonitoredURLs, err = unmarshalStrings(urls); err != nil {
		return nil, err
	}
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
