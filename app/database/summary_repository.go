package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SummaryStore = (*SummaryRepository)(nil)

// SummaryRepository handles database operations for summaries
type SummaryRepository struct {
	db *DB
}

func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

const summaryColumns = `id, workspace_id, title, content, type, focus, content_item_ids,
	version, is_deleted, created_at, updated_at`

func (r *SummaryRepository) InsertSummary(s Summary) error {
	itemIDs, err := marshalStrings(s.ContentItemIDs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO summaries (id, workspace_id, title, content, type, focus,
			content_item_ids, version, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.WorkspaceID, s.Title, s.Content, s.Type, s.Focus, itemIDs,
		s.Version, s.IsDeleted, formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

func (r *SummaryRepository) GetSummary(id string) (*Summary, error) {
	row := r.db.QueryRow(`SELECT `+summaryColumns+` FROM summaries WHERE id = ?`, id)

	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return s, nil
}

func (r *SummaryRepository) GetLatestSummary(workspaceID string) (*Summary, error) {
	row := r.db.QueryRow(`
		SELECT `+summaryColumns+` FROM summaries
		WHERE workspace_id = ? AND is_deleted = 0
		ORDER BY created_at DESC
		LIMIT 1
	`, workspaceID)

	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest summary: %w", err)
	}
	return s, nil
}

func (r *SummaryRepository) UpdateSummaryContent(id, content string) error {
	res, err := r.db.Exec(`
		UPDATE summaries
		SET content = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND is_deleted = 0
	`, content, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update summary content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("summary %s not found or deleted", id)
	}
	return nil
}

func (r *SummaryRepository) SoftDeleteSummary(id string) error {
	_, err := r.db.Exec(`
		UPDATE summaries SET is_deleted = 1, updated_at = ? WHERE id = ?
	`, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete summary: %w", err)
	}
	return nil
}

func (r *SummaryRepository) GetSummaryCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM summaries WHERE is_deleted = 0`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}

func scanSummary(row rowScanner) (*Summary, error) {
	var s Summary
	var itemIDs, createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.WorkspaceID, &s.Title, &s.Content, &s.Type, &s.Focus,
		&itemIDs, &s.Version, &s.IsDeleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if s.ContentItemIDs, err = unmarshalStrings(itemIDs); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
