package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ContentStore = (*ContentRepository)(nil)

// ContentRepository handles database operations for content items
type ContentRepository struct {
	db *DB
}

func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) InsertItem(item ContentItem) error {
	_, err := r.db.Exec(`
		INSERT INTO content_items (id, workspace_id, title, content, url, published_at,
			relevance_score, annotation_count, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.WorkspaceID, item.Title, item.Content, item.URL,
		formatNullableTime(item.PublishedAt), item.RelevanceScore, item.AnnotationCount,
		item.ContentHash, formatTime(item.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert content item: %w", err)
	}
	return nil
}

func (r *ContentRepository) GetRecentItems(workspaceID string, limit int) ([]ContentItem, error) {
	rows, err := r.db.Query(`
		SELECT id, workspace_id, title, content, url, published_at,
			relevance_score, annotation_count, content_hash, created_at
		FROM content_items
		WHERE workspace_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent items: %w", err)
	}
	defer rows.Close()

	return scanContentItems(rows)
}

func (r *ContentRepository) GetItemsCreatedAfter(workspaceID string, after time.Time) ([]ContentItem, error) {
	rows, err := r.db.Query(`
		SELECT id, workspace_id, title, content, url, published_at,
			relevance_score, annotation_count, content_hash, created_at
		FROM content_items
		WHERE workspace_id = ? AND created_at > ?
		ORDER BY created_at DESC
	`, workspaceID, formatTime(after))
	if err != nil {
		return nil, fmt.Errorf("failed to get items created after %s: %w", after, err)
	}
	defer rows.Close()

	return scanContentItems(rows)
}

func (r *ContentRepository) GetAllItems(workspaceID string) ([]ContentItem, error) {
	rows, err := r.db.Query(`
		SELECT id, workspace_id, title, content, url, published_at,
			relevance_score, annotation_count, content_hash, created_at
		FROM content_items
		WHERE workspace_id = ?
		ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	defer rows.Close()

	return scanContentItems(rows)
}

func (r *ContentRepository) UpdateRelevanceScore(itemID string, score int) error {
	_, err := r.db.Exec(`
		UPDATE content_items SET relevance_score = ? WHERE id = ?
	`, score, itemID)
	if err != nil {
		return fmt.Errorf("failed to update relevance score: %w", err)
	}
	return nil
}

// CheckDuplicate reports whether an item with the same content hash already
// exists in the workspace.
func (r *ContentRepository) CheckDuplicate(workspaceID, contentHash string) (bool, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM content_items WHERE workspace_id = ? AND content_hash = ? LIMIT 1
	`, workspaceID, contentHash).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return true, nil
}

func (r *ContentRepository) GetItemCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM content_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count content items: %w", err)
	}
	return count, nil
}

func scanContentItems(rows *sql.Rows) ([]ContentItem, error) {
	var items []ContentItem
	for rows.Next() {
		var item ContentItem
		var publishedAt sql.NullString
		var createdAt string

		err := rows.Scan(&item.ID, &item.WorkspaceID, &item.Title, &item.Content, &item.URL,
			&publishedAt, &item.RelevanceScore, &item.AnnotationCount, &item.ContentHash, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}

		if item.PublishedAt, err = parseNullableTime(publishedAt); err != nil {
			return nil, err
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
