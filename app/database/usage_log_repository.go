package database

import (
	"fmt"
)

var _ UsageLogStore = (*UsageLogRepository)(nil)

// UsageLogRepository is the append-only store for AI usage log entries
type UsageLogRepository struct {
	db *DB
}

func NewUsageLogRepository(db *DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

func (r *UsageLogRepository) InsertUsageLog(entry UsageLogEntry) error {
	_, err := r.db.Exec(`
		INSERT INTO ai_usage_logs (id, user_id, config_id, operation, tokens_used,
			estimated_cost, response_time_ms, success, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.ConfigID, entry.Operation, entry.TokensUsed,
		entry.EstimatedCost, entry.ResponseTimeMs, entry.Success, entry.ErrorMessage,
		formatTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}
	return nil
}

func (r *UsageLogRepository) GetUsageLogCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM ai_usage_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count usage logs: %w", err)
	}
	return count, nil
}
