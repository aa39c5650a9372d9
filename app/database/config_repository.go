package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ConfigStore = (*ConfigRepository)(nil)

// ConfigRepository handles database operations for AI model configurations
type ConfigRepository struct {
	db *DB
}

func NewConfigRepository(db *DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

const configColumns = `id, user_id, provider, model, api_key, base_url, organization_id,
	project_id, region, is_active, is_default, usage_count, last_used, created_at, updated_at`

func (r *ConfigRepository) GetConfig(id string) (*AIModelConfig, error) {
	row := r.db.QueryRow(`SELECT `+configColumns+` FROM ai_model_configs WHERE id = ?`, id)

	cfg, err := scanConfig(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	return cfg, nil
}

func (r *ConfigRepository) GetDefaultConfig(userID string) (*AIModelConfig, error) {
	row := r.db.QueryRow(`
		SELECT `+configColumns+` FROM ai_model_configs
		WHERE user_id = ? AND is_default = 1 AND is_active = 1
		LIMIT 1
	`, userID)

	cfg, err := scanConfig(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default config: %w", err)
	}
	return cfg, nil
}

func (r *ConfigRepository) SaveConfig(cfg AIModelConfig) error {
	now := formatTime(time.Now())
	_, err := r.db.Exec(`
		INSERT INTO ai_model_configs (id, user_id, provider, model, api_key, base_url,
			organization_id, project_id, region, is_active, is_default, usage_count,
			last_used, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider = excluded.provider,
			model = excluded.model,
			api_key = excluded.api_key,
			base_url = excluded.base_url,
			organization_id = excluded.organization_id,
			project_id = excluded.project_id,
			region = excluded.region,
			is_active = excluded.is_active,
			is_default = excluded.is_default,
			updated_at = excluded.updated_at
	`, cfg.ID, cfg.UserID, cfg.Provider, cfg.Model, cfg.APIKey, cfg.BaseURL,
		cfg.OrganizationID, cfg.ProjectID, cfg.Region, cfg.IsActive, cfg.IsDefault,
		cfg.UsageCount, formatNullableTime(cfg.LastUsed), now, now)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *ConfigRepository) DeleteConfig(id string) error {
	_, err := r.db.Exec(`DELETE FROM ai_model_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}
	return nil
}

func (r *ConfigRepository) ClearDefault(userID string) error {
	_, err := r.db.Exec(`
		UPDATE ai_model_configs SET is_default = 0, updated_at = ? WHERE user_id = ?
	`, formatTime(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("failed to clear default config: %w", err)
	}
	return nil
}

func (r *ConfigRepository) TouchUsage(id string, when time.Time) error {
	_, err := r.db.Exec(`
		UPDATE ai_model_configs
		SET usage_count = usage_count + 1, last_used = ?, updated_at = ?
		WHERE id = ?
	`, formatTime(when), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to touch config usage: %w", err)
	}
	return nil
}

func scanConfig(row rowScanner) (*AIModelConfig, error) {
	var cfg AIModelConfig
	var lastUsed sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&cfg.ID, &cfg.UserID, &cfg.Provider, &cfg.Model, &cfg.APIKey,
		&cfg.BaseURL, &cfg.OrganizationID, &cfg.ProjectID, &cfg.Region,
		&cfg.IsActive, &cfg.IsDefault, &cfg.UsageCount, &lastUsed, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if cfg.LastUsed, err = parseNullableTime(lastUsed); err != nil {
		return nil, err
	}
	if cfg.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if cfg.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &cfg, nil
}
