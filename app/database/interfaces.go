package database

import (
	"time"
)

// WorkspaceStore provides access to workspace records. Workspace CRUD proper
// is an external concern; this service only needs enough to drive monitoring.
type WorkspaceStore interface {
	GetWorkspace(id string) (*Workspace, error)
	ListWorkspaces() ([]Workspace, error)
	UpsertWorkspace(w Workspace) error
	GetWorkspaceCount() (int, error)
}

// ContentStore persists monitored and manually added content items.
type ContentStore interface {
	InsertItem(item ContentItem) error
	// GetRecentItems returns up to limit items for a workspace, newest first.
	GetRecentItems(workspaceID string, limit int) ([]ContentItem, error)
	// GetItemsCreatedAfter returns items ingested strictly after the given time,
	// newest first. Keyed on ingestion time (created_at), not the source's
	// published date, so a differential summary covers "ingested since last
	// summary" rather than "published since last summary".
	GetItemsCreatedAfter(workspaceID string, after time.Time) ([]ContentItem, error)
	GetAllItems(workspaceID string) ([]ContentItem, error)
	UpdateRelevanceScore(itemID string, score int) error
	CheckDuplicate(workspaceID, contentHash string) (bool, error)
	GetItemCount() (int, error)
}

// ConfigStore persists per-user AI model configurations.
type ConfigStore interface {
	GetConfig(id string) (*AIModelConfig, error)
	GetDefaultConfig(userID string) (*AIModelConfig, error)
	SaveConfig(cfg AIModelConfig) error
	DeleteConfig(id string) error
	// ClearDefault unsets is_default on every config owned by the user.
	ClearDefault(userID string) error
	// TouchUsage increments usage_count and stamps last_used after a successful call.
	TouchUsage(id string, when time.Time) error
}

// UsageLogStore is an append-only sink for AI usage log entries.
type UsageLogStore interface {
	InsertUsageLog(entry UsageLogEntry) error
	GetUsageLogCount() (int, error)
}

// SummaryStore persists generated summaries.
type SummaryStore interface {
	InsertSummary(s Summary) error
	GetSummary(id string) (*Summary, error)
	// GetLatestSummary returns the most recent non-deleted summary for a workspace,
	// or nil if none exists.
	GetLatestSummary(workspaceID string) (*Summary, error)
	// UpdateSummaryContent replaces content and increments version.
	UpdateSummaryContent(id, content string) error
	SoftDeleteSummary(id string) error
	GetSummaryCount() (int, error)
}
