package database

import (
	"time"
)

// Workspace drives monitoring and relevance scoring for one research topic.
// Full workspace lifecycle (members, sharing, archival) lives outside this service.
type Workspace struct {
	ID              string
	Name            string
	Purpose         string
	Keywords        []string
	MonitoredURLs   []string
	MonitorInterval int // seconds; 0 disables monitoring
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ContentItem is one piece of ingested content owned by a workspace.
type ContentItem struct {
	ID              string
	WorkspaceID     string
	Title           string
	Content         string
	URL             string
	PublishedAt     *time.Time
	RelevanceScore  int
	AnnotationCount int
	ContentHash     string
	CreatedAt       time.Time
}

// Provider identifiers accepted in AIModelConfig.Provider.
const (
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure_openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
	ProviderVertexAI    = "vertexai"
)

// AIModelConfig is a user-owned credential and model selection for one AI vendor.
// At most one config per user may have IsDefault set; writers clear prior defaults.
type AIModelConfig struct {
	ID             string
	UserID         string
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	OrganizationID string
	ProjectID      string
	Region         string
	IsActive       bool
	IsDefault      bool
	UsageCount     int
	LastUsed       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Operations recorded in usage log entries.
const (
	OperationSummarize = "summarize"
	OperationExtract   = "extract"
	OperationAnalyze   = "analyze"
)

// UsageLogEntry is an append-only record of one AI call. Never mutated.
type UsageLogEntry struct {
	ID             string
	UserID         string
	ConfigID       string
	Operation      string
	TokensUsed     *int
	EstimatedCost  *float64
	ResponseTimeMs int
	Success        bool
	ErrorMessage   string
	CreatedAt      time.Time
}

// Summary types.
const (
	SummaryTypeFull         = "full"
	SummaryTypeDifferential = "differential"
)

// Summary is a persisted AI-generated summary. Soft-deleted via IsDeleted,
// never removed; Version increments on content edits.
type Summary struct {
	ID             string
	WorkspaceID    string
	Title          string
	Content        string
	Type           string
	Focus          string
	ContentItemIDs []string
	Version        int
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
