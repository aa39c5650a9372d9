package api

import (
	"context"
	"time"

	"github.com/topicscout/topicscout/app/database"
	"github.com/topicscout/topicscout/app/extractor"
	"github.com/topicscout/topicscout/app/gateway"
	"github.com/topicscout/topicscout/app/monitor"
	"github.com/topicscout/topicscout/app/summary"
)

type SummaryGeneratorInterface interface {
	Generate(ctx context.Context, req summary.GenerateRequest) (*database.Summary, error)
	UpdateContent(id, content string) error
	Delete(id string) error
}

var _ SummaryGeneratorInterface = (*summary.Orchestrator)(nil)

type GatewayInterface interface {
	SaveConfig(cfg database.AIModelConfig) error
	DeleteConfig(id string) error
	ExtractStructured(ctx context.Context, userID, url, content string) (*gateway.StructuredExtract, error)
}

var _ GatewayInterface = (*gateway.Gateway)(nil)

type MonitorInterface interface {
	Start(workspaceID string, interval time.Duration)
	Stop(workspaceID string)
	Active() int
	IsMonitored(workspaceID string) bool
	Rescore(workspaceID string) (int, error)
}

var _ MonitorInterface = (*monitor.Scheduler)(nil)

type ExtractorInterface interface {
	ExtractFromURL(ctx context.Context, url string) (*extractor.ExtractedContent, error)
}

var _ ExtractorInterface = (*extractor.Extractor)(nil)

type Handler struct {
	workspaceRepo database.WorkspaceStore
	contentRepo   database.ContentStore
	summaryRepo   database.SummaryStore
	usageRepo     database.UsageLogStore
	orchestrator  SummaryGeneratorInterface
	gateway       GatewayInterface
	monitor       MonitorInterface
	extractor     ExtractorInterface
}
