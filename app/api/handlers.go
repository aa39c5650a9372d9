package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/topicscout/topicscout/app/database"
	"github.com/topicscout/topicscout/app/gateway"
	"github.com/topicscout/topicscout/app/summary"
)

func NewHandler(workspaceRepo database.WorkspaceStore, contentRepo database.ContentStore,
	summaryRepo database.SummaryStore, usageRepo database.UsageLogStore,
	orchestrator SummaryGeneratorInterface, gw GatewayInterface,
	mon MonitorInterface, ext ExtractorInterface) *Handler {
	return &Handler{
		workspaceRepo: workspaceRepo,
		contentRepo:   contentRepo,
		summaryRepo:   summaryRepo,
		usageRepo:     usageRepo,
		orchestrator:  orchestrator,
		gateway:       gw,
		monitor:       mon,
		extractor:     ext,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if count, err := h.workspaceRepo.GetWorkspaceCount(); err == nil {
		health["workspaces"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"monitored_workspaces": h.monitor.Active(),
	}

	if count, err := h.workspaceRepo.GetWorkspaceCount(); err == nil {
		stats["workspaces"] = count
	}
	if count, err := h.contentRepo.GetItemCount(); err == nil {
		stats["content_items"] = count
	}
	if count, err := h.summaryRepo.GetSummaryCount(); err == nil {
		stats["summaries"] = count
	}
	if count, err := h.usageRepo.GetUsageLogCount(); err == nil {
		stats["ai_calls"] = count
	}

	c.JSON(http.StatusOK, stats)
}

type workspaceRequest struct {
	ID              string   `json:"id"`
	Name            string   `json:"name" binding:"required"`
	Purpose         string   `json:"purpose"`
	Keywords        []string `json:"keywords"`
	MonitoredURLs   []string `json:"monitoredUrls"`
	MonitorInterval int      `json:"monitorIntervalSeconds"`
}

func (h *Handler) UpsertWorkspace(c *gin.Context) {
	var req workspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ws := database.Workspace{
		ID:              req.ID,
		Name:            req.Name,
		Purpose:         req.Purpose,
		Keywords:        req.Keywords,
		MonitoredURLs:   req.MonitoredURLs,
		MonitorInterval: req.MonitorInterval,
	}
	if err := h.workspaceRepo.UpsertWorkspace(ws); err != nil {
		slog.Error("Database error", "operation", "upsert_workspace", "workspace_id", ws.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": ws.ID})
}

func (h *Handler) ListWorkspaceContent(c *gin.Context) {
	workspaceID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := h.contentRepo.GetRecentItems(workspaceID, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_content", "workspace_id", workspaceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load content"})
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{
			"id":              item.ID,
			"title":           item.Title,
			"url":             item.URL,
			"relevanceScore":  item.RelevanceScore,
			"annotationCount": item.AnnotationCount,
			"publishedAt":     item.PublishedAt,
			"createdAt":       item.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "count": len(out)})
}

type summaryRequest struct {
	UserID string `json:"userId" binding:"required"`
	Type   string `json:"type"`
	Focus  string `json:"focus"`
}

func (h *Handler) GenerateSummary(c *gin.Context) {
	workspaceID := c.Param("id")

	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = database.SummaryTypeFull
	}

	s, err := h.orchestrator.Generate(c.Request.Context(), summary.GenerateRequest{
		WorkspaceID: workspaceID,
		UserID:      req.UserID,
		Type:        req.Type,
		Focus:       req.Focus,
	})
	if err != nil {
		var noContent *summary.NoNewContentError
		var noConfig *gateway.NoConfigurationError
		var callErr *gateway.ProviderCallError
		switch {
		case errors.As(err, &noContent):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noContent.Error()})
		case errors.As(err, &noConfig):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noConfig.Error()})
		case errors.As(err, &callErr):
			slog.Error("AI provider call failed", "workspace_id", workspaceID, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": callErr.Error()})
		default:
			slog.Error("Summary generation failed", "workspace_id", workspaceID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Summary generation failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":             s.ID,
		"title":          s.Title,
		"content":        s.Content,
		"type":           s.Type,
		"focus":          s.Focus,
		"contentItemIds": s.ContentItemIDs,
		"version":        s.Version,
		"createdAt":      s.CreatedAt,
	})
}

type updateSummaryRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) UpdateSummary(c *gin.Context) {
	id := c.Param("id")

	var req updateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orchestrator.UpdateContent(id, req.Content); err != nil {
		slog.Error("Summary update failed", "summary_id", id, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Summary not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "updated"})
}

func (h *Handler) DeleteSummary(c *gin.Context) {
	id := c.Param("id")

	if err := h.orchestrator.Delete(id); err != nil {
		slog.Error("Summary delete failed", "summary_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

type monitorRequest struct {
	IntervalSeconds int `json:"intervalSeconds"`
}

func (h *Handler) StartMonitor(c *gin.Context) {
	workspaceID := c.Param("id")

	ws, err := h.workspaceRepo.GetWorkspace(workspaceID)
	if err != nil {
		slog.Error("Database error", "operation", "get_workspace", "workspace_id", workspaceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workspace"})
		return
	}
	if ws == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}

	// The body is optional; without it the workspace's own interval is used.
	var req monitorRequest
	_ = c.ShouldBindJSON(&req)

	interval := req.IntervalSeconds
	if interval <= 0 {
		interval = ws.MonitorInterval
	}
	if interval <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No monitoring interval configured for workspace"})
		return
	}
	if len(ws.MonitoredURLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Workspace has no monitored URLs"})
		return
	}

	h.monitor.Start(workspaceID, time.Duration(interval)*time.Second)
	c.JSON(http.StatusOK, gin.H{
		"workspace_id":     workspaceID,
		"interval_seconds": interval,
		"status":           "monitoring",
	})
}

func (h *Handler) RescoreWorkspace(c *gin.Context) {
	workspaceID := c.Param("id")

	updated, err := h.monitor.Rescore(workspaceID)
	if err != nil {
		slog.Error("Rescore failed", "workspace_id", workspaceID, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace_id": workspaceID, "updated": updated})
}

func (h *Handler) StopMonitor(c *gin.Context) {
	workspaceID := c.Param("id")

	if !h.monitor.IsMonitored(workspaceID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace is not being monitored"})
		return
	}

	h.monitor.Stop(workspaceID)
	c.JSON(http.StatusOK, gin.H{"workspace_id": workspaceID, "status": "stopped"})
}

type extractRequest struct {
	URL        string `json:"url" binding:"required"`
	UserID     string `json:"userId"`
	Structured bool   `json:"structured"`
}

func (h *Handler) ExtractPreview(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.extractor.ExtractFromURL(c.Request.Context(), req.URL)
	if err != nil {
		slog.Warn("Extraction failed", "url", req.URL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"title":       content.Title,
		"content":     content.Content,
		"excerpt":     content.Excerpt,
		"author":      content.Author,
		"publishedAt": content.PublishedAt,
	}

	if req.Structured && req.UserID != "" {
		extract, err := h.gateway.ExtractStructured(c.Request.Context(), req.UserID, req.URL, content.Content)
		if err != nil {
			var noConfig *gateway.NoConfigurationError
			if errors.As(err, &noConfig) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noConfig.Error()})
				return
			}
			slog.Error("Structured extraction failed", "url", req.URL, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "AI extraction failed"})
			return
		}
		resp["structured"] = extract
	}

	c.JSON(http.StatusOK, resp)
}

type configRequest struct {
	ID             string `json:"id"`
	UserID         string `json:"userId" binding:"required"`
	Provider       string `json:"provider" binding:"required"`
	Model          string `json:"model" binding:"required"`
	APIKey         string `json:"apiKey" binding:"required"`
	BaseURL        string `json:"baseUrl"`
	OrganizationID string `json:"organizationId"`
	ProjectID      string `json:"projectId"`
	Region         string `json:"region"`
	IsDefault      bool   `json:"isDefault"`
}

func (h *Handler) SaveConfig(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Provider {
	case database.ProviderOpenAI, database.ProviderAzureOpenAI, database.ProviderAnthropic,
		database.ProviderGemini, database.ProviderVertexAI:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider: " + req.Provider})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	cfg := database.AIModelConfig{
		ID:             req.ID,
		UserID:         req.UserID,
		Provider:       req.Provider,
		Model:          req.Model,
		APIKey:         req.APIKey,
		BaseURL:        req.BaseURL,
		OrganizationID: req.OrganizationID,
		ProjectID:      req.ProjectID,
		Region:         req.Region,
		IsActive:       true,
		IsDefault:      req.IsDefault,
	}
	if err := h.gateway.SaveConfig(cfg); err != nil {
		slog.Error("Database error", "operation", "save_config", "config_id", cfg.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration"})
		return
	}

	// The key itself is never echoed back.
	c.JSON(http.StatusOK, gin.H{
		"id":        cfg.ID,
		"provider":  cfg.Provider,
		"model":     cfg.Model,
		"apiKey":    gateway.MaskKey(cfg.APIKey),
		"isDefault": cfg.IsDefault,
	})
}

func (h *Handler) DeleteConfig(c *gin.Context) {
	id := c.Param("id")

	if err := h.gateway.DeleteConfig(id); err != nil {
		slog.Error("Database error", "operation", "delete_config", "config_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete configuration"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}
