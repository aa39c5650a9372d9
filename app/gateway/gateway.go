package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/topicscout/topicscout/app/database"
)

// Gateway resolves per-user AI configurations, dispatches requests to the
// configured vendor, estimates cost, and records a usage log entry for every
// call. Provider clients are cached per configuration to avoid
// re-authenticating on each call.
type Gateway struct {
	configs   database.ConfigStore
	usageLogs database.UsageLogStore
	costs     *CostTable
	maxTokens int

	mu      sync.RWMutex
	clients map[string]provider
}

func New(configs database.ConfigStore, usageLogs database.UsageLogStore, costs *CostTable, maxTokens int) *Gateway {
	return &Gateway{
		configs:   configs,
		usageLogs: usageLogs,
		costs:     costs,
		maxTokens: maxTokens,
		clients:   make(map[string]provider),
	}
}

// Generate dispatches the request through the caller's resolved configuration
// and returns the normalized result. Every call, failed or not, is recorded
// as one usage log entry; logging failures never mask the call's outcome.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Result, error) {
	cfg, err := g.resolveConfig(req.UserID, req.ConfigID)
	if err != nil {
		return nil, err
	}

	client, err := g.clientFor(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	comp, err := client.Complete(ctx, req.SystemPrompt, req.Prompt)
	elapsed := int(time.Since(start).Milliseconds())

	if err != nil {
		callErr := &ProviderCallError{Provider: cfg.Provider, Err: err}
		g.logUsage(database.UsageLogEntry{
			UserID:         req.UserID,
			ConfigID:       cfg.ID,
			Operation:      req.Operation,
			ResponseTimeMs: elapsed,
			Success:        false,
			ErrorMessage:   callErr.Error(),
		})
		return nil, callErr
	}

	result := &Result{
		Content:        comp.content,
		TokensUsed:     comp.tokensUsed,
		ResponseTimeMs: elapsed,
	}

	entry := database.UsageLogEntry{
		UserID:         req.UserID,
		ConfigID:       cfg.ID,
		Operation:      req.Operation,
		ResponseTimeMs: elapsed,
		Success:        true,
	}
	if comp.tokensUsed != nil {
		result.EstimatedCost = g.costs.Estimate(cfg.Provider, cfg.Model, *comp.tokensUsed)
		entry.TokensUsed = comp.tokensUsed
		entry.EstimatedCost = &result.EstimatedCost
	}
	g.logUsage(entry)

	if err := g.configs.TouchUsage(cfg.ID, time.Now()); err != nil {
		slog.Warn("Failed to update config usage stats", "config_id", cfg.ID, "error", err)
	}

	return result, nil
}

// resolveConfig loads the explicit configuration when a ConfigID is given,
// requiring ownership and active status; otherwise the user's default.
func (g *Gateway) resolveConfig(userID, configID string) (*database.AIModelConfig, error) {
	if configID != "" {
		cfg, err := g.configs.GetConfig(configID)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
		if cfg == nil || cfg.UserID != userID || !cfg.IsActive {
			return nil, &NoConfigurationError{UserID: userID, ConfigID: configID}
		}
		return cfg, nil
	}

	cfg, err := g.configs.GetDefaultConfig(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}
	if cfg == nil {
		return nil, &NoConfigurationError{UserID: userID}
	}
	return cfg, nil
}

func (g *Gateway) clientFor(cfg *database.AIModelConfig) (provider, error) {
	g.mu.RLock()
	client, ok := g.clients[cfg.ID]
	g.mu.RUnlock()
	if ok {
		return client, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if client, ok := g.clients[cfg.ID]; ok {
		return client, nil
	}

	client, err := buildProvider(cfg, g.maxTokens)
	if err != nil {
		return nil, err
	}
	g.clients[cfg.ID] = client
	return client, nil
}

// SaveConfig persists a configuration, clearing any prior default for the
// user when this one is marked default, and drops the cached client so new
// credentials take effect.
func (g *Gateway) SaveConfig(cfg database.AIModelConfig) error {
	if cfg.IsDefault {
		if err := g.configs.ClearDefault(cfg.UserID); err != nil {
			return err
		}
	}
	if err := g.configs.SaveConfig(cfg); err != nil {
		return err
	}
	g.InvalidateConfig(cfg.ID)

	slog.Info("AI configuration saved",
		"config_id", cfg.ID,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"api_key", MaskKey(cfg.APIKey),
		"default", cfg.IsDefault)
	return nil
}

// DeleteConfig removes a configuration and its cached client.
func (g *Gateway) DeleteConfig(id string) error {
	if err := g.configs.DeleteConfig(id); err != nil {
		return err
	}
	g.InvalidateConfig(id)
	return nil
}

// InvalidateConfig evicts the cached client for a configuration.
func (g *Gateway) InvalidateConfig(id string) {
	g.mu.Lock()
	delete(g.clients, id)
	g.mu.Unlock()
}

func (g *Gateway) logUsage(entry database.UsageLogEntry) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()

	if err := g.usageLogs.InsertUsageLog(entry); err != nil {
		// Usage logging is a side effect; it must never fail the primary call.
		slog.Warn("Failed to write usage log entry", "operation", entry.Operation, "error", err)
	}
}

// MaskKey renders an API key as a short prefix suitable for logs and API
// responses. Full keys are never exposed.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "..."
}
