package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/topicscout/topicscout/app/api"
	"github.com/topicscout/topicscout/app/cfg"
	"github.com/topicscout/topicscout/app/database"
	"github.com/topicscout/topicscout/app/extractor"
	"github.com/topicscout/topicscout/app/gateway"
	"github.com/topicscout/topicscout/app/monitor"
	"github.com/topicscout/topicscout/app/summary"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was requested.
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting TopicScout server", "version", cfg.GetVersion())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database ready", "path", appCfg.DBPath)

	workspaceRepo := database.NewWorkspaceRepository(db)
	contentRepo := database.NewContentRepository(db)
	configRepo := database.NewConfigRepository(db)
	usageRepo := database.NewUsageLogRepository(db)
	summaryRepo := database.NewSummaryRepository(db)

	httpClient := &http.Client{Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second}
	contentExtractor := extractor.New(httpClient, appCfg.UserAgent,
		time.Duration(appCfg.HTTPTimeout)*time.Second)

	costs := gateway.DefaultCostTable()
	if appCfg.CostTablePath != "" {
		if err := costs.MergeOverrides(appCfg.CostTablePath); err != nil {
			slog.Error("Failed to load cost table overrides", "path", appCfg.CostTablePath, "error", err)
			os.Exit(1)
		}
		slog.Info("Cost table overrides loaded", "path", appCfg.CostTablePath)
	}

	aiGateway := gateway.New(configRepo, usageRepo, costs, appCfg.AIMaxTokens)
	orchestrator := summary.NewOrchestrator(contentRepo, summaryRepo, aiGateway)

	monitorScheduler := monitor.NewScheduler(workspaceRepo, contentRepo, contentExtractor,
		appCfg.RelevanceThreshold)
	defer monitorScheduler.StopAll()

	// Resume monitoring for workspaces configured with an interval.
	workspaces, err := workspaceRepo.ListWorkspaces()
	if err != nil {
		slog.Error("Failed to list workspaces", "error", err)
		os.Exit(1)
	}
	resumed := 0
	for _, ws := range workspaces {
		if ws.MonitorInterval <= 0 || len(ws.MonitoredURLs) == 0 {
			continue
		}
		monitorScheduler.Start(ws.ID, time.Duration(ws.MonitorInterval)*time.Second)
		resumed++
	}
	slog.Info("Monitoring resumed", "workspaces", resumed)

	apiHandler := api.NewHandler(workspaceRepo, contentRepo, summaryRepo, usageRepo,
		orchestrator, aiGateway, monitorScheduler, contentExtractor)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
