package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWorkspaceUpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewWorkspaceRepository(db)

	ws := Workspace{
		ID:              "ws-1",
		Name:            "ML Research",
		Purpose:         "Track machine learning research",
		Keywords:        []string{"machine learning", "neural networks"},
		MonitoredURLs:   []string{"https://example.com/feed"},
		MonitorInterval: 300,
	}
	if err := repo.UpsertWorkspace(ws); err != nil {
		t.Fatalf("UpsertWorkspace failed: %v", err)
	}

	got, err := repo.GetWorkspace("ws-1")
	if err != nil {
		t.Fatalf("GetWorkspace failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected workspace, got nil")
	}
	if got.Name != "ML Research" || got.MonitorInterval != 300 {
		t.Errorf("Unexpected workspace: %+v", got)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "machine learning" {
		t.Errorf("Unexpected keywords: %v", got.Keywords)
	}

	// Upserting the same ID updates in place.
	ws.Name = "Renamed"
	if err := repo.UpsertWorkspace(ws); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	got, _ = repo.GetWorkspace("ws-1")
	if got.Name != "Renamed" {
		t.Errorf("Expected updated name, got %q", got.Name)
	}

	count, err := repo.GetWorkspaceCount()
	if err != nil {
		t.Fatalf("GetWorkspaceCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 workspace after upsert, got %d", count)
	}
}

func TestGetWorkspaceNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewWorkspaceRepository(db)

	got, err := repo.GetWorkspace("missing")
	if err != nil {
		t.Fatalf("GetWorkspace failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing workspace, got %+v", got)
	}
}

func TestContentItemsCreatedAfter(t *testing.T) {
	db := newTestDB(t)
	repo := NewContentRepository(db)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	published := base.AddDate(0, -1, 0)
	for i, id := range []string{"old", "mid", "new"} {
		item := ContentItem{
			ID:          id,
			WorkspaceID: "ws-1",
			Title:       "Item " + id,
			Content:     "body",
			URL:         "https://example.com/" + id,
			PublishedAt: &published,
			ContentHash: "hash-" + id,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.InsertItem(item); err != nil {
			t.Fatalf("InsertItem failed: %v", err)
		}
	}

	// The cutoff selects on ingestion time, not the published date.
	items, err := repo.GetItemsCreatedAfter("ws-1", base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("GetItemsCreatedAfter failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items after cutoff, got %d", len(items))
	}
	if items[0].ID != "new" || items[1].ID != "mid" {
		t.Errorf("Expected newest-first order [new mid], got [%s %s]", items[0].ID, items[1].ID)
	}

	recent, err := repo.GetRecentItems("ws-1", 2)
	if err != nil {
		t.Fatalf("GetRecentItems failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "new" {
		t.Errorf("Expected limited newest-first items, got %v", recent)
	}
}

func TestContentDuplicateCheck(t *testing.T) {
	db := newTestDB(t)
	repo := NewContentRepository(db)

	item := ContentItem{
		ID:          "item-1",
		WorkspaceID: "ws-1",
		Title:       "Title",
		Content:     "body",
		URL:         "https://example.com/a",
		ContentHash: "abc123",
		CreatedAt:   time.Now(),
	}
	if err := repo.InsertItem(item); err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}

	dup, err := repo.CheckDuplicate("ws-1", "abc123")
	if err != nil {
		t.Fatalf("CheckDuplicate failed: %v", err)
	}
	if !dup {
		t.Error("Expected duplicate detected for same hash")
	}

	// The same hash in a different workspace is not a duplicate.
	dup, err = repo.CheckDuplicate("ws-2", "abc123")
	if err != nil {
		t.Fatalf("CheckDuplicate failed: %v", err)
	}
	if dup {
		t.Error("Hashes must be scoped per workspace")
	}
}

func TestUpdateRelevanceScore(t *testing.T) {
	db := newTestDB(t)
	repo := NewContentRepository(db)

	item := ContentItem{
		ID:          "item-1",
		WorkspaceID: "ws-1",
		Title:       "Title",
		Content:     "body",
		URL:         "https://example.com/a",
		ContentHash: "h",
		CreatedAt:   time.Now(),
	}
	if err := repo.InsertItem(item); err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}
	if err := repo.UpdateRelevanceScore("item-1", 77); err != nil {
		t.Fatalf("UpdateRelevanceScore failed: %v", err)
	}

	items, err := repo.GetAllItems("ws-1")
	if err != nil {
		t.Fatalf("GetAllItems failed: %v", err)
	}
	if items[0].RelevanceScore != 77 {
		t.Errorf("Expected score 77, got %d", items[0].RelevanceScore)
	}
}

func TestConfigDefaultLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewConfigRepository(db)

	first := AIModelConfig{
		ID:        "cfg-1",
		UserID:    "user-1",
		Provider:  ProviderOpenAI,
		Model:     "gpt-4o-mini",
		APIKey:    "sk-first",
		IsActive:  true,
		IsDefault: true,
	}
	if err := repo.SaveConfig(first); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	got, err := repo.GetDefaultConfig("user-1")
	if err != nil {
		t.Fatalf("GetDefaultConfig failed: %v", err)
	}
	if got == nil || got.ID != "cfg-1" {
		t.Fatalf("Expected cfg-1 as default, got %+v", got)
	}

	// Clearing defaults leaves the user with none.
	if err := repo.ClearDefault("user-1"); err != nil {
		t.Fatalf("ClearDefault failed: %v", err)
	}
	got, err = repo.GetDefaultConfig("user-1")
	if err != nil {
		t.Fatalf("GetDefaultConfig failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected no default after clearing, got %+v", got)
	}

	// The config itself still exists.
	cfg, err := repo.GetConfig("cfg-1")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if cfg == nil || cfg.IsDefault {
		t.Errorf("Expected non-default config preserved, got %+v", cfg)
	}
}

func TestConfigTouchUsage(t *testing.T) {
	db := newTestDB(t)
	repo := NewConfigRepository(db)

	cfg := AIModelConfig{
		ID:       "cfg-1",
		UserID:   "user-1",
		Provider: ProviderAnthropic,
		Model:    "claude-3-5-haiku-latest",
		APIKey:   "sk-ant",
		IsActive: true,
	}
	if err := repo.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	when := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.TouchUsage("cfg-1", when); err != nil {
		t.Fatalf("TouchUsage failed: %v", err)
	}
	if err := repo.TouchUsage("cfg-1", when.Add(time.Hour)); err != nil {
		t.Fatalf("Second TouchUsage failed: %v", err)
	}

	got, err := repo.GetConfig("cfg-1")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got.UsageCount != 2 {
		t.Errorf("Expected usage count 2, got %d", got.UsageCount)
	}
	if got.LastUsed == nil || !got.LastUsed.Equal(when.Add(time.Hour)) {
		t.Errorf("Expected last used stamped, got %v", got.LastUsed)
	}
}

func TestConfigDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewConfigRepository(db)

	cfg := AIModelConfig{ID: "cfg-1", UserID: "u", Provider: ProviderGemini, Model: "gemini-2.0-flash", APIKey: "k", IsActive: true}
	if err := repo.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if err := repo.DeleteConfig("cfg-1"); err != nil {
		t.Fatalf("DeleteConfig failed: %v", err)
	}
	got, err := repo.GetConfig("cfg-1")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected config deleted, got %+v", got)
	}
}

func TestUsageLogInsertAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsageLogRepository(db)

	tokens := 1200
	cost := 0.0036
	entry := UsageLogEntry{
		ID:             "log-1",
		UserID:         "user-1",
		ConfigID:       "cfg-1",
		Operation:      OperationSummarize,
		TokensUsed:     &tokens,
		EstimatedCost:  &cost,
		ResponseTimeMs: 850,
		Success:        true,
		CreatedAt:      time.Now(),
	}
	if err := repo.InsertUsageLog(entry); err != nil {
		t.Fatalf("InsertUsageLog failed: %v", err)
	}

	failed := UsageLogEntry{
		ID:           "log-2",
		UserID:       "user-1",
		ConfigID:     "cfg-1",
		Operation:    OperationSummarize,
		Success:      false,
		ErrorMessage: "provider timeout",
		CreatedAt:    time.Now(),
	}
	if err := repo.InsertUsageLog(failed); err != nil {
		t.Fatalf("InsertUsageLog for failed call failed: %v", err)
	}

	count, err := repo.GetUsageLogCount()
	if err != nil {
		t.Fatalf("GetUsageLogCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 log entries, got %d", count)
	}
}

func TestSummaryLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSummaryRepository(db)

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	older := Summary{
		ID: "s-1", WorkspaceID: "ws-1", Title: "Old", Content: "old content",
		Type: SummaryTypeFull, ContentItemIDs: []string{"a", "b"},
		Version: 1, CreatedAt: base, UpdatedAt: base,
	}
	newer := Summary{
		ID: "s-2", WorkspaceID: "ws-1", Title: "New", Content: "new content",
		Type: SummaryTypeDifferential, ContentItemIDs: []string{"c"},
		Version: 1, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
	}
	for _, s := range []Summary{older, newer} {
		if err := repo.InsertSummary(s); err != nil {
			t.Fatalf("InsertSummary failed: %v", err)
		}
	}

	latest, err := repo.GetLatestSummary("ws-1")
	if err != nil {
		t.Fatalf("GetLatestSummary failed: %v", err)
	}
	if latest.ID != "s-2" {
		t.Errorf("Expected s-2 as latest, got %s", latest.ID)
	}

	if err := repo.UpdateSummaryContent("s-2", "edited content"); err != nil {
		t.Fatalf("UpdateSummaryContent failed: %v", err)
	}
	got, _ := repo.GetSummary("s-2")
	if got.Content != "edited content" || got.Version != 2 {
		t.Errorf("Expected edited content at version 2, got %q v%d", got.Content, got.Version)
	}

	// Soft delete hides the summary from latest but keeps the row.
	if err := repo.SoftDeleteSummary("s-2"); err != nil {
		t.Fatalf("SoftDeleteSummary failed: %v", err)
	}
	latest, err = repo.GetLatestSummary("ws-1")
	if err != nil {
		t.Fatalf("GetLatestSummary failed: %v", err)
	}
	if latest.ID != "s-1" {
		t.Errorf("Expected deleted summary hidden, latest is %s", latest.ID)
	}
	got, _ = repo.GetSummary("s-2")
	if got == nil || !got.IsDeleted {
		t.Errorf("Expected soft-deleted row preserved, got %+v", got)
	}

	// Edits to deleted summaries are rejected.
	if err := repo.UpdateSummaryContent("s-2", "more edits"); err == nil {
		t.Error("Expected error updating a deleted summary")
	}

	count, err := repo.GetSummaryCount()
	if err != nil {
		t.Fatalf("GetSummaryCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected count 1 excluding deleted, got %d", count)
	}
}
