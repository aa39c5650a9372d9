package monitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/topicscout/topicscout/app/database"
	"github.com/topicscout/topicscout/app/extractor"
	"github.com/topicscout/topicscout/app/relevance"
)

// ContentSource is the slice of the extractor the scheduler needs.
type ContentSource interface {
	ExtractFromURL(ctx context.Context, url string) (*extractor.ExtractedContent, error)
	ValidateRSSFeed(ctx context.Context, url string) bool
	ExtractRSSItems(ctx context.Context, url string) ([]extractor.FeedEntry, error)
}

var _ ContentSource = (*extractor.Extractor)(nil)

// handle tracks one workspace's running monitor loop.
type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler runs one periodic monitoring loop per workspace. At most one loop
// exists per workspace; starting again replaces the previous loop.
type Scheduler struct {
	workspaces database.WorkspaceStore
	content    database.ContentStore
	source     ContentSource
	threshold  int
	tickLimit  time.Duration

	mu      sync.Mutex
	running map[string]*handle
}

func NewScheduler(workspaces database.WorkspaceStore, content database.ContentStore,
	source ContentSource, threshold int) *Scheduler {
	return &Scheduler{
		workspaces: workspaces,
		content:    content,
		source:     source,
		threshold:  threshold,
		tickLimit:  5 * time.Minute,
		running:    make(map[string]*handle),
	}
}

// Start begins monitoring a workspace at the given interval. A loop already
// running for the workspace is stopped and replaced, so repeated starts never
// stack timers.
func (s *Scheduler) Start(workspaceID string, interval time.Duration) {
	s.mu.Lock()
	if prev, ok := s.running[workspaceID]; ok {
		prev.cancel()
		<-prev.done
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel, done: make(chan struct{})}
	s.running[workspaceID] = h
	s.mu.Unlock()

	go s.run(ctx, workspaceID, interval, h.done)

	slog.Info("Monitoring started", "workspace_id", workspaceID, "interval", interval.String())
}

// Stop halts monitoring for a workspace, blocking until any in-flight check
// finishes. Stopping a workspace that is not monitored is a no-op.
func (s *Scheduler) Stop(workspaceID string) {
	s.mu.Lock()
	h, ok := s.running[workspaceID]
	if ok {
		delete(s.running, workspaceID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	h.cancel()
	<-h.done

	slog.Info("Monitoring stopped", "workspace_id", workspaceID)
}

// StopAll halts every monitoring loop. Used during shutdown.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	handles := make([]*handle, 0, len(s.running))
	for id, h := range s.running {
		handles = append(handles, h)
		delete(s.running, id)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.cancel()
		<-h.done
	}
}

// Active returns how many workspaces are currently monitored.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

// IsMonitored reports whether a loop is running for the workspace.
func (s *Scheduler) IsMonitored(workspaceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[workspaceID]
	return ok
}

// Rescore recomputes relevance for every item in a workspace against its
// current keywords and purpose, folding in accrued annotations. Used after
// workspace edits or annotation changes. Returns how many items were updated.
func (s *Scheduler) Rescore(workspaceID string) (int, error) {
	ws, err := s.workspaces.GetWorkspace(workspaceID)
	if err != nil {
		return 0, err
	}
	if ws == nil {
		return 0, fmt.Errorf("workspace %s not found", workspaceID)
	}

	items, err := s.content.GetAllItems(workspaceID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, item := range items {
		base := relevance.Score(item.Title, item.Content, ws.Keywords, ws.Purpose)
		score := relevance.RecalculateForAnnotations(base, item.AnnotationCount)
		if score == item.RelevanceScore {
			continue
		}
		if err := s.content.UpdateRelevanceScore(item.ID, score); err != nil {
			slog.Warn("Failed to update relevance score", "item_id", item.ID, "error", err)
			continue
		}
		updated++
	}

	slog.Info("Workspace rescored", "workspace_id", workspaceID, "items", len(items), "updated", updated)
	return updated, nil
}

func (s *Scheduler) run(ctx context.Context, workspaceID string, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx, workspaceID)
		}
	}
}

// check runs one monitoring pass over every URL of the workspace. Failures
// on individual URLs are logged and never abort the pass.
func (s *Scheduler) check(ctx context.Context, workspaceID string) {
	tickCtx, cancel := context.WithTimeout(ctx, s.tickLimit)
	defer cancel()

	ws, err := s.workspaces.GetWorkspace(workspaceID)
	if err != nil {
		slog.Warn("Failed to load workspace for monitoring", "workspace_id", workspaceID, "error", err)
		return
	}
	if ws == nil {
		slog.Warn("Monitored workspace no longer exists", "workspace_id", workspaceID)
		return
	}

	ingested := 0
	for _, url := range ws.MonitoredURLs {
		select {
		case <-tickCtx.Done():
			return
		default:
		}

		n, err := s.checkURL(tickCtx, ws, url)
		if err != nil {
			slog.Warn("Monitoring check failed", "workspace_id", workspaceID, "url", url, "error", err)
			continue
		}
		ingested += n
	}

	if ingested > 0 {
		slog.Info("Monitoring pass ingested content", "workspace_id", workspaceID, "items", ingested)
	}
}

// checkURL ingests content from one URL, treating it as a feed when it
// validates as one and as a plain page otherwise. Returns how many items
// passed dedup and the relevance threshold.
func (s *Scheduler) checkURL(ctx context.Context, ws *database.Workspace, url string) (int, error) {
	if s.source.ValidateRSSFeed(ctx, url) {
		entries, err := s.source.ExtractRSSItems(ctx, url)
		if err != nil {
			return 0, err
		}

		ingested := 0
		for _, entry := range entries {
			ok, err := s.ingest(ws, entry.Link, entry.ExtractedContent)
			if err != nil {
				slog.Warn("Failed to ingest feed entry", "workspace_id", ws.ID, "url", entry.Link, "error", err)
				continue
			}
			if ok {
				ingested++
			}
		}
		return ingested, nil
	}

	content, err := s.source.ExtractFromURL(ctx, url)
	if err != nil {
		return 0, err
	}
	ok, err := s.ingest(ws, url, *content)
	if err != nil {
		return 0, err
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}

// ingest scores one extracted piece and persists it when it is new and
// relevant enough. Returns true when a row was written.
func (s *Scheduler) ingest(ws *database.Workspace, url string, content extractor.ExtractedContent) (bool, error) {
	hash := contentHash(content.Title, url)

	exists, err := s.content.CheckDuplicate(ws.ID, hash)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	score := relevance.Score(content.Title, content.Content, ws.Keywords, ws.Purpose)
	if score < s.threshold {
		slog.Debug("Content below relevance threshold, skipped",
			"workspace_id", ws.ID, "url", url, "score", score, "threshold", s.threshold)
		return false, nil
	}

	item := database.ContentItem{
		ID:             uuid.NewString(),
		WorkspaceID:    ws.ID,
		Title:          content.Title,
		Content:        content.Content,
		URL:            url,
		PublishedAt:    content.PublishedAt,
		RelevanceScore: score,
		ContentHash:    hash,
		CreatedAt:      time.Now(),
	}
	if err := s.content.InsertItem(item); err != nil {
		return false, err
	}
	return true, nil
}

// contentHash identifies a piece of content for dedup. Title plus URL is
// stable across re-fetches even when body extraction varies slightly.
func contentHash(title, url string) string {
	sum := sha256.Sum256([]byte(title + "|" + url))
	return hex.EncodeToString(sum[:])
}
