package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/topicscout/topicscout/app/database"
	"github.com/topicscout/topicscout/app/gateway"
)

// maxItemsPerSummary caps how many content items feed a single summary so the
// prompt stays within model context limits.
const maxItemsPerSummary = 100

const maxTitleLength = 80

const titleSystemPrompt = `You write short titles. Reply with a single title of at most ten words for the provided summary. No quotes, no punctuation at the end, no commentary.`

// TextGenerator is the slice of the AI gateway the orchestrator needs.
type TextGenerator interface {
	Summarize(ctx context.Context, userID, content, focus string) (*gateway.Result, error)
	Generate(ctx context.Context, req gateway.Request) (*gateway.Result, error)
}

var _ TextGenerator = (*gateway.Gateway)(nil)

// NoNewContentError reports that a summary request had nothing to summarize.
type NoNewContentError struct {
	WorkspaceID string
	Reason      string
}

func (e *NoNewContentError) Error() string {
	return fmt.Sprintf("no content to summarize for workspace %s: %s", e.WorkspaceID, e.Reason)
}

// GenerateRequest describes one summary generation run.
type GenerateRequest struct {
	WorkspaceID string
	UserID      string
	Type        string // database.SummaryTypeFull or database.SummaryTypeDifferential
	Focus       string
}

// Orchestrator assembles workspace content into prompts, runs them through
// the AI gateway, and persists the resulting summaries.
type Orchestrator struct {
	content   database.ContentStore
	summaries database.SummaryStore
	ai        TextGenerator
}

func NewOrchestrator(content database.ContentStore, summaries database.SummaryStore, ai TextGenerator) *Orchestrator {
	return &Orchestrator{
		content:   content,
		summaries: summaries,
		ai:        ai,
	}
}

// Generate produces and persists one summary. Full summaries cover the most
// recent items in the workspace. Differential summaries cover only items
// ingested after the latest existing summary and require one to exist.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest) (*database.Summary, error) {
	var items []database.ContentItem
	var previous *database.Summary
	var err error

	switch req.Type {
	case database.SummaryTypeFull:
		items, err = o.content.GetRecentItems(req.WorkspaceID, maxItemsPerSummary)
		if err != nil {
			return nil, fmt.Errorf("failed to load workspace content: %w", err)
		}
	case database.SummaryTypeDifferential:
		previous, err = o.summaries.GetLatestSummary(req.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest summary: %w", err)
		}
		if previous == nil {
			return nil, &NoNewContentError{
				WorkspaceID: req.WorkspaceID,
				Reason:      "no prior summary exists, generate a full summary first",
			}
		}
		items, err = o.content.GetItemsCreatedAfter(req.WorkspaceID, previous.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to load new content: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown summary type %q", req.Type)
	}

	if len(items) == 0 {
		return nil, &NoNewContentError{
			WorkspaceID: req.WorkspaceID,
			Reason:      "no content items in scope",
		}
	}
	if len(items) > maxItemsPerSummary {
		items = items[:maxItemsPerSummary]
	}

	blob := buildContentBlob(items, previous)

	result, err := o.ai.Summarize(ctx, req.UserID, blob, req.Focus)
	if err != nil {
		return nil, err
	}

	title := o.generateTitle(ctx, req.UserID, req.Type, result.Content)

	itemIDs := make([]string, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}

	now := time.Now()
	s := database.Summary{
		ID:             uuid.NewString(),
		WorkspaceID:    req.WorkspaceID,
		Title:          title,
		Content:        result.Content,
		Type:           req.Type,
		Focus:          req.Focus,
		ContentItemIDs: itemIDs,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := o.summaries.InsertSummary(s); err != nil {
		return nil, fmt.Errorf("failed to save summary: %w", err)
	}

	slog.Info("Summary generated",
		"workspace_id", req.WorkspaceID,
		"type", req.Type,
		"items", len(items),
		"response_time_ms", result.ResponseTimeMs)

	return &s, nil
}

// UpdateContent replaces a summary's content, bumping its version.
func (o *Orchestrator) UpdateContent(id, content string) error {
	return o.summaries.UpdateSummaryContent(id, content)
}

// Delete soft-deletes a summary. The record stays addressable by ID.
func (o *Orchestrator) Delete(id string) error {
	return o.summaries.SoftDeleteSummary(id)
}

// buildContentBlob joins items into one prompt body. For differential runs
// the previous summary is prepended as context so the model reports what
// changed instead of restating known ground.
func buildContentBlob(items []database.ContentItem, previous *database.Summary) string {
	var b strings.Builder

	if previous != nil {
		b.WriteString("Previous summary for context (do not repeat its points, report what is new):\n\n")
		b.WriteString(previous.Content)
		b.WriteString("\n\n=== New material below ===\n\n")
	}

	for i, item := range items {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString("Title: " + item.Title + "\n")
		if item.URL != "" {
			b.WriteString("Source: " + item.URL + "\n")
		}
		if item.PublishedAt != nil {
			b.WriteString("Published: " + item.PublishedAt.Format("2006-01-02") + "\n")
		}
		b.WriteString("\n")
		b.WriteString(item.Content)
	}
	return b.String()
}

// generateTitle asks the model for a short title. Failures fall back to a
// generic dated title rather than failing the whole run.
func (o *Orchestrator) generateTitle(ctx context.Context, userID, summaryType, content string) string {
	result, err := o.ai.Generate(ctx, gateway.Request{
		Prompt:       content,
		SystemPrompt: titleSystemPrompt,
		UserID:       userID,
		Operation:    database.OperationAnalyze,
	})
	if err == nil {
		title := strings.Trim(strings.TrimSpace(result.Content), `"'`)
		title = strings.ReplaceAll(title, "\n", " ")
		if title != "" {
			if len(title) > maxTitleLength {
				title = title[:maxTitleLength]
			}
			return title
		}
	} else {
		slog.Warn("Title generation failed, using fallback", "error", err)
	}

	caser := cases.Title(language.English)
	return fmt.Sprintf("%s Summary %s", caser.String(summaryType), time.Now().Format("2006-01-02"))
}
