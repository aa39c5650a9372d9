package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/topicscout/topicscout/app/database"
)

const maxPromptChars = 24000

const summarizeSystemPrompt = `You are a content analyst producing concise digests.
Summarize the provided material under the following headings:

## Overview
Two or three sentences describing what the material covers overall.

## Key Developments
Bullet points of the most important findings, events, or claims.

## Notable Details
Bullet points of supporting facts, numbers, or quotes worth keeping.

Write plain markdown. Do not invent facts not present in the material.`

const extractSystemPrompt = `You extract structured data from web page text.
Respond with strict JSON only, no markdown fences and no commentary, matching:
{"title": string, "summary": string, "keyPoints": [string]}
The summary is two or three sentences. keyPoints holds three to five short bullet strings.`

// Summarize runs the summarization prompt for a user. An optional focus
// narrows the summary toward a particular topic.
func (g *Gateway) Summarize(ctx context.Context, userID, content, focus string) (*Result, error) {
	prompt := truncateText(content, maxPromptChars)
	if focus != "" {
		prompt = fmt.Sprintf("Focus the summary on: %s\n\n%s", focus, prompt)
	}

	return g.Generate(ctx, Request{
		Prompt:       prompt,
		SystemPrompt: summarizeSystemPrompt,
		UserID:       userID,
		Operation:    database.OperationSummarize,
	})
}

// ExtractStructured asks the model for a title, summary, and key points of a
// page. When the model's reply cannot be parsed as JSON, a lexical fallback
// built from the raw content is returned instead of an error.
func (g *Gateway) ExtractStructured(ctx context.Context, userID, url, content string) (*StructuredExtract, error) {
	prompt := fmt.Sprintf("URL: %s\n\nPage text:\n%s", url, truncateText(content, maxPromptChars))

	result, err := g.Generate(ctx, Request{
		Prompt:       prompt,
		SystemPrompt: extractSystemPrompt,
		UserID:       userID,
		Operation:    database.OperationExtract,
	})
	if err != nil {
		return nil, err
	}

	var extract StructuredExtract
	if err := unmarshalLLMJSON(result.Content, &extract); err != nil {
		return &StructuredExtract{
			Title:   url,
			Summary: truncateText(content, 300),
		}, nil
	}
	return &extract, nil
}

// unmarshalLLMJSON parses model output that may be wrapped in markdown code
// fences or surrounded by prose. It first strips fences, then retries on the
// outermost brace-delimited slice.
func unmarshalLLMJSON(raw string, v any) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return json.Unmarshal([]byte(cleaned[start:end+1]), v)
	}
	return fmt.Errorf("no JSON object found in model output")
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
