package extractor

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// feedMarkers are the syntactic hints checked by ValidateRSSFeed. This is a
// cheap structural check, not schema validation.
var feedMarkers = []string{"<rss", "<feed", "<channel"}

// ValidateRSSFeed fetches the URL and reports whether the response body looks
// like an RSS or Atom document.
func (e *Extractor) ValidateRSSFeed(ctx context.Context, url string) bool {
	data, err := e.fetch(ctx, url)
	if err != nil {
		slog.Debug("Feed validation fetch failed", "url", url, "error", err)
		return false
	}

	body := strings.ToLower(string(data))
	for _, marker := range feedMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// ExtractRSSItems fetches and parses an RSS or Atom feed into normalized
// entries. RSS items use title+description, Atom entries prefer content over
// summary. Entries missing a title or body are dropped.
func (e *Extractor) ExtractRSSItems(ctx context.Context, url string) ([]FeedEntry, error) {
	data, err := e.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ExtractionError{URL: url, Reason: "failed to parse feed: " + err.Error()}
	}

	entries := make([]FeedEntry, 0, len(feed.Items))
	dropped := 0
	for _, item := range feed.Items {
		entry, ok := e.normalizeFeedItem(item)
		if !ok {
			dropped++
			continue
		}
		entries = append(entries, entry)
	}

	slog.Debug("Feed items extracted", "url", url, "total", len(feed.Items), "dropped", dropped)

	return entries, nil
}

func (e *Extractor) normalizeFeedItem(item *gofeed.Item) (FeedEntry, bool) {
	title := normalizeText(item.Title)

	// Atom entries carry content, RSS items a description; prefer the former.
	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}
	body = normalizeText(stripHTML(body))

	if title == "" || body == "" {
		return FeedEntry{}, false
	}

	entry := FeedEntry{
		ExtractedContent: ExtractedContent{
			Title:       title,
			Content:     body,
			PublishedAt: item.PublishedParsed,
		},
		Link: item.Link,
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		entry.Author = strings.TrimSpace(item.Authors[0].Name)
	}

	if excerpt := normalizeText(stripHTML(item.Description)); len(excerpt) >= minExcerptLength {
		entry.Excerpt = excerpt
	}

	return entry, true
}

// stripHTML drops markup from feed bodies, which frequently embed HTML.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
