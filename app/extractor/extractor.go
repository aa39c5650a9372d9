package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Candidate selectors are tried in order; the first non-empty match wins.
var (
	titleMetaSelectors  = []string{`meta[property="og:title"]`, `meta[name="twitter:title"]`}
	titleClassSelectors = []string{".title", ".headline", ".post-title", ".article-title"}

	contentSelectors = []string{
		"article", ".content", ".post-content", ".article-content",
		".entry-content", "main", "[role=main]",
	}

	noiseSelector = "script, style, nav, header, footer, aside"

	dateSelectors = []struct {
		selector string
		attr     string
	}{
		{`meta[property="article:published_time"]`, "content"},
		{`meta[name="date"]`, "content"},
		{`[itemprop="datePublished"]`, "content"},
		{`time[datetime]`, "datetime"},
		{".date", ""},
		{".published", ""},
		{".post-date", ""},
	}

	authorSelectors = []struct {
		selector string
		attr     string
	}{
		{`meta[name="author"]`, "content"},
		{`meta[property="article:author"]`, "content"},
		{`[rel="author"]`, ""},
		{".author", ""},
		{".byline", ""},
	}

	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		time.RFC1123Z,
		time.RFC1123,
		"January 2, 2006",
		"Jan 2, 2006",
	}
)

// minContentLength is the floor below which a structural container is not
// accepted as the main content.
const minContentLength = 100

// minExcerptLength is the floor below which a synthesized excerpt is dropped.
const minExcerptLength = 20

type Extractor struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func New(httpClient *http.Client, userAgent string, timeout time.Duration) *Extractor {
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// ExtractFromURL fetches a web page and extracts a normalized content record
// using ordered selector fallbacks per field.
func (e *Extractor) ExtractFromURL(ctx context.Context, url string) (*ExtractedContent, error) {
	data, err := e.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ExtractionError{URL: url, Reason: fmt.Sprintf("failed to parse HTML: %v", err)}
	}

	result := &ExtractedContent{
		Title:       e.extractTitle(doc),
		PublishedAt: e.extractPublishedDate(doc),
		Author:      e.extractAuthor(doc),
	}

	metaDescription := firstAttr(doc, []string{`meta[name="description"]`, `meta[property="og:description"]`}, "content")

	// Noise removal mutates the document, so metadata is pulled first.
	doc.Find(noiseSelector).Remove()

	result.Content = e.extractMainContent(doc)
	if result.Content == "" {
		return nil, &ExtractionError{URL: url, Reason: "no usable content found"}
	}

	result.Excerpt = e.buildExcerpt(metaDescription, result.Content)

	slog.Debug("Content extracted",
		"url", url,
		"title", result.Title,
		"content_length", len(result.Content))

	return result, nil
}

func (e *Extractor) extractTitle(doc *goquery.Document) string {
	if title := firstAttr(doc, titleMetaSelectors, "content"); title != "" {
		return title
	}
	if title := normalizeText(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	if title := normalizeText(doc.Find("title").First().Text()); title != "" {
		return title
	}
	for _, selector := range titleClassSelectors {
		if title := normalizeText(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return ""
}

func (e *Extractor) extractMainContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := normalizeText(sel.Text())
		if len(text) > minContentLength {
			return text
		}
	}

	// None of the structural containers qualified; fall back to the full body.
	return normalizeText(doc.Find("body").Text())
}

func (e *Extractor) extractPublishedDate(doc *goquery.Document) *time.Time {
	for _, candidate := range dateSelectors {
		sel := doc.Find(candidate.selector).First()
		if sel.Length() == 0 {
			continue
		}

		var raw string
		if candidate.attr != "" {
			raw = sel.AttrOr(candidate.attr, "")
		} else {
			raw = sel.Text()
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if parsed := parseDate(raw); parsed != nil {
			return parsed
		}
	}
	return nil
}

func (e *Extractor) extractAuthor(doc *goquery.Document) string {
	for _, candidate := range authorSelectors {
		sel := doc.Find(candidate.selector).First()
		if sel.Length() == 0 {
			continue
		}

		var raw string
		if candidate.attr != "" {
			raw = sel.AttrOr(candidate.attr, "")
		} else {
			raw = sel.Text()
		}
		if author := normalizeText(raw); author != "" {
			return author
		}
	}
	return ""
}

// buildExcerpt prefers the page's meta description, otherwise synthesizes one
// from the first few sentences of the extracted content.
func (e *Extractor) buildExcerpt(metaDescription, content string) string {
	if desc := normalizeText(metaDescription); desc != "" {
		return desc
	}

	sentences := splitSentences(content)
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	excerpt := strings.TrimSpace(strings.Join(sentences, " "))
	if len(excerpt) < minExcerptLength {
		return ""
	}
	return excerpt
}

func (e *Extractor) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return data, nil
}

func firstAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, selector := range selectors {
		if value := normalizeText(doc.Find(selector).First().AttrOr(attr, "")); value != "" {
			return value
		}
	}
	return ""
}

func parseDate(raw string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

var (
	horizontalWhitespaceRe = regexp.MustCompile(`[ \t]+`)
	blankLinesRe           = regexp.MustCompile(`\n{2,}`)
	sentenceSplitRe        = regexp.MustCompile(`(?m)([.!?])\s+`)
)

// normalizeText collapses runs of whitespace and repeated blank lines.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalWhitespaceRe.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func splitSentences(s string) []string {
	marked := sentenceSplitRe.ReplaceAllString(s, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}
