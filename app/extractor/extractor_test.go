package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestExtractor() *Extractor {
	return New(&http.Client{}, "TopicScout/1.0", 10*time.Second)
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
}

const articleHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Fallback Title | Site Name</title>
	<meta property="og:title" content="The Real Article Title">
	<meta name="description" content="A concise description of the article for previews.">
	<meta name="author" content="Jane Writer">
	<meta property="article:published_time" content="2026-03-15T10:30:00Z">
</head>
<body>
	<nav>Home About Contact</nav>
	<header>Site banner content here</header>
	<article>
		<h1>The Real Article Title</h1>
		<p>This is the opening paragraph of the article with enough words to pass the
		minimum content length requirement of the extraction pipeline.</p>
		<p>A second paragraph continues the discussion with additional substance so the
		article container is clearly the main content of the page.</p>
	</article>
	<aside>Related links</aside>
	<footer>Copyright notice</footer>
	<script>console.log("tracking");</script>
</body>
</html>`

func TestExtractFromURL(t *testing.T) {
	server := serveHTML(t, articleHTML)
	defer server.Close()

	e := newTestExtractor()
	content, err := e.ExtractFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL failed: %v", err)
	}

	if content.Title != "The Real Article Title" {
		t.Errorf("Expected og:title, got %q", content.Title)
	}
	if content.Author != "Jane Writer" {
		t.Errorf("Expected author from meta tag, got %q", content.Author)
	}
	if content.PublishedAt == nil {
		t.Fatal("Expected published date extracted")
	}
	if content.PublishedAt.Year() != 2026 || content.PublishedAt.Month() != 3 {
		t.Errorf("Unexpected published date %v", content.PublishedAt)
	}
	if content.Excerpt != "A concise description of the article for previews." {
		t.Errorf("Expected meta description excerpt, got %q", content.Excerpt)
	}

	if !strings.Contains(content.Content, "opening paragraph") {
		t.Errorf("Expected article body in content, got %q", content.Content)
	}
	for _, noise := range []string{"Home About Contact", "Copyright notice", "tracking", "Related links"} {
		if strings.Contains(content.Content, noise) {
			t.Errorf("Expected noise %q removed from content", noise)
		}
	}
}

func TestExtractTitleFallbacks(t *testing.T) {
	html := `<html><head><title>Only Document Title</title></head>
	<body><article><p>` + strings.Repeat("body text ", 20) + `</p></article></body></html>`
	server := serveHTML(t, html)
	defer server.Close()

	e := newTestExtractor()
	content, err := e.ExtractFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL failed: %v", err)
	}
	if content.Title != "Only Document Title" {
		t.Errorf("Expected title tag fallback, got %q", content.Title)
	}
}

func TestExtractH1PreferredOverTitleTag(t *testing.T) {
	html := `<html><head><title>Document Title</title></head>
	<body><h1>Heading Title</h1><article><p>` + strings.Repeat("body text ", 20) + `</p></article></body></html>`
	server := serveHTML(t, html)
	defer server.Close()

	e := newTestExtractor()
	content, err := e.ExtractFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL failed: %v", err)
	}
	if content.Title != "Heading Title" {
		t.Errorf("Expected h1 preferred over title tag, got %q", content.Title)
	}
}

func TestExtractShortContainerFallsThroughToBody(t *testing.T) {
	// The article is below the minimum content length, so extraction falls
	// back to the whole body text.
	html := `<html><body><article>tiny</article><p>` + strings.Repeat("substantial body copy ", 20) + `</p></body></html>`
	server := serveHTML(t, html)
	defer server.Close()

	e := newTestExtractor()
	content, err := e.ExtractFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ExtractFromURL failed: %v", err)
	}
	if !strings.Contains(content.Content, "substantial body copy") {
		t.Errorf("Expected body fallback content, got %q", content.Content)
	}
}

func TestExtractEmptyPage(t *testing.T) {
	server := serveHTML(t, `<html><body></body></html>`)
	defer server.Close()

	e := newTestExtractor()
	_, err := e.ExtractFromURL(context.Background(), server.URL)
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("Expected ExtractionError for empty page, got %v", err)
	}
}

func TestExtractFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	e := newTestExtractor()
	_, err := e.ExtractFromURL(context.Background(), server.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError for 404, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 in error, got %d", fetchErr.StatusCode)
	}
}

func TestUserAgentSent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><body><p>` + strings.Repeat("content ", 30) + `</p></body></html>`))
	}))
	defer server.Close()

	e := newTestExtractor()
	if _, err := e.ExtractFromURL(context.Background(), server.URL); err != nil {
		t.Fatalf("ExtractFromURL failed: %v", err)
	}
	if gotUA != "TopicScout/1.0" {
		t.Errorf("Expected configured User-Agent, got %q", gotUA)
	}
}

func TestNormalizeText(t *testing.T) {
	in := "  leading\t\tspaces   collapsed  \n\n\n\nblank   runs\r\ntrimmed  "
	got := normalizeText(in)
	want := "leading spaces collapsed\n\nblank runs\ntrimmed"
	if got != want {
		t.Errorf("normalizeText:\n got %q\nwant %q", got, want)
	}
}

func TestBuildExcerptFromSentences(t *testing.T) {
	e := newTestExtractor()

	content := "First sentence here. Second sentence follows! Third one asks? Fourth is dropped."
	got := e.buildExcerpt("", content)
	if strings.Contains(got, "Fourth") {
		t.Errorf("Expected excerpt capped at three sentences, got %q", got)
	}
	if !strings.HasPrefix(got, "First sentence here.") {
		t.Errorf("Expected excerpt to start with first sentence, got %q", got)
	}

	if got := e.buildExcerpt("", "Short."); got != "" {
		t.Errorf("Expected too-short excerpt dropped, got %q", got)
	}
}
