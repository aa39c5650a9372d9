package extractor

import (
	"time"
)

// ExtractedContent is the normalized record produced from a web page or a
// feed entry. It is transient; persistence maps it into a content item.
type ExtractedContent struct {
	Title       string
	Content     string
	Excerpt     string
	PublishedAt *time.Time
	Author      string
}

// FeedEntry is one entry extracted from an RSS/Atom feed, carrying the
// entry's own link alongside the normalized content.
type FeedEntry struct {
	ExtractedContent
	Link string
}
