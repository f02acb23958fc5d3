// =============================================================================
// sources_news.go - Google News RSS Source
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// fetchNewsFeed downloads and parses an RSS/Atom feed.
func (p *Pipeline) fetchNewsFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	body, err := p.httpGet(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("RSS parse: %w", err)
	}
	return feed, nil
}

// collectGoogleNews fetches the news search feed and normalizes up to the
// configured limit of items. The raw Published string is kept as-is; the
// normalizer slices it for display rather than parsing it.
func (p *Pipeline) collectGoogleNews(ctx context.Context) ([]Record, error) {
	feed, err := p.fetchNewsFeed(ctx, p.cfg.Sources.NewsURL)
	if err != nil {
		return nil, err
	}

	limit := p.cfg.Sources.NewsLimit
	out := make([]Record, 0, limit)
	for _, item := range feed.Items {
		if len(out) >= limit {
			break
		}

		title := normalizeWhitespace(cleanHTMLTags(item.Title))
		if title == "" {
			continue
		}
		title, publisher := splitNewsAttribution(title)

		out = append(out, NormalizeNews(NewsEntry{
			Title:     title,
			Link:      item.Link,
			Published: item.Published,
			Source:    publisher,
		}))
	}
	return out, nil
}

// splitNewsAttribution recovers the publisher from the Google News title
// convention "Headline - Publisher". The parser does not expose the RSS
// <source> element, so the trailing segment is the only attribution; a title
// without one returns an empty publisher and the normalizer default applies.
func splitNewsAttribution(title string) (headline, publisher string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
