// =============================================================================
// sources_arxiv.go - arXiv Atom Sources
// =============================================================================
//
// Both paper categories come from the arXiv API: a title query for technology
// papers and an OR-query over the major hardware vendors and platform terms
// for company papers. The API speaks Atom; entries carry newline-indented
// continuation lines in titles and abstracts, which collapse to single spaces
// before normalization.
//
// API documentation: https://info.arxiv.org/help/api/index.html
//
// =============================================================================
package pipeline

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// arXiv asks for no more than one request every three seconds.
const arxivRateLimit = 3 * time.Second

// atomFeed is the slice of the arXiv Atom response we read.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string       `xml:"title"`
	ID        string       `xml:"id"`
	Published string       `xml:"published"`
	Updated   string       `xml:"updated"`
	Summary   string       `xml:"summary"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// fetchArxiv queries the arXiv API and returns the raw feed papers in feed
// order. The query URL carries its search expression and result cap.
func (p *Pipeline) fetchArxiv(ctx context.Context, url string) ([]FeedPaper, error) {
	body, err := p.httpGet(ctx, url, "application/atom+xml")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var feed atomFeed
	if err := xml.NewDecoder(body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("arXiv XML parse: %w", err)
	}

	papers := make([]FeedPaper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		var authors []string
		for _, author := range entry.Authors {
			if name := strings.TrimSpace(author.Name); name != "" {
				authors = append(authors, name)
			}
		}

		papers = append(papers, FeedPaper{
			Title:     normalizeWhitespace(entry.Title),
			Authors:   strings.Join(authors, ", "),
			Abstract:  normalizeWhitespace(entry.Summary),
			Link:      entryLink(entry),
			Published: strings.TrimSpace(entry.Published),
			Updated:   strings.TrimSpace(entry.Updated),
		})
	}

	p.arxivWait(ctx)
	return papers, nil
}

// entryLink prefers the rel="alternate" abstract-page link; the entry ID is
// itself that URL and serves as the fallback.
func entryLink(entry atomEntry) string {
	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Href != "" {
			return link.Href
		}
	}
	return strings.TrimSpace(entry.ID)
}

// arxivWait honors the API rate limit after a request. The two arXiv sources
// run back to back, so the pause sits here rather than in the caller.
func (p *Pipeline) arxivWait(ctx context.Context) {
	if p.arxivDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(p.arxivDelay):
	}
}

// collectFeedPapers fetches one arXiv query and normalizes up to limit
// entries.
func (p *Pipeline) collectFeedPapers(ctx context.Context, url string, limit int) ([]Record, error) {
	papers, err := p.fetchArxiv(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(papers) > limit {
		papers = papers[:limit]
	}

	out := make([]Record, 0, len(papers))
	for _, paper := range papers {
		out = append(out, NormalizeFeedPaper(paper))
	}
	return out, nil
}

func (p *Pipeline) collectArxiv(ctx context.Context) ([]Record, error) {
	return p.collectFeedPapers(ctx, p.cfg.Sources.ArxivURL, p.cfg.Sources.ArxivLimit)
}

func (p *Pipeline) collectArxivPlayers(ctx context.Context) ([]Record, error) {
	return p.collectFeedPapers(ctx, p.cfg.Sources.ArxivPlayersURL, p.cfg.Sources.PlayersLimit)
}
