// =============================================================================
// sources.go - Source Registry
// =============================================================================
//
// The five inbound feeds, collected strictly in registry order. Each source is
// a named collector feeding one category; a failing source logs its error,
// contributes nothing, and never blocks the rest of the run.
//
// Source implementations live in:
//   - sources_csv.go   - research_list, research_brief (spreadsheet exports)
//   - sources_arxiv.go - arxiv, arxiv_players (Atom API)
//   - sources_news.go  - google_news (RSS)
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// collectorFunc fetches one source and returns its normalized records.
type collectorFunc func(p *Pipeline, ctx context.Context) ([]Record, error)

// registeredSource binds a source name to its collector and target category.
type registeredSource struct {
	name     string
	category Category
	collect  collectorFunc
}

// sourceRegistry lists every inbound feed in collection order. The stats card
// reports len(sourceRegistry) as the total source count.
var sourceRegistry = []registeredSource{
	{name: "research_list", category: CategoryResearch, collect: (*Pipeline).collectResearchList},
	{name: "research_brief", category: CategoryResearch, collect: (*Pipeline).collectResearchBrief},
	{name: "arxiv", category: CategoryArxiv, collect: (*Pipeline).collectArxiv},
	{name: "arxiv_players", category: CategoryPlayers, collect: (*Pipeline).collectArxivPlayers},
	{name: "google_news", category: CategoryNews, collect: (*Pipeline).collectGoogleNews},
}

// CollectResult holds what the fetch phase produced: normalized records
// grouped by category, the per-source failure messages, and how many sources
// were attempted.
type CollectResult struct {
	Records   map[Category][]Record
	Errors    []string
	Attempted int
}

// collectSources runs every registered source whose category is active, in
// registry order. A source error is logged and recorded; the loop continues
// with the next source.
func (p *Pipeline) collectSources(ctx context.Context, active []Category) *CollectResult {
	activeSet := make(map[Category]bool, len(active))
	for _, cat := range active {
		activeSet[cat] = true
	}

	result := &CollectResult{Records: make(map[Category][]Record)}
	for _, src := range sourceRegistry {
		if !activeSet[src.category] {
			continue
		}
		result.Attempted++

		records, err := src.collect(p, ctx)
		if err != nil {
			msg := fmt.Sprintf("collecting %s: %v", src.name, err)
			p.log.Warn(msg)
			result.Errors = append(result.Errors, msg)
			continue
		}

		p.log.Infof("%s: collected %d records", src.name, len(records))
		result.Records[src.category] = append(result.Records[src.category], records...)
	}
	return result
}

// newFetchClient builds the shared HTTP client every source fetch uses.
// Connection pooling matters little for five sequential requests but costs
// nothing and keeps retries of individual runs cheap.
func newFetchClient(cfg HTTPConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// httpGet performs a GET with the configured User-Agent and returns the body
// on a 2xx status. The caller closes the body.
func (p *Pipeline) httpGet(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.cfg.HTTP.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %s", url, resp.Status)
	}
	return resp.Body, nil
}
