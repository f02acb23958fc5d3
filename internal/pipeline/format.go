// =============================================================================
// format.go - Content Formatting
// =============================================================================
//
// Renders normalized records into the per-category HTML fragments the digest
// page embeds. Formatting is a strategy selected at startup:
//
//   - NoopFormatter:       fixed-structure article blocks, no enrichment
//   - AIEnrichedFormatter: model-written section summaries (enrich.go)
//
// Both cap the input at the category maximum and both render the category's
// fixed placeholder for empty input.
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Formatter renders an ordered record sequence into one category's HTML
// fragment. Every implementation caps the input at the category maximum and
// renders the category placeholder for empty input; only the plain renderer
// additionally guarantees byte-identical output for identical input. The
// context bounds any remote work a strategy does; the plain renderer ignores
// it.
type Formatter interface {
	Format(ctx context.Context, records []Record, cat Category) string
}

// NoopFormatter is the default strategy: every record becomes one fixed
// article block, no rewriting of any kind.
type NoopFormatter struct{}

// Format renders records for cat. Overflow past the category maximum is
// silently dropped; input order is preserved; empty input yields the
// category placeholder. Unknown categories render nothing.
func (NoopFormatter) Format(_ context.Context, records []Record, cat Category) string {
	spec, ok := specFor(cat)
	if !ok {
		return ""
	}
	if len(records) == 0 {
		return spec.Placeholder
	}

	var b strings.Builder
	for _, rec := range capRecords(records, spec.MaxItems) {
		switch cat {
		case CategoryNews:
			writeNewsArticle(&b, rec)
		case CategoryResearch:
			writeResearchArticle(&b, rec)
		default:
			writePaperArticle(&b, rec)
		}
	}
	return b.String()
}

// capRecords drops everything past max, keeping input order.
func capRecords(records []Record, max int) []Record {
	if len(records) > max {
		return records[:max]
	}
	return records
}

// renderedCount is the number of records the formatter will actually render
// for cat. The stats card reports this, never the fetched count.
func renderedCount(cat Category, fetched int) int {
	spec, ok := specFor(cat)
	if !ok {
		return 0
	}
	if fetched > spec.MaxItems {
		return spec.MaxItems
	}
	return fetched
}

// metaSeparator joins the pieces of a meta line.
const metaSeparator = " • "

// headingHTML wraps the title in a link when one exists, otherwise renders
// it as plain text.
func headingHTML(rec Record) string {
	if rec.Link == "" {
		return rec.Title
	}
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, rec.Link, rec.Title)
}

// writePaperArticle renders one feed paper: linked heading, author plus
// publication date, and the abstract.
func writePaperArticle(b *strings.Builder, rec Record) {
	fmt.Fprintf(b, "<article class=\"article\">\n")
	fmt.Fprintf(b, "  <h3>%s</h3>\n", headingHTML(rec))
	fmt.Fprintf(b, "  <div class=\"meta\">\n")
	fmt.Fprintf(b, "    <span class=\"author\">%s</span>%s<span class=\"date\">Published: %s</span>\n",
		rec.Authors, metaSeparator, rec.Published)
	fmt.Fprintf(b, "  </div>\n")
	fmt.Fprintf(b, "  <div class=\"content\">%s</div>\n", rec.Abstract)
	fmt.Fprintf(b, "</article>\n")
}

// writeResearchArticle renders one spreadsheet paper. The submission date and
// arXiv identifier are optional meta pieces, included only when present.
func writeResearchArticle(b *strings.Builder, rec Record) {
	meta := fmt.Sprintf(`<span class="author">%s</span>`, rec.Authors)
	if rec.Published != "" {
		meta += fmt.Sprintf(`%s<span class='date'>Submitted: %s</span>`, metaSeparator, rec.Published)
	}
	if rec.ArxivID != "" {
		meta += fmt.Sprintf(`%s<em>arXiv: %s</em>`, metaSeparator, rec.ArxivID)
	}

	fmt.Fprintf(b, "<article class=\"article\">\n")
	fmt.Fprintf(b, "  <h3>%s</h3>\n", headingHTML(rec))
	fmt.Fprintf(b, "  <div class=\"meta\">\n")
	fmt.Fprintf(b, "    %s\n", meta)
	fmt.Fprintf(b, "  </div>\n")
	fmt.Fprintf(b, "  <div class=\"content\">%s</div>\n", rec.Abstract)
	fmt.Fprintf(b, "</article>\n")
}

// writeNewsArticle renders one news item: heading and a source/date meta
// line, no content block.
func writeNewsArticle(b *strings.Builder, rec Record) {
	fmt.Fprintf(b, "<article class=\"article\">\n")
	fmt.Fprintf(b, "  <h3>%s</h3>\n", headingHTML(rec))
	fmt.Fprintf(b, "  <div class=\"meta\">\n")
	fmt.Fprintf(b, "    <span class=\"author\">%s</span>%s<span class=\"date\">%s</span>\n",
		rec.Source, metaSeparator, rec.Published)
	fmt.Fprintf(b, "  </div>\n")
	fmt.Fprintf(b, "</article>\n")
}
