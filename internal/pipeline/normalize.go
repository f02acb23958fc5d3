// =============================================================================
// normalize.go - Field Normalization
// =============================================================================
//
// Every source hands over loosely-typed records: spreadsheet rows with null
// cells rendered as the literal "nan", feed entries with absent elements,
// whitespace-padded values. Normalization coerces each raw variant into a
// canonical Record, substituting documented defaults for anything missing.
//
// Normalization is total: it never fails and never raises. A malformed value
// is sliced or defaulted, not rejected.
//
// =============================================================================
package pipeline

import "strings"

// missingSentinel is the null rendering of the upstream spreadsheet tooling.
// The comparison is case-sensitive and applies to the raw cell value.
const missingSentinel = "nan"

// Documented defaults, substituted for missing fields per variant.
const (
	defaultTitle      = "Research Paper"
	defaultAuthors    = "Research Team"
	defaultAbstract   = "Abstract not available"
	defaultNewsTitle  = "Untitled"
	defaultNewsSource = "Unknown"

	// unknownDate marks a record with no usable timestamp. It passes through
	// date slicing unchanged; "Unknown da" must never reach the page.
	unknownDate = "Unknown date"
)

// Abstract truncation thresholds in runes, ellipsis excluded. Spreadsheet
// abstracts are shown shorter than feed abstracts. Truncation runs after
// default substitution, so the defaults themselves are never cut.
const (
	csvAbstractLimit  = 300
	feedAbstractLimit = 400
)

// Date display widths: first 10 runes for date-only, first 16 for the
// date-plus-weekday prefix of an RFC1123 timestamp.
const (
	dateOnlyLen = 10
	dateTimeLen = 16
)

// isMissing reports whether a raw field value counts as absent: empty or
// whitespace-only after trimming, or the exact missing-value sentinel.
func isMissing(s string) bool {
	return s == missingSentinel || strings.TrimSpace(s) == ""
}

// orDefault substitutes def for a missing value, otherwise trims and keeps it.
func orDefault(s, def string) string {
	if isMissing(s) {
		return def
	}
	return strings.TrimSpace(s)
}

// truncateAbstract cuts an abstract past limit runes and appends an ellipsis.
// A value of exactly limit runes is returned untouched.
func truncateAbstract(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// clipDate shortens a date string to its display width. The unknown-date
// sentinel passes through whole.
func clipDate(s string, n int) string {
	if s == unknownDate {
		return s
	}
	return clipRunes(s, n)
}

// NormalizeResearch coerces one spreadsheet row into a canonical Record.
// Title, Authors and Abstract fall back to their documented defaults; the
// link, date and identifier are optional and empty when absent, which makes
// the formatter omit their meta pieces.
func NormalizeResearch(row ResearchRow) Record {
	return Record{
		Title:     orDefault(row["Title"], defaultTitle),
		Authors:   orDefault(row["Authors"], defaultAuthors),
		Abstract:  truncateAbstract(orDefault(row["Abstract"], defaultAbstract), csvAbstractLimit),
		Link:      orDefault(row["PDF Link"], ""),
		Published: clipDate(orDefault(row["Submission Date"], ""), dateOnlyLen),
		ArxivID:   orDefault(row["arXiv ID"], ""),
	}
}

// NormalizeFeedPaper coerces one Atom feed entry into a canonical Record.
// A paper with no timestamp shows "Unknown date" rather than an empty meta.
func NormalizeFeedPaper(p FeedPaper) Record {
	return Record{
		Title:     orDefault(p.Title, defaultTitle),
		Authors:   orDefault(p.Authors, defaultAuthors),
		Abstract:  truncateAbstract(orDefault(p.Abstract, defaultAbstract), feedAbstractLimit),
		Link:      orDefault(p.Link, ""),
		Published: clipDate(orDefault(p.Published, unknownDate), dateOnlyLen),
	}
}

// NormalizeNews coerces one RSS item into a canonical Record. News items
// carry no abstract; the publisher name takes the author slot.
func NormalizeNews(e NewsEntry) Record {
	return Record{
		Title:     orDefault(e.Title, defaultNewsTitle),
		Link:      orDefault(e.Link, ""),
		Published: clipDate(orDefault(e.Published, unknownDate), dateTimeLen),
		Source:    orDefault(e.Source, defaultNewsSource),
	}
}
