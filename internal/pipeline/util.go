// =============================================================================
// util.go - Shared Helpers
// =============================================================================
//
// Small helpers used across the pipeline: string cleanup, rune-safe clipping,
// and JSON file I/O for the dump and Notion-cache files.
//
// =============================================================================
package pipeline

import (
	"encoding/json"
	"html"
	"os"
	"regexp"
	"strings"
)

// Compiled once; tag stripping runs on every news title.
var reHTMLTags = regexp.MustCompile(`<[^>]*>`)

// normalizeWhitespace collapses all runs of whitespace (including the
// newline-indented continuation lines arXiv puts in titles and abstracts)
// into single spaces and trims the ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanHTMLTags strips markup from feed-supplied text and decodes HTML
// entities, so titles like "A &amp; B <b>win</b>" render as plain text.
func cleanHTMLTags(htmlStr string) string {
	text := reHTMLTags.ReplaceAllString(htmlStr, "")
	return html.UnescapeString(text)
}

// clipRunes cuts s to at most n runes with no ellipsis. Used for the fixed
// date-display widths, which slice rather than parse.
func clipRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// truncateString cuts s so the result, ellipsis included, fits in maxLen
// runes. Multi-byte text is handled correctly.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// writeJSONFile saves v as indented JSON at path.
func writeJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// readJSONFile loads the JSON file at path into out (a pointer).
func readJSONFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
