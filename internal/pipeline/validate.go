// =============================================================================
// validate.go - Digest Structural Check
// =============================================================================
package pipeline

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// validateDigest parses an assembled page and checks the skeleton survived
// assembly intact: page title, stats card, one content body per category.
// Runs before any write, so a malformed document never reaches disk or the
// publisher.
func validateDigest(page string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return fmt.Errorf("digest parse: %w", err)
	}
	if strings.TrimSpace(doc.Find("head title").Text()) == "" {
		return fmt.Errorf("digest missing page title")
	}
	if n := doc.Find("div.stats").Length(); n != 1 {
		return fmt.Errorf("digest has %d stats cards, want 1", n)
	}
	if n := doc.Find("div.section-content").Length(); n != len(categorySpecs) {
		return fmt.Errorf("digest has %d section bodies, want %d", n, len(categorySpecs))
	}
	return nil
}
