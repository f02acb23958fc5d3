// =============================================================================
// types.go - Data Structures
// =============================================================================
//
// Core types shared across the digest pipeline:
//
//   - Record:      the canonical content item every source is normalized into
//   - ResearchRow: one raw CSV row (spreadsheet research export)
//   - FeedPaper:   one raw arXiv Atom entry
//   - NewsEntry:   one raw RSS news item
//   - Category:    one of the four digest sections, with its rendering spec
//
// =============================================================================
package pipeline

// Category identifies one of the digest's content sections.
type Category string

const (
	CategoryNews     Category = "news"
	CategoryArxiv    Category = "arxiv_papers"
	CategoryPlayers  Category = "arxiv_players_papers"
	CategoryResearch Category = "research_papers"
)

// Record is the canonical shape every fetched item is normalized into before
// formatting. Optional fields are the empty string when they should be omitted
// from rendering; the normalizer guarantees no field ever carries the raw
// missing-value sentinel.
type Record struct {
	Title     string `json:"title"`
	Authors   string `json:"authors,omitempty"`
	Abstract  string `json:"abstract,omitempty"`
	Link      string `json:"link,omitempty"`
	Published string `json:"published,omitempty"`
	Source    string `json:"source,omitempty"`
	ArxivID   string `json:"arxivId,omitempty"`
}

// ResearchRow is one data row of a research spreadsheet export, keyed by the
// CSV header. Recognized columns: "Title", "Authors", "Abstract", "PDF Link",
// "Submission Date", "arXiv ID". Unknown columns are carried but ignored.
type ResearchRow map[string]string

// FeedPaper is one paper entry from the arXiv Atom API, as fetched.
// Authors is already the ", "-joined author list; Published and Updated are
// the feed's RFC3339 strings, untouched.
type FeedPaper struct {
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Abstract  string `json:"abstract"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Updated   string `json:"updated,omitempty"`
}

// NewsEntry is one item from the news RSS feed, as fetched. Published keeps
// the feed's own timestamp string (typically RFC1123).
type NewsEntry struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Source    string `json:"source"`
}

// CategorySpec describes how one category is capped and rendered.
//
// MaxItems is the hard rendering cap: the formatter silently drops anything
// past it, and the stats card reports the capped count, not the fetched one.
// Placeholder is the exact fragment rendered when the category has no content;
// downstream consumers of the page match on these strings, so they are fixed.
type CategorySpec struct {
	ID          Category
	StatsKey    string
	MaxItems    int
	Placeholder string
}

// categorySpecs lists all categories in page order (the order their sections
// appear in the assembled digest).
var categorySpecs = []CategorySpec{
	{
		ID:          CategoryNews,
		StatsKey:    "news_items",
		MaxItems:    15,
		Placeholder: "<div class='article'><div class='content'>No news available today.</div></div>",
	},
	{
		ID:          CategoryArxiv,
		StatsKey:    "arxiv_papers",
		MaxItems:    10,
		Placeholder: "<div class='article'><div class='content'>No arXiv papers available today.</div></div>",
	},
	{
		ID:          CategoryPlayers,
		StatsKey:    "arxiv_players_papers",
		MaxItems:    8,
		Placeholder: "<div class='article'><div class='content'>No papers from quantum computing players available today.</div></div>",
	},
	{
		ID:          CategoryResearch,
		StatsKey:    "research_papers",
		MaxItems:    4,
		Placeholder: "<div class='article'><div class='content'>No research papers available today.</div></div>",
	},
}

// specFor returns the rendering spec for a category.
func specFor(cat Category) (CategorySpec, bool) {
	for _, spec := range categorySpecs {
		if spec.ID == cat {
			return spec, true
		}
	}
	return CategorySpec{}, false
}

// AllCategories returns every category in page order. Used as the default
// active set when configuration does not narrow it down.
func AllCategories() []Category {
	out := make([]Category, 0, len(categorySpecs))
	for _, spec := range categorySpecs {
		out = append(out, spec.ID)
	}
	return out
}

// ParseCategories maps category identifiers to Categories, rejecting unknown
// names so a typo in a flag fails loudly at startup instead of silently
// dropping a section.
func ParseCategories(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))
	for _, name := range names {
		cat := Category(name)
		if _, ok := specFor(cat); !ok {
			return nil, &UnknownCategoryError{Name: name}
		}
		out = append(out, cat)
	}
	return out, nil
}

// UnknownCategoryError reports a category identifier that matches no section.
type UnknownCategoryError struct {
	Name string
}

func (e *UnknownCategoryError) Error() string {
	return "unknown category: " + e.Name
}
