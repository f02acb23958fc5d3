package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestFormatEmptyInputRendersPlaceholder(t *testing.T) {
	f := NoopFormatter{}
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryNews, "<div class='article'><div class='content'>No news available today.</div></div>"},
		{CategoryArxiv, "<div class='article'><div class='content'>No arXiv papers available today.</div></div>"},
		{CategoryPlayers, "<div class='article'><div class='content'>No papers from quantum computing players available today.</div></div>"},
		{CategoryResearch, "<div class='article'><div class='content'>No research papers available today.</div></div>"},
	}
	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			if got := f.Format(context.Background(), nil, tt.cat); got != tt.want {
				t.Errorf("Format(nil) = %q, want the fixed placeholder", got)
			}
			if got := f.Format(context.Background(), []Record{}, tt.cat); got != tt.want {
				t.Errorf("Format(empty) = %q, want the fixed placeholder", got)
			}
		})
	}
}

func TestFormatUnknownCategory(t *testing.T) {
	f := NoopFormatter{}
	if got := f.Format(context.Background(), []Record{{Title: "X"}}, Category("bogus")); got != "" {
		t.Errorf("unknown category rendered %q, want empty", got)
	}
}

func TestFormatDeterministic(t *testing.T) {
	f := NoopFormatter{}
	records := []Record{
		{Title: "Entangled Futures", Authors: "J. Kim", Abstract: "A study.", Link: "https://example.org/p", Published: "2026-08-29"},
		{Title: "Cat States", Authors: "A. Ekert", Abstract: "Another."},
	}
	first := f.Format(context.Background(), records, CategoryArxiv)
	second := f.Format(context.Background(), records, CategoryArxiv)
	if first != second {
		t.Error("identical input produced different fragments")
	}
}

func TestFormatCapsAndPreservesOrder(t *testing.T) {
	f := NoopFormatter{}
	var records []Record
	for i := 0; i < 30; i++ {
		records = append(records, Record{Title: fmt.Sprintf("Headline %02d", i), Source: "Wire", Published: "2026-08-29"})
	}
	frag := f.Format(context.Background(), records, CategoryNews)

	if got := strings.Count(frag, "<article"); got != 15 {
		t.Fatalf("rendered %d articles, want the category maximum 15", got)
	}
	if strings.Contains(frag, "Headline 15") {
		t.Error("record past the cap was rendered")
	}
	first := strings.Index(frag, "Headline 00")
	last := strings.Index(frag, "Headline 14")
	if first < 0 || last < 0 || first > last {
		t.Errorf("input order not preserved: first at %d, last at %d", first, last)
	}
}

func TestRenderedCount(t *testing.T) {
	tests := []struct {
		cat     Category
		fetched int
		want    int
	}{
		{CategoryNews, 0, 0},
		{CategoryNews, 7, 7},
		{CategoryNews, 40, 15},
		{CategoryArxiv, 12, 10},
		{CategoryPlayers, 9, 8},
		{CategoryResearch, 6, 4},
		{Category("bogus"), 6, 0},
	}
	for _, tt := range tests {
		if got := renderedCount(tt.cat, tt.fetched); got != tt.want {
			t.Errorf("renderedCount(%s, %d) = %d, want %d", tt.cat, tt.fetched, got, tt.want)
		}
	}
}

func TestResearchArticleOptionalMeta(t *testing.T) {
	f := NoopFormatter{}

	bare := f.Format(context.Background(), []Record{{Title: "T", Authors: "A", Abstract: "Abs"}}, CategoryResearch)
	if strings.Contains(bare, "Submitted:") || strings.Contains(bare, "arXiv:") {
		t.Errorf("optional meta rendered for a record without date or identifier:\n%s", bare)
	}

	full := f.Format(context.Background(), []Record{{Title: "T", Authors: "A", Abstract: "Abs", Published: "2026-08-29", ArxivID: "2608.01234"}}, CategoryResearch)
	// The date span is part of the fixed block, single quotes included.
	if !strings.Contains(full, "<span class='date'>Submitted: 2026-08-29</span>") {
		t.Errorf("submission date missing or malformed:\n%s", full)
	}
	if !strings.Contains(full, "arXiv: 2608.01234") {
		t.Errorf("identifier missing:\n%s", full)
	}
	if !strings.Contains(full, metaSeparator) {
		t.Errorf("meta pieces not joined with %q:\n%s", metaSeparator, full)
	}
}

func TestHeadingLinkedOnlyWhenPresent(t *testing.T) {
	f := NoopFormatter{}

	linked := f.Format(context.Background(), []Record{{Title: "Linked", Link: "https://example.org/x", Source: "Wire", Published: "d"}}, CategoryNews)
	if !strings.Contains(linked, `<a href="https://example.org/x" target="_blank">Linked</a>`) {
		t.Errorf("heading not linked:\n%s", linked)
	}

	plain := f.Format(context.Background(), []Record{{Title: "Plain", Source: "Wire", Published: "d"}}, CategoryNews)
	if strings.Contains(plain, "<a ") {
		t.Errorf("linkless record rendered an anchor:\n%s", plain)
	}
}

func TestNewsArticleHasNoContentBlock(t *testing.T) {
	f := NoopFormatter{}
	frag := f.Format(context.Background(), []Record{{Title: "T", Source: "Wire", Published: "d"}}, CategoryNews)
	if strings.Contains(frag, `<div class="content">`) {
		t.Errorf("news article rendered a content block:\n%s", frag)
	}
}
