package pipeline

import (
	"strings"
	"testing"
	"time"
)

var assembleNow = time.Date(2026, time.August, 30, 7, 45, 0, 0, time.UTC)

func TestAssembleDigestAllPlaceholders(t *testing.T) {
	page, err := AssembleDigest(nil, nil, assembleNow)
	if err != nil {
		t.Fatalf("AssembleDigest: %v", err)
	}

	for _, want := range []string{
		"<title>Quantum Digest - August 30, 2026</title>",
		"August 30, 2026 • 07:45",
		"<strong>News items:</strong> 0 articles gathered",
		"<strong>Technology papers:</strong> 0 papers fetched",
		"<strong>Company papers:</strong> 0 papers from major players",
		"<strong>Highlighted papers:</strong> 0 papers collected",
		"<strong>Total sources:</strong> 5 data feeds processed",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	for _, spec := range categorySpecs {
		if !strings.Contains(page, spec.Placeholder) {
			t.Errorf("page missing placeholder for %s", spec.ID)
		}
	}
}

func TestAssembleDigestEmbedsFragments(t *testing.T) {
	frag := "<article class=\"article\">\n  <h3>Qubit milestone</h3>\n</article>\n"
	page, err := AssembleDigest(
		map[Category]string{CategoryNews: frag},
		map[Category]int{CategoryNews: 1},
		assembleNow,
	)
	if err != nil {
		t.Fatalf("AssembleDigest: %v", err)
	}

	if !strings.Contains(page, "Qubit milestone") {
		t.Error("news fragment not embedded")
	}
	if !strings.Contains(page, "<strong>News items:</strong> 1 articles gathered") {
		t.Error("news count not reported")
	}
	newsSpec, _ := specFor(CategoryNews)
	if strings.Contains(page, newsSpec.Placeholder) {
		t.Error("news placeholder rendered alongside the fragment")
	}
	researchSpec, _ := specFor(CategoryResearch)
	if !strings.Contains(page, researchSpec.Placeholder) {
		t.Error("missing categories should fall back to their placeholder")
	}
}

func TestAssembleDigestSectionOrder(t *testing.T) {
	page, err := AssembleDigest(nil, nil, assembleNow)
	if err != nil {
		t.Fatalf("AssembleDigest: %v", err)
	}
	headings := []string{"News Items", "Technology Papers", "Company Papers", "Highlighted Papers"}
	prev := -1
	for _, h := range headings {
		idx := strings.Index(page, h)
		if idx < 0 {
			t.Fatalf("page missing section heading %q", h)
		}
		if idx < prev {
			t.Errorf("section %q out of order", h)
		}
		prev = idx
	}
}

func TestValidateDigestRejectsTruncatedPage(t *testing.T) {
	page, err := AssembleDigest(nil, nil, assembleNow)
	if err != nil {
		t.Fatalf("AssembleDigest: %v", err)
	}
	if err := validateDigest(page); err != nil {
		t.Errorf("complete page rejected: %v", err)
	}

	cut := strings.Index(page, `<div class="stats">`)
	if cut < 0 {
		t.Fatal("page has no stats card to truncate at")
	}
	if err := validateDigest(page[:cut]); err == nil {
		t.Error("truncated page passed validation")
	}
}
