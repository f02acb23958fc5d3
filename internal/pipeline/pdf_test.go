package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFillAbstractFromPDFExtractionFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, "this is not a pdf document")
	}))
	defer srv.Close()

	p := testPipeline(DefaultConfig())
	row := ResearchRow{"Title": "Broken Link", "PDF Link": srv.URL}
	p.fillAbstractFromPDF(context.Background(), row)

	if calls != 1 {
		t.Errorf("PDF fetched %d times, want 1", calls)
	}
	// The row keeps its missing abstract and the normalizer default applies.
	if _, ok := row["Abstract"]; ok {
		t.Errorf("failed extraction wrote an abstract: %q", row["Abstract"])
	}
	if got := NormalizeResearch(row).Abstract; got != "Abstract not available" {
		t.Errorf("normalized abstract = %q, want the default", got)
	}
}

func TestFillAbstractFromPDFSkipsWhenNotNeeded(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	p := testPipeline(DefaultConfig())

	present := ResearchRow{"Title": "T", "Abstract": "Already here.", "PDF Link": srv.URL}
	p.fillAbstractFromPDF(context.Background(), present)
	if present["Abstract"] != "Already here." {
		t.Errorf("present abstract changed: %q", present["Abstract"])
	}

	noLink := ResearchRow{"Title": "T", "Abstract": "nan"}
	p.fillAbstractFromPDF(context.Background(), noLink)
	if _, ok := noLink["PDF Link"]; ok {
		t.Errorf("row without a link grew one: %v", noLink)
	}

	if calls != 0 {
		t.Errorf("rows needing no fill fetched the PDF %d times", calls)
	}
}

func TestCollectResearchRowsFillsOnlyWhenEnabled(t *testing.T) {
	var pdfCalls int
	pdfSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pdfCalls++
		io.WriteString(w, "still not a pdf")
	}))
	defer pdfSrv.Close()

	csvSrv := serveBody("Title,Abstract,PDF Link\nGap Paper,," + pdfSrv.URL + "\n")
	defer csvSrv.Close()

	cfg := DefaultConfig()
	p := testPipeline(cfg)
	records, err := p.collectResearchRows(context.Background(), csvSrv.URL, 3)
	if err != nil {
		t.Fatalf("collectResearchRows: %v", err)
	}
	if pdfCalls != 0 {
		t.Errorf("fill disabled but the PDF was fetched %d times", pdfCalls)
	}
	if records[0].Abstract != "Abstract not available" {
		t.Errorf("Abstract = %q, want the default", records[0].Abstract)
	}

	cfg.Sources.PDFAbstracts = true
	records, err = p.collectResearchRows(context.Background(), csvSrv.URL, 3)
	if err != nil {
		t.Fatalf("collectResearchRows with fill: %v", err)
	}
	if pdfCalls != 1 {
		t.Errorf("fill enabled but the PDF was fetched %d times, want 1", pdfCalls)
	}
	// Extraction failed, so the default still stands.
	if records[0].Abstract != "Abstract not available" {
		t.Errorf("Abstract = %q, want the default after a failed extraction", records[0].Abstract)
	}
}
