package pipeline

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunEndToEnd(t *testing.T) {
	longAbstract := strings.Repeat("a", 310)
	csvBody := "Title,Authors,Abstract,PDF Link,Submission Date,arXiv ID\n" +
		"Entangled Futures,," + longAbstract + ",https://example.org/p.pdf,2026-08-29T10:00:00,2608.01234\n"

	csvSrv := serveBody(csvBody)
	defer csvSrv.Close()
	failSrv := serveStatus(http.StatusInternalServerError)
	defer failSrv.Close()
	atomSrv := serveBody(sampleArxivAtom)
	defer atomSrv.Close()
	newsSrv := serveBody(sampleNewsRSS)
	defer newsSrv.Close()

	cfg := DefaultConfig()
	cfg.Sources.ResearchListURL = csvSrv.URL
	cfg.Sources.ResearchBriefURL = failSrv.URL
	cfg.Sources.ArxivURL = atomSrv.URL
	cfg.Sources.ArxivPlayersURL = atomSrv.URL
	cfg.Sources.NewsURL = newsSrv.URL
	cfg.Deploy.Enabled = false
	cfg.Output.Dir = t.TempDir()
	cfg.Output.DumpJSON = filepath.Join(cfg.Output.Dir, "records.json")

	// A survivor from a previous run; the deploy folder must not carry it.
	deployFolder := filepath.Join(cfg.Output.Dir, "deploy")
	if err := os.MkdirAll(deployFolder, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deployFolder, "stale.txt"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := testPipeline(cfg)
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "research_brief") {
		t.Errorf("Errors = %v, want only the research_brief failure", res.Errors)
	}
	if res.SourcesOK != 4 {
		t.Errorf("SourcesOK = %d, want 4", res.SourcesOK)
	}
	if res.Stats["research_papers"] != 1 {
		t.Errorf("research_papers stat = %d, want 1", res.Stats["research_papers"])
	}
	if res.Stats["news_items"] != 3 {
		t.Errorf("news_items stat = %d, want 3", res.Stats["news_items"])
	}
	if _, ok := res.Stats["bogus"]; len(res.Stats) != 4 || ok {
		t.Errorf("Stats keys = %v, want one per non-empty category", res.Stats)
	}

	// Missing authors fall back, long abstracts are cut at the threshold.
	if !strings.Contains(res.Digest, "Research Team") {
		t.Error("digest missing the authors default")
	}
	if !strings.Contains(res.Digest, strings.Repeat("a", 300)+"...") {
		t.Error("digest missing the truncated abstract")
	}
	if strings.Contains(res.Digest, strings.Repeat("a", 301)) {
		t.Error("abstract kept runes past the threshold")
	}
	if !strings.Contains(res.Digest, "IBM unveils 2,000-qubit roadmap") {
		t.Error("digest missing the news headline")
	}

	index, err := os.ReadFile(filepath.Join(res.DeployFolder, "index.html"))
	if err != nil {
		t.Fatalf("reading index.html: %v", err)
	}
	if string(index) != res.Digest {
		t.Error("index.html differs from the assembled digest")
	}
	redirects, err := os.ReadFile(filepath.Join(res.DeployFolder, "_redirects"))
	if err != nil {
		t.Fatalf("reading _redirects: %v", err)
	}
	if string(redirects) != "/*    /index.html   200\n" {
		t.Errorf("_redirects = %q", redirects)
	}
	if _, err := os.Stat(filepath.Join(res.DeployFolder, "stale.txt")); !os.IsNotExist(err) {
		t.Error("stale file survived the deploy folder rewrite")
	}

	backup, err := os.ReadFile(res.BackupPath)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(backup) != res.Digest {
		t.Error("backup differs from the assembled digest")
	}
	if !strings.HasPrefix(filepath.Base(res.BackupPath), "digest_backup_") {
		t.Errorf("backup name = %q", filepath.Base(res.BackupPath))
	}

	dump, err := os.ReadFile(cfg.Output.DumpJSON)
	if err != nil {
		t.Fatalf("reading JSON dump: %v", err)
	}
	if !strings.Contains(string(dump), `"research_papers"`) {
		t.Errorf("JSON dump missing stats: %s", dump)
	}
}

func TestRunAllSourcesDownStillWritesDigest(t *testing.T) {
	failSrv := serveStatus(http.StatusServiceUnavailable)
	defer failSrv.Close()

	cfg := DefaultConfig()
	cfg.Sources.ResearchListURL = failSrv.URL
	cfg.Sources.ResearchBriefURL = failSrv.URL
	cfg.Sources.ArxivURL = failSrv.URL
	cfg.Sources.ArxivPlayersURL = failSrv.URL
	cfg.Sources.NewsURL = failSrv.URL
	cfg.Deploy.Enabled = false
	cfg.Output.Dir = t.TempDir()

	p := testPipeline(cfg)
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run with every source down must still produce a page, got %v", err)
	}
	if len(res.Errors) != len(sourceRegistry) {
		t.Errorf("Errors = %d, want %d", len(res.Errors), len(sourceRegistry))
	}
	if res.SourcesOK != 0 {
		t.Errorf("SourcesOK = %d, want 0", res.SourcesOK)
	}
	if len(res.Stats) != 0 {
		t.Errorf("Stats = %v, want empty", res.Stats)
	}
	for _, spec := range categorySpecs {
		if !strings.Contains(res.Digest, spec.Placeholder) {
			t.Errorf("digest missing placeholder for %s", spec.ID)
		}
	}
	if _, err := os.Stat(res.BackupPath); err != nil {
		t.Errorf("backup not written: %v", err)
	}
}

func TestRunDeployFailureIsNonFatal(t *testing.T) {
	newsSrv := serveBody(sampleNewsRSS)
	defer newsSrv.Close()
	downSrv := serveStatus(http.StatusServiceUnavailable)
	defer downSrv.Close()
	rejectSrv := serveStatus(http.StatusUnauthorized)
	defer rejectSrv.Close()

	cfg := DefaultConfig()
	cfg.Sources.NewsURL = newsSrv.URL
	cfg.Sources.ResearchListURL = downSrv.URL
	cfg.Sources.ResearchBriefURL = downSrv.URL
	cfg.Sources.ArxivURL = downSrv.URL
	cfg.Sources.ArxivPlayersURL = downSrv.URL
	cfg.Output.Dir = t.TempDir()
	cfg.Deploy.Enabled = true
	cfg.Deploy.AccessToken = "tok"
	cfg.Deploy.SiteID = "site123"
	cfg.Deploy.APIBase = rejectSrv.URL

	p := testPipeline(cfg)
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("failed deploy must not abort the run, got %v", err)
	}
	if res.DeployURL != "" {
		t.Errorf("DeployURL = %q, want empty after a failed deploy", res.DeployURL)
	}
	var deployErr bool
	for _, e := range res.Errors {
		if strings.HasPrefix(e, "deploy:") {
			deployErr = true
		}
	}
	if !deployErr {
		t.Errorf("Errors = %v, want a recorded deploy failure", res.Errors)
	}
	if _, err := os.Stat(res.BackupPath); err != nil {
		t.Errorf("digest not kept locally: %v", err)
	}
}

func TestRunCategorySubset(t *testing.T) {
	newsSrv := serveBody(sampleNewsRSS)
	defer newsSrv.Close()

	cfg := DefaultConfig()
	cfg.Sources.NewsURL = newsSrv.URL
	// Nothing else is active, so nothing else may be fetched.
	cfg.Sources.ResearchListURL = "http://127.0.0.1:1/csv"
	cfg.Sources.ResearchBriefURL = "http://127.0.0.1:1/csv"
	cfg.Sources.ArxivURL = "http://127.0.0.1:1/atom"
	cfg.Sources.ArxivPlayersURL = "http://127.0.0.1:1/atom"
	cfg.Deploy.Enabled = false
	cfg.Output.Dir = t.TempDir()
	cfg.CategoriesRaw = "news"

	p := testPipeline(cfg)
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Errors = %v, want none for inactive sources", res.Errors)
	}
	if res.SourcesOK != 1 {
		t.Errorf("SourcesOK = %d, want 1", res.SourcesOK)
	}
	if res.Stats["news_items"] != 3 {
		t.Errorf("news_items stat = %d, want 3", res.Stats["news_items"])
	}
	arxivSpec, _ := specFor(CategoryArxiv)
	if !strings.Contains(res.Digest, arxivSpec.Placeholder) {
		t.Error("inactive category should render its placeholder")
	}
}
