// =============================================================================
// run.go - Run Orchestration
// =============================================================================
//
// One Pipeline executes one digest run: collect every active source in order,
// format each category, assemble the page, persist it locally, then hand it
// to the optional deliveries. Source and delivery failures degrade and are
// recorded; only assembly and local-write failures abort the run, so a digest
// either reaches disk whole or not at all.
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Pipeline carries everything one run needs: the explicit configuration, the
// logger, the shared fetch client, and the configured formatting strategy.
// Constructed once at startup, passed through the run, discarded at exit.
type Pipeline struct {
	cfg       *Config
	log       *logrus.Logger
	client    *http.Client
	formatter Formatter

	arxivDelay time.Duration
}

// New builds a Pipeline from a validated configuration.
func New(cfg *Config, log *logrus.Logger) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		log:        log,
		client:     newFetchClient(cfg.HTTP),
		formatter:  NoopFormatter{},
		arxivDelay: arxivRateLimit,
	}
	if cfg.Enrich.Enabled {
		p.formatter = NewAIEnrichedFormatter(cfg.Enrich, log)
	}
	return p
}

// RunResult is everything one run produced.
type RunResult struct {
	Stats        map[string]int `json:"stats"`
	Digest       string         `json:"-"`
	BackupPath   string         `json:"backupPath"`
	DeployFolder string         `json:"deployFolder"`
	DeployURL    string         `json:"deployUrl,omitempty"`
	SourcesOK    int            `json:"sourcesOk"`
	Errors       []string       `json:"errors,omitempty"`
	Elapsed      time.Duration  `json:"elapsed"`
}

// Run executes one digest run. The returned error is fatal (assembly or local
// write failure); everything recoverable lands in RunResult.Errors instead.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	active, err := p.cfg.ActiveCategories()
	if err != nil {
		return nil, err
	}

	collected := p.collectSources(ctx, active)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragments := make(map[Category]string)
	counts := make(map[Category]int)
	stats := make(map[string]int)
	rendered := make(map[string][]Record)
	for _, cat := range active {
		records := collected.Records[cat]
		if len(records) == 0 {
			continue
		}
		spec, _ := specFor(cat)
		fragments[cat] = p.formatter.Format(ctx, records, cat)
		counts[cat] = renderedCount(cat, len(records))
		stats[spec.StatsKey] = counts[cat]
		rendered[string(cat)] = capRecords(records, spec.MaxItems)
	}

	now := time.Now()
	page, err := AssembleDigest(fragments, counts, now)
	if err != nil {
		return nil, err
	}

	res := &RunResult{
		Stats:     stats,
		Digest:    page,
		SourcesOK: collected.Attempted - len(collected.Errors),
		Errors:    collected.Errors,
	}

	deployFolder, err := p.writeDeployFolder(page)
	if err != nil {
		return nil, err
	}
	res.DeployFolder = deployFolder

	backupPath := filepath.Join(p.cfg.Output.Dir, "digest_backup_"+now.Format("20060102_150405")+".html")
	if err := os.WriteFile(backupPath, []byte(page), 0o644); err != nil {
		return nil, fmt.Errorf("writing backup: %w", err)
	}
	res.BackupPath = backupPath
	p.log.Infof("digest written: %s", backupPath)

	if p.cfg.Output.DumpJSON != "" {
		dump := struct {
			Stats   map[string]int      `json:"stats"`
			Records map[string][]Record `json:"records"`
		}{stats, rendered}
		if err := writeJSONFile(p.cfg.Output.DumpJSON, dump); err != nil {
			p.log.Warnf("writing JSON dump: %v", err)
			res.Errors = append(res.Errors, fmt.Sprintf("json dump: %v", err))
		}
	}

	if p.cfg.Deploy.Enabled {
		url, err := NewNetlifyDeployer(p.cfg.Deploy, p.log).Deploy(ctx, deployFolder)
		if err != nil {
			p.log.Errorf("deploy failed: %v (digest kept locally)", err)
			res.Errors = append(res.Errors, fmt.Sprintf("deploy: %v", err))
		} else {
			res.DeployURL = url
			p.log.Infof("deployed: %s", url)
		}
	}

	if p.cfg.Email.Enabled {
		sender, err := NewEmailSender(p.cfg.Email, p.log)
		if err == nil {
			err = sender.SendDigest(ctx, page, now)
		}
		if err != nil {
			p.log.Errorf("email delivery failed: %v", err)
			res.Errors = append(res.Errors, fmt.Sprintf("email: %v", err))
		}
	}

	if p.cfg.Notion.Enabled {
		archiver, err := NewNotionArchiver(p.cfg.Notion, p.cfg.Output.Dir, p.log)
		if err == nil {
			err = archiver.ArchiveRun(ctx, res, now)
		}
		if err != nil {
			p.log.Errorf("notion archive failed: %v", err)
			res.Errors = append(res.Errors, fmt.Sprintf("notion: %v", err))
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// writeDeployFolder (re)populates <output>/deploy with the static file set:
// the page, the SPA redirect rule, and a permissive robots.txt. Regular files
// from previous runs are removed first so the uploaded bundle never carries
// stale artifacts.
func (p *Pipeline) writeDeployFolder(page string) (string, error) {
	folder := filepath.Join(p.cfg.Output.Dir, "deploy")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("creating deploy folder: %w", err)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", fmt.Errorf("reading deploy folder: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(folder, entry.Name())); err != nil {
			return "", fmt.Errorf("clearing deploy folder: %w", err)
		}
	}

	files := map[string]string{
		"index.html": page,
		"_redirects": "/*    /index.html   200\n",
		"robots.txt": "User-agent: *\nAllow: /\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(folder, name), []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return folder, nil
}
