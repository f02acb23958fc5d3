// =============================================================================
// cmd/digest - CLI Entrypoint
// =============================================================================
//
// One invocation, one digest: parse flags, load .env, validate the
// configuration (fatal before any fetch), run the pipeline, print a summary.
//
// Typical invocations:
//
//	./digest                          collect, assemble, deploy
//	./digest -noDeploy                local output only
//	./digest -ai -sendEmail           AI summaries, mail the result
//	./digest -categories=news,arxiv_papers -noDeploy
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"quantum-digest/internal/logger"
	"quantum-digest/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: .env file not loaded: %v (using environment variables only)\n", err)
	}

	cfg := pipeline.ParseFlags()

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: opening log file: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		log.Errorf("configuration: %v", err)
		os.Exit(1)
	}

	res, err := pipeline.New(cfg, log).Run(context.Background())
	if err != nil {
		log.Errorf("run failed: %v", err)
		os.Exit(1)
	}

	log.Info("========================================")
	log.Infof("Digest complete in %s", res.Elapsed.Round(time.Millisecond))
	keys := make([]string, 0, len(res.Stats))
	for key := range res.Stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		log.Infof("  %s: %d", key, res.Stats[key])
	}
	log.Infof("Backup: %s", res.BackupPath)
	if res.DeployURL != "" {
		log.Infof("Live at: %s", res.DeployURL)
	}
	if len(res.Errors) > 0 {
		log.Warnf("%d issue(s) during the run:", len(res.Errors))
		for _, e := range res.Errors {
			log.Warnf("  %s", e)
		}
	}
}
