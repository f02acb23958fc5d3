// =============================================================================
// Lambda: digest
// =============================================================================
//
// Scheduled entrypoint: build the configuration purely from environment
// variables, run one digest, return stats and the deploy URL. When the run
// fails and email is configured, an error-notification mail goes out before
// the error is returned.
//
// Environment variables:
//   - NETLIFY_ACCESS_TOKEN / NETLIFY_SITE_ID  deploy credentials (required unless DEPLOY=false)
//   - OUTPUT_DIR       artifact directory (default /tmp/output; only /tmp is writable)
//   - DEPLOY           deploy to Netlify (default true)
//   - AI_SUMMARY       summarize sections with the AI model (default false)
//   - SEND_EMAIL       mail the digest, and failures, via SMTP (default false)
//   - NOTION_ARCHIVE   archive run metadata to Notion (default false)
//   - PDF_ABSTRACTS    fill missing spreadsheet abstracts from linked PDFs (default false)
//   - CATEGORIES       comma-separated categories (default all)
//   - LOG_LEVEL        debug|info|warn|error (default info)
//
// =============================================================================
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"quantum-digest/internal/logger"
	"quantum-digest/internal/pipeline"
)

// Response is the Lambda invocation result. Body is JSON.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type responseBody struct {
	Message   string         `json:"message"`
	Stats     map[string]int `json:"stats,omitempty"`
	DeployURL string         `json:"deployUrl,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}

// loadConfig builds the run configuration from environment variables only;
// there are no flags in Lambda.
func loadConfig() *pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Output.Dir = envString("OUTPUT_DIR", "/tmp/output")
	cfg.Deploy.Enabled = envBool("DEPLOY", true)
	cfg.Enrich.Enabled = envBool("AI_SUMMARY", false)
	cfg.Email.Enabled = envBool("SEND_EMAIL", false)
	cfg.Notion.Enabled = envBool("NOTION_ARCHIVE", false)
	cfg.Sources.PDFAbstracts = envBool("PDF_ABSTRACTS", false)
	cfg.CategoriesRaw = os.Getenv("CATEGORIES")
	cfg.ApplyEnv()
	return cfg
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

// Handler runs one digest per invocation.
func Handler(ctx context.Context, event any) (Response, error) {
	cfg := loadConfig()

	log, err := logger.New(cfg.Log.Level, "")
	if err != nil {
		return errResponse(500, err), err
	}

	if err := cfg.Validate(); err != nil {
		log.Errorf("configuration: %v", err)
		return errResponse(400, err), err
	}

	res, err := pipeline.New(cfg, log).Run(ctx)
	if err != nil {
		log.Errorf("run failed: %v", err)
		notifyFailure(ctx, cfg, log, err, res)
		return errResponse(500, err), err
	}

	body := responseBody{
		Message:   fmt.Sprintf("digest generated, %d categories populated", len(res.Stats)),
		Stats:     res.Stats,
		DeployURL: res.DeployURL,
		Errors:    res.Errors,
	}
	b, _ := json.Marshal(body)
	return Response{StatusCode: 200, Body: string(b)}, nil
}

func errResponse(code int, err error) Response {
	b, _ := json.Marshal(responseBody{Message: err.Error()})
	return Response{StatusCode: code, Body: string(b)}
}

// notifyFailure mails the run error when email delivery is configured.
func notifyFailure(ctx context.Context, cfg *pipeline.Config, log *logrus.Logger, runErr error, res *pipeline.RunResult) {
	if !cfg.Email.Enabled {
		return
	}
	sender, err := pipeline.NewEmailSender(cfg.Email, log)
	if err != nil {
		log.Warnf("error notification: %v", err)
		return
	}
	var sourceErrors []string
	if res != nil {
		sourceErrors = res.Errors
	}
	if err := sender.SendErrorNotification(ctx, runErr, sourceErrors); err != nil {
		log.Warnf("error notification email: %v", err)
	}
}

func main() {
	lambda.Start(Handler)
}
