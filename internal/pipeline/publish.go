// =============================================================================
// publish.go - Static-Site Deploy
// =============================================================================
//
// NetlifyDeployer zips the deploy folder in memory, posts it to the deploy
// API, and polls the deploy until it goes live. A deploy that is still
// processing when the watcher times out counts as delivered; Netlify finishes
// it on its own and the digest is already persisted locally either way.
//
// =============================================================================
package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// NetlifyDeployer ships a folder of static files to one Netlify site.
type NetlifyDeployer struct {
	cfg    DeployConfig
	client *http.Client
	log    *logrus.Logger
}

func NewNetlifyDeployer(cfg DeployConfig, log *logrus.Logger) *NetlifyDeployer {
	return &NetlifyDeployer{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		log:    log,
	}
}

// netlifyDeploy is the slice of the deploy resource we read.
type netlifyDeploy struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	SSLURL string `json:"ssl_url"`
	URL    string `json:"url"`
}

// Deploy uploads the folder and waits for the deploy to go live. Returns the
// site URL; a non-nil error means the deploy definitively failed.
func (d *NetlifyDeployer) Deploy(ctx context.Context, folder string) (string, error) {
	archive, err := zipFolder(folder)
	if err != nil {
		return "", fmt.Errorf("packaging deploy folder: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sites/%s/deploys", d.cfg.APIBase, d.cfg.SiteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(archive))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+d.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/zip")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deploy upload: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("deploy upload: status %s: %s", resp.Status, clipRunes(string(bodyBytes), 300))
	}

	var dep netlifyDeploy
	if err := json.Unmarshal(bodyBytes, &dep); err != nil {
		return "", fmt.Errorf("deploy response parse: %w", err)
	}
	if dep.ID == "" {
		return "", fmt.Errorf("deploy response carries no deploy id")
	}

	url := dep.SSLURL
	if url == "" {
		url = dep.URL
	}
	d.log.Infof("deploy %s created, state %s", dep.ID, dep.State)

	if err := d.waitForLive(ctx, dep.ID); err != nil {
		return "", err
	}
	return url, nil
}

// waitForLive polls the deploy until it reaches a terminal state or the wait
// budget runs out. Only an explicit error/failed state reports failure; a
// status-check error or timeout logs a warning and assumes the deploy will
// complete.
func (d *NetlifyDeployer) waitForLive(ctx context.Context, deployID string) error {
	deadline := time.Now().Add(d.cfg.MaxWait)
	for {
		if time.Now().After(deadline) {
			d.log.Warnf("deploy %s not ready after %s, assuming it completes on its own", deployID, d.cfg.MaxWait)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.cfg.PollInterval):
		}

		state, err := d.deployState(ctx, deployID)
		if err != nil {
			d.log.Warnf("deploy %s status check: %v", deployID, err)
			return nil
		}
		switch state {
		case "ready":
			d.log.Infof("deploy %s is live", deployID)
			return nil
		case "error", "failed":
			return fmt.Errorf("deploy %s ended in state %q", deployID, state)
		default:
			d.log.Debugf("deploy %s state %s, waiting", deployID, state)
		}
	}
}

func (d *NetlifyDeployer) deployState(ctx context.Context, deployID string) (string, error) {
	endpoint := fmt.Sprintf("%s/deploys/%s", d.cfg.APIBase, deployID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+d.cfg.AccessToken)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %s", resp.Status)
	}

	var dep netlifyDeploy
	if err := json.NewDecoder(resp.Body).Decode(&dep); err != nil {
		return "", err
	}
	return dep.State, nil
}

// zipFolder packs every file under folder into an in-memory zip, names
// relative to the folder with forward slashes.
func zipFolder(folder string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := filepath.WalkDir(folder, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
