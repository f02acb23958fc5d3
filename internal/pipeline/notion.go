// =============================================================================
// notion.go - Run Archive
// =============================================================================
//
// Optional archive of run metadata to a Notion "Digest Runs" database: one
// page per run carrying the per-category counts, how many sources succeeded,
// the deploy URL, and a status select. The database is created once under the
// configured parent page; its ID is cached next to the output artifacts so
// later runs reuse it.
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jomei/notionapi"
	"github.com/sirupsen/logrus"
)

// notionCacheFile holds the archive database ID between runs.
const notionCacheFile = ".notion_digest_db.json"

// NotionArchiver records one page per digest run.
type NotionArchiver struct {
	client       *notionapi.Client
	parentPageID string
	cachePath    string
	log          *logrus.Logger
	dbID         notionapi.DatabaseID
}

func NewNotionArchiver(cfg NotionConfig, outputDir string, log *logrus.Logger) (*NotionArchiver, error) {
	if cfg.Token == "" {
		return nil, ErrMissingNotionToken
	}
	if cfg.ParentPageID == "" {
		return nil, ErrMissingNotionParent
	}
	return &NotionArchiver{
		client:       notionapi.NewClient(notionapi.Token(cfg.Token)),
		parentPageID: cfg.ParentPageID,
		cachePath:    filepath.Join(outputDir, notionCacheFile),
		log:          log,
	}, nil
}

type notionCache struct {
	DatabaseID string `json:"databaseId"`
}

// ensureDatabase loads the cached database ID or creates the database under
// the parent page on first use.
func (na *NotionArchiver) ensureDatabase(ctx context.Context) error {
	if na.dbID != "" {
		return nil
	}

	var cache notionCache
	if err := readJSONFile(na.cachePath, &cache); err == nil && cache.DatabaseID != "" {
		na.dbID = notionapi.DatabaseID(cache.DatabaseID)
		return nil
	}

	req := &notionapi.DatabaseCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(na.parentPageID),
		},
		Title: []notionapi.RichText{
			{Text: &notionapi.Text{Content: "Digest Runs"}},
		},
		Properties: notionapi.PropertyConfigs{
			"Run": notionapi.TitlePropertyConfig{
				Type: notionapi.PropertyConfigTypeTitle,
			},
			"News items":         numberPropertyConfig(),
			"Technology papers":  numberPropertyConfig(),
			"Company papers":     numberPropertyConfig(),
			"Highlighted papers": numberPropertyConfig(),
			"Sources OK":         numberPropertyConfig(),
			"Deploy URL": notionapi.URLPropertyConfig{
				Type: notionapi.PropertyConfigTypeURL,
			},
			"Status": notionapi.SelectPropertyConfig{
				Type: notionapi.PropertyConfigTypeSelect,
				Select: notionapi.Select{
					Options: []notionapi.Option{
						{Name: "deployed", Color: notionapi.ColorGreen},
						{Name: "local-only", Color: notionapi.ColorYellow},
						{Name: "degraded", Color: notionapi.ColorRed},
					},
				},
			},
		},
	}

	db, err := na.client.Database.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("creating Notion database: %w", err)
	}
	na.dbID = notionapi.DatabaseID(db.ID)
	na.log.Infof("Notion run database created: %s", db.ID)

	if err := writeJSONFile(na.cachePath, notionCache{DatabaseID: string(db.ID)}); err != nil {
		na.log.Warnf("caching Notion database ID: %v", err)
	}
	return nil
}

func numberPropertyConfig() notionapi.NumberPropertyConfig {
	return notionapi.NumberPropertyConfig{
		Type: notionapi.PropertyConfigTypeNumber,
		Number: notionapi.NumberFormat{
			Format: notionapi.FormatNumber,
		},
	}
}

// ArchiveRun writes one page describing the run.
func (na *NotionArchiver) ArchiveRun(ctx context.Context, res *RunResult, now time.Time) error {
	if err := na.ensureDatabase(ctx); err != nil {
		return err
	}

	status := "local-only"
	switch {
	case res.DeployURL != "":
		status = "deployed"
	case len(res.Errors) > 0:
		status = "degraded"
	}

	properties := notionapi.Properties{
		"Run": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Text: &notionapi.Text{Content: now.Format("2006-01-02 15:04")}},
			},
		},
		"News items":         numberProperty(res.Stats["news_items"]),
		"Technology papers":  numberProperty(res.Stats["arxiv_papers"]),
		"Company papers":     numberProperty(res.Stats["arxiv_players_papers"]),
		"Highlighted papers": numberProperty(res.Stats["research_papers"]),
		"Sources OK":         numberProperty(res.SourcesOK),
		"Status": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: status},
		},
	}
	if res.DeployURL != "" {
		properties["Deploy URL"] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  res.DeployURL,
		}
	}

	_, err := na.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: na.dbID,
		},
		Properties: properties,
	})
	if err != nil {
		return fmt.Errorf("archiving run: %w", err)
	}
	return nil
}

func numberProperty(n int) notionapi.NumberProperty {
	return notionapi.NumberProperty{
		Type:   notionapi.PropertyTypeNumber,
		Number: float64(n),
	}
}
