// =============================================================================
// config.go - Pipeline Configuration
// =============================================================================
//
// One explicit Config object carries everything a run needs. It is built once
// at startup (flags + environment for the CLI, environment only for Lambda),
// validated before any fetch happens, and passed into the pipeline; nothing
// reads environment variables after startup.
//
// Config groups:
//   - SourceConfig: feed URLs and per-source take limits (YAML-overridable)
//   - HTTPConfig:   shared fetch client settings
//   - OutputConfig: local artifact locations
//   - DeployConfig: static-site publish target
//   - EmailConfig:  SMTP delivery
//   - EnrichConfig: AI summarization
//   - NotionConfig: run archive
//   - LogConfig:    level and optional log file
//
// =============================================================================
package pipeline

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration errors are fatal at startup, before any fetch. They are
// distinct from runtime fetch or publish failures, which the run absorbs.
var (
	ErrMissingNetlifyToken  = errors.New("NETLIFY_ACCESS_TOKEN is not set")
	ErrMissingNetlifySite   = errors.New("NETLIFY_SITE_ID is not set")
	ErrMissingEmailUser     = errors.New("EMAIL_USER is not set")
	ErrMissingEmailPassword = errors.New("EMAIL_PASSWORD is not set")
	ErrMissingRecipient     = errors.New("RECIPIENT_EMAIL is not set")
	ErrMissingOpenAIKey     = errors.New("OPENAI_API_KEY is not set")
	ErrMissingNotionToken   = errors.New("NOTION_API_KEY is not set")
	ErrMissingNotionParent  = errors.New("NOTION_PARENT_PAGE_ID is not set")
)

// Default source endpoints. The arXiv queries carry their search expression
// and result cap in the URL; the players query ORs the major hardware vendors
// and platform technologies.
const (
	defaultResearchListURL  = "https://docs.google.com/spreadsheets/d/e/2PACX-1vTjka1LpVvM74sNMqcZCxh0WsQXi8IUbIknLEojpmSysEeQUG2BStQNGwdgKD9Q9jkzAAtDmcMrLYG5/pub?output=csv"
	defaultResearchBriefURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQQGTFKG6AKhJVLBujShiHC6vtQ9gbN5TSnrcEqzElOsCJTkRdPYXNThJJQNhHSY68Z0-zfiJffhz64/pub?output=csv"
	defaultArxivURL         = "https://export.arxiv.org/api/query?search_query=ti:%22quantum%20computing%22&sortBy=lastUpdatedDate&sortOrder=descending&max_results=10"
	defaultArxivPlayersURL  = "https://export.arxiv.org/api/query?search_query=all%3A%22Xanadu%22+OR+all%3A%22IBM%22+OR+all%3A%22Google%22+OR+all%3A%22Rigetti%22+OR+all%3A%22Fujitsu%22+OR+all%3A%22Alice+%26+Bob%22+OR+all%3A%22Intel%22+OR+all%3A%22QuEra%22+OR+all%3A%22Pasqal%22+OR+all%3A%22Atom+Computing%22+OR+all%3A%22Infleqtion%22+OR+all%3A%22IonQ%22+OR+all%3A%22Quantinuum%22+OR+all%3A%22Alpine+Quantum+Technologies%22+OR+all%3A%22photonic+networks%22+OR+all%3A%22superconducting+qubits%22+OR+all%3A%22spin+qubits%22+OR+all%3A%22neutral+atoms%22+OR+all%3A%22trapped+ions%22&sortBy=lastUpdatedDate&sortOrder=descending&max_results=8"
	defaultNewsURL          = "https://news.google.com/rss/search?q=quantum+computing"
)

// Config is the full, explicit configuration of one digest run.
type Config struct {
	Sources SourceConfig
	HTTP    HTTPConfig
	Output  OutputConfig
	Deploy  DeployConfig
	Email   EmailConfig
	Enrich  EnrichConfig
	Notion  NotionConfig
	Log     LogConfig

	// CategoriesRaw is the comma-separated category list from -categories.
	// Empty means every category.
	CategoriesRaw string
}

// SourceConfig holds the feed endpoints and per-source take limits. It can be
// overridden from a YAML file; omitted keys keep their defaults.
type SourceConfig struct {
	ResearchListURL   string `yaml:"research_list_url"`
	ResearchBriefURL  string `yaml:"research_brief_url"`
	ArxivURL          string `yaml:"arxiv_url"`
	ArxivPlayersURL   string `yaml:"arxiv_players_url"`
	NewsURL           string `yaml:"news_url"`
	ResearchListTake  int    `yaml:"research_list_take"`
	ResearchBriefTake int    `yaml:"research_brief_take"`
	ArxivLimit        int    `yaml:"arxiv_limit"`
	PlayersLimit      int    `yaml:"players_limit"`
	NewsLimit         int    `yaml:"news_limit"`

	// PDFAbstracts enables filling a missing spreadsheet abstract from the
	// text of the linked PDF.
	PDFAbstracts bool `yaml:"pdf_abstracts"`
}

// HTTPConfig holds shared settings for the fetch client.
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// OutputConfig holds local artifact locations.
type OutputConfig struct {
	// Dir receives the deploy folder and timestamped backups.
	Dir string

	// DumpJSON, when set, receives the normalized records and stats as JSON.
	DumpJSON string
}

// DeployConfig holds the static-site publish target.
type DeployConfig struct {
	Enabled      bool
	AccessToken  string
	SiteID       string
	APIBase      string
	PollInterval time.Duration
	MaxWait      time.Duration
}

// EmailConfig holds SMTP delivery settings.
type EmailConfig struct {
	Enabled    bool
	Sender     string
	Password   string
	Recipient  string
	SMTPServer string
	SMTPPort   string
}

// EnrichConfig holds the AI summarization settings.
type EnrichConfig struct {
	Enabled     bool
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	APIBase     string
}

// NotionConfig holds the run-archive settings.
type NotionConfig struct {
	Enabled      bool
	Token        string
	ParentPageID string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	File  string
}

// DefaultConfig returns the full default configuration: all sources at their
// standard endpoints and limits, deploy enabled, every optional delivery off.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourceConfig{
			ResearchListURL:   defaultResearchListURL,
			ResearchBriefURL:  defaultResearchBriefURL,
			ArxivURL:          defaultArxivURL,
			ArxivPlayersURL:   defaultArxivPlayersURL,
			NewsURL:           defaultNewsURL,
			ResearchListTake:  3,
			ResearchBriefTake: 2,
			ArxivLimit:        10,
			PlayersLimit:      8,
			NewsLimit:         15,
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "Mozilla/5.0 (compatible; quantum-digest/1.0; +https://example.invalid)",
		},
		Output: OutputConfig{
			Dir: "output",
		},
		Deploy: DeployConfig{
			Enabled:      true,
			APIBase:      "https://api.netlify.com/api/v1",
			PollInterval: 10 * time.Second,
			MaxWait:      300 * time.Second,
		},
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   "587",
		},
		Enrich: EnrichConfig{
			Model:       "gpt-3.5-turbo",
			MaxTokens:   1500,
			Temperature: 0.3,
			APIBase:     "https://api.openai.com/v1",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv fills credentials and logging overrides from the environment.
// Flags and YAML decide behavior; the environment only supplies secrets and
// the log destination, so a run never embeds credentials in its command line.
func (c *Config) ApplyEnv() {
	c.Deploy.AccessToken = os.Getenv("NETLIFY_ACCESS_TOKEN")
	c.Deploy.SiteID = os.Getenv("NETLIFY_SITE_ID")

	c.Email.Sender = os.Getenv("EMAIL_USER")
	c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	c.Email.Recipient = os.Getenv("RECIPIENT_EMAIL")
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		c.Email.SMTPServer = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		c.Email.SMTPPort = v
	}

	c.Enrich.APIKey = os.Getenv("OPENAI_API_KEY")

	c.Notion.Token = os.Getenv("NOTION_API_KEY")
	c.Notion.ParentPageID = os.Getenv("NOTION_PARENT_PAGE_ID")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// ParseFlags builds the CLI configuration: defaults, then flags, then
// environment credentials.
func ParseFlags() *Config {
	cfg := DefaultConfig()

	var noDeploy bool
	flag.BoolVar(&noDeploy, "noDeploy", false, "skip the static-site deploy, keep local output only")
	flag.BoolVar(&cfg.Email.Enabled, "sendEmail", false, "send the digest via email after the run")
	flag.BoolVar(&cfg.Enrich.Enabled, "ai", false, "summarize sections with the AI model instead of raw formatting")
	flag.BoolVar(&cfg.Notion.Enabled, "notionClip", false, "archive run metadata to the Notion run log")
	flag.BoolVar(&cfg.Sources.PDFAbstracts, "pdfAbstracts", false, "fill missing spreadsheet abstracts from linked PDFs")

	flag.StringVar(&cfg.Output.Dir, "outDir", cfg.Output.Dir, "output directory for the deploy folder and backups")
	flag.StringVar(&cfg.Output.DumpJSON, "dumpJSON", "", "optional: write normalized records and stats JSON to this path")
	flag.StringVar(&cfg.CategoriesRaw, "categories", "", "comma-separated categories to collect (default: all)")
	flag.StringVar(&cfg.Log.Level, "logLevel", cfg.Log.Level, "log level: debug|info|warn|error")
	flag.StringVar(&cfg.Log.File, "logFile", "", "optional: mirror logs to this file")

	var sourcesFile string
	flag.StringVar(&sourcesFile, "sourcesFile", "", "optional: YAML file overriding source URLs and limits")

	flag.Parse()

	cfg.Deploy.Enabled = !noDeploy
	cfg.ApplyEnv()

	if sourcesFile != "" {
		if err := cfg.Sources.LoadFile(sourcesFile); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}
	return cfg
}

// LoadFile overlays source settings from a YAML file onto the defaults.
func (c *SourceConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sources file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("sources file %s: %w", path, err)
	}
	return nil
}

// ActiveCategories parses CategoriesRaw. Empty selects every category;
// unknown names are an error so a typo fails at startup instead of silently
// dropping a section.
func (c *Config) ActiveCategories() ([]Category, error) {
	raw := strings.TrimSpace(c.CategoriesRaw)
	if raw == "" {
		return AllCategories(), nil
	}
	var names []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			names = append(names, s)
		}
	}
	return ParseCategories(names)
}

// Validate checks the configuration before any fetch runs. Every enabled
// feature must have its credentials; the source table must be complete.
func (c *Config) Validate() error {
	if _, err := c.ActiveCategories(); err != nil {
		return err
	}
	if err := c.Sources.Validate(); err != nil {
		return err
	}
	if c.Deploy.Enabled {
		if c.Deploy.AccessToken == "" {
			return ErrMissingNetlifyToken
		}
		if c.Deploy.SiteID == "" {
			return ErrMissingNetlifySite
		}
	}
	if c.Email.Enabled {
		if c.Email.Sender == "" {
			return ErrMissingEmailUser
		}
		if c.Email.Password == "" {
			return ErrMissingEmailPassword
		}
		if c.Email.Recipient == "" {
			return ErrMissingRecipient
		}
	}
	if c.Enrich.Enabled && c.Enrich.APIKey == "" {
		return ErrMissingOpenAIKey
	}
	if c.Notion.Enabled {
		if c.Notion.Token == "" {
			return ErrMissingNotionToken
		}
		if c.Notion.ParentPageID == "" {
			return ErrMissingNotionParent
		}
	}
	return nil
}

// Validate checks the source table for holes a YAML override may have left.
func (c *SourceConfig) Validate() error {
	if c.ResearchListURL == "" || c.ResearchBriefURL == "" || c.ArxivURL == "" ||
		c.ArxivPlayersURL == "" || c.NewsURL == "" {
		return errors.New("source config: every source URL must be set")
	}
	if c.ResearchListTake <= 0 || c.ResearchBriefTake <= 0 || c.ArxivLimit <= 0 ||
		c.PlayersLimit <= 0 || c.NewsLimit <= 0 {
		return errors.New("source config: every source limit must be positive")
	}
	return nil
}
