package config

import (
	"gopkg.in/yaml.v3"
	domainerr "honours/internal/domain/errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultURLTemplate = "https://bertha.ig.ft.com/republish/publish/gss/{key}/{sheets}"
	DefaultSheets      = "orders,ranks,recipients,profiles,options"

	EnvSpreadsheetKey = "SPREADSHEET_KEY"
	EnvDeployTarget   = "DEPLOY_TARGET"

	DefaultDestPrefix = "/var/opt/customer/apps/interactive.ftdata.co.uk/var/www/html"
)

type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Build  BuildConfig  `yaml:"build"`
	Data   DataConfig   `yaml:"data"`
	Serve  ServeConfig  `yaml:"serve"`
	Deploy DeployConfig `yaml:"deploy"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	SiteURL     string `yaml:"site_url"`
	Language    string `yaml:"language"`
}

type BuildConfig struct {
	ClientDir      string          `yaml:"client_dir"`
	TmpDir         string          `yaml:"tmp_dir"`
	DistDir        string          `yaml:"dist_dir"`
	DataFile       string          `yaml:"data_file"`
	ManifestPath   string          `yaml:"manifest_path"`
	ScriptEntries  []string        `yaml:"script_entries"`
	OtherScripts   []string        `yaml:"other_scripts"`
	BrowserTargets []BrowserTarget `yaml:"browser_targets"`
	InlineMaxBytes int64           `yaml:"inline_max_bytes"`
	Now            time.Time       `yaml:"-"`
}

// BrowserTarget names an engine and its minimum version, e.g. chrome 34.
type BrowserTarget struct {
	Engine  string `yaml:"engine"`
	Version string `yaml:"version"`
}

type DataConfig struct {
	URLTemplate    string `yaml:"url_template"`
	Sheets         string `yaml:"sheets"`
	SpreadsheetKey string `yaml:"spreadsheet_key"`
}

type ServeConfig struct {
	Addr     string        `yaml:"addr"`
	DistAddr string        `yaml:"dist_addr"`
	Debounce time.Duration `yaml:"debounce"`
}

type DeployConfig struct {
	DestPrefix string `yaml:"dest_prefix"`
	Target     string `yaml:"target"`
	PublicURL  string `yaml:"public_url"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "New Year Honours",
			SiteURL:  "http://ig.ft.com/",
			Language: "en-GB",
		},
		Build: BuildConfig{
			ClientDir:     "client",
			TmpDir:        ".tmp",
			DistDir:       "dist",
			DataFile:      "client/data.json",
			ManifestPath:  ".honours/manifest.db",
			ScriptEntries: []string{"scripts/main.js"},
			OtherScripts:  []string{"scripts/top.js"},
			BrowserTargets: []BrowserTarget{
				{Engine: "chrome", Version: "34"},
				{Engine: "firefox", Version: "30"},
			},
			InlineMaxBytes: 32 << 10,
			Now:            time.Now(),
		},
		Data: DataConfig{
			URLTemplate: DefaultURLTemplate,
			Sheets:      DefaultSheets,
		},
		Serve: ServeConfig{
			Addr:     ":3000",
			DistAddr: ":3001",
			Debounce: 200 * time.Millisecond,
		},
		Deploy: DeployConfig{
			DestPrefix: DefaultDestPrefix,
			Target:     "sites/new-year-honours-2016",
			PublicURL:  "http://ig.ft.com/",
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}
	if u := strings.TrimSpace(c.Site.SiteURL); u != "" && !isValidAbsURL(u) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	if strings.TrimSpace(c.Build.ClientDir) == "" {
		ve.Add("build.client_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.TmpDir) == "" {
		ve.Add("build.tmp_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.DistDir) == "" {
		ve.Add("build.dist_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.DataFile) == "" {
		ve.Add("build.data_file", "must not be empty")
	}
	if strings.TrimSpace(c.Build.ManifestPath) == "" {
		ve.Add("build.manifest_path", "must not be empty")
	}
	if c.Build.InlineMaxBytes < 0 {
		ve.Add("build.inline_max_bytes", "must not be negative")
	}
	for i, t := range c.Build.BrowserTargets {
		if strings.TrimSpace(t.Engine) == "" || strings.TrimSpace(t.Version) == "" {
			ve.Add("build.browser_targets", "entry "+strconv.Itoa(i)+" needs engine and version")
		}
	}

	if !strings.Contains(c.Data.URLTemplate, "{key}") {
		ve.Add("data.url_template", "must contain {key}")
	} else if !isValidAbsURL(strings.NewReplacer("{key}", "k", "{sheets}", "s").Replace(c.Data.URLTemplate)) {
		ve.Add("data.url_template", "must be a valid absolute URL")
	}
	if strings.TrimSpace(c.Data.Sheets) == "" {
		ve.Add("data.sheets", "must not be empty")
	}

	if strings.TrimSpace(c.Serve.Addr) == "" {
		ve.Add("serve.addr", "must not be empty")
	}
	if c.Serve.Debounce < 0 {
		ve.Add("serve.debounce", "must not be negative")
	}
	if u := strings.TrimSpace(c.Deploy.PublicURL); u != "" && !isValidAbsURL(u) {
		ve.Add("deploy.public_url", "must be a valid absolute URL")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

// ApplyEnv lets the environment override values that should not live in site.yaml.
func (c *Config) ApplyEnv() {
	if key := strings.TrimSpace(os.Getenv(EnvSpreadsheetKey)); key != "" {
		c.Data.SpreadsheetKey = key
	}
	if target := strings.TrimSpace(os.Getenv(EnvDeployTarget)); target != "" {
		c.Deploy.Target = target
	}
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// fields present in the file override defaults, the rest keep Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(err) {
		return cfg, err
	}

	cfg = Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
