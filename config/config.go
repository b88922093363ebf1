package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"property-scraper/utils"
)

// Source names.
const (
	PropertyPro     = "propertypro"
	NPC             = "nigeriapropertycentre"
	PrivateProperty = "privateproperty"
)

// Fetch transports.
const (
	FetchHTTP    = "http"
	FetchBrowser = "browser"
)

// Config holds all application configuration loaded from the environment,
// an optional .env file and CLI flags.
type Config struct {
	OutputDir    string `validate:"required"`
	CombinedPath string `validate:"required"`
	DatasetPath  string `validate:"required"`
	SummaryPath  string `validate:"required"`

	ExchangeRate   float64       `validate:"gt=0"`
	MaxConcurrency int           `validate:"min=1,max=3"`
	SourceStagger  time.Duration `validate:"gte=0"`
	FetchMode      string        `validate:"oneof=http browser"`
	ChromeBin      string
	Debug          bool

	ListenAddr string `validate:"required"`

	Sources []SourceConfig `validate:"dive"`
}

// SourceConfig holds the pacing and retry policy of one listing site.
type SourceConfig struct {
	Name     string `validate:"required"`
	Enabled  bool
	BaseURL  string `validate:"required,url"`
	MaxPages int    `validate:"gte=0"`

	Timeout       time.Duration `validate:"gt=0"`
	MaxAttempts   int           `validate:"min=1"`
	Backoff       time.Duration `validate:"gte=0"`
	BackoffJitter time.Duration `validate:"gte=0"`
	// BackoffExponential doubles the wait per failed attempt instead of growing it linearly.
	BackoffExponential bool

	DetailDelayMin time.Duration `validate:"gte=0"`
	DetailDelayMax time.Duration `validate:"gtefield=DetailDelayMin"`
	PageDelayMin   time.Duration `validate:"gte=0"`
	PageDelayMax   time.Duration `validate:"gtefield=PageDelayMin"`
}

// DefaultSources returns the per-site policies used against the live hosts.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:         PropertyPro,
			Enabled:      true,
			BaseURL:      "https://www.propertypro.ng",
			MaxPages:     2,
			Timeout:      35 * time.Second,
			MaxAttempts:  3,
			Backoff:      5 * time.Second,
			PageDelayMin: 3 * time.Second,
			PageDelayMax: 6 * time.Second,
		},
		{
			Name:           NPC,
			Enabled:        true,
			BaseURL:        "https://nigeriapropertycentre.com",
			MaxPages:       1,
			Timeout:        20 * time.Second,
			MaxAttempts:    3,
			Backoff:        2 * time.Second,
			BackoffJitter:  3 * time.Second,
			DetailDelayMin: 2 * time.Second,
			DetailDelayMax: 5 * time.Second,
			PageDelayMin:   4 * time.Second,
			PageDelayMax:   8 * time.Second,
		},
		{
			Name:           PrivateProperty,
			Enabled:        true,
			BaseURL:        "https://privateproperty.ng",
			MaxPages:       2,
			Timeout:        10 * time.Second,
			MaxAttempts:    5,
			Backoff:        2 * time.Second,
			BackoffJitter:  3 * time.Second,
			DetailDelayMin: 1 * time.Second,
			DetailDelayMax: 3 * time.Second,
			PageDelayMin:   2 * time.Second,
			PageDelayMax:   5 * time.Second,
		},
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "./dataset")
	v.SetDefault("combined_file", "combined_listings.csv")
	v.SetDefault("dataset_file", "new_cleaned_properties.csv")
	v.SetDefault("summary_file", "run_summary.yaml")
	v.SetDefault("exchange_rate", 1438.0)
	v.SetDefault("max_concurrency", 3)
	v.SetDefault("source_stagger", "0s")
	v.SetDefault("fetch_mode", FetchHTTP)
	v.SetDefault("chrome_bin", "")
	v.SetDefault("debug", false)
	v.SetDefault("listen_addr", ":8000")

	for _, s := range DefaultSources() {
		v.SetDefault(s.Name+"_enabled", s.Enabled)
		v.SetDefault(s.Name+"_pages", s.MaxPages)
		v.SetDefault(s.Name+"_base_url", s.BaseURL)
		v.SetDefault(s.Name+"_backoff_exponential", s.BackoffExponential)
	}
}

// Load reads the .env file and the environment into v, then returns a
// validated Config. Flag bindings registered on v take precedence.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	outDir := v.GetString("output_dir")
	cfg := &Config{
		OutputDir:      outDir,
		CombinedPath:   filepath.Join(outDir, v.GetString("combined_file")),
		DatasetPath:    resolvePath(outDir, v.GetString("dataset_file")),
		SummaryPath:    filepath.Join(outDir, v.GetString("summary_file")),
		ExchangeRate:   v.GetFloat64("exchange_rate"),
		MaxConcurrency: v.GetInt("max_concurrency"),
		SourceStagger:  v.GetDuration("source_stagger"),
		FetchMode:      strings.ToLower(v.GetString("fetch_mode")),
		ChromeBin:      v.GetString("chrome_bin"),
		Debug:          v.GetBool("debug"),
		ListenAddr:     v.GetString("listen_addr"),
	}

	for _, s := range DefaultSources() {
		s.Enabled = v.GetBool(s.Name + "_enabled")
		s.MaxPages = v.GetInt(s.Name + "_pages")
		s.BaseURL = strings.TrimRight(v.GetString(s.Name+"_base_url"), "/")
		s.BackoffExponential = v.GetBool(s.Name + "_backoff_exponential")
		cfg.Sources = append(cfg.Sources, s)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags of the config and its sources.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// Source returns the config of the named source.
func (c *Config) Source(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// RetryPolicy returns the fetch retry policy of the source.
func (s SourceConfig) RetryPolicy(logger *utils.Logger) *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: s.MaxAttempts,
		BaseDelay:   s.Backoff,
		Jitter:      s.BackoffJitter,
		Exponential: s.BackoffExponential,
		Logger:      logger,
	}
}

// resolvePath joins name onto dir unless name is already a path.
func resolvePath(dir, name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(dir, name)
}
