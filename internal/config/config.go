package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/statdeck/internal/dataset"
	"github.com/KaramelBytes/statdeck/internal/utils"
)

// Global configuration structure.
type Global struct {
	ResultsDir string `mapstructure:"results_dir" yaml:"results_dir"`
	RowLimit   int    `mapstructure:"row_limit" yaml:"row_limit"`
	SiteTitle  string `mapstructure:"site_title" yaml:"site_title"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	Sources []Source `mapstructure:"sources" yaml:"sources"`

	// Path is the file Load read, or "" when only defaults and env applied.
	Path string `mapstructure:"-" yaml:"-"`
}

// Source binds a named dataset to its results file and projection.
type Source struct {
	Key        string `mapstructure:"key" yaml:"key"`
	Title      string `mapstructure:"title" yaml:"title"`
	Path       string `mapstructure:"path" yaml:"path"`
	LabelField string `mapstructure:"label_field" yaml:"label_field,omitempty"`
	ValueField string `mapstructure:"value_field" yaml:"value_field"`
	Kind       string `mapstructure:"kind" yaml:"kind"`
	// Limit overrides RowLimit for this source when > 0.
	Limit int `mapstructure:"limit" yaml:"limit,omitempty"`
}

const (
	dirName  = ".statdeck"
	fileName = "config"
	// DefaultSiteTitle heads rendered pages.
	DefaultSiteTitle = "Real Estate Data Analytics"
)

// DefaultSources reproduces the four analysis outputs of the housing case study.
func DefaultSources() []Source {
	return []Source{
		{Key: "topValues", Title: "Top Avg Home Value", Path: "01_top_avg_home_value.csv", ValueField: "avg_home_value", Kind: string(dataset.KindCurrency)},
		{Key: "topGrowth", Title: "Top Growth (first to last)", Path: "02_growth_first_last.csv", ValueField: "growth_pct", Kind: string(dataset.KindPercent)},
		{Key: "volatility", Title: "Most Volatile", Path: "03_volatility.csv", ValueField: "volatility", Kind: string(dataset.KindCurrency)},
		{Key: "momentum", Title: "Recent Momentum (last 2 quarters)", Path: "07_recent_momentum.csv", ValueField: "last_2q_growth_pct", Kind: string(dataset.KindPercent)},
	}
}

// Default returns the configuration used when no file is present.
func Default() *Global {
	c := &Global{
		ResultsDir: "results",
		RowLimit:   dataset.DefaultLimit,
		SiteTitle:  DefaultSiteTitle,
		ListenAddr: "127.0.0.1:8080",
		LogLevel:   "info",
		LogFormat:  "text",
		Sources:    DefaultSources(),
	}
	for i := range c.Sources {
		c.Sources[i].LabelField = dataset.DefaultLabelField
	}
	return c
}

// DefaultPath returns ~/.statdeck/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, fileName+".yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.statdeck/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded into the environment first when present.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STATDECK")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("results_dir", d.ResultsDir)
	v.SetDefault("row_limit", d.RowLimit)
	v.SetDefault("site_title", d.SiteTitle)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("statdeck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			// no ./statdeck.yaml; try ~/.statdeck/config.yaml
			if p, perr := DefaultPath(); perr == nil {
				if _, serr := os.Stat(p); serr == nil {
					v.SetConfigFile(p)
					if err := v.ReadInConfig(); err != nil {
						return nil, fmt.Errorf("read config %s: %w", p, err)
					}
				}
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Sources) == 0 {
		c.Sources = d.Sources
	}
	c.Path = v.ConfigFileUsed()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadFile loads only what is stored at path, over the defaults. Unlike Load
// it ignores the environment, so the result is safe to edit and Save back.
// A missing file yields the defaults.
func ReadFile(path string) (*Global, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.Path = path
			return c, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(c.Sources) == 0 {
		c.Sources = Default().Sources
	}
	c.Path = path
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// EditPath returns the file a config edit should write: the explicit cfgFile,
// else the file the effective config was read from, else DefaultPath.
func EditPath(cfgFile string, loaded *Global) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if loaded != nil && loaded.Path != "" {
		return loaded.Path, nil
	}
	return DefaultPath()
}

// Validate checks the fields Specs relies on.
func (c *Global) Validate() error {
	if c.RowLimit < 0 {
		return fmt.Errorf("invalid row_limit: %d", c.RowLimit)
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		key := strings.TrimSpace(s.Key)
		if key == "" {
			return fmt.Errorf("sources[%d]: key is required", i)
		}
		if seen[key] {
			return fmt.Errorf("sources[%d]: duplicate key %q", i, key)
		}
		seen[key] = true
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("source %q: path is required", key)
		}
		if strings.TrimSpace(s.ValueField) == "" {
			return fmt.Errorf("source %q: value_field is required", key)
		}
		if s.Kind != "" && !dataset.Kind(s.Kind).Valid() {
			return fmt.Errorf("source %q: invalid kind %q (use currency or percent)", key, s.Kind)
		}
		if s.Limit < 0 {
			return fmt.Errorf("source %q: invalid limit %d", key, s.Limit)
		}
	}
	return nil
}

// Specs converts the configured sources to projection specs, applying
// RowLimit where a source does not set its own limit.
func (c *Global) Specs() []dataset.Spec {
	out := make([]dataset.Spec, 0, len(c.Sources))
	for _, s := range c.Sources {
		limit := s.Limit
		if limit == 0 {
			limit = c.RowLimit
		}
		out = append(out, dataset.Spec{
			Key:        s.Key,
			Title:      s.Title,
			Path:       s.Path,
			LabelField: s.LabelField,
			ValueField: s.ValueField,
			Kind:       dataset.Kind(s.Kind),
			Limit:      limit,
		})
	}
	return out
}

// Source returns the configured source with key.
func (c *Global) Source(key string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Key == key {
			return s, true
		}
	}
	return Source{}, false
}
