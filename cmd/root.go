package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/statdeck/internal/config"
	"github.com/KaramelBytes/statdeck/internal/dataset"
	"github.com/KaramelBytes/statdeck/internal/logging"
	"github.com/KaramelBytes/statdeck/internal/source"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile        string
	debug          bool
	flagLogFormat  string
	flagResultsDir string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "statdeck",
	Short: "statdeck: render housing-market analytics results as ranked tables",
	Long: `statdeck reads precomputed analytics results (small CSV files, one per named source)
and renders the top rows of each as Markdown, HTML, terminal tables, or JSON/YAML.
Missing or malformed result files degrade to empty tables instead of failing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./statdeck.yaml, then ~/.statdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text | json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagResultsDir, "results-dir", "", "directory holding the results files (overrides config)")
}

func loadConfig() {
	cfg, cfgErr = cfgpkg.Load(cfgFile)
	level, format := "info", "text"
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if debug {
		level = "debug"
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		format = flagLogFormat
	}
	logger = logging.WithRun(logging.Setup(rootCmd.ErrOrStderr(), level, format))

	if cfgErr != nil {
		logger.Warn("failed to load config", slog.String("error", cfgErr.Error()))
		return
	}
	if f.Changed("results-dir") && flagResultsDir != "" {
		cfg.ResultsDir = flagResultsDir
	}
}

// currentConfig returns the loaded configuration or the reason it is missing.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("load config: %w", cfgErr)
		}
		return nil, fmt.Errorf("no config loaded")
	}
	return cfg, nil
}

// newProjector wires the configured sources to the results directory.
func newProjector() (*dataset.Projector, *source.FS, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, nil, err
	}
	src := source.NewOS(c.ResultsDir)
	p, err := dataset.New(c.Specs(), src, logger)
	if err != nil {
		return nil, nil, err
	}
	return p, src, nil
}
