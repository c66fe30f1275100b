package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/statdeck/internal/config"
	"github.com/spf13/cobra"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set statdeck configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		file := c.Path
		if file == "" {
			file = "(defaults)"
		}
		fmt.Fprintf(out, "config_file: %s\n", file)
		fmt.Fprintf(out, "results_dir: %s\n", c.ResultsDir)
		fmt.Fprintf(out, "row_limit: %d\n", c.RowLimit)
		fmt.Fprintf(out, "site_title: %s\n", c.SiteTitle)
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "sources: %d\n", len(c.Sources))
		for _, s := range c.Sources {
			limit := s.Limit
			if limit == 0 {
				limit = c.RowLimit
			}
			fmt.Fprintf(out, "  - %s: %s (%s, %s, top %d)\n", s.Key, s.Path, s.ValueField, s.Kind, limit)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Edit the stored file, not the effective config, so env values and
		// flag overrides are not persisted.
		path, err := cfgpkg.EditPath(cfgFile, cfg)
		if err != nil {
			return err
		}
		c, err := cfgpkg.ReadFile(path)
		if err != nil {
			return err
		}
		switch key {
		case "results_dir":
			c.ResultsDir = val
		case "row_limit":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for row_limit: %v", val)
			}
			c.RowLimit = i
		case "site_title":
			c.SiteTitle = val
		case "listen_addr":
			c.ListenAddr = val
		case "log_level":
			switch lvl := strings.ToLower(val); lvl {
			case "debug", "info", "warn", "warning", "error":
				c.LogLevel = lvl
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				c.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved config to %s\n", path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to disk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			p, err := cfgpkg.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		// Refuse to overwrite an existing config.
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat config: %w", err)
		}
		if err := cfgpkg.Save(cfgpkg.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Config initialized: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
}
