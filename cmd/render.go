package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/KaramelBytes/statdeck/internal/dataset"
	"github.com/KaramelBytes/statdeck/internal/render"
	"github.com/KaramelBytes/statdeck/internal/utils"
	"github.com/KaramelBytes/statdeck/internal/watch"
	"github.com/spf13/cobra"
)

var (
	renFormat string
	renOutput string
	renOnly   []string
	renTitle  string
	renWatch  bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the configured sources as ranked tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, src, err := newProjector()
		if err != nil {
			return err
		}
		format := renFormat
		if !cmd.Flags().Changed("format") && renOutput != "" {
			format = render.FormatForPath(renOutput)
		}
		format, err = render.Normalize(format)
		if err != nil {
			return err
		}
		keys, err := selectKeys(p, renOnly)
		if err != nil {
			return err
		}
		title := cfg.SiteTitle
		if renTitle != "" {
			title = renTitle
		}

		build := func() error {
			page := render.Page{Title: title, Tables: loadTables(p, keys)}
			if renOutput == "" {
				return render.Render(cmd.OutOrStdout(), format, page)
			}
			var buf bytes.Buffer
			if err := render.Render(&buf, format, page); err != nil {
				return err
			}
			if err := utils.EnsureDir(filepath.Dir(renOutput)); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := utils.SafeWriteFile(renOutput, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d tables)\n", renOutput, len(page.Tables))
			return nil
		}
		if err := build(); err != nil {
			return err
		}
		if !renWatch {
			return nil
		}

		files := make([]string, 0, len(keys))
		for _, k := range keys {
			s, _ := p.Spec(k)
			files = append(files, src.Resolve(s.Path))
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Info("watching sources", slog.Int("files", len(files)))
		return watch.New(files, 0, logger).Run(ctx, func() {
			if err := build(); err != nil {
				logger.Error("re-render failed", slog.String("error", err.Error()))
			}
		})
	},
}

// selectKeys validates --only keys, defaulting to every configured source.
func selectKeys(p *dataset.Projector, only []string) ([]string, error) {
	if len(only) == 0 {
		specs := p.Specs()
		keys := make([]string, 0, len(specs))
		for _, s := range specs {
			keys = append(keys, s.Key)
		}
		return keys, nil
	}
	for _, k := range only {
		if _, ok := p.Spec(k); !ok {
			return nil, fmt.Errorf("unknown source: %s", k)
		}
	}
	return only, nil
}

func loadTables(p *dataset.Projector, keys []string) []dataset.Table {
	out := make([]dataset.Table, 0, len(keys))
	for _, k := range keys {
		if t, ok := p.LoadTable(k); ok {
			out = append(out, t)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renFormat, "format", "f", render.FormatMarkdown, "output format: markdown | html | pretty | json | yaml")
	renderCmd.Flags().StringVarP(&renOutput, "output", "o", "", "write to this file instead of stdout (format inferred from extension)")
	renderCmd.Flags().StringSliceVar(&renOnly, "only", nil, "comma-separated source keys to render (default: all)")
	renderCmd.Flags().StringVar(&renTitle, "title", "", "page title (overrides site_title)")
	renderCmd.Flags().BoolVar(&renWatch, "watch", false, "re-render whenever a source file changes")
}
