package cmd

import (
	"fmt"

	"github.com/KaramelBytes/statdeck/internal/dataset"
	"github.com/KaramelBytes/statdeck/internal/parser"
	"github.com/KaramelBytes/statdeck/internal/source"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and whether their files can be read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, src, err := newProjector()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		specs := p.Specs()
		if len(specs) == 0 {
			fmt.Fprintln(out, "(no sources)")
			return nil
		}
		for _, s := range specs {
			fmt.Fprintln(out, describeSource(s, src.Resolve(s.Path), src))
		}
		return nil
	},
}

// describeSource reads s once and reports its record and shown-row counts.
func describeSource(s dataset.Spec, path string, src source.Acquirer) string {
	res := src.Acquire(s.Path)
	if !res.OK() {
		return fmt.Sprintf("- %s: %s [%s] unavailable", s.Key, s.Title, path)
	}
	records := parser.ParseDelimited(res.Text(), parser.DelimiterFor(s.Path))
	rows := dataset.Project(records, s)
	return fmt.Sprintf("- %s: %s [%s] %d records, %d shown (%s by %s)",
		s.Key, s.Title, path, len(records), len(rows), s.ValueField, s.LabelField)
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
