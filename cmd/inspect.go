package cmd

import (
	"fmt"

	"github.com/KaramelBytes/statdeck/internal/analysis"
	"github.com/KaramelBytes/statdeck/internal/parser"
	"github.com/spf13/cobra"
)

var (
	inspSamples   int
	inspThreshold float64
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <source-key>",
	Short: "Profile the columns of a source file",
	Long: `Profile every column of a configured source: inferred kind, missing values,
numeric range and robust outliers. Useful for checking label_field and value_field.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, src, err := newProjector()
		if err != nil {
			return err
		}
		s, ok := p.Spec(args[0])
		if !ok {
			return fmt.Errorf("unknown source: %s", args[0])
		}
		res := src.Acquire(s.Path)
		if !res.OK() {
			return fmt.Errorf("source %s: %w", s.Key, res.Reason())
		}
		opt := analysis.DefaultOptions()
		if cmd.Flags().Changed("samples") {
			opt.SampleRows = inspSamples
		}
		if cmd.Flags().Changed("outlier-threshold") {
			opt.OutlierThreshold = inspThreshold
		}
		records := parser.ParseDelimited(res.Text(), parser.DelimiterFor(s.Path))
		rep := analysis.Profile(s.Key, records, opt)
		out := cmd.OutOrStdout()
		fmt.Fprint(out, rep.Markdown())
		for _, f := range []string{s.LabelField, s.ValueField} {
			if _, ok := rep.Column(f); !ok && rep.Rows > 0 {
				fmt.Fprintf(out, "\n⚠ field %q not found in header\n", f)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspSamples, "samples", 5, "number of leading rows to show")
	inspectCmd.Flags().Float64Var(&inspThreshold, "outlier-threshold", 3.5, "robust |z| threshold for outliers (0 disables)")
}
