package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"statpipe/domain/table"
	"statpipe/internal"
	"statpipe/internal/config"
	"statpipe/internal/load"
	"statpipe/internal/pipeline"
	"statpipe/internal/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statpipe",
		Short: "Batch statistical analysis of one delimited dataset",
	}

	rootCmd.AddCommand(newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		filePath    string
		sheet       string
		delimiter   string
		decimalMark string
		missing     []string
		numeric     []string
		ordinal     []string
		summarize   []string
		groupBy     string
		frequencies []string
		correlate   []string
		regress     []string
		ttest       []string
		chi         []string
		anova       []string
		chartsPath  string
		htmlPath    string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the load -> clean -> describe -> relate -> report pipeline",
		Long: `Run a full analysis over one CSV or XLSX dataset.

Pairwise flags take colon-separated column pairs, e.g.:

  statpipe analyze --file survey.csv --numeric Income,Score \
    --summarize Income,Score --group-by Region \
    --correlate Income:Score --regress Score:Year \
    --anova Income:Region --charts charts.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil && filePath == "" {
				return err
			}
			if cfg == nil {
				cfg = &config.Config{}
			}
			if filePath != "" {
				cfg.Input.Path = filePath
			}
			if sheet != "" {
				cfg.Input.Sheet = sheet
			}
			if delimiter != "" {
				cfg.Input.Delimiter = rune(delimiter[0])
			}
			if decimalMark != "" {
				cfg.Input.DecimalMark = rune(decimalMark[0])
			}
			if len(missing) > 0 {
				cfg.Input.MissingSentinels = missing
			}
			if chartsPath != "" {
				cfg.Output.ChartsPath = chartsPath
			}
			if htmlPath != "" {
				cfg.Output.HTMLPath = htmlPath
			}

			spec := pipeline.RunSpec{
				Title:      fmt.Sprintf("Analysis of %s", cfg.Input.Path),
				SourcePath: cfg.Input.Path,
				Sheet:      cfg.Input.Sheet,
				Options: load.Options{
					Delimiter:        cfg.Input.Delimiter,
					DecimalMark:      cfg.Input.DecimalMark,
					MissingSentinels: cfg.Input.MissingSentinels,
				},
			}
			for _, name := range numeric {
				spec.Columns = append(spec.Columns, table.NumericSpec(name))
			}
			for _, name := range ordinal {
				spec.Columns = append(spec.Columns, table.OrdinalSpec(name))
			}
			spec.Summaries = summarize
			spec.Frequencies = frequencies
			spec.OutlierColumns = summarize
			if groupBy != "" {
				for _, col := range summarize {
					spec.GroupedSummaries = append(spec.GroupedSummaries,
						pipeline.GroupPair{Column: col, GroupBy: groupBy})
				}
			}
			var badPair error
			addPairs := func(raw []string, add func(a, b string)) {
				for _, p := range raw {
					parts := strings.SplitN(p, ":", 2)
					if len(parts) != 2 {
						badPair = fmt.Errorf("expected colon-separated pair, got %q", p)
						return
					}
					add(parts[0], parts[1])
				}
			}
			addPairs(correlate, func(a, b string) {
				spec.Correlations = append(spec.Correlations, pipeline.Pair{A: a, B: b})
			})
			addPairs(regress, func(a, b string) {
				spec.Regressions = append(spec.Regressions, pipeline.Pair{A: a, B: b})
			})
			addPairs(ttest, func(a, b string) {
				spec.TwoSampleTests = append(spec.TwoSampleTests, pipeline.GroupPair{Column: a, GroupBy: b})
			})
			addPairs(chi, func(a, b string) {
				spec.AssociationTests = append(spec.AssociationTests, pipeline.Pair{A: a, B: b})
			})
			addPairs(anova, func(a, b string) {
				spec.VarianceTests = append(spec.VarianceTests, pipeline.GroupPair{Column: a, GroupBy: b})
			})
			if badPair != nil {
				return badPair
			}

			runner := pipeline.NewRunner(internal.DefaultLogger)
			result, err := runner.Run(spec)
			if err != nil {
				return err
			}

			if err := report.Write(os.Stdout, result.Findings); err != nil {
				return err
			}
			if cfg.Output.ChartsPath != "" {
				if err := report.ExportXLSX(cfg.Output.ChartsPath, result.Findings.Charts); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "charts written to %s\n", cfg.Output.ChartsPath)
			}
			if cfg.Output.HTMLPath != "" {
				if err := os.WriteFile(cfg.Output.HTMLPath, report.HTML(result.Findings), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "HTML report written to %s\n", cfg.Output.HTMLPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "source CSV or XLSX file (falls back to DATASET_PATH)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet name for XLSX sources")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "field delimiter (default ,)")
	cmd.Flags().StringVar(&decimalMark, "decimal-mark", "", "decimal mark, . or ,")
	cmd.Flags().StringSliceVar(&missing, "missing", nil, "missing-value sentinels")
	cmd.Flags().StringSliceVar(&numeric, "numeric", nil, "columns to declare numeric")
	cmd.Flags().StringSliceVar(&ordinal, "ordinal", nil, "columns to declare ordinal")
	cmd.Flags().StringSliceVar(&summarize, "summarize", nil, "numeric columns to summarize")
	cmd.Flags().StringVar(&groupBy, "group-by", "", "categorical column for grouped summaries")
	cmd.Flags().StringSliceVar(&frequencies, "freq", nil, "categorical columns for frequency tables")
	cmd.Flags().StringSliceVar(&correlate, "correlate", nil, "numeric column pairs a:b to correlate")
	cmd.Flags().StringSliceVar(&regress, "regress", nil, "regression pairs response:predictor")
	cmd.Flags().StringSliceVar(&ttest, "ttest", nil, "Welch test pairs numeric:group")
	cmd.Flags().StringSliceVar(&chi, "chi", nil, "chi-square pairs categoricalA:categoricalB")
	cmd.Flags().StringSliceVar(&anova, "anova", nil, "one-way ANOVA pairs numeric:group")
	cmd.Flags().StringVar(&chartsPath, "charts", "", "write chart workbook to this xlsx path")
	cmd.Flags().StringVar(&htmlPath, "html", "", "write HTML report to this path")

	return cmd
}
