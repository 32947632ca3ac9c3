package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gomiss/adapters/report"
	"gomiss/adapters/stats/missingness"
	"gomiss/adapters/tabular"
	"gomiss/app"
	"gomiss/domain/table"
	"gomiss/internal/config"
	"gomiss/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gomiss",
		Short: "Missingness-mechanism analysis for tabular survey data",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newProfileCmd(),
		newDescribeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type commonFlags struct {
	file        string
	columns     string
	categorical string
	nonEmpty    []string
	excludeRows []int
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "Input file (.csv or .xlsx)")
	cmd.Flags().StringVar(&f.columns, "columns", "", "Columns to retain as name:kind pairs, e.g. school_type:nominal,pct_fsm:ratio")
	cmd.Flags().StringVar(&f.categorical, "categorical", "", "Categorical column to normalize and encode")
	cmd.Flags().StringSliceVar(&f.nonEmpty, "require-non-empty", nil, "Columns whose empty rows are filtered out")
	cmd.Flags().IntSliceVar(&f.excludeRows, "exclude-rows", nil, "0-based data-row ordinals to drop (known bad records)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("columns")
}

func (f *commonFlags) parseColumns() ([]table.ColumnSpec, error) {
	var specs []table.ColumnSpec
	for _, pair := range strings.Split(f.columns, ",") {
		name, kindTag, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found {
			return nil, fmt.Errorf("column %q must be name:kind", pair)
		}
		kind, err := table.ParseColumnKind(strings.TrimSpace(kindTag))
		if err != nil {
			return nil, err
		}
		specs = append(specs, table.ColumnSpec{Name: strings.TrimSpace(name), Kind: kind})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no columns requested")
	}
	return specs, nil
}

func newAnalyzeCmd() *cobra.Command {
	var flags commonFlags
	var targets, summaries []string
	var alpha float64
	var bessel bool
	var xlsxOut, htmlOut string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full pipeline: profile, mechanism classification, descriptive statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			specs, err := flags.parseColumns()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("alpha") {
				alpha = cfg.Analysis.SignificanceLevel
			}
			if !cmd.Flags().Changed("bessel") {
				bessel = cfg.Analysis.BesselCorrection
			}
			if len(targets) == 0 {
				targets = cfg.Analysis.TargetColumns
			}
			excludeRows := flags.excludeRows
			if len(excludeRows) == 0 {
				excludeRows = cfg.Loader.ExcludedRows
			}

			sinks := []ports.ReportSinkPort{report.NewMarkdownSink(os.Stdout)}
			if xlsxOut != "" {
				sinks = append(sinks, report.NewExcelSink(xlsxOut))
			}
			if htmlOut != "" {
				f, err := os.Create(htmlOut)
				if err != nil {
					return err
				}
				defer f.Close()
				sinks = append(sinks, report.NewHTMLSink(f))
			}

			service := app.NewAnalysisService(tabular.NewLoader(), sinks...)
			_, err = service.Run(cmd.Context(), app.AnalysisRequest{
				Path:              flags.file,
				Columns:           specs,
				CategoricalColumn: flags.categorical,
				RequireNonEmpty:   flags.nonEmpty,
				ExcludedRows:      excludeRows,
				MissingMarkers:    cfg.Loader.MissingMarkers,
				TargetColumns:     targets,
				SignificanceLevel: alpha,
				SummaryColumns:    summaries,
				BesselCorrection:  bessel,
				HistogramBins:     cfg.Output.HistogramBins,
			})
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVar(&targets, "targets", nil, "Columns whose missingness mechanism to classify")
	cmd.Flags().StringSliceVar(&summaries, "summaries", nil, "Ratio columns to summarize")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level for the MCAR/MAR decision")
	cmd.Flags().BoolVar(&bessel, "bessel", false, "Apply the Bessel-type small-sample skewness correction")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Also write the report as an Excel workbook")
	cmd.Flags().StringVar(&htmlOut, "html", "", "Also write the report as HTML")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the missingness profile of a table as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			specs, err := flags.parseColumns()
			if err != nil {
				return err
			}
			t, err := tabular.NewLoader().Load(cmd.Context(), ports.LoadRequest{
				Path:              flags.file,
				Columns:           specs,
				CategoricalColumn: flags.categorical,
				RequireNonEmpty:   flags.nonEmpty,
				ExcludedRows:      flags.excludeRows,
				MissingMarkers:    cfg.Loader.MissingMarkers,
			})
			if err != nil {
				return err
			}
			profile := missingness.NewProfiler().Profile(t)
			profile.RecordPatterns = nil // per-record patterns are noise on stdout
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(profile)
		},
	}

	flags.register(cmd)
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var flags commonFlags
	var summaries []string
	var bessel bool

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print descriptive statistics for ratio columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			specs, err := flags.parseColumns()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("bessel") {
				bessel = cfg.Analysis.BesselCorrection
			}

			service := app.NewAnalysisService(tabular.NewLoader(), report.NewMarkdownSink(os.Stdout))
			_, err = service.Run(cmd.Context(), app.AnalysisRequest{
				Path:              flags.file,
				Columns:           specs,
				CategoricalColumn: flags.categorical,
				RequireNonEmpty:   flags.nonEmpty,
				ExcludedRows:      flags.excludeRows,
				MissingMarkers:    cfg.Loader.MissingMarkers,
				SummaryColumns:    summaries,
				BesselCorrection:  bessel,
				HistogramBins:     cfg.Output.HistogramBins,
			})
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVar(&summaries, "summaries", nil, "Ratio columns to summarize")
	cmd.Flags().BoolVar(&bessel, "bessel", false, "Apply the Bessel-type small-sample skewness correction")
	_ = cmd.MarkFlagRequired("summaries")
	return cmd
}
