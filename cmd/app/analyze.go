package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"RiskReturn/internal/di"
	"RiskReturn/internal/domain/models"
	"RiskReturn/internal/service/report"
	"RiskReturn/internal/usecase"
	"RiskReturn/pkg/config"
	"RiskReturn/pkg/util"

	"github.com/spf13/cobra"
)

func analyzeCmd(configPath *string) *cobra.Command {
	var (
		tickers string
		period  string
		asOf    string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis and print the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format: %s", format)
			}
			cfg, err := config.LoadWithEnv(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("tickers") {
				tickers = cfg.Analysis.DefaultTickers
			}
			if !cmd.Flags().Changed("period") {
				period = cfg.Analysis.DefaultPeriod
			}

			analyzer, closeFn, err := newCLIAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := analyzer.Analyze(cmd.Context(), models.AnalysisRequest{Tickers: tickers, Period: period, AsOf: asOf})
			if err != nil && !(errors.Is(err, usecase.ErrNoUsableAssets) && res != nil) {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(res); encErr != nil {
					return encErr
				}
			} else {
				writeTable(out, res)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&tickers, "tickers", models.DefaultTickers, "comma separated ticker symbols")
	cmd.Flags().StringVar(&period, "period", "1y", "period key or label, e.g. 1m or \"Last year\"")
	cmd.Flags().StringVar(&asOf, "as-of", "", "end date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or json")
	return cmd
}

// newCLIAnalyzer builds the provider stack without the HTTP server or Kafka.
func newCLIAnalyzer(cfg *config.Config) (*usecase.Analyzer, func(), error) {
	cfg.Logging.Ship.Enabled = false
	l, err := di.ProvideLogger(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	ch, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	c, err := di.ProvideCache(cfg)
	if err != nil {
		if ch != nil {
			_ = ch.Close()
		}
		return nil, nil, err
	}
	provider, err := di.ProvidePriceProvider(cfg, ch, c, l)
	if err != nil {
		_ = c.Close()
		if ch != nil {
			_ = ch.Close()
		}
		return nil, nil, err
	}

	closeFn := func() {
		_ = c.Close()
		if ch != nil {
			_ = ch.Close()
		}
	}
	return usecase.NewAnalyzer(provider, l), closeFn, nil
}

func writeTable(out io.Writer, r *models.AnalysisReport) {
	fmt.Fprintf(out, "%s\n%s to %s\n\n", report.Title(r), util.FormatDate(r.Start), util.FormatDate(r.End))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Asset\tPeriod return\tAnnualized volatility\t")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", row.Ticker, report.Percent(row.PeriodReturn), report.Percent(row.AnnualizedVolatility))
	}
	_ = tw.Flush()

	for _, f := range r.Failures {
		fmt.Fprintf(out, "skipped %q: %s\n", f.Ticker, f.Reason)
	}
	switch {
	case r.Regression != nil:
		fmt.Fprintf(out, "\nregression: return = %.4f * volatility %+.4f\n", r.Regression.Slope, r.Regression.Intercept)
	case r.RegressionError != nil:
		fmt.Fprintf(out, "\nno regression line: %s\n", r.RegressionError.Message)
	}
}
