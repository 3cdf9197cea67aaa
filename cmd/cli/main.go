package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"csvdash/app"
	"csvdash/domain/chart"
	"csvdash/domain/dataset"
	"csvdash/domain/stats"
	"csvdash/internal/config"
	"csvdash/internal/container"
	"csvdash/internal/logging"
	"csvdash/internal/testkit"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

func main() {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:          "csvdash-cli",
		Short:        "Classify, filter, summarize and chart CSV and XLSX files",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CSVDASH_CONFIG"), "Optional config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	rootCmd.AddCommand(
		newClassifyCmd(opts),
		newAnalyzeCmd(opts),
		newRenderCmd(opts),
		newSampleCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newDashboard builds the pipeline with logs on stderr so stdout stays
// clean for reports.
func newDashboard(opts *globalOptions) (*app.DashboardService, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewWithOutput(opts.logLevel, "console", "stderr")
	if err != nil {
		return nil, nil, err
	}
	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return c.Dashboard, func() { _ = c.Shutdown(context.Background()) }, nil
}

// analysisFlags are the dashboard controls shared by analyze and render.
type analysisFlags struct {
	anchor string
	period string
	start  string
	end    string
	chart  string
	x      string
	y      string
	label  string
	value  string
	open   string
	high   string
	low    string
	close  string
	stat   string
}

func (f *analysisFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.anchor, "anchor", "", "Temporal column to filter on (default: first temporal column)")
	flags.StringVar(&f.period, "period", "All", "Period: All|1M|3M|6M|1Y|Custom")
	flags.StringVar(&f.start, "start", "", "Custom period start (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&f.end, "end", "", "Custom period end (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&f.chart, "chart", "", "Chart type: bar|line|pie|scatter|candlestick")
	flags.StringVar(&f.x, "x", "", "X axis column")
	flags.StringVar(&f.y, "y", "", "Y axis column")
	flags.StringVar(&f.label, "label", "", "Pie label column")
	flags.StringVar(&f.value, "value", "", "Pie value column")
	flags.StringVar(&f.open, "open", "", "Candlestick open column")
	flags.StringVar(&f.high, "high", "", "Candlestick high column")
	flags.StringVar(&f.low, "low", "", "Candlestick low column")
	flags.StringVar(&f.close, "close", "", "Candlestick close column")
	flags.StringVar(&f.stat, "stat", "", "Numeric column for the custom stat view")
}

func (f *analysisFlags) request() (app.AnalysisRequest, error) {
	req := app.AnalysisRequest{
		Anchor:     f.anchor,
		Period:     f.period,
		Start:      f.start,
		End:        f.end,
		StatColumn: f.stat,
	}
	if f.chart == "" {
		return req, nil
	}
	ct, err := chart.ParseChartType(f.chart)
	if err != nil {
		return req, err
	}
	cr := &chart.Request{Type: ct, XAxis: f.x, YAxis: f.y, PieLabel: f.label, PieValue: f.value}
	if f.open != "" || f.high != "" || f.low != "" || f.close != "" {
		cr.OHLC = &chart.OHLC{Open: f.open, High: f.high, Low: f.low, Close: f.close}
	}
	req.Chart = cr
	return req, nil
}

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Show the role of every column",
		Long: `Read a CSV or XLSX file and print the semantic role of each column
together with parse failures and the chart types it supports.

Example: csvdash-cli classify prices.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.Context(), opts, args[0], asJSON, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func runClassify(ctx context.Context, opts *globalOptions, path string, asJSON bool, out io.Writer) error {
	svc, done, err := newDashboard(opts)
	if err != nil {
		return err
	}
	defer done()

	ds, err := svc.LoadFile(ctx, path)
	if err != nil {
		return err
	}
	result, err := svc.Analyze(ctx, ds, app.AnalysisRequest{PreviewRows: 1})
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, map[string]interface{}{
			"filename":       ds.Filename,
			"rows":           ds.RowCount(),
			"columns":        ds.Roles,
			"parse_failures": ds.ParseFailures,
			"chart_types":    result.ChartTypes,
		})
	}

	printDatasetHeader(out, ds)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tROLE\tPARSE FAILURES")
	for _, cr := range ds.Roles {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", cr.Name, cr.Role, ds.ParseFailures[cr.Name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nChart types: %s\n", joinTypes(result.ChartTypes))
	return nil
}

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var flags analysisFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Filter by period, summarize and build a chart spec",
		Long: `Run the full dashboard pipeline over a file: classify columns, restrict
rows to a period of the temporal anchor, summarize numeric columns, count
categories and optionally build a chart.

Example: csvdash-cli analyze prices.csv --period 3M --chart candlestick`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), opts, args[0], req, asJSON, cmd.OutOrStdout())
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis result as JSON")
	return cmd
}

func runAnalyze(ctx context.Context, opts *globalOptions, path string, req app.AnalysisRequest, asJSON bool, out io.Writer) error {
	svc, done, err := newDashboard(opts)
	if err != nil {
		return err
	}
	defer done()

	ds, err := svc.LoadFile(ctx, path)
	if err != nil {
		return err
	}
	result, err := svc.Analyze(ctx, ds, req)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, result)
	}

	printDatasetHeader(out, ds)
	if result.Window != nil {
		fmt.Fprintf(out, "Anchor: %s  Window: %s .. %s\n", result.Anchor,
			result.Window.Start.Format(time.RFC3339), result.Window.End.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Rows in window: %d of %d", result.Rows, result.TotalRows)
	if result.DroppedRows > 0 {
		fmt.Fprintf(out, " (%d without anchor dropped)", result.DroppedRows)
	}
	fmt.Fprintln(out)
	if result.Empty {
		fmt.Fprintln(out, "No data in the selected period.")
	}

	if len(result.Summaries) > 0 {
		fmt.Fprintf(out, "\n=== SUMMARY ===\n")
		if err := printSummaries(out, ds, result.Summaries); err != nil {
			return err
		}
	}

	if len(result.Frequencies) > 0 {
		fmt.Fprintf(out, "\n=== CATEGORIES ===\n")
		for _, cr := range ds.Roles {
			freq, ok := result.Frequencies[cr.Name]
			if !ok {
				continue
			}
			fmt.Fprintf(out, "%s (%d values)\n", cr.Name, freq.Total)
			for _, vc := range freq.Values {
				fmt.Fprintf(out, "  %-20s %6d  %5.1f%%\n", vc.Value, vc.Count, vc.Ratio*100)
			}
		}
	}

	if result.CustomStat != nil {
		fmt.Fprintf(out, "\n=== CUSTOM STAT: %s ===\n", result.CustomStat.Column)
		if err := printSummaries(out, ds, map[string]stats.Summary{result.CustomStat.Column: *result.CustomStat}); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\nChart types: %s\n", joinTypes(result.ChartTypes))
	switch {
	case result.Chart != nil:
		fmt.Fprintf(out, "Chart: %s (%s, %d rows)\n", result.Chart.Title, result.Chart.Type, result.Chart.Rows)
		for _, s := range result.Chart.Series {
			fmt.Fprintf(out, "  %-6s -> %s (%s)\n", s.Role, s.Column, s.Kind)
		}
	case result.Rejection != nil:
		fmt.Fprintf(out, "Chart rejected [%s]: %s\n", result.Rejection.Code, result.Rejection.Message)
	}
	return nil
}

func newRenderCmd(opts *globalOptions) *cobra.Command {
	var flags analysisFlags
	var output string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a chart to a PNG file",
		Long: `Build a chart from a file and write it as PNG. Axes that are not given
default to the first legal candidate.

Example: csvdash-cli render sales.csv --chart pie --label Category --value Amount --out pie.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			if req.Chart == nil {
				return fmt.Errorf("--chart is required")
			}
			return runRender(cmd.Context(), opts, args[0], req, output, cmd.OutOrStdout())
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "out", "o", "chart.png", "Output PNG path")
	return cmd
}

func runRender(ctx context.Context, opts *globalOptions, path string, req app.AnalysisRequest, output string, out io.Writer) error {
	svc, done, err := newDashboard(opts)
	if err != nil {
		return err
	}
	defer done()

	ds, err := svc.LoadFile(ctx, path)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	result, renderErr := svc.RenderChart(ctx, ds, req, f)
	if err := f.Close(); err != nil && renderErr == nil {
		renderErr = err
	}
	if renderErr != nil {
		_ = os.Remove(output)
		return renderErr
	}

	fmt.Fprintf(out, "Wrote %s: %s (%d rows)\n", output, result.Chart.Title, result.Chart.Rows)
	return nil
}

func newSampleCmd() *cobra.Command {
	var kind string
	var rows int
	var seed int64

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a deterministic sample CSV to stdout",
		Long: `Generate sample data for trying the dashboard.

  ohlc   daily Date, Open, High, Low, Close, Volume prices
  sales  orders with Date, Category, Region, Units, Amount

Example: csvdash-cli sample --kind ohlc --rows 365 > prices.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return testkit.WriteSample(cmd.OutOrStdout(), kind, rows, seed)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", testkit.KindOHLC, "Sample kind: ohlc|sales")
	cmd.Flags().IntVar(&rows, "rows", 0, "Number of rows (0 keeps the generator default)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	return cmd
}

func printDatasetHeader(out io.Writer, ds *dataset.Dataset) {
	fmt.Fprintf(out, "%s: %d rows, %d columns\n", ds.Filename, ds.RowCount(), len(ds.Roles))
}

func printSummaries(out io.Writer, ds *dataset.Dataset, summaries map[string]stats.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "COLUMN\tCOUNT\tFIRST\tLATEST\tMIN\tMAX\tMEAN\tMEDIAN\tSTD\tSUM\tCHANGE %\t")

	names := make([]string, 0, len(summaries))
	for _, cr := range ds.Roles {
		if _, ok := summaries[cr.Name]; ok {
			names = append(names, cr.Name)
		}
	}
	if len(names) < len(summaries) {
		names = names[:0]
		for name := range summaries {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	for _, name := range names {
		s := summaries[name]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			name, s.Count, num(s.First), num(s.Latest), num(s.Min), num(s.Max),
			num(s.Mean), num(s.Median), num(s.StdDev), num(s.Sum), num(s.PercentChange))
	}
	return tw.Flush()
}

func num(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *f)
}

func joinTypes(types []chart.ChartType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
