package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	remote "statcalc/adapters/api"
	"statcalc/adapters/excel"
	"statcalc/adapters/stats/reference"
	"statcalc/adapters/text"
	"statcalc/app"
	"statcalc/domain/calculation"
	"statcalc/domain/stats"
	"statcalc/internal/report"
	"statcalc/ports"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options are the flags shared by every calculation command
type options struct {
	level   string
	file    string
	column  string
	sheet   string
	url     string
	path    string
	timeout time.Duration
	strict  bool
	json    bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "statcalc",
		Short:         "Descriptive statistics, confidence intervals and sample sizes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.level, "level", string(stats.DefaultLevel), "Confidence level: 0.90, 0.95 or 0.99")
	flags.StringVar(&opts.file, "file", "", "Read observations from a .csv or .xlsx file")
	flags.StringVar(&opts.column, "column", "", "Column header to read (default: first column)")
	flags.StringVar(&opts.sheet, "sheet", "", "Worksheet for .xlsx files (default: first sheet)")
	flags.StringVar(&opts.url, "url", "", "Fetch observations from a JSON endpoint")
	flags.StringVar(&opts.path, "path", "", "gjson path to the values inside the JSON document")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Timeout for --url requests")
	flags.BoolVar(&opts.strict, "strict", false, "Reject non-numeric values instead of skipping them")
	flags.BoolVar(&opts.json, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		newDescribeCmd(opts),
		newIntervalCmd(opts),
		newSampleSizeCmd(opts),
		newTablesCmd(),
	)
	return rootCmd
}

func newDescribeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [values...]",
		Short: "Mean, variance and standard deviation of the observations",
		Long: `Compute the mean, Bessel-corrected variance and standard deviation.

Example: statcalc describe 10 20 30 40
         statcalc describe --file scores.xlsx --column score`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObservationCalc(cmd, opts, calculation.KindDescribe, args)
		},
	}
}

func newIntervalCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interval",
		Short: "Confidence intervals",
	}

	mean := &cobra.Command{
		Use:   "mean [values...]",
		Short: "z-based confidence interval for the mean",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObservationCalc(cmd, opts, calculation.KindMeanInterval, args)
		},
	}
	meanT := &cobra.Command{
		Use:   "mean-t [values...]",
		Short: "t-based confidence interval for the mean (nearest tabulated df)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runObservationCalc(cmd, opts, calculation.KindMeanIntervalT, args)
		},
	}

	var p float64
	var n int
	proportion := &cobra.Command{
		Use:   "proportion",
		Short: "Confidence interval for a proportion, clamped to [0, 1]",
		Long:  "Example: statcalc interval proportion --p 0.5 --n 100 --level 0.95",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, opts, calculation.Request{
				Kind:       calculation.KindProportionInterval,
				Proportion: &p,
				N:          n,
			}, 0, "")
		},
	}
	proportion.Flags().Float64Var(&p, "p", 0, "Sample proportion in [0, 1]")
	proportion.Flags().IntVar(&n, "n", 0, "Sample size")
	_ = proportion.MarkFlagRequired("p")
	_ = proportion.MarkFlagRequired("n")

	cmd.AddCommand(mean, meanT, proportion)
	return cmd
}

func newSampleSizeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample-size",
		Short: "Minimum sample sizes for a target margin of error",
	}

	var meanErr, sigma float64
	mean := &cobra.Command{
		Use:   "mean",
		Short: "Sample size to estimate a mean",
		Long:  "Example: statcalc sample-size mean --error 2 --sigma 10",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, opts, calculation.Request{
				Kind:         calculation.KindSampleSizeMean,
				DesiredError: meanErr,
				Sigma:        sigma,
			}, 0, "")
		},
	}
	mean.Flags().Float64Var(&meanErr, "error", 0, "Desired margin of error")
	mean.Flags().Float64Var(&sigma, "sigma", 0, "Population standard deviation")
	_ = mean.MarkFlagRequired("error")
	_ = mean.MarkFlagRequired("sigma")

	var propErr, p float64
	proportion := &cobra.Command{
		Use:   "proportion",
		Short: "Sample size to estimate a proportion",
		Long:  "Example: statcalc sample-size proportion --error 0.05 --p 0.5",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, opts, calculation.Request{
				Kind:         calculation.KindSampleSizeProportion,
				DesiredError: propErr,
				Proportion:   &p,
			}, 0, "")
		},
	}
	proportion.Flags().Float64Var(&propErr, "error", 0, "Desired margin of error")
	proportion.Flags().Float64Var(&p, "p", 0.5, "Expected proportion in [0, 1]")
	_ = proportion.MarkFlagRequired("error")

	cmd.AddCommand(mean, proportion)
	return cmd
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect the critical value tables",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the z and t tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printTables(cmd.OutOrStdout())
			return nil
		},
	}

	var tolerance float64
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Compare the tables with exact quantiles",
		Long:  "Exits non-zero when any tabulated value differs from the exact quantile by more than --tolerance.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifyTables(cmd.OutOrStdout(), tolerance)
		},
	}
	verify.Flags().Float64Var(&tolerance, "tolerance", 0.01, "Maximum allowed absolute deviation")

	cmd.AddCommand(show, verify)
	return cmd
}

func runObservationCalc(cmd *cobra.Command, opts *options, kind calculation.Kind, args []string) error {
	source, err := observationSource(opts, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	values, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load observations: %w", err)
	}

	return runCalc(cmd, opts, calculation.Request{Kind: kind, Observations: values}, len(values), source.Origin())
}

func observationSource(opts *options, args []string) (ports.ObservationSource, error) {
	given := 0
	for _, set := range []bool{len(args) > 0, opts.file != "", opts.url != ""} {
		if set {
			given++
		}
	}
	if given != 1 {
		return nil, fmt.Errorf("give observations as arguments, --file or --url (exactly one)")
	}

	switch {
	case opts.file != "":
		cfg := excel.DefaultExcelConfig()
		cfg.FilePath = opts.file
		cfg.Column = opts.column
		cfg.Sheet = opts.sheet
		cfg.Strict = opts.strict
		return excel.NewSource(cfg), nil
	case opts.url != "":
		cfg := remote.DefaultRemoteSource(opts.url)
		cfg.DataPath = opts.path
		cfg.Timeout = opts.timeout
		return remote.NewRemoteReader(cfg)
	default:
		return text.Source{Input: strings.Join(args, " "), Strict: opts.strict}, nil
	}
}

func runCalc(cmd *cobra.Command, opts *options, req calculation.Request, n int, origin string) error {
	level, err := stats.ParseLevel(opts.level)
	if err != nil {
		return err
	}
	req.Level = level

	calculator := app.NewCalculatorService(nil, nil)
	calculator.SetStrictLevels(true)
	calculator.SetSummarizer(reference.NewSummarizer())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := calculator.Evaluate(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if n > 0 {
		if origin != "" {
			fmt.Fprintf(out, "Data loaded from %s: %d values\n\n", origin, n)
		} else {
			fmt.Fprintf(out, "Data loaded: %d values\n\n", n)
		}
	}
	fmt.Fprint(out, report.Section(req.Kind, result, nil))
	return nil
}

func printTables(out io.Writer) {
	cyan := color.New(color.FgCyan)

	header := fmt.Sprintf("%-6s %7s", "level", "z")
	for _, df := range stats.DFBuckets() {
		header += fmt.Sprintf(" %7s", fmt.Sprintf("t(%d)", df))
	}
	cyan.Fprintln(out, header)
	for _, level := range stats.Levels() {
		fmt.Fprintf(out, "%-6s %7.3f", level, stats.ZValue(level))
		for _, df := range stats.DFBuckets() {
			fmt.Fprintf(out, " %7.3f", stats.TValue(level, df))
		}
		fmt.Fprintln(out)
	}
}

func verifyTables(out io.Writer, tolerance float64) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	devs := reference.VerifyTables()
	failed := 0
	for _, d := range devs {
		mark := green.Sprintf("%-4s", "ok")
		if d.AbsDiff > tolerance {
			mark = red.Sprintf("%-4s", "FAIL")
			failed++
		}
		name := d.Kind
		if d.Kind == "t" {
			name = fmt.Sprintf("t(%d)", d.DF)
		}
		fmt.Fprintf(out, "%s %-7s %s tabulated=%.3f exact=%.4f diff=%.4f\n", mark, name, d.Level, d.Tabulated, d.Exact, d.AbsDiff)
	}
	if worst, ok := reference.Worst(devs); ok {
		dim.Fprintf(out, "\nworst deviation: %.4f (%s %s)\n", worst.AbsDiff, worst.Kind, worst.Level)
	}
	if failed > 0 {
		return fmt.Errorf("%d table entries exceed tolerance %g", failed, tolerance)
	}
	return nil
}
