package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"causalimpact/adapters/excel"
	"causalimpact/adapters/rng"
	"causalimpact/app"
	"causalimpact/domain/core"
	"causalimpact/internal"
	"causalimpact/internal/config"
	"causalimpact/internal/errors"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env is fine; the environment and flags still apply
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// Exit codes
const (
	exitFailure    = 1 // usage, I/O and loader errors
	exitValidation = 2
	exitFitting    = 3
	exitInternal   = 4
)

func exitCode(err error) int {
	switch {
	case core.IsValidationError(err):
		return exitValidation
	case core.IsFittingError(err):
		return exitFitting
	case errors.IsAppError(err):
		return exitInternal
	default:
		return exitFailure
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "causalimpact-cli",
		Short:         "Estimate the causal effect of an intervention on a time series",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newAnalyzeCmd())
	return rootCmd
}

type analyzeOptions struct {
	pre           []string
	post          []string
	alpha         float64
	nSims         int
	seed          int64
	workers       int
	noStandardize bool
	indexColumn   string
	sheet         string
	jsonOutput    bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [data-file]",
		Short: "Run a causal impact analysis on a CSV or XLSX file",
		Long: `Fit a local level model on the pre-period and compare its post-period
forecast with the observed response. The first value column is the response,
the remaining columns are covariates.

Example: causalimpact-cli analyze sales.csv --index-col date --pre 20180101,20180410 --post 20180411,20180719`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			file := cfg.Data.File
			if len(args) == 1 {
				file = args[0]
			}
			if file == "" {
				return fmt.Errorf("no data file given (argument or CAUSALIMPACT_DATA_FILE)")
			}
			applyDefaults(cmd, opts, cfg)
			return runAnalyze(cmd, file, opts, cfg)
		},
	}

	cmd.Flags().StringSliceVar(&opts.pre, "pre", nil, "Pre-period start,end (row positions or index labels)")
	cmd.Flags().StringSliceVar(&opts.post, "post", nil, "Post-period start,end (row positions or index labels)")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", config.DefaultAlpha, "Significance level of the intervals")
	cmd.Flags().IntVar(&opts.nSims, "n-sims", config.DefaultNSims, "Number of posterior simulations")
	cmd.Flags().Int64Var(&opts.seed, "seed", config.DefaultSeed, "Random seed for deterministic simulations")
	cmd.Flags().IntVar(&opts.workers, "workers", config.DefaultSimWorkers, "Concurrent simulation workers")
	cmd.Flags().BoolVar(&opts.noStandardize, "no-standardize", false, "Fit the model on raw values")
	cmd.Flags().StringVar(&opts.indexColumn, "index-col", "", "Timestamp column used as the datetime index")
	cmd.Flags().StringVar(&opts.sheet, "sheet", config.DefaultSheet, "Worksheet to read from xlsx files")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the full result as JSON")
	_ = cmd.MarkFlagRequired("pre")
	_ = cmd.MarkFlagRequired("post")

	return cmd
}

// applyDefaults fills flags the user did not set from the environment configuration
func applyDefaults(cmd *cobra.Command, opts *analyzeOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("alpha") {
		opts.alpha = cfg.Analysis.Alpha
	}
	if !flags.Changed("n-sims") {
		opts.nSims = cfg.Analysis.NSims
	}
	if !flags.Changed("seed") {
		opts.seed = cfg.Analysis.Seed
	}
	if !flags.Changed("workers") {
		opts.workers = cfg.Analysis.SimWorkers
	}
	if !flags.Changed("no-standardize") {
		opts.noStandardize = !cfg.Analysis.Standardize
	}
	if !flags.Changed("index-col") {
		opts.indexColumn = cfg.Data.IndexColumn
	}
	if !flags.Changed("sheet") {
		opts.sheet = cfg.Data.Sheet
	}
}

func runAnalyze(cmd *cobra.Command, file string, opts *analyzeOptions, cfg *config.Config) error {
	// alpha=0 yields infinite interval bounds, which have no JSON or table form
	if opts.alpha <= 0 {
		return fmt.Errorf("--alpha must be greater than 0, got %v", opts.alpha)
	}
	logger := internal.NewLoggerWithOutput(internal.ParseLogLevel(cfg.Log.Level), cmd.ErrOrStderr())

	excelCfg := excel.DefaultExcelConfig()
	excelCfg.FilePath = file
	excelCfg.Sheet = opts.sheet
	excelCfg.IndexColumn = opts.indexColumn
	frame, err := excel.LoadFrame(excelCfg)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", file, err)
	}

	analysisCfg := cfg.Analysis
	analysisCfg.SimWorkers = opts.workers
	service := app.NewImpactService(analysisCfg, logger, rng.NewSeededAdapter())

	result, err := service.Analyze(cmd.Context(), app.AnalysisRequest{
		Data:       frame,
		PrePeriod:  parsePeriod(opts.pre),
		PostPeriod: parsePeriod(opts.post),
		Alpha:      opts.alpha,
		ModelArgs: map[string]interface{}{
			app.ArgStandardize: !opts.noStandardize,
			app.ArgNSims:       opts.nSims,
			app.ArgSeed:        opts.seed,
		},
	})
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	printSummary(cmd.OutOrStdout(), result)
	return nil
}

// parsePeriod returns []int when every bound is an integer, else the raw labels
func parsePeriod(bounds []string) interface{} {
	if bounds == nil {
		return nil
	}
	ints := make([]int, 0, len(bounds))
	for _, b := range bounds {
		v, err := strconv.Atoi(strings.TrimSpace(b))
		if err != nil {
			labels := make([]string, len(bounds))
			for i, s := range bounds {
				labels[i] = strings.TrimSpace(s)
			}
			return labels
		}
		ints = append(ints, v)
	}
	return ints
}

func writeJSON(w io.Writer, result *app.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		*app.Result
		Summary interface{} `json:"summary"`
	}{Result: result, Summary: result.Summary()})
}

func printSummary(w io.Writer, result *app.Result) {
	s := result.Summary()
	bold := color.New(color.Bold)
	significant := color.New(color.FgGreen, color.Bold)
	notSignificant := color.New(color.FgYellow, color.Bold)

	bold.Fprintf(w, "Causal impact analysis %s\n", result.ID)
	fmt.Fprintf(w, "Pre-period %s, post-period %s (%d points)\n\n",
		result.PrePeriod, result.PostPeriod, s.PostPeriodLength)

	fmt.Fprintf(w, "%-22s %14s %14s\n", "", "Average", "Cumulative")
	fmt.Fprintf(w, "%-22s %14.4f %14.4f\n", "Actual", s.AverageActual, s.Actual)
	fmt.Fprintf(w, "%-22s %14.4f %14.4f\n", "Predicted", s.AveragePredicted, s.Predicted)
	fmt.Fprintf(w, "%-22s %14s [%.4f, %.4f]\n", fmt.Sprintf("%.0f%% interval", s.ConfidencePercent), "",
		s.PredictedLower, s.PredictedUpper)
	fmt.Fprintf(w, "%-22s %14.4f %14.4f\n", "Absolute effect", s.AverageAbsEffect, s.AbsEffect)
	fmt.Fprintf(w, "%-22s %14s [%.4f, %.4f]\n", fmt.Sprintf("%.0f%% interval", s.ConfidencePercent), "",
		s.AbsEffectLower, s.AbsEffectUpper)
	fmt.Fprintf(w, "%-22s %14s %13.2f%%\n\n", "Relative effect", "", 100*s.RelEffect)

	verdict := notSignificant
	label := "not significant"
	if s.Significant {
		verdict = significant
		label = "significant"
	}
	fmt.Fprintf(w, "Posterior tail-area probability p: ")
	verdict.Fprintf(w, "%.4f (%s at alpha=%.2f)\n", s.PValue, label, result.Alpha)
}
