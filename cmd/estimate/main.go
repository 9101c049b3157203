package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/gymdemand/internal/adapters/csvio"
	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/core/usecases"
	"github.com/samirrijal/gymdemand/internal/pkg/config"
	"github.com/samirrijal/gymdemand/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("gymdemand-estimate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so stdout stays a clean table.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text"))

	if err := newEstimateCmd(cfg.Model).Execute(); err != nil {
		os.Exit(1)
	}
}

type estimateFlags struct {
	facilities   string
	populations  string
	competitors  string
	metric       string
	zeroDistance string
	epsilon      float64
	nonNegative  bool
	workers      int
	format       string
}

func newEstimateCmd(model config.ModelConfig) *cobra.Command {
	f := &estimateFlags{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate net gym demand from site tables",
		Long: `Reads a facilities table (gym_name,x,y,attractiveness), a population table
(x,y,population_count with an optional id) and an optional competitors table
(name,x,y,attractiveness), evaluates the gravity model and prints gym_name,demand.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd.Context(), cmd, model, f)
		},
	}

	cmd.Flags().StringVar(&f.facilities, "facilities", "", "facilities CSV file (required)")
	cmd.Flags().StringVar(&f.populations, "populations", "", "population sites CSV file (required)")
	cmd.Flags().StringVar(&f.competitors, "competitors", "", "competitors CSV file")
	cmd.Flags().StringVar(&f.metric, "metric", "", "distance metric: euclidean or haversine (default from config)")
	cmd.Flags().StringVar(&f.zeroDistance, "zero-distance", "", "zero-distance policy: reject or clamp (default from config)")
	cmd.Flags().Float64Var(&f.epsilon, "epsilon", 0, "clamp floor for the clamp policy (default from config)")
	cmd.Flags().BoolVar(&f.nonNegative, "non-negative", false, "clamp negative net demand at zero")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "row-parallel workers (default from config)")
	cmd.Flags().StringVarP(&f.format, "output", "o", "csv", "output format: csv or json")

	_ = cmd.MarkFlagRequired("facilities")
	_ = cmd.MarkFlagRequired("populations")

	return cmd
}

func runEstimate(ctx context.Context, cmd *cobra.Command, model config.ModelConfig, f *estimateFlags) error {
	if f.format != "csv" && f.format != "json" {
		return fmt.Errorf("unknown output format %q (want csv or json)", f.format)
	}

	dcfg, err := usecases.NewDemandConfig(model)
	if err != nil {
		return fmt.Errorf("model config: %w", err)
	}
	if f.workers > 0 {
		dcfg.Defaults.Workers = f.workers
	}
	// No size bound for local files.
	dcfg.MaxCells = 0
	svc := usecases.NewDemandService(nil, nil, nil, nil, dcfg)

	in, err := csvio.LoadInput(f.facilities, f.populations, f.competitors)
	if err != nil {
		return err
	}

	params := usecases.EstimateParams{Metric: f.metric, ZeroDistance: f.zeroDistance}
	if cmd.Flags().Changed("epsilon") {
		params.Epsilon = &f.epsilon
	}
	if cmd.Flags().Changed("non-negative") {
		params.NonNegative = &f.nonNegative
	}

	est, err := svc.Estimate(ctx, in, params)
	if err != nil {
		return err
	}
	slog.Debug("estimate computed",
		"facilities", len(in.Facilities),
		"populations", len(in.Populations),
		"competitors", len(in.Competitors),
		"total", est.Total)

	return writeEstimate(cmd.OutOrStdout(), f.format, est)
}

func writeEstimate(w io.Writer, format string, est *domain.DemandEstimate) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}
	return csvio.WriteDemand(w, est.Facilities)
}
