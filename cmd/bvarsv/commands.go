// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bvarsv/internal/bvar"
	"bvarsv/internal/dataio"
)

var (
	irfShock   int
	irfHorizon int
	irfAll     bool
	horizon    int
	volPath    bool
)

// estimateCmd samples the posterior and writes the draws
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Sample the posterior and write the draws",
	Long: `Loads the series, builds the Minnesota prior from an OLS fit and samples
the posterior. Draws are written in long format to <out>/<model>_draws.csv.

Interrupting with Ctrl-C keeps the draws completed so far.`,
	RunE: runEstimate,
}

// forecastCmd samples the posterior and simulates the predictive distribution
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Simulate h-step forecasts with credible bands",
	RunE:  runForecast,
}

// irfCmd samples the posterior and computes impulse responses
var irfCmd = &cobra.Command{
	Use:   "irf",
	Short: "Posterior impulse responses to one orthogonalised shock",
	RunE:  runIRF,
}

// initConfigCmd writes the resolved configuration as YAML
var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the current configuration as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Save(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", args[0])
		return nil
	},
}

func init() {
	forecastCmd.Flags().IntVar(&horizon, "horizon", 0, "Forecast horizon (overrides forecast.horizon)")
	forecastCmd.Flags().BoolVar(&volPath, "volatility-path", false, "Project log-volatility forward (SV only)")

	irfCmd.Flags().IntVar(&irfShock, "shock", 0, "Index of the shocked variable")
	irfCmd.Flags().IntVar(&irfHorizon, "horizon", 12, "Number of response periods, including impact")
	irfCmd.Flags().BoolVar(&irfAll, "all", false, "Shock every variable in turn")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	r, err := newRun(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer r.close()

	ens, err := r.estimateAndSave(ctx)
	if err != nil {
		return err
	}
	return dataio.Summary(cmd.OutOrStdout(), ens, r.ts)
}

func runForecast(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("horizon") {
		cfg.Forecast.Horizon = horizon
	}
	if cmd.Flags().Changed("volatility-path") {
		cfg.Forecast.VolatilityPath = volPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	r, err := newRun(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer r.close()

	ens, err := r.estimateAndSave(ctx)
	if err != nil {
		return err
	}

	sum, err := r.forecast(ens)
	if err != nil {
		return err
	}
	return dataio.PrintForecast(cmd.OutOrStdout(), sum, r.ts.VarNames)
}

func runIRF(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	r, err := newRun(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer r.close()

	_, N := r.ts.Y.Dims()
	if irfShock < 0 || irfShock >= N {
		return fmt.Errorf("%w: shock index %d out of range [0, %d)", bvar.ErrConfiguration, irfShock, N)
	}

	ens, err := r.estimateAndSave(ctx)
	if err != nil {
		return err
	}

	if irfAll {
		all, err := bvar.PosteriorIRFAll(ens, irfHorizon, cfg.Forecast.Credibility)
		if err != nil {
			return err
		}
		for _, sum := range all {
			if err := r.writeIRF(sum); err != nil {
				return err
			}
			if err := dataio.PrintIRF(cmd.OutOrStdout(), sum, r.ts.VarNames); err != nil {
				return err
			}
		}
		return nil
	}

	sum, err := r.irf(ens, irfShock, irfHorizon)
	if err != nil {
		return err
	}
	return dataio.PrintIRF(cmd.OutOrStdout(), sum, r.ts.VarNames)
}
