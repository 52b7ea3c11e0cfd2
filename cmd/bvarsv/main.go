// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

// Command bvarsv estimates a Bayesian VAR, with or without stochastic
// volatility, and writes posterior draws, forecasts and impulse responses.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bvarsv/internal/config"
	"bvarsv/internal/logging"
)

var version = "dev"

var (
	// Global flags
	verbose     bool
	configPath  string
	dataPath    string
	outDir      string
	useSV       bool
	seed        uint64
	lags        int
	draws       int
	burnIn      int
	chains      int
	workers     int
	metricsAddr string

	// Resolved in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bvarsv",
	Short: "Bayesian VAR with stochastic volatility",
	Long: `bvarsv estimates a VAR(p) under a Minnesota normal-inverse-Wishart prior.

With --sv the error covariance is scaled by a common stochastic volatility
factor and the posterior is explored with a Gibbs sampler. Without it the
posterior is sampled directly.

Example:
  bvarsv forecast --data macro.csv --lags 4 --sv --draws 2000 --burn-in 500`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = resolveConfig(cmd)
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bvarsv %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&dataPath, "data", "d", "", "CSV with a header row of variable names")
	pf.StringVarP(&outDir, "out", "o", "", "Output directory")
	pf.BoolVar(&useSV, "sv", false, "Use the stochastic volatility model")
	pf.Uint64Var(&seed, "seed", 0, "Master seed (0 seeds from the clock)")
	pf.IntVarP(&lags, "lags", "p", 0, "Lag order")
	pf.IntVar(&draws, "draws", 0, "Retained posterior draws per chain")
	pf.IntVar(&burnIn, "burn-in", 0, "Discarded Gibbs sweeps per chain")
	pf.IntVar(&chains, "chains", 0, "Independent SV chains")
	pf.IntVar(&workers, "workers", 0, "Concurrent workers (0 = one per CPU)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(irfCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig loads the configuration file, if any, and applies the
// flags the user set explicitly on top of it.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if configPath != "" {
		var err error
		c, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		c.Data.Path = dataPath
	}
	if flags.Changed("out") {
		c.Output.Dir = outDir
	}
	if flags.Changed("sv") {
		c.Model.StochasticVolatility = useSV
	}
	if flags.Changed("seed") {
		c.Sampler.Seed = seed
	}
	if flags.Changed("lags") {
		c.Model.Lags = lags
	}
	if flags.Changed("draws") {
		c.Sampler.Draws = draws
	}
	if flags.Changed("burn-in") {
		c.Sampler.BurnIn = burnIn
	}
	if flags.Changed("chains") {
		c.Sampler.Chains = chains
	}
	if flags.Changed("workers") {
		c.Sampler.Workers = workers
	}
	if flags.Changed("metrics-addr") {
		c.Metrics.Addr = metricsAddr
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
