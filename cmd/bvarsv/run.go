// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"bvarsv/internal/bvar"
	"bvarsv/internal/config"
	"bvarsv/internal/dataio"
	"bvarsv/internal/linalg"
	"bvarsv/internal/metrics"
)

// run holds everything one invocation shares between estimation and the
// downstream forecast or IRF step.
type run struct {
	cfg *config.Config
	log *zap.Logger
	rec *metrics.Recorder

	ts    *bvar.TimeSeries
	Y, X  *mat.Dense
	prior *bvar.PriorSpec

	samplerSeed  uint64
	forecastSeed uint64

	stopMetrics func()
}

// newRun loads the data, builds the design and the Minnesota prior, and
// starts the metrics endpoint when one is configured.
func newRun(ctx context.Context, c *config.Config, log *zap.Logger) (*run, error) {
	if c.Data.Path == "" {
		return nil, fmt.Errorf("%w: no data file, set data.path or --data", bvar.ErrConfiguration)
	}

	// 1. Load CSV into TimeSeries
	ts, err := dataio.LoadCSV(c.Data.Path)
	if err != nil {
		return nil, err
	}
	T, N := ts.Y.Dims()
	log.Info("loaded series",
		zap.String("path", c.Data.Path),
		zap.Int("rows", T),
		zap.Int("variables", N),
		zap.Strings("names", ts.VarNames),
	)

	// 2. Stack the regression
	Y, X, err := bvar.BuildDesign(ts, c.Model.Lags)
	if err != nil {
		return nil, err
	}

	// 3. OLS residual covariance scales the prior
	fit, err := bvar.OLS(Y, X)
	if err != nil {
		return nil, err
	}
	prior, err := bvar.NewMinnesotaPrior(N, c.Model.Lags, c.Prior.Kappa1, c.Prior.Kappa2, fit.SigmaHat)
	if err != nil {
		return nil, err
	}

	master := c.Sampler.ResolveSeed(time.Now())
	seeds := linalg.DeriveSeeds(linalg.NewRand(master), 2)
	log.Info("seeded run", zap.Uint64("seed", master))

	r := &run{
		cfg:          c,
		log:          log,
		rec:          metrics.New(),
		ts:           ts,
		Y:            Y,
		X:            X,
		prior:        prior,
		samplerSeed:  seeds[0],
		forecastSeed: seeds[1],
		stopMetrics:  func() {},
	}

	if c.Metrics.Addr != "" {
		mctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := metrics.Serve(mctx, c.Metrics.Addr, c.Metrics.Path, r.rec.Handler(), log); err != nil {
				log.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
		r.stopMetrics = func() {
			cancel()
			<-done
		}
	}
	return r, nil
}

func (r *run) close() { r.stopMetrics() }

func (r *run) model() string {
	if r.cfg.Model.StochasticVolatility {
		return bvar.ModelSV
	}
	return bvar.ModelBaseline
}

// estimate samples the posterior. On interruption the retained prefix is
// returned together with the error so callers can still write it out.
func (r *run) estimate(ctx context.Context) (*bvar.Ensemble, error) {
	opts := bvar.SamplerOptions{
		Seed:     r.samplerSeed,
		Workers:  r.cfg.Sampler.Workers,
		Logger:   r.log,
		Observer: r.rec,
	}

	start := time.Now()
	var (
		ens *bvar.Ensemble
		err error
	)
	if r.cfg.Model.StochasticVolatility {
		ens, err = r.estimateSV(ctx, opts)
	} else {
		ens, err = bvar.EstimateBaseline(ctx, r.Y, r.X, r.prior, r.cfg.Sampler.Draws, opts)
	}
	r.rec.RecordRun(r.model(), err, time.Since(start))
	return ens, err
}

func (r *run) estimateSV(ctx context.Context, opts bvar.SamplerOptions) (*bvar.Ensemble, error) {
	chainEns, err := bvar.RunChains(ctx, r.Y, r.X, r.prior, r.cfg.SVPrior(), r.cfg.SVConfig(), r.cfg.Sampler.Chains, opts)
	if chainEns == nil {
		return nil, err
	}
	merged, mergeErr := bvar.MergeChains(chainEns)
	if mergeErr != nil {
		return nil, errors.Join(err, mergeErr)
	}
	return merged, err
}

// estimateAndSave runs the sampler and writes the draws. A partial
// ensemble from an interrupted run is still written before the error is
// returned.
func (r *run) estimateAndSave(ctx context.Context) (*bvar.Ensemble, error) {
	ens, err := r.estimate(ctx)
	if ens == nil {
		return nil, err
	}
	if err != nil {
		r.log.Warn("sampling interrupted, keeping completed draws",
			zap.Int("draws", ens.Len()), zap.Error(err))
	}

	if err := os.MkdirAll(r.cfg.Output.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if r.cfg.Output.WriteDraws && ens.Len() > 0 {
		path := r.outPath("draws.csv")
		if werr := dataio.WriteEnsembleCSV(path, ens); werr != nil {
			return nil, fmt.Errorf("write draws: %w", werr)
		}
		r.log.Info("posterior draws written", zap.String("path", path), zap.Int("draws", ens.Len()))
	}
	return ens, err
}

func (r *run) outPath(name string) string {
	prefix := r.model()
	return filepath.Join(r.cfg.Output.Dir, prefix+"_"+name)
}

// forecast simulates the predictive distribution from the end of the sample.
func (r *run) forecast(ens *bvar.Ensemble) (*bvar.ForecastSummary, error) {
	fc, err := bvar.Simulate(ens, r.ts.Y, r.cfg.Forecast.Horizon, bvar.SimulateOptions{
		Seed:           r.forecastSeed,
		Workers:        r.cfg.Sampler.Workers,
		VolatilityPath: r.cfg.Forecast.VolatilityPath,
	})
	if err != nil {
		return nil, err
	}
	sum, err := fc.Summarize(r.cfg.Forecast.Credibility)
	if err != nil {
		return nil, err
	}

	path := r.outPath("forecast.csv")
	if err := dataio.WriteForecastCSV(path, sum, r.ts.VarNames); err != nil {
		return nil, fmt.Errorf("write forecast: %w", err)
	}
	r.log.Info("forecast written", zap.String("path", path), zap.Int("horizon", fc.Horizon))
	return sum, nil
}

// irf computes posterior impulse responses to one shock.
func (r *run) irf(ens *bvar.Ensemble, shock, horizon int) (*bvar.IRFSummary, error) {
	sum, err := bvar.PosteriorIRF(ens, horizon, shock, r.cfg.Forecast.Credibility)
	if err != nil {
		return nil, err
	}
	if err := r.writeIRF(sum); err != nil {
		return nil, err
	}
	return sum, nil
}

func (r *run) writeIRF(sum *bvar.IRFSummary) error {
	path := r.outPath(fmt.Sprintf("irf_shock%d.csv", sum.ShockIndex))
	if err := dataio.WriteIRFCSV(path, sum, r.ts.VarNames); err != nil {
		return fmt.Errorf("write irf: %w", err)
	}
	r.log.Info("impulse responses written", zap.String("path", path), zap.Int("shock", sum.ShockIndex))
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
