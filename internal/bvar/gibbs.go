// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"bvarsv/internal/linalg"
)

// Model labels passed to Observer.ObserveDraw.
const (
	ModelBaseline = "baseline"
	ModelSV       = "sv"
)

type nopObserver struct{}

func (nopObserver) ObserveSweep(int, bool, time.Duration) {}
func (nopObserver) ObserveDraw(string)                    {}

func (o SamplerOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o SamplerOptions) observer() Observer {
	if o.Observer == nil {
		return nopObserver{}
	}
	return o.Observer
}

func (o SamplerOptions) workers(jobs int) int {
	n := o.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > jobs {
		n = jobs
	}
	if n < 1 {
		n = 1
	}
	return n
}

// EstimateBaseline computes the posterior and draws nDraws i.i.d. samples
// of the homoskedastic model.
func EstimateBaseline(ctx context.Context, Y, X *mat.Dense, prior *PriorSpec, nDraws int, opts SamplerOptions) (*Ensemble, error) {
	post, err := ComputePosterior(Y, X, prior, nil)
	if err != nil {
		return nil, err
	}
	return DrawBaseline(ctx, post, nDraws, opts)
}

// DrawBaseline draws nDraws i.i.d. samples from the posterior in parallel.
// Draw i always uses the i-th seed derived from opts.Seed, so the ensemble
// does not depend on opts.Workers.
//
// On cancellation the longest contiguous run of completed draws is returned
// together with an error wrapping ErrInterrupted. Any other failure returns
// a nil ensemble.
func DrawBaseline(ctx context.Context, post *PosteriorParams, nDraws int, opts SamplerOptions) (*Ensemble, error) {
	if post == nil {
		return nil, configErr("posterior not provided")
	}
	if nDraws <= 0 {
		return nil, configErr("number of draws must be > 0, got %d", nDraws)
	}

	K, N := post.A.Dims()
	log := opts.logger()
	obs := opts.observer()
	runID := uuid.NewString()
	start := time.Now()

	log.Info("baseline sampling started",
		zap.String("run_id", runID),
		zap.Int("draws", nDraws),
		zap.Uint64("seed", opts.Seed),
	)

	// Per-draw seeds so the RNG is not shared across goroutines
	seeds := linalg.DeriveSeeds(linalg.NewRand(opts.Seed), nDraws)

	draws := make([]Draw, nDraws)
	done := make([]bool, nDraws)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers(nDraws))

	for i := 0; i < nDraws; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			d, err := drawOne(post, linalg.NewRand(seeds[i]))
			if err != nil {
				return fmt.Errorf("draw %d: %w", i, err)
			}
			draws[i] = d
			done[i] = true
			obs.ObserveDraw(ModelBaseline)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("baseline sampling failed", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}

	ens := &Ensemble{
		RunID: runID,
		Seed:  opts.Seed,
		N:     N,
		P:     (K - 1) / N,
	}

	if err := ctx.Err(); err != nil {
		n := 0
		for n < nDraws && done[n] {
			n++
		}
		ens.Draws = draws[:n]
		log.Warn("baseline sampling interrupted",
			zap.String("run_id", runID),
			zap.Int("completed", n),
			zap.Error(err),
		)
		return ens, interrupted(err, n, nDraws)
	}

	ens.Draws = draws
	log.Info("baseline sampling finished",
		zap.String("run_id", runID),
		zap.Int("draws", nDraws),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ens, nil
}

// RunSV runs one stochastic-volatility Gibbs chain for cfg.BurnIn+cfg.Draws
// sweeps and keeps the last cfg.Draws. Each sweep
//  1. computes the posterior with Ω = diag(1/σ²_t)
//  2. draws (Σ, A) from it
//  3. updates the volatility block with SVSweep
//
// Cancellation is checked between sweeps; the retained prefix is returned
// with an error wrapping ErrInterrupted.
func RunSV(ctx context.Context, Y, X *mat.Dense, prior *PriorSpec, svPrior SVPrior, cfg SVConfig, opts SamplerOptions) (*Ensemble, error) {
	if prior == nil {
		return nil, configErr("prior not provided")
	}
	if err := checkDesign(Y, X, prior.N, prior.P); err != nil {
		return nil, err
	}
	if err := svPrior.Validate(); err != nil {
		return nil, err
	}
	if cfg.Draws <= 0 {
		return nil, configErr("number of draws must be > 0, got %d", cfg.Draws)
	}
	if cfg.BurnIn < 0 {
		return nil, configErr("burn-in must be >= 0, got %d", cfg.BurnIn)
	}

	T, _ := Y.Dims()
	log := opts.logger().With(zap.Int("chain", opts.Chain))
	obs := opts.observer()
	runID := uuid.NewString()
	start := time.Now()

	log.Info("sv sampling started",
		zap.String("run_id", runID),
		zap.Int("draws", cfg.Draws),
		zap.Int("burn_in", cfg.BurnIn),
		zap.Uint64("seed", opts.Seed),
	)

	rng := linalg.NewRand(opts.Seed)
	state := NewSVState(T, prior)

	ens := &Ensemble{
		RunID:      runID,
		Seed:       opts.Seed,
		N:          prior.N,
		P:          prior.P,
		Stochastic: true,
		Draws:      make([]Draw, 0, cfg.Draws),
	}

	total := cfg.BurnIn + cfg.Draws
	for it := 0; it < total; it++ {
		if err := ctx.Err(); err != nil {
			log.Warn("sv sampling interrupted",
				zap.String("run_id", runID),
				zap.Int("sweep", it),
				zap.Int("retained", ens.Len()),
				zap.Error(err),
			)
			return ens, interrupted(err, ens.Len(), cfg.Draws)
		}

		sweepStart := time.Now()

		post, err := ComputePosterior(Y, X, prior, state.Precision())
		if err != nil {
			return nil, fmt.Errorf("sweep %d: %w", it, err)
		}
		d, err := drawOne(post, rng)
		if err != nil {
			return nil, fmt.Errorf("sweep %d: %w", it, err)
		}
		state.A = d.A
		state.Sigma = d.Sigma

		next, err := SVSweep(state, Y, X, svPrior, rng)
		if err != nil {
			return nil, fmt.Errorf("sweep %d: %w", it, err)
		}
		state = next

		burn := it < cfg.BurnIn
		obs.ObserveSweep(opts.Chain, burn, time.Since(sweepStart))
		if burn {
			continue
		}

		ens.Draws = append(ens.Draws, Draw{
			A:       state.A,
			Sigma:   state.Sigma,
			Sigma2:  append([]float64(nil), state.Sigma2...),
			HT:      state.H[T-1],
			SigmaV2: state.SigmaV2,
		})
		obs.ObserveDraw(ModelSV)

		if n := ens.Len(); n%100 == 0 {
			log.Debug("sv draws retained", zap.Int("retained", n))
		}
	}

	log.Info("sv sampling finished",
		zap.String("run_id", runID),
		zap.Int("draws", ens.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ens, nil
}

// RunChains runs independent SV chains concurrently, chain c seeded with
// the c-th seed derived from opts.Seed. A numeric failure in one chain stops
// the others and is returned alone. On caller cancellation every chain's
// prefix is returned with an error wrapping ErrInterrupted.
func RunChains(ctx context.Context, Y, X *mat.Dense, prior *PriorSpec, svPrior SVPrior, cfg SVConfig, chains int, opts SamplerOptions) ([]*Ensemble, error) {
	if chains <= 0 {
		return nil, configErr("number of chains must be > 0, got %d", chains)
	}

	seeds := linalg.DeriveSeeds(linalg.NewRand(opts.Seed), chains)
	out := make([]*Ensemble, chains)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers(chains))

	var interruptErr error
	errs := make([]error, chains)

	for c := 0; c < chains; c++ {
		g.Go(func() error {
			chainOpts := opts
			chainOpts.Seed = seeds[c]
			chainOpts.Chain = c
			ens, err := RunSV(gctx, Y, X, prior, svPrior, cfg, chainOpts)
			out[c] = ens
			errs[c] = err
			if err != nil && !errors.Is(err, ErrInterrupted) {
				return fmt.Errorf("chain %d: %w", c, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for c, err := range errs {
		if err != nil {
			interruptErr = fmt.Errorf("chain %d: %w", c, err)
			break
		}
	}
	return out, interruptErr
}

// MergeChains concatenates chain ensembles in chain order.
func MergeChains(chains []*Ensemble) (*Ensemble, error) {
	if len(chains) == 0 || chains[0] == nil {
		return nil, configErr("no chains to merge")
	}
	first := chains[0]
	merged := &Ensemble{
		RunID:      first.RunID,
		Seed:       first.Seed,
		N:          first.N,
		P:          first.P,
		Stochastic: first.Stochastic,
	}
	for c, ens := range chains {
		if ens == nil {
			continue
		}
		if ens.N != first.N || ens.P != first.P {
			return nil, configErr("chain %d has N=%d p=%d, want N=%d p=%d", c, ens.N, ens.P, first.N, first.P)
		}
		merged.Draws = append(merged.Draws, ens.Draws...)
	}
	return merged, nil
}
