// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// countingObserver records sampler progress and optionally cancels after
// a number of retained draws.
type countingObserver struct {
	mu       sync.Mutex
	sweeps   map[bool]int
	draws    map[string]int
	stopAt   int
	cancel   context.CancelFunc
	retained atomic.Int64
}

func newCountingObserver() *countingObserver {
	return &countingObserver{sweeps: map[bool]int{}, draws: map[string]int{}}
}

func (o *countingObserver) ObserveSweep(_ int, burnIn bool, _ time.Duration) {
	o.mu.Lock()
	o.sweeps[burnIn]++
	o.mu.Unlock()
}

func (o *countingObserver) ObserveDraw(model string) {
	o.mu.Lock()
	o.draws[model]++
	o.mu.Unlock()
	if n := o.retained.Add(1); o.cancel != nil && int(n) == o.stopAt {
		o.cancel()
	}
}

func drawsEqual(t *testing.T, a, b *Ensemble) {
	t.Helper()
	require.Equal(t, a.Len(), b.Len())
	for i := range a.Draws {
		assert.True(t, mat.Equal(a.Draws[i].A, b.Draws[i].A), "draw %d A", i)
		assert.True(t, mat.Equal(a.Draws[i].Sigma, b.Draws[i].Sigma), "draw %d Σ", i)
		assert.Equal(t, a.Draws[i].Sigma2, b.Draws[i].Sigma2, "draw %d σ²", i)
	}
}

func TestDrawBaselineIndependentOfWorkerCount(t *testing.T) {
	ts := simulateVAR1(t, 80, trueIntercept, trueA1, trueSigma, 51)
	Y, X, prior := fixture(t, ts, 2, 0.1, 100)
	post, err := ComputePosterior(Y, X, prior, nil)
	require.NoError(t, err)

	one, err := DrawBaseline(context.Background(), post, 64, SamplerOptions{Seed: 7, Workers: 1})
	require.NoError(t, err)
	many, err := DrawBaseline(context.Background(), post, 64, SamplerOptions{Seed: 7, Workers: 8})
	require.NoError(t, err)
	drawsEqual(t, one, many)

	assert.Equal(t, 2, one.N)
	assert.Equal(t, 2, one.P)
	assert.False(t, one.Stochastic)
	assert.NotEqual(t, one.RunID, many.RunID)

	other, err := DrawBaseline(context.Background(), post, 64, SamplerOptions{Seed: 8, Workers: 8})
	require.NoError(t, err)
	assert.False(t, mat.Equal(one.Draws[0].A, other.Draws[0].A))
}

func TestDrawBaselineNotifiesObserver(t *testing.T) {
	ts := simulateVAR1(t, 40, trueIntercept, trueA1, trueSigma, 52)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)

	obs := newCountingObserver()
	ens, err := EstimateBaseline(context.Background(), Y, X, prior, 30, SamplerOptions{Seed: 1, Observer: obs})
	require.NoError(t, err)
	assert.Equal(t, 30, ens.Len())
	assert.Equal(t, 30, obs.draws[ModelBaseline])
}

func TestDrawBaselineCancelled(t *testing.T) {
	ts := simulateVAR1(t, 40, trueIntercept, trueA1, trueSigma, 53)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)
	post, err := ComputePosterior(Y, X, prior, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ens, err := DrawBaseline(ctx, post, 50, SamplerOptions{Seed: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, ens)
	assert.Equal(t, 0, ens.Len())
}

func TestDrawBaselineRejectsBadInput(t *testing.T) {
	_, err := DrawBaseline(context.Background(), nil, 10, SamplerOptions{})
	assert.ErrorIs(t, err, ErrConfiguration)

	ts := simulateVAR1(t, 40, trueIntercept, trueA1, trueSigma, 54)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)
	post, err := ComputePosterior(Y, X, prior, nil)
	require.NoError(t, err)
	_, err = DrawBaseline(context.Background(), post, 0, SamplerOptions{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRunSVReproducible(t *testing.T) {
	ts := simulateVAR1(t, 60, trueIntercept, trueA1, trueSigma, 61)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)
	cfg := SVConfig{Draws: 20, BurnIn: 5}

	a, err := RunSV(context.Background(), Y, X, prior, DefaultSVPrior(), cfg, SamplerOptions{Seed: 123})
	require.NoError(t, err)
	b, err := RunSV(context.Background(), Y, X, prior, DefaultSVPrior(), cfg, SamplerOptions{Seed: 123})
	require.NoError(t, err)
	drawsEqual(t, a, b)

	c, err := RunSV(context.Background(), Y, X, prior, DefaultSVPrior(), cfg, SamplerOptions{Seed: 124})
	require.NoError(t, err)
	assert.NotEqual(t, a.Draws[0].Sigma2, c.Draws[0].Sigma2)
}

func TestRunSVObserverCounts(t *testing.T) {
	ts := simulateVAR1(t, 40, trueIntercept, trueA1, trueSigma, 62)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)

	obs := newCountingObserver()
	ens, err := RunSV(context.Background(), Y, X, prior, DefaultSVPrior(),
		SVConfig{Draws: 12, BurnIn: 4}, SamplerOptions{Seed: 1, Observer: obs})
	require.NoError(t, err)
	assert.Equal(t, 12, ens.Len())
	assert.Equal(t, 4, obs.sweeps[true])
	assert.Equal(t, 12, obs.sweeps[false])
	assert.Equal(t, 12, obs.draws[ModelSV])
}

func TestRunSVCancelReturnsPrefix(t *testing.T) {
	ts := simulateVAR1(t, 40, trueIntercept, trueA1, trueSigma, 63)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)
	cfg := SVConfig{Draws: 50, BurnIn: 3}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	obs := newCountingObserver()
	obs.stopAt = 5
	obs.cancel = cancel

	ens, err := RunSV(ctx, Y, X, prior, DefaultSVPrior(), cfg, SamplerOptions{Seed: 9, Observer: obs})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, ens)
	assert.Equal(t, 5, ens.Len())

	// The prefix is the same as the first draws of a full run.
	full, err := RunSV(context.Background(), Y, X, prior, DefaultSVPrior(), cfg, SamplerOptions{Seed: 9})
	require.NoError(t, err)
	full.Draws = full.Draws[:5]
	drawsEqual(t, ens, full)
}

func TestRunSVRejectsBadConfig(t *testing.T) {
	ts := simulateVAR1(t, 40, trueIntercept, trueA1, trueSigma, 64)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)

	badPrior := DefaultSVPrior()
	badPrior.H0Var = 0

	cases := []struct {
		name string
		sv   SVPrior
		cfg  SVConfig
	}{
		{"no draws", DefaultSVPrior(), SVConfig{Draws: 0}},
		{"negative burn-in", DefaultSVPrior(), SVConfig{Draws: 5, BurnIn: -1}},
		{"bad sv prior", badPrior, SVConfig{Draws: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ens, err := RunSV(context.Background(), Y, X, prior, tc.sv, tc.cfg, SamplerOptions{})
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Nil(t, ens)
		})
	}
}

func TestRunChainsIndependentSeeds(t *testing.T) {
	ts := simulateVAR1(t, 50, trueIntercept, trueA1, trueSigma, 71)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)
	cfg := SVConfig{Draws: 10, BurnIn: 2}

	chains, err := RunChains(context.Background(), Y, X, prior, DefaultSVPrior(), cfg, 3, SamplerOptions{Seed: 5, Workers: 3})
	require.NoError(t, err)
	require.Len(t, chains, 3)
	assert.NotEqual(t, chains[0].Draws[0].Sigma2, chains[1].Draws[0].Sigma2)
	assert.NotEqual(t, chains[1].Draws[0].Sigma2, chains[2].Draws[0].Sigma2)

	serial, err := RunChains(context.Background(), Y, X, prior, DefaultSVPrior(), cfg, 3, SamplerOptions{Seed: 5, Workers: 1})
	require.NoError(t, err)
	for c := range chains {
		drawsEqual(t, chains[c], serial[c])
	}

	merged, err := MergeChains(chains)
	require.NoError(t, err)
	assert.Equal(t, 30, merged.Len())
	assert.True(t, merged.Stochastic)
	assert.True(t, mat.Equal(chains[1].Draws[0].A, merged.Draws[10].A))
}

func TestRunChainsCancelled(t *testing.T) {
	ts := simulateVAR1(t, 40, trueIntercept, trueA1, trueSigma, 72)
	Y, X, prior := fixture(t, ts, 1, 0.1, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chains, err := RunChains(ctx, Y, X, prior, DefaultSVPrior(), SVConfig{Draws: 10}, 2, SamplerOptions{Seed: 1})
	assert.ErrorIs(t, err, ErrInterrupted)
	require.Len(t, chains, 2)
	for _, c := range chains {
		require.NotNil(t, c)
		assert.Equal(t, 0, c.Len())
	}

	_, err = RunChains(context.Background(), Y, X, prior, DefaultSVPrior(), SVConfig{Draws: 10}, 0, SamplerOptions{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestMergeChainsRejectsMismatch(t *testing.T) {
	_, err := MergeChains(nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = MergeChains([]*Ensemble{{N: 2, P: 1}, {N: 3, P: 1}})
	assert.ErrorIs(t, err, ErrConfiguration)
}
