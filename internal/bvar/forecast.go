// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"bvarsv/internal/linalg"
)

// Simulate draws one forecast path per posterior draw.
// ens: posterior ensemble
// history: observed data, at least p rows, the last p are used as lags
// h: number of steps ahead
// Returns: a ForecastEnsemble with one h x N path per draw, in draw order
//
// Each step sets x = [1, y_{t-1}, ..., y_{t-p}] and draws y_t ~ N(xA, Σ).
// With opts.VolatilityPath the log-volatility follows
// h_{T+i} = h_{T+i-1} + σv η and the covariance becomes exp(h_{T+i}) Σ.
func Simulate(ens *Ensemble, history *mat.Dense, h int, opts SimulateOptions) (*ForecastEnsemble, error) {
	if ens == nil || ens.Len() == 0 {
		return nil, configErr("ensemble is empty")
	}
	if h <= 0 {
		return nil, configErr("horizon must be > 0, got %d", h)
	}
	if history == nil {
		return nil, configErr("history not provided")
	}
	rows, cols := history.Dims()
	N, p := ens.N, ens.P
	if N <= 0 || p <= 0 {
		return nil, configErr("ensemble has N = %d, p = %d", N, p)
	}
	if cols != N {
		return nil, configErr("history has %d columns, ensemble has N = %d", cols, N)
	}
	if rows < p {
		return nil, configErr("need at least p = %d rows of history, got %d", p, rows)
	}
	if opts.VolatilityPath && !ens.Stochastic {
		return nil, configErr("volatility path forecasts need a stochastic-volatility ensemble")
	}

	// Lags, most recent first: lags[j] = y_{T-j}
	lags := make([][]float64, p)
	for j := 0; j < p; j++ {
		lags[j] = mat.Row(nil, rows-1-j, history)
	}

	S := ens.Len()
	seeds := linalg.DeriveSeeds(linalg.NewRand(opts.Seed), S)
	paths := make([]*mat.Dense, S)

	workers := SamplerOptions{Workers: opts.Workers}.workers(S)
	var g errgroup.Group
	g.SetLimit(workers)

	for s := 0; s < S; s++ {
		g.Go(func() error {
			path, err := simulatePath(&ens.Draws[s], lags, h, N, p, opts.VolatilityPath, linalg.NewRand(seeds[s]))
			if err != nil {
				return fmt.Errorf("draw %d: %w", s, err)
			}
			paths[s] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ForecastEnsemble{Horizon: h, N: N, Paths: paths}, nil
}

// simulatePath runs the VAR recursion forward h steps for one draw.
func simulatePath(d *Draw, lags [][]float64, h, N, p int, volPath bool, rng *rand.Rand) (*mat.Dense, error) {
	L, err := linalg.LowerFactor(d.Sigma, matSigmaDraw)
	if err != nil {
		return nil, err
	}

	// Rolling window of the last p values, most recent first
	window := make([][]float64, p)
	for j := range window {
		window[j] = append([]float64(nil), lags[j]...)
	}

	K := 1 + N*p
	x := make([]float64, K)
	mean := make([]float64, N)
	out := mat.NewDense(h, N, nil)

	logVol := d.HT
	volSD := math.Sqrt(d.SigmaV2)
	eta := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	for i := 0; i < h; i++ {
		x[0] = 1
		for j := 0; j < p; j++ {
			copy(x[1+j*N:1+(j+1)*N], window[j])
		}

		// mean = x A
		for n := 0; n < N; n++ {
			v := 0.0
			for k := 0; k < K; k++ {
				v += x[k] * d.A.At(k, n)
			}
			mean[n] = v
		}

		scale := 1.0
		if volPath {
			logVol += volSD * eta.Rand()
			scale = math.Exp(logVol / 2)
		}

		y := make([]float64, N)
		linalg.SampleMVN(y, mean, L, scale, rng)
		out.SetRow(i, y)

		// Shift the window
		copy(window[1:], window[:p-1])
		window[0] = y
	}
	return out, nil
}

// Values returns the S draws of variable n at step i (0-based).
func (f *ForecastEnsemble) Values(i, n int) []float64 {
	v := make([]float64, len(f.Paths))
	for s, path := range f.Paths {
		v[s] = path.At(i, n)
	}
	return v
}

// Summarize reduces the forecast ensemble per step and variable to the mean,
// the median and the highest-density interval with the given mass.
func (f *ForecastEnsemble) Summarize(credibility float64) (*ForecastSummary, error) {
	if !(credibility > 0 && credibility <= 1) {
		return nil, configErr("credibility must be in (0, 1], got %g", credibility)
	}
	if len(f.Paths) == 0 {
		return nil, configErr("forecast ensemble is empty")
	}

	sum := &ForecastSummary{
		Credibility: credibility,
		Mean:        mat.NewDense(f.Horizon, f.N, nil),
		Median:      mat.NewDense(f.Horizon, f.N, nil),
		Lower:       mat.NewDense(f.Horizon, f.N, nil),
		Upper:       mat.NewDense(f.Horizon, f.N, nil),
	}
	for i := 0; i < f.Horizon; i++ {
		for n := 0; n < f.N; n++ {
			v := f.Values(i, n)
			lo, hi := HDI(v, credibility)
			sum.Mean.Set(i, n, stat.Mean(v, nil))
			sum.Median.Set(i, n, Quantile(v, 0.5))
			sum.Lower.Set(i, n, lo)
			sum.Upper.Set(i, n, hi)
		}
	}
	return sum, nil
}

// HDI returns the narrowest interval between sorted draws that leaves out
// n - floor(n*mass) of them. Returns NaN bounds for an empty sample.
func HDI(samples []float64, mass float64) (float64, float64) {
	n := len(samples)
	if n == 0 {
		return math.NaN(), math.NaN()
	}

	tmp := make([]float64, n)
	copy(tmp, samples)
	sort.Float64s(tmp)

	exclude := n - int(math.Floor(float64(n)*mass))
	if exclude <= 0 {
		return tmp[0], tmp[n-1]
	}
	if exclude > n {
		exclude = n
	}

	best := 0
	bestWidth := math.Inf(1)
	for i := 0; i < exclude; i++ {
		w := tmp[n-exclude+i] - tmp[i]
		if w < bestWidth {
			bestWidth = w
			best = i
		}
	}
	return tmp[best], tmp[n-exclude+best]
}

// Quantile returns the empirical q-quantile of samples (0 <= q <= 1)
// using linear interpolation between order statistics.
func Quantile(samples []float64, q float64) float64 {
	n := len(samples)
	if n == 0 {
		return math.NaN()
	}

	tmp := make([]float64, n)
	copy(tmp, samples)
	sort.Float64s(tmp)

	if q <= 0 {
		return tmp[0]
	}
	if q >= 1 {
		return tmp[n-1]
	}

	pos := q * float64(n-1)
	idxBelow := int(math.Floor(pos))
	idxAbove := int(math.Ceil(pos))

	if idxAbove == idxBelow {
		return tmp[idxBelow]
	}

	weight := pos - float64(idxBelow)
	return tmp[idxBelow]*(1.0-weight) + tmp[idxAbove]*weight
}
