// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Simple struct for time series data handed over by data preparation
type TimeSeries struct {
	// Matrix for data, T x N, chronologically ordered, no missing values
	Y *mat.Dense
	// Tracks number of time points, basically rows
	Time []float64
	// List of variable Names
	VarNames []string
}

// PriorSpec is the Minnesota NIW prior. Built once per run, never mutated.
type PriorSpec struct {
	// Lag order and variable count the prior was built for
	N, P int

	// Prior mean of the coefficients, K x N with K = 1+N*p
	A *mat.Dense
	// Prior row covariance of the coefficients, K x K diagonal
	V *mat.DiagDense
	// Prior scale of the error covariance, N x N diagonal
	S *mat.DiagDense
	// Prior degrees of freedom, at least N+1
	Nu float64
}

// K returns the number of regressors per equation.
func (p *PriorSpec) K() int { return 1 + p.N*p.P }

// SVPrior holds the hyperparameters of the log-volatility process.
type SVPrior struct {
	// Normal prior on the initial log-volatility h0
	H0Mean float64
	H0Var  float64
	// Scaled inverse chi-squared prior on the state innovation variance σv²
	SigmaVScale float64
	SigmaVDf    float64
}

// PosteriorParams are the NIW posterior parameters derived from (Y, X, prior).
type PosteriorParams struct {
	// V̄⁻¹ and V̄ (K x K)
	VInv *mat.SymDense
	V    *mat.SymDense
	// Lower Cholesky factor of V̄, used by every coefficient draw
	LV *mat.TriDense
	// Ā (K x N)
	A *mat.Dense
	// ν̄ = T + ν̲
	Nu float64
	// S̄ and S̄⁻¹ (N x N)
	S    *mat.SymDense
	SInv *mat.SymDense
}

// Draw is one posterior sample. Sigma2, HT and SigmaV2 are only set by the
// stochastic-volatility sampler.
type Draw struct {
	A     *mat.Dense
	Sigma *mat.SymDense

	// σ²_t = exp(H_t), length T
	Sigma2 []float64
	// Last log-volatility H_T, the starting point of path-varying forecasts
	HT float64
	// State innovation variance σv²
	SigmaV2 float64
}

// Ensemble is an ordered collection of posterior draws. Baseline draws are
// i.i.d.; SV draws come from a Markov chain and are autocorrelated.
type Ensemble struct {
	RunID string
	Seed  uint64
	N, P  int

	// True when draws carry a volatility path
	Stochastic bool
	Draws      []Draw
}

// Len returns the number of draws.
func (e *Ensemble) Len() int { return len(e.Draws) }

// SVState is the Markov chain state threaded through successive sweeps.
type SVState struct {
	// Log-volatilities H_1..H_T
	H []float64
	// Initial state h0
	H0 float64
	// State innovation variance σv²
	SigmaV2 float64
	// Mixture component index per period, 0..9
	S []int

	// Current coefficient and covariance draw
	A     *mat.Dense
	Sigma *mat.SymDense

	// σ²_t = exp(H_t)
	Sigma2 []float64
}

// SVConfig sizes one stochastic-volatility chain.
type SVConfig struct {
	// Retained draws
	Draws int
	// Discarded leading sweeps
	BurnIn int
}

// Observer is notified of sampler progress. Implementations must be safe
// for concurrent use when chains or draws run in parallel.
type Observer interface {
	ObserveSweep(chain int, burnIn bool, elapsed time.Duration)
	ObserveDraw(model string)
}

// SamplerOptions controls seeding, fan-out and logging of the samplers.
type SamplerOptions struct {
	// Master seed; every draw or chain derives its own seed from it
	Seed uint64
	// Upper bound on concurrent goroutines, 0 means runtime.NumCPU()
	Workers int
	// Chain index reported to the observer
	Chain int

	Logger   *zap.Logger
	Observer Observer
}

// ForecastEnsemble holds one simulated path (Horizon x N) per posterior draw.
type ForecastEnsemble struct {
	Horizon int
	N       int
	Paths   []*mat.Dense
}

// ForecastSummary reduces a ForecastEnsemble per horizon and variable.
type ForecastSummary struct {
	Credibility float64

	// Horizon x N matrices
	Mean   *mat.Dense
	Median *mat.Dense
	Lower  *mat.Dense
	Upper  *mat.Dense
}

// SimulateOptions controls the forecast recursion.
type SimulateOptions struct {
	Seed    uint64
	Workers int
	// Project the log-volatility forward as a random walk instead of using
	// the static Σ draw. Needs an SV ensemble.
	VolatilityPath bool
}

// IRFSummary stores posterior impulse responses for one shock.
type IRFSummary struct {
	ShockIndex  int
	Horizon     int
	Credibility float64

	// Horizon x N matrices
	Mean  *mat.Dense
	Lower *mat.Dense
	Upper *mat.Dense
}
