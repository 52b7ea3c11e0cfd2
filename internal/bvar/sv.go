// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"bvarsv/internal/linalg"
)

// Ten-component normal mixture approximating log χ²(1)
// (Omori, Chib, Shephard and Nakajima, 2007).
var (
	mixtureMeans = [mixtureComponents]float64{
		1.92677, 1.34744, 0.73504, 0.02266, -0.85173,
		-1.97278, -3.46788, -5.55246, -8.68384, -14.65000,
	}
	mixtureVars = [mixtureComponents]float64{
		0.11265, 0.17788, 0.26768, 0.40611, 0.62699,
		0.98583, 1.57469, 2.54498, 4.16591, 7.33342,
	}
	mixtureWeights = [mixtureComponents]float64{
		0.00609, 0.04775, 0.13057, 0.20674, 0.22715,
		0.18842, 0.12047, 0.05591, 0.01575, 0.00115,
	}
)

const (
	mixtureComponents = 10

	// residualOffset keeps log((Z+ε)²) finite when a standardized residual
	// is exactly zero.
	residualOffset = 1e-7

	matStatePrecision = "state precision D⁻¹"
)

// NewSVState returns the chain's starting point: H = 0 (σ² = 1), h0 = 0,
// σv² = 1, and the prior mean / scale as the first (A, Σ).
func NewSVState(T int, prior *PriorSpec) *SVState {
	sigma2 := make([]float64, T)
	for t := range sigma2 {
		sigma2[t] = 1
	}
	sigma := mat.NewSymDense(prior.N, nil)
	for i := 0; i < prior.N; i++ {
		sigma.SetSym(i, i, prior.S.At(i, i))
	}
	return &SVState{
		H:       make([]float64, T),
		H0:      0,
		SigmaV2: 1,
		S:       make([]int, T),
		A:       mat.DenseCopyOf(prior.A),
		Sigma:   sigma,
		Sigma2:  sigma2,
	}
}

// Precision returns the weights 1/σ²_t that enter the posterior as Ω.
func (s *SVState) Precision() []float64 {
	w := make([]float64, len(s.Sigma2))
	for t, v := range s.Sigma2 {
		w[t] = 1 / v
	}
	return w
}

// SVSweep performs one Gibbs sweep over the volatility block given the
// current (A, Σ) in prev and returns a fresh state; prev is not modified.
//  1. standardize residuals and form Ỹ_t = log((Z_t+ε)²)
//  2. draw h0 | H_1, σv²
//  3. draw σv² | H, h0
//  4. draw each mixture indicator s_t | Ỹ_t, H_t
//  5. draw H | s, h0, σv² from the tridiagonal-precision Gaussian
//  6. set σ²_t = exp(H_t)
func SVSweep(prev *SVState, Y, X *mat.Dense, prior SVPrior, rng *rand.Rand) (*SVState, error) {
	T, N := Y.Dims()
	if T == 0 {
		return nil, configErr("no observations")
	}
	if len(prev.H) != T {
		return nil, configErr("state has %d periods, data has %d", len(prev.H), T)
	}

	next := &SVState{
		A:     prev.A,
		Sigma: prev.Sigma,
	}

	// 1. Standardized residuals
	yTilde, err := standardizedLogSquares(Y, X, prev.A, prev.Sigma, N)
	if err != nil {
		return nil, err
	}

	// 2. Initial condition
	vH0 := 1 / (1/prior.H0Var + 1/prev.SigmaV2)
	mH0 := vH0 * (prior.H0Mean/prior.H0Var + prev.H[0]/prev.SigmaV2)
	next.H0 = distuv.Normal{Mu: mH0, Sigma: math.Sqrt(vH0), Src: rng}.Rand()

	// 3. State innovation variance
	ss := prior.SigmaVScale
	diff := prev.H[0] - next.H0
	ss += diff * diff
	for t := 1; t < T; t++ {
		diff = prev.H[t] - prev.H[t-1]
		ss += diff * diff
	}
	chi := distuv.ChiSquared{K: prior.SigmaVDf + float64(T), Src: rng}.Rand()
	next.SigmaV2 = ss / chi

	// 4. Mixture indicators
	next.S = make([]int, T)
	for t := 0; t < T; t++ {
		k, err := drawIndicator(yTilde[t], prev.H[t], rng)
		if err != nil {
			return nil, err
		}
		next.S[t] = k
	}

	// 5. Log-volatility path
	H, err := drawLogVolatility(yTilde, next.S, next.H0, next.SigmaV2, rng)
	if err != nil {
		return nil, err
	}
	next.H = H

	// 6. Variances
	next.Sigma2 = make([]float64, T)
	for t, h := range H {
		next.Sigma2[t] = math.Exp(h)
	}

	return next, nil
}

// standardizedLogSquares returns Ỹ_t = log((Z_t+ε)²) where
// Z_t = rowSum((Y−XA) Λ)/√N and Λ is the inverse upper Cholesky factor of Σ.
func standardizedLogSquares(Y, X, A *mat.Dense, sigma *mat.SymDense, N int) ([]float64, error) {
	chol, err := linalg.Factorize(sigma, matSigmaDraw)
	if err != nil {
		return nil, err
	}
	var U mat.TriDense
	chol.UTo(&U)
	var lambda mat.TriDense
	if err := lambda.InverseTri(&U); err != nil {
		return nil, &linalg.NumericalError{Matrix: matSigmaDraw, Op: "triangular inverse", Err: linalg.ErrNotPositiveDefinite}
	}

	var resid mat.Dense
	resid.Mul(X, A)
	resid.Sub(Y, &resid)

	var std mat.Dense
	std.Mul(&resid, &lambda)

	T, _ := Y.Dims()
	scale := math.Sqrt(float64(N))
	out := make([]float64, T)
	for t := 0; t < T; t++ {
		z := floats.Sum(std.RawRowView(t)) / scale
		out[t] = math.Log((z + residualOffset) * (z + residualOffset))
	}
	return out, nil
}

// drawIndicator samples the mixture component for one period by inverse CDF
// over probabilities normalized with log-sum-exp.
func drawIndicator(yTilde, h float64, rng *rand.Rand) (int, error) {
	var logp [mixtureComponents]float64
	for k := 0; k < mixtureComponents; k++ {
		d := yTilde - h - mixtureMeans[k]
		logp[k] = math.Log(mixtureWeights[k]) -
			0.5*math.Log(2*math.Pi*mixtureVars[k]) -
			0.5*d*d/mixtureVars[k]
	}
	lse := floats.LogSumExp(logp[:])
	if math.IsInf(lse, 0) || math.IsNaN(lse) {
		return 0, ErrSamplingDegeneracy
	}

	u := rng.Float64()
	cum := 0.0
	for k := 0; k < mixtureComponents; k++ {
		cum += math.Exp(logp[k] - lse)
		if u < cum {
			return k, nil
		}
	}
	// Rounding can leave cum a hair below 1.
	return mixtureComponents - 1, nil
}

// drawLogVolatility draws H ~ N(D b, D) with
//
//	D⁻¹ = diag(1/σ²*_{s_t}) + HH/σv²
//	b_t = (Ỹ_t − α*_{s_t})/σ²*_{s_t} + 1{t=1} h0/σv²
//
// where HH is the first-difference operator's Gram matrix (diagonal 2 with a
// trailing 1, off-diagonal −1). With D⁻¹ = L Lᵀ the draw is
// Lᵀ⁻¹(L⁻¹b + x), x ~ N(0, I).
func drawLogVolatility(yTilde []float64, s []int, h0, sigmaV2 float64, rng *rand.Rand) ([]float64, error) {
	T := len(yTilde)
	prec := 1 / sigmaV2

	td := linalg.TriDiag{
		Diag: make([]float64, T),
		Sub:  make([]float64, T-1),
	}
	b := make([]float64, T)
	for t := 0; t < T; t++ {
		k := s[t]
		hh := 2.0
		if t == T-1 {
			hh = 1.0
		}
		td.Diag[t] = 1/mixtureVars[k] + hh*prec
		if t < T-1 {
			td.Sub[t] = -prec
		}
		b[t] = (yTilde[t] - mixtureMeans[k]) / mixtureVars[k]
	}
	b[0] += h0 * prec

	chol, err := linalg.FactorizeTriDiag(td, matStatePrecision)
	if err != nil {
		return nil, err
	}

	a := chol.SolveLower(b)
	x := linalg.StdNormalVec(T, rng)
	for t := range a {
		a[t] += x[t]
	}
	return chol.SolveUpper(a), nil
}
