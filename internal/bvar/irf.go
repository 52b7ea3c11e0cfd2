// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"bvarsv/internal/linalg"
)

// LagMatrices splits a stacked K x N coefficient matrix into the p lag
// matrices A_1..A_p (each N x N) with A_l[i][j] the effect of y_{t-l,j}
// on equation i.
func LagMatrices(A *mat.Dense, N, p int) ([]*mat.Dense, error) {
	K, cols := A.Dims()
	if cols != N || K != 1+N*p {
		return nil, configErr("coefficient matrix is %d x %d, want %d x %d", K, cols, 1+N*p, N)
	}
	lags := make([]*mat.Dense, p)
	for l := 1; l <= p; l++ {
		Al := mat.NewDense(N, N, nil)
		for eq := 0; eq < N; eq++ {
			for v := 0; v < N; v++ {
				Al.Set(eq, v, A.At(1+(l-1)*N+v, eq))
			}
		}
		lags[l-1] = Al
	}
	return lags, nil
}

// ImpulseResponse computes responses to a one-time orthogonalized shock in
// variable shock for one (A, Σ) draw.
// horizon: number of periods to compute (h=0, ..., horizon-1)
// shock: index of variable to shock, (0-based)
// Returns: horizon x N matrix, where row h is response of all N vars at horizon h
func ImpulseResponse(A *mat.Dense, sigma mat.Symmetric, N, p, horizon, shock int) (*mat.Dense, error) {
	if horizon <= 0 {
		return nil, configErr("horizon must be > 0, got %d", horizon)
	}
	if shock < 0 || shock >= N {
		return nil, configErr("shock must be between 0 and %d, got %d", N-1, shock)
	}
	lags, err := LagMatrices(A, N, p)
	if err != nil {
		return nil, err
	}

	// Impact vector: column shock of the lower Cholesky factor of Σ
	L, err := linalg.LowerFactor(sigma, matSigmaDraw)
	if err != nil {
		return nil, err
	}
	impact := mat.NewVecDense(N, nil)
	for i := 0; i < N; i++ {
		impact.SetVec(i, L.At(i, shock))
	}

	// Moving-average coefficients, Psi_0 = I
	Psi := make([]*mat.Dense, horizon)
	eye := make([]float64, N*N)
	for i := 0; i < N; i++ {
		eye[i*N+i] = 1
	}
	Psi[0] = mat.NewDense(N, N, eye)

	// Psi_h = sum_{j=1}^{min(h,p)} A_j Psi_{h-j}
	for h := 1; h < horizon; h++ {
		M := mat.NewDense(N, N, nil)
		maxLag := min(h, p)
		for j := 1; j <= maxLag; j++ {
			var tmp mat.Dense
			tmp.Mul(lags[j-1], Psi[h-j])
			M.Add(M, &tmp)
		}
		Psi[h] = M
	}

	irf := mat.NewDense(horizon, N, nil)
	for h := 0; h < horizon; h++ {
		var resp mat.VecDense
		resp.MulVec(Psi[h], impact)
		irf.SetRow(h, resp.RawVector().Data)
	}
	return irf, nil
}

// PosteriorIRF computes the impulse response for every draw of the ensemble
// and summarizes them by the posterior mean and HDI bands.
func PosteriorIRF(ens *Ensemble, horizon, shock int, credibility float64) (*IRFSummary, error) {
	if ens == nil || ens.Len() == 0 {
		return nil, configErr("ensemble is empty")
	}
	if !(credibility > 0 && credibility <= 1) {
		return nil, configErr("credibility must be in (0, 1], got %g", credibility)
	}
	if horizon <= 0 {
		return nil, configErr("horizon must be > 0, got %d", horizon)
	}

	N := ens.N
	S := ens.Len()

	// vals[h][j] collects draw s's response at horizon h for variable j
	vals := make([][][]float64, horizon)
	for h := range vals {
		vals[h] = make([][]float64, N)
		for j := range vals[h] {
			vals[h][j] = make([]float64, S)
		}
	}

	for s, d := range ens.Draws {
		irf, err := ImpulseResponse(d.A, d.Sigma, N, ens.P, horizon, shock)
		if err != nil {
			return nil, fmt.Errorf("draw %d: %w", s, err)
		}
		for h := 0; h < horizon; h++ {
			for j := 0; j < N; j++ {
				vals[h][j][s] = irf.At(h, j)
			}
		}
	}

	res := &IRFSummary{
		ShockIndex:  shock,
		Horizon:     horizon,
		Credibility: credibility,
		Mean:        mat.NewDense(horizon, N, nil),
		Lower:       mat.NewDense(horizon, N, nil),
		Upper:       mat.NewDense(horizon, N, nil),
	}
	for h := 0; h < horizon; h++ {
		for j := 0; j < N; j++ {
			lo, hi := HDI(vals[h][j], credibility)
			res.Mean.Set(h, j, stat.Mean(vals[h][j], nil))
			res.Lower.Set(h, j, lo)
			res.Upper.Set(h, j, hi)
		}
	}
	return res, nil
}

// PosteriorIRFAll runs PosteriorIRF for every shock in variable order.
// Element k holds the responses of all variables to a shock in variable k.
func PosteriorIRFAll(ens *Ensemble, horizon int, credibility float64) ([]*IRFSummary, error) {
	if ens == nil || ens.Len() == 0 {
		return nil, configErr("ensemble is empty")
	}

	out := make([]*IRFSummary, ens.N)
	for shock := 0; shock < ens.N; shock++ {
		sum, err := PosteriorIRF(ens, horizon, shock, credibility)
		if err != nil {
			return nil, fmt.Errorf("shock %d: %w", shock, err)
		}
		out[shock] = sum
	}
	return out, nil
}
