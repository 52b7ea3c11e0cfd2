// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// OLSFit holds the least-squares VAR fit used to calibrate the prior.
type OLSFit struct {
	// Â = (X'X)^(-1) X'Y, K x N
	A *mat.Dense
	// Residuals Û = Y - XÂ, T x N
	Residuals *mat.Dense
	// Σ̂ = Û'Û / T
	SigmaHat *mat.SymDense
}

// BuildDesign turns a series into the response and regressor matrices.
// ts: TimeSeries struct containing the data (T x N)
// p: lag order
// Returns: Y ((T-p) x N) and X ((T-p) x (1+N*p)), where row t of X is
// [1, y_{t-1}, ..., y_{t-p}]
func BuildDesign(ts *TimeSeries, p int) (*mat.Dense, *mat.Dense, error) {
	if ts == nil || ts.Y == nil {
		return nil, nil, configErr("time series data not provided")
	}

	T, N := ts.Y.Dims()
	if N <= 0 {
		return nil, nil, configErr("need at least one variable")
	}
	if p <= 0 {
		return nil, nil, configErr("lags must be > 0, got %d", p)
	}
	if T <= p {
		return nil, nil, configErr("need at least p+1 observations: p = %d, T = %d", p, T)
	}

	for t := 0; t < T; t++ {
		for n := 0; n < N; n++ {
			v := ts.Y.At(t, n)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, configErr("non-finite value at row %d col %d", t, n)
			}
		}
	}

	// Usable rows
	Treg := T - p
	K := 1 + N*p

	// Response matrix Yreg: rows are y_p, y_{p+1}, ..., y_{T-1}
	Yreg := mat.NewDense(Treg, N, nil)
	for t := 0; t < Treg; t++ {
		for n := 0; n < N; n++ {
			Yreg.Set(t, n, ts.Y.At(t+p, n))
		}
	}

	// Fill X row-by-row: constant first, then [ y_{t+p-1}, ..., y_{t} ]
	X := mat.NewDense(Treg, K, nil)
	for t := 0; t < Treg; t++ {
		X.Set(t, 0, 1.0)
		col := 1
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for n := 0; n < N; n++ {
				X.Set(t, col, ts.Y.At(srcRow, n))
				col++
			}
		}
	}

	return Yreg, X, nil
}

// checkDesign validates matching row counts and the K = 1+N*p layout.
func checkDesign(Y, X *mat.Dense, n, p int) error {
	if Y == nil || X == nil {
		return configErr("Y and X must be provided")
	}
	T, N := Y.Dims()
	TX, K := X.Dims()
	if T != TX {
		return configErr("Y has %d rows but X has %d", T, TX)
	}
	if N != n {
		return configErr("Y has %d columns, prior was built for N = %d", N, n)
	}
	if K != 1+n*p {
		return configErr("X has %d columns, want 1+N*p = %d", K, 1+n*p)
	}
	if T <= p {
		return configErr("need T > p: T = %d, p = %d", T, p)
	}
	return nil
}

// OLS computes the least-squares coefficients and the residual covariance.
// Y: T x N responses, X: T x K regressors
func OLS(Y, X *mat.Dense) (*OLSFit, error) {
	T, N := Y.Dims()
	TX, K := X.Dims()
	if T != TX {
		return nil, configErr("Y has %d rows but X has %d", T, TX)
	}

	var B mat.Dense

	// First try: normal equations B = (X'X)^(-1) X'Y
	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	var xtxInv mat.Dense
	xtxError := xtxInv.Inverse(&xtx)

	if xtxError == nil {
		var xty mat.Dense
		xty.Mul(X.T(), Y)
		B.Mul(&xtxInv, &xty)
	} else {
		// Fallback: X'X is singular or badly conditioned.
		// Use SVD-based least squares with the minimum-norm solution.
		var svd mat.SVD
		ok := svd.Factorize(X, mat.SVDFullU|mat.SVDFullV)
		if !ok {
			return nil, fmt.Errorf("OLS failed: X'X singular and SVD factorization failed: %v", xtxError)
		}

		rank := svd.Rank(1e-12)
		if rank == 0 {
			// X is numerically all-zero, so B = 0
			B = *mat.NewDense(K, N, nil)
		} else {
			svd.SolveTo(&B, Y, rank)
		}
	}

	// Residual covariance
	var Yhat mat.Dense
	Yhat.Mul(X, &B)

	var U mat.Dense
	U.Sub(Y, &Yhat)

	var utu mat.SymDense
	utu.SymOuterK(1/float64(T), U.T())

	return &OLSFit{
		A:         mat.DenseCopyOf(&B),
		Residuals: mat.DenseCopyOf(&U),
		SigmaHat:  &utu,
	}, nil
}
