// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NewMinnesotaPrior builds the Minnesota NIW prior.
// n: number of variables, p: lag order
// kappa1: lag shrinkage, coefficient variance on lag l is kappa1 / l^2
// kappa2: intercept variance
// sigmaHat: OLS residual covariance (N x N), only its diagonal is used
//
// The prior mean puts 1 on each variable's own first lag (rows 1..N of A)
// and 0 everywhere else, a random-walk belief.
func NewMinnesotaPrior(n, p int, kappa1, kappa2 float64, sigmaHat mat.Symmetric) (*PriorSpec, error) {
	if n <= 0 {
		return nil, configErr("N must be > 0, got %d", n)
	}
	if p <= 0 {
		return nil, configErr("p must be > 0, got %d", p)
	}
	if !(kappa1 > 0) || math.IsInf(kappa1, 0) {
		return nil, configErr("kappa1 must be positive, got %g", kappa1)
	}
	if !(kappa2 > 0) || math.IsInf(kappa2, 0) {
		return nil, configErr("kappa2 must be positive, got %g", kappa2)
	}
	if sigmaHat == nil || sigmaHat.SymmetricDim() != n {
		return nil, configErr("sigmaHat must be %d x %d", n, n)
	}

	K := 1 + n*p

	A := mat.NewDense(K, n, nil)
	for i := 0; i < n; i++ {
		A.Set(1+i, i, 1)
	}

	v := make([]float64, K)
	v[0] = kappa2
	for l := 1; l <= p; l++ {
		lagVar := kappa1 / float64(l*l)
		for i := 0; i < n; i++ {
			v[1+(l-1)*n+i] = lagVar
		}
	}

	s := make([]float64, n)
	for i := 0; i < n; i++ {
		d := sigmaHat.At(i, i)
		if !(d > 0) || math.IsInf(d, 0) {
			return nil, configErr("sigmaHat diagonal must be positive, entry %d is %g", i, d)
		}
		s[i] = d
	}

	return &PriorSpec{
		N:  n,
		P:  p,
		A:  A,
		V:  mat.NewDiagDense(K, v),
		S:  mat.NewDiagDense(n, s),
		Nu: float64(n + 1),
	}, nil
}

// DefaultSVPrior returns h0 ~ N(0, 1) and σv² ~ scaled-inv-χ²(1, 1).
func DefaultSVPrior() SVPrior {
	return SVPrior{
		H0Mean:      0,
		H0Var:       1,
		SigmaVScale: 1,
		SigmaVDf:    1,
	}
}

// Validate checks the positivity constraints of the SV hyperparameters.
func (p SVPrior) Validate() error {
	if math.IsNaN(p.H0Mean) || math.IsInf(p.H0Mean, 0) {
		return configErr("h0 mean must be finite, got %g", p.H0Mean)
	}
	if !(p.H0Var > 0) {
		return configErr("h0 variance must be positive, got %g", p.H0Var)
	}
	if !(p.SigmaVScale > 0) {
		return configErr("sigma_v scale must be positive, got %g", p.SigmaVScale)
	}
	if !(p.SigmaVDf > 0) {
		return configErr("sigma_v degrees of freedom must be positive, got %g", p.SigmaVDf)
	}
	return nil
}
