// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"bvarsv/internal/linalg"
)

// Names reported in NumericalError when a factorization fails.
const (
	matPosteriorPrecision = "posterior precision V̄⁻¹"
	matPosteriorCov       = "posterior covariance V̄"
	matPosteriorScale     = "posterior scale S̄"
	matSigmaDraw          = "covariance draw Σ"
)

// ComputePosterior computes the NIW posterior parameters.
// Y: T x N responses, X: T x K regressors
// prior: Minnesota prior built for the same N and p
// omega: per-period precision weights (the diagonal of Ω), nil for the
// homoskedastic model and 1/σ²_t for the SV model
//
//	V̄⁻¹ = X'ΩX + V̲⁻¹
//	Ā   = V̄ (X'ΩY + V̲⁻¹A̲)
//	ν̄   = T + ν̲
//	S̄   = S̲ + Y'ΩY + A̲'V̲⁻¹A̲ − Ā'V̄⁻¹Ā
func ComputePosterior(Y, X *mat.Dense, prior *PriorSpec, omega []float64) (*PosteriorParams, error) {
	if prior == nil {
		return nil, configErr("prior not provided")
	}
	if err := checkDesign(Y, X, prior.N, prior.P); err != nil {
		return nil, err
	}
	T, N := Y.Dims()
	_, K := X.Dims()

	Xs, Ys := X, Y
	if omega != nil {
		if len(omega) != T {
			return nil, configErr("omega has %d weights, want T = %d", len(omega), T)
		}
		Xs = mat.NewDense(T, K, nil)
		Ys = mat.NewDense(T, N, nil)
		for t := 0; t < T; t++ {
			w := omega[t]
			if !(w > 0) || math.IsInf(w, 0) {
				return nil, configErr("omega weight %d must be positive and finite, got %g", t, w)
			}
			sw := math.Sqrt(w)
			for k := 0; k < K; k++ {
				Xs.Set(t, k, sw*X.At(t, k))
			}
			for n := 0; n < N; n++ {
				Ys.Set(t, n, sw*Y.At(t, n))
			}
		}
	}

	vPriorInv := linalg.DiagInverse(prior.V)

	// V̄⁻¹
	var vInv mat.SymDense
	vInv.SymOuterK(1, Xs.T())
	for k := 0; k < K; k++ {
		vInv.SetSym(k, k, vInv.At(k, k)+vPriorInv.At(k, k))
	}
	cholVInv, err := linalg.Factorize(&vInv, matPosteriorPrecision)
	if err != nil {
		return nil, err
	}

	var v mat.SymDense
	if err := cholVInv.InverseTo(&v); err != nil {
		return nil, &linalg.NumericalError{Matrix: matPosteriorPrecision, Op: "inverse", Err: linalg.ErrNotPositiveDefinite}
	}
	lv, err := linalg.LowerFactor(&v, matPosteriorCov)
	if err != nil {
		return nil, err
	}

	// Ā solves V̄⁻¹ Ā = X'ΩY + V̲⁻¹A̲
	var priorTerm mat.Dense
	priorTerm.Mul(vPriorInv, prior.A)

	var rhs mat.Dense
	rhs.Mul(Xs.T(), Ys)
	rhs.Add(&rhs, &priorTerm)

	var aBar mat.Dense
	if err := cholVInv.SolveTo(&aBar, &rhs); err != nil {
		return nil, &linalg.NumericalError{Matrix: matPosteriorPrecision, Op: "solve", Err: linalg.ErrNotPositiveDefinite}
	}

	// S̄
	var yty mat.Dense
	yty.Mul(Ys.T(), Ys)

	var aPa mat.Dense
	aPa.Mul(prior.A.T(), &priorTerm)

	var vA mat.Dense
	vA.Mul(&vInv, &aBar)
	var aVa mat.Dense
	aVa.Mul(aBar.T(), &vA)

	var s mat.Dense
	s.Add(prior.S, &yty)
	s.Add(&s, &aPa)
	s.Sub(&s, &aVa)
	sBar := linalg.Symmetrize(&s)

	sInv, err := linalg.SymInverse(sBar, matPosteriorScale)
	if err != nil {
		return nil, err
	}

	return &PosteriorParams{
		VInv: &vInv,
		V:    &v,
		LV:   lv,
		A:    &aBar,
		Nu:   float64(T) + prior.Nu,
		S:    sBar,
		SInv: sInv,
	}, nil
}

// DrawPosterior draws nDraws i.i.d. samples of (A, Σ) from one generator.
// For each draw Σ⁻¹ ~ Wishart(ν̄, S̄⁻¹) and A = Ā + L_V Z chol(Σ)ᵗ.
func DrawPosterior(post *PosteriorParams, nDraws int, rng *rand.Rand) ([]Draw, error) {
	if nDraws <= 0 {
		return nil, configErr("number of draws must be > 0, got %d", nDraws)
	}
	draws := make([]Draw, nDraws)
	for s := 0; s < nDraws; s++ {
		d, err := drawOne(post, rng)
		if err != nil {
			return nil, err
		}
		draws[s] = d
	}
	return draws, nil
}

// drawOne samples a single (A, Σ) pair.
func drawOne(post *PosteriorParams, src rand.Source) (Draw, error) {
	sigma, err := linalg.SampleInverseWishart(post.SInv, post.Nu, matPosteriorScale, src)
	if err != nil {
		return Draw{}, err
	}
	lSigma, err := linalg.LowerFactor(sigma, matSigmaDraw)
	if err != nil {
		return Draw{}, err
	}
	A, err := linalg.SampleMatrixNormal(post.A, post.LV, lSigma, src)
	if err != nil {
		return Draw{}, err
	}
	return Draw{A: A, Sigma: sigma}, nil
}
