// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package linalg

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// randomTriDiag builds a diagonally dominant (hence PD) tridiagonal matrix.
func randomTriDiag(n int, rng *rand.Rand) TriDiag {
	t := TriDiag{Diag: make([]float64, n), Sub: make([]float64, n-1)}
	for i := 0; i < n-1; i++ {
		t.Sub[i] = rng.Float64()*2 - 1
	}
	for i := 0; i < n; i++ {
		d := 0.1 + rng.Float64()
		if i > 0 {
			d += math.Abs(t.Sub[i-1])
		}
		if i < n-1 {
			d += math.Abs(t.Sub[i])
		}
		t.Diag[i] = d
	}
	return t
}

func TestTriDiagSolveMatchesDenseCholesky(t *testing.T) {
	rng := NewRand(7)
	for trial := 0; trial < 20; trial++ {
		const n = 50
		td := randomTriDiag(n, rng)
		b := StdNormalVec(n, rng)

		tc, err := FactorizeTriDiag(td, "test")
		require.NoError(t, err)
		got := tc.Solve(b)

		chol, err := Factorize(td.Dense(), "dense")
		require.NoError(t, err)
		var want mat.VecDense
		require.NoError(t, chol.SolveVecTo(&want, mat.NewVecDense(n, b)))

		for i := 0; i < n; i++ {
			assert.InDelta(t, want.AtVec(i), got[i], 1e-10, "trial %d index %d", trial, i)
		}
	}
}

func TestTriDiagFactorMatchesBandCholesky(t *testing.T) {
	const n = 50
	td := randomTriDiag(n, NewRand(11))

	band := mat.NewSymBandDense(n, 1, nil)
	for i := 0; i < n; i++ {
		band.SetSymBand(i, i, td.Diag[i])
		if i+1 < n {
			band.SetSymBand(i, i+1, td.Sub[i])
		}
	}
	var ref mat.BandCholesky
	require.True(t, ref.Factorize(band))

	tc, err := FactorizeTriDiag(td, "test")
	require.NoError(t, err)

	L := mat.NewTriDense(n, mat.Lower, nil)
	for i := 0; i < n; i++ {
		L.SetTri(i, i, tc.Diag[i])
		if i > 0 {
			L.SetTri(i, i-1, tc.Sub[i-1])
		}
	}
	var back mat.Dense
	back.Mul(L, L.T())
	assert.True(t, mat.EqualApprox(&back, td.Dense(), 1e-10))
	assert.InDelta(t, ref.LogDet(), logDetTri(tc), 1e-9)
}

func logDetTri(c *TriCholesky) float64 {
	s := 0.0
	for _, d := range c.Diag {
		s += 2 * math.Log(d)
	}
	return s
}

func TestTriDiagNotPositiveDefinite(t *testing.T) {
	td := TriDiag{Diag: []float64{1, 1, 1}, Sub: []float64{2, 0}}
	_, err := FactorizeTriDiag(td, "state precision")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotPositiveDefinite))

	var ne *NumericalError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, "state precision", ne.Matrix)
}

func TestTriDiagShapeMismatch(t *testing.T) {
	_, err := FactorizeTriDiag(TriDiag{Diag: []float64{1, 2}, Sub: nil}, "x")
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = FactorizeTriDiag(TriDiag{}, "x")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFactorizeReportsMatrixName(t *testing.T) {
	a := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	_, err := Factorize(a, "posterior scale")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
	assert.Contains(t, err.Error(), "posterior scale")

	_, err = SymInverse(a, "posterior scale")
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
}

func TestSymInverseAndSymmetrize(t *testing.T) {
	a := mat.NewSymDense(3, []float64{
		4, 1, 0.5,
		1, 3, 0.2,
		0.5, 0.2, 2,
	})
	inv, err := SymInverse(a, "a")
	require.NoError(t, err)

	var prod mat.Dense
	prod.Mul(a, inv)
	assert.True(t, mat.EqualApprox(&prod, eye(3), 1e-12))

	asym := mat.NewDense(2, 2, []float64{1, 2, 2.0000001, 5})
	s := Symmetrize(asym)
	assert.Equal(t, s.At(0, 1), s.At(1, 0))
	assert.True(t, IsSymmetric(s, 0))
	assert.False(t, IsSymmetric(asym, 1e-9))
}

func eye(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

func TestDiagInverse(t *testing.T) {
	d := Diag([]float64{2, 4, 0.5})
	inv := DiagInverse(d)
	assert.Equal(t, []float64{0.5, 0.25, 2}, []float64{inv.At(0, 0), inv.At(1, 1), inv.At(2, 2)})
}

func TestSampleWishartMean(t *testing.T) {
	scale := mat.NewSymDense(2, []float64{0.5, 0.1, 0.1, 0.25})
	const nu = 8.0
	const draws = 20000

	rng := NewRand(3)
	sum := mat.NewSymDense(2, nil)
	for i := 0; i < draws; i++ {
		chol, err := SampleWishartChol(scale, nu, "scale", rng)
		require.NoError(t, err)
		var w mat.SymDense
		chol.ToSym(&w)
		sum.AddSym(sum, &w)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			mean := sum.At(i, j) / draws
			want := nu * scale.At(i, j)
			assert.InDelta(t, want, mean, 0.05*math.Abs(want)+0.02, "entry %d,%d", i, j)
		}
	}
}

func TestSampleWishartRejectsLowDf(t *testing.T) {
	_, err := SampleWishartChol(mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), 1.5, "s", NewRand(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.NotErrorIs(t, err, ErrNotPositiveDefinite)

	_, err = SampleInverseWishart(mat.NewSymDense(2, []float64{1, 0, 0, 1}), 0.5, "s", NewRand(1))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSampleInverseWishartIsPD(t *testing.T) {
	scaleInv := mat.NewSymDense(2, []float64{1, 0.3, 0.3, 2})
	sigma, err := SampleInverseWishart(scaleInv, 10, "s", NewRand(5))
	require.NoError(t, err)
	_, err = Factorize(sigma, "draw")
	assert.NoError(t, err)
}

func TestSampleMatrixNormalCovariance(t *testing.T) {
	// K=2, N=1: vec(A) ~ N(M, σ² V).
	V := mat.NewSymDense(2, []float64{1, 0.6, 0.6, 2})
	Sigma := mat.NewSymDense(1, []float64{0.5})
	lRow, err := LowerFactor(V, "V")
	require.NoError(t, err)
	lCol, err := LowerFactor(Sigma, "Sigma")
	require.NoError(t, err)

	mean := mat.NewDense(2, 1, []float64{1, -1})
	rng := NewRand(9)
	const draws = 40000
	var s0, s1, s00, s11, s01 float64
	for i := 0; i < draws; i++ {
		a, err := SampleMatrixNormal(mean, lRow, lCol, rng)
		require.NoError(t, err)
		x0, x1 := a.At(0, 0), a.At(1, 0)
		s0 += x0
		s1 += x1
		s00 += (x0 - 1) * (x0 - 1)
		s11 += (x1 + 1) * (x1 + 1)
		s01 += (x0 - 1) * (x1 + 1)
	}
	assert.InDelta(t, 1.0, s0/draws, 0.02)
	assert.InDelta(t, -1.0, s1/draws, 0.02)
	assert.InDelta(t, 0.5, s00/draws, 0.025)
	assert.InDelta(t, 1.0, s11/draws, 0.05)
	assert.InDelta(t, 0.3, s01/draws, 0.025)
}

func TestSampleMatrixNormalShapeMismatch(t *testing.T) {
	lRow := mat.NewTriDense(3, mat.Lower, nil)
	lCol := mat.NewTriDense(1, mat.Lower, []float64{1})
	_, err := SampleMatrixNormal(mat.NewDense(2, 1, nil), lRow, lCol, NewRand(1))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNewRandReproducible(t *testing.T) {
	a := StdNormalVec(5, NewRand(42))
	b := StdNormalVec(5, NewRand(42))
	assert.Equal(t, a, b)

	s1 := DeriveSeeds(NewRand(1), 4)
	s2 := DeriveSeeds(NewRand(1), 4)
	assert.Equal(t, s1, s2)
	assert.NotEqual(t, s1[0], s1[1])
}

func TestSampleMVN(t *testing.T) {
	L := mat.NewTriDense(2, mat.Lower, []float64{1, 0, 0.5, 2})
	dst := make([]float64, 2)
	rng := NewRand(2)
	const draws = 40000
	var m0, m1 float64
	for i := 0; i < draws; i++ {
		SampleMVN(dst, []float64{3, -2}, L, 1, rng)
		m0 += dst[0]
		m1 += dst[1]
	}
	assert.InDelta(t, 3.0, m0/draws, 0.03)
	assert.InDelta(t, -2.0, m1/draws, 0.05)
}
