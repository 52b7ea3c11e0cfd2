// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"bvarsv/internal/linalg"
)

func TestBuildDesignLayout(t *testing.T) {
	// row t = [t, 10t]
	data := mat.NewDense(5, 2, nil)
	for r := 0; r < 5; r++ {
		data.Set(r, 0, float64(r))
		data.Set(r, 1, 10*float64(r))
	}

	Y, X, err := BuildDesign(&TimeSeries{Y: data}, 2)
	require.NoError(t, err)

	ty, n := Y.Dims()
	tx, k := X.Dims()
	assert.Equal(t, 3, ty)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, tx)
	assert.Equal(t, 5, k)

	for r := 0; r < 3; r++ {
		cur := float64(r + 2)
		assert.Equal(t, []float64{cur, 10 * cur}, mat.Row(nil, r, Y))
		want := []float64{1, cur - 1, 10 * (cur - 1), cur - 2, 10 * (cur - 2)}
		assert.Equal(t, want, mat.Row(nil, r, X), "row %d", r)
	}
}

func TestBuildDesignRejectsBadInput(t *testing.T) {
	good := mat.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	withNaN := mat.DenseCopyOf(good)
	withNaN.Set(2, 1, math.NaN())
	withInf := mat.DenseCopyOf(good)
	withInf.Set(0, 0, math.Inf(-1))

	cases := []struct {
		name string
		ts   *TimeSeries
		p    int
	}{
		{"nil series", nil, 1},
		{"zero lags", &TimeSeries{Y: good}, 0},
		{"too few rows", &TimeSeries{Y: good}, 4},
		{"nan", &TimeSeries{Y: withNaN}, 1},
		{"inf", &TimeSeries{Y: withInf}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := BuildDesign(tc.ts, tc.p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}

func TestOLSRecoversExactCoefficients(t *testing.T) {
	rng := linalg.NewRand(3)
	X := linalg.StdNormalMatrix(40, 3, rng)
	B := mat.NewDense(3, 2, []float64{0.5, -1, 2, 0.25, -0.75, 1.5})
	var Y mat.Dense
	Y.Mul(X, B)

	fit, err := OLS(&Y, X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(B, fit.A, 1e-10))
	assert.InDelta(t, 0, mat.Norm(fit.SigmaHat, 1), 1e-18)
}

func TestOLSFallsBackOnCollinearRegressors(t *testing.T) {
	rng := linalg.NewRand(5)
	z := linalg.StdNormalMatrix(30, 2, rng)
	// third column duplicates the second
	X := mat.NewDense(30, 3, nil)
	for r := 0; r < 30; r++ {
		X.Set(r, 0, 1)
		X.Set(r, 1, z.At(r, 0))
		X.Set(r, 2, z.At(r, 0))
	}
	Y := mat.NewDense(30, 1, nil)
	for r := 0; r < 30; r++ {
		Y.Set(r, 0, 2+3*z.At(r, 0))
	}

	fit, err := OLS(Y, X)
	require.NoError(t, err)

	// Minimum-norm solution splits the effect evenly.
	assert.InDelta(t, 2, fit.A.At(0, 0), 1e-8)
	assert.InDelta(t, 1.5, fit.A.At(1, 0), 1e-8)
	assert.InDelta(t, 1.5, fit.A.At(2, 0), 1e-8)
	assert.InDelta(t, 0, mat.Norm(fit.Residuals, 2), 1e-8)
}

func TestOLSResidualCovarianceDividesByT(t *testing.T) {
	ts := simulateVAR1(t, 500,
		[]float64{0.5, -0.3},
		mat.NewDense(2, 2, []float64{0.5, 0.1, 0, 0.3}),
		mat.NewSymDense(2, []float64{1, 0.2, 0.2, 0.5}),
		17,
	)
	Y, X, err := BuildDesign(ts, 1)
	require.NoError(t, err)
	fit, err := OLS(Y, X)
	require.NoError(t, err)

	T, _ := Y.Dims()
	var utu mat.Dense
	utu.Mul(fit.Residuals.T(), fit.Residuals)
	utu.Scale(1/float64(T), &utu)
	assert.True(t, mat.EqualApprox(&utu, fit.SigmaHat, 1e-12))

	// Sample variances are within four standard errors, σ²·√(2/T).
	tol := 4 * math.Sqrt(2/float64(T))
	assert.InEpsilon(t, 1, fit.SigmaHat.At(0, 0), tol)
	assert.InEpsilon(t, 0.5, fit.SigmaHat.At(1, 1), tol)
}
