// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package linalg

import (
	"gonum.org/v1/gonum/mat"
)

// Factorize computes the Cholesky factorization of a and reports a
// NumericalError naming the matrix when a is not positive definite.
func Factorize(a mat.Symmetric, name string) (*mat.Cholesky, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, notPD(name, "cholesky")
	}
	return &chol, nil
}

// LowerFactor returns L with a = L Lᵀ.
func LowerFactor(a mat.Symmetric, name string) (*mat.TriDense, error) {
	chol, err := Factorize(a, name)
	if err != nil {
		return nil, err
	}
	n := a.SymmetricDim()
	L := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(L)
	return L, nil
}

// SymInverse inverts a symmetric positive-definite matrix through its
// Cholesky factor.
func SymInverse(a mat.Symmetric, name string) (*mat.SymDense, error) {
	chol, err := Factorize(a, name)
	if err != nil {
		return nil, err
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, notPD(name, "inverse")
	}
	return &inv, nil
}

// Symmetrize returns (a + aᵀ)/2 as a SymDense. Products such as
// Āᵗ V̄⁻¹ Ā are symmetric in exact arithmetic only; this removes the
// rounding asymmetry before a factorization.
func Symmetrize(a mat.Matrix) *mat.SymDense {
	r, c := a.Dims()
	if r != c {
		panic(ErrDimensionMismatch)
	}
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return s
}

// Diag returns a diagonal matrix holding d.
func Diag(d []float64) *mat.DiagDense {
	v := make([]float64, len(d))
	copy(v, d)
	return mat.NewDiagDense(len(v), v)
}

// DiagInverse returns diag(1/d).
func DiagInverse(d mat.Diagonal) *mat.DiagDense {
	n := d.Diag()
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		v[i] = 1 / d.At(i, i)
	}
	return mat.NewDiagDense(n, v)
}

// IsSymmetric reports whether a equals its transpose within tol.
func IsSymmetric(a mat.Matrix, tol float64) bool {
	r, c := a.Dims()
	if r != c {
		return false
	}
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			d := a.At(i, j) - a.At(j, i)
			if d > tol || d < -tol {
				return false
			}
		}
	}
	return true
}
