// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// TriDiag is a symmetric tridiagonal matrix stored by its leading diagonal
// (length n) and its sub-diagonal (length n-1).
type TriDiag struct {
	Diag []float64
	Sub  []float64
}

// Dense expands the matrix, mostly for comparisons against dense solvers.
func (t TriDiag) Dense() *mat.SymDense {
	n := len(t.Diag)
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, t.Diag[i])
		if i+1 < n {
			s.SetSym(i, i+1, t.Sub[i])
		}
	}
	return s
}

// TriCholesky is the lower bidiagonal factor L of a tridiagonal matrix,
// D⁻¹ = L Lᵀ, with leading diagonal Diag and sub-diagonal Sub.
type TriCholesky struct {
	Diag []float64
	Sub  []float64
}

// FactorizeTriDiag computes the banded Cholesky factor in O(n):
//
//	l_1     = √d_1
//	m_i     = e_i / l_i
//	l_{i+1} = √(d_{i+1} − m_i²)
//
// name identifies the matrix in the NumericalError returned when a pivot is
// not strictly positive.
func FactorizeTriDiag(t TriDiag, name string) (*TriCholesky, error) {
	n := len(t.Diag)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty tridiagonal matrix", ErrDimensionMismatch)
	}
	if len(t.Sub) != n-1 {
		return nil, fmt.Errorf("%w: sub-diagonal has %d entries, want %d",
			ErrDimensionMismatch, len(t.Sub), n-1)
	}

	c := &TriCholesky{
		Diag: make([]float64, n),
		Sub:  make([]float64, n-1),
	}

	pivot := t.Diag[0]
	for i := 0; i < n; i++ {
		if i > 0 {
			pivot = t.Diag[i] - c.Sub[i-1]*c.Sub[i-1]
		}
		if !(pivot > 0) || math.IsInf(pivot, 0) {
			return nil, notPD(name, "tridiagonal cholesky")
		}
		c.Diag[i] = math.Sqrt(pivot)
		if i+1 < n {
			c.Sub[i] = t.Sub[i] / c.Diag[i]
		}
	}
	return c, nil
}

// SolveLower solves L x = b by forward substitution.
func (c *TriCholesky) SolveLower(b []float64) []float64 {
	n := len(c.Diag)
	if len(b) != n {
		panic(ErrDimensionMismatch)
	}
	x := make([]float64, n)
	x[0] = b[0] / c.Diag[0]
	for i := 1; i < n; i++ {
		x[i] = (b[i] - c.Sub[i-1]*x[i-1]) / c.Diag[i]
	}
	return x
}

// SolveUpper solves Lᵀ x = b by backward substitution.
func (c *TriCholesky) SolveUpper(b []float64) []float64 {
	n := len(c.Diag)
	if len(b) != n {
		panic(ErrDimensionMismatch)
	}
	x := make([]float64, n)
	x[n-1] = b[n-1] / c.Diag[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = (b[i] - c.Sub[i]*x[i+1]) / c.Diag[i]
	}
	return x
}

// Solve solves (L Lᵀ) x = b.
func (c *TriCholesky) Solve(b []float64) []float64 {
	return c.SolveUpper(c.SolveLower(b))
}
