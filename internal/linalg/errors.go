// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

// Package linalg holds the dense, tridiagonal and sampling kernels shared by
// the estimation code.
package linalg

import (
	"errors"
	"fmt"
)

// Sentinel errors for the kernel. Callers match them with errors.Is; the
// kernel wraps them with the name of the offending matrix.
var (
	// ErrNotPositiveDefinite is returned when a Cholesky factorization
	// (dense, Wishart scale or tridiagonal) meets a non-positive pivot.
	ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive definite")

	// ErrDimensionMismatch is returned when operand shapes are incompatible.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrInvalidParameter is returned when a distribution parameter is out
	// of its support, e.g. too few Wishart degrees of freedom.
	ErrInvalidParameter = errors.New("linalg: invalid distribution parameter")
)

// NumericalError identifies which matrix failed and during which operation.
type NumericalError struct {
	// Matrix is a human readable name, e.g. "posterior precision".
	Matrix string
	// Op is the operation that failed, e.g. "cholesky".
	Op string
	// Err is the underlying sentinel.
	Err error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("%s of %s: %v", e.Op, e.Matrix, e.Err)
}

func (e *NumericalError) Unwrap() error { return e.Err }

// notPD builds the NumericalError used for every failed factorization.
func notPD(name, op string) error {
	return &NumericalError{Matrix: name, Op: op, Err: ErrNotPositiveDefinite}
}
