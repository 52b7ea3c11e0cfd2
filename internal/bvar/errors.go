// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package bvar

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks invalid dimensions or hyperparameters. It is
	// raised before any computation starts.
	ErrConfiguration = errors.New("bvar: invalid configuration")

	// ErrSamplingDegeneracy is returned when every mixture weight of an
	// indicator underflows to zero.
	ErrSamplingDegeneracy = errors.New("bvar: mixture weights degenerate")

	// ErrInterrupted is returned with the completed prefix of an ensemble
	// when the caller cancels a sampler.
	ErrInterrupted = errors.New("bvar: sampling interrupted")
)

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func interrupted(cause error, done, want int) error {
	return fmt.Errorf("%w after %d of %d draws: %w", ErrInterrupted, done, want, cause)
}
