// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package dataio

import (
	"io"
	"strings"

	"gonum.org/v1/gonum/mat"

	"bvarsv/internal/bvar"
)

// PosteriorMean averages A and Σ across the ensemble.
func PosteriorMean(ens *bvar.Ensemble) (*mat.Dense, *mat.Dense) {
	if ens == nil || ens.Len() == 0 {
		return nil, nil
	}
	K, N := ens.Draws[0].A.Dims()
	A := mat.NewDense(K, N, nil)
	S := mat.NewDense(N, N, nil)
	for _, d := range ens.Draws {
		A.Add(A, d.A)
		S.Add(S, d.Sigma)
	}
	inv := 1 / float64(ens.Len())
	A.Scale(inv, A)
	S.Scale(inv, S)
	return A, S
}

// Summary prints the dimensions and posterior means of an ensemble.
func Summary(w io.Writer, ens *bvar.Ensemble, ts *bvar.TimeSeries) error {
	ew := &errWriter{w: w}
	if ens == nil {
		ew.printf("BVAR ensemble is nil\n")
		return ew.err
	}

	model := "Baseline NIW"
	if ens.Stochastic {
		model = "Stochastic volatility"
	}
	ew.printf("         Bayesian VAR Summary      \n")
	ew.printf("Model:                   %s\n", model)
	ew.printf("Run ID:                  %s\n", ens.RunID)
	ew.printf("Seed:                    %d\n", ens.Seed)
	ew.printf("Number of variables (N): %d\n", ens.N)
	ew.printf("Lag order (p):           %d\n", ens.P)
	if ts != nil && ts.Y != nil {
		T, _ := ts.Y.Dims()
		ew.printf("Sample size (T):         %d\n", T)
	}
	ew.printf("Posterior draws:         %d\n\n", ens.Len())

	if ts != nil && len(ts.VarNames) > 0 {
		ew.printf("Variables:\n  %s\n\n", strings.Join(ts.VarNames, ", "))
	}

	A, S := PosteriorMean(ens)
	if A != nil {
		ew.printf("Posterior mean of A (intercept row first):\n")
		ew.printf("%v\n\n", mat.Formatted(A, mat.Prefix("  ")))
		ew.printf("Posterior mean of Σ:\n")
		ew.printf("%v\n\n", mat.Formatted(S, mat.Prefix("  ")))
	}

	if ens.Stochastic && ens.Len() > 0 {
		var hT, sv float64
		for _, d := range ens.Draws {
			hT += d.HT
			sv += d.SigmaV2
		}
		n := float64(ens.Len())
		ew.printf("Posterior mean of h_T:   %.6f\n", hT/n)
		ew.printf("Posterior mean of σv²:   %.6f\n\n", sv/n)
	}

	ew.printf("=======================================\n")
	return ew.err
}

// PrintForecast prints mean and band per horizon for every variable.
func PrintForecast(w io.Writer, sum *bvar.ForecastSummary, varNames []string) error {
	ew := &errWriter{w: w}
	H, N := sum.Mean.Dims()

	ew.printf("\n=== Forecast (%.0f%% HDI) ===\n", 100*sum.Credibility)
	ew.printf("h\t")
	for j := 0; j < N; j++ {
		ew.printf("%30s", varName(varNames, N, j))
	}
	ew.printf("\n")

	for h := 0; h < H; h++ {
		ew.printf("%d\t", h+1)
		for j := 0; j < N; j++ {
			ew.printf("%10.4f [%7.4f,%7.4f]",
				sum.Mean.At(h, j), sum.Lower.At(h, j), sum.Upper.At(h, j))
		}
		ew.printf("\n")
	}
	return ew.err
}

// PrintIRF prints the posterior mean response to one shock with its band.
func PrintIRF(w io.Writer, irf *bvar.IRFSummary, varNames []string) error {
	ew := &errWriter{w: w}
	H, N := irf.Mean.Dims()

	ew.printf("\n=== Impulse Response Function ===\n")
	ew.printf("Shock to variable %d (%s), %.0f%% HDI\n\n",
		irf.ShockIndex, varName(varNames, N, irf.ShockIndex), 100*irf.Credibility)

	ew.printf("h\t")
	for j := 0; j < N; j++ {
		ew.printf("%30s", varName(varNames, N, j))
	}
	ew.printf("\n")

	for h := 0; h < H; h++ {
		ew.printf("%d\t", h)
		for j := 0; j < N; j++ {
			ew.printf("%10.4f [%7.4f,%7.4f]",
				irf.Mean.At(h, j), irf.Lower.At(h, j), irf.Upper.At(h, j))
		}
		ew.printf("\n")
	}
	return ew.err
}
