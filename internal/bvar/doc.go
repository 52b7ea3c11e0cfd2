// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

// Package bvar estimates Bayesian VARs under a Minnesota normal-inverse-Wishart
// prior, with and without a common stochastic volatility factor, and turns
// posterior draws into forecast distributions and impulse responses.
//
// The model is
//
//	Y = X A + E,  vec(E) ~ N(0, Σ ⊗ Ω⁻¹)
//
// where row t of X is [1, y_{t-1}, ..., y_{t-p}] and Ω = I for the baseline
// model or diag(1/σ²_t) with log σ²_t a random walk for the SV model.
//
// Typical use:
//
//	Y, X, _ := bvar.BuildDesign(ts, p)
//	fit, _ := bvar.OLS(Y, X)
//	prior, _ := bvar.NewMinnesotaPrior(N, p, kappa1, kappa2, fit.SigmaHat)
//	ens, _ := bvar.RunSV(ctx, Y, X, prior, bvar.DefaultSVPrior(), cfg, opts)
//	fc, _ := bvar.Simulate(ens, ts.Y, h, bvar.SimulateOptions{Seed: seed})
//	sum, _ := fc.Summarize(0.68)
//
// Every sampler takes its seed explicitly; there is no package-level
// random state.
package bvar
