// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package linalg

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmat"
	"gonum.org/v1/gonum/stat/distuv"
)

// golden is the odd constant used to derive the second PCG word from a seed.
const golden = 0x9e3779b97f4a7c15

// NewRand returns an owned generator for one run, draw or chain. Every
// sampling call in the module takes its source explicitly.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^golden))
}

// DeriveSeeds draws n child seeds from a master generator, so draw (or
// chain) i always gets the same stream no matter how work is scheduled.
func DeriveSeeds(master *rand.Rand, n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}
	return seeds
}

// StdNormalMatrix fills an r×c matrix with independent N(0,1) entries.
func StdNormalMatrix(r, c int, src rand.Source) *mat.Dense {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	data := make([]float64, r*c)
	for i := range data {
		data[i] = norm.Rand()
	}
	return mat.NewDense(r, c, data)
}

// StdNormalVec returns n independent N(0,1) draws.
func StdNormalVec(n int, src rand.Source) []float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	v := make([]float64, n)
	for i := range v {
		v[i] = norm.Rand()
	}
	return v
}

// SampleWishartChol draws W ~ Wishart(ν, scale) with the Bartlett
// decomposition and returns the Cholesky factorization of the draw.
func SampleWishartChol(scale mat.Symmetric, nu float64, name string, src rand.Source) (*mat.Cholesky, error) {
	d := scale.SymmetricDim()
	if nu <= float64(d-1) {
		return nil, fmt.Errorf("%w: wishart degrees of freedom %g must exceed %d", ErrInvalidParameter, nu, d-1)
	}
	w, ok := distmat.NewWishart(scale, nu, src)
	if !ok {
		return nil, notPD(name, "wishart scale cholesky")
	}
	var chol mat.Cholesky
	w.RandCholTo(&chol)
	return &chol, nil
}

// SampleInverseWishart draws Σ with Σ⁻¹ ~ Wishart(ν, scaleInv), i.e.
// Σ ~ IW(ν, scaleInv⁻¹).
func SampleInverseWishart(scaleInv mat.Symmetric, nu float64, name string, src rand.Source) (*mat.SymDense, error) {
	chol, err := SampleWishartChol(scaleInv, nu, name, src)
	if err != nil {
		return nil, err
	}
	var sigma mat.SymDense
	if err := chol.InverseTo(&sigma); err != nil {
		return nil, notPD(name, "inverse wishart draw")
	}
	return &sigma, nil
}

// SampleMatrixNormal draws A ~ MN(M, Σ, V) given lower factors lRow
// (V = lRow lRowᵀ, K×K) and lCol (Σ = lCol lColᵀ, N×N):
//
//	A = M + lRow · Z · lColᵀ,  Z_ij ~ N(0,1)
//
// so that vec(A) ~ N(vec(M), Σ ⊗ V).
func SampleMatrixNormal(mean *mat.Dense, lRow, lCol mat.Triangular, src rand.Source) (*mat.Dense, error) {
	k, n := mean.Dims()
	if kr, _ := lRow.Dims(); kr != k {
		return nil, fmt.Errorf("%w: row factor is %d×%d, mean has %d rows", ErrDimensionMismatch, kr, kr, k)
	}
	if nc, _ := lCol.Dims(); nc != n {
		return nil, fmt.Errorf("%w: column factor is %d×%d, mean has %d columns", ErrDimensionMismatch, nc, nc, n)
	}

	Z := StdNormalMatrix(k, n, src)

	var tmp mat.Dense
	tmp.Mul(lRow, Z)
	var draw mat.Dense
	draw.Mul(&tmp, lCol.T())
	draw.Add(&draw, mean)
	return &draw, nil
}

// SampleMVN writes mean + L z into dst, z ~ N(0, I), i.e. one draw from
// N(mean, L Lᵀ). scale multiplies the noise term.
func SampleMVN(dst, mean []float64, L mat.Triangular, scale float64, src rand.Source) {
	n := len(mean)
	z := StdNormalVec(n, src)
	for i := 0; i < n; i++ {
		v := mean[i]
		for j := 0; j <= i; j++ {
			v += scale * L.At(i, j) * z[j]
		}
		dst[i] = v
	}
}
