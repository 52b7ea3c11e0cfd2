// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"bvarsv/internal/bvar"
)

// Kinds written to the ensemble CSV.
const (
	KindA       = "A"
	KindSigma   = "Sigma"
	KindSigma2  = "sigma2"
	KindHT      = "h_T"
	KindSigmaV2 = "sigma_v2"
)

// writeCSVFile creates path and hands a CSV writer to fill.
func writeCSVFile(path string, fill func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := fill(writer); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteEnsembleCSV writes every draw in long format.
// Columns: draw, kind, row, col, value
// Draws are outermost; within a draw A comes row-major, then Σ, then for
// SV draws the σ² path (col 0), h_T and σv².
func WriteEnsembleCSV(path string, ens *bvar.Ensemble) error {
	return writeCSVFile(path, func(w *csv.Writer) error {
		return WriteEnsemble(w, ens)
	})
}

// WriteEnsemble streams the ensemble rows to w.
func WriteEnsemble(w *csv.Writer, ens *bvar.Ensemble) error {
	if err := w.Write([]string{"draw", "kind", "row", "col", "value"}); err != nil {
		return err
	}

	for s, d := range ens.Draws {
		draw := strconv.Itoa(s)
		put := func(kind string, r, c int, v float64) error {
			return w.Write([]string{draw, kind, strconv.Itoa(r), strconv.Itoa(c), formatFloat(v)})
		}

		K, N := d.A.Dims()
		for r := 0; r < K; r++ {
			for c := 0; c < N; c++ {
				if err := put(KindA, r, c, d.A.At(r, c)); err != nil {
					return err
				}
			}
		}
		for r := 0; r < N; r++ {
			for c := 0; c < N; c++ {
				if err := put(KindSigma, r, c, d.Sigma.At(r, c)); err != nil {
					return err
				}
			}
		}
		if !ens.Stochastic {
			continue
		}
		for t, v := range d.Sigma2 {
			if err := put(KindSigma2, t, 0, v); err != nil {
				return err
			}
		}
		if err := put(KindHT, 0, 0, d.HT); err != nil {
			return err
		}
		if err := put(KindSigmaV2, 0, 0, d.SigmaV2); err != nil {
			return err
		}
	}
	return nil
}

// WriteForecastCSV writes a forecast summary in long format.
// Columns: Horizon, Variable, Mean, Median, Lower, Upper
// Horizon is 1-based.
func WriteForecastCSV(path string, sum *bvar.ForecastSummary, varNames []string) error {
	return writeCSVFile(path, func(w *csv.Writer) error {
		header := []string{"Horizon", "Variable", "Mean", "Median", "Lower", "Upper"}
		if err := w.Write(header); err != nil {
			return err
		}

		H, N := sum.Mean.Dims()
		for h := 0; h < H; h++ {
			for j := 0; j < N; j++ {
				record := []string{
					strconv.Itoa(h + 1),
					varName(varNames, N, j),
					formatFloat(sum.Mean.At(h, j)),
					formatFloat(sum.Median.At(h, j)),
					formatFloat(sum.Lower.At(h, j)),
					formatFloat(sum.Upper.At(h, j)),
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteIRFCSV writes posterior impulse responses in long format.
// Columns: ShockVar, ResponseVar, Horizon, Mean, Lower, Upper
func WriteIRFCSV(path string, irf *bvar.IRFSummary, varNames []string) error {
	return writeCSVFile(path, func(w *csv.Writer) error {
		header := []string{"ShockVar", "ResponseVar", "Horizon", "Mean", "Lower", "Upper"}
		if err := w.Write(header); err != nil {
			return err
		}

		H, N := irf.Mean.Dims()
		shockName := varName(varNames, N, irf.ShockIndex)
		for j := 0; j < N; j++ {
			respName := varName(varNames, N, j)
			for h := 0; h < H; h++ {
				record := []string{
					shockName,
					respName,
					strconv.Itoa(h),
					formatFloat(irf.Mean.At(h, j)),
					formatFloat(irf.Lower.At(h, j)),
					formatFloat(irf.Upper.At(h, j)),
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// errWriter remembers the first write error so table printers can check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
